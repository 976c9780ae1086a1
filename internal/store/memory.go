package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/crewgrid/crewgrid/pkg/models"
)

// Memory is an in-process Store used by tests. It mirrors the SQLite
// implementation's semantics, including task ordering.
type Memory struct {
	mu         sync.Mutex
	workers    map[string]models.Worker
	tasks      map[string]models.Task
	messages   []models.Message
	activity   []Activity
	seq        int
	failNextOp string
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		workers: make(map[string]models.Worker),
		tasks:   make(map[string]models.Task),
	}
}

// FailNext makes the next call of the named operation return an error.
// Operation names match the Store method names.
func (m *Memory) FailNext(op string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failNextOp = op
}

func (m *Memory) checkFail(op string) error {
	if m.failNextOp == op {
		m.failNextOp = ""
		return fmt.Errorf("injected %s failure", op)
	}
	return nil
}

// Close implements io.Closer.
func (m *Memory) Close() error { return nil }

// next returns a monotonically increasing timestamp so that insertion
// order is stable even within one wall-clock tick.
func (m *Memory) next() time.Time {
	m.seq++
	return time.Unix(0, int64(m.seq)*int64(time.Millisecond))
}

// --- Workers ---

func (m *Memory) GetWorker(_ context.Context, id string) (*models.Worker, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkFail("GetWorker"); err != nil {
		return nil, err
	}
	w, ok := m.workers[id]
	if !ok {
		return nil, fmt.Errorf("worker %s: %w", id, ErrNotFound)
	}
	return &w, nil
}

func (m *Memory) ListWorkers(_ context.Context) ([]models.Worker, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkFail("ListWorkers"); err != nil {
		return nil, err
	}
	workers := make([]models.Worker, 0, len(m.workers))
	for _, w := range m.workers {
		workers = append(workers, w)
	}
	sort.Slice(workers, func(i, j int) bool { return workers[i].Name < workers[j].Name })
	return workers, nil
}

func (m *Memory) UpsertWorker(_ context.Context, w models.Worker) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if w.Room == "" {
		w.Room = models.RoomDesks
	}
	if w.Status == "" {
		w.Status = models.StatusIdle
	}
	if existing, ok := m.workers[w.ID]; ok {
		existing.Name = w.Name
		existing.Role = w.Role
		existing.UpdatedAt = m.next()
		m.workers[w.ID] = existing
		return nil
	}
	w.UpdatedAt = m.next()
	m.workers[w.ID] = w
	return nil
}

func (m *Memory) UpdateWorker(_ context.Context, id string, upd models.WorkerUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkFail("UpdateWorker"); err != nil {
		return err
	}
	w, ok := m.workers[id]
	if !ok {
		return fmt.Errorf("worker %s: %w", id, ErrNotFound)
	}
	if upd.Room != nil {
		w.Room = *upd.Room
	}
	if upd.Status != nil {
		w.Status = *upd.Status
	}
	if upd.CurrentTask != nil {
		w.CurrentTask = *upd.CurrentTask
	}
	if upd.Note != nil {
		w.Note = *upd.Note
	}
	w.UpdatedAt = m.next()
	m.workers[id] = w
	return nil
}

func (m *Memory) BulkUpdateWorkers(_ context.Context, status models.WorkerStatus, room models.Room) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, w := range m.workers {
		w.Status = status
		w.Room = room
		w.CurrentTask = ""
		w.UpdatedAt = m.next()
		m.workers[id] = w
	}
	return nil
}

// --- Tasks ---

func (m *Memory) GetTask(_ context.Context, id string) (*models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkFail("GetTask"); err != nil {
		return nil, err
	}
	t, ok := m.tasks[id]
	if !ok {
		return nil, fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	return &t, nil
}

func (m *Memory) ListTasksForWorker(_ context.Context, workerID string) ([]models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkFail("ListTasksForWorker"); err != nil {
		return nil, err
	}
	var tasks []models.Task
	for _, t := range m.tasks {
		for _, a := range t.Assignees {
			if a == workerID {
				tasks = append(tasks, t)
				break
			}
		}
	}
	sort.Slice(tasks, func(i, j int) bool {
		if tasks[i].Priority != tasks[j].Priority {
			return tasks[i].Priority > tasks[j].Priority
		}
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})
	return tasks, nil
}

func (m *Memory) CreateTask(_ context.Context, t models.Task) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkFail("CreateTask"); err != nil {
		return "", err
	}
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if t.Status == "" {
		t.Status = models.TaskStatusBacklog
	}
	t.CreatedAt = m.next()
	t.UpdatedAt = t.CreatedAt
	m.tasks[t.ID] = t
	return t.ID, nil
}

func (m *Memory) UpdateTaskStatus(_ context.Context, id string, status models.TaskStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkFail("UpdateTaskStatus"); err != nil {
		return err
	}
	t, ok := m.tasks[id]
	if !ok {
		return fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	t.Status = status
	t.UpdatedAt = m.next()
	m.tasks[id] = t
	return nil
}

// TaskStatus is a test helper returning the task's current status.
func (m *Memory) TaskStatus(id string) (models.TaskStatus, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	return t.Status, ok
}

// --- Messages ---

func (m *Memory) CreateMessage(_ context.Context, from, to, content string, kind models.MessageKind) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkFail("CreateMessage"); err != nil {
		return "", err
	}
	msg := models.Message{
		ID:        uuid.New().String(),
		From:      from,
		To:        to,
		Content:   content,
		Kind:      kind,
		CreatedAt: m.next(),
	}
	m.messages = append(m.messages, msg)
	return msg.ID, nil
}

func (m *Memory) ListRecentMessages(_ context.Context, limit int) ([]models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	msgs := make([]models.Message, len(m.messages))
	copy(msgs, m.messages)
	// Newest first.
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[:limit]
	}
	return msgs, nil
}

// Messages is a test helper returning all messages, oldest first.
func (m *Memory) Messages() []models.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	msgs := make([]models.Message, len(m.messages))
	copy(msgs, m.messages)
	return msgs
}

// --- Activity log ---

func (m *Memory) LogActivity(_ context.Context, workerID, action string, details map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkFail("LogActivity"); err != nil {
		return err
	}
	m.activity = append(m.activity, Activity{
		ID:        uuid.New().String(),
		WorkerID:  workerID,
		Action:    action,
		Details:   details,
		CreatedAt: m.next(),
	})
	return nil
}

func (m *Memory) ListActivity(_ context.Context, limit int) ([]Activity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entries := make([]Activity, len(m.activity))
	copy(entries, m.activity)
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// Activity is a test helper returning all entries, oldest first.
func (m *Memory) ActivityEntries() []Activity {
	m.mu.Lock()
	defer m.mu.Unlock()
	entries := make([]Activity, len(m.activity))
	copy(entries, m.activity)
	return entries
}

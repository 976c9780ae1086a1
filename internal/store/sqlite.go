package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/crewgrid/crewgrid/pkg/models"
)

// DB wraps an SQLite database connection with crewgrid operations.
type DB struct {
	conn *sql.DB
	path string
	mu   sync.Mutex
}

// Open opens an SQLite database at the given path, creating parent
// directories as needed. WAL mode is enabled for concurrent reads.
func Open(path string) (*DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	return &DB{conn: conn, path: path}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.conn.Close()
}

// Path returns the path to the database file.
func (db *DB) Path() string {
	return db.path
}

// Migrate applies the schema. Statements are idempotent so Migrate is
// safe to call on every startup.
func (db *DB) Migrate() error {
	db.mu.Lock()
	defer db.mu.Unlock()

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS workers (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT '',
			room TEXT NOT NULL DEFAULT 'Desks',
			status TEXT NOT NULL DEFAULT 'Idle',
			current_task TEXT NOT NULL DEFAULT '',
			note TEXT NOT NULL DEFAULT '',
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'Backlog',
			priority INTEGER NOT NULL DEFAULT 0,
			created_by TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS task_assignments (
			task_id TEXT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
			worker_id TEXT NOT NULL,
			PRIMARY KEY (task_id, worker_id)
		)`,
		`CREATE TABLE IF NOT EXISTS messages (
			id TEXT PRIMARY KEY,
			from_id TEXT NOT NULL,
			to_id TEXT NOT NULL,
			content TEXT NOT NULL,
			kind TEXT NOT NULL DEFAULT 'chat',
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS activity_log (
			id TEXT PRIMARY KEY,
			worker_id TEXT NOT NULL,
			action TEXT NOT NULL,
			details TEXT NOT NULL DEFAULT '{}',
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_assignments_worker ON task_assignments(worker_id)`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_created ON messages(created_at)`,
	}
	for _, stmt := range stmts {
		if _, err := db.conn.Exec(stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// --- Workers ---

// GetWorker fetches a single worker by id.
func (db *DB) GetWorker(ctx context.Context, id string) (*models.Worker, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT id, name, role, room, status, current_task, note, updated_at
		 FROM workers WHERE id = ?`, id)
	var w models.Worker
	err := row.Scan(&w.ID, &w.Name, &w.Role, &w.Room, &w.Status, &w.CurrentTask, &w.Note, &w.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("worker %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get worker: %w", err)
	}
	return &w, nil
}

// ListWorkers returns all workers ordered by name.
func (db *DB) ListWorkers(ctx context.Context) ([]models.Worker, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, name, role, room, status, current_task, note, updated_at
		 FROM workers ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list workers: %w", err)
	}
	defer rows.Close()

	var workers []models.Worker
	for rows.Next() {
		var w models.Worker
		if err := rows.Scan(&w.ID, &w.Name, &w.Role, &w.Room, &w.Status, &w.CurrentTask, &w.Note, &w.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan worker: %w", err)
		}
		workers = append(workers, w)
	}
	return workers, rows.Err()
}

// UpsertWorker creates the worker or refreshes its roster fields.
func (db *DB) UpsertWorker(ctx context.Context, w models.Worker) error {
	if w.Room == "" {
		w.Room = models.RoomDesks
	}
	if w.Status == "" {
		w.Status = models.StatusIdle
	}
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO workers (id, name, role, room, status, updated_at)
		 VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			role = excluded.role,
			updated_at = CURRENT_TIMESTAMP`,
		w.ID, w.Name, w.Role, w.Room, w.Status)
	if err != nil {
		return fmt.Errorf("upsert worker: %w", err)
	}
	return nil
}

// UpdateWorker applies the non-nil fields of upd to a worker.
func (db *DB) UpdateWorker(ctx context.Context, id string, upd models.WorkerUpdate) error {
	var sets []string
	var args []any
	if upd.Room != nil {
		sets = append(sets, "room = ?")
		args = append(args, *upd.Room)
	}
	if upd.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, *upd.Status)
	}
	if upd.CurrentTask != nil {
		sets = append(sets, "current_task = ?")
		args = append(args, *upd.CurrentTask)
	}
	if upd.Note != nil {
		sets = append(sets, "note = ?")
		args = append(args, *upd.Note)
	}
	if len(sets) == 0 {
		return nil
	}
	sets = append(sets, "updated_at = CURRENT_TIMESTAMP")
	args = append(args, id)

	res, err := db.conn.ExecContext(ctx,
		"UPDATE workers SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return fmt.Errorf("update worker: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("worker %s: %w", id, ErrNotFound)
	}
	return nil
}

// BulkUpdateWorkers moves every worker to the given status and room.
func (db *DB) BulkUpdateWorkers(ctx context.Context, status models.WorkerStatus, room models.Room) error {
	_, err := db.conn.ExecContext(ctx,
		`UPDATE workers SET status = ?, room = ?, current_task = '', updated_at = CURRENT_TIMESTAMP`,
		status, room)
	if err != nil {
		return fmt.Errorf("bulk update workers: %w", err)
	}
	return nil
}

// --- Tasks ---

// GetTask fetches a single task with its assignees.
func (db *DB) GetTask(ctx context.Context, id string) (*models.Task, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT id, title, description, status, priority, created_by, created_at, updated_at
		 FROM tasks WHERE id = ?`, id)
	var t models.Task
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.Priority, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	assignees, err := db.taskAssignees(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	t.Assignees = assignees
	return &t, nil
}

func (db *DB) taskAssignees(ctx context.Context, taskID string) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT worker_id FROM task_assignments WHERE task_id = ? ORDER BY worker_id`, taskID)
	if err != nil {
		return nil, fmt.Errorf("task assignees: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan assignee: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListTasksForWorker returns the worker's tasks, priority descending
// then creation time descending. The dispatcher drains head-first.
func (db *DB) ListTasksForWorker(ctx context.Context, workerID string) ([]models.Task, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT t.id, t.title, t.description, t.status, t.priority, t.created_by, t.created_at, t.updated_at
		 FROM tasks t
		 JOIN task_assignments ta ON t.id = ta.task_id
		 WHERE ta.worker_id = ?
		 ORDER BY t.priority DESC, t.created_at DESC`, workerID)
	if err != nil {
		return nil, fmt.Errorf("list tasks for worker: %w", err)
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		var t models.Task
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.Priority, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range tasks {
		assignees, err := db.taskAssignees(ctx, tasks[i].ID)
		if err != nil {
			return nil, err
		}
		tasks[i].Assignees = assignees
	}
	return tasks, nil
}

// CreateTask persists the task and its assignments, returning the id.
func (db *DB) CreateTask(ctx context.Context, t models.Task) (string, error) {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if t.Status == "" {
		t.Status = models.TaskStatusBacklog
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO tasks (id, title, description, status, priority, created_by)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, t.Title, t.Description, t.Status, t.Priority, t.CreatedBy)
	if err != nil {
		return "", fmt.Errorf("insert task: %w", err)
	}
	for _, workerID := range t.Assignees {
		_, err = tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO task_assignments (task_id, worker_id) VALUES (?, ?)`,
			t.ID, workerID)
		if err != nil {
			return "", fmt.Errorf("insert assignment: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit task: %w", err)
	}
	return t.ID, nil
}

// UpdateTaskStatus moves a task to the given status.
func (db *DB) UpdateTaskStatus(ctx context.Context, id string, status models.TaskStatus) error {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE tasks SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		status, id)
	if err != nil {
		return fmt.Errorf("update task status: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	return nil
}

// --- Messages ---

// CreateMessage appends a message and returns its id.
func (db *DB) CreateMessage(ctx context.Context, from, to, content string, kind models.MessageKind) (string, error) {
	id := uuid.New().String()
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO messages (id, from_id, to_id, content, kind) VALUES (?, ?, ?, ?, ?)`,
		id, from, to, content, kind)
	if err != nil {
		return "", fmt.Errorf("create message: %w", err)
	}
	return id, nil
}

// ListRecentMessages returns up to limit messages, newest first.
func (db *DB) ListRecentMessages(ctx context.Context, limit int) ([]models.Message, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, from_id, to_id, content, kind, created_at
		 FROM messages ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var msgs []models.Message
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.From, &m.To, &m.Content, &m.Kind, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// --- Activity log ---

// LogActivity appends an activity entry for a worker or the system.
func (db *DB) LogActivity(ctx context.Context, workerID, action string, details map[string]any) error {
	encoded := "{}"
	if len(details) > 0 {
		raw, err := json.Marshal(details)
		if err != nil {
			return fmt.Errorf("encode activity details: %w", err)
		}
		encoded = string(raw)
	}
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO activity_log (id, worker_id, action, details) VALUES (?, ?, ?, ?)`,
		uuid.New().String(), workerID, action, encoded)
	if err != nil {
		return fmt.Errorf("log activity: %w", err)
	}
	return nil
}

// ListActivity returns up to limit activity entries, newest first.
func (db *DB) ListActivity(ctx context.Context, limit int) ([]Activity, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, worker_id, action, details, created_at
		 FROM activity_log ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	defer rows.Close()

	var entries []Activity
	for rows.Next() {
		var a Activity
		var raw string
		if err := rows.Scan(&a.ID, &a.WorkerID, &a.Action, &raw, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		if raw != "" && raw != "{}" {
			if err := json.Unmarshal([]byte(raw), &a.Details); err != nil {
				return nil, fmt.Errorf("decode activity details: %w", err)
			}
		}
		entries = append(entries, a)
	}
	return entries, rows.Err()
}

package specialist

import (
	"context"
	"strings"
)

// Subtask is one unit of delegated work in a plan.
type Subtask struct {
	// Worker is the id of the specialist the subtask is assigned to.
	Worker string
	// Title is the task title.
	Title string
	// Priority orders the task in the worker's backlog.
	Priority int
}

// Plan is the coordinator capability's output for one goal: zero or
// more subtasks to delegate, an optional direct reply when the goal
// needs no delegation, and an optional cross-worker meeting to
// convene in the War Room.
type Plan struct {
	Subtasks []Subtask
	Response string
	// MeetingWorkers lists the worker ids to pull into a War Room
	// meeting about the goal; empty means no meeting.
	MeetingWorkers []string
}

// Planner is the coordinator's opaque capability: it decides how a
// goal decomposes. Implementations may suspend on external calls.
type Planner interface {
	Plan(ctx context.Context, goal string) (Plan, error)
}

// PlannerFunc adapts a function to the Planner interface.
type PlannerFunc func(ctx context.Context, goal string) (Plan, error)

// Plan implements Planner.
func (f PlannerFunc) Plan(ctx context.Context, goal string) (Plan, error) {
	return f(ctx, goal)
}

// keywordRoutes maps goal keywords to the specialist that handles
// them. First match wins, scanned in the order below.
var keywordRoutes = []struct {
	keywords []string
	worker   string
	title    string
	priority int
}{
	{[]string{"health", "recover", "diagnose"}, "healthmonitor", "Run a system health check", 5},
	{[]string{"research", "investigate", "analyze"}, "researcher", "Deep research", 3},
	{[]string{"crawl", "trend", "scan the web"}, "crawler", "Crawl for trending topics", 2},
	{[]string{"design", "mockup", "visual"}, "designer", "Produce a design draft", 2},
	{[]string{"inbox", "email", "communication"}, "comms", "Process inbound communications", 2},
	{[]string{"archive", "organize", "knowledge base"}, "archivist", "Organize the knowledge base", 1},
	{[]string{"draft", "content", "post", "write"}, "content", "Draft content", 2},
}

// RulePlanner is the built-in keyword planner. It stands in for the
// external planning capability: a goal matching a routing keyword is
// delegated to that specialist with the goal folded into the title;
// anything else gets a direct reply and no delegation.
type RulePlanner struct{}

// meetingWorkers is who the built-in planner convenes when a goal
// asks for a meeting.
var meetingWorkers = []string{"researcher", "content"}

// Plan implements Planner.
func (RulePlanner) Plan(_ context.Context, goal string) (Plan, error) {
	lower := strings.ToLower(goal)
	if strings.Contains(lower, "meeting") || strings.Contains(lower, "sync up") {
		return Plan{
			MeetingWorkers: meetingWorkers,
			Response:       "Meeting scheduled in the War Room: " + goal,
		}, nil
	}
	for _, route := range keywordRoutes {
		for _, kw := range route.keywords {
			if strings.Contains(lower, kw) {
				return Plan{Subtasks: []Subtask{{
					Worker:   route.worker,
					Title:    route.title + ": " + goal,
					Priority: route.priority,
				}}}, nil
			}
		}
	}
	return Plan{Response: "No delegation needed for: " + goal}, nil
}

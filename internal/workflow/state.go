// Package workflow implements the directed workflow graph that routes a
// single goal through the specialist roster. One Invoke is one
// deterministic pass from the coordinator node to a terminal marker.
package workflow

// Draft is one piece of content produced by the content specialist.
type Draft struct {
	Platform string `json:"platform"`
	Topic    string `json:"topic"`
	Body     string `json:"body"`
}

// CrawlResult is one trending finding produced by the crawler.
type CrawlResult struct {
	Topic   string `json:"topic"`
	Summary string `json:"summary"`
	Source  string `json:"source,omitempty"`
}

// HealthReport summarizes one health-monitor pass over the roster.
type HealthReport struct {
	Online       int    `json:"online"`
	Errored      int    `json:"errored"`
	Recovered    int    `json:"recovered"`
	SystemStatus string `json:"system_status"`
	Diagnosis    string `json:"diagnosis"`
}

// Empty returns true if the report has not been filled in.
func (r HealthReport) Empty() bool {
	return r == HealthReport{}
}

// DesignOutput is the designer specialist's result.
type DesignOutput struct {
	Description string `json:"description"`
	Approval    string `json:"approval,omitempty"`
}

// State is the per-invocation value threaded through one graph pass.
// It is created fresh per invocation, passed by reference through every
// visited node, never shared across concurrent runs, and discarded when
// the run completes.
type State struct {
	// Goal is the triggering goal text.
	Goal string
	// ActiveTasks lists the titles of tasks active in this run, in order.
	ActiveTasks []string
	// Delegated lists the worker ids the coordinator delegated to, in order.
	Delegated []string
	// DelegatedTaskIDs lists the created task ids, parallel to Delegated.
	DelegatedTaskIDs []string

	// Findings holds the researcher's report fields, keyed by field name.
	Findings map[string]string
	// Drafts holds content drafts produced in this run.
	Drafts []Draft
	// CrawlResults holds crawler findings produced in this run.
	CrawlResults []CrawlResult
	// Health holds the health-monitor report, zero when no check ran.
	Health HealthReport
	// Design holds the designer output, zero when no design ran.
	Design DesignOutput
	// CommsProcessed counts communication items handled in this run.
	CommsProcessed int
	// EntriesOrganized counts knowledge-base entries the archivist filed.
	EntriesOrganized int

	// Err holds the first specialist failure of this run, empty for none.
	Err string
}

// NewState creates a fresh state for one graph invocation of goal.
func NewState(goal string) *State {
	s := &State{
		Goal:     goal,
		Findings: make(map[string]string),
	}
	if goal != "" {
		s.ActiveTasks = []string{goal}
	}
	return s
}

// Failed returns true if a specialist recorded an error in this run.
func (s *State) Failed() bool {
	return s.Err != ""
}

package dispatch

import (
	"fmt"
	"strings"

	"github.com/crewgrid/crewgrid/internal/workflow"
)

// paraphrase renders a worker-kind-specific status line for the user.
// Returning "" falls back to the generic completion line.
type paraphrase func(taskLabel string, result *workflow.State) string

// completionParaphrases is the exhaustive worker-kind dispatch table.
// Adding a specialist kind means adding an entry here; ids without one
// get the generic line.
var completionParaphrases = map[string]paraphrase{
	"healthmonitor": func(label string, result *workflow.State) string {
		return fmt.Sprintf(
			"Status update: Health Monitor completed '%s'. System status: %s. Recovered workers: %d. Diagnosis: %s",
			label, orUnknown(result.Health.SystemStatus), result.Health.Recovered,
			cleanText(orDefault(result.Health.Diagnosis, "No diagnosis")))
	},
	"crawler": func(label string, result *workflow.State) string {
		count := len(result.CrawlResults)
		if count > 0 && result.CrawlResults[0].Topic != "" {
			return fmt.Sprintf("Status update: Crawler completed '%s' with %d findings. Top finding: %s.",
				label, count, cleanText(result.CrawlResults[0].Topic))
		}
		return fmt.Sprintf("Status update: Crawler completed '%s' with %d findings.", label, count)
	},
	"researcher": func(label string, result *workflow.State) string {
		title := cleanText(result.Findings["title"])
		if title == "" {
			return ""
		}
		return fmt.Sprintf("Status update: Researcher completed '%s'. Report: %s.", label, title)
	},
	"content": func(label string, result *workflow.State) string {
		return fmt.Sprintf("Status update: Content completed '%s' and produced %d content draft(s).",
			label, len(result.Drafts))
	},
	"archivist": func(label string, result *workflow.State) string {
		return fmt.Sprintf("Status update: Archivist completed '%s' and organized %d knowledge-base entries.",
			label, result.EntriesOrganized)
	},
	"comms": func(label string, result *workflow.State) string {
		return fmt.Sprintf("Status update: Comms completed '%s' and processed %d communication item(s).",
			label, result.CommsProcessed)
	},
}

// completionMessage builds the user-facing success line for a worker.
func completionMessage(workerID, taskTitle string, result *workflow.State) string {
	label := taskTitle
	if label == "" {
		label = "delegated task"
	}
	if fn, ok := completionParaphrases[workerID]; ok {
		if msg := fn(label, result); msg != "" {
			return msg
		}
	}
	return fmt.Sprintf("Status update: %s completed '%s'.", displayName(workerID), label)
}

// failureMessage builds the user-facing failure line for a worker.
func failureMessage(workerID, taskTitle, errText string) string {
	label := taskTitle
	if label == "" {
		label = "delegated task"
	}
	return fmt.Sprintf("Status update: %s could not complete '%s'. Error: %s",
		displayName(workerID), label, cleanText(errText))
}

// displayName renders a worker id as a human name, e.g.
// "healthmonitor" -> "Healthmonitor", "viral_engineer" -> "Viral Engineer".
func displayName(workerID string) string {
	words := strings.Split(strings.ReplaceAll(workerID, "_", " "), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// cleanText collapses all whitespace runs to single spaces.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func orUnknown(s string) string {
	return orDefault(s, "unknown")
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

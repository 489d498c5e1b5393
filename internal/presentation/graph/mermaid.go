// Package graph renders act step graphs as Mermaid flowcharts.
package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/gitquest/pkg/domain"
)

// Overlay highlights a session's progress on the graph.
type Overlay struct {
	Visited []string
	Current string
}

// OverlayFor builds the overlay of a lesson state.
func OverlayFor(state *domain.LessonState) *Overlay {
	if state == nil {
		return nil
	}
	return &Overlay{Visited: state.History, Current: state.CurrentStepID}
}

// GenerateMermaid produces a flowchart of the steps of an act.
// Shapes follow the step type:
//   - entry: ((circle))
//   - terminal: [/parallelogram/]
//   - editor: [[subroutine]]
//   - complete: ([stadium])
//   - other: [rectangle]
func GenerateMermaid(act *domain.Act, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	completes := false
	for _, step := range act.Steps {
		id := sanitizeID(step.ID)

		opener, closer := "[", "]"
		switch {
		case step.ID == act.Entry:
			opener, closer = "((", "))"
		case step.Type == domain.StepTerminal:
			opener, closer = "[/", "/]"
		case step.Type == domain.StepEditor:
			opener, closer = "[[", "]]"
		case step.Type == domain.StepComplete:
			opener, closer = "([", "])"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s <br/> %s\"%s\n", id, opener, step.ID, step.Type, closer)

		for _, t := range step.Transitions {
			label := string(t.On)
			if t.MinFailures > 0 {
				label = fmt.Sprintf("%s x%d", label, t.MinFailures)
			}
			arrow := "-->"
			if t.On == domain.OutcomeFailure {
				arrow = "-.->"
			}
			completes = completes || t.To == domain.ActComplete
			fmt.Fprintf(&sb, "    %s %s|%s| %s\n", id, arrow, label, sanitizeID(t.To))
		}
		if step.Next != "" {
			completes = completes || step.Next == domain.ActComplete
			fmt.Fprintf(&sb, "    %s --> %s\n", id, sanitizeID(step.Next))
		}
	}
	if completes {
		fmt.Fprintf(&sb, "    %s([\"%s\"])\n", sanitizeID(domain.ActComplete), domain.ActComplete)
	}

	if overlay != nil {
		sb.WriteString("\n    %% progress\n")
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, v := range overlay.Visited {
			id := sanitizeID(v)
			if id == "" || seen[id] {
				continue
			}
			seen[id] = true
			fmt.Fprintf(&sb, "    class %s visited;\n", id)
		}
		if overlay.Current != "" {
			fmt.Fprintf(&sb, "    class %s current;\n", sanitizeID(overlay.Current))
		}
	}
	return sb.String()
}

var idReplacer = strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_", " ", "_")

func sanitizeID(id string) string {
	return idReplacer.Replace(id)
}

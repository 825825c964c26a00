package publish

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"time"

	"associate-os/internal/model"
	"associate-os/internal/mutate"
	"associate-os/internal/statusutil"
	"associate-os/internal/tree"
)

type RenderOptions struct {
	IncludeDone bool
}

func RenderTaskMarkdown(doc model.AppData, taskID string) (string, error) {
	task, _ := doc.FindTask(strings.TrimSpace(taskID))
	if task == nil {
		return "", fmt.Errorf("task not found: %s", taskID)
	}

	var buf bytes.Buffer
	writeLn := func(s string) {
		buf.WriteString(s)
		buf.WriteString("\n")
	}

	writeLn("# " + strings.TrimSpace(task.Title))
	writeLn("")

	writeLn("## Meta")
	writeLn("")
	writeLn("- ID: " + task.ID)
	if strings.TrimSpace(task.MatterRef) != "" {
		writeLn("- Matter: " + strings.TrimSpace(task.MatterRef))
	}
	writeLn("- Status: " + statusutil.Label(task.Status))
	writeLn("- Priority: " + string(task.Priority))
	writeLn("- Due: " + task.DueDate)
	if task.FlaggedDate != nil && strings.TrimSpace(*task.FlaggedDate) != "" {
		writeLn("- Follow up: " + strings.TrimSpace(*task.FlaggedDate))
	}
	if task.TimeTracked > 0 {
		writeLn("- Time tracked: " + formatTracked(task.TimeTracked))
	}
	if task.CreatedAt != "" {
		writeLn("- Created: " + task.CreatedAt)
	}

	if len(task.Dependencies) > 0 {
		writeLn("")
		writeLn("## Depends on")
		writeLn("")
		for _, id := range task.Dependencies {
			if dep, _ := doc.FindTask(id); dep != nil {
				writeLn(fmt.Sprintf("- %s (%s)", strings.TrimSpace(dep.Title), id))
			} else {
				writeLn("- " + id + " (missing)")
			}
		}
	}

	if len(task.Subtasks) > 0 {
		writeLn("")
		writeLn("## Checklist")
		writeLn("")
		tree.Walk(task.Subtasks, func(n *model.Subtask, depth int) bool {
			box := "[ ]"
			if n.Done {
				box = "[x]"
			}
			line := strings.Repeat("  ", depth) + "- " + box + " " + strings.TrimSpace(n.Title)
			if n.Type != "" && n.Type != model.SubtaskGeneric {
				line += " _(" + strings.ToLower(string(n.Type)) + ")_"
			}
			writeLn(line)
			return true
		})
	}

	if edges := mutate.Edges(task); len(edges) > 0 {
		titles := map[string]string{}
		tree.Walk(task.Subtasks, func(n *model.Subtask, _ int) bool {
			titles[n.ID] = strings.TrimSpace(n.Title)
			return true
		})
		writeLn("")
		writeLn("## Workflow")
		writeLn("")
		for _, e := range edges {
			to, ok := titles[e.To]
			if !ok {
				to = e.To + " (missing)"
			}
			writeLn("- " + titles[e.From] + " → " + to)
		}
	}

	return buf.String(), nil
}

// formatTracked renders whole seconds as a duration, e.g. 1h25m0s.
func formatTracked(seconds float64) string {
	return (time.Duration(seconds) * time.Second).String()
}

func RenderMatterIndexMarkdown(matterRef string, tasks []*model.Task, opt RenderOptions) string {
	var buf bytes.Buffer
	writeLn := func(s string) {
		buf.WriteString(s)
		buf.WriteString("\n")
	}

	writeLn("# " + matterRef)
	writeLn("")

	byStatus := map[model.Status][]*model.Task{}
	for _, t := range tasks {
		if statusutil.IsEndState(t.Status) && !opt.IncludeDone {
			continue
		}
		byStatus[t.Status] = append(byStatus[t.Status], t)
	}

	for _, st := range []model.Status{model.StatusTodo, model.StatusWaiting, model.StatusReview, model.StatusDone} {
		group := byStatus[st]
		if len(group) == 0 {
			continue
		}
		sort.SliceStable(group, func(i, j int) bool { return group[i].DueDate < group[j].DueDate })
		writeLn("## " + statusutil.Label(st))
		writeLn("")
		for _, t := range group {
			fmt.Fprintf(&buf, "- [%s](tasks/%s.md) (due %s)\n", strings.TrimSpace(t.Title), t.ID, t.DueDate)
		}
		writeLn("")
	}

	return buf.String()
}

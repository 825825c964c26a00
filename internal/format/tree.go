package format

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"associate-os/internal/model"
)

var (
	styleTitle = lipgloss.NewStyle().Bold(true)
	styleMuted = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "240", Dark: "245"})
	styleDone  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "28", Dark: "78"})
	styleEdge  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "27", Dark: "62"})
)

// RenderTaskTree draws a task and its subtask forest with box-drawing
// connectors. Each node shows its checkbox, title, type (when not GENERIC)
// and outgoing next edges.
func RenderTaskTree(t *model.Task) string {
	var b strings.Builder
	b.WriteString(styleTitle.Render(t.Title))
	meta := fmt.Sprintf("[%s · %s · due %s]", t.Status, t.Priority, t.DueDate)
	b.WriteString("  " + styleMuted.Render(meta) + "\n")
	renderForest(&b, t.Subtasks, "")
	return b.String()
}

func renderForest(b *strings.Builder, forest []*model.Subtask, prefix string) {
	for i, n := range forest {
		last := i == len(forest)-1
		branch, indent := "├── ", "│   "
		if last {
			branch, indent = "└── ", "    "
		}
		b.WriteString(prefix + branch + renderNode(n) + "\n")
		renderForest(b, n.Subtasks, prefix+indent)
	}
}

func renderNode(n *model.Subtask) string {
	box := "[ ]"
	title := n.Title
	if n.Done {
		box = styleDone.Render("[x]")
		title = styleMuted.Render(title)
	}
	line := box + " " + title
	if n.Type != "" && n.Type != model.SubtaskGeneric {
		line += " " + styleMuted.Render("("+string(n.Type)+")")
	}
	if len(n.Next) > 0 {
		line += " " + styleEdge.Render("→ "+strings.Join(n.Next, ", "))
	}
	return line
}

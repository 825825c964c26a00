package publish

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"associate-os/internal/model"
)

func publishDoc() model.AppData {
	flag := "2024-04-10"
	return model.AppData{
		Tasks: []*model.Task{
			{
				ID:          "t1",
				Title:       "Draft brief",
				MatterRef:   "M-100",
				DueDate:     "2024-05-01",
				FlaggedDate: &flag,
				Status:      model.StatusReview,
				Priority:    model.PriorityHigh,
				CreatedAt:   "2024-04-02T10:00:00.000Z",
				TimeTracked: 5400,
				Subtasks: []*model.Subtask{
					{ID: "a", Title: "Research", Type: model.SubtaskResearch, Next: []string{"c"}, Subtasks: []*model.Subtask{
						{ID: "b", Title: "Find sources", Done: true, Type: model.SubtaskGeneric},
					}},
					{ID: "c", Title: "Write", Type: model.SubtaskDocument, Next: []string{"gone"}},
				},
				Dependencies: []string{"t2", "t-missing"},
			},
			{ID: "t2", Title: "Collect evidence", MatterRef: "M-100", DueDate: "2024-04-20", Status: model.StatusDone, Priority: model.PriorityMedium},
			{ID: "t3", Title: "Other matter", MatterRef: "A/B", DueDate: "2024-04-20", Status: model.StatusTodo, Priority: model.PriorityLow},
		},
		Settings: model.Settings{MyShortsign: "ME"},
	}
}

func TestRenderTaskMarkdown_IncludesChecklistAndWorkflow(t *testing.T) {
	t.Parallel()

	md, err := RenderTaskMarkdown(publishDoc(), "t1")
	if err != nil {
		t.Fatalf("RenderTaskMarkdown: %v", err)
	}
	for _, want := range []string{
		"# Draft brief",
		"- Matter: M-100",
		"- Status: Review",
		"- Follow up: 2024-04-10",
		"- Time tracked: 1h30m0s",
		"- Collect evidence (t2)",
		"- t-missing (missing)",
		"- [ ] Research _(research)_",
		"  - [x] Find sources",
		"- Research → Write",
		"- Write → gone (missing)",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("expected %q in:\n%s", want, md)
		}
	}

	if _, err := RenderTaskMarkdown(publishDoc(), "nope"); err == nil {
		t.Fatalf("expected not found error")
	}
}

func TestRenderMatterIndexMarkdown_GroupsByStatus(t *testing.T) {
	t.Parallel()

	doc := publishDoc()
	tasks := []*model.Task{doc.Tasks[0], doc.Tasks[1]}

	md := RenderMatterIndexMarkdown("M-100", tasks, RenderOptions{})
	if !strings.Contains(md, "## Review") || !strings.Contains(md, "[Draft brief](tasks/t1.md)") {
		t.Fatalf("unexpected index:\n%s", md)
	}
	if strings.Contains(md, "Collect evidence") {
		t.Fatalf("done tasks must be hidden by default:\n%s", md)
	}

	md = RenderMatterIndexMarkdown("M-100", tasks, RenderOptions{IncludeDone: true})
	if !strings.Contains(md, "## Done") || !strings.Contains(md, "Collect evidence") {
		t.Fatalf("expected done section:\n%s", md)
	}
}

func TestWriteMatter_WritesIndexAndTasks(t *testing.T) {
	t.Parallel()

	to := t.TempDir()
	res, err := WriteMatter(publishDoc(), "M-100", to, WriteOptions{IncludeDone: true})
	if err != nil {
		t.Fatalf("WriteMatter: %v", err)
	}
	if len(res.Written) != 3 {
		t.Fatalf("expected 3 written files; got %d (%v)", len(res.Written), res.Written)
	}
	if _, err := os.Stat(filepath.Join(to, "matters", "M-100", "index.md")); err != nil {
		t.Fatalf("stat index.md: %v", err)
	}
	if _, err := os.Stat(filepath.Join(to, "matters", "M-100", "tasks", "t2.md")); err != nil {
		t.Fatalf("stat t2.md: %v", err)
	}

	if _, err := WriteMatter(publishDoc(), "M-100", to, WriteOptions{}); err == nil {
		t.Fatalf("expected overwrite refusal")
	}
	if _, err := WriteMatter(publishDoc(), "M-100", to, WriteOptions{Overwrite: true}); err != nil {
		t.Fatalf("WriteMatter overwrite: %v", err)
	}
}

func TestWriteMatter_SanitizesDirectoryName(t *testing.T) {
	t.Parallel()

	to := t.TempDir()
	if _, err := WriteMatter(publishDoc(), "A/B", to, WriteOptions{}); err != nil {
		t.Fatalf("WriteMatter: %v", err)
	}
	if _, err := os.Stat(filepath.Join(to, "matters", "A-B", "index.md")); err != nil {
		t.Fatalf("stat index.md: %v", err)
	}
	if _, err := WriteMatter(publishDoc(), "M-404", to, WriteOptions{}); err == nil {
		t.Fatalf("expected error for unknown matter")
	}
}

func TestWriteTask(t *testing.T) {
	t.Parallel()

	to := t.TempDir()
	res, err := WriteTask(publishDoc(), "t1", to, WriteOptions{})
	if err != nil {
		t.Fatalf("WriteTask: %v", err)
	}
	b, err := os.ReadFile(res.Written[0])
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.HasPrefix(string(b), "# Draft brief\n") {
		t.Fatalf("unexpected file:\n%s", b)
	}
}

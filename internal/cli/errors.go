package cli

import (
	"fmt"

	"associate-os/internal/model"
	"associate-os/internal/tree"
)

type notFoundError struct {
	kind string
	id   string
}

func (e notFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.kind, e.id)
}

func errNotFound(kind, id string) error {
	return notFoundError{kind: kind, id: id}
}

// The mutation layer ignores unknown ids; the CLI reports them instead.

func requireTask(doc model.AppData, id string) (*model.Task, error) {
	t, _ := doc.FindTask(id)
	if t == nil {
		return nil, errNotFound("task", id)
	}
	return t, nil
}

func requireSubtask(doc model.AppData, taskID, subtaskID string) (*model.Task, *model.Subtask, error) {
	t, err := requireTask(doc, taskID)
	if err != nil {
		return nil, nil, err
	}
	n, ok := tree.Find(t.Subtasks, subtaskID)
	if !ok {
		return nil, nil, errNotFound("subtask", subtaskID)
	}
	return t, n, nil
}

func requireMember(doc model.AppData, id string) (model.TeamMember, error) {
	m, idx := doc.Settings.FindMember(id)
	if idx < 0 {
		return model.TeamMember{}, errNotFound("team member", id)
	}
	return m, nil
}

func requireResource(doc model.AppData, id string) (model.Resource, error) {
	r, idx := doc.FindResource(id)
	if idx < 0 {
		return model.Resource{}, errNotFound("resource", id)
	}
	return r, nil
}

// Package tracker exposes the named operations of the task tracker. Each call
// applies one pure mutation to the store's current document; ids and
// timestamps come from the tracker so callers only pass user input.
package tracker

import (
	"context"
	"time"

	"associate-os/internal/model"
	"associate-os/internal/mutate"
	"associate-os/internal/store"
	"associate-os/internal/tree"
)

type Tracker struct {
	docs  *store.Documents
	newID func() string
	now   func() time.Time
}

type Option func(*Tracker)

func WithIDs(fn func() string) Option {
	return func(t *Tracker) { t.newID = fn }
}

func WithClock(fn func() time.Time) Option {
	return func(t *Tracker) { t.now = fn }
}

func New(docs *store.Documents, opts ...Option) *Tracker {
	t := &Tracker{docs: docs, newID: store.NewID, now: time.Now}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Tracker) Documents() *store.Documents { return t.docs }

func (t *Tracker) Current() model.AppData { return t.docs.Current() }

func (t *Tracker) apply(ctx context.Context, fn func(model.AppData) (model.AppData, error)) error {
	_, err := t.docs.Apply(ctx, fn)
	return err
}

// Tasks

// AddTask creates a TODO task at the top of the list and returns it.
func (t *Tracker) AddTask(ctx context.Context, title, matterRef, dueDate string, prio model.Priority) (*model.Task, error) {
	id := t.newID()
	doc, err := t.docs.Apply(ctx, func(d model.AppData) (model.AppData, error) {
		return mutate.AddTask(d, mutate.NewTask{
			ID:        id,
			Title:     title,
			MatterRef: matterRef,
			DueDate:   dueDate,
			Priority:  prio,
			CreatedAt: t.now(),
		})
	})
	if err != nil {
		return nil, err
	}
	task, _ := doc.FindTask(id)
	return task, nil
}

func (t *Tracker) UpdateTitle(ctx context.Context, taskID, title string) error {
	return t.apply(ctx, func(d model.AppData) (model.AppData, error) { return mutate.UpdateTitle(d, taskID, title) })
}

func (t *Tracker) UpdateDate(ctx context.Context, taskID, date string) error {
	return t.apply(ctx, func(d model.AppData) (model.AppData, error) { return mutate.UpdateDate(d, taskID, date) })
}

func (t *Tracker) MoveTask(ctx context.Context, taskID string, status model.Status) error {
	return t.apply(ctx, func(d model.AppData) (model.AppData, error) { return mutate.MoveTask(d, taskID, status) })
}

func (t *Tracker) SetPriority(ctx context.Context, taskID string, prio model.Priority) error {
	return t.apply(ctx, func(d model.AppData) (model.AppData, error) { return mutate.SetPriority(d, taskID, prio) })
}

// FlagTask sets the follow-up date; nil clears it.
func (t *Tracker) FlagTask(ctx context.Context, taskID string, date *string) error {
	return t.apply(ctx, func(d model.AppData) (model.AppData, error) { return mutate.FlagTask(d, taskID, date) })
}

func (t *Tracker) SetMatter(ctx context.Context, taskID, matterRef string) error {
	return t.apply(ctx, func(d model.AppData) (model.AppData, error) { return mutate.SetMatter(d, taskID, matterRef) })
}

func (t *Tracker) TrackTime(ctx context.Context, taskID string, seconds float64) error {
	return t.apply(ctx, func(d model.AppData) (model.AppData, error) { return mutate.TrackTime(d, taskID, seconds) })
}

func (t *Tracker) DeleteTask(ctx context.Context, taskID string) error {
	return t.apply(ctx, func(d model.AppData) (model.AppData, error) { return mutate.DeleteTask(d, taskID) })
}

func (t *Tracker) AddDependency(ctx context.Context, taskID, dependsOnID string) error {
	return t.apply(ctx, func(d model.AppData) (model.AppData, error) { return mutate.AddDependency(d, taskID, dependsOnID) })
}

func (t *Tracker) RemoveDependency(ctx context.Context, taskID, dependsOnID string) error {
	return t.apply(ctx, func(d model.AppData) (model.AppData, error) {
		return mutate.RemoveDependency(d, taskID, dependsOnID)
	})
}

// Subtasks

// AddSubtask appends a top-level subtask and returns its id, or "" when the task does not exist.
func (t *Tracker) AddSubtask(ctx context.Context, taskID, title string) (string, error) {
	node := mutate.NewSubtask(t.newID(), title)
	doc, err := t.docs.Apply(ctx, func(d model.AppData) (model.AppData, error) { return mutate.AddSubtask(d, taskID, node) })
	return insertedID(doc, taskID, node.ID), err
}

// AddSubSubtask nests a new subtask under parentID at any depth and returns
// its id, or "" when the task or parent does not exist.
func (t *Tracker) AddSubSubtask(ctx context.Context, taskID, parentID, title string) (string, error) {
	node := mutate.NewSubtask(t.newID(), title)
	doc, err := t.docs.Apply(ctx, func(d model.AppData) (model.AppData, error) {
		return mutate.AddSubSubtask(d, taskID, parentID, node)
	})
	return insertedID(doc, taskID, node.ID), err
}

func insertedID(doc model.AppData, taskID, id string) string {
	task, _ := doc.FindTask(taskID)
	if task == nil || !tree.Contains(task.Subtasks, id) {
		return ""
	}
	return id
}

func (t *Tracker) ToggleSubtask(ctx context.Context, taskID, subtaskID string) error {
	return t.apply(ctx, func(d model.AppData) (model.AppData, error) { return mutate.ToggleSubtask(d, taskID, subtaskID) })
}

func (t *Tracker) UpdateSubtaskTitle(ctx context.Context, taskID, subtaskID, title string) error {
	return t.apply(ctx, func(d model.AppData) (model.AppData, error) {
		return mutate.UpdateSubtaskTitle(d, taskID, subtaskID, title)
	})
}

func (t *Tracker) SetSubtaskType(ctx context.Context, taskID, subtaskID string, typ model.SubtaskType) error {
	return t.apply(ctx, func(d model.AppData) (model.AppData, error) {
		return mutate.SetSubtaskType(d, taskID, subtaskID, typ)
	})
}

func (t *Tracker) SetSubtaskPayload(ctx context.Context, taskID, subtaskID, payload string) error {
	return t.apply(ctx, func(d model.AppData) (model.AppData, error) {
		return mutate.SetSubtaskPayload(d, taskID, subtaskID, payload)
	})
}

func (t *Tracker) MoveSubtask(ctx context.Context, taskID, subtaskID string, x, y float64) error {
	return t.apply(ctx, func(d model.AppData) (model.AppData, error) { return mutate.MoveSubtask(d, taskID, subtaskID, x, y) })
}

func (t *Tracker) DeleteSubtask(ctx context.Context, taskID, subtaskID string) error {
	return t.apply(ctx, func(d model.AppData) (model.AppData, error) { return mutate.DeleteSubtask(d, taskID, subtaskID) })
}

func (t *Tracker) Connect(ctx context.Context, taskID, sourceID, targetID string) error {
	return t.apply(ctx, func(d model.AppData) (model.AppData, error) { return mutate.Connect(d, taskID, sourceID, targetID) })
}

func (t *Tracker) Disconnect(ctx context.Context, taskID, sourceID, targetID string) error {
	return t.apply(ctx, func(d model.AppData) (model.AppData, error) {
		return mutate.Disconnect(d, taskID, sourceID, targetID)
	})
}

// Settings and team

func (t *Tracker) SetShortsign(ctx context.Context, shortsign string) error {
	return t.apply(ctx, func(d model.AppData) (model.AppData, error) { return mutate.SetShortsign(d, shortsign) })
}

func (t *Tracker) SetDarkMode(ctx context.Context, on bool) error {
	return t.apply(ctx, func(d model.AppData) (model.AppData, error) { return mutate.SetDarkMode(d, on) })
}

func (t *Tracker) ToggleDarkMode(ctx context.Context) error {
	return t.apply(ctx, mutate.ToggleDarkMode)
}

func (t *Tracker) SetAuthenticated(ctx context.Context, ok bool) error {
	return t.apply(ctx, func(d model.AppData) (model.AppData, error) { return mutate.SetAuthenticated(d, ok) })
}

// AddTeamMember stores m under a fresh id and returns the id.
func (t *Tracker) AddTeamMember(ctx context.Context, m model.TeamMember) (string, error) {
	m.ID = t.newID()
	if err := t.apply(ctx, func(d model.AppData) (model.AppData, error) { return mutate.AddTeamMember(d, m) }); err != nil {
		return "", err
	}
	return m.ID, nil
}

func (t *Tracker) UpdateTeamMember(ctx context.Context, memberID string, p mutate.MemberPatch) error {
	return t.apply(ctx, func(d model.AppData) (model.AppData, error) { return mutate.UpdateTeamMember(d, memberID, p) })
}

func (t *Tracker) RemoveTeamMember(ctx context.Context, memberID string) error {
	return t.apply(ctx, func(d model.AppData) (model.AppData, error) { return mutate.RemoveTeamMember(d, memberID) })
}

func (t *Tracker) SetTeamLeader(ctx context.Context, memberID string) error {
	return t.apply(ctx, func(d model.AppData) (model.AppData, error) { return mutate.SetTeamLeader(d, memberID) })
}

// Resources

// AddResource stores r under a fresh id and returns the id.
func (t *Tracker) AddResource(ctx context.Context, r model.Resource) (string, error) {
	r.ID = t.newID()
	if err := t.apply(ctx, func(d model.AppData) (model.AppData, error) { return mutate.AddResource(d, r) }); err != nil {
		return "", err
	}
	return r.ID, nil
}

func (t *Tracker) UpdateResource(ctx context.Context, resourceID string, p mutate.ResourcePatch) error {
	return t.apply(ctx, func(d model.AppData) (model.AppData, error) { return mutate.UpdateResource(d, resourceID, p) })
}

func (t *Tracker) DeleteResource(ctx context.Context, resourceID string) error {
	return t.apply(ctx, func(d model.AppData) (model.AppData, error) { return mutate.DeleteResource(d, resourceID) })
}

// PruneDanglingReferences drops next edges and dependencies whose targets are
// gone and returns how many were removed.
func (t *Tracker) PruneDanglingReferences(ctx context.Context) (int, error) {
	var n int
	err := t.apply(ctx, func(d model.AppData) (model.AppData, error) {
		var out model.AppData
		out, n = mutate.PruneDanglingReferences(d)
		return out, nil
	})
	return n, err
}

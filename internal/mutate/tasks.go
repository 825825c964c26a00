// Package mutate holds the document mutations. Every function takes the
// current AppData and returns a new one; the input is never modified and
// unchanged parts are shared. A target id that does not exist is not an
// error: the input document is returned as is.
package mutate

import (
	"strings"
	"time"

	"associate-os/internal/model"
)

// CreatedAtLayout matches the ISO timestamps already present in stored documents.
const CreatedAtLayout = "2006-01-02T15:04:05.000Z07:00"

type NewTask struct {
	ID        string
	Title     string
	MatterRef string
	DueDate   string
	Priority  model.Priority
	CreatedAt time.Time
}

// AddTask prepends a new TODO task.
func AddTask(doc model.AppData, in NewTask) (model.AppData, error) {
	id := strings.TrimSpace(in.ID)
	if id == "" {
		return doc, ErrEmptyID
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return doc, ErrEmptyTitle
	}
	due, err := normalizeDate(in.DueDate)
	if err != nil {
		return doc, err
	}
	prio := in.Priority
	if prio == "" {
		prio = model.PriorityMedium
	}
	if _, ok := model.ParsePriority(string(prio)); !ok {
		return doc, ErrInvalidPriority
	}
	if t, _ := doc.FindTask(id); t != nil {
		return doc, DuplicateIDError{Kind: "task", ID: id}
	}
	matter := strings.TrimSpace(in.MatterRef)
	if matter == "" {
		matter = model.DefaultMatterRef
	}
	created := in.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}

	task := &model.Task{
		ID:           id,
		Title:        title,
		MatterRef:    matter,
		DueDate:      due,
		Status:       model.StatusTodo,
		Priority:     prio,
		CreatedAt:    created.UTC().Format(CreatedAtLayout),
		Subtasks:     []*model.Subtask{},
		Dependencies: []string{},
	}

	tasks := make([]*model.Task, 0, len(doc.Tasks)+1)
	tasks = append(tasks, task)
	tasks = append(tasks, doc.Tasks...)
	doc.Tasks = tasks
	return doc, nil
}

func UpdateTitle(doc model.AppData, taskID, title string) (model.AppData, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return doc, ErrEmptyTitle
	}
	return withTask(doc, taskID, func(t *model.Task) *model.Task {
		if t.Title == title {
			return t
		}
		cp := t.Clone()
		cp.Title = title
		return cp
	}), nil
}

func UpdateDate(doc model.AppData, taskID, date string) (model.AppData, error) {
	due, err := normalizeDate(date)
	if err != nil {
		return doc, err
	}
	return withTask(doc, taskID, func(t *model.Task) *model.Task {
		if t.DueDate == due {
			return t
		}
		cp := t.Clone()
		cp.DueDate = due
		return cp
	}), nil
}

func MoveTask(doc model.AppData, taskID string, status model.Status) (model.AppData, error) {
	if _, ok := model.ParseStatus(string(status)); !ok {
		return doc, ErrInvalidStatus
	}
	return withTask(doc, taskID, func(t *model.Task) *model.Task {
		if t.Status == status {
			return t
		}
		cp := t.Clone()
		cp.Status = status
		return cp
	}), nil
}

func SetPriority(doc model.AppData, taskID string, prio model.Priority) (model.AppData, error) {
	if _, ok := model.ParsePriority(string(prio)); !ok {
		return doc, ErrInvalidPriority
	}
	return withTask(doc, taskID, func(t *model.Task) *model.Task {
		if t.Priority == prio {
			return t
		}
		cp := t.Clone()
		cp.Priority = prio
		return cp
	}), nil
}

// FlagTask sets the follow-up date; nil clears it.
func FlagTask(doc model.AppData, taskID string, date *string) (model.AppData, error) {
	var flagged *string
	if date != nil {
		d, err := normalizeDate(*date)
		if err != nil {
			return doc, err
		}
		flagged = &d
	}
	return withTask(doc, taskID, func(t *model.Task) *model.Task {
		cp := t.Clone()
		cp.FlaggedDate = flagged
		return cp
	}), nil
}

func SetMatter(doc model.AppData, taskID, matterRef string) (model.AppData, error) {
	matterRef = strings.TrimSpace(matterRef)
	return withTask(doc, taskID, func(t *model.Task) *model.Task {
		if t.MatterRef == matterRef {
			return t
		}
		cp := t.Clone()
		cp.MatterRef = matterRef
		return cp
	}), nil
}

// TrackTime adds seconds (possibly negative) to the task's accumulator, which never drops below zero.
func TrackTime(doc model.AppData, taskID string, seconds float64) (model.AppData, error) {
	return withTask(doc, taskID, func(t *model.Task) *model.Task {
		cp := t.Clone()
		cp.TimeTracked += seconds
		if cp.TimeTracked < 0 {
			cp.TimeTracked = 0
		}
		return cp
	}), nil
}

// DeleteTask removes the task. Dependencies of other tasks pointing at it are kept.
func DeleteTask(doc model.AppData, taskID string) (model.AppData, error) {
	_, idx := doc.FindTask(strings.TrimSpace(taskID))
	if idx < 0 {
		return doc, nil
	}
	tasks := make([]*model.Task, 0, len(doc.Tasks)-1)
	tasks = append(tasks, doc.Tasks[:idx]...)
	tasks = append(tasks, doc.Tasks[idx+1:]...)
	doc.Tasks = tasks
	return doc, nil
}

// AddDependency records that taskID depends on dependsOnID. Both tasks must exist.
func AddDependency(doc model.AppData, taskID, dependsOnID string) (model.AppData, error) {
	dependsOnID = strings.TrimSpace(dependsOnID)
	if dep, _ := doc.FindTask(dependsOnID); dep == nil || dependsOnID == strings.TrimSpace(taskID) {
		return doc, nil
	}
	return withTask(doc, taskID, func(t *model.Task) *model.Task {
		for _, d := range t.Dependencies {
			if d == dependsOnID {
				return t
			}
		}
		cp := t.Clone()
		cp.Dependencies = appendString(t.Dependencies, dependsOnID)
		return cp
	}), nil
}

func RemoveDependency(doc model.AppData, taskID, dependsOnID string) (model.AppData, error) {
	dependsOnID = strings.TrimSpace(dependsOnID)
	return withTask(doc, taskID, func(t *model.Task) *model.Task {
		next, removed := removeString(t.Dependencies, dependsOnID)
		if !removed {
			return t
		}
		cp := t.Clone()
		cp.Dependencies = next
		return cp
	}), nil
}

// withTask replaces the task with fn(task). If the task is missing or fn
// returns its argument, doc is returned unchanged.
func withTask(doc model.AppData, taskID string, fn func(*model.Task) *model.Task) model.AppData {
	t, idx := doc.FindTask(strings.TrimSpace(taskID))
	if idx < 0 {
		return doc
	}
	next := fn(t)
	if next == t {
		return doc
	}
	tasks := make([]*model.Task, len(doc.Tasks))
	copy(tasks, doc.Tasks)
	tasks[idx] = next
	doc.Tasks = tasks
	return doc
}

func normalizeDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if _, err := time.Parse(model.DateLayout, s); err != nil {
		return "", ErrInvalidDate
	}
	return s, nil
}

func appendString(xs []string, s string) []string {
	out := make([]string, 0, len(xs)+1)
	out = append(out, xs...)
	return append(out, s)
}

func removeString(xs []string, s string) ([]string, bool) {
	idx := -1
	for i, x := range xs {
		if x == s {
			idx = i
			break
		}
	}
	if idx < 0 {
		return xs, false
	}
	out := make([]string, 0, len(xs)-1)
	out = append(out, xs[:idx]...)
	return append(out, xs[idx+1:]...), true
}

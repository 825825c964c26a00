package model

type Status string

const (
	StatusTodo    Status = "TODO"
	StatusWaiting Status = "WAITING"
	StatusReview  Status = "REVIEW"
	StatusDone    Status = "DONE"
)

type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

type SubtaskType string

const (
	SubtaskGeneric  SubtaskType = "GENERIC"
	SubtaskDocument SubtaskType = "DOCUMENT"
	SubtaskResearch SubtaskType = "RESEARCH"
	SubtaskEmail    SubtaskType = "EMAIL"
)

type ResourceType string

const (
	ResourceCompany ResourceType = "COMPANY"
	ResourcePerson  ResourceType = "PERSON"
)

const (
	DefaultShortsign   = "ME"
	DefaultMemberColor = "bg-slate-200 text-slate-700"
	DefaultMatterRef   = "General"
)

// DateLayout is the calendar date format used by dueDate and flaggedDate.
const DateLayout = "2006-01-02"

type Task struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	MatterRef    string     `json:"matterRef,omitempty"`
	DueDate      string     `json:"dueDate"`
	FlaggedDate  *string    `json:"flaggedDate"`
	Status       Status     `json:"status"`
	Priority     Priority   `json:"priority"`
	CreatedAt    string     `json:"createdAt"`
	TimeTracked  float64    `json:"timeTracked"`
	Subtasks     []*Subtask `json:"subtasks"`
	Dependencies []string   `json:"dependencies"`
}

// Subtask is a node of a task's subtask forest. Next holds directed workflow
// edges to other subtask ids of the same task; Subtasks holds containment.
type Subtask struct {
	ID       string      `json:"id"`
	Title    string      `json:"title"`
	Done     bool        `json:"done"`
	Type     SubtaskType `json:"type"`
	Payload  string      `json:"payload,omitempty"`
	X        float64     `json:"x"`
	Y        float64     `json:"y"`
	Next     []string    `json:"next"`
	Subtasks []*Subtask  `json:"subtasks"`
}

type TeamMember struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Shortsign string `json:"shortsign"`
	Email     string `json:"email,omitempty"`
	Color     string `json:"color"`
	IsLeader  bool   `json:"isLeader"`
}

type Resource struct {
	ID         string       `json:"id"`
	Type       ResourceType `json:"type"`
	Name       string       `json:"name"`
	Identifier string       `json:"identifier,omitempty"`
	Address    string       `json:"address,omitempty"`
	Notes      string       `json:"notes,omitempty"`
}

type Settings struct {
	MyShortsign     string       `json:"myShortsign"`
	DarkMode        bool         `json:"darkMode"`
	IsAuthenticated bool         `json:"isAuthenticated"`
	Team            []TeamMember `json:"team"`
}

// AppData is the aggregate root: the unit of persistence, snapshotting,
// export and import.
//
// Values reachable from a committed AppData are shared between successive
// documents and must not be modified in place; build new values instead
// (see Task.Clone and Subtask.Clone).
type AppData struct {
	Tasks     []*Task    `json:"tasks"`
	Settings  Settings   `json:"settings"`
	Resources []Resource `json:"resources"`
}

// Clone returns a shallow copy of the task. Slices are shared with the receiver.
func (t *Task) Clone() *Task {
	cp := *t
	return &cp
}

// Clone returns a shallow copy of the node. Next and Subtasks are shared with the receiver.
func (s *Subtask) Clone() *Subtask {
	cp := *s
	return &cp
}

func (s *Subtask) HasNext(id string) bool {
	for _, n := range s.Next {
		if n == id {
			return true
		}
	}
	return false
}

func (d AppData) FindTask(id string) (*Task, int) {
	for i, t := range d.Tasks {
		if t.ID == id {
			return t, i
		}
	}
	return nil, -1
}

func (d AppData) FindResource(id string) (Resource, int) {
	for i, r := range d.Resources {
		if r.ID == id {
			return r, i
		}
	}
	return Resource{}, -1
}

func (s Settings) FindMember(id string) (TeamMember, int) {
	for i, m := range s.Team {
		if m.ID == id {
			return m, i
		}
	}
	return TeamMember{}, -1
}

// Leader returns the team member holding leadership, if any.
func (s Settings) Leader() (TeamMember, bool) {
	for _, m := range s.Team {
		if m.IsLeader {
			return m, true
		}
	}
	return TeamMember{}, false
}

func ParseStatus(s string) (Status, bool) {
	switch st := Status(s); st {
	case StatusTodo, StatusWaiting, StatusReview, StatusDone:
		return st, true
	}
	return "", false
}

func ParsePriority(s string) (Priority, bool) {
	switch p := Priority(s); p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return p, true
	}
	return "", false
}

func ParseSubtaskType(s string) (SubtaskType, bool) {
	switch t := SubtaskType(s); t {
	case SubtaskGeneric, SubtaskDocument, SubtaskResearch, SubtaskEmail:
		return t, true
	}
	return "", false
}

func ParseResourceType(s string) (ResourceType, bool) {
	switch t := ResourceType(s); t {
	case ResourceCompany, ResourcePerson:
		return t, true
	}
	return "", false
}

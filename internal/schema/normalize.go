package schema

import "associate-os/internal/model"

// DefaultSettings returns the settings of a fresh document.
func DefaultSettings() model.Settings {
	return model.Settings{
		MyShortsign:     model.DefaultShortsign,
		DarkMode:        true,
		IsAuthenticated: true,
		Team:            []model.TeamMember{},
	}
}

// Default returns the document used when nothing durable exists or the stored
// document cannot be read.
func Default() model.AppData {
	return model.AppData{
		Tasks:     []*model.Task{},
		Settings:  DefaultSettings(),
		Resources: []model.Resource{},
	}
}

// Normalize fills defaults throughout doc. It is total: it never fails and
// never modifies doc's nodes; nodes that need filling are copied.
func Normalize(doc model.AppData) model.AppData {
	out := model.AppData{
		Tasks:     make([]*model.Task, 0, len(doc.Tasks)),
		Settings:  normalizeSettings(doc.Settings),
		Resources: make([]model.Resource, 0, len(doc.Resources)),
	}
	for _, t := range doc.Tasks {
		if t == nil {
			continue
		}
		out.Tasks = append(out.Tasks, normalizeTask(t))
	}
	out.Resources = append(out.Resources, doc.Resources...)
	return out
}

func normalizeTask(t *model.Task) *model.Task {
	cp := t.Clone()
	if cp.Priority == "" {
		cp.Priority = model.PriorityMedium
	}
	if cp.TimeTracked < 0 {
		cp.TimeTracked = 0
	}
	if cp.Dependencies == nil {
		cp.Dependencies = []string{}
	}
	cp.Subtasks = normalizeForest(cp.Subtasks)
	return cp
}

func normalizeForest(forest []*model.Subtask) []*model.Subtask {
	out := make([]*model.Subtask, 0, len(forest))
	for _, s := range forest {
		if s == nil {
			continue
		}
		out = append(out, normalizeSubtask(s))
	}
	return out
}

func normalizeSubtask(s *model.Subtask) *model.Subtask {
	cp := s.Clone()
	if cp.Type == "" {
		cp.Type = model.SubtaskGeneric
	}
	if cp.Next == nil {
		cp.Next = []string{}
	}
	cp.Subtasks = normalizeForest(cp.Subtasks)
	return cp
}

func normalizeSettings(s model.Settings) model.Settings {
	team := make([]model.TeamMember, 0, len(s.Team))
	for _, m := range s.Team {
		if m.Color == "" {
			m.Color = model.DefaultMemberColor
		}
		team = append(team, m)
	}
	s.Team = team
	return s
}

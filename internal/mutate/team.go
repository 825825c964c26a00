package mutate

import (
	"strings"

	"associate-os/internal/model"
)

func SetShortsign(doc model.AppData, shortsign string) (model.AppData, error) {
	shortsign = strings.TrimSpace(shortsign)
	if shortsign == "" {
		return doc, ErrEmptyTitle
	}
	doc.Settings.MyShortsign = shortsign
	return doc, nil
}

func SetDarkMode(doc model.AppData, on bool) (model.AppData, error) {
	doc.Settings.DarkMode = on
	return doc, nil
}

func ToggleDarkMode(doc model.AppData) (model.AppData, error) {
	doc.Settings.DarkMode = !doc.Settings.DarkMode
	return doc, nil
}

func SetAuthenticated(doc model.AppData, ok bool) (model.AppData, error) {
	doc.Settings.IsAuthenticated = ok
	return doc, nil
}

// AddTeamMember appends m. A member added as leader takes leadership from everyone else.
func AddTeamMember(doc model.AppData, m model.TeamMember) (model.AppData, error) {
	m.ID = strings.TrimSpace(m.ID)
	m.Name = strings.TrimSpace(m.Name)
	m.Shortsign = strings.TrimSpace(m.Shortsign)
	if m.ID == "" {
		return doc, ErrEmptyID
	}
	if m.Name == "" || m.Shortsign == "" {
		return doc, ErrEmptyTitle
	}
	if _, idx := doc.Settings.FindMember(m.ID); idx >= 0 {
		return doc, DuplicateIDError{Kind: "team member", ID: m.ID}
	}
	if m.Color == "" {
		m.Color = model.DefaultMemberColor
	}
	leader := m.IsLeader
	m.IsLeader = false

	team := make([]model.TeamMember, 0, len(doc.Settings.Team)+1)
	team = append(team, doc.Settings.Team...)
	team = append(team, m)
	doc.Settings.Team = team
	if leader {
		return SetTeamLeader(doc, m.ID)
	}
	return doc, nil
}

// MemberPatch holds the fields to change; nil leaves a field as is.
type MemberPatch struct {
	Name      *string
	Shortsign *string
	Email     *string
	Color     *string
}

func UpdateTeamMember(doc model.AppData, memberID string, p MemberPatch) (model.AppData, error) {
	m, idx := doc.Settings.FindMember(strings.TrimSpace(memberID))
	if idx < 0 {
		return doc, nil
	}
	if p.Name != nil {
		if strings.TrimSpace(*p.Name) == "" {
			return doc, ErrEmptyTitle
		}
		m.Name = strings.TrimSpace(*p.Name)
	}
	if p.Shortsign != nil {
		if strings.TrimSpace(*p.Shortsign) == "" {
			return doc, ErrEmptyTitle
		}
		m.Shortsign = strings.TrimSpace(*p.Shortsign)
	}
	if p.Email != nil {
		m.Email = strings.TrimSpace(*p.Email)
	}
	if p.Color != nil {
		m.Color = strings.TrimSpace(*p.Color)
		if m.Color == "" {
			m.Color = model.DefaultMemberColor
		}
	}
	team := make([]model.TeamMember, len(doc.Settings.Team))
	copy(team, doc.Settings.Team)
	team[idx] = m
	doc.Settings.Team = team
	return doc, nil
}

func RemoveTeamMember(doc model.AppData, memberID string) (model.AppData, error) {
	_, idx := doc.Settings.FindMember(strings.TrimSpace(memberID))
	if idx < 0 {
		return doc, nil
	}
	team := make([]model.TeamMember, 0, len(doc.Settings.Team)-1)
	team = append(team, doc.Settings.Team[:idx]...)
	team = append(team, doc.Settings.Team[idx+1:]...)
	doc.Settings.Team = team
	return doc, nil
}

// SetTeamLeader recomputes isLeader for the whole team so that exactly
// memberID leads. Unknown ids leave the team unchanged.
func SetTeamLeader(doc model.AppData, memberID string) (model.AppData, error) {
	memberID = strings.TrimSpace(memberID)
	if _, idx := doc.Settings.FindMember(memberID); idx < 0 {
		return doc, nil
	}
	team := make([]model.TeamMember, len(doc.Settings.Team))
	for i, m := range doc.Settings.Team {
		m.IsLeader = m.ID == memberID
		team[i] = m
	}
	doc.Settings.Team = team
	return doc, nil
}

package store

import (
	"context"
	"errors"
	"fmt"

	"associate-os/internal/model"
	"associate-os/internal/mutate"
	"associate-os/internal/schema"
	"associate-os/internal/tree"
)

var ErrDoctorIssuesFound = errors.New("doctor found errors")

type DoctorIssueLevel string

const (
	DoctorIssueLevelError DoctorIssueLevel = "error"
	DoctorIssueLevelWarn  DoctorIssueLevel = "warn"
)

type DoctorIssue struct {
	Level   DoctorIssueLevel `json:"level" yaml:"level"`
	Code    string           `json:"code" yaml:"code"`
	Message string           `json:"message" yaml:"message"`

	TaskID      string `json:"taskId,omitempty" yaml:"taskId,omitempty"`
	EntityID    string `json:"entityId,omitempty" yaml:"entityId,omitempty"`
	SnapshotKey string `json:"snapshotKey,omitempty" yaml:"snapshotKey,omitempty"`
}

type DoctorReport struct {
	Issues []DoctorIssue `json:"issues" yaml:"issues"`
}

func (r DoctorReport) HasErrors() bool {
	for _, it := range r.Issues {
		if it.Level == DoctorIssueLevelError {
			return true
		}
	}
	return false
}

// Doctor inspects the stored document, the live document and every snapshot.
func (d *Documents) Doctor(ctx context.Context) (DoctorReport, error) {
	issues := []DoctorIssue{}

	if err := d.LoadErr(); err != nil {
		issues = append(issues, DoctorIssue{
			Level:   DoctorIssueLevelError,
			Code:    "load_corrupt",
			Message: err.Error(),
		})
	}

	doc := d.Current()
	for _, ref := range mutate.DanglingReferences(doc) {
		issues = append(issues, DoctorIssue{
			Level:    DoctorIssueLevelWarn,
			Code:     "dangling_" + ref.Kind,
			Message:  fmt.Sprintf("%s -> %s points at a missing id", ref.From, ref.To),
			TaskID:   ref.TaskID,
			EntityID: ref.From,
		})
	}
	issues = append(issues, duplicateSubtaskIDs(doc)...)

	infos, err := d.ListSnapshots(ctx)
	if err != nil {
		return DoctorReport{}, err
	}
	for _, info := range infos {
		raw, ok, err := d.backend.ReadSnapshot(ctx, d.snapshotNamespace, info.Key)
		if err != nil {
			return DoctorReport{}, err
		}
		if !ok {
			continue
		}
		if _, err := schema.Validate(raw); err != nil {
			issues = append(issues, DoctorIssue{
				Level:       DoctorIssueLevelWarn,
				Code:        "snapshot_corrupt",
				Message:     err.Error(),
				SnapshotKey: info.Key,
			})
		}
	}
	return DoctorReport{Issues: issues}, nil
}

// duplicateSubtaskIDs flags ids used by more than one node of a task's forest;
// lookups by such an id only ever reach the first node.
func duplicateSubtaskIDs(doc model.AppData) []DoctorIssue {
	var out []DoctorIssue
	for _, t := range doc.Tasks {
		seen := map[string]int{}
		tree.Walk(t.Subtasks, func(n *model.Subtask, _ int) bool {
			seen[n.ID]++
			if seen[n.ID] == 2 {
				out = append(out, DoctorIssue{
					Level:    DoctorIssueLevelWarn,
					Code:     "duplicate_subtask_id",
					Message:  fmt.Sprintf("subtask id %s is used more than once", n.ID),
					TaskID:   t.ID,
					EntityID: n.ID,
				})
			}
			return true
		})
	}
	return out
}

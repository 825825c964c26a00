package mutate

import (
	"strings"

	"associate-os/internal/model"
	"associate-os/internal/tree"
)

// NewSubtask builds a GENERIC, not-done node at the canvas origin.
func NewSubtask(id, title string) *model.Subtask {
	return &model.Subtask{
		ID:       strings.TrimSpace(id),
		Title:    strings.TrimSpace(title),
		Type:     model.SubtaskGeneric,
		Next:     []string{},
		Subtasks: []*model.Subtask{},
	}
}

// AddSubtask appends node to the task's top-level subtasks.
func AddSubtask(doc model.AppData, taskID string, node *model.Subtask) (model.AppData, error) {
	if err := checkNewNode(doc, taskID, node); err != nil {
		return doc, err
	}
	return withForest(doc, taskID, func(forest []*model.Subtask) []*model.Subtask {
		out := make([]*model.Subtask, 0, len(forest)+1)
		out = append(out, forest...)
		return append(out, node)
	}), nil
}

// AddSubSubtask appends node beneath parentID, at any depth of the task's forest.
func AddSubSubtask(doc model.AppData, taskID, parentID string, node *model.Subtask) (model.AppData, error) {
	if err := checkNewNode(doc, taskID, node); err != nil {
		return doc, err
	}
	parentID = strings.TrimSpace(parentID)
	return withForest(doc, taskID, func(forest []*model.Subtask) []*model.Subtask {
		return tree.InsertChild(forest, parentID, node)
	}), nil
}

// UpdateSubtask applies fn to the node. fn follows the tree.UpdateNode contract.
func UpdateSubtask(doc model.AppData, taskID, subtaskID string, fn func(*model.Subtask) *model.Subtask) model.AppData {
	subtaskID = strings.TrimSpace(subtaskID)
	return withForest(doc, taskID, func(forest []*model.Subtask) []*model.Subtask {
		if !tree.Contains(forest, subtaskID) {
			return forest
		}
		return tree.UpdateNode(forest, subtaskID, fn)
	})
}

func ToggleSubtask(doc model.AppData, taskID, subtaskID string) (model.AppData, error) {
	return UpdateSubtask(doc, taskID, subtaskID, func(n *model.Subtask) *model.Subtask {
		cp := n.Clone()
		cp.Done = !n.Done
		return cp
	}), nil
}

func UpdateSubtaskTitle(doc model.AppData, taskID, subtaskID, title string) (model.AppData, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return doc, ErrEmptyTitle
	}
	return UpdateSubtask(doc, taskID, subtaskID, func(n *model.Subtask) *model.Subtask {
		cp := n.Clone()
		cp.Title = title
		return cp
	}), nil
}

func SetSubtaskType(doc model.AppData, taskID, subtaskID string, typ model.SubtaskType) (model.AppData, error) {
	if _, ok := model.ParseSubtaskType(string(typ)); !ok {
		return doc, ErrInvalidType
	}
	return UpdateSubtask(doc, taskID, subtaskID, func(n *model.Subtask) *model.Subtask {
		cp := n.Clone()
		cp.Type = typ
		return cp
	}), nil
}

// SetSubtaskPayload stores an opaque string on the node; "" clears it.
func SetSubtaskPayload(doc model.AppData, taskID, subtaskID, payload string) (model.AppData, error) {
	return UpdateSubtask(doc, taskID, subtaskID, func(n *model.Subtask) *model.Subtask {
		cp := n.Clone()
		cp.Payload = payload
		return cp
	}), nil
}

// MoveSubtask sets the node's canvas coordinates.
func MoveSubtask(doc model.AppData, taskID, subtaskID string, x, y float64) (model.AppData, error) {
	return UpdateSubtask(doc, taskID, subtaskID, func(n *model.Subtask) *model.Subtask {
		cp := n.Clone()
		cp.X, cp.Y = x, y
		return cp
	}), nil
}

// DeleteSubtask removes the node and its descendants. next edges that point
// at the removed ids stay in place; see PruneDanglingReferences.
func DeleteSubtask(doc model.AppData, taskID, subtaskID string) (model.AppData, error) {
	subtaskID = strings.TrimSpace(subtaskID)
	return withForest(doc, taskID, func(forest []*model.Subtask) []*model.Subtask {
		return tree.RemoveNode(forest, subtaskID)
	}), nil
}

func checkNewNode(doc model.AppData, taskID string, node *model.Subtask) error {
	if node == nil || strings.TrimSpace(node.ID) == "" {
		return ErrEmptyID
	}
	if strings.TrimSpace(node.Title) == "" {
		return ErrEmptyTitle
	}
	if _, ok := model.ParseSubtaskType(string(node.Type)); !ok {
		return ErrInvalidType
	}
	if t, _ := doc.FindTask(strings.TrimSpace(taskID)); t != nil && tree.Contains(t.Subtasks, node.ID) {
		return DuplicateIDError{Kind: "subtask", ID: node.ID}
	}
	return nil
}

// withForest replaces the task's subtask forest with fn(forest). A forest
// returned unchanged (same backing array and length) leaves doc as is.
func withForest(doc model.AppData, taskID string, fn func([]*model.Subtask) []*model.Subtask) model.AppData {
	return withTask(doc, taskID, func(t *model.Task) *model.Task {
		next := fn(t.Subtasks)
		if sameForest(next, t.Subtasks) {
			return t
		}
		cp := t.Clone()
		cp.Subtasks = next
		return cp
	})
}

func sameForest(a, b []*model.Subtask) bool {
	if len(a) != len(b) {
		return false
	}
	return len(a) == 0 || &a[0] == &b[0]
}

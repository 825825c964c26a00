package mutate

import (
	"strings"

	"associate-os/internal/model"
	"associate-os/internal/tree"
)

// Connect adds the directed edge sourceID -> targetID inside one task's forest.
// Both ends must exist in that forest; connecting an existing edge is a no-op.
// Cycles are allowed.
func Connect(doc model.AppData, taskID, sourceID, targetID string) (model.AppData, error) {
	sourceID = strings.TrimSpace(sourceID)
	targetID = strings.TrimSpace(targetID)
	return withForest(doc, taskID, func(forest []*model.Subtask) []*model.Subtask {
		src, ok := tree.Find(forest, sourceID)
		if !ok || src.HasNext(targetID) || !tree.Contains(forest, targetID) {
			return forest
		}
		return tree.UpdateNode(forest, sourceID, func(n *model.Subtask) *model.Subtask {
			cp := n.Clone()
			cp.Next = appendString(n.Next, targetID)
			return cp
		})
	}), nil
}

// Disconnect removes the edge sourceID -> targetID if present.
func Disconnect(doc model.AppData, taskID, sourceID, targetID string) (model.AppData, error) {
	sourceID = strings.TrimSpace(sourceID)
	targetID = strings.TrimSpace(targetID)
	return withForest(doc, taskID, func(forest []*model.Subtask) []*model.Subtask {
		src, ok := tree.Find(forest, sourceID)
		if !ok || !src.HasNext(targetID) {
			return forest
		}
		return tree.UpdateNode(forest, sourceID, func(n *model.Subtask) *model.Subtask {
			cp := n.Clone()
			cp.Next, _ = removeString(n.Next, targetID)
			return cp
		})
	}), nil
}

// Edge is one directed next-edge of a task's workflow graph.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Edges lists the task's next-edges in pre-order of their source nodes.
func Edges(t *model.Task) []Edge {
	out := []Edge{}
	if t == nil {
		return out
	}
	tree.Walk(t.Subtasks, func(n *model.Subtask, _ int) bool {
		for _, to := range n.Next {
			out = append(out, Edge{From: n.ID, To: to})
		}
		return true
	})
	return out
}

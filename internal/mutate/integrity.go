package mutate

import (
	"associate-os/internal/model"
	"associate-os/internal/tree"
)

const (
	RefNext       = "next"
	RefDependency = "dependency"
)

// DanglingRef is an edge whose target no longer exists.
type DanglingRef struct {
	TaskID string `json:"taskId"`
	Kind   string `json:"kind"`
	From   string `json:"from"`
	To     string `json:"to"`
}

// DanglingReferences lists next-edges and task dependencies whose targets are
// missing. Deletes leave such references behind; readers treat them as inert.
func DanglingReferences(doc model.AppData) []DanglingRef {
	out := []DanglingRef{}
	taskIDs := make(map[string]struct{}, len(doc.Tasks))
	for _, t := range doc.Tasks {
		taskIDs[t.ID] = struct{}{}
	}
	for _, t := range doc.Tasks {
		for _, d := range t.Dependencies {
			if _, ok := taskIDs[d]; !ok {
				out = append(out, DanglingRef{TaskID: t.ID, Kind: RefDependency, From: t.ID, To: d})
			}
		}
		ids := tree.IDs(t.Subtasks)
		tree.Walk(t.Subtasks, func(n *model.Subtask, _ int) bool {
			for _, to := range n.Next {
				if _, ok := ids[to]; !ok {
					out = append(out, DanglingRef{TaskID: t.ID, Kind: RefNext, From: n.ID, To: to})
				}
			}
			return true
		})
	}
	return out
}

// PruneDanglingReferences removes every reference reported by
// DanglingReferences and returns how many were dropped.
func PruneDanglingReferences(doc model.AppData) (model.AppData, int) {
	refs := DanglingReferences(doc)
	for _, r := range refs {
		switch r.Kind {
		case RefDependency:
			doc, _ = RemoveDependency(doc, r.TaskID, r.To)
		case RefNext:
			doc = pruneEdge(doc, r.TaskID, r.From, r.To)
		}
	}
	return doc, len(refs)
}

// pruneEdge removes every occurrence of the edge; stored next lists may repeat a target.
func pruneEdge(doc model.AppData, taskID, sourceID, targetID string) model.AppData {
	for {
		next, _ := Disconnect(doc, taskID, sourceID, targetID)
		t, _ := next.FindTask(taskID)
		before, _ := doc.FindTask(taskID)
		if t == before {
			return doc
		}
		doc = next
	}
}

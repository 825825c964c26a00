// Package tree locates and rewrites nodes of a subtask forest at any depth.
//
// All functions are pure. A rewrite allocates new nodes only along the path
// from the forest root to the target; every other node is shared with the
// input forest. When no node matches, the input slice itself is returned.
// Duplicate ids resolve to the first match of a pre-order, sibling-order walk.
package tree

import "associate-os/internal/model"

// UpdateNode replaces the first node whose id matches with fn(node).
//
// fn must not modify its argument; it returns the replacement (typically a
// Clone with changed fields).
func UpdateNode(forest []*model.Subtask, id string, fn func(*model.Subtask) *model.Subtask) []*model.Subtask {
	out, _ := rewrite(forest, id, func(level []*model.Subtask, i int) []*model.Subtask {
		return replaceAt(level, i, fn(level[i]))
	})
	return out
}

// InsertChild appends child to the children of the first node whose id is parentID.
// Missing parents are ignored.
func InsertChild(forest []*model.Subtask, parentID string, child *model.Subtask) []*model.Subtask {
	return UpdateNode(forest, parentID, func(n *model.Subtask) *model.Subtask {
		cp := n.Clone()
		cp.Subtasks = appendCopy(n.Subtasks, child)
		return cp
	})
}

// RemoveNode drops the first node whose id matches, together with its subtree.
// Edges pointing at the removed ids are left in place.
func RemoveNode(forest []*model.Subtask, id string) []*model.Subtask {
	out, _ := rewrite(forest, id, func(level []*model.Subtask, i int) []*model.Subtask {
		next := make([]*model.Subtask, 0, len(level)-1)
		next = append(next, level[:i]...)
		return append(next, level[i+1:]...)
	})
	return out
}

// rewrite walks forest depth-first. At the level holding the match, onMatch
// builds the replacement level; every ancestor on the path is cloned with its
// rewritten children.
func rewrite(forest []*model.Subtask, id string, onMatch func(level []*model.Subtask, i int) []*model.Subtask) ([]*model.Subtask, bool) {
	for i, n := range forest {
		if n == nil {
			continue
		}
		if n.ID == id {
			return onMatch(forest, i), true
		}
		if len(n.Subtasks) == 0 {
			continue
		}
		children, ok := rewrite(n.Subtasks, id, onMatch)
		if !ok {
			continue
		}
		cp := n.Clone()
		cp.Subtasks = children
		return replaceAt(forest, i, cp), true
	}
	return forest, false
}

// Find returns the first node whose id matches.
func Find(forest []*model.Subtask, id string) (*model.Subtask, bool) {
	var found *model.Subtask
	Walk(forest, func(n *model.Subtask, _ int) bool {
		if n.ID == id {
			found = n
			return false
		}
		return true
	})
	return found, found != nil
}

func Contains(forest []*model.Subtask, id string) bool {
	_, ok := Find(forest, id)
	return ok
}

// Walk visits every node in pre-order with its depth (0 for roots) until fn returns false.
func Walk(forest []*model.Subtask, fn func(n *model.Subtask, depth int) bool) {
	walk(forest, 0, fn)
}

func walk(forest []*model.Subtask, depth int, fn func(*model.Subtask, int) bool) bool {
	for _, n := range forest {
		if n == nil {
			continue
		}
		if !fn(n, depth) {
			return false
		}
		if !walk(n.Subtasks, depth+1, fn) {
			return false
		}
	}
	return true
}

// IDs returns the set of node ids in the forest.
func IDs(forest []*model.Subtask) map[string]struct{} {
	out := map[string]struct{}{}
	Walk(forest, func(n *model.Subtask, _ int) bool {
		out[n.ID] = struct{}{}
		return true
	})
	return out
}

// Count returns the number of nodes in the forest.
func Count(forest []*model.Subtask) int {
	n := 0
	Walk(forest, func(*model.Subtask, int) bool {
		n++
		return true
	})
	return n
}

func replaceAt(level []*model.Subtask, i int, n *model.Subtask) []*model.Subtask {
	out := make([]*model.Subtask, len(level))
	copy(out, level)
	out[i] = n
	return out
}

func appendCopy(level []*model.Subtask, n *model.Subtask) []*model.Subtask {
	out := make([]*model.Subtask, 0, len(level)+1)
	out = append(out, level...)
	return append(out, n)
}

package statusutil

import (
	"fmt"
	"strings"

	"associate-os/internal/model"
)

// NormalizeStatus accepts any case and the spellings the board columns use
// ("to do", "in review").
func NormalizeStatus(s string) (model.Status, error) {
	key := strings.ToUpper(strings.TrimSpace(s))
	key = strings.NewReplacer(" ", "", "-", "", "_", "").Replace(key)
	switch key {
	case "TODO":
		return model.StatusTodo, nil
	case "WAITING", "ONHOLD":
		return model.StatusWaiting, nil
	case "REVIEW", "INREVIEW":
		return model.StatusReview, nil
	case "DONE":
		return model.StatusDone, nil
	case "":
		return "", fmt.Errorf("invalid status: empty")
	default:
		return "", fmt.Errorf("invalid status: %q", strings.TrimSpace(s))
	}
}

func IsEndState(st model.Status) bool {
	return st == model.StatusDone
}

// Label is the human column title for a status.
func Label(st model.Status) string {
	switch st {
	case model.StatusTodo:
		return "To do"
	case model.StatusWaiting:
		return "Waiting"
	case model.StatusReview:
		return "Review"
	case model.StatusDone:
		return "Done"
	default:
		return string(st)
	}
}

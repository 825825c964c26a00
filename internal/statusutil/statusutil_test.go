package statusutil

import (
	"testing"

	"associate-os/internal/model"
)

func TestNormalizeStatus(t *testing.T) {
	cases := []struct {
		in      string
		want    model.Status
		wantErr bool
	}{
		{"todo", model.StatusTodo, false},
		{"TODO", model.StatusTodo, false},
		{"to do", model.StatusTodo, false},
		{"waiting", model.StatusWaiting, false},
		{"on-hold", model.StatusWaiting, false},
		{"In Review", model.StatusReview, false},
		{"  DONE ", model.StatusDone, false},
		{"", "", true},
		{"   ", "", true},
		{"archived", "", true},
	}
	for _, tc := range cases {
		got, err := NormalizeStatus(tc.in)
		if tc.wantErr && err == nil {
			t.Fatalf("NormalizeStatus(%q): expected error", tc.in)
		}
		if !tc.wantErr && err != nil {
			t.Fatalf("NormalizeStatus(%q): unexpected error: %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("NormalizeStatus(%q): expected %q, got %q", tc.in, tc.want, got)
		}
	}
}

func TestIsEndState(t *testing.T) {
	if !IsEndState(model.StatusDone) {
		t.Fatalf("expected DONE to be an end state")
	}
	for _, st := range []model.Status{model.StatusTodo, model.StatusWaiting, model.StatusReview} {
		if IsEndState(st) {
			t.Fatalf("expected %s to not be an end state", st)
		}
	}
}

func TestLabel(t *testing.T) {
	if got := Label(model.StatusReview); got != "Review" {
		t.Fatalf("Label(REVIEW) = %q", got)
	}
	if got := Label("CUSTOM"); got != "CUSTOM" {
		t.Fatalf("Label(CUSTOM) = %q", got)
	}
}

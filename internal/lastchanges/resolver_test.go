package lastchanges

import (
	"context"
	"errors"
	"testing"

	"github.com/masmgr/lastchanges-go/internal/vcs"
)

func TestResolver_Previous(t *testing.T) {
	tests := []struct {
		name     string
		opts     Options
		tag      int
		expected int
		kind     error
	}{
		{name: "Previous revision", opts: Options{Since: PreviousRevision}, expected: 4},
		{name: "Last successful build", opts: Options{Since: LastSuccessfulBuild, LastSuccessfulRevision: "2"}, expected: 2},
		{name: "Last successful build missing", opts: Options{Since: LastSuccessfulBuild}, kind: vcs.ErrTreeNotFound},
		{name: "Last successful build unresolvable", opts: Options{Since: LastSuccessfulBuild, LastSuccessfulRevision: "42"}, kind: vcs.ErrTreeNotFound},
		{name: "Compare flag", opts: Options{CompareLastSuccessfulBuild: true, LastSuccessfulRevision: "3"}, expected: 3},
		{name: "Last tag", opts: Options{Since: LastTag}, tag: 1, expected: 1},
		{name: "No tag", opts: Options{Since: LastTag}, kind: vcs.ErrNoTagFound},
		{name: "Explicit revision", opts: Options{Since: Revision, Revision: "2"}, expected: 2},
		{name: "Explicit revision empty", opts: Options{Since: Revision}, kind: vcs.ErrTreeNotFound},
		{name: "Explicit revision overrides tag", opts: Options{Since: LastTag, Revision: "3"}, tag: 1, expected: 3},
		{name: "Unknown policy", opts: Options{Since: "sometime"}, kind: vcs.ErrTreeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &mockAdapter{head: 5, tag: tt.tag}
			r := NewResolver[*mockRepo, int](m, nil)

			got, err := r.Previous(context.Background(), &mockRepo{path: "/ws"}, 5, tt.opts)
			if tt.kind != nil {
				if !errors.Is(err, tt.kind) {
					t.Fatalf("Previous() error = %v, expected %v", err, tt.kind)
				}
				return
			}
			if err != nil {
				t.Fatalf("Previous() error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("Previous() = %d, expected %d", got, tt.expected)
			}
		})
	}
}

func TestResolver_FirstCommit(t *testing.T) {
	r := NewResolver[*mockRepo, int](&mockAdapter{head: 1}, nil)

	_, err := r.Previous(context.Background(), &mockRepo{path: "/ws"}, 1, Options{})
	if !errors.Is(err, vcs.ErrTreeNotFound) {
		t.Fatalf("Previous() error = %v, expected ErrTreeNotFound", err)
	}
	if err.Error() != "Could not find previous head of repository located at /ws. Its your first commit?" {
		t.Errorf("message = %q", err.Error())
	}
}

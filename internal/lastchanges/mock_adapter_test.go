package lastchanges

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/masmgr/lastchanges-go/internal/model"
	"github.com/masmgr/lastchanges-go/internal/vcs"
)

// mockRepo is the handle of mockAdapter.
type mockRepo struct {
	path   string
	closed bool
}

// mockAdapter models a linear history 1..head. Revision 1 is the root.
type mockAdapter struct {
	head    int
	tag     int
	openErr error
	diffErr map[int]error
	repos   []*mockRepo
}

var _ vcs.Adapter[*mockRepo, int] = (*mockAdapter)(nil)

func (m *mockAdapter) Open(path string) (*mockRepo, error) {
	if m.openErr != nil {
		return nil, m.openErr
	}
	r := &mockRepo{path: path}
	m.repos = append(m.repos, r)
	return r, nil
}

func (m *mockAdapter) Close(r *mockRepo) error {
	r.closed = true
	return nil
}

func (m *mockAdapter) Head(context.Context, *mockRepo) (int, error) {
	return m.head, nil
}

func (m *mockAdapter) Resolve(_ context.Context, r *mockRepo, expr string) (int, error) {
	n, err := strconv.Atoi(expr)
	if err != nil || n < 1 || n > m.head {
		return 0, vcs.TreeNotFound(err, "Could not resolve %s", expr)
	}
	return n, nil
}

func (m *mockAdapter) Previous(_ context.Context, r *mockRepo, rev int) (int, error) {
	if rev <= 1 {
		return 0, vcs.NoPreviousHead(r.path)
	}
	return rev - 1, nil
}

func (m *mockAdapter) ChangesOf(ctx context.Context, r *mockRepo) (*model.LastChanges, error) {
	return m.ChangesBetween(ctx, r, m.head, m.head-1)
}

func (m *mockAdapter) ChangesBetween(ctx context.Context, r *mockRepo, current, previous int) (*model.LastChanges, error) {
	if err := m.diffErr[current]; err != nil {
		return nil, vcs.DiffFailed(err, "diff %d", current)
	}
	cur, _ := m.CommitInfo(ctx, r, current)
	prev, _ := m.CommitInfo(ctx, r, previous)
	return model.NewLastChanges(cur, prev, fmt.Sprintf("diff %d..%d", previous, current)), nil
}

func (m *mockAdapter) CommitInfo(_ context.Context, _ *mockRepo, rev int) (model.CommitInfo, error) {
	when := time.Date(2024, 1, 1, rev, 0, 0, 0, time.UTC)
	return model.NewCommitInfo(strconv.Itoa(rev), fmt.Sprintf("commit %d", rev), "Test", "test@example.com", when), nil
}

func (m *mockAdapter) LastTagRevision(_ context.Context, r *mockRepo) (int, error) {
	if m.tag == 0 {
		return 0, vcs.NoTagFound(nil, "No tags found in repository located at %s.", r.path)
	}
	return m.tag, nil
}

func (m *mockAdapter) CommitsBetween(_ context.Context, _ *mockRepo, current, previous int) ([]int, error) {
	var revs []int
	for rev := previous + 1; rev <= current; rev++ {
		revs = append(revs, rev)
	}
	return revs, nil
}

func (m *mockAdapter) FormatRevision(rev int) string {
	return strconv.Itoa(rev)
}

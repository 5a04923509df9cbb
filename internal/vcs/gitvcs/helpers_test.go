package gitvcs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

var baseTime = time.Date(2016, 6, 5, 12, 0, 0, 0, time.FixedZone("", -3*3600))

// testRepo wraps a temporary repository with helpers to write files and
// commit them at fixed times.
type testRepo struct {
	t    *testing.T
	dir  string
	repo *git.Repository
	wt   *git.Worktree
}

func newTestRepo(t *testing.T) *testRepo {
	t.Helper()
	dir := t.TempDir()

	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("PlainInit: %v", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Worktree: %v", err)
	}
	return &testRepo{t: t, dir: dir, repo: repo, wt: wt}
}

func (tr *testRepo) write(rel, content string) {
	tr.t.Helper()
	full := filepath.Join(tr.dir, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		tr.t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		tr.t.Fatalf("WriteFile: %v", err)
	}
	if _, err := tr.wt.Add(rel); err != nil {
		tr.t.Fatalf("Add: %v", err)
	}
}

func signature(when time.Time) *object.Signature {
	return &object.Signature{Name: "Rafael Pestano", Email: "rmpestano@gmail.com", When: when}
}

func (tr *testRepo) commit(msg string, when time.Time) plumbing.Hash {
	tr.t.Helper()
	h, err := tr.wt.Commit(msg, &git.CommitOptions{Author: signature(when), Committer: signature(when)})
	if err != nil {
		tr.t.Fatalf("Commit: %v", err)
	}
	return h
}

func (tr *testRepo) annotatedTag(name string, target plumbing.Hash, when time.Time) {
	tr.t.Helper()
	_, err := tr.repo.CreateTag(name, target, &git.CreateTagOptions{Tagger: signature(when), Message: "release " + name})
	if err != nil {
		tr.t.Fatalf("CreateTag(%s): %v", name, err)
	}
}

func (tr *testRepo) lightweightTag(name string, target plumbing.Hash) {
	tr.t.Helper()
	if _, err := tr.repo.CreateTag(name, target, nil); err != nil {
		tr.t.Fatalf("CreateTag(%s): %v", name, err)
	}
}

func pom(version string) string {
	return "<project>\n" +
		"  <groupId>com.github.jenkinsci</groupId>\n" +
		"  <artifactId>last-changes</artifactId>\n" +
		"  <version>" + version + "</version>\n" +
		"  <packaging>hpi</packaging>\n" +
		"</project>\n"
}

// openTest opens the test repository with a fresh adapter and closes it at
// cleanup.
func openTest(t *testing.T, a *Adapter, dir string) *Repository {
	t.Helper()
	r, err := a.Open(dir)
	if err != nil {
		t.Fatalf("Open(%s): %v", dir, err)
	}
	t.Cleanup(func() {
		if err := a.Close(r); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return r
}

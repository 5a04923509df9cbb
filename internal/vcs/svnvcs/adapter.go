// Package svnvcs implements the vcs.Adapter contract for subversion working
// copies by driving the svn command line client.
package svnvcs

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/masmgr/lastchanges-go/internal/logging"
	"github.com/masmgr/lastchanges-go/internal/model"
	"github.com/masmgr/lastchanges-go/internal/vcs"
)

// Revision is a numeric svn revision. Zero means unset.
type Revision int64

func (r Revision) String() string {
	return "r" + strconv.FormatInt(int64(r), 10)
}

// ParseRevision accepts "123" and "r123".
func ParseRevision(s string) (Revision, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "r")
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return 0, false
	}
	return Revision(n), true
}

// WorkingCopy is an open handle on a checked out svn working copy.
type WorkingCopy struct {
	path string
	url  string
	root string
}

// Path returns the working copy directory.
func (wc *WorkingCopy) Path() string { return wc.path }

// URL returns the repository URL the working copy was checked out from.
func (wc *WorkingCopy) URL() string { return wc.url }

// Options configures an Adapter.
type Options struct {
	Filter   vcs.PathFilter
	Logger   *logging.Logger
	Runner   Runner
	Username string
	Password string
}

// Adapter is the svn back-end.
type Adapter struct {
	filter   vcs.PathFilter
	log      *logging.Logger
	run      Runner
	username string
	password string
}

// Compile-time interface conformance check.
var _ vcs.Adapter[*WorkingCopy, Revision] = (*Adapter)(nil)

// New creates an svn adapter. A nil Runner runs the svn binary on PATH.
func New(opts Options) *Adapter {
	run := opts.Runner
	if run == nil {
		run = ExecRunner{}
	}
	return &Adapter{
		filter:   opts.Filter,
		log:      opts.Logger,
		run:      run,
		username: opts.Username,
		password: opts.Password,
	}
}

// svn runs the client in the working copy directory with global options.
func (a *Adapter) svn(ctx context.Context, dir string, args ...string) ([]byte, error) {
	full := []string{"--non-interactive"}
	if a.username != "" {
		full = append(full, "--username", a.username)
	}
	if a.password != "" {
		full = append(full, "--password", a.password)
	}
	full = append(full, args...)
	a.log.Debugf("svn %s", argsString(full))
	return a.run.Run(ctx, dir, full...)
}

// Open checks that path is an svn working copy.
func (a *Adapter) Open(path string) (*WorkingCopy, error) {
	if strings.TrimSpace(path) == "" {
		return nil, vcs.RepositoryNotFound(nil, "Svn repository path cannot be empty.")
	}
	path = filepath.Clean(path)
	if filepath.Base(path) == ".svn" {
		path = filepath.Dir(path)
	}
	if _, err := os.Stat(path); err != nil {
		return nil, vcs.RepositoryNotFound(err, "Svn repository path not found at location %s.", path)
	}

	out, err := a.svn(context.Background(), path, "info", "--xml", ".")
	if err != nil {
		return nil, vcs.RepositoryNotFound(err, "No svn working copy found at %s.", path)
	}
	entry, err := parseInfo(out)
	if err != nil {
		return nil, vcs.RepositoryNotFound(err, "No svn working copy found at %s.", path)
	}

	return &WorkingCopy{path: path, url: entry.URL, root: entry.Root}, nil
}

// Close is a no-op; svn keeps no handle open between commands.
func (a *Adapter) Close(*WorkingCopy) error { return nil }

// Head returns the last revision that changed the working copy.
func (a *Adapter) Head(ctx context.Context, wc *WorkingCopy) (Revision, error) {
	entry, err := a.info(ctx, wc, "")
	if err != nil {
		return 0, vcs.TreeNotFound(err, "Could not resolve current revision of svn repository located at %s.", wc.path)
	}
	return Revision(entry.Commit.Revision), nil
}

// Resolve maps a number, rNNN or an svn keyword to the last revision that
// changed the working copy at or before it.
func (a *Adapter) Resolve(ctx context.Context, wc *WorkingCopy, expr string) (Revision, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return 0, vcs.TreeNotFound(nil, "Revision cannot be empty.")
	}

	arg := strings.ToUpper(expr)
	if rev, ok := ParseRevision(expr); ok {
		arg = strconv.FormatInt(int64(rev), 10)
	}

	entry, err := a.info(ctx, wc, arg)
	if err != nil {
		return 0, vcs.TreeNotFound(err, "Could not resolve %s in svn repository located at %s.", expr, wc.path)
	}
	return Revision(entry.Commit.Revision), nil
}

// Previous returns the revision before rev that changed the working copy.
func (a *Adapter) Previous(ctx context.Context, wc *WorkingCopy, rev Revision) (Revision, error) {
	if rev <= 0 {
		return 0, vcs.TreeNotFound(nil, "Invalid svn revision %d.", rev)
	}

	out, err := a.svn(ctx, wc.path, "log", "--xml", "-l", "2", "-r", rangeArg(rev, 0), ".")
	if err != nil {
		return 0, vcs.TreeNotFound(err, "Could not read history of svn repository located at %s.", wc.path)
	}
	entries, err := parseLog(out)
	if err != nil {
		return 0, vcs.TreeNotFound(err, "Could not read history of svn repository located at %s.", wc.path)
	}

	for _, e := range entries {
		if Revision(e.Revision) < rev {
			return Revision(e.Revision), nil
		}
	}
	return 0, vcs.NoPreviousHead(wc.path)
}

// ChangesOf diffs the last committed revision against its predecessor.
func (a *Adapter) ChangesOf(ctx context.Context, wc *WorkingCopy) (*model.LastChanges, error) {
	head, err := a.Head(ctx, wc)
	if err != nil {
		return nil, err
	}
	prev, err := a.Previous(ctx, wc, head)
	if err != nil {
		return nil, err
	}
	return a.ChangesBetween(ctx, wc, head, prev)
}

// ChangesBetween runs svn diff between the two revisions.
func (a *Adapter) ChangesBetween(ctx context.Context, wc *WorkingCopy, current, previous Revision) (*model.LastChanges, error) {
	if current <= 0 {
		return nil, vcs.TreeParse(nil, "Could not parse svn revision %d.", current)
	}
	if previous <= 0 {
		return nil, vcs.TreeParse(nil, "Could not parse svn revision %d.", previous)
	}

	out, err := a.svn(ctx, wc.path, "diff", "-r", rangeArg(previous, current), ".")
	if err != nil {
		return nil, vcs.DiffFailed(err, "Could not retrieve last changes of svn repository located at %s.", wc.path)
	}
	diff := filterDiff(string(out), a.filter)

	curInfo, err := a.CommitInfo(ctx, wc, current)
	if err != nil {
		return nil, err
	}
	prevInfo, err := a.CommitInfo(ctx, wc, previous)
	if err != nil {
		return nil, err
	}

	return model.NewLastChanges(curInfo, prevInfo, diff), nil
}

// CommitInfo reads author, date and message of the last revision that
// changed the working copy at or before rev. svn has no e-mail.
func (a *Adapter) CommitInfo(ctx context.Context, wc *WorkingCopy, rev Revision) (model.CommitInfo, error) {
	if rev <= 0 {
		return model.CommitInfo{}, vcs.CommitInfoFailed(nil, "Could not get commit info from revision %d.", rev)
	}

	entry, err := a.info(ctx, wc, strconv.FormatInt(int64(rev), 10))
	if err != nil {
		return model.CommitInfo{}, vcs.CommitInfoFailed(err, "Could not get commit info from revision %d.", rev)
	}
	changed := Revision(entry.Commit.Revision)

	out, err := a.svn(ctx, wc.path, "log", "--xml", "-r", changed.number(), ".")
	if err != nil {
		return model.CommitInfo{}, vcs.CommitInfoFailed(err, "Could not get commit info from revision %d.", rev)
	}
	entries, err := parseLog(out)
	if err != nil {
		return model.CommitInfo{}, vcs.CommitInfoFailed(err, "Could not get commit info from revision %d.", rev)
	}
	if len(entries) == 0 {
		return model.CommitInfo{}, vcs.CommitInfoFailed(nil, "No log entry for revision %d.", changed)
	}

	return commitInfoOf(entries[0])
}

func commitInfoOf(e logEntry) (model.CommitInfo, error) {
	when, err := parseDate(e.Date)
	if err != nil {
		return model.CommitInfo{}, vcs.CommitInfoFailed(err, "Could not get commit info from revision %d.", e.Revision)
	}
	return model.NewCommitInfo(
		strconv.FormatInt(e.Revision, 10),
		e.Msg,
		e.Author,
		"",
		when.Local(),
	), nil
}

// LastTagRevision returns the newest revision among the entries of the
// tags directory next to the working copy.
func (a *Adapter) LastTagRevision(ctx context.Context, wc *WorkingCopy) (Revision, error) {
	out, err := a.svn(ctx, wc.path, "list", "--xml", ".")
	if err != nil {
		return 0, vcs.NoTagFound(err, "Could not retrieve latest tag revision on repository %s.", wc.path)
	}
	entries, err := parseList(out)
	if err != nil {
		return 0, vcs.NoTagFound(err, "Could not retrieve latest tag revision on repository %s.", wc.path)
	}

	var tagsDir string
	for _, e := range entries {
		if strings.EqualFold(e.Name, "tags") {
			tagsDir = e.Name
			break
		}
	}
	if tagsDir == "" {
		return 0, vcs.NoTagFound(nil, "Tags branch not found on repository %s. Make sure your repository have the 'tags' directory.", wc.path)
	}

	out, err = a.svn(ctx, wc.path, "list", "--xml", strings.TrimRight(wc.url, "/")+"/"+tagsDir)
	if err != nil {
		return 0, vcs.NoTagFound(err, "Could not retrieve latest tag revision on repository %s.", wc.path)
	}
	tags, err := parseList(out)
	if err != nil {
		return 0, vcs.NoTagFound(err, "Could not retrieve latest tag revision on repository %s.", wc.path)
	}

	var latest Revision
	for _, t := range tags {
		if rev := Revision(t.Commit.Revision); rev > latest {
			latest = rev
		}
	}
	if latest == 0 {
		return 0, vcs.NoTagFound(nil, "Last tag not found on repository %s.", wc.path)
	}
	return latest, nil
}

// CommitsBetween lists revisions after previous up to current, oldest first.
func (a *Adapter) CommitsBetween(ctx context.Context, wc *WorkingCopy, current, previous Revision) ([]Revision, error) {
	out, err := a.svn(ctx, wc.path, "log", "--xml", "-r", rangeArg(previous, current), ".")
	if err != nil {
		return nil, vcs.TreeNotFound(err, "Could not get commits between current revision %d and previous revision %d.", current, previous)
	}
	entries, err := parseLog(out)
	if err != nil {
		return nil, vcs.TreeNotFound(err, "Could not get commits between current revision %d and previous revision %d.", current, previous)
	}

	var revs []Revision
	for _, e := range entries {
		if Revision(e.Revision) == previous {
			continue
		}
		revs = append(revs, Revision(e.Revision))
	}
	// svn lists a reversed range newest first.
	sort.Slice(revs, func(i, j int) bool { return revs[i] < revs[j] })
	return revs, nil
}

// FormatRevision returns the bare revision number.
func (a *Adapter) FormatRevision(rev Revision) string {
	return rev.number()
}

func (r Revision) number() string {
	return strconv.FormatInt(int64(r), 10)
}

func rangeArg(from, to Revision) string {
	return from.number() + ":" + to.number()
}

func (a *Adapter) info(ctx context.Context, wc *WorkingCopy, rev string) (infoEntry, error) {
	args := []string{"info", "--xml"}
	if rev != "" {
		args = append(args, "-r", rev)
	}
	out, err := a.svn(ctx, wc.path, append(args, ".")...)
	if err != nil {
		return infoEntry{}, err
	}
	return parseInfo(out)
}

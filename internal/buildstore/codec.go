package buildstore

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/masmgr/lastchanges-go/internal/model"
	"github.com/masmgr/lastchanges-go/internal/vcs"
)

// codec serializes records to JSON. Diffs longer than threshold bytes are
// stored gzip-compressed; threshold <= 0 disables compression.
type codec struct {
	threshold int
}

func newCodec(threshold int) codec {
	return codec{threshold: threshold}
}

type recordPayload struct {
	Number     int             `json:"number"`
	Result     Result          `json:"result"`
	VCS        vcs.Kind        `json:"vcs"`
	Revision   string          `json:"revision"`
	RecordedAt time.Time       `json:"recordedAt"`
	Changes    *changesPayload `json:"changes,omitempty"`
}

type changesPayload struct {
	Current  model.CommitInfo `json:"current"`
	Previous model.CommitInfo `json:"previous"`
	Diff     diffPayload      `json:"diff"`
	Commits  []commitPayload  `json:"commits,omitempty"`
}

type commitPayload struct {
	Info model.CommitInfo `json:"info"`
	Diff diffPayload      `json:"diff"`
}

type diffPayload struct {
	Text string `json:"text,omitempty"`
	Gzip []byte `json:"gzip,omitempty"`
}

func (c codec) encode(rec Record) ([]byte, error) {
	p := recordPayload{
		Number:     rec.Number,
		Result:     rec.Result,
		VCS:        rec.VCS,
		Revision:   rec.Revision,
		RecordedAt: rec.RecordedAt,
	}

	if lc := rec.Changes; lc != nil {
		diff, err := c.packDiff(lc.Diff())
		if err != nil {
			return nil, err
		}
		p.Changes = &changesPayload{Current: lc.Current(), Previous: lc.Previous(), Diff: diff}
		for _, cc := range lc.Commits() {
			d, err := c.packDiff(cc.Diff())
			if err != nil {
				return nil, err
			}
			p.Changes.Commits = append(p.Changes.Commits, commitPayload{Info: cc.Info(), Diff: d})
		}
	}

	return json.Marshal(p)
}

func (c codec) decode(data []byte) (Record, error) {
	var p recordPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return Record{}, fmt.Errorf("decode build record: %w", err)
	}

	rec := Record{
		Number:     p.Number,
		Result:     p.Result,
		VCS:        p.VCS,
		Revision:   p.Revision,
		RecordedAt: p.RecordedAt,
	}

	if p.Changes != nil {
		diff, err := unpackDiff(p.Changes.Diff)
		if err != nil {
			return Record{}, fmt.Errorf("decode build %d diff: %w", p.Number, err)
		}
		commits := make([]model.CommitChanges, 0, len(p.Changes.Commits))
		for _, cp := range p.Changes.Commits {
			d, err := unpackDiff(cp.Diff)
			if err != nil {
				return Record{}, fmt.Errorf("decode build %d commit %s diff: %w", p.Number, cp.Info.ID, err)
			}
			commits = append(commits, model.NewCommitChanges(cp.Info, d))
		}
		rec.Changes = model.NewLastChanges(p.Changes.Current, p.Changes.Previous, diff).WithCommits(commits)
	}

	return rec, nil
}

func (c codec) packDiff(diff string) (diffPayload, error) {
	if c.threshold <= 0 || len(diff) <= c.threshold {
		return diffPayload{Text: diff}, nil
	}

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := io.WriteString(zw, diff); err != nil {
		return diffPayload{}, fmt.Errorf("compress diff: %w", err)
	}
	if err := zw.Close(); err != nil {
		return diffPayload{}, fmt.Errorf("compress diff: %w", err)
	}
	return diffPayload{Gzip: buf.Bytes()}, nil
}

func unpackDiff(d diffPayload) (string, error) {
	if len(d.Gzip) == 0 {
		return d.Text, nil
	}
	zr, err := gzip.NewReader(bytes.NewReader(d.Gzip))
	if err != nil {
		return "", err
	}
	defer zr.Close()

	out, err := io.ReadAll(zr)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

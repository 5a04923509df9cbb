package vcs

import (
	"errors"
	"fmt"
	"io"
	"testing"
)

func TestError_IsMatchesKind(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		kind error
	}{
		{name: "RepositoryNotFound", err: RepositoryNotFound(nil, "missing %s", "/tmp/x"), kind: ErrRepositoryNotFound},
		{name: "TreeNotFound", err: TreeNotFound(nil, "bad rev"), kind: ErrTreeNotFound},
		{name: "TreeParse", err: TreeParse(io.EOF, "parse"), kind: ErrTreeParse},
		{name: "Diff", err: DiffFailed(io.EOF, "diff"), kind: ErrDiff},
		{name: "CommitInfo", err: CommitInfoFailed(nil, "info"), kind: ErrCommitInfo},
		{name: "NoTag", err: NoTagFound(nil, "none"), kind: ErrNoTagFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.kind) {
				t.Errorf("errors.Is(%v, %v) = false", tt.err, tt.kind)
			}
			wrapped := fmt.Errorf("running: %w", tt.err)
			if !errors.Is(wrapped, tt.kind) {
				t.Errorf("wrapped error lost kind %v", tt.kind)
			}
			if KindOf(wrapped) != tt.kind {
				t.Errorf("KindOf() = %v, expected %v", KindOf(wrapped), tt.kind)
			}
		})
	}
}

func TestError_DoesNotMatchOtherKinds(t *testing.T) {
	err := TreeNotFound(nil, "bad rev")
	if errors.Is(err, ErrDiff) {
		t.Error("TreeNotFound matched ErrDiff")
	}
	if KindOf(io.EOF) != nil {
		t.Error("KindOf(io.EOF) should be nil")
	}
}

func TestError_MessageAndUnwrap(t *testing.T) {
	err := DiffFailed(io.ErrUnexpectedEOF, "could not diff %s", "HEAD")

	if got := err.Error(); got != "could not diff HEAD: unexpected EOF" {
		t.Errorf("Error() = %q", got)
	}
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Error("cause was not unwrapped")
	}
}

func TestNoPreviousHead(t *testing.T) {
	err := NoPreviousHead("/work/repo")

	expected := "Could not find previous head of repository located at /work/repo. Its your first commit?"
	if err.Error() != expected {
		t.Errorf("Error() = %q, expected %q", err.Error(), expected)
	}
	if !errors.Is(err, ErrTreeNotFound) {
		t.Error("expected ErrTreeNotFound kind")
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		input    string
		expected Kind
		wantErr  bool
	}{
		{input: "git", expected: Git},
		{input: " SVN ", expected: Svn},
		{input: "hg", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseKind(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseKind(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.expected {
				t.Errorf("ParseKind(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}

// Package blobstore is the file repository behind plan versions. Paths are
// POSIX-style virtual paths ("/Projekte/24-007/Pläne/...") rooted at the
// backend's configured base; the backends decide how they map onto the wire.
package blobstore

import (
	"context"
	"errors"
	"path"
	"strings"
)

// ErrNotExist is returned by Read when nothing is stored under the path.
var ErrNotExist = errors.New("blob does not exist")

// Store is the contract the version ledger and the orphan audit consume.
type Store interface {
	// EnsureDir creates a single directory if missing. It never fails the
	// caller; the outcome is reported in the result.
	EnsureDir(ctx context.Context, dir string) DirResult
	Write(ctx context.Context, p string, data []byte) error
	Read(ctx context.Context, p string) ([]byte, error)
	// List returns every file path below prefix, recursively.
	List(ctx context.Context, prefix string) ([]string, error)
}

type DirOutcome int

const (
	DirCreated DirOutcome = iota + 1
	DirExisted
	DirFailed
)

func (o DirOutcome) String() string {
	switch o {
	case DirCreated:
		return "created"
	case DirExisted:
		return "existed"
	case DirFailed:
		return "failed_ignored"
	default:
		return "unknown"
	}
}

// DirResult is the outcome of one directory creation attempt. Err is only
// set for DirFailed.
type DirResult struct {
	Path    string
	Outcome DirOutcome
	Err     error
}

func created(p string) DirResult { return DirResult{Path: p, Outcome: DirCreated} }
func existed(p string) DirResult { return DirResult{Path: p, Outcome: DirExisted} }
func failed(p string, err error) DirResult {
	return DirResult{Path: p, Outcome: DirFailed, Err: err}
}

// EnsureTree ensures dir and all of its ancestors, top-down. Failures are
// recorded and the walk continues: a "failed" parent is usually a lost race
// against a concurrent creator.
func EnsureTree(ctx context.Context, s Store, dir string) []DirResult {
	ancestors := Ancestors(dir)
	out := make([]DirResult, 0, len(ancestors))
	for _, p := range ancestors {
		out = append(out, s.EnsureDir(ctx, p))
	}
	return out
}

// Clean normalizes p into an absolute, slash-separated path.
func Clean(p string) string {
	p = strings.ReplaceAll(strings.TrimSpace(p), "\\", "/")
	return path.Clean("/" + p)
}

// Ancestors returns every directory from the top level down to dir itself:
// "/a/b/c" -> ["/a", "/a/b", "/a/b/c"]. The root yields nothing.
func Ancestors(dir string) []string {
	dir = Clean(dir)
	if dir == "/" {
		return nil
	}
	parts := strings.Split(strings.TrimPrefix(dir, "/"), "/")
	out := make([]string, 0, len(parts))
	cur := ""
	for _, part := range parts {
		cur += "/" + part
		out = append(out, cur)
	}
	return out
}

// Segment makes s safe to use as one path element.
func Segment(s string) string {
	s = strings.TrimSpace(s)
	s = strings.NewReplacer("/", "_", "\\", "_").Replace(s)
	switch s {
	case "", ".", "..":
		return "_"
	}
	return s
}

func contentTypeFor(p string) string {
	s := strings.ToLower(p)
	switch {
	case strings.HasSuffix(s, ".pdf"):
		return "application/pdf"
	case strings.HasSuffix(s, ".png"):
		return "image/png"
	case strings.HasSuffix(s, ".json"):
		return "application/json"
	default:
		return "application/octet-stream"
	}
}

package blobstore

import (
	"context"
	"fmt"
	"path"
	"time"

	"github.com/studio-b12/gowebdav"
)

// WebDAVStore talks to a WebDAV server such as Nextcloud
// (https://host/remote.php/dav/files/<user>).
type WebDAVStore struct {
	client *gowebdav.Client
}

func NewWebDAV(baseURL, username, password string) *WebDAVStore {
	c := gowebdav.NewClient(baseURL, username, password)
	c.SetTimeout(2 * time.Minute)
	return &WebDAVStore{client: c}
}

// EnsureDir checks with PROPFIND before MKCOL because gowebdav reports an
// existing collection (405) as success, which would hide "already existed".
func (s *WebDAVStore) EnsureDir(ctx context.Context, dir string) DirResult {
	dir = Clean(dir)
	if err := ctx.Err(); err != nil {
		return failed(dir, err)
	}

	if fi, err := s.client.Stat(dir); err == nil {
		if fi.IsDir() {
			return existed(dir)
		}
		return failed(dir, fmt.Errorf("%s exists and is not a collection", dir))
	}

	if err := s.client.Mkdir(dir, 0o755); err != nil {
		return failed(dir, err)
	}
	return created(dir)
}

func (s *WebDAVStore) Write(ctx context.Context, p string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.client.Write(Clean(p), data, 0o644); err != nil {
		return fmt.Errorf("webdav put: %w", err)
	}
	return nil
}

func (s *WebDAVStore) Read(ctx context.Context, p string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := s.client.Read(Clean(p))
	if err != nil {
		if gowebdav.IsErrNotFound(err) {
			return nil, fmt.Errorf("%s: %w", Clean(p), ErrNotExist)
		}
		return nil, fmt.Errorf("webdav get: %w", err)
	}
	return data, nil
}

func (s *WebDAVStore) List(ctx context.Context, prefix string) ([]string, error) {
	out := []string{}
	err := s.walk(ctx, Clean(prefix), &out)
	if err != nil && gowebdav.IsErrNotFound(err) {
		return []string{}, nil
	}
	return out, err
}

func (s *WebDAVStore) walk(ctx context.Context, dir string, out *[]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	entries, err := s.client.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		child := path.Join(dir, e.Name())
		if e.IsDir() {
			if err := s.walk(ctx, child, out); err != nil {
				return err
			}
			continue
		}
		*out = append(*out, child)
	}
	return nil
}

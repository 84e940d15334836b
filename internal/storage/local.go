package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// LocalService stores media on the local filesystem under a root dir.
// Objects are addressable below baseURL, where the surrounding server
// or proxy is expected to serve the root dir.
type LocalService struct {
	root    string
	baseURL string
}

func NewLocalService(root, baseURL string) (*LocalService, error) {
	clean := filepath.Clean(root)
	if err := os.MkdirAll(clean, 0o755); err != nil {
		return nil, fmt.Errorf("create media dir: %w", err)
	}
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		baseURL = "/media"
	}
	return &LocalService{root: clean, baseURL: baseURL}, nil
}

func (s *LocalService) Put(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	path, err := s.resolve(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create media subdir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create media file: %w", err)
	}
	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		return "", fmt.Errorf("write media file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close media file: %w", err)
	}
	return path, nil
}

func (s *LocalService) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	var objects []ObjectInfo
	err := filepath.Walk(s.root, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return fmt.Errorf("relative path for %s: %w", path, err)
		}
		key := filepath.ToSlash(rel)
		if prefix != "" && !strings.HasPrefix(key, prefix) {
			return nil
		}
		modified := info.ModTime()
		objects = append(objects, ObjectInfo{
			Key:          key,
			Size:         info.Size(),
			LastModified: &modified,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk media dir: %w", err)
	}
	return objects, nil
}

func (s *LocalService) Delete(ctx context.Context, key string) error {
	path, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("object %s: %w", key, ErrObjectNotFound)
		}
		return fmt.Errorf("remove media file: %w", err)
	}
	return nil
}

// URL joins the object key onto the configured base URL. Local files
// are served as-is, so expires does not apply.
func (s *LocalService) URL(ctx context.Context, key string, expires time.Duration) (string, error) {
	if _, err := s.resolve(key); err != nil {
		return "", err
	}
	return s.baseURL + "/" + strings.Trim(key, "/"), nil
}

// resolve maps a key to a path under root, rejecting escapes.
func (s *LocalService) resolve(key string) (string, error) {
	trimmed := strings.Trim(key, "/")
	if trimmed == "" {
		return "", fmt.Errorf("object key is required")
	}
	path := filepath.Join(s.root, filepath.FromSlash(trimmed))
	if rel, err := filepath.Rel(s.root, path); err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("invalid object key")
	}
	return path, nil
}

var _ Service = (*LocalService)(nil)

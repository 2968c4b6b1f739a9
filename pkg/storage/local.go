package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// LocalStore writes files under a directory that the router serves
// statically at publicPrefix.
type LocalStore struct {
	dir          string
	publicPrefix string
}

func NewLocalStore(dir, publicPrefix string) *LocalStore {
	return &LocalStore{
		dir:          dir,
		publicPrefix: "/" + strings.Trim(publicPrefix, "/"),
	}
}

func (s *LocalStore) Save(ctx context.Context, folder, name, contentType string, body io.Reader) (string, error) {
	targetDir := filepath.Join(s.dir, folder)
	if err := os.MkdirAll(targetDir, 0755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	// O_EXCL: an existing name is never overwritten
	f, err := os.OpenFile(filepath.Join(targetDir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}

	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("write file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close file: %w", err)
	}

	return path.Join(s.publicPrefix, folder, name), nil
}

func (s *LocalStore) Delete(ctx context.Context, ref string) error {
	rel := strings.TrimPrefix(ref, s.publicPrefix+"/")
	if rel == ref || strings.Contains(rel, "..") {
		return fmt.Errorf("reference %q is not managed by this store", ref)
	}
	if err := os.Remove(filepath.Join(s.dir, filepath.FromSlash(rel))); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove file: %w", err)
	}
	return nil
}

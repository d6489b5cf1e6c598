package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type localStorage struct {
	baseDir string
}

// NewLocalStorage stores blobs under baseDir, creating it if needed.
func NewLocalStorage(baseDir string) (Storage, error) {
	absDir, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve upload directory: %w", err)
	}

	if err := os.MkdirAll(absDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	return &localStorage{baseDir: absDir}, nil
}

// resolve maps a storage key to a path under baseDir, rejecting keys that
// would escape it.
func (s *localStorage) resolve(key string) (string, error) {
	path := filepath.Join(s.baseDir, filepath.FromSlash(key))
	if !strings.HasPrefix(path, s.baseDir+string(os.PathSeparator)) {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return path, nil
}

func (s *localStorage) Upload(_ context.Context, key string, data []byte, _ string) error {
	path, err := s.resolve(key)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create blob directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write blob: %w", err)
	}

	return nil
}

func (s *localStorage) Download(_ context.Context, key string) ([]byte, error) {
	path, err := s.resolve(key)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read blob: %w", err)
	}

	return data, nil
}

func (s *localStorage) Delete(_ context.Context, key string) error {
	path, err := s.resolve(key)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to delete blob: %w", err)
	}

	return nil
}

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/Veraticus/hr-attrition/internal/common"
	"github.com/Veraticus/hr-attrition/internal/model"
)

// FileArtifactStore persists the trained model bundle as one JSON file.
type FileArtifactStore struct {
	path string
}

// NewFileArtifactStore creates a store for the bundle at path.
func NewFileArtifactStore(path string) (*FileArtifactStore, error) {
	if err := validateString(path, "path"); err != nil {
		return nil, err
	}
	return &FileArtifactStore{path: filepath.Clean(path)}, nil
}

// Path returns the bundle location.
func (s *FileArtifactStore) Path() string {
	return s.path
}

// Load reads the bundle. A missing file yields common.ErrArtifactsMissing and
// an unreadable or inconsistent one yields common.ErrArtifactsCorrupted.
func (s *FileArtifactStore) Load(ctx context.Context) (*model.Artifacts, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	// #nosec G304 - path comes from configuration
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", common.ErrArtifactsMissing, s.path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read model artifacts: %w", err)
	}

	var artifacts model.Artifacts
	if err := json.Unmarshal(data, &artifacts); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrArtifactsCorrupted, err)
	}
	if err := artifacts.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrArtifactsCorrupted, err)
	}

	return &artifacts, nil
}

// Save replaces the bundle. The new content is written to a temporary file in
// the same directory and renamed over the target, so readers never observe a
// partial bundle.
func (s *FileArtifactStore) Save(ctx context.Context, artifacts *model.Artifacts) (err error) {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if artifacts == nil {
		return fmt.Errorf("%w: artifacts", ErrNilParameter)
	}
	if err := artifacts.Validate(); err != nil {
		return fmt.Errorf("refusing to save inconsistent artifacts: %w", err)
	}

	data, err := json.MarshalIndent(artifacts, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode model artifacts: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create model directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write model artifacts: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to sync model artifacts: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close model artifacts: %w", err)
	}

	// Atomic rename
	if err = os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("failed to install model artifacts: %w", err)
	}
	return nil
}

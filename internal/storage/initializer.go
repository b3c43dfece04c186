package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/agentbrain/brain/internal/models"
)

// InitResult lists the root-relative paths the initializer created versus
// those it left alone.
type InitResult struct {
	Created []string `json:"created"`
	Skipped []string `json:"skipped"`
}

// Init creates the directory skeleton and the empty index artifacts. It is
// idempotent: existing files are never overwritten, re-running reports them
// as skipped.
func (s *Store) Init() (*InitResult, error) {
	for _, dir := range CategoryDirs {
		if err := os.MkdirAll(filepath.Join(s.root, dir), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	now := models.FormatTimestamp(s.now())
	manifest, err := json.MarshalIndent(models.NewManifest(now), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal empty manifest: %w", err)
	}
	tags, err := json.MarshalIndent(models.TagsConfig{Axes: models.DefaultAxes}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tags config: %w", err)
	}
	folders, err := json.MarshalIndent(models.FolderRegistry{Folders: folderCategories}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal folder registry: %w", err)
	}
	policy, err := models.DefaultPolicy().Format()
	if err != nil {
		return nil, err
	}

	seeds := []struct {
		rel  string
		data []byte
	}{
		{filepath.Join(DirIndex, FileRecords), []byte{}},
		{filepath.Join(DirIndex, FileManifest), append(manifest, '\n')},
		{filepath.Join(DirIndex, FileDigest), []byte(digestHeader)},
		{filepath.Join(DirIndex, FileTags), append(tags, '\n')},
		{filepath.Join(DirIndex, FileFolders), append(folders, '\n')},
		{filepath.Join(DirPolicy, FilePolicy), policy},
	}

	result := &InitResult{}
	for _, seed := range seeds {
		path := filepath.Join(s.root, seed.rel)
		if _, err := os.Stat(path); err == nil {
			result.Skipped = append(result.Skipped, filepath.ToSlash(seed.rel))
			continue
		}
		if err := os.WriteFile(path, seed.data, 0o644); err != nil {
			return nil, fmt.Errorf("failed to seed %s: %w", seed.rel, err)
		}
		result.Created = append(result.Created, filepath.ToSlash(seed.rel))
	}
	return result, nil
}

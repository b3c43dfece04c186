package storage

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/agentbrain/brain/internal/models"
)

// readManifest loads and parses a manifest file. A missing file is returned
// as-is so callers can distinguish absence from corruption.
func readManifest(path string) (*models.Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m := &models.Manifest{}
	if err := json.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if m.Summary.ByCategory == nil {
		m.Summary.ByCategory = map[string]int{}
	}
	if m.Files == nil {
		m.Files = []models.ManifestEntry{}
	}
	return m, nil
}

// writeManifest rewrites a manifest file whole, pretty-printed.
func writeManifest(path string, m *models.Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

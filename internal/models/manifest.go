package models

// ManifestVersion is the current manifest schema version.
const ManifestVersion = 1

// ManifestEntry describes one tracked document.
type ManifestEntry struct {
	Path      string `json:"path"`
	Hash      string `json:"hash"`
	Size      int64  `json:"size"`
	UpdatedAt string `json:"updatedAt"`
	Category  string `json:"category"`
}

// ManifestSummary holds per-category totals.
type ManifestSummary struct {
	TotalFiles int            `json:"totalFiles"`
	ByCategory map[string]int `json:"byCategory"`
}

// Manifest maps document paths (relative to the root) to their recorded hash
// and size. It is a derived artifact: the write engine rewrites it on every
// commit.
type Manifest struct {
	Version   int             `json:"version"`
	UpdatedAt string          `json:"updatedAt"`
	Summary   ManifestSummary `json:"summary"`
	Files     []ManifestEntry `json:"files"`
}

// NewManifest returns an empty manifest stamped with the given timestamp.
func NewManifest(updatedAt string) *Manifest {
	return &Manifest{
		Version:   ManifestVersion,
		UpdatedAt: updatedAt,
		Summary:   ManifestSummary{ByCategory: map[string]int{}},
		Files:     []ManifestEntry{},
	}
}

// Clone returns a deep copy of the manifest.
func (m *Manifest) Clone() *Manifest {
	c := *m
	c.Files = append([]ManifestEntry(nil), m.Files...)
	c.Summary.ByCategory = make(map[string]int, len(m.Summary.ByCategory))
	for k, v := range m.Summary.ByCategory {
		c.Summary.ByCategory[k] = v
	}
	return &c
}

// Lookup returns the entry for path, or nil.
func (m *Manifest) Lookup(path string) *ManifestEntry {
	for i := range m.Files {
		if m.Files[i].Path == path {
			return &m.Files[i]
		}
	}
	return nil
}

// Upsert adds or replaces the entry for entry.Path, preserving insertion
// order for existing paths.
func (m *Manifest) Upsert(entry ManifestEntry) {
	for i := range m.Files {
		if m.Files[i].Path == entry.Path {
			m.Files[i] = entry
			return
		}
	}
	m.Files = append(m.Files, entry)
}

// Remove drops the entry for path. Removing an absent path is a no-op.
func (m *Manifest) Remove(path string) {
	for i := range m.Files {
		if m.Files[i].Path == path {
			m.Files = append(m.Files[:i], m.Files[i+1:]...)
			return
		}
	}
}

// RecomputeSummary rebuilds the per-category totals from the file list.
func (m *Manifest) RecomputeSummary() {
	byCategory := make(map[string]int)
	for _, f := range m.Files {
		byCategory[f.Category]++
	}
	m.Summary = ManifestSummary{
		TotalFiles: len(m.Files),
		ByCategory: byCategory,
	}
}

// TagsConfig declares the permitted tag axes. Persisted as tags.json.
type TagsConfig struct {
	Axes []string `json:"axes"`
}

// FolderRegistry declares the fixed category folders. Persisted as
// folderRegistry.json.
type FolderRegistry struct {
	Folders map[string]string `json:"folders"`
}

package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
)

// EnvRoot is the environment variable naming the store root.
const EnvRoot = "BRAIN_ROOT"

// defaultRootName is the directory name probed in the home directory and in
// ancestors of the working directory.
const defaultRootName = "Brain"

// Store is the handle to one on-disk brain. All components take the root
// through it; nothing reads global state after construction.
type Store struct {
	root string
	now  func() time.Time
	git  *GitService // nil when versioning is off
}

// NewStore returns a store rooted at root. The directory does not need to
// exist yet; Init creates the skeleton.
func NewStore(root string) *Store {
	return &Store{root: root, now: time.Now}
}

// Root returns the store's root directory.
func (s *Store) Root() string {
	return s.root
}

// AttachGit enables best-effort git versioning of successful commits.
func (s *Store) AttachGit(g *GitService) {
	s.git = g
}

// DiscoverRoot resolves the store root: explicit argument, then $BRAIN_ROOT
// (after loading an optional .env), then a "Brain" directory in the user's
// home, then the first ancestor of the working directory containing
// Brain/90_index.
func DiscoverRoot(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}

	// .env values never override variables already set in the environment.
	_ = godotenv.Load()
	if env := os.Getenv(EnvRoot); env != "" {
		return env, nil
	}

	if home, err := os.UserHomeDir(); err == nil {
		candidate := filepath.Join(home, defaultRootName)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate, nil
		}
	}

	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to resolve working directory: %w", err)
	}
	for dir := wd; ; dir = filepath.Dir(dir) {
		candidate := filepath.Join(dir, defaultRootName)
		if info, err := os.Stat(filepath.Join(candidate, DirIndex)); err == nil && info.IsDir() {
			return candidate, nil
		}
		if filepath.Dir(dir) == dir {
			break
		}
	}

	return "", fmt.Errorf("no brain root found: pass one explicitly or set %s", EnvRoot)
}

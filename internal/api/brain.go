// Package api is the external-interface adapter: a typed facade over the
// storage services for the CLI and any other out-of-process caller.
package api

import (
	"context"
	"time"

	"github.com/agentbrain/brain/internal/models"
	"github.com/agentbrain/brain/internal/storage"
)

// Config selects the store a Brain operates on.
type Config struct {
	// Root is the store root. Empty means discover it (argument, BRAIN_ROOT,
	// ~/Brain, ancestor scan).
	Root string
	// Git forces versioning on even when the root is not yet a repository.
	Git bool
}

// Brain is the facade callers hold. One Brain is one session: its
// construction time is the session start the delete gate compares against.
type Brain struct {
	store        *storage.Store
	sessionStart time.Time
}

// Open resolves the root and constructs the facade. Versioning attaches when
// the root already is a git repository, or unconditionally with cfg.Git.
func Open(cfg Config) (*Brain, error) {
	root, err := storage.DiscoverRoot(cfg.Root)
	if err != nil {
		return nil, err
	}
	store := storage.NewStore(root)
	var git *storage.GitService
	if cfg.Git {
		git, err = storage.InitGit(root)
	} else {
		git, err = storage.OpenGit(root)
	}
	if err != nil {
		return nil, err
	}
	if git != nil {
		store.AttachGit(git)
	}
	return &Brain{store: store, sessionStart: time.Now()}, nil
}

// Root returns the resolved store root.
func (b *Brain) Root() string {
	return b.store.Root()
}

// SessionStart returns the session's reference time for the delete gate.
func (b *Brain) SessionStart() time.Time {
	return b.sessionStart
}

// Init creates the directory skeleton and the empty index artifacts.
func (b *Brain) Init() (*storage.InitResult, error) {
	return b.store.Init()
}

// Write submits one intent to the transaction engine.
func (b *Brain) Write(intent *models.Intent) *models.WriteResponse {
	return b.store.Write(intent)
}

// Query runs the digest-first query pipeline.
func (b *Brain) Query(req *models.QueryRequest) (*models.QueryResponse, error) {
	return b.store.Query(req)
}

// Get returns the full record plus a document preview, or nil when unknown.
func (b *Brain) Get(recordID string) (*models.RecordDetail, error) {
	return b.store.Get(recordID)
}

// Boot loads policy and manifest, reports drift, and declares scope.
func (b *Brain) Boot(scope *models.Scope) (*storage.BootResult, error) {
	return b.store.Boot(scope)
}

// Validate checks the committed store; full adds the contamination and
// back-reference detectors.
func (b *Brain) Validate(full bool) (*storage.ValidationReport, error) {
	return b.store.Validate(full)
}

// GateDelete runs the delete preconditions for a record. sessionStart nil
// means this session's start. The returned list names every unmet
// precondition; empty means the delete may proceed.
func (b *Brain) GateDelete(recordID string, sessionStart *time.Time, userConfirmed bool) ([]string, error) {
	start := b.sessionStart
	if sessionStart != nil {
		start = *sessionStart
	}
	return b.store.GateDelete(recordID, start, userConfirmed)
}

// Contamination scans active records for SSOT types with unconfirmed
// sources.
func (b *Brain) Contamination() ([]models.Contaminant, error) {
	return b.store.Contamination()
}

// Watch blocks, re-running the drift check on external edits, until ctx is
// done.
func (b *Brain) Watch(ctx context.Context) error {
	return b.store.Watch(ctx)
}

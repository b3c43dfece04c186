package storage

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/agentbrain/brain/internal/errors"
	"github.com/agentbrain/brain/internal/jsonldb"
	"github.com/agentbrain/brain/internal/models"
)

// tmpSuffix and bakSuffix mark a transaction's side files. They always live
// next to their target.
const (
	tmpSuffix = ".tmp"
	bakSuffix = ".bak"
)

// txn carries the state of one write transaction across its steps.
type txn struct {
	s      *Store
	intent *models.Intent
	id     string
	now    string

	// backups lists the original absolute paths that have a .bak copy.
	backups []string
	// tmps lists absolute .tmp paths staged so far, for rollback.
	tmps []string

	// staged state
	records  []models.Record
	manifest *models.Manifest
	target   *models.Record // the record this intent creates or mutates
	docRel   string         // root-relative document path, "" when none
	content  *string
	hash     string // content hash of staged content, "" when none

	report *models.WriteReport
}

// Write runs one transaction through the nine steps and the commit. Every
// failure path rolls back before returning; the response never carries a
// half-applied state.
func (s *Store) Write(intent *models.Intent) *models.WriteResponse {
	t := &txn{
		s:      s,
		intent: intent,
		id:     uuid.NewString(),
		now:    models.FormatTimestamp(s.now()),
		report: &models.WriteReport{},
	}
	t.report.TxnID = t.id

	steps := []struct {
		name string
		run  func() error
	}{
		{"intent", t.validateIntent},
		{"residue", t.checkResidue},
		{"backup", t.backupTargets},
		{"prepare", t.prepareDirectories},
		{"document", t.stageDocument},
		{"records", t.stageRecords},
		{"manifest", t.stageManifest},
		{"digest", t.stageDigest},
		{"validate", t.validateStaged},
	}
	for _, step := range steps {
		slog.Debug("bwt step", "txn", t.id, "step", step.name)
		if err := step.run(); err != nil {
			t.rollback()
			return t.fail(step.name, err)
		}
	}
	if err := t.commit(); err != nil {
		t.rollback()
		return t.fail("commit", err)
	}
	t.cleanup()
	t.versionCommit()

	t.report.Message = fmt.Sprintf("%s committed", t.intent.Action)
	resp := &models.WriteResponse{Success: true, Report: *t.report}
	if t.target != nil {
		resp.RecordID = t.target.RecordID
	}
	return resp
}

// fail converts a step error into a response carrying its message and its
// per-field reasons. The error code itself is not part of the report.
func (t *txn) fail(step string, err error) *models.WriteResponse {
	t.report.Step = step
	t.report.Message = err.Error()
	if reasons := errors.ReasonsOf(err); len(reasons) > 0 {
		t.report.Errors = append(t.report.Errors, reasons...)
	} else {
		t.report.Errors = append(t.report.Errors, err.Error())
	}
	slog.Debug("bwt failed", "txn", t.id, "step", step, "err", err)
	return &models.WriteResponse{Success: false, Report: *t.report}
}

// Step 1: structural intent validation. No files are touched.
func (t *txn) validateIntent() error {
	if problems := t.intent.Problems(); len(problems) > 0 {
		return errors.IntentInvalid(problems...)
	}
	if t.intent.Action == models.ActionCreate && !safeRel(t.intent.SourceRef) {
		return errors.IntentInvalid(fmt.Sprintf("sourceRef: %q escapes the root", t.intent.SourceRef))
	}
	t.content = t.intent.Content
	return nil
}

// Step 2: refuse to start over the residue of an unfinished transaction.
func (t *txn) checkResidue() error {
	residue, err := scanResidue(filepath.Join(t.s.root, DirIndex), tmpSuffix)
	if err != nil {
		return errors.IOFault("failed to scan index folder", err)
	}
	if len(residue) > 0 {
		return errors.Residue(residue...)
	}
	return nil
}

// Step 3: load the records sequence, resolve the target record, and back up
// every existing file this intent may touch.
func (t *txn) backupTargets() error {
	records, err := jsonldb.ReadFile[models.Record](t.s.indexPath(FileRecords))
	if err != nil {
		return errors.IOFault("failed to load records", err)
	}
	t.records = records

	switch t.intent.Action {
	case models.ActionCreate:
		t.docRel = t.intent.SourceRef
	case models.ActionUpdate, models.ActionDeprecate, models.ActionDelete:
		for i := range t.records {
			if t.records[i].RecordID == t.intent.RecordID {
				t.target = &t.records[i]
				break
			}
		}
		if t.target == nil {
			return errors.NotFound(t.intent.RecordID)
		}
		t.docRel = t.target.SourceRef
	}

	touched := []string{
		t.s.indexPath(FileRecords),
		t.s.indexPath(FileManifest),
		t.s.indexPath(FileDigest),
	}
	if t.docRel != "" && (t.intent.Action == models.ActionUpdate || t.intent.Action == models.ActionDelete) {
		touched = append(touched, t.s.docPath(t.docRel))
	}
	for _, path := range touched {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := copyFile(path, path+bakSuffix); err != nil {
			return errors.IOFault(fmt.Sprintf("failed to back up %s", filepath.Base(path)), err)
		}
		t.backups = append(t.backups, path)
	}
	return nil
}

// Step 4: make sure the document's parent directory exists. New folders are
// auto-created only under 30_topics/; anywhere else the caller must opt in.
func (t *txn) prepareDirectories() error {
	if t.intent.Action != models.ActionCreate {
		return nil
	}
	dir := filepath.Dir(t.s.docPath(t.docRel))
	if _, err := os.Stat(dir); err == nil {
		return nil
	}
	topics := strings.HasPrefix(t.docRel, DirTopics+"/")
	if !topics && !t.intent.AllowNewFolder {
		return errors.ScopeViolation(fmt.Sprintf(
			"folder auto-create for %q is only permitted under %s/; pass allowNewFolder to override", t.docRel, DirTopics))
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.IOFault("failed to create document directory", err)
	}
	return nil
}

// Step 5: stage the document bytes next to their final location.
func (t *txn) stageDocument() error {
	if t.content == nil {
		return nil
	}
	if t.docRel == "" {
		return errors.IntentInvalid("content: the target record has no sourceRef document")
	}
	path := t.s.docPath(t.docRel) + tmpSuffix
	if err := os.WriteFile(path, []byte(*t.content), 0o644); err != nil {
		return errors.IOFault("failed to stage document", err)
	}
	t.tmps = append(t.tmps, path)
	// Hash once from the same bytes that were written; the staged file is
	// asserted against this value in step 9.
	t.hash = jsonldb.HashString(*t.content)
	return nil
}

// Step 6: apply the mutation to the records sequence and stage it.
func (t *txn) stageRecords() error {
	switch t.intent.Action {
	case models.ActionCreate:
		ids := make([]string, 0, len(t.records))
		for _, r := range t.records {
			ids = append(ids, r.RecordID)
		}
		d := t.intent.Record
		rec := models.Record{
			RecordID:    jsonldb.MintRecordID(d.ScopeType.Abbrev(), d.ScopeID, ids, t.s.now()),
			ScopeType:   d.ScopeType,
			ScopeID:     d.ScopeID,
			Type:        d.Type,
			Title:       d.Title,
			Summary:     d.Summary,
			Tags:        append([]string{}, d.Tags...),
			SourceType:  d.SourceType,
			SourceRef:   t.intent.SourceRef,
			Status:      models.StatusActive,
			UpdatedAt:   t.now,
			ContentHash: t.hash,
		}
		if rec.Title == "" {
			rec.Title = TitleFromMarkdown(*t.content, t.intent.SourceRef)
		}
		t.records = append(t.records, rec)
		t.target = &t.records[len(t.records)-1]

	case models.ActionUpdate:
		p := t.intent.Patch
		if p != nil {
			if p.Title != nil {
				t.target.Title = *p.Title
			}
			if p.Summary != nil {
				t.target.Summary = *p.Summary
			}
			if p.Tags != nil {
				t.target.Tags = append([]string{}, (*p.Tags)...)
			}
			if p.Type != nil {
				t.target.Type = *p.Type
			}
			if p.SourceType != nil {
				t.target.SourceType = *p.SourceType
			}
		}
		if t.content != nil {
			t.target.ContentHash = t.hash
		}
		t.target.UpdatedAt = t.now

	case models.ActionDeprecate:
		replacedBy := t.intent.ReplacedBy
		t.target.Status = models.StatusDeprecated
		t.target.ReplacedBy = &replacedBy
		if t.intent.DeprecationReason != "" {
			reason := t.intent.DeprecationReason
			t.target.DeprecationReason = &reason
		}
		t.target.UpdatedAt = t.now

	case models.ActionDelete:
		kept := make([]models.Record, 0, len(t.records)-1)
		for _, r := range t.records {
			if r.RecordID != t.intent.RecordID {
				kept = append(kept, r)
			}
		}
		t.records = kept
	}

	path := t.s.indexPath(FileRecords) + tmpSuffix
	if err := jsonldb.WriteFile(path, t.records); err != nil {
		return errors.IOFault("failed to stage records", err)
	}
	t.tmps = append(t.tmps, path)
	return nil
}

// Step 7: stage the manifest with the sourceRef entry added, refreshed, or
// removed, and the summary recomputed.
func (t *txn) stageManifest() error {
	manifest, err := readManifest(t.s.indexPath(FileManifest))
	if err != nil {
		if !os.IsNotExist(err) {
			return errors.IOFault("failed to load manifest", err)
		}
		manifest = models.NewManifest(t.now)
	}
	t.manifest = manifest

	switch {
	case t.intent.Action == models.ActionDelete:
		if t.docRel != "" {
			t.manifest.Remove(t.docRel)
		}
	case t.content != nil:
		t.manifest.Upsert(models.ManifestEntry{
			Path:      t.docRel,
			Hash:      t.hash,
			Size:      int64(len(*t.content)),
			UpdatedAt: t.now,
			Category:  CategoryForPath(t.docRel),
		})
	}
	t.manifest.RecomputeSummary()
	t.manifest.UpdatedAt = t.now

	path := t.s.indexPath(FileManifest) + tmpSuffix
	if err := writeManifest(path, t.manifest); err != nil {
		return errors.IOFault("failed to stage manifest", err)
	}
	t.tmps = append(t.tmps, path)
	return nil
}

// Step 8: reproject the staged records into the digest.
func (t *txn) stageDigest() error {
	path := t.s.indexPath(FileDigest) + tmpSuffix
	if err := os.WriteFile(path, []byte(ProjectDigest(t.records)), 0o644); err != nil {
		return errors.IOFault("failed to stage digest", err)
	}
	t.tmps = append(t.tmps, path)
	return nil
}

// Step 9: re-read the staged index artifacts and validate them as a whole.
// Anything wrong here aborts before a single final file is touched.
func (t *txn) validateStaged() error {
	records, err := jsonldb.ReadFile[models.Record](t.s.indexPath(FileRecords) + tmpSuffix)
	if err != nil {
		return errors.SchemaViolation("staged records unreadable: " + err.Error())
	}
	manifest, err := readManifest(t.s.indexPath(FileManifest) + tmpSuffix)
	if err != nil {
		return errors.SchemaViolation("staged manifest unreadable: " + err.Error())
	}
	digest, err := os.ReadFile(t.s.indexPath(FileDigest) + tmpSuffix)
	if err != nil {
		return errors.SchemaViolation("staged digest unreadable: " + err.Error())
	}

	var problems []string
	seen := make(map[string]bool, len(records))
	for _, r := range records {
		for _, p := range r.Problems() {
			problems = append(problems, fmt.Sprintf("%s: %s", r.RecordID, p))
		}
		if seen[r.RecordID] {
			problems = append(problems, fmt.Sprintf("%s: duplicate recordId", r.RecordID))
		}
		seen[r.RecordID] = true
	}

	if string(digest) != ProjectDigest(records) {
		problems = append(problems, "digest: staged digest is not the projection of the staged records")
	}

	if t.content != nil {
		entry := manifest.Lookup(t.docRel)
		if entry == nil {
			problems = append(problems, fmt.Sprintf("manifest: no entry for staged document %s", t.docRel))
		} else {
			actual, err := jsonldb.HashFile(t.s.docPath(t.docRel) + tmpSuffix)
			if err != nil {
				problems = append(problems, "manifest: staged document unreadable: "+err.Error())
			} else if actual != entry.Hash {
				problems = append(problems, fmt.Sprintf("manifest: hash for %s does not match the staged document", t.docRel))
			}
		}
	}

	if len(problems) > 0 {
		return errors.SchemaViolation(problems...)
	}
	return nil
}

// commit renames each staged file onto its final name in the fixed order
// document, records, manifest, digest. A delete removes the document in the
// document slot instead. A failed rename un-renames the committed prefix and
// reports the fault; the caller rolls back.
func (t *txn) commit() error {
	if t.intent.Action == models.ActionDelete && t.docRel != "" {
		if err := os.Remove(t.s.docPath(t.docRel)); err != nil && !os.IsNotExist(err) {
			return errors.IOFault("failed to remove document", err)
		}
	}

	var order []string
	if t.content != nil {
		order = append(order, t.s.docPath(t.docRel))
	}
	order = append(order,
		t.s.indexPath(FileRecords),
		t.s.indexPath(FileManifest),
		t.s.indexPath(FileDigest),
	)

	var committed []string
	for _, path := range order {
		if err := os.Rename(path+tmpSuffix, path); err != nil {
			for _, done := range committed {
				_ = os.Rename(done, done+tmpSuffix)
			}
			return errors.IOFault(fmt.Sprintf("failed to commit %s", filepath.Base(path)), err)
		}
		committed = append(committed, path)
	}
	t.tmps = nil
	return nil
}

// cleanup unlinks the backups of a successful commit. Best effort: a
// surviving .bak is a residue warning on the next validate, not a failure.
func (t *txn) cleanup() {
	for _, path := range t.backups {
		if err := os.Remove(path + bakSuffix); err != nil {
			slog.Warn("backup cleanup failed", "txn", t.id, "path", path+bakSuffix, "err", err)
		}
	}
}

// rollback discards staged files and restores every backup. It never fails;
// whatever it cannot undo surfaces as residue on the next run.
func (t *txn) rollback() {
	for _, path := range t.tmps {
		_ = os.Remove(path)
	}
	for _, path := range t.backups {
		if err := copyFile(path+bakSuffix, path); err != nil {
			slog.Warn("rollback restore failed", "txn", t.id, "path", path, "err", err)
			continue
		}
		_ = os.Remove(path + bakSuffix)
	}
}

// versionCommit records the successful transaction in git when versioning is
// attached. The store is already consistent; a git failure is a warning.
func (t *txn) versionCommit() {
	if t.s.git == nil {
		return
	}
	paths := []string{
		DirIndex + "/" + FileRecords,
		DirIndex + "/" + FileManifest,
		DirIndex + "/" + FileDigest,
	}
	if t.docRel != "" {
		paths = append(paths, t.docRel)
	}
	msg := string(t.intent.Action)
	if t.target != nil {
		msg = fmt.Sprintf("%s: %s", t.intent.Action, t.target.RecordID)
	} else if t.intent.RecordID != "" {
		msg = fmt.Sprintf("%s: %s", t.intent.Action, t.intent.RecordID)
	}
	if err := t.s.git.Commit(msg, paths); err != nil {
		t.report.Warnings = append(t.report.Warnings, "git commit failed: "+err.Error())
	}
}

// scanResidue lists index-folder entries with the given suffix.
func scanResidue(dir, suffix string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var found []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), suffix) {
			found = append(found, e.Name())
		}
	}
	return found, nil
}

// copyFile copies src to dst, replacing dst.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		_ = in.Close()
	}()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

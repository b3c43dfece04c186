package storage

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch observes the category folders, their subfolders, and the index folder
// for external edits and re-runs the drift check whenever something changes.
// Folders created after the watch starts are not added. It is purely
// observational: mismatches are logged, never reconciled. Blocks until ctx
// is done.
func (s *Store) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() {
		_ = w.Close()
	}()

	for _, dir := range CategoryDirs {
		path := filepath.Join(s.root, dir)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		err := filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return w.Add(p)
			}
			return nil
		})
		if err != nil {
			return err
		}
	}

	slog.Info("watching for external edits", "root", s.root)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			// Side files of a transaction in flight are not external edits.
			ext := filepath.Ext(event.Name)
			if ext == tmpSuffix || ext == bakSuffix {
				continue
			}
			manifest, err := readManifest(s.indexPath(FileManifest))
			if err != nil {
				slog.Warn("drift re-check skipped", "err", err)
				continue
			}
			for _, m := range s.driftCheck(manifest) {
				slog.Warn("drift detected", "path", m.Path, "reason", m.Reason)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watch error", "err", err)
		}
	}
}

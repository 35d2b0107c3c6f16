// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package artifact

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// rename is swapped in tests to simulate publish failures.
var rename = os.Rename

type fileContent struct {
	name string
	data []byte
}

// stagedFile tracks one file through staging, backup, and commit.
type stagedFile struct {
	final    string
	tmp      string
	backup   string
	replaced bool
	done     bool
}

// WriteFile writes data to a temporary file beside path, syncs it, and
// renames it over path.
func WriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	tmp, err := stage(dir, filepath.Base(path), data)
	if err != nil {
		return err
	}
	if err := rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// publish stages every file, then commits them in order. A failure while
// staging leaves the targets untouched; a failure while committing restores
// the files already replaced.
func publish(ctx context.Context, dir string, files []fileContent) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	staged := make([]*stagedFile, 0, len(files))
	discard := func() {
		for _, s := range staged {
			if !s.done {
				os.Remove(s.tmp)
			}
		}
	}

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			discard()
			return err
		}
		tmp, err := stage(dir, f.name, f.data)
		if err != nil {
			discard()
			return err
		}
		staged = append(staged, &stagedFile{
			final:  filepath.Join(dir, f.name),
			tmp:    tmp,
			backup: filepath.Join(dir, "."+f.name+".bak"),
		})
	}

	for _, s := range staged {
		if err := commit(s); err != nil {
			rollback(staged)
			discard()
			return err
		}
	}

	for _, s := range staged {
		if s.replaced {
			os.Remove(s.backup)
		}
	}
	return nil
}

// stage writes data to a synced temporary file in dir and returns its path.
func stage(dir, name string, data []byte) (string, error) {
	f, err := os.CreateTemp(dir, "."+name+"-*.tmp")
	if err != nil {
		return "", fmt.Errorf("creating temp file for %s: %w", name, err)
	}
	tmp := f.Name()

	_, writeErr := f.Write(data)
	syncErr := f.Sync()
	closeErr := f.Close()
	if err := errors.Join(writeErr, syncErr, closeErr); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("staging %s: %w", name, err)
	}
	return tmp, nil
}

// commit moves an existing target to its backup and renames the staged
// file into place.
func commit(s *stagedFile) error {
	if _, err := os.Stat(s.final); err == nil {
		if err := rename(s.final, s.backup); err != nil {
			return fmt.Errorf("backing up %s: %w", filepath.Base(s.final), err)
		}
		s.replaced = true
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("checking %s: %w", filepath.Base(s.final), err)
	}

	if err := rename(s.tmp, s.final); err != nil {
		return fmt.Errorf("publishing %s: %w", filepath.Base(s.final), err)
	}
	s.done = true
	return nil
}

// rollback restores every target touched by commit, newest first.
func rollback(staged []*stagedFile) {
	for i := len(staged) - 1; i >= 0; i-- {
		s := staged[i]
		switch {
		case s.replaced:
			os.Rename(s.backup, s.final)
		case s.done:
			os.Remove(s.final)
		}
	}
}

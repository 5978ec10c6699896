// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package backup saves pre-patch copies of files next to the originals and
// puts them back on request.
package backup

import (
	"context"
	"io"
	"os"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// DefaultSuffix is appended to a file name to form its backup path
const DefaultSuffix = ".backup_auto"

// ErrNoBackup is returned when a restore is requested for a file without a backup
var ErrNoBackup = errors.Base("backup does not exist")

// 💾 Manager creates and restores sibling backup files
type Manager struct {
	suffix string
}

// 🏭 New creates a backup manager. An empty suffix selects DefaultSuffix.
func New(suffix string) *Manager {
	if suffix == "" {
		suffix = DefaultSuffix
	}
	return &Manager{suffix: suffix}
}

// Suffix returns the suffix used for backup paths
func (m *Manager) Suffix() string {
	return m.suffix
}

// PathFor returns the backup path for a file
func (m *Manager) PathFor(path string) string {
	return path + m.suffix
}

// 📦 Backup copies path to its backup location, overwriting any earlier
// backup, and carries over permissions and modification time.
func (m *Manager) Backup(ctx context.Context, path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", errors.Errorf("checking source file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return "", errors.Errorf("source is not a regular file: %s", path)
	}

	backupPath := m.PathFor(path)
	if err := copyFile(path, backupPath, info.Mode().Perm()); err != nil {
		return "", errors.Errorf("creating backup: %w", err)
	}

	// Metadata is best effort, the content copy is what rollback relies on.
	if err := os.Chmod(backupPath, info.Mode().Perm()); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("backup", backupPath).Msg("preserving permissions")
	}
	if err := os.Chtimes(backupPath, info.ModTime(), info.ModTime()); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("backup", backupPath).Msg("preserving timestamps")
	}

	zerolog.Ctx(ctx).Debug().
		Str("source", path).
		Str("backup", backupPath).
		Int64("size", info.Size()).
		Msg("backup written")

	return backupPath, nil
}

// Exists reports whether a backup exists for path
func (m *Manager) Exists(path string) (bool, error) {
	_, err := os.Stat(m.PathFor(path))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, errors.Errorf("checking backup existence: %w", err)
}

// ♻️ Restore removes the patched file and renames the backup back into place
func (m *Manager) Restore(ctx context.Context, path string) error {
	ok, err := m.Exists(path)
	if err != nil {
		return err
	}
	if !ok {
		return errors.Errorf("%s: %w", path, ErrNoBackup)
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.Errorf("removing patched file: %w", err)
	}

	if err := os.Rename(m.PathFor(path), path); err != nil {
		return errors.Errorf("renaming backup: %w", err)
	}

	zerolog.Ctx(ctx).Debug().Str("path", path).Msg("backup restored")
	return nil
}

func copyFile(src, dst string, perm os.FileMode) error {
	source, err := os.Open(src)
	if err != nil {
		return errors.Errorf("opening source file: %w", err)
	}
	defer source.Close()

	destination, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return errors.Errorf("creating destination file: %w", err)
	}

	if _, err := io.Copy(destination, source); err != nil {
		destination.Close()
		return errors.Errorf("copying file: %w", err)
	}

	if err := destination.Close(); err != nil {
		return errors.Errorf("closing destination file: %w", err)
	}

	return nil
}

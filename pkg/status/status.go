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

package status

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/walteh/patchrc/pkg/backup"
	"github.com/walteh/patchrc/pkg/operation"
	"github.com/walteh/patchrc/pkg/text"
	"gitlab.com/tozd/go/errors"
)

// DefaultFileName is the lock file written at the root after each run
const DefaultFileName = ".patchrc.lock"

// ErrNoLock is returned when no lock file has been written yet
var ErrNoLock = errors.Base("lock file does not exist")

// 📄 StepEntry records the outcome of one step
type StepEntry struct {
	Name           string            `json:"name"`
	Target         string            `json:"target"`
	Backup         string            `json:"backup,omitempty"`
	State          string            `json:"state"`
	Changed        bool              `json:"changed"`
	ChecksumBefore string            `json:"checksum_before,omitempty"`
	ChecksumAfter  string            `json:"checksum_after,omitempty"`
	Rules          []text.RuleResult `json:"rules"`
	Error          string            `json:"error,omitempty"`
}

// 📚 Lock is the on-disk record of the most recent run
type Lock struct {
	RunID        string      `json:"run_id"`
	Started      time.Time   `json:"started"`
	Finished     time.Time   `json:"finished"`
	Root         string      `json:"root"`
	BackupSuffix string      `json:"backup_suffix"`
	Succeeded    bool        `json:"succeeded"`
	Steps        []StepEntry `json:"steps"`
}

// 🔧 Manager reads and writes the lock file
type Manager struct {
	path string
}

// 🏭 New creates a lock manager for the given lock file path
func New(path string) *Manager {
	return &Manager{path: filepath.Clean(path)}
}

// Path returns the lock file path
func (m *Manager) Path() string {
	return m.path
}

// NewLock builds a lock record from a run result
func NewLock(runID, root, backupSuffix string, run *operation.RunResult) *Lock {
	lock := &Lock{
		RunID:        runID,
		Started:      run.Started.UTC(),
		Finished:     run.Finished.UTC(),
		Root:         root,
		BackupSuffix: backupSuffix,
		Succeeded:    run.Failed() == nil,
		Steps:        make([]StepEntry, 0, len(run.Steps)),
	}

	for _, s := range run.Steps {
		entry := StepEntry{
			Name:           s.Name,
			Target:         s.Target,
			Backup:         s.BackupPath,
			State:          s.State.String(),
			Changed:        s.Changed,
			ChecksumBefore: s.ChecksumBefore,
			ChecksumAfter:  s.ChecksumAfter,
			Rules:          s.Rules,
		}
		if s.Err != nil {
			entry.Error = s.Err.Error()
		}
		lock.Steps = append(lock.Steps, entry)
	}

	return lock
}

// 💾 Write stores the lock atomically
func (m *Manager) Write(ctx context.Context, lock *Lock) error {
	data, err := json.MarshalIndent(lock, "", "  ")
	if err != nil {
		return errors.Errorf("marshaling lock: %w", err)
	}

	if err := backup.WriteFileAtomic(m.path, append(data, '\n'), 0644); err != nil {
		return errors.Errorf("writing lock file: %w", err)
	}

	zerolog.Ctx(ctx).Debug().
		Str("path", m.path).
		Str("run_id", lock.RunID).
		Int("steps", len(lock.Steps)).
		Msg("lock file written")
	return nil
}

// 📖 Load reads the lock file
func (m *Manager) Load(ctx context.Context) (*Lock, error) {
	data, err := os.ReadFile(m.path)
	if os.IsNotExist(err) {
		return nil, errors.Errorf("%s: %w", m.path, ErrNoLock)
	}
	if err != nil {
		return nil, errors.Errorf("reading lock file: %w", err)
	}

	var lock Lock
	if err := json.Unmarshal(data, &lock); err != nil {
		return nil, errors.Errorf("parsing lock file: %w", err)
	}
	return &lock, nil
}

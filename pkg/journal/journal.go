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

// Package journal appends patch runs to a sqlite database so earlier runs
// can be listed after the lock file has been overwritten.
package journal

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/glebarez/go-sqlite"
	"github.com/rs/zerolog"
	"github.com/walteh/patchrc/pkg/status"
	"github.com/walteh/patchrc/pkg/text"
	"gitlab.com/tozd/go/errors"
)

const schema = `
create table if not exists runs(
	id            text primary key,
	started       text not null,
	finished      text not null,
	root          text not null,
	backup_suffix text not null,
	succeeded     integer not null
);
create table if not exists steps(
	run_id   text not null references runs(id),
	position integer not null,
	name     text not null,
	target   text not null,
	backup   text not null,
	state    text not null,
	changed  integer not null,
	applied  integer not null,
	skipped  integer not null,
	missed   integer not null,
	error    text not null,
	primary key(run_id, position)
);
`

// timeLayout keeps every fraction digit so stored times sort as strings
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Run summarises one recorded run
type Run struct {
	ID        string
	Started   time.Time
	Finished  time.Time
	Root      string
	Succeeded bool
	Steps     int
	Patched   int
	Missed    int
}

// 📒 Journal is a sqlite-backed run history
type Journal struct {
	db *sql.DB
}

// Open opens (or creates) the journal database at path
func Open(ctx context.Context, path string) (*Journal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Errorf("opening journal: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, errors.Errorf("creating journal schema: %w", err)
	}

	zerolog.Ctx(ctx).Debug().Str("path", path).Msg("journal opened")
	return &Journal{db: db}, nil
}

// Close releases the database handle
func (j *Journal) Close() error {
	return j.db.Close()
}

// Record stores a run and its steps in one transaction
func (j *Journal) Record(ctx context.Context, lock *status.Lock) (err error) {
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Errorf("starting transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx,
		`insert into runs(id, started, finished, root, backup_suffix, succeeded) values(?, ?, ?, ?, ?, ?)`,
		lock.RunID,
		lock.Started.UTC().Format(timeLayout),
		lock.Finished.UTC().Format(timeLayout),
		lock.Root,
		lock.BackupSuffix,
		boolInt(lock.Succeeded),
	); err != nil {
		return errors.Errorf("inserting run: %w", err)
	}

	for i, step := range lock.Steps {
		var applied, skipped, missed int
		for _, r := range step.Rules {
			switch r.Outcome {
			case text.OutcomeApplied:
				applied++
			case text.OutcomeSkipped:
				skipped++
			case text.OutcomeMissed:
				missed++
			}
		}

		if _, err = tx.ExecContext(ctx,
			`insert into steps(run_id, position, name, target, backup, state, changed, applied, skipped, missed, error)
			values(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			lock.RunID, i, step.Name, step.Target, step.Backup, step.State, boolInt(step.Changed),
			applied, skipped, missed, step.Error,
		); err != nil {
			return errors.Errorf("inserting step %s: %w", step.Name, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return errors.Errorf("committing run: %w", err)
	}

	zerolog.Ctx(ctx).Debug().Str("run_id", lock.RunID).Msg("run journaled")
	return nil
}

// Recent returns up to limit runs, newest first
func (j *Journal) Recent(ctx context.Context, limit int) ([]Run, error) {
	rows, err := j.db.QueryContext(ctx, `
select r.id, r.started, r.finished, r.root, r.succeeded,
	count(s.position),
	coalesce(sum(case when s.state = 'patched' then 1 else 0 end), 0),
	coalesce(sum(s.missed), 0)
from runs r
left join steps s on s.run_id = r.id
group by r.id
order by r.started desc
limit ?`, limit)
	if err != nil {
		return nil, errors.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run               Run
			started, finished string
		)
		if err := rows.Scan(&run.ID, &started, &finished, &run.Root, &run.Succeeded, &run.Steps, &run.Patched, &run.Missed); err != nil {
			return nil, errors.Errorf("scanning run: %w", err)
		}
		if run.Started, err = time.Parse(timeLayout, started); err != nil {
			return nil, errors.Errorf("parsing start time: %w", err)
		}
		if run.Finished, err = time.Parse(timeLayout, finished); err != nil {
			return nil, errors.Errorf("parsing finish time: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Errorf("iterating runs: %w", err)
	}
	return runs, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

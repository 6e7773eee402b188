package persist

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// ErrNoRun is returned by Save before StartRun has been called.
var ErrNoRun = errors.New("no run started")

var (
	personColumns = []string{
		"id", "name", "age_days", "gender", "instruction_level", "instruction_area",
		"instruction_months", "wished_area", "working_area", "intelligence", "beauty",
		"speak", "health", "alive", "death_tick", "original_family", "actual_family", "updated_tick",
	}
	familyColumns = []string{"id", "father_id", "mother_id", "age", "updated_tick"}

	upsertPersonSQL = upsertSQL("persons", personColumns)
	upsertFamilySQL = upsertSQL("families", familyColumns)
)

// upsertSQL builds an INSERT keyed on id that overwrites every other column
// of an existing row.
func upsertSQL(table string, cols []string) string {
	placeholders := make([]string, len(cols))
	for i := range cols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	sets := make([]string, 0, len(cols)-1)
	for _, c := range cols[1:] {
		sets = append(sets, c+" = EXCLUDED."+c)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (id) DO UPDATE SET %s",
		table, strings.Join(cols, ", "), strings.Join(placeholders, ", "), strings.Join(sets, ", "))
}

// personArgs follows personColumns.
func personArgs(p PersonRow, tick int64) []any {
	return []any{
		p.ID, p.Name, p.AgeDays, p.Gender, p.InstructionLevel, p.InstructionArea,
		p.InstructionMonths, p.WishedArea, p.WorkingArea, p.Intelligence, p.Beauty,
		p.Speak, p.Health, p.Alive, p.DeathTick, p.OriginalFamily, p.ActualFamily, tick,
	}
}

// familyArgs follows familyColumns.
func familyArgs(f FamilyRow, tick int64) []any {
	return []any{f.ID, f.FatherID, f.MotherID, f.Age, tick}
}

type SnapshotRepo struct {
	db    *DB
	runID int64

	last    [32]byte
	hasLast bool
}

func NewSnapshotRepo(db *DB) *SnapshotRepo {
	return &SnapshotRepo{db: db}
}

// RunID returns the run Save writes to, 0 before StartRun.
func (r *SnapshotRepo) RunID() int64 { return r.runID }

// StartRun clears the entity tables left by a previous process, whose IDs
// mean nothing to the fresh registries, and opens a new run for snapshots.
func (r *SnapshotRepo) StartRun(ctx context.Context, startTick uint64) (int64, error) {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("start run begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `TRUNCATE family_children, families, persons`); err != nil {
		return 0, fmt.Errorf("start run truncate: %w", err)
	}
	var id int64
	if err := tx.QueryRow(ctx,
		`INSERT INTO runs (start_tick) VALUES ($1) RETURNING id`, int64(startTick),
	).Scan(&id); err != nil {
		return 0, fmt.Errorf("start run insert: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("start run commit: %w", err)
	}

	r.runID = id
	r.last, r.hasLast = [32]byte{}, false
	r.db.log.Info("persistence run started", zap.Int64("run", id), zap.Uint64("start_tick", startTick))
	return id, nil
}

// Save writes s in one transaction: persons, families and children are
// upserted and a snapshots row is appended to the current run. It returns
// false without writing when s has the same checksum as the previous
// snapshot of this run.
func (r *SnapshotRepo) Save(ctx context.Context, s *Snapshot) (bool, error) {
	if r.runID == 0 {
		return false, fmt.Errorf("snapshot tick %d: %w", s.Tick, ErrNoRun)
	}
	if r.hasLast && r.last == s.Checksum {
		return false, nil
	}

	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("snapshot begin: %w", err)
	}
	defer tx.Rollback(ctx)

	tick := int64(s.Tick)
	for _, p := range s.Persons {
		if _, err := tx.Exec(ctx, upsertPersonSQL, personArgs(p, tick)...); err != nil {
			return false, fmt.Errorf("snapshot person %d: %w", p.ID, err)
		}
	}

	for _, f := range s.Families {
		if _, err := tx.Exec(ctx, upsertFamilySQL, familyArgs(f, tick)...); err != nil {
			return false, fmt.Errorf("snapshot family %d: %w", f.ID, err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM family_children WHERE family_id = $1`, f.ID); err != nil {
			return false, fmt.Errorf("snapshot family %d children: %w", f.ID, err)
		}
		for pos, child := range f.Children {
			if _, err := tx.Exec(ctx,
				`INSERT INTO family_children (family_id, position, person_id) VALUES ($1, $2, $3)`,
				f.ID, pos, child,
			); err != nil {
				return false, fmt.Errorf("snapshot family %d child %d: %w", f.ID, child, err)
			}
		}
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO snapshots (run_id, tick, checksum, persons, families) VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (run_id, tick) DO UPDATE SET checksum = EXCLUDED.checksum,
		     persons = EXCLUDED.persons, families = EXCLUDED.families`,
		r.runID, tick, s.Checksum[:], len(s.Persons), len(s.Families),
	); err != nil {
		return false, fmt.Errorf("snapshot row: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("snapshot commit: %w", err)
	}
	r.last, r.hasLast = s.Checksum, true
	return true, nil
}

package system

import (
	"context"
	"time"

	"go.uber.org/zap"

	coresys "github.com/towncore/townsim/internal/core/system"
	"github.com/towncore/townsim/internal/persist"
	"github.com/towncore/townsim/internal/world"
)

// SnapshotSaver stores a snapshot, reporting whether anything was written.
// *persist.SnapshotRepo implements it.
type SnapshotSaver interface {
	Save(ctx context.Context, s *persist.Snapshot) (bool, error)
}

// PersistenceSystem periodically snapshots both registries. It only reads
// the world. Phase 4 (Persist).
type PersistenceSystem struct {
	world     *world.State
	saver     SnapshotSaver
	log       *zap.Logger
	tickCount uint64
	interval  uint64 // snapshot every N ticks
	timeout   time.Duration
}

func NewPersistenceSystem(ws *world.State, saver SnapshotSaver, log *zap.Logger, intervalTicks uint64) *PersistenceSystem {
	return &PersistenceSystem{
		world:    ws,
		saver:    saver,
		log:      log,
		interval: intervalTicks,
		timeout:  5 * time.Second,
	}
}

func (s *PersistenceSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *PersistenceSystem) Update(tick uint64) {
	s.tickCount++
	if s.tickCount < s.interval {
		return
	}
	s.tickCount = 0
	s.save(tick)
}

// SaveNow snapshots immediately, regardless of the interval.
// Called on graceful shutdown so the final state is not lost.
func (s *PersistenceSystem) SaveNow(tick uint64) {
	s.save(tick)
}

func (s *PersistenceSystem) save(tick uint64) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	snap := persist.BuildSnapshot(s.world, tick)
	written, err := s.saver.Save(ctx, snap)
	if err != nil {
		s.log.Error("snapshot failed", zap.Uint64("tick", tick), zap.Error(err))
		return
	}
	if written {
		s.log.Info("snapshot saved",
			zap.Uint64("tick", tick),
			zap.Int("persons", len(snap.Persons)),
			zap.Int("families", len(snap.Families)))
	}
}

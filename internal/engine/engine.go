// Package engine owns quest records, progress and completion, coin
// rewards, level bookkeeping, and the periodic reset state machine. All
// state lives in one snapshot behind a mutex; every mutating operation is
// a serialized read-modify-write, so readers never observe a half-applied
// completion transaction.
package engine

import (
	"log/slog"
	"sync"

	"github.com/rowanvale/questlog/internal/config"
	"github.com/rowanvale/questlog/internal/model"
)

// ChangeFunc is invoked after every observable state change with the new
// revision number. It runs outside the engine lock.
type ChangeFunc func(revision uint64)

type Engine struct {
	mu       sync.RWMutex
	state    *model.Snapshot
	revision uint64

	clock   Clock
	rewards config.RewardTable
	logger  *slog.Logger

	onChange ChangeFunc
}

// New creates an engine starting from the default snapshot.
func New(clock Clock, rewards config.RewardTable, logger *slog.Logger) *Engine {
	if clock == nil {
		clock = SystemClock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		state:   model.NewSnapshot(),
		clock:   clock,
		rewards: rewards,
		logger:  logger,
	}
}

// OnChange registers the change callback. Register before wiring mutation
// sources; the callback must not call back into the engine synchronously
// from a mutation it triggered itself.
func (e *Engine) OnChange(fn ChangeFunc) {
	e.mu.Lock()
	e.onChange = fn
	e.mu.Unlock()
}

// State returns a deep copy of the current snapshot.
func (e *Engine) State() *model.Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state.Clone()
}

// Revision returns the current change counter.
func (e *Engine) Revision() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.revision
}

// Restore replaces the engine state wholesale with an inbound snapshot.
// This is the last-write-wins sync path: no field-level merging, the most
// recent snapshot applied simply wins.
func (e *Engine) Restore(snap *model.Snapshot) {
	if snap == nil {
		return
	}
	snap = snap.Clone()
	snap.Normalize()

	e.mu.Lock()
	e.state = snap
	e.revision++
	rev, notify := e.revision, e.onChange
	e.mu.Unlock()

	e.logger.Info("state restored from snapshot", "revision", rev)
	if notify != nil {
		notify(rev)
	}
}

// bump increments the revision under the lock and returns the callback to
// run after unlocking.
func (e *Engine) bump() (uint64, ChangeFunc) {
	e.revision++
	return e.revision, e.onChange
}

func notifyChange(rev uint64, fn ChangeFunc) {
	if fn != nil {
		fn(rev)
	}
}

// findQuest returns a pointer into the engine-owned slice, or nil.
// Callers must hold the lock.
func (e *Engine) findQuest(qt model.QuestType, id string) *model.Quest {
	quests := e.state.Quests[qt]
	for i := range quests {
		if quests[i].ID == id {
			return &quests[i]
		}
	}
	return nil
}

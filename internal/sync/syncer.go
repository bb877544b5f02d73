// Package sync keeps the engine, the local snapshot store, and the remote
// mirror in agreement. Outbound writes are debounced behind a quiescence
// window and de-duplicated by content, so a burst of mutations costs one
// write and a no-op mutation costs none. Inbound remote snapshots replace
// engine state wholesale (last write wins) and are ignored until the
// initial load completes, so a stale remote document cannot clobber a
// freshly loaded one.
package sync

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rowanvale/questlog/internal/engine"
	"github.com/rowanvale/questlog/internal/model"
)

const (
	// DefaultDebounce is the quiescence window after the last local
	// mutation before a save fires.
	DefaultDebounce = 2 * time.Second

	// DefaultPollInterval is how often the remote mirror is polled for
	// documents written by other devices.
	DefaultPollInterval = 15 * time.Second
)

// LocalStore persists the snapshot on this device.
type LocalStore interface {
	Load(installID string) (*model.Snapshot, error)
	Save(installID string, snap *model.Snapshot) error
}

// RemoteStore mirrors the snapshot across devices. All methods fail soft.
type RemoteStore interface {
	Enabled() bool
	Load(ctx context.Context) *model.Snapshot
	Save(ctx context.Context, snap *model.Snapshot) error
	Watch(ctx context.Context, interval time.Duration, callback func(*model.Snapshot))
}

type Syncer struct {
	engine    *engine.Engine
	local     LocalStore
	remote    RemoteStore
	installID string
	logger    *slog.Logger

	debounce     time.Duration
	pollInterval time.Duration

	loaded  atomic.Bool
	dirty   chan struct{}
	onApply func(revision uint64)

	mu            sync.Mutex
	lastSavedHash [sha256.Size]byte

	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a syncer. remote may be nil for local-only operation.
func New(e *engine.Engine, local LocalStore, remote RemoteStore, installID string, logger *slog.Logger) *Syncer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Syncer{
		engine:       e,
		local:        local,
		remote:       remote,
		installID:    installID,
		logger:       logger,
		debounce:     DefaultDebounce,
		pollInterval: DefaultPollInterval,
		dirty:        make(chan struct{}, 1),
	}
}

// SetDebounce overrides the quiescence window. Call before Start.
func (s *Syncer) SetDebounce(d time.Duration) { s.debounce = d }

// SetPollInterval overrides the remote poll cadence. Call before Start.
func (s *Syncer) SetPollInterval(d time.Duration) { s.pollInterval = d }

// OnApply registers a callback invoked with the new revision after an
// inbound remote snapshot replaces engine state. The UI fan-out hangs off
// this hook; the engine's own change callback belongs to the save loop.
// Call before Start.
func (s *Syncer) OnApply(fn func(revision uint64)) { s.onApply = fn }

// Start performs the initial load and launches the save and watch loops.
// Local state loads first; an existing remote document then overrides it,
// matching the most-recent-writer-wins model.
func (s *Syncer) Start(ctx context.Context) {
	snap, err := s.local.Load(s.installID)
	if err != nil {
		s.logger.Warn("local load failed, starting from defaults", "error", err)
	}
	if snap != nil {
		s.engine.Restore(snap)
	}

	if s.remote != nil && s.remote.Enabled() {
		if remoteSnap := s.remote.Load(ctx); remoteSnap != nil {
			s.engine.Restore(remoteSnap)
			// Remote state becomes local state immediately so a crash
			// before the next debounced save loses nothing.
			if err := s.local.Save(s.installID, remoteSnap); err != nil {
				s.logger.Warn("local save of remote snapshot failed", "error", err)
			}
		}
	}

	// Seed the dedupe hash with whatever we start from: startup itself is
	// not a change worth writing.
	s.mu.Lock()
	s.lastSavedHash = snapshotHash(s.engine.State())
	s.mu.Unlock()

	s.loaded.Store(true)
	s.engine.OnChange(func(uint64) { s.markDirty() })

	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.runSaver(ctx)
	}()

	if s.remote != nil && s.remote.Enabled() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.remote.Watch(ctx, s.pollInterval, s.applyRemote)
		}()
	}

	go func() {
		wg.Wait()
		close(s.done)
	}()

	s.logger.Info("sync started", "install_id", s.installID,
		"remote", s.remote != nil && s.remote.Enabled())
}

// Stop cancels the debounce timer and both loops. No writes happen after
// Stop returns.
func (s *Syncer) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
}

// markDirty notes a pending change. The buffered channel coalesces bursts.
func (s *Syncer) markDirty() {
	select {
	case s.dirty <- struct{}{}:
	default:
	}
}

// applyRemote handles an inbound snapshot from another device. Snapshots
// arriving before the initial load completes are dropped.
func (s *Syncer) applyRemote(snap *model.Snapshot) {
	if !s.loaded.Load() {
		s.logger.Debug("dropping remote snapshot before initial load")
		return
	}
	s.logger.Info("applying remote snapshot")
	s.engine.Restore(snap)
	if s.onApply != nil {
		s.onApply(s.engine.Revision())
	}
}

// runSaver debounces dirty signals: each signal restarts the quiescence
// window, and only a quiet window flushes.
func (s *Syncer) runSaver(ctx context.Context) {
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		case <-s.dirty:
			if timer == nil {
				timer = time.NewTimer(s.debounce)
				timerC = timer.C
				continue
			}
			if !timer.Stop() {
				select {
				case <-timerC:
				default:
				}
			}
			timer.Reset(s.debounce)
		case <-timerC:
			timer = nil
			timerC = nil
			s.flush(ctx)
		}
	}
}

// flush writes the current snapshot to the local store and the mirror,
// unless nothing observable changed since the last save.
func (s *Syncer) flush(ctx context.Context) {
	snap := s.engine.State()
	hash := snapshotHash(snap)

	s.mu.Lock()
	if hash == s.lastSavedHash {
		s.mu.Unlock()
		s.logger.Debug("skipping save, no observable change")
		return
	}
	s.lastSavedHash = hash
	s.mu.Unlock()

	if err := s.local.Save(s.installID, snap); err != nil {
		s.logger.Warn("local save failed", "error", err)
	}
	if s.remote != nil && s.remote.Enabled() {
		if err := s.remote.Save(ctx, snap); err != nil {
			s.logger.Warn("remote save failed", "error", err)
		}
	}
	s.logger.Debug("snapshot saved", "revision", s.engine.Revision())
}

func snapshotHash(snap *model.Snapshot) [sha256.Size]byte {
	body, err := json.Marshal(snap)
	if err != nil {
		return [sha256.Size]byte{}
	}
	return sha256.Sum256(body)
}

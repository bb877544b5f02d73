package sync

import (
	"context"
	stdsync "sync"
	"testing"
	"time"

	"github.com/rowanvale/questlog/internal/config"
	"github.com/rowanvale/questlog/internal/engine"
	"github.com/rowanvale/questlog/internal/model"
)

type fakeLocal struct {
	mu    stdsync.Mutex
	snap  *model.Snapshot
	saves int
}

func (f *fakeLocal) Load(string) (*model.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.snap == nil {
		return nil, nil
	}
	return f.snap.Clone(), nil
}

func (f *fakeLocal) Save(_ string, snap *model.Snapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snap = snap.Clone()
	f.saves++
	return nil
}

func (f *fakeLocal) saveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saves
}

type fakeRemote struct {
	mu       stdsync.Mutex
	snap     *model.Snapshot
	saves    int
	incoming chan *model.Snapshot
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{incoming: make(chan *model.Snapshot)}
}

func (f *fakeRemote) Enabled() bool { return true }

func (f *fakeRemote) Load(context.Context) *model.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.snap == nil {
		return nil
	}
	return f.snap.Clone()
}

func (f *fakeRemote) Save(_ context.Context, snap *model.Snapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snap = snap.Clone()
	f.saves++
	return nil
}

func (f *fakeRemote) Watch(ctx context.Context, _ time.Duration, callback func(*model.Snapshot)) {
	for {
		select {
		case <-ctx.Done():
			return
		case snap := <-f.incoming:
			callback(snap)
		}
	}
}

func (f *fakeRemote) saveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saves
}

func newTestSyncer(t *testing.T, local *fakeLocal, remote *fakeRemote) (*Syncer, *engine.Engine) {
	t.Helper()
	e := engine.New(nil, config.DefaultRewards(), nil)
	var r RemoteStore
	if remote != nil {
		r = remote
	}
	s := New(e, local, r, "install-1", nil)
	s.SetDebounce(30 * time.Millisecond)
	return s, e
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestInitialLoadFromLocal(t *testing.T) {
	stored := model.NewSnapshot()
	stored.Coins = 12
	local := &fakeLocal{snap: stored}

	s, e := newTestSyncer(t, local, nil)
	s.Start(context.Background())
	defer s.Stop()

	if e.Coins() != 12 {
		t.Errorf("coins = %d, want 12 from local store", e.Coins())
	}
}

func TestInitialLoadRemoteOverridesLocal(t *testing.T) {
	localSnap := model.NewSnapshot()
	localSnap.Coins = 12
	local := &fakeLocal{snap: localSnap}

	remote := newFakeRemote()
	remoteSnap := model.NewSnapshot()
	remoteSnap.Coins = 50
	remote.snap = remoteSnap

	s, e := newTestSyncer(t, local, remote)
	s.Start(context.Background())
	defer s.Stop()

	if e.Coins() != 50 {
		t.Errorf("coins = %d, want 50 from remote", e.Coins())
	}
	// The inbound remote state is persisted locally right away.
	local.mu.Lock()
	localCoins := local.snap.Coins
	local.mu.Unlock()
	if localCoins != 50 {
		t.Errorf("local coins = %d, want 50", localCoins)
	}
}

func TestInitialLoadDefaultsWhenEmpty(t *testing.T) {
	s, e := newTestSyncer(t, &fakeLocal{}, nil)
	s.Start(context.Background())
	defer s.Stop()

	state := e.State()
	if state.Coins != 0 || state.DailyLevel != 1 {
		t.Errorf("state = coins %d level %d, want defaults 0/1", state.Coins, state.DailyLevel)
	}
}

func TestDebouncedSaveCoalescesBurst(t *testing.T) {
	local := &fakeLocal{}
	s, e := newTestSyncer(t, local, nil)
	s.Start(context.Background())
	defer s.Stop()

	// A burst of mutations within the window produces exactly one save.
	for i := 0; i < 5; i++ {
		if _, err := e.CreateQuest(model.QuestDaily, "Stretch", "", model.TrackUnit, 1); err != nil {
			t.Fatalf("CreateQuest error: %v", err)
		}
	}
	waitFor(t, time.Second, func() bool { return local.saveCount() == 1 })

	local.mu.Lock()
	quests := len(local.snap.Quests[model.QuestDaily])
	local.mu.Unlock()
	if quests != 5 {
		t.Errorf("saved quests = %d, want 5", quests)
	}
}

func TestNoSaveWithoutObservableChange(t *testing.T) {
	local := &fakeLocal{}
	s, e := newTestSyncer(t, local, nil)
	s.Start(context.Background())
	defer s.Stop()

	q, _ := e.CreateQuest(model.QuestDaily, "Stretch", "", model.TrackUnit, 1)
	if _, err := e.Complete(model.QuestDaily, q.ID); err != nil {
		t.Fatalf("Complete error: %v", err)
	}
	waitFor(t, time.Second, func() bool { return local.saveCount() == 1 })

	// Completed-quest no-ops change nothing; the next window must not
	// write again.
	if _, err := e.Complete(model.QuestDaily, q.ID); err != nil {
		t.Fatalf("Complete error: %v", err)
	}
	time.Sleep(100 * time.Millisecond)
	if got := local.saveCount(); got != 1 {
		t.Errorf("saves = %d, want 1 (content-based dedupe)", got)
	}
}

func TestRemoteSnapshotReplacesState(t *testing.T) {
	local := &fakeLocal{}
	remote := newFakeRemote()
	s, e := newTestSyncer(t, local, remote)
	s.Start(context.Background())
	defer s.Stop()

	incoming := model.NewSnapshot()
	incoming.Coins = 99
	remote.incoming <- incoming

	waitFor(t, time.Second, func() bool { return e.Coins() == 99 })
	// The inbound state also lands in the local store on the next flush.
	waitFor(t, time.Second, func() bool { return local.saveCount() >= 1 })
}

func TestInboundSnapshotFiresApplyHook(t *testing.T) {
	local := &fakeLocal{}
	remote := newFakeRemote()
	s, e := newTestSyncer(t, local, remote)

	var mu stdsync.Mutex
	var revs []uint64
	s.OnApply(func(rev uint64) {
		mu.Lock()
		revs = append(revs, rev)
		mu.Unlock()
	})
	s.Start(context.Background())
	defer s.Stop()

	incoming := model.NewSnapshot()
	incoming.Coins = 77
	remote.incoming <- incoming

	waitFor(t, time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(revs) == 1
	})

	mu.Lock()
	got := revs[0]
	mu.Unlock()
	if got != e.Revision() {
		t.Errorf("hook revision = %d, want %d", got, e.Revision())
	}

	// Local saves do not fire the hook; it is the inbound path only.
	if _, err := e.CreateQuest(model.QuestDaily, "Stretch", "", model.TrackUnit, 1); err != nil {
		t.Fatalf("CreateQuest error: %v", err)
	}
	waitFor(t, time.Second, func() bool { return local.saveCount() >= 1 })
	mu.Lock()
	count := len(revs)
	mu.Unlock()
	if count != 1 {
		t.Errorf("hook fired %d times, want 1", count)
	}
}

func TestRemoteSnapshotBeforeLoadDropped(t *testing.T) {
	local := &fakeLocal{}
	s, e := newTestSyncer(t, local, newFakeRemote())

	// Never started: the initial load has not happened, so an inbound
	// snapshot must not clobber anything.
	stale := model.NewSnapshot()
	stale.Coins = 42
	s.applyRemote(stale)

	if e.Coins() != 0 {
		t.Errorf("coins = %d, want 0 (pre-load snapshot dropped)", e.Coins())
	}
	if e.Revision() != 0 {
		t.Errorf("revision = %d, want 0", e.Revision())
	}
}

func TestStopCancelsPendingSave(t *testing.T) {
	local := &fakeLocal{}
	s, e := newTestSyncer(t, local, nil)
	s.SetDebounce(200 * time.Millisecond)
	s.Start(context.Background())

	if _, err := e.CreateQuest(model.QuestDaily, "Stretch", "", model.TrackUnit, 1); err != nil {
		t.Fatalf("CreateQuest error: %v", err)
	}
	s.Stop()

	// The pending debounce was cancelled; nothing may write afterward.
	time.Sleep(300 * time.Millisecond)
	if got := local.saveCount(); got != 0 {
		t.Errorf("saves after Stop = %d, want 0", got)
	}
}

func TestStopWithoutStart(t *testing.T) {
	s, _ := newTestSyncer(t, &fakeLocal{}, nil)
	s.Stop() // must not panic or block
}

func TestRemoteSaveOnFlush(t *testing.T) {
	local := &fakeLocal{}
	remote := newFakeRemote()
	s, e := newTestSyncer(t, local, remote)
	s.Start(context.Background())
	defer s.Stop()

	if _, err := e.CreateQuest(model.QuestWeekly, "Long run", "", model.TrackSteps, 30000); err != nil {
		t.Fatalf("CreateQuest error: %v", err)
	}
	waitFor(t, time.Second, func() bool { return remote.saveCount() == 1 })

	remote.mu.Lock()
	quests := len(remote.snap.Quests[model.QuestWeekly])
	remote.mu.Unlock()
	if quests != 1 {
		t.Errorf("mirrored weekly quests = %d, want 1", quests)
	}
}

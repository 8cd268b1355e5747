package poller

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/gridbanner/gridbanner/internal/fetch"
	"github.com/gridbanner/gridbanner/internal/types"
	"github.com/rs/zerolog"
)

type scriptedSettings struct {
	mu       sync.Mutex
	settings *types.GlobalSettings
	err      error
}

func (f *scriptedSettings) set(s *types.GlobalSettings, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.settings, f.err = s, err
}

func (f *scriptedSettings) FetchSettings(context.Context, string) (*types.GlobalSettings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.settings, f.err
}

func boolPtr(b bool) *bool { return &b }

func TestSettingsSync_ChangeDetection(t *testing.T) {
	t.Parallel()

	f := &scriptedSettings{}
	f.set(&types.GlobalSettings{}, nil)

	var changes []*types.GlobalSettings
	s := NewSettingsSync("http://admin/settings", time.Hour, f, zerolog.Nop(), nil,
		func(gs *types.GlobalSettings) { changes = append(changes, gs) })
	ctx := context.Background()

	// All-default payload matches the initial snapshot; no change fires.
	s.syncOnce(ctx)
	if len(changes) != 0 {
		t.Fatalf("changes = %d, want 0 for identical settings", len(changes))
	}

	f.set(&types.GlobalSettings{TrayOnlyMode: boolPtr(true)}, nil)
	s.syncOnce(ctx)
	if len(changes) != 1 {
		t.Fatalf("changes = %d, want 1", len(changes))
	}
	if got := s.Current().TrayOnlyMode; got == nil || !*got {
		t.Errorf("TrayOnlyMode = %v, want true", got)
	}

	// Same toggles again: no duplicate notification.
	s.syncOnce(ctx)
	if len(changes) != 1 {
		t.Errorf("changes = %d, want still 1", len(changes))
	}
}

func TestSettingsSync_ErrorKeepsSnapshot(t *testing.T) {
	t.Parallel()

	f := &scriptedSettings{}
	f.set(&types.GlobalSettings{KeyringEnabled: boolPtr(false)}, nil)
	s := NewSettingsSync("http://admin/settings", time.Hour, f, zerolog.Nop(), nil, nil)
	ctx := context.Background()

	s.syncOnce(ctx)
	f.set(nil, &fetch.Error{Kind: fetch.NetworkError, Err: context.DeadlineExceeded})
	s.syncOnce(ctx)
	s.syncOnce(ctx)

	if got := s.Current().KeyringEnabled; got == nil || *got {
		t.Errorf("KeyringEnabled = %v, want retained false", got)
	}
}

func TestSettingsSync_StartStop(t *testing.T) {
	t.Parallel()

	f := &scriptedSettings{}
	f.set(&types.GlobalSettings{}, nil)
	s := NewSettingsSync("http://admin/settings", 10*time.Millisecond, f, zerolog.Nop(), nil, nil)

	s.Start()
	s.Start() // no-op
	time.Sleep(30 * time.Millisecond)
	s.Stop()
	s.Stop() // no-op

	if s.Current() == nil {
		t.Fatal("Current returned nil")
	}
}

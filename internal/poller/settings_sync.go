package poller

import (
	"context"
	"sync"
	"time"

	"github.com/gridbanner/gridbanner/internal/types"
	"github.com/rs/zerolog"
)

// SettingsFetcher performs one settings fetch attempt. Satisfied by
// fetch.Fetcher.
type SettingsFetcher interface {
	FetchSettings(ctx context.Context, url string) (*types.GlobalSettings, error)
}

// SettingsSync polls the admin settings endpoint on its own cadence, using
// the same loop shape as the alert poller. The last good snapshot is retained
// across fetch failures.
type SettingsSync struct {
	url      string
	interval time.Duration
	fetcher  SettingsFetcher
	log      zerolog.Logger
	metrics  *Metrics
	onChange func(*types.GlobalSettings)

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	current *types.GlobalSettings
	failing bool
}

// NewSettingsSync builds a SettingsSync. onChange (optional) runs on the sync
// goroutine whenever the fetched toggles differ from the current snapshot.
func NewSettingsSync(url string, interval time.Duration, fetcher SettingsFetcher,
	log zerolog.Logger, metrics *Metrics, onChange func(*types.GlobalSettings)) *SettingsSync {
	return &SettingsSync{
		url:      url,
		interval: interval,
		fetcher:  fetcher,
		log:      log.With().Str("component", "settings-sync").Logger(),
		metrics:  metrics,
		onChange: onChange,
		current:  &types.GlobalSettings{},
	}
}

// Start launches the sync loop. Starting a running sync is a no-op.
func (s *SettingsSync) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.run(ctx, s.done)
	s.log.Info().Dur("interval", s.interval).Msg("settings sync started")
}

// Stop cancels the loop and waits for any in-flight fetch to finish.
func (s *SettingsSync) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
	s.log.Info().Msg("settings sync stopped")
}

// Current returns the last good settings snapshot. Never nil.
func (s *SettingsSync) Current() *types.GlobalSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *SettingsSync) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.syncOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.syncOnce(ctx)
		}
	}
}

func (s *SettingsSync) syncOnce(ctx context.Context) {
	got, err := s.fetcher.FetchSettings(ctx, s.url)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		s.metrics.observeSettingsSync("error")
		s.mu.Lock()
		first := !s.failing
		s.failing = true
		s.mu.Unlock()
		if first {
			s.log.Warn().Err(err).Msg("settings fetch failed, keeping last snapshot")
		}
		return
	}
	s.metrics.observeSettingsSync("ok")

	s.mu.Lock()
	s.failing = false
	changed := !s.current.Equal(got)
	if changed {
		s.current = got
	}
	s.mu.Unlock()

	if changed {
		s.log.Info().Msg("global settings changed")
		if s.onChange != nil {
			s.onChange(got)
		}
	}
}

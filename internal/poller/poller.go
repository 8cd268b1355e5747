// Package poller drives the timer-based alert and settings loops.
package poller

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gridbanner/gridbanner/internal/dedup"
	"github.com/gridbanner/gridbanner/internal/fetch"
	"github.com/gridbanner/gridbanner/internal/present"
	"github.com/gridbanner/gridbanner/internal/source"
	"github.com/gridbanner/gridbanner/internal/types"
	"github.com/rs/zerolog"
)

// AlertFetcher performs one alert fetch attempt. Satisfied by fetch.Fetcher.
type AlertFetcher interface {
	FetchAlert(ctx context.Context, src source.Descriptor) (*types.AlertMessage, error)
}

// SourceResolver resolves the active alert source. Satisfied by
// source.Resolver via a small adapter in the Options.
type SourceResolver interface {
	Resolve(ctx context.Context) *source.Descriptor
}

// ResolverFunc adapts a function to SourceResolver.
type ResolverFunc func(ctx context.Context) *source.Descriptor

// Resolve implements SourceResolver.
func (f ResolverFunc) Resolve(ctx context.Context) *source.Descriptor { return f(ctx) }

// Stats is a point-in-time snapshot for the status API.
type Stats struct {
	Running           bool      `json:"running"`
	LastPollAt        time.Time `json:"last_poll_at"`
	LastResult        string    `json:"last_result"`
	ConsecutiveErrors int       `json:"consecutive_errors"`
	ActiveSignature   string    `json:"active_signature,omitempty"`
}

// Poller is the alert polling loop. It is the single writer of the dedup
// store's poll-driven state; user dismissals arriving from surface threads
// are serialized against poll decisions by the apply mutex.
type Poller struct {
	interval time.Duration
	fetcher  AlertFetcher
	resolver SourceResolver
	sites    []string
	store    *dedup.Store
	coord    *present.Coordinator
	log      zerolog.Logger
	metrics  *Metrics

	// applyMu serializes decision application (poll outcomes and user
	// dismissals) so a dismiss and an in-flight poll cannot interleave.
	applyMu sync.Mutex

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	stats   Stats
	lastErr fetch.ErrorKind
	failing bool
	noSrc   bool
}

// New builds a Poller. metrics may be nil.
func New(interval time.Duration, fetcher AlertFetcher, resolver SourceResolver, sites []string,
	store *dedup.Store, coord *present.Coordinator, log zerolog.Logger, metrics *Metrics) *Poller {
	return &Poller{
		interval: interval,
		fetcher:  fetcher,
		resolver: resolver,
		sites:    sites,
		store:    store,
		coord:    coord,
		log:      log.With().Str("component", "poller").Logger(),
		metrics:  metrics,
	}
}

// Start transitions Stopped -> Running and launches the loop. Starting a
// running poller is a no-op.
func (p *Poller) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.done = make(chan struct{})
	p.stats.Running = true
	go p.run(ctx, p.done)
	p.log.Info().Dur("interval", p.interval).Msg("alert poller started")
}

// Stop cancels the loop and blocks until any in-flight fetch has finished or
// been abandoned; no callback mutates state after Stop returns.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done

	p.mu.Lock()
	p.stats.Running = false
	p.mu.Unlock()
	p.log.Info().Msg("alert poller stopped")
}

// Snapshot returns current poll statistics.
func (p *Poller) Snapshot() Stats {
	sig := p.store.Active()
	p.mu.Lock()
	s := p.stats
	p.mu.Unlock()
	s.ActiveSignature = sig
	return s
}

// Dismiss records a user dismissal originating from a display surface. The
// signature stays suppressed until the server assigns a new one.
// SuperCritical alerts are not user-dismissible and are ignored here as well,
// in case a stale surface still offers the button.
func (p *Poller) Dismiss(signature string) {
	p.applyMu.Lock()
	defer p.applyMu.Unlock()

	cur := p.coord.Current()
	if cur.Visible && cur.Alert.Signature == signature && cur.Alert.Level == types.SuperCritical {
		p.log.Warn().Str("signature", signature).Msg("ignoring dismiss of super_critical alert")
		return
	}

	p.store.MarkDismissed(signature)
	if cur.Visible && cur.Alert.Signature == signature {
		p.coord.Hide()
		p.metrics.setActive(false)
	}
	p.log.Info().Str("signature", signature).Msg("alert dismissed by user")
}

// run is the fixed-interval loop. The fetch happens synchronously on this
// goroutine, which makes ticks single-flight: time.Ticker drops ticks that
// elapse while a fetch is still outstanding.
func (p *Poller) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.pollOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.pollOnce(ctx)
		}
	}
}

// pollOnce performs one fetch attempt and applies its outcome.
func (p *Poller) pollOnce(ctx context.Context) {
	start := time.Now()
	result := p.doPoll(ctx)
	if ctx.Err() != nil {
		// Shutdown raced the fetch; the outcome was discarded.
		return
	}
	p.metrics.observePoll(result, time.Since(start).Seconds())

	p.mu.Lock()
	p.stats.LastPollAt = start
	p.stats.LastResult = result
	if result == "error" {
		p.stats.ConsecutiveErrors++
	} else {
		p.stats.ConsecutiveErrors = 0
	}
	p.mu.Unlock()
}

func (p *Poller) doPoll(ctx context.Context) string {
	src := p.resolver.Resolve(ctx)
	if src == nil {
		// No configured or discoverable source. A steady state, not an
		// error; presentation is left as-is until one appears.
		p.mu.Lock()
		first := !p.noSrc
		p.noSrc = true
		p.mu.Unlock()
		if first {
			p.log.Warn().Msg("no alert source resolved; will keep trying")
		}
		return "no_source"
	}
	p.mu.Lock()
	p.noSrc = false
	p.mu.Unlock()

	alert, err := p.fetcher.FetchAlert(ctx, *src)
	if ctx.Err() != nil {
		return "cancelled"
	}
	if err != nil {
		return p.applyError(err)
	}
	p.clearFailure()

	if alert != nil && !alert.MatchesSite(p.sites) {
		// Not for this workstation; identical to receiving no alert.
		p.log.Debug().Str("site", alert.Site).Msg("alert filtered by site")
		alert = nil
	}

	p.applyMu.Lock()
	defer p.applyMu.Unlock()

	if alert == nil {
		hadActive := p.store.Active() != ""
		p.store.ClearActive()
		if hadActive || p.coord.Current().Visible {
			p.coord.Hide()
			p.metrics.setActive(false)
			p.log.Info().Msg("alert cleared by source")
		}
		return "no_alert"
	}

	switch decision := p.store.Admit(alert.Signature); decision {
	case dedup.Show:
		p.coord.Show(alert)
		p.metrics.setActive(true)
		p.log.Info().
			Str("signature", alert.Signature).
			Str("level", alert.Level.String()).
			Str("summary", alert.Summary).
			Msg("alert shown")
		return "shown"
	case dedup.Suppressed:
		if p.coord.Current().Visible {
			p.coord.Hide()
			p.metrics.setActive(false)
		}
		return "suppressed"
	default:
		// Already on display; reapplying would flash every tick.
		return "already_shown"
	}
}

// applyError handles a failed fetch. Transient and auth failures retain the
// last presentation state; parse failures fail open to no-alert since the
// source is reachable but serving garbage.
func (p *Poller) applyError(err error) string {
	var fe *fetch.Error
	if !errors.As(err, &fe) {
		fe = &fetch.Error{Kind: fetch.NetworkError, Err: err}
	}
	p.metrics.observeFetchError(fe.Kind.String())

	if fe.Kind == fetch.ParseError {
		p.log.Error().Err(fe.Err).Msg("malformed alert payload, treating as no alert")
		p.applyMu.Lock()
		p.store.ClearActive()
		if p.coord.Current().Visible {
			p.coord.Hide()
			p.metrics.setActive(false)
		}
		p.applyMu.Unlock()
		return "error"
	}

	// Auth errors are logged once per state transition to avoid flooding a
	// tick-rate log with the same failure.
	p.mu.Lock()
	logIt := !p.failing || p.lastErr != fe.Kind || fe.Kind != fetch.AuthError
	p.failing = true
	p.lastErr = fe.Kind
	p.mu.Unlock()

	if logIt {
		p.log.Warn().Err(fe.Err).Str("kind", fe.Kind.String()).Msg("fetch failed, retaining presentation state")
	}
	return "error"
}

func (p *Poller) clearFailure() {
	p.mu.Lock()
	if p.failing {
		p.failing = false
		p.mu.Unlock()
		p.log.Info().Msg("fetch recovered")
		return
	}
	p.mu.Unlock()
}

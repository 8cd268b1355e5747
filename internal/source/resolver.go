// Package source decides where alert data is fetched from.
package source

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Kind distinguishes file-backed and URL-backed sources.
type Kind int

const (
	File Kind = iota
	URL
)

func (k Kind) String() string {
	if k == File {
		return "file"
	}
	return "url"
}

// Descriptor names one resolved alert source.
type Descriptor struct {
	Kind     Kind
	Location string
}

// Discoverer supplies candidate alert server URLs when nothing is configured
// locally. Implementations may consult DNS, a directory service, or a static
// list.
type Discoverer interface {
	Candidates(ctx context.Context) []string
}

// StaticDiscoverer returns a fixed candidate list, typically from config.
type StaticDiscoverer []string

// Candidates implements Discoverer.
func (d StaticDiscoverer) Candidates(context.Context) []string { return d }

// ProbeFunc reports whether a candidate URL responds.
type ProbeFunc func(ctx context.Context, url string) bool

// Resolver applies the source precedence: configured URL, then configured
// file path, then the first responding discovery candidate. Absence of a
// source is a normal outcome, never an error.
type Resolver struct {
	log   zerolog.Logger
	disc  Discoverer
	probe ProbeFunc
}

// NewResolver builds a Resolver. disc may be nil when no discovery mechanism
// exists; probe may be nil to use a bounded HTTP HEAD probe.
func NewResolver(log zerolog.Logger, disc Discoverer, probe ProbeFunc) *Resolver {
	if probe == nil {
		probe = headProbe
	}
	return &Resolver{
		log:   log.With().Str("component", "resolver").Logger(),
		disc:  disc,
		probe: probe,
	}
}

// Resolve returns the active source, or nil when nothing resolves.
func (r *Resolver) Resolve(ctx context.Context, configuredURL, configuredFile string) *Descriptor {
	if configuredURL != "" {
		return &Descriptor{Kind: URL, Location: configuredURL}
	}
	if configuredFile != "" {
		return &Descriptor{Kind: File, Location: configuredFile}
	}
	if r.disc == nil {
		return nil
	}

	for _, candidate := range r.disc.Candidates(ctx) {
		if candidate == "" {
			continue
		}
		if r.probe(ctx, candidate) {
			r.log.Info().Str("url", candidate).Msg("discovered alert source")
			return &Descriptor{Kind: URL, Location: candidate}
		}
		r.log.Debug().Str("url", candidate).Msg("discovery candidate not responding")
	}
	return nil
}

// headProbe is the default probe: one HEAD request with a short deadline.
// Any HTTP response counts as responding; auth failures still prove the
// server is there.
func headProbe(ctx context.Context, url string) bool {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return false
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return true
}

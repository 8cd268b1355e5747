// Package fetch performs single alert/settings fetch attempts against a
// resolved source and owns their error classification.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/gridbanner/gridbanner/internal/source"
	"github.com/gridbanner/gridbanner/internal/types"
	"github.com/rs/zerolog"
)

// DefaultTimeout bounds a single URL fetch attempt.
const DefaultTimeout = 10 * time.Second

// maxPayloadBytes caps the alert/settings body read; a banner payload is a
// few hundred bytes in practice.
const maxPayloadBytes = 1 << 20

// TokenProvider supplies a bearer token for URL fetches. Acquisition (AAD or
// otherwise) is an external capability.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// EnvTokenProvider reads the token from an environment variable on every
// call, so an externally refreshed credential is picked up without restart.
type EnvTokenProvider struct {
	Var string
}

// Token implements TokenProvider.
func (p EnvTokenProvider) Token(context.Context) (string, error) {
	return os.Getenv(p.Var), nil
}

// Fetcher performs one fetch attempt per call. It holds no cross-attempt
// state beyond the shared HTTP client.
type Fetcher struct {
	log    zerolog.Logger
	client *http.Client
	auth   TokenProvider
}

// NewFetcher builds a Fetcher. auth may be nil when bearer auth is disabled.
func NewFetcher(log zerolog.Logger, auth TokenProvider) *Fetcher {
	return &Fetcher{
		log:    log.With().Str("component", "fetcher").Logger(),
		client: &http.Client{Timeout: DefaultTimeout},
		auth:   auth,
	}
}

// FetchAlert performs one fetch against src. A nil alert with nil error is
// the no-alert outcome: the file is absent, the endpoint returned a
// recognized no-alert shape, or the body was empty.
func (f *Fetcher) FetchAlert(ctx context.Context, src source.Descriptor) (*types.AlertMessage, error) {
	data, err := f.read(ctx, src)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}
	alert, derr := types.DecodeAlert(data)
	if derr != nil {
		return nil, wrap(ParseError, derr)
	}
	return alert, nil
}

// FetchSettings performs one fetch of the global settings payload from the
// admin endpoint.
func (f *Fetcher) FetchSettings(ctx context.Context, url string) (*types.GlobalSettings, error) {
	data, err := f.read(ctx, source.Descriptor{Kind: source.URL, Location: url})
	if err != nil {
		return nil, err
	}
	s, derr := types.DecodeSettings(data)
	if derr != nil {
		return nil, wrap(ParseError, derr)
	}
	return s, nil
}

// read returns the raw payload bytes, or nil for the no-content outcomes.
func (f *Fetcher) read(ctx context.Context, src source.Descriptor) ([]byte, error) {
	if src.Kind == source.File {
		return f.readFile(src.Location)
	}
	return f.readURL(ctx, src.Location)
}

func (f *Fetcher) readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		// Alerts are cleared by deleting the file; absence is normal.
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, wrap(FileSystemError, err)
	}
	return data, nil
}

func (f *Fetcher) readURL(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, wrap(NetworkError, err)
	}
	req.Header.Set("Accept", "application/json")

	if f.auth != nil {
		token, terr := f.auth.Token(ctx)
		if terr != nil {
			return nil, wrap(AuthError, fmt.Errorf("acquiring token: %w", terr))
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, wrap(NetworkError, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, wrap(AuthError, fmt.Errorf("server returned %s", resp.Status))
	case resp.StatusCode == http.StatusNoContent || resp.StatusCode == http.StatusNotFound:
		// File-backed servers expose a cleared alert as a missing
		// resource.
		return nil, nil
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, wrap(NetworkError, fmt.Errorf("server returned %s", resp.Status))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPayloadBytes))
	if err != nil {
		return nil, wrap(NetworkError, err)
	}
	return data, nil
}

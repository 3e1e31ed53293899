// Package health polls service endpoints until they respond or the attempt
// budget runs out. A service that never answers is reported as still
// starting, never as a fatal error: slow first builds are normal.
package health

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/stackup-sh/stackup/internal/config"
)

type State string

const (
	StateReady    State = "ready"
	StateStarting State = "starting"
)

type Endpoint struct {
	Name string
	URL  string
}

type Result struct {
	Endpoint Endpoint
	State    State
	Attempts int
	LastErr  error
}

type Poller struct {
	client      *http.Client
	maxAttempts int
	interval    time.Duration
	logger      zerolog.Logger
}

func NewPoller(cfg config.Config, logger zerolog.Logger) *Poller {
	return &Poller{
		client: &http.Client{
			Timeout: time.Duration(cfg.Poll.TimeoutSeconds) * time.Second,
		},
		maxAttempts: cfg.Poll.MaxAttempts,
		interval:    time.Duration(cfg.Poll.IntervalSeconds) * time.Second,
		logger:      logger,
	}
}

// Endpoints builds the fixed set of polled endpoints from the configured
// service ports.
func Endpoints(services config.Services) []Endpoint {
	return []Endpoint{
		{Name: "ui", URL: fmt.Sprintf("http://localhost:%d/", services.UIPort)},
		{Name: "api", URL: fmt.Sprintf("http://localhost:%d/health", services.APIPort)},
		{Name: "mcp", URL: fmt.Sprintf("http://localhost:%d/health", services.MCPPort)},
	}
}

// Poll checks every endpoint in order. Endpoints are polled sequentially, so
// the total wait is bounded by attempts * interval * len(endpoints).
func (p *Poller) Poll(ctx context.Context, endpoints []Endpoint) []Result {
	results := make([]Result, 0, len(endpoints))
	for _, endpoint := range endpoints {
		results = append(results, p.pollOne(ctx, endpoint))
	}
	return results
}

func (p *Poller) pollOne(ctx context.Context, endpoint Endpoint) Result {
	result := Result{Endpoint: endpoint, State: StateStarting}

	operation := func() error {
		result.Attempts++
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.URL, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to create request for %q: %w", endpoint.URL, err))
		}
		resp, err := p.client.Do(req)
		if err != nil {
			return err
		}
		// Any response means the service is listening. Readiness semantics
		// beyond reachability belong to the services themselves.
		resp.Body.Close()
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(p.interval), uint64(p.maxAttempts-1)),
		ctx,
	)

	if err := backoff.Retry(operation, policy); err != nil {
		result.LastErr = err
		p.logger.Warn().
			Str("service", endpoint.Name).
			Int("attempts", result.Attempts).
			Msg("service not responding yet, it may still be starting")
		return result
	}

	result.State = StateReady
	p.logger.Info().
		Str("service", endpoint.Name).
		Int("attempts", result.Attempts).
		Msg("service is responding")
	return result
}

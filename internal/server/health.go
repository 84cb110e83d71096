package server

import "context"

// HealthService defines behaviour for readiness probes.
type HealthService interface {
	Probe(ctx context.Context) error
}

// EventFeedHealth verifies the transaction-event broker as part of health
// checks. The ledger itself is in-process memory and has nothing to probe.
type EventFeedHealth struct {
	Pinger interface {
		Ping(ctx context.Context) error
	}
}

// Probe implements the HealthService interface.
func (h EventFeedHealth) Probe(ctx context.Context) error {
	if h.Pinger == nil {
		return nil
	}
	return h.Pinger.Ping(ctx)
}

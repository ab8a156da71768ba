package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"revpulse/pkg/contracts"
)

type fakeReadiness struct {
	loaded    bool
	lastError string
}

func (f fakeReadiness) Ready() (bool, string) { return f.loaded, f.lastError }

type fakeClients int

func (f fakeClients) ClientCount() int { return int(f) }

func TestHealthService_ReadinessCheck(t *testing.T) {
	tests := []struct {
		name      string
		readiness ReadinessSource
		status    string
		message   string
	}{
		{"loaded", fakeReadiness{loaded: true}, "ready", "dataset loaded"},
		{"not loaded", fakeReadiness{}, "not_ready", "dataset not loaded yet"},
		{"failed first load", fakeReadiness{lastError: "source Aylesbury (June) is blank"}, "not_ready", "source Aylesbury (June) is blank"},
		{"stale dataset", fakeReadiness{loaded: true, lastError: "bad"}, "ready", "serving previous dataset: bad"},
		{"no service", nil, "not_ready", "report service not initialized"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hs := NewHealthService(tt.readiness, fakeClients(2), nil)
			status := hs.ReadinessCheck(context.Background())

			assert.Equal(t, tt.status, status.Status)
			dataset := status.Services["dataset"].(ServiceHealth)
			assert.Equal(t, tt.message, dataset.Message)
		})
	}
}

func TestHealthService_HealthAndLiveness(t *testing.T) {
	hs := NewHealthService(fakeReadiness{loaded: true}, nil, nil)
	ctx := context.Background()

	health := hs.HealthCheck(ctx)
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, contracts.Version, health.Version)

	live := hs.LivenessCheck(ctx)
	assert.Equal(t, "alive", live.Status)
	assert.Contains(t, live.Runtime, "goroutines")

	ready := hs.ReadinessCheck(ctx)
	ws := ready.Services["websocket"].(ServiceHealth)
	assert.Equal(t, "live updates disabled", ws.Message)

	assert.Equal(t, contracts.Version, hs.Version().Version)
}

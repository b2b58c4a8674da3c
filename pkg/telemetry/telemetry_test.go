package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDisabledProviderIsUsable(t *testing.T) {
	p, err := New(Config{Enabled: false})
	require.NoError(t, err)

	// No-op components still accept recordings.
	counter, err := p.Meter.Int64Counter("relicdb.test.counter")
	require.NoError(t, err)
	counter.Add(context.Background(), 1)

	_, span := p.Tracer.Start(context.Background(), "statement")
	span.End()

	require.NoError(t, p.Shutdown(context.Background()))
}

func TestDisabledProviderRegistersStorageMetrics(t *testing.T) {
	p, err := New(Config{Enabled: false})
	require.NoError(t, err)

	metrics, err := p.StorageMetrics()
	require.NoError(t, err)
	require.NotNil(t, metrics.PoolHitsCounter)
	metrics.StatementsCounter.Add(context.Background(), 1)
}

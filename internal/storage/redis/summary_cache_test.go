package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"wallet-pnl/internal/domain"
	"wallet-pnl/internal/storage"
)

// setupTestRedis starts a Redis container. The returned cleanup must be called.
func setupTestRedis(t *testing.T) (*Client, func()) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	client, err := New(ctx, ClientConfig{Addr: fmt.Sprintf("%s:%s", host, port.Port())})
	require.NoError(t, err)

	cleanup := func() {
		_ = client.Close()
		_ = container.Terminate(ctx)
	}
	return client, cleanup
}

func TestSummaryCache_RoundTrip(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	cache := NewSummaryCache(client)
	ctx := context.Background()

	_, err := cache.Get(ctx, "W1")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	set := &domain.WindowSet{
		GeneratedAt: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		Order:       []string{domain.WindowAll},
		Windows: map[string]*domain.WindowSummary{
			domain.WindowAll: {
				Window:              domain.WindowAll,
				TotalRealizedPnLSol: 0.5,
				Details:             []domain.Position{{Mint: "A", Status: domain.PositionClosed}},
				Calendar:            map[string]domain.DailyStat{"2024-06-01": {Date: "2024-06-01", PnLSol: 0.5, Wins: 1}},
				MCDistribution:      map[string]int{},
			},
		},
	}
	require.NoError(t, cache.Set(ctx, "W1", set, time.Minute))

	got, err := cache.Get(ctx, "W1")
	require.NoError(t, err)
	assert.Equal(t, set, got)

	require.NoError(t, cache.Delete(ctx, "W1"))
	_, err = cache.Get(ctx, "W1")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSummaryCache_Expires(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	cache := NewSummaryCache(client)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "W1", &domain.WindowSet{Windows: map[string]*domain.WindowSummary{}}, 100*time.Millisecond))

	assert.Eventually(t, func() bool {
		_, err := cache.Get(ctx, "W1")
		return err == storage.ErrNotFound
	}, 5*time.Second, 50*time.Millisecond)
}

func TestSummaryCache_InvalidInput(t *testing.T) {
	cache := &SummaryCache{}
	err := cache.Set(context.Background(), "", &domain.WindowSet{}, 0)
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}

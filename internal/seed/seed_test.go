package seed

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"sales-dashboard/internal/config"
	"sales-dashboard/internal/models"
	"sales-dashboard/internal/observability"
	"sales-dashboard/internal/store"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	s, err := store.Open(config.DatabaseConfig{Path: "file:" + name + "?mode=memory&cache=shared"}, observability.DiscardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func defaultSeedConfig() config.SeedConfig {
	return config.SeedConfig{Clients: 20, Sales: 200, RandomSeed: 42}
}

func TestAmount(t *testing.T) {
	assert.Equal(t, 999.99, Amount(999.99, 1, 0))
	assert.Equal(t, 269.98, Amount(149.99, 2, 0.10))
	assert.Equal(t, 127.46, Amount(29.99, 5, 0.15))
	assert.Equal(t, 0.0, Amount(0, 3, 0))
}

func TestRun_ShapeIsIdempotent(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	// Leftover rows from a previous run must be wiped.
	require.NoError(t, st.Conn(ctx, func(db *gorm.DB) error {
		return db.Create(&models.Client{Name: "Stale", Email: "stale@example.com"}).Error
	}))

	g := New(st, defaultSeedConfig(), observability.DiscardLogger())
	for run := 0; run < 2; run++ {
		summary, err := g.Run(ctx)
		require.NoError(t, err)
		assert.Equal(t, Summary{Products: 10, Clients: 20, Sales: 200}, summary)

		counts, err := st.Counts(ctx)
		require.NoError(t, err)
		assert.Equal(t, store.Counts{Products: 10, Clients: 20, Sales: 200}, counts, "run %d", run)
	}
}

func TestRun_SalesRespectCatalogAndDiscounts(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	g := New(st, defaultSeedConfig(), observability.DiscardLogger())
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	g.now = func() time.Time { return now }

	_, err := g.Run(ctx)
	require.NoError(t, err)

	rows, err := st.LoadSales(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 200)

	prices := map[string]float64{}
	for _, p := range Catalog {
		prices[p.Name] = p.UnitPrice
	}

	oldest := now.AddDate(0, 0, -salesWindowDays-1)
	emails := map[string]bool{}
	for _, r := range rows {
		price, ok := prices[r.Product]
		require.True(t, ok, "unknown product %q", r.Product)
		assert.GreaterOrEqual(t, r.Quantity, 1)
		assert.LessOrEqual(t, r.Quantity, 5)

		allowed := []float64{
			Amount(price, r.Quantity, 0),
			Amount(price, r.Quantity, 0.10),
			Amount(price, r.Quantity, 0.15),
		}
		assert.Contains(t, allowed, r.Amount, "sale %d", r.ID)

		assert.False(t, r.Date.After(now), "sale %d in the future", r.ID)
		assert.True(t, r.Date.After(oldest), "sale %d too old", r.ID)
		assert.GreaterOrEqual(t, r.Hour, openingHour)
		assert.Less(t, r.Hour, closingHour)
		emails[r.Email] = true
	}

	var clients []models.Client
	require.NoError(t, st.Conn(ctx, func(db *gorm.DB) error { return db.Find(&clients).Error }))
	seen := map[string]bool{}
	for _, c := range clients {
		assert.False(t, seen[c.Email], "duplicate email %s", c.Email)
		seen[c.Email] = true
	}
}

func TestRun_CancelledContextKeepsPriorState(t *testing.T) {
	st := openTestStore(t)
	g := New(st, defaultSeedConfig(), observability.DiscardLogger())

	_, err := g.Run(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = g.Run(ctx)
	require.Error(t, err)

	counts, err := st.Counts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, store.Counts{Products: 10, Clients: 20, Sales: 200}, counts)
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "helene", slug("Hélène"))
	assert.Equal(t, "dupontmoreau", slug("Dupont-Moreau"))
	assert.Equal(t, "client", slug("***"))
}

package store

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
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	s, err := Open(config.DatabaseConfig{Path: "file:" + name + "?mode=memory&cache=shared"}, observability.DiscardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestDSN(t *testing.T) {
	assert.Equal(t, "data/x.db?_foreign_keys=on&_busy_timeout=5000", DSN("data/x.db"))
	assert.Equal(t, "file:x?mode=memory&_foreign_keys=on&_busy_timeout=5000", DSN("file:x?mode=memory"))
}

func TestLoadSales_JoinsAndDerives(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Tx(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(&models.Product{ID: 1, Name: "Casque Audio", Category: "Audio", UnitPrice: 149.99}).Error; err != nil {
			return err
		}
		if err := tx.Create(&models.Client{ID: 1, Name: "Alice Martin", Email: "alice@example.com", City: "Lyon"}).Error; err != nil {
			return err
		}
		return tx.Create(&models.Sale{
			ID: 1, ProductID: 1, ClientID: 1, Quantity: 2, Amount: 254.98,
			SoldAt: time.Date(2024, 5, 17, 14, 30, 0, 0, time.UTC),
		}).Error
	}))

	rows, err := s.LoadSales(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	r := rows[0]
	assert.Equal(t, "Casque Audio", r.Product)
	assert.Equal(t, "Audio", r.Category)
	assert.Equal(t, "Alice Martin", r.Client)
	assert.Equal(t, "Lyon", r.City)
	assert.Equal(t, uint(1), r.ClientID)
	assert.Equal(t, 254.98, r.Amount)
	assert.Equal(t, "2024-05", r.Month)
	assert.Equal(t, "2024Q2", r.Quarter)
	assert.Equal(t, "Friday", r.Weekday)
	assert.Equal(t, 14, r.Hour)

	counts, err := s.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, Counts{Products: 1, Clients: 1, Sales: 1}, counts)
}

func TestConstraints(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	err := s.Conn(ctx, func(db *gorm.DB) error {
		return db.Create(&models.Product{Name: "Bad", Category: "Jardin", UnitPrice: 10}).Error
	})
	assert.True(t, IsConstraint(err), "category check: %v", err)

	err = s.Conn(ctx, func(db *gorm.DB) error {
		return db.Create(&models.Product{Name: "Free", Category: "Audio", UnitPrice: 0}).Error
	})
	assert.True(t, IsConstraint(err), "price check: %v", err)

	require.NoError(t, s.Conn(ctx, func(db *gorm.DB) error {
		return db.Create(&models.Client{Name: "A", Email: "a@example.com"}).Error
	}))
	err = s.Conn(ctx, func(db *gorm.DB) error {
		return db.Create(&models.Client{Name: "B", Email: "a@example.com"}).Error
	})
	assert.True(t, IsConstraint(err), "unique email: %v", err)

	err = s.Conn(ctx, func(db *gorm.DB) error {
		return db.Omit("Product", "Client").Create(&models.Sale{ProductID: 99, ClientID: 99, Quantity: 1, Amount: 1, SoldAt: time.Now()}).Error
	})
	assert.True(t, IsForeignKey(err), "foreign key: %v", err)
	assert.False(t, IsConstraint(err))
}

func TestCounts(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	counts, err := s.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, Counts{}, counts)

	require.NoError(t, s.Tx(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(&models.Product{ID: 1, Name: "Lampe LED", Category: "Maison", UnitPrice: 39.99}).Error; err != nil {
			return err
		}
		clients := []models.Client{
			{ID: 1, Name: "Alice Martin", Email: "alice@example.com", City: "Lyon"},
			{ID: 2, Name: "Bruno Petit", Email: "bruno@example.com", City: "Paris"},
		}
		if err := tx.Create(&clients).Error; err != nil {
			return err
		}
		sales := []models.Sale{
			{ProductID: 1, ClientID: 1, Quantity: 1, Amount: 39.99, SoldAt: time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)},
			{ProductID: 1, ClientID: 2, Quantity: 2, Amount: 79.98, SoldAt: time.Date(2024, 1, 3, 11, 0, 0, 0, time.UTC)},
			{ProductID: 1, ClientID: 2, Quantity: 1, Amount: 35.99, SoldAt: time.Date(2024, 1, 4, 12, 0, 0, 0, time.UTC)},
		}
		return tx.Omit("Product", "Client").Create(&sales).Error
	}))

	counts, err = s.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts.Products)
	assert.Equal(t, int64(2), counts.Clients)
	assert.Equal(t, int64(3), counts.Sales)
}

func TestConn_QueriesDoNotShareScope(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Conn(ctx, func(db *gorm.DB) error {
		return db.Create(&[]models.Client{
			{Name: "Alice Martin", Email: "alice@example.com", City: "Lyon"},
			{Name: "Bruno Petit", Email: "bruno@example.com", City: "Paris"},
		}).Error
	}))

	var products, lyon, all int64
	require.NoError(t, s.Conn(ctx, func(db *gorm.DB) error {
		if err := db.Model(&models.Product{}).Count(&products).Error; err != nil {
			return err
		}
		if err := db.Model(&models.Client{}).Where("city = ?", "Lyon").Count(&lyon).Error; err != nil {
			return err
		}
		return db.Model(&models.Client{}).Count(&all).Error
	}))
	assert.Equal(t, int64(0), products)
	assert.Equal(t, int64(1), lyon)
	assert.Equal(t, int64(2), all)
}

// Package store owns the SQLite database holding products, clients and sales.
//
// Callers never keep a handle across interactions: every operation acquires a
// connection through Conn or Tx and the store releases it when the function
// returns, whatever the outcome.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"sales-dashboard/internal/config"
	"sales-dashboard/internal/models"
	"sales-dashboard/internal/observability"
)

type Store struct {
	db     *gorm.DB
	logger *slog.Logger
}

// Open connects to the database described by cfg and migrates the schema.
func Open(cfg config.DatabaseConfig, log *slog.Logger) (*Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("database path is empty")
	}
	if !strings.HasPrefix(cfg.Path, "file:") {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	logLevel := logger.Silent
	if cfg.Debug {
		logLevel = logger.Info
	}

	db, err := gorm.Open(sqlite.Open(DSN(cfg.Path)), &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("database handle: %w", err)
	}
	// SQLite has a single writer; one connection avoids SQLITE_BUSY and
	// keeps shared-cache memory databases alive between operations.
	sqlDB.SetMaxOpenConns(1)

	s := &Store{db: db, logger: log}
	if err := s.Migrate(); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	log.Debug("database ready", "path", cfg.Path)
	return s, nil
}

// DSN turns a file path or "file:" URI into a go-sqlite3 DSN with foreign
// key enforcement switched on.
func DSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_foreign_keys=on&_busy_timeout=5000"
}

func (s *Store) Migrate() error {
	for _, m := range []any{&models.Product{}, &models.Client{}, &models.Sale{}} {
		if err := s.db.AutoMigrate(m); err != nil {
			return fmt.Errorf("automigrate %T: %w", m, err)
		}
	}
	return nil
}

// Conn runs fn on a single connection and releases it afterwards. fn gets a
// fresh session, so each chained query it starts has its own statement.
func (s *Store) Conn(ctx context.Context, fn func(db *gorm.DB) error) error {
	return s.db.WithContext(ctx).Connection(func(conn *gorm.DB) error {
		return fn(conn.Session(&gorm.Session{}))
	})
}

// Tx runs fn inside a transaction; any error returned by fn rolls it back.
func (s *Store) Tx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return observability.Trace(ctx, s.logger, "store.tx", func(ctx context.Context, _ *observability.Span) error {
		return s.db.WithContext(ctx).Transaction(fn)
	})
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

type Counts struct {
	Products int64 `json:"products"`
	Clients  int64 `json:"clients"`
	Sales    int64 `json:"sales"`
}

func (s *Store) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	err := s.Conn(ctx, func(db *gorm.DB) error {
		if err := db.Model(&models.Product{}).Count(&c.Products).Error; err != nil {
			return err
		}
		if err := db.Model(&models.Client{}).Count(&c.Clients).Error; err != nil {
			return err
		}
		return db.Model(&models.Sale{}).Count(&c.Sales).Error
	})
	if err != nil {
		return Counts{}, fmt.Errorf("count rows: %w", err)
	}
	return c, nil
}

const salesQuery = `
SELECT s.id, s.sold_at, s.amount, s.quantity,
       p.name AS product, p.category, p.unit_price,
       c.id AS client_id, c.name AS client, c.city, c.email
FROM sales s
JOIN products p ON s.product_id = p.id
JOIN clients c ON s.client_id = c.id
ORDER BY s.id`

type saleRecord struct {
	ID        uint
	SoldAt    time.Time
	Amount    float64
	Quantity  int
	Product   string
	Category  string
	UnitPrice float64
	ClientID  uint
	Client    string
	City      string
	Email     string
}

// LoadSales returns the full joined sales view, id ascending, with the
// calendar fields derived.
func (s *Store) LoadSales(ctx context.Context) ([]models.SaleRow, error) {
	var records []saleRecord
	err := s.Conn(ctx, func(db *gorm.DB) error {
		return db.Raw(salesQuery).Scan(&records).Error
	})
	if err != nil {
		return nil, fmt.Errorf("load sales: %w", err)
	}

	rows := make([]models.SaleRow, 0, len(records))
	for _, rec := range records {
		row := models.SaleRow{
			ID:        rec.ID,
			Date:      rec.SoldAt,
			Amount:    rec.Amount,
			Quantity:  rec.Quantity,
			Product:   rec.Product,
			Category:  rec.Category,
			UnitPrice: rec.UnitPrice,
			ClientID:  rec.ClientID,
			Client:    rec.Client,
			City:      rec.City,
			Email:     rec.Email,
		}
		row.Derive()
		rows = append(rows, row)
	}
	return rows, nil
}

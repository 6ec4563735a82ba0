// Package seed resets the store with a fixed catalog, synthetic clients and
// randomized sales.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"sales-dashboard/internal/config"
	"sales-dashboard/internal/models"
	"sales-dashboard/internal/store"
)

const (
	salesWindowDays = 730
	openingHour     = 9
	closingHour     = 20
	insertBatchSize = 100
)

// Catalog is the fixed product list every seed run starts from.
var Catalog = []models.Product{
	{ID: 1, Name: "Laptop Elite", Category: "Informatique", UnitPrice: 999.99},
	{ID: 2, Name: "Smartphone Pro", Category: "Mobile", UnitPrice: 799.99},
	{ID: 3, Name: "Casque Audio", Category: "Audio", UnitPrice: 149.99},
	{ID: 4, Name: "Clavier Mécanique", Category: "Informatique", UnitPrice: 89.99},
	{ID: 5, Name: "Souris Gaming", Category: "Informatique", UnitPrice: 59.99},
	{ID: 6, Name: "Enceinte Bluetooth", Category: "Audio", UnitPrice: 129.99},
	{ID: 7, Name: "Lampe LED", Category: "Maison", UnitPrice: 39.99},
	{ID: 8, Name: "Cahier Premium", Category: "Bureau", UnitPrice: 19.99},
	{ID: 9, Name: "Stylo 3D", Category: "Bureau", UnitPrice: 29.99},
	{ID: 10, Name: "Tapis de Souris", Category: "Informatique", UnitPrice: 24.99},
}

// Discounts is drawn uniformly: 60% none, 20% 10% off, 20% 15% off.
var Discounts = []float64{0, 0, 0, 0.10, 0.15}

type Summary struct {
	Products int `json:"products"`
	Clients  int `json:"clients"`
	Sales    int `json:"sales"`
}

type Generator struct {
	store   *store.Store
	faker   *gofakeit.Faker
	clients int
	sales   int
	now     func() time.Time
	logger  *slog.Logger
}

func New(st *store.Store, cfg config.SeedConfig, logger *slog.Logger) *Generator {
	return &Generator{
		store:   st,
		faker:   gofakeit.New(cfg.RandomSeed),
		clients: cfg.Clients,
		sales:   cfg.Sales,
		now:     func() time.Time { return time.Now().UTC() },
		logger:  logger,
	}
}

// Amount is the invoice snapshot: price × quantity × (1 − discount), rounded
// to cents.
func Amount(price float64, quantity int, discount float64) float64 {
	return decimal.NewFromFloat(price).
		Mul(decimal.NewFromInt(int64(quantity))).
		Mul(decimal.NewFromInt(1).Sub(decimal.NewFromFloat(discount))).
		Round(2).
		InexactFloat64()
}

// Run wipes the three tables and refills them in a single transaction. On
// error nothing is committed.
func (g *Generator) Run(ctx context.Context) (Summary, error) {
	start := time.Now()

	products := make([]models.Product, len(Catalog))
	copy(products, Catalog)
	clients := g.buildClients()
	sales := g.buildSales(products, clients)

	err := g.store.Tx(ctx, func(tx *gorm.DB) error {
		for _, table := range []string{"sales", "clients", "products"} {
			if err := tx.Exec("DELETE FROM " + table).Error; err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}
		if err := tx.Create(&products).Error; err != nil {
			return fmt.Errorf("insert products: %w", err)
		}
		if err := tx.Create(&clients).Error; err != nil {
			return fmt.Errorf("insert clients: %w", err)
		}
		if len(sales) == 0 {
			return nil
		}
		if err := tx.Omit(clause.Associations).CreateInBatches(&sales, insertBatchSize).Error; err != nil {
			return fmt.Errorf("insert sales: %w", err)
		}
		return nil
	})
	if err != nil {
		g.logger.Error("seed rolled back", "error", err)
		return Summary{}, err
	}

	summary := Summary{Products: len(products), Clients: len(clients), Sales: len(sales)}
	g.logger.Info("store seeded",
		"products", summary.Products,
		"clients", summary.Clients,
		"sales", summary.Sales,
		"duration", time.Since(start),
	)
	return summary, nil
}

func (g *Generator) buildClients() []models.Client {
	clients := make([]models.Client, 0, g.clients)
	for i := 1; i <= g.clients; i++ {
		first, last := g.faker.FirstName(), g.faker.LastName()
		clients = append(clients, models.Client{
			ID:   uint(i),
			Name: first + " " + last,
			// The index suffix keeps emails unique even when names repeat.
			Email: fmt.Sprintf("%s.%s%d@example.com", slug(first), slug(last), i),
			City:  g.faker.City(),
		})
	}
	return clients
}

func (g *Generator) buildSales(products []models.Product, clients []models.Client) []models.Sale {
	if len(clients) == 0 {
		return nil
	}
	now := g.now()
	today := now.Truncate(24 * time.Hour)

	sales := make([]models.Sale, 0, g.sales)
	for i := 1; i <= g.sales; i++ {
		p := products[g.faker.Number(0, len(products)-1)]
		c := clients[g.faker.Number(0, len(clients)-1)]
		quantity := g.faker.Number(1, 5)
		discount := Discounts[g.faker.Number(0, len(Discounts)-1)]

		soldAt := today.
			AddDate(0, 0, -g.faker.Number(0, salesWindowDays)).
			Add(time.Duration(g.faker.Number(openingHour, closingHour-1)) * time.Hour).
			Add(time.Duration(g.faker.Number(0, 59)) * time.Minute)
		if soldAt.After(now) {
			soldAt = soldAt.AddDate(0, 0, -1)
		}

		sales = append(sales, models.Sale{
			ID:        uint(i),
			ProductID: p.ID,
			ClientID:  c.ID,
			SoldAt:    soldAt,
			Quantity:  quantity,
			Amount:    Amount(p.UnitPrice, quantity, discount),
		})
	}
	return sales
}

// slug lowercases s and keeps ASCII letters and digits only.
func slug(s string) string {
	var b strings.Builder
	for _, r := range norm.NFD.String(strings.ToLower(s)) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "client"
	}
	return b.String()
}

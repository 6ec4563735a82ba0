package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"gorm.io/gorm"

	"sales-dashboard/internal/models"
	"sales-dashboard/internal/store"
)

var (
	ErrConstraintViolation = errors.New("constraint violation")
	ErrNotFound            = errors.New("not found")
	ErrReferentialGap      = errors.New("still referenced by sales")
)

// ConstraintError reports which field a write was rejected on. It matches
// ErrConstraintViolation with errors.Is.
type ConstraintError struct {
	Field   string
	Message string
}

func (e *ConstraintError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func (e *ConstraintError) Unwrap() error { return ErrConstraintViolation }

// Catalog manages products and clients. Every call acquires its own
// connection from the store.
type Catalog struct {
	store  *store.Store
	logger *slog.Logger
}

func NewCatalog(st *store.Store, logger *slog.Logger) *Catalog {
	return &Catalog{store: st, logger: logger}
}

func (c *Catalog) ListProducts(ctx context.Context) ([]models.Product, error) {
	products := []models.Product{}
	err := c.store.Conn(ctx, func(db *gorm.DB) error {
		return db.Order("id").Find(&products).Error
	})
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

func (c *Catalog) GetProduct(ctx context.Context, id uint) (models.Product, error) {
	var p models.Product
	err := c.store.Conn(ctx, func(db *gorm.DB) error {
		return db.First(&p, id).Error
	})
	if err != nil {
		return models.Product{}, classify(err, "product", id)
	}
	return p, nil
}

func (c *Catalog) CreateProduct(ctx context.Context, p models.Product) (models.Product, error) {
	p.ID = 0
	p = normalizeProduct(p)
	if err := validateProduct(p); err != nil {
		return models.Product{}, err
	}
	err := c.store.Conn(ctx, func(db *gorm.DB) error {
		return db.Create(&p).Error
	})
	if err != nil {
		return models.Product{}, classify(err, "product", 0)
	}
	c.logger.Info("product created", "id", p.ID, "name", p.Name)
	return p, nil
}

// UpdateProduct overwrites name, category and price. Existing sales keep
// their recorded amounts.
func (c *Catalog) UpdateProduct(ctx context.Context, id uint, p models.Product) (models.Product, error) {
	p.ID = id
	p = normalizeProduct(p)
	if err := validateProduct(p); err != nil {
		return models.Product{}, err
	}
	err := c.store.Conn(ctx, func(db *gorm.DB) error {
		res := db.Model(&models.Product{}).Where("id = ?", id).Updates(map[string]any{
			"name":       p.Name,
			"category":   p.Category,
			"unit_price": p.UnitPrice,
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return models.Product{}, classify(err, "product", id)
	}
	c.logger.Info("product updated", "id", id)
	return p, nil
}

func (c *Catalog) DeleteProduct(ctx context.Context, id uint) error {
	err := c.store.Tx(ctx, func(tx *gorm.DB) error {
		return deleteUnreferenced(tx, &models.Product{}, "product_id", id)
	})
	if err != nil {
		return classify(err, "product", id)
	}
	c.logger.Info("product deleted", "id", id)
	return nil
}

func (c *Catalog) ListClients(ctx context.Context) ([]models.Client, error) {
	clients := []models.Client{}
	err := c.store.Conn(ctx, func(db *gorm.DB) error {
		return db.Order("id").Find(&clients).Error
	})
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	return clients, nil
}

func (c *Catalog) GetClient(ctx context.Context, id uint) (models.Client, error) {
	var cl models.Client
	err := c.store.Conn(ctx, func(db *gorm.DB) error {
		return db.First(&cl, id).Error
	})
	if err != nil {
		return models.Client{}, classify(err, "client", id)
	}
	return cl, nil
}

func (c *Catalog) CreateClient(ctx context.Context, cl models.Client) (models.Client, error) {
	cl.ID = 0
	cl = normalizeClient(cl)
	if err := validateClient(cl); err != nil {
		return models.Client{}, err
	}
	err := c.store.Conn(ctx, func(db *gorm.DB) error {
		return db.Create(&cl).Error
	})
	if err != nil {
		return models.Client{}, classify(err, "client", 0)
	}
	c.logger.Info("client created", "id", cl.ID, "email", cl.Email)
	return cl, nil
}

func (c *Catalog) UpdateClient(ctx context.Context, id uint, cl models.Client) (models.Client, error) {
	cl.ID = id
	cl = normalizeClient(cl)
	if err := validateClient(cl); err != nil {
		return models.Client{}, err
	}
	err := c.store.Conn(ctx, func(db *gorm.DB) error {
		res := db.Model(&models.Client{}).Where("id = ?", id).Updates(map[string]any{
			"name":  cl.Name,
			"email": cl.Email,
			"city":  cl.City,
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return models.Client{}, classify(err, "client", id)
	}
	c.logger.Info("client updated", "id", id)
	return cl, nil
}

func (c *Catalog) DeleteClient(ctx context.Context, id uint) error {
	err := c.store.Tx(ctx, func(tx *gorm.DB) error {
		return deleteUnreferenced(tx, &models.Client{}, "client_id", id)
	})
	if err != nil {
		return classify(err, "client", id)
	}
	c.logger.Info("client deleted", "id", id)
	return nil
}

// deleteUnreferenced removes the row unless a sale still points at it.
func deleteUnreferenced(tx *gorm.DB, model any, column string, id uint) error {
	var exists int64
	if err := tx.Model(model).Where("id = ?", id).Count(&exists).Error; err != nil {
		return err
	}
	if exists == 0 {
		return gorm.ErrRecordNotFound
	}

	var refs int64
	if err := tx.Model(&models.Sale{}).Where(column+" = ?", id).Count(&refs).Error; err != nil {
		return err
	}
	if refs > 0 {
		return fmt.Errorf("%w (%d sales)", ErrReferentialGap, refs)
	}
	return tx.Delete(model, id).Error
}

// classify maps storage errors onto the catalog sentinels.
func classify(err error, entity string, id uint) error {
	switch {
	case errors.Is(err, ErrReferentialGap):
		return fmt.Errorf("%s %d: %w", entity, id, err)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s %d: %w", entity, id, ErrNotFound)
	case store.IsForeignKey(err):
		return fmt.Errorf("%s %d: %w", entity, id, ErrReferentialGap)
	case store.IsConstraint(err):
		return constraintFromStore(err)
	}
	return fmt.Errorf("%s: %w", entity, err)
}

func constraintFromStore(err error) *ConstraintError {
	msg := err.Error()
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey), strings.Contains(msg, "UNIQUE"):
		return &ConstraintError{Field: "email", Message: "already used by another client"}
	case strings.Contains(msg, "chk_products_category"):
		return &ConstraintError{Field: "category", Message: "unknown category"}
	case strings.Contains(msg, "chk_products_unit_price"):
		return &ConstraintError{Field: "unit_price", Message: "must be greater than zero"}
	}
	return &ConstraintError{Message: msg}
}

func normalizeProduct(p models.Product) models.Product {
	p.Name = strings.TrimSpace(p.Name)
	p.Category = strings.TrimSpace(p.Category)
	return p
}

func validateProduct(p models.Product) error {
	if p.Name == "" {
		return &ConstraintError{Field: "name", Message: "is required"}
	}
	if !models.IsCategory(p.Category) {
		return &ConstraintError{Field: "category", Message: "must be one of " + strings.Join(models.Categories, ", ")}
	}
	if p.UnitPrice <= 0 {
		return &ConstraintError{Field: "unit_price", Message: "must be greater than zero"}
	}
	return nil
}

func normalizeClient(cl models.Client) models.Client {
	cl.Name = strings.TrimSpace(cl.Name)
	cl.Email = strings.ToLower(strings.TrimSpace(cl.Email))
	cl.City = strings.TrimSpace(cl.City)
	return cl
}

func validateClient(cl models.Client) error {
	if cl.Name == "" {
		return &ConstraintError{Field: "name", Message: "is required"}
	}
	if cl.Email == "" {
		return &ConstraintError{Field: "email", Message: "is required"}
	}
	if addr, err := mail.ParseAddress(cl.Email); err != nil || addr.Address != cl.Email {
		return &ConstraintError{Field: "email", Message: "is not a valid address"}
	}
	return nil
}

package models

import "time"

// Categories lists the product categories accepted by the products table.
var Categories = []string{"Informatique", "Mobile", "Audio", "Maison", "Bureau"}

func IsCategory(s string) bool {
	for _, c := range Categories {
		if c == s {
			return true
		}
	}
	return false
}

type Product struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	Name      string  `gorm:"not null" json:"name"`
	Category  string  `gorm:"not null;check:chk_products_category,category IN ('Informatique','Mobile','Audio','Maison','Bureau')" json:"category"`
	UnitPrice float64 `gorm:"not null;check:chk_products_unit_price,unit_price > 0" json:"unit_price"`
}

type Client struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Name  string `gorm:"not null" json:"name"`
	Email string `gorm:"not null;uniqueIndex" json:"email"`
	City  string `json:"city"`
}

// Sale is an invoice snapshot: Amount is fixed at creation and does not
// follow later price edits.
type Sale struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProductID uint      `gorm:"not null;index" json:"product_id"`
	Product   Product   `gorm:"foreignKey:ProductID;constraint:OnDelete:RESTRICT" json:"-"`
	ClientID  uint      `gorm:"not null;index" json:"client_id"`
	Client    Client    `gorm:"foreignKey:ClientID;constraint:OnDelete:RESTRICT" json:"-"`
	SoldAt    time.Time `gorm:"not null;index" json:"sold_at"`
	Quantity  int       `gorm:"not null;check:chk_sales_quantity,quantity > 0" json:"quantity"`
	Amount    float64   `gorm:"not null" json:"amount"`
}

package entity

import (
	"time"

	"github.com/uptrace/bun"
)

// MenuStatus describes whether a menu can currently be ordered.
type MenuStatus string

const (
	MenuStatusSale    MenuStatus = "SALE"
	MenuStatusNotSale MenuStatus = "NOT_SALE"
	MenuStatusSoldOut MenuStatus = "SOLD_OUT"
)

// ParseMenuStatus validates a raw status value.
func ParseMenuStatus(raw string) (MenuStatus, bool) {
	switch s := MenuStatus(raw); s {
	case MenuStatusSale, MenuStatusNotSale, MenuStatusSoldOut:
		return s, true
	default:
		return "", false
	}
}

// Menu is a dish sold by a shop.
type Menu struct {
	bun.BaseModel `bun:"table:menus,alias:m"`

	ID          int64       `bun:",pk,autoincrement"`
	ShopID      int64       `bun:"shop_id,notnull"`
	CategoryID  int64       `bun:"category_id,notnull"`
	Category    *Category   `bun:"rel:belongs-to,join:category_id=id"`
	Name        string      `bun:"name,notnull"`
	Price       int64       `bun:"price,notnull"`
	ImgURL      string      `bun:"img_url"`
	IsSignature bool        `bun:"is_signature,notnull"`
	Status      MenuStatus  `bun:"status,notnull"`
	Sizes       []*MenuSize `bun:"rel:has-many,join:id=menu_id"`
	Extras      []*Extra    `bun:"rel:has-many,join:id=menu_id"`
	CreatedAt   time.Time   `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time   `bun:"updated_at,nullzero"`
}

// MenuSize prices a menu in one catalog size.
type MenuSize struct {
	bun.BaseModel `bun:"table:menu_sizes,alias:ms"`

	ID     int64 `bun:",pk,autoincrement"`
	MenuID int64 `bun:"menu_id,notnull"`
	SizeID int64 `bun:"size_id,notnull"`
	Size   *Size `bun:"rel:belongs-to,join:size_id=id"`
	Price  int64 `bun:"price,notnull"`
}

// Extra is an optional add-on for a menu.
type Extra struct {
	bun.BaseModel `bun:"table:extras,alias:e"`

	ID     int64  `bun:",pk,autoincrement"`
	MenuID int64  `bun:"menu_id,notnull"`
	Name   string `bun:"name,notnull"`
	Price  int64  `bun:"price,notnull"`
}

// CustomerMenu records that a customer liked a menu.
type CustomerMenu struct {
	bun.BaseModel `bun:"table:customer_menus,alias:cm"`

	ID         int64     `bun:",pk,autoincrement"`
	CustomerID int64     `bun:"customer_id,notnull"`
	MenuID     int64     `bun:"menu_id,notnull"`
	CreatedAt  time.Time `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`
}

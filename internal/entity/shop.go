package entity

import (
	"time"

	"github.com/uptrace/bun"
)

// Shop is a restaurant registered on the platform.
type Shop struct {
	bun.BaseModel `bun:"table:shops,alias:s"`

	ID        int64     `bun:",pk,autoincrement"`
	Name      string    `bun:"name,notnull"`
	Phone     string    `bun:"phone"`
	Address   string    `bun:"address"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `bun:"updated_at,nullzero"`
}

// Partner owns and operates exactly one shop.
type Partner struct {
	bun.BaseModel `bun:"table:partners,alias:p"`

	ID     int64  `bun:",pk,autoincrement"`
	Email  string `bun:"email,notnull,unique"`
	Name   string `bun:"name"`
	ShopID int64  `bun:"shop_id,notnull"`
	Shop   *Shop  `bun:"rel:belongs-to,join:shop_id=id"`
}

// Customer places orders and receives push notifications on DeviceToken.
type Customer struct {
	bun.BaseModel `bun:"table:customers,alias:c"`

	ID          int64     `bun:",pk,autoincrement"`
	Email       string    `bun:"email,notnull,unique"`
	Nickname    string    `bun:"nickname"`
	DeviceToken string    `bun:"device_token,nullzero"`
	CreatedAt   time.Time `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time `bun:"updated_at,nullzero"`
}

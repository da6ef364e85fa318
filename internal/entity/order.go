package entity

import (
	"time"

	"github.com/uptrace/bun"
)

// OrderStatus tracks an order through the shop's workflow.
type OrderStatus string

const (
	OrderStatusRequested OrderStatus = "REQUESTED"
	OrderStatusAccepted  OrderStatus = "ACCEPTED"
	OrderStatusReady     OrderStatus = "READY"
	OrderStatusCompleted OrderStatus = "COMPLETED"
	OrderStatusRejected  OrderStatus = "REJECTED"
	OrderStatusCanceled  OrderStatus = "CANCELED"
)

// ParseOrderStatus validates a raw status value.
func ParseOrderStatus(raw string) (OrderStatus, bool) {
	switch s := OrderStatus(raw); s {
	case OrderStatusRequested, OrderStatusAccepted, OrderStatusReady,
		OrderStatusCompleted, OrderStatusRejected, OrderStatusCanceled:
		return s, true
	default:
		return "", false
	}
}

// partnerTransitions lists the moves a partner may make from each status.
var partnerTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusRequested: {OrderStatusAccepted, OrderStatusRejected},
	OrderStatusAccepted:  {OrderStatusReady, OrderStatusRejected},
	OrderStatusReady:     {OrderStatusCompleted},
}

// CanTransition reports whether a partner may move an order from one status to another.
func CanTransition(from, to OrderStatus) bool {
	for _, next := range partnerTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Order is a customer's purchase from a single shop.
type Order struct {
	bun.BaseModel `bun:"table:orders,alias:o"`

	ID         int64        `bun:",pk,autoincrement"`
	ShopID     int64        `bun:"shop_id,notnull"`
	CustomerID int64        `bun:"customer_id,notnull"`
	Customer   *Customer    `bun:"rel:belongs-to,join:customer_id=id"`
	Status     OrderStatus  `bun:"status,notnull"`
	TotalPrice int64        `bun:"total_price,notnull"`
	Request    string       `bun:"request"`
	Menus      []*OrderMenu `bun:"rel:has-many,join:id=order_id"`
	CreatedAt  time.Time    `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`
	UpdatedAt  time.Time    `bun:"updated_at,nullzero"`
}

// OrderMenu is one line of an order, priced at order time.
type OrderMenu struct {
	bun.BaseModel `bun:"table:order_menus,alias:om"`

	ID       int64  `bun:",pk,autoincrement"`
	OrderID  int64  `bun:"order_id,notnull"`
	MenuID   int64  `bun:"menu_id,notnull"`
	MenuName string `bun:"menu_name,notnull"`
	SizeName string `bun:"size_name"`
	Count    int    `bun:"count,notnull"`
	Price    int64  `bun:"price,notnull"`
}

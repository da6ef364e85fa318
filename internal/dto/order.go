package dto

import "time"

// OrderResponse summarises an order for day views.
type OrderResponse struct {
	ID         int64     `json:"id"`
	ShopID     int64     `json:"shopId"`
	Status     string    `json:"status"`
	TotalPrice int64     `json:"totalPrice"`
	CreatedAt  time.Time `json:"createdAt"`
}

// OrderDetailResponse includes the customer and ordered menus.
type OrderDetailResponse struct {
	ID         int64               `json:"id"`
	Status     string              `json:"status"`
	TotalPrice int64               `json:"totalPrice"`
	Request    string              `json:"request,omitempty"`
	Customer   OrderCustomer       `json:"customer"`
	Menus      []OrderMenuResponse `json:"menus"`
	CreatedAt  time.Time           `json:"createdAt"`
}

// OrderCustomer identifies who placed an order.
type OrderCustomer struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Nickname string `json:"nickname,omitempty"`
}

// OrderMenuResponse is one ordered line.
type OrderMenuResponse struct {
	MenuID   int64  `json:"menuId"`
	MenuName string `json:"menuName"`
	SizeName string `json:"sizeName,omitempty"`
	Count    int    `json:"count"`
	Price    int64  `json:"price"`
}

// RevenueResponse reports revenue over a time window.
type RevenueResponse struct {
	Revenue int64      `json:"revenue"`
	From    *time.Time `json:"from,omitempty"`
	To      time.Time  `json:"to"`
}

// OrderStatusRequest moves an order to a new status.
type OrderStatusRequest struct {
	Status string `json:"status"`
}

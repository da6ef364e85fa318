package order

import (
	"github.com/Additional-Code/runner/internal/dto"
	"github.com/Additional-Code/runner/internal/entity"
)

func toOrderResponse(o *entity.Order) dto.OrderResponse {
	return dto.OrderResponse{
		ID:         o.ID,
		ShopID:     o.ShopID,
		Status:     string(o.Status),
		TotalPrice: o.TotalPrice,
		CreatedAt:  o.CreatedAt,
	}
}

func toOrderDetailResponse(o *entity.Order) dto.OrderDetailResponse {
	resp := dto.OrderDetailResponse{
		ID:         o.ID,
		Status:     string(o.Status),
		TotalPrice: o.TotalPrice,
		Request:    o.Request,
		Customer:   dto.OrderCustomer{ID: o.CustomerID},
		Menus:      make([]dto.OrderMenuResponse, 0, len(o.Menus)),
		CreatedAt:  o.CreatedAt,
	}
	if o.Customer != nil {
		resp.Customer.Email = o.Customer.Email
		resp.Customer.Nickname = o.Customer.Nickname
	}
	for _, line := range o.Menus {
		resp.Menus = append(resp.Menus, dto.OrderMenuResponse{
			MenuID:   line.MenuID,
			MenuName: line.MenuName,
			SizeName: line.SizeName,
			Count:    line.Count,
			Price:    line.Price,
		})
	}
	return resp
}

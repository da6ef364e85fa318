package menu

import (
	"github.com/Additional-Code/runner/internal/dto"
	"github.com/Additional-Code/runner/internal/entity"
)

func toMenuResponse(m *entity.Menu) dto.MenuResponse {
	resp := dto.MenuResponse{
		ID:         m.ID,
		ShopID:     m.ShopID,
		CategoryID: m.CategoryID,
		Name:       m.Name,
		Price:      m.Price,
		ImgURL:     m.ImgURL,
		Signature:  m.IsSignature,
		Status:     string(m.Status),
		MenuSizeList: dto.MenuSizeListBody{
			MenuSizeList: make([]dto.MenuSizeResponse, 0, len(m.Sizes)),
		},
		ExtraList: dto.ExtraListBody{
			ExtraList: make([]dto.ExtraResponse, 0, len(m.Extras)),
		},
	}
	if m.Category != nil {
		resp.CategoryName = m.Category.Name
	}
	for _, size := range m.Sizes {
		resp.MenuSizeList.MenuSizeList = append(resp.MenuSizeList.MenuSizeList, toMenuSizeResponse(size))
	}
	for _, extra := range m.Extras {
		resp.ExtraList.ExtraList = append(resp.ExtraList.ExtraList, toExtraResponse(extra))
	}
	return resp
}

func toMenuSizeResponse(s *entity.MenuSize) dto.MenuSizeResponse {
	resp := dto.MenuSizeResponse{
		MenuSizeID: s.ID,
		MenuID:     s.MenuID,
		SizeID:     s.SizeID,
		Price:      s.Price,
	}
	if s.Size != nil {
		resp.MenuSizeName = s.Size.Name
	}
	return resp
}

func toExtraResponse(e *entity.Extra) dto.ExtraResponse {
	return dto.ExtraResponse{ID: e.ID, MenuID: e.MenuID, Name: e.Name, Price: e.Price}
}

package dto

// MenuResponse represents a menu as exposed to partner and customer apps.
type MenuResponse struct {
	ID           int64            `json:"id"`
	ShopID       int64            `json:"shopId"`
	CategoryID   int64            `json:"categoryId"`
	CategoryName string           `json:"categoryName,omitempty"`
	Name         string           `json:"name"`
	Price        int64            `json:"price"`
	ImgURL       string           `json:"imgUrl"`
	Signature    bool             `json:"signature"`
	Status       string           `json:"status"`
	MenuSizeList MenuSizeListBody `json:"menuSizeList"`
	ExtraList    ExtraListBody    `json:"extraList"`
}

// MenuSizeListBody wraps the sizes of a menu.
type MenuSizeListBody struct {
	MenuSizeList []MenuSizeResponse `json:"menuSizeList"`
}

// ExtraListBody wraps the extras of a menu.
type ExtraListBody struct {
	ExtraList []ExtraResponse `json:"extraList"`
}

// MenuListResponse lists every menu of a shop.
type MenuListResponse struct {
	MenuList []MenuResponse `json:"menuList"`
}

// MenuDetailResponse is the customer view of a menu.
type MenuDetailResponse struct {
	MenuResponse
	Liked bool `json:"liked"`
}

// MenuSizeResponse is one size option of a menu.
type MenuSizeResponse struct {
	MenuSizeID   int64  `json:"menuSizeId"`
	MenuID       int64  `json:"menuId"`
	SizeID       int64  `json:"sizeId"`
	MenuSizeName string `json:"menuSizeName"`
	Price        int64  `json:"price"`
}

// ExtraResponse is one add-on of a menu.
type ExtraResponse struct {
	ID     int64  `json:"id"`
	MenuID int64  `json:"menuId"`
	Name   string `json:"name"`
	Price  int64  `json:"price"`
}

// ResultResponse acknowledges operations without a body.
type ResultResponse struct {
	Result bool `json:"result"`
}

// MenuRequest creates or replaces the editable fields of a menu.
type MenuRequest struct {
	CategoryID int64  `json:"categoryId"`
	Name       string `json:"name"`
	Price      int64  `json:"price"`
	ImgURL     string `json:"imgUrl"`
	Signature  bool   `json:"signature"`
}

// MenuStatusRequest changes the sale status of a menu.
type MenuStatusRequest struct {
	Status string `json:"status"`
}

// MenuSizeRequest adds or edits a size option. MenuSizeID is only read on update.
type MenuSizeRequest struct {
	MenuSizeID int64 `json:"menuSizeId"`
	SizeID     int64 `json:"sizeId"`
	Price      int64 `json:"price"`
}

// ExtraRequest adds an extra to a menu.
type ExtraRequest struct {
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

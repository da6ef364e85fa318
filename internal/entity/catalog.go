package entity

import "github.com/uptrace/bun"

// Category groups menus (e.g. coffee, dessert).
type Category struct {
	bun.BaseModel `bun:"table:categories,alias:cat"`

	ID   int64  `bun:",pk,autoincrement"`
	Name string `bun:"name,notnull,unique"`
}

// Size is a catalog label a menu can be offered in.
type Size struct {
	bun.BaseModel `bun:"table:sizes,alias:sz"`

	ID   int64  `bun:",pk,autoincrement"`
	Name string `bun:"name,notnull,unique"`
}

package model

import "time"

// Cart stages items for a table before they are sent as an order.
type Cart struct {
	ID        uint       `json:"id" gorm:"primaryKey"`
	TableID   uint       `json:"mesa" gorm:"index"`
	Items     []CartItem `json:"productos" gorm:"foreignKey:CartID"`
	CreatedAt time.Time  `json:"fecha"`
	UpdatedAt time.Time  `json:"-"`
}

type CartItem struct {
	ID                 uint     `json:"id" gorm:"primaryKey"`
	CartID             uint     `json:"-" gorm:"index;not null"`
	ProductID          uint     `json:"producto" gorm:"not null"`
	Quantity           int      `json:"cantidad"`
	Kind               string   `json:"tipo" gorm:"size:20"`
	Price              float64  `json:"precio" gorm:"type:decimal(10,2)"`
	RemovedIngredients []string `json:"ingredientesEliminados" gorm:"serializer:json"`
	Notes              []string `json:"especificaciones" gorm:"serializer:json"`
}

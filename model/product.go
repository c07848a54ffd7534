package model

import "time"

type Product struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"nombre" gorm:"not null"`
	Kind      string    `json:"tipo" gorm:"size:20;index"`
	Price     float64   `json:"precio" gorm:"type:decimal(10,2);not null;default:0"`
	Stock     int       `json:"stock" gorm:"not null;default:0"`
	Sales     []Sale    `json:"ventas,omitempty" gorm:"foreignKey:ProductID"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// Sale is written once per order line at order time and goes away with the line.
type Sale struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	ProductID uint      `json:"producto" gorm:"index;not null"`
	OrderID   uint      `json:"pedidoId" gorm:"index;not null"`
	ItemID    uint      `json:"-" gorm:"index"`
	Quantity  int       `json:"cantidad"`
	Total     float64   `json:"total" gorm:"type:decimal(10,2)"`
	CreatedAt time.Time `json:"fecha"`
}

package model

import "time"

// Table is a physical restaurant table. Total is the running sum of its orders.
type Table struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Number    int       `json:"numero" gorm:"uniqueIndex;not null"`
	Total     float64   `json:"total" gorm:"type:decimal(10,2);not null;default:0"`
	Orders    []Order   `json:"pedidos" gorm:"foreignKey:TableID"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

type PaymentBreakdown struct {
	Cash float64 `json:"efectivo" gorm:"type:decimal(10,2);not null;default:0"`
	Card float64 `json:"tarjeta" gorm:"type:decimal(10,2);not null;default:0"`
}

// ClosedTable is the snapshot taken when a table pays, kept until the register closes.
type ClosedTable struct {
	ID            uint             `json:"id" gorm:"primaryKey"`
	TableID       uint             `json:"mesa" gorm:"index"`
	Number        int              `json:"numero"`
	Total         float64          `json:"total" gorm:"type:decimal(10,2)"`
	PaymentMethod PaymentBreakdown `json:"metodoPago" gorm:"embedded;embeddedPrefix:metodo_pago_"`
	CreatedAt     time.Time        `json:"fecha"`
}

// DailyCash is the record left behind by each cash-register close.
type DailyCash struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Date      time.Time `json:"fecha" gorm:"index;not null"`
	Total     float64   `json:"total" gorm:"type:decimal(10,2)"`
	Income    float64   `json:"ingresos" gorm:"type:decimal(10,2)"`
	Report    []byte    `json:"-"`
	CreatedAt time.Time `json:"-"`
}

// Password holds the bcrypt hash of the shared cash-close password. One row at most.
type Password struct {
	ID        uint   `gorm:"primaryKey"`
	Value     string `gorm:"not null"`
	UpdatedAt time.Time
}

package model

import "time"

// RemovalAudit records who took an item off an order. References are kept even after
// the order itself is gone, so the preloaded pointers may be nil.
type RemovalAudit struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	ProductID uint      `json:"-" gorm:"index"`
	Product   *Product  `json:"producto" gorm:"foreignKey:ProductID"`
	OrderID   uint      `json:"-" gorm:"index"`
	Order     *Order    `json:"pedido" gorm:"foreignKey:OrderID"`
	TableID   uint      `json:"-" gorm:"index"`
	Table     *Table    `json:"mesa" gorm:"foreignKey:TableID"`
	UserID    uint      `json:"-" gorm:"index"`
	User      *User     `json:"user" gorm:"foreignKey:UserID"`
	Quantity  int       `json:"cantidad"`
	CreatedAt time.Time `json:"fecha"`
}

package model

import "time"

type OrderState string

const (
	OrderPending   OrderState = "pendiente"
	OrderReady     OrderState = "listo"
	OrderDelivered OrderState = "entregado"
)

func (s OrderState) Valid() bool {
	switch s {
	case OrderPending, OrderReady, OrderDelivered:
		return true
	}
	return false
}

type PrepState string

const (
	PrepPending PrepState = "pendiente"
	PrepReady   PrepState = "listo"
)

func (s PrepState) Valid() bool {
	return s == PrepPending || s == PrepReady
}

// Item kinds as the kitchen and bar screens group them.
const (
	KindDish    = "plato"
	KindTapa    = "tapaRacion"
	KindDrink   = "bebida"
	KindDessert = "postre"
	KindOther   = "otro"
)

type Order struct {
	ID        uint        `json:"id" gorm:"primaryKey"`
	TableID   uint        `json:"mesaId" gorm:"index;not null"`
	Table     *Table      `json:"mesa,omitempty" gorm:"foreignKey:TableID"`
	Items     []OrderItem `json:"productos" gorm:"foreignKey:OrderID"`
	Total     float64     `json:"total" gorm:"type:decimal(10,2);not null;default:0"`
	Diners    int         `json:"comensales"`
	Allergies string      `json:"alergias"`
	Bread     bool        `json:"pan"`
	State     OrderState  `json:"estado" gorm:"type:varchar(20);default:'pendiente'"`
	Ref       string      `json:"ref" gorm:"uniqueIndex;size:64"`
	CreatedAt time.Time   `json:"fecha"`
	UpdatedAt time.Time   `json:"-"`
}

type OrderItem struct {
	ID                 uint      `json:"id" gorm:"primaryKey"`
	OrderID            uint      `json:"-" gorm:"index;not null"`
	ProductID          uint      `json:"productoId" gorm:"index;not null"`
	Product            *Product  `json:"producto,omitempty" gorm:"foreignKey:ProductID"`
	Quantity           int       `json:"cantidad" gorm:"not null"`
	Kind               string    `json:"tipo" gorm:"size:20"`
	Price              float64   `json:"precio" gorm:"type:decimal(10,2)"`
	PrepState          PrepState `json:"estadoPreparacion" gorm:"type:varchar(20);default:'pendiente'"`
	RemovedIngredients []string  `json:"ingredientesEliminados" gorm:"serializer:json"`
	Notes              []string  `json:"especificaciones" gorm:"serializer:json"`
}

// ReadyToFinish reports whether every item of the given kinds is ready.
// With no kinds every item counts. An order without matching items is not ready.
func (o *Order) ReadyToFinish(kinds ...string) bool {
	seen := false
	for _, it := range o.Items {
		if !matchesKind(it.Kind, kinds) {
			continue
		}
		seen = true
		if it.PrepState != PrepReady {
			return false
		}
	}
	return seen
}

// FilterItems keeps only the items of the given kinds.
func (o *Order) FilterItems(kinds ...string) {
	if len(kinds) == 0 {
		return
	}
	kept := o.Items[:0]
	for _, it := range o.Items {
		if matchesKind(it.Kind, kinds) {
			kept = append(kept, it)
		}
	}
	o.Items = kept
}

func matchesKind(kind string, kinds []string) bool {
	if len(kinds) == 0 {
		return true
	}
	for _, k := range kinds {
		if k == kind {
			return true
		}
	}
	return false
}

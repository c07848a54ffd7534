package model

import (
	"gorm.io/gorm"
)

type UserRole string

const (
	RoleAdmin  UserRole = "admin"
	RoleWaiter UserRole = "camarero"
	RoleKitch  UserRole = "cocina"
)

// Valid reports whether r is one of the known staff roles.
func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleWaiter, RoleKitch:
		return true
	}
	return false
}

type User struct {
	gorm.Model
	Name     string   `json:"name"`
	Login    string   `json:"login" gorm:"uniqueIndex;not null"`
	Role     UserRole `json:"role" gorm:"type:varchar(20);default:'camarero'"`
	Password string   `json:"-"`
}

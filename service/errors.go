package service

import (
	"errors"
)

var (
	ErrNotFound       = errors.New("no encontrado")
	ErrValidation     = errors.New("petición inválida")
	ErrDuplicate      = errors.New("ya existe")
	ErrUnauthorized   = errors.New("no autorizado")
	ErrPasswordNotSet = errors.New("Contraseña no encontrada")
)

var (
	ErrTableNotFound     = kind(ErrNotFound, "Mesa no encontrada")
	ErrOrderNotFound     = kind(ErrNotFound, "Pedido no encontrado")
	ErrItemNotFound      = kind(ErrNotFound, "Producto del pedido no encontrado")
	ErrProductNotFound   = kind(ErrNotFound, "Producto no encontrado")
	ErrCartNotFound      = kind(ErrNotFound, "Carrito no encontrado")
	ErrReportNotFound    = kind(ErrNotFound, "Informe no encontrado")
	ErrWrongPassword     = kind(ErrUnauthorized, "Contraseña incorrecta")
	ErrBadCredentials    = kind(ErrUnauthorized, "Credenciales inválidas")
	ErrInsufficientStock = kind(ErrValidation, "Stock insuficiente")
)

// kindError carries a user-facing message and unwraps to its category.
type kindError struct {
	msg      string
	category error
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.category }

func kind(category error, msg string) error {
	return &kindError{msg: msg, category: category}
}

func invalid(msg string) error {
	return kind(ErrValidation, msg)
}

package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrDatabase          = errors.New("error transitorio de base de datos")

	// ErrVersionConflict indica que otro escritor modificó el producto entre la
	// lectura y el write condicional. El mutador lo reintenta; si agota el
	// presupuesto de reintentos lo convierte en ErrConflict.
	ErrVersionConflict = errors.New("versión del producto desactualizada")
)

// Códigos estables legibles por máquina para la capa de transporte.
const (
	CodeValidation        = "VALIDATION"
	CodeNotFound          = "NOT_FOUND"
	CodeDuplicate         = "DUPLICATE"
	CodeConflict          = "CONFLICT"
	CodeInsufficientStock = "INSUFFICIENT_STOCK"
	CodeDatabase          = "DATABASE"
	CodeInternal          = "INTERNAL"
)

// ErrorCode mapea un error de dominio a su código estable. Nunca expone
// detalles internos de almacenamiento en el mensaje al cliente.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return CodeValidation
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrDuplicate):
		return CodeDuplicate
	case errors.Is(err, ErrInsufficientStock):
		return CodeInsufficientStock
	case errors.Is(err, ErrConflict), errors.Is(err, ErrVersionConflict):
		return CodeConflict
	case errors.Is(err, ErrDatabase):
		return CodeDatabase
	default:
		return CodeInternal
	}
}

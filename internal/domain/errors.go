package domain

import "errors"

// Errores de dominio (sin dependencias externas).
// Todos salvo ErrNotificationFailure abortan la operación antes de persistir cambios.
var (
	ErrNotFound            = errors.New("recurso no encontrado")
	ErrInsufficientStock   = errors.New("stock insuficiente")
	ErrInvalidRelease      = errors.New("la liberación excede lo reservado")
	ErrValidation          = errors.New("entrada inválida")
	ErrConflict            = errors.New("conflicto de serialización, reintentar")
	ErrNotificationFailure = errors.New("fallo al emitir notificación")
)

// IsConflict indica si err es recuperable reintentando la operación completa.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

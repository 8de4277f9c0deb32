package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/nicolasdelfino-123/stock-tp-final-practicas/internal/repository"
)

// Error kinds returned by every service. Handlers map them to HTTP status
// codes with errors.Is; the wrapped message is safe to show to the client.
var (
	ErrValidation = errors.New("validacion")
	ErrNotFound   = errors.New("no encontrado")
	ErrConflict   = errors.New("conflicto")
	ErrPermission = errors.New("permiso denegado")
	// ErrUnauthorized covers bad credentials and unusable tokens.
	ErrUnauthorized = errors.New("no autenticado")
)

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func notFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

func conflictf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

func unauthorizedf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUnauthorized, fmt.Sprintf(format, args...))
}

func permissionf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrPermission, fmt.Sprintf(format, args...))
}

// Mensaje strips the kind prefix from a service error ("conflicto: ya existe
// un turno abierto" → "ya existe un turno abierto").
func Mensaje(err error) string {
	for _, kind := range []error{ErrValidation, ErrNotFound, ErrConflict, ErrPermission, ErrUnauthorized} {
		prefix := kind.Error() + ": "
		if msg := err.Error(); len(msg) > len(prefix) && msg[:len(prefix)] == prefix {
			return msg[len(prefix):]
		}
	}
	return err.Error()
}

// storeErr converts repository errors into service kinds, describing the
// missing entity with what.
func storeErr(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return notFoundf("%s no encontrado", what)
	case errors.Is(err, repository.ErrDuplicate):
		return conflictf("%s duplicado", what)
	default:
		return err
	}
}

func isDuplicate(err error) bool {
	return errors.Is(err, repository.ErrDuplicate)
}

package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrUnauthorized = errors.New("no autorizado")

	// ErrPersist fallo al guardar o cargar el borrador; el estado en memoria se conserva.
	ErrPersist = errors.New("no se pudo persistir el borrador")
	// ErrNoStore no hay almacén de borradores configurado.
	ErrNoStore = errors.New("almacén de borradores no configurado")
	// ErrCodePending el código QR aún se está generando (o nunca se pidió).
	ErrCodePending = errors.New("código de verificación pendiente")
	// ErrCodeUnavailable la última generación del código QR falló.
	ErrCodeUnavailable = errors.New("código de verificación no disponible")
)

// PersistError envuelve la causa de un fallo de persistencia del borrador.
// errors.Is(err, ErrPersist) es verdadero para cualquier PersistError.
type PersistError struct {
	Op  string // save | load | delete
	Key string
	Err error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("borrador %s (%s): %v", e.Op, e.Key, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }

func (e *PersistError) Is(target error) bool { return target == ErrPersist }

package repository

import (
	"context"

	"github.com/jhoicas/invoice-builder/internal/domain/entity"
)

// DraftRepository define el puerto de persistencia del borrador de factura.
// Cada clave guarda un único blob que se sobrescribe entero en Save.
type DraftRepository interface {
	Save(ctx context.Context, key string, draft *entity.Draft) error
	// Load retorna (nil, nil) si no hay borrador guardado bajo la clave.
	Load(ctx context.Context, key string) (*entity.Draft, error)
	Delete(ctx context.Context, key string) error
}

// DraftSummaryReader lo implementan los almacenes que guardan el resumen en
// columnas propias y pueden leerlo sin deserializar el blob.
type DraftSummaryReader interface {
	// Summary retorna (nil, nil) si no hay borrador guardado bajo la clave.
	Summary(ctx context.Context, key string) (*entity.DraftSummary, error)
}

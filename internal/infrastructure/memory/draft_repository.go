// Package memory implementa DraftRepository en memoria del proceso
// (desarrollo, tests y la CLI). Los borradores se pierden al reiniciar.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/jhoicas/invoice-builder/internal/domain/entity"
	"github.com/jhoicas/invoice-builder/internal/domain/repository"
)

// DraftRepository guarda cada borrador serializado en JSON, así Load siempre
// devuelve una copia independiente de lo guardado.
type DraftRepository struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

var _ repository.DraftRepository = (*DraftRepository)(nil)

// NewDraftRepository crea un repositorio vacío.
func NewDraftRepository() *DraftRepository {
	return &DraftRepository{blobs: make(map[string][]byte)}
}

func (r *DraftRepository) Save(ctx context.Context, key string, draft *entity.Draft) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if draft == nil {
		return fmt.Errorf("memory: borrador nil")
	}
	b, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("memory: serializar borrador: %w", err)
	}
	r.mu.Lock()
	r.blobs[key] = b
	r.mu.Unlock()
	return nil
}

func (r *DraftRepository) Load(ctx context.Context, key string) (*entity.Draft, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	b, ok := r.blobs[key]
	r.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	var d entity.Draft
	if err := json.Unmarshal(b, &d); err != nil {
		return nil, fmt.Errorf("memory: deserializar borrador: %w", err)
	}
	return &d, nil
}

func (r *DraftRepository) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	delete(r.blobs, key)
	r.mu.Unlock()
	return nil
}

// Len cantidad de borradores guardados.
func (r *DraftRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.blobs)
}

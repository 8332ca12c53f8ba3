package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/invoice-builder/internal/domain/entity"
	"github.com/jhoicas/invoice-builder/internal/domain/invoice"
	"github.com/jhoicas/invoice-builder/internal/domain/repository"
)

var (
	_ repository.DraftRepository    = (*DraftRepo)(nil)
	_ repository.DraftSummaryReader = (*DraftRepo)(nil)
)

// schemaDrafts tabla de borradores: un blob JSONB por clave. currency y
// grand_total son columnas de consulta que lee Summary; Load no las lee.
// grand_total es NUMERIC sin precisión fija: guarda el total exacto de cualquier borrador.
const schemaDrafts = `
CREATE TABLE IF NOT EXISTS invoice_drafts (
	key         TEXT PRIMARY KEY,
	payload     JSONB NOT NULL,
	currency    TEXT NOT NULL DEFAULT '',
	grand_total NUMERIC NOT NULL DEFAULT 0,
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// DraftRepo implementación de DraftRepository sobre PostgreSQL (usable con pool o tx).
type DraftRepo struct {
	q   Querier
	now func() time.Time
}

// NewDraftRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDraftRepository(q Querier) *DraftRepo {
	return &DraftRepo{q: q, now: time.Now}
}

// EnsureSchema crea la tabla si no existe.
func (r *DraftRepo) EnsureSchema(ctx context.Context) error {
	if _, err := r.q.Exec(ctx, schemaDrafts); err != nil {
		return fmt.Errorf("create invoice_drafts: %w", err)
	}
	return nil
}

// Save sobrescribe el borrador completo (upsert por clave).
func (r *DraftRepo) Save(ctx context.Context, key string, draft *entity.Draft) error {
	if draft == nil {
		return fmt.Errorf("save draft: borrador nil")
	}
	payload, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("save draft: serializar: %w", err)
	}
	total := invoice.RecomputeTotals(invoice.NewLedgerFromItems(draft.Items).Items(), draft.Rates).GrandTotal

	query := `
		INSERT INTO invoice_drafts (key, payload, currency, grand_total, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (key) DO UPDATE
		SET payload = EXCLUDED.payload, currency = EXCLUDED.currency,
		    grand_total = EXCLUDED.grand_total, updated_at = EXCLUDED.updated_at`
	_, err = r.q.Exec(ctx, query, key, payload, draft.Header.Currency, total, r.now().UTC())
	if err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	return nil
}

// Load obtiene el borrador; (nil, nil) si no existe.
func (r *DraftRepo) Load(ctx context.Context, key string) (*entity.Draft, error) {
	var payload []byte
	err := r.q.QueryRow(ctx, `SELECT payload FROM invoice_drafts WHERE key = $1`, key).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("load draft: %w", err)
	}
	var d entity.Draft
	if err := json.Unmarshal(payload, &d); err != nil {
		return nil, fmt.Errorf("load draft: deserializar: %w", err)
	}
	return &d, nil
}

// Summary lee moneda, total y fecha del último guardado; (nil, nil) si no existe.
func (r *DraftRepo) Summary(ctx context.Context, key string) (*entity.DraftSummary, error) {
	var sum entity.DraftSummary
	err := r.q.QueryRow(ctx, `SELECT grand_total, currency, updated_at FROM invoice_drafts WHERE key = $1`, key).
		Scan(&sum.GrandTotal, &sum.Currency, &sum.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("draft summary: %w", err)
	}
	return &sum, nil
}

// Delete borra el borrador; borrar una clave inexistente no es error.
func (r *DraftRepo) Delete(ctx context.Context, key string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM invoice_drafts WHERE key = $1`, key); err != nil {
		return fmt.Errorf("delete draft: %w", err)
	}
	return nil
}

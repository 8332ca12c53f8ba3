package billing

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/invoice-builder/internal/domain"
	"github.com/jhoicas/invoice-builder/internal/domain/entity"
	"github.com/jhoicas/invoice-builder/internal/domain/invoice"
	"github.com/jhoicas/invoice-builder/internal/domain/repository"
)

// SessionSnapshot vista consistente de la sesión: totales y resumen fiscal
// siempre corresponden a las líneas y porcentajes del mismo snapshot.
type SessionSnapshot struct {
	ID        string
	Header    entity.InvoiceHeader
	Items     []entity.LineItem
	Rates     entity.RateParameters
	Theme     entity.ThemeSnapshot
	Totals    entity.InvoiceTotals
	Payload   entity.CompliancePayload
	Code      ComplianceCode
	UpdatedAt time.Time
}

// Session sesión de edición de una factura. Es la única dueña de cabecera,
// líneas, porcentajes y tema; totales y resumen fiscal se recalculan de forma
// síncrona en cada cambio. Solo la generación del QR es asíncrona.
type Session struct {
	id      string
	key     string
	repo    repository.DraftRepository
	encoder *CodeEncoder
	metrics Metrics

	mu        sync.Mutex
	header    entity.InvoiceHeader
	ledger    *invoice.Ledger
	rates     entity.RateParameters
	theme     entity.ThemeSnapshot
	totals    entity.InvoiceTotals
	payload   entity.CompliancePayload
	requested bool
	updatedAt time.Time
}

// SessionConfig dependencias y estado inicial de una sesión.
type SessionConfig struct {
	ID      string
	Key     string // clave del borrador en el DraftRepository
	Repo    repository.DraftRepository
	Encoder *CodeEncoder
	Metrics Metrics
}

// NewSession crea la sesión a partir de un borrador (cargado o nuevo).
func NewSession(cfg SessionConfig, draft entity.Draft) *Session {
	if cfg.Metrics == nil {
		cfg.Metrics = NopMetrics
	}
	var ledger *invoice.Ledger
	if draft.Items == nil {
		ledger = invoice.NewLedger()
	} else {
		ledger = invoice.NewLedgerFromItems(draft.Items)
	}
	s := &Session{
		id:      cfg.ID,
		key:     cfg.Key,
		repo:    cfg.Repo,
		encoder: cfg.Encoder,
		metrics: cfg.Metrics,
		header:  draft.Header,
		ledger:  ledger,
		rates: entity.RateParameters{
			DiscountRate: invoice.ClampRate(draft.Rates.DiscountRate),
			TaxRate:      invoice.ClampRate(draft.Rates.TaxRate),
		},
		theme: draft.Theme.WithDefaults(),
	}
	s.mu.Lock()
	s.refreshLocked()
	s.mu.Unlock()
	return s
}

// ID identificador de la sesión.
func (s *Session) ID() string { return s.id }

// Key clave del borrador persistido.
func (s *Session) Key() string { return s.key }

// AddItem agrega una línea vacía al final.
func (s *Session) AddItem() entity.LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	it := s.ledger.AddItem()
	s.refreshLocked()
	return it
}

// RemoveItem quita una línea; id desconocido es no-op (retorna false).
func (s *Session) RemoveItem(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ledger.RemoveItem(id) {
		return false
	}
	s.refreshLocked()
	return true
}

// UpdateItem asigna un campo de una línea desde el texto tecleado (ver invoice.Ledger.UpdateItem).
func (s *Session) UpdateItem(id string, field entity.ItemField, value string) (entity.LineItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.ledger.UpdateItem(id, field, value)
	if ok {
		s.refreshLocked()
	}
	return it, ok
}

// SetDiscountRate fija el porcentaje de descuento (recortado a [0,100]).
func (s *Session) SetDiscountRate(raw string) entity.InvoiceTotals {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rates.DiscountRate = invoice.ParseRate(raw)
	s.refreshLocked()
	return s.totals
}

// SetTaxRate fija el porcentaje de impuesto (recortado a [0,100]).
func (s *Session) SetTaxRate(raw string) entity.InvoiceTotals {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rates.TaxRate = invoice.ParseRate(raw)
	s.refreshLocked()
	return s.totals
}

// UpdateHeader reemplaza la cabecera completa.
func (s *Session) UpdateHeader(h entity.InvoiceHeader) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.header = h
	s.refreshLocked()
}

// SetTheme reemplaza el tema. No toca totales ni QR.
func (s *Session) SetTheme(t entity.ThemeSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.theme = t.WithDefaults()
	s.updatedAt = time.Now()
}

// Totals totales vigentes.
func (s *Session) Totals() entity.InvoiceTotals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totals
}

// Payload resumen fiscal vigente.
func (s *Session) Payload() entity.CompliancePayload {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.payload
}

// Code estado actual del QR (no bloquea).
func (s *Session) Code() ComplianceCode {
	return s.encoder.Current()
}

// WaitCode espera el QR del resumen vigente, como máximo hasta que ctx venza.
func (s *Session) WaitCode(ctx context.Context) ComplianceCode {
	return s.encoder.Wait(ctx)
}

// Snapshot copia consistente del estado.
func (s *Session) Snapshot() SessionSnapshot {
	s.mu.Lock()
	snap := SessionSnapshot{
		ID:        s.id,
		Header:    s.header,
		Items:     s.ledger.Items(),
		Rates:     s.rates,
		Theme:     s.theme,
		Totals:    s.totals,
		Payload:   s.payload,
		UpdatedAt: s.updatedAt,
		Code:      s.encoder.Current(), // mismo lock: el QR corresponde a este resumen
	}
	s.mu.Unlock()
	return snap
}

// Draft estado persistible (sin totales: se derivan al cargar).
func (s *Session) Draft() entity.Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draftLocked()
}

func (s *Session) draftLocked() entity.Draft {
	return entity.Draft{
		Header: s.header,
		Items:  s.ledger.Items(),
		Rates:  s.rates,
		Theme:  s.theme,
	}
}

// Save guarda el borrador completo bajo la clave de la sesión. Un fallo se
// retorna como *domain.PersistError y no altera el estado en memoria.
func (s *Session) Save(ctx context.Context) error {
	if s.repo == nil {
		return &domain.PersistError{Op: "save", Key: s.key, Err: domain.ErrNoStore}
	}
	d := s.Draft()
	err := s.repo.Save(ctx, s.key, &d)
	s.metrics.DraftPersisted("save", err)
	if err != nil {
		return &domain.PersistError{Op: "save", Key: s.key, Err: err}
	}
	return nil
}

// Close detiene la generación de QR pendiente.
func (s *Session) Close() {
	s.encoder.Close()
}

// refreshLocked recalcula totales y resumen; si el resumen cambió pide un QR nuevo.
func (s *Session) refreshLocked() {
	s.totals = invoice.RecomputeTotals(s.ledger.Items(), s.rates)
	s.metrics.TotalsRecomputed()
	s.updatedAt = time.Now()

	p := invoice.BuildPayload(s.header, s.totals)
	if s.requested && p.Equal(s.payload) {
		return
	}
	s.payload = p
	s.requested = true
	s.encoder.Request(p)
}

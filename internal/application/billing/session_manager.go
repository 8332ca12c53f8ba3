package billing

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/invoice-builder/internal/domain"
	"github.com/jhoicas/invoice-builder/internal/domain/entity"
	"github.com/jhoicas/invoice-builder/internal/domain/invoice"
	"github.com/jhoicas/invoice-builder/internal/domain/repository"
)

// EditorDefaults valores iniciales de un borrador nuevo.
type EditorDefaults struct {
	Currency      string
	TaxRate       string // porcentaje tecleado, ej "15"
	EncodeTimeout time.Duration
	KeyPrefix     string
}

// SessionManager mantiene una sesión de edición por dueño (empresa + usuario).
// La sesión se crea al primer acceso, cargando el borrador guardado si existe.
type SessionManager struct {
	repo     repository.DraftRepository
	renderer CodeRenderer
	metrics  Metrics
	defaults EditorDefaults
	log      zerolog.Logger
	now      func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewSessionManager construye el administrador de sesiones.
func NewSessionManager(
	repo repository.DraftRepository,
	renderer CodeRenderer,
	metrics Metrics,
	defaults EditorDefaults,
	log zerolog.Logger,
) *SessionManager {
	if metrics == nil {
		metrics = NopMetrics
	}
	if defaults.KeyPrefix == "" {
		defaults.KeyPrefix = "invoice-draft"
	}
	return &SessionManager{
		repo:     repo,
		renderer: renderer,
		metrics:  metrics,
		defaults: defaults,
		log:      log,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// DraftKey clave fija del borrador de un dueño.
func (m *SessionManager) DraftKey(owner string) string {
	return m.defaults.KeyPrefix + ":" + owner
}

// Open devuelve la sesión del dueño. Si no existe, intenta cargar el borrador:
// un fallo de carga no impide editar; se retorna la sesión nueva junto con el
// *domain.PersistError para que el caller lo notifique.
// La carga se hace sin tomar m.mu; si otra llamada registró la sesión del mismo
// dueño mientras tanto, gana la registrada y la recién creada se cierra.
func (m *SessionManager) Open(ctx context.Context, owner string) (*Session, error) {
	if strings.TrimSpace(owner) == "" {
		return nil, domain.ErrUnauthorized
	}
	if s, ok := m.lookup(owner); ok {
		return s, nil
	}

	key := m.DraftKey(owner)
	draft, loadErr := m.load(ctx, key)
	if draft == nil {
		d := m.newDraft()
		draft = &d
	}

	s := NewSession(SessionConfig{
		ID:      uuid.NewString(),
		Key:     key,
		Repo:    m.repo,
		Encoder: NewCodeEncoder(m.renderer, m.defaults.EncodeTimeout, m.metrics, m.log.With().Str("owner", owner).Logger()),
		Metrics: m.metrics,
	}, *draft)

	m.mu.Lock()
	if existing, ok := m.sessions[owner]; ok {
		m.mu.Unlock()
		s.Close()
		return existing, nil
	}
	m.sessions[owner] = s
	m.mu.Unlock()

	m.log.Info().Str("owner", owner).Str("session_id", s.ID()).Bool("restored", loadErr == nil && draft.Items != nil).Msg("sesión de edición abierta")
	return s, loadErr
}

func (m *SessionManager) lookup(owner string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[owner]
	return s, ok
}

func (m *SessionManager) load(ctx context.Context, key string) (*entity.Draft, error) {
	if m.repo == nil {
		return nil, nil
	}
	d, err := m.repo.Load(ctx, key)
	m.metrics.DraftPersisted("load", err)
	if err != nil {
		m.log.Warn().Err(err).Str("key", key).Msg("no se pudo cargar el borrador, se inicia uno nuevo")
		return nil, &domain.PersistError{Op: "load", Key: key, Err: err}
	}
	return d, nil
}

// newDraft borrador vacío con moneda e impuesto por defecto y fecha de hoy.
func (m *SessionManager) newDraft() entity.Draft {
	today := m.now().UTC().Truncate(24 * time.Hour)
	return entity.Draft{
		Header: entity.InvoiceHeader{
			Date:     today,
			DueDate:  today.AddDate(0, 0, 30),
			Currency: m.defaults.Currency,
		},
		Rates: entity.RateParameters{
			TaxRate: invoice.ParseRate(m.defaults.TaxRate),
		},
		Theme: entity.DefaultTheme(),
	}
}

// SavedSummary resume el último borrador guardado del dueño, sin abrir sesión.
// Usa las columnas del almacén si las tiene (DraftSummaryReader); si no, recalcula
// el total desde el blob. Sin borrador guardado retorna domain.ErrNotFound.
func (m *SessionManager) SavedSummary(ctx context.Context, owner string) (*entity.DraftSummary, error) {
	if strings.TrimSpace(owner) == "" {
		return nil, domain.ErrUnauthorized
	}
	key := m.DraftKey(owner)
	if m.repo == nil {
		return nil, &domain.PersistError{Op: "load", Key: key, Err: domain.ErrNoStore}
	}

	var (
		sum *entity.DraftSummary
		err error
	)
	if reader, ok := m.repo.(repository.DraftSummaryReader); ok {
		sum, err = reader.Summary(ctx, key)
	} else {
		sum, err = m.summaryFromBlob(ctx, key)
	}
	m.metrics.DraftPersisted("load", err)
	if err != nil {
		return nil, &domain.PersistError{Op: "load", Key: key, Err: err}
	}
	if sum == nil {
		return nil, fmt.Errorf("borrador %s: %w", key, domain.ErrNotFound)
	}
	return sum, nil
}

func (m *SessionManager) summaryFromBlob(ctx context.Context, key string) (*entity.DraftSummary, error) {
	d, err := m.repo.Load(ctx, key)
	if err != nil || d == nil {
		return nil, err
	}
	totals := invoice.RecomputeTotals(invoice.NewLedgerFromItems(d.Items).Items(), d.Rates)
	return &entity.DraftSummary{Currency: d.Header.Currency, GrandTotal: totals.GrandTotal}, nil
}

// Reset descarta la sesión en memoria y borra el borrador guardado.
func (m *SessionManager) Reset(ctx context.Context, owner string) error {
	m.mu.Lock()
	if s, ok := m.sessions[owner]; ok {
		s.Close()
		delete(m.sessions, owner)
	}
	m.mu.Unlock()

	if m.repo == nil {
		return nil
	}
	key := m.DraftKey(owner)
	err := m.repo.Delete(ctx, key)
	m.metrics.DraftPersisted("delete", err)
	if err != nil {
		return &domain.PersistError{Op: "delete", Key: key, Err: err}
	}
	return nil
}

// Close cierra todas las sesiones (apagado del servidor).
func (m *SessionManager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for owner, s := range m.sessions {
		s.Close()
		delete(m.sessions, owner)
	}
}

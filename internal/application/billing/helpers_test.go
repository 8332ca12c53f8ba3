package billing_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/invoice-builder/internal/application/billing"
	"github.com/jhoicas/invoice-builder/internal/domain/entity"
	"github.com/jhoicas/invoice-builder/internal/domain/invoice"
	"github.com/jhoicas/invoice-builder/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Dobles de test
// ──────────────────────────────────────────────────────────────────────────────

// stubRenderer renderizador falso: responde "png:<texto>". Un texto con gate
// bloquea hasta que el gate se cierre (sin mirar ctx, simula un resultado tardío).
type stubRenderer struct {
	mu       sync.Mutex
	calls    []string
	gates    map[string]chan struct{}
	failing  map[string]bool
	panics   bool
	honorCtx bool
	rendered chan string
}

func newStubRenderer() *stubRenderer {
	return &stubRenderer{
		gates:    map[string]chan struct{}{},
		failing:  map[string]bool{},
		rendered: make(chan string, 64),
	}
}

func (r *stubRenderer) hold(content string) chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	g := make(chan struct{})
	r.gates[content] = g
	return g
}

func (r *stubRenderer) fail(content string) {
	r.mu.Lock()
	r.failing[content] = true
	r.mu.Unlock()
}

func (r *stubRenderer) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func (r *stubRenderer) RenderPNG(ctx context.Context, content string) ([]byte, error) {
	r.mu.Lock()
	r.calls = append(r.calls, content)
	gate, fail, panics, honor := r.gates[content], r.failing[content], r.panics, r.honorCtx
	r.mu.Unlock()

	defer func() { r.rendered <- content }()
	if panics {
		panic("renderizador roto")
	}
	if gate != nil {
		if honor {
			select {
			case <-gate:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		} else {
			<-gate
		}
	}
	if fail {
		return nil, errors.New("render falló")
	}
	return []byte("png:" + content), nil
}

// recordingMetrics cuenta las llamadas al puerto Metrics.
type recordingMetrics struct {
	mu         sync.Mutex
	recomputed int
	encoded    map[billing.CodeStatus]int
	superseded int
	persisted  map[string]int
	persistErr map[string]int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{
		encoded:    map[billing.CodeStatus]int{},
		persisted:  map[string]int{},
		persistErr: map[string]int{},
	}
}

func (m *recordingMetrics) TotalsRecomputed() {
	m.mu.Lock()
	m.recomputed++
	m.mu.Unlock()
}

func (m *recordingMetrics) CodeEncoded(status billing.CodeStatus, _ time.Duration) {
	m.mu.Lock()
	m.encoded[status]++
	m.mu.Unlock()
}

func (m *recordingMetrics) CodeSuperseded() {
	m.mu.Lock()
	m.superseded++
	m.mu.Unlock()
}

func (m *recordingMetrics) DraftPersisted(op string, err error) {
	m.mu.Lock()
	m.persisted[op]++
	if err != nil {
		m.persistErr[op]++
	}
	m.mu.Unlock()
}

func (m *recordingMetrics) supersededCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.superseded
}

// failingRepo DraftRepository que falla en todas las operaciones.
type failingRepo struct{ err error }

func (r failingRepo) Save(context.Context, string, *entity.Draft) error { return r.err }
func (r failingRepo) Load(context.Context, string) (*entity.Draft, error) {
	return nil, r.err
}
func (r failingRepo) Delete(context.Context, string) error { return r.err }

// slowLoadRepo bloquea Load de slowKey hasta que se cierre release.
type slowLoadRepo struct {
	repository.DraftRepository
	slowKey string
	started chan string
	release chan struct{}
}

func (r *slowLoadRepo) Load(ctx context.Context, key string) (*entity.Draft, error) {
	if key == r.slowKey {
		r.started <- key
		<-r.release
	}
	return r.DraftRepository.Load(ctx, key)
}

// summaryRepo almacén con resumen en columnas propias.
type summaryRepo struct {
	repository.DraftRepository
	sum *entity.DraftSummary
}

func (r summaryRepo) Summary(context.Context, string) (*entity.DraftSummary, error) {
	return r.sum, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Datos de prueba
// ──────────────────────────────────────────────────────────────────────────────

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertDec(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), "esperado %s, obtenido %s", want, got.String())
}

func testHeader() entity.InvoiceHeader {
	return entity.InvoiceHeader{
		InvoiceNumber: "INV-0001",
		Date:          time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
		DueDate:       time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
		Currency:      "SAR",
		Seller:        entity.Party{Name: "Acme Engineering", TaxID: "300000000000003"},
		Buyer:         entity.Party{Name: "Globex LLC"},
	}
}

// referenceDraft 2×100 + 1×50 con 10% de descuento y 15% de impuesto.
func referenceDraft() entity.Draft {
	return entity.Draft{
		Header: testHeader(),
		Items: []entity.LineItem{
			{ID: "a", Description: "Diseño", Quantity: dec("2"), Rate: dec("100")},
			{ID: "b", Description: "Soporte", Quantity: dec("1"), Rate: dec("50")},
		},
		Rates: entity.RateParameters{DiscountRate: dec("10"), TaxRate: dec("15")},
	}
}

func payloadText(t *testing.T, p entity.CompliancePayload) string {
	t.Helper()
	text, err := invoice.PayloadText(p)
	require.NoError(t, err)
	return text
}

func waitCtx(t *testing.T, d time.Duration) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), d)
	t.Cleanup(cancel)
	return ctx
}

package billing

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/invoice-builder/internal/domain"
	"github.com/jhoicas/invoice-builder/internal/domain/entity"
	"github.com/jhoicas/invoice-builder/internal/domain/invoice"
)

// CodeStatus estado del código de verificación (QR) de la factura.
type CodeStatus string

const (
	CodeStatusPending     CodeStatus = "pending"     // en generación o aún no pedido
	CodeStatusReady       CodeStatus = "ready"       // imagen vigente para el último resumen
	CodeStatusUnavailable CodeStatus = "unavailable" // falló la última generación
)

// ComplianceCode resultado observable del codificador.
type ComplianceCode struct {
	Seq     uint64
	Status  CodeStatus
	Payload entity.CompliancePayload
	Text    string // TLV/Base64 dentro del QR (vacío si falló la serialización)
	Image   []byte // PNG; solo con Status == ready
	Err     error  // solo con Status == unavailable
}

// CodeEncoder genera el QR en segundo plano. Cada pedido recibe un número de
// secuencia; un pedido nuevo cancela el anterior y solo el resultado con la
// secuencia más alta se publica. Un resultado tardío de un pedido viejo se descarta.
// No reintenta solo: el siguiente cambio de resumen dispara un pedido nuevo.
type CodeEncoder struct {
	renderer CodeRenderer
	timeout  time.Duration
	metrics  Metrics
	log      zerolog.Logger

	mu      sync.Mutex
	seq     uint64
	current ComplianceCode
	cancel  context.CancelFunc
	done    chan struct{} // se cierra cuando el pedido vigente termina o es reemplazado
	settled bool
	closed  bool
}

// NewCodeEncoder construye el codificador. timeout <= 0 significa sin límite.
func NewCodeEncoder(renderer CodeRenderer, timeout time.Duration, metrics Metrics, log zerolog.Logger) *CodeEncoder {
	if metrics == nil {
		metrics = NopMetrics
	}
	return &CodeEncoder{
		renderer: renderer,
		timeout:  timeout,
		metrics:  metrics,
		log:      log,
		current:  ComplianceCode{Status: CodeStatusPending},
		done:     make(chan struct{}),
	}
}

// Request encola la generación del QR para el resumen y retorna su secuencia.
// Nunca bloquea: la generación corre en su propia goroutine.
func (e *CodeEncoder) Request(p entity.CompliancePayload) uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return e.seq
	}

	if e.cancel != nil {
		e.cancel()
		if !e.settled {
			e.metrics.CodeSuperseded()
		}
	}
	if !e.settled {
		close(e.done) // despierta a quien espere el pedido reemplazado
	}

	e.seq++
	seq := e.seq
	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if e.timeout > 0 {
		ctx, cancel = context.WithTimeout(context.Background(), e.timeout)
	} else {
		ctx, cancel = context.WithCancel(context.Background())
	}
	e.cancel = cancel
	e.done = make(chan struct{})
	e.settled = false
	e.current = ComplianceCode{Seq: seq, Status: CodeStatusPending, Payload: p}

	go e.run(ctx, seq, p)
	return seq
}

func (e *CodeEncoder) run(ctx context.Context, seq uint64, p entity.CompliancePayload) {
	start := time.Now()
	text, img, err := e.encode(ctx, p)

	e.mu.Lock()
	defer e.mu.Unlock()
	if seq != e.seq || e.closed {
		e.log.Debug().Uint64("seq", seq).Uint64("latest", e.seq).Msg("QR descartado: pedido reemplazado")
		return
	}

	res := ComplianceCode{Seq: seq, Payload: p, Text: text}
	if err != nil {
		res.Status = CodeStatusUnavailable
		res.Err = fmt.Errorf("%w: %v", domain.ErrCodeUnavailable, err)
		e.log.Warn().Err(err).Uint64("seq", seq).Msg("generación de QR fallida")
	} else {
		res.Status = CodeStatusReady
		res.Image = img
	}
	e.metrics.CodeEncoded(res.Status, time.Since(start))

	e.current = res
	e.settled = true
	e.cancel()
	close(e.done)
}

// encode serializa el resumen y genera la imagen. Un pánico del renderizador se
// convierte en error para que el estado quede "unavailable".
func (e *CodeEncoder) encode(ctx context.Context, p entity.CompliancePayload) (text string, img []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("renderizador de QR: pánico: %v", r)
		}
	}()
	text, err = invoice.PayloadText(p)
	if err != nil {
		return "", nil, err
	}
	if e.renderer == nil {
		return text, nil, fmt.Errorf("renderizador de QR no configurado")
	}
	img, err = e.renderer.RenderPNG(ctx, text)
	if err != nil {
		return text, nil, err
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return text, nil, ctxErr
	}
	return text, img, nil
}

// Current estado actual (no bloquea).
func (e *CodeEncoder) Current() ComplianceCode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current
}

// Wait bloquea hasta que el pedido vigente termine o ctx venza. Si mientras
// espera llega un pedido nuevo, sigue esperando por el nuevo. Con ctx vencido
// retorna el estado actual (posiblemente pending).
func (e *CodeEncoder) Wait(ctx context.Context) ComplianceCode {
	for {
		e.mu.Lock()
		cur, done, settled := e.current, e.done, e.settled
		if e.closed || (cur.Seq == 0 && !settled) {
			e.mu.Unlock()
			return cur
		}
		e.mu.Unlock()
		if settled {
			return cur
		}
		select {
		case <-done:
		case <-ctx.Done():
			return e.Current()
		}
	}
}

// Close cancela el pedido en curso; los resultados posteriores se descartan.
func (e *CodeEncoder) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.closed = true
	if e.cancel != nil {
		e.cancel()
	}
	if !e.settled {
		e.settled = true
		close(e.done)
	}
}

package billing

import (
	"context"
	"time"
)

// CodeRenderer convierte el texto del resumen fiscal en una imagen escaneable (PNG).
// Debe ser determinista: el mismo texto produce los mismos bytes.
type CodeRenderer interface {
	RenderPNG(ctx context.Context, content string) ([]byte, error)
}

// InvoicePDFGenerator genera la representación imprimible de la factura.
type InvoicePDFGenerator interface {
	GenerateInvoicePDF(ctx context.Context, doc *InvoiceDocument) ([]byte, error)
}

// InvoiceXMLBuilder genera el XML estructurado (UBL 2.1) de la factura.
type InvoiceXMLBuilder interface {
	BuildInvoiceXML(doc *InvoiceDocument) ([]byte, error)
}

// Metrics contadores del editor; la implementación real es Prometheus.
type Metrics interface {
	TotalsRecomputed()
	CodeEncoded(status CodeStatus, elapsed time.Duration)
	CodeSuperseded()
	DraftPersisted(op string, err error)
}

type nopMetrics struct{}

func (nopMetrics) TotalsRecomputed()                     {}
func (nopMetrics) CodeEncoded(CodeStatus, time.Duration) {}
func (nopMetrics) CodeSuperseded()                       {}
func (nopMetrics) DraftPersisted(string, error)          {}

// NopMetrics implementación vacía de Metrics.
var NopMetrics Metrics = nopMetrics{}

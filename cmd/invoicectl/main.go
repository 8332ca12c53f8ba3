// Command invoicectl calcula y exporta una factura a partir de un borrador JSON,
// sin servidor ni almacén: totales, resumen fiscal (TLV/Base64), QR, PDF y XML.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/jhoicas/invoice-builder/internal/application/billing"
	"github.com/jhoicas/invoice-builder/internal/domain/entity"
	infrapdf "github.com/jhoicas/invoice-builder/internal/infrastructure/pdf"
	"github.com/jhoicas/invoice-builder/internal/infrastructure/qrcode"
	"github.com/jhoicas/invoice-builder/internal/infrastructure/ubl"
	"github.com/jhoicas/invoice-builder/pkg/logger"
)

func main() {
	if err := newApp(os.Stdin, os.Stdout, os.Stderr).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

var (
	draftFlag = &cli.StringFlag{Name: "draft", Aliases: []string{"d"}, Usage: "borrador JSON (- para stdin)", Required: true}
	outFlag   = &cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "archivo de salida (por defecto el nombre sugerido)"}
)

func newApp(stdin io.Reader, stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:      "invoicectl",
		Usage:     "calcula y exporta facturas desde un borrador JSON",
		Reader:    stdin,
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "qr-size", Value: qrcode.DefaultSize, Usage: "lado del QR en px"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "log de depuración en stderr"},
		},
		Commands: []*cli.Command{
			{
				Name:   "totals",
				Usage:  "imprime los totales exactos y formateados",
				Flags:  []cli.Flag{draftFlag},
				Action: totalsAction,
			},
			{
				Name:   "payload",
				Usage:  "imprime el texto TLV/Base64 del resumen fiscal",
				Flags:  []cli.Flag{draftFlag},
				Action: payloadAction,
			},
			{
				Name:   "qr",
				Usage:  "escribe el QR del resumen fiscal como PNG",
				Flags:  []cli.Flag{draftFlag, outFlag},
				Action: qrAction,
			},
			{
				Name:   "pdf",
				Usage:  "exporta la factura a PDF",
				Flags:  []cli.Flag{draftFlag, outFlag},
				Action: pdfAction,
			},
			{
				Name:   "xml",
				Usage:  "exporta la factura a XML UBL 2.1",
				Flags:  []cli.Flag{draftFlag, outFlag},
				Action: xmlAction,
			},
		},
	}
}

// document arma el documento del borrador indicado en --draft.
func document(c *cli.Context) (*billing.InvoiceDocument, *billing.DocumentUseCase, error) {
	draft, err := readDraft(c.String("draft"), c.App.Reader)
	if err != nil {
		return nil, nil, err
	}
	level := "warn"
	if c.Bool("verbose") {
		level = "debug"
	}
	log := logger.New(logger.Config{Env: "development", Level: level, Output: c.App.ErrWriter})

	uc := billing.NewDocumentUseCase(
		qrcode.NewRenderer(c.Int("qr-size")), infrapdf.NewMarotoPDFGenerator(), ubl.NewXMLBuilder(), 0,
	)
	ctx, cancel := context.WithTimeout(c.Context, 30*time.Second)
	defer cancel()
	doc := uc.FromDraft(ctx, draft)
	if doc.Code.Status == billing.CodeStatusUnavailable {
		log.Warn().Err(doc.Code.Err).Msg("QR no disponible")
	}
	log.Debug().Int("items", len(doc.Items)).Str("grand_total", doc.Totals.GrandTotal.String()).Msg("borrador calculado")
	return doc, uc, nil
}

func readDraft(path string, stdin io.Reader) (entity.Draft, error) {
	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return entity.Draft{}, fmt.Errorf("abrir borrador: %w", err)
		}
		defer f.Close()
		r = f
	}
	var d entity.Draft
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return entity.Draft{}, fmt.Errorf("borrador inválido: %w", err)
	}
	return d, nil
}

type totalsOutput struct {
	Currency  string                  `json:"currency"`
	Subtotal  string                  `json:"subtotal"`
	Discount  string                  `json:"discount_amount"`
	Taxable   string                  `json:"taxable_base"`
	Tax       string                  `json:"tax_amount"`
	Total     string                  `json:"grand_total"`
	Formatted billing.FormattedTotals `json:"formatted"`
}

func totalsAction(c *cli.Context) error {
	doc, _, err := document(c)
	if err != nil {
		return err
	}
	t := doc.Totals
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(totalsOutput{
		Currency:  doc.Header.Currency,
		Subtotal:  t.Subtotal.String(),
		Discount:  t.DiscountAmount.String(),
		Taxable:   t.TaxableBase.String(),
		Tax:       t.TaxAmount.String(),
		Total:     t.GrandTotal.String(),
		Formatted: doc.Formatted,
	})
}

func payloadAction(c *cli.Context) error {
	doc, _, err := document(c)
	if err != nil {
		return err
	}
	if doc.Code.Text == "" {
		return doc.Code.Err
	}
	_, err = fmt.Fprintln(c.App.Writer, doc.Code.Text)
	return err
}

func qrAction(c *cli.Context) error {
	doc, _, err := document(c)
	if err != nil {
		return err
	}
	if doc.Code.Status != billing.CodeStatusReady {
		return doc.Code.Err
	}
	return writeOut(c, doc.Filename("png"), doc.Code.Image)
}

func pdfAction(c *cli.Context) error {
	doc, uc, err := document(c)
	if err != nil {
		return err
	}
	b, name, err := uc.ExportPDF(c.Context, doc)
	if err != nil {
		return err
	}
	return writeOut(c, name, b)
}

func xmlAction(c *cli.Context) error {
	doc, uc, err := document(c)
	if err != nil {
		return err
	}
	b, name, err := uc.ExportXML(doc)
	if err != nil {
		return err
	}
	return writeOut(c, name, b)
}

func writeOut(c *cli.Context, suggested string, b []byte) error {
	path := c.String("out")
	if path == "" {
		path = suggested
	}
	if path == "-" {
		_, err := c.App.Writer.Write(b)
		return err
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("escribir %s: %w", path, err)
	}
	fmt.Fprintf(c.App.ErrWriter, "%s (%d bytes)\n", path, len(b))
	return nil
}

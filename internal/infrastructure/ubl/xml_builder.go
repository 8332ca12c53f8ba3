// Package ubl genera el XML UBL 2.1 de la factura con beevik/etree.
package ubl

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/invoice-builder/internal/application/billing"
	"github.com/jhoicas/invoice-builder/pkg/currency"
)

// Namespaces UBL 2.1.
const (
	NsInvoice = "urn:oasis:names:specification:ubl:schema:xsd:Invoice-2"
	NsCac     = "urn:oasis:names:specification:ubl:schema:xsd:CommonAggregateComponents-2"
	NsCbc     = "urn:oasis:names:specification:ubl:schema:xsd:CommonBasicComponents-2"
)

const (
	invoiceTypeCode = "388" // factura comercial (UNCL1001)
	unitCode        = "C62" // unidad genérica (UN/ECE Rec 20)
	qrDocumentID    = "QR"
)

// XMLBuilder implementa billing.InvoiceXMLBuilder. Sin firma: el documento es
// la representación estructurada del borrador.
type XMLBuilder struct {
	indent int
}

var _ billing.InvoiceXMLBuilder = (*XMLBuilder)(nil)

// NewXMLBuilder construye el builder con indentación de 2 espacios.
func NewXMLBuilder() *XMLBuilder { return &XMLBuilder{indent: 2} }

// BuildInvoiceXML genera el documento <Invoice>.
func (b *XMLBuilder) BuildInvoiceXML(doc *billing.InvoiceDocument) ([]byte, error) {
	if doc == nil {
		return nil, fmt.Errorf("ubl: documento nil")
	}
	cur := strings.ToUpper(strings.TrimSpace(doc.Header.Currency))
	if cur == "" {
		return nil, fmt.Errorf("ubl: la factura no tiene moneda")
	}
	scale := currency.Scale(cur)
	amount := func(parent *etree.Element, tag string, v decimal.Decimal) {
		el := parent.CreateElement(tag)
		el.CreateAttr("currencyID", cur)
		el.SetText(v.Round(scale).StringFixed(scale))
	}

	xdoc := etree.NewDocument()
	xdoc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	inv := xdoc.CreateElement("Invoice")
	inv.CreateAttr("xmlns", NsInvoice)
	inv.CreateAttr("xmlns:cac", NsCac)
	inv.CreateAttr("xmlns:cbc", NsCbc)

	h := doc.Header
	text(inv, "cbc:UBLVersionID", "2.1")
	text(inv, "cbc:ID", h.InvoiceNumber)
	if !h.Date.IsZero() {
		text(inv, "cbc:IssueDate", h.Date.Format("2006-01-02"))
		text(inv, "cbc:IssueTime", h.Date.UTC().Format("15:04:05"))
	}
	if !h.DueDate.IsZero() {
		text(inv, "cbc:DueDate", h.DueDate.Format("2006-01-02"))
	}
	text(inv, "cbc:InvoiceTypeCode", invoiceTypeCode)
	if h.Notes != "" {
		text(inv, "cbc:Note", h.Notes)
	}
	text(inv, "cbc:DocumentCurrencyCode", cur)
	text(inv, "cbc:TaxCurrencyCode", cur)
	if h.PurchaseOrder != "" {
		text(inv.CreateElement("cac:OrderReference"), "cbc:ID", h.PurchaseOrder)
	}

	// Texto del QR embebido como documento adicional (solo si se pudo serializar).
	if doc.Code.Text != "" {
		ref := inv.CreateElement("cac:AdditionalDocumentReference")
		text(ref, "cbc:ID", qrDocumentID)
		obj := ref.CreateElement("cac:Attachment").CreateElement("cbc:EmbeddedDocumentBinaryObject")
		obj.CreateAttr("mimeCode", "text/plain")
		obj.SetText(doc.Code.Text)
	}

	party(inv.CreateElement("cac:AccountingSupplierParty"), h.Seller.Name, h.Seller.TaxID, h.Seller.Address, h.Country)
	party(inv.CreateElement("cac:AccountingCustomerParty"), h.Buyer.Name, h.Buyer.TaxID, h.Buyer.Address, "")

	if h.Bank.IBAN != "" || h.Bank.AccountNumber != "" {
		pm := inv.CreateElement("cac:PaymentMeans")
		text(pm, "cbc:PaymentMeansCode", "30") // transferencia
		acc := pm.CreateElement("cac:PayeeFinancialAccount")
		text(acc, "cbc:ID", firstNonEmpty(h.Bank.IBAN, h.Bank.AccountNumber))
		if h.Bank.AccountName != "" {
			text(acc, "cbc:Name", h.Bank.AccountName)
		}
		if h.Bank.SWIFT != "" {
			text(acc.CreateElement("cac:FinancialInstitutionBranch"), "cbc:ID", h.Bank.SWIFT)
		}
	}

	t := doc.Totals
	if t.DiscountAmount.IsPositive() {
		ac := inv.CreateElement("cac:AllowanceCharge")
		text(ac, "cbc:ChargeIndicator", "false")
		text(ac, "cbc:AllowanceChargeReason", "Descuento")
		text(ac, "cbc:MultiplierFactorNumeric", doc.Rates.DiscountRate.String())
		amount(ac, "cbc:Amount", t.DiscountAmount)
		amount(ac, "cbc:BaseAmount", t.Subtotal)
	}

	tt := inv.CreateElement("cac:TaxTotal")
	amount(tt, "cbc:TaxAmount", t.TaxAmount)
	sub := tt.CreateElement("cac:TaxSubtotal")
	amount(sub, "cbc:TaxableAmount", t.TaxableBase)
	amount(sub, "cbc:TaxAmount", t.TaxAmount)
	cat := sub.CreateElement("cac:TaxCategory")
	text(cat, "cbc:ID", taxCategory(doc.Rates.TaxRate))
	text(cat, "cbc:Percent", doc.Rates.TaxRate.String())
	text(cat.CreateElement("cac:TaxScheme"), "cbc:ID", "VAT")

	lmt := inv.CreateElement("cac:LegalMonetaryTotal")
	amount(lmt, "cbc:LineExtensionAmount", t.Subtotal)
	amount(lmt, "cbc:TaxExclusiveAmount", t.TaxableBase)
	amount(lmt, "cbc:TaxInclusiveAmount", t.GrandTotal)
	amount(lmt, "cbc:AllowanceTotalAmount", t.DiscountAmount)
	amount(lmt, "cbc:PayableAmount", t.GrandTotal)

	for i, it := range doc.Items {
		line := inv.CreateElement("cac:InvoiceLine")
		text(line, "cbc:ID", strconv.Itoa(i+1))
		q := line.CreateElement("cbc:InvoicedQuantity")
		q.CreateAttr("unitCode", unitCode)
		q.SetText(it.Quantity.String())
		amount(line, "cbc:LineExtensionAmount", it.Amount)
		text(line.CreateElement("cac:Item"), "cbc:Name", firstNonEmpty(it.Description, "Sin descripción"))
		amount(line.CreateElement("cac:Price"), "cbc:PriceAmount", it.Rate)
	}

	xdoc.Indent(b.indent)
	out, err := xdoc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("ubl: serializar: %w", err)
	}
	return out, nil
}

func party(parent *etree.Element, name, taxID, address, country string) {
	p := parent.CreateElement("cac:Party")
	if address != "" || country != "" {
		addr := p.CreateElement("cac:PostalAddress")
		if address != "" {
			text(addr, "cbc:StreetName", address)
		}
		if country != "" {
			text(addr.CreateElement("cac:Country"), "cbc:IdentificationCode", strings.ToUpper(country))
		}
	}
	if taxID != "" {
		pts := p.CreateElement("cac:PartyTaxScheme")
		text(pts, "cbc:CompanyID", taxID)
		text(pts.CreateElement("cac:TaxScheme"), "cbc:ID", "VAT")
	}
	text(p.CreateElement("cac:PartyLegalEntity"), "cbc:RegistrationName", name)
}

// taxCategory S = tarifa estándar, Z = tarifa cero (UNCL5305).
func taxCategory(rate decimal.Decimal) string {
	if rate.IsZero() {
		return "Z"
	}
	return "S"
}

func text(parent *etree.Element, tag, value string) *etree.Element {
	el := parent.CreateElement(tag)
	el.SetText(value)
	return el
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

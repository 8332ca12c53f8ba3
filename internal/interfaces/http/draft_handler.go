package http

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/invoice-builder/internal/application/billing"
	"github.com/jhoicas/invoice-builder/internal/application/dto"
	"github.com/jhoicas/invoice-builder/internal/domain"
	"github.com/jhoicas/invoice-builder/internal/domain/entity"
)

// maxCodeWait tope del parámetro ?wait= de GET /code.
const maxCodeWait = 10 * time.Second

// DraftHandler maneja la sesión de edición del borrador del usuario (protegido).
type DraftHandler struct {
	manager *billing.SessionManager
	docs    *billing.DocumentUseCase
	log     zerolog.Logger
}

// NewDraftHandler construye el handler.
func NewDraftHandler(manager *billing.SessionManager, docs *billing.DocumentUseCase, log zerolog.Logger) *DraftHandler {
	return &DraftHandler{manager: manager, docs: docs, log: log}
}

// session abre (o reutiliza) la sesión del dueño del token. Un fallo al cargar el
// borrador guardado no corta la petición: se edita uno nuevo y se avisa.
func (h *DraftHandler) session(c *fiber.Ctx) (*billing.Session, []string, error) {
	owner := GetOwner(c)
	s, err := h.manager.Open(c.Context(), owner)
	if s == nil {
		return nil, nil, err
	}
	var warnings []string
	if err != nil {
		h.log.Warn().Err(err).Str("owner", owner).Msg("borrador no restaurado")
		warnings = append(warnings, "no se pudo cargar el borrador guardado; se inició uno nuevo")
	}
	return s, warnings, nil
}

func (h *DraftHandler) respond(c *fiber.Ctx, status int, s *billing.Session, warnings []string) error {
	out := dto.NewDraftResponse(s.Snapshot())
	out.Warnings = append(warnings, out.Warnings...)
	return c.Status(status).JSON(out)
}

// Get devuelve el estado completo del borrador.
// GET /api/drafts/current
func (h *DraftHandler) Get(c *fiber.Ctx) error {
	s, warnings, err := h.session(c)
	if err != nil {
		return writeError(c, err)
	}
	return h.respond(c, fiber.StatusOK, s, warnings)
}

// AddItem agrega una línea vacía al final.
// POST /api/drafts/current/items
func (h *DraftHandler) AddItem(c *fiber.Ctx) error {
	s, warnings, err := h.session(c)
	if err != nil {
		return writeError(c, err)
	}
	s.AddItem()
	return h.respond(c, fiber.StatusCreated, s, warnings)
}

// UpdateItem asigna un campo de una línea a partir del texto tecleado; un id
// desconocido no cambia nada.
// PATCH /api/drafts/current/items/:id
func (h *DraftHandler) UpdateItem(c *fiber.Ctx) error {
	s, warnings, err := h.session(c)
	if err != nil {
		return writeError(c, err)
	}
	var in dto.UpdateItemRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if err := dto.Validate(in); err != nil {
		return writeError(c, err)
	}
	s.UpdateItem(c.Params("id"), entity.ItemField(in.Field), string(in.Value))
	return h.respond(c, fiber.StatusOK, s, warnings)
}

// RemoveItem quita una línea; un id desconocido no cambia nada.
// DELETE /api/drafts/current/items/:id
func (h *DraftHandler) RemoveItem(c *fiber.Ctx) error {
	s, warnings, err := h.session(c)
	if err != nil {
		return writeError(c, err)
	}
	s.RemoveItem(c.Params("id"))
	return h.respond(c, fiber.StatusOK, s, warnings)
}

// PutRates fija descuento y/o impuesto (recortados a [0,100]).
// PUT /api/drafts/current/rates
func (h *DraftHandler) PutRates(c *fiber.Ctx) error {
	s, warnings, err := h.session(c)
	if err != nil {
		return writeError(c, err)
	}
	var in dto.RatesRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if v, ok := dto.RateValue(in.DiscountRate); ok {
		s.SetDiscountRate(v)
	}
	if v, ok := dto.RateValue(in.TaxRate); ok {
		s.SetTaxRate(v)
	}
	return h.respond(c, fiber.StatusOK, s, warnings)
}

// PutHeader reemplaza la cabecera.
// PUT /api/drafts/current/header
func (h *DraftHandler) PutHeader(c *fiber.Ctx) error {
	s, warnings, err := h.session(c)
	if err != nil {
		return writeError(c, err)
	}
	var in dto.HeaderRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if err := dto.Validate(in); err != nil {
		return writeError(c, err)
	}
	header, err := in.ToEntity()
	if err != nil {
		return writeError(c, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err))
	}
	s.UpdateHeader(header)
	return h.respond(c, fiber.StatusOK, s, warnings)
}

// PutTheme reemplaza el tema del documento.
// PUT /api/drafts/current/theme
func (h *DraftHandler) PutTheme(c *fiber.Ctx) error {
	s, warnings, err := h.session(c)
	if err != nil {
		return writeError(c, err)
	}
	var in dto.ThemeRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if err := dto.Validate(in); err != nil {
		return writeError(c, err)
	}
	s.SetTheme(in.ToEntity())
	return h.respond(c, fiber.StatusOK, s, warnings)
}

// Code estado del QR con la imagen en base64. ?wait=2s espera (acotado) a que termine.
// GET /api/drafts/current/code
func (h *DraftHandler) Code(c *fiber.Ctx) error {
	s, _, err := h.session(c)
	if err != nil {
		return writeError(c, err)
	}
	code, err := h.code(c, s)
	if err != nil {
		return writeError(c, err)
	}
	status := fiber.StatusOK
	if code.Status == billing.CodeStatusPending {
		status = fiber.StatusAccepted
	}
	return c.Status(status).JSON(dto.NewCodeResponse(code, true))
}

// CodeImage PNG del QR vigente. 202 mientras se genera, 422 si falló.
// GET /api/drafts/current/code.png
func (h *DraftHandler) CodeImage(c *fiber.Ctx) error {
	s, _, err := h.session(c)
	if err != nil {
		return writeError(c, err)
	}
	code, err := h.code(c, s)
	if err != nil {
		return writeError(c, err)
	}
	switch code.Status {
	case billing.CodeStatusReady:
		c.Set(fiber.HeaderContentType, "image/png")
		c.Set(fiber.HeaderCacheControl, "no-store")
		return c.Status(fiber.StatusOK).Send(code.Image)
	case billing.CodeStatusPending:
		return writeError(c, domain.ErrCodePending)
	default:
		return writeError(c, code.Err)
	}
}

func (h *DraftHandler) code(c *fiber.Ctx, s *billing.Session) (billing.ComplianceCode, error) {
	raw := c.Query("wait")
	if raw == "" {
		return s.Code(), nil
	}
	wait, err := time.ParseDuration(raw)
	if err != nil || wait < 0 {
		return billing.ComplianceCode{}, fmt.Errorf("%w: wait debe ser una duración, ej 2s", domain.ErrInvalidInput)
	}
	if wait > maxCodeWait {
		wait = maxCodeWait
	}
	ctx, cancel := context.WithTimeout(c.Context(), wait)
	defer cancel()
	return s.WaitCode(ctx), nil
}

// Save persiste el borrador. Si falla, el estado en memoria se conserva.
// POST /api/drafts/current/save
func (h *DraftHandler) Save(c *fiber.Ctx) error {
	s, _, err := h.session(c)
	if err != nil {
		return writeError(c, err)
	}
	if err := s.Save(c.Context()); err != nil {
		h.log.Error().Err(err).Str("key", s.Key()).Msg("guardado de borrador fallido")
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"saved": true, "key": s.Key()})
}

// Saved resumen del último borrador guardado (moneda y total); 404 si no hay.
// GET /api/drafts/current/saved
func (h *DraftHandler) Saved(c *fiber.Ctx) error {
	owner := GetOwner(c)
	sum, err := h.manager.SavedSummary(c.Context(), owner)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewSavedDraftResponse(h.manager.DraftKey(owner), *sum))
}

// Reset descarta la sesión y el borrador guardado; responde con un borrador nuevo.
// POST /api/drafts/current/reset
func (h *DraftHandler) Reset(c *fiber.Ctx) error {
	if err := h.manager.Reset(c.Context(), GetOwner(c)); err != nil {
		return writeError(c, err)
	}
	s, warnings, err := h.session(c)
	if err != nil {
		return writeError(c, err)
	}
	return h.respond(c, fiber.StatusOK, s, warnings)
}

// PDF descarga la representación imprimible.
// GET /api/drafts/current/pdf
func (h *DraftHandler) PDF(c *fiber.Ctx) error {
	s, _, err := h.session(c)
	if err != nil {
		return writeError(c, err)
	}
	doc := h.docs.FromSession(c.Context(), s)
	b, name, err := h.docs.ExportPDF(c.Context(), doc)
	if err != nil {
		h.log.Error().Err(err).Msg("exportación PDF fallida")
		return writeError(c, err)
	}
	return sendFile(c, "application/pdf", name, b)
}

// XML descarga el XML UBL 2.1.
// GET /api/drafts/current/xml
func (h *DraftHandler) XML(c *fiber.Ctx) error {
	s, _, err := h.session(c)
	if err != nil {
		return writeError(c, err)
	}
	doc := h.docs.FromSession(c.Context(), s)
	b, name, err := h.docs.ExportXML(doc)
	if err != nil {
		h.log.Error().Err(err).Msg("exportación XML fallida")
		return writeError(c, err)
	}
	return sendFile(c, "application/xml", name, b)
}

// Currencies catálogo de monedas con símbolo y decimales.
// GET /api/currencies
func (h *DraftHandler) Currencies(c *fiber.Ctx) error {
	return c.JSON(dto.NewCurrenciesResponse())
}

func sendFile(c *fiber.Ctx, contentType, name string, b []byte) error {
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, name))
	return c.Status(fiber.StatusOK).Send(b)
}

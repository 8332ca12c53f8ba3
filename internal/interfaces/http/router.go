package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/invoice-builder/internal/application/billing"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Sessions  *billing.SessionManager
	Documents *billing.DocumentUseCase
	JWTSecret string
	Log       zerolog.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	drafts := NewDraftHandler(deps.Sessions, deps.Documents, deps.Log)
	protected.Get("/currencies", drafts.Currencies)

	// Borrador en edición del usuario (uno por empresa + usuario)
	current := protected.Group("/drafts/current")
	current.Get("/", drafts.Get)
	current.Post("/items", drafts.AddItem)
	current.Patch("/items/:id", drafts.UpdateItem)
	current.Delete("/items/:id", drafts.RemoveItem)
	current.Put("/rates", drafts.PutRates)
	current.Put("/header", drafts.PutHeader)
	current.Put("/theme", drafts.PutTheme)
	current.Get("/code", drafts.Code)
	current.Get("/code.png", drafts.CodeImage)
	current.Post("/save", drafts.Save)
	current.Get("/saved", drafts.Saved)
	current.Post("/reset", drafts.Reset)
	current.Get("/pdf", drafts.PDF)
	current.Get("/xml", drafts.XML)
}

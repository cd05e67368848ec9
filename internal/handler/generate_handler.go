package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"ctfboard/internal/auth"
	"ctfboard/internal/generator"
)

// GenerateHandler creates new generated challenges on demand.
type GenerateHandler struct {
	generator *generator.Generator
	pages     *Pages
}

// NewGenerateHandler creates a new generate handler.
func NewGenerateHandler(gen *generator.Generator, pages *Pages) *GenerateHandler {
	return &GenerateHandler{generator: gen, pages: pages}
}

// Form lists the challenge kinds that can be generated.
func (h *GenerateHandler) Form(c echo.Context) error {
	return h.pages.Render(c, http.StatusOK, "generate.html", echo.Map{
		"Title": "Generate",
		"Kinds": generator.Kinds(),
	})
}

// Generate builds one challenge of the requested kind and reports its id.
func (h *GenerateHandler) Generate(c echo.Context) error {
	kind, err := generator.ParseKind(c.FormValue("type"))
	if err != nil {
		return h.failed(c, err)
	}
	result, err := h.generator.Generate(kind)
	if err != nil {
		return h.failed(c, err)
	}

	slog.InfoContext(c.Request().Context(), "challenge generated", "id", result.ID, "kind", string(result.Kind))
	return h.pages.Redirect(c, auth.FlashSuccess, fmt.Sprintf("Challenge generated successfully! ID: %s", result.ID), "/")
}

func (h *GenerateHandler) failed(c echo.Context, err error) error {
	slog.WarnContext(c.Request().Context(), "challenge generation failed", "error", err)
	h.pages.Flash(c, auth.FlashError, fmt.Sprintf("Error generating challenge: %s", err))
	return h.Form(c)
}

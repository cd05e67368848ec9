package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"ctfboard/internal/service"
)

// DashboardHandler serves the index page.
type DashboardHandler struct {
	catalogService service.CatalogService
	pages          *Pages
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(catalogService service.CatalogService, pages *Pages) *DashboardHandler {
	return &DashboardHandler{catalogService: catalogService, pages: pages}
}

// Index shows the login form to anonymous visitors and the challenge list otherwise.
func (h *DashboardHandler) Index(c echo.Context) error {
	session := CurrentSession(c)
	if session == nil {
		return h.pages.Render(c, http.StatusOK, "login.html", echo.Map{"Title": "Login"})
	}

	dashboard, err := h.catalogService.Dashboard(c.Request().Context(), session.Solved, c.QueryParam("tab"))
	if err != nil {
		return h.pages.Fail(c, err)
	}
	return h.pages.Render(c, http.StatusOK, "dashboard.html", echo.Map{
		"Title":     "Dashboard",
		"Dashboard": dashboard,
	})
}

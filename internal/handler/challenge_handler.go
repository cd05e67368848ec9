package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"ctfboard/internal/auth"
	apperrors "ctfboard/internal/errors"
	"ctfboard/internal/model"
	"ctfboard/internal/service"
)

// ChallengeHandler serves challenge pages and flag submissions.
type ChallengeHandler struct {
	catalogService service.CatalogService
	flagService    service.FlagService
	pages          *Pages
}

// NewChallengeHandler creates a new challenge handler.
func NewChallengeHandler(catalogService service.CatalogService, flagService service.FlagService, pages *Pages) *ChallengeHandler {
	return &ChallengeHandler{
		catalogService: catalogService,
		flagService:    flagService,
		pages:          pages,
	}
}

// Show renders a generated challenge with its README and files.
func (h *ChallengeHandler) Show(c echo.Context) error {
	id := c.Param("id")
	challenge, err := h.catalogService.GetGenerated(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, apperrors.ErrChallengeNotFound) {
			return h.pages.Redirect(c, auth.FlashError, "Challenge not found", "/")
		}
		return h.pages.Fail(c, err)
	}

	return h.pages.Render(c, http.StatusOK, "challenge.html", echo.Map{
		"Title":     challenge.Name,
		"Challenge": challenge,
		"Solved":    CurrentSession(c).IsSolved(model.GeneratedRef(challenge.ID).SolvedKey()),
	})
}

// ShowCustom renders an approved custom challenge.
func (h *ChallengeHandler) ShowCustom(c echo.Context) error {
	id := c.Param("id")
	challenge, err := h.catalogService.GetApprovedCustom(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, apperrors.ErrChallengeNotFound) {
			return h.pages.Redirect(c, auth.FlashError, "Challenge not found", "/?tab=custom")
		}
		return h.pages.Fail(c, err)
	}

	return h.pages.Render(c, http.StatusOK, "custom_challenge.html", echo.Map{
		"Title":     challenge.Title,
		"Challenge": challenge,
		"Solved":    CurrentSession(c).IsSolved(model.CustomRef(challenge.ID).SolvedKey()),
	})
}

// SubmitFlagRequest is the flag submission form.
type SubmitFlagRequest struct {
	ChallengeID   string `form:"challenge_id" validate:"required"`
	ChallengeType string `form:"challenge_type"`
	Flag          string `form:"flag"`
}

// SubmitFlag godoc
// @Summary Submit a flag
// @Description Checks a flag against a generated or approved custom challenge and records the solve.
// @Tags challenges
// @Accept x-www-form-urlencoded
// @Produce json
// @Param challenge_id formData string true "Challenge id"
// @Param challenge_type formData string false "generated (default) or custom"
// @Param flag formData string true "Submitted flag"
// @Success 200 {object} Result
// @Failure 429 {object} Result
// @Security SessionCookie
// @Router /submit_flag [post]
func (h *ChallengeHandler) SubmitFlag(c echo.Context) error {
	var req SubmitFlagRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusOK, Result{Success: false, Message: "Invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusOK, Result{Success: false, Message: "Invalid request"})
	}

	ref, err := model.ParseChallengeRef(req.ChallengeType, req.ChallengeID)
	if err != nil {
		return c.JSON(http.StatusOK, Result{Success: false, Message: "Invalid request"})
	}

	ok, err := h.flagService.Submit(c.Request().Context(), CurrentSession(c).ID, ref, req.Flag)
	if err != nil {
		httpErr := apperrors.MapErrorToHTTP(err)
		slog.ErrorContext(c.Request().Context(), "flag submission failed", "challenge", ref.String(), "error", err)
		return c.JSON(httpErr.StatusCode, Result{Success: false, Message: httpErr.Message})
	}
	if !ok {
		return c.JSON(http.StatusOK, Result{Success: false, Message: "Incorrect flag. Try again!"})
	}
	return c.JSON(http.StatusOK, Result{Success: true, Message: "Correct flag! Challenge solved!"})
}

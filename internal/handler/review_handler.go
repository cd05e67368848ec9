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

// ReviewHandler serves the admin review queue.
type ReviewHandler struct {
	reviewService service.ReviewService
	pages         *Pages
}

// NewReviewHandler creates a new review handler.
func NewReviewHandler(reviewService service.ReviewService, pages *Pages) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService, pages: pages}
}

// Page lists pending and past submissions, optionally filtered by ?status=.
// Non-admins are sent back to the dashboard.
func (h *ReviewHandler) Page(c echo.Context) error {
	filter, err := service.ParseStatusFilter(c.QueryParam("status"))
	if err != nil {
		return h.pages.Redirect(c, auth.FlashError, err.Error(), "/review")
	}

	queue, err := h.reviewService.Queue(c.Request().Context(), currentIdentity(c), filter)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotAuthorized) {
			return h.pages.Redirect(c, auth.FlashError, "Access denied", "/")
		}
		return h.pages.Fail(c, err)
	}
	return h.pages.Render(c, http.StatusOK, "review.html", echo.Map{
		"Title":    "Review",
		"Queue":    queue,
		"Statuses": model.ChallengeStatuses,
	})
}

// ReviewActionRequest is the review form.
type ReviewActionRequest struct {
	ChallengeID string `form:"challenge_id" validate:"required"`
	Action      string `form:"action" validate:"required"`
	Notes       string `form:"notes"`
}

// Action godoc
// @Summary Approve or reject a custom challenge
// @Description Admin only. Repeating an action overwrites the previous review.
// @Tags review
// @Accept x-www-form-urlencoded
// @Produce json
// @Param challenge_id formData string true "Custom challenge id"
// @Param action formData string true "approve or reject"
// @Param notes formData string false "Review notes"
// @Success 200 {object} Result
// @Security SessionCookie
// @Router /review_action [post]
func (h *ReviewHandler) Action(c echo.Context) error {
	identity := currentIdentity(c)
	if !identity.IsAdmin() {
		return c.JSON(http.StatusOK, Result{Success: false, Message: "Access denied"})
	}

	var req ReviewActionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusOK, Result{Success: false, Message: "Invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusOK, Result{Success: false, Message: "Invalid request"})
	}

	action, err := service.ParseReviewAction(req.Action)
	if err != nil {
		return c.JSON(http.StatusOK, Result{Success: false, Message: "Invalid action"})
	}

	challenge, err := h.reviewService.Review(c.Request().Context(), identity, req.ChallengeID, action, req.Notes)
	if err != nil {
		httpErr := apperrors.MapErrorToHTTP(err)
		if httpErr.StatusCode == http.StatusInternalServerError {
			slog.ErrorContext(c.Request().Context(), "review failed", "challenge_id", req.ChallengeID, "error", err)
		}
		return c.JSON(http.StatusOK, Result{Success: false, Message: httpErr.Message})
	}

	return c.JSON(http.StatusOK, Result{Success: true, Message: "Challenge " + string(challenge.Status)})
}

package handler

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/labstack/echo/v4"

	"ctfboard/internal/auth"
	apperrors "ctfboard/internal/errors"
	"ctfboard/internal/service"
)

// CustomHandler handles user submitted challenges.
type CustomHandler struct {
	submissionService service.SubmissionService
	pages             *Pages
}

// NewCustomHandler creates a new custom challenge handler.
func NewCustomHandler(submissionService service.SubmissionService, pages *Pages) *CustomHandler {
	return &CustomHandler{submissionService: submissionService, pages: pages}
}

// Form renders the empty submission form.
func (h *CustomHandler) Form(c echo.Context) error {
	return h.renderForm(c, http.StatusOK, service.CreateCustomInput{}, "")
}

// Create godoc
// @Summary Submit a custom challenge
// @Description Stores the challenge as pending review. Files are optional.
// @Tags custom
// @Accept multipart/form-data
// @Produce html
// @Param title formData string true "Title"
// @Param description formData string true "Description"
// @Param category formData string true "Category"
// @Param flag formData string true "Flag"
// @Param files formData file false "Attachments"
// @Success 302 "Redirect to the community tab"
// @Failure 400 "Form re-rendered with a validation message"
// @Failure 413 "Upload too large"
// @Security SessionCookie
// @Router /create_custom [post]
func (h *CustomHandler) Create(c echo.Context) error {
	var input service.CreateCustomInput
	if err := c.Bind(&input); err != nil {
		return h.renderForm(c, http.StatusBadRequest, input, "Invalid form submission")
	}

	var files []*multipart.FileHeader
	if form, err := c.MultipartForm(); err == nil {
		files = form.File["files"]
	}

	challenge, err := h.submissionService.CreateCustom(c.Request().Context(), currentIdentity(c), input, files)
	if err != nil {
		var verr *apperrors.ValidationError
		switch {
		case errors.As(err, &verr):
			return h.renderForm(c, http.StatusBadRequest, input, verr.Message)
		case errors.Is(err, apperrors.ErrUploadTooLarge):
			return h.renderForm(c, http.StatusRequestEntityTooLarge, input, "Uploaded file is too large")
		}
		return h.pages.Fail(c, err)
	}

	return h.pages.Redirect(c, auth.FlashSuccess,
		fmt.Sprintf("Challenge %q submitted for review!", challenge.Title), "/?tab=custom")
}

func (h *CustomHandler) renderForm(c echo.Context, status int, input service.CreateCustomInput, message string) error {
	return h.pages.Render(c, status, "create_custom.html", echo.Map{
		"Title": "Submit challenge",
		"Form":  input,
		"Error": message,
	})
}

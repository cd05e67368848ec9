package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"unicode/utf8"

	"github.com/labstack/echo/v4"

	"ctfboard/internal/auth"
	apperrors "ctfboard/internal/errors"
	"ctfboard/internal/model"
	"ctfboard/internal/service"
)

// FileHandler serves challenge attachments through the file gateway.
type FileHandler struct {
	fileService service.FileService
	pages       *Pages
}

// NewFileHandler creates a new file handler.
func NewFileHandler(fileService service.FileService, pages *Pages) *FileHandler {
	return &FileHandler{fileService: fileService, pages: pages}
}

func challengePage(ref model.ChallengeRef) string {
	if ref.Kind == model.KindCustom {
		return "/custom_challenge/" + url.PathEscape(ref.ID)
	}
	return "/challenge/" + url.PathEscape(ref.ID)
}

// View shows a text file inline and offers a download for anything else.
func (h *FileHandler) View(c echo.Context) error {
	ref := model.GeneratedRef(c.Param("challengeId"))
	name := c.Param("filename")

	file, err := h.fileService.Resolve(c.Request().Context(), ref, name)
	if err != nil {
		if errors.Is(err, apperrors.ErrFileNotAccessible) {
			return h.pages.Redirect(c, auth.FlashError, "File not accessible", challengePage(ref))
		}
		return h.pages.Fail(c, err)
	}

	data := echo.Map{
		"Title":    file.Name,
		"Name":     file.Name,
		"Back":     challengePage(ref),
		"Download": fmt.Sprintf("/download/%s/%s", url.PathEscape(ref.ID), url.PathEscape(file.Name)),
	}
	if file.Text {
		content, err := os.ReadFile(file.Path)
		if err == nil && utf8.Valid(content) {
			data["Content"] = string(content)
			return h.pages.Render(c, http.StatusOK, "file.html", data)
		}
		if err != nil {
			slog.WarnContext(c.Request().Context(), "failed to read text file, offering download", "path", file.Path, "error", err)
		}
	}
	return h.pages.Render(c, http.StatusOK, "binary.html", data)
}

// Download sends a generated challenge file as an attachment.
func (h *FileHandler) Download(c echo.Context) error {
	ref := model.GeneratedRef(c.Param("challengeId"))

	file, err := h.fileService.Resolve(c.Request().Context(), ref, c.Param("filename"))
	if err != nil {
		if errors.Is(err, apperrors.ErrFileNotAccessible) {
			return h.pages.Redirect(c, auth.FlashError, "File not found or not accessible", challengePage(ref))
		}
		return h.pages.Fail(c, err)
	}
	return c.Attachment(file.Path, file.Name)
}

// CustomFile sends an uploaded file of an approved custom challenge under its original name.
func (h *FileHandler) CustomFile(c echo.Context) error {
	ref := model.CustomRef(c.Param("challengeId"))

	file, err := h.fileService.Resolve(c.Request().Context(), ref, c.Param("filename"))
	if err != nil {
		if errors.Is(err, apperrors.ErrFileNotAccessible) {
			return h.pages.Redirect(c, auth.FlashError, "File not accessible", challengePage(ref))
		}
		return h.pages.Fail(c, err)
	}
	return c.Attachment(file.Path, file.Name)
}

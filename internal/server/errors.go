package server

import (
	"errors"
	"net/http"

	"github.com/jsvensson/pptxpalette/internal/archive"
	"github.com/jsvensson/pptxpalette/internal/pipeline"
	"github.com/jsvensson/pptxpalette/internal/theme"
)

// FriendlyError is the JSON error body returned by the API.
type FriendlyError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

func (e *FriendlyError) Error() string {
	return e.Message
}

func (e *FriendlyError) Unwrap() error { return e.Cause }

// mapError turns a pipeline, archive or theme error into a FriendlyError.
// The message keeps the underlying error text since it names the member
// that failed.
func mapError(err error) *FriendlyError {
	if err == nil {
		return nil
	}
	var friendly *FriendlyError
	if errors.As(err, &friendly) {
		return friendly
	}

	code := "INTERNAL_ERROR"
	switch {
	case errors.Is(err, archive.ErrInvalidArchive):
		code = "INVALID_ARCHIVE"
	case errors.Is(err, pipeline.ErrNoThemeMembers):
		return &FriendlyError{Code: "NO_THEME_MEMBERS", Message: "No theme files found within - may not be a valid .pptx file", Cause: err}
	case errors.Is(err, theme.ErrMalformedXML):
		code = "MALFORMED_XML"
	case errors.Is(err, archive.ErrDecode):
		code = "DECODE_ERROR"
	case errors.Is(err, pipeline.ErrSuperseded):
		code = "SUPERSEDED"
	case errors.Is(err, pipeline.ErrNotReady):
		code = "NOT_READY"
	case errors.Is(err, pipeline.ErrNoSuchSlot):
		code = "NO_SUCH_SLOT"
	case errors.Is(err, theme.ErrInvalidColor):
		code = "INVALID_COLOR"
	case errors.Is(err, theme.ErrNoColorElement):
		code = "NO_COLOR_ELEMENT"
	}
	return &FriendlyError{Code: code, Message: err.Error(), Cause: err}
}

func statusFor(code string) int {
	switch code {
	case "INVALID_ARCHIVE", "NO_THEME_MEMBERS", "MALFORMED_XML", "DECODE_ERROR", "NO_COLOR_ELEMENT":
		return http.StatusUnprocessableEntity
	case "INVALID_COLOR", "INVALID_REQUEST", "SCRIPT_ERROR":
		return http.StatusBadRequest
	case "SUPERSEDED", "NOT_READY":
		return http.StatusConflict
	case "NO_SUCH_SLOT":
		return http.StatusNotFound
	case "UPLOAD_TOO_LARGE":
		return http.StatusRequestEntityTooLarge
	case "METHOD_NOT_ALLOWED":
		return http.StatusMethodNotAllowed
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	friendly := mapError(err)
	status := statusFor(friendly.Code)
	if status == http.StatusInternalServerError {
		log.Errorf("internal error: %s", err.Error())
	}
	writeJSON(w, status, friendly)
}

func writeErr(w http.ResponseWriter, code, message string) {
	writeJSON(w, statusFor(code), &FriendlyError{Code: code, Message: message})
}

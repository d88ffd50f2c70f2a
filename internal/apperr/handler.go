package apperr

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
)

// GlobalErrorHandler maps application errors onto HTTP responses. Downstream
// failures collapse to a generic 500 so internal query structure never leaks.
func GlobalErrorHandler() echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var ve *ValidationError
		if errors.As(err, &ve) {
			body := map[string]any{"error": ve.Message, "title": "validation error"}
			if len(ve.Fields) > 0 {
				body["fields"] = ve.Fields
			}
			_ = c.JSON(http.StatusBadRequest, body)
			return
		}

		var nf *NotFoundError
		if errors.As(err, &nf) {
			_ = c.JSON(http.StatusNotFound, map[string]string{"error": nf.Message})
			return
		}

		var ue *UnavailableError
		if errors.As(err, &ue) {
			slog.Error("Downstream unavailable", "system", ue.System, "error", ue.Err)
			_ = c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal server error"})
			return
		}

		var he *echo.HTTPError
		if errors.As(err, &he) {
			msg := fmt.Sprintf("%v", he.Message)
			_ = c.JSON(he.Code, map[string]string{"error": msg})
			return
		}

		slog.Error("Unhandled error", "error", err)
		_ = c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}

package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/cmiyc/internal/common"
	"github.com/labstack/echo/v4"
)

type errorResponse struct {
	Error   string             `json:"error"`
	Details []common.Violation `json:"details,omitempty"`
}

func errorBody(msg string) errorResponse {
	return errorResponse{Error: msg}
}

// writeError maps a service error to a status code and a JSON body.
// Internal causes are never echoed to the client.
func (s *HTTPServer) writeError(c echo.Context, err error) error {
	var ve *common.ValidationError
	if errors.As(err, &ve) {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "validation_failed", Details: ve.Details})
	}

	switch {
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired):
		return c.JSON(http.StatusUnauthorized, errorBody(reason(err, "unauthorized")))
	case errors.Is(err, common.ErrorConflict):
		return c.JSON(http.StatusConflict, errorBody(reason(err, "conflict")))
	case errors.Is(err, common.ErrorNotFound):
		return c.JSON(http.StatusNotFound, errorBody(reason(err, "not found")))
	}

	s.logger.Error(c.Request().Context(), "request failed", "path", c.Path(), "error", err.Error())
	return c.JSON(http.StatusInternalServerError, errorBody("internal error"))
}

func reason(err error, fallback string) string {
	var re *common.ReasonError
	if errors.As(err, &re) {
		return re.Reason
	}
	return fallback
}

// errorHandler renders echo's own errors (unknown route, bad method,
// panics caught by Recover) in the same JSON shape.
func (s *HTTPServer) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	msg := "internal error"

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if m, ok := he.Message.(string); ok && code < http.StatusInternalServerError {
			msg = m
		} else if code < http.StatusInternalServerError {
			msg = http.StatusText(code)
		}
	}
	if code >= http.StatusInternalServerError {
		s.logger.Error(c.Request().Context(), "unhandled error", "path", c.Path(), "error", err.Error())
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, errorBody(msg))
	}
	if err != nil {
		s.logger.Error(c.Request().Context(), "error response failed", "error", err.Error())
	}
}

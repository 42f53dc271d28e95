package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/cmiyc/internal/common"
	"github.com/dmitrijs2005/cmiyc/internal/server/models"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

const profileKey = "profile"

// requireSession verifies the CMIYC cookie and stores the snapshot under
// profileKey. Storage is not consulted.
func (s *HTTPServer) requireSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		cookie, err := c.Cookie(common.SessionCookieName)
		if err != nil || cookie.Value == "" {
			return c.JSON(http.StatusUnauthorized, errorBody("not authenticated"))
		}

		p, err := s.accounts.Authenticate(cookie.Value)
		if err != nil {
			if errors.Is(err, common.ErrTokenExpired) {
				return c.JSON(http.StatusUnauthorized, errorBody("session expired"))
			}
			return c.JSON(http.StatusUnauthorized, errorBody("invalid session"))
		}

		c.Set(profileKey, p)
		return next(c)
	}
}

func currentProfile(c echo.Context) *models.Profile {
	p, _ := c.Get(profileKey).(*models.Profile)
	return p
}

// rateLimit throttles per client IP. It is empty when limiting is off.
func (s *HTTPServer) rateLimit() []echo.MiddlewareFunc {
	if s.opts.AuthRateLimit <= 0 {
		return nil
	}

	burst := s.opts.AuthRateBurst
	if burst <= 0 {
		burst = 1
	}

	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(s.opts.AuthRateLimit),
		Burst:     burst,
		ExpiresIn: 3 * time.Minute,
	})

	return []echo.MiddlewareFunc{middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(http.StatusForbidden, errorBody("forbidden"))
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			s.logger.Warn(c.Request().Context(), "rate limited", "remote_ip", identifier, "path", c.Path())
			return c.JSON(http.StatusTooManyRequests, errorBody("too many requests"))
		},
	})}
}

// accessLog writes one record per request.
func (s *HTTPServer) accessLog() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			s.logger.Info(c.Request().Context(), "request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency.String(),
				"request_id", v.RequestID,
				"remote_ip", v.RemoteIP,
			)
			return nil
		},
	})
}

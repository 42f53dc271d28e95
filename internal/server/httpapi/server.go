// Package httpapi exposes the account service over HTTP/JSON with echo.
// Sessions travel in the CMIYC cookie.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/cmiyc/internal/logging"
	"github.com/dmitrijs2005/cmiyc/internal/server/models"
	"github.com/dmitrijs2005/cmiyc/internal/server/services"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Accounts is the part of services.AccountService the handlers use.
type Accounts interface {
	Authenticate(token string) (*models.Profile, error)
	CheckEmail(ctx context.Context, email string) error
	Signup(ctx context.Context, req *models.SignupRequest) (*services.Session, error)
	Login(ctx context.Context, email, password string) (*services.Session, error)
	EditProfile(ctx context.Context, accountID string, patch *models.ProfilePatch) (*services.Session, error)
	ChangePassword(ctx context.Context, accountID, oldPassword, newPassword string) error
}

type Options struct {
	Address      string
	CookieSecure bool

	// AuthRateLimit is requests per second per client IP on the
	// unauthenticated endpoints. Zero disables limiting.
	AuthRateLimit float64
	AuthRateBurst int

	// TrustedProxies are the peers allowed to set X-Forwarded-For. With
	// none, the client IP is the TCP peer address and forwarding headers
	// are ignored.
	TrustedProxies []*net.IPNet

	ShutdownTimeout time.Duration
}

type HTTPServer struct {
	opts     Options
	accounts Accounts
	logger   logging.Logger
	echo     *echo.Echo
}

func NewHTTPServer(opts Options, l logging.Logger, a Accounts) *HTTPServer {
	s := &HTTPServer{
		opts:     opts,
		accounts: a,
		logger:   l.With("module", "http_server"),
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.errorHandler
	e.IPExtractor = ipExtractor(opts.TrustedProxies)

	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(s.accessLog())

	e.GET("/healthz", s.health)

	limit := s.rateLimit()
	e.POST("/signup/check", s.checkEmail, limit...)
	e.POST("/signup", s.signup, limit...)
	e.POST("/login", s.login, limit...)

	e.POST("/api/logout", s.logout)

	api := e.Group("/api", s.requireSession)
	api.GET("/me", s.me)
	api.PUT("/edit-profile", s.editProfile)
	api.PUT("/edit-password", s.editPassword)

	s.echo = e
	return s
}

// Handler returns the router, mainly for tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.echo
}

// Run serves until ctx is cancelled, then shuts down gracefully within
// Options.ShutdownTimeout.
func (s *HTTPServer) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info(ctx, "Starting HTTP server", "address", s.opts.Address)
		if err := s.echo.Start(s.opts.Address); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info(ctx, "Stopping HTTP server...")

	timeout := s.opts.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

// ipExtractor decides what c.RealIP returns, and with it the rate-limit key.
func ipExtractor(proxies []*net.IPNet) echo.IPExtractor {
	if len(proxies) == 0 {
		return echo.ExtractIPDirect()
	}

	opts := []echo.TrustOption{
		echo.TrustLoopback(false),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(false),
	}
	for _, p := range proxies {
		opts = append(opts, echo.TrustIPRange(p))
	}
	return echo.ExtractIPFromXFFHeader(opts...)
}

// ParseTrustedProxies turns CIDRs or bare IPs into networks for
// Options.TrustedProxies.
func ParseTrustedProxies(list []string) ([]*net.IPNet, error) {
	var out []*net.IPNet
	for _, v := range list {
		if !strings.Contains(v, "/") {
			ip := net.ParseIP(v)
			if ip == nil {
				return nil, fmt.Errorf("invalid trusted proxy %q", v)
			}
			bits := 128
			if ip.To4() != nil {
				ip, bits = ip.To4(), 32
			}
			out = append(out, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
			continue
		}
		_, n, err := net.ParseCIDR(v)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy %q: %w", v, err)
		}
		out = append(out, n)
	}
	return out, nil
}

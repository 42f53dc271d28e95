// Package server wires the accounts server together: database, migrations,
// token issuer, account service and the HTTP API. It handles graceful
// shutdown on SIGINT/SIGTERM.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/cmiyc/internal/cryptox"
	"github.com/dmitrijs2005/cmiyc/internal/logging"
	"github.com/dmitrijs2005/cmiyc/internal/server/auth"
	"github.com/dmitrijs2005/cmiyc/internal/server/config"
	"github.com/dmitrijs2005/cmiyc/internal/server/httpapi"
	"github.com/dmitrijs2005/cmiyc/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/cmiyc/internal/server/services"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	db       *sql.DB
	accounts *services.AccountService
	proxies  []*net.IPNet
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, slog.LevelInfo)

	proxies, err := httpapi.ParseTrustedProxies(c.TrustedProxies)
	if err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	db, err := repomanager.OpenPostgres(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	if c.SecretKey == "" {
		logger.Warn(ctx, "secret key is not set, sessions cannot be issued")
	}

	issuer := auth.NewIssuer(c.SecretKey, nil)
	as := services.NewAccountService(db, rm, issuer, cryptox.Argon2id{}, logger)

	return &App{config: c, logger: logger, db: db, accounts: as, proxies: proxies}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := httpapi.NewHTTPServer(httpapi.Options{
		Address:         app.config.EndpointAddrHTTP,
		CookieSecure:    app.config.CookieSecure,
		AuthRateLimit:   app.config.AuthRateLimit,
		AuthRateBurst:   app.config.AuthRateBurst,
		TrustedProxies:  app.proxies,
		ShutdownTimeout: app.config.ShutdownTimeout,
	}, app.logger, app.accounts)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run blocks until a signal arrives or the HTTP server fails.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err.Error())
	}
	app.logger.Info(ctx, "App stopped")
}

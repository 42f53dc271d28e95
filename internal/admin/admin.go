// Package admin implements the operator commands of cmd/admin: granting the
// admin flag, hashing a password for seeding and applying migrations.
package admin

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/cmiyc/internal/common"
	"github.com/dmitrijs2005/cmiyc/internal/cryptox"
	"github.com/dmitrijs2005/cmiyc/internal/server/config"
	"github.com/dmitrijs2005/cmiyc/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/cmiyc/internal/server/validation"
)

const usage = `usage: admin <command> [flags]

commands:
  grant-admin -d DSN -email EMAIL   set the admin flag of an account
  hash                              print the argon2id encoding of a password
  migrate -d DSN                    apply database migrations
`

type App struct {
	out     io.Writer
	manager repomanager.RepositoryManager
	open    func(ctx context.Context, dsn string) (*sql.DB, error)
	hash    func(plaintext string) (string, error)
}

func NewApp(out io.Writer) *App {
	return &App{
		out:     out,
		manager: repomanager.NewPostgresRepositoryManager(),
		open:    repomanager.OpenPostgres,
		hash:    cryptox.HashPassword,
	}
}

// Run executes one command and returns the process exit code.
func (a *App) Run(ctx context.Context, args []string) int {
	if len(args) == 0 {
		fmt.Fprint(a.out, usage)
		return 2
	}

	var err error
	switch args[0] {
	case "grant-admin":
		err = a.grantAdmin(ctx, args[1:])
	case "hash":
		err = a.hashPassword()
	case "migrate":
		err = a.migrate(ctx, args[1:])
	case "help", "-h", "--help":
		fmt.Fprint(a.out, usage)
		return 0
	default:
		fmt.Fprintf(a.out, "unknown command %q\n\n%s", args[0], usage)
		return 2
	}

	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(a.out, "error: %v\n", err)
		return 1
	}
	return 0
}

func defaultDSN() string {
	if v, ok := os.LookupEnv("CMIYC_DATABASE_DSN"); ok {
		return v
	}
	cfg := &config.Config{}
	cfg.LoadDefaults()
	return cfg.DatabaseDSN
}

func (a *App) grantAdmin(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("grant-admin", flag.ContinueOnError)
	fs.SetOutput(a.out)
	dsn := fs.String("d", defaultDSN(), "database DSN")
	email := fs.String("email", "", "account email")
	if err := fs.Parse(args); err != nil {
		return err
	}

	addr := validation.NormalizeEmail(*email)
	if err := common.NewValidationError(validation.Email(addr)); err != nil {
		return err
	}

	db, err := a.open(ctx, *dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := a.manager.Accounts(db).GrantAdmin(ctx, addr); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return fmt.Errorf("no account with email %s", addr)
		}
		return err
	}

	fmt.Fprintf(a.out, "admin granted to %s\n", addr)
	return nil
}

func (a *App) hashPassword() error {
	pw, err := GetPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pw)

	if err := common.NewValidationError(validation.Password("password", string(pw))); err != nil {
		return err
	}

	encoded, err := a.hash(string(pw))
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, encoded)
	return nil
}

func (a *App) migrate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	fs.SetOutput(a.out)
	dsn := fs.String("d", defaultDSN(), "database DSN")
	if err := fs.Parse(args); err != nil {
		return err
	}

	db, err := a.open(ctx, *dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := a.manager.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("migrations error: %w", err)
	}
	fmt.Fprintln(a.out, "migrations applied")
	return nil
}

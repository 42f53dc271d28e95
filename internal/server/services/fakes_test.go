package services

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/cmiyc/internal/common"
	"github.com/dmitrijs2005/cmiyc/internal/dbx"
	"github.com/dmitrijs2005/cmiyc/internal/logging"
	"github.com/dmitrijs2005/cmiyc/internal/server/auth"
	"github.com/dmitrijs2005/cmiyc/internal/server/models"
	"github.com/dmitrijs2005/cmiyc/internal/server/repositories/accounts"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

// plainHasher keeps tests fast; the argon2id store has its own tests.
type plainHasher struct{}

func (plainHasher) Hash(p string) (string, error) { return "plain:" + p, nil }

func (plainHasher) Verify(h, p string) bool { return h == "plain:"+p }

// fakeAccounts is an in-memory accounts.Repository.
type fakeAccounts struct {
	rows   map[string]*models.Account
	nextID int

	// injected failures
	createErr error
	getErr    error
	existsErr error
	updateErr error
	hashesErr error

	// run by Update and SetPasswordHash before writing; a non-nil result is returned
	writeHook func() error

	updates []*models.AccountUpdate
}

func newFakeAccounts(rows ...*models.Account) *fakeAccounts {
	f := &fakeAccounts{rows: map[string]*models.Account{}}
	for _, r := range rows {
		f.rows[r.ID] = r
	}
	return f
}

func (f *fakeAccounts) Create(ctx context.Context, a *models.Account) (*models.Account, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.nextID++
	c := *a
	c.ID = "acc-new-" + strconv.Itoa(f.nextID)
	c.CreatedAt = time.Now()
	f.rows[c.ID] = &c
	return &c, nil
}

func (f *fakeAccounts) GetByID(ctx context.Context, id string) (*models.Account, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	a, ok := f.rows[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *a
	return &c, nil
}

func (f *fakeAccounts) FindCredentials(ctx context.Context, email string) (string, string, error) {
	if f.getErr != nil {
		return "", "", f.getErr
	}
	for _, a := range f.rows {
		if strings.EqualFold(a.Email, email) {
			return a.ID, a.PasswordHash, nil
		}
	}
	return "", "", common.ErrorNotFound
}

func (f *fakeAccounts) EmailExists(ctx context.Context, email, excludeID string) (bool, error) {
	if f.existsErr != nil {
		return false, f.existsErr
	}
	for _, a := range f.rows {
		if a.ID != excludeID && strings.EqualFold(a.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeAccounts) Update(ctx context.Context, id string, u *models.AccountUpdate) (*models.Account, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	if f.writeHook != nil {
		if err := f.writeHook(); err != nil {
			return nil, err
		}
	}
	f.updates = append(f.updates, u)
	a, ok := f.rows[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	if u.FirstName != nil {
		a.FirstName = *u.FirstName
	}
	if u.LastName != nil {
		a.LastName = *u.LastName
	}
	if u.MiddleInitial != nil {
		a.MiddleInitial = *u.MiddleInitial
	}
	if u.Email != nil {
		a.Email = *u.Email
	}
	if u.MinPace != nil {
		a.MinPace = u.MinPace.Value
	}
	if u.MaxPace != nil {
		a.MaxPace = u.MaxPace.Value
	}
	if u.MinDistPref != nil {
		a.MinDistPref = u.MinDistPref.Value
	}
	if u.MaxDistPref != nil {
		a.MaxDistPref = u.MaxDistPref.Value
	}
	c := *a
	return &c, nil
}

func (f *fakeAccounts) OtherPasswordHashes(ctx context.Context, excludeID string) ([]string, error) {
	if f.hashesErr != nil {
		return nil, f.hashesErr
	}
	var out []string
	for _, a := range f.rows {
		if a.ID != excludeID {
			out = append(out, a.PasswordHash)
		}
	}
	return out, nil
}

func (f *fakeAccounts) SetPasswordHash(ctx context.Context, id, hash string) error {
	if f.writeHook != nil {
		if err := f.writeHook(); err != nil {
			return err
		}
	}
	a, ok := f.rows[id]
	if !ok {
		return common.ErrorNotFound
	}
	a.PasswordHash = hash
	return nil
}

func (f *fakeAccounts) GrantAdmin(ctx context.Context, email string) error {
	for _, a := range f.rows {
		if strings.EqualFold(a.Email, email) {
			a.IsAdmin = true
			return nil
		}
	}
	return common.ErrorNotFound
}

type fakeRepoManager struct {
	a *fakeAccounts
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Accounts(db dbx.DBTX) accounts.Repository   { return m.a }

// failFirstWrites makes the first n writes fail as a lost serialization race.
func failFirstWrites(f *fakeAccounts, n int) *int {
	calls := 0
	f.writeHook = func() error {
		calls++
		if calls <= n {
			return fmt.Errorf("db error: %w", &pgconn.PgError{Code: "40001"})
		}
		return nil
	}
	return &calls
}

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func newAccountService(t *testing.T, db *sql.DB, repo *fakeAccounts, secret string) *AccountService {
	t.Helper()
	return NewAccountService(db, &fakeRepoManager{a: repo}, auth.NewIssuer(secret, nil), plainHasher{}, logging.Nop())
}

func storedAnn() *models.Account {
	return &models.Account{
		ID:           "acc-1",
		FirstName:    "Ann",
		LastName:     "Runner",
		Email:        "ann@example.com",
		PasswordHash: "plain:ann-secret",
		IsLeader:     true,
		IsAdmin:      true,
		MinPace:      models.Int64(300),
		MaxPace:      models.Int64(400),
		MinDistPref:  nil,
		MaxDistPref:  models.Int64(10),
	}
}

func storedBob() *models.Account {
	return &models.Account{
		ID:           "acc-2",
		FirstName:    "Bob",
		LastName:     "Jogger",
		Email:        "bob@example.com",
		PasswordHash: "plain:bob-secret",
	}
}

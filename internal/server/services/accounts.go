// Package services contains server-side business logic. AccountService
// implements signup, login, profile edit and password change on top of the
// credential store, the session token issuer and the account repository.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/cmiyc/internal/common"
	"github.com/dmitrijs2005/cmiyc/internal/dbx"
	"github.com/dmitrijs2005/cmiyc/internal/logging"
	"github.com/dmitrijs2005/cmiyc/internal/server/auth"
	"github.com/dmitrijs2005/cmiyc/internal/server/models"
	"github.com/dmitrijs2005/cmiyc/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/cmiyc/internal/server/validation"
)

// PasswordHasher is the credential store contract. cryptox.Argon2id
// implements it.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(encoded, plaintext string) bool
}

// Session is what a successful signup, login or profile edit hands to the
// transport: the fresh token and the profile it snapshots.
type Session struct {
	Token   string
	Profile *models.Profile
}

type AccountService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	issuer      *auth.Issuer
	hasher      PasswordHasher
	logger      logging.Logger
}

func NewAccountService(db *sql.DB, m repomanager.RepositoryManager, issuer *auth.Issuer, hasher PasswordHasher, logger logging.Logger) *AccountService {
	return &AccountService{
		db:          db,
		repomanager: m,
		issuer:      issuer,
		hasher:      hasher,
		logger:      logger.With("module", "account_service"),
	}
}

// Authenticate verifies a session token and returns its snapshot. Storage
// is not consulted.
func (s *AccountService) Authenticate(token string) (*models.Profile, error) {
	return s.issuer.Verify(token)
}

// CheckEmail fails with common.ErrorConflict when email is taken.
func (s *AccountService) CheckEmail(ctx context.Context, email string) error {
	email = validation.NormalizeEmail(email)
	if err := common.NewValidationError(validation.Email(email)); err != nil {
		return err
	}

	exists, err := s.repomanager.Accounts(s.db).EmailExists(ctx, email, "")
	if err != nil {
		return s.internal(ctx, "email check failed", err)
	}
	if exists {
		return common.WithReason(common.ErrorConflict, "email_exists")
	}
	return nil
}

// Signup validates every field, creates the account and opens a session.
func (s *AccountService) Signup(ctx context.Context, req *models.SignupRequest) (*Session, error) {
	account, violations := signupAccount(req)
	if err := common.NewValidationError(violations); err != nil {
		return nil, err
	}

	if err := s.issuer.Ready(); err != nil {
		return nil, s.internal(ctx, "signup refused", err)
	}

	repo := s.repomanager.Accounts(s.db)

	exists, err := repo.EmailExists(ctx, account.Email, "")
	if err != nil {
		return nil, s.internal(ctx, "email check failed", err)
	}
	if exists {
		return nil, common.WithReason(common.ErrorConflict, "email already registered")
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, s.internal(ctx, "password hashing failed", err)
	}
	account.PasswordHash = hash

	// the unique index settles a concurrent signup with the same email
	created, err := repo.Create(ctx, account)
	if err != nil {
		if errors.Is(err, common.ErrorConflict) {
			return nil, common.WithReason(common.ErrorConflict, "email already registered")
		}
		return nil, s.internal(ctx, "account insert failed", err)
	}

	s.logger.Info(ctx, "account created", "account_id", created.ID)
	return s.openSession(ctx, created.Profile())
}

func signupAccount(req *models.SignupRequest) (*models.Account, []common.Violation) {
	var v []common.Violation

	a := &models.Account{
		FirstName:     strings.TrimSpace(req.FirstName),
		LastName:      strings.TrimSpace(req.LastName),
		MiddleInitial: strings.TrimSpace(req.MiddleInitial),
		Email:         validation.NormalizeEmail(req.Email),
	}

	v = append(v, validation.Name("first_name", a.FirstName)...)
	v = append(v, validation.Name("last_name", a.LastName)...)
	v = append(v, validation.MiddleInitial(a.MiddleInitial)...)
	v = append(v, validation.Email(a.Email)...)
	v = append(v, validation.Password("password", req.Password)...)

	isLeader, bad := validation.RequiredBool("is_leader", req.IsLeader)
	v = append(v, bad...)
	a.IsLeader = isLeader

	minPace, badMinPace := validation.RequiredBound("min_pace", req.MinPace)
	maxPace, badMaxPace := validation.RequiredBound("max_pace", req.MaxPace)
	minDist, badMinDist := validation.RequiredBound("min_dist_pref", req.MinDistPref)
	maxDist, badMaxDist := validation.RequiredBound("max_dist_pref", req.MaxDistPref)
	v = append(v, badMinPace...)
	v = append(v, badMaxPace...)
	v = append(v, badMinDist...)
	v = append(v, badMaxDist...)

	if badMinPace == nil && badMaxPace == nil {
		v = append(v, validation.PacePair.CheckFull(minPace, maxPace)...)
	}
	if badMinDist == nil && badMaxDist == nil {
		v = append(v, validation.DistancePair.CheckFull(minDist, maxDist)...)
	}

	a.MinPace, a.MaxPace = &minPace, &maxPace
	a.MinDistPref, a.MaxDistPref = &minDist, &maxDist

	return a, v
}

// Login checks the credentials and opens a session. An unknown email and a
// wrong password are reported differently on purpose.
func (s *AccountService) Login(ctx context.Context, email, password string) (*Session, error) {
	repo := s.repomanager.Accounts(s.db)

	id, hash, err := repo.FindCredentials(ctx, validation.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.WithReason(common.ErrorNotFound, "email not found")
		}
		return nil, s.internal(ctx, "credential lookup failed", err)
	}

	if !s.hasher.Verify(hash, password) {
		s.logger.Warn(ctx, "login rejected", "account_id", id)
		return nil, common.WithReason(common.ErrorUnauthorized, "incorrect password")
	}

	account, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.internal(ctx, "profile fetch failed", err, "account_id", id)
	}

	return s.openSession(ctx, account.Profile())
}

// EditProfile applies the present fields of patch and opens a fresh session
// reflecting them. The stored row is read, checked and written in one
// serializable transaction so that the min/max checks see what they update.
// The transaction is retried on serialization failures.
func (s *AccountService) EditProfile(ctx context.Context, accountID string, patch *models.ProfilePatch) (*Session, error) {
	upd, fieldViolations := patchFields(patch)

	if err := s.issuer.Ready(); err != nil {
		return nil, s.internal(ctx, "profile edit refused", err)
	}

	var updated *models.Account
	err := dbx.RetryTx(ctx, s.db, dbx.Serializable, dbx.TxAttempts, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Accounts(tx)

		stored, err := repo.GetByID(ctx, accountID)
		if err != nil {
			return err
		}

		violations := append([]common.Violation(nil), fieldViolations...)
		pace, bad := validation.PacePair.CheckPartial(patch.MinPace, patch.MaxPace, stored.MinPace, stored.MaxPace)
		violations = append(violations, bad...)
		dist, bad := validation.DistancePair.CheckPartial(patch.MinDistPref, patch.MaxDistPref, stored.MinDistPref, stored.MaxDistPref)
		violations = append(violations, bad...)

		if err := common.NewValidationError(violations); err != nil {
			return err
		}
		upd.MinPace, upd.MaxPace = pace.Min, pace.Max
		upd.MinDistPref, upd.MaxDistPref = dist.Min, dist.Max

		if upd.Email != nil {
			exists, err := repo.EmailExists(ctx, *upd.Email, accountID)
			if err != nil {
				return err
			}
			if exists {
				return common.WithReason(common.ErrorConflict, "email already registered")
			}
		}

		updated, err = repo.Update(ctx, accountID, upd)
		return err
	})
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorValidation):
			return nil, err
		case errors.Is(err, common.ErrorConflict):
			return nil, common.WithReason(common.ErrorConflict, "email already registered")
		case errors.Is(err, common.ErrorNotFound):
			return nil, common.WithReason(common.ErrorNotFound, "account not found")
		case dbx.IsSerializationFailure(err):
			return nil, s.contended(ctx, "profile update contended", err, accountID)
		}
		return nil, s.internal(ctx, "profile update failed", err, "account_id", accountID)
	}

	s.logger.Info(ctx, "profile updated", "account_id", accountID)
	return s.openSession(ctx, updated.Profile())
}

// patchFields validates the non-preference fields of patch independently of
// each other and of storage.
func patchFields(patch *models.ProfilePatch) (*models.AccountUpdate, []common.Violation) {
	var (
		v   []common.Violation
		upd = &models.AccountUpdate{}
	)

	name := func(field string, o models.Optional[string]) *string {
		if !o.Set {
			return nil
		}
		if o.Value == nil {
			v = append(v, common.Violation{Field: field, Message: "is required"})
			return nil
		}
		value := strings.TrimSpace(*o.Value)
		v = append(v, validation.Name(field, value)...)
		return &value
	}
	upd.FirstName = name("first_name", patch.FirstName)
	upd.LastName = name("last_name", patch.LastName)

	if patch.MiddleInitial.Set {
		value := ""
		if patch.MiddleInitial.Value != nil {
			value = strings.TrimSpace(*patch.MiddleInitial.Value)
		}
		v = append(v, validation.MiddleInitial(value)...)
		upd.MiddleInitial = &value
	}

	if patch.Email.Set {
		value := ""
		if patch.Email.Value != nil {
			value = validation.NormalizeEmail(*patch.Email.Value)
		}
		v = append(v, validation.Email(value)...)
		upd.Email = &value
	}

	return upd, v
}

// ChangePassword replaces the stored hash. The checks run in this order: new
// password length, new differs from old, old verifies, new matches no other
// account's password. The session token is not re-issued.
func (s *AccountService) ChangePassword(ctx context.Context, accountID, oldPassword, newPassword string) error {
	violations := validation.Password("new_password", newPassword)
	if violations == nil && newPassword == oldPassword {
		violations = append(violations, common.Violation{Field: "new_password", Message: "must differ from old_password"})
	}
	if err := common.NewValidationError(violations); err != nil {
		return err
	}

	err := dbx.RetryTx(ctx, s.db, dbx.Serializable, dbx.TxAttempts, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Accounts(tx)

		stored, err := repo.GetByID(ctx, accountID)
		if err != nil {
			return err
		}
		if !s.hasher.Verify(stored.PasswordHash, oldPassword) {
			return common.WithReason(common.ErrorUnauthorized, "incorrect password")
		}

		others, err := repo.OtherPasswordHashes(ctx, accountID)
		if err != nil {
			return err
		}
		for _, h := range others {
			if s.hasher.Verify(h, newPassword) {
				return common.WithReason(common.ErrorConflict, "password already in use")
			}
		}

		hash, err := s.hasher.Hash(newPassword)
		if err != nil {
			return err
		}
		return repo.SetPasswordHash(ctx, accountID, hash)
	})
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorUnauthorized), errors.Is(err, common.ErrorConflict):
			return err
		case errors.Is(err, common.ErrorNotFound):
			return common.WithReason(common.ErrorNotFound, "account not found")
		case dbx.IsSerializationFailure(err):
			return s.contended(ctx, "password change contended", err, accountID)
		}
		return s.internal(ctx, "password change failed", err, "account_id", accountID)
	}

	s.logger.Info(ctx, "password changed", "account_id", accountID)
	return nil
}

func (s *AccountService) openSession(ctx context.Context, p *models.Profile) (*Session, error) {
	token, err := s.issuer.Issue(p)
	if err != nil {
		return nil, s.internal(ctx, "token issue failed", err, "account_id", p.ID)
	}
	return &Session{Token: token, Profile: p}, nil
}

// internal logs cause and returns an error that hides it. Configuration
// errors keep their identity so the transport can tell them apart.
func (s *AccountService) internal(ctx context.Context, msg string, cause error, args ...any) error {
	s.logger.Error(ctx, msg, append(args, "error", cause.Error())...)
	if errors.Is(cause, common.ErrConfiguration) {
		return common.ErrConfiguration
	}
	return fmt.Errorf("%w: %s", common.ErrorInternal, msg)
}

// contended reports a transaction that kept losing serialization races
// after every retry. The client may simply try again.
func (s *AccountService) contended(ctx context.Context, msg string, cause error, accountID string) error {
	s.logger.Warn(ctx, msg, "account_id", accountID, "attempts", dbx.TxAttempts, "error", cause.Error())
	return common.WithReason(common.ErrorConflict, "concurrent update, try again")
}

// Package service provides the business logic of the idea hub: the vault
// password lifecycle and the idea, AI tool, backup and assist operations,
// delegating persistence to repository interfaces.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/alexandercyber0x0/Idea-Hub-1/internal/crypto"
	"github.com/alexandercyber0x0/Idea-Hub-1/internal/models"
	"github.com/alexandercyber0x0/Idea-Hub-1/internal/passwords"
	"go.uber.org/zap"
)

// MinPasswordLength is the shortest password Setup and Change accept.
const MinPasswordLength = 6

var (
	// ErrPasswordTooShort is returned when a new password is shorter than
	// MinPasswordLength characters.
	ErrPasswordTooShort = errors.New("password must be at least 6 characters")
	// ErrWrongPassword is returned when the current password does not verify.
	ErrWrongPassword = errors.New("incorrect current password")
	// ErrAlreadySetup is returned by Setup when a password already exists.
	ErrAlreadySetup = errors.New("password is already set up")
	// ErrNotSetup is returned by Change when no password exists yet.
	ErrNotSetup = errors.New("password is not set up")
)

// Reencrypter rewrites every stored envelope from one password to another.
// Implementations run the rewrite in a transaction and call commit before
// committing it; if commit fails nothing is rewritten.
type Reencrypter interface {
	Reencrypt(ctx context.Context, from, to *crypto.Session, commit func(context.Context) error) error
}

// AuthService implements the password lifecycle:
// Uninitialized -> Setup -> Active -> Reset -> Uninitialized, with Change
// keeping the service Active. Every write is serialised by a mutex; reads are
// fail-closed, so a missing or corrupt record never verifies.
type AuthService struct {
	// store persists the single password record.
	store passwords.PasswordStore
	// pool bounds concurrent PBKDF2 work.
	pool *crypto.Pool
	// reenc migrates stored data on Change; nil leaves old envelopes as they are.
	reenc Reencrypter
	log   *zap.Logger

	mu  sync.Mutex
	now func() time.Time
}

// NewAuthService constructs an AuthService. reenc may be nil.
func NewAuthService(store passwords.PasswordStore, pool *crypto.Pool, reenc Reencrypter, log *zap.Logger) *AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthService{
		store: store,
		pool:  pool,
		reenc: reenc,
		log:   log,
		now:   time.Now,
	}
}

func validPassword(password string) bool {
	return utf8.RuneCountInString(password) >= MinPasswordLength
}

// load returns the record when it exists and is well formed. Any other
// outcome is reported as "no record" and logged.
func (s *AuthService) load(ctx context.Context) (*models.PasswordRecord, bool) {
	rec, err := s.store.Load(ctx)
	switch {
	case errors.Is(err, passwords.ErrNotFound):
		return nil, false
	case err != nil:
		s.log.Warn("failed to load password record", zap.Error(err))
		return nil, false
	case rec.PasswordHash == "":
		s.log.Warn("password record has no hash")
		return nil, false
	}
	return rec, true
}

func (s *AuthService) newRecord(ctx context.Context, password string) (*models.PasswordRecord, error) {
	var (
		hash string
		err  error
	)
	if perr := s.pool.Do(ctx, func() { hash, err = crypto.HashPassword(password) }); perr != nil {
		return nil, perr
	}
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	now := s.now().UTC()
	return &models.PasswordRecord{PasswordHash: hash, CreatedAt: now, LastAccessed: now}, nil
}

func (s *AuthService) verify(ctx context.Context, rec *models.PasswordRecord, password string) bool {
	var ok bool
	if err := s.pool.Do(ctx, func() { ok = crypto.VerifyPassword(password, rec.PasswordHash) }); err != nil {
		s.log.Debug("password verification cancelled", zap.Error(err))
		return false
	}
	return ok
}

// Setup stores the first password. It refuses to overwrite an existing one;
// a record that exists but cannot be parsed counts as absent.
func (s *AuthService) Setup(ctx context.Context, password string) error {
	if !validPassword(password) {
		return ErrPasswordTooShort
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.store.Load(ctx)
	switch {
	case err == nil && rec.PasswordHash != "":
		return ErrAlreadySetup
	case err != nil && !errors.Is(err, passwords.ErrNotFound) && !errors.Is(err, passwords.ErrCorrupt):
		return fmt.Errorf("load password record: %w", err)
	}

	return s.save(ctx, password)
}

// ForceSetup stores password whatever the current state. Data sealed under a
// previous password becomes unreadable. Only the local operator CLI calls it.
func (s *AuthService) ForceSetup(ctx context.Context, password string) error {
	if !validPassword(password) {
		return ErrPasswordTooShort
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.log.Warn("overwriting password record")
	return s.save(ctx, password)
}

func (s *AuthService) save(ctx context.Context, password string) error {
	rec, err := s.newRecord(ctx, password)
	if err != nil {
		return err
	}
	if err := s.store.Save(ctx, rec); err != nil {
		return fmt.Errorf("save password record: %w", err)
	}
	s.log.Info("password set up")
	return nil
}

// Verify reports whether password matches the stored record. It never
// mutates the record.
func (s *AuthService) Verify(ctx context.Context, password string) bool {
	rec, ok := s.load(ctx)
	if !ok {
		return false
	}
	return s.verify(ctx, rec, password)
}

// Change replaces the password after checking the current one. When a
// Reencrypter is configured every stored envelope is rewritten under the new
// password in the same step; if the new record cannot be saved the rewrite is
// rolled back. Without one, data sealed under the old password stays sealed
// under it.
func (s *AuthService) Change(ctx context.Context, current, next string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.load(ctx)
	if !ok {
		return ErrNotSetup
	}
	if !s.verify(ctx, old, current) {
		return ErrWrongPassword
	}
	if !validPassword(next) {
		return ErrPasswordTooShort
	}

	rec, err := s.newRecord(ctx, next)
	if err != nil {
		return err
	}

	if s.reenc == nil {
		if err := s.store.Save(ctx, rec); err != nil {
			return fmt.Errorf("save password record: %w", err)
		}
		s.log.Info("password changed")
		return nil
	}

	from := crypto.NewSession(current, s.pool)
	defer from.Close()
	to := crypto.NewSession(next, s.pool)
	defer to.Close()

	saved := false
	err = s.reenc.Reencrypt(ctx, from, to, func(ctx context.Context) error {
		if err := s.store.Save(ctx, rec); err != nil {
			return fmt.Errorf("save password record: %w", err)
		}
		saved = true
		return nil
	})
	if err != nil {
		if saved {
			// The rewrite did not commit, so the data is still sealed under
			// the old password.
			if rerr := s.store.Save(ctx, old); rerr != nil {
				s.log.Error("failed to restore password record", zap.Error(rerr))
			}
		}
		return fmt.Errorf("re-encrypt stored data: %w", err)
	}

	s.log.Info("password changed and data re-encrypted")
	return nil
}

// Reset deletes the record unconditionally. Callers exposing it remotely
// must check the current password first.
func (s *AuthService) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Delete(ctx); err != nil {
		return fmt.Errorf("delete password record: %w", err)
	}
	s.log.Info("password reset")
	return nil
}

// IsSetup reports whether a well-formed record exists.
func (s *AuthService) IsSetup(ctx context.Context) bool {
	_, ok := s.load(ctx)
	return ok
}

// Info returns the public view of the record.
func (s *AuthService) Info(ctx context.Context) models.SecurityInfo {
	rec, ok := s.load(ctx)
	if !ok {
		return models.SecurityInfo{}
	}
	created, accessed := rec.CreatedAt, rec.LastAccessed
	return models.SecurityInfo{IsSetup: true, CreatedAt: &created, LastAccessed: &accessed}
}

// Touch records a successful access. Failures are logged and ignored.
func (s *AuthService) Touch(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.load(ctx)
	if !ok {
		return
	}
	rec.LastAccessed = s.now().UTC()
	if err := s.store.Save(ctx, rec); err != nil {
		s.log.Debug("failed to update last access time", zap.Error(err))
	}
}

// NewSession opens a key session for a verified password.
func (s *AuthService) NewSession(password string) *crypto.Session {
	return crypto.NewSession(password, s.pool)
}

// Package service implements the authentication core: registration,
// password and Google sign-in, access/refresh token issuing and the
// single-use refresh rotation protocol. Handlers stay thin; every policy
// decision (account state, credential collapse, rotation atomicity) lives
// here, behind narrow store interfaces so the logic is testable without a
// database.
package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/ovotrack/auth-service/internal/config"
	"github.com/ovotrack/auth-service/internal/identity"
	"github.com/ovotrack/auth-service/internal/model"
	"github.com/ovotrack/auth-service/internal/queue"
	"github.com/ovotrack/auth-service/internal/repository"
	"github.com/ovotrack/auth-service/internal/utils"
)

// UserStore is the persistence surface the auth flows need from the users
// table. *repository.UserRepo satisfies it; tests use an in-memory fake.
type UserStore interface {
	Create(ctx context.Context, email, passwordHash, googleSub string) (uint64, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
	GetByGoogleSub(ctx context.Context, sub string) (model.User, error)
	UpdateEmail(ctx context.Context, id uint64, email string) error
	AttachGoogleSub(ctx context.Context, id uint64, sub string) error
}

// TokenStore is the persistence surface for refresh tokens. Consume must be
// a conditional revoke (flip only if still unrevoked, report whether this
// call won); *repository.TokenRepo implements it as a single UPDATE.
type TokenStore interface {
	StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error
	FindByHash(ctx context.Context, tokenHash string) (model.RefreshToken, error)
	Consume(ctx context.Context, id uint64) (bool, error)
	RevokeByHash(ctx context.Context, tokenHash string) error
	RevokeAllForUser(ctx context.Context, userID uint64) error
}

// AssertionVerifier checks a Google ID token's signature and audience.
type AssertionVerifier interface {
	Verify(ctx context.Context, raw string) (identity.Claims, error)
}

// Publisher delivers auth activity events. Publishing is best-effort: a
// broker outage must never fail an authentication request.
type Publisher interface {
	Publish(ctx context.Context, event queue.AuthEvent) error
}

// TokenPair bundles a freshly minted access token with the refresh secret
// issued alongside it. The two are always produced together: the refresh
// row is persisted before the pair is returned, so a caller never holds an
// access token without a matching stored refresh credential.
type TokenPair struct {
	Access         utils.AccessToken
	RefreshSecret  string
	RefreshExpires time.Time
}

// AuthService composes the credential, token and identity components into
// the user-facing operations.
type AuthService struct {
	cfg      config.Config
	users    UserStore
	tokens   TokenStore
	verifier AssertionVerifier
	events   Publisher // optional; nil disables activity events
}

// NewAuthService wires the orchestrator. verifier may be nil when Google
// sign-in is disabled; events may be nil when no broker is configured.
func NewAuthService(cfg config.Config, users UserStore, tokens TokenStore, verifier AssertionVerifier, events Publisher) *AuthService {
	return &AuthService{cfg: cfg, users: users, tokens: tokens, verifier: verifier, events: events}
}

// Register creates a password account. Uniqueness is enforced by the store's
// unique email constraint, not by a lookup, so two concurrent registrations
// for one address cannot both succeed.
func (s *AuthService) Register(ctx context.Context, email, password string) (model.User, error) {
	email = normalizeEmail(email)
	hash, err := utils.HashPassword(password, s.cfg.BcryptCost)
	if err != nil {
		return model.User{}, err
	}
	id, err := s.users.Create(ctx, email, hash, "")
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return model.User{}, ErrEmailTaken
		}
		return model.User{}, err
	}
	u := model.User{ID: id, Email: email, PasswordHash: hash, IsActive: true}
	s.publish(ctx, queue.EventUserRegistered, u)
	return u, nil
}

// PasswordLogin verifies email+password and issues a token pair. Every
// failure mode collapses into ErrInvalidCredentials; the bcrypt comparison
// still runs only when a hash exists, everything else is indistinguishable
// to the caller.
func (s *AuthService) PasswordLogin(ctx context.Context, email, password string) (model.User, TokenPair, error) {
	u, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, TokenPair{}, ErrInvalidCredentials
		}
		return model.User{}, TokenPair{}, err
	}
	if !u.IsActive || !u.HasPassword() || !utils.VerifyPassword(u.PasswordHash, password) {
		return model.User{}, TokenPair{}, ErrInvalidCredentials
	}
	pair, err := s.IssueTokens(ctx, u.ID)
	if err != nil {
		return model.User{}, TokenPair{}, err
	}
	s.publish(ctx, queue.EventPasswordLogin, u)
	return u, pair, nil
}

// FederatedLogin verifies a Google ID token, maps it onto a local account
// (creating or linking as needed) and issues a token pair.
func (s *AuthService) FederatedLogin(ctx context.Context, rawToken string) (model.User, TokenPair, error) {
	if s.verifier == nil {
		return model.User{}, TokenPair{}, ErrGoogleTokenInvalid
	}
	claims, err := s.verifier.Verify(ctx, rawToken)
	if err != nil {
		return model.User{}, TokenPair{}, ErrGoogleTokenInvalid
	}
	if claims.Subject == "" || claims.Email == "" {
		return model.User{}, TokenPair{}, ErrGoogleClaimsMissing
	}
	// Only an explicit false rejects; an absent flag is acceptable.
	if claims.EmailVerified != nil && !*claims.EmailVerified {
		return model.User{}, TokenPair{}, ErrGoogleEmailUnverified
	}

	u, err := s.linkOrCreate(ctx, claims)
	if err != nil {
		return model.User{}, TokenPair{}, err
	}
	pair, err := s.IssueTokens(ctx, u.ID)
	if err != nil {
		return model.User{}, TokenPair{}, err
	}
	s.publish(ctx, queue.EventGoogleLogin, u)
	return u, pair, nil
}

// linkOrCreate maps verified Google claims onto a local account, in strict
// order: by subject (Google is authoritative for email changes), then by
// email (attach the subject to an existing password account), then a fresh
// passwordless account. The loop runs twice so that losing a creation race
// falls through to the lookup paths instead of failing.
func (s *AuthService) linkOrCreate(ctx context.Context, claims identity.Claims) (model.User, error) {
	email := normalizeEmail(claims.Email)

	for attempt := 0; attempt < 2; attempt++ {
		u, err := s.users.GetByGoogleSub(ctx, claims.Subject)
		switch {
		case err == nil:
			if !u.IsActive {
				return model.User{}, ErrInactiveAccount
			}
			if u.Email != email {
				if err := s.users.UpdateEmail(ctx, u.ID, email); err != nil {
					if errors.Is(err, repository.ErrEmailExists) {
						return model.User{}, ErrEmailTaken
					}
					return model.User{}, err
				}
				u.Email = email
			}
			return u, nil
		case !errors.Is(err, sql.ErrNoRows):
			return model.User{}, err
		}

		u, err = s.users.GetByEmail(ctx, email)
		switch {
		case err == nil:
			if !u.IsActive {
				return model.User{}, ErrInactiveAccount
			}
			// Same email but a different Google identity already linked:
			// refuse rather than silently rebind the account.
			if u.GoogleSub != "" && u.GoogleSub != claims.Subject {
				return model.User{}, ErrEmailTaken
			}
			if u.GoogleSub == "" {
				if err := s.users.AttachGoogleSub(ctx, u.ID, claims.Subject); err != nil {
					if errors.Is(err, repository.ErrGoogleSubExists) {
						continue // raced with another login for this subject
					}
					return model.User{}, err
				}
				u.GoogleSub = claims.Subject
			}
			return u, nil
		case !errors.Is(err, sql.ErrNoRows):
			return model.User{}, err
		}

		id, err := s.users.Create(ctx, email, "", claims.Subject)
		if err != nil {
			if errors.Is(err, repository.ErrEmailExists) || errors.Is(err, repository.ErrGoogleSubExists) {
				continue // created concurrently; re-run the lookups
			}
			return model.User{}, err
		}
		return model.User{ID: id, Email: email, GoogleSub: claims.Subject, IsActive: true}, nil
	}
	return model.User{}, ErrEmailTaken
}

// Refresh exchanges a refresh secret for a new token pair, revoking the
// presented credential. The conditional Consume is the linchpin: of any
// number of concurrent rotations presenting the same secret, exactly one
// passes it; the rest observe the row as already revoked and fail.
func (s *AuthService) Refresh(ctx context.Context, presentedSecret string) (model.User, TokenPair, error) {
	rec, err := s.tokens.FindByHash(ctx, utils.HashRefreshSecret(presentedSecret))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, TokenPair{}, ErrInvalidToken
		}
		return model.User{}, TokenPair{}, err
	}
	if rec.Revoked {
		return model.User{}, TokenPair{}, ErrInvalidToken
	}
	if !rec.ExpiresAt.After(time.Now().UTC()) {
		return model.User{}, TokenPair{}, ErrTokenExpired
	}

	won, err := s.tokens.Consume(ctx, rec.ID)
	if err != nil {
		return model.User{}, TokenPair{}, err
	}
	if !won {
		return model.User{}, TokenPair{}, ErrInvalidToken
	}

	u, err := s.users.GetByID(ctx, rec.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, TokenPair{}, ErrInvalidToken
		}
		return model.User{}, TokenPair{}, err
	}
	if !u.IsActive {
		// The spent credential stays revoked; a disabled account gets the
		// same opaque failure as an unknown one.
		return model.User{}, TokenPair{}, ErrInvalidToken
	}

	pair, err := s.IssueTokens(ctx, u.ID)
	if err != nil {
		return model.User{}, TokenPair{}, err
	}
	s.publish(ctx, queue.EventTokenRefreshed, u)
	return u, pair, nil
}

// WhoAmI loads the account behind a verified access token subject.
func (s *AuthService) WhoAmI(ctx context.Context, userID uint64) (model.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, ErrInvalidToken
		}
		return model.User{}, err
	}
	if !u.IsActive {
		return model.User{}, ErrInactiveAccount
	}
	return u, nil
}

// Logout revokes the single session behind a refresh secret.
func (s *AuthService) Logout(ctx context.Context, presentedSecret string) error {
	hash := utils.HashRefreshSecret(presentedSecret)
	rec, err := s.tokens.FindByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrInvalidToken
		}
		return err
	}
	if !rec.Usable(time.Now().UTC()) {
		return ErrInvalidToken
	}
	if err := s.tokens.RevokeByHash(ctx, hash); err != nil {
		return err
	}
	s.publish(ctx, queue.EventLogout, model.User{ID: rec.UserID})
	return nil
}

// LogoutAll revokes every outstanding refresh token of a user, ending all
// sessions across devices.
func (s *AuthService) LogoutAll(ctx context.Context, userID uint64) error {
	if err := s.tokens.RevokeAllForUser(ctx, userID); err != nil {
		return err
	}
	s.publish(ctx, queue.EventLogout, model.User{ID: userID})
	return nil
}

// IssueTokens mints one access token and one refresh credential for the
// account. The refresh row is stored before anything is returned.
func (s *AuthService) IssueTokens(ctx context.Context, userID uint64) (TokenPair, error) {
	secret, err := utils.NewRefreshSecret(s.cfg.RefreshTTLDays)
	if err != nil {
		return TokenPair{}, err
	}
	if err := s.tokens.StoreRefresh(ctx, userID, utils.HashRefreshSecret(secret.Raw), secret.Exp); err != nil {
		return TokenPair{}, err
	}
	access, err := utils.NewAccessToken(s.cfg.JWTSecret, s.cfg.JWTAlg, userID, s.cfg.AccessTTLMin)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{Access: access, RefreshSecret: secret.Raw, RefreshExpires: secret.Exp}, nil
}

func (s *AuthService) publish(ctx context.Context, eventType string, u model.User) {
	if s.events == nil {
		return
	}
	// Best-effort; the publisher logs its own failures.
	_ = s.events.Publish(ctx, queue.AuthEvent{
		Type:   eventType,
		UserID: u.ID,
		Email:  u.Email,
		At:     time.Now().UTC(),
	})
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

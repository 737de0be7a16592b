package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/techy-Nik/assignment-13/internal/auth"
	"github.com/techy-Nik/assignment-13/internal/domain"
	"github.com/techy-Nik/assignment-13/internal/event"
	"github.com/techy-Nik/assignment-13/internal/repository"
	apperrors "github.com/techy-Nik/assignment-13/pkg/errors"
	"github.com/techy-Nik/assignment-13/pkg/middleware"
)

// minPasswordLength is the minimum password length required.
const minPasswordLength = 8

// invalidCredentials is the single message returned for every login
// failure. Unknown username and wrong password are indistinguishable to
// the caller.
const invalidCredentials = "Invalid credentials"

// AuthService implements the business logic for registration, login,
// token refresh with rotation, logout, and request authentication.
type AuthService struct {
	userRepo    repository.UserRepository
	revocations repository.RevocationStore
	codec       *auth.Codec
	hasher      *auth.Hasher
	producer    *event.Producer
	logger      *slog.Logger

	// decoyHash is compared against when login hits an unknown username,
	// so both failure paths cost one bcrypt comparison.
	decoyHash string

	now func() time.Time
}

// NewAuthService creates a new auth service.
func NewAuthService(
	userRepo repository.UserRepository,
	revocations repository.RevocationStore,
	codec *auth.Codec,
	hasher *auth.Hasher,
	producer *event.Producer,
	logger *slog.Logger,
) (*AuthService, error) {
	decoy, err := hasher.Hash(uuid.New().String())
	if err != nil {
		return nil, fmt.Errorf("precompute decoy hash: %w", err)
	}

	return &AuthService{
		userRepo:    userRepo,
		revocations: revocations,
		codec:       codec,
		hasher:      hasher,
		producer:    producer,
		logger:      logger,
		decoyHash:   decoy,
		now:         func() time.Time { return time.Now().UTC() },
	}, nil
}

// RegisterInput holds the parameters for registering a new user.
type RegisterInput struct {
	Username string
	Password string
}

// LoginInput holds the parameters for user login.
type LoginInput struct {
	Username string
	Password string
}

// Register creates a new user account, hashes the password, and returns
// the user along with a freshly minted token pair.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, *domain.TokenPair, error) {
	username := normalizeUsername(input.Username)
	if username == "" {
		return nil, nil, apperrors.InvalidInput("username is required")
	}
	if err := validatePassword(input.Password); err != nil {
		return nil, nil, err
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	user := &domain.User{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, nil, fmt.Errorf("create user: %w", err)
	}

	tokens, err := s.mintPair(user.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("generate tokens: %w", err)
	}

	// Publish registration event (non-blocking on failure).
	if err := s.producer.PublishUserRegistered(ctx, user); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.registered event",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "user registered",
		slog.String("user_id", user.ID),
		slog.String("username", user.Username),
	)

	return user, tokens, nil
}

// Login authenticates a user with username and password, returning tokens.
// All failure paths return the same message and cost one bcrypt comparison,
// so callers cannot probe which usernames exist.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*domain.User, *domain.TokenPair, error) {
	username := normalizeUsername(input.Username)
	if username == "" || input.Password == "" {
		return nil, nil, apperrors.Unauthorized(invalidCredentials)
	}

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			// A store failure is not an authentication verdict.
			return nil, nil, fmt.Errorf("get user by username: %w", err)
		}
		// Burn a comparison against the decoy hash so the timing matches
		// the wrong-password path.
		_, _ = s.hasher.Verify(input.Password, s.decoyHash)
		return nil, nil, apperrors.Unauthorized(invalidCredentials)
	}

	ok, err := s.hasher.Verify(input.Password, user.PasswordHash)
	if err != nil {
		return nil, nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return nil, nil, apperrors.Unauthorized(invalidCredentials)
	}

	tokens, err := s.mintPair(user.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("generate tokens: %w", err)
	}

	// Publish login event (non-blocking on failure).
	if err := s.producer.PublishUserLoggedIn(ctx, user.ID); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.logged_in event",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "user logged in",
		slog.String("user_id", user.ID),
	)

	return user, tokens, nil
}

// Refresh validates a refresh token, revokes it, and mints a new pair.
// Revocation of the presented token and minting of its replacement form a
// single rotation: of any number of concurrent refreshes with the same
// token, exactly one wins, because only one caller's Revoke creates the
// revocation record.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	if refreshToken == "" {
		return nil, apperrors.InvalidInput("refresh token is required")
	}

	token, err := s.codec.Verify(refreshToken, auth.ClassRefresh)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid or expired refresh token")
	}

	revoked, err := s.revocations.IsRevoked(ctx, token.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, apperrors.Unauthorized("refresh token has been revoked")
	}

	created, err := s.revocations.Revoke(ctx, token.ID, s.revocationTTL(token))
	if err != nil {
		return nil, err
	}
	if !created {
		// Another rotation of the same token got there first.
		return nil, apperrors.Unauthorized("refresh token has been revoked")
	}

	tokens, err := s.mintPair(token.Subject)
	if err != nil {
		return nil, fmt.Errorf("generate tokens: %w", err)
	}

	s.logger.InfoContext(ctx, "tokens refreshed",
		slog.String("user_id", token.Subject),
	)

	return tokens, nil
}

// Logout revokes both tokens of a session for their remaining lifetimes.
// Logging out twice with the same tokens succeeds; only tokens that still
// verify are revoked.
func (s *AuthService) Logout(ctx context.Context, accessToken, refreshToken string) error {
	var subject string

	if access, err := s.codec.Verify(accessToken, auth.ClassAccess); err == nil {
		subject = access.Subject
		if _, err := s.revocations.Revoke(ctx, access.ID, s.revocationTTL(access)); err != nil {
			return err
		}
	}

	if refresh, err := s.codec.Verify(refreshToken, auth.ClassRefresh); err == nil {
		subject = refresh.Subject
		if _, err := s.revocations.Revoke(ctx, refresh.ID, s.revocationTTL(refresh)); err != nil {
			return err
		}
	}

	if subject == "" {
		// Neither token verifies. Nothing to revoke; treat as logged out.
		return nil
	}

	// Publish logout event (non-blocking on failure).
	if err := s.producer.PublishUserLoggedOut(ctx, subject); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.logged_out event",
			slog.String("user_id", subject),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "user logged out",
		slog.String("user_id", subject),
	)

	return nil
}

// Authenticate verifies an access token and checks it against the
// revocation store. A store failure is returned as-is (a 503) rather than
// being treated as not-revoked: the guard fails closed.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*middleware.Principal, error) {
	token, err := s.codec.Verify(accessToken, auth.ClassAccess)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid or expired access token")
	}

	revoked, err := s.revocations.IsRevoked(ctx, token.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, apperrors.Unauthorized("access token has been revoked")
	}

	return &middleware.Principal{
		Subject: token.Subject,
		TokenID: token.ID,
	}, nil
}

// GetProfile retrieves a user by their ID.
func (s *AuthService) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user profile: %w", err)
	}
	return user, nil
}

// revocationTTL returns how long a revocation record for the token must
// live. The codec's clock leeway is added on top of the nominal remaining
// lifetime: a token just past exp still verifies within the leeway window,
// so the record (and the SET NX arbitration it carries) must cover it.
func (s *AuthService) revocationTTL(token *auth.Token) time.Duration {
	return token.Remaining(s.now()) + s.codec.Leeway()
}

// mintPair mints a matched access and refresh token for the subject.
func (s *AuthService) mintPair(subject string) (*domain.TokenPair, error) {
	access, _, err := s.codec.Mint(subject, auth.ClassAccess)
	if err != nil {
		return nil, fmt.Errorf("mint access token: %w", err)
	}

	refresh, _, err := s.codec.Mint(subject, auth.ClassRefresh)
	if err != nil {
		return nil, fmt.Errorf("mint refresh token: %w", err)
	}

	return domain.NewTokenPair(access, refresh), nil
}

// normalizeUsername lowercases and trims the username so lookups are
// case-insensitive.
func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// validatePassword checks that the password meets minimum complexity
// requirements.
func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return apperrors.InvalidInput(fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	var hasLetter, hasDigit bool
	for _, ch := range password {
		switch {
		case unicode.IsLetter(ch):
			hasLetter = true
		case unicode.IsDigit(ch):
			hasDigit = true
		}
	}

	if !hasLetter || !hasDigit {
		return apperrors.InvalidInput("password must contain at least one letter and one digit")
	}

	return nil
}

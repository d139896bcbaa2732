package auth

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fastygo/sessionauth/domain"
	"github.com/fastygo/sessionauth/internal/credentials"
	"github.com/fastygo/sessionauth/internal/session"
	"github.com/fastygo/sessionauth/repository"
)

// CookieSource reads a request cookie by name. *fasthttp.RequestHeader
// satisfies it.
type CookieSource interface {
	Cookie(name string) []byte
}

// UseCase orchestrates registration, login, logout and identity lookups.
type UseCase struct {
	users      repository.UserRepository
	sessions   session.Store
	cookieName string
	logger     *zap.Logger
}

// New builds the authenticator. sessions may be nil for deployments without
// session authentication; session operations then always fail.
func New(users repository.UserRepository, sessions session.Store, cookieName string, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:      users,
		sessions:   sessions,
		cookieName: cookieName,
		logger:     logger,
	}
}

// CookieName returns the configured session cookie name.
func (uc *UseCase) CookieName() string {
	return uc.cookieName
}

// Register stores a new user with a hashed password.
func (uc *UseCase) Register(ctx context.Context, email, password string) (*domain.User, error) {
	if email == "" || password == "" {
		return nil, domain.ErrInvalidPayload
	}
	existing, err := uc.users.Find(ctx, repository.UserFilter{Email: email})
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "looking up user", err)
	}
	if len(existing) > 0 {
		return nil, domain.ErrEmailTaken
	}

	digest, err := credentials.HashPassword(password)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInvalid, "hashing password", err)
	}
	user := &domain.User{Email: email, HashedPassword: digest}
	if err := uc.users.Create(ctx, user); err != nil {
		return nil, err
	}
	uc.logger.Info("user registered", zap.String("user_id", user.ID))
	return user, nil
}

// Authenticate returns the user owning email if password matches.
func (uc *UseCase) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}
	users, err := uc.users.Find(ctx, repository.UserFilter{Email: email})
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "looking up user", err)
	}
	if len(users) == 0 || !credentials.VerifyPassword(password, users[0].HashedPassword) {
		return nil, domain.ErrInvalidCredentials
	}
	return &users[0], nil
}

// Login verifies the credentials and opens a session for the user.
func (uc *UseCase) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	user, err := uc.Authenticate(ctx, email, password)
	if err != nil {
		return "", nil, err
	}
	if uc.sessions == nil {
		return "", nil, domain.ErrSessionNotCreated
	}
	sessionID, ok := uc.sessions.CreateSession(ctx, user.ID)
	if !ok {
		uc.logger.Warn("session not created", zap.String("user_id", user.ID))
		return "", nil, domain.ErrSessionNotCreated
	}
	uc.logger.Info("user logged in", zap.String("user_id", user.ID))
	return sessionID, user, nil
}

// SessionToken extracts the session id from the request cookies.
func (uc *UseCase) SessionToken(cookies CookieSource) (string, bool) {
	if cookies == nil || uc.cookieName == "" {
		return "", false
	}
	token := strings.TrimSpace(string(cookies.Cookie(uc.cookieName)))
	if token == "" {
		return "", false
	}
	return token, true
}

// CurrentUser resolves the user id of the session carried by cookies.
func (uc *UseCase) CurrentUser(ctx context.Context, cookies CookieSource) (string, bool) {
	token, ok := uc.SessionToken(cookies)
	if !ok || uc.sessions == nil {
		return "", false
	}
	return uc.sessions.Resolve(ctx, token)
}

// Logout destroys the session carried by cookies.
func (uc *UseCase) Logout(ctx context.Context, cookies CookieSource) bool {
	token, ok := uc.SessionToken(cookies)
	if !ok || uc.sessions == nil {
		return false
	}
	if !uc.sessions.Destroy(ctx, token) {
		return false
	}
	uc.logger.Info("session destroyed")
	return true
}

// UserFromAuthorization authenticates an HTTP Basic Authorization header,
// where the user id part is the account email.
func (uc *UseCase) UserFromAuthorization(ctx context.Context, header string) (*domain.User, bool) {
	email, password, ok := credentials.DecodeBasic(header)
	if !ok {
		return nil, false
	}
	user, err := uc.Authenticate(ctx, email, password)
	if err != nil {
		return nil, false
	}
	return user, true
}

// UserByID loads a user record.
func (uc *UseCase) UserByID(ctx context.Context, id string) (*domain.User, error) {
	if id == "" {
		return nil, domain.ErrUserNotFound
	}
	users, err := uc.users.Find(ctx, repository.UserFilter{ID: id})
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "looking up user", err)
	}
	if len(users) == 0 {
		return nil, domain.ErrUserNotFound
	}
	return &users[0], nil
}

// ResetPasswordToken issues a one-time token allowing the password of the
// account owning email to be replaced.
func (uc *UseCase) ResetPasswordToken(ctx context.Context, email string) (string, error) {
	if email == "" {
		return "", domain.ErrInvalidPayload
	}
	users, err := uc.users.Find(ctx, repository.UserFilter{Email: email})
	if err != nil {
		return "", domain.WrapError(domain.ErrCodeInternal, "looking up user", err)
	}
	if len(users) == 0 {
		return "", domain.ErrUserNotFound
	}

	user := users[0]
	user.ResetToken = uuid.NewString()
	if err := uc.users.Update(ctx, &user); err != nil {
		return "", err
	}
	return user.ResetToken, nil
}

// UpdatePassword replaces the password of the user holding resetToken and
// invalidates the token.
func (uc *UseCase) UpdatePassword(ctx context.Context, resetToken, password string) error {
	if resetToken == "" || password == "" {
		return domain.ErrInvalidPayload
	}
	users, err := uc.users.Find(ctx, repository.UserFilter{ResetToken: resetToken})
	if err != nil {
		return domain.WrapError(domain.ErrCodeInternal, "looking up user", err)
	}
	if len(users) == 0 {
		return domain.ErrInvalidResetToken
	}

	digest, err := credentials.HashPassword(password)
	if err != nil {
		return domain.WrapError(domain.ErrCodeInvalid, "hashing password", err)
	}
	user := users[0]
	user.HashedPassword = digest
	user.ResetToken = ""
	if err := uc.users.Update(ctx, &user); err != nil {
		return err
	}
	uc.logger.Info("password updated", zap.String("user_id", user.ID))
	return nil
}

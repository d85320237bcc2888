package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/foodies/foodies-api/internal/domain"
	"github.com/foodies/foodies-api/internal/identity"
	"github.com/foodies/foodies-api/internal/repository/ports"
	"github.com/foodies/foodies-api/internal/transport/mail"
	"github.com/foodies/foodies-api/internal/util"
)

const defaultResetTTL = time.Hour

// Notifier queues an email without waiting for delivery.
type Notifier interface {
	Dispatch(to, subject, htmlBody string) error
}

type AuthServiceConfig struct {
	BcryptCost    int
	ResetTTL      time.Duration
	FrontendURL   string
	MailSignature string
}

type AuthResult struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

type AuthService struct {
	users    ports.UserRepository
	tokens   *util.JWTManager
	verifier identity.Verifier
	notifier Notifier
	logger   *zap.Logger

	bcryptCost  int
	resetTTL    time.Duration
	frontendURL string
	signature   string
	now         func() time.Time
}

func NewAuthService(
	users ports.UserRepository,
	tokens *util.JWTManager,
	verifier identity.Verifier,
	notifier Notifier,
	logger *zap.Logger,
	cfg AuthServiceConfig,
) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	cost := cfg.BcryptCost
	if cost <= 0 {
		cost = util.DefaultBcryptCost
	}
	resetTTL := cfg.ResetTTL
	if resetTTL <= 0 {
		resetTTL = defaultResetTTL
	}
	signature := strings.TrimSpace(cfg.MailSignature)
	if signature == "" {
		signature = "Bakate"
	}
	return &AuthService{
		users:       users,
		tokens:      tokens,
		verifier:    verifier,
		notifier:    notifier,
		logger:      logger,
		bcryptCost:  cost,
		resetTTL:    resetTTL,
		frontendURL: strings.TrimSpace(cfg.FrontendURL),
		signature:   signature,
		now:         time.Now,
	}
}

func (s *AuthService) Signup(ctx context.Context, username, email, password string) (*AuthResult, error) {
	username, err := validateUsername(username)
	if err != nil {
		return nil, err
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	email = normalizeEmail(email)

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailAlreadyUsed
	} else if !isNotFound(err) {
		return nil, fmt.Errorf("%w: lookup user: %v", ErrPersistence, err)
	}

	hash, err := util.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("%w: hash password: %v", ErrPersistence, err)
	}

	user, err := s.users.Create(ctx, &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Avatar:       domain.DefaultAvatarURL,
	})
	if err != nil {
		if isDuplicate(err) {
			return nil, ErrEmailAlreadyUsed
		}
		return nil, fmt.Errorf("%w: create user: %v", ErrPersistence, err)
	}

	result, err := s.issue(user)
	if err != nil {
		return nil, err
	}
	s.sendWelcome(user)
	return result, nil
}

// Login keeps "no such account" and "wrong password" apart so the client can
// steer the user to signup.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if isNotFound(err) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("%w: lookup user: %v", ErrPersistence, err)
	}
	if !util.VerifyPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return s.issue(user)
}

func (s *AuthService) LoginWithFederatedIdentity(ctx context.Context, idToken string) (*AuthResult, error) {
	if s.verifier == nil {
		return nil, ErrFederatedTokenInvalid
	}
	claims, err := s.verifier.Verify(ctx, idToken)
	if err != nil {
		s.logger.Info("federated token rejected", zap.Error(err))
		return nil, ErrFederatedTokenInvalid
	}
	if !claims.EmailVerified {
		return nil, ErrEmailUnverified
	}

	user, err := s.users.FindByEmail(ctx, claims.Email)
	if err == nil {
		return s.issue(user)
	}
	if !isNotFound(err) {
		return nil, fmt.Errorf("%w: lookup user: %v", ErrPersistence, err)
	}

	user, created, err := s.createFederatedUser(ctx, claims)
	if err != nil {
		return nil, err
	}
	result, err := s.issue(user)
	if err != nil {
		return nil, err
	}
	if created {
		s.sendWelcome(user)
	}
	return result, nil
}

func (s *AuthService) createFederatedUser(ctx context.Context, claims *domain.FederatedIdentity) (*domain.User, bool, error) {
	// The account gets a password nobody knows; it can only be used through
	// federated login or after a password reset.
	secret, err := util.RandomHex(32)
	if err != nil {
		return nil, false, fmt.Errorf("%w: random password: %v", ErrPersistence, err)
	}
	hash, err := util.HashPassword(secret, s.bcryptCost)
	if err != nil {
		return nil, false, fmt.Errorf("%w: hash password: %v", ErrPersistence, err)
	}

	username := claims.Name
	if username == "" {
		username = strings.SplitN(claims.Email, "@", 2)[0]
	}
	avatar := claims.Picture
	if avatar == "" {
		avatar = domain.DefaultAvatarURL
	}

	user, err := s.users.Create(ctx, &domain.User{
		Username:     username,
		Email:        claims.Email,
		PasswordHash: hash,
		Avatar:       avatar,
	})
	if err == nil {
		return user, true, nil
	}
	if !isDuplicate(err) {
		return nil, false, fmt.Errorf("%w: create user: %v", ErrPersistence, err)
	}
	// A concurrent login created the account first.
	existing, findErr := s.users.FindByEmail(ctx, claims.Email)
	if findErr != nil {
		return nil, false, fmt.Errorf("%w: lookup user: %v", ErrPersistence, findErr)
	}
	return existing, false, nil
}

func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	if err := validateEmail(email); err != nil {
		return err
	}
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if isNotFound(err) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("%w: lookup user: %v", ErrPersistence, err)
	}

	token, err := util.GenerateResetToken()
	if err != nil {
		return fmt.Errorf("%w: generate reset token: %v", ErrPersistence, err)
	}
	expiresAt := s.now().Add(s.resetTTL)
	if err := s.users.SetResetToken(ctx, user.ID, token, expiresAt); err != nil {
		return fmt.Errorf("%w: store reset token: %v", ErrPersistence, err)
	}

	body, err := mail.PasswordResetEmail(user.Username, mail.ResetURL(s.frontendURL, token), s.signature)
	if err != nil {
		s.logger.Error("render password reset email", zap.String("user_id", user.ID.String()), zap.Error(err))
		return nil
	}
	s.notify(user.Email, mail.PasswordResetSubject, body)
	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, token, password, confirm string) (*AuthResult, error) {
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	if password != confirm {
		return nil, fmt.Errorf("%w: passwords do not match", ErrValidation)
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrResetTokenInvalid
	}

	// Rejects unknown tokens before paying for a bcrypt hash.
	if _, err := s.users.FindByResetToken(ctx, token, s.now()); err != nil {
		if isNotFound(err) {
			return nil, ErrResetTokenInvalid
		}
		return nil, fmt.Errorf("%w: lookup reset token: %v", ErrPersistence, err)
	}

	hash, err := util.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("%w: hash password: %v", ErrPersistence, err)
	}
	user, err := s.users.ConsumeResetToken(ctx, token, s.now(), hash)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrResetTokenInvalid
		}
		return nil, fmt.Errorf("%w: consume reset token: %v", ErrPersistence, err)
	}
	return s.issue(user)
}

func (s *AuthService) Verify(ctx context.Context, token string) (*util.Claims, error) {
	claims, err := s.tokens.Parse(strings.TrimSpace(token))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	return claims, nil
}

// Authenticate verifies token and loads the user it was issued to.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.Verify(ctx, token)
	if err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: user no longer exists", ErrUnauthenticated)
		}
		return nil, fmt.Errorf("%w: lookup user: %v", ErrPersistence, err)
	}
	return user, nil
}

func (s *AuthService) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list users: %v", ErrPersistence, err)
	}
	return users, nil
}

func (s *AuthService) GetProfile(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("%w: lookup user: %v", ErrPersistence, err)
	}
	return user, nil
}

// UpdateProfile changes username and avatar. An empty avatar keeps the
// current one.
func (s *AuthService) UpdateProfile(ctx context.Context, id, requesterID uuid.UUID, username, avatar string) (*domain.User, error) {
	if id != requesterID {
		return nil, ErrForbidden
	}
	username, err := validateUsername(username)
	if err != nil {
		return nil, err
	}

	current, err := s.GetProfile(ctx, id)
	if err != nil {
		return nil, err
	}
	avatar = strings.TrimSpace(avatar)
	if avatar == "" {
		avatar = current.Avatar
	}

	updated, err := s.users.UpdateProfile(ctx, id, username, avatar)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("%w: update profile: %v", ErrPersistence, err)
	}
	return updated, nil
}

func (s *AuthService) issue(user *domain.User) (*AuthResult, error) {
	token, expiresAt, err := s.tokens.Generate(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("%w: sign token: %v", ErrPersistence, err)
	}
	return &AuthResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

func (s *AuthService) sendWelcome(user *domain.User) {
	body, err := mail.WelcomeEmail(user.Username, s.signature)
	if err != nil {
		s.logger.Error("render welcome email", zap.String("user_id", user.ID.String()), zap.Error(err))
		return
	}
	s.notify(user.Email, mail.WelcomeSubject, body)
}

func (s *AuthService) notify(to, subject, body string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Dispatch(to, subject, body); err != nil && !errors.Is(err, mail.ErrDispatcherClosed) {
		s.logger.Warn("queue email", zap.String("to", to), zap.Error(err))
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

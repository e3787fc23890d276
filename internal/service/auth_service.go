package service

import (
	"context"
	"fmt"
	"time"

	"account_api/internal/apperror"
	"account_api/internal/model"
	"account_api/internal/repository"
	"account_api/internal/utils"

	"go.uber.org/zap"
)

const (
	resetTokenTTL        = time.Hour
	verificationTokenTTL = 24 * time.Hour
)

// AuthService owns the credential lifecycle: signup, signin, password
// recovery and rotation, email verification.
type AuthService interface {
	Signup(ctx context.Context, req model.SignupRequest) (*model.User, string, error)
	Signin(ctx context.Context, email, password string) (*model.User, string, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, rawToken string, req model.ResetPasswordRequest) (*model.User, string, error)
	UpdatePassword(ctx context.Context, user *model.User, req model.UpdatePasswordRequest) (string, error)
	VerifyEmail(ctx context.Context, rawToken string) (*model.User, error)
}

type authService struct {
	userRepo repository.UserRepository
	jwtUtil  *utils.JWTUtil
	mailer   Mailer
	logger   *zap.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository, jwtUtil *utils.JWTUtil, mailer Mailer, logger *zap.Logger) AuthService {
	return &authService{
		userRepo: userRepo,
		jwtUtil:  jwtUtil,
		mailer:   mailer,
		logger:   logger,
	}
}

// Signup creates a new account and issues a session token. The repository's
// persist transforms hash the password and normalize the email; the store's
// unique index is the arbiter of concurrent duplicate signups.
func (s *authService) Signup(ctx context.Context, req model.SignupRequest) (*model.User, string, error) {
	if req.Password != req.PasswordConfirm {
		return nil, "", apperror.BadRequest("passwords do not match")
	}

	rawVerify, hashedVerify, err := utils.GenerateOpaqueToken()
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate verification token: %w", err)
	}

	user := &model.User{
		FullName:                   req.FullName,
		Email:                      req.Email,
		Password:                   req.Password,
		VerificationToken:          hashedVerify,
		VerificationTokenExpiresAt: time.Now().Add(verificationTokenTTL),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, "", err
	}

	if err := s.mailer.SendVerification(ctx, user.Email, rawVerify); err != nil {
		// The account exists and can sign in; verification can be re-sent.
		s.logger.Warn("failed to dispatch verification token",
			zap.String("email", user.Email), zap.Error(err))
	}

	token, err := s.jwtUtil.GenerateToken(user.ID.Hex())
	if err != nil {
		return nil, "", fmt.Errorf("user created, but failed to generate token: %w", err)
	}

	user.Password = ""
	return user, token, nil
}

// Signin authenticates by email and password. Unknown email and wrong
// password are indistinguishable to the caller.
func (s *authService) Signin(ctx context.Context, email, password string) (*model.User, string, error) {
	user, err := s.userRepo.FindByEmail(ctx, email, true)
	if err != nil {
		return nil, "", err
	}
	if user == nil || !utils.CheckPasswordHash(password, user.Password) {
		return nil, "", apperror.Unauthorized("incorrect email or password")
	}

	token, err := s.jwtUtil.GenerateToken(user.ID.Hex())
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	user.Password = ""
	return user, token, nil
}

// ForgotPassword stores a hashed one-hour reset token on the account and
// dispatches the raw token out of band. A failed dispatch clears the stored
// token so no orphaned reset window remains.
func (s *authService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.userRepo.FindByEmail(ctx, email, false)
	if err != nil {
		return err
	}
	if user == nil {
		return apperror.Forbidden("there is no user with that email address")
	}

	rawToken, hashedToken, err := utils.GenerateOpaqueToken()
	if err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}
	if err := s.userRepo.SetResetToken(ctx, user.ID, hashedToken, time.Now().Add(resetTokenTTL)); err != nil {
		return err
	}

	if err := s.mailer.SendPasswordReset(ctx, user.Email, rawToken); err != nil {
		if clearErr := s.userRepo.ClearResetToken(ctx, user.ID); clearErr != nil {
			s.logger.Error("failed to clear reset token after dispatch failure",
				zap.String("email", user.Email), zap.Error(clearErr))
		}
		return apperror.Internal(fmt.Errorf("failed to dispatch reset token: %w", err))
	}
	return nil
}

// ResetPassword consumes a raw reset token: the stored hash must match and
// its expiry must be in the future. On success the password is rotated,
// outstanding sessions are invalidated via passwordChangedAt, and a fresh
// session token is issued.
func (s *authService) ResetPassword(ctx context.Context, rawToken string, req model.ResetPasswordRequest) (*model.User, string, error) {
	if req.Password != req.PasswordConfirm {
		return nil, "", apperror.BadRequest("passwords do not match")
	}

	user, err := s.userRepo.FindByResetToken(ctx, utils.HashOpaqueToken(rawToken))
	if err != nil {
		return nil, "", err
	}
	if user == nil {
		return nil, "", apperror.BadRequest("token is invalid or has expired")
	}

	if err := s.rotatePassword(ctx, user, req.Password); err != nil {
		return nil, "", err
	}

	token, err := s.jwtUtil.GenerateToken(user.ID.Hex())
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}
	return user, token, nil
}

// UpdatePassword rotates the password of a signed-in user after verifying the
// current one, then issues a fresh token since the old one just became stale.
func (s *authService) UpdatePassword(ctx context.Context, user *model.User, req model.UpdatePasswordRequest) (string, error) {
	if req.Password != req.PasswordConfirm {
		return "", apperror.BadRequest("passwords do not match")
	}

	withPassword, err := s.userRepo.FindByEmail(ctx, user.Email, true)
	if err != nil {
		return "", err
	}
	if withPassword == nil || !utils.CheckPasswordHash(req.PasswordCurrent, withPassword.Password) {
		return "", apperror.Unauthorized("your current password is wrong")
	}

	if err := s.rotatePassword(ctx, user, req.Password); err != nil {
		return "", err
	}

	token, err := s.jwtUtil.GenerateToken(user.ID.Hex())
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return token, nil
}

// VerifyEmail consumes a raw verification token and marks the account
// verified.
func (s *authService) VerifyEmail(ctx context.Context, rawToken string) (*model.User, error) {
	user, err := s.userRepo.FindByVerificationToken(ctx, utils.HashOpaqueToken(rawToken))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.BadRequest("token is invalid or has expired")
	}
	if err := s.userRepo.MarkVerified(ctx, user.ID); err != nil {
		return nil, err
	}
	user.Verified = true
	return user, nil
}

func (s *authService) rotatePassword(ctx context.Context, user *model.User, password string) error {
	hashed, err := utils.HashPassword(password)
	if err != nil {
		return err
	}
	// Recorded one second in the past so the session token issued right
	// after the rotation postdates the change at iat resolution.
	changedAt := time.Now().Add(-time.Second)
	if err := s.userRepo.UpdatePassword(ctx, user.ID, hashed, changedAt); err != nil {
		return err
	}
	user.PasswordChangedAt = changedAt
	return nil
}

package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/online_cafe/internal/hash"
	"github.com/Skotchmaster/online_cafe/internal/logging"
	"github.com/Skotchmaster/online_cafe/internal/models"
	"github.com/Skotchmaster/online_cafe/internal/mykafka"
	"github.com/Skotchmaster/online_cafe/internal/repo"
	"github.com/Skotchmaster/online_cafe/internal/tokens"
	"github.com/Skotchmaster/online_cafe/internal/verification"
)

var phonePattern = regexp.MustCompile(`^\+?1?\d{9,15}$`)

func ValidPhone(phone string) bool {
	return phonePattern.MatchString(phone)
}

type VerificationPolicy struct {
	CodeTTL        time.Duration
	MaxAttempts    int
	ResendInterval time.Duration
}

func DefaultVerificationPolicy() VerificationPolicy {
	return VerificationPolicy{
		CodeTTL:        10 * time.Minute,
		MaxAttempts:    5,
		ResendInterval: 30 * time.Second,
	}
}

type AuthService struct {
	Repo               *repo.GormRepo
	Tokens             *TokenService
	Codes              verification.Store
	Notifier           Notifier
	Events             Publisher
	RegistrationSecret []byte
	Policy             VerificationPolicy
	Now                func() time.Time
}

// PendingRegistration identifies the phone waiting for its code.
type PendingRegistration struct {
	Token     string
	ExpiresAt time.Time
}

type VerifyInput struct {
	Phone     string
	Code      string
	FirstName string
	LastName  string
	Password  string
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+100000, 10), nil
}

func (s *AuthService) Register(ctx context.Context, phone string) (*PendingRegistration, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")
	phone = strings.TrimSpace(phone)

	if !ValidPhone(phone) {
		return nil, fmt.Errorf("Invalid phone number format: %w", ErrValidation)
	}
	taken, err := s.Repo.PhoneTaken(ctx, phone)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("Phone number already registered: %w", ErrValidation)
	}

	now := s.now()
	prev, err := s.Codes.Get(ctx, phone)
	switch {
	case err == nil:
		if now.Sub(prev.CreatedAt) < s.Policy.ResendInterval {
			return nil, fmt.Errorf("Please wait before requesting a new code: %w", ErrRateLimited)
		}
	case !errors.Is(err, verification.ErrNotFound):
		return nil, err
	}

	code, err := generateCode()
	if err != nil {
		return nil, fmt.Errorf("generate code: %w", err)
	}
	expiresAt := now.Add(s.Policy.CodeTTL)
	if err := s.Codes.Save(ctx, phone, verification.Record{
		CodeHash:  hash.Sha256Hex(code),
		ExpiresAt: expiresAt,
		CreatedAt: now,
	}); err != nil {
		return nil, fmt.Errorf("save verification code: %w", err)
	}

	if err := s.Notifier.SendVerificationCode(ctx, phone, code); err != nil {
		l.Error("register_error", "reason", "cannot deliver verification code", "error", err)
		return nil, err
	}

	token, err := tokens.SignRegistrationToken(phone, expiresAt, s.RegistrationSecret)
	if err != nil {
		return nil, fmt.Errorf("sign registration token: %w", err)
	}
	return &PendingRegistration{Token: token, ExpiresAt: expiresAt}, nil
}

// PendingPhone reads the phone number out of a pendingRegistration cookie value.
func (s *AuthService) PendingPhone(token string) (string, error) {
	claims, err := tokens.RegistrationClaimsFromToken(token, s.RegistrationSecret)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

func (s *AuthService) Verify(ctx context.Context, in VerifyInput) (*models.User, error) {
	if in.Phone == "" {
		return nil, fmt.Errorf("No pending registration: %w", ErrValidation)
	}
	if in.Code == "" || in.FirstName == "" || in.LastName == "" || in.Password == "" {
		return nil, fmt.Errorf("All fields are required: %w", ErrValidation)
	}
	if err := checkPasswordLength(in.Password); err != nil {
		return nil, err
	}

	now := s.now()
	rec, err := s.Codes.Get(ctx, in.Phone)
	if err != nil && !errors.Is(err, verification.ErrNotFound) {
		return nil, err
	}
	if rec == nil || rec.Expired(now) {
		if rec != nil {
			_ = s.Codes.Delete(ctx, in.Phone)
		}
		return nil, fmt.Errorf("Verification code expired or not requested: %w", ErrValidation)
	}
	if rec.Attempts >= s.Policy.MaxAttempts {
		if err := s.Codes.Delete(ctx, in.Phone); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("Too many attempts, request a new code: %w", ErrRateLimited)
	}
	if subtle.ConstantTimeCompare([]byte(rec.CodeHash), []byte(hash.Sha256Hex(in.Code))) != 1 {
		if err := s.Codes.IncrementAttempts(ctx, in.Phone); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("Invalid verification code: %w", ErrValidation)
	}

	taken, err := s.Repo.PhoneTaken(ctx, in.Phone)
	if err != nil {
		return nil, err
	}
	if taken {
		_ = s.Codes.Delete(ctx, in.Phone)
		return nil, fmt.Errorf("Phone number already registered: %w", ErrValidation)
	}

	pwHash, err := hash.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &models.User{
		PhoneNumber:  in.Phone,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PasswordHash: pwHash,
		CreatedAt:    now,
	}
	if err := s.Repo.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	if err := s.Codes.Delete(ctx, in.Phone); err != nil {
		logging.FromContext(ctx).Warn("verify_cleanup_error", "phone", in.Phone, "error", err)
	}

	publish(ctx, s.Events, mykafka.TopicUserEvents, strconv.FormatUint(uint64(user.ID), 10), "user_registered", map[string]any{
		"user_id": user.ID,
		"phone":   user.PhoneNumber,
	})
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, phone, password string) (*TokenPair, error) {
	user, err := s.Repo.GetUserByPhone(ctx, strings.TrimSpace(phone))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("Invalid phone number or password: %w", ErrUnauthorized)
		}
		return nil, err
	}
	if !hash.CheckPassword(user.PasswordHash, password) {
		return nil, fmt.Errorf("Invalid phone number or password: %w", ErrUnauthorized)
	}
	return s.Tokens.Issue(ctx, user)
}

func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	return s.Tokens.RevokeRefresh(ctx, refreshToken)
}

func (s *AuthService) ChangePassword(ctx context.Context, userID uint, current, next, confirm string) error {
	user, err := s.Repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("user not found: %w", ErrNotFound)
		}
		return err
	}
	if !hash.CheckPassword(user.PasswordHash, current) {
		return fmt.Errorf("Current password is incorrect: %w", ErrValidation)
	}
	if next == "" {
		return fmt.Errorf("New password is required: %w", ErrValidation)
	}
	if next != confirm {
		return fmt.Errorf("New passwords do not match: %w", ErrValidation)
	}
	if err := checkPasswordLength(next); err != nil {
		return err
	}

	pwHash, err := hash.HashPassword(next)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.Repo.UpdatePasswordHash(ctx, userID, pwHash)
}

func checkPasswordLength(password string) error {
	if len(password) > hash.MaxPasswordBytes {
		return fmt.Errorf("Password must be at most %d bytes: %w", hash.MaxPasswordBytes, ErrValidation)
	}
	return nil
}

// IsAdmin checks the stored flag, not the token role.
func (s *AuthService) IsAdmin(ctx context.Context, userID uint) (bool, error) {
	user, err := s.Repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, fmt.Errorf("user not found: %w", ErrUnauthorized)
		}
		return false, err
	}
	return user.IsAdmin, nil
}

// CreateAdmin registers an administrator directly, bypassing phone verification.
func (s *AuthService) CreateAdmin(ctx context.Context, phone, password, firstName, lastName string) (*models.User, error) {
	if !ValidPhone(phone) {
		return nil, fmt.Errorf("Invalid phone number format: %w", ErrValidation)
	}
	if password == "" {
		return nil, fmt.Errorf("password is required: %w", ErrValidation)
	}
	if err := checkPasswordLength(password); err != nil {
		return nil, err
	}
	taken, err := s.Repo.PhoneTaken(ctx, phone)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("Phone number already registered: %w", ErrValidation)
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &models.User{
		PhoneNumber:  phone,
		FirstName:    firstName,
		LastName:     lastName,
		PasswordHash: pwHash,
		IsAdmin:      true,
		CreatedAt:    s.now(),
	}
	if err := s.Repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/online_cafe/internal/hash"
	"github.com/Skotchmaster/online_cafe/internal/models"
	"github.com/Skotchmaster/online_cafe/internal/repo"
	"github.com/Skotchmaster/online_cafe/internal/tokens"
)

type TokenService struct {
	Repo          *repo.GormRepo
	JWTSecret     []byte
	RefreshSecret []byte
	Now           func() time.Time
}

// TokenPair is what a successful login or refresh hands back to the browser.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	AccessExp    time.Time
	RefreshExp   time.Time
	UserID       uint
	IsAdmin      bool
}

func (t *TokenService) now() time.Time {
	if t.Now != nil {
		return t.Now().UTC()
	}
	return time.Now().UTC()
}

func (t *TokenService) sign(user *models.User) (*TokenPair, *models.RefreshToken, error) {
	now := t.now()
	accessExp := now.Add(tokens.AccessTTL)
	refreshExp := now.Add(tokens.RefreshTTL)

	access, err := tokens.SignAccessToken(user.ID, tokens.RoleFor(user.IsAdmin), accessExp, t.JWTSecret)
	if err != nil {
		return nil, nil, fmt.Errorf("sign access token: %w", err)
	}
	jti := tokens.NewJTI()
	refresh, err := tokens.SignRefreshToken(user.ID, jti, refreshExp, t.RefreshSecret)
	if err != nil {
		return nil, nil, fmt.Errorf("sign refresh token: %w", err)
	}

	stored := &models.RefreshToken{
		UserID:    user.ID,
		Token:     hash.Sha256Hex(refresh),
		JTI:       jti,
		ExpiresAt: refreshExp.Unix(),
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		AccessExp:    accessExp,
		RefreshExp:   refreshExp,
		UserID:       user.ID,
		IsAdmin:      user.IsAdmin,
	}, stored, nil
}

func (t *TokenService) Issue(ctx context.Context, user *models.User) (*TokenPair, error) {
	pair, stored, err := t.sign(user)
	if err != nil {
		return nil, err
	}
	if err := t.Repo.SaveRefreshToken(ctx, stored); err != nil {
		return nil, fmt.Errorf("save refresh token: %w", err)
	}
	return pair, nil
}

// RotateToken exchanges a valid refresh token for a new pair and revokes the old one.
func (t *TokenService) RotateToken(ctx context.Context, rawRefresh string) (*TokenPair, error) {
	claims, err := tokens.RefreshClaimsFromToken(rawRefresh, t.RefreshSecret)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token: %w", ErrUnauthorized)
	}

	stored, err := t.Repo.FindRefreshByJTI(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("refresh token not found: %w", ErrUnauthorized)
		}
		return nil, err
	}
	if stored.Token != hash.Sha256Hex(rawRefresh) {
		return nil, fmt.Errorf("refresh token mismatch: %w", ErrUnauthorized)
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("bad subject: %w", ErrUnauthorized)
	}
	user, err := t.Repo.GetUserByID(ctx, uint(userID))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user not found: %w", ErrUnauthorized)
		}
		return nil, err
	}

	pair, next, err := t.sign(user)
	if err != nil {
		return nil, err
	}
	if err := t.Repo.RotateRefreshToken(ctx, claims.ID, next, t.now()); err != nil {
		if errors.Is(err, repo.ErrTokenUnavailable) {
			return nil, fmt.Errorf("refresh token expired or revoked: %w", ErrUnauthorized)
		}
		return nil, err
	}
	return pair, nil
}

func (t *TokenService) RevokeRefresh(ctx context.Context, rawRefresh string) error {
	if rawRefresh == "" {
		return nil
	}
	return t.Repo.RevokeRefreshByHash(ctx, hash.Sha256Hex(rawRefresh))
}

func (t *TokenService) ParseAccess(raw string) (*tokens.AccessClaims, error) {
	return tokens.AccessClaimsFromToken(raw, t.JWTSecret)
}

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Andrei050191/La-serviciu/config"
	"github.com/Andrei050191/La-serviciu/internal/dto"
	"github.com/Andrei050191/La-serviciu/internal/model"
	"github.com/Andrei050191/La-serviciu/internal/repository"
	"github.com/Andrei050191/La-serviciu/pkg/jwt"
	"github.com/Andrei050191/La-serviciu/pkg/redis"
)

var (
	ErrInvalidCode  = errors.New("login code not recognized")
	ErrInvalidToken = errors.New("token is invalid or revoked")
)

// AuthService implements 4-digit-code login with a rotating refresh token.
// The code identifies the member on its own, so codes are unique across the
// roster and matching means iterating the directory's hashes.
type AuthService interface {
	Login(ctx context.Context, code string, rememberMe bool) (*dto.TokenResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.TokenResponse, error)
	// Logout revokes both tokens of the session. refreshToken may be empty.
	Logout(ctx context.Context, accessClaims *jwt.Claims, refreshToken string) error
	Me(ctx context.Context, memberID string) (*dto.MemberResponse, error)
	ChangeCode(ctx context.Context, memberID, oldCode, newCode string) error
}

type authService struct {
	repo           *repository.Repository
	jwtManager     *jwt.Manager
	cache          *redis.Client
	accessTokenTTL time.Duration
	logger         *zap.Logger
}

func NewAuthService(repo *repository.Repository, cfg *config.Config, jwtManager *jwt.Manager, cache *redis.Client, logger *zap.Logger) AuthService {
	return &authService{
		repo:           repo,
		jwtManager:     jwtManager,
		cache:          cache,
		accessTokenTTL: cfg.Auth.AccessTokenTTL,
		logger:         logger,
	}
}

func (s *authService) Login(ctx context.Context, code string, rememberMe bool) (*dto.TokenResponse, error) {
	if !codePattern.MatchString(code) {
		return nil, ErrInvalidCode
	}

	members, err := s.repo.Member.List(ctx)
	if err != nil {
		return nil, err
	}

	var matched *model.Member
	for i := range members {
		if bcrypt.CompareHashAndPassword([]byte(members[i].CodeHash), []byte(code)) == nil {
			matched = &members[i]
			break
		}
	}
	if matched == nil {
		return nil, ErrInvalidCode
	}

	s.logger.Info("member logged in", zap.String("member_id", matched.MemberID))
	return s.issueTokens(matched, rememberMe)
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	claims, err := s.jwtManager.ParseToken(refreshToken)
	if err != nil || claims.TokenType != "refresh" {
		return nil, ErrInvalidToken
	}

	if s.cache != nil {
		revoked, err := s.cache.IsBlacklisted(ctx, claims.ID)
		if err != nil {
			s.logger.Warn("blacklist lookup failed", zap.Error(err))
		} else if revoked {
			return nil, ErrInvalidToken
		}
	}

	member, err := s.repo.Member.GetByID(ctx, claims.MemberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	// rotation: the presented refresh token is revoked before a new pair
	// is issued
	s.blacklist(ctx, claims)

	return s.issueTokens(member, claims.RememberMe)
}

func (s *authService) Logout(ctx context.Context, accessClaims *jwt.Claims, refreshToken string) error {
	s.blacklist(ctx, accessClaims)

	if refreshToken != "" {
		if claims, err := s.jwtManager.ParseToken(refreshToken); err == nil && claims.TokenType == "refresh" {
			s.blacklist(ctx, claims)
		}
	}
	return nil
}

func (s *authService) Me(ctx context.Context, memberID string) (*dto.MemberResponse, error) {
	m, err := s.repo.Member.GetByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnknownMember
		}
		return nil, err
	}
	resp := memberDTO(m)
	return &resp, nil
}

func (s *authService) ChangeCode(ctx context.Context, memberID, oldCode, newCode string) error {
	if !codePattern.MatchString(newCode) {
		return ErrInvalidCode
	}

	m, err := s.repo.Member.GetByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUnknownMember
		}
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(m.CodeHash), []byte(oldCode)) != nil {
		return ErrInvalidCode
	}

	members, err := s.repo.Member.List(ctx)
	if err != nil {
		return err
	}
	for i := range members {
		if members[i].MemberID == memberID {
			continue
		}
		if bcrypt.CompareHashAndPassword([]byte(members[i].CodeHash), []byte(newCode)) == nil {
			return ErrCodeTaken
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newCode), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing login code: %w", err)
	}
	m.CodeHash = string(hash)
	m.UpdatedBy = &memberID
	return s.repo.Member.Update(ctx, m)
}

// ── internals ──

func (s *authService) issueTokens(m *model.Member, rememberMe bool) (*dto.TokenResponse, error) {
	access, err := s.jwtManager.GenerateAccessToken(m.MemberID, m.Role)
	if err != nil {
		return nil, fmt.Errorf("issuing access token: %w", err)
	}
	refresh, err := s.jwtManager.GenerateRefreshToken(m.MemberID, m.Role, rememberMe)
	if err != nil {
		return nil, fmt.Errorf("issuing refresh token: %w", err)
	}
	return &dto.TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int(s.accessTokenTTL.Seconds()),
		Member:       memberDTO(m),
	}, nil
}

// blacklist revokes a token for its remaining lifetime. Without Redis the
// revocation is skipped and expiry alone bounds the session.
func (s *authService) blacklist(ctx context.Context, claims *jwt.Claims) {
	if s.cache == nil || claims.ExpiresAt == nil {
		return
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if err := s.cache.BlacklistToken(ctx, claims.ID, ttl); err != nil {
		s.logger.Warn("blacklisting token", zap.Error(err))
	}
}

package service

import (
	"context"
	"errors"
	"time"

	"lojaesportiva/internal/config"
	"lojaesportiva/internal/dto"
	"lojaesportiva/internal/model"
	"lojaesportiva/internal/repository"

	"github.com/golang-jwt/jwt/v5"
)

// Token types carried in the "typ" claim. Only access tokens open protected
// routes; refresh tokens are accepted by Refresh alone.
const (
	TokenAccess  = "access"
	TokenRefresh = "refresh"
)

type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error)
}

type authService struct {
	repo     repository.ClienteRepository
	verifier CredentialVerifier
	cfg      *config.Config
	now      func() time.Time
}

func NewAuthService(repo repository.ClienteRepository, verifier CredentialVerifier, cfg *config.Config) AuthService {
	return &authService{repo: repo, verifier: verifier, cfg: cfg, now: time.Now}
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	c, err := s.repo.FindByEmail(ctx, normalizarEmail(req.Email))
	if err != nil {
		return nil, ErrCredenciaisInvalidas
	}
	if err := s.verifier.Compare(c.SenhaHash, req.Senha); err != nil {
		return nil, ErrCredenciaisInvalidas
	}
	return s.emitir(c)
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error) {
	token, err := jwt.Parse(refreshToken, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrCredenciaisInvalidas
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["typ"] != TokenRefresh {
		return nil, ErrCredenciaisInvalidas
	}
	// JSON numbers decode as float64.
	rawID, ok := claims["cliente_id"].(float64)
	if !ok || rawID <= 0 {
		return nil, ErrCredenciaisInvalidas
	}

	c, err := s.repo.FindByID(ctx, uint(rawID))
	if err != nil {
		return nil, ErrCredenciaisInvalidas
	}
	return s.emitir(c)
}

func (s *authService) emitir(c *model.Cliente) (*dto.LoginResponse, error) {
	access, err := s.generateToken(c, TokenAccess, time.Duration(s.cfg.JWTExpirationHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	refresh, err := s.generateToken(c, TokenRefresh, time.Duration(s.cfg.JWTRefreshHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
		ExpiresIn:    s.cfg.JWTExpirationHours * 3600,
		Cliente:      *clienteToResponse(c),
	}, nil
}

func (s *authService) generateToken(c *model.Cliente, typ string, duration time.Duration) (string, error) {
	if s.cfg.JWTSecret == "" {
		return "", errors.New("jwt secret não configurado")
	}
	now := s.now()
	claims := jwt.MapClaims{
		"cliente_id": c.ID,
		"email":      c.Email,
		"role":       c.Role,
		"typ":        typ,
		"exp":        now.Add(duration).Unix(),
		"iat":        now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

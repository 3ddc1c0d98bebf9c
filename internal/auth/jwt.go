package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/driftportal/facility-api/internal/domain"
	"github.com/driftportal/facility-api/internal/repository"
)

// ProfileLookup loads the profile row of an authenticated user
type ProfileLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

// JWTConfig configures token validation for the hosted backend
type JWTConfig struct {
	Secret   string
	Issuer   string
	Audience string
}

// JWTProvider validates HS256 access tokens issued by the hosted backend and
// loads the caller's profile. The subject claim carries the user id.
type JWTProvider struct {
	cfg      JWTConfig
	profiles ProfileLookup
	parser   *jwt.Parser
}

// NewJWTProvider creates the backend-backed provider
func NewJWTProvider(cfg JWTConfig, profiles ProfileLookup) *JWTProvider {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}
	return &JWTProvider{cfg: cfg, profiles: profiles, parser: jwt.NewParser(opts...)}
}

func (p *JWTProvider) Name() string { return "jwt" }

// Claims are the access token claims the service reads
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// ValidateToken parses and verifies a bearer token
func (p *JWTProvider) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := p.parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(p.cfg.Secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims, nil
}

func (p *JWTProvider) AuthState(ctx context.Context, r *http.Request) (*Session, error) {
	token, err := bearerToken(r)
	if err != nil {
		return nil, err
	}
	claims, err := p.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: subject is not a user id", ErrInvalidToken)
	}

	profile, err := p.profiles.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnknownUser
		}
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	return &Session{
		UserID:   profile.ID,
		Name:     profile.Name,
		Email:    firstNonEmpty(profile.Email, claims.Email),
		Role:     profile.Role,
		Provider: p.Name(),
	}, nil
}

// bearerToken reads the Authorization header. EventSource clients cannot set
// headers, so event streams may pass the token as access_token instead.
func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		if token := r.URL.Query().Get("access_token"); token != "" && strings.Contains(r.Header.Get("Accept"), "text/event-stream") {
			return token, nil
		}
		return "", ErrMissingCredentials
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", fmt.Errorf("%w: invalid authorization header format", ErrInvalidToken)
	}
	return parts[1], nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

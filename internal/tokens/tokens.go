package tokens

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/bbangting/auth/internal/models"
)

// AccessTokenTTL is fixed; only the refresh lifetime is configurable.
const AccessTokenTTL = 30 * time.Minute

const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

var (
	ErrTokenMalformed = errors.New("token malformed")
	ErrTokenExpired   = errors.New("token expired")
	ErrMisconfigured  = errors.New("token service misconfigured")
)

type Claims struct {
	Role string `json:"role,omitempty"`
	Type string `json:"typ"`
	jwt.RegisteredClaims
}

type Config struct {
	Secret     []byte
	RefreshTTL time.Duration
	Issuer     string
}

// Service signs and verifies access and refresh tokens with one HS256 secret.
// It is safe for concurrent use; nothing in it changes after NewService.
type Service struct {
	secret     []byte
	refreshTTL time.Duration
	issuer     string
	now        func() time.Time
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(cfg Config, opts ...Option) (*Service, error) {
	if len(cfg.Secret) == 0 {
		return nil, fmt.Errorf("%w: signing secret is empty", ErrMisconfigured)
	}
	if cfg.RefreshTTL <= 0 {
		return nil, fmt.Errorf("%w: refresh ttl must be positive", ErrMisconfigured)
	}

	s := &Service{
		secret:     append([]byte(nil), cfg.Secret...),
		refreshTTL: cfg.RefreshTTL,
		issuer:     cfg.Issuer,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func NewJTI() string { return uuid.NewString() }

func (s *Service) RefreshTTL() time.Duration { return s.refreshTTL }

// IssueAccessToken returns the signed token and the instant it expires.
func (s *Service) IssueAccessToken(u *models.User) (string, time.Time, error) {
	now := s.now()
	claims := Claims{
		Role: string(u.Role),
		Type: TypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.Email,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(AccessTokenTTL)),
		},
	}

	signed, err := s.sign(claims)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, claims.ExpiresAt.Time, nil
}

func (s *Service) IssueRefreshToken(u *models.User) (string, error) {
	now := s.now()
	claims := Claims{
		Type: TypeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.Email,
			Issuer:    s.issuer,
			ID:        NewJTI(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.refreshTTL)),
		},
	}
	return s.sign(claims)
}

// ExtractSubject verifies the signature and returns the subject without
// looking at expiry. A token without a subject yields "".
func (s *Service) ExtractSubject(token string) (string, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, s.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}
	return claims.Subject, nil
}

// IsTokenValid reports whether token is correctly signed, not expired and
// issued for u.
func (s *Service) IsTokenValid(token string, u *models.User) bool {
	if u == nil || u.Email == "" {
		return false
	}
	claims, err := s.parse(token)
	if err != nil {
		return false
	}
	return claims.Subject == u.Email
}

// ParseAccessToken validates an access token and returns its claims.
func (s *Service) ParseAccessToken(token string) (*Claims, error) {
	claims, err := s.parse(token)
	if err != nil {
		return nil, err
	}
	if claims.Type != TypeAccess {
		return nil, fmt.Errorf("%w: not an access token", ErrTokenMalformed)
	}
	return claims, nil
}

func (s *Service) parse(token string) (*Claims, error) {
	var claims Claims
	tkn, err := jwt.ParseWithClaims(token, &claims, s.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %v", ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}
	if !tkn.Valid {
		return nil, ErrTokenMalformed
	}
	return &claims, nil
}

func (s *Service) sign(claims Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *Service) keyFunc(t *jwt.Token) (any, error) {
	if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
	}
	return s.secret, nil
}

package services

import (
	"crypto/subtle"
	"errors"
	"log/slog"
	"strings"
	"time"

	"event-album/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const adminSubject = "admin"

// AdminConfig holds the single administrator credential pair and the token
// signing secret.
type AdminConfig struct {
	Email      string
	Password   string
	Secret     string
	SessionTTL time.Duration
}

// Session is a signed administrator token.
type Session struct {
	Token     string
	ExpiresAt time.Time
}

// Authenticate checks creds against cfg and issues a session token.
// Password may be configured in plain text or as a bcrypt hash.
func Authenticate(creds models.LoginRequest, cfg AdminConfig, now time.Time) (*Session, error) {
	if cfg.Email == "" || cfg.Password == "" {
		return nil, newError(KindUnauthorized, "invalid credentials", errors.New("administrator credentials are not configured"))
	}

	emailOK := subtle.ConstantTimeCompare([]byte(strings.TrimSpace(creds.Email)), []byte(cfg.Email)) == 1
	if !emailOK || !passwordMatches(creds.Password, cfg.Password) {
		return nil, newError(KindUnauthorized, "invalid credentials", nil)
	}

	expiresAt := now.Add(cfg.SessionTTL)
	token, err := GenerateJWT(cfg.Email, cfg.Secret, now, expiresAt)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, ExpiresAt: expiresAt}, nil
}

func passwordMatches(supplied, configured string) bool {
	if isBcryptHash(configured) {
		return bcrypt.CompareHashAndPassword([]byte(configured), []byte(supplied)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(supplied), []byte(configured)) == 1
}

func isBcryptHash(s string) bool {
	for _, prefix := range []string{"$2a$", "$2b$", "$2y$"} {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}

func GenerateJWT(email, secret string, issuedAt, expiresAt time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub":   adminSubject,
		"email": email,
		"iat":   issuedAt.Unix(),
		"exp":   expiresAt.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func ValidateToken(tokenString, secret string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	}, jwt.WithExpirationRequired())

	if err != nil {
		return nil, newError(KindUnauthorized, "invalid token", err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		if sub, _ := claims["sub"].(string); sub != adminSubject {
			return nil, newError(KindUnauthorized, "invalid token", errors.New("unexpected subject"))
		}
		return claims, nil
	}

	return nil, newError(KindUnauthorized, "invalid token", nil)
}

type AuthService struct {
	log *slog.Logger
	cfg AdminConfig
	now func() time.Time
}

func NewAuthService(log *slog.Logger, cfg AdminConfig) *AuthService {
	return &AuthService{log: log, cfg: cfg, now: time.Now}
}

func (s *AuthService) Login(req models.LoginRequest) (*models.AuthResponse, error) {
	const op = "services.AuthService.Login"

	session, err := Authenticate(req, s.cfg, s.now())
	if err != nil {
		s.log.Warn("administrator login failed", slog.String("op", op))
		return nil, err
	}

	s.log.Info("administrator logged in", slog.String("op", op))
	return &models.AuthResponse{Token: session.Token, ExpiresAt: session.ExpiresAt}, nil
}

func (s *AuthService) Validate(token string) (jwt.MapClaims, error) {
	return ValidateToken(token, s.cfg.Secret)
}

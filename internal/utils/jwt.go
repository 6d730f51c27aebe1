package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/yhsong/finbell/internal/domain"
)

// connectTokenExpiry is fixed and independent of the configured session
// expiry: a connect-state token only needs to survive one provider round trip.
const connectTokenExpiry = 5 * time.Minute

const oauthMethodConnect = "connect"

var (
	// ErrTokenExpired is returned when the signature is valid but the expiry has passed.
	ErrTokenExpired = errors.New("token is expired")
	// ErrInvalidToken is returned on a bad signature, malformed token, or wrong claim shape.
	ErrInvalidToken = errors.New("invalid token")
	// ErrUnsupportedProvider is returned before signing when the provider is not recognized.
	ErrUnsupportedProvider = errors.New("unsupported oauth provider")
)

// JWTManager signs and verifies session and connect-state tokens
type JWTManager struct {
	secret        []byte
	sessionExpiry time.Duration
}

type sessionTokenClaims struct {
	Email    string `json:"email"`
	Nickname string `json:"nickname"`
	jwt.RegisteredClaims
}

type connectTokenClaims struct {
	OAuthMethod string `json:"oauthMethod"`
	UserID      string `json:"userId"`
	Provider    string `json:"provider"`
	jwt.RegisteredClaims
}

// NewJWTManager creates a new JWT manager
func NewJWTManager(secret string, sessionExpiry time.Duration) *JWTManager {
	return &JWTManager{
		secret:        []byte(secret),
		sessionExpiry: sessionExpiry,
	}
}

// GenerateSessionToken signs a session token carrying {sub, email, nickname}
func (j *JWTManager) GenerateSessionToken(user *domain.User) (string, error) {
	now := time.Now()
	claims := sessionTokenClaims{
		Email:    user.Email,
		Nickname: user.Nickname,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.sessionExpiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.secret)
}

// GenerateConnectToken signs a short-lived connect-state token authorizing the
// linking of one additional identity. The provider is validated before signing.
func (j *JWTManager) GenerateConnectToken(userID string, provider domain.Provider) (string, error) {
	if !provider.Valid() {
		return "", ErrUnsupportedProvider
	}

	now := time.Now()
	claims := connectTokenClaims{
		OAuthMethod: oauthMethodConnect,
		UserID:      userID,
		Provider:    provider.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(connectTokenExpiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.secret)
}

// VerifySessionToken verifies signature and expiry and returns the session claims.
// Expired tokens map to ErrTokenExpired, everything else to ErrInvalidToken;
// callers distinguish them for logging only.
func (j *JWTManager) VerifySessionToken(tokenString string) (*domain.SessionClaims, error) {
	var claims sessionTokenClaims
	if err := j.parse(tokenString, &claims); err != nil {
		return nil, err
	}

	if claims.Subject == "" || claims.Email == "" {
		return nil, ErrInvalidToken
	}

	return &domain.SessionClaims{
		UserID:   claims.Subject,
		Email:    claims.Email,
		Nickname: claims.Nickname,
	}, nil
}

// VerifyConnectToken verifies a connect-state token and returns its claims.
func (j *JWTManager) VerifyConnectToken(tokenString string) (*domain.ConnectClaims, error) {
	var claims connectTokenClaims
	if err := j.parse(tokenString, &claims); err != nil {
		return nil, err
	}

	if claims.OAuthMethod != oauthMethodConnect || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	provider := domain.Provider(claims.Provider)
	if !provider.Valid() {
		return nil, ErrInvalidToken
	}

	return &domain.ConnectClaims{
		OAuthMethod: claims.OAuthMethod,
		UserID:      claims.UserID,
		Provider:    provider,
	}, nil
}

func (j *JWTManager) parse(tokenString string, claims jwt.Claims) error {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	_, err := parser.ParseWithClaims(tokenString, claims, func(_ *jwt.Token) (any, error) {
		return j.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrTokenExpired
		}
		return ErrInvalidToken
	}
	return nil
}

// SessionExpirySeconds returns the session token expiry in seconds
func (j *JWTManager) SessionExpirySeconds() int {
	return int(j.sessionExpiry.Seconds())
}

package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/procare-io/srportal/internal/models"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

const downloadAudience = "download"

// Claims is the identity carried by an access token.
type Claims struct {
	Email          string          `json:"email"`
	Name           string          `json:"name"`
	Role           models.UserRole `json:"role"`
	CustomerNumber string          `json:"customer_number,omitempty"`
	CustomerName   string          `json:"customer_name,omitempty"`
	CountryCode    string          `json:"country_code,omitempty"`
	Territories    []string        `json:"territories,omitempty"`
	jwt.RegisteredClaims
}

// Profile converts the claims back into the public user profile.
func (c *Claims) Profile() models.Profile {
	territories := c.Territories
	if territories == nil {
		territories = []string{}
	}
	return models.Profile{
		Email:          c.Email,
		Name:           c.Name,
		Role:           c.Role,
		CustomerNumber: c.CustomerNumber,
		CustomerName:   c.CustomerName,
		CountryCode:    c.CountryCode,
		Territories:    territories,
	}
}

// DownloadClaims authorizes a single blob for a short time.
type DownloadClaims struct {
	BlobPath string `json:"blob"`
	jwt.RegisteredClaims
}

type JWTManager struct {
	secretKey     []byte
	issuer        string
	tokenDuration time.Duration
	now           func() time.Time
}

func NewJWTManager(secretKey, issuer string, tokenDuration time.Duration) *JWTManager {
	if issuer == "" {
		issuer = "srportal"
	}
	return &JWTManager{
		secretKey:     []byte(secretKey),
		issuer:        issuer,
		tokenDuration: tokenDuration,
		now:           time.Now,
	}
}

// GenerateToken issues an access token for user and returns its expiry.
func (m *JWTManager) GenerateToken(user *models.User) (string, time.Time, error) {
	now := m.now()
	expires := now.Add(m.tokenDuration)
	claims := Claims{
		Email:          user.Email,
		Name:           user.Name,
		Role:           user.Role,
		CustomerNumber: user.CustomerNumber,
		CustomerName:   user.CustomerName,
		CountryCode:    user.CountryCode,
		Territories:    user.Territories,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    m.issuer,
			Subject:   user.Email,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secretKey)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expires, nil
}

func (m *JWTManager) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	if err := m.parse(tokenString, claims); err != nil {
		return nil, err
	}
	if len(claims.Audience) > 0 || !claims.Role.Valid() {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// GenerateDownloadToken signs a link token for one blob.
func (m *JWTManager) GenerateDownloadToken(blobPath string, ttl time.Duration) (string, time.Time, error) {
	now := m.now()
	expires := now.Add(ttl)
	claims := DownloadClaims{
		BlobPath: blobPath,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    m.issuer,
			Audience:  jwt.ClaimStrings{downloadAudience},
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secretKey)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expires, nil
}

func (m *JWTManager) ValidateDownloadToken(tokenString string) (string, error) {
	claims := &DownloadClaims{}
	if err := m.parse(tokenString, claims, jwt.WithAudience(downloadAudience)); err != nil {
		return "", err
	}
	if claims.BlobPath == "" {
		return "", ErrInvalidToken
	}
	return claims.BlobPath, nil
}

func (m *JWTManager) parse(tokenString string, claims jwt.Claims, opts ...jwt.ParserOption) error {
	opts = append(opts,
		jwt.WithIssuer(m.issuer),
		jwt.WithTimeFunc(m.now),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return m.secretKey, nil
	}, opts...)
	if errors.Is(err, jwt.ErrTokenExpired) {
		return ErrExpiredToken
	}
	if err != nil {
		return ErrInvalidToken
	}
	return nil
}

package utils

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	AccessTTL  = 15 * time.Minute
	RefreshTTL = 12 * time.Hour

	tokenAccess  = "access"
	tokenRefresh = "refresh"
)

var (
	secretMu  sync.RWMutex
	secretKey = []byte("tpv-secret")
)

// SetSecret replaces the HMAC key used to sign and check tokens.
func SetSecret(secret string) {
	if secret == "" {
		return
	}
	secretMu.Lock()
	secretKey = []byte(secret)
	secretMu.Unlock()
}

func secret() []byte {
	secretMu.RLock()
	defer secretMu.RUnlock()
	return secretKey
}

func sign(userRole string, userID uint, typ string, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_role": userRole,
		"id":        userID,
		"typ":       typ,
		"exp":       time.Now().Add(ttl).Unix(),
	})
	return token.SignedString(secret())
}

func GenerateTokens(userRole string, userID uint) (string, string, error) {
	access, err := sign(userRole, userID, tokenAccess, AccessTTL)
	if err != nil {
		return "", "", err
	}
	refresh, err := sign(userRole, userID, tokenRefresh, RefreshTTL)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

func parse(tokenString, typ string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret(), nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, errors.New("token has expired")
		}
		return nil, fmt.Errorf("error parsing token: %v", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if got, _ := claims["typ"].(string); got != typ {
		return nil, errors.New("invalid token type")
	}
	return claims, nil
}

// ValidateToken checks an access token and returns its claims.
func ValidateToken(tokenString string) (map[string]interface{}, error) {
	return parse(tokenString, tokenAccess)
}

// RefreshTokens trades a valid refresh token for a new pair.
func RefreshTokens(oldRefreshToken string) (string, string, error) {
	claims, err := parse(oldRefreshToken, tokenRefresh)
	if err != nil {
		return "", "", err
	}
	userRole, _ := claims["user_role"].(string)
	userID, _ := claims["id"].(float64)
	return GenerateTokens(userRole, uint(userID))
}

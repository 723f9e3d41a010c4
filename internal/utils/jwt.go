package utils

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Rhysmalcolm13/agentity/models"
	"github.com/golang-jwt/jwt/v5"
)

// oauthStateClaims is the JWT payload carried through an OAuth redirect.
type oauthStateClaims struct {
	jwt.RegisteredClaims
	Provider    models.OAuthProvider `json:"provider"`
	CallbackURL string               `json:"callbackUrl,omitempty"`
	RememberMe  bool                 `json:"rememberMe,omitempty"`
}

// GenerateOAuthState signs the OAuth state with HMAC-SHA256.
//
// The token includes the standard claims iss, iat, exp and a random jti so
// that two states issued in the same second differ.
//
//	state, err := utils.GenerateOAuthState("agentity", st, 10*time.Minute, "secret")
func GenerateOAuthState(issuer string, state models.OAuthState, ttl time.Duration, signKey string) (string, error) {
	if issuer == "" || ttl == 0 || signKey == "" || state.Provider == "" {
		return "", errors.New("invalid params for generating OAuth state")
	}

	nonce, err := RandomURLSafe(16)
	if err != nil {
		return "", err
	}

	now := time.Now()
	claims := &oauthStateClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			ID:        nonce,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Provider:    state.Provider,
		CallbackURL: state.CallbackURL,
		RememberMe:  state.RememberMe,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(signKey))
	if err != nil {
		return "", fmt.Errorf("error occurred during signing OAuth state: %w", err)
	}
	return signed, nil
}

// ParseOAuthState validates the signature, issuer and expiry of a state
// produced by [GenerateOAuthState] and returns its payload.
func ParseOAuthState(raw, signKey, issuer string) (models.OAuthState, error) {
	claims := &oauthStateClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (any, error) {
		return []byte(signKey), nil
	}, jwt.WithIssuer(issuer), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return models.OAuthState{}, fmt.Errorf("error occurred validating OAuth state: %w", err)
	}
	if claims.Provider == "" {
		return models.OAuthState{}, errors.New("empty provider in OAuth state")
	}

	return models.OAuthState{
		Provider:    claims.Provider,
		CallbackURL: claims.CallbackURL,
		RememberMe:  claims.RememberMe,
	}, nil
}

// ParseBearerToken extracts the token from an "Authorization: Bearer <token>"
// header value.
func ParseBearerToken(authorizationHeader string) (string, error) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(authorizationHeader), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", errors.New("invalid authorization header")
	}
	return strings.TrimSpace(token), nil
}

package api

import (
	"context"
	"crypto/ed25519"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"zenthra/api/openapi"
)

const contextKeyIdentity = "identity"

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid token")
)

// ParsePublicKey 解析 PEM 格式的 ed25519 公鑰
func ParsePublicKey(pemData []byte) (ed25519.PublicKey, error) {
	const op = "ParsePublicKey"
	key, err := jwt.ParseEdPublicKeyFromPEM(pemData)
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to parse public key, err=%w", op, err)
	}
	publicKey, ok := key.(ed25519.PublicKey)
	if !ok {
		return nil, fmt.Errorf("[%s] Public key is not ed25519", op)
	}
	return publicKey, nil
}

// TokenVerifier 驗證 EdDSA 簽章的 JWT，sub 即為呼叫者身分
type TokenVerifier struct {
	key    ed25519.PublicKey
	parser *jwt.Parser
}

func NewTokenVerifier(config AuthConfig) (*TokenVerifier, error) {
	if len(config.PublicKey) != ed25519.PublicKeySize {
		return nil, errors.New("invalid ed25519 public key")
	}
	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodEdDSA.Alg()}),
	}
	if config.Issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(config.Issuer))
	}
	if config.Audience != "" {
		parserOpts = append(parserOpts, jwt.WithAudience(config.Audience))
	}
	return &TokenVerifier{
		key:    config.PublicKey,
		parser: jwt.NewParser(parserOpts...),
	}, nil
}

// Verify 驗證 token 並回傳 sub
func (v *TokenVerifier) Verify(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := v.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return v.key, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid {
		return "", ErrInvalidToken
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return "", fmt.Errorf("%w: empty subject", ErrInvalidToken)
	}
	return claims.Subject, nil
}

// AuthMiddleware 只對宣告 bearerAuth 的操作驗證 Authorization header，成功後把身分放進 gin context
func (impl *ServerImpl) AuthMiddleware() openapi.MiddlewareFunc {
	return func(c *gin.Context) {
		if _, ok := c.Get(openapi.BearerAuthScopes); !ok {
			return
		}
		header := c.GetHeader("Authorization")
		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(tokenString) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, openapi.Error{Message: ErrMissingToken.Error()})
			return
		}
		identity, err := impl.verifier.Verify(strings.TrimSpace(tokenString))
		if err != nil {
			impl.logger.Debug("reject token", slog.Any("error", err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, openapi.Error{Message: err.Error()})
			return
		}
		c.Set(contextKeyIdentity, identity)
	}
}

// identityFrom 從 strict handler 的 context 取出呼叫者身分，gin.Context.Value 會查詢 c.Keys
func identityFrom(ctx context.Context) string {
	identity, _ := ctx.Value(contextKeyIdentity).(string)
	return identity
}

package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	appErrors "github.com/Dukorsa/APP_CORRETORA_GO/internal/core"
	appLogger "github.com/Dukorsa/APP_CORRETORA_GO/internal/core/logger"
)

// AccessTTL é a validade padrão dos tokens emitidos por GerarToken.
const AccessTTL = 24 * time.Hour

// Claims do token de acesso. O Subject carrega o ID do usuário dono dos dados.
type Claims struct {
	jwt.RegisteredClaims
}

// TokenManager emite e valida tokens HS256 assinados com a SECRET_KEY.
// A emissão existe para testes e uso local; em produção o token vem do provedor de identidade.
type TokenManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewTokenManager cria o gerenciador. ttl <= 0 usa AccessTTL.
func NewTokenManager(secret, issuer string, ttl time.Duration) *TokenManager {
	if strings.TrimSpace(secret) == "" {
		appLogger.Fatalf("SECRET_KEY vazia fornecida para NewTokenManager")
	}
	if ttl <= 0 {
		ttl = AccessTTL
	}
	return &TokenManager{secret: []byte(secret), issuer: issuer, ttl: ttl}
}

// GerarToken gera um token para o usuário informado.
func (m *TokenManager) GerarToken(userID string) (string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", fmt.Errorf("%w: usuário vazio", appErrors.ErrInvalidInput)
	}
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now.Add(-1 * time.Minute)),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			ID:        uuid.NewString(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", appErrors.WrapErrorf(err, "falha ao assinar token")
	}
	return signed, nil
}

// ValidarToken valida assinatura, emissor e validade e devolve as claims.
// Qualquer falha é reportada como ErrTokenExpired.
func (m *TokenManager) ValidarToken(raw string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}
	parser := jwt.NewParser(opts...)

	token, err := parser.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", appErrors.ErrTokenExpired, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%w: claims inválidas", appErrors.ErrTokenExpired)
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return nil, fmt.Errorf("%w: token sem subject", appErrors.ErrTokenExpired)
	}
	return claims, nil
}

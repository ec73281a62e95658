package service

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"taskflow/internal/domain"
)

// JWTService emite y valida tokens JWT firmados con un secreto simétrico.
// La verificación es stateless: firma + expiración, sin consultar el store,
// así que un token filtrado sigue siendo válido hasta que expira.
type JWTService struct {
	secret []byte
	ttl    time.Duration
	issuer string
}

// Claims es el conjunto de claims embebido en cada token.
type Claims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

var (
	ErrTokenInvalid   = errors.New("token invalid")
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenMalformed = errors.New("token malformed")
)

// Expiración fija de 7 días desde la emisión.
const tokenTTL = 7 * 24 * time.Hour

// NewJWTService construye el servicio con el secreto inyectado. Un secreto
// vacío es un error de configuración, no un default silencioso.
func NewJWTService(secret string) (*JWTService, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("jwt secret is empty")
	}
	return &JWTService{
		secret: []byte(secret),
		ttl:    tokenTTL,
		issuer: "taskflow",
	}, nil
}

// Generate emite un token firmado con {userId, email, iat, exp}.
func (s *JWTService) Generate(user domain.User) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Parse valida firma y expiración y devuelve los claims embebidos.
// Distingue expirado, malformado e inválido para el log interno; el borde
// HTTP aplana todo a la misma respuesta.
func (s *JWTService) Parse(tokenString string) (Claims, error) {
	if strings.TrimSpace(tokenString) == "" {
		return Claims{}, ErrTokenMalformed
	}

	var claims Claims
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	_, err := parser.ParseWithClaims(tokenString, &claims, func(_ *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return Claims{}, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenMalformed):
			return Claims{}, ErrTokenMalformed
		default:
			return Claims{}, ErrTokenInvalid
		}
	}

	if strings.TrimSpace(claims.UserID) == "" {
		return Claims{}, ErrTokenInvalid
	}
	return claims, nil
}

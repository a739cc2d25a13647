package util

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims 自定义 JWT 负载：每个 token 绑定一个 agency
type Claims struct {
	AgencyID string `json:"agency_id"`
	ActorID  string `json:"actor_id"`
	Role     string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// GenerateToken 生成 agency 用户的 JWT，可指定有效期
func GenerateToken(secret, issuer, agencyID, actorID, role string, ttl time.Duration) (string, error) {
	if agencyID == "" {
		return "", errors.New("agency id is empty")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	now := time.Now()
	claims := &Claims{
		AgencyID: agencyID,
		ActorID:  actorID,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   actorID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken 解析并验证 JWT，返回 Claims
func ParseToken(secret, tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.AgencyID == "" {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

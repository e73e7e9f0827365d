package token_service

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/golang-jwt/jwt"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"golang.org/x/net/context"
)

// Tokens are issued by the external auth service; this side only validates
// them and checks the shared session cache.

type AccessTokenClaims struct {
	AccessUUID string `json:"accessUuid"`
	UserID     int    `json:"userId"`
	Exp        int    `json:"exp"`
	jwt.StandardClaims
}

type AccessTokenCache struct {
	UserID      int    `json:"userId"`
	RefreshUUID string `json:"refreshUuid"`
}

type Service struct {
	cache        *redis.Client
	accessSecret string
}

func NewService(cache *redis.Client) *Service {
	return &Service{
		cache:        cache,
		accessSecret: os.Getenv("ACCESS_SECRET"),
	}
}

// DecodeAccessToken parses and validates an access token.
func (s *Service) DecodeAccessToken(tokenString string) (*AccessTokenClaims, error) {
	claims := &AccessTokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.accessSecret), nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "parsing access token")
	}
	if !token.Valid {
		return nil, errors.New("invalid access token")
	}

	return claims, nil
}

// GetCacheValue returns the cached session for an access UUID. A missing key
// means the token was revoked or expired server-side.
func (s *Service) GetCacheValue(ctx context.Context, accessUUID string) (*AccessTokenCache, error) {
	value, err := s.cache.Get(ctx, accessUUID).Result()
	if err != nil {
		return nil, err
	}

	cached := &AccessTokenCache{}
	if err = json.Unmarshal([]byte(value), cached); err != nil {
		return nil, err
	}

	return cached, nil
}

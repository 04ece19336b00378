package jwtPkg

import (
	"FastGrapher/internal/entity"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

const AccessTokenSecret = "JWT_ACCESS_TOKEN_SECRET"

var (
	ErrMissingSecret = errors.New("JWT_ACCESS_TOKEN_SECRET not set")
	ErrEmptyHeader   = errors.New("empty Authorization header")
	ErrInvalidFormat = errors.New("invalid Authorization format")
)

// TokenTTL reads JWT_EXPIRES_IN (a Go duration), defaulting to one day.
func TokenTTL() time.Duration {
	if d, err := time.ParseDuration(os.Getenv("JWT_EXPIRES_IN")); err == nil && d > 0 {
		return d
	}
	return 24 * time.Hour
}

func Sign(Data map[string]interface{}, ExpiredAt time.Duration) (string, int64, error) {
	expiredAt := time.Now().Add(ExpiredAt).Unix()

	JWTSecretKey := os.Getenv(AccessTokenSecret)
	if JWTSecretKey == "" {
		return "", 0, ErrMissingSecret
	}

	claims := jwt.MapClaims{}
	claims["exp"] = expiredAt
	claims["iat"] = time.Now().Unix()

	for i, v := range Data {
		claims[i] = v
	}

	to := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	accessToken, err := to.SignedString([]byte(JWTSecretKey))
	if err != nil {
		logrus.WithError(err).Error("Failed to sign token")
		return "", 0, err
	}

	return accessToken, expiredAt, nil
}

// VerifyTokenHeader checks the bearer token. WebSocket upgrades may pass it
// as the access_token query parameter instead, since browsers cannot set
// headers on them.
func VerifyTokenHeader(c *fiber.Ctx, secretEnvKey string) (*jwt.Token, error) {
	header := c.Get("Authorization")
	if header == "" {
		if token := c.Query("access_token"); token != "" && isWebSocketUpgrade(c) {
			return Parse(token, os.Getenv(secretEnvKey))
		}
		return nil, ErrEmptyHeader
	}

	accessToken, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return nil, ErrInvalidFormat
	}

	accessToken = strings.TrimSpace(accessToken)
	if accessToken == "" {
		return nil, ErrInvalidFormat
	}

	return Parse(accessToken, os.Getenv(secretEnvKey))
}

func Parse(accessToken string, secret string) (*jwt.Token, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}

	return jwt.Parse(accessToken, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithExpirationRequired())
}

// UserFromClaims rebuilds the login data placed in the token by the auth
// service.
func UserFromClaims(claims jwt.MapClaims) (entity.UserLoginData, bool) {
	id, okID := claims["id"].(string)
	email, okEmail := claims["email"].(string)
	if !okID || !okEmail || id == "" {
		return entity.UserLoginData{}, false
	}

	name, _ := claims["name"].(string)
	return entity.UserLoginData{ID: id, Email: email, Name: name}, true
}

func GetUserLoginData(c *fiber.Ctx) (entity.UserLoginData, error) {
	userData := c.Locals("user")

	user, ok := userData.(entity.UserLoginData)
	if !ok {
		return entity.UserLoginData{}, fiber.ErrUnauthorized
	}

	return user, nil
}

func isWebSocketUpgrade(c *fiber.Ctx) bool {
	return strings.EqualFold(c.Get(fiber.HeaderUpgrade), "websocket")
}

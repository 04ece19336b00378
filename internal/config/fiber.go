package config

import (
	"os"
	"strconv"

	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

// defaultBodyLimit leaves room for the multipart envelope around the largest
// accepted photo.
const defaultBodyLimit = 25 * 1024 * 1024

func NewFiber(logger *logrus.Logger) *fiber.App {
	app := fiber.New(
		fiber.Config{
			AppName:           "FastGrapher Backend",
			BodyLimit:         bodyLimit(logger),
			DisableKeepalive:  false,
			StrictRouting:     true,
			CaseSensitive:     true,
			EnablePrintRoutes: os.Getenv("APP_ENV") != "production",
			JSONEncoder:       jsoniter.Marshal,
			JSONDecoder:       jsoniter.Unmarshal,
		})

	return app
}

// bodyLimit reads BODY_LIMIT_MB.
func bodyLimit(logger *logrus.Logger) int {
	raw := os.Getenv("BODY_LIMIT_MB")
	if raw == "" {
		return defaultBodyLimit
	}
	mb, err := strconv.Atoi(raw)
	if err != nil || mb <= 0 {
		logger.Warnf("invalid BODY_LIMIT_MB %q, using default", raw)
		return defaultBodyLimit
	}
	return mb * 1024 * 1024
}

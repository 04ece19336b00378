package authService

import (
	"FastGrapher/internal/entity"
	"strings"

	"github.com/google/uuid"
)

func MakeUserData(user entity.User) map[string]interface{} {
	return map[string]interface{}{
		"id":    user.ID,
		"email": user.Email,
		"name":  user.Name,
	}
}

func verificationKey(token string) string {
	return "auth:verify:" + token
}

func resetKey(token string) string {
	return "auth:reset:" + token
}

func newToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func verificationLink(frontendURL, token string) string {
	return frontendURL + "/verify/" + token
}

func resetLink(frontendURL, token string) string {
	return frontendURL + "/reset-password?token=" + token
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

package auth

import (
	"FastGrapher/pkg/response"
	"net/http"
)

var (
	ErrEmailAlreadyExists     = response.NewCodedError(http.StatusConflict, "EMAIL_ALREADY_EXISTS", "user with this email already exists")
	ErrInvalidEmailOrPassword = response.NewCodedError(http.StatusUnauthorized, "INVALID_CREDENTIALS", "email or password is wrong")
	ErrEmailNotVerified       = response.NewCodedError(http.StatusUnauthorized, "EMAIL_NOT_VERIFIED", "please verify your email before logging in")
	ErrUserInactive           = response.NewCodedError(http.StatusForbidden, "USER_INACTIVE", "user account is disabled")
	ErrUserNotFound           = response.NewCodedError(http.StatusNotFound, "USER_NOT_FOUND", "user not found")
	ErrInvalidVerifyToken     = response.NewCodedError(http.StatusUnauthorized, "INVALID_VERIFICATION_TOKEN", "invalid or expired verification token")
	ErrInvalidResetToken      = response.NewCodedError(http.StatusUnauthorized, "INVALID_RESET_TOKEN", "invalid or expired password reset token")
	ErrNothingToUpdate        = response.NewCodedError(http.StatusBadRequest, "NOTHING_TO_UPDATE", "no fields to update")
)

package authService

import (
	"FastGrapher/internal/api/auth"
	contextPkg "FastGrapher/pkg/context"
	"FastGrapher/pkg/redis"
	"context"
	"errors"

	"github.com/sirupsen/logrus"
)

// ForgotPassword answers the same message whether or not the e-mail is
// registered.
func (s *passwordDomainImpl) ForgotPassword(c context.Context, email string) (auth.MessageResponse, error) {
	requestID := contextPkg.GetRequestID(c)
	res := auth.MessageResponse{Message: auth.MessageResetSent}

	repo, err := s.repo.NewClient(false)
	if err != nil {
		return auth.MessageResponse{}, err
	}

	user, err := repo.Users.GetByEmail(c, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			return res, nil
		}
		return auth.MessageResponse{}, err
	}

	token := newToken()
	if err := s.redisServer.SetToken(c, resetKey(token), user.ID, ResetTokenTTL); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to store reset token")
		return auth.MessageResponse{}, err
	}

	if err := s.smtpMailer.SendPasswordReset(user.Email, user.Name, resetLink(s.frontendURL, token)); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"user_id":    user.ID,
			"error":      err.Error(),
		}).Error("Failed to send reset email")
	}

	return res, nil
}

func (s *passwordDomainImpl) ResetPassword(c context.Context, req auth.ResetPasswordRequest) (auth.MessageResponse, error) {
	requestID := contextPkg.GetRequestID(c)

	userID, err := s.redisServer.ConsumeToken(c, resetKey(req.Token))
	if err != nil {
		if errors.Is(err, redis.ErrTokenNotFound) {
			return auth.MessageResponse{}, auth.ErrInvalidResetToken
		}
		return auth.MessageResponse{}, err
	}

	hashed, err := s.bcryptUtils.HashPassword(req.Password)
	if err != nil {
		return auth.MessageResponse{}, err
	}

	repo, err := s.repo.NewClient(false)
	if err != nil {
		return auth.MessageResponse{}, err
	}

	if err := repo.Users.UpdatePassword(c, userID, hashed); err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			return auth.MessageResponse{}, auth.ErrInvalidResetToken
		}
		return auth.MessageResponse{}, err
	}

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"user_id":    userID,
	}).Info("Password reset")

	return auth.MessageResponse{Message: auth.MessagePasswordReset}, nil
}

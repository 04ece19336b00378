package authService

import (
	"FastGrapher/internal/api/auth"
	"FastGrapher/internal/entity"
	contextPkg "FastGrapher/pkg/context"
	jwtPkg "FastGrapher/pkg/jwt"
	"FastGrapher/pkg/redis"
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
)

func (s *authDomainImpl) Register(c context.Context, req auth.RegisterRequest) (auth.RegisterResponse, error) {
	requestID := contextPkg.GetRequestID(c)
	email := normalizeEmail(req.Email)

	repo, err := s.repo.NewClient(true)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return auth.RegisterResponse{}, err
	}
	defer func() {
		_ = repo.Rollback()
	}()

	if _, err := repo.Users.GetByEmail(c, email); err == nil {
		return auth.RegisterResponse{}, auth.ErrEmailAlreadyExists
	} else if !errors.Is(err, auth.ErrUserNotFound) {
		return auth.RegisterResponse{}, err
	}

	hashed, err := s.bcryptUtils.HashPassword(req.Password)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to hash password")
		return auth.RegisterResponse{}, err
	}

	id, err := s.utils.NewULIDFromTimestamp(time.Now())
	if err != nil {
		return auth.RegisterResponse{}, err
	}

	user := entity.User{
		ID:       id,
		Email:    email,
		Password: hashed,
		Name:     req.Name,
		IsActive: true,
	}

	if err := repo.Users.CreateUser(c, user); err != nil {
		return auth.RegisterResponse{}, err
	}

	token := newToken()
	if err := s.redisServer.SetToken(c, verificationKey(token), user.ID, VerificationTokenTTL); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to store verification token")
		return auth.RegisterResponse{}, err
	}

	if err := repo.Commit(); err != nil {
		_ = s.redisServer.DeleteToken(c, verificationKey(token))
		return auth.RegisterResponse{}, err
	}

	res := auth.RegisterResponse{Message: auth.MessageRegistered, UserID: user.ID}

	if err := s.smtpMailer.SendVerification(user.Email, user.Name, verificationLink(s.frontendURL, token)); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"user_id":    user.ID,
			"error":      err.Error(),
		}).Error("Failed to send verification email")
		res.Message = auth.MessageRegisteredNoEmail
	}

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"user_id":    user.ID,
	}).Info("User registered")

	return res, nil
}

func (s *authDomainImpl) VerifyEmail(c context.Context, token string) (auth.MessageResponse, error) {
	requestID := contextPkg.GetRequestID(c)

	userID, err := s.redisServer.ConsumeToken(c, verificationKey(token))
	if err != nil {
		if errors.Is(err, redis.ErrTokenNotFound) {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
			}).Warn("Unknown verification token")
			return auth.MessageResponse{}, auth.ErrInvalidVerifyToken
		}
		return auth.MessageResponse{}, err
	}

	repo, err := s.repo.NewClient(false)
	if err != nil {
		return auth.MessageResponse{}, err
	}

	if err := repo.Users.MarkVerified(c, userID, time.Now()); err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			return auth.MessageResponse{}, auth.ErrInvalidVerifyToken
		}
		return auth.MessageResponse{}, err
	}

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"user_id":    userID,
	}).Info("Email verified")

	return auth.MessageResponse{Message: auth.MessageVerified}, nil
}

func (s *authDomainImpl) Login(c context.Context, req auth.LoginRequest) (auth.LoginResponse, error) {
	requestID := contextPkg.GetRequestID(c)
	repo, err := s.repo.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return auth.LoginResponse{}, err
	}

	user, err := repo.Users.GetByEmail(c, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			return auth.LoginResponse{}, auth.ErrInvalidEmailOrPassword
		}
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to get user by email")
		return auth.LoginResponse{}, err
	}

	if err := s.bcryptUtils.ComparePassword(user.Password, req.Password); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Password comparison failed")
		return auth.LoginResponse{}, auth.ErrInvalidEmailOrPassword
	}

	if !user.IsVerified() {
		return auth.LoginResponse{}, auth.ErrEmailNotVerified
	}

	if !user.IsActive {
		return auth.LoginResponse{}, auth.ErrUserInactive
	}

	token, expired, err := jwtPkg.Sign(MakeUserData(user), jwtPkg.TokenTTL())
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to sign token")
		return auth.LoginResponse{}, err
	}

	return auth.LoginResponse{
		Token:            token,
		ExpiresInMinutes: time.Until(time.Unix(expired, 0)).Minutes(),
		User:             auth.NewUserResponse(user),
	}, nil
}

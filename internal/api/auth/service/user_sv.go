package authService

import (
	"FastGrapher/internal/api/auth"
	contextPkg "FastGrapher/pkg/context"
	"context"
	"strings"

	"github.com/sirupsen/logrus"
)

func (s *userDomainImpl) GetProfile(c context.Context, userID string) (auth.UserResponse, error) {
	repo, err := s.repo.NewClient(false)
	if err != nil {
		return auth.UserResponse{}, err
	}

	user, err := repo.Users.GetByID(c, userID)
	if err != nil {
		return auth.UserResponse{}, err
	}

	return auth.NewUserResponse(user), nil
}

func (s *userDomainImpl) UpdateUser(c context.Context, userID string, req auth.UpdateUserRequest) (auth.UserResponse, error) {
	requestID := contextPkg.GetRequestID(c)

	if req.Name == nil && req.Password == nil && req.Avatar == nil {
		return auth.UserResponse{}, auth.ErrNothingToUpdate
	}

	repo, err := s.repo.NewClient(true)
	if err != nil {
		return auth.UserResponse{}, err
	}
	defer func() {
		_ = repo.Rollback()
	}()

	user, err := repo.Users.GetByID(c, userID)
	if err != nil {
		return auth.UserResponse{}, err
	}

	if req.Name != nil || req.Avatar != nil {
		if req.Name != nil {
			user.Name = strings.TrimSpace(*req.Name)
		}
		if req.Avatar != nil {
			user.Avatar = *req.Avatar
		}
		if err := repo.Users.UpdateProfile(c, user); err != nil {
			return auth.UserResponse{}, err
		}
	}

	if req.Password != nil {
		hashed, err := s.bcryptUtils.HashPassword(*req.Password)
		if err != nil {
			return auth.UserResponse{}, err
		}
		if err := repo.Users.UpdatePassword(c, user.ID, hashed); err != nil {
			return auth.UserResponse{}, err
		}
	}

	if err := repo.Commit(); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to commit user update")
		return auth.UserResponse{}, err
	}

	return auth.NewUserResponse(user), nil
}

func (s *userDomainImpl) DeleteUser(c context.Context, userID string) error {
	requestID := contextPkg.GetRequestID(c)

	repo, err := s.repo.NewClient(false)
	if err != nil {
		return err
	}

	if _, err := repo.Users.GetByID(c, userID); err != nil {
		return err
	}

	if s.cleaner != nil {
		if err := s.cleaner.RemoveByUser(c, userID); err != nil {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"user_id":    userID,
				"error":      err.Error(),
			}).Error("Failed to remove user photos")
			return err
		}
	}

	if err := repo.Users.DeleteUser(c, userID); err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"user_id":    userID,
	}).Info("User deleted")

	return nil
}

package authService

import (
	"FastGrapher/internal/api/auth"
	authRepository "FastGrapher/internal/api/auth/repository"
	"FastGrapher/pkg/bcrypt"
	"FastGrapher/pkg/redis"
	"FastGrapher/pkg/smtp"
	"FastGrapher/pkg/utils"
	"context"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	VerificationTokenTTL = 24 * time.Hour
	ResetTokenTTL        = time.Hour
)

type AuthService interface {
	User() UserDomain
	Auth() AuthDomain
	Password() PasswordDomain
}

type AuthDomain interface {
	Register(c context.Context, req auth.RegisterRequest) (auth.RegisterResponse, error)
	VerifyEmail(c context.Context, token string) (auth.MessageResponse, error)
	Login(c context.Context, req auth.LoginRequest) (auth.LoginResponse, error)
}

type UserDomain interface {
	GetProfile(c context.Context, userID string) (auth.UserResponse, error)
	UpdateUser(c context.Context, userID string, req auth.UpdateUserRequest) (auth.UserResponse, error)
	DeleteUser(c context.Context, userID string) error
}

type PasswordDomain interface {
	ForgotPassword(c context.Context, email string) (auth.MessageResponse, error)
	ResetPassword(c context.Context, req auth.ResetPasswordRequest) (auth.MessageResponse, error)
}

// UserDataCleaner removes whatever a user owns outside the users table
// before the account is deleted.
type UserDataCleaner interface {
	RemoveByUser(c context.Context, userID string) error
}

type authService struct {
	userDomain     UserDomain
	authDomain     AuthDomain
	passwordDomain PasswordDomain
}

func (a *authService) User() UserDomain {
	return a.userDomain
}

func (a *authService) Auth() AuthDomain {
	return a.authDomain
}

func (a *authService) Password() PasswordDomain {
	return a.passwordDomain
}

type userDomainImpl struct {
	log         *logrus.Logger
	repo        authRepository.Repository
	bcryptUtils bcrypt.IBcrypt
	cleaner     UserDataCleaner
}

type authDomainImpl struct {
	log         *logrus.Logger
	repo        authRepository.Repository
	redisServer redis.IRedis
	smtpMailer  smtp.ItfSmtp
	bcryptUtils bcrypt.IBcrypt
	utils       utils.IUtils
	frontendURL string
}

type passwordDomainImpl struct {
	log         *logrus.Logger
	repo        authRepository.Repository
	redisServer redis.IRedis
	smtpMailer  smtp.ItfSmtp
	bcryptUtils bcrypt.IBcrypt
	frontendURL string
}

// New wires the auth sub-domains. cleaner may be nil. FRONTEND_URL is the
// base of the links put in e-mails.
func New(log *logrus.Logger,
	authRepo authRepository.Repository,
	smtpMailer smtp.ItfSmtp,
	redisServer redis.IRedis,
	bcryptUtils bcrypt.IBcrypt,
	utils utils.IUtils,
	cleaner UserDataCleaner,
) AuthService {
	frontendURL := strings.TrimRight(os.Getenv("FRONTEND_URL"), "/")

	return &authService{
		userDomain:     &userDomainImpl{log: log, repo: authRepo, bcryptUtils: bcryptUtils, cleaner: cleaner},
		authDomain:     &authDomainImpl{log: log, repo: authRepo, redisServer: redisServer, smtpMailer: smtpMailer, bcryptUtils: bcryptUtils, utils: utils, frontendURL: frontendURL},
		passwordDomain: &passwordDomainImpl{log: log, repo: authRepo, redisServer: redisServer, smtpMailer: smtpMailer, bcryptUtils: bcryptUtils, frontendURL: frontendURL},
	}
}

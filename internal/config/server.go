package config

import (
	"FastGrapher/database/migrations"
	"FastGrapher/database/postgres"
	authHandler "FastGrapher/internal/api/auth/handler"
	authRepository "FastGrapher/internal/api/auth/repository"
	authService "FastGrapher/internal/api/auth/service"
	photoHandler "FastGrapher/internal/api/photo/handler"
	photoRepository "FastGrapher/internal/api/photo/repository"
	photoService "FastGrapher/internal/api/photo/service"
	projectHandler "FastGrapher/internal/api/project/handler"
	projectRepository "FastGrapher/internal/api/project/repository"
	projectService "FastGrapher/internal/api/project/service"
	"FastGrapher/internal/classifier"
	"FastGrapher/internal/middleware"
	"FastGrapher/pkg/bcrypt"
	"FastGrapher/pkg/redis"
	"FastGrapher/pkg/smtp"
	"FastGrapher/pkg/storage"
	"FastGrapher/pkg/utils"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type ServerOption func(*Server) error

type Server struct {
	engine      *fiber.App
	db          *sqlx.DB
	log         *logrus.Logger
	middleware  middleware.Middleware
	validator   *validator.Validate
	utils       utils.IUtils
	bcryptUtils bcrypt.IBcrypt
	handlers    []handler
	redisServer redis.IRedis
	smtpMailer  smtp.ItfSmtp
	storage     storage.IStorage
	classifier  *classifier.Classifier
}

type handler interface {
	Start(srv fiber.Router)
}

func NewServer(options ...ServerOption) (*Server, error) {
	server := &Server{}

	for _, option := range options {
		if err := option(server); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if server.engine == nil {
		return nil, fmt.Errorf("fiber app is required")
	}
	if server.log == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if server.classifier == nil {
		return nil, fmt.Errorf("classifier is required")
	}

	return server, nil
}

func WithFiber(fiberApp *fiber.App) ServerOption {
	return func(s *Server) error {
		s.engine = fiberApp
		return nil
	}
}

func WithLogger(logger *logrus.Logger) ServerOption {
	return func(s *Server) error {
		s.log = logger
		return nil
	}
}

func WithValidator(validator *validator.Validate) ServerOption {
	return func(s *Server) error {
		s.validator = validator
		return nil
	}
}

// WithDatabase connects to postgres and applies pending migrations.
func WithDatabase() ServerOption {
	return func(s *Server) error {
		db, err := postgres.New()
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to connect to database: %v", err)
			}
			return fmt.Errorf("failed to create database connection: %w", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := migrations.Up(ctx, db, s.log); err != nil {
			db.Close()
			return fmt.Errorf("failed to run migrations: %w", err)
		}

		s.db = db
		return nil
	}
}

func WithRedisServer(redisServer redis.IRedis) ServerOption {
	return func(s *Server) error {
		s.redisServer = redisServer
		return nil
	}
}

func WithSMTPMailer(smtpMailer smtp.ItfSmtp) ServerOption {
	return func(s *Server) error {
		s.smtpMailer = smtpMailer
		return nil
	}
}

func WithStorage() ServerOption {
	return func(s *Server) error {
		if s.log == nil {
			return fmt.Errorf("logger must be initialized before storage")
		}
		store, err := storage.New(s.log)
		if err != nil {
			s.log.Errorf("Failed to initialize storage: %v", err)
			return fmt.Errorf("failed to create storage: %w", err)
		}
		s.log.WithField("driver", store.Driver()).Info("Storage ready")
		s.storage = store
		return nil
	}
}

func WithClassifier(cl *classifier.Classifier) ServerOption {
	return func(s *Server) error {
		s.classifier = cl
		return nil
	}
}

func WithMiddleware() ServerOption {
	return func(s *Server) error {
		if s.log == nil {
			return fmt.Errorf("logger must be initialized before middleware")
		}
		s.middleware = middleware.New(s.log)
		return nil
	}
}

func WithUtils() ServerOption {
	return func(s *Server) error {
		s.utils = utils.New()
		return nil
	}
}

func WithBcryptUtils() ServerOption {
	return func(s *Server) error {
		s.bcryptUtils = bcrypt.New()
		return nil
	}
}

func (s *Server) RegisterHandler() {
	// Photo Domain
	photoRepo := photoRepository.New(s.db, s.log)
	photoServices := photoService.NewPhotoService(s.log, photoRepo, s.storage, s.classifier, s.utils)
	photoHandlers := photoHandler.New(s.log, s.validator, s.middleware, photoServices, s.utils)

	// Project Domain
	projectRepo := projectRepository.New(s.db, s.log)
	projectServices := projectService.NewProjectService(s.log, projectRepo, photoServices, s.utils)
	projectHandlers := projectHandler.New(s.log, s.validator, s.middleware, projectServices, s.utils)

	// Auth Domain
	authRepo := authRepository.New(s.db, s.log)
	authServices := authService.New(s.log, authRepo, s.smtpMailer, s.redisServer, s.bcryptUtils, s.utils, photoServices)
	authHandlers := authHandler.New(s.log, authServices, s.validator, s.middleware)

	s.setupHealthCheck()
	s.handlers = append(s.handlers, authHandlers, projectHandlers, photoHandlers)
}

func (s *Server) Run() error {
	s.engine.Use(s.middleware.NewRequestIDMiddleware())
	s.engine.Use(s.middleware.NewLoggingMiddleware)
	router := s.engine.Group("/api/v1")

	for _, h := range s.handlers {
		h.Start(router)
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "3000"
	}

	return s.engine.Listen(fmt.Sprintf(":%s", port))
}

// Shutdown stops accepting requests, waits for in-flight ones and closes the
// database pool.
func (s *Server) Shutdown(timeout time.Duration) error {
	err := s.engine.ShutdownWithTimeout(timeout)
	if s.db != nil {
		if cerr := s.db.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

func (s *Server) setupHealthCheck() {
	s.engine.Get("/", func(ctx *fiber.Ctx) error {
		res := fiber.Map{
			"message": "Server is Healthy!",
			"models":  s.classifier.Models().Status(),
		}

		if s.redisServer != nil {
			c, cancel := context.WithTimeout(ctx.UserContext(), 2*time.Second)
			defer cancel()
			if err := s.redisServer.Ping(c); err != nil {
				res["redis"] = err.Error()
			} else {
				res["redis"] = "ok"
			}
		}

		return ctx.JSON(res)
	})
}

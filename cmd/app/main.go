package main

import (
	"FastGrapher/internal/classifier"
	"FastGrapher/internal/config"
	"FastGrapher/pkg/gemini"
	"FastGrapher/pkg/log"
	"FastGrapher/pkg/onnx"
	"FastGrapher/pkg/redis"
	"FastGrapher/pkg/smtp"
	"FastGrapher/pkg/vision"
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logrus.Fatalf("Error loading .env file: %v", err)
	}
	logger := log.NewLogger()
	classifier.SetLogger(logger)

	visionClient := vision.New(logger)
	defer visionClient.CloseConnections()

	loadCtx, cancelLoad := context.WithTimeout(context.Background(), time.Minute)
	models := classifier.LoadModels(loadCtx, logger, visionClient.FaceLoader(), objectLoader(logger, visionClient))
	cancelLoad()
	logger.WithField("models", models.Status()).Info("Detectors loaded")

	var opts []classifier.Option
	if v := os.Getenv("DETECTOR_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			logger.Warnf("invalid DETECTOR_TIMEOUT %q, using default", v)
		} else {
			opts = append(opts, classifier.WithTimeout(d))
		}
	}
	photoClassifier := classifier.New(models, logger, opts...)

	fiberApp := config.NewFiber(logger)
	validator := config.NewValidator()
	redisServer := redis.New(logger)
	smtpMailer := smtp.New()

	server, err := config.NewServer(
		config.WithFiber(fiberApp),
		config.WithLogger(logger),
		config.WithValidator(validator),
		config.WithDatabase(),
		config.WithRedisServer(redisServer),
		config.WithSMTPMailer(smtpMailer),
		config.WithStorage(),
		config.WithClassifier(photoClassifier),
		config.WithMiddleware(),
		config.WithBcryptUtils(),
		config.WithUtils(),
	)
	if err != nil {
		logger.Fatal(err)
	}

	server.RegisterHandler()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.Run(); err != nil {
			logger.Fatalf("Error starting server: %v", err)
		}
	}()

	logger.Info("Server started successfully")

	<-sigChan
	logger.Info("Shutting down server...")

	if err := server.Shutdown(10 * time.Second); err != nil {
		logger.Errorf("Error during shutdown: %v", err)
	}
}

// objectLoader picks the object detection backend from OBJECT_DETECTOR:
// vision (default), gemini or onnx.
func objectLoader(logger *logrus.Logger, visionClient *vision.Client) classifier.ObjectLoader {
	backend := strings.ToLower(strings.TrimSpace(os.Getenv("OBJECT_DETECTOR")))
	switch backend {
	case "gemini":
		return gemini.ObjectLoader()
	case "onnx":
		return onnx.ObjectLoader(onnx.ConfigFromEnv())
	case "", "vision":
		return visionClient.ObjectLoader()
	default:
		logger.Warnf("unknown OBJECT_DETECTOR %q, using vision", backend)
		return visionClient.ObjectLoader()
	}
}

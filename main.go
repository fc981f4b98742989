package main

import (
	"signn-go/internal/config"
	"signn-go/internal/database"
	"signn-go/internal/decision"
	logger "signn-go/internal/logging"
	"signn-go/internal/models"
	"signn-go/internal/router"
	"signn-go/internal/services"
	"signn-go/internal/session"
	"signn-go/internal/vision"

	"go.uber.org/zap"
)

func main() {
	// Initialize Logger with defaults; the configuration is not loaded yet.
	log, err := logger.Init("logs", logger.DefaultRotation)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer func() { log.Sync() }()

	// Initialize Configuration
	if err := config.Init(".", log); err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	// Re-open the logger with the configured directory and rotation limits.
	logCfg := config.Conf.Logging
	log, err = logger.Init(logCfg.Directory, logger.Rotation{
		MaxSize:    logCfg.MaxSize,
		MaxBackups: logCfg.MaxBackups,
		MaxAge:     logCfg.MaxAge,
		Compress:   logCfg.Compress,
	})
	if err != nil {
		panic("failed to initialize configured logger: " + err.Error())
	}

	// Initialize Database
	database.Init(log)

	// Load the behavioral question catalog at startup
	quiz, err := models.LoadQuiz(config.Conf.Readiness.QuizPath)
	if err != nil {
		log.Fatal("Failed to load behavioral quiz", zap.Error(err))
	}

	// Wire the readiness pipeline: frame tracker, fusion engine, sessions
	tracker := vision.NewTracker()
	engine := decision.NewEngine(quiz, services.NewConfigOverridePolicy())
	manager := session.NewManager(engine)

	notifier := services.NewOpsNotifier(log)
	sweeper := services.NewSweeper(log, manager, tracker)
	sweeper.Start()

	// Setup router, passing the logger to it
	r := router.Setup(log, manager, tracker, quiz, notifier)

	// Start the Gin server
	port := ":" + config.Conf.Server.Port
	log.Info("Server listening on http://localhost" + port)
	if err := r.Run(port); err != nil {
		log.Fatal("Failed to run Gin server", zap.Error(err))
	}
}

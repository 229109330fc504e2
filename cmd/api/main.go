package main

import (
	"time"

	"go.uber.org/zap"

	"postboard/config"
	"postboard/internal/api"
	"postboard/internal/db"
	"postboard/internal/events"
	"postboard/internal/mailer"
	"postboard/internal/otp"
	"postboard/internal/ratelimit"
	"postboard/internal/redisclient"
	"postboard/internal/repository"
	"postboard/internal/service"
	"postboard/internal/token"
)

// codeSendInterval is the minimum gap between code mails per user and
// purpose when redis throttling is enabled.
const codeSendInterval = time.Minute

func main() {
	cfg := config.Load()

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	dbConn, err := db.NewConnection(cfg.DB, logger)
	if err != nil {
		logger.Fatal("DB initialization failed", zap.Error(err))
	}
	defer dbConn.Close()

	// Optional collaborators: mail falls back to a logging transport,
	// throttling and events stay off without redis/mq configured.
	var mail mailer.Mailer
	if cfg.Mail.Host != "" {
		mail = mailer.NewSMTP(cfg.Mail)
	} else {
		logger.Warn("No mail host configured, using dev log transport")
		mail = mailer.NewLog(logger)
	}

	var limiter *ratelimit.CodeSender
	if cfg.Redis.Addr != "" {
		rdb := redisclient.New(cfg.Redis)
		defer rdb.Close()
		limiter = ratelimit.NewCodeSender(rdb, codeSendInterval)
	}

	var publisher *events.Publisher
	if cfg.MQ.URL != "" {
		publisher, err = events.NewPublisher(cfg.MQ.URL, logger)
		if err != nil {
			logger.Fatal("failed to init publisher", zap.Error(err))
		}
		defer publisher.Close()
	}

	userRepo := repository.NewUserRepository(dbConn)
	postRepo := repository.NewPostRepository(dbConn)

	codes := otp.New(cfg.Auth.CodeSecret)
	issuer := token.NewIssuer(cfg.Auth.TokenSecret)

	authService := service.NewAuthService(
		userRepo, mail, codes, issuer, limiter, publisher,
		logger, cfg.Mail.From, cfg.Auth.BcryptCost,
	)
	postService := service.NewPostService(postRepo, publisher, logger)

	authHandler := api.NewAuthHandler(authService, logger, cfg.Server.Env)
	postHandler := api.NewPostHandler(postService, logger)

	router := api.NewRouter(authHandler, postHandler, issuer, dbConn)

	if err := router.Run(cfg.Server.Port); err != nil {
		logger.Fatal("server start failed", zap.Error(err))
	}
}

package main

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	appcontext "github.com/openconf/confreg/internal/app_context"
	"github.com/openconf/confreg/internal/auth"
	"github.com/openconf/confreg/internal/config"
	"github.com/openconf/confreg/internal/controller"
	"github.com/openconf/confreg/internal/database"
	"github.com/openconf/confreg/internal/env"
	filestorage "github.com/openconf/confreg/internal/file_storage"
	"github.com/openconf/confreg/internal/mailer"
	"github.com/openconf/confreg/internal/middleware"
	"github.com/openconf/confreg/internal/queue"
	ratelimiter "github.com/openconf/confreg/internal/rate_limiter"
	"github.com/openconf/confreg/internal/repository"
	"github.com/openconf/confreg/internal/route"
	"github.com/openconf/confreg/internal/uploader"
	"github.com/openconf/confreg/internal/util"
)

// this function run before main
func init() {
	env.LoadEnv(".env")
}

func main() {
	cfg := config.GetConfig()

	logger := util.NewLogger(cfg.ENV)
	logger.Debugf("Configuration: %+v \n", cfg)

	db, err := database.ConnectReturnGormDB(cfg.DB)
	if err != nil {
		logger.Panic(err)
	}

	sqlDb, err := db.DB()
	if err != nil {
		logger.Panic(err)
	}
	defer sqlDb.Close()
	logger.Info("Database connected \n")

	s3, err := filestorage.NewMinioClient(&cfg.Minio)
	if err != nil {
		logger.Error("Error connecting to minio")
		logger.Panic(err)
	}

	// Custom validation
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := v.RegisterValidation("strNotEmpty", util.StrNotEmpty); err != nil {
			return
		}
		if err = v.RegisterValidation("cmin", util.CustomMin); err != nil {
			return
		}
		if err = v.RegisterValidation("cmax", util.CustomMax); err != nil {
			return
		}
	}

	rateLimiter := ratelimiter.NewRateLimiter(cfg.RateLimiter, logger)
	mail := mailer.NewSendgrid(cfg.Mail.SEND_GRID.API_KEY, cfg.Mail.FROM_EMAIL, cfg.IsProduction(), logger)
	jwtService := auth.NewJwt(cfg.Auth, logger)

	var mailQueue *queue.RabbitMQ
	if cfg.Queue.Enabled {
		mailQueue, err = queue.NewRabbitMQ(cfg.Queue.URL)
		if err != nil {
			// The api still works without the queue, confirmation
			// mails fall back to direct sends.
			logger.Errorf("Failed to connect to RabbitMQ, falling back to direct mail sends: %v", err)
			mailQueue = nil
		} else {
			defer mailQueue.Close()
		}
	}

	repo := repository.NewRepository(db, logger, s3)
	upload := uploader.New(s3, uploader.Config{
		MaxFileSize:    cfg.Upload.MaxFileSize,
		Timeout:        cfg.Upload.Timeout,
		ReceiptBucket:  cfg.Minio.RECEIPT_BUCKET,
		AbstractBucket: cfg.Minio.ABSTRACT_BUCKET,
	}, logger)

	app := appcontext.Application{
		Config:     &cfg,
		Repository: repo,
		Logger:     logger,
		Mailer:     mail,
		MailQueue:  mailQueue,
		JWTService: jwtService,
		Uploader:   upload,
		S3:         s3,
	}

	_middleware := middleware.NewMiddleware(&app, rateLimiter)

	if cfg.ENV == "production" {
		logger.Info("Running in production mode")
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()

	// docs: https://github.com/gin-contrib/cors?tab=readme-ov-file#using-defaultconfig-as-start-point
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.Cors.AllowedOrigins
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-Requested-With", "Accept"}
	r.Use(cors.New(corsConfig))
	r.Use(_middleware.RateLimiterMiddleware)

	_controller := controller.NewController(&app)

	r.GET("/", _controller.Index.Index)
	r.GET("/health", _controller.Index.Health)

	r.NoRoute(func(ctx *gin.Context) {
		ctx.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"message": "Route not found",
		})
	})

	rApi := r.Group("/api")

	route.Registrations(rApi, _controller.Registration, _controller.File, _middleware)
	route.Auth(rApi, _controller.Auth)

	if err := r.Run("0.0.0.0:" + app.Config.Port); err != nil {
		logger.Panic("Error running server: %v \n", err)
	}
}

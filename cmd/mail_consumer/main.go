package main

import (
	"github.com/openconf/confreg/internal/config"
	"github.com/openconf/confreg/internal/env"
	"github.com/openconf/confreg/internal/mailer"
	"github.com/openconf/confreg/internal/queue"
	"github.com/openconf/confreg/internal/util"
)

// this function run before main
func init() {
	env.LoadEnv(".env")
}

func main() {
	cfg := config.GetConfig()
	logger := util.NewLogger(cfg.ENV)

	mail := mailer.NewSendgrid(cfg.Mail.SEND_GRID.API_KEY, cfg.Mail.FROM_EMAIL, cfg.IsProduction(), logger)

	rabbitMQ, err := queue.NewRabbitMQ(cfg.Queue.URL)
	if err != nil {
		logger.Panic("Error connecting to RabbitMQ: ", err)
	}
	logger.Info("RabbitMQ connected \n")
	defer func() {
		if err := rabbitMQ.Close(); err != nil {
			logger.Errorf("Failed to close RabbitMQ connection: %v", err)
		}
	}()

	app := queue.MailConsumerContext{
		Config: &cfg,
		Logger: logger,
		Mailer: mail,
	}

	logger.Info("Started consuming registration mail jobs")
	if err := queue.StartMailConsumer(app, rabbitMQ); err != nil {
		logger.Fatalf("Failed to consume mail job: %v", err)
	}
}

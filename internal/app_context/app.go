package appcontext

import (
	"github.com/minio/minio-go/v7"
	"github.com/openconf/confreg/internal/auth"
	"github.com/openconf/confreg/internal/config"
	"github.com/openconf/confreg/internal/mailer"
	"github.com/openconf/confreg/internal/queue"
	"github.com/openconf/confreg/internal/repository"
	"github.com/openconf/confreg/internal/uploader"
	"go.uber.org/zap"
)

// Application contains core dependencies for the app.
type Application struct {
	// Config holds application settings provided from .env file.
	Config *config.Config

	Logger *zap.SugaredLogger

	// Repository provides access to data storage operations.
	Repository *repository.Repository

	// Mailer handles email-sending functions.
	Mailer mailer.Client

	// MailQueue carries confirmation mail jobs to the consumer.
	// Nil when the queue is disabled, in which case mails are sent
	// directly in a goroutine.
	MailQueue *queue.RabbitMQ

	// JWTService manages admin token generation and verification.
	JWTService auth.JWTInterface

	// Uploader is the file upload pipeline for the two document slots.
	Uploader *uploader.Uploader

	S3 *minio.Client
}

package repository

import (
	"context"

	"github.com/minio/minio-go/v7"
	"github.com/openconf/confreg/internal/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type baseRepository struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
	s3     *minio.Client
}

// RegistrationStore is the record store surface the controllers depend
// on, implemented by RegistrationRepository.
type RegistrationStore interface {
	Create(ctx context.Context, tx *gorm.DB, registration *model.Registration) (*model.Registration, error)
	GetByID(ctx context.Context, tx *gorm.DB, registrationID string) (*model.Registration, error)
	GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*model.Registration, error)
	List(ctx context.Context, tx *gorm.DB, page, pageSize uint) ([]RegistrationSummary, int64, error)
	Delete(ctx context.Context, tx *gorm.DB, registrationID string) error
}

// FileStore is implemented by FileRepository.
type FileStore interface {
	GetByID(ctx context.Context, tx *gorm.DB, fileID string) (*model.File, error)
	Delete(ctx context.Context, tx *gorm.DB, fileID string) error
}

type Repository struct {
	// DB can be used for transaction. Example usage:
	// tx := r.DB.Begin()
	// defer tx.Commit()
	// Then pass tx to the repository function. and use tx.Rollback() if error occurred
	DB           *gorm.DB
	Registration RegistrationStore
	File         FileStore
}

func newBaseRepository(db *gorm.DB, logger *zap.SugaredLogger, s3 *minio.Client) *baseRepository {
	return &baseRepository{db: db, logger: logger, s3: s3}
}

func NewRepository(db *gorm.DB, logger *zap.SugaredLogger, s3 *minio.Client) *Repository {
	br := newBaseRepository(db, logger, s3)

	return &Repository{
		DB:           db,
		Registration: &RegistrationRepository{baseRepository: br},
		File:         &FileRepository{baseRepository: br},
	}
}

func (b baseRepository) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}

	return b.db
}

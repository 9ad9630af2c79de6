package repository

import (
	"context"
	"errors"
	"time"

	constant "github.com/openconf/confreg/internal/constant"
	"github.com/openconf/confreg/internal/model"
	"gorm.io/gorm"
)

// ErrDuplicateEmail reports that a registration with the same email
// already exists. The unique index on registrations.email is the real
// guarantee, the pre-check via GetByEmail is only a fast path.
var ErrDuplicateEmail = errors.New("email already registered")

type RegistrationRepository struct {
	*baseRepository
}

func (rr RegistrationRepository) Create(ctx context.Context, tx *gorm.DB, registration *model.Registration) (*model.Registration, error) {
	rr.logger.Debugf("Create registration for email: %s \n", registration.Email)

	db := rr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	if err := db.WithContext(ctx).Model(&model.Registration{}).Create(registration).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return registration, ErrDuplicateEmail
		}
		return registration, err
	}

	return registration, nil
}

func (rr RegistrationRepository) GetByID(ctx context.Context, tx *gorm.DB, registrationID string) (*model.Registration, error) {
	rr.logger.Debugf("Get registration with id: %s \n", registrationID)

	db := rr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var registration model.Registration
	if err := db.WithContext(ctx).Model(&model.Registration{}).
		Preload("ReceiptFile").
		Preload("AbstractFile").
		Where(&model.Registration{
			BaseModel: model.BaseModel{
				ID: registrationID,
			},
		}).First(&registration).Error; err != nil {
		return nil, err
	}

	return &registration, nil
}

func (rr RegistrationRepository) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*model.Registration, error) {
	rr.logger.Debugf("Get registration with email: %s \n", email)

	db := rr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var registration model.Registration
	if err := db.WithContext(ctx).Model(&model.Registration{}).
		Where(&model.Registration{
			Email: email,
		}).First(&registration).Error; err != nil {
		return nil, err
	}

	return &registration, nil
}

// RegistrationSummary is the subset of fields returned by the list
// endpoint.
type RegistrationSummary struct {
	ID                string     `json:"id"`
	FullName          string     `json:"fullName"`
	Email             string     `json:"email"`
	Institution       string     `json:"institution"`
	Category          string     `json:"category"`
	ParticipationType string     `json:"participationType"`
	ReferenceCode     string     `json:"referenceCode"`
	CreatedAt         *time.Time `json:"createdAt"`
}

func (rr RegistrationRepository) List(ctx context.Context, tx *gorm.DB, page, pageSize uint) ([]RegistrationSummary, int64, error) {
	rr.logger.Debugf("List registrations page: %d pageSize: %d \n", page, pageSize)

	db := rr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var summaries []RegistrationSummary
	if err := db.WithContext(ctx).Model(&model.Registration{}).
		Select("id, full_name, email, institution, category, participation_type, reference_code, created_at").
		Order("created_at DESC").
		Offset(int((page - 1) * pageSize)).
		Limit(int(pageSize)).
		Scan(&summaries).Error; err != nil {
		return nil, 0, err
	}

	var total int64
	if err := db.WithContext(ctx).Model(&model.Registration{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	return summaries, total, nil
}

func (rr RegistrationRepository) Delete(ctx context.Context, tx *gorm.DB, registrationID string) error {
	rr.logger.Debugf("Delete registration with id: %s \n", registrationID)

	db := rr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	result := db.WithContext(ctx).Where(&model.Registration{
		BaseModel: model.BaseModel{
			ID: registrationID,
		},
	}).Delete(&model.Registration{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

package repository

import (
	"context"

	constant "github.com/openconf/confreg/internal/constant"
	"github.com/openconf/confreg/internal/model"
	"gorm.io/gorm"
)

type FileRepository struct {
	*baseRepository
}

func (fr FileRepository) GetByID(ctx context.Context, tx *gorm.DB, fileID string) (*model.File, error) {
	fr.logger.Debugf("Get file with id: %s \n", fileID)

	db := fr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var file model.File
	if err := db.WithContext(ctx).Model(&model.File{}).Where(&model.File{
		BaseModel: model.BaseModel{
			ID: fileID,
		},
	}).First(&file).Error; err != nil {
		return nil, err
	}

	return &file, nil
}

func (fr FileRepository) Delete(ctx context.Context, tx *gorm.DB, fileID string) error {
	fr.logger.Debugf("Delete file with id: %s \n", fileID)

	db := fr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	if err := db.WithContext(ctx).Where(&model.File{
		BaseModel: model.BaseModel{
			ID: fileID,
		},
	}).Delete(&model.File{}).Error; err != nil {
		return err
	}

	return nil
}

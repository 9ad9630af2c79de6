package controller

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/minio/minio-go/v7"
	"github.com/openconf/confreg/internal/util"
	"gorm.io/gorm"
)

type FileController struct {
	*baseController
}

const ErrFileNotFound = "file not found"

// Download streams a stored upload with its original filename and
// content type. The file record resolves which bucket owns the blob.
func (fc FileController) Download(ctx *gin.Context) {
	fileId := ctx.Params.ByName("id")

	file, err := fc.app.Repository.File.GetByID(ctx, nil, fileId)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.ResponseFailed(ctx, http.StatusNotFound, "File not found", util.GenerateErrorMessages(errors.New(ErrFileNotFound), "id"), nil)
			return
		}

		fc.app.Logger.Errorf("Failed to get file %s: %v", fileId, err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to get file", util.GenerateErrorMessages(err), nil)
		return
	}

	object, err := fc.app.S3.GetObject(ctx, file.BucketName, file.UniqueFileName, minio.GetObjectOptions{})
	if err != nil {
		fc.app.Logger.Errorf("Failed to get object %s/%s: %v", file.BucketName, file.UniqueFileName, err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to get file", util.GenerateErrorMessages(err), nil)
		return
	}
	defer object.Close()

	info, err := object.Stat()
	if err != nil {
		// Record exists but the blob is gone
		fc.app.Logger.Errorf("Blob missing for file record %s (%s/%s): %v", fileId, file.BucketName, file.UniqueFileName, err)
		util.ResponseFailed(ctx, http.StatusNotFound, "File not found", util.GenerateErrorMessages(errors.New(ErrFileNotFound), "id"), nil)
		return
	}

	contentType := file.ContentType
	if contentType == "" {
		contentType = info.ContentType
	}

	ctx.Header("Content-Type", contentType)
	ctx.Header("Content-Length", fmt.Sprintf("%d", info.Size))
	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.FileName))
	if _, err := io.Copy(ctx.Writer, object); err != nil {
		// Headers are already out, all we can do is log the broken stream
		fc.app.Logger.Errorf("Failed to stream file %s (%s/%s): %v", fileId, file.BucketName, file.UniqueFileName, err)
	}
}

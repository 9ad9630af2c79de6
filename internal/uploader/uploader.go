package uploader

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/openconf/confreg/internal/constant"
	"github.com/openconf/confreg/internal/util"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file too large")
	ErrUploadTimeout       = errors.New("upload timed out")
)

// Config is built once at startup from the application config, the
// uploader holds no lazy state of its own.
type Config struct {
	MaxFileSize    int64
	Timeout        time.Duration
	ReceiptBucket  string
	AbstractBucket string
}

// StoredFile is the handle returned for one blob written to the store.
type StoredFile struct {
	Key          string
	Bucket       string
	OriginalName string
	ContentType  string
	Size         int64
}

type Uploader struct {
	s3     *minio.Client
	cfg    Config
	logger *zap.SugaredLogger
}

func New(s3 *minio.Client, cfg Config, logger *zap.SugaredLogger) *Uploader {
	return &Uploader{s3: s3, cfg: cfg, logger: logger}
}

// Extension returns the text after the last dot, lowercased. Empty
// when the filename has no dot.
func Extension(fileName string) string {
	ext := filepath.Ext(fileName)
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

func ExtensionAllowed(fileName string) bool {
	ext := Extension(fileName)
	for _, allowed := range constant.AllowedUploadExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// ValidateFileHeader checks the extension allow-list and the size
// ceiling, in that order. No blob write happens before this passes.
func ValidateFileHeader(field string, fh *multipart.FileHeader, maxSize int64) error {
	if !ExtensionAllowed(fh.Filename) {
		return fmt.Errorf("%s: %w", field, ErrUnsupportedFileType)
	}

	if fh.Size > maxSize {
		return fmt.Errorf("%s: %w", field, ErrFileTooLarge)
	}

	return nil
}

// StorageKey builds the object key for an upload: 16 random bytes
// hex-encoded, a hyphen, then the original base filename. The random
// prefix avoids collisions while the suffix stays human readable.
func StorageKey(originalName string) (string, error) {
	prefix, err := util.RandomHex(16)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s-%s", prefix, filepath.Base(originalName)), nil
}

// UploadPair validates and stores the receipt and abstract files of one
// submission. Both files are validated before either is written. The
// two writes run concurrently, each bounded by the configured timeout.
// When one write succeeds and the other fails, the surviving blob is
// removed before the error is returned, so a failed submission never
// leaves blobs behind.
func (u *Uploader) UploadPair(ctx context.Context, receipt, abstract *multipart.FileHeader) (*StoredFile, *StoredFile, error) {
	if err := ValidateFileHeader(constant.FileFieldReceipt, receipt, u.cfg.MaxFileSize); err != nil {
		return nil, nil, err
	}
	if err := ValidateFileHeader(constant.FileFieldAbstract, abstract, u.cfg.MaxFileSize); err != nil {
		return nil, nil, err
	}

	var receiptFile, abstractFile *StoredFile

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		stored, err := u.uploadOne(gCtx, receipt, u.cfg.ReceiptBucket, "receipt")
		if err != nil {
			return fmt.Errorf("%s: %w", constant.FileFieldReceipt, err)
		}
		receiptFile = stored
		return nil
	})
	g.Go(func() error {
		stored, err := u.uploadOne(gCtx, abstract, u.cfg.AbstractBucket, "abstract")
		if err != nil {
			return fmt.Errorf("%s: %w", constant.FileFieldAbstract, err)
		}
		abstractFile = stored
		return nil
	})

	if err := g.Wait(); err != nil {
		u.Cleanup(receiptFile, abstractFile)
		return nil, nil, err
	}

	return receiptFile, abstractFile, nil
}

func (u *Uploader) uploadOne(ctx context.Context, fh *multipart.FileHeader, bucket, category string) (*StoredFile, error) {
	ctx, cancel := context.WithTimeout(ctx, u.cfg.Timeout)
	defer cancel()

	if err := u.createBucketIfNotExists(ctx, bucket); err != nil {
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}

	file, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	key, err := StorageKey(fh.Filename)
	if err != nil {
		return nil, fmt.Errorf("failed to generate storage key: %w", err)
	}

	contentType := fh.Header.Get("Content-Type")

	info, err := u.s3.PutObject(ctx, bucket, key, file, fh.Size, minio.PutObjectOptions{
		ContentType: contentType,
		UserMetadata: map[string]string{
			"Original-Name": filepath.Base(fh.Filename),
			"Category":      category,
		},
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, ErrUploadTimeout
		}
		return nil, fmt.Errorf("failed to upload file: %w", err)
	}

	return &StoredFile{
		Key:          info.Key,
		Bucket:       info.Bucket,
		OriginalName: filepath.Base(fh.Filename),
		ContentType:  contentType,
		Size:         fh.Size,
	}, nil
}

// Cleanup removes already-stored blobs of a failed submission.
// Best-effort, failures are logged because at this point an error is
// already on its way to the caller.
func (u *Uploader) Cleanup(stored ...*StoredFile) {
	for _, sf := range stored {
		if sf == nil {
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), u.cfg.Timeout)
		if err := u.s3.RemoveObject(ctx, sf.Bucket, sf.Key, minio.RemoveObjectOptions{}); err != nil {
			u.logger.Errorf("Failed to clean up blob %s/%s, it is now orphaned: %v", sf.Bucket, sf.Key, err)
		}
		cancel()
	}
}

func (u *Uploader) createBucketIfNotExists(ctx context.Context, bucketName string) error {
	exists, err := u.s3.BucketExists(ctx, bucketName)
	if err != nil {
		return err
	}

	if !exists {
		err = u.s3.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{})
		if err != nil {
			return err
		}
	}

	return nil
}

package controller

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/openconf/confreg/internal/constant"
	"github.com/openconf/confreg/internal/mailer"
	"github.com/openconf/confreg/internal/model"
	"github.com/openconf/confreg/internal/queue"
	"github.com/openconf/confreg/internal/repository"
	"github.com/openconf/confreg/internal/uploader"
	"github.com/openconf/confreg/internal/util"
	"gorm.io/gorm"
)

type RegistrationController struct {
	*baseController
}

const (
	ErrReceiptFileRequired  = "receipt file is required"
	ErrAbstractFileRequired = "abstract file is required"
	ErrRegistrationNotFound = "registration not found"
)

// ParseDeclaration coerces the declaration form value to a bool. It
// accepts exactly the literals "true", "on" and "1" (bare booleans and
// numbers arrive as those strings from a form), everything else is false.
func ParseDeclaration(raw string) bool {
	switch strings.TrimSpace(raw) {
	case "true", "on", "1":
		return true
	default:
		return false
	}
}

type registrationForm struct {
	FullName          string `form:"fullName" binding:"required,strNotEmpty,cmax=150"`
	Gender            string `form:"gender" binding:"required,strNotEmpty"`
	DateOfBirth       string `form:"dob" binding:"required,strNotEmpty"`
	Nationality       string `form:"nationality" binding:"required,strNotEmpty"`
	Mobile            string `form:"mobile" binding:"required,numeric,len=10"`
	Email             string `form:"email" binding:"required,email"`
	Address           string `form:"address" binding:"required,strNotEmpty"`
	Institution       string `form:"institution" binding:"required,strNotEmpty"`
	Designation       string `form:"designation" binding:"required,strNotEmpty"`
	Department        string `form:"department" binding:"required,strNotEmpty"`
	Category          string `form:"category" binding:"required,strNotEmpty"`
	Fee               string `form:"fee" binding:"required,numeric"`
	PaymentReference  string `form:"paymentReference" binding:"required,strNotEmpty"`
	ParticipationType string `form:"participationType" binding:"required,strNotEmpty"`
	Title             string `form:"title" binding:"required,strNotEmpty,cmax=300"`
	Authors           string `form:"authors" binding:"required,strNotEmpty"`
	Abstract          string `form:"abstract" binding:"required,strNotEmpty,cmin=10"`
	Declaration       string `form:"declaration"`
}

// Struct field name -> form field name for validation error messages.
var registrationFieldNames = map[string]string{
	"FullName":          "fullName",
	"Gender":            "gender",
	"DateOfBirth":       "dob",
	"Nationality":       "nationality",
	"Mobile":            "mobile",
	"Email":             "email",
	"Address":           "address",
	"Institution":       "institution",
	"Designation":       "designation",
	"Department":        "department",
	"Category":          "category",
	"Fee":               "fee",
	"PaymentReference":  "paymentReference",
	"ParticipationType": "participationType",
	"Title":             "title",
	"Authors":           "authors",
	"Abstract":          "abstract",
}

// Submit handles POST /api/register. Order of operations: validate the
// form (all violations reported together), check both file parts are
// present, duplicate-email fast path, upload both files, create the
// record, then queue the confirmation mail. The unique index on email
// is the real duplicate guard, a duplicate-key error from the create
// is translated back to the same 400 and the uploaded blobs removed.
func (rc RegistrationController) Submit(ctx *gin.Context) {
	var body registrationForm
	if err := ctx.ShouldBind(&body); err != nil {
		rc.app.Logger.Debugf("Registration form validation failed: %v", err)
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid registration form", util.GenerateErrorMessages(err, registrationFieldNames), nil)
		return
	}

	var missing []util.ApiError
	receipt, err := ctx.FormFile(constant.FileFieldReceipt)
	if err != nil {
		missing = append(missing, util.ApiError{Field: constant.FileFieldReceipt, Message: ErrReceiptFileRequired})
	}
	abstract, err := ctx.FormFile(constant.FileFieldAbstract)
	if err != nil {
		missing = append(missing, util.ApiError{Field: constant.FileFieldAbstract, Message: ErrAbstractFileRequired})
	}
	if len(missing) > 0 {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid registration form", missing, nil)
		return
	}

	fee, err := strconv.ParseFloat(body.Fee, 64)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid registration form", []util.ApiError{{Field: "fee", Message: "fee must be numeric"}}, nil)
		return
	}

	email := strings.ToLower(strings.TrimSpace(body.Email))

	// Fast path only, the unique index backs this up under races.
	if _, err := rc.app.Repository.Registration.GetByEmail(ctx, nil, email); err == nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Email already registered", util.GenerateErrorMessages(repository.ErrDuplicateEmail, "email"), nil)
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		rc.app.Logger.Errorf("Failed to check email uniqueness: %v", err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to process registration", util.GenerateErrorMessages(err), nil)
		return
	}

	receiptFile, abstractFile, err := rc.app.Uploader.UploadPair(ctx, receipt, abstract)
	if err != nil {
		rc.app.Logger.Errorf("Upload pipeline failed: %v", err)
		switch {
		case errors.Is(err, uploader.ErrUnsupportedFileType):
			util.ResponseFailed(ctx, http.StatusBadRequest, "Unsupported file type", err, nil)
		case errors.Is(err, uploader.ErrFileTooLarge):
			util.ResponseFailed(ctx, http.StatusBadRequest, "File too large", err, nil)
		case errors.Is(err, uploader.ErrUploadTimeout):
			util.ResponseFailed(ctx, http.StatusRequestTimeout, "File upload timed out", err, nil)
		default:
			util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to store uploaded files", err, nil)
		}
		return
	}

	referenceCode, err := util.GenerateNChar(constant.ReferenceCodeLength)
	if err != nil {
		rc.app.Uploader.Cleanup(receiptFile, abstractFile)
		rc.app.Logger.Errorf("Failed to generate reference code: %v", err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to process registration", util.GenerateErrorMessages(err), nil)
		return
	}

	registration, err := rc.app.Repository.Registration.Create(ctx, nil, &model.Registration{
		FullName:          body.FullName,
		Gender:            body.Gender,
		DateOfBirth:       body.DateOfBirth,
		Nationality:       body.Nationality,
		Mobile:            body.Mobile,
		Email:             email,
		Address:           body.Address,
		Institution:       body.Institution,
		Designation:       body.Designation,
		Department:        body.Department,
		Category:          body.Category,
		Fee:               fee,
		PaymentReference:  body.PaymentReference,
		ParticipationType: body.ParticipationType,
		Title:             body.Title,
		Authors:           body.Authors,
		Abstract:          body.Abstract,
		Declaration:       ParseDeclaration(body.Declaration),
		ReferenceCode:     constant.ReferenceCodePrefix + referenceCode,
		ReceiptFile: model.File{
			FileName:       receiptFile.OriginalName,
			UniqueFileName: receiptFile.Key,
			BucketName:     receiptFile.Bucket,
			ContentType:    receiptFile.ContentType,
			Size:           receiptFile.Size,
		},
		AbstractFile: model.File{
			FileName:       abstractFile.OriginalName,
			UniqueFileName: abstractFile.Key,
			BucketName:     abstractFile.Bucket,
			ContentType:    abstractFile.ContentType,
			Size:           abstractFile.Size,
		},
	})
	if err != nil {
		// delete the blobs again, the record never existed
		rc.app.Uploader.Cleanup(receiptFile, abstractFile)

		if errors.Is(err, repository.ErrDuplicateEmail) {
			util.ResponseFailed(ctx, http.StatusBadRequest, "Email already registered", util.GenerateErrorMessages(repository.ErrDuplicateEmail, "email"), nil)
			return
		}

		rc.app.Logger.Errorf("Failed to create registration: %v", err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to process registration", util.GenerateErrorMessages(err), nil)
		return
	}

	rc.notifyConfirmation(registration.Email, registration.FullName, registration.ReferenceCode)

	ctx.JSON(http.StatusCreated, gin.H{
		"success": true,
		"id":      registration.ID,
		"message": "Registration successful, a confirmation email is on its way",
	})
}

// notifyConfirmation never fails the request, registration success is
// independent of mail delivery.
func (rc RegistrationController) notifyConfirmation(email, fullName, referenceCode string) {
	if rc.app.MailQueue != nil {
		err := queue.PublishConfirmationEmail(rc.app.MailQueue, queue.MailJobPayload{
			ToEmail:       email,
			ToName:        fullName,
			ReferenceCode: referenceCode,
		})
		if err == nil {
			return
		}
		rc.app.Logger.Errorf("Failed to queue confirmation mail for %s, falling back to direct send: %v", email, err)
	}

	go func() {
		_, err := rc.app.Mailer.Send(mailer.CONFIRMATION_TEMPLATE, fullName, email, mailer.ConfirmationData{
			FullName:      fullName,
			ReferenceCode: referenceCode,
		})
		if err != nil {
			rc.app.Logger.Errorf("Failed to send confirmation mail to %s: %v", email, err)
		}
	}()
}

func (rc RegistrationController) List(ctx *gin.Context) {
	page, pageSize := util.ParsePageParams(ctx.Query("page"), ctx.Query("limit"))

	summaries, total, err := rc.app.Repository.Registration.List(ctx, nil, page, pageSize)
	if err != nil {
		rc.app.Logger.Errorf("Failed to list registrations: %v", err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to list registrations", util.GenerateErrorMessages(err), nil)
		return
	}

	if summaries == nil {
		summaries = []repository.RegistrationSummary{}
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    summaries,
		"pagination": gin.H{
			"total": total,
			"page":  page,
			"pages": util.CalculateTotalPage(total, pageSize),
		},
	})
}

func (rc RegistrationController) Get(ctx *gin.Context) {
	registrationId := ctx.Params.ByName("id")

	registration, err := rc.app.Repository.Registration.GetByID(ctx, nil, registrationId)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.ResponseFailed(ctx, http.StatusNotFound, "Registration not found", util.GenerateErrorMessages(errors.New(ErrRegistrationNotFound), "id"), nil)
			return
		}

		rc.app.Logger.Errorf("Failed to get registration %s: %v", registrationId, err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to get registration", util.GenerateErrorMessages(err), nil)
		return
	}

	util.ResponseSuccess(ctx, registration)
}

// Delete removes both blobs first (best-effort, a failed blob delete is
// logged, never fatal) and then the record. Deleting an already-deleted
// id returns 404.
func (rc RegistrationController) Delete(ctx *gin.Context) {
	registrationId := ctx.Params.ByName("id")

	registration, err := rc.app.Repository.Registration.GetByID(ctx, nil, registrationId)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.ResponseFailed(ctx, http.StatusNotFound, "Registration not found", util.GenerateErrorMessages(errors.New(ErrRegistrationNotFound), "id"), nil)
			return
		}

		rc.app.Logger.Errorf("Failed to get registration %s: %v", registrationId, err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to delete registration", util.GenerateErrorMessages(err), nil)
		return
	}

	for _, file := range []model.File{registration.ReceiptFile, registration.AbstractFile} {
		if err := file.Delete(ctx, rc.app.S3); err != nil {
			rc.app.Logger.Errorf("Failed to delete blob %s/%s of registration %s: %v", file.BucketName, file.UniqueFileName, registrationId, err)
		}
	}

	if err := rc.app.Repository.Registration.Delete(ctx, nil, registrationId); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.ResponseFailed(ctx, http.StatusNotFound, "Registration not found", util.GenerateErrorMessages(errors.New(ErrRegistrationNotFound), "id"), nil)
			return
		}

		rc.app.Logger.Errorf("Failed to delete registration %s: %v", registrationId, err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to delete registration", util.GenerateErrorMessages(err), nil)
		return
	}

	for _, fileId := range []string{registration.ReceiptFileID, registration.AbstractFileID} {
		if err := rc.app.Repository.File.Delete(ctx, nil, fileId); err != nil {
			rc.app.Logger.Errorf("Failed to delete file record %s: %v", fileId, err)
		}
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Registration deleted",
	})
}

package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	appcontext "github.com/openconf/confreg/internal/app_context"
	"github.com/openconf/confreg/internal/config"
	"github.com/openconf/confreg/internal/model"
	"github.com/openconf/confreg/internal/repository"
	"github.com/openconf/confreg/internal/uploader"
	"github.com/openconf/confreg/internal/util"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func init() {
	// mirror the custom binding validators registered at startup
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("strNotEmpty", util.StrNotEmpty)
		v.RegisterValidation("cmin", util.CustomMin)
		v.RegisterValidation("cmax", util.CustomMax)
	}
}

func TestParseDeclaration(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want bool
	}{
		{"literal true", "true", true},
		{"checkbox on", "on", true},
		{"numeric one", "1", true},
		{"with surrounding spaces", " true ", true},
		{"literal false", "false", false},
		{"empty", "", false},
		{"uppercase TRUE", "TRUE", false},
		{"yes", "yes", false},
		{"zero", "0", false},
		{"arbitrary text", "agreed", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseDeclaration(tt.raw); got != tt.want {
				t.Errorf("ParseDeclaration(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

type stubRegistrationStore struct {
	createErr error
	created   *model.Registration
}

func (s *stubRegistrationStore) Create(ctx context.Context, tx *gorm.DB, registration *model.Registration) (*model.Registration, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	registration.ID = "11111111-1111-1111-1111-111111111111"
	s.created = registration
	return registration, nil
}

func (s *stubRegistrationStore) GetByID(ctx context.Context, tx *gorm.DB, registrationID string) (*model.Registration, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRegistrationStore) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*model.Registration, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRegistrationStore) List(ctx context.Context, tx *gorm.DB, page, pageSize uint) ([]repository.RegistrationSummary, int64, error) {
	return nil, 0, nil
}

func (s *stubRegistrationStore) Delete(ctx context.Context, tx *gorm.DB, registrationID string) error {
	return nil
}

type stubFileStore struct {
	file *model.File
}

func (s *stubFileStore) GetByID(ctx context.Context, tx *gorm.DB, fileID string) (*model.File, error) {
	if s.file == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.file, nil
}

func (s *stubFileStore) Delete(ctx context.Context, tx *gorm.DB, fileID string) error {
	return nil
}

type recordingMailer struct {
	sent chan string
}

func (m recordingMailer) Send(templateFile, toUsername, toEmail string, data any) (int, error) {
	m.sent <- toEmail
	return 202, nil
}

// blobRecorder is an in-process blob store stub that records stored
// and removed object paths.
type blobRecorder struct {
	mu      sync.Mutex
	puts    []string
	deletes []string
	objects map[string][]byte
}

func (br *blobRecorder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodHead:
		// Bucket-existence probes target the bucket root.
		if strings.HasSuffix(r.URL.Path, "/") {
			w.WriteHeader(http.StatusOK)
			return
		}
		br.mu.Lock()
		body, ok := br.objects[r.URL.Path]
		br.mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("ETag", `"0"`)
		w.Header().Set("Last-Modified", time.Now().UTC().Format(http.TimeFormat))
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
		w.WriteHeader(http.StatusOK)
	case http.MethodPut:
		br.mu.Lock()
		br.puts = append(br.puts, r.URL.Path)
		br.mu.Unlock()
		w.Header().Set("ETag", `"0"`)
		w.WriteHeader(http.StatusOK)
	case http.MethodDelete:
		br.mu.Lock()
		br.deletes = append(br.deletes, r.URL.Path)
		br.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	case http.MethodGet:
		br.mu.Lock()
		body, ok := br.objects[r.URL.Path]
		br.mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("ETag", `"0"`)
		w.Header().Set("Last-Modified", time.Now().UTC().Format(http.TimeFormat))
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Accept-Ranges", "bytes")
		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
		w.WriteHeader(http.StatusOK)
		w.Write(body)
	default:
		w.WriteHeader(http.StatusOK)
	}
}

func newTestS3(t *testing.T, handler http.Handler) *minio.Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := minio.New(strings.TrimPrefix(srv.URL, "http://"), &minio.Options{
		Creds:  credentials.NewStaticV4("test", "test", ""),
		Secure: false,
		Region: "us-east-1",
	})
	if err != nil {
		t.Fatalf("Failed to build s3 client: %v", err)
	}
	return client
}

func newRegistrationRouter(t *testing.T, store *stubRegistrationStore, files *stubFileStore, s3 *minio.Client, m recordingMailer) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	app := &appcontext.Application{
		Config: &config.Config{ENV: "test"},
		Logger: zap.NewNop().Sugar(),
		Repository: &repository.Repository{
			Registration: store,
			File:         files,
		},
		Mailer: m,
		Uploader: uploader.New(s3, uploader.Config{
			MaxFileSize:    5 * 1024 * 1024,
			Timeout:        5 * time.Second,
			ReceiptBucket:  "receipts",
			AbstractBucket: "abstracts",
		}, zap.NewNop().Sugar()),
		S3: s3,
	}

	c := NewController(app)
	r := gin.New()
	r.POST("/api/register", c.Registration.Submit)
	r.GET("/api/register/file/:id", c.File.Download)
	return r
}

func registrationRequest(t *testing.T, overrides map[string]string) *http.Request {
	t.Helper()

	fields := map[string]string{
		"fullName":          "Ada Lovelace",
		"gender":            "female",
		"dob":               "1990-12-10",
		"nationality":       "British",
		"mobile":            "0123456789",
		"email":             "Ada@Example.com",
		"address":           "12 Gower Street",
		"institution":       "Analytical Engine Society",
		"designation":       "Researcher",
		"department":        "Mathematics",
		"category":          "delegate",
		"fee":               "1500",
		"paymentReference":  "TXN-0042",
		"participationType": "oral",
		"title":             "On Computable Numbers",
		"authors":           "A. Lovelace",
		"abstract":          "A sufficiently long abstract body for review.",
		"declaration":       "on",
	}
	for k, v := range overrides {
		fields[k] = v
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("Failed to write form field %s: %v", k, err)
		}
	}
	fw, err := w.CreateFormFile("receipt", "receipt.pdf")
	if err != nil {
		t.Fatalf("Failed to attach receipt: %v", err)
	}
	fw.Write([]byte("%PDF-1.4 receipt"))
	fw, err = w.CreateFormFile("abstractFile", "abstract.pdf")
	if err != nil {
		t.Fatalf("Failed to attach abstract: %v", err)
	}
	fw.Write([]byte("%PDF-1.4 abstract"))
	if err := w.Close(); err != nil {
		t.Fatalf("Failed to close multipart writer: %v", err)
	}

	req := httptest.NewRequest("POST", "/api/register", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestSubmitCreatesRegistration(t *testing.T) {
	store := &stubRegistrationStore{}
	recorder := &blobRecorder{}
	m := recordingMailer{sent: make(chan string, 1)}
	r := newRegistrationRouter(t, store, &stubFileStore{}, newTestS3(t, recorder), m)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, registrationRequest(t, nil))

	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", w.Code, w.Body.String())
	}

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if body["id"] == "" || body["id"] == nil {
		t.Error("Expected a registration id in the response")
	}

	if store.created == nil {
		t.Fatal("Expected the registration to be stored")
	}
	if store.created.Email != "ada@example.com" {
		t.Errorf("Expected the email lowercased, got %q", store.created.Email)
	}
	if !store.created.Declaration {
		t.Error("Expected declaration 'on' to be stored as true")
	}
	if !strings.HasPrefix(store.created.ReferenceCode, "REG-") {
		t.Errorf("Unexpected reference code %q", store.created.ReferenceCode)
	}

	recorder.mu.Lock()
	puts, deletes := len(recorder.puts), len(recorder.deletes)
	recorder.mu.Unlock()
	if puts != 2 {
		t.Errorf("Expected 2 stored blobs, got %d", puts)
	}
	if deletes != 0 {
		t.Errorf("Expected no blob removals, got %d", deletes)
	}

	select {
	case to := <-m.sent:
		if to != "ada@example.com" {
			t.Errorf("Expected confirmation mail to ada@example.com, got %q", to)
		}
	case <-time.After(2 * time.Second):
		t.Error("Expected a confirmation mail to be sent")
	}
}

func TestSubmitRemovesBlobsWhenCreateHitsDuplicateEmail(t *testing.T) {
	store := &stubRegistrationStore{createErr: repository.ErrDuplicateEmail}
	recorder := &blobRecorder{}
	m := recordingMailer{sent: make(chan string, 1)}
	r := newRegistrationRouter(t, store, &stubFileStore{}, newTestS3(t, recorder), m)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, registrationRequest(t, nil))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "Email already registered") {
		t.Errorf("Unexpected response body: %s", w.Body.String())
	}

	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	if len(recorder.puts) != 2 {
		t.Fatalf("Expected 2 stored blobs before the create, got %v", recorder.puts)
	}
	if len(recorder.deletes) != 2 {
		t.Fatalf("Expected both blobs removed after the duplicate create, got %v", recorder.deletes)
	}
	stored := map[string]bool{}
	for _, p := range recorder.puts {
		stored[p] = true
	}
	for _, d := range recorder.deletes {
		if !stored[d] {
			t.Errorf("Removed a blob that was never stored: %s", d)
		}
	}

	select {
	case to := <-m.sent:
		t.Errorf("Expected no confirmation mail for a failed submission, got one to %q", to)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestSubmitRejectsMissingFiles(t *testing.T) {
	store := &stubRegistrationStore{}
	recorder := &blobRecorder{}
	m := recordingMailer{sent: make(chan string, 1)}
	r := newRegistrationRouter(t, store, &stubFileStore{}, newTestS3(t, recorder), m)

	fields := map[string]string{
		"fullName":          "Ada Lovelace",
		"gender":            "female",
		"dob":               "1990-12-10",
		"nationality":       "British",
		"mobile":            "0123456789",
		"email":             "ada@example.com",
		"address":           "12 Gower Street",
		"institution":       "Analytical Engine Society",
		"designation":       "Researcher",
		"department":        "Mathematics",
		"category":          "delegate",
		"fee":               "1500",
		"paymentReference":  "TXN-0042",
		"participationType": "oral",
		"title":             "On Computable Numbers",
		"authors":           "A. Lovelace",
		"abstract":          "A sufficiently long abstract body for review.",
		"declaration":       "on",
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		mw.WriteField(k, v)
	}
	mw.Close()

	req := httptest.NewRequest("POST", "/api/register", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), ErrReceiptFileRequired) || !strings.Contains(w.Body.String(), ErrAbstractFileRequired) {
		t.Errorf("Expected both missing files reported, got: %s", w.Body.String())
	}

	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	if len(recorder.puts) != 0 {
		t.Errorf("Expected no blob store traffic, got %v", recorder.puts)
	}
}

func TestDownloadStreamsBlob(t *testing.T) {
	content := []byte("%PDF-1.4 stored receipt")
	recorder := &blobRecorder{objects: map[string][]byte{
		"/receipts/abc-receipt.pdf": content,
	}}

	files := &stubFileStore{file: &model.File{
		FileName:       "receipt.pdf",
		UniqueFileName: "abc-receipt.pdf",
		BucketName:     "receipts",
		ContentType:    "application/pdf",
		Size:           int64(len(content)),
	}}

	m := recordingMailer{sent: make(chan string, 1)}
	r := newRegistrationRouter(t, &stubRegistrationStore{}, files, newTestS3(t, recorder), m)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/api/register/file/f1", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if !bytes.Equal(w.Body.Bytes(), content) {
		t.Errorf("Expected the stored bytes back, got %q", w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("Expected content type application/pdf, got %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "receipt.pdf") {
		t.Errorf("Expected the original filename in the disposition, got %q", cd)
	}
}

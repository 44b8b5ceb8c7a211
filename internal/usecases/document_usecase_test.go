package usecases_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math/rand"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"avilegal.backend/internal/domain/entities"
	domainerrors "avilegal.backend/internal/domain/errors"
	"avilegal.backend/internal/infrastructure/notification"
	"avilegal.backend/internal/usecases"
)

var pdfContent = []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\n")

func tinyImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.Black)
	return img
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, tinyImage()))
	return buf.Bytes()
}

func jpegBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, tinyImage(), nil))
	return buf.Bytes()
}

type documentFixture struct {
	docs     *MockDocumentRepository
	apps     *MockApplicationRepository
	storage  *MockStorage
	notifier *MockNotifier
	uc       *usecases.DocumentUsecase
}

func newDocumentFixture() *documentFixture {
	f := &documentFixture{
		docs:     new(MockDocumentRepository),
		apps:     new(MockApplicationRepository),
		storage:  new(MockStorage),
		notifier: new(MockNotifier),
	}
	f.uc = usecases.NewDocumentUsecase(f.docs, f.apps, f.storage, f.notifier, 0)
	return f
}

func TestDocumentUsecase_Upload(t *testing.T) {
	f := newDocumentFixture()
	userID := uuid.New()
	f.storage.On("Put", mock.Anything, mock.MatchedBy(func(p string) bool {
		return strings.HasPrefix(p, "documents/"+userID.String()+"/") && strings.HasSuffix(p, ".pdf")
	}), pdfContent, "application/pdf").Return(nil)
	f.docs.On("Create", mock.Anything, mock.Anything).Return(nil)

	doc, err := f.uc.Upload(context.Background(), userID, "passport", &entities.UploadedFile{
		Name:    "My Passport.PDF",
		Size:    int64(len(pdfContent)),
		Content: pdfContent,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, entities.DocumentStatusPending, doc.Status)
	assert.Equal(t, "International Passport", doc.Name)
	assert.Equal(t, "My Passport.PDF", doc.FileName)
	assert.True(t, strings.HasPrefix(doc.URL, "https://files.test/documents/"))
}

func TestDocumentUsecase_Upload_Rejections(t *testing.T) {
	f := newDocumentFixture()
	userID := uuid.New()
	otherApp := &entities.Application{ID: uuid.New(), UserID: uuid.New()}
	f.apps.On("GetByID", mock.Anything, otherApp.ID).Return(otherApp, nil)
	valid := &entities.UploadedFile{Name: "id.pdf", Size: int64(len(pdfContent)), Content: pdfContent}

	tests := []struct {
		name    string
		docType string
		file    *entities.UploadedFile
		appID   *uuid.UUID
		want    error
	}{
		{"unknown type", "utility_bill", valid, nil, domainerrors.ErrValidation},
		{"missing file", "nin", nil, nil, domainerrors.ErrValidation},
		{"too large", "nin", &entities.UploadedFile{Name: "id.pdf", Size: entities.MaxDocumentSize + 1, Content: pdfContent}, nil, domainerrors.ErrValidation},
		{"bad extension", "nin", &entities.UploadedFile{Name: "id.exe", Size: 3, Content: []byte("MZx")}, nil, domainerrors.ErrValidation},
		{"content mismatch", "nin", &entities.UploadedFile{Name: "id.png", Size: int64(len(pdfContent)), Content: pdfContent}, nil, domainerrors.ErrValidation},
		{"foreign application", "nin", valid, &otherApp.ID, domainerrors.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.uc.Upload(context.Background(), userID, tt.docType, tt.file, tt.appID)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	f.storage.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDocumentUsecase_Upload_RemovesFileWhenInsertFails(t *testing.T) {
	f := newDocumentFixture()
	f.storage.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.storage.On("Delete", mock.Anything, mock.Anything).Return(nil)
	f.docs.On("Create", mock.Anything, mock.Anything).Return(errors.New("db down"))

	_, err := f.uc.Upload(context.Background(), uuid.New(), "nin", &entities.UploadedFile{
		Name: "nin.pdf", Size: int64(len(pdfContent)), Content: pdfContent,
	}, nil)
	assert.Error(t, err)
	f.storage.AssertCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestDocumentUsecase_UploadSignature(t *testing.T) {
	f := newDocumentFixture()
	f.storage.On("Put", mock.Anything, mock.MatchedBy(func(p string) bool {
		return strings.Contains(p, "/signature_") && strings.HasSuffix(p, ".png")
	}), mock.Anything, "image/png").Return(nil)
	f.docs.On("Create", mock.Anything, mock.Anything).Return(nil)

	dataURL := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes(t))
	doc, err := f.uc.UploadSignature(context.Background(), uuid.New(), &entities.UploadSignatureInput{Signature: dataURL})
	require.NoError(t, err)
	assert.Equal(t, entities.DocumentTypeSignature, doc.Type)
	assert.Equal(t, "image/png", doc.MimeType)

	// JPEG input is stored as PNG
	doc, err = f.uc.UploadSignature(context.Background(), uuid.New(), &entities.UploadSignatureInput{
		Signature: base64.StdEncoding.EncodeToString(jpegBytes(t)),
	})
	require.NoError(t, err)
	stored := f.storage.Calls[len(f.storage.Calls)-1].Arguments.Get(2).([]byte)
	assert.Equal(t, "image/png", doc.MimeType)
	assert.True(t, bytes.HasPrefix(stored, []byte("\x89PNG")))

	_, err = f.uc.UploadSignature(context.Background(), uuid.New(), &entities.UploadSignatureInput{Signature: "not base64!"})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	_, err = f.uc.UploadSignature(context.Background(), uuid.New(), &entities.UploadSignatureInput{
		Signature: base64.StdEncoding.EncodeToString(pdfContent),
	})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func noisyJPEG(t *testing.T, size int) []byte {
	t.Helper()
	rng := rand.New(rand.NewSource(7))
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.Set(x, y, color.RGBA{uint8(rng.Intn(256)), uint8(rng.Intn(256)), uint8(rng.Intn(256)), 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 50}))
	return buf.Bytes()
}

func TestDocumentUsecase_UploadSignature_LimitsAfterReencode(t *testing.T) {
	raw := noisyJPEG(t, 128)
	decoded, err := jpeg.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	var reencoded bytes.Buffer
	require.NoError(t, png.Encode(&reencoded, decoded))
	require.Greater(t, reencoded.Len(), len(raw))

	storage := new(MockStorage)
	uc := usecases.NewDocumentUsecase(new(MockDocumentRepository), new(MockApplicationRepository), storage, new(MockNotifier), int64(len(raw)))

	_, err = uc.UploadSignature(context.Background(), uuid.New(), &entities.UploadSignatureInput{
		Signature: base64.StdEncoding.EncodeToString(raw),
	})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
	storage.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDocumentUsecase_UploadSignature_RejectsOversizedDimensions(t *testing.T) {
	f := newDocumentFixture()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, entities.MaxSignatureDimension+1, 1))))

	_, err := f.uc.UploadSignature(context.Background(), uuid.New(), &entities.UploadSignatureInput{
		Signature: base64.StdEncoding.EncodeToString(buf.Bytes()),
	})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
	assert.Contains(t, appMessage(t, err), "pixels")
	f.storage.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDocumentUsecase_Delete(t *testing.T) {
	f := newDocumentFixture()
	userID := uuid.New()
	pending := &entities.Document{ID: uuid.New(), UserID: userID, FilePath: "documents/x.pdf", Status: entities.DocumentStatusPending}
	approved := &entities.Document{ID: uuid.New(), UserID: userID, Status: entities.DocumentStatusApproved}
	f.docs.On("GetByID", mock.Anything, pending.ID).Return(pending, nil)
	f.docs.On("GetByID", mock.Anything, approved.ID).Return(approved, nil)
	f.storage.On("Delete", mock.Anything, "documents/x.pdf").Return(nil)
	f.docs.On("Delete", mock.Anything, pending.ID).Return(nil)

	assert.ErrorIs(t, f.uc.Delete(context.Background(), uuid.New(), pending.ID), domainerrors.ErrNotFound)
	assert.ErrorIs(t, f.uc.Delete(context.Background(), userID, approved.ID), domainerrors.ErrInvalidState)
	require.NoError(t, f.uc.Delete(context.Background(), userID, pending.ID))
	f.docs.AssertExpectations(t)
}

func TestDocumentUsecase_Review(t *testing.T) {
	f := newDocumentFixture()
	doc := &entities.Document{
		ID:     uuid.New(),
		Name:   "NIN Slip/Card",
		Status: entities.DocumentStatusRejected,
		User:   &entities.User{Name: "Ada", Email: "ada@example.com"},
	}
	f.docs.On("Review", mock.Anything, doc.ID, entities.DocumentStatusRejected, null.StringFrom("Blurry scan")).Return(true, nil).Once()
	f.docs.On("GetByID", mock.Anything, doc.ID).Return(doc, nil)
	f.notifier.On("Notify", mock.Anything, mock.MatchedBy(func(job notification.EmailJob) bool {
		return job.Template == entities.TemplateDocumentRejected &&
			job.Vars["rejection_reason"] == "Blurry scan" &&
			job.Vars["document_name"] == "NIN Slip/Card"
	})).Return()

	_, err := f.uc.Reject(context.Background(), doc.ID, "")
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	got, err := f.uc.Reject(context.Background(), doc.ID, "Blurry scan")
	require.NoError(t, err)
	assert.Equal(t, entities.DocumentStatusRejected, got.Status)
	f.notifier.AssertExpectations(t)

	// already reviewed
	f.docs.On("Review", mock.Anything, doc.ID, entities.DocumentStatusApproved, null.String{}).Return(false, nil)
	_, err = f.uc.Approve(context.Background(), doc.ID)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidState)
}

func TestDocumentUsecase_AdminUpload(t *testing.T) {
	f := newDocumentFixture()
	owner := uuid.New()
	app := &entities.Application{ID: uuid.New(), UserID: owner}
	f.apps.On("GetByID", mock.Anything, app.ID).Return(app, nil)
	f.storage.On("Put", mock.Anything, mock.MatchedBy(func(p string) bool {
		return strings.HasPrefix(p, "documents/"+owner.String()+"/")
	}), mock.Anything, "image/png").Return(nil)
	f.docs.On("Create", mock.Anything, mock.Anything).Return(nil)

	content := pngBytes(t)
	doc, err := f.uc.AdminUpload(context.Background(), app.ID, "certificate", &entities.UploadedFile{
		Name: "cert.png", Size: int64(len(content)), Content: content,
	})
	require.NoError(t, err)
	assert.Equal(t, owner, doc.UserID)
	assert.Equal(t, entities.DocumentStatusApproved, doc.Status)
	assert.True(t, doc.UploadedByAdmin)
	assert.Equal(t, "certificate", doc.Name)
}

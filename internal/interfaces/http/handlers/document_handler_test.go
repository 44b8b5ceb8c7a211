package handlers

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"avilegal.backend/internal/domain/entities"
	domainerrors "avilegal.backend/internal/domain/errors"
	"avilegal.backend/pkg/utils"
)

type documentServiceStub struct {
	listFn            func(ctx context.Context, userID uuid.UUID, applicationID *uuid.UUID, page utils.PaginationParams) (utils.Page[*entities.Document], error)
	uploadFn          func(ctx context.Context, userID uuid.UUID, docType string, file *entities.UploadedFile, applicationID *uuid.UUID) (*entities.Document, error)
	uploadSignatureFn func(ctx context.Context, userID uuid.UUID, input *entities.UploadSignatureInput) (*entities.Document, error)
	deleteFn          func(ctx context.Context, userID, id uuid.UUID) error
	adminListFn       func(ctx context.Context, filter entities.DocumentFilter, page utils.PaginationParams) (utils.Page[*entities.Document], error)
	approveFn         func(ctx context.Context, id uuid.UUID) (*entities.Document, error)
	rejectFn          func(ctx context.Context, id uuid.UUID, reason string) (*entities.Document, error)
	adminUploadFn     func(ctx context.Context, applicationID uuid.UUID, docType string, file *entities.UploadedFile) (*entities.Document, error)
}

func (s documentServiceStub) Types() []entities.DocumentTypeInfo { return entities.DocumentTypes }
func (s documentServiceStub) List(ctx context.Context, userID uuid.UUID, applicationID *uuid.UUID, page utils.PaginationParams) (utils.Page[*entities.Document], error) {
	return s.listFn(ctx, userID, applicationID, page)
}
func (s documentServiceStub) Upload(ctx context.Context, userID uuid.UUID, docType string, file *entities.UploadedFile, applicationID *uuid.UUID) (*entities.Document, error) {
	return s.uploadFn(ctx, userID, docType, file, applicationID)
}
func (s documentServiceStub) UploadSignature(ctx context.Context, userID uuid.UUID, input *entities.UploadSignatureInput) (*entities.Document, error) {
	return s.uploadSignatureFn(ctx, userID, input)
}
func (s documentServiceStub) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return s.deleteFn(ctx, userID, id)
}
func (s documentServiceStub) AdminList(ctx context.Context, filter entities.DocumentFilter, page utils.PaginationParams) (utils.Page[*entities.Document], error) {
	return s.adminListFn(ctx, filter, page)
}
func (s documentServiceStub) Approve(ctx context.Context, id uuid.UUID) (*entities.Document, error) {
	return s.approveFn(ctx, id)
}
func (s documentServiceStub) Reject(ctx context.Context, id uuid.UUID, reason string) (*entities.Document, error) {
	return s.rejectFn(ctx, id, reason)
}
func (s documentServiceStub) AdminUpload(ctx context.Context, applicationID uuid.UUID, docType string, file *entities.UploadedFile) (*entities.Document, error) {
	return s.adminUploadFn(ctx, applicationID, docType, file)
}

func multipartRequest(t *testing.T, path string, fields map[string]string, fileName string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if fileName != "" {
		part, err := w.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func serveRequest(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestDocumentHandler_Upload(t *testing.T) {
	userID := uuid.New()
	appID := uuid.New()
	pdf := []byte("%PDF-1.4 test")

	var got *entities.UploadedFile
	var gotApp *uuid.UUID
	svc := documentServiceStub{
		uploadFn: func(_ context.Context, gotUser uuid.UUID, docType string, file *entities.UploadedFile, applicationID *uuid.UUID) (*entities.Document, error) {
			assert.Equal(t, userID, gotUser)
			got, gotApp = file, applicationID
			if file.Size > entities.MaxDocumentSize {
				return nil, domainerrors.NewError("file must not exceed 5MB", domainerrors.ErrValidation)
			}
			return &entities.Document{ID: uuid.New(), Type: entities.DocumentType(docType), Status: entities.DocumentStatusPending}, nil
		},
	}
	h := NewDocumentHandler(svc)
	r := newTestRouter()
	r.POST("/documents", withUser(userID), h.Upload)

	rec := serveRequest(r, multipartRequest(t, "/documents", map[string]string{"type": "nin", "applicationId": appID.String()}, "nin.pdf", pdf))
	expectStatus(t, rec, http.StatusCreated)
	assert.Equal(t, "nin.pdf", got.Name)
	assert.Equal(t, pdf, got.Content)
	assert.Equal(t, int64(len(pdf)), got.Size)
	require.NotNil(t, gotApp)
	assert.Equal(t, appID, *gotApp)

	rec = serveRequest(r, multipartRequest(t, "/documents", map[string]string{"type": "nin"}, "", nil))
	expectStatus(t, rec, http.StatusBadRequest)
	assert.Contains(t, rec.Body.String(), "file is required")

	rec = serveRequest(r, multipartRequest(t, "/documents", map[string]string{"type": "nin", "applicationId": "bad"}, "nin.pdf", pdf))
	expectStatus(t, rec, http.StatusBadRequest)

	big := make([]byte, entities.MaxDocumentSize+10)
	rec = serveRequest(r, multipartRequest(t, "/documents", map[string]string{"type": "nin"}, "big.pdf", big))
	expectStatus(t, rec, http.StatusBadRequest)
	assert.Nil(t, got.Content)
	assert.Contains(t, rec.Body.String(), "5MB")
}

func TestDocumentHandler_CustomerRoutes(t *testing.T) {
	userID := uuid.New()
	docID := uuid.New()
	svc := documentServiceStub{
		listFn: func(_ context.Context, _ uuid.UUID, applicationID *uuid.UUID, page utils.PaginationParams) (utils.Page[*entities.Document], error) {
			assert.Nil(t, applicationID)
			return utils.NewPage([]*entities.Document{{ID: docID}}, 1, page), nil
		},
		uploadSignatureFn: func(_ context.Context, _ uuid.UUID, input *entities.UploadSignatureInput) (*entities.Document, error) {
			if input.Signature == "garbage" {
				return nil, domainerrors.NewError("invalid signature image", domainerrors.ErrValidation)
			}
			return &entities.Document{ID: docID, Type: entities.DocumentTypeSignature}, nil
		},
		deleteFn: func(_ context.Context, _ uuid.UUID, id uuid.UUID) error {
			return domainerrors.NewError("approved documents cannot be deleted", domainerrors.ErrInvalidState)
		},
	}
	h := NewDocumentHandler(svc)
	r := newTestRouter()
	g := r.Group("/documents", withUser(userID))
	g.GET("/types", h.Types)
	g.GET("", h.List)
	g.POST("/signature", h.UploadSignature)
	g.DELETE("/:id", h.Delete)

	rec := doJSON(r, http.MethodGet, "/documents/types", nil)
	expectStatus(t, rec, http.StatusOK)
	assert.Contains(t, rec.Body.String(), "passport")

	expectStatus(t, doJSON(r, http.MethodGet, "/documents", nil), http.StatusOK)
	expectStatus(t, doJSON(r, http.MethodPost, "/documents/signature", gin.H{"signature": "data:image/png;base64,AAAA"}), http.StatusCreated)
	expectStatus(t, doJSON(r, http.MethodPost, "/documents/signature", gin.H{"signature": "garbage"}), http.StatusBadRequest)
	expectStatus(t, doJSON(r, http.MethodPost, "/documents/signature", gin.H{}), http.StatusBadRequest)
	expectStatus(t, doJSON(r, http.MethodDelete, "/documents/"+docID.String(), nil), http.StatusConflict)
}

func TestDocumentHandler_AdminRoutes(t *testing.T) {
	docID := uuid.New()
	appID := uuid.New()
	svc := documentServiceStub{
		adminListFn: func(_ context.Context, filter entities.DocumentFilter, page utils.PaginationParams) (utils.Page[*entities.Document], error) {
			assert.Equal(t, entities.DocumentStatusPending, filter.Status)
			assert.Equal(t, entities.DocumentTypePassport, filter.Type)
			return utils.NewPage[*entities.Document](nil, 0, page), nil
		},
		approveFn: func(_ context.Context, id uuid.UUID) (*entities.Document, error) {
			return nil, domainerrors.NewError("document has already been reviewed", domainerrors.ErrInvalidState)
		},
		rejectFn: func(_ context.Context, id uuid.UUID, reason string) (*entities.Document, error) {
			return &entities.Document{ID: id, Status: entities.DocumentStatusRejected}, nil
		},
		adminUploadFn: func(_ context.Context, applicationID uuid.UUID, docType string, file *entities.UploadedFile) (*entities.Document, error) {
			assert.Equal(t, appID, applicationID)
			assert.Equal(t, "certificate", docType)
			return &entities.Document{ID: docID, UploadedByAdmin: true, Status: entities.DocumentStatusApproved}, nil
		},
	}
	h := NewDocumentHandler(svc)
	r := newTestRouter()
	r.GET("/admin/documents", h.AdminList)
	r.POST("/admin/documents/:id/approve", h.Approve)
	r.POST("/admin/documents/:id/reject", h.Reject)
	r.POST("/admin/applications/:id/documents", h.AdminUpload)

	expectStatus(t, doJSON(r, http.MethodGet, "/admin/documents?status=pending&type=passport", nil), http.StatusOK)
	expectStatus(t, doJSON(r, http.MethodPost, "/admin/documents/"+docID.String()+"/approve", nil), http.StatusConflict)
	expectStatus(t, doJSON(r, http.MethodPost, "/admin/documents/"+docID.String()+"/reject", gin.H{"reason": "Blurry"}), http.StatusOK)
	expectStatus(t, doJSON(r, http.MethodPost, "/admin/documents/"+docID.String()+"/reject", gin.H{}), http.StatusBadRequest)

	rec := serveRequest(r, multipartRequest(t, "/admin/applications/"+appID.String()+"/documents", map[string]string{"type": "certificate"}, "cac.pdf", []byte("%PDF-1.4")))
	expectStatus(t, rec, http.StatusCreated)
	assert.Contains(t, rec.Body.String(), `"uploadedByAdmin":true`)
}

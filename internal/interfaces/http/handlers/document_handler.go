package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"avilegal.backend/internal/domain/entities"
	domainerrors "avilegal.backend/internal/domain/errors"
	"avilegal.backend/internal/interfaces/http/response"
	"avilegal.backend/pkg/utils"
)

type DocumentService interface {
	Types() []entities.DocumentTypeInfo
	List(ctx context.Context, userID uuid.UUID, applicationID *uuid.UUID, page utils.PaginationParams) (utils.Page[*entities.Document], error)
	Upload(ctx context.Context, userID uuid.UUID, docType string, file *entities.UploadedFile, applicationID *uuid.UUID) (*entities.Document, error)
	UploadSignature(ctx context.Context, userID uuid.UUID, input *entities.UploadSignatureInput) (*entities.Document, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error

	AdminList(ctx context.Context, filter entities.DocumentFilter, page utils.PaginationParams) (utils.Page[*entities.Document], error)
	Approve(ctx context.Context, id uuid.UUID) (*entities.Document, error)
	Reject(ctx context.Context, id uuid.UUID, reason string) (*entities.Document, error)
	AdminUpload(ctx context.Context, applicationID uuid.UUID, docType string, file *entities.UploadedFile) (*entities.Document, error)
}

// DocumentHandler handles KYC document endpoints
type DocumentHandler struct {
	documents DocumentService
}

func NewDocumentHandler(documents DocumentService) *DocumentHandler {
	return &DocumentHandler{documents: documents}
}

// readUpload reads the "file" form field. Reading stops just past the size
// limit so oversized uploads are still reported with their declared size.
func readUpload(c *gin.Context) (*entities.UploadedFile, bool) {
	header, err := c.FormFile("file")
	if err != nil {
		response.Error(c, domainerrors.BadRequest("file is required"))
		return nil, false
	}

	upload := &entities.UploadedFile{Name: header.Filename, Size: header.Size}
	if header.Size > entities.MaxDocumentSize {
		return upload, true
	}

	f, err := header.Open()
	if err != nil {
		response.Error(c, err)
		return nil, false
	}
	defer f.Close()

	content, err := io.ReadAll(io.LimitReader(f, entities.MaxDocumentSize+1))
	if err != nil {
		response.Error(c, err)
		return nil, false
	}
	upload.Content = content
	upload.Size = int64(len(content))
	return upload, true
}

// Types GET /api/v1/customer/documents/types
func (h *DocumentHandler) Types(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"types": h.documents.Types()})
}

// List GET /api/v1/customer/documents?applicationId=
func (h *DocumentHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	applicationID, ok := optionalUUIDQuery(c, "applicationId")
	if !ok {
		return
	}
	page, err := h.documents.List(c.Request.Context(), userID, applicationID, pagination(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, page)
}

// Upload POST /api/v1/customer/documents (multipart: file, type, applicationId)
func (h *DocumentHandler) Upload(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	applicationID, ok := optionalUUIDForm(c, "applicationId")
	if !ok {
		return
	}
	file, ok := readUpload(c)
	if !ok {
		return
	}

	doc, err := h.documents.Upload(c.Request.Context(), userID, c.PostForm("type"), file, applicationID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"document": doc, "message": "Document uploaded successfully"})
}

// UploadSignature POST /api/v1/customer/documents/signature
func (h *DocumentHandler) UploadSignature(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var input entities.UploadSignatureInput
	if !bindJSON(c, &input) {
		return
	}

	doc, err := h.documents.UploadSignature(c.Request.Context(), userID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"document": doc, "message": "Signature saved successfully"})
}

// Delete DELETE /api/v1/customer/documents/:id
func (h *DocumentHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	if err := h.documents.Delete(c.Request.Context(), userID, id); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Document deleted successfully")
}

// AdminList GET /api/v1/admin/documents?status=&type=&userId=&applicationId=
func (h *DocumentHandler) AdminList(c *gin.Context) {
	userID, ok := optionalUUIDQuery(c, "userId")
	if !ok {
		return
	}
	applicationID, ok := optionalUUIDQuery(c, "applicationId")
	if !ok {
		return
	}
	filter := entities.DocumentFilter{
		UserID:        userID,
		ApplicationID: applicationID,
		Status:        entities.DocumentStatus(c.Query("status")),
		Type:          entities.DocumentType(c.Query("type")),
	}
	page, err := h.documents.AdminList(c.Request.Context(), filter, pagination(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, page)
}

// Approve POST /api/v1/admin/documents/:id/approve
func (h *DocumentHandler) Approve(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	doc, err := h.documents.Approve(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"document": doc, "message": "Document approved"})
}

// Reject POST /api/v1/admin/documents/:id/reject
func (h *DocumentHandler) Reject(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var input entities.RejectDocumentInput
	if !bindJSON(c, &input) {
		return
	}
	doc, err := h.documents.Reject(c.Request.Context(), id, input.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"document": doc, "message": "Document rejected"})
}

// AdminUpload POST /api/v1/admin/applications/:id/documents (multipart: file, type)
func (h *DocumentHandler) AdminUpload(c *gin.Context) {
	applicationID, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	file, ok := readUpload(c)
	if !ok {
		return
	}
	doc, err := h.documents.AdminUpload(c.Request.Context(), applicationID, c.PostForm("type"), file)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"document": doc, "message": "Document uploaded successfully"})
}

func optionalUUIDForm(c *gin.Context, name string) (*uuid.UUID, bool) {
	raw := c.PostForm(name)
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid "+name))
		return nil, false
	}
	return &id, true
}

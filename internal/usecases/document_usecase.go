package usecases

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"net/http"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"

	"avilegal.backend/internal/domain/entities"
	domainerrors "avilegal.backend/internal/domain/errors"
	"avilegal.backend/internal/domain/repositories"
	"avilegal.backend/internal/infrastructure/notification"
	"avilegal.backend/pkg/logger"
	"avilegal.backend/pkg/utils"
)

// DocumentUsecase handles KYC uploads and their review
type DocumentUsecase struct {
	docRepo  repositories.DocumentRepository
	appRepo  repositories.ApplicationRepository
	storage  FileStorage
	notifier Notifier
	maxSize  int64
}

func NewDocumentUsecase(
	docRepo repositories.DocumentRepository,
	appRepo repositories.ApplicationRepository,
	storage FileStorage,
	notifier Notifier,
	maxSize int64,
) *DocumentUsecase {
	if maxSize <= 0 || maxSize > entities.MaxDocumentSize {
		maxSize = entities.MaxDocumentSize
	}
	return &DocumentUsecase{
		docRepo:  docRepo,
		appRepo:  appRepo,
		storage:  storage,
		notifier: notifier,
		maxSize:  maxSize,
	}
}

func (u *DocumentUsecase) Types() []entities.DocumentTypeInfo {
	return entities.DocumentTypes
}

// List returns the caller's documents, optionally for one application
func (u *DocumentUsecase) List(ctx context.Context, userID uuid.UUID, applicationID *uuid.UUID, page utils.PaginationParams) (utils.Page[*entities.Document], error) {
	return u.list(ctx, entities.DocumentFilter{UserID: &userID, ApplicationID: applicationID}, page)
}

func (u *DocumentUsecase) AdminList(ctx context.Context, filter entities.DocumentFilter, page utils.PaginationParams) (utils.Page[*entities.Document], error) {
	return u.list(ctx, filter, page)
}

// Upload validates and stores a customer document as pending
func (u *DocumentUsecase) Upload(ctx context.Context, userID uuid.UUID, docType string, file *entities.UploadedFile, applicationID *uuid.UUID) (*entities.Document, error) {
	t := entities.DocumentType(strings.TrimSpace(docType))
	if !t.IsCustomerType() {
		return nil, domainerrors.NewError("invalid document type", domainerrors.ErrValidation)
	}
	ext, mime, err := u.validateFile(file)
	if err != nil {
		return nil, err
	}
	if applicationID != nil {
		if err := u.checkOwnership(ctx, userID, *applicationID); err != nil {
			return nil, err
		}
	}

	doc := &entities.Document{
		UserID:        userID,
		ApplicationID: applicationID,
		Name:          t.DisplayName(),
		Type:          t,
		FileName:      path.Base(file.Name),
		FileSize:      file.Size,
		MimeType:      mime,
		Status:        entities.DocumentStatusPending,
	}
	return u.store(ctx, doc, storagePath(userID, uuid.NewString()+"."+ext), file.Content)
}

// UploadSignature stores a drawn signature. The payload may be a data URL;
// JPEG input is re-encoded as PNG.
func (u *DocumentUsecase) UploadSignature(ctx context.Context, userID uuid.UUID, input *entities.UploadSignatureInput) (*entities.Document, error) {
	data := input.Signature
	if i := strings.Index(data, "base64,"); i >= 0 {
		data = data[i+len("base64,"):]
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(data))
	if err != nil || len(raw) == 0 {
		return nil, domainerrors.NewError("signature must be base64 encoded", domainerrors.ErrValidation)
	}
	if int64(len(raw)) > u.maxSize {
		return nil, u.signatureTooLarge()
	}

	kind := http.DetectContentType(raw)
	if kind != "image/png" && kind != "image/jpeg" {
		return nil, domainerrors.NewError("signature must be a PNG or JPEG image", domainerrors.ErrValidation)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, domainerrors.NewError("signature image could not be decoded", domainerrors.ErrValidation)
	}
	if cfg.Width > entities.MaxSignatureDimension || cfg.Height > entities.MaxSignatureDimension {
		return nil, domainerrors.NewError(fmt.Sprintf("signature must not exceed %dx%d pixels", entities.MaxSignatureDimension, entities.MaxSignatureDimension), domainerrors.ErrValidation)
	}
	if kind == "image/jpeg" {
		if raw, err = jpegToPNG(raw); err != nil {
			return nil, domainerrors.NewError("signature image could not be decoded", domainerrors.ErrValidation)
		}
		if int64(len(raw)) > u.maxSize {
			return nil, u.signatureTooLarge()
		}
	}

	if input.ApplicationID != nil {
		if err := u.checkOwnership(ctx, userID, *input.ApplicationID); err != nil {
			return nil, err
		}
	}

	doc := &entities.Document{
		UserID:        userID,
		ApplicationID: input.ApplicationID,
		Name:          entities.DocumentTypeSignature.DisplayName(),
		Type:          entities.DocumentTypeSignature,
		FileName:      "signature.png",
		FileSize:      int64(len(raw)),
		MimeType:      "image/png",
		Status:        entities.DocumentStatusPending,
	}
	return u.store(ctx, doc, storagePath(userID, "signature_"+uuid.NewString()+".png"), raw)
}

// Delete removes one of the caller's documents. Approved documents stay.
func (u *DocumentUsecase) Delete(ctx context.Context, userID, id uuid.UUID) error {
	doc, err := u.docRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if doc.UserID != userID {
		return domainerrors.ErrNotFound
	}
	if doc.Status == entities.DocumentStatusApproved {
		return domainerrors.NewError("approved documents cannot be deleted", domainerrors.ErrInvalidState)
	}
	if err := u.storage.Delete(ctx, doc.FilePath); err != nil {
		return err
	}
	return u.docRepo.Delete(ctx, id)
}

// Approve accepts a pending document
func (u *DocumentUsecase) Approve(ctx context.Context, id uuid.UUID) (*entities.Document, error) {
	doc, err := u.review(ctx, id, entities.DocumentStatusApproved, null.String{})
	if err != nil {
		return nil, err
	}
	u.notifyReview(ctx, doc, entities.TemplateDocumentApproved, nil)
	return doc, nil
}

// Reject returns a pending document to the customer with a reason
func (u *DocumentUsecase) Reject(ctx context.Context, id uuid.UUID, reason string) (*entities.Document, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, domainerrors.NewError("reason is required", domainerrors.ErrValidation)
	}
	doc, err := u.review(ctx, id, entities.DocumentStatusRejected, null.StringFrom(reason))
	if err != nil {
		return nil, err
	}
	u.notifyReview(ctx, doc, entities.TemplateDocumentRejected, map[string]string{"rejection_reason": reason})
	return doc, nil
}

// AdminUpload attaches a staff-provided file to an application. It is
// stored for the application's owner and approved immediately.
func (u *DocumentUsecase) AdminUpload(ctx context.Context, applicationID uuid.UUID, docType string, file *entities.UploadedFile) (*entities.Document, error) {
	docType = strings.TrimSpace(docType)
	if docType == "" {
		return nil, domainerrors.NewError("type is required", domainerrors.ErrValidation)
	}
	ext, mime, err := u.validateFile(file)
	if err != nil {
		return nil, err
	}
	app, err := u.appRepo.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}

	t := entities.DocumentType(docType)
	appID := app.ID
	doc := &entities.Document{
		UserID:          app.UserID,
		ApplicationID:   &appID,
		Name:            t.DisplayName(),
		Type:            t,
		FileName:        path.Base(file.Name),
		FileSize:        file.Size,
		MimeType:        mime,
		Status:          entities.DocumentStatusApproved,
		UploadedByAdmin: true,
	}
	return u.store(ctx, doc, storagePath(app.UserID, uuid.NewString()+"."+ext), file.Content)
}

func (u *DocumentUsecase) list(ctx context.Context, filter entities.DocumentFilter, page utils.PaginationParams) (utils.Page[*entities.Document], error) {
	page = utils.GetPaginationParams(page.Page, page.Limit)
	docs, total, err := u.docRepo.List(ctx, filter, page)
	if err != nil {
		return utils.Page[*entities.Document]{}, err
	}
	for _, d := range docs {
		d.URL = u.storage.URL(d.FilePath)
	}
	return utils.NewPage(docs, total, page), nil
}

// validateFile checks size, extension and sniffed content before anything
// is written. It returns the normalized extension and mime type.
func (u *DocumentUsecase) validateFile(file *entities.UploadedFile) (string, string, error) {
	if file == nil {
		return "", "", domainerrors.NewError("file is required", domainerrors.ErrValidation)
	}
	if file.Size > u.maxSize || int64(len(file.Content)) > u.maxSize {
		return "", "", domainerrors.NewError(fmt.Sprintf("file must not exceed %dMB", u.maxSize/(1024*1024)), domainerrors.ErrValidation)
	}
	if file.Size == 0 || len(file.Content) == 0 {
		return "", "", domainerrors.NewError("file is required", domainerrors.ErrValidation)
	}
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(file.Name)), ".")
	mime, ok := entities.AllowedDocumentExtensions[ext]
	if !ok {
		return "", "", domainerrors.NewError("file must be a jpg, jpeg, png or pdf", domainerrors.ErrValidation)
	}
	if sniffed := http.DetectContentType(file.Content); !strings.HasPrefix(sniffed, mime) {
		return "", "", domainerrors.NewError("file content does not match its extension", domainerrors.ErrValidation)
	}
	return ext, mime, nil
}

func (u *DocumentUsecase) checkOwnership(ctx context.Context, userID, applicationID uuid.UUID) error {
	app, err := u.appRepo.GetByID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return domainerrors.NewError("application not found", domainerrors.ErrNotFound)
		}
		return err
	}
	if app.UserID != userID {
		return domainerrors.NewError("application not found", domainerrors.ErrNotFound)
	}
	return nil
}

// store writes the file and then the row. A failed insert removes the file.
func (u *DocumentUsecase) store(ctx context.Context, doc *entities.Document, filePath string, content []byte) (*entities.Document, error) {
	if err := u.storage.Put(ctx, filePath, content, doc.MimeType); err != nil {
		return nil, fmt.Errorf("failed to store document: %w", err)
	}
	doc.FilePath = filePath
	if err := u.docRepo.Create(ctx, doc); err != nil {
		if delErr := u.storage.Delete(ctx, filePath); delErr != nil {
			logger.Warn(ctx, "Failed to remove orphaned upload", zap.String("path", filePath), zap.Error(delErr))
		}
		return nil, err
	}
	doc.URL = u.storage.URL(filePath)
	return doc, nil
}

func (u *DocumentUsecase) review(ctx context.Context, id uuid.UUID, status entities.DocumentStatus, reason null.String) (*entities.Document, error) {
	changed, err := u.docRepo.Review(ctx, id, status, reason)
	if err != nil {
		return nil, err
	}
	doc, err := u.docRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !changed {
		return nil, domainerrors.NewError("only pending documents can be reviewed", domainerrors.ErrInvalidState)
	}
	doc.URL = u.storage.URL(doc.FilePath)
	return doc, nil
}

func (u *DocumentUsecase) notifyReview(ctx context.Context, doc *entities.Document, template string, extra map[string]string) {
	if doc.User == nil {
		return
	}
	vars := map[string]string{
		"user_name":     doc.User.Name,
		"document_name": doc.Name,
	}
	for k, v := range extra {
		vars[k] = v
	}
	u.notifier.Notify(ctx, notification.EmailJob{
		To:       doc.User.Email,
		ToName:   doc.User.Name,
		Template: template,
		Vars:     vars,
	})
}

func storagePath(userID uuid.UUID, fileName string) string {
	return "documents/" + userID.String() + "/" + fileName
}

func (u *DocumentUsecase) signatureTooLarge() error {
	return domainerrors.NewError(fmt.Sprintf("signature must not exceed %dMB", u.maxSize/(1024*1024)), domainerrors.ErrValidation)
}

func jpegToPNG(raw []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// DocumentType identifies a KYC document kind
type DocumentType string

const (
	DocumentTypePassport  DocumentType = "passport"
	DocumentTypeNIN       DocumentType = "nin"
	DocumentTypePhoto     DocumentType = "photo"
	DocumentTypeSignature DocumentType = "signature"
)

// DocumentTypeInfo describes an uploadable document type
type DocumentTypeInfo struct {
	ID          DocumentType `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
}

// DocumentTypes lists the types customers may upload.
var DocumentTypes = []DocumentTypeInfo{
	{DocumentTypePassport, "International Passport", "Valid international passport"},
	{DocumentTypeNIN, "NIN Slip/Card", "National Identification Number"},
	{DocumentTypePhoto, "Passport Photograph", "Recent passport photograph"},
	{DocumentTypeSignature, "Signature", "Your signature (upload or draw)"},
}

// DisplayName returns the human name for the type, or the raw type.
func (t DocumentType) DisplayName() string {
	for _, info := range DocumentTypes {
		if info.ID == t {
			return info.Name
		}
	}
	return string(t)
}

// IsCustomerType reports whether customers may upload this type.
func (t DocumentType) IsCustomerType() bool {
	for _, info := range DocumentTypes {
		if info.ID == t {
			return true
		}
	}
	return false
}

// DocumentStatus represents review state
type DocumentStatus string

const (
	DocumentStatusPending  DocumentStatus = "pending"
	DocumentStatusApproved DocumentStatus = "approved"
	DocumentStatusRejected DocumentStatus = "rejected"
)

const MaxDocumentSize int64 = 5 * 1024 * 1024

// MaxSignatureDimension bounds either side of a signature image in pixels.
const MaxSignatureDimension = 4096

// AllowedDocumentExtensions maps accepted extensions to mime types.
var AllowedDocumentExtensions = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"pdf":  "application/pdf",
}

// Document is an uploaded KYC file
type Document struct {
	ID              uuid.UUID      `json:"id"`
	UserID          uuid.UUID      `json:"userId"`
	ApplicationID   *uuid.UUID     `json:"applicationId,omitempty"`
	Name            string         `json:"name"`
	Type            DocumentType   `json:"type"`
	FilePath        string         `json:"filePath"`
	FileName        string         `json:"fileName"`
	FileSize        int64          `json:"fileSize"`
	MimeType        string         `json:"mimeType"`
	Status          DocumentStatus `json:"status"`
	RejectionReason null.String    `json:"rejectionReason"`
	UploadedByAdmin bool           `json:"uploadedByAdmin"`
	URL             string         `json:"url,omitempty"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`

	User *User `json:"user,omitempty"`
}

// UploadedFile is a validated-size file handed to the document usecase.
type UploadedFile struct {
	Name    string
	Size    int64
	Content []byte
}

// UploadSignatureInput carries a drawn signature as a data URL or raw base64
type UploadSignatureInput struct {
	Signature     string     `json:"signature" binding:"required"`
	ApplicationID *uuid.UUID `json:"applicationId"`
}

// RejectDocumentInput carries the rejection reason
type RejectDocumentInput struct {
	Reason string `json:"reason" binding:"required,max=1000"`
}

// DocumentFilter narrows document listings
type DocumentFilter struct {
	UserID        *uuid.UUID
	ApplicationID *uuid.UUID
	Status        DocumentStatus
	Type          DocumentType
}

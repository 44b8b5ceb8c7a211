package repositories

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"avilegal.backend/internal/domain/entities"
	domainerrors "avilegal.backend/internal/domain/errors"
	"avilegal.backend/pkg/utils"
)

func TestDocumentRepository_Lifecycle(t *testing.T) {
	db := newTestDB(t)
	createAllTables(t, db)
	ctx := context.Background()
	repo := NewDocumentRepository(db)

	user := seedUser(t, db, "ada@example.com")
	appID := uuid.New()
	doc := &entities.Document{
		UserID:        user.ID,
		ApplicationID: &appID,
		Name:          "International Passport",
		Type:          entities.DocumentTypePassport,
		FilePath:      "documents/x/y.pdf",
		FileName:      "passport.pdf",
		FileSize:      1024,
		MimeType:      "application/pdf",
		Status:        entities.DocumentStatusPending,
	}
	require.NoError(t, repo.Create(ctx, doc))

	got, err := repo.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "passport.pdf", got.FileName)
	require.NotNil(t, got.User)
	assert.Equal(t, user.Email, got.User.Email)

	changed, err := repo.Review(ctx, doc.ID, entities.DocumentStatusRejected, null.StringFrom("blurry"))
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = repo.Review(ctx, doc.ID, entities.DocumentStatusApproved, null.String{})
	require.NoError(t, err)
	assert.False(t, changed, "reviewed documents are final")

	got, err = repo.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.DocumentStatusRejected, got.Status)
	assert.Equal(t, "blurry", got.RejectionReason.String)

	items, total, err := repo.List(ctx, entities.DocumentFilter{UserID: &user.ID, ApplicationID: &appID, Type: entities.DocumentTypePassport}, utils.PaginationParams{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, items, 1)

	require.NoError(t, repo.DetachFromApplication(ctx, appID))
	got, err = repo.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Nil(t, got.ApplicationID)

	_, total, err = repo.List(ctx, entities.DocumentFilter{Status: entities.DocumentStatusPending}, utils.PaginationParams{})
	require.NoError(t, err)
	assert.Zero(t, total)

	require.NoError(t, repo.Delete(ctx, doc.ID))
	_, err = repo.GetByID(ctx, doc.ID)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, doc.ID), domainerrors.ErrNotFound)
}

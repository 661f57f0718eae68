package document

import (
	"context"

	"gorm.io/gorm"

	domain "github.com/knowyourdocs/docchat/internal/domain/conversation"
	"github.com/knowyourdocs/docchat/internal/infrastructure/database/entities"
	"github.com/knowyourdocs/docchat/internal/utils/platformerrors"
)

// Repository persists uploaded document metadata.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a document repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts the document record.
func (r *Repository) Create(ctx context.Context, doc *domain.Document) error {
	entity := entities.NewSchemaDocument(doc)

	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to create document",
			err,
		)
	}

	doc.ID = entity.ID
	doc.CreatedAt = entity.CreatedAt
	return nil
}

// ListByConversation fetches the documents of one conversation in upload
// order.
func (r *Repository) ListByConversation(ctx context.Context, conversationID uint) ([]domain.Document, error) {
	var rows []entities.Document
	if err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to list documents",
			err,
		)
	}

	result := make([]domain.Document, len(rows))
	for i := range rows {
		result[i] = rows[i].EtoD()
	}
	return result, nil
}

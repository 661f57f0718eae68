package queryrecord

import (
	"context"

	"gorm.io/gorm"

	domain "github.com/knowyourdocs/docchat/internal/domain/conversation"
	"github.com/knowyourdocs/docchat/internal/infrastructure/database/entities"
	"github.com/knowyourdocs/docchat/internal/utils/platformerrors"
)

// Repository persists completed query/response pairs.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a query record repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create appends the query record.
func (r *Repository) Create(ctx context.Context, record *domain.QueryRecord) error {
	entity := entities.NewSchemaQueryRecord(record)

	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to create query record",
			err,
		)
	}

	record.ID = entity.ID
	record.CreatedAt = entity.CreatedAt
	return nil
}

// ListByConversation fetches the conversation's query history in creation
// order.
func (r *Repository) ListByConversation(ctx context.Context, conversationID uint) ([]domain.QueryRecord, error) {
	var rows []entities.QueryRecord
	if err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to list query records",
			err,
		)
	}

	result := make([]domain.QueryRecord, len(rows))
	for i := range rows {
		result[i] = rows[i].EtoD()
	}
	return result, nil
}

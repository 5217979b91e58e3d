package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/orris-inc/channelsync/internal/domain/project"
	"github.com/orris-inc/channelsync/internal/infrastructure/persistence/models"
	"github.com/orris-inc/channelsync/internal/shared/biztime"
	"github.com/orris-inc/channelsync/internal/shared/db"
	apperrors "github.com/orris-inc/channelsync/internal/shared/errors"
)

type ProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// GetOwned does not tell a missing project from one owned by another user.
func (r *ProjectRepository) GetOwned(ctx context.Context, projectID uint, userID string) (*project.Project, error) {
	var model models.ProjectModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("id = ? AND owner_id = ?", projectID, userID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("project not found")
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	return &project.Project{
		ID:        model.ID,
		OwnerID:   model.OwnerID,
		Name:      model.Name,
		CreatedAt: model.CreatedAt.UTC(),
	}, nil
}

func (r *ProjectRepository) Create(ctx context.Context, p *project.Project) error {
	now := biztime.NowUTC()
	model := &models.ProjectModel{
		ID:        p.ID,
		OwnerID:   p.OwnerID,
		Name:      p.Name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}
	p.ID = model.ID
	p.CreatedAt = now
	return nil
}

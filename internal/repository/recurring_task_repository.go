package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"weekly-planner/internal/model"
)

// RecurringTaskRepository reads recurring task definitions. Series are written only
// together with their first task (see TaskRepository.CreateWithRelations).
type RecurringTaskRepository struct {
	db *gorm.DB
}

func NewRecurringTaskRepository(db *gorm.DB) *RecurringTaskRepository {
	return &RecurringTaskRepository{db: db}
}

func (r *RecurringTaskRepository) ListAll(ctx context.Context) ([]model.RecurringTask, error) {
	var series []model.RecurringTask
	if err := r.db.WithContext(ctx).Order("company_id ASC, created_at ASC, id ASC").Find(&series).Error; err != nil {
		return nil, fmt.Errorf("list recurring tasks: %w", err)
	}
	return series, nil
}

package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"weekly-planner/internal/calendar"
	"weekly-planner/internal/model"
)

// TaskRepository handles CRUD for tasks.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// CreateParams bundles a new task with the rows created alongside it.
type CreateParams struct {
	Task        *model.Task
	Creator     model.User
	Series      *model.RecurringTask
	AssigneeIDs []string
	TagNames    []string
}

// CreateWithRelations stores a task, its optional recurring master, the creator and
// assignees (find-or-create) and its tags in one transaction. A task with the same
// title, company and week yields model.ErrConflict.
func (r *TaskRepository) CreateWithRelations(ctx context.Context, p CreateParams) (*model.Task, error) {
	task := p.Task
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exists, err := existsForWeek(tx, task.Title, task.CompanyID, task.WeekStart)
		if err != nil {
			return err
		}
		if exists {
			return model.ErrConflict
		}

		creator, err := findOrCreateUser(tx, p.Creator.ID, p.Creator.Name, p.Creator.Email, p.Creator.CompanyID)
		if err != nil {
			return err
		}
		task.CreatorID = creator.ID

		if p.Series != nil {
			p.Series.CreatorID = creator.ID
			if err := tx.Create(p.Series).Error; err != nil {
				return fmt.Errorf("create recurring task: %w", translate(err))
			}
			task.RecurringTaskID = &p.Series.ID
		}

		task.Assignees = make([]model.User, 0, len(p.AssigneeIDs))
		for _, id := range p.AssigneeIDs {
			user, err := findOrCreateUser(tx, id, "", "", task.CompanyID)
			if err != nil {
				return err
			}
			task.Assignees = append(task.Assignees, *user)
		}

		task.Tags = make([]model.Tag, 0, len(p.TagNames))
		for _, name := range p.TagNames {
			tag, err := getOrCreateTag(tx, name)
			if err != nil {
				return err
			}
			if tag != nil {
				task.Tags = append(task.Tags, *tag)
			}
		}

		if err := tx.Omit("Assignees.*", "Tags.*").Create(task).Error; err != nil {
			return fmt.Errorf("create task: %w", translate(err))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// Create stores a bare task. A duplicate (title, company, week) yields model.ErrConflict.
func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Omit("Assignees", "Tags").Create(task).Error; err != nil {
		return fmt.Errorf("create task: %w", translate(err))
	}
	return nil
}

// ExistsForWeek reports whether a task already holds the (title, company, week) key.
func (r *TaskRepository) ExistsForWeek(ctx context.Context, title, companyID string, weekStart time.Time) (bool, error) {
	return existsForWeek(r.db.WithContext(ctx), title, companyID, weekStart)
}

func existsForWeek(db *gorm.DB, title, companyID string, weekStart time.Time) (bool, error) {
	var count int64
	err := db.Model(&model.Task{}).
		Where("title = ? AND company_id = ? AND week_start = ?", title, companyID, calendar.Date(weekStart)).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check task week: %w", err)
	}
	return count > 0, nil
}

func (r *TaskRepository) FindByID(ctx context.Context, id string) (*model.Task, error) {
	var task model.Task
	if err := r.db.WithContext(ctx).Preload("Assignees").Preload("Tags").
		Where("id = ?", id).First(&task).Error; err != nil {
		return nil, fmt.Errorf("find task %s: %w", id, translate(err))
	}
	return &task, nil
}

// TaskPatch lists the mutable task fields; nil leaves a field untouched.
type TaskPatch struct {
	Status   *model.Status
	Title    *string
	Priority *model.Priority
}

// Update applies a patch and returns the stored task.
func (r *TaskRepository) Update(ctx context.Context, id string, patch TaskPatch) (*model.Task, error) {
	var task model.Task
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&task).Error; err != nil {
			return translate(err)
		}
		updates := map[string]interface{}{}
		if patch.Status != nil {
			updates["status"] = *patch.Status
		}
		if patch.Title != nil && *patch.Title != task.Title {
			exists, err := existsForWeek(tx, *patch.Title, task.CompanyID, task.WeekStart)
			if err != nil {
				return err
			}
			if exists {
				return model.ErrConflict
			}
			updates["title"] = *patch.Title
		}
		if patch.Priority != nil {
			updates["priority"] = *patch.Priority
		}
		if len(updates) > 0 {
			if err := tx.Model(&task).Updates(updates).Error; err != nil {
				return translate(err)
			}
		}
		return tx.Preload("Assignees").Preload("Tags").Where("id = ?", id).First(&task).Error
	})
	if err != nil {
		return nil, fmt.Errorf("update task %s: %w", id, err)
	}
	return &task, nil
}

// Delete removes a single task instance and its assignee and tag links.
func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var task model.Task
		if err := tx.Where("id = ?", id).First(&task).Error; err != nil {
			return translate(err)
		}
		if err := tx.Exec("DELETE FROM task_assignees WHERE task_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM task_tags WHERE task_id = ?", id).Error; err != nil {
			return err
		}
		result := tx.Delete(&task)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return model.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete task %s: %w", id, err)
	}
	return nil
}

// ListByWeekRange returns tasks whose week start lies in [start, end], oldest first.
func (r *TaskRepository) ListByWeekRange(ctx context.Context, start, end time.Time) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).Preload("Assignees").Preload("Tags").
		Where("week_start >= ? AND week_start <= ?", start.UTC(), end.UTC()).
		Order("created_at ASC, id ASC").
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list week tasks: %w", err)
	}
	return tasks, nil
}

// ListDueBetween returns unfinished tasks due in (from, to].
func (r *TaskRepository) ListDueBetween(ctx context.Context, from, to time.Time) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).Preload("Assignees").
		Where("status <> ? AND due_at > ? AND due_at <= ?", model.StatusCompleted, from.UTC(), to.UTC()).
		Order("due_at ASC").
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list due tasks: %w", err)
	}
	return tasks, nil
}

// LatestInstance returns the series instance with the latest week start, or nil when
// the series has none yet.
func (r *TaskRepository) LatestInstance(ctx context.Context, seriesID string) (*model.Task, error) {
	var task model.Task
	err := r.db.WithContext(ctx).Where("recurring_task_id = ?", seriesID).
		Order("week_start DESC").Limit(1).First(&task).Error
	switch {
	case err == nil:
		return &task, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, nil
	default:
		return nil, fmt.Errorf("latest instance of %s: %w", seriesID, err)
	}
}

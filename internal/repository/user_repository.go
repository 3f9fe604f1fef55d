package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"weekly-planner/internal/model"
)

// UserRepository handles CRUD for users.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a user. A taken email yields model.ErrConflict.
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	db := r.db.WithContext(ctx)
	var count int64
	if err := db.Model(&model.User{}).Where("email = ?", user.Email).Count(&count).Error; err != nil {
		return fmt.Errorf("check email: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("email %q: %w", user.Email, model.ErrConflict)
	}
	if err := db.Create(user).Error; err != nil {
		return fmt.Errorf("create user: %w", translate(err))
	}
	return nil
}

// FindOrCreate returns the user with the given id, creating a placeholder member of
// companyID when it does not exist yet.
func (r *UserRepository) FindOrCreate(ctx context.Context, id, name, email, companyID string) (*model.User, error) {
	return findOrCreateUser(r.db.WithContext(ctx), id, name, email, companyID)
}

func findOrCreateUser(db *gorm.DB, id, name, email, companyID string) (*model.User, error) {
	var user model.User
	err := db.Where("id = ?", id).First(&user).Error
	switch {
	case err == nil:
		return &user, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		if name == "" {
			name = fmt.Sprintf("User %s", id)
		}
		if email == "" {
			email = fmt.Sprintf("user-%s@example.invalid", id)
		}
		user = model.User{ID: id, Name: name, Email: email, CompanyID: companyID}
		if err := db.Create(&user).Error; err != nil {
			return nil, fmt.Errorf("create user: %w", translate(err))
		}
		return &user, nil
	default:
		return nil, fmt.Errorf("find user: %w", err)
	}
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, fmt.Errorf("find user %s: %w", id, translate(err))
	}
	return &user, nil
}

func (r *UserRepository) FindByTelegramChatID(ctx context.Context, chatID int64) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("telegram_chat_id = ?", chatID).First(&user).Error; err != nil {
		return nil, fmt.Errorf("find user by chat: %w", translate(err))
	}
	return &user, nil
}

// ListAll returns users ordered by name.
func (r *UserRepository) ListAll(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// LinkTelegram attaches a Telegram chat to the user with the given email.
func (r *UserRepository) LinkTelegram(ctx context.Context, email string, chatID int64) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("email = ?", email).First(&user).Error; err != nil {
			return translate(err)
		}
		// A chat follows one user at a time.
		if err := tx.Model(&model.User{}).Where("telegram_chat_id = ? AND id <> ?", chatID, user.ID).
			Update("telegram_chat_id", nil).Error; err != nil {
			return err
		}
		user.TelegramChatID = &chatID
		return tx.Model(&user).Update("telegram_chat_id", chatID).Error
	})
	if err != nil {
		return nil, fmt.Errorf("link telegram: %w", err)
	}
	return &user, nil
}

// Delete removes the user after unassigning them and deleting the tasks they created.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user model.User
		if err := tx.Where("id = ?", id).First(&user).Error; err != nil {
			return translate(err)
		}
		if err := tx.Exec("DELETE FROM task_assignees WHERE user_id = ?", id).Error; err != nil {
			return fmt.Errorf("unassign: %w", err)
		}
		if err := tx.Exec("DELETE FROM task_assignees WHERE task_id IN (SELECT id FROM tasks WHERE creator_id = ?)", id).Error; err != nil {
			return fmt.Errorf("unlink owned task assignees: %w", err)
		}
		if err := tx.Exec("DELETE FROM task_tags WHERE task_id IN (SELECT id FROM tasks WHERE creator_id = ?)", id).Error; err != nil {
			return fmt.Errorf("unlink owned task tags: %w", err)
		}
		if err := tx.Where("creator_id = ?", id).Delete(&model.Task{}).Error; err != nil {
			return fmt.Errorf("delete owned tasks: %w", err)
		}
		return tx.Delete(&user).Error
	})
	if err != nil {
		return fmt.Errorf("delete user %s: %w", id, err)
	}
	return nil
}

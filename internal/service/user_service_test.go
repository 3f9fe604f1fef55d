package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weekly-planner/internal/model"
	"weekly-planner/internal/repository"
)

func TestUserServiceCreateAndList(t *testing.T) {
	db := newTestDB(t)
	users := NewUserService(repository.NewUserRepository(db))

	bob, err := users.Create(context.Background(), testActor, UserInput{Name: " Bob ", Email: "Bob@Example.com"})
	require.NoError(t, err)
	assert.NotEmpty(t, bob.ID)
	assert.Equal(t, "Bob", bob.Name)
	assert.Equal(t, "bob@example.com", bob.Email)
	assert.Equal(t, testCompany, bob.CompanyID)

	_, err = users.Create(context.Background(), testActor, UserInput{Name: "Alice", Email: "alice@example.com"})
	require.NoError(t, err)

	_, err = users.Create(context.Background(), testActor, UserInput{Name: "Bobby", Email: "BOB@example.com"})
	assert.ErrorIs(t, err, model.ErrConflict)

	list, err := users.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Alice", list[0].Name)
	assert.Equal(t, "Bob", list[1].Name)
}

func TestUserServiceValidation(t *testing.T) {
	users := NewUserService(repository.NewUserRepository(newTestDB(t)))

	_, err := users.Create(context.Background(), testActor, UserInput{Name: "", Email: "not-an-email"})
	var verr *model.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "is required", verr.Fields["name"])
	assert.Equal(t, "must be a valid email", verr.Fields["email"])
}

func TestUserServiceDeleteCascades(t *testing.T) {
	db := newTestDB(t)
	users := NewUserService(repository.NewUserRepository(db))
	tasks := NewTaskService(repository.NewTaskRepository(db), nil, time.UTC)
	ctx := context.Background()

	carol, err := users.Create(ctx, testActor, UserInput{Name: "Carol", Email: "carol@example.com"})
	require.NoError(t, err)

	owned, err := tasks.CreateTask(ctx, Actor{UserID: carol.ID, CompanyID: testCompany}, TaskInput{
		Title:       "Carol's task",
		AssigneeIDs: []string{carol.ID},
		WeekStart:   "2023-10-02",
		DueTime:     "2023-10-03T10:00:00Z",
		Tags:        []string{"ops"},
	})
	require.NoError(t, err)
	shared, err := tasks.CreateTask(ctx, testActor, TaskInput{
		Title:       "Shared task",
		AssigneeIDs: []string{carol.ID, assigneeID},
		WeekStart:   "2023-10-02",
		DueTime:     "2023-10-03T10:00:00Z",
	})
	require.NoError(t, err)

	require.NoError(t, users.Delete(ctx, carol.ID))

	_, err = tasks.GetTask(ctx, owned.ID)
	assert.ErrorIs(t, err, model.ErrNotFound)

	kept, err := tasks.GetTask(ctx, shared.ID)
	require.NoError(t, err)
	require.Len(t, kept.Assignees, 1)
	assert.Equal(t, assigneeID, kept.Assignees[0].ID)

	var tagLinks int64
	require.NoError(t, db.Table("task_tags").Count(&tagLinks).Error)
	assert.Zero(t, tagLinks)

	assert.ErrorIs(t, users.Delete(ctx, carol.ID), model.ErrNotFound)
}

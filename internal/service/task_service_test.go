package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"weekly-planner/internal/model"
	"weekly-planner/internal/notify"
	"weekly-planner/internal/repository"
)

const assigneeID = "0b8f5c3e-7d21-4a96-b0f4-6c2e9a1d3f57"

func newTaskFixture(t *testing.T) (*gorm.DB, *TaskService, *recordingNotifier) {
	t.Helper()
	db := newTestDB(t)
	n := &recordingNotifier{}
	svc := NewTaskService(repository.NewTaskRepository(db), n, time.UTC)
	svc.now = fixedClock(time.Date(2023, 10, 4, 9, 0, 0, 0, time.UTC))
	return db, svc, n
}

func validInput() TaskInput {
	return TaskInput{
		Title:       "Prepare demo",
		Description: "Slides and script",
		Priority:    model.PriorityHigh,
		AssigneeIDs: []string{assigneeID},
		WeekStart:   "2023-10-02",
		DueTime:     "2023-10-06T15:00:00+02:00",
		Tags:        []string{"demo", "sales"},
	}
}

func TestCreateTaskStoresRelations(t *testing.T) {
	db, svc, n := newTaskFixture(t)

	task, err := svc.CreateTask(context.Background(), testActor, validInput())
	require.NoError(t, err)
	assert.NotEmpty(t, task.ID)
	assert.Equal(t, model.StatusPending, task.Status)
	assert.Equal(t, testUserID, task.CreatorID)
	assert.Nil(t, task.RecurringTaskID)
	assert.True(t, time.Date(2023, 10, 6, 13, 0, 0, 0, time.UTC).Equal(task.DueAt))

	stored, err := svc.GetTask(context.Background(), task.ID)
	require.NoError(t, err)
	require.Len(t, stored.Assignees, 1)
	assert.Equal(t, assigneeID, stored.Assignees[0].ID)
	assert.Equal(t, testCompany, stored.Assignees[0].CompanyID)
	assert.Len(t, stored.Tags, 2)
	assert.Equal(t, "2023-10-02", day(stored.WeekStart))

	var users int64
	require.NoError(t, db.Model(&model.User{}).Count(&users).Error)
	assert.EqualValues(t, 2, users, "creator and assignee are created on demand")

	assigned := n.byKind(notify.KindAssigned)
	require.Len(t, assigned, 1)
	assert.Equal(t, assigneeID, assigned[0].UserID)
	assert.Equal(t, task.ID, assigned[0].Payload["taskId"])
}

func TestCreateTaskDefaultsPriorityAndSharesTags(t *testing.T) {
	db, svc, _ := newTaskFixture(t)

	first := validInput()
	first.Priority = ""
	task, err := svc.CreateTask(context.Background(), testActor, first)
	require.NoError(t, err)
	assert.Equal(t, model.PriorityMedium, task.Priority)

	second := validInput()
	second.Title = "Follow up"
	second.Tags = []string{"demo", " demo "}
	_, err = svc.CreateTask(context.Background(), testActor, second)
	require.NoError(t, err)

	var tags int64
	require.NoError(t, db.Model(&model.Tag{}).Count(&tags).Error)
	assert.EqualValues(t, 2, tags)
}

func TestCreateTaskDuplicateConflicts(t *testing.T) {
	db, svc, _ := newTaskFixture(t)

	_, err := svc.CreateTask(context.Background(), testActor, validInput())
	require.NoError(t, err)

	_, err = svc.CreateTask(context.Background(), testActor, validInput())
	assert.ErrorIs(t, err, model.ErrConflict)

	// same title in another week or company is fine
	other := validInput()
	other.WeekStart = "2023-10-09"
	_, err = svc.CreateTask(context.Background(), testActor, other)
	require.NoError(t, err)
	_, err = svc.CreateTask(context.Background(), Actor{UserID: testUserID, CompanyID: "company-2"}, validInput())
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&model.Task{}).Count(&count).Error)
	assert.EqualValues(t, 3, count)
}

func TestCreateTaskValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*TaskInput)
		field  string
	}{
		{"short title", func(in *TaskInput) { in.Title = " ab " }, "title"},
		{"long title", func(in *TaskInput) { in.Title = strings.Repeat("x", 101) }, "title"},
		{"not a monday", func(in *TaskInput) { in.WeekStart = "2023-10-04" }, "weekStart"},
		{"bad week", func(in *TaskInput) { in.WeekStart = "02/10/2023" }, "weekStart"},
		{"missing week", func(in *TaskInput) { in.WeekStart = "" }, "weekStart"},
		{"bad due time", func(in *TaskInput) { in.DueTime = "friday" }, "dueTime"},
		{"bad priority", func(in *TaskInput) { in.Priority = "URGENT" }, "priority"},
		{"bad assignee", func(in *TaskInput) { in.AssigneeIDs = []string{"bob"} }, "assigneeIds[0]"},
		{"missing assignees", func(in *TaskInput) { in.AssigneeIDs = nil }, "assigneeIds"},
		{"day out of range", func(in *TaskInput) {
			in.Recurrence = &RecurrenceInput{Enabled: true, DayOfWeek: intPtr(7)}
		}, "recurrence.dayOfWeek"},
		{"zero interval", func(in *TaskInput) {
			in.Recurrence = &RecurrenceInput{Enabled: true, IntervalWeeks: intPtr(0), DayOfWeek: intPtr(1)}
		}, "recurrence.intervalWeeks"},
		{"interval over a year", func(in *TaskInput) {
			in.Recurrence = &RecurrenceInput{Enabled: true, IntervalWeeks: intPtr(53), DayOfWeek: intPtr(1)}
		}, "recurrence.intervalWeeks"},
		{"overflowing interval", func(in *TaskInput) {
			in.Recurrence = &RecurrenceInput{Enabled: true, IntervalWeeks: intPtr(1317624576693539402), DayOfWeek: intPtr(1)}
		}, "recurrence.intervalWeeks"},
		{"missing day", func(in *TaskInput) { in.Recurrence = &RecurrenceInput{Enabled: true} }, "recurrence.dayOfWeek"},
		{"bad end date", func(in *TaskInput) {
			in.Recurrence = &RecurrenceInput{Enabled: true, DayOfWeek: intPtr(1), EndDate: "soon"}
		}, "recurrence.endDate"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, svc, n := newTaskFixture(t)
			in := validInput()
			tt.mutate(&in)

			_, err := svc.CreateTask(context.Background(), testActor, in)
			var verr *model.ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Contains(t, verr.Fields, tt.field, verr.Error())

			var count int64
			require.NoError(t, db.Model(&model.Task{}).Count(&count).Error)
			assert.Zero(t, count)
			assert.Empty(t, n.sent)
		})
	}
}

func TestCreateRecurringTaskLinksSeries(t *testing.T) {
	db, svc, _ := newTaskFixture(t)

	in := validInput()
	in.Recurrence = &RecurrenceInput{Enabled: true, IntervalWeeks: intPtr(2), DayOfWeek: intPtr(5), EndDate: "2023-12-31"}
	task, err := svc.CreateTask(context.Background(), testActor, in)
	require.NoError(t, err)
	require.NotNil(t, task.RecurringTaskID)

	var series model.RecurringTask
	require.NoError(t, db.Where("id = ?", *task.RecurringTaskID).First(&series).Error)
	assert.Equal(t, "Prepare demo", series.Title)
	assert.Equal(t, 2, series.IntervalWeeks)
	assert.Equal(t, 5, series.DayOfWeek)
	assert.Equal(t, testUserID, series.CreatorID)
	require.NotNil(t, series.EndDate)
	assert.Equal(t, "2023-12-31", day(*series.EndDate))
}

func TestCreateTaskIgnoresDisabledRecurrence(t *testing.T) {
	_, svc, _ := newTaskFixture(t)

	in := validInput()
	in.Recurrence = &RecurrenceInput{Enabled: false, DayOfWeek: intPtr(1)}
	task, err := svc.CreateTask(context.Background(), testActor, in)
	require.NoError(t, err)
	assert.Nil(t, task.RecurringTaskID)
}

func TestUpdateTask(t *testing.T) {
	_, svc, n := newTaskFixture(t)
	task, err := svc.CreateTask(context.Background(), testActor, validInput())
	require.NoError(t, err)

	status := model.StatusCompleted
	priority := model.PriorityLow
	updated, err := svc.UpdateTask(context.Background(), task.ID, TaskUpdate{Status: &status, Priority: &priority})
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, updated.Status)
	assert.Equal(t, model.PriorityLow, updated.Priority)
	assert.Len(t, updated.Assignees, 1)

	done := n.byKind(notify.KindGenerated)
	require.Len(t, done, 1)
	assert.Equal(t, testUserID, done[0].UserID)
	assert.Equal(t, "Task Completed: Prepare demo", done[0].Payload["title"])

	bad := model.Status("DONE")
	_, err = svc.UpdateTask(context.Background(), task.ID, TaskUpdate{Status: &bad})
	var verr *model.ValidationError
	assert.True(t, errors.As(err, &verr))

	_, err = svc.UpdateTask(context.Background(), "missing", TaskUpdate{Status: &status})
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestUpdateTaskTitleConflict(t *testing.T) {
	_, svc, _ := newTaskFixture(t)
	_, err := svc.CreateTask(context.Background(), testActor, validInput())
	require.NoError(t, err)

	other := validInput()
	other.Title = "Other task"
	task, err := svc.CreateTask(context.Background(), testActor, other)
	require.NoError(t, err)

	title := "Prepare demo"
	_, err = svc.UpdateTask(context.Background(), task.ID, TaskUpdate{Title: &title})
	assert.ErrorIs(t, err, model.ErrConflict)
}

func TestDeleteTask(t *testing.T) {
	db, svc, _ := newTaskFixture(t)
	in := validInput()
	in.Recurrence = &RecurrenceInput{Enabled: true, DayOfWeek: intPtr(1)}
	task, err := svc.CreateTask(context.Background(), testActor, in)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteTask(context.Background(), task.ID))
	assert.ErrorIs(t, svc.DeleteTask(context.Background(), task.ID), model.ErrNotFound)
	_, err = svc.GetTask(context.Background(), task.ID)
	assert.ErrorIs(t, err, model.ErrNotFound)

	var links int64
	require.NoError(t, db.Table("task_assignees").Count(&links).Error)
	assert.Zero(t, links)

	var series int64
	require.NoError(t, db.Model(&model.RecurringTask{}).Count(&series).Error)
	assert.EqualValues(t, 1, series, "the recurring master survives instance deletion")
}

func TestListWeek(t *testing.T) {
	_, svc, _ := newTaskFixture(t)
	low := validInput()
	low.Title = "Low one"
	low.Priority = model.PriorityLow
	_, err := svc.CreateTask(context.Background(), testActor, low)
	require.NoError(t, err)
	_, err = svc.CreateTask(context.Background(), testActor, validInput())
	require.NoError(t, err)

	start, tasks, err := svc.ListWeek(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "2023-10-02", day(start))
	require.Len(t, tasks, 2)
	assert.Equal(t, "Prepare demo", tasks[0].Title)

	start, tasks, err = svc.ListWeek(context.Background(), "2023-10-12")
	require.NoError(t, err)
	assert.Equal(t, "2023-10-09", day(start))
	assert.Empty(t, tasks)

	_, _, err = svc.ListWeek(context.Background(), "someday")
	var verr *model.ValidationError
	assert.True(t, errors.As(err, &verr))
}

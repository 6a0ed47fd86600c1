package repository

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/taskdesk/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type backend struct {
	name string
	open func(t *testing.T) Repositories
}

func backends() []backend {
	return []backend{
		{name: "memory", open: func(t *testing.T) Repositories { return NewMemoryRepositories() }},
		{name: "gorm-sqlite", open: openSQLite},
	}
}

func openSQLite(t *testing.T) Repositories {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Task{}))
	return NewGormRepositories(db)
}

func strPtr(s string) *string { return &s }

func newUser(username string) *models.User {
	return &models.User{
		Username:     username,
		Email:        username + "@company.com",
		PasswordHash: "hash",
		FullName:     strings.ToUpper(username),
		Role:         models.RoleEmployee,
		IsActive:     true,
	}
}

func newTask(title string, status models.TaskStatus) *models.Task {
	return &models.Task{
		Title:    title,
		Priority: models.TaskPriorityMedium,
		Status:   status,
	}
}

func TestUserRepository_IDsAreSequential(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			repos := b.open(t)

			for i := 1; i <= 5; i++ {
				user := newUser("user" + string(rune('a'+i)))
				require.NoError(t, repos.Users.Create(user))
				assert.Equal(t, uint64(i), user.ID)
				assert.False(t, user.JoinedAt.IsZero())
			}

			users, err := repos.Users.List()
			require.NoError(t, err)
			require.Len(t, users, 5)
			for i, u := range users {
				assert.Equal(t, uint64(i+1), u.ID)
			}

			count, err := repos.Users.Count()
			require.NoError(t, err)
			assert.Equal(t, int64(5), count)
		})
	}
}

func TestUserRepository_FindByUsername(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			repos := b.open(t)
			require.NoError(t, repos.Users.Create(newUser("admin")))
			require.NoError(t, repos.Users.Create(newUser("manager1")))

			user, err := repos.Users.FindByUsername("manager1")
			require.NoError(t, err)
			assert.Equal(t, uint64(2), user.ID)

			_, err = repos.Users.FindByUsername("Manager1")
			assert.ErrorIs(t, err, ErrNotFound)

			_, err = repos.Users.FindByUsername("nobody")
			assert.ErrorIs(t, err, ErrNotFound)

			_, err = repos.Users.FindByID(99)
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestUserRepository_InactiveUserPersists(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			repos := b.open(t)

			user := newUser("ghost")
			user.IsActive = false
			require.NoError(t, repos.Users.Create(user))

			stored, err := repos.Users.FindByID(user.ID)
			require.NoError(t, err)
			assert.False(t, stored.IsActive)

			byName, err := repos.Users.FindByUsername("ghost")
			require.NoError(t, err)
			assert.False(t, byName.IsActive)
		})
	}
}

func TestTaskRepository_CreateDefaults(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			repos := b.open(t)

			task := newTask("Write report", models.TaskStatusPending)
			require.NoError(t, repos.Tasks.Create(task))
			assert.Equal(t, uint64(1), task.ID)

			stored, err := repos.Tasks.FindByID(task.ID)
			require.NoError(t, err)
			assert.Equal(t, 0, stored.Progress)
			assert.Nil(t, stored.Description)
			assert.Nil(t, stored.AssigneeID)
			assert.Nil(t, stored.DueDate)
			assert.False(t, stored.CreatedAt.IsZero())
		})
	}
}

func TestTaskRepository_UpdateChangesOnlyPatchedFields(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			repos := b.open(t)

			assignee := uint64(3)
			due := time.Date(2025, 7, 5, 0, 0, 0, 0, time.UTC)
			task := newTask("Prepare slides", models.TaskStatusPending)
			task.Description = strPtr("for new clients")
			task.AssigneeID = &assignee
			task.Progress = 25
			task.DueDate = &due
			require.NoError(t, repos.Tasks.Create(task))

			before, err := repos.Tasks.FindByID(task.ID)
			require.NoError(t, err)

			completed := models.TaskStatusCompleted
			patch := models.TaskPatch{Status: &completed}

			first, err := repos.Tasks.Update(task.ID, patch)
			require.NoError(t, err)
			second, err := repos.Tasks.Update(task.ID, patch)
			require.NoError(t, err)

			assert.Equal(t, first.Status, second.Status)
			assert.Equal(t, first.Title, second.Title)
			assert.Equal(t, first.Progress, second.Progress)

			expected := *before
			expected.Status = models.TaskStatusCompleted
			after, err := repos.Tasks.FindByID(task.ID)
			require.NoError(t, err)
			assert.Equal(t, expected.Title, after.Title)
			assert.Equal(t, *expected.Description, *after.Description)
			assert.Equal(t, expected.Priority, after.Priority)
			assert.Equal(t, *expected.AssigneeID, *after.AssigneeID)
			assert.Equal(t, expected.Progress, after.Progress)
			assert.True(t, expected.DueDate.Equal(*after.DueDate))
			assert.True(t, expected.CreatedAt.Equal(after.CreatedAt))
			assert.Equal(t, expected.Status, after.Status)
		})
	}
}

func TestTaskRepository_UpdateClearsNullableFields(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			repos := b.open(t)

			assignee := uint64(1)
			task := newTask("Cleanup", models.TaskStatusOverdue)
			task.Description = strPtr("old")
			task.AssigneeID = &assignee
			require.NoError(t, repos.Tasks.Create(task))

			updated, err := repos.Tasks.Update(task.ID, models.TaskPatch{
				ClearDescription: true,
				ClearAssignee:    true,
			})
			require.NoError(t, err)
			assert.Nil(t, updated.Description)
			assert.Nil(t, updated.AssigneeID)
		})
	}
}

func TestTaskRepository_UpdateUnknownID(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			repos := b.open(t)
			require.NoError(t, repos.Tasks.Create(newTask("Only task", models.TaskStatusPending)))

			title := "changed"
			_, err := repos.Tasks.Update(42, models.TaskPatch{Title: &title})
			assert.ErrorIs(t, err, ErrNotFound)

			tasks, err := repos.Tasks.List()
			require.NoError(t, err)
			require.Len(t, tasks, 1)
			assert.Equal(t, "Only task", tasks[0].Title)
		})
	}
}

func TestTaskRepository_Delete(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			repos := b.open(t)
			task := newTask("Disposable", models.TaskStatusPending)
			require.NoError(t, repos.Tasks.Create(task))

			deleted, err := repos.Tasks.Delete(task.ID)
			require.NoError(t, err)
			assert.True(t, deleted)

			_, err = repos.Tasks.FindByID(task.ID)
			assert.ErrorIs(t, err, ErrNotFound)

			deleted, err = repos.Tasks.Delete(task.ID)
			require.NoError(t, err)
			assert.False(t, deleted)

			deleted, err = repos.Tasks.Delete(1000)
			require.NoError(t, err)
			assert.False(t, deleted)

			// ids are never reused after a delete
			next := newTask("Next", models.TaskStatusPending)
			require.NoError(t, repos.Tasks.Create(next))
			assert.Equal(t, uint64(2), next.ID)
		})
	}
}

func TestTaskRepository_ListByAssignee(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			repos := b.open(t)

			employee, manager := uint64(3), uint64(2)
			for i, assignee := range []*uint64{&employee, &manager, &employee, nil} {
				task := newTask("task", models.TaskStatusPending)
				task.Title = string(rune('A' + i))
				task.AssigneeID = assignee
				require.NoError(t, repos.Tasks.Create(task))
			}

			tasks, err := repos.Tasks.ListByAssignee(employee)
			require.NoError(t, err)
			require.Len(t, tasks, 2)
			assert.Equal(t, "A", tasks[0].Title)
			assert.Equal(t, "C", tasks[1].Title)

			tasks, err = repos.Tasks.ListByAssignee(77)
			require.NoError(t, err)
			assert.Empty(t, tasks)
		})
	}
}

func TestMemoryTaskRepository_ConcurrentCreate(t *testing.T) {
	repo := NewMemoryTaskRepository()

	const n = 100
	var wg sync.WaitGroup
	ids := make(chan uint64, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			task := newTask("parallel", models.TaskStatusPending)
			assert.NoError(t, repo.Create(task))
			ids <- task.ID
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[uint64]bool, n)
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
		assert.True(t, id >= 1 && id <= n)
	}
	assert.Len(t, seen, n)
}

func TestMemoryTaskRepository_ReturnsCopies(t *testing.T) {
	repo := NewMemoryTaskRepository()
	assignee := uint64(1)
	due := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	task := newTask("Original", models.TaskStatusPending)
	task.Description = strPtr("before")
	task.AssigneeID = &assignee
	task.DueDate = &due
	require.NoError(t, repo.Create(task))

	// caller keeps mutating its own values after Create
	*task.Description = "caller"
	*task.AssigneeID = 7
	*task.DueDate = due.AddDate(1, 0, 0)

	found, err := repo.FindByID(task.ID)
	require.NoError(t, err)
	found.Title = "mutated"
	*found.Description = "mutated"
	*found.AssigneeID = 9
	*found.DueDate = due.AddDate(2, 0, 0)

	listed, err := repo.List()
	require.NoError(t, err)
	require.Len(t, listed, 1)
	*listed[0].Description = "listed"

	updated, err := repo.Update(task.ID, models.TaskPatch{Title: strPtr("Renamed")})
	require.NoError(t, err)
	*updated.AssigneeID = 11

	again, err := repo.FindByID(task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", again.Title)
	require.NotNil(t, again.Description)
	assert.Equal(t, "before", *again.Description)
	require.NotNil(t, again.AssigneeID)
	assert.Equal(t, uint64(1), *again.AssigneeID)
	require.NotNil(t, again.DueDate)
	assert.True(t, due.Equal(*again.DueDate))
}

package repository

import (
	"cmp"
	"slices"
	"sync"
	"time"

	"github.com/yukikurage/taskdesk/internal/models"
)

// NewMemoryRepositories returns empty in-memory user and task stores.
func NewMemoryRepositories() Repositories {
	return Repositories{
		Users: NewMemoryUserRepository(),
		Tasks: NewMemoryTaskRepository(),
	}
}

// MemoryUserRepository keeps users in a map guarded by a single lock.
type MemoryUserRepository struct {
	mu     sync.RWMutex
	users  map[uint64]models.User
	nextID uint64
	now    func() time.Time
}

// NewMemoryUserRepository creates an empty in-memory UserRepository
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		users:  make(map[uint64]models.User),
		nextID: 1,
		now:    time.Now,
	}
}

// Create creates a new user
func (r *MemoryUserRepository) Create(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user.ID = r.nextID
	r.nextID++
	if user.JoinedAt.IsZero() {
		user.JoinedAt = r.now()
	}
	r.users[user.ID] = *user
	return nil
}

// FindByID finds a user by ID
func (r *MemoryUserRepository) FindByID(id uint64) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

// FindByUsername finds a user by username
func (r *MemoryUserRepository) FindByUsername(username string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.sortedLocked() {
		if user.Username == username {
			return &user, nil
		}
	}
	return nil, ErrNotFound
}

// List returns all users ordered by id
func (r *MemoryUserRepository) List() ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.sortedLocked(), nil
}

// Count returns the number of users
func (r *MemoryUserRepository) Count() (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return int64(len(r.users)), nil
}

// ids only grow, so id order is insertion order
func (r *MemoryUserRepository) sortedLocked() []models.User {
	users := make([]models.User, 0, len(r.users))
	for _, user := range r.users {
		users = append(users, user)
	}
	slices.SortFunc(users, func(a, b models.User) int { return cmp.Compare(a.ID, b.ID) })
	return users
}

// MemoryTaskRepository keeps tasks in a map guarded by a single lock.
type MemoryTaskRepository struct {
	mu     sync.RWMutex
	tasks  map[uint64]models.Task
	nextID uint64
	now    func() time.Time
}

// NewMemoryTaskRepository creates an empty in-memory TaskRepository
func NewMemoryTaskRepository() *MemoryTaskRepository {
	return &MemoryTaskRepository{
		tasks:  make(map[uint64]models.Task),
		nextID: 1,
		now:    time.Now,
	}
}

// Create creates a new task
func (r *MemoryTaskRepository) Create(task *models.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	task.ID = r.nextID
	r.nextID++
	if task.CreatedAt.IsZero() {
		task.CreatedAt = r.now()
	}
	r.tasks[task.ID] = cloneTask(*task)
	return nil
}

// FindByID finds a task by ID
func (r *MemoryTaskRepository) FindByID(id uint64) (*models.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	task, ok := r.tasks[id]
	if !ok {
		return nil, ErrNotFound
	}
	task = cloneTask(task)
	return &task, nil
}

// List returns all tasks ordered by id
func (r *MemoryTaskRepository) List() ([]models.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.filterLocked(func(models.Task) bool { return true }), nil
}

// Update applies a patch to a task
func (r *MemoryTaskRepository) Update(id uint64, patch models.TaskPatch) (*models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[id]
	if !ok {
		return nil, ErrNotFound
	}
	patch.Apply(&task)
	r.tasks[id] = task
	task = cloneTask(task)
	return &task, nil
}

// Delete removes a task
func (r *MemoryTaskRepository) Delete(id uint64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tasks[id]; !ok {
		return false, nil
	}
	delete(r.tasks, id)
	return true, nil
}

// ListByAssignee returns tasks assigned to a user
func (r *MemoryTaskRepository) ListByAssignee(assigneeID uint64) ([]models.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.filterLocked(func(t models.Task) bool {
		return t.AssigneeID != nil && *t.AssigneeID == assigneeID
	}), nil
}

func (r *MemoryTaskRepository) filterLocked(keep func(models.Task) bool) []models.Task {
	tasks := make([]models.Task, 0, len(r.tasks))
	for _, task := range r.tasks {
		if keep(task) {
			tasks = append(tasks, cloneTask(task))
		}
	}
	slices.SortFunc(tasks, func(a, b models.Task) int { return cmp.Compare(a.ID, b.ID) })
	return tasks
}

// cloneTask copies a task including the values behind its pointer fields.
func cloneTask(task models.Task) models.Task {
	if task.Description != nil {
		v := *task.Description
		task.Description = &v
	}
	if task.AssigneeID != nil {
		v := *task.AssigneeID
		task.AssigneeID = &v
	}
	if task.DueDate != nil {
		v := *task.DueDate
		task.DueDate = &v
	}
	return task
}

package repository

import (
	"time"

	"github.com/yukikurage/taskdesk/internal/models"
	"gorm.io/gorm"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// NewGormRepositories returns user and task stores backed by db.
func NewGormRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Users: NewUserRepository(db),
		Tasks: NewTaskRepository(db),
	}
}

// Create creates a new task
func (r *GormTaskRepository) Create(task *models.Task) error {
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now()
	}
	return r.db.Create(task).Error
}

// FindByID finds a task by ID
func (r *GormTaskRepository) FindByID(id uint64) (*models.Task, error) {
	var task models.Task
	if err := r.db.First(&task, id).Error; err != nil {
		return nil, translate(err)
	}
	return &task, nil
}

// List returns all tasks ordered by id
func (r *GormTaskRepository) List() ([]models.Task, error) {
	tasks := []models.Task{}
	if err := r.db.Order("id").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// Update applies a patch to a task inside a transaction
func (r *GormTaskRepository) Update(id uint64, patch models.TaskPatch) (*models.Task, error) {
	if patch.IsEmpty() {
		return r.FindByID(id)
	}

	var task models.Task
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&task, id).Error; err != nil {
			return err
		}
		patch.Apply(&task)
		return tx.Save(&task).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	return &task, nil
}

// Delete removes a task
func (r *GormTaskRepository) Delete(id uint64) (bool, error) {
	result := r.db.Delete(&models.Task{}, id)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ListByAssignee returns tasks assigned to a user
func (r *GormTaskRepository) ListByAssignee(assigneeID uint64) ([]models.Task, error) {
	tasks := []models.Task{}
	if err := r.db.Where("assignee_id = ?", assigneeID).Order("id").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

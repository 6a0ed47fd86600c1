// Package seed loads the fixed sample data set into an empty store.
package seed

import (
	_ "embed"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/yukikurage/taskdesk/internal/models"
	"github.com/yukikurage/taskdesk/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var defaultData []byte

type userFixture struct {
	Username string          `yaml:"username"`
	Email    string          `yaml:"email"`
	Password string          `yaml:"password"`
	FullName string          `yaml:"fullName"`
	Role     models.UserRole `yaml:"role"`
	JoinedAt time.Time       `yaml:"joinedAt"`
}

type taskFixture struct {
	Title       string              `yaml:"title"`
	Description string              `yaml:"description"`
	Priority    models.TaskPriority `yaml:"priority"`
	Status      models.TaskStatus   `yaml:"status"`
	Assignee    string              `yaml:"assignee"`
	Progress    int                 `yaml:"progress"`
	CreatedAt   time.Time           `yaml:"createdAt"`
	DueDate     *time.Time          `yaml:"dueDate"`
}

// Fixtures is a parsed sample data set.
type Fixtures struct {
	Users []userFixture `yaml:"users"`
	Tasks []taskFixture `yaml:"tasks"`
}

// Default returns the embedded sample data set.
func Default() (*Fixtures, error) {
	return Parse(defaultData)
}

// Parse decodes a YAML data set.
func Parse(data []byte) (*Fixtures, error) {
	var f Fixtures
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse seed data: %w", err)
	}
	return &f, nil
}

// Load inserts the fixtures when the user store is empty. It returns false
// when the store already holds data.
func Load(repos repository.Repositories, f *Fixtures, log zerolog.Logger) (bool, error) {
	count, err := repos.Users.Count()
	if err != nil {
		return false, fmt.Errorf("failed to count users: %w", err)
	}
	if count > 0 {
		log.Info().Int64("users", count).Msg("Store already populated, skipping seed")
		return false, nil
	}

	ids := make(map[string]uint64, len(f.Users))
	for _, u := range f.Users {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
		if err != nil {
			return false, fmt.Errorf("failed to hash password for %s: %w", u.Username, err)
		}
		role := u.Role
		if role == "" {
			role = models.RoleEmployee
		}
		user := &models.User{
			Username:     u.Username,
			Email:        u.Email,
			PasswordHash: string(hash),
			FullName:     u.FullName,
			Role:         role,
			IsActive:     true,
			JoinedAt:     u.JoinedAt,
		}
		if err := repos.Users.Create(user); err != nil {
			return false, fmt.Errorf("failed to seed user %s: %w", u.Username, err)
		}
		ids[u.Username] = user.ID
	}

	for _, t := range f.Tasks {
		task := &models.Task{
			Title:     t.Title,
			Priority:  t.Priority,
			Status:    t.Status,
			Progress:  t.Progress,
			CreatedAt: t.CreatedAt,
			DueDate:   t.DueDate,
		}
		if t.Description != "" {
			description := t.Description
			task.Description = &description
		}
		if t.Assignee != "" {
			id, ok := ids[t.Assignee]
			if !ok {
				return false, fmt.Errorf("task %q references unknown user %q", t.Title, t.Assignee)
			}
			task.AssigneeID = &id
		}
		if err := repos.Tasks.Create(task); err != nil {
			return false, fmt.Errorf("failed to seed task %q: %w", t.Title, err)
		}
	}

	log.Info().Int("users", len(f.Users)).Int("tasks", len(f.Tasks)).Msg("Seeded sample data")
	return true, nil
}

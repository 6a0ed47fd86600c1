package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/taskdesk/internal/models"
	"github.com/yukikurage/taskdesk/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUsernameRequired     = errors.New("username is required")
	ErrEmailRequired        = errors.New("email is required")
	ErrPasswordRequired     = errors.New("password is required")
	ErrFullNameRequired     = errors.New("full name is required")
	ErrInvalidRole          = errors.New("role must be one of admin, manager, employee")
	ErrFailedToHashPassword = errors.New("failed to hash password")
)

// UserService manages employee accounts.
type UserService struct {
	userRepo repository.UserRepository
	taskRepo repository.TaskRepository
}

// NewUserService creates a new UserService
func NewUserService(userRepo repository.UserRepository, taskRepo repository.TaskRepository) *UserService {
	return &UserService{
		userRepo: userRepo,
		taskRepo: taskRepo,
	}
}

// CreateUserInput represents the information needed to create a user.
// Role defaults to employee and IsActive to true.
type CreateUserInput struct {
	Username string
	Email    string
	Password string
	FullName string
	Role     models.UserRole
	IsActive *bool
}

// CreateUser validates the input, hashes the password and stores the user.
// Usernames and emails are not checked for uniqueness.
func (s *UserService) CreateUser(input CreateUserInput) (*models.User, error) {
	username := strings.TrimSpace(input.Username)
	switch {
	case username == "":
		return nil, ErrUsernameRequired
	case strings.TrimSpace(input.Email) == "":
		return nil, ErrEmailRequired
	case input.Password == "":
		return nil, ErrPasswordRequired
	case strings.TrimSpace(input.FullName) == "":
		return nil, ErrFullNameRequired
	}

	role := input.Role
	if role == "" {
		role = models.RoleEmployee
	}
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrFailedToHashPassword
	}

	user := &models.User{
		Username:     username,
		Email:        strings.TrimSpace(input.Email),
		PasswordHash: string(hashedPassword),
		FullName:     strings.TrimSpace(input.FullName),
		Role:         role,
		IsActive:     isActive,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// ListUsers returns every user in creation order.
func (s *UserService) ListUsers() ([]models.User, error) {
	users, err := s.userRepo.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// GetUser returns a user by ID.
func (s *UserService) GetUser(id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// ListAssignedTasks returns an existing user together with the tasks
// assigned to them.
func (s *UserService) ListAssignedTasks(userID uint64) (*models.User, []models.Task, error) {
	user, err := s.GetUser(userID)
	if err != nil {
		return nil, nil, err
	}

	tasks, err := s.taskRepo.ListByAssignee(userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return user, tasks, nil
}

// UserDirectory resolves assignee ids to users. Unknown ids are simply
// missing from the map.
func (s *UserService) UserDirectory() (map[uint64]models.User, error) {
	users, err := s.userRepo.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	directory := make(map[uint64]models.User, len(users))
	for _, u := range users {
		directory[u.ID] = u
	}
	return directory, nil
}

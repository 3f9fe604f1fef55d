package service

import (
	"context"
	"strings"

	"weekly-planner/internal/model"
	"weekly-planner/internal/repository"
)

// UserInput is the body of a team-member registration.
type UserInput struct {
	Name  string `json:"name" validate:"required,max=100"`
	Email string `json:"email" validate:"required,email"`
}

// UserService manages team members.
type UserService struct {
	userRepo *repository.UserRepository
}

func NewUserService(userRepo *repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	return s.userRepo.ListAll(ctx)
}

// Create registers a member of the actor's company. A taken email yields model.ErrConflict.
func (s *UserService) Create(ctx context.Context, actor Actor, input UserInput) (*model.User, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if verr := validateInput(input); verr != nil {
		return nil, verr
	}

	user := &model.User{Name: input.Name, Email: input.Email, CompanyID: actor.CompanyID}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Delete removes a member together with the tasks they created and their assignments.
func (s *UserService) Delete(ctx context.Context, id string) error {
	return s.userRepo.Delete(ctx, id)
}

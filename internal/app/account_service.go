package app

import (
	"context"
	"errors"
	"fmt"

	"task_practice_bot/internal/domain/user"
)

// AccountService resolves chat participants to stored users.
type AccountService struct {
	userRepo user.Repository
}

func NewAccountService(ur user.Repository) *AccountService {
	return &AccountService{userRepo: ur}
}

// GetOrCreate returns the stored user, creating it with default balance and access on first contact.
func (s *AccountService) GetOrCreate(ctx context.Context, userID int64, username string) (*user.User, error) {
	u, err := s.userRepo.GetByUserID(ctx, userID)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, user.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	newUser := user.New(userID, username)
	err = s.userRepo.Create(ctx, newUser)
	if errors.Is(err, user.ErrAlreadyExists) {
		// Created concurrently by another update from the same user.
		return s.userRepo.GetByUserID(ctx, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return newUser, nil
}

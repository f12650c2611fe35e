package income

import (
	"context"
	"fmt"
	"time"

	"github.com/haushalt/haushalt/pkg/user"
)

type Service interface {
	GetAll(ctx context.Context, from, to time.Time) ([]Income, error)
	Create(ctx context.Context, income Income) (Income, error)
	Delete(ctx context.Context, id int) (bool, error)
}

type ServiceImpl struct {
	repo Repo
}

func NewService(repo Repo) *ServiceImpl {
	return &ServiceImpl{repo: repo}
}

func (s *ServiceImpl) GetAll(ctx context.Context, from, to time.Time) ([]Income, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.GetAll(ctx, userId, from, to)
}

func (s *ServiceImpl) Create(ctx context.Context, income Income) (Income, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Income{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if income.Amount.IsNegative() {
		return Income{}, fmt.Errorf("income amount must not be negative")
	}

	id, err := s.repo.Store(ctx, userId, income)
	if err != nil {
		return Income{}, err
	}
	income.ID = id
	return income, nil
}

func (s *ServiceImpl) Delete(ctx context.Context, id int) (bool, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.Delete(ctx, userId, id)
}

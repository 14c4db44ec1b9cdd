package unitofwork

import (
	"context"

	"student-risk-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	PredictionRepository() contract.PredictionRepository
}

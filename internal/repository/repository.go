package repository

import (
	"context"

	"fluidnet/internal/domain"
)

// SolveJournal records solve attempts
type SolveJournal interface {
	RecordSolve(ctx context.Context, rec *domain.SolveRecord) error
	GetSolve(ctx context.Context, id string) (*domain.SolveRecord, error)
	ListSolves(ctx context.Context, limit int) ([]domain.SolveRecord, error)
	LastSolve(ctx context.Context) (*domain.SolveRecord, error)
	Close() error
}

package repository

import (
	"context"

	"github.com/studyflow/backend/domain"
)

type TaskRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	ListByOwner(ctx context.Context, userID string) ([]domain.Task, error)
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	// SetActualTime records the observed completion time. The value is
	// immutable once written; a second attempt reports a conflict.
	SetActualTime(ctx context.Context, id string, hours float64) error
	// Complete flips the stored status pending -> completed. The transition
	// is one-way; completing twice reports a conflict.
	Complete(ctx context.Context, id string) error
	// ListLogged returns every logged outcome across all owners. The model is
	// global, so the training corpus is not owner-scoped.
	ListLogged(ctx context.Context) ([]domain.Outcome, error)
}

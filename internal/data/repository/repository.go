package repository

import (
	"errors"

	"civic-report/pkg/database"

	"go.uber.org/zap"
)

var (
	// ErrNotFound is returned by writes that matched no row
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique constraint is violated
	ErrDuplicate = errors.New("duplicate key")
)

type Repository struct {
	User   UserRepository
	Report ReportRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		User:   NewUserRepository(db, log),
		Report: NewReportRepository(db, log),
	}
}

package db

import (
	"context"

	"gorm.io/gorm"
)

// UnitOfWork is the database session owned by a single request.
type UnitOfWork struct {
	tx     *gorm.DB
	cancel context.CancelFunc
}

// Begin derives a request-scoped session from conn. Close must be called on
// every exit path; it cancels any statement still running on the session.
func Begin(ctx context.Context, conn *gorm.DB) *UnitOfWork {
	ctx, cancel := context.WithCancel(ctx)
	return &UnitOfWork{
		tx:     conn.Session(&gorm.Session{NewDB: true}).WithContext(ctx),
		cancel: cancel,
	}
}

func (u *UnitOfWork) DB() *gorm.DB {
	return u.tx
}

func (u *UnitOfWork) Close() {
	u.cancel()
}

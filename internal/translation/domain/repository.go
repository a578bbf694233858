package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, translation *Translation) error
	List(ctx context.Context, db *gorm.DB) ([]*Translation, error)
}

package repository

import (
	"context"

	"github.com/smallbiznis/anubad/internal/translation/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, translation *domain.Translation) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO translations (id, source_text, translated_text, created_at)
		 VALUES (?, ?, ?, ?)`,
		translation.ID,
		translation.SourceText,
		translation.TranslatedText,
		translation.CreatedAt,
	).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]*domain.Translation, error) {
	var translations []*domain.Translation
	err := db.WithContext(ctx).
		Model(&domain.Translation{}).
		Order("created_at desc, id desc").
		Find(&translations).Error
	if err != nil {
		return nil, err
	}
	return translations, nil
}

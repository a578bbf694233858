package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Translation is one stored source/output pair. Records are never updated.
type Translation struct {
	ID             snowflake.ID `gorm:"primaryKey;autoIncrement:false" json:"id"`
	SourceText     string       `gorm:"type:text;not null" json:"sourceText"`
	TranslatedText string       `gorm:"type:text;not null" json:"translatedText"`
	CreatedAt      time.Time    `gorm:"not null;index:idx_translations_created_at,sort:desc" json:"createdAt"`
}

func (Translation) TableName() string {
	return "translations"
}

package migration

import (
	"github.com/smallbiznis/anubad/internal/config"
	translationdomain "github.com/smallbiznis/anubad/internal/translation/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(Apply),
)

// Apply runs versioned SQL migrations on postgres; other dialects get gorm AutoMigrate.
func Apply(conn *gorm.DB, cfg config.Config, log *zap.Logger) error {
	if cfg.DBType != "postgres" {
		log.Info("auto-migrating schema", zap.String("type", cfg.DBType))
		return conn.AutoMigrate(&translationdomain.Translation{})
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	return RunMigrations(sqlDB)
}

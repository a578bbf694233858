package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/anubad/internal/cache"
	"github.com/smallbiznis/anubad/internal/clock"
	"github.com/smallbiznis/anubad/internal/config"
	"github.com/smallbiznis/anubad/internal/observability/logger"
	"github.com/smallbiznis/anubad/internal/observability/metrics"
	"github.com/smallbiznis/anubad/internal/providers/completion"
	"github.com/smallbiznis/anubad/internal/translation/domain"
	"github.com/smallbiznis/anubad/pkg/db"
	"github.com/smallbiznis/anubad/pkg/telemetry/correlation"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Repo     domain.Repository
	Provider completion.Provider
	Prompts  *config.PromptConfigHolder
	Cache    cache.HistoryCache `optional:"true"`
	Metrics  *metrics.Metrics   `optional:"true"`
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	repo     domain.Repository
	provider completion.Provider
	prompts  *config.PromptConfigHolder
	cache    cache.HistoryCache
	metrics  *metrics.Metrics
}

func New(p Params) domain.Service {
	historyCache := p.Cache
	if historyCache == nil {
		historyCache = cache.NoopHistoryCache{}
	}
	prompts := p.Prompts
	if prompts == nil {
		prompts = config.NewStaticPromptConfigHolder(config.DefaultPromptConfig())
	}
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("translation.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		repo:     p.Repo,
		provider: p.Provider,
		prompts:  prompts,
		cache:    historyCache,
		metrics:  p.Metrics,
	}
}

func (s *Service) Translate(ctx context.Context, req domain.TranslateRequest) (domain.TranslateResponse, error) {
	if strings.TrimSpace(req.Text) == "" {
		s.metrics.RecordTranslation(ctx, metrics.OutcomeRejected)
		return domain.TranslateResponse{}, domain.ErrInvalidText
	}

	ctx, _ = correlation.EnsureCorrelationID(ctx)
	log := logger.WithContext(ctx, s.log).With(zap.String("provider", s.provider.Name()))

	start := time.Now()
	output, err := s.provider.Complete(ctx, s.prompts.Get().SystemInstruction, req.Text)
	elapsed := time.Since(start)
	if err != nil {
		s.metrics.RecordProviderRequest(ctx, s.provider.Name(), metrics.OutcomeProviderFailure, elapsed)
		s.metrics.RecordTranslation(ctx, metrics.OutcomeProviderFailure)
		log.Error("translation provider call failed", zap.Duration("duration", elapsed), zap.Error(err))
		return domain.TranslateResponse{}, fmt.Errorf("complete translation: %w", err)
	}
	s.metrics.RecordProviderRequest(ctx, s.provider.Name(), metrics.OutcomeSuccess, elapsed)

	translated := strings.TrimSpace(output)
	if translated == "" {
		s.metrics.RecordTranslation(ctx, metrics.OutcomeEmptyResult)
		log.Error("translation provider returned empty output", zap.Duration("duration", elapsed))
		return domain.TranslateResponse{}, domain.ErrEmptyTranslation
	}

	record := domain.Translation{
		ID:             s.genID.Generate(),
		SourceText:     req.Text,
		TranslatedText: translated,
		CreatedAt:      s.clock.Now().UTC().Truncate(time.Microsecond),
	}
	if err := s.repo.Insert(ctx, s.db, &record); err != nil {
		reason := db.ErrorReason(err)
		s.metrics.RecordStorageError(ctx, "insert", reason)
		s.metrics.RecordTranslation(ctx, metrics.OutcomeStorageFailure)
		log.Error("failed to store translation", zap.String("reason", reason), zap.Error(err))
		return domain.TranslateResponse{}, fmt.Errorf("store translation: %w", err)
	}
	s.cache.Invalidate(ctx)
	s.metrics.RecordTranslation(ctx, metrics.OutcomeSuccess)

	log.Info("translation stored",
		zap.String("translation_id", record.ID.String()),
		zap.Duration("duration", elapsed),
	)
	return domain.TranslateResponse{TranslatedText: translated}, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Translation, error) {
	if items, ok := s.cache.Get(ctx); ok {
		return items, nil
	}

	generation, cacheable := s.cache.Generation(ctx)
	items, err := s.repo.List(ctx, s.db)
	if err != nil {
		reason := db.ErrorReason(err)
		s.metrics.RecordStorageError(ctx, "list", reason)
		logger.WithContext(ctx, s.log).Error("failed to list translations", zap.String("reason", reason), zap.Error(err))
		return nil, fmt.Errorf("list translations: %w", err)
	}

	translations := make([]domain.Translation, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		translations = append(translations, *item)
	}
	if cacheable {
		s.cache.Set(ctx, generation, translations)
	}

	return translations, nil
}

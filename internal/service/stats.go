package service

import (
	"context"

	"fitness-tracker/internal/domain"
)

// StatsService 仪表盘汇总，每次请求都由 SQL 现算，不缓存
type StatsService struct {
	store domain.Store
}

func NewStatsService(store domain.Store) *StatsService { return &StatsService{store: store} }

func (s *StatsService) Summary(ctx context.Context, c domain.Caller) (domain.Summary, error) {
	if c.UserID == "" {
		return domain.Summary{}, domain.Auth("unauthorized")
	}
	sum, err := s.store.Stats().Summary(ctx, c.UserID)
	if err != nil {
		return domain.Summary{}, internal("summary failed", err)
	}
	return sum, nil
}

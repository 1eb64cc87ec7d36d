package service

import (
	"context"
	"time"

	"github.com/Skotchmaster/online_cafe/internal/models"
	"github.com/Skotchmaster/online_cafe/internal/repo"
)

type AdminService struct {
	Repo *repo.GormRepo
	Now  func() time.Time
}

type DashboardStats struct {
	TotalOrders   int64        `json:"total_orders"`
	TodayRevenue  models.Money `json:"today_revenue"`
	TotalProducts int64        `json:"total_products"`
	TotalUsers    int64        `json:"total_users"`
}

func (s *AdminService) Users(ctx context.Context) ([]models.User, error) {
	users, err := s.Repo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}

func (s *AdminService) Stats(ctx context.Context) (*DashboardStats, error) {
	now := time.Now().UTC()
	if s.Now != nil {
		now = s.Now().UTC()
	}

	var (
		stats DashboardStats
		err   error
	)
	if stats.TotalOrders, err = s.Repo.CountOrders(ctx); err != nil {
		return nil, err
	}
	if stats.TotalProducts, err = s.Repo.CountProducts(ctx); err != nil {
		return nil, err
	}
	if stats.TotalUsers, err = s.Repo.CountUsers(ctx); err != nil {
		return nil, err
	}

	today, err := s.Repo.OrdersSince(ctx, startOfDay(now))
	if err != nil {
		return nil, err
	}
	stats.TodayRevenue = models.NewMoney(sumTotals(today))
	return &stats, nil
}

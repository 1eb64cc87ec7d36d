package service

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/online_cafe/internal/models"
	"github.com/Skotchmaster/online_cafe/internal/repo"
)

const (
	salesWindowDays = 30
	topProductLimit = 5
	dayLayout       = "2006-01-02"
	monthLayout     = "January 2006"
)

// ReportCategories are the only categories broken out in the revenue report.
var ReportCategories = []string{"coffee", "tea", "dessert"}

type ReportService struct {
	Repo *repo.GormRepo
	Now  func() time.Time
}

type DailySales struct {
	Date    string       `json:"date"`
	Revenue models.Money `json:"revenue"`
}

type ProductSales struct {
	ProductID uint         `json:"product_id"`
	Name      string       `json:"name"`
	UnitsSold uint         `json:"units_sold"`
	Revenue   models.Money `json:"revenue"`
}

type SalesReport struct {
	From        time.Time      `json:"from"`
	Daily       []DailySales   `json:"daily"`
	TopProducts []ProductSales `json:"top_products"`
	Orders      []models.Order `json:"orders"`
}

type MonthlyRevenue struct {
	Month   string       `json:"month"`
	Revenue models.Money `json:"revenue"`
}

type CategoryRevenue struct {
	Category string       `json:"category"`
	Revenue  models.Money `json:"revenue"`
}

type RevenueReport struct {
	TodayRevenue    models.Money      `json:"today_revenue"`
	WeekRevenue     models.Money      `json:"week_revenue"`
	MonthRevenue    models.Money      `json:"month_revenue"`
	YearRevenue     models.Money      `json:"year_revenue"`
	Monthly         []MonthlyRevenue  `json:"monthly"`
	CategoryRevenue []CategoryRevenue `json:"category_revenue"`
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func sumTotals(orders []models.Order) decimal.Decimal {
	total := decimal.Zero
	for _, o := range orders {
		total = total.Add(o.TotalPrice.Decimal)
	}
	return total
}

func (s *ReportService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// SalesReport covers the 31 days from midnight 30 days ago through today.
func (s *ReportService) SalesReport(ctx context.Context) (*SalesReport, error) {
	today := startOfDay(s.now())
	from := today.AddDate(0, 0, -salesWindowDays)

	orders, err := s.Repo.OrdersSince(ctx, from)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []models.Order{}
	}

	byDay := make(map[string]decimal.Decimal, salesWindowDays+1)
	for _, o := range orders {
		key := o.CreatedAt.UTC().Format(dayLayout)
		byDay[key] = byDay[key].Add(o.TotalPrice.Decimal)
	}

	daily := make([]DailySales, 0, salesWindowDays+1)
	for d := from; !d.After(today); d = d.AddDate(0, 0, 1) {
		key := d.Format(dayLayout)
		daily = append(daily, DailySales{Date: key, Revenue: models.NewMoney(byDay[key])})
	}

	return &SalesReport{
		From:        from,
		Daily:       daily,
		TopProducts: topProducts(orders, topProductLimit),
		Orders:      orders,
	}, nil
}

// topProducts ranks products by revenue; ties keep the order in which products were first seen.
func topProducts(orders []models.Order, limit int) []ProductSales {
	index := map[uint]int{}
	sales := []ProductSales{}
	for _, o := range orders {
		for _, it := range o.Items {
			i, ok := index[it.ProductID]
			if !ok {
				ps := ProductSales{ProductID: it.ProductID}
				if it.Product != nil {
					ps.Name = it.Product.Name
				}
				sales = append(sales, ps)
				i = len(sales) - 1
				index[it.ProductID] = i
			}
			sales[i].UnitsSold += it.Quantity
			sales[i].Revenue = models.NewMoney(sales[i].Revenue.Add(it.LineTotal()))
		}
	}

	sort.SliceStable(sales, func(a, b int) bool {
		return sales[a].Revenue.GreaterThan(sales[b].Revenue.Decimal)
	})
	if len(sales) > limit {
		sales = sales[:limit]
	}
	return sales
}

func (s *ReportService) RevenueReport(ctx context.Context) (*RevenueReport, error) {
	today := startOfDay(s.now())
	weekAgo := today.AddDate(0, 0, -7)
	monthAgo := today.AddDate(0, 0, -30)
	yearAgo := today.AddDate(0, 0, -365)
	firstMonth := startOfMonth(yearAgo)

	orders, err := s.Repo.OrdersSince(ctx, firstMonth)
	if err != nil {
		return nil, err
	}

	var todayRev, weekRev, monthRev, yearRev decimal.Decimal
	byMonth := map[string]decimal.Decimal{}
	for _, o := range orders {
		at := o.CreatedAt.UTC()
		total := o.TotalPrice.Decimal
		if !at.Before(today) {
			todayRev = todayRev.Add(total)
		}
		if !at.Before(weekAgo) {
			weekRev = weekRev.Add(total)
		}
		if !at.Before(monthAgo) {
			monthRev = monthRev.Add(total)
		}
		if !at.Before(yearAgo) {
			yearRev = yearRev.Add(total)
		}
		key := at.Format(monthLayout)
		byMonth[key] = byMonth[key].Add(total)
	}

	r := &RevenueReport{
		TodayRevenue: models.NewMoney(todayRev),
		WeekRevenue:  models.NewMoney(weekRev),
		MonthRevenue: models.NewMoney(monthRev),
		YearRevenue:  models.NewMoney(yearRev),
	}

	for m := firstMonth; !m.After(today); m = m.AddDate(0, 1, 0) {
		key := m.Format(monthLayout)
		r.Monthly = append(r.Monthly, MonthlyRevenue{Month: key, Revenue: models.NewMoney(byMonth[key])})
	}

	lines, err := s.Repo.CategoryLines(ctx, ReportCategories)
	if err != nil {
		return nil, err
	}
	byCategory := map[string]decimal.Decimal{}
	for _, l := range lines {
		byCategory[l.Category] = byCategory[l.Category].Add(l.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	for _, c := range ReportCategories {
		r.CategoryRevenue = append(r.CategoryRevenue, CategoryRevenue{Category: c, Revenue: models.NewMoney(byCategory[c])})
	}

	return r, nil
}

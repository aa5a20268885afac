package service

import (
	"context"
	"errors"
	"testing"

	"product-stats-service/internal/domain"
	"product-stats-service/internal/infrastructure/metrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var serviceMetrics = metrics.NewServiceMetrics()

type stubRepository struct {
	searchFn     func(ctx context.Context, search string, month int) ([]*domain.Product, error)
	statisticsFn func(ctx context.Context, month, year int) (*domain.Statistics, error)
	priceFn      func(ctx context.Context, month, year int) ([]domain.PriceRangeCount, error)
	categoryFn   func(ctx context.Context, month int) ([]domain.CategoryCount, error)
}

func (s *stubRepository) SearchProducts(ctx context.Context, search string, month int) ([]*domain.Product, error) {
	return s.searchFn(ctx, search, month)
}

func (s *stubRepository) GetStatistics(ctx context.Context, month, year int) (*domain.Statistics, error) {
	return s.statisticsFn(ctx, month, year)
}

func (s *stubRepository) GetPriceRanges(ctx context.Context, month, year int) ([]domain.PriceRangeCount, error) {
	return s.priceFn(ctx, month, year)
}

func (s *stubRepository) GetCategoryCounts(ctx context.Context, month int) ([]domain.CategoryCount, error) {
	return s.categoryFn(ctx, month)
}

func TestSearchProducts_MonthOutOfRange(t *testing.T) {
	svc := NewProductService(&stubRepository{}, serviceMetrics)

	for _, month := range []int{-1, 13, 99} {
		_, err := svc.SearchProducts(context.Background(), "", month)
		assert.ErrorIs(t, err, ErrInvalidMonth, "month %d", month)
	}
}

func TestSearchProducts_AbsentMonthSkipsFilter(t *testing.T) {
	// month == 0 is how the handler encodes an absent month parameter;
	// an explicit month=0 in the request is rejected before reaching here.
	var gotMonth int
	repo := &stubRepository{
		searchFn: func(ctx context.Context, search string, month int) ([]*domain.Product, error) {
			gotMonth = month
			return []*domain.Product{{ID: 1, Title: "Shirt"}}, nil
		},
	}
	svc := NewProductService(repo, serviceMetrics)

	products, err := svc.SearchProducts(context.Background(), "shirt", 0)
	require.NoError(t, err)
	assert.Len(t, products, 1)
	assert.Equal(t, 0, gotMonth)
}

func TestSearchProducts_EmptyResultIsNotFound(t *testing.T) {
	repo := &stubRepository{
		searchFn: func(ctx context.Context, search string, month int) ([]*domain.Product, error) {
			return nil, nil
		},
	}
	svc := NewProductService(repo, serviceMetrics)

	_, err := svc.SearchProducts(context.Background(), "nothing", 4)
	assert.ErrorIs(t, err, ErrNoProducts)
}

func TestGetStatistics_ValidatesMonth(t *testing.T) {
	svc := NewProductService(&stubRepository{}, serviceMetrics)

	_, err := svc.GetStatistics(context.Background(), 0, 2021)
	assert.ErrorIs(t, err, ErrInvalidMonth)

	_, err = svc.GetStatistics(context.Background(), 13, 2021)
	assert.ErrorIs(t, err, ErrInvalidMonth)
}

func TestGetStatistics_PassesThrough(t *testing.T) {
	want := &domain.Statistics{TotalSaleAmount: 99.5, SoldCount: 2, UnsoldCount: 1}
	repo := &stubRepository{
		statisticsFn: func(ctx context.Context, month, year int) (*domain.Statistics, error) {
			return want, nil
		},
	}
	svc := NewProductService(repo, serviceMetrics)

	got, err := svc.GetStatistics(context.Background(), 7, 2022)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestGetPriceRanges_ValidatesYearBounds(t *testing.T) {
	svc := NewProductService(&stubRepository{}, serviceMetrics)

	_, err := svc.GetPriceRanges(context.Background(), 3, 1899)
	assert.ErrorIs(t, err, ErrInvalidYear)

	_, err = svc.GetPriceRanges(context.Background(), 3, 99999)
	assert.ErrorIs(t, err, ErrInvalidYear)

	_, err = svc.GetPriceRanges(context.Background(), 0, 2021)
	assert.ErrorIs(t, err, ErrInvalidMonth)
}

func TestGetCategoryCounts_ValidatesMonth(t *testing.T) {
	svc := NewProductService(&stubRepository{}, serviceMetrics)

	_, err := svc.GetCategoryCounts(context.Background(), 13)
	assert.ErrorIs(t, err, ErrInvalidMonth)
}

func TestGetCombinedReport_MergesAllThree(t *testing.T) {
	repo := &stubRepository{
		statisticsFn: func(ctx context.Context, month, year int) (*domain.Statistics, error) {
			return &domain.Statistics{TotalSaleAmount: 10, SoldCount: 1}, nil
		},
		priceFn: func(ctx context.Context, month, year int) ([]domain.PriceRangeCount, error) {
			return []domain.PriceRangeCount{{Range: "0-100", Count: 1}}, nil
		},
		categoryFn: func(ctx context.Context, month int) ([]domain.CategoryCount, error) {
			return []domain.CategoryCount{{Category: "electronics", Count: 1}}, nil
		},
	}
	svc := NewProductService(repo, serviceMetrics)

	report, err := svc.GetCombinedReport(context.Background(), 3, 2021)
	require.NoError(t, err)
	assert.Equal(t, 10.0, report.Statistics.TotalSaleAmount)
	assert.Len(t, report.PriceRanges, 1)
	assert.Len(t, report.Categories, 1)
}

func TestGetCombinedReport_PropagatesRepositoryError(t *testing.T) {
	storeErr := errors.New("connection refused")
	repo := &stubRepository{
		statisticsFn: func(ctx context.Context, month, year int) (*domain.Statistics, error) {
			return nil, storeErr
		},
	}
	svc := NewProductService(repo, serviceMetrics)

	_, err := svc.GetCombinedReport(context.Background(), 3, 2021)
	assert.ErrorIs(t, err, storeErr)
}

package service

import (
	"context"
	"errors"
	"time"

	"product-stats-service/internal/domain"
	"product-stats-service/internal/infrastructure/metrics"
	"product-stats-service/internal/repository"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var (
	ErrInvalidMonth = errors.New("month must be between 1 and 12")
	ErrInvalidYear  = errors.New("year must be between 1900 and the current year")
	ErrNoProducts   = errors.New("no products found")
)

type ProductService interface {
	SearchProducts(ctx context.Context, search string, month int) ([]*domain.Product, error)
	GetStatistics(ctx context.Context, month int, year int) (*domain.Statistics, error)
	GetPriceRanges(ctx context.Context, month int, year int) ([]domain.PriceRangeCount, error)
	GetCategoryCounts(ctx context.Context, month int) ([]domain.CategoryCount, error)
	GetCombinedReport(ctx context.Context, month int, year int) (*domain.CombinedReport, error)
}

type productService struct {
	repository repository.ProductRepository
	metrics    *metrics.ServiceMetrics
	tracer     trace.Tracer
}

func NewProductService(repository repository.ProductRepository, metrics *metrics.ServiceMetrics) ProductService {
	tracer := otel.Tracer("product-stats-service/service")
	return &productService{
		repository: repository,
		metrics:    metrics,
		tracer:     tracer,
	}
}

// SearchProducts treats month == 0 as "no month filter".
func (s *productService) SearchProducts(ctx context.Context, search string, month int) ([]*domain.Product, error) {
	if month < 0 || month > 12 {
		return nil, ErrInvalidMonth
	}

	ctx, span := s.tracer.Start(ctx, "SearchProducts")
	defer span.End()

	startTime := time.Now()
	status := "success"

	defer func() {
		duration := time.Since(startTime).Seconds()
		s.metrics.MethodCount.WithLabelValues("SearchProducts", status).Inc()
		s.metrics.MethodDuration.WithLabelValues("SearchProducts", status).Observe(duration)
	}()

	span.SetAttributes(
		attribute.String("search", search),
		attribute.Int("month", month),
	)

	products, err := s.repository.SearchProducts(ctx, search, month)
	if err != nil {
		status = "error"
		span.RecordError(err)
		return nil, err
	}

	if len(products) == 0 {
		status = "not_found"
		return nil, ErrNoProducts
	}

	span.SetAttributes(attribute.Int("products.count", len(products)))
	return products, nil
}

func (s *productService) GetStatistics(ctx context.Context, month int, year int) (*domain.Statistics, error) {
	if month < 1 || month > 12 {
		return nil, ErrInvalidMonth
	}

	ctx, span := s.tracer.Start(ctx, "GetStatistics")
	defer span.End()

	startTime := time.Now()
	status := "success"

	defer func() {
		duration := time.Since(startTime).Seconds()
		s.metrics.MethodCount.WithLabelValues("GetStatistics", status).Inc()
		s.metrics.MethodDuration.WithLabelValues("GetStatistics", status).Observe(duration)
	}()

	span.SetAttributes(
		attribute.Int("month", month),
		attribute.Int("year", year),
	)

	stats, err := s.repository.GetStatistics(ctx, month, year)
	if err != nil {
		status = "error"
		span.RecordError(err)
		return nil, err
	}

	return stats, nil
}

func (s *productService) GetPriceRanges(ctx context.Context, month int, year int) ([]domain.PriceRangeCount, error) {
	if month < 1 || month > 12 {
		return nil, ErrInvalidMonth
	}
	if year < 1900 || year > time.Now().Year() {
		return nil, ErrInvalidYear
	}

	ctx, span := s.tracer.Start(ctx, "GetPriceRanges")
	defer span.End()

	startTime := time.Now()
	status := "success"

	defer func() {
		duration := time.Since(startTime).Seconds()
		s.metrics.MethodCount.WithLabelValues("GetPriceRanges", status).Inc()
		s.metrics.MethodDuration.WithLabelValues("GetPriceRanges", status).Observe(duration)
	}()

	span.SetAttributes(
		attribute.Int("month", month),
		attribute.Int("year", year),
	)

	ranges, err := s.repository.GetPriceRanges(ctx, month, year)
	if err != nil {
		status = "error"
		span.RecordError(err)
		return nil, err
	}

	return ranges, nil
}

func (s *productService) GetCategoryCounts(ctx context.Context, month int) ([]domain.CategoryCount, error) {
	if month < 1 || month > 12 {
		return nil, ErrInvalidMonth
	}

	ctx, span := s.tracer.Start(ctx, "GetCategoryCounts")
	defer span.End()

	startTime := time.Now()
	status := "success"

	defer func() {
		duration := time.Since(startTime).Seconds()
		s.metrics.MethodCount.WithLabelValues("GetCategoryCounts", status).Inc()
		s.metrics.MethodDuration.WithLabelValues("GetCategoryCounts", status).Observe(duration)
	}()

	span.SetAttributes(attribute.Int("month", month))

	categories, err := s.repository.GetCategoryCounts(ctx, month)
	if err != nil {
		status = "error"
		span.RecordError(err)
		return nil, err
	}

	return categories, nil
}

// GetCombinedReport merges the three aggregations into one response. The
// repository caches each piece individually, so the merge adds no extra
// query shapes.
func (s *productService) GetCombinedReport(ctx context.Context, month int, year int) (*domain.CombinedReport, error) {
	if month < 1 || month > 12 {
		return nil, ErrInvalidMonth
	}
	if year < 1900 || year > time.Now().Year() {
		return nil, ErrInvalidYear
	}

	ctx, span := s.tracer.Start(ctx, "GetCombinedReport")
	defer span.End()

	startTime := time.Now()
	status := "success"

	defer func() {
		duration := time.Since(startTime).Seconds()
		s.metrics.MethodCount.WithLabelValues("GetCombinedReport", status).Inc()
		s.metrics.MethodDuration.WithLabelValues("GetCombinedReport", status).Observe(duration)
	}()

	span.SetAttributes(
		attribute.Int("month", month),
		attribute.Int("year", year),
	)

	stats, err := s.repository.GetStatistics(ctx, month, year)
	if err != nil {
		status = "error"
		span.RecordError(err)
		return nil, err
	}

	ranges, err := s.repository.GetPriceRanges(ctx, month, year)
	if err != nil {
		status = "error"
		span.RecordError(err)
		return nil, err
	}

	categories, err := s.repository.GetCategoryCounts(ctx, month)
	if err != nil {
		status = "error"
		span.RecordError(err)
		return nil, err
	}

	return &domain.CombinedReport{
		Statistics:  stats,
		PriceRanges: ranges,
		Categories:  categories,
	}, nil
}

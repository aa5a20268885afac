package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"product-stats-service/internal/domain"
	"product-stats-service/internal/infrastructure/cache"
	"product-stats-service/internal/infrastructure/metrics"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// saleYear is the year the search endpoint's month filter applies to;
// the dataset holds a single year of sales.
const saleYear = 2022

// date_of_sale is stored as an ISO-8601 string, so every query
// normalizes it to a date before extracting month or year.
const (
	saleMonthExpr = "MONTH(STR_TO_DATE(SUBSTRING(date_of_sale, 1, 10), '%Y-%m-%d'))"
	saleYearExpr  = "YEAR(STR_TO_DATE(SUBSTRING(date_of_sale, 1, 10), '%Y-%m-%d'))"
)

// priceBandLabels fixes the order and labels of the ten histogram bands.
// Bands are lower-exclusive and upper-inclusive, except the first, which
// includes zero, and the last, which is open-ended.
var priceBandLabels = []string{
	"0-100", "101-200", "201-300", "301-400", "401-500",
	"501-600", "601-700", "701-800", "801-900", "901-above",
}

// saleCategories is the fixed label set the category report covers.
var saleCategories = []string{
	"men's clothing",
	"women's clothing",
	"electronics",
	"jewelery",
}

type ProductRepository interface {
	SearchProducts(ctx context.Context, search string, month int) ([]*domain.Product, error)
	GetStatistics(ctx context.Context, month int, year int) (*domain.Statistics, error)
	GetPriceRanges(ctx context.Context, month int, year int) ([]domain.PriceRangeCount, error)
	GetCategoryCounts(ctx context.Context, month int) ([]domain.CategoryCount, error)
}

type mysqlProductRepository struct {
	db        *sql.DB
	cache     cache.Cache
	metrics   *metrics.RepositoryMetrics
	tracer    trace.Tracer
	reportTTL time.Duration
}

func NewMysqlProductRepository(db *sql.DB, cache cache.Cache, metrics *metrics.RepositoryMetrics, reportTTL time.Duration) ProductRepository {
	tracer := otel.Tracer("product-stats-service/repository")
	return &mysqlProductRepository{
		db:        db,
		cache:     cache,
		metrics:   metrics,
		tracer:    tracer,
		reportTTL: reportTTL,
	}
}

func (r *mysqlProductRepository) SearchProducts(ctx context.Context, search string, month int) ([]*domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "Repository SearchProducts")
	defer span.End()

	startTime := time.Now()
	status := "success"

	defer func() {
		duration := time.Since(startTime).Seconds()
		r.metrics.QueryCount.WithLabelValues("SearchProducts", status).Inc()
		r.metrics.QueryDuration.WithLabelValues("SearchProducts", status).Observe(duration)
	}()

	span.SetAttributes(
		attribute.String("search", search),
		attribute.Int("month", month),
	)

	var conditions []string
	var args []interface{}

	if search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		textMatch := "(LOWER(title) LIKE ? OR LOWER(description) LIKE ? OR LOWER(category) LIKE ?"
		args = append(args, pattern, pattern, pattern)

		if price, err := strconv.ParseFloat(search, 64); err == nil {
			textMatch += " OR price <= ?"
			args = append(args, price)
		}
		textMatch += ")"
		conditions = append(conditions, textMatch)
	}

	if month > 0 {
		conditions = append(conditions, fmt.Sprintf("%s = ? AND %s = ?", saleMonthExpr, saleYearExpr))
		args = append(args, month, saleYear)
	}

	query := "SELECT id, title, description, category, price, sold, date_of_sale FROM products"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		status = "error"
		span.RecordError(err)
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	defer rows.Close()

	var products []*domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Title, &p.Description, &p.Category, &p.Price, &p.Sold, &p.DateOfSale); err != nil {
			status = "error"
			span.RecordError(err)
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, &p)
	}

	if err := rows.Err(); err != nil {
		status = "error"
		span.RecordError(err)
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return products, nil
}

func (r *mysqlProductRepository) GetStatistics(ctx context.Context, month int, year int) (*domain.Statistics, error) {
	ctx, span := r.tracer.Start(ctx, "Repository GetStatistics")
	defer span.End()

	startTime := time.Now()
	status := "success"

	defer func() {
		duration := time.Since(startTime).Seconds()
		r.metrics.QueryCount.WithLabelValues("GetStatistics", status).Inc()
		r.metrics.QueryDuration.WithLabelValues("GetStatistics", status).Observe(duration)
	}()

	span.SetAttributes(
		attribute.Int("month", month),
		attribute.Int("year", year),
	)

	cacheKey := cache.StatisticsKey(month, year)

	cacheSpanCtx, cacheSpan := r.tracer.Start(ctx, "Redis Get")
	cached, err := r.cache.Get(cacheSpanCtx, cacheKey)
	cacheSpan.End()

	if err == nil {
		var stats domain.Statistics
		if err := json.Unmarshal([]byte(cached), &stats); err == nil {
			return &stats, nil
		}
	}

	query := fmt.Sprintf(`
		SELECT
			COALESCE(SUM(CASE WHEN sold THEN price ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN sold THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN sold THEN 0 ELSE 1 END), 0)
		FROM products
		WHERE %s = ? AND %s = ?`, saleMonthExpr, saleYearExpr)

	stats := &domain.Statistics{}

	err = r.db.QueryRowContext(ctx, query, month, year).Scan(
		&stats.TotalSaleAmount,
		&stats.SoldCount,
		&stats.UnsoldCount,
	)
	if err != nil {
		status = "error"
		span.RecordError(err)
		return nil, fmt.Errorf("failed to aggregate statistics: %w", err)
	}

	if statsJSON, err := json.Marshal(stats); err == nil {
		cacheSpanCtx, cacheSpan := r.tracer.Start(ctx, "Redis Set")
		r.cache.Set(cacheSpanCtx, cacheKey, string(statsJSON), r.reportTTL)
		cacheSpan.End()
	}

	return stats, nil
}

func (r *mysqlProductRepository) GetPriceRanges(ctx context.Context, month int, year int) ([]domain.PriceRangeCount, error) {
	ctx, span := r.tracer.Start(ctx, "Repository GetPriceRanges")
	defer span.End()

	startTime := time.Now()
	status := "success"

	defer func() {
		duration := time.Since(startTime).Seconds()
		r.metrics.QueryCount.WithLabelValues("GetPriceRanges", status).Inc()
		r.metrics.QueryDuration.WithLabelValues("GetPriceRanges", status).Observe(duration)
	}()

	span.SetAttributes(
		attribute.Int("month", month),
		attribute.Int("year", year),
	)

	cacheKey := cache.PriceRangesKey(month, year)

	cacheSpanCtx, cacheSpan := r.tracer.Start(ctx, "Redis Get")
	cached, err := r.cache.Get(cacheSpanCtx, cacheKey)
	cacheSpan.End()

	if err == nil {
		var ranges []domain.PriceRangeCount
		if err := json.Unmarshal([]byte(cached), &ranges); err == nil {
			return ranges, nil
		}
	}

	query := fmt.Sprintf(`
		SELECT
			CASE
				WHEN price <= 100 THEN '0-100'
				WHEN price <= 200 THEN '101-200'
				WHEN price <= 300 THEN '201-300'
				WHEN price <= 400 THEN '301-400'
				WHEN price <= 500 THEN '401-500'
				WHEN price <= 600 THEN '501-600'
				WHEN price <= 700 THEN '601-700'
				WHEN price <= 800 THEN '701-800'
				WHEN price <= 900 THEN '801-900'
				ELSE '901-above'
			END AS price_band,
			COUNT(*)
		FROM products
		WHERE %s = ? AND %s = ?
		GROUP BY price_band`, saleMonthExpr, saleYearExpr)

	rows, err := r.db.QueryContext(ctx, query, month, year)
	if err != nil {
		status = "error"
		span.RecordError(err)
		return nil, fmt.Errorf("failed to aggregate price ranges: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int, len(priceBandLabels))
	for rows.Next() {
		var band string
		var count int
		if err := rows.Scan(&band, &count); err != nil {
			status = "error"
			span.RecordError(err)
			return nil, fmt.Errorf("failed to scan price band: %w", err)
		}
		counts[band] = count
	}

	if err := rows.Err(); err != nil {
		status = "error"
		span.RecordError(err)
		return nil, fmt.Errorf("rows error: %w", err)
	}

	ranges := make([]domain.PriceRangeCount, 0, len(priceBandLabels))
	for _, label := range priceBandLabels {
		ranges = append(ranges, domain.PriceRangeCount{Range: label, Count: counts[label]})
	}

	if rangesJSON, err := json.Marshal(ranges); err == nil {
		cacheSpanCtx, cacheSpan := r.tracer.Start(ctx, "Redis Set")
		r.cache.Set(cacheSpanCtx, cacheKey, string(rangesJSON), r.reportTTL)
		cacheSpan.End()
	}

	return ranges, nil
}

func (r *mysqlProductRepository) GetCategoryCounts(ctx context.Context, month int) ([]domain.CategoryCount, error) {
	ctx, span := r.tracer.Start(ctx, "Repository GetCategoryCounts")
	defer span.End()

	startTime := time.Now()
	status := "success"

	defer func() {
		duration := time.Since(startTime).Seconds()
		r.metrics.QueryCount.WithLabelValues("GetCategoryCounts", status).Inc()
		r.metrics.QueryDuration.WithLabelValues("GetCategoryCounts", status).Observe(duration)
	}()

	span.SetAttributes(attribute.Int("month", month))

	cacheKey := cache.CategoriesKey(month)

	cacheSpanCtx, cacheSpan := r.tracer.Start(ctx, "Redis Get")
	cached, err := r.cache.Get(cacheSpanCtx, cacheKey)
	cacheSpan.End()

	if err == nil {
		var categories []domain.CategoryCount
		if err := json.Unmarshal([]byte(cached), &categories); err == nil {
			return categories, nil
		}
	}

	query := fmt.Sprintf(`
		SELECT category, COUNT(*)
		FROM products
		WHERE %s = ?
		GROUP BY category`, saleMonthExpr)

	rows, err := r.db.QueryContext(ctx, query, month)
	if err != nil {
		status = "error"
		span.RecordError(err)
		return nil, fmt.Errorf("failed to aggregate categories: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int, len(saleCategories))
	for rows.Next() {
		var category string
		var count int
		if err := rows.Scan(&category, &count); err != nil {
			status = "error"
			span.RecordError(err)
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		counts[category] = count
	}

	if err := rows.Err(); err != nil {
		status = "error"
		span.RecordError(err)
		return nil, fmt.Errorf("rows error: %w", err)
	}

	// Only the four known labels are reported; unknown categories in the
	// data are dropped, missing ones show up as zero.
	categories := make([]domain.CategoryCount, 0, len(saleCategories))
	for _, label := range saleCategories {
		categories = append(categories, domain.CategoryCount{Category: label, Count: counts[label]})
	}

	if categoriesJSON, err := json.Marshal(categories); err == nil {
		cacheSpanCtx, cacheSpan := r.tracer.Start(ctx, "Redis Set")
		r.cache.Set(cacheSpanCtx, cacheKey, string(categoriesJSON), r.reportTTL)
		cacheSpan.End()
	}

	return categories, nil
}

package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"product-stats-service/internal/infrastructure/metrics"
	"product-stats-service/internal/service"
	"product-stats-service/pkg/logger"
	"product-stats-service/pkg/utils"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type ProductHandler struct {
	service service.ProductService
	logger  *logger.Loggers
	metrics *metrics.HandlerMetrics
	tracer  trace.Tracer
}

func NewProductHandler(service service.ProductService, logger *logger.Loggers, metrics *metrics.HandlerMetrics) *ProductHandler {
	tracer := otel.Tracer("product-stats-service/handler")
	return &ProductHandler{
		service: service,
		logger:  logger,
		metrics: metrics,
		tracer:  tracer,
	}
}

func (h *ProductHandler) GetData(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "GetData")
	defer span.End()

	startTime := time.Now()
	status := "success"

	defer func() {
		duration := time.Since(startTime).Seconds()
		h.metrics.RequestCount.WithLabelValues("GET", "/product/getData", status).Inc()
		h.metrics.RequestDuration.WithLabelValues("GET", "/product/getData", status).Observe(duration)
	}()

	query := r.URL.Query()
	search := query.Get("search")

	// month is optional, but once supplied it must be a real month;
	// 0 only ever means "absent" past this point.
	month := 0
	if monthParam := query.Get("month"); monthParam != "" {
		var err error
		month, err = strconv.Atoi(monthParam)
		if err != nil {
			status = "error"
			utils.RespondWithErrorJSON(w, http.StatusBadRequest, "invalid month parameter")
			return
		}
		if month < 1 || month > 12 {
			status = "error"
			utils.RespondWithErrorJSON(w, http.StatusBadRequest, service.ErrInvalidMonth.Error())
			return
		}
	}

	span.SetAttributes(
		attribute.String("search", search),
		attribute.Int("month", month),
	)

	products, err := h.service.SearchProducts(ctx, search, month)
	if err != nil {
		if errors.Is(err, service.ErrInvalidMonth) {
			status = "error"
			utils.RespondWithErrorJSON(w, http.StatusBadRequest, err.Error())
		} else if errors.Is(err, service.ErrNoProducts) {
			status = "not_found"
			utils.RespondWithErrorJSON(w, http.StatusNotFound, err.Error())
		} else {
			status = "error"
			h.logger.ErrorLogger.Error("failed to search products", utils.Err(err))
			utils.RespondWithErrorJSON(w, http.StatusInternalServerError, err.Error())
		}
		span.RecordError(err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, products)
}

func (h *ProductHandler) GetStatistics(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "GetStatistics")
	defer span.End()

	startTime := time.Now()
	status := "success"

	defer func() {
		duration := time.Since(startTime).Seconds()
		h.metrics.RequestCount.WithLabelValues("GET", "/product/stats", status).Inc()
		h.metrics.RequestDuration.WithLabelValues("GET", "/product/stats", status).Observe(duration)
	}()

	month, year, ok := h.parseMonthYear(w, r, &status)
	if !ok {
		return
	}

	span.SetAttributes(
		attribute.Int("month", month),
		attribute.Int("year", year),
	)

	stats, err := h.service.GetStatistics(ctx, month, year)
	if err != nil {
		h.respondServiceError(w, span, err, &status, "failed to aggregate statistics")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, stats)
}

func (h *ProductHandler) GetPriceRanges(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "GetPriceRanges")
	defer span.End()

	startTime := time.Now()
	status := "success"

	defer func() {
		duration := time.Since(startTime).Seconds()
		h.metrics.RequestCount.WithLabelValues("GET", "/product/price", status).Inc()
		h.metrics.RequestDuration.WithLabelValues("GET", "/product/price", status).Observe(duration)
	}()

	month, year, ok := h.parseMonthYear(w, r, &status)
	if !ok {
		return
	}

	span.SetAttributes(
		attribute.Int("month", month),
		attribute.Int("year", year),
	)

	ranges, err := h.service.GetPriceRanges(ctx, month, year)
	if err != nil {
		h.respondServiceError(w, span, err, &status, "failed to aggregate price ranges")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, ranges)
}

func (h *ProductHandler) GetCategoryCounts(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "GetCategoryCounts")
	defer span.End()

	startTime := time.Now()
	status := "success"

	defer func() {
		duration := time.Since(startTime).Seconds()
		h.metrics.RequestCount.WithLabelValues("GET", "/product/category", status).Inc()
		h.metrics.RequestDuration.WithLabelValues("GET", "/product/category", status).Observe(duration)
	}()

	monthParam := r.URL.Query().Get("month")
	if monthParam == "" {
		status = "error"
		utils.RespondWithErrorJSON(w, http.StatusBadRequest, "missing month parameter")
		return
	}

	month, err := strconv.Atoi(monthParam)
	if err != nil {
		status = "error"
		utils.RespondWithErrorJSON(w, http.StatusBadRequest, "invalid month parameter")
		return
	}

	span.SetAttributes(attribute.Int("month", month))

	categories, err := h.service.GetCategoryCounts(ctx, month)
	if err != nil {
		h.respondServiceError(w, span, err, &status, "failed to aggregate categories")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, categories)
}

func (h *ProductHandler) GetCombinedReport(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "GetCombinedReport")
	defer span.End()

	startTime := time.Now()
	status := "success"

	defer func() {
		duration := time.Since(startTime).Seconds()
		h.metrics.RequestCount.WithLabelValues("GET", "/product/combined", status).Inc()
		h.metrics.RequestDuration.WithLabelValues("GET", "/product/combined", status).Observe(duration)
	}()

	month, year, ok := h.parseMonthYear(w, r, &status)
	if !ok {
		return
	}

	span.SetAttributes(
		attribute.Int("month", month),
		attribute.Int("year", year),
	)

	report, err := h.service.GetCombinedReport(ctx, month, year)
	if err != nil {
		h.respondServiceError(w, span, err, &status, "failed to build combined report")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, report)
}

func (h *ProductHandler) parseMonthYear(w http.ResponseWriter, r *http.Request, status *string) (int, int, bool) {
	query := r.URL.Query()

	monthParam := query.Get("month")
	if monthParam == "" {
		*status = "error"
		utils.RespondWithErrorJSON(w, http.StatusBadRequest, "missing month parameter")
		return 0, 0, false
	}

	month, err := strconv.Atoi(monthParam)
	if err != nil {
		*status = "error"
		utils.RespondWithErrorJSON(w, http.StatusBadRequest, "invalid month parameter")
		return 0, 0, false
	}

	yearParam := query.Get("year")
	if yearParam == "" {
		*status = "error"
		utils.RespondWithErrorJSON(w, http.StatusBadRequest, "missing year parameter")
		return 0, 0, false
	}

	year, err := strconv.Atoi(yearParam)
	if err != nil {
		*status = "error"
		utils.RespondWithErrorJSON(w, http.StatusBadRequest, "invalid year parameter")
		return 0, 0, false
	}

	return month, year, true
}

func (h *ProductHandler) respondServiceError(w http.ResponseWriter, span trace.Span, err error, status *string, logMsg string) {
	if errors.Is(err, service.ErrInvalidMonth) || errors.Is(err, service.ErrInvalidYear) {
		*status = "error"
		utils.RespondWithErrorJSON(w, http.StatusBadRequest, err.Error())
	} else {
		*status = "error"
		h.logger.ErrorLogger.Error(logMsg, utils.Err(err))
		utils.RespondWithErrorJSON(w, http.StatusInternalServerError, err.Error())
	}
	span.RecordError(err)
}

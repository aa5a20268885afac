package router

import (
	"product-stats-service/internal/delivery/handler"
	"product-stats-service/internal/infrastructure/metrics"
	"product-stats-service/internal/service"
	"product-stats-service/pkg/logger"

	"github.com/go-chi/chi/v5"
)

func SetupProductRoutes(productRouter *chi.Mux, productService service.ProductService, loggers *logger.Loggers, metrics *metrics.HandlerMetrics) {
	productHandler := handler.NewProductHandler(productService, loggers, metrics)

	productRouter.Route("/product", func(r chi.Router) {
		r.Get("/getData", productHandler.GetData)
		r.Get("/stats", productHandler.GetStatistics)
		r.Get("/price", productHandler.GetPriceRanges)
		r.Get("/category", productHandler.GetCategoryCounts)
		r.Get("/combined", productHandler.GetCombinedReport)
	})
}

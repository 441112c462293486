package routers

import (
	"fmt"
	"mobileforms-service/internal/app/config"
	"mobileforms-service/internal/app/delivery/http/controllers"
	"mobileforms-service/internal/app/delivery/http/middlewares"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupRoutes(
	router *chi.Mux,
	internalConfig *config.InternalConfig,
	middlewares *middlewares.Middlewares,
	registry *prometheus.Registry,
	formErrorController *controllers.FormErrorController,
	postProcessController *controllers.PostProcessController,
) {

	corsOptions := cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID", "X-Operator-ID", "X-API-Key"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}
	router.Use(cors.Handler(corsOptions))

	if internalConfig.App.MaxRequests > 0 {
		router.Use(httprate.LimitByIP(internalConfig.App.MaxRequests, time.Second))
	}

	router.Use(middlewares.RequestIDMiddleware)
	router.Use(middlewares.Logging)
	router.Use(middlewares.ErrorHandler)

	router.Method("GET", "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))

	endpointPrefix := fmt.Sprintf("/%s", internalConfig.App.EndpointPrefix)
	versionPrefix := fmt.Sprintf("/%s", internalConfig.App.Version)

	router.Route(endpointPrefix, func(r chi.Router) {
		r.Route(versionPrefix, func(r chi.Router) {
			r.Use(middlewares.RequireOperatorAPIKey)

			r.Route("/form-errors", func(r chi.Router) {
				attachFormErrorRoutes(r, formErrorController)
			})

			r.Route("/post-process", func(r chi.Router) {
				attachPostProcessRoutes(r, postProcessController)
			})
		})
	})
}

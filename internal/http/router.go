package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"
)

// Mount points for the products resource. Both serve the same routes.
var productBases = []string{"/products", "/api/products"}

// NewRouter registers HTTP routes and returns the handler with middleware.
func NewRouter(app *App) http.Handler {
	r := mux.NewRouter()
	for _, base := range productBases {
		r.HandleFunc(base, app.listProductsHandler).Methods(http.MethodGet)
		r.HandleFunc(base, app.createProductHandler).Methods(http.MethodPost)
		r.HandleFunc(base+"/{id}", app.getProductHandler).Methods(http.MethodGet)
		r.HandleFunc(base+"/{id}", app.updateProductHandler).Methods(http.MethodPut)
		r.HandleFunc(base+"/{id}", app.deleteProductHandler).Methods(http.MethodDelete)
	}
	r.HandleFunc("/healthz", app.healthHandler).Methods(http.MethodGet)
	r.Handle("/metrics", app.Metrics.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/openapi.yaml", app.openapiHandler).Methods(http.MethodGet)
	r.HandleFunc("/docs", app.docsHandler).Methods(http.MethodGet)
	r.NotFoundHandler = http.HandlerFunc(notFoundHandler)
	r.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowedHandler)

	var h http.Handler = WithMetrics(r, app.Metrics)
	if app.Limiter != nil {
		h = app.Limiter.Handler(h)
	}
	return WithRequestID(WithLogging(h))
}

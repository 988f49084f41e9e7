package httpapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/fairyhunter13/product-catalog-service/internal/catalog"
	"github.com/fairyhunter13/product-catalog-service/internal/config"
	httpopenapi "github.com/fairyhunter13/product-catalog-service/internal/http/openapi"
	"github.com/fairyhunter13/product-catalog-service/internal/model"
	"github.com/fairyhunter13/product-catalog-service/internal/obs"
	"github.com/fairyhunter13/product-catalog-service/internal/ratelimit"
)

type App struct {
	Cfg     config.Config
	Service *catalog.Service
	Metrics *obs.Metrics
	Limiter *ratelimit.Limiter
	started time.Time
}

// productRequest is the create/update body. Pointers tell a missing field
// apart from an empty one.
type productRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Price       float64 `json:"price"`
}

// NewApp wires the handlers. limiter may be nil to serve without rate limiting.
func NewApp(cfg config.Config, svc *catalog.Service, m *obs.Metrics, limiter *ratelimit.Limiter) *App {
	return &App{Cfg: cfg, Service: svc, Metrics: m, Limiter: limiter, started: time.Now()}
}

func (a *App) listProductsHandler(w http.ResponseWriter, r *http.Request) {
	a.writeResult(w, r, a.Service.List())
}

func (a *App) getProductHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}
	res, err := a.Service.Get(id)
	a.writeOutcome(w, r, res, err)
}

func (a *App) createProductHandler(w http.ResponseWriter, r *http.Request) {
	in, ok := decodeProduct(w, r)
	if !ok {
		return
	}
	a.writeResult(w, r, a.Service.Create(in))
}

func (a *App) updateProductHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}
	in, ok := decodeProduct(w, r)
	if !ok {
		return
	}
	res, err := a.Service.Update(id, in)
	a.writeOutcome(w, r, res, err)
}

func (a *App) deleteProductHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}
	res, err := a.Service.Delete(id)
	a.writeOutcome(w, r, res, err)
}

// productID parses the {id} path segment. An id that is not an int,
// overflow included, is a bad request rather than a missing product.
func productID(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.Atoi(raw)
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "invalid_id", fmt.Sprintf("%q is not an integer id", raw))
		return 0, false
	}
	return id, true
}

func decodeProduct(w http.ResponseWriter, r *http.Request) (model.ProductInput, bool) {
	ct := r.Header.Get("Content-Type")
	if !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		WriteJSONError(w, http.StatusUnsupportedMediaType, "unsupported_media_type", "expected application/json")
		return model.ProductInput{}, false
	}
	var req productRequest
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&req); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return model.ProductInput{}, false
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		WriteJSONError(w, http.StatusBadRequest, "invalid_json", "unexpected data after the JSON body")
		return model.ProductInput{}, false
	}
	if req.Name == nil || *req.Name == "" {
		WriteJSONError(w, http.StatusBadRequest, "validation_error", "name is required")
		return model.ProductInput{}, false
	}
	if req.Description == nil || *req.Description == "" {
		WriteJSONError(w, http.StatusBadRequest, "validation_error", "description is required")
		return model.ProductInput{}, false
	}
	return model.ProductInput{Name: *req.Name, Description: *req.Description, Price: req.Price}, true
}

func (a *App) writeOutcome(w http.ResponseWriter, r *http.Request, res catalog.Result, err error) {
	if err != nil {
		obs.Logger.Error("product_operation_failed",
			"request_id", RequestIDFromContext(r.Context()),
			"error", err,
		)
		WriteJSONError(w, http.StatusInternalServerError, "internal_error", "")
		return
	}
	a.writeResult(w, r, res)
}

// writeResult translates a service Result into a status code and body.
func (a *App) writeResult(w http.ResponseWriter, r *http.Request, res catalog.Result) {
	switch res.Kind {
	case catalog.KindOK:
		if res.Products != nil {
			writeJSON(w, http.StatusOK, res.Products)
			return
		}
		writeJSON(w, http.StatusOK, res.Product)
	case catalog.KindCreated:
		w.Header().Set("Location", mountedPath(r, res.Location))
		writeJSON(w, http.StatusCreated, res.Product)
	case catalog.KindNoContent:
		w.WriteHeader(http.StatusNoContent)
	case catalog.KindNotFound:
		w.WriteHeader(http.StatusNotFound)
	default:
		WriteJSONError(w, http.StatusInternalServerError, "internal_error", res.Kind.String())
	}
}

// mountedPath prefixes a /products path with the mount the request came in on.
func mountedPath(r *http.Request, p string) string {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		return "/api" + p
	}
	return p
}

func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"products":   a.Service.Len(),
		"uptime_sec": time.Since(a.started).Seconds(),
	})
}

func (a *App) openapiHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(httpopenapi.YAML)
}

func (a *App) docsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	html := `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>Product Catalog API</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui'
      });
    </script>
  </body>
</html>`
	_, _ = w.Write([]byte(html))
}

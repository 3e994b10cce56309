package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strconv"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"

	"github.com/velez/storefront/internal/domain"
	"github.com/velez/storefront/internal/usecase"
)

type Server struct {
	mux      *http.ServeMux
	products *usecase.ProductUC
	baskets  *usecase.BasketUC
	orders   *usecase.OrderUC
	payments *usecase.PaymentUC
	users    domain.UserRepo
	settings domain.SettingRepo
	oauthCfg *oauth2.Config

	adminSecret []byte
	openaiKey   string
}

func New(p *usecase.ProductUC, b *usecase.BasketUC, o *usecase.OrderUC, pay *usecase.PaymentUC, users domain.UserRepo, settings domain.SettingRepo, oauthCfg *oauth2.Config) http.Handler {
	s := &Server{
		mux:      http.NewServeMux(),
		products: p,
		baskets:  b,
		orders:   o,
		payments: pay,
		users:    users,
		settings: settings,
		oauthCfg: oauthCfg,
	}

	sec := os.Getenv("JWT_ADMIN_SECRET")
	if sec == "" {
		sec = os.Getenv("SECRET_KEY")
	}
	if sec == "" {
		sec = "dev-admin-secret"
	}
	s.adminSecret = []byte(sec)
	s.openaiKey = os.Getenv("OPENAI_API_KEY")

	s.routes()
	return Chain(s.mux,
		RateLimit(120),
		Metrics,
		Logging,
		RequestID,
		Recovery,
	)
}

func (s *Server) routes() {
	s.mux.Handle("GET /metrics", promhttp.Handler())
	s.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeData(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	s.mux.HandleFunc("GET /products", s.handleProducts)
	s.mux.HandleFunc("GET /products/featured", s.handleFeatured)
	s.mux.HandleFunc("GET /product/{id}", s.handleProduct)

	s.mux.HandleFunc("GET /basket", s.handleBasketGet)
	s.mux.HandleFunc("POST /basket", s.handleBasketPost)

	s.mux.HandleFunc("GET /order", s.handleOrderList)
	s.mux.HandleFunc("POST /order", s.handleOrderPlace)

	s.mux.HandleFunc("GET /checkout/success", s.handleCheckoutSuccess)
	s.mux.HandleFunc("GET /checkout/cancel", s.handleCheckoutCancel)

	s.mux.HandleFunc("POST /auth/register", s.handleRegister)
	s.mux.HandleFunc("POST /auth/login", s.handleLogin)
	s.mux.HandleFunc("GET /auth/google/login", s.handleGoogleLogin)
	s.mux.HandleFunc("GET /auth/google/callback", s.handleGoogleCallback)
	s.mux.HandleFunc("POST /logout", s.handleLogout)

	s.mux.HandleFunc("POST /admin/login", s.handleAdminLogin)
	s.mux.HandleFunc("GET /admin/products", s.adminOnly(s.adminProductList))
	s.mux.HandleFunc("POST /admin/products", s.adminOnly(s.adminProductCreate))
	s.mux.HandleFunc("GET /admin/products/{id}", s.adminOnly(s.adminProductGet))
	s.mux.HandleFunc("PUT /admin/products/{id}", s.adminOnly(s.adminProductUpdate))
	s.mux.HandleFunc("DELETE /admin/products/{id}", s.adminOnly(s.adminProductDelete))

	s.mux.HandleFunc("POST /admin/products/{id}/images", s.adminOnly(s.adminProductAddImages))
	s.mux.HandleFunc("DELETE /admin/products/{id}/images/{imageID}", s.adminOnly(s.adminProductDeleteImage))
	s.mux.HandleFunc("POST /admin/products/{id}/attributes", s.adminOnly(s.adminProductAddAttribute))
	s.mux.HandleFunc("DELETE /admin/products/{id}/attributes/{attrID}", s.adminOnly(s.adminProductDeleteAttribute))

	s.mux.HandleFunc("POST /admin/products/variants", s.adminOnly(s.adminGroupVariants))
	s.mux.HandleFunc("GET /admin/products/{id}/variants", s.adminOnly(s.adminListVariants))
	s.mux.HandleFunc("DELETE /admin/products/{id}/variants", s.adminOnly(s.adminUngroupVariant))

	s.mux.HandleFunc("GET /admin/orders", s.adminOnly(s.adminOrderList))
	s.mux.HandleFunc("PATCH /admin/orders/{id}", s.adminOnly(s.adminOrderStatus))

	s.mux.HandleFunc("GET /admin/theme", s.adminOnly(s.adminThemeGet))
	s.mux.HandleFunc("PUT /admin/theme", s.adminOnly(s.adminThemeSet))

	s.mux.HandleFunc("POST /admin/featured", s.adminOnly(s.adminFeatureProduct))
	s.mux.HandleFunc("DELETE /admin/featured/{id}", s.adminOnly(s.adminUnfeatureProduct))

	s.mux.HandleFunc("GET /admin/export/xlsx", s.adminOnly(s.adminExportXLSX))
	s.mux.HandleFunc("POST /admin/import/csv", s.adminOnly(s.adminImportCSV))
}

// --- envelopes ---

func writeData(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]any{"data": v})
}

func (s *Server) writeErr(w http.ResponseWriter, r *http.Request, code int, msg string, fields map[string]string) {
	body := map[string]any{"error": msg, "requestId": RequestIDFrom(r.Context())}
	if len(fields) > 0 {
		body["errors"] = fields
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

// writeDomainErr maps domain sentinels onto the HTTP error taxonomy.
func (s *Server) writeDomainErr(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		s.writeErr(w, r, http.StatusNotFound, "not found", nil)
	case errors.Is(err, domain.ErrOutOfStock):
		s.writeErr(w, r, http.StatusBadRequest, "insufficient stock", nil)
	case errors.Is(err, domain.ErrEmptyBasket):
		s.writeErr(w, r, http.StatusBadRequest, "basket is empty", nil)
	case errors.Is(err, domain.ErrBadTransition):
		s.writeErr(w, r, http.StatusBadRequest, "invalid status transition", nil)
	case errors.Is(err, domain.ErrForbidden):
		s.writeErr(w, r, http.StatusForbidden, "forbidden", nil)
	default:
		log.Error().Err(err).Str("path", r.URL.Path).Msg("internal error")
		s.writeErr(w, r, http.StatusInternalServerError, err.Error(), nil)
	}
}

// --- catalog ---

func (s *Server) handleProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	pageSize, _ := strconv.Atoi(q.Get("page_size"))
	f := domain.ProductFilter{
		Query:    q.Get("q"),
		Sort:     q.Get("sort"),
		Page:     page,
		PageSize: pageSize,
	}
	list, total, err := s.products.List(r.Context(), f)
	if err != nil {
		s.writeDomainErr(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{"items": list, "total": total})
}

func (s *Server) handleFeatured(w http.ResponseWriter, r *http.Request) {
	list, err := s.products.FeaturedProducts(r.Context())
	if err != nil {
		s.writeDomainErr(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{"items": list})
}

func (s *Server) handleProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.writeErr(w, r, http.StatusBadRequest, "invalid product id", nil)
		return
	}
	p, err := s.products.Get(r.Context(), id)
	if err != nil {
		s.writeDomainErr(w, r, err)
		return
	}
	writeData(w, http.StatusOK, p)
}

// --- basket ---

type basketView struct {
	Basket *domain.Basket       `json:"basket"`
	Items  []usecase.BasketLine `json:"items"`
}

func (s *Server) handleBasketGet(w http.ResponseWriter, r *http.Request) {
	u := s.currentUser(w, r)
	if u == nil {
		return
	}
	b, lines, err := s.baskets.Get(r.Context(), u.ID)
	if err != nil {
		s.writeDomainErr(w, r, err)
		return
	}
	writeData(w, http.StatusOK, basketView{Basket: b, Items: lines})
}

func (s *Server) handleBasketPost(w http.ResponseWriter, r *http.Request) {
	u := s.currentUser(w, r)
	if u == nil {
		return
	}
	var req struct {
		ProductID string `json:"product_id"`
		Action    string `json:"action"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeErr(w, r, http.StatusBadRequest, "invalid json", nil)
		return
	}
	pid, err := uuid.Parse(req.ProductID)
	if err != nil {
		s.writeErr(w, r, http.StatusBadRequest, "invalid request", map[string]string{"product_id": "must be a uuid"})
		return
	}
	action := domain.BasketAction(req.Action)
	if action != domain.BasketActionAdd && action != domain.BasketActionRemove {
		s.writeErr(w, r, http.StatusBadRequest, "invalid request", map[string]string{"action": "must be add or remove"})
		return
	}
	b, lines, err := s.baskets.Apply(r.Context(), u.ID, pid, action)
	if err != nil {
		s.writeDomainErr(w, r, err)
		return
	}
	writeData(w, http.StatusOK, basketView{Basket: b, Items: lines})
}

// --- orders ---

func (s *Server) handleOrderList(w http.ResponseWriter, r *http.Request) {
	u := s.currentUser(w, r)
	if u == nil {
		return
	}
	list, err := s.orders.ListByUser(r.Context(), u.ID)
	if err != nil {
		s.writeDomainErr(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{"items": list})
}

func (s *Server) handleOrderPlace(w http.ResponseWriter, r *http.Request) {
	u := s.currentUser(w, r)
	if u == nil {
		return
	}
	o, err := s.orders.Place(r.Context(), u.ID)
	if err != nil {
		s.writeDomainErr(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, o)
}

// --- checkout callbacks ---

func (s *Server) handleCheckoutSuccess(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sessionID := q.Get("session_id")
	basketID, err := uuid.Parse(q.Get("basket_id"))
	if sessionID == "" || err != nil {
		s.writeErr(w, r, http.StatusBadRequest, "session_id and basket_id required", nil)
		return
	}
	o, err := s.payments.ConfirmSuccess(r.Context(), sessionID, basketID)
	if err != nil {
		s.writeDomainErr(w, r, err)
		return
	}
	writeData(w, http.StatusOK, o)
}

func (s *Server) handleCheckoutCancel(w http.ResponseWriter, r *http.Request) {
	basketID, err := uuid.Parse(r.URL.Query().Get("basket_id"))
	if err != nil {
		s.writeErr(w, r, http.StatusBadRequest, "basket_id required", nil)
		return
	}
	if err := s.payments.Cancel(r.Context(), basketID); err != nil {
		s.writeDomainErr(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]string{"message": "payment cancelled, basket kept"})
}

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/velez/storefront/internal/domain"
)

func (s *Server) adminProductList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	pageSize, _ := strconv.Atoi(q.Get("page_size"))
	list, total, err := s.products.List(r.Context(), domain.ProductFilter{
		Query:    q.Get("q"),
		Sort:     q.Get("sort"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		s.writeDomainErr(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{"items": list, "total": total})
}

type productPayload struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
}

func (p productPayload) validate() map[string]string {
	fields := map[string]string{}
	if p.Title == "" {
		fields["title"] = "required"
	}
	if p.Price < 0 {
		fields["price"] = "must not be negative"
	}
	if p.Stock < 0 {
		fields["stock"] = "must not be negative"
	}
	return fields
}

func (s *Server) adminProductCreate(w http.ResponseWriter, r *http.Request) {
	var req productPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeErr(w, r, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if fields := req.validate(); len(fields) > 0 {
		s.writeErr(w, r, http.StatusBadRequest, "invalid request", fields)
		return
	}
	p := &domain.Product{Title: req.Title, Description: req.Description, Price: req.Price, Stock: req.Stock}
	if err := s.products.Create(r.Context(), p); err != nil {
		s.writeDomainErr(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, p)
}

func (s *Server) adminProductGet(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.writeErr(w, r, http.StatusBadRequest, "invalid product id", nil)
		return
	}
	// Admin reads do not bump the public view counter.
	p, err := s.products.Products.FindByID(r.Context(), id)
	if err != nil {
		s.writeDomainErr(w, r, err)
		return
	}
	writeData(w, http.StatusOK, p)
}

func (s *Server) adminProductUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.writeErr(w, r, http.StatusBadRequest, "invalid product id", nil)
		return
	}
	p, err := s.products.Products.FindByID(r.Context(), id)
	if err != nil {
		s.writeDomainErr(w, r, err)
		return
	}
	var req productPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeErr(w, r, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if fields := req.validate(); len(fields) > 0 {
		s.writeErr(w, r, http.StatusBadRequest, "invalid request", fields)
		return
	}
	p.Title = req.Title
	p.Description = req.Description
	p.Price = req.Price
	p.Stock = req.Stock
	if err := s.products.Update(r.Context(), p); err != nil {
		s.writeDomainErr(w, r, err)
		return
	}
	writeData(w, http.StatusOK, p)
}

func (s *Server) adminProductDelete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.writeErr(w, r, http.StatusBadRequest, "invalid product id", nil)
		return
	}
	paths, err := s.products.Delete(r.Context(), id)
	if err != nil {
		s.writeDomainErr(w, r, err)
		return
	}
	removed := make([]string, 0, len(paths))
	for _, p := range paths {
		if err := os.Remove(filepath.Clean(p)); err == nil {
			removed = append(removed, p)
		}
	}
	writeData(w, http.StatusOK, map[string]any{"status": "deleted", "removed_files": removed})
}

// --- images & attributes ---

func (s *Server) adminProductAddImages(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.writeErr(w, r, http.StatusBadRequest, "invalid product id", nil)
		return
	}
	var req struct {
		Images []struct {
			ImagePath string `json:"image_path"`
		} `json:"images"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeErr(w, r, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if len(req.Images) == 0 {
		s.writeErr(w, r, http.StatusBadRequest, "invalid request", map[string]string{"images": "required"})
		return
	}
	imgs := make([]domain.ProductImage, 0, len(req.Images))
	for _, im := range req.Images {
		if im.ImagePath == "" {
			s.writeErr(w, r, http.StatusBadRequest, "invalid request", map[string]string{"image_path": "required"})
			return
		}
		imgs = append(imgs, domain.ProductImage{ImagePath: im.ImagePath})
	}
	if _, err := s.products.Products.FindByID(r.Context(), id); err != nil {
		s.writeDomainErr(w, r, err)
		return
	}
	if err := s.products.AddImages(r.Context(), id, imgs); err != nil {
		s.writeDomainErr(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, map[string]any{"images": imgs})
}

func (s *Server) adminProductDeleteImage(w http.ResponseWriter, r *http.Request) {
	id, err1 := uuid.Parse(r.PathValue("id"))
	imageID, err2 := uuid.Parse(r.PathValue("imageID"))
	if err1 != nil || err2 != nil {
		s.writeErr(w, r, http.StatusBadRequest, "invalid id", nil)
		return
	}
	path, err := s.products.DeleteImage(r.Context(), id, imageID)
	if err != nil {
		s.writeDomainErr(w, r, err)
		return
	}
	if err := os.Remove(filepath.Clean(path)); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("image file removal failed")
	}
	writeData(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) adminProductAddAttribute(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.writeErr(w, r, http.StatusBadRequest, "invalid product id", nil)
		return
	}
	var req struct {
		Attribute string `json:"attribute"`
		Value     string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeErr(w, r, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if req.Attribute == "" {
		s.writeErr(w, r, http.StatusBadRequest, "invalid request", map[string]string{"attribute": "required"})
		return
	}
	if _, err := s.products.Products.FindByID(r.Context(), id); err != nil {
		s.writeDomainErr(w, r, err)
		return
	}
	attr, err := s.products.AddAttribute(r.Context(), id, req.Attribute, req.Value)
	if err != nil {
		s.writeDomainErr(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, attr)
}

func (s *Server) adminProductDeleteAttribute(w http.ResponseWriter, r *http.Request) {
	id, err1 := uuid.Parse(r.PathValue("id"))
	attrID, err2 := uuid.Parse(r.PathValue("attrID"))
	if err1 != nil || err2 != nil {
		s.writeErr(w, r, http.StatusBadRequest, "invalid id", nil)
		return
	}
	if err := s.products.DeleteAttribute(r.Context(), id, attrID); err != nil {
		s.writeDomainErr(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// --- variant grouping ---

func (s *Server) adminGroupVariants(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductIDs []string `json:"product_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeErr(w, r, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if len(req.ProductIDs) < 2 {
		s.writeErr(w, r, http.StatusBadRequest, "invalid request", map[string]string{"product_ids": "need at least two"})
		return
	}
	ids := make([]uuid.UUID, 0, len(req.ProductIDs))
	for _, raw := range req.ProductIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			s.writeErr(w, r, http.StatusBadRequest, "invalid request", map[string]string{"product_ids": "must be uuids"})
			return
		}
		ids = append(ids, id)
	}
	group, err := s.products.GroupVariants(r.Context(), ids)
	if err != nil {
		s.writeDomainErr(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{"variant_group": group})
}

func (s *Server) adminListVariants(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.writeErr(w, r, http.StatusBadRequest, "invalid product id", nil)
		return
	}
	siblings, err := s.products.Siblings(r.Context(), id)
	if err != nil {
		s.writeDomainErr(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{"items": siblings})
}

func (s *Server) adminUngroupVariant(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.writeErr(w, r, http.StatusBadRequest, "invalid product id", nil)
		return
	}
	if err := s.products.UngroupVariant(r.Context(), id); err != nil {
		s.writeDomainErr(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]string{"status": "ungrouped"})
}

// --- orders ---

func (s *Server) adminOrderList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	pageSize, _ := strconv.Atoi(q.Get("page_size"))
	list, total, err := s.orders.List(r.Context(), page, pageSize)
	if err != nil {
		s.writeDomainErr(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{"items": list, "total": total})
}

func (s *Server) adminOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.writeErr(w, r, http.StatusBadRequest, "invalid order id", nil)
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeErr(w, r, http.StatusBadRequest, "invalid json", nil)
		return
	}
	to := domain.OrderStatus(req.Status)
	switch to {
	case domain.OrderStatusCompleted, domain.OrderStatusFulfilled, domain.OrderStatusCancelled:
	default:
		s.writeErr(w, r, http.StatusBadRequest, "invalid request", map[string]string{"status": "must be completed, fulfilled or cancelled"})
		return
	}
	o, err := s.orders.SetStatus(r.Context(), id, to)
	if err != nil {
		s.writeDomainErr(w, r, err)
		return
	}
	writeData(w, http.StatusOK, o)
}

// --- theme ---

func (s *Server) adminThemeGet(w http.ResponseWriter, r *http.Request) {
	theme, err := s.settings.Get(r.Context(), domain.SettingActiveTheme)
	if errors.Is(err, domain.ErrNotFound) {
		theme = "default"
	} else if err != nil {
		s.writeDomainErr(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]string{"theme": theme})
}

func (s *Server) adminThemeSet(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Theme string `json:"theme"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeErr(w, r, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if req.Theme == "" {
		s.writeErr(w, r, http.StatusBadRequest, "invalid request", map[string]string{"theme": "required"})
		return
	}
	if err := s.settings.Set(r.Context(), domain.SettingActiveTheme, req.Theme); err != nil {
		s.writeDomainErr(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]string{"theme": req.Theme})
}

// --- featured ---

func (s *Server) adminFeatureProduct(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID    string `json:"product_id"`
		DisplayOrder int    `json:"display_order"`
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
	if err := s.products.FeatureProduct(r.Context(), pid, req.DisplayOrder); err != nil {
		s.writeDomainErr(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]string{"status": "featured"})
}

func (s *Server) adminUnfeatureProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.writeErr(w, r, http.StatusBadRequest, "invalid id", nil)
		return
	}
	if err := s.products.Featured.Delete(r.Context(), id); err != nil {
		s.writeDomainErr(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]string{"status": "removed"})
}

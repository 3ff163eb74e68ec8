// Package rest provides HTTP handlers for product-related operations.
package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	producterrors "github.com/abgdnv/productstore/internal/product/errors"
	"github.com/abgdnv/productstore/internal/product/service"
	"github.com/abgdnv/productstore/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

const pidParam = "pid"

// Handler serves the product endpoints on top of a ProductService.
type Handler struct {
	service  service.ProductService
	validate *validator.Validate
	logger   *slog.Logger
}

// NewHandler creates a new Handler serving the product endpoints with the provided service.
func NewHandler(service service.ProductService, logger *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		validate: newValidator(),
		logger:   logger.With("component", "rest"),
	}
}

// newValidator checks field presence only; values themselves are not constrained.
// A patch may omit a field but not send it as null.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterStructValidation(patchNotNull, service.ProductPatchDto{})
	return v
}

func patchNotNull(sl validator.StructLevel) {
	patch := sl.Current().Interface().(service.ProductPatchDto)
	if patch.Name.IsNull() {
		sl.ReportError(nil, "Name", "Name", "notnull", "")
	}
	if patch.Price.IsNull() {
		sl.ReportError(nil, "Price", "Price", "notnull", "")
	}
}

// RegisterRoutes registers the HTTP routes for the product service.
// Read, patch and delete sit behind VerifyPID; create and update do not.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/products", func(r chi.Router) {
		r.Post("/", h.Create)

		r.Route("/{pid}", func(r chi.Router) {
			r.Put("/", h.Update)

			r.Group(func(r chi.Router) {
				r.Use(h.VerifyPID)
				r.Get("/", h.FindByID)
				r.Patch("/", h.Patch)
				r.Delete("/", h.DeleteByID)
			})
		})
	})

	r.Get("/healthz", h.HealthCheck)
}

// VerifyPID answers 404 before the wrapped handler runs when no product is stored under the pid path parameter.
func (h *Handler) VerifyPID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pid, ok := web.ParseInt64Param(w, r, h.logger, pidParam)
		if !ok {
			return
		}
		exists, err := h.service.Exists(r.Context(), pid)
		if err != nil {
			h.logger.ErrorContext(r.Context(), "Error checking product existence", "pid", pid, "error", err)
			web.RespondError(w, h.logger, http.StatusInternalServerError, fmt.Sprintf("Failed to look up product with id %d", pid))
			return
		}
		if !exists {
			h.logger.WarnContext(r.Context(), "Product not found", "pid", pid)
			web.RespondError(w, h.logger, http.StatusNotFound, notFoundMessage(pid))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// FindByID retrieves a product by its pid.
func (h *Handler) FindByID(w http.ResponseWriter, r *http.Request) {
	pid, ok := web.ParseInt64Param(w, r, h.logger, pidParam)
	if !ok {
		return
	}

	h.logger.DebugContext(r.Context(), "Received request to find product by pid", "pid", pid)
	found, err := h.service.FindByID(r.Context(), pid)
	if err != nil {
		h.respondServiceError(w, r, pid, err, "retrieve")
		return
	}
	h.logger.DebugContext(r.Context(), "Successfully retrieved product", "pid", found.PID, "name", found.Name)
	web.RespondJSON(w, h.logger, http.StatusOK, found)
}

// Create handles the creation of a new product and answers with its pid.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var productCreateDto service.ProductCreateDto
	if !h.decodeAndValidate(w, r, &productCreateDto) {
		return
	}
	h.logger.DebugContext(r.Context(), "Received request to create product", "pid", *productCreateDto.PID)

	pid, err := h.service.Create(r.Context(), productCreateDto)
	if err != nil {
		h.respondServiceError(w, r, *productCreateDto.PID, err, "create")
		return
	}
	h.logger.InfoContext(r.Context(), "Product created successfully", "pid", pid, "name", *productCreateDto.Name)
	web.RespondJSON(w, h.logger, http.StatusAccepted, pid)
}

// Update replaces the product stored under pid, creating it when absent.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	pid, ok := web.ParseInt64Param(w, r, h.logger, pidParam)
	if !ok {
		return
	}
	h.logger.DebugContext(r.Context(), "Received request to update product", "pid", pid)
	var productUpdateDto service.ProductUpdateDto
	if !h.decodeAndValidate(w, r, &productUpdateDto) {
		return
	}

	updated, err := h.service.Update(r.Context(), pid, productUpdateDto)
	if err != nil {
		h.respondServiceError(w, r, pid, err, "update")
		return
	}
	h.logger.InfoContext(r.Context(), "Product updated successfully", "pid", updated.PID, "name", updated.Name)
	web.RespondJSON(w, h.logger, http.StatusOK, updated)
}

// Patch applies the supplied fields to an existing product.
func (h *Handler) Patch(w http.ResponseWriter, r *http.Request) {
	pid, ok := web.ParseInt64Param(w, r, h.logger, pidParam)
	if !ok {
		return
	}
	h.logger.DebugContext(r.Context(), "Received request to patch product", "pid", pid)
	var productPatchDto service.ProductPatchDto
	if !h.decodeAndValidate(w, r, &productPatchDto) {
		return
	}

	patched, err := h.service.Patch(r.Context(), pid, productPatchDto)
	if err != nil {
		h.respondServiceError(w, r, pid, err, "patch")
		return
	}
	h.logger.InfoContext(r.Context(), "Product patched successfully", "pid", patched.PID)
	web.RespondJSON(w, h.logger, http.StatusOK, patched)
}

// DeleteByID deletes a product by its pid. A successful delete answers 200 with an empty body.
func (h *Handler) DeleteByID(w http.ResponseWriter, r *http.Request) {
	pid, ok := web.ParseInt64Param(w, r, h.logger, pidParam)
	if !ok {
		return
	}
	h.logger.DebugContext(r.Context(), "Received request to delete product", "pid", pid)
	if err := h.service.DeleteByID(r.Context(), pid); err != nil {
		h.respondServiceError(w, r, pid, err, "delete")
		return
	}
	h.logger.InfoContext(r.Context(), "Product deleted successfully", "pid", pid)
	w.WriteHeader(http.StatusOK)
}

// HealthCheck is a simple health check endpoint.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// decodeAndValidate reads the JSON body into dst and validates it. On failure a 400 response has already been written.
func (h *Handler) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.logger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		web.RespondValidationError(w, r, h.logger, err)
		return false
	}
	return true
}

func (h *Handler) respondServiceError(w http.ResponseWriter, r *http.Request, pid int64, err error, action string) {
	switch {
	case errors.Is(err, producterrors.ErrProductNotFound):
		h.logger.WarnContext(r.Context(), "Product not found", "pid", pid, "action", action)
		web.RespondError(w, h.logger, http.StatusNotFound, notFoundMessage(pid))
	case errors.Is(err, producterrors.ErrProductConflict):
		h.logger.WarnContext(r.Context(), "Product already exists", "pid", pid)
		web.RespondError(w, h.logger, http.StatusConflict, fmt.Sprintf("Product with id %d already exists.", pid))
	default:
		h.logger.ErrorContext(r.Context(), "Error handling product request", "pid", pid, "action", action, "error", err)
		web.RespondError(w, h.logger, http.StatusInternalServerError, fmt.Sprintf("Failed to %s product with id %d", action, pid))
	}
}

func notFoundMessage(pid int64) string {
	return fmt.Sprintf("Product with id %d doesn't exist.", pid)
}

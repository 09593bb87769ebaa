// Binding HTTP handlers.
//
// This file exposes read endpoints over the binding store:
//   - GET /bindings/me   (current chat's binding, active or inactive)
//   - GET /bindings      (admin listing, paginated, ETag support)
//
// Reads never consult the CRM; they reflect local binding state only.
package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tbourn/go-warehouse-backend/internal/domain"
	"github.com/tbourn/go-warehouse-backend/internal/repo"
	"github.com/tbourn/go-warehouse-backend/internal/services"
	"github.com/tbourn/go-warehouse-backend/internal/utils"
)

//
// DTOs
//

// UnboundResponse is returned when the chat has never been bound.
type UnboundResponse struct {
	Status string `json:"status" example:"unbound"`
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// ListBindingsResponse wraps a page of bindings and pagination information.
type ListBindingsResponse struct {
	Bindings   []domain.WarehouseBinding `json:"bindings"`
	Pagination Pagination                `json:"pagination"`
}

//
// Helpers
//

// clampPagination parses and bounds page and page_size query params to sane
// defaults and limits, returning (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.ClampInt(utils.AtoiDefault(c.Query("page_size"), defaultPageSize), 1, maxPageSize)
	return
}

// bindingDB reaches the GORM handle behind the activation service. Listing
// endpoints read the store directly; stubbed services in tests simply get a
// 503 instead.
func (h *Handlers) bindingDB() *gorm.DB {
	if svc, ok := h.actSvc.(*services.ActivationService); ok {
		return svc.DB
	}
	return nil
}

//
// Handlers
//

// GetMyBinding godoc
// @ID          getMyBinding
// @Summary     Current binding status
// @Description Returns the chat's binding (active or inactive), or an unbound marker if the chat was never activated.
// @Tags        Bindings
// @Produce     json
//
// @Param       X-Chat-ID  header  string  false "Chat ID (messaging identity)"  example(chat123)
//
// @Success     200  {object}  domain.WarehouseBinding
// @Failure     503  {object}  handlers.ErrorResponse  "Binding store unavailable"
// @Router      /bindings/me [get]
func (h *Handlers) GetMyBinding(c *gin.Context) {
	b, err := h.actSvc.BindingStatus(c.Request.Context(), chatID(c))
	if errors.Is(err, services.ErrNotActivated) {
		// Never bound is a normal answer for this read, not a failure.
		ok(c, http.StatusOK, UnboundResponse{Status: "unbound"})
		return
	}
	if err != nil {
		bindingError(c, err)
		return
	}
	ok(c, http.StatusOK, b)
}

// ListBindings godoc
// @ID          listBindings
// @Summary     List bindings (paginated)
// @Description Returns a page of all bindings, newest first. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Bindings
// @Produce     json
//
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"  example(W/\"abc123\")
// @Param       page           query   int     false "Page number"                  minimum(1) default(1)
// @Param       page_size      query   int     false "Items per page"               minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.ListBindingsResponse
// @Header      200  {string} ETag  "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     503  {object} handlers.ErrorResponse "Binding store unavailable"
// @Router      /bindings [get]
func (h *Handlers) ListBindings(c *gin.Context) {
	ctx := c.Request.Context()
	page, pageSize := clampPagination(c)

	db := h.bindingDB()
	if db == nil {
		fail(c, http.StatusServiceUnavailable, ErrCodeStorageUnavailable, "binding store is unavailable")
		return
	}

	// ETag pre-check (best effort).
	count, maxTS, err := repo.BindingsStats(ctx, db)
	if err == nil {
		var ts int64
		if maxTS != nil {
			ts = maxTS.Unix()
		}
		etag := fmt.Sprintf(`W/"bindings:%d:%d"`, count, ts)
		c.Header("ETag", etag)
		if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
			c.Status(http.StatusNotModified)
			return
		}
	}

	// Fetch page.
	total, err := repo.CountBindings(ctx, db)
	if err != nil {
		fail(c, http.StatusServiceUnavailable, ErrCodeStorageUnavailable, "binding store is unavailable")
		return
	}
	items, err := repo.ListBindingsPage(ctx, db, (page-1)*pageSize, pageSize)
	if err != nil {
		fail(c, http.StatusServiceUnavailable, ErrCodeStorageUnavailable, "binding store is unavailable")
		return
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	resp := ListBindingsResponse{
		Bindings: items,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	}
	ok(c, http.StatusOK, resp)
}

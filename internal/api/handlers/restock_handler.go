package handlers

import (
	"errors"
	"net/http"

	"github.com/andresuchdata/restock-engine/internal/api/middleware"
	"github.com/andresuchdata/restock-engine/internal/domain"
	"github.com/andresuchdata/restock-engine/internal/restock"
	"github.com/andresuchdata/restock-engine/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type RestockHandler struct {
	service *service.RestockService
}

func NewRestockHandler(service *service.RestockService) *RestockHandler {
	return &RestockHandler{service: service}
}

// AnalyzeSales handles POST /restock/sales
func (h *RestockHandler) AnalyzeSales(c *gin.Context) {
	h.analyze(c, restock.ModeSales)
}

// AnalyzeLevels handles POST /restock/levels
func (h *RestockHandler) AnalyzeLevels(c *gin.Context) {
	h.analyze(c, restock.ModeLevels)
}

// Analyze handles POST /restock/analyze/:mode
func (h *RestockHandler) Analyze(c *gin.Context) {
	mode, err := restock.ParseMode(c.Param("mode"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.analyze(c, mode)
}

func (h *RestockHandler) analyze(c *gin.Context, mode restock.Mode) {
	var req service.AnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	resp, err := h.service.Analyze(c.Request.Context(), mode, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CrossCheck handles POST /restock/crosscheck
func (h *RestockHandler) CrossCheck(c *gin.Context) {
	var req service.CrossCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	resp, err := h.service.CrossCheck(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ShelfLife handles POST /restock/shelf-life
func (h *RestockHandler) ShelfLife(c *gin.Context) {
	var req service.ShelfLifeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	resp, err := h.service.ShelfLife(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetRules handles GET /restock/rules
func (h *RestockHandler) GetRules(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Rules())
}

// InvalidateCache handles DELETE /restock/cache
func (h *RestockHandler) InvalidateCache(c *gin.Context) {
	if err := h.service.InvalidateCache(c.Request.Context()); err != nil {
		log.Error().Err(err).Str("request_id", middleware.RequestID(c)).Msg("restock: cache invalidation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to invalidate cache"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RestockHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, restock.ErrUnknownMode):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrAllRejected):
		issues := []domain.ValidationIssue{}
		if vErr, ok := domain.AsValidationError(err); ok {
			issues = vErr.Issues
		}
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "rejected": issues})
	default:
		log.Error().Err(err).Str("request_id", middleware.RequestID(c)).Str("path", c.FullPath()).Msg("restock: analysis failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "analysis failed"})
	}
}

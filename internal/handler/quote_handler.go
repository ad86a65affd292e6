package handler

import (
	"errors"
	"net/http"

	"sunnah_sayings/internal/middleware"
	"sunnah_sayings/internal/model"
	"sunnah_sayings/internal/service"

	"github.com/gin-gonic/gin"
)

// QuoteHandler handles quote related requests
type QuoteHandler struct {
	service service.QuoteService
}

// NewQuoteHandler creates a new QuoteHandler
func NewQuoteHandler(s service.QuoteService) *QuoteHandler {
	return &QuoteHandler{service: s}
}

func (h *QuoteHandler) List(c *gin.Context) {
	quotes, err := h.service.List(c.Request.Context(), c.Query("email"))
	if err != nil {
		serverError(c, "message", "Failed to fetch quotes", err)
		return
	}
	c.JSON(http.StatusOK, quotes)
}

func (h *QuoteHandler) ListApproved(c *gin.Context) {
	quotes, err := h.service.ListApproved(c.Request.Context())
	if err != nil {
		serverError(c, "message", "Failed to fetch approved quotes", err)
		return
	}
	c.JSON(http.StatusOK, quotes)
}

func (h *QuoteHandler) ListLatest(c *gin.Context) {
	quotes, err := h.service.ListLatest(c.Request.Context())
	if err != nil {
		serverError(c, "message", "Failed to fetch latest quotes", err)
		return
	}
	c.JSON(http.StatusOK, quotes)
}

func (h *QuoteHandler) Get(c *gin.Context) {
	quote, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrQuoteNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Quote not found"})
			return
		}
		serverError(c, "message", "Failed to fetch quote", err)
		return
	}
	c.JSON(http.StatusOK, quote)
}

func (h *QuoteHandler) Create(c *gin.Context) {
	var req model.CreateQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	var email string
	if claim, ok := middleware.Claim(c); ok {
		email = claim.Email
	}

	quote, err := h.service.Create(c.Request.Context(), email, req)
	if err != nil {
		serverError(c, "message", "Failed to add quote", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"acknowledged": true, "insertedId": quote.ID})
}

func (h *QuoteHandler) Update(c *gin.Context) {
	var req model.UpdateQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	res, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNothingToUpdate):
			c.JSON(http.StatusBadRequest, gin.H{"message": "No fields to update"})
		case errors.Is(err, service.ErrQuoteNotFound):
			c.JSON(http.StatusNotFound, gin.H{"message": "Quote not found"})
		default:
			serverError(c, "message", "Failed to update quote", err)
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":       "Quote updated successfully",
		"modifiedCount": res.ModifiedCount,
	})
}

func (h *QuoteHandler) UpdateStatus(c *gin.Context) {
	var req model.UpdateQuoteStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if _, err := h.service.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status); err != nil {
		if errors.Is(err, service.ErrQuoteNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Quote not found"})
			return
		}
		serverError(c, "message", "Failed to update status", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Status updated successfully"})
}

// Delete removes a quote. Any authenticated caller may delete any quote;
// there is no ownership or role check here.
func (h *QuoteHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, service.ErrQuoteNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":        "Quote not found or already deleted",
				"deletedCount": 0,
			})
			return
		}
		serverError(c, "error", "Failed to delete quote", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":      "Quote deleted successfully",
		"deletedCount": 1,
	})
}

// RegisterQuoteRoutes registers quote routes with their guard chains
func (h *QuoteHandler) RegisterQuoteRoutes(rg gin.IRoutes, authMW gin.HandlerFunc, adminMW gin.HandlerFunc) {
	// public reads
	rg.GET("/quotes/approved", h.ListApproved)
	rg.GET("/quotes/latest", h.ListLatest)
	rg.GET("/quotes/:id", h.Get)

	// any verified identity
	rg.GET("/quotes", authMW, h.List)
	rg.POST("/quotes", authMW, h.Create)
	rg.DELETE("/quotes/:id", authMW, h.Delete)

	// verified identity, then admin role
	rg.PATCH("/quotes/:id", adminMW, h.Update)
	rg.PATCH("/quotes/:id/status", adminMW, h.UpdateStatus)
}

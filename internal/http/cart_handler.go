package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/nikolayk812/cafe-cart/internal/service"
	"go.uber.org/zap"
)

type CartHandler struct {
	svc    service.Service
	logger *zap.Logger
}

func NewCartHandler(svc service.Service, logger ...*zap.Logger) *CartHandler {
	l := zap.L().Named("cart.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("cart.handler")
	}

	return &CartHandler{svc: svc, logger: l}
}

func (h *CartHandler) GetCart(c *gin.Context) {
	cart, err := h.svc.GetOrCreateOpenCart(c.Request.Context(), c.GetInt64(userIDKey))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, toCartResponse(cart))
}

func (h *CartHandler) ListItems(c *gin.Context) {
	items, err := h.svc.ListItems(c.Request.Context(), c.GetInt64(userIDKey))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, toCartItemResponses(items))
}

func (h *CartHandler) AddItem(c *gin.Context) {
	var req service.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("http add item bind failed", zap.Error(err))
		badRequest(c, "malformed request body")
		return
	}

	item, err := h.svc.AddItem(c.Request.Context(), c.GetInt64(userIDKey), req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, toCartItemResponse(item))
}

func (h *CartHandler) UpdateQuantity(c *gin.Context) {
	itemID, ok := itemIDParam(c)
	if !ok {
		return
	}

	var req service.UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("http update quantity bind failed", zap.Error(err))
		badRequest(c, "malformed request body")
		return
	}

	item, err := h.svc.UpdateQuantity(c.Request.Context(), c.GetInt64(userIDKey), itemID, req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, toCartItemResponse(item))
}

func (h *CartHandler) RemoveItem(c *gin.Context) {
	itemID, ok := itemIDParam(c)
	if !ok {
		return
	}

	if err := h.svc.RemoveItem(c.Request.Context(), c.GetInt64(userIDKey), itemID); err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *CartHandler) Clear(c *gin.Context) {
	if err := h.svc.Clear(c.Request.Context(), c.GetInt64(userIDKey)); err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ClearCompat is the POST /api/cart/clear form of Clear used by the view
// gateway; it answers with a JSON acknowledgement instead of 204.
func (h *CartHandler) ClearCompat(c *gin.Context) {
	if err := h.svc.Clear(c.Request.Context(), c.GetInt64(userIDKey)); err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Success: true})
}

func itemIDParam(c *gin.Context) (int64, bool) {
	raw := c.Param("itemId")

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		badRequest(c, "invalid item id: "+raw)
		return 0, false
	}

	return id, true
}

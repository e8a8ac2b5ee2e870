package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"fulfillment-service/internal/models"
	"fulfillment-service/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type FulfillmentHandler struct {
	svc service.FulfillmentService
	log *zap.Logger
}

func NewFulfillmentHandler(svc service.FulfillmentService, log *zap.Logger) *FulfillmentHandler {
	return &FulfillmentHandler{svc: svc, log: log}
}

type storeStatusRequest struct {
	OTP *int32 `json:"otp"`
}

// Форма ответа повторяет контракт потребителей: статус, сообщение, флаг
type storeStatusResponse struct {
	Status      string    `json:"status"`
	Message     string    `json:"message"`
	Success     bool      `json:"success"`
	StoreAmount int64     `json:"storeAmount"`
	StoreID     uuid.UUID `json:"storeId,omitempty"`
}

func (h *FulfillmentHandler) AdvanceStoreStatus(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("orderId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid order id"})
		return
	}

	var req storeStatusRequest
	_ = c.ShouldBindJSON(&req) // тело опционально: до ReadyForPickup OTP не нужен

	change, err := h.svc.AdvanceStoreStatus(c.Request.Context(), orderID, req.OTP)
	if err != nil {
		code, msg := statusFromErr(err)
		if code == http.StatusInternalServerError {
			h.log.Error("advance store status failed", zap.String("order_id", orderID.String()), zap.Error(err))
		}
		c.JSON(code, storeStatusResponse{Message: msg, Success: false})
		return
	}

	c.JSON(http.StatusOK, storeStatusResponse{
		Status:      string(change.New),
		Message:     "Order status updated to " + string(change.New) + " successfully.",
		Success:     true,
		StoreAmount: change.StoreAmountCents,
		StoreID:     change.StoreID,
	})
}

func (h *FulfillmentHandler) GetCurrentStoreStatus(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("orderId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid order id"})
		return
	}

	st, err := h.svc.CurrentStoreStatus(c.Request.Context(), orderID)
	if err != nil {
		code, msg := statusFromErr(err)
		c.JSON(code, gin.H{"message": msg})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": st})
}

func (h *FulfillmentHandler) GetStoreStatusValues(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"values": h.svc.StoreStatusValues()})
}

func (h *FulfillmentHandler) GetOrder(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("orderId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid order id"})
		return
	}

	ord, err := h.svc.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		code, msg := statusFromErr(err)
		c.JSON(code, gin.H{"message": msg})
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": ord})
}

type assignPartnerRequest struct {
	PartnerID   uuid.UUID `json:"partnerId" binding:"required"`
	PartnerName string    `json:"partnerName"`
}

func (h *FulfillmentHandler) AssignPartner(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("orderId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid order id"})
		return
	}

	var req assignPartnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}

	err = h.svc.AssignPartner(c.Request.Context(), service.AssignPartnerInput{
		OrderID:     orderID,
		PartnerID:   req.PartnerID,
		PartnerName: req.PartnerName,
	})
	if err != nil {
		code, msg := statusFromErr(err)
		if code == http.StatusInternalServerError {
			h.log.Error("assign partner failed", zap.String("order_id", orderID.String()), zap.Error(err))
		}
		c.JSON(code, gin.H{"success": false, "message": msg})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

type deliveryStatusRequest struct {
	Status models.DeliveryStatus `json:"status" binding:"required"`
	OTP    *int32                `json:"otp"`
}

func (h *FulfillmentHandler) UpdateDeliveryStatus(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("orderId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid order id"})
		return
	}

	var req deliveryStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}

	// Проверка deliveryOTP перед терминальным статусом живёт здесь,
	// на вызывающей стороне, а не в самом переходе
	if req.Status == models.DeliveryStatusDelivered {
		ord, err := h.svc.GetOrder(c.Request.Context(), orderID)
		if err != nil {
			code, msg := statusFromErr(err)
			c.JSON(code, gin.H{"success": false, "message": msg})
			return
		}
		if ord.DeliveryOTP != nil && (req.OTP == nil || *ord.DeliveryOTP != *req.OTP) {
			c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "Invalid OTP provided for delivery."})
			return
		}
	}

	ok, err := h.svc.UpdateDeliveryStatus(c.Request.Context(), orderID, req.Status)
	if err != nil {
		code, msg := statusFromErr(err)
		c.JSON(code, gin.H{"success": false, "message": msg})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": ok})
}

type requestReturnRequest struct {
	ProductID uuid.UUID `json:"productId" binding:"required"`
	VariantID uuid.UUID `json:"variantId" binding:"required"`
}

func (h *FulfillmentHandler) RequestReturn(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("orderId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid order id"})
		return
	}

	var req requestReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}

	ok, err := h.svc.RequestReturn(c.Request.Context(), orderID, req.ProductID, req.VariantID)
	if err != nil {
		h.log.Error("request return failed", zap.String("order_id", orderID.String()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": ok})
}

type completeReturnRequest struct {
	ItemID  uuid.UUID `json:"itemId" binding:"required"`
	StoreID uuid.UUID `json:"storeId" binding:"required"`
}

func (h *FulfillmentHandler) CompleteReturn(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("orderId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid order id"})
		return
	}

	var req completeReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}

	ok, err := h.svc.CompleteReturn(c.Request.Context(), orderID, req.ItemID, req.StoreID)
	if err != nil {
		code, msg := statusFromErr(err)
		if code == http.StatusInternalServerError {
			h.log.Error("complete return failed", zap.String("order_id", orderID.String()), zap.Error(err))
		}
		c.JSON(code, gin.H{"success": false, "message": msg})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": ok})
}

func (h *FulfillmentHandler) CancelItem(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("orderId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid order id"})
		return
	}
	itemID, err := uuid.Parse(c.Param("itemId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid item id"})
		return
	}

	ok, err := h.svc.CancelItem(c.Request.Context(), orderID, itemID)
	if err != nil {
		h.log.Error("cancel item failed", zap.String("order_id", orderID.String()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": ok})
}

type confirmPaymentRequest struct {
	RazorpayOrderID   string `json:"razorpayOrderId" binding:"required"`
	RazorpayPaymentID string `json:"razorpayPaymentId" binding:"required"`
	RazorpaySignature string `json:"razorpaySignature" binding:"required"`
	PaymentMethod     string `json:"paymentMethod"`
}

func (h *FulfillmentHandler) ConfirmPayment(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("orderId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid order id"})
		return
	}

	var req confirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}

	ok, err := h.svc.ConfirmPayment(c.Request.Context(), service.ConfirmPaymentInput{
		OrderID:        orderID,
		GatewayOrderID: req.RazorpayOrderID,
		PaymentID:      req.RazorpayPaymentID,
		Signature:      req.RazorpaySignature,
		PaymentMethod:  req.PaymentMethod,
	})
	if err != nil {
		code, msg := statusFromErr(err)
		c.JSON(code, gin.H{"success": false, "message": msg})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": ok})
}

func (h *FulfillmentHandler) ListStoreOrders(c *gin.Context) {
	storeID, err := uuid.Parse(c.Param("storeId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid store id"})
		return
	}

	f := service.StoreOrdersFilter{
		SortDesc: c.Query("order") == "desc",
	}
	if v, err := strconv.Atoi(c.Query("limit")); err == nil {
		f.Limit = v
	}
	if v, err := strconv.Atoi(c.Query("offset")); err == nil {
		f.Offset = v
	}
	if v := c.Query("paymentStatus"); v != "" {
		ps := models.PaymentStatus(v)
		f.PaymentStatus = &ps
	}
	if v := c.Query("paymentMethod"); v != "" {
		f.PaymentMethod = &v
	}
	if v := c.Query("startDate"); v != "" {
		if ts, err := time.Parse("2006-01-02", v); err == nil {
			f.From = &ts
		}
	}
	if v := c.Query("endDate"); v != "" {
		if ts, err := time.Parse("2006-01-02", v); err == nil {
			end := ts.Add(24*time.Hour - time.Nanosecond)
			f.To = &end
		}
	}

	orders, total, err := h.svc.ListStoreOrders(c.Request.Context(), storeID, f)
	if err != nil {
		h.log.Error("list store orders failed", zap.String("store_id", storeID.String()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders, "total": total})
}

func statusFromErr(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrOrderNotFound),
		errors.Is(err, service.ErrPartnerNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, service.ErrInvalidOTP):
		return http.StatusForbidden, "Invalid OTP provided for collection."
	case errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrConflict):
		return http.StatusConflict, err.Error()
	case errors.Is(err, service.ErrInvalidSignature),
		errors.Is(err, service.ErrUnknownStatus):
		return http.StatusBadRequest, err.Error()
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

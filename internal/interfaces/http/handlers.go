package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/garyjia/courier-billing/internal/application/service"
	"github.com/garyjia/courier-billing/internal/domain/entity"
	"github.com/garyjia/courier-billing/internal/domain/money"
	"github.com/garyjia/courier-billing/internal/domain/rating"
	"github.com/garyjia/courier-billing/internal/domain/workflow"
	"github.com/garyjia/courier-billing/pkg/utils"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	ratingService  service.RatingService
	invoiceService service.InvoiceService
	logger         Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(ratingService service.RatingService, invoiceService service.InvoiceService, logger Logger) *Handlers {
	return &Handlers{
		ratingService:  ratingService,
		invoiceService: invoiceService,
		logger:         logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool           `json:"success"`
	Data    interface{}    `json:"data,omitempty"`
	Error   string         `json:"error,omitempty"`
	Code    string         `json:"code,omitempty"`
	Detail  map[string]any `json:"detail,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// ShipmentRequest is the rating input in API requests
type ShipmentRequest struct {
	ShipmentID         string          `json:"shipment_id" binding:"required"`
	OriginPincode      string          `json:"origin_pincode" binding:"required"`
	DestinationPincode string          `json:"destination_pincode" binding:"required"`
	Weight             decimal.Decimal `json:"weight"`
	ServiceType        string          `json:"service_type" binding:"required"`
	CustomerID         string          `json:"customer_id"`
	ShipmentCount      int64           `json:"shipment_count"`
	SLA                bool            `json:"sla"`
}

// RateShipmentRequest bills one shipment onto an invoice
type RateShipmentRequest struct {
	FranchiseID int64 `json:"franchise_id" binding:"required"`
	ShipmentRequest
}

// BulkRateRequest bills many shipments onto an invoice
type BulkRateRequest struct {
	FranchiseID int64             `json:"franchise_id" binding:"required"`
	Shipments   []ShipmentRequest `json:"shipments" binding:"required,min=1,dive"`
}

// CreateInvoiceRequest opens a draft invoice
type CreateInvoiceRequest struct {
	FranchiseID int64  `json:"franchise_id" binding:"required"`
	CustomerID  string `json:"customer_id"`
}

// RechargeQuoteRequest previews recharge discounts
type RechargeQuoteRequest struct {
	CustomerID string          `json:"customer_id"`
	Amount     decimal.Decimal `json:"amount"`
}

func (r ShipmentRequest) toEntity() entity.Shipment {
	return entity.Shipment{
		ID:                 strings.TrimSpace(utils.SanitizeString(r.ShipmentID)),
		OriginPincode:      strings.TrimSpace(r.OriginPincode),
		DestinationPincode: strings.TrimSpace(r.DestinationPincode),
		Weight:             r.Weight,
		ServiceType:        entity.ServiceType(strings.ToUpper(strings.TrimSpace(r.ServiceType))),
		CustomerID:         strings.TrimSpace(utils.SanitizeString(r.CustomerID)),
		ShipmentCount:      r.ShipmentCount,
		SLA:                r.SLA,
	}
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: HealthResponse{
			Status:    "healthy",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
	})
}

// Quote handles POST /api/v1/franchises/:id/quotes
func (h *Handlers) Quote(c *gin.Context) {
	franchiseID, ok := h.pathID(c, "franchise")
	if !ok {
		return
	}
	var req ShipmentRequest
	if !h.bind(c, &req) {
		return
	}

	result, err := h.ratingService.Quote(c.Request.Context(), franchiseID, req.toEntity())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: result})
}

// QuoteRecharge handles POST /api/v1/franchises/:id/recharge-quotes
func (h *Handlers) QuoteRecharge(c *gin.Context) {
	franchiseID, ok := h.pathID(c, "franchise")
	if !ok {
		return
	}
	var req RechargeQuoteRequest
	if !h.bind(c, &req) {
		return
	}

	quote, err := h.ratingService.QuoteRecharge(c.Request.Context(), franchiseID, strings.TrimSpace(req.CustomerID), money.ToMinor(req.Amount))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: quote})
}

// CreateInvoice handles POST /api/v1/invoices
func (h *Handlers) CreateInvoice(c *gin.Context) {
	var req CreateInvoiceRequest
	if !h.bind(c, &req) {
		return
	}

	header, err := h.invoiceService.CreateDraft(c.Request.Context(), req.FranchiseID, utils.SanitizeString(req.CustomerID))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, Response{Success: true, Data: header})
}

// GetInvoice handles GET /api/v1/invoices/:id
func (h *Handlers) GetInvoice(c *gin.Context) {
	headerID, ok := h.pathID(c, "invoice")
	if !ok {
		return
	}

	view, err := h.invoiceService.Get(c.Request.Context(), headerID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: view})
}

// RateShipment handles POST /api/v1/invoices/:id/shipments
func (h *Handlers) RateShipment(c *gin.Context) {
	headerID, ok := h.pathID(c, "invoice")
	if !ok {
		return
	}
	var req RateShipmentRequest
	if !h.bind(c, &req) {
		return
	}

	outcome, err := h.ratingService.RateShipment(c.Request.Context(), req.FranchiseID, req.toEntity(), headerID)
	if err != nil {
		h.fail(c, err)
		return
	}

	status := http.StatusOK
	if outcome.Created {
		status = http.StatusCreated
	}
	c.JSON(status, Response{Success: true, Data: outcome})
}

// RateShipments handles POST /api/v1/invoices/:id/shipments/bulk
func (h *Handlers) RateShipments(c *gin.Context) {
	headerID, ok := h.pathID(c, "invoice")
	if !ok {
		return
	}
	var req BulkRateRequest
	if !h.bind(c, &req) {
		return
	}

	shipments := make([]entity.Shipment, len(req.Shipments))
	for i, s := range req.Shipments {
		shipments[i] = s.toEntity()
	}

	report, err := h.ratingService.RateShipments(c.Request.Context(), req.FranchiseID, headerID, shipments)
	if err != nil {
		if report == nil {
			h.fail(c, err)
			return
		}
		// a partial report still tells the caller which shipments were billed
		h.failWith(c, err, report)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: report})
}

// Transition returns the handler for POST /api/v1/invoices/:id/<action>
func (h *Handlers) Transition(action string) gin.HandlerFunc {
	trigger, known := workflow.ParseTrigger(action)
	return func(c *gin.Context) {
		if !known {
			c.JSON(http.StatusNotFound, Response{Success: false, Error: "unknown action"})
			return
		}
		headerID, ok := h.pathID(c, "invoice")
		if !ok {
			return
		}

		header, err := h.invoiceService.Transition(c.Request.Context(), headerID, trigger)
		if err != nil {
			h.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, Response{Success: true, Data: header})
	}
}

func (h *Handlers) pathID(c *gin.Context, kind string) (int64, bool) {
	raw := c.Param("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid " + kind + " ID", Code: "bad_request"})
		return 0, false
	}
	return id, true
}

func (h *Handlers) bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error(), Code: "bad_request"})
		return false
	}
	return true
}

// fail writes err with the status code for its kind. Internal errors are
// logged and hidden from the client.
func (h *Handlers) fail(c *gin.Context, err error) {
	h.failWith(c, err, nil)
}

func (h *Handlers) failWith(c *gin.Context, err error, data interface{}) {
	code := service.ErrorCode(err)
	status := statusFor(code)

	resp := Response{Success: false, Data: data, Error: err.Error(), Code: code}
	if rerr, ok := rating.AsError(err); ok {
		resp.Detail = map[string]any{"stage": string(rerr.Stage)}
		if rerr.ShipmentID != "" {
			resp.Detail["shipment_id"] = rerr.ShipmentID
		}
		for k, v := range rerr.Detail {
			resp.Detail[k] = v
		}
	}

	if status == http.StatusInternalServerError {
		h.logger.Error("Request failed", "path", c.Request.URL.Path, "error", err)
		resp.Error = "internal error"
	}
	c.JSON(status, resp)
}

func statusFor(code string) int {
	switch code {
	case "zone_unresolved", "rate_unresolved", "discount_condition_invalid", "invalid_shipment", "invalid_amount":
		return http.StatusUnprocessableEntity
	case "rate_ambiguous", "config_integrity", "invoice_frozen", "line_conflict",
		"franchise_mismatch", "invalid_transition", "transition_refused":
		return http.StatusConflict
	case "header_not_found", "franchise_not_found":
		return http.StatusNotFound
	case "cancelled":
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}


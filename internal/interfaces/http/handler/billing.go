package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	billingapp "github.com/vetclinic/backend/internal/application/billing"
	"github.com/vetclinic/backend/internal/domain/billing"
	"github.com/vetclinic/backend/internal/interfaces/http/dto"
)

// BillingHandler handles invoice, payment and receipt endpoints
type BillingHandler struct {
	BaseHandler
	invoiceService *billingapp.InvoiceService
	paymentService *billingapp.PaymentService
	receiptService *billingapp.ReceiptService
}

// NewBillingHandler creates a new BillingHandler
func NewBillingHandler(
	invoiceService *billingapp.InvoiceService,
	paymentService *billingapp.PaymentService,
	receiptService *billingapp.ReceiptService,
) *BillingHandler {
	return &BillingHandler{
		invoiceService: invoiceService,
		paymentService: paymentService,
		receiptService: receiptService,
	}
}

// ComboChoicesRequest carries the confirmed combo components
type ComboChoicesRequest struct {
	Choices []billing.ComboChoice `json:"choices" binding:"required,min=1"`
}

// RegisterRoutes registers billing routes
func (h *BillingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	visits := rg.Group("/visits")
	{
		visits.POST("/:id/invoice", h.GenerateInvoice)
		visits.POST("/:id/invoice/combo-selection", h.ResumeAfterComboSelection)
		visits.GET("/:id/receipt", h.RenderReceipt)
	}

	rg.POST("/invoices/:id/cancel", h.CancelInvoice)
	rg.POST("/payments", h.ApplyPayment)
	rg.GET("/owners/:id/balance", h.OwnerBalance)
}

// GenerateInvoice generates and posts the invoice for a confirmed
// visit. When the visit has unresolved combo test lines, no invoice is
// created and the response carries the pending component selection.
func (h *BillingHandler) GenerateInvoice(c *gin.Context) {
	caller, ok := h.getCaller(c)
	if !ok {
		return
	}
	visitID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	outcome, err := h.invoiceService.GenerateInvoice(c.Request.Context(), caller, visitID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.respondOutcome(c, outcome)
}

// CancelInvoice voids an unpaid invoice, unblocking visit cancellation
func (h *BillingHandler) CancelInvoice(c *gin.Context) {
	caller, ok := h.getCaller(c)
	if !ok {
		return
	}
	invoiceID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	inv, err := h.invoiceService.CancelInvoice(c.Request.Context(), caller, invoiceID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toInvoiceResponse(inv))
}

// ResumeAfterComboSelection completes invoice generation with the
// chosen combo components
func (h *BillingHandler) ResumeAfterComboSelection(c *gin.Context) {
	caller, ok := h.getCaller(c)
	if !ok {
		return
	}
	visitID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req ComboChoicesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	outcome, err := h.invoiceService.ResumeAfterComboSelection(c.Request.Context(), caller, visitID, req.Choices)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.respondOutcome(c, outcome)
}

func (h *BillingHandler) respondOutcome(c *gin.Context, outcome billing.InvoiceOutcome) {
	if outcome.Status == billing.OutcomeReady {
		h.Success(c, InvoiceOutcomeResponse{
			Status:  string(outcome.Status),
			Invoice: toInvoiceResponsePtr(outcome.Invoice),
		})
		return
	}
	// 202: the invoice is pending on the component selection
	c.JSON(http.StatusAccepted, dto.NewSuccessResponse(InvoiceOutcomeResponse{
		Status:    string(outcome.Status),
		Selection: outcome.Selection,
	}))
}

// ApplyPayment records a payment against a visit's owner, allocating it
// across outstanding invoices oldest-first
func (h *BillingHandler) ApplyPayment(c *gin.Context) {
	caller, ok := h.getCaller(c)
	if !ok {
		return
	}

	var req billingapp.ApplyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	payment, err := h.paymentService.ApplyPayment(c.Request.Context(), caller, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, toPaymentResponse(payment))
}

// OwnerBalance returns the owner's total unpaid invoice balance
func (h *BillingHandler) OwnerBalance(c *gin.Context) {
	ownerID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	balance, err := h.paymentService.OwnerUnpaidBalance(c.Request.Context(), ownerID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, OwnerBalanceResponse{OwnerID: ownerID, Balance: balance})
}

// RenderReceipt renders the printable receipt for a visit
func (h *BillingHandler) RenderReceipt(c *gin.Context) {
	caller, ok := h.getCaller(c)
	if !ok {
		return
	}
	visitID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	html, err := h.receiptService.RenderVisitReceipt(c.Request.Context(), caller, visitID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", html)
}

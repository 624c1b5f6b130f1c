// internal/interfaces/http/handlers/invoice.go
package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/hardware-admin/internal/domain/invoice"
)

// InvoiceHandler handles invoice-related endpoints
type InvoiceHandler struct {
	invoiceService *invoice.Service
	logger         *logrus.Logger
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(invoiceService *invoice.Service, logger *logrus.Logger) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
		logger:         logger,
	}
}

// GenerateInvoice handles GET /orders/:id/invoice
func (h *InvoiceHandler) GenerateInvoice(c *gin.Context) {
	orderID, ok := parseIDParam(c, "id", "order")
	if !ok {
		return
	}

	doc, err := h.invoiceService.GeneratePDF(actorFromContext(c), orderID)
	if err != nil {
		respondError(c, h.logger, err, "Failed to generate invoice")
		return
	}

	// Set headers for PDF download
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", doc.Filename))
	c.Header("Content-Length", strconv.Itoa(doc.Content.Len()))

	c.Data(http.StatusOK, "application/pdf", doc.Content.Bytes())
}

// GetInvoiceData handles GET /orders/:id/invoice/data (for print preview)
func (h *InvoiceHandler) GetInvoiceData(c *gin.Context) {
	orderID, ok := parseIDParam(c, "id", "order")
	if !ok {
		return
	}

	data, err := h.invoiceService.GetInvoiceData(actorFromContext(c), orderID)
	if err != nil {
		respondError(c, h.logger, err, "Failed to retrieve invoice data")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Invoice data retrieved successfully",
		"data":    data,
	})
}

// EmailInvoice handles POST /orders/:id/invoice/email. The email is sent in the
// background, so success means it was queued.
func (h *InvoiceHandler) EmailInvoice(c *gin.Context) {
	orderID, ok := parseIDParam(c, "id", "order")
	if !ok {
		return
	}

	var req invoice.EmailRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
	}

	recipient, err := h.invoiceService.EmailInvoice(actorFromContext(c), orderID, &req)
	if err != nil {
		respondError(c, h.logger, err, "Failed to queue invoice email")
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"message": "Invoice email queued",
		"data": gin.H{
			"email": recipient,
		},
	})
}

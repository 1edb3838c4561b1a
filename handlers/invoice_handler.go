package handlers

import (
	"context"
	"net/http"
	"time"

	"petstock-backend/models"
	"petstock-backend/stores"

	"github.com/gin-gonic/gin"
)

func invoiceStoreFor(c *gin.Context, registry *stores.Registry, force bool) (*stores.BusinessStores, bool) {
	businessID, ok := businessFrom(c)
	if !ok {
		return nil, false
	}

	bs := registry.For(businessID)
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()
	if err := bs.Invoices.Load(ctx, force); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al cargar facturas"})
		return nil, false
	}
	return bs, true
}

// GetInvoicesHandler lista facturas con búsqueda y rango de fechas
// (YYYY-MM-DD) sobre la fecha de emisión.
func GetInvoicesHandler(registry *stores.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		bs, ok := invoiceStoreFor(c, registry, c.Query("refresh") == "true")
		if !ok {
			return
		}

		var from, to *time.Time
		if v := c.Query("from"); v != "" {
			if parsed, err := time.Parse("2006-01-02", v); err == nil {
				from = &parsed
			}
		}
		if v := c.Query("to"); v != "" {
			if parsed, err := time.Parse("2006-01-02", v); err == nil {
				// Rango inclusivo hasta el final del día
				end := parsed.Add(24*time.Hour - time.Nanosecond)
				to = &end
			}
		}

		invoices := bs.Invoices.Filtered(c.Query("search"), from, to)
		if invoices == nil {
			invoices = []models.PurchaseInvoice{}
		}
		c.JSON(http.StatusOK, invoices)
	}
}

// CreateInvoiceHandler registra una factura de compra. Si viene marcada
// a pagar, origina la deuda con el proveedor en el mismo paso.
func CreateInvoiceHandler(registry *stores.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		bs, ok := invoiceStoreFor(c, registry, false)
		if !ok {
			return
		}

		var input struct {
			stores.CreateInvoiceInput
			OnCredit bool `json:"onCredit"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Datos inválidos"})
			return
		}
		userID, userName := userFrom(c)
		input.CreatedBy = userID

		ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
		defer cancel()

		invoice, err := bs.Invoices.Create(ctx, input.CreateInvoiceInput)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No se pudo registrar la factura"})
			return
		}

		// Factura a pagar: nace la deuda con el proveedor
		if input.OnCredit {
			debt, err := bs.Debts.Create(ctx, stores.CreateDebtInput{
				CounterpartyType: models.CounterpartySupplier,
				CounterpartyID:   invoice.SupplierID,
				CounterpartyName: invoice.SupplierName,
				OriginalAmount:   invoice.Total,
				OriginType:       models.OriginPurchaseInvoice,
				OriginID:         invoice.ID.Hex(),
				Description:      "Factura " + invoice.Number,
				DueDate:          &invoice.DueDate,
				CreatedBy:        userID,
				CreatedByName:    userName,
			})
			if err != nil {
				// La factura quedó registrada; se avisa que la deuda no
				c.JSON(http.StatusCreated, gin.H{
					"invoice": invoice,
					"warning": "La factura se registró pero no se pudo generar la deuda",
				})
				return
			}
			if err := bs.Invoices.LinkDebt(ctx, invoice.ID, debt.ID.Hex()); err == nil {
				invoice.DebtID = debt.ID.Hex()
			}
			c.JSON(http.StatusCreated, gin.H{"invoice": invoice, "debt": debt})
			return
		}

		c.JSON(http.StatusCreated, invoice)
	}
}

func UpdateInvoiceHandler(registry *stores.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		bs, ok := invoiceStoreFor(c, registry, false)
		if !ok {
			return
		}

		var input stores.UpdateInvoiceInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Datos inválidos"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		invoice, err := bs.Invoices.Update(ctx, c.Param("id"), input)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No se pudo actualizar la factura"})
			return
		}
		c.JSON(http.StatusOK, invoice)
	}
}

func DeleteInvoiceHandler(registry *stores.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		bs, ok := invoiceStoreFor(c, registry, false)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		if err := bs.Invoices.Delete(ctx, c.Param("id")); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No se pudo eliminar la factura"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Factura eliminada"})
	}
}

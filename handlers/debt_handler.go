package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"petstock-backend/models"
	"petstock-backend/stores"
	"petstock-backend/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func businessFrom(c *gin.Context) (primitive.ObjectID, bool) {
	v, exists := c.Get("businessId")
	if !exists {
		c.JSON(http.StatusConflict, gin.H{"error": "Ningún negocio seleccionado"})
		return primitive.NilObjectID, false
	}
	return v.(primitive.ObjectID), true
}

func userFrom(c *gin.Context) (string, string) {
	id, _ := c.Get("userId")
	name, _ := c.Get("username")
	idStr, _ := id.(string)
	nameStr, _ := name.(string)
	return idStr, nameStr
}

// debtStoreFor trae el store de deudas del negocio activo, recargando el
// listado si está vencido. El store solo avisa; recargar es decisión
// de esta capa.
func debtStoreFor(c *gin.Context, registry *stores.Registry) (*stores.DebtStore, bool) {
	businessID, ok := businessFrom(c)
	if !ok {
		return nil, false
	}

	store := registry.For(businessID).Debts
	if store.NeedsRefresh() {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()
		if err := store.Load(ctx); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al cargar deudas"})
			return nil, false
		}
	}
	return store, true
}

func debtStatusCode(err error) int {
	switch {
	case errors.Is(err, stores.ErrDebtNotFound):
		return http.StatusNotFound
	case errors.Is(err, stores.ErrDebtNotActive),
		errors.Is(err, stores.ErrMissingReason),
		errors.Is(err, stores.ErrInvalidInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// GetDebtsHandler lista las deudas del negocio, las más nuevas primero.
func GetDebtsHandler(registry *stores.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		store, ok := debtStoreFor(c, registry)
		if !ok {
			return
		}

		debts := store.Debts()
		if status := c.Query("status"); status == "active" {
			debts = store.ActiveDebts()
		}
		if counterparty := c.Query("counterparty"); counterparty != "" {
			debts = store.ActiveByCounterparty(counterparty)
		}

		if debts == nil {
			debts = []models.Debt{}
		}
		c.JSON(http.StatusOK, debts)
	}
}

// CreateDebtHandler registra una deuda manual o derivada de una venta o
// factura.
func CreateDebtHandler(registry *stores.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		store, ok := debtStoreFor(c, registry)
		if !ok {
			return
		}

		var input stores.CreateDebtInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Datos inválidos"})
			return
		}
		input.CreatedBy, input.CreatedByName = userFrom(c)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		debt, err := store.Create(ctx, input)
		if err != nil {
			c.JSON(debtStatusCode(err), gin.H{"error": "No se pudo registrar la deuda"})
			return
		}
		c.JSON(http.StatusCreated, debt)
	}
}

// CancelDebtHandler anula una deuda activa con su motivo.
func CancelDebtHandler(registry *stores.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		store, ok := debtStoreFor(c, registry)
		if !ok {
			return
		}

		var input struct {
			Reason string `json:"reason"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Datos inválidos"})
			return
		}

		userID, _ := userFrom(c)
		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		debt, err := store.Cancel(ctx, c.Param("id"), input.Reason, userID)
		if err != nil {
			c.JSON(debtStatusCode(err), gin.H{"error": cancelErrorMessage(err)})
			return
		}
		c.JSON(http.StatusOK, debt)
	}
}

func cancelErrorMessage(err error) string {
	switch {
	case errors.Is(err, stores.ErrDebtNotActive):
		return "Solo se pueden cancelar deudas activas"
	case errors.Is(err, stores.ErrDebtNotFound):
		return "Deuda no encontrada"
	case errors.Is(err, stores.ErrMissingReason):
		return "Debe indicar el motivo de la cancelación"
	default:
		return "No se pudo cancelar la deuda"
	}
}

// CloseDebtHandler salda una deuda activa de forma manual y completa.
func CloseDebtHandler(registry *stores.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		store, ok := debtStoreFor(c, registry)
		if !ok {
			return
		}

		var input struct {
			Reason string `json:"reason"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Datos inválidos"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		debt, err := store.Close(ctx, c.Param("id"), input.Reason)
		if err != nil {
			c.JSON(debtStatusCode(err), gin.H{"error": closeErrorMessage(err)})
			return
		}
		c.JSON(http.StatusOK, debt)
	}
}

func closeErrorMessage(err error) string {
	switch {
	case errors.Is(err, stores.ErrDebtNotActive):
		return "Solo se pueden saldar deudas activas"
	case errors.Is(err, stores.ErrDebtNotFound):
		return "Deuda no encontrada"
	case errors.Is(err, stores.ErrMissingReason):
		return "Debe indicar el motivo del saldado"
	default:
		return "No se pudo saldar la deuda"
	}
}

// DebtSummaryHandler devuelve el agregado para el panel, con los saldos
// ya formateados para mostrar.
func DebtSummaryHandler(registry *stores.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		store, ok := debtStoreFor(c, registry)
		if !ok {
			return
		}
		summary := store.Summary()
		c.JSON(http.StatusOK, gin.H{
			"summary":                summary,
			"customerRemainingLabel": utils.FormatCurrency(summary.CustomerRemaining),
			"supplierRemainingLabel": utils.FormatCurrency(summary.SupplierRemaining),
		})
	}
}

// DebtsBySnapshotHandler trae las deudas vinculadas a un cierre de caja,
// cacheadas por clave de cierre.
func DebtsBySnapshotHandler(registry *stores.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		businessID, ok := businessFrom(c)
		if !ok {
			return
		}
		store := registry.For(businessID).Debts

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		debts, fromCache, err := store.LoadDebtsForSnapshot(ctx, c.Param("snapshotId"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al cargar deudas del cierre"})
			return
		}
		if debts == nil {
			debts = []models.Debt{}
		}
		c.JSON(http.StatusOK, gin.H{"debts": debts, "fromCache": fromCache})
	}
}

// InvalidateSnapshotCacheHandler limpia el cache de un cierre puntual.
func InvalidateSnapshotCacheHandler(registry *stores.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		businessID, ok := businessFrom(c)
		if !ok {
			return
		}
		registry.For(businessID).Debts.ClearSnapshotCache(c.Param("snapshotId"))
		c.JSON(http.StatusOK, gin.H{"message": "Cache del cierre invalidado"})
	}
}

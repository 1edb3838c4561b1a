package handlers

import (
	"context"
	"net/http"
	"time"

	"petstock-backend/models"
	"petstock-backend/stores"

	"github.com/gin-gonic/gin"
)

func supplierStoreFor(c *gin.Context, registry *stores.Registry, force bool) (*stores.SupplierStore, bool) {
	businessID, ok := businessFrom(c)
	if !ok {
		return nil, false
	}

	store := registry.For(businessID).Suppliers
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()
	if err := store.Load(ctx, force); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al cargar proveedores"})
		return nil, false
	}
	return store, true
}

// GetSuppliersHandler lista proveedores con búsqueda y filtro
// activos/archivados/todos.
func GetSuppliersHandler(registry *stores.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		force := c.Query("refresh") == "true"
		store, ok := supplierStoreFor(c, registry, force)
		if !ok {
			return
		}

		filter := models.SupplierFilter(c.DefaultQuery("filter", string(models.SupplierFilterActive)))
		suppliers := store.Filtered(c.Query("search"), filter)
		if suppliers == nil {
			suppliers = []models.Supplier{}
		}
		c.JSON(http.StatusOK, suppliers)
	}
}

func CreateSupplierHandler(registry *stores.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		store, ok := supplierStoreFor(c, registry, false)
		if !ok {
			return
		}

		var input stores.CreateSupplierInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Datos inválidos"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		supplier, err := store.Create(ctx, input)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No se pudo crear el proveedor"})
			return
		}
		c.JSON(http.StatusCreated, supplier)
	}
}

func UpdateSupplierHandler(registry *stores.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		store, ok := supplierStoreFor(c, registry, false)
		if !ok {
			return
		}

		var input struct {
			Name    *string `json:"name"`
			Contact *string `json:"contact"`
			Email   *string `json:"email"`
			Phone   *string `json:"phone"`
			CUIT    *string `json:"cuit"`
			Address *string `json:"address"`
			Notes   *string `json:"notes"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Datos inválidos"})
			return
		}

		patch := models.SupplierPatch{
			Name:    input.Name,
			Contact: input.Contact,
			Email:   input.Email,
			Phone:   input.Phone,
			CUIT:    input.CUIT,
			Address: input.Address,
			Notes:   input.Notes,
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		supplier, err := store.Update(ctx, c.Param("id"), patch)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No se pudo actualizar el proveedor"})
			return
		}
		c.JSON(http.StatusOK, supplier)
	}
}

func ArchiveSupplierHandler(registry *stores.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		store, ok := supplierStoreFor(c, registry, false)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		if err := store.Archive(ctx, c.Param("id")); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No se pudo archivar el proveedor"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Proveedor archivado"})
	}
}

func RestoreSupplierHandler(registry *stores.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		store, ok := supplierStoreFor(c, registry, false)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		if err := store.Restore(ctx, c.Param("id")); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No se pudo restaurar el proveedor"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Proveedor restaurado"})
	}
}

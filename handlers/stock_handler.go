package handlers

import (
	"context"
	"net/http"
	"time"

	"petstock-backend/database"
	"petstock-backend/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// InitializeCatalog puebla el catálogo base si está vacío.
func InitializeCatalog() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	count, err := database.CatalogCollection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return err
	}

	if count == 0 {
		defaultProducts := models.GetDefaultProducts()
		var documents []interface{}
		for _, p := range defaultProducts {
			// Los ítems del catálogo no pertenecen a ningún negocio
			p.ID = primitive.NewObjectID()
			documents = append(documents, p)
		}

		if len(documents) > 0 {
			_, err := database.CatalogCollection.InsertMany(ctx, documents)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// GetStockHandler devuelve el stock del negocio activo. La primera
// consulta de un negocio nuevo le copia el catálogo base en cero.
func GetStockHandler(c *gin.Context) {
	businessID, ok := businessFrom(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cursor, err := database.StockCollection.Find(ctx, bson.M{"businessId": businessID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al obtener stock"})
		return
	}

	var products []models.Product
	if err = cursor.All(ctx, &products); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al decodificar productos"})
		return
	}

	// Negocio sin productos: se inicializa desde el catálogo
	if len(products) == 0 {
		catalogCursor, err := database.CatalogCollection.Find(ctx, bson.M{})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al obtener catálogo"})
			return
		}
		defer catalogCursor.Close(ctx)

		var catalogItems []models.Product
		if err = catalogCursor.All(ctx, &catalogItems); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al leer catálogo"})
			return
		}

		var documents []interface{}

		for _, p := range catalogItems {
			p.ID = primitive.NewObjectID()
			p.BusinessID = businessID
			p.Stock = 0 // Arranca sin existencias
			documents = append(documents, p)
			products = append(products, p)
		}

		if len(documents) > 0 {
			_, err := database.StockCollection.InsertMany(ctx, documents)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al inicializar productos"})
				return
			}
		}
	}

	c.JSON(http.StatusOK, products)
}

// UpdateProductHandler actualiza stock, unidad de medida o estado de carga.
func UpdateProductHandler(c *gin.Context) {
	idStr := c.Param("id")
	objID, err := primitive.ObjectIDFromHex(idStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID de producto inválido"})
		return
	}

	businessID, ok := businessFrom(c)
	if !ok {
		return
	}

	var input struct {
		Stock       *float64            `json:"stock"`
		Measurement *models.Measurement `json:"measurement"`
		Loaded      *bool               `json:"loaded"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Datos inválidos"})
		return
	}

	update := bson.M{}
	if input.Stock != nil {
		update["stock"] = *input.Stock
	}
	if input.Measurement != nil {
		update["measurement"] = *input.Measurement
	}
	if input.Loaded != nil {
		update["loaded"] = *input.Loaded
	}

	if len(update) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No se enviaron datos para actualizar"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := database.StockCollection.UpdateOne(
		ctx,
		bson.M{"_id": objID, "businessId": businessID},
		bson.M{"$set": update},
	)

	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al actualizar producto"})
		return
	}

	if result.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Producto no encontrado o no pertenece al negocio"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Producto actualizado correctamente"})
}

// CreateProductHandler da de alta un producto propio del negocio.
func CreateProductHandler(c *gin.Context) {
	businessID, ok := businessFrom(c)
	if !ok {
		return
	}

	var product models.Product
	if err := c.ShouldBindJSON(&product); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Datos inválidos"})
		return
	}

	product.BusinessID = businessID
	product.ID = primitive.NewObjectID()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := database.StockCollection.InsertOne(ctx, product)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al crear producto"})
		return
	}

	c.JSON(http.StatusCreated, product)
}

package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"petstock-backend/database"
	"petstock-backend/models"
	"petstock-backend/stores"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Escrituras de ventas detrás de funciones para poder probar la
// coordinación venta+deuda sin Mongo levantado.
type saleWriter func(ctx context.Context, sale models.Sale) error
type saleDebtLinker func(ctx context.Context, saleID primitive.ObjectID, debtID string) error

func insertSale(ctx context.Context, sale models.Sale) error {
	_, err := database.SaleCollection.InsertOne(ctx, sale)
	return err
}

func linkSaleDebt(ctx context.Context, saleID primitive.ObjectID, debtID string) error {
	_, err := database.SaleCollection.UpdateOne(ctx,
		bson.M{"_id": saleID},
		bson.M{"$set": bson.M{"debtId": debtID}},
	)
	return err
}

// CreateSaleHandler registra una venta. Una venta fiada además origina
// la deuda del cliente en el libro de deudas.
func CreateSaleHandler(registry *stores.Registry) gin.HandlerFunc {
	return createSaleHandler(registry, insertSale, linkSaleDebt)
}

func createSaleHandler(registry *stores.Registry, insert saleWriter, link saleDebtLinker) gin.HandlerFunc {
	return func(c *gin.Context) {
		businessID, ok := businessFrom(c)
		if !ok {
			return
		}
		userIDStr, userName := userFrom(c)
		userID, _ := primitive.ObjectIDFromHex(userIDStr)

		var input struct {
			Amount     float64         `json:"amount"`
			Type       models.SaleType `json:"type"`
			Comments   string          `json:"comments"`
			ClientID   string          `json:"clientId"`
			ClientName string          `json:"clientName"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Datos inválidos"})
			return
		}

		if input.Type == models.SaleTypeFiado && (input.ClientID == "" || input.ClientName == "") {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Una venta fiada necesita los datos del cliente"})
			return
		}

		sale := models.Sale{
			ID:         primitive.NewObjectID(),
			BusinessID: businessID,
			UserID:     userID,
			Amount:     input.Amount,
			Date:       time.Now(),
			Type:       input.Type,
			Comments:   input.Comments,
			ClientID:   input.ClientID,
			ClientName: input.ClientName,
			Modified:   false,
			IsClosed:   false,
			History:    []models.FieldChange{},
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		// La venta primero: si no se puede registrar, no nace ninguna deuda
		if err := insert(ctx, sale); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al registrar venta"})
			return
		}

		if input.Type != models.SaleTypeFiado {
			c.JSON(http.StatusCreated, sale)
			return
		}

		debt, err := registry.For(businessID).Debts.Create(ctx, stores.CreateDebtInput{
			CounterpartyType: models.CounterpartyCustomer,
			CounterpartyID:   input.ClientID,
			CounterpartyName: input.ClientName,
			OriginalAmount:   input.Amount,
			OriginType:       models.OriginSale,
			OriginID:         sale.ID.Hex(),
			Description:      "Venta fiada",
			CreatedBy:        userIDStr,
			CreatedByName:    userName,
		})
		if err != nil {
			// La venta quedó registrada; se avisa que la deuda no
			c.JSON(http.StatusCreated, gin.H{
				"sale":    sale,
				"warning": "La venta se registró pero no se pudo generar la deuda",
			})
			return
		}

		if err := link(ctx, sale.ID, debt.ID.Hex()); err == nil {
			sale.DebtID = debt.ID.Hex()
		}

		c.JSON(http.StatusCreated, gin.H{"sale": sale, "debt": debt})
	}
}

// GetSalesHandler lista ventas abiertas o cerradas, con día opcional.
func GetSalesHandler(c *gin.Context) {
	businessID, ok := businessFrom(c)
	if !ok {
		return
	}

	status := c.Query("status") // "open" o "closed"
	dateParam := c.Query("date")

	filter := bson.M{"businessId": businessID}

	if status == "open" {
		filter["isClosed"] = false
	} else if status == "closed" {
		filter["isClosed"] = true
	}

	if dateParam != "" {
		// Se espera YYYY-MM-DD
		parsedDate, err := time.Parse("2006-01-02", dateParam)
		if err == nil {
			nextDay := parsedDate.Add(24 * time.Hour)
			filter["date"] = bson.M{
				"$gte": parsedDate,
				"$lt":  nextDay,
			}
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := database.SaleCollection.Find(ctx, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al obtener ventas"})
		return
	}
	defer cursor.Close(ctx)

	var sales []models.Sale
	if err := cursor.All(ctx, &sales); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al procesar ventas"})
		return
	}
	if sales == nil {
		sales = []models.Sale{}
	}

	c.JSON(http.StatusOK, sales)
}

// UpdateSaleHandler modifica una venta mientras su caja siga abierta,
// dejando rastro de cada campo tocado.
func UpdateSaleHandler(c *gin.Context) {
	idStr := c.Param("id")
	objID, err := primitive.ObjectIDFromHex(idStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID inválido"})
		return
	}

	businessID, ok := businessFrom(c)
	if !ok {
		return
	}

	var input struct {
		Amount   *float64         `json:"amount"`
		Type     *models.SaleType `json:"type"`
		Comments *string          `json:"comments"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		log.Printf("Error binding JSON: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Datos inválidos: " + err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var existingSale models.Sale
	err = database.SaleCollection.FindOne(ctx, bson.M{"_id": objID, "businessId": businessID}).Decode(&existingSale)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Venta no encontrada"})
		return
	}

	if existingSale.IsClosed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No se puede modificar una venta de una caja cerrada"})
		return
	}

	var newHistory []models.FieldChange
	isModified := false
	now := time.Now()

	updateFields := bson.M{}

	if input.Amount != nil && *input.Amount != existingSale.Amount {
		newHistory = append(newHistory, models.FieldChange{
			Date:     now,
			Field:    "amount",
			OldValue: existingSale.Amount,
			NewValue: *input.Amount,
		})
		updateFields["amount"] = *input.Amount
		isModified = true
	}

	if input.Type != nil && *input.Type != existingSale.Type {
		newHistory = append(newHistory, models.FieldChange{
			Date:     now,
			Field:    "type",
			OldValue: existingSale.Type,
			NewValue: *input.Type,
		})
		updateFields["type"] = *input.Type
		isModified = true
	}

	if input.Comments != nil && *input.Comments != existingSale.Comments {
		newHistory = append(newHistory, models.FieldChange{
			Date:     now,
			Field:    "comments",
			OldValue: existingSale.Comments,
			NewValue: *input.Comments,
		})
		updateFields["comments"] = *input.Comments
		isModified = true
	}

	if !isModified {
		c.JSON(http.StatusOK, existingSale) // Sin cambios
		return
	}

	updateFields["modified"] = true

	updateQuery := bson.M{
		"$set": updateFields,
	}
	if len(newHistory) > 0 {
		updateQuery["$push"] = bson.M{
			"history": bson.M{"$each": newHistory},
		}
	}

	_, err = database.SaleCollection.UpdateOne(ctx, bson.M{"_id": objID}, updateQuery)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al actualizar venta"})
		return
	}

	var updatedSale models.Sale
	err = database.SaleCollection.FindOne(ctx, bson.M{"_id": objID}).Decode(&updatedSale)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"message": "Venta actualizada", "warning": "No se pudo recuperar la venta actualizada"})
		return
	}

	c.JSON(http.StatusOK, updatedSale)
}

// CloseBoxHandler cierra la caja del día: crea el cierre con los totales
// por medio de pago y marca las ventas abiertas como cerradas.
func CloseBoxHandler(c *gin.Context) {
	businessID, ok := businessFrom(c)
	if !ok {
		return
	}
	userIDStr, _ := userFrom(c)

	var input struct {
		RegisterName string `json:"registerName"`
	}
	// El nombre de caja es opcional; sin body también vale
	c.ShouldBindJSON(&input)
	if input.RegisterName == "" {
		input.RegisterName = "Caja principal"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// 1. Juntar las ventas abiertas para armar los totales del cierre
	cursor, err := database.SaleCollection.Find(ctx, bson.M{
		"businessId": businessID,
		"isClosed":   false,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al cerrar caja"})
		return
	}
	defer cursor.Close(ctx)

	var open []models.Sale
	if err := cursor.All(ctx, &open); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al procesar ventas"})
		return
	}

	if len(open) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No hay ventas abiertas para cerrar"})
		return
	}

	totals := map[models.SaleType]float64{}
	var total float64
	for _, s := range open {
		totals[s.Type] += s.Amount
		total += s.Amount
	}

	snapshot := models.CashSnapshot{
		ID:           primitive.NewObjectID(),
		BusinessID:   businessID,
		RegisterName: input.RegisterName,
		Date:         time.Now(),
		Totals:       totals,
		Total:        total,
		SaleCount:    len(open),
		ClosedBy:     userIDStr,
		ClosedAt:     time.Now(),
	}

	if _, err := database.SnapshotCollection.InsertOne(ctx, snapshot); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al registrar el cierre"})
		return
	}

	// 2. Sellar las ventas abiertas contra el cierre recién creado
	result, err := database.SaleCollection.UpdateMany(ctx,
		bson.M{"businessId": businessID, "isClosed": false},
		bson.M{"$set": bson.M{"isClosed": true, "snapshotId": snapshot.ID.Hex()}},
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al cerrar caja"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":       "Caja cerrada exitosamente",
		"snapshot":      snapshot,
		"closedDetails": result.ModifiedCount,
	})
}

package handlers

import (
	"context"
	"net/http"
	"time"

	"petstock-backend/database"
	"petstock-backend/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Estructura para devolver los días pendientes de cierre
type PendingBox struct {
	Date        time.Time     `json:"date"`
	TotalAmount float64       `json:"totalAmount"`
	Count       int           `json:"count"`
	Sales       []models.Sale `json:"sales"`
}

// CheckPendingBoxesHandler detecta días anteriores con ventas abiertas
// que nunca pasaron por el cierre de caja.
func CheckPendingBoxesHandler(c *gin.Context) {
	businessID, ok := businessFrom(c)
	if !ok {
		return
	}

	// 1. Calcular el inicio del día de HOY (00:00:00)
	loc := time.FixedZone("ART", -3*60*60)
	now := time.Now().In(loc)
	startOfToday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// 2. Pipeline de Agregación
	// Buscamos: Ventas del negocio + No Cerradas + Fecha < Hoy
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{
			{Key: "businessId", Value: businessID},
			{Key: "isClosed", Value: false},
			{Key: "date", Value: bson.D{{Key: "$lt", Value: startOfToday}}},
		}}},
		// Agrupamos por día (año-mes-día) para detectar cajas separadas
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{
				{Key: "year", Value: bson.D{{Key: "$year", Value: "$date"}}},
				{Key: "month", Value: bson.D{{Key: "$month", Value: "$date"}}},
				{Key: "day", Value: bson.D{{Key: "$dayOfMonth", Value: "$date"}}},
			}},
			{Key: "totalAmount", Value: bson.D{{Key: "$sum", Value: "$amount"}}},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "date", Value: bson.D{{Key: "$first", Value: "$date"}}},
			{Key: "sales", Value: bson.D{{Key: "$push", Value: "$$ROOT"}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "date", Value: 1}}}}, // Las más viejas primero
	}

	cursor, err := database.SaleCollection.Aggregate(ctx, pipeline)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error buscando cajas pendientes"})
		return
	}
	defer cursor.Close(ctx)

	var results []PendingBox
	for cursor.Next(ctx) {
		var item struct {
			Date        time.Time     `bson:"date"`
			TotalAmount float64       `bson:"totalAmount"`
			Count       int           `bson:"count"`
			Sales       []models.Sale `bson:"sales"`
		}
		if err := cursor.Decode(&item); err == nil {
			results = append(results, PendingBox{
				Date:        item.Date,
				TotalAmount: item.TotalAmount,
				Count:       item.Count,
				Sales:       item.Sales,
			})
		}
	}
	if results == nil {
		results = []PendingBox{}
	}

	c.JSON(http.StatusOK, results)
}

// GetSnapshotsHandler lista los cierres de caja del negocio, el más
// reciente primero. Acepta ?from y ?to en formato YYYY-MM-DD.
func GetSnapshotsHandler(c *gin.Context) {
	businessID, ok := businessFrom(c)
	if !ok {
		return
	}

	filter := bson.M{"businessId": businessID}

	dateRange := bson.M{}
	if from := c.Query("from"); from != "" {
		if parsed, err := time.Parse("2006-01-02", from); err == nil {
			dateRange["$gte"] = parsed
		}
	}
	if to := c.Query("to"); to != "" {
		if parsed, err := time.Parse("2006-01-02", to); err == nil {
			dateRange["$lt"] = parsed.Add(24 * time.Hour)
		}
	}
	if len(dateRange) > 0 {
		filter["date"] = dateRange
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.M{"date": -1})
	cursor, err := database.SnapshotCollection.Find(ctx, filter, opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al obtener cierres"})
		return
	}
	defer cursor.Close(ctx)

	var snapshots []models.CashSnapshot
	if err := cursor.All(ctx, &snapshots); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al procesar cierres"})
		return
	}
	if snapshots == nil {
		snapshots = []models.CashSnapshot{}
	}

	c.JSON(http.StatusOK, snapshots)
}

package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CashSnapshot es el cierre de caja del día: totales por medio de pago
// y la foto contra la que se pueden vincular deudas de clientes.
type CashSnapshot struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	BusinessID   primitive.ObjectID `bson:"businessId" json:"businessId"`
	RegisterName string             `bson:"registerName" json:"registerName"`
	Date         time.Time          `bson:"date" json:"date"`

	Totals    map[SaleType]float64 `bson:"totals" json:"totals"`
	Total     float64              `bson:"total" json:"total"`
	SaleCount int                  `bson:"saleCount" json:"saleCount"`

	ClosedBy string    `bson:"closedBy" json:"closedBy"`
	ClosedAt time.Time `bson:"closedAt" json:"closedAt"`
}

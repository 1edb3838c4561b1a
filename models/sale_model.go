package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SaleType string

const (
	SaleTypeCash     SaleType = "Efectivo"
	SaleTypeCredit   SaleType = "Crédito"
	SaleTypeDebit    SaleType = "Débito"
	SaleTypeTransfer SaleType = "Transferencia"
	SaleTypeFiado    SaleType = "Fiado" // venta a crédito del cliente, genera deuda
)

type Sale struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	BusinessID primitive.ObjectID `bson:"businessId" json:"businessId"`
	UserID     primitive.ObjectID `bson:"userId" json:"userId"`

	Amount   float64   `bson:"amount" json:"amount"`
	Date     time.Time `bson:"date" json:"date"`
	Type     SaleType  `bson:"type" json:"type"`
	Comments string    `bson:"comments,omitempty" json:"comments,omitempty"`

	// Datos del cliente para ventas fiadas
	ClientID   string `bson:"clientId,omitempty" json:"clientId,omitempty"`
	ClientName string `bson:"clientName,omitempty" json:"clientName,omitempty"`
	DebtID     string `bson:"debtId,omitempty" json:"debtId,omitempty"`

	Modified bool          `bson:"modified" json:"modified"`
	History  []FieldChange `bson:"history,omitempty" json:"history,omitempty"`

	IsClosed   bool   `bson:"isClosed" json:"isClosed"`
	SnapshotID string `bson:"snapshotId,omitempty" json:"snapshotId,omitempty"`
}

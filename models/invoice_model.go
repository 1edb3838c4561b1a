package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FieldChange registra una modificación de campo sobre un documento
// (facturas y ventas comparten el mismo historial de cambios).
type FieldChange struct {
	Date     time.Time   `bson:"date" json:"date"`
	Field    string      `bson:"field" json:"field"`
	OldValue interface{} `bson:"oldValue" json:"oldValue"`
	NewValue interface{} `bson:"newValue" json:"newValue"`
}

type PurchaseInvoice struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	BusinessID primitive.ObjectID `bson:"businessId" json:"businessId"`

	SupplierID   string `bson:"supplierId" json:"supplierId"`
	SupplierName string `bson:"supplierName" json:"supplierName"`

	Number    string    `bson:"number" json:"number"`
	IssueDate time.Time `bson:"issueDate" json:"issueDate"`
	DueDate   time.Time `bson:"dueDate" json:"dueDate"`
	Total     float64   `bson:"total" json:"total"`
	Notes     string    `bson:"notes,omitempty" json:"notes,omitempty"`

	// Si la factura quedó a pagar, referencia a la deuda generada
	DebtID string `bson:"debtId,omitempty" json:"debtId,omitempty"`

	Modified bool          `bson:"modified" json:"modified"`
	History  []FieldChange `bson:"history,omitempty" json:"history,omitempty"`

	CreatedBy string    `bson:"createdBy" json:"createdBy"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

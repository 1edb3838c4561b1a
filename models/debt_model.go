package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type DebtStatus string

const (
	DebtActive    DebtStatus = "active"
	DebtPaid      DebtStatus = "paid"
	DebtCancelled DebtStatus = "cancelled"
)

type DebtOrigin string

const (
	OriginSale            DebtOrigin = "sale"
	OriginPurchaseInvoice DebtOrigin = "purchaseInvoice"
	OriginManual          DebtOrigin = "manual"
)

type CounterpartyType string

const (
	CounterpartyCustomer CounterpartyType = "customer"
	CounterpartySupplier CounterpartyType = "supplier"
)

// Debt representa una deuda entre el negocio y exactamente una contraparte:
// un cliente O un proveedor, nunca ambos.
type Debt struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	BusinessID primitive.ObjectID `bson:"businessId" json:"businessId"`

	ClientID     string `bson:"clientId,omitempty" json:"clientId,omitempty"`
	ClientName   string `bson:"clientName,omitempty" json:"clientName,omitempty"`
	SupplierID   string `bson:"supplierId,omitempty" json:"supplierId,omitempty"`
	SupplierName string `bson:"supplierName,omitempty" json:"supplierName,omitempty"`

	OriginalAmount  float64 `bson:"originalAmount" json:"originalAmount"`
	PaidAmount      float64 `bson:"paidAmount" json:"paidAmount"`
	RemainingAmount float64 `bson:"remainingAmount" json:"remainingAmount"`

	OriginType  DebtOrigin `bson:"originType" json:"originType"`
	OriginID    string     `bson:"originId,omitempty" json:"originId,omitempty"`
	Description string     `bson:"description,omitempty" json:"description,omitempty"`

	// Vínculo opcional con el cierre de caja del día (solo deudas de clientes)
	SnapshotID   string `bson:"snapshotId,omitempty" json:"snapshotId,omitempty"`
	RegisterName string `bson:"registerName,omitempty" json:"registerName,omitempty"`

	Status  DebtStatus `bson:"status" json:"status"`
	DueDate *time.Time `bson:"dueDate,omitempty" json:"dueDate,omitempty"`
	Notes   string     `bson:"notes,omitempty" json:"notes,omitempty"`

	CreatedBy     string     `bson:"createdBy" json:"createdBy"`
	CreatedByName string     `bson:"createdByName,omitempty" json:"createdByName,omitempty"`
	CreatedAt     time.Time  `bson:"createdAt" json:"createdAt"`
	PaidAt        *time.Time `bson:"paidAt,omitempty" json:"paidAt,omitempty"`
	CancelledAt   *time.Time `bson:"cancelledAt,omitempty" json:"cancelledAt,omitempty"`
	CancelledBy   string     `bson:"cancelledBy,omitempty" json:"cancelledBy,omitempty"`
	CancelReason  string     `bson:"cancelReason,omitempty" json:"cancelReason,omitempty"`
}

// IsCustomerDebt indica si la contraparte es un cliente.
func (d *Debt) IsCustomerDebt() bool {
	return d.ClientID != ""
}

// IsSupplierDebt indica si la contraparte es un proveedor.
func (d *Debt) IsSupplierDebt() bool {
	return d.SupplierID != ""
}

// HasValidCounterparty verifica la exclusividad: exactamente un par
// cliente/proveedor cargado, nunca ambos ni ninguno.
func (d *Debt) HasValidCounterparty() bool {
	customer := d.ClientID != "" && d.ClientName != ""
	supplier := d.SupplierID != "" && d.SupplierName != ""
	return customer != supplier
}

// DebtSummary es el agregado derivado para el panel (no se persiste).
type DebtSummary struct {
	CustomerCount     int     `json:"customerCount"`
	SupplierCount     int     `json:"supplierCount"`
	CustomerRemaining float64 `json:"customerRemaining"`
	SupplierRemaining float64 `json:"supplierRemaining"`
	OldestActive      *Debt   `json:"oldestActive,omitempty"`
}

package models

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

// Parches tipados por entidad. Cada parche se valida antes de llegar al
// backend de documentos; los campos en nil no se tocan.

// DebtPatch solo admite las transiciones de ciclo de vida de una deuda.
// Una deuda nunca se edita por fuera de estas transiciones.
type DebtPatch struct {
	Status       DebtStatus
	PaidAmount   *float64
	Remaining    *float64
	Notes        *string
	PaidAt       *time.Time
	CancelledAt  *time.Time
	CancelledBy  string
	CancelReason string
}

func (p DebtPatch) Validate() error {
	switch p.Status {
	case DebtPaid:
		if p.PaidAmount == nil || p.Remaining == nil || p.PaidAt == nil {
			return errors.New("una deuda pagada requiere montos y fecha de pago")
		}
		if *p.Remaining != 0 {
			return errors.New("una deuda pagada no puede tener saldo pendiente")
		}
	case DebtCancelled:
		if p.CancelReason == "" {
			return errors.New("la cancelación requiere un motivo")
		}
		if p.CancelledAt == nil {
			return errors.New("la cancelación requiere fecha")
		}
	default:
		return errors.New("transición de deuda inválida")
	}
	return nil
}

func (p DebtPatch) Changes() bson.M {
	changes := bson.M{"status": p.Status}
	if p.PaidAmount != nil {
		changes["paidAmount"] = *p.PaidAmount
	}
	if p.Remaining != nil {
		changes["remainingAmount"] = *p.Remaining
	}
	if p.Notes != nil {
		changes["notes"] = *p.Notes
	}
	if p.PaidAt != nil {
		changes["paidAt"] = *p.PaidAt
	}
	if p.CancelledAt != nil {
		changes["cancelledAt"] = *p.CancelledAt
	}
	if p.CancelledBy != "" {
		changes["cancelledBy"] = p.CancelledBy
	}
	if p.CancelReason != "" {
		changes["cancelReason"] = p.CancelReason
	}
	return changes
}

type SupplierPatch struct {
	Name    *string
	Contact *string
	Email   *string
	Phone   *string
	CUIT    *string
	Address *string
	Notes   *string
}

func (p SupplierPatch) Validate() error {
	if p.Name != nil && *p.Name == "" {
		return errors.New("el nombre del proveedor no puede quedar vacío")
	}
	return nil
}

func (p SupplierPatch) Changes() bson.M {
	changes := bson.M{}
	set := func(key string, v *string) {
		if v != nil {
			changes[key] = *v
		}
	}
	set("name", p.Name)
	set("contact", p.Contact)
	set("email", p.Email)
	set("phone", p.Phone)
	set("cuit", p.CUIT)
	set("address", p.Address)
	set("notes", p.Notes)
	return changes
}

type InvoicePatch struct {
	Number    *string
	IssueDate *time.Time
	DueDate   *time.Time
	Total     *float64
	Notes     *string
	DebtID    *string

	// Historial completo, con los cambios nuevos ya anexados por el
	// store al existente (el backend lo escribe entero)
	History []FieldChange
}

func (p InvoicePatch) Validate() error {
	if p.Total != nil && *p.Total < 0 {
		return errors.New("el total de la factura no puede ser negativo")
	}
	if p.Number != nil && *p.Number == "" {
		return errors.New("el número de factura no puede quedar vacío")
	}
	return nil
}

func (p InvoicePatch) Changes() bson.M {
	changes := bson.M{}
	if p.Number != nil {
		changes["number"] = *p.Number
	}
	if p.IssueDate != nil {
		changes["issueDate"] = *p.IssueDate
	}
	if p.DueDate != nil {
		changes["dueDate"] = *p.DueDate
	}
	if p.Total != nil {
		changes["total"] = *p.Total
	}
	if p.Notes != nil {
		changes["notes"] = *p.Notes
	}
	if p.DebtID != nil {
		changes["debtId"] = *p.DebtID
	}
	if len(p.History) > 0 {
		changes["history"] = p.History
		changes["modified"] = true
	}
	return changes
}

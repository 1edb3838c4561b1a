package stores

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"petstock-backend/models"
	"petstock-backend/schema"
	"petstock-backend/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// InvoiceStore cachea las facturas de compra de un negocio. Una factura
// a pagar puede originar una deuda con el proveedor; esa coordinación la
// hace el handler contra el DebtStore.
type InvoiceStore struct {
	businessID primitive.ObjectID
	schema     schema.Schema
	notifier   Notifier

	mu       sync.Mutex
	invoices []models.PurchaseInvoice
	loaded   bool
}

func NewInvoiceStore(businessID primitive.ObjectID, sch schema.Schema, notifier Notifier) *InvoiceStore {
	return &InvoiceStore{businessID: businessID, schema: sch, notifier: notifier}
}

func (s *InvoiceStore) Load(ctx context.Context, force bool) error {
	s.mu.Lock()
	if s.loaded && !force {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	var invoices []models.PurchaseInvoice
	res := s.schema.Find(ctx, bson.M{"businessId": s.businessID},
		&schema.OrderBy{Field: "issueDate", Desc: true}, &invoices)
	if !res.Success {
		s.notifier.Notify(NotifyError, "No se pudieron cargar las facturas")
		return fmt.Errorf("%w: %s", ErrRemoteFailure, res.Error)
	}

	s.mu.Lock()
	s.invoices = invoices
	s.loaded = true
	s.mu.Unlock()
	return nil
}

// Filtered aplica búsqueda por subcadena (número, proveedor, notas) y un
// rango de fechas opcional sobre la fecha de emisión.
func (s *InvoiceStore) Filtered(search string, from, to *time.Time) []models.PurchaseInvoice {
	s.mu.Lock()
	defer s.mu.Unlock()

	needle := strings.ToLower(strings.TrimSpace(search))
	var out []models.PurchaseInvoice
	for _, inv := range s.invoices {
		if from != nil && inv.IssueDate.Before(*from) {
			continue
		}
		if to != nil && inv.IssueDate.After(*to) {
			continue
		}
		if needle != "" && !invoiceMatches(inv, needle) {
			continue
		}
		out = append(out, inv)
	}
	return out
}

func invoiceMatches(inv models.PurchaseInvoice, needle string) bool {
	for _, field := range []string{inv.Number, inv.SupplierName, inv.Notes} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

type CreateInvoiceInput struct {
	SupplierID   string    `json:"supplierId" validate:"required"`
	SupplierName string    `json:"supplierName" validate:"required"`
	Number       string    `json:"number" validate:"required"`
	IssueDate    time.Time `json:"issueDate" validate:"required"`
	DueDate      time.Time `json:"dueDate" validate:"required"`
	Total        float64   `json:"total" validate:"gte=0"`
	Notes        string    `json:"notes"`
	CreatedBy    string    `json:"-"`
}

func (s *InvoiceStore) Create(ctx context.Context, input CreateInvoiceInput) (*models.PurchaseInvoice, error) {
	if fails := utils.ValidateStruct(input); len(fails) > 0 {
		s.notifier.Notify(NotifyError, "Datos de la factura inválidos")
		return nil, fmt.Errorf("%w: %s (%s)", ErrInvalidInput, fails[0].Field, fails[0].Tag)
	}

	invoice := models.PurchaseInvoice{
		ID:           primitive.NewObjectID(),
		BusinessID:   s.businessID,
		SupplierID:   input.SupplierID,
		SupplierName: input.SupplierName,
		Number:       input.Number,
		IssueDate:    input.IssueDate,
		DueDate:      input.DueDate,
		Total:        input.Total,
		Notes:        input.Notes,
		History:      []models.FieldChange{},
		CreatedBy:    input.CreatedBy,
		CreatedAt:    time.Now(),
	}

	res := s.schema.Create(ctx, invoice)
	if !res.Success {
		s.notifier.Notify(NotifyError, "No se pudo registrar la factura")
		return nil, fmt.Errorf("%w: %s", ErrRemoteFailure, res.Error)
	}

	s.mu.Lock()
	s.invoices = append([]models.PurchaseInvoice{invoice}, s.invoices...)
	s.mu.Unlock()

	s.notifier.Notify(NotifySuccess, "Factura registrada correctamente")
	return &invoice, nil
}

type UpdateInvoiceInput struct {
	Number    *string    `json:"number"`
	IssueDate *time.Time `json:"issueDate"`
	DueDate   *time.Time `json:"dueDate"`
	Total     *float64   `json:"total"`
	Notes     *string    `json:"notes"`
}

// Update aplica los cambios y deja rastro de cada campo modificado en el
// historial de la factura.
func (s *InvoiceStore) Update(ctx context.Context, id string, input UpdateInvoiceInput) (*models.PurchaseInvoice, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		s.notifier.Notify(NotifyError, "Factura no encontrada")
		return nil, ErrInvalidInput
	}

	// Copia con el lock tomado: el slice puede ser reemplazado por una
	// recarga concurrente apenas se suelte
	s.mu.Lock()
	var existing *models.PurchaseInvoice
	for i := range s.invoices {
		if s.invoices[i].ID == oid {
			inv := s.invoices[i]
			existing = &inv
			break
		}
	}
	s.mu.Unlock()

	if existing == nil {
		s.notifier.Notify(NotifyError, "Factura no encontrada")
		return nil, ErrInvalidInput
	}

	now := time.Now()
	history := append([]models.FieldChange{}, existing.History...)
	patch := models.InvoicePatch{}

	if input.Number != nil && *input.Number != existing.Number {
		history = append(history, models.FieldChange{Date: now, Field: "number", OldValue: existing.Number, NewValue: *input.Number})
		patch.Number = input.Number
	}
	if input.IssueDate != nil && !input.IssueDate.Equal(existing.IssueDate) {
		history = append(history, models.FieldChange{Date: now, Field: "issueDate", OldValue: existing.IssueDate, NewValue: *input.IssueDate})
		patch.IssueDate = input.IssueDate
	}
	if input.DueDate != nil && !input.DueDate.Equal(existing.DueDate) {
		history = append(history, models.FieldChange{Date: now, Field: "dueDate", OldValue: existing.DueDate, NewValue: *input.DueDate})
		patch.DueDate = input.DueDate
	}
	if input.Total != nil && *input.Total != existing.Total {
		history = append(history, models.FieldChange{Date: now, Field: "total", OldValue: existing.Total, NewValue: *input.Total})
		patch.Total = input.Total
	}
	if input.Notes != nil && *input.Notes != existing.Notes {
		history = append(history, models.FieldChange{Date: now, Field: "notes", OldValue: existing.Notes, NewValue: *input.Notes})
		patch.Notes = input.Notes
	}

	if len(history) == len(existing.History) {
		// Sin cambios reales, no se escribe nada
		invoice := *existing
		return &invoice, nil
	}
	patch.History = history

	var updated models.PurchaseInvoice
	res := s.schema.Update(ctx, oid, patch, &updated)
	if !res.Success {
		s.notifier.Notify(NotifyError, "No se pudo actualizar la factura")
		return nil, fmt.Errorf("%w: %s", ErrRemoteFailure, res.Error)
	}

	s.mu.Lock()
	for i := range s.invoices {
		if s.invoices[i].ID == updated.ID {
			s.invoices[i] = updated
			break
		}
	}
	s.mu.Unlock()

	s.notifier.Notify(NotifySuccess, "Factura actualizada")
	return &updated, nil
}

// LinkDebt deja en la factura la referencia a la deuda que originó.
func (s *InvoiceStore) LinkDebt(ctx context.Context, id primitive.ObjectID, debtID string) error {
	debt := debtID
	patch := models.InvoicePatch{DebtID: &debt}

	var updated models.PurchaseInvoice
	res := s.schema.Update(ctx, id, patch, &updated)
	if !res.Success {
		return fmt.Errorf("%w: %s", ErrRemoteFailure, res.Error)
	}

	s.mu.Lock()
	for i := range s.invoices {
		if s.invoices[i].ID == updated.ID {
			s.invoices[i] = updated
			break
		}
	}
	s.mu.Unlock()
	return nil
}

func (s *InvoiceStore) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		s.notifier.Notify(NotifyError, "Factura no encontrada")
		return ErrInvalidInput
	}

	res := s.schema.Delete(ctx, oid)
	if !res.Success {
		s.notifier.Notify(NotifyError, "No se pudo eliminar la factura")
		return fmt.Errorf("%w: %s", ErrRemoteFailure, res.Error)
	}

	s.mu.Lock()
	for i := range s.invoices {
		if s.invoices[i].ID == oid {
			s.invoices = append(s.invoices[:i], s.invoices[i+1:]...)
			break
		}
	}
	s.mu.Unlock()

	s.notifier.Notify(NotifySuccess, "Factura eliminada")
	return nil
}

// ByID busca una factura en el cache.
func (s *InvoiceStore) ByID(id string) (*models.PurchaseInvoice, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, inv := range s.invoices {
		if inv.ID.Hex() == id {
			invoice := inv
			return &invoice, true
		}
	}
	return nil, false
}

func (s *InvoiceStore) ClearCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invoices = nil
	s.loaded = false
}

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

// SupplierStore cachea los proveedores de un negocio. Los proveedores
// nunca se borran de verdad: se archivan y se pueden restaurar.
type SupplierStore struct {
	businessID primitive.ObjectID
	schema     schema.Schema
	notifier   Notifier

	mu        sync.Mutex
	suppliers []models.Supplier
	loaded    bool
}

func NewSupplierStore(businessID primitive.ObjectID, sch schema.Schema, notifier Notifier) *SupplierStore {
	return &SupplierStore{businessID: businessID, schema: sch, notifier: notifier}
}

// Load trae los proveedores una sola vez; con force vuelve a consultar.
func (s *SupplierStore) Load(ctx context.Context, force bool) error {
	s.mu.Lock()
	if s.loaded && !force {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	var suppliers []models.Supplier
	res := s.schema.Find(ctx, bson.M{"businessId": s.businessID},
		&schema.OrderBy{Field: "name"}, &suppliers)
	if !res.Success {
		s.notifier.Notify(NotifyError, "No se pudieron cargar los proveedores")
		return fmt.Errorf("%w: %s", ErrRemoteFailure, res.Error)
	}

	s.mu.Lock()
	s.suppliers = suppliers
	s.loaded = true
	s.mu.Unlock()
	return nil
}

// Filtered devuelve la vista derivada: búsqueda por subcadena sobre los
// campos de texto más el filtro tri-estado activos/archivados/todos.
func (s *SupplierStore) Filtered(search string, filter models.SupplierFilter) []models.Supplier {
	s.mu.Lock()
	defer s.mu.Unlock()

	needle := strings.ToLower(strings.TrimSpace(search))
	var out []models.Supplier
	for _, sup := range s.suppliers {
		switch filter {
		case models.SupplierFilterActive:
			if !sup.IsActive {
				continue
			}
		case models.SupplierFilterArchived:
			if sup.IsActive {
				continue
			}
		}

		if needle != "" && !supplierMatches(sup, needle) {
			continue
		}
		out = append(out, sup)
	}
	return out
}

func supplierMatches(sup models.Supplier, needle string) bool {
	for _, field := range []string{sup.Name, sup.Contact, sup.Email, sup.Phone} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

type CreateSupplierInput struct {
	Name    string `json:"name" validate:"required"`
	Contact string `json:"contact"`
	Email   string `json:"email" validate:"omitempty,email"`
	Phone   string `json:"phone"`
	CUIT    string `json:"cuit"`
	Address string `json:"address"`
	Notes   string `json:"notes"`
}

func (s *SupplierStore) Create(ctx context.Context, input CreateSupplierInput) (*models.Supplier, error) {
	if fails := utils.ValidateStruct(input); len(fails) > 0 {
		s.notifier.Notify(NotifyError, "Datos del proveedor inválidos")
		return nil, fmt.Errorf("%w: %s (%s)", ErrInvalidInput, fails[0].Field, fails[0].Tag)
	}

	supplier := models.Supplier{
		ID:         primitive.NewObjectID(),
		BusinessID: s.businessID,
		Name:       input.Name,
		Contact:    input.Contact,
		Email:      input.Email,
		Phone:      input.Phone,
		CUIT:       input.CUIT,
		Address:    input.Address,
		Notes:      input.Notes,
		IsActive:   true,
		CreatedAt:  time.Now(),
	}

	res := s.schema.Create(ctx, supplier)
	if !res.Success {
		s.notifier.Notify(NotifyError, "No se pudo crear el proveedor")
		return nil, fmt.Errorf("%w: %s", ErrRemoteFailure, res.Error)
	}

	s.mu.Lock()
	s.suppliers = append(s.suppliers, supplier)
	s.mu.Unlock()

	s.notifier.Notify(NotifySuccess, "Proveedor creado correctamente")
	return &supplier, nil
}

func (s *SupplierStore) Update(ctx context.Context, id string, patch models.SupplierPatch) (*models.Supplier, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		s.notifier.Notify(NotifyError, "Proveedor no encontrado")
		return nil, ErrInvalidInput
	}

	var updated models.Supplier
	res := s.schema.Update(ctx, oid, patch, &updated)
	if !res.Success {
		s.notifier.Notify(NotifyError, "No se pudo actualizar el proveedor")
		return nil, fmt.Errorf("%w: %s", ErrRemoteFailure, res.Error)
	}

	s.mu.Lock()
	for i, sup := range s.suppliers {
		if sup.ID == updated.ID {
			s.suppliers[i] = updated
			break
		}
	}
	s.mu.Unlock()

	s.notifier.Notify(NotifySuccess, "Proveedor actualizado")
	return &updated, nil
}

// Archive da de baja lógica a un proveedor.
func (s *SupplierStore) Archive(ctx context.Context, id string) error {
	return s.setActive(ctx, id, false, "Proveedor archivado", "No se pudo archivar el proveedor")
}

// Restore reactiva un proveedor archivado.
func (s *SupplierStore) Restore(ctx context.Context, id string) error {
	return s.setActive(ctx, id, true, "Proveedor restaurado", "No se pudo restaurar el proveedor")
}

func (s *SupplierStore) setActive(ctx context.Context, id string, active bool, okMsg, failMsg string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		s.notifier.Notify(NotifyError, "Proveedor no encontrado")
		return ErrInvalidInput
	}

	var res schema.Result
	if active {
		res = s.schema.Restore(ctx, oid)
	} else {
		res = s.schema.Archive(ctx, oid)
	}
	if !res.Success {
		s.notifier.Notify(NotifyError, failMsg)
		return fmt.Errorf("%w: %s", ErrRemoteFailure, res.Error)
	}

	now := time.Now()
	s.mu.Lock()
	for i := range s.suppliers {
		if s.suppliers[i].ID == oid {
			s.suppliers[i].IsActive = active
			if active {
				s.suppliers[i].ArchivedAt = nil
			} else {
				s.suppliers[i].ArchivedAt = &now
			}
			break
		}
	}
	s.mu.Unlock()

	s.notifier.Notify(NotifySuccess, okMsg)
	return nil
}

// ClearCache descarta el cache y obliga a recargar en el próximo Load.
func (s *SupplierStore) ClearCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.suppliers = nil
	s.loaded = false
}

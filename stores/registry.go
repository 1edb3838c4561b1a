package stores

import (
	"sync"

	"petstock-backend/schema"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BusinessStores agrupa los stores de una sesión de negocio.
type BusinessStores struct {
	Debts     *DebtStore
	Suppliers *SupplierStore
	Invoices  *InvoiceStore
}

// Registry construye y cachea los stores por negocio. Reemplaza a los
// singletons globales: cada negocio activo tiene su propio juego de
// stores con sus colaboradores inyectados.
type Registry struct {
	debtSchema     schema.Schema
	supplierSchema schema.Schema
	invoiceSchema  schema.Schema
	notifier       Notifier

	mu         sync.Mutex
	byBusiness map[primitive.ObjectID]*BusinessStores
}

func NewRegistry(debtSchema, supplierSchema, invoiceSchema schema.Schema, notifier Notifier) *Registry {
	return &Registry{
		debtSchema:     debtSchema,
		supplierSchema: supplierSchema,
		invoiceSchema:  invoiceSchema,
		notifier:       notifier,
		byBusiness:     make(map[primitive.ObjectID]*BusinessStores),
	}
}

// For devuelve los stores del negocio, creándolos la primera vez.
func (r *Registry) For(businessID primitive.ObjectID) *BusinessStores {
	r.mu.Lock()
	defer r.mu.Unlock()

	if bs, ok := r.byBusiness[businessID]; ok {
		return bs
	}

	bs := &BusinessStores{
		Debts:     NewDebtStore(businessID, r.debtSchema, r.notifier),
		Suppliers: NewSupplierStore(businessID, r.supplierSchema, r.notifier),
		Invoices:  NewInvoiceStore(businessID, r.invoiceSchema, r.notifier),
	}
	r.byBusiness[businessID] = bs
	return bs
}

// Invalidate limpia todos los caches de un negocio. Es la re-sincronización
// explícita al cambiar de negocio: nada de recargar la página entera.
func (r *Registry) Invalidate(businessID primitive.ObjectID) {
	r.mu.Lock()
	bs, ok := r.byBusiness[businessID]
	r.mu.Unlock()

	if !ok {
		return
	}
	bs.Debts.ClearCache()
	bs.Suppliers.ClearCache()
	bs.Invoices.ClearCache()
}

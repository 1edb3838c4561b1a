package stores

import (
	"context"
	"sync"
	"testing"
	"time"

	"petstock-backend/models"
	"petstock-backend/schema"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newTestInvoiceStore() (*InvoiceStore, *schema.MemorySchema, *captureNotifier) {
	mem := schema.NewMemory()
	notifier := &captureNotifier{}
	store := NewInvoiceStore(primitive.NewObjectID(), mem, notifier)
	return store, mem, notifier
}

func invoiceInput(number string, issue time.Time, total float64) CreateInvoiceInput {
	return CreateInvoiceInput{
		SupplierID:   "prov-1",
		SupplierName: "Alimentos del Sur",
		Number:       number,
		IssueDate:    issue,
		DueDate:      issue.AddDate(0, 1, 0),
		Total:        total,
		CreatedBy:    "user-1",
	}
}

func TestInvoiceCreateAndFilter(t *testing.T) {
	store, _, _ := newTestInvoiceStore()
	ctx := context.Background()

	jan := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	mar := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)

	store.Create(ctx, invoiceInput("A-0001", jan, 12000))
	store.Create(ctx, invoiceInput("A-0002", mar, 5400))

	if got := len(store.Filtered("", nil, nil)); got != 2 {
		t.Fatalf("sin filtros esperaba 2 facturas, hay %d", got)
	}
	if got := len(store.Filtered("0002", nil, nil)); got != 1 {
		t.Errorf("búsqueda por número falló, trajo %d", got)
	}
	if got := len(store.Filtered("alimentos", nil, nil)); got != 2 {
		t.Errorf("búsqueda por proveedor falló, trajo %d", got)
	}

	feb := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	if got := len(store.Filtered("", &feb, nil)); got != 1 {
		t.Errorf("rango desde febrero debía traer 1, trajo %d", got)
	}
	if got := len(store.Filtered("", nil, &feb)); got != 1 {
		t.Errorf("rango hasta febrero debía traer 1, trajo %d", got)
	}
}

func TestInvoiceUpdateTracksHistory(t *testing.T) {
	store, _, _ := newTestInvoiceStore()
	ctx := context.Background()

	issue := time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC)
	inv, _ := store.Create(ctx, invoiceInput("B-0100", issue, 8000))

	total := 9500.0
	notes := "ajuste por flete"
	updated, err := store.Update(ctx, inv.ID.Hex(), UpdateInvoiceInput{Total: &total, Notes: &notes})
	if err != nil {
		t.Fatalf("Update falló: %v", err)
	}

	if updated.Total != 9500 || updated.Notes != "ajuste por flete" {
		t.Errorf("los cambios no se aplicaron: %+v", updated)
	}
	if !updated.Modified || len(updated.History) != 2 {
		t.Fatalf("esperaba 2 entradas de historial, hay %d", len(updated.History))
	}

	fields := map[string]bool{}
	for _, h := range updated.History {
		fields[h.Field] = true
	}
	if !fields["total"] || !fields["notes"] {
		t.Errorf("el historial debe registrar total y notas: %v", fields)
	}

	// Un update sin cambios reales no escribe ni agrega historial
	same, err := store.Update(ctx, inv.ID.Hex(), UpdateInvoiceInput{Total: &total})
	if err != nil {
		t.Fatalf("Update sin cambios falló: %v", err)
	}
	if len(same.History) != 2 {
		t.Error("un update sin cambios no debe agregar historial")
	}
}

func TestInvoiceUpdateAppendsToExistingHistory(t *testing.T) {
	store, _, _ := newTestInvoiceStore()
	ctx := context.Background()

	issue := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	inv, _ := store.Create(ctx, invoiceInput("C-0001", issue, 1000))

	first := 1100.0
	store.Update(ctx, inv.ID.Hex(), UpdateInvoiceInput{Total: &first})
	second := 1200.0
	updated, _ := store.Update(ctx, inv.ID.Hex(), UpdateInvoiceInput{Total: &second})

	if len(updated.History) != 2 {
		t.Fatalf("el historial debe acumular, hay %d entradas", len(updated.History))
	}
}

func TestInvoiceUpdateDuringReload(t *testing.T) {
	store, _, _ := newTestInvoiceStore()
	ctx := context.Background()

	issue := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	inv, _ := store.Create(ctx, invoiceInput("F-0001", issue, 100))

	// Recargas concurrentes reemplazan el slice del cache mientras los
	// updates corren; el update no puede quedar leyendo el slice viejo
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			store.Load(ctx, true)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			total := float64(101 + i)
			if _, err := store.Update(ctx, inv.ID.Hex(), UpdateInvoiceInput{Total: &total}); err != nil {
				t.Errorf("Update falló: %v", err)
				return
			}
		}
	}()
	wg.Wait()

	if err := store.Load(ctx, true); err != nil {
		t.Fatalf("Load falló: %v", err)
	}
	final, ok := store.ByID(inv.ID.Hex())
	if !ok {
		t.Fatal("la factura desapareció del cache")
	}
	if final.Total != 150 {
		t.Errorf("Total = %v, esperaba 150", final.Total)
	}
	if len(final.History) == 0 {
		t.Error("el historial no registró ningún cambio")
	}
}

func TestInvoiceDelete(t *testing.T) {
	store, mem, _ := newTestInvoiceStore()
	ctx := context.Background()

	issue := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	inv, _ := store.Create(ctx, invoiceInput("D-0001", issue, 300))

	if err := store.Delete(ctx, inv.ID.Hex()); err != nil {
		t.Fatalf("Delete falló: %v", err)
	}
	if _, ok := store.ByID(inv.ID.Hex()); ok {
		t.Error("la factura borrada no puede seguir en el cache")
	}
	var invoices []models.PurchaseInvoice
	mem.Find(ctx, nil, nil, &invoices)
	if len(invoices) != 0 {
		t.Error("la factura debía borrarse de la colección")
	}
}

func TestInvoiceNegativeTotalRejected(t *testing.T) {
	store, _, _ := newTestInvoiceStore()
	issue := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)

	if _, err := store.Create(context.Background(), invoiceInput("E-0001", issue, -5)); err == nil {
		t.Fatal("un total negativo debe rechazarse")
	}
}

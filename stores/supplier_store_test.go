package stores

import (
	"context"
	"testing"

	"petstock-backend/models"
	"petstock-backend/schema"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newTestSupplierStore() (*SupplierStore, *schema.MemorySchema, *captureNotifier) {
	mem := schema.NewMemory()
	notifier := &captureNotifier{}
	store := NewSupplierStore(primitive.NewObjectID(), mem, notifier)
	return store, mem, notifier
}

func TestSupplierLoadedGate(t *testing.T) {
	store, mem, _ := newTestSupplierStore()
	ctx := context.Background()

	store.Load(ctx, false)
	calls := mem.FindCalls

	// Sin force no vuelve a consultar
	store.Load(ctx, false)
	if mem.FindCalls != calls {
		t.Error("el segundo Load sin force no debe ir a la colección")
	}

	store.Load(ctx, true)
	if mem.FindCalls != calls+1 {
		t.Error("Load con force debe volver a consultar")
	}
}

func TestSupplierArchiveRestore(t *testing.T) {
	store, _, notifier := newTestSupplierStore()
	ctx := context.Background()

	sup, err := store.Create(ctx, CreateSupplierInput{Name: "Distribuidora Patitas"})
	if err != nil {
		t.Fatalf("Create falló: %v", err)
	}

	if err := store.Archive(ctx, sup.ID.Hex()); err != nil {
		t.Fatalf("Archive falló: %v", err)
	}
	archived := store.Filtered("", models.SupplierFilterArchived)
	if len(archived) != 1 || archived[0].ArchivedAt == nil {
		t.Error("el proveedor archivado debe quedar inactivo con fecha de archivo")
	}
	if len(store.Filtered("", models.SupplierFilterActive)) != 0 {
		t.Error("un archivado no aparece entre los activos")
	}

	if err := store.Restore(ctx, sup.ID.Hex()); err != nil {
		t.Fatalf("Restore falló: %v", err)
	}
	active := store.Filtered("", models.SupplierFilterActive)
	if len(active) != 1 || active[0].ArchivedAt != nil {
		t.Error("el proveedor restaurado debe volver activo y sin fecha de archivo")
	}
	notifier.contains(t, "Proveedor restaurado")
}

func TestSupplierFilteredSearch(t *testing.T) {
	store, _, _ := newTestSupplierStore()
	ctx := context.Background()

	store.Create(ctx, CreateSupplierInput{Name: "Alimentos del Sur", Contact: "Pedro"})
	store.Create(ctx, CreateSupplierInput{Name: "Veterinaria Norte", Email: "ventas@norte.com"})
	sup, _ := store.Create(ctx, CreateSupplierInput{Name: "Juguetes Max", Phone: "11-5555-0000"})
	store.Archive(ctx, sup.ID.Hex())

	tests := []struct {
		name   string
		search string
		filter models.SupplierFilter
		want   int
	}{
		{"por nombre", "sur", models.SupplierFilterActive, 1},
		{"por contacto", "pedro", models.SupplierFilterActive, 1},
		{"por email", "norte.com", models.SupplierFilterActive, 1},
		{"por teléfono archivado", "5555", models.SupplierFilterAll, 1},
		{"archivados", "", models.SupplierFilterArchived, 1},
		{"todos", "", models.SupplierFilterAll, 3},
		{"sin resultados", "zzz", models.SupplierFilterAll, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := len(store.Filtered(tt.search, tt.filter)); got != tt.want {
				t.Errorf("Filtered(%q, %s) = %d, esperaba %d", tt.search, tt.filter, got, tt.want)
			}
		})
	}
}

func TestSupplierUpdate(t *testing.T) {
	store, _, _ := newTestSupplierStore()
	ctx := context.Background()

	sup, _ := store.Create(ctx, CreateSupplierInput{Name: "Distribuidora Patitas"})

	phone := "11-4444-2211"
	updated, err := store.Update(ctx, sup.ID.Hex(), models.SupplierPatch{Phone: &phone})
	if err != nil {
		t.Fatalf("Update falló: %v", err)
	}
	if updated.Phone != phone || updated.Name != "Distribuidora Patitas" {
		t.Errorf("el parche debe tocar solo el teléfono: %+v", updated)
	}

	empty := ""
	if _, err := store.Update(ctx, sup.ID.Hex(), models.SupplierPatch{Name: &empty}); err == nil {
		t.Error("un parche con nombre vacío debe rechazarse antes de escribir")
	}
}

func TestSupplierCreateValidation(t *testing.T) {
	store, mem, _ := newTestSupplierStore()

	if _, err := store.Create(context.Background(), CreateSupplierInput{Name: ""}); err == nil {
		t.Fatal("un proveedor sin nombre debe rechazarse")
	}
	var suppliers []models.Supplier
	mem.Find(context.Background(), nil, nil, &suppliers)
	if len(suppliers) != 0 {
		t.Error("la validación fallida no debe escribir nada")
	}
}

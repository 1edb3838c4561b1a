package stores

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"petstock-backend/models"
	"petstock-backend/schema"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type captureNotifier struct {
	mu     sync.Mutex
	events []string
}

func (n *captureNotifier) Notify(kind NotifyKind, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, string(kind)+": "+message)
}

func (n *captureNotifier) contains(t *testing.T, fragment string) {
	t.Helper()
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, e := range n.events {
		if strings.Contains(e, fragment) {
			return
		}
	}
	t.Errorf("no se emitió ningún aviso con %q; avisos: %v", fragment, n.events)
}

// failSchema rechaza toda operación, para simular la caída del backend.
type failSchema struct{}

func (failSchema) Find(ctx context.Context, filter bson.M, orderBy *schema.OrderBy, out interface{}) schema.Result {
	return schema.Fail("sin conexión")
}
func (failSchema) FindOne(ctx context.Context, filter bson.M, out interface{}) schema.Result {
	return schema.Fail("sin conexión")
}
func (failSchema) Create(ctx context.Context, doc interface{}) schema.Result {
	return schema.Fail("sin conexión")
}
func (failSchema) Update(ctx context.Context, id primitive.ObjectID, patch schema.Patch, out interface{}) schema.Result {
	return schema.Fail("sin conexión")
}
func (failSchema) Delete(ctx context.Context, id primitive.ObjectID) schema.Result {
	return schema.Fail("sin conexión")
}
func (failSchema) Archive(ctx context.Context, id primitive.ObjectID) schema.Result {
	return schema.Fail("sin conexión")
}
func (failSchema) Restore(ctx context.Context, id primitive.ObjectID) schema.Result {
	return schema.Fail("sin conexión")
}

func newTestDebtStore() (*DebtStore, *schema.MemorySchema, *captureNotifier) {
	mem := schema.NewMemory()
	notifier := &captureNotifier{}
	store := NewDebtStore(primitive.NewObjectID(), mem, notifier)
	return store, mem, notifier
}

func customerDebtInput(amount float64) CreateDebtInput {
	return CreateDebtInput{
		CounterpartyType: models.CounterpartyCustomer,
		CounterpartyID:   "cli-1",
		CounterpartyName: "María Gómez",
		OriginalAmount:   amount,
		OriginType:       models.OriginManual,
		CreatedBy:        "user-1",
		CreatedByName:    "Carla",
	}
}

func supplierDebtInput(amount float64) CreateDebtInput {
	return CreateDebtInput{
		CounterpartyType: models.CounterpartySupplier,
		CounterpartyID:   "prov-1",
		CounterpartyName: "Alimentos del Sur",
		OriginalAmount:   amount,
		OriginType:       models.OriginPurchaseInvoice,
		OriginID:         "fac-22",
		CreatedBy:        "user-1",
	}
}

func TestCreateDebt(t *testing.T) {
	store, _, notifier := newTestDebtStore()
	ctx := context.Background()

	debt, err := store.Create(ctx, customerDebtInput(1500))
	if err != nil {
		t.Fatalf("Create falló: %v", err)
	}

	if debt.Status != models.DebtActive {
		t.Errorf("status = %s, esperaba active", debt.Status)
	}
	if debt.PaidAmount != 0 || debt.RemainingAmount != 1500 {
		t.Errorf("paid = %v, remaining = %v, esperaba 0 y 1500", debt.PaidAmount, debt.RemainingAmount)
	}
	if debt.RemainingAmount != debt.OriginalAmount-debt.PaidAmount {
		t.Errorf("invariante rota: remaining %v != original %v - paid %v",
			debt.RemainingAmount, debt.OriginalAmount, debt.PaidAmount)
	}

	list := store.Debts()
	if len(list) != 1 || list[0].ID != debt.ID {
		t.Fatalf("la deuda nueva debe quedar en la posición 0 del listado")
	}
	notifier.contains(t, "Deuda registrada correctamente")
}

func TestCreateDebtPrependsNewest(t *testing.T) {
	store, _, _ := newTestDebtStore()
	ctx := context.Background()

	first, _ := store.Create(ctx, customerDebtInput(100))
	second, _ := store.Create(ctx, supplierDebtInput(200))

	list := store.Debts()
	if len(list) != 2 {
		t.Fatalf("esperaba 2 deudas, hay %d", len(list))
	}
	if list[0].ID != second.ID || list[1].ID != first.ID {
		t.Errorf("el listado debe ir de más nueva a más vieja")
	}
}

func TestCounterpartyExclusivity(t *testing.T) {
	store, _, _ := newTestDebtStore()
	ctx := context.Background()

	customer, err := store.Create(ctx, customerDebtInput(300))
	if err != nil {
		t.Fatalf("Create falló: %v", err)
	}
	if !customer.HasValidCounterparty() || !customer.IsCustomerDebt() || customer.IsSupplierDebt() {
		t.Errorf("deuda de cliente con contraparte inválida: %+v", customer)
	}
	if customer.SupplierID != "" || customer.SupplierName != "" {
		t.Errorf("deuda de cliente no puede tener proveedor cargado")
	}

	supplier, err := store.Create(ctx, supplierDebtInput(400))
	if err != nil {
		t.Fatalf("Create falló: %v", err)
	}
	if !supplier.HasValidCounterparty() || !supplier.IsSupplierDebt() || supplier.IsCustomerDebt() {
		t.Errorf("deuda de proveedor con contraparte inválida: %+v", supplier)
	}
	if supplier.ClientID != "" || supplier.ClientName != "" {
		t.Errorf("deuda de proveedor no puede tener cliente cargado")
	}
}

func TestCreateDebtRejectsSnapshotLinkForSuppliers(t *testing.T) {
	store, mem, _ := newTestDebtStore()

	input := supplierDebtInput(500)
	input.SnapshotID = "snap-1"

	if _, err := store.Create(context.Background(), input); err == nil {
		t.Fatal("una deuda de proveedor no puede vincularse a un cierre de caja")
	}
	var debts []models.Debt
	mem.Find(context.Background(), nil, nil, &debts)
	if len(debts) != 0 {
		t.Errorf("no debería haberse persistido nada, hay %d documentos", len(debts))
	}
}

func TestCreateDebtRemoteFailure(t *testing.T) {
	notifier := &captureNotifier{}
	store := NewDebtStore(primitive.NewObjectID(), failSchema{}, notifier)

	if _, err := store.Create(context.Background(), customerDebtInput(100)); err == nil {
		t.Fatal("esperaba error con el backend caído")
	}
	if len(store.Debts()) != 0 {
		t.Error("el cache no debe tocarse si la escritura falla")
	}
	notifier.contains(t, "No se pudo registrar la deuda")
}

func TestCloseDebt(t *testing.T) {
	store, _, notifier := newTestDebtStore()
	ctx := context.Background()

	input := customerDebtInput(2500)
	input.Notes = "entrega parcial pendiente"
	debt, _ := store.Create(ctx, input)

	closed, err := store.Close(ctx, debt.ID.Hex(), "pagó en efectivo")
	if err != nil {
		t.Fatalf("Close falló: %v", err)
	}

	if closed.Status != models.DebtPaid {
		t.Errorf("status = %s, esperaba paid", closed.Status)
	}
	if closed.PaidAmount != 2500 || closed.RemainingAmount != 0 {
		t.Errorf("paid = %v, remaining = %v, esperaba 2500 y 0", closed.PaidAmount, closed.RemainingAmount)
	}
	if !strings.Contains(closed.Notes, "entrega parcial pendiente") {
		t.Errorf("las notas previas no pueden pisarse: %q", closed.Notes)
	}
	if !strings.Contains(closed.Notes, "Pagada: pagó en efectivo") {
		t.Errorf("falta el motivo con su prefijo en las notas: %q", closed.Notes)
	}
	if closed.PaidAt == nil {
		t.Error("falta la fecha de pago")
	}

	// El cache queda con el documento confirmado
	cached, ok := store.ByID(debt.ID.Hex())
	if !ok || cached.Status != models.DebtPaid {
		t.Error("el cache debe reflejar la deuda saldada")
	}
	notifier.contains(t, "Deuda saldada")
}

func TestCancelDebt(t *testing.T) {
	store, _, _ := newTestDebtStore()
	ctx := context.Background()

	debt, _ := store.Create(ctx, supplierDebtInput(900))

	cancelled, err := store.Cancel(ctx, debt.ID.Hex(), "factura duplicada", "user-2")
	if err != nil {
		t.Fatalf("Cancel falló: %v", err)
	}
	if cancelled.Status != models.DebtCancelled {
		t.Errorf("status = %s, esperaba cancelled", cancelled.Status)
	}
	if cancelled.CancelReason != "factura duplicada" || cancelled.CancelledBy != "user-2" {
		t.Errorf("faltan motivo o actor de la cancelación: %+v", cancelled)
	}
	if cancelled.CancelledAt == nil {
		t.Error("falta la fecha de cancelación")
	}
	// La cancelación no toca los montos
	if cancelled.RemainingAmount != cancelled.OriginalAmount-cancelled.PaidAmount {
		t.Error("invariante de montos rota tras cancelar")
	}
}

func TestTerminalTransitionsAreOneWay(t *testing.T) {
	tests := []struct {
		name     string
		settle   func(s *DebtStore, id string) error
		expected string
	}{
		{
			"cancelar una pagada",
			func(s *DebtStore, id string) error {
				_, err := s.Close(context.Background(), id, "saldada")
				if err != nil {
					return err
				}
				_, err = s.Cancel(context.Background(), id, "tarde", "user-1")
				return err
			},
			"Solo se pueden cancelar deudas activas",
		},
		{
			"saldar una cancelada",
			func(s *DebtStore, id string) error {
				_, err := s.Cancel(context.Background(), id, "error de carga", "user-1")
				if err != nil {
					return err
				}
				_, err = s.Close(context.Background(), id, "tarde")
				return err
			},
			"Solo se pueden saldar deudas activas",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, mem, notifier := newTestDebtStore()
			debt, _ := store.Create(context.Background(), customerDebtInput(700))

			if err := tt.settle(store, debt.ID.Hex()); err == nil {
				t.Fatal("la segunda transición terminal debía fallar")
			}
			notifier.contains(t, tt.expected)

			// Sin escritura: el documento conserva la primera transición
			var stored models.Debt
			mem.FindOne(context.Background(), bson.M{"_id": debt.ID}, &stored)
			if stored.Status == models.DebtActive {
				t.Error("la primera transición debió persistir")
			}
		})
	}
}

func TestCancelUnknownDebt(t *testing.T) {
	store, _, notifier := newTestDebtStore()

	_, err := store.Cancel(context.Background(), primitive.NewObjectID().Hex(), "motivo", "user-1")
	if err != ErrDebtNotFound {
		t.Fatalf("err = %v, esperaba ErrDebtNotFound", err)
	}
	notifier.contains(t, "Deuda no encontrada")
}

func TestCancelRequiresReason(t *testing.T) {
	store, _, _ := newTestDebtStore()
	debt, _ := store.Create(context.Background(), customerDebtInput(100))

	if _, err := store.Cancel(context.Background(), debt.ID.Hex(), "", "user-1"); err != ErrMissingReason {
		t.Fatalf("err = %v, esperaba ErrMissingReason", err)
	}
	cached, _ := store.ByID(debt.ID.Hex())
	if cached.Status != models.DebtActive {
		t.Error("sin motivo no debe haber transición")
	}
}

func TestQuerySurface(t *testing.T) {
	store, _, _ := newTestDebtStore()
	ctx := context.Background()

	c1, _ := store.Create(ctx, customerDebtInput(100))
	store.Create(ctx, supplierDebtInput(250))
	c2In := customerDebtInput(50)
	c2In.CounterpartyID = "cli-2"
	c2In.CounterpartyName = "Jorge Paz"
	c2, _ := store.Create(ctx, c2In)
	store.Close(ctx, c2.ID.Hex(), "pagada en el momento")

	if got := len(store.ActiveDebts()); got != 2 {
		t.Errorf("activas = %d, esperaba 2", got)
	}
	if got := len(store.CustomerDebts()); got != 1 {
		t.Errorf("activas de clientes = %d, esperaba 1", got)
	}
	if got := len(store.SupplierDebts()); got != 1 {
		t.Errorf("activas de proveedores = %d, esperaba 1", got)
	}
	if got := store.CustomerRemaining(); got != 100 {
		t.Errorf("saldo clientes = %v, esperaba 100", got)
	}
	if got := store.SupplierRemaining(); got != 250 {
		t.Errorf("saldo proveedores = %v, esperaba 250", got)
	}
	if got := store.ActiveByCounterparty("cli-1"); len(got) != 1 || got[0].ID != c1.ID {
		t.Errorf("ActiveByCounterparty(cli-1) trajo %d deudas", len(got))
	}
	if got := store.ActiveByCounterparty("cli-2"); len(got) != 0 {
		t.Error("una deuda saldada no aparece por contraparte activa")
	}
}

func TestSummary(t *testing.T) {
	store, _, _ := newTestDebtStore()
	ctx := context.Background()

	oldest, _ := store.Create(ctx, customerDebtInput(100))
	time.Sleep(2 * time.Millisecond)
	store.Create(ctx, supplierDebtInput(300))
	time.Sleep(2 * time.Millisecond)
	store.Create(ctx, customerDebtInput(40))

	summary := store.Summary()
	if summary.CustomerCount != 2 || summary.SupplierCount != 1 {
		t.Errorf("counts = %d/%d, esperaba 2/1", summary.CustomerCount, summary.SupplierCount)
	}
	if summary.CustomerRemaining != 140 || summary.SupplierRemaining != 300 {
		t.Errorf("saldos = %v/%v, esperaba 140/300", summary.CustomerRemaining, summary.SupplierRemaining)
	}
	if summary.OldestActive == nil || summary.OldestActive.ID != oldest.ID {
		t.Error("la más vieja activa debe ser la primera creada")
	}
}

func TestSnapshotCache(t *testing.T) {
	store, mem, _ := newTestDebtStore()
	ctx := context.Background()

	linked := customerDebtInput(800)
	linked.SnapshotID = "snap-1"
	linked.RegisterName = "Caja principal"
	store.Create(ctx, linked)

	first, fromCache, err := store.LoadDebtsForSnapshot(ctx, "snap-1")
	if err != nil {
		t.Fatalf("LoadDebtsForSnapshot falló: %v", err)
	}
	if fromCache {
		t.Error("la primera consulta no puede venir del cache")
	}
	if len(first) != 1 {
		t.Fatalf("esperaba 1 deuda vinculada, hay %d", len(first))
	}

	calls := mem.FindCalls
	second, fromCache, err := store.LoadDebtsForSnapshot(ctx, "snap-1")
	if err != nil {
		t.Fatalf("LoadDebtsForSnapshot falló: %v", err)
	}
	if !fromCache {
		t.Error("la segunda consulta debe salir del cache")
	}
	if mem.FindCalls != calls {
		t.Error("la segunda consulta no debe ir a la colección")
	}
	if len(second) != 1 {
		t.Errorf("el cache devolvió %d deudas, esperaba 1", len(second))
	}
}

func TestClearSnapshotCacheRemovesOnlyOneKey(t *testing.T) {
	store, mem, _ := newTestDebtStore()
	ctx := context.Background()

	a := customerDebtInput(10)
	a.SnapshotID = "snap-a"
	store.Create(ctx, a)
	b := customerDebtInput(20)
	b.SnapshotID = "snap-b"
	store.Create(ctx, b)

	store.LoadDebtsForSnapshot(ctx, "snap-a")
	store.LoadDebtsForSnapshot(ctx, "snap-b")

	store.ClearSnapshotCache("snap-a")

	calls := mem.FindCalls
	if _, fromCache, _ := store.LoadDebtsForSnapshot(ctx, "snap-b"); !fromCache {
		t.Error("snap-b debía seguir cacheada")
	}
	if mem.FindCalls != calls {
		t.Error("snap-b no debía volver a consultarse")
	}
	if _, fromCache, _ := store.LoadDebtsForSnapshot(ctx, "snap-a"); fromCache {
		t.Error("snap-a debía haberse invalidado")
	}
}

func TestClearCache(t *testing.T) {
	store, _, _ := newTestDebtStore()
	ctx := context.Background()

	linked := customerDebtInput(30)
	linked.SnapshotID = "snap-1"
	store.Create(ctx, linked)
	store.Load(ctx)
	store.LoadDebtsForSnapshot(ctx, "snap-1")

	store.ClearCache()

	if len(store.Debts()) != 0 {
		t.Error("el listado debía quedar vacío")
	}
	if !store.NeedsRefresh() {
		t.Error("sin sello de frescura el listado está vencido")
	}
	if _, fromCache, _ := store.LoadDebtsForSnapshot(ctx, "snap-1"); fromCache {
		t.Error("el cache por cierre debía quedar vacío")
	}
}

func TestNeedsRefreshWindow(t *testing.T) {
	store, _, _ := newTestDebtStore()
	ctx := context.Background()

	if !store.NeedsRefresh() {
		t.Error("antes de la primera carga el listado está vencido")
	}

	store.Load(ctx)
	if store.NeedsRefresh() {
		t.Error("recién cargado no necesita refresco")
	}

	// Envejecemos el sello más allá de la ventana
	store.mu.Lock()
	store.loadedAt = time.Now().Add(-debtFreshness - time.Second)
	store.mu.Unlock()

	if !store.NeedsRefresh() {
		t.Error("vencida la ventana debe avisar que necesita refresco")
	}
}

func TestLoadOrdersNewestFirst(t *testing.T) {
	store, mem, _ := newTestDebtStore()
	ctx := context.Background()

	debt1, _ := store.Create(ctx, customerDebtInput(10))
	time.Sleep(2 * time.Millisecond)
	debt2, _ := store.Create(ctx, supplierDebtInput(20))

	// Un store fresco del mismo negocio carga desde la colección
	fresh := NewDebtStore(store.businessID, mem, &captureNotifier{})
	if err := fresh.Load(ctx); err != nil {
		t.Fatalf("Load falló: %v", err)
	}

	list := fresh.Debts()
	if len(list) != 2 {
		t.Fatalf("esperaba 2 deudas, hay %d", len(list))
	}
	if list[0].ID != debt2.ID || list[1].ID != debt1.ID {
		t.Error("Load debe ordenar de más nueva a más vieja")
	}
}

package stores

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"petstock-backend/models"
	"petstock-backend/schema"
	"petstock-backend/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrDebtNotFound  = errors.New("deuda no encontrada")
	ErrDebtNotActive = errors.New("la deuda no está activa")
	ErrInvalidInput  = errors.New("datos inválidos")
	ErrRemoteFailure = errors.New("error de almacenamiento")
	ErrMissingReason = errors.New("falta el motivo")
)

// Prefijo fijo con el que se anexa el motivo al saldar una deuda.
const closedNotesPrefix = "Pagada: "

// Ventana de frescura del listado principal. Vencida la ventana el store
// solo marca NeedsRefresh: el caller decide si recarga, el store nunca
// se refresca solo.
const debtFreshness = 5 * time.Minute

// DebtStore es el libro de deudas de un negocio: cache local de la
// colección más las transiciones de ciclo de vida. Se construye uno por
// sesión de negocio, con su colaborador de documentos inyectado.
type DebtStore struct {
	businessID primitive.ObjectID
	schema     schema.Schema
	notifier   Notifier

	mu            sync.Mutex
	debts         []models.Debt
	loadedAt      time.Time
	snapshotCache map[string][]models.Debt
}

func NewDebtStore(businessID primitive.ObjectID, sch schema.Schema, notifier Notifier) *DebtStore {
	return &DebtStore{
		businessID:    businessID,
		schema:        sch,
		notifier:      notifier,
		snapshotCache: make(map[string][]models.Debt),
	}
}

// Load trae el listado completo del negocio, más nuevas primero.
func (s *DebtStore) Load(ctx context.Context) error {
	var debts []models.Debt
	res := s.schema.Find(ctx, bson.M{"businessId": s.businessID},
		&schema.OrderBy{Field: "createdAt", Desc: true}, &debts)
	if !res.Success {
		s.notifier.Notify(NotifyError, "No se pudieron cargar las deudas")
		return fmt.Errorf("%w: %s", ErrRemoteFailure, res.Error)
	}

	s.mu.Lock()
	s.debts = debts
	s.loadedAt = time.Now()
	s.mu.Unlock()
	return nil
}

// NeedsRefresh indica si venció la ventana de frescura del listado.
// Es solo un aviso: nada fuerza la recarga.
func (s *DebtStore) NeedsRefresh() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Since(s.loadedAt) > debtFreshness
}

// Debts devuelve una copia del listado cacheado.
func (s *DebtStore) Debts() []models.Debt {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Debt, len(s.debts))
	copy(out, s.debts)
	return out
}

type CreateDebtInput struct {
	CounterpartyType models.CounterpartyType `json:"counterpartyType" validate:"required,oneof=customer supplier"`
	CounterpartyID   string                  `json:"counterpartyId" validate:"required"`
	CounterpartyName string                  `json:"counterpartyName" validate:"required"`
	OriginalAmount   float64                 `json:"originalAmount" validate:"gte=0"`
	OriginType       models.DebtOrigin       `json:"originType" validate:"required,oneof=sale purchaseInvoice manual"`
	OriginID         string                  `json:"originId"`
	Description      string                  `json:"description"`
	DueDate          *time.Time              `json:"dueDate"`
	Notes            string                  `json:"notes"`
	SnapshotID       string                  `json:"snapshotId"`
	RegisterName     string                  `json:"registerName"`
	CreatedBy        string                  `json:"-"`
	CreatedByName    string                  `json:"-"`
}

// Create registra una deuda nueva, siempre activa y sin pagos. En éxito
// la agrega al tope del listado sin re-consultar la colección.
func (s *DebtStore) Create(ctx context.Context, input CreateDebtInput) (*models.Debt, error) {
	if fails := utils.ValidateStruct(input); len(fails) > 0 {
		s.notifier.Notify(NotifyError, "Datos de la deuda inválidos")
		return nil, fmt.Errorf("%w: %s (%s)", ErrInvalidInput, fails[0].Field, fails[0].Tag)
	}

	// El vínculo con cierre de caja es solo para deudas de clientes
	if input.SnapshotID != "" && input.CounterpartyType != models.CounterpartyCustomer {
		s.notifier.Notify(NotifyError, "Solo las deudas de clientes se vinculan a un cierre de caja")
		return nil, ErrInvalidInput
	}

	debt := models.Debt{
		ID:              primitive.NewObjectID(),
		BusinessID:      s.businessID,
		OriginalAmount:  input.OriginalAmount,
		PaidAmount:      0,
		RemainingAmount: input.OriginalAmount,
		OriginType:      input.OriginType,
		OriginID:        input.OriginID,
		Description:     input.Description,
		Status:          models.DebtActive,
		DueDate:         input.DueDate,
		Notes:           input.Notes,
		CreatedBy:       input.CreatedBy,
		CreatedByName:   input.CreatedByName,
		CreatedAt:       time.Now(),
	}

	if input.CounterpartyType == models.CounterpartyCustomer {
		debt.ClientID = input.CounterpartyID
		debt.ClientName = input.CounterpartyName
		debt.SnapshotID = input.SnapshotID
		debt.RegisterName = input.RegisterName
	} else {
		debt.SupplierID = input.CounterpartyID
		debt.SupplierName = input.CounterpartyName
	}

	if !debt.HasValidCounterparty() {
		s.notifier.Notify(NotifyError, "La deuda necesita un cliente o un proveedor")
		return nil, ErrInvalidInput
	}

	res := s.schema.Create(ctx, debt)
	if !res.Success {
		s.notifier.Notify(NotifyError, "No se pudo registrar la deuda")
		return nil, fmt.Errorf("%w: %s", ErrRemoteFailure, res.Error)
	}

	s.mu.Lock()
	s.debts = append([]models.Debt{debt}, s.debts...)
	s.mu.Unlock()

	s.notifier.Notify(NotifySuccess, "Deuda registrada correctamente")
	return &debt, nil
}

// Cancel anula una deuda activa. Requiere motivo; la transición es
// definitiva y no hay vuelta a activa.
func (s *DebtStore) Cancel(ctx context.Context, id string, reason string, actor string) (*models.Debt, error) {
	if reason == "" {
		s.notifier.Notify(NotifyError, "Debe indicar el motivo de la cancelación")
		return nil, ErrMissingReason
	}

	_, oid, err := s.cachedActive(id, "Solo se pueden cancelar deudas activas")
	if err != nil {
		return nil, err
	}

	now := time.Now()
	patch := models.DebtPatch{
		Status:       models.DebtCancelled,
		CancelledAt:  &now,
		CancelledBy:  actor,
		CancelReason: reason,
	}

	var updated models.Debt
	res := s.schema.Update(ctx, oid, patch, &updated)
	if !res.Success {
		s.notifier.Notify(NotifyError, "No se pudo cancelar la deuda")
		return nil, fmt.Errorf("%w: %s", ErrRemoteFailure, res.Error)
	}

	s.replaceCached(updated)
	s.notifier.Notify(NotifySuccess, "Deuda cancelada")
	return &updated, nil
}

// Close salda una deuda activa de forma manual y completa: queda pagada,
// sin saldo, y el motivo se anexa a las notas sin pisar lo anterior.
func (s *DebtStore) Close(ctx context.Context, id string, reason string) (*models.Debt, error) {
	if reason == "" {
		s.notifier.Notify(NotifyError, "Debe indicar el motivo del saldado")
		return nil, ErrMissingReason
	}

	cached, oid, err := s.cachedActive(id, "Solo se pueden saldar deudas activas")
	if err != nil {
		return nil, err
	}

	notes := closedNotesPrefix + reason
	if cached.Notes != "" {
		notes = cached.Notes + "\n" + notes
	}

	now := time.Now()
	paid := cached.OriginalAmount
	remaining := 0.0
	patch := models.DebtPatch{
		Status:     models.DebtPaid,
		PaidAmount: &paid,
		Remaining:  &remaining,
		Notes:      &notes,
		PaidAt:     &now,
	}

	var updated models.Debt
	res := s.schema.Update(ctx, oid, patch, &updated)
	if !res.Success {
		s.notifier.Notify(NotifyError, "No se pudo saldar la deuda")
		return nil, fmt.Errorf("%w: %s", ErrRemoteFailure, res.Error)
	}

	s.replaceCached(updated)
	s.notifier.Notify(NotifySuccess, "Deuda saldada")
	return &updated, nil
}

// cachedActive busca la deuda en el cache y verifica que esté activa.
// Si algo falla no se intenta ninguna escritura.
func (s *DebtStore) cachedActive(id string, notActiveMsg string) (models.Debt, primitive.ObjectID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, d := range s.debts {
		if d.ID.Hex() == id {
			if d.Status != models.DebtActive {
				s.notifier.Notify(NotifyError, notActiveMsg)
				return models.Debt{}, primitive.NilObjectID, ErrDebtNotActive
			}
			return d, d.ID, nil
		}
	}

	s.notifier.Notify(NotifyError, "Deuda no encontrada")
	return models.Debt{}, primitive.NilObjectID, ErrDebtNotFound
}

// replaceCached pisa la entrada del cache con el documento confirmado
// por el servidor.
func (s *DebtStore) replaceCached(updated models.Debt) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, d := range s.debts {
		if d.ID == updated.ID {
			s.debts[i] = updated
			return
		}
	}
}

// ActiveDebts filtra las deudas activas del cache.
func (s *DebtStore) ActiveDebts() []models.Debt {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Debt
	for _, d := range s.debts {
		if d.Status == models.DebtActive {
			out = append(out, d)
		}
	}
	return out
}

// CustomerDebts devuelve las deudas activas de clientes.
func (s *DebtStore) CustomerDebts() []models.Debt {
	return s.activePartition(true)
}

// SupplierDebts devuelve las deudas activas con proveedores.
func (s *DebtStore) SupplierDebts() []models.Debt {
	return s.activePartition(false)
}

func (s *DebtStore) activePartition(customer bool) []models.Debt {
	var out []models.Debt
	for _, d := range s.ActiveDebts() {
		if d.IsCustomerDebt() == customer {
			out = append(out, d)
		}
	}
	return out
}

// CustomerRemaining suma el saldo pendiente de las deudas de clientes.
func (s *DebtStore) CustomerRemaining() float64 {
	return sumRemaining(s.CustomerDebts())
}

// SupplierRemaining suma el saldo pendiente de las deudas con proveedores.
func (s *DebtStore) SupplierRemaining() float64 {
	return sumRemaining(s.SupplierDebts())
}

func sumRemaining(debts []models.Debt) float64 {
	var total float64
	for _, d := range debts {
		total += d.RemainingAmount
	}
	return total
}

// ActiveByCounterparty busca las deudas activas de una contraparte
// (cliente o proveedor) por su id.
func (s *DebtStore) ActiveByCounterparty(counterpartyID string) []models.Debt {
	var out []models.Debt
	for _, d := range s.ActiveDebts() {
		if d.ClientID == counterpartyID || d.SupplierID == counterpartyID {
			out = append(out, d)
		}
	}
	return out
}

// ByID busca una deuda puntual en el cache.
func (s *DebtStore) ByID(id string) (*models.Debt, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.debts {
		if d.ID.Hex() == id {
			debt := d
			return &debt, true
		}
	}
	return nil, false
}

// Summary arma el agregado del panel: cantidades y saldos por subset más
// la deuda activa más vieja por fecha de creación. Ante empate de fechas
// gana la primera encontrada en el orden actual del listado.
func (s *DebtStore) Summary() models.DebtSummary {
	summary := models.DebtSummary{}

	var oldest *models.Debt
	for _, d := range s.ActiveDebts() {
		d := d
		if d.IsCustomerDebt() {
			summary.CustomerCount++
			summary.CustomerRemaining += d.RemainingAmount
		} else {
			summary.SupplierCount++
			summary.SupplierRemaining += d.RemainingAmount
		}
		if oldest == nil || d.CreatedAt.Before(oldest.CreatedAt) {
			oldest = &d
		}
	}
	summary.OldestActive = oldest
	return summary
}

// LoadDebtsForSnapshot trae las deudas vinculadas a un cierre de caja.
// La primera consulta por cierre va a la colección; las siguientes salen
// del cache por clave hasta que alguien lo limpie (no hay TTL).
func (s *DebtStore) LoadDebtsForSnapshot(ctx context.Context, snapshotID string) ([]models.Debt, bool, error) {
	s.mu.Lock()
	if cached, ok := s.snapshotCache[snapshotID]; ok {
		s.mu.Unlock()
		return cached, true, nil
	}
	s.mu.Unlock()

	var debts []models.Debt
	res := s.schema.Find(ctx, bson.M{"businessId": s.businessID, "snapshotId": snapshotID}, nil, &debts)
	if !res.Success {
		s.notifier.Notify(NotifyError, "No se pudieron cargar las deudas del cierre")
		return nil, false, fmt.Errorf("%w: %s", ErrRemoteFailure, res.Error)
	}

	s.mu.Lock()
	s.snapshotCache[snapshotID] = debts
	s.mu.Unlock()
	return debts, false, nil
}

// ClearSnapshotCache invalida una sola clave del cache por cierre.
func (s *DebtStore) ClearSnapshotCache(snapshotID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.snapshotCache, snapshotID)
}

// ClearCache limpia el listado principal, todo el cache por cierre y el
// sello de frescura.
func (s *DebtStore) ClearCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.debts = nil
	s.loadedAt = time.Time{}
	s.snapshotCache = make(map[string][]models.Debt)
}

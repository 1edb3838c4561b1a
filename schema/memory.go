package schema

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemorySchema es la implementación en memoria del contrato Schema.
// La usan los tests y el modo dev sin Mongo levantado. Soporta filtros
// de igualdad por campo, que es lo único que piden los stores.
type MemorySchema struct {
	mu    sync.RWMutex
	docs  map[primitive.ObjectID]bson.M
	order []primitive.ObjectID

	// Contadores para verificar en tests cuántas lecturas remotas hubo
	FindCalls int
}

func NewMemory() *MemorySchema {
	return &MemorySchema{docs: make(map[primitive.ObjectID]bson.M)}
}

func toDoc(v interface{}) (bson.M, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, err
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// normalize lleva los valores a una forma comparable entre el filtro
// (tipos de Go) y el documento guardado (tipos bson).
func normalize(v interface{}) string {
	switch t := v.(type) {
	case primitive.ObjectID:
		return t.Hex()
	case primitive.DateTime:
		return fmt.Sprintf("%020d", t.Time().UnixMilli())
	case time.Time:
		return fmt.Sprintf("%020d", t.UnixMilli())
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func matches(doc bson.M, filter bson.M) bool {
	for k, want := range filter {
		got, ok := doc[k]
		if !ok {
			return false
		}
		if normalize(got) != normalize(want) {
			return false
		}
	}
	return true
}

func (s *MemorySchema) Find(ctx context.Context, filter bson.M, orderBy *OrderBy, out interface{}) Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.FindCalls++

	var matched []bson.M
	for _, id := range s.order {
		doc := s.docs[id]
		if filter == nil || matches(doc, filter) {
			matched = append(matched, doc)
		}
	}

	if orderBy != nil {
		field, desc := orderBy.Field, orderBy.Desc
		sort.SliceStable(matched, func(i, j int) bool {
			a, b := normalize(matched[i][field]), normalize(matched[j][field])
			if desc {
				return a > b
			}
			return a < b
		})
	}

	return decodeSlice(matched, out)
}

func decodeSlice(docs []bson.M, out interface{}) Result {
	outv := reflect.ValueOf(out)
	if outv.Kind() != reflect.Ptr || outv.Elem().Kind() != reflect.Slice {
		return Fail("Error al procesar documentos")
	}

	slicev := outv.Elem()
	slicev.Set(reflect.MakeSlice(slicev.Type(), 0, len(docs)))
	elemT := slicev.Type().Elem()

	for _, doc := range docs {
		raw, err := bson.Marshal(doc)
		if err != nil {
			return Fail("Error al procesar documentos")
		}
		ev := reflect.New(elemT)
		if err := bson.Unmarshal(raw, ev.Interface()); err != nil {
			return Fail("Error al procesar documentos")
		}
		slicev.Set(reflect.Append(slicev, ev.Elem()))
	}
	return Ok()
}

func decodeOne(doc bson.M, out interface{}) Result {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return Fail("Error al procesar documento")
	}
	if err := bson.Unmarshal(raw, out); err != nil {
		return Fail("Error al procesar documento")
	}
	return Ok()
}

func (s *MemorySchema) FindOne(ctx context.Context, filter bson.M, out interface{}) Result {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, id := range s.order {
		doc := s.docs[id]
		if filter == nil || matches(doc, filter) {
			return decodeOne(doc, out)
		}
	}
	return Fail("Documento no encontrado")
}

func (s *MemorySchema) Create(ctx context.Context, in interface{}) Result {
	doc, err := toDoc(in)
	if err != nil {
		return Fail("Error al guardar documento")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, _ := doc["_id"].(primitive.ObjectID)
	if id.IsZero() {
		id = primitive.NewObjectID()
		doc["_id"] = id
	}
	s.docs[id] = doc
	s.order = append(s.order, id)

	r := Ok()
	r.InsertedID = id
	return r
}

func (s *MemorySchema) Update(ctx context.Context, id primitive.ObjectID, patch Patch, out interface{}) Result {
	if err := patch.Validate(); err != nil {
		return Fail(err.Error())
	}

	changes := patch.Changes()
	if len(changes) == 0 {
		return Fail("No hay cambios para aplicar")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[id]
	if !ok {
		return Fail("Documento no encontrado")
	}
	for k, v := range changes {
		doc[k] = v
	}

	if out != nil {
		return decodeOne(doc, out)
	}
	return Ok()
}

func (s *MemorySchema) Delete(ctx context.Context, id primitive.ObjectID) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.docs[id]; !ok {
		return Fail("Documento no encontrado")
	}
	delete(s.docs, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return Ok()
}

func (s *MemorySchema) Archive(ctx context.Context, id primitive.ObjectID) Result {
	return s.setActive(id, false)
}

func (s *MemorySchema) Restore(ctx context.Context, id primitive.ObjectID) Result {
	return s.setActive(id, true)
}

func (s *MemorySchema) setActive(id primitive.ObjectID, active bool) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[id]
	if !ok {
		return Fail("Documento no encontrado")
	}
	doc["isActive"] = active
	if active {
		delete(doc, "archivedAt")
	} else {
		doc["archivedAt"] = time.Now()
	}
	return Ok()
}

// Package schema es la capa genérica de mapeo de documentos. Los stores
// dependen solo de este contrato, nunca del motor de consultas de Mongo.
package schema

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Result es el resultado uniforme de toda operación contra la colección.
// Las fallas se reportan acá, nunca como panic hacia el caller.
type Result struct {
	Success    bool
	Error      string
	InsertedID primitive.ObjectID
}

func Ok() Result {
	return Result{Success: true}
}

func Fail(msg string) Result {
	return Result{Success: false, Error: msg}
}

// OrderBy ordena un Find por un único campo.
type OrderBy struct {
	Field string
	Desc  bool
}

// Patch es un parche tipado por entidad: se valida antes de despachar y
// recién el backend lo traduce a un update de Mongo.
type Patch interface {
	Validate() error
	Changes() bson.M
}

// Schema expone las primitivas create/find/update/delete/archive/restore
// sobre una colección de documentos.
type Schema interface {
	// Find decodifica los documentos que matchean el filtro en out
	// (puntero a slice). Un filtro vacío devuelve todo.
	Find(ctx context.Context, filter bson.M, orderBy *OrderBy, out interface{}) Result

	// FindOne decodifica el primer documento que matchea en out.
	FindOne(ctx context.Context, filter bson.M, out interface{}) Result

	// Create inserta un documento y devuelve el id asignado.
	Create(ctx context.Context, doc interface{}) Result

	// Update aplica un parche validado y decodifica el documento
	// resultante en out (puede ser nil si no interesa).
	Update(ctx context.Context, id primitive.ObjectID, patch Patch, out interface{}) Result

	Delete(ctx context.Context, id primitive.ObjectID) Result

	// Archive y Restore implementan la baja lógica: apagan/prenden
	// isActive y estampan/limpian archivedAt.
	Archive(ctx context.Context, id primitive.ObjectID) Result
	Restore(ctx context.Context, id primitive.ObjectID) Result
}

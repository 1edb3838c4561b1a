package schema

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoSchema implementa Schema sobre una colección de Mongo.
type MongoSchema struct {
	coll *mongo.Collection
}

func NewMongo(coll *mongo.Collection) *MongoSchema {
	return &MongoSchema{coll: coll}
}

func (s *MongoSchema) Find(ctx context.Context, filter bson.M, orderBy *OrderBy, out interface{}) Result {
	if filter == nil {
		filter = bson.M{}
	}

	opts := options.Find()
	if orderBy != nil {
		dir := 1
		if orderBy.Desc {
			dir = -1
		}
		opts.SetSort(bson.D{{Key: orderBy.Field, Value: dir}})
	}

	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		log.Printf("schema: error en Find sobre %s: %v", s.coll.Name(), err)
		return Fail("Error al consultar documentos")
	}
	defer cursor.Close(ctx)

	if err := cursor.All(ctx, out); err != nil {
		log.Printf("schema: error decodificando %s: %v", s.coll.Name(), err)
		return Fail("Error al procesar documentos")
	}
	return Ok()
}

func (s *MongoSchema) FindOne(ctx context.Context, filter bson.M, out interface{}) Result {
	err := s.coll.FindOne(ctx, filter).Decode(out)
	if err == mongo.ErrNoDocuments {
		return Fail("Documento no encontrado")
	}
	if err != nil {
		log.Printf("schema: error en FindOne sobre %s: %v", s.coll.Name(), err)
		return Fail("Error al consultar documento")
	}
	return Ok()
}

func (s *MongoSchema) Create(ctx context.Context, doc interface{}) Result {
	res, err := s.coll.InsertOne(ctx, doc)
	if err != nil {
		log.Printf("schema: error en Create sobre %s: %v", s.coll.Name(), err)
		return Fail("Error al guardar documento")
	}

	r := Ok()
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		r.InsertedID = oid
	}
	return r
}

func (s *MongoSchema) Update(ctx context.Context, id primitive.ObjectID, patch Patch, out interface{}) Result {
	if err := patch.Validate(); err != nil {
		return Fail(err.Error())
	}

	changes := patch.Changes()
	if len(changes) == 0 {
		return Fail("No hay cambios para aplicar")
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	res := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": changes}, opts)
	if res.Err() == mongo.ErrNoDocuments {
		return Fail("Documento no encontrado")
	}
	if res.Err() != nil {
		log.Printf("schema: error en Update sobre %s: %v", s.coll.Name(), res.Err())
		return Fail("Error al actualizar documento")
	}

	if out != nil {
		if err := res.Decode(out); err != nil {
			log.Printf("schema: error decodificando update de %s: %v", s.coll.Name(), err)
			return Fail("Error al procesar documento actualizado")
		}
	}
	return Ok()
}

func (s *MongoSchema) Delete(ctx context.Context, id primitive.ObjectID) Result {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		log.Printf("schema: error en Delete sobre %s: %v", s.coll.Name(), err)
		return Fail("Error al eliminar documento")
	}
	if res.DeletedCount == 0 {
		return Fail("Documento no encontrado")
	}
	return Ok()
}

func (s *MongoSchema) Archive(ctx context.Context, id primitive.ObjectID) Result {
	return s.setActive(ctx, id, false)
}

func (s *MongoSchema) Restore(ctx context.Context, id primitive.ObjectID) Result {
	return s.setActive(ctx, id, true)
}

func (s *MongoSchema) setActive(ctx context.Context, id primitive.ObjectID, active bool) Result {
	update := bson.M{"$set": bson.M{"isActive": active}}
	if active {
		update["$unset"] = bson.M{"archivedAt": ""}
	} else {
		update["$set"].(bson.M)["archivedAt"] = time.Now()
	}

	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		log.Printf("schema: error archivando en %s: %v", s.coll.Name(), err)
		return Fail("Error al actualizar documento")
	}
	if res.MatchedCount == 0 {
		return Fail("Documento no encontrado")
	}
	return Ok()
}

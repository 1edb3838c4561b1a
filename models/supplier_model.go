package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Supplier struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	BusinessID primitive.ObjectID `bson:"businessId" json:"businessId"`
	Name       string             `bson:"name" json:"name"`
	Contact    string             `bson:"contact,omitempty" json:"contact,omitempty"`
	Email      string             `bson:"email,omitempty" json:"email,omitempty"`
	Phone      string             `bson:"phone,omitempty" json:"phone,omitempty"`
	CUIT       string             `bson:"cuit,omitempty" json:"cuit,omitempty"`
	Address    string             `bson:"address,omitempty" json:"address,omitempty"`
	Notes      string             `bson:"notes,omitempty" json:"notes,omitempty"`

	// Baja lógica: los proveedores nunca se borran, se archivan
	IsActive   bool       `bson:"isActive" json:"isActive"`
	ArchivedAt *time.Time `bson:"archivedAt,omitempty" json:"archivedAt,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// SupplierFilter es el filtro tri-estado del listado.
type SupplierFilter string

const (
	SupplierFilterActive   SupplierFilter = "active"
	SupplierFilterArchived SupplierFilter = "archived"
	SupplierFilterAll      SupplierFilter = "all"
)

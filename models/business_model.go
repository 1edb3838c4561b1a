package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Business struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Address   string             `bson:"address,omitempty" json:"address,omitempty"`
	Phone     string             `bson:"phone,omitempty" json:"phone,omitempty"`
	OwnerID   primitive.ObjectID `bson:"ownerId" json:"ownerId"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

type Role string

const (
	RoleOwner         Role = "owner"
	RoleAdministrator Role = "administrator"
	RoleEmployee      Role = "employee"
	RoleCashier       Role = "cashier"
)

// BusinessMember vincula un usuario con un negocio y su rol en él.
// La búsqueda siempre es por el par (userId, businessId).
type BusinessMember struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID     primitive.ObjectID `bson:"userId" json:"userId"`
	BusinessID primitive.ObjectID `bson:"businessId" json:"businessId"`
	Role       Role               `bson:"role" json:"role"`
	AddedAt    time.Time          `bson:"addedAt" json:"addedAt"`
}

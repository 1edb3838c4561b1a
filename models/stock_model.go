package models

import "go.mongodb.org/mongo-driver/bson/primitive"

type ProductType string
type Measurement string

const (
	Alimento  ProductType = "ALIMENTO"
	Accesorio ProductType = "ACCESORIO"
	Higiene   ProductType = "HIGIENE"
	Medicina  ProductType = "MEDICINA"
	Other     ProductType = "OTROS"
)

const (
	Unidades Measurement = "UNIDADES"
	Kilos    Measurement = "KILOS"
	Bolsas   Measurement = "BOLSAS"
	Packs    Measurement = "PACKS"
)

type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	BusinessID  primitive.ObjectID `bson:"businessId" json:"businessId"`
	Name        string             `bson:"name" json:"name"`
	Stock       float64            `bson:"stock" json:"stock"`
	Type        ProductType        `bson:"type,omitempty" json:"type,omitempty"`
	Measurement Measurement        `bson:"measurement" json:"measurement"`
	Loaded      bool               `bson:"loaded" json:"loaded"`
}

// GetDefaultProducts devuelve el catálogo inicial que se le carga a un
// negocio nuevo la primera vez que consulta su stock.
func GetDefaultProducts() []Product {
	return []Product{
		{Name: "Alimento perro adulto", Type: Alimento, Measurement: Kilos},
		{Name: "Alimento perro cachorro", Type: Alimento, Measurement: Kilos},
		{Name: "Alimento gato adulto", Type: Alimento, Measurement: Kilos},
		{Name: "Alimento gato castrado", Type: Alimento, Measurement: Kilos},
		{Name: "Piedras sanitarias", Type: Higiene, Measurement: Bolsas},
		{Name: "Shampoo neutro", Type: Higiene, Measurement: Unidades},
		{Name: "Pipeta antipulgas perro", Type: Medicina, Measurement: Unidades},
		{Name: "Pipeta antipulgas gato", Type: Medicina, Measurement: Unidades},
		{Name: "Collar mediano", Type: Accesorio, Measurement: Unidades},
		{Name: "Correa paseo", Type: Accesorio, Measurement: Unidades},
		{Name: "Comedero doble", Type: Accesorio, Measurement: Unidades},
		{Name: "Huesos de cuero", Type: Alimento, Measurement: Packs},
	}
}

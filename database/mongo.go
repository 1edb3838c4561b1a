package database

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var Client *mongo.Client
var UserCollection *mongo.Collection
var BusinessCollection *mongo.Collection
var MemberCollection *mongo.Collection
var DebtCollection *mongo.Collection
var SupplierCollection *mongo.Collection
var InvoiceCollection *mongo.Collection
var SaleCollection *mongo.Collection
var SnapshotCollection *mongo.Collection
var StockCollection *mongo.Collection
var CatalogCollection *mongo.Collection

func Connect(uri string, dbName string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		log.Fatal(err)
	}

	Client = client
	db := client.Database(dbName)
	UserCollection = db.Collection("users")
	BusinessCollection = db.Collection("businesses")
	MemberCollection = db.Collection("business_members")
	DebtCollection = db.Collection("debts")
	SupplierCollection = db.Collection("suppliers")
	InvoiceCollection = db.Collection("purchase_invoices")
	SaleCollection = db.Collection("sales")
	SnapshotCollection = db.Collection("snapshots")
	StockCollection = db.Collection("stock")
	CatalogCollection = db.Collection("catalog")
}

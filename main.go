package main

import (
	"fmt"
	"log"
	"os"

	"petstock-backend/database"
	"petstock-backend/handlers"
	"petstock-backend/middleware"
	"petstock-backend/schema"
	"petstock-backend/stores"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	if env == "development" {
		if err := godotenv.Load(".env.development"); err != nil {
			log.Println("⚠️ No se pudo cargar .env.development, usando variables del sistema")
		}
	} else {
		if err := godotenv.Load(".env.production"); err != nil {
			log.Println("⚠️ No se pudo cargar .env.production, usando variables del sistema")
		}
	}

	middleware.LoadSecret()

	mongoURI := os.Getenv("MONGODB_URI")
	dbName := os.Getenv("MONGODB_NAME")

	database.Connect(mongoURI, dbName)

	// Catálogo base de productos, solo la primera vez
	if err := handlers.InitializeCatalog(); err != nil {
		log.Println("⚠️ Advertencia: No se pudo inicializar el catálogo de productos:", err)
	}

	registry := stores.NewRegistry(
		schema.NewMongo(database.DebtCollection),
		schema.NewMongo(database.SupplierCollection),
		schema.NewMongo(database.InvoiceCollection),
		stores.LogNotifier{},
	)

	router := gin.Default()

	allowedOrigins := []string{
		"http://localhost:4200",
		"https://petstock.github.io",
	}

	router.Use(func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		for _, o := range allowedOrigins {
			if o == origin {
				c.Writer.Header().Set("Access-Control-Allow-Origin", o)
				break
			}
		}
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization, X-Requested-With, X-Business-Id")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	router.Use(middleware.RequestID())

	router.POST("/login", handlers.LoginHandler)
	router.POST("/logout", handlers.LogoutHandler)

	router.GET("/auth/me", handlers.AuthMeHandler(database.UserCollection))
	router.POST("/admin/create-user", handlers.AdminCreateUserHandler)

	businessGroup := router.Group("/negocios")
	businessGroup.Use(middleware.AuthMiddleware())
	{
		businessGroup.GET("", handlers.MyBusinessesHandler)
		businessGroup.POST("", handlers.CreateBusinessHandler)
		businessGroup.POST("/seleccionar", handlers.SelectBusinessHandler(registry))
	}

	// Todo lo que sigue opera sobre el negocio activo
	authed := router.Group("")
	authed.Use(middleware.AuthMiddleware())
	authed.Use(middleware.RequireBusinessRole(handlers.ResolveRole))

	debtsGroup := authed.Group("/deudas")
	{
		debtsGroup.GET("", handlers.GetDebtsHandler(registry))
		debtsGroup.POST("", handlers.CreateDebtHandler(registry))
		debtsGroup.POST("/:id/cancelar", handlers.CancelDebtHandler(registry))
		debtsGroup.POST("/:id/saldar", handlers.CloseDebtHandler(registry))
		debtsGroup.GET("/resumen", handlers.DebtSummaryHandler(registry))
		debtsGroup.GET("/cierre/:snapshotId", handlers.DebtsBySnapshotHandler(registry))
		debtsGroup.DELETE("/cierre/:snapshotId/cache", handlers.InvalidateSnapshotCacheHandler(registry))
	}

	suppliersGroup := authed.Group("/proveedores")
	{
		suppliersGroup.GET("", handlers.GetSuppliersHandler(registry))
		suppliersGroup.POST("", handlers.CreateSupplierHandler(registry))
		suppliersGroup.PUT("/:id", handlers.UpdateSupplierHandler(registry))
		suppliersGroup.POST("/:id/archivar", handlers.ArchiveSupplierHandler(registry))
		suppliersGroup.POST("/:id/restaurar", handlers.RestoreSupplierHandler(registry))
	}

	invoicesGroup := authed.Group("/facturas")
	{
		invoicesGroup.GET("", handlers.GetInvoicesHandler(registry))
		invoicesGroup.POST("", handlers.CreateInvoiceHandler(registry))
		invoicesGroup.PUT("/:id", handlers.UpdateInvoiceHandler(registry))
		invoicesGroup.DELETE("/:id", handlers.DeleteInvoiceHandler(registry))
	}

	salesGroup := authed.Group("/ventas")
	{
		salesGroup.POST("", handlers.CreateSaleHandler(registry))
		salesGroup.GET("", handlers.GetSalesHandler)
		salesGroup.PUT("/:id", handlers.UpdateSaleHandler)
	}

	snapshotsGroup := authed.Group("/cierres")
	{
		snapshotsGroup.POST("", handlers.CloseBoxHandler)
		snapshotsGroup.GET("", handlers.GetSnapshotsHandler)
		snapshotsGroup.GET("/pendientes", handlers.CheckPendingBoxesHandler)
	}

	stockGroup := authed.Group("/stock")
	{
		stockGroup.GET("", handlers.GetStockHandler)
		stockGroup.PUT("/:id", handlers.UpdateProductHandler)
		stockGroup.POST("", handlers.CreateProductHandler)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
		log.Println("INFO: PORT not set, defaulting to " + port)
	}

	fmt.Printf("🚀 Servidor corriendo en modo %s en http://localhost:%s\n", env, port)
	router.Run(":" + port)
}

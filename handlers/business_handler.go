package handlers

import (
	"context"
	"net/http"
	"time"

	"petstock-backend/database"
	"petstock-backend/models"
	"petstock-backend/stores"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ResolveRole busca el rol del usuario en el negocio por el par
// (userId, businessId). Sin membresía devuelve rol vacío sin error.
func ResolveRole(ctx context.Context, userID, businessID primitive.ObjectID) (models.Role, error) {
	var member models.BusinessMember
	err := database.MemberCollection.FindOne(ctx, bson.M{
		"userId":     userID,
		"businessId": businessID,
	}).Decode(&member)
	if err == mongo.ErrNoDocuments {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return member.Role, nil
}

// MyBusinessesHandler lista los negocios donde el usuario tiene membresía.
func MyBusinessesHandler(c *gin.Context) {
	userIDStr, _ := c.Get("userId")
	userID, _ := primitive.ObjectIDFromHex(userIDStr.(string))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := database.MemberCollection.Find(ctx, bson.M{"userId": userID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al obtener negocios"})
		return
	}
	defer cursor.Close(ctx)

	var members []models.BusinessMember
	if err := cursor.All(ctx, &members); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al procesar negocios"})
		return
	}

	type entry struct {
		Business models.Business `json:"business"`
		Role     models.Role     `json:"role"`
	}
	out := []entry{}
	for _, m := range members {
		var biz models.Business
		if err := database.BusinessCollection.FindOne(ctx, bson.M{"_id": m.BusinessID}).Decode(&biz); err != nil {
			continue
		}
		out = append(out, entry{Business: biz, Role: m.Role})
	}

	c.JSON(http.StatusOK, out)
}

// CreateBusinessHandler da de alta un negocio y hace al creador su dueño.
func CreateBusinessHandler(c *gin.Context) {
	userIDStr, _ := c.Get("userId")
	userID, _ := primitive.ObjectIDFromHex(userIDStr.(string))

	var input struct {
		Name    string `json:"name"`
		Address string `json:"address"`
		Phone   string `json:"phone"`
	}
	if err := c.ShouldBindJSON(&input); err != nil || input.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "El nombre del negocio es requerido"})
		return
	}

	business := models.Business{
		ID:        primitive.NewObjectID(),
		Name:      input.Name,
		Address:   input.Address,
		Phone:     input.Phone,
		OwnerID:   userID,
		CreatedAt: time.Now(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := database.BusinessCollection.InsertOne(ctx, business); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al crear negocio"})
		return
	}

	member := models.BusinessMember{
		ID:         primitive.NewObjectID(),
		UserID:     userID,
		BusinessID: business.ID,
		Role:       models.RoleOwner,
		AddedAt:    time.Now(),
	}
	if _, err := database.MemberCollection.InsertOne(ctx, member); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al registrar membresía"})
		return
	}

	c.JSON(http.StatusCreated, business)
}

// SelectBusinessHandler cambia el negocio activo del usuario. Invalida los
// caches del negocio anterior en lugar de recargar todo el proceso.
func SelectBusinessHandler(registry *stores.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		userIDStr, _ := c.Get("userId")
		userID, _ := primitive.ObjectIDFromHex(userIDStr.(string))

		var input struct {
			BusinessID string `json:"businessId"`
		}
		if err := c.ShouldBindJSON(&input); err != nil || input.BusinessID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Negocio inválido"})
			return
		}

		businessID, err := primitive.ObjectIDFromHex(input.BusinessID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Negocio inválido"})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		role, err := ResolveRole(ctx, userID, businessID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al verificar membresía"})
			return
		}
		if role == "" {
			c.JSON(http.StatusForbidden, gin.H{"error": "No tenés acceso a ese negocio"})
			return
		}

		// Recuperamos el negocio anterior para invalidar sus caches
		var user models.User
		if err := database.UserCollection.FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err == nil {
			if prev, err := primitive.ObjectIDFromHex(user.ActiveBusinessID); err == nil {
				registry.Invalidate(prev)
			}
		}

		_, err = database.UserCollection.UpdateOne(ctx,
			bson.M{"_id": userID},
			bson.M{"$set": bson.M{"activeBusinessId": businessID.Hex()}},
		)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al cambiar de negocio"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message":          "Negocio seleccionado",
			"activeBusinessId": businessID.Hex(),
			"role":             role,
		})
	}
}

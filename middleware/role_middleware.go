package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"

	"petstock-backend/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	BusinessSelectPath = "/seleccionar-negocio"
	DashboardPath      = "/panel"
)

// RoleResolver busca el rol de un usuario en un negocio por el par
// (userId, businessId).
type RoleResolver func(ctx context.Context, userID, businessID primitive.ObjectID) (models.Role, error)

// Rutas permitidas para roles que no son dueño ni administrador.
var allowedPaths = []string{
	"/panel",
	"/ventas",
	"/deudas",
	"/cierres",
	"/stock",
}

// RequireBusinessRole resuelve el rol del usuario en el negocio activo
// (header X-Business-Id) y corta la navegación según el rol:
//   - sin negocio seleccionado: a elegir negocio
//   - sin rol en el negocio: a elegir negocio, con aviso de error
//   - dueño y administrador pasan a cualquier lado
//   - el resto solo a las rutas permitidas; lo demás rebota al panel
func RequireBusinessRole(resolve RoleResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Si ya va camino a elegir negocio no tiene sentido rebotarlo ahí
		if strings.HasPrefix(c.Request.URL.Path, BusinessSelectPath) {
			c.Next()
			return
		}

		// El gate asume AuthMiddleware antes; si no está, acá no hay userId
		v, _ := c.Get("userId")
		userIDStr, ok := v.(string)
		if !ok || userIDStr == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Usuario no identificado"})
			c.Abort()
			return
		}
		userID, err := primitive.ObjectIDFromHex(userIDStr)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Usuario no identificado"})
			c.Abort()
			return
		}

		businessIDStr := c.GetHeader("X-Business-Id")
		if businessIDStr == "" {
			c.JSON(http.StatusConflict, gin.H{
				"error":    "Ningún negocio seleccionado",
				"redirect": BusinessSelectPath,
			})
			c.Abort()
			return
		}

		businessID, err := primitive.ObjectIDFromHex(businessIDStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":    "Negocio inválido",
				"redirect": BusinessSelectPath,
			})
			c.Abort()
			return
		}

		role, err := resolve(c.Request.Context(), userID, businessID)
		if err != nil {
			// Antes esto se tragaba el error y dejaba al usuario varado
			// en una página bloqueada; ahora también lo mandamos a
			// elegir negocio.
			log.Printf("role: error resolviendo rol de %s en %s: %v", userID.Hex(), businessID.Hex(), err)
			c.JSON(http.StatusForbidden, gin.H{
				"error":        "No se pudo verificar tu rol en este negocio",
				"redirect":     BusinessSelectPath,
				"notification": gin.H{"kind": "error", "message": "No se pudo verificar tu rol"},
			})
			c.Abort()
			return
		}

		if role == "" {
			c.JSON(http.StatusForbidden, gin.H{
				"error":        "No tenés un rol en este negocio",
				"redirect":     BusinessSelectPath,
				"notification": gin.H{"kind": "error", "message": "No tenés acceso a este negocio"},
			})
			c.Abort()
			return
		}

		c.Set("businessId", businessID)
		c.Set("role", role)

		// Dueño y administrador no tienen restricciones de ruta
		if role == models.RoleOwner || role == models.RoleAdministrator {
			c.Next()
			return
		}

		for _, p := range allowedPaths {
			if strings.HasPrefix(c.Request.URL.Path, p) {
				c.Next()
				return
			}
		}

		c.JSON(http.StatusForbidden, gin.H{
			"error":        "No tenés permisos para esta sección",
			"redirect":     DashboardPath,
			"notification": gin.H{"kind": "error", "message": "No tenés permisos para esta sección"},
		})
		c.Abort()
	}
}

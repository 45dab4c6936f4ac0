package httpserver

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	authsvc "storefront/internal/service/auth"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func registerHandler(svc authService, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in authsvc.RegisterInput
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, "invalid json body")
			return
		}
		u, err := svc.Register(c.Request.Context(), in)
		if err != nil {
			writeError(c, logger, "register", err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"id":        u.ID,
			"username":  u.Username,
			"email":     u.Email,
			"user_type": u.Role,
		})
	}
}

func loginHandler(svc authService, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in loginRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, "invalid json body")
			return
		}
		u, access, refresh, err := svc.Login(c.Request.Context(), in.Username, in.Password)
		if err != nil {
			writeError(c, logger, "login", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"access":    access,
			"refresh":   refresh,
			"username":  u.Username,
			"user_type": u.Role,
		})
	}
}

package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type sessionResponse struct {
	Token     string `json:"token"`
	TokenType string `json:"tokenType"`
	ShopperID string `json:"shopperId"`
	ExpiresIn int    `json:"expiresIn"`
}

func createSessionHandler(svc sessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := svc.Issue(c.Request.Context())
		if err != nil {
			writeDomainError(c, err)
			return
		}
		c.JSON(http.StatusCreated, sessionResponse{
			Token:     sess.Token,
			TokenType: "Bearer",
			ShopperID: sess.ShopperID,
			ExpiresIn: svc.TTLSeconds(),
		})
	}
}

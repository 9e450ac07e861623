package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/communityhub/goldledger/internal/api/handler/v1/response"
)

// HandleHealthcheck godoc
// @Summary      Health check
// @Tags         health
// @Produce      json
// @Success      200  {object}  response.Envelope
// @Router       / [get]
func HandleHealthcheck(ctx *gin.Context) {
	response.Render(ctx, http.StatusOK, "ok", gin.H{"status": "up"})
}

package response

import (
	"github.com/gin-gonic/gin"

	"github.com/communityhub/goldledger/internal/domain"
)

type Envelope struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

type Page struct {
	Items      any               `json:"items"`
	Pagination domain.Pagination `json:"pagination"`
}

func Render(ctx *gin.Context, status int, message string, data any) {
	ctx.JSON(status, Envelope{
		StatusCode: status,
		Data:       data,
		Message:    message,
		Success:    true,
	})
}

func RenderPage(ctx *gin.Context, status int, message string, items any, pagination domain.Pagination) {
	Render(ctx, status, message, Page{
		Items:      items,
		Pagination: pagination,
	})
}

package response

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation"
	"go.uber.org/zap"
)

// Err is the error envelope. Stack carries the wrapped error chain and is
// only rendered outside gin's release mode.
type Err struct {
	Err        error    `json:"-"`
	Success    bool     `json:"success"`
	StatusCode int      `json:"statusCode"`
	Message    string   `json:"message"`
	Errors     []string `json:"errors"`
	Stack      string   `json:"stack,omitempty"`
}

func (e *Err) Error() string {
	return e.Message
}

func RenderErr(ctx *gin.Context, e *Err) {
	fields := []zap.Field{
		zap.String("requestID", requestid.Get(ctx)),
		zap.String("method", ctx.Request.Method),
		zap.String("path", ctx.FullPath()),
		zap.Int("status", e.StatusCode),
	}
	if e.Err != nil {
		fields = append(fields, zap.Error(e.Err))
	}

	if e.StatusCode >= http.StatusInternalServerError {
		zap.L().Error(e.Message, fields...)
	} else {
		zap.L().Warn(e.Message, fields...)
	}

	if e.Errors == nil {
		e.Errors = []string{}
	}
	if gin.Mode() != gin.ReleaseMode && e.Err != nil {
		e.Stack = e.Err.Error()
	}

	ctx.AbortWithStatusJSON(e.StatusCode, e)
}

func ErrBadRequest(err error) *Err {
	e := &Err{
		Err:        err,
		StatusCode: http.StatusBadRequest,
		Message:    cause(err),
		Errors:     []string{},
	}

	var verrs validation.Errors
	if errors.As(err, &verrs) {
		e.Message = "validation failed"
		for field, fieldErr := range verrs {
			e.Errors = append(e.Errors, fmt.Sprintf("%s: %s", field, fieldErr.Error()))
		}
		sort.Strings(e.Errors)
	}

	return e
}

func ErrNotFound(resource, field string, value any) *Err {
	return &Err{
		StatusCode: http.StatusNotFound,
		Message:    fmt.Sprintf("%s with %s %v not found", resource, field, value),
		Errors:     []string{},
	}
}

func ErrUnauthorized(err error) *Err {
	return &Err{
		Err:        err,
		StatusCode: http.StatusUnauthorized,
		Message:    "authentication required",
		Errors:     []string{},
	}
}

func ErrPermissionDenied(err error) *Err {
	return &Err{
		Err:        err,
		StatusCode: http.StatusForbidden,
		Message:    "permission denied",
		Errors:     []string{},
	}
}

func ErrInternalServerError(err error) *Err {
	return &Err{
		Err:        err,
		StatusCode: http.StatusInternalServerError,
		Message:    "internal server error",
		Errors:     []string{},
	}
}

// cause drops the "caller -> " prefixes of a wrapped error chain.
func cause(err error) string {
	msg := err.Error()
	if i := strings.LastIndex(msg, " -> "); i >= 0 {
		return msg[i+len(" -> "):]
	}
	return msg
}

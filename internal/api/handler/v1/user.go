package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/communityhub/goldledger/internal/api/handler/v1/request"
	"github.com/communityhub/goldledger/internal/api/handler/v1/response"
	"github.com/communityhub/goldledger/internal/domain"
	"github.com/communityhub/goldledger/internal/service"
)

type UserService interface {
	RegisterUser(ctx context.Context, user domain.User) (domain.User, error)
	GetUser(ctx context.Context, id uint) (domain.User, error)
	ListUsers(ctx context.Context, q domain.PageQuery) ([]domain.User, domain.Pagination, error)
}

type UserHandler struct {
	svc UserService
}

func NewUserHandler(svc UserService) *UserHandler {
	return &UserHandler{
		svc: svc,
	}
}

// HandleRegisterUser godoc
// @Summary      Register a member
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request  body      request.RegisterUserRequest  true  "request body"
// @Success      201      {object}  response.Envelope{data=domain.User}
// @Failure      400      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /users [post]
// @Security     BearerAuth
func (h *UserHandler) HandleRegisterUser(ctx *gin.Context) {
	var req request.RegisterUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	user, err := h.svc.RegisterUser(ctx.Request.Context(), domain.User{
		Name:     req.Name,
		MemberID: req.MemberID,
		Email:    req.Email,
		Phone:    req.Phone,
	})
	if err != nil {
		if errors.Is(err, service.ErrUserMemberIDExists) {
			response.RenderErr(ctx, response.ErrBadRequest(service.ErrUserMemberIDExists))
			return
		}

		err = fmt.Errorf("HandleRegisterUser -> h.svc.RegisterUser -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	response.Render(ctx, http.StatusCreated, "user registered", user)
}

// HandleGetUser godoc
// @Summary      Get a member
// @Tags         users
// @Produce      json
// @Param        userId  path      int  true  "User ID"
// @Success      200     {object}  response.Envelope{data=domain.User}
// @Failure      400     {object}  response.Err
// @Failure      404     {object}  response.Err
// @Failure      500     {object}  response.Err
// @Router       /users/{userId} [get]
// @Security     BearerAuth
func (h *UserHandler) HandleGetUser(ctx *gin.Context) {
	userID, err := parseIDParam(ctx, "userId")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	user, err := h.svc.GetUser(ctx.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("user", "id", userID))
			return
		}

		err = fmt.Errorf("HandleGetUser -> h.svc.GetUser -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	response.Render(ctx, http.StatusOK, "user retrieved", user)
}

// HandleListUsers godoc
// @Summary      List members
// @Tags         users
// @Produce      json
// @Param        page    query     int     false  "page, from 1"
// @Param        limit   query     int     false  "page size, at most 100"
// @Param        search  query     string  false  "name or member id"
// @Success      200     {object}  response.Envelope{data=response.Page{items=[]domain.User}}
// @Failure      400     {object}  response.Err
// @Failure      500     {object}  response.Err
// @Router       /users [get]
// @Security     BearerAuth
func (h *UserHandler) HandleListUsers(ctx *gin.Context) {
	q, err := bindPageQuery(ctx)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	users, pagination, err := h.svc.ListUsers(ctx.Request.Context(), q)
	if err != nil {
		err = fmt.Errorf("HandleListUsers -> h.svc.ListUsers -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	response.RenderPage(ctx, http.StatusOK, "users retrieved", users, pagination)
}

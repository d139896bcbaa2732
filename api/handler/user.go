package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/sessionauth/api/transport"
	"github.com/fastygo/sessionauth/domain"
	"github.com/fastygo/sessionauth/pkg/httpcontext"
	authUC "github.com/fastygo/sessionauth/usecase/auth"
)

// UserHandler serves account registration, the current profile and the
// password reset flow.
type UserHandler struct {
	baseHandler
	uc *authUC.UseCase
}

func NewUserHandler(uc *authUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Register a user
// @Tags users
// @Router /api/v1/users [post]
func (h *UserHandler) Register(ctx *fasthttp.RequestCtx) {
	email := formValue(ctx, transport.FieldEmail)
	if email == "" {
		h.respondMissing(ctx, transport.FieldEmail)
		return
	}
	password := string(ctx.FormValue(transport.FieldPassword))
	if password == "" {
		h.respondMissing(ctx, transport.FieldPassword)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	user, err := h.uc.Register(stdCtx, email, password)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, transport.NewUserResponse(user))
}

// @Summary Current user
// @Tags users
// @Router /api/v1/users/me [get]
func (h *UserHandler) Me(ctx *fasthttp.RequestCtx) {
	userID := currentUserID(ctx)
	if userID == "" {
		h.respondError(ctx, domain.ErrForbidden)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	user, err := h.uc.UserByID(stdCtx, userID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, transport.NewUserResponse(user))
}

// @Summary Issue a password reset token
// @Tags users
// @Router /api/v1/reset_password [post]
func (h *UserHandler) ResetToken(ctx *fasthttp.RequestCtx) {
	email := formValue(ctx, transport.FieldEmail)
	if email == "" {
		h.respondMissing(ctx, transport.FieldEmail)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	token, err := h.uc.ResetPasswordToken(stdCtx, email)
	if domain.IsDomainError(err, domain.ErrCodeNotFound) {
		err = domain.ErrForbidden
	}
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, transport.ResetTokenResponse{Email: email, ResetToken: token})
}

// @Summary Replace a password using a reset token
// @Tags users
// @Router /api/v1/reset_password [put]
func (h *UserHandler) UpdatePassword(ctx *fasthttp.RequestCtx) {
	token := formValue(ctx, transport.FieldResetToken)
	if token == "" {
		h.respondMissing(ctx, transport.FieldResetToken)
		return
	}
	password := string(ctx.FormValue(transport.FieldNewPassword))
	if password == "" {
		h.respondMissing(ctx, transport.FieldNewPassword)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.UpdatePassword(stdCtx, token, password); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, transport.StatusResponse{Status: "password updated"})
}

package http

import (
	"net/http"

	"github.com/himanshu0633/mytestbuddiesbackend/internal/quiz/service"
	"github.com/himanshu0633/mytestbuddiesbackend/pkg/httpx"
)

type AdminUsersHandler struct {
	UserService *service.UserService
}

// HandleDisable godoc
//
//	@Summary		Disable an account
//	@Description	A disabled account can no longer log in. Admins cannot disable themselves.
//	@Tags			Admin
//	@Produce		json
//	@Param			id	path		string	true	"User ID"
//	@Success		200	{object}	quizsdk.UserResponse
//	@Failure		400	{object}	quizsdk.ErrorResponse
//	@Failure		404	{object}	quizsdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/admin/users/{id}/disable [post].
func (h *AdminUsersHandler) HandleDisable(w http.ResponseWriter, r *http.Request) {
	h.setDisabled(w, r, true)
}

// HandleEnable godoc
//
//	@Summary	Enable an account
//	@Tags		Admin
//	@Produce	json
//	@Param		id	path		string	true	"User ID"
//	@Success	200	{object}	quizsdk.UserResponse
//	@Failure	404	{object}	quizsdk.ErrorResponse
//	@Security	BearerAuth
//	@Router		/v1/admin/users/{id}/enable [post].
func (h *AdminUsersHandler) HandleEnable(w http.ResponseWriter, r *http.Request) {
	h.setDisabled(w, r, false)
}

func (h *AdminUsersHandler) setDisabled(w http.ResponseWriter, r *http.Request, disabled bool) {
	actor, ok := callerID(w, r)
	if !ok {
		return
	}

	u, err := h.UserService.SetDisabled(r.Context(), actor, r.PathValue("id"), disabled)
	if err != nil {
		writeServiceError(w, r, "update account", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, userResponse(u))
}

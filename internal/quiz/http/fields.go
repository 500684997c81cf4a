package http

import (
	"net/http"

	"github.com/himanshu0633/mytestbuddiesbackend/internal/quiz/service"
	"github.com/himanshu0633/mytestbuddiesbackend/pkg/httpx"
	"github.com/himanshu0633/mytestbuddiesbackend/pkg/quizsdk"
)

type FieldsHandler struct {
	FieldService *service.FieldService
}

func fieldInput(req quizsdk.FieldRequest) service.FieldInput {
	return service.FieldInput{
		Name:                   req.Name,
		Description:            req.Description,
		For:                    req.For,
		DefaultTimePerQuestion: req.DefaultTimePerQuestion,
		PricePaise:             req.PricePaise,
	}
}

// HandleList godoc
//
//	@Summary	List quiz fields
//	@Tags		Fields
//	@Produce	json
//	@Success	200	{array}		quizsdk.FieldResponse	"Newest first"
//	@Failure	401	{object}	quizsdk.ErrorResponse
//	@Security	BearerAuth
//	@Router		/v1/fields [get].
func (h *FieldsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	fs, err := h.FieldService.List(r.Context())
	if err != nil {
		writeServiceError(w, r, "list fields", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, fieldResponses(fs))
}

// HandleGet godoc
//
//	@Summary	Get a quiz field
//	@Tags		Fields
//	@Produce	json
//	@Param		id	path		string	true	"Field ID"
//	@Success	200	{object}	quizsdk.FieldResponse
//	@Failure	404	{object}	quizsdk.ErrorResponse
//	@Security	BearerAuth
//	@Router		/v1/fields/{id} [get].
func (h *FieldsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	f, err := h.FieldService.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, "get field", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, fieldResponse(f))
}

// HandleGetFull godoc
//
//	@Summary		Get a field with its questions
//	@Description	Admins see correctAnswer and solution, everyone else gets them stripped.
//	@Tags			Fields
//	@Produce		json
//	@Param			id	path		string	true	"Field ID"
//	@Success		200	{object}	quizsdk.FieldWithQuestionsResponse
//	@Failure		404	{object}	quizsdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/fields/{id}/full [get].
func (h *FieldsHandler) HandleGetFull(w http.ResponseWriter, r *http.Request) {
	f, qs, err := h.FieldService.WithQuestions(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, "get field", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, quizsdk.FieldWithQuestionsResponse{
		Field:     fieldResponse(f),
		Questions: questionResponses(qs, isAdmin(r)),
	})
}

// HandleCreate godoc
//
//	@Summary	Create a quiz field
//	@Tags		Fields
//	@Accept		json
//	@Produce	json
//	@Param		request	body		quizsdk.FieldRequest	true	"Field"
//	@Success	201		{object}	quizsdk.FieldResponse
//	@Failure	400		{object}	quizsdk.ErrorResponse
//	@Failure	403		{object}	quizsdk.ErrorResponse	"Admin role required"
//	@Failure	409		{object}	quizsdk.ErrorResponse	"Name already used"
//	@Security	BearerAuth
//	@Router		/v1/fields [post].
func (h *FieldsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	id, ok := callerID(w, r)
	if !ok {
		return
	}

	var req quizsdk.FieldRequest
	if !decodeBody(w, r, &req) {
		return
	}

	f, err := h.FieldService.Create(r.Context(), id, fieldInput(req))
	if err != nil {
		writeServiceError(w, r, "create field", err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, fieldResponse(f))
}

// HandleUpdate godoc
//
//	@Summary	Update a quiz field
//	@Tags		Fields
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string					true	"Field ID"
//	@Param		request	body		quizsdk.FieldRequest	true	"Field"
//	@Success	200		{object}	quizsdk.FieldResponse
//	@Failure	400		{object}	quizsdk.ErrorResponse
//	@Failure	404		{object}	quizsdk.ErrorResponse
//	@Failure	409		{object}	quizsdk.ErrorResponse
//	@Security	BearerAuth
//	@Router		/v1/fields/{id} [put].
func (h *FieldsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req quizsdk.FieldRequest
	if !decodeBody(w, r, &req) {
		return
	}

	f, err := h.FieldService.Update(r.Context(), r.PathValue("id"), fieldInput(req))
	if err != nil {
		writeServiceError(w, r, "update field", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, fieldResponse(f))
}

// HandleDelete godoc
//
//	@Summary		Delete a quiz field
//	@Description	Removes the field together with its questions and all progress recorded for it.
//	@Tags			Fields
//	@Param			id	path	string	true	"Field ID"
//	@Success		204
//	@Failure		404	{object}	quizsdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/fields/{id} [delete].
func (h *FieldsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.FieldService.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, r, "delete field", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

package http

import (
	"net/http"

	"github.com/himanshu0633/mytestbuddiesbackend/internal/quiz/service"
	"github.com/himanshu0633/mytestbuddiesbackend/pkg/httpx"
	"github.com/himanshu0633/mytestbuddiesbackend/pkg/quizsdk"
)

// QuestionsHandler returns questions through service.ViewQuestion so that
// non-admin callers never receive answers or solutions.
type QuestionsHandler struct {
	QuestionService *service.QuestionService
}

func questionInput(req quizsdk.QuestionRequest) service.QuestionInput {
	return service.QuestionInput{
		Type:          req.Type,
		Text:          req.Text,
		Options:       req.Options,
		CorrectAnswer: req.CorrectAnswer,
		Solution:      req.Solution,
	}
}

// HandleList godoc
//
//	@Summary		List the questions of a field
//	@Description	correctAnswer and solution are only present for admins.
//	@Tags			Questions
//	@Produce		json
//	@Param			id	path		string	true	"Field ID"
//	@Success		200	{array}		quizsdk.QuestionResponse
//	@Failure		404	{object}	quizsdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/fields/{id}/questions [get].
func (h *QuestionsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	qs, err := h.QuestionService.List(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, "list questions", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, questionResponses(qs, isAdmin(r)))
}

// HandleCreate godoc
//
//	@Summary		Add a question to a field
//	@Description	Type defaults to mcq. An mcq needs at least two options and a correct answer.
//	@Tags			Questions
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string					true	"Field ID"
//	@Param			request	body		quizsdk.QuestionRequest	true	"Question"
//	@Success		201		{object}	quizsdk.QuestionResponse
//	@Failure		400		{object}	quizsdk.ErrorResponse
//	@Failure		403		{object}	quizsdk.ErrorResponse
//	@Failure		404		{object}	quizsdk.ErrorResponse	"Field not found"
//	@Security		BearerAuth
//	@Router			/v1/fields/{id}/questions [post].
func (h *QuestionsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	id, ok := callerID(w, r)
	if !ok {
		return
	}

	var req quizsdk.QuestionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	q, err := h.QuestionService.Create(r.Context(), id, r.PathValue("id"), questionInput(req))
	if err != nil {
		writeServiceError(w, r, "create question", err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, questionResponse(service.ViewQuestion(q, isAdmin(r))))
}

// HandleGet godoc
//
//	@Summary	Get a question
//	@Tags		Questions
//	@Produce	json
//	@Param		id	path		string	true	"Question ID"
//	@Success	200	{object}	quizsdk.QuestionResponse
//	@Failure	404	{object}	quizsdk.ErrorResponse
//	@Security	BearerAuth
//	@Router		/v1/questions/{id} [get].
func (h *QuestionsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	q, err := h.QuestionService.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, "get question", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, questionResponse(service.ViewQuestion(q, isAdmin(r))))
}

// HandleUpdate godoc
//
//	@Summary	Update a question
//	@Tags		Questions
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string					true	"Question ID"
//	@Param		request	body		quizsdk.QuestionRequest	true	"Question"
//	@Success	200		{object}	quizsdk.QuestionResponse
//	@Failure	400		{object}	quizsdk.ErrorResponse
//	@Failure	404		{object}	quizsdk.ErrorResponse
//	@Security	BearerAuth
//	@Router		/v1/questions/{id} [put].
func (h *QuestionsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req quizsdk.QuestionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	q, err := h.QuestionService.Update(r.Context(), r.PathValue("id"), questionInput(req))
	if err != nil {
		writeServiceError(w, r, "update question", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, questionResponse(service.ViewQuestion(q, isAdmin(r))))
}

// HandleDelete godoc
//
//	@Summary	Delete a question
//	@Tags		Questions
//	@Param		id	path	string	true	"Question ID"
//	@Success	204
//	@Failure	404	{object}	quizsdk.ErrorResponse
//	@Security	BearerAuth
//	@Router		/v1/questions/{id} [delete].
func (h *QuestionsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.QuestionService.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, r, "delete question", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

package http

import (
	"net/http"

	"github.com/himanshu0633/mytestbuddiesbackend/internal/quiz/domain"
	"github.com/himanshu0633/mytestbuddiesbackend/internal/quiz/service"
	"github.com/himanshu0633/mytestbuddiesbackend/pkg/httpx"
	"github.com/himanshu0633/mytestbuddiesbackend/pkg/quizsdk"
)

type ProgressHandler struct {
	ProgressService *service.ProgressService
}

// HandleSubmit godoc
//
//	@Summary		Submit a batch of answers
//	@Description	Grades each answer against the field's questions, case and surrounding space insensitive. Answers to unknown questions count towards totalAnswered but are not recorded. Totals describe the latest batch.
//	@Tags			Progress
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string							true	"Field ID"
//	@Param			request	body		quizsdk.SubmitAnswersRequest	true	"Answers"
//	@Success		200		{object}	quizsdk.ProgressResponse
//	@Failure		400		{object}	quizsdk.ErrorResponse
//	@Failure		404		{object}	quizsdk.ErrorResponse	"Field not found"
//	@Security		BearerAuth
//	@Router			/v1/fields/{id}/answers [post].
func (h *ProgressHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	id, ok := callerID(w, r)
	if !ok {
		return
	}

	var req quizsdk.SubmitAnswersRequest
	if !decodeBody(w, r, &req) {
		return
	}

	answers := make([]domain.Answer, 0, len(req.Answers))
	for _, a := range req.Answers {
		answers = append(answers, domain.Answer{QuestionID: a.QuestionID, Answer: a.Answer})
	}

	p, err := h.ProgressService.Submit(r.Context(), id, r.PathValue("id"), answers)
	if err != nil {
		writeServiceError(w, r, "submit answers", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, progressResponse(p))
}

// HandleGet godoc
//
//	@Summary	Get progress for a field
//	@Tags		Progress
//	@Produce	json
//	@Param		id	path		string	true	"Field ID"
//	@Success	200	{object}	quizsdk.ProgressResponse
//	@Failure	404	{object}	quizsdk.ErrorResponse	"Nothing submitted yet"
//	@Security	BearerAuth
//	@Router		/v1/fields/{id}/progress [get].
func (h *ProgressHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := callerID(w, r)
	if !ok {
		return
	}

	p, err := h.ProgressService.Get(r.Context(), id, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, "get progress", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, progressResponse(p))
}

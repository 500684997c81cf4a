package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/himanshu0633/mytestbuddiesbackend/internal/quiz/domain"
	"github.com/himanshu0633/mytestbuddiesbackend/internal/quiz/service"
	"github.com/himanshu0633/mytestbuddiesbackend/internal/quiz/store"
	"github.com/himanshu0633/mytestbuddiesbackend/pkg/httpx"
	"github.com/himanshu0633/mytestbuddiesbackend/pkg/quizsdk"
)

// PaymentsHandler serves the UPI UTR flow: orders, screenshot uploads,
// proof submission, access checks and the admin review queue.
type PaymentsHandler struct {
	PaymentService *service.PaymentService
}

// HandleCreateOrder godoc
//
//	@Summary		Create a payment order
//	@Description	Opens a pending order for a paid field and returns the UPI intent URI with its QR code as a PNG data URL.
//	@Tags			Payments
//	@Accept			json
//	@Produce		json
//	@Param			request	body		quizsdk.CreateOrderRequest	true	"Field to unlock"
//	@Success		201		{object}	quizsdk.OrderResponse
//	@Failure		400		{object}	quizsdk.ErrorResponse	"Field is free"
//	@Failure		404		{object}	quizsdk.ErrorResponse	"Field not found"
//	@Failure		409		{object}	quizsdk.ErrorResponse	"Field already unlocked"
//	@Security		BearerAuth
//	@Router			/v1/payments/orders [post].
func (h *PaymentsHandler) HandleCreateOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := callerID(w, r)
	if !ok {
		return
	}

	var req quizsdk.CreateOrderRequest
	if !decodeBody(w, r, &req) {
		return
	}

	o, err := h.PaymentService.CreateOrder(r.Context(), id, req.FieldID)
	if err != nil {
		writeServiceError(w, r, "create order", err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, quizsdk.OrderResponse{
		Payment: paymentResponse(o.Payment),
		UPIURI:  o.UPIURI,
		QRCode:  o.QRCode,
	})
}

// HandlePresignScreenshot godoc
//
//	@Summary		Get an upload URL for a payment screenshot
//	@Description	Returns a presigned PUT valid for 15 minutes. Pass the returned key as screenshotKey when submitting proof.
//	@Tags			Payments
//	@Accept			json
//	@Produce		json
//	@Param			request	body		quizsdk.ScreenshotUploadRequest	true	"Image content type"
//	@Success		200		{object}	quizsdk.UploadResponse
//	@Failure		400		{object}	quizsdk.ErrorResponse	"Unsupported content type"
//	@Failure		404		{object}	quizsdk.ErrorResponse	"Uploads not configured"
//	@Security		BearerAuth
//	@Router			/v1/payments/screenshots [post].
func (h *PaymentsHandler) HandlePresignScreenshot(w http.ResponseWriter, r *http.Request) {
	id, ok := callerID(w, r)
	if !ok {
		return
	}

	var req quizsdk.ScreenshotUploadRequest
	if !decodeBody(w, r, &req) {
		return
	}

	up, err := h.PaymentService.PresignScreenshot(r.Context(), id, req.ContentType)
	if err != nil {
		writeServiceError(w, r, "presign screenshot", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, quizsdk.UploadResponse{
		Key:       up.Key,
		URL:       up.URL,
		Method:    up.Method,
		ExpiresAt: up.ExpiresAt,
	})
}

// HandleSubmitProof godoc
//
//	@Summary		Attach payment proof to an order
//	@Description	Records the UTR and optional screenshot on the caller's pending order. A UTR can be used once.
//	@Tags			Payments
//	@Accept			json
//	@Produce		json
//	@Param			orderId	path		string						true	"Order ID"
//	@Param			request	body		quizsdk.SubmitProofRequest	true	"Proof"
//	@Success		200		{object}	quizsdk.PaymentResponse
//	@Failure		400		{object}	quizsdk.ErrorResponse
//	@Failure		403		{object}	quizsdk.ErrorResponse	"Screenshot belongs to another user"
//	@Failure		404		{object}	quizsdk.ErrorResponse
//	@Failure		409		{object}	quizsdk.ErrorResponse	"Proof already attached or UTR used"
//	@Security		BearerAuth
//	@Router			/v1/payments/orders/{orderId}/proof [post].
func (h *PaymentsHandler) HandleSubmitProof(w http.ResponseWriter, r *http.Request) {
	id, ok := callerID(w, r)
	if !ok {
		return
	}

	var req quizsdk.SubmitProofRequest
	if !decodeBody(w, r, &req) {
		return
	}

	p, err := h.PaymentService.SubmitProof(r.Context(), id, r.PathValue("orderId"), req.UTR, req.ScreenshotKey)
	if err != nil {
		writeServiceError(w, r, "submit payment proof", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, paymentResponse(p))
}

// HandleListMine godoc
//
//	@Summary	List my payments
//	@Tags		Payments
//	@Produce	json
//	@Success	200	{array}	quizsdk.PaymentResponse
//	@Security	BearerAuth
//	@Router		/v1/payments [get].
func (h *PaymentsHandler) HandleListMine(w http.ResponseWriter, r *http.Request) {
	id, ok := callerID(w, r)
	if !ok {
		return
	}

	ps, err := h.PaymentService.ListMine(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, "list payments", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, paymentResponses(ps))
}

// HandleAccess godoc
//
//	@Summary	Check access to a field
//	@Tags		Payments
//	@Produce	json
//	@Param		id	path		string	true	"Field ID"
//	@Success	200	{object}	quizsdk.AccessResponse
//	@Failure	404	{object}	quizsdk.ErrorResponse
//	@Security	BearerAuth
//	@Router		/v1/fields/{id}/access [get].
func (h *PaymentsHandler) HandleAccess(w http.ResponseWriter, r *http.Request) {
	id, ok := callerID(w, r)
	if !ok {
		return
	}

	a, err := h.PaymentService.Access(r.Context(), id, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, "check access", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, quizsdk.AccessResponse{Allowed: a.Allowed, Reason: a.Reason})
}

// HandleListForReview godoc
//
//	@Summary		List payments for review
//	@Description	Screenshot links are presigned GET URLs.
//	@Tags			Admin
//	@Produce		json
//	@Param			status	query		string	false	"pending, success or failed"
//	@Param			userId	query		string	false	"Filter by user"
//	@Param			fieldId	query		string	false	"Filter by field"
//	@Param			limit	query		int		false	"Page size, 100 by default"
//	@Success		200		{array}		quizsdk.PaymentResponse
//	@Failure		400		{object}	quizsdk.ErrorResponse
//	@Failure		403		{object}	quizsdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/admin/payments [get].
func (h *PaymentsHandler) HandleListForReview(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := store.PaymentFilter{
		Status:  domain.PaymentStatus(strings.ToLower(strings.TrimSpace(q.Get("status")))),
		UserID:  q.Get("userId"),
		FieldID: q.Get("fieldId"),
	}
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			httpx.WriteError(w, http.StatusBadRequest, quizsdk.ErrorCodeInvalidRequest, "Invalid limit")
			return
		}
		f.Limit = n
	}

	items, err := h.PaymentService.ListForReview(r.Context(), f)
	if err != nil {
		writeServiceError(w, r, "list payments for review", err)
		return
	}

	out := make([]quizsdk.PaymentResponse, 0, len(items))
	for _, it := range items {
		p := paymentResponse(it.Payment)
		p.ScreenshotURL = it.ScreenshotURL
		out = append(out, p)
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleReview godoc
//
//	@Summary		Settle a payment
//	@Description	Moves a pending payment to success or failed. A payment can only be settled once.
//	@Tags			Admin
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string							true	"Payment ID"
//	@Param			request	body		quizsdk.ReviewPaymentRequest	true	"Outcome"
//	@Success		200		{object}	quizsdk.PaymentResponse
//	@Failure		400		{object}	quizsdk.ErrorResponse
//	@Failure		404		{object}	quizsdk.ErrorResponse
//	@Failure		409		{object}	quizsdk.ErrorResponse	"Already processed"
//	@Security		BearerAuth
//	@Router			/v1/admin/payments/{id}/verify [post].
func (h *PaymentsHandler) HandleReview(w http.ResponseWriter, r *http.Request) {
	id, ok := callerID(w, r)
	if !ok {
		return
	}

	var req quizsdk.ReviewPaymentRequest
	if !decodeBody(w, r, &req) {
		return
	}

	p, err := h.PaymentService.Review(r.Context(), id, r.PathValue("id"), req.Status)
	if err != nil {
		writeServiceError(w, r, "review payment", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, paymentResponse(p))
}

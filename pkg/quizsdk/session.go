package quizsdk

import (
	"context"
	"net/http"
	"net/url"
)

// Session makes authenticated calls with one bearer token. Tokens are not
// refreshed; log in again once ExpiresAt has passed. Safe for concurrent use.
type Session struct {
	client *Client
	token  string
}

// Token returns the bearer token of the session.
func (s *Session) Token() string { return s.token }

func (s *Session) do(ctx context.Context, method, path string, body, target any, expected int) error {
	return s.client.do(ctx, method, path, s.token, body, target, expected)
}

func (s *Session) Me(ctx context.Context) (*UserResponse, error) {
	var out UserResponse
	if err := s.do(ctx, http.MethodGet, "/v1/auth/me", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// ============================================================================
// Fields
// ============================================================================

func (s *Session) ListFields(ctx context.Context) ([]FieldResponse, error) {
	var out []FieldResponse
	if err := s.do(ctx, http.MethodGet, "/v1/fields", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Session) GetField(ctx context.Context, id string) (*FieldResponse, error) {
	var out FieldResponse
	if err := s.do(ctx, http.MethodGet, "/v1/fields/"+url.PathEscape(id), nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetFieldWithQuestions returns the field and its questions as the caller
// may see them.
func (s *Session) GetFieldWithQuestions(ctx context.Context, id string) (*FieldWithQuestionsResponse, error) {
	var out FieldWithQuestionsResponse
	if err := s.do(ctx, http.MethodGet, "/v1/fields/"+url.PathEscape(id)+"/full", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) CreateField(ctx context.Context, req FieldRequest) (*FieldResponse, error) {
	var out FieldResponse
	if err := s.do(ctx, http.MethodPost, "/v1/fields", req, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) UpdateField(ctx context.Context, id string, req FieldRequest) (*FieldResponse, error) {
	var out FieldResponse
	if err := s.do(ctx, http.MethodPut, "/v1/fields/"+url.PathEscape(id), req, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) DeleteField(ctx context.Context, id string) error {
	return s.do(ctx, http.MethodDelete, "/v1/fields/"+url.PathEscape(id), nil, nil, http.StatusNoContent)
}

// ============================================================================
// Questions
// ============================================================================

func (s *Session) ListQuestions(ctx context.Context, fieldID string) ([]QuestionResponse, error) {
	var out []QuestionResponse
	if err := s.do(ctx, http.MethodGet, "/v1/fields/"+url.PathEscape(fieldID)+"/questions", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Session) CreateQuestion(ctx context.Context, fieldID string, req QuestionRequest) (*QuestionResponse, error) {
	var out QuestionResponse
	if err := s.do(ctx, http.MethodPost, "/v1/fields/"+url.PathEscape(fieldID)+"/questions", req, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) GetQuestion(ctx context.Context, id string) (*QuestionResponse, error) {
	var out QuestionResponse
	if err := s.do(ctx, http.MethodGet, "/v1/questions/"+url.PathEscape(id), nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) UpdateQuestion(ctx context.Context, id string, req QuestionRequest) (*QuestionResponse, error) {
	var out QuestionResponse
	if err := s.do(ctx, http.MethodPut, "/v1/questions/"+url.PathEscape(id), req, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) DeleteQuestion(ctx context.Context, id string) error {
	return s.do(ctx, http.MethodDelete, "/v1/questions/"+url.PathEscape(id), nil, nil, http.StatusNoContent)
}

// ============================================================================
// Progress
// ============================================================================

// SubmitAnswers grades a batch for the field and returns the updated progress.
func (s *Session) SubmitAnswers(ctx context.Context, fieldID string, answers []AnswerRequest) (*ProgressResponse, error) {
	var out ProgressResponse
	req := SubmitAnswersRequest{Answers: answers}
	if err := s.do(ctx, http.MethodPost, "/v1/fields/"+url.PathEscape(fieldID)+"/answers", req, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) GetProgress(ctx context.Context, fieldID string) (*ProgressResponse, error) {
	var out ProgressResponse
	if err := s.do(ctx, http.MethodGet, "/v1/fields/"+url.PathEscape(fieldID)+"/progress", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// ============================================================================
// Payments
// ============================================================================

func (s *Session) CreateOrder(ctx context.Context, fieldID string) (*OrderResponse, error) {
	var out OrderResponse
	if err := s.do(ctx, http.MethodPost, "/v1/payments/orders", CreateOrderRequest{FieldID: fieldID}, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// PresignScreenshot returns an upload URL for a payment screenshot.
func (s *Session) PresignScreenshot(ctx context.Context, contentType string) (*UploadResponse, error) {
	var out UploadResponse
	req := ScreenshotUploadRequest{ContentType: contentType}
	if err := s.do(ctx, http.MethodPost, "/v1/payments/screenshots", req, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) SubmitProof(ctx context.Context, orderID string, req SubmitProofRequest) (*PaymentResponse, error) {
	var out PaymentResponse
	if err := s.do(ctx, http.MethodPost, "/v1/payments/orders/"+url.PathEscape(orderID)+"/proof", req, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) ListPayments(ctx context.Context) ([]PaymentResponse, error) {
	var out []PaymentResponse
	if err := s.do(ctx, http.MethodGet, "/v1/payments", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Session) FieldAccess(ctx context.Context, fieldID string) (*AccessResponse, error) {
	var out AccessResponse
	if err := s.do(ctx, http.MethodGet, "/v1/fields/"+url.PathEscape(fieldID)+"/access", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// ============================================================================
// Administration
// ============================================================================

// ListPaymentsForReview lists payments, optionally by status. Requires the
// admin role.
func (s *Session) ListPaymentsForReview(ctx context.Context, status string) ([]PaymentResponse, error) {
	path := "/v1/admin/payments"
	if status != "" {
		path += "?" + url.Values{"status": {status}}.Encode()
	}

	var out []PaymentResponse
	if err := s.do(ctx, http.MethodGet, path, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Session) ReviewPayment(ctx context.Context, paymentID, status string) (*PaymentResponse, error) {
	var out PaymentResponse
	req := ReviewPaymentRequest{Status: status}
	if err := s.do(ctx, http.MethodPost, "/v1/admin/payments/"+url.PathEscape(paymentID)+"/verify", req, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) DisableUser(ctx context.Context, userID string) (*UserResponse, error) {
	var out UserResponse
	if err := s.do(ctx, http.MethodPost, "/v1/admin/users/"+url.PathEscape(userID)+"/disable", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) EnableUser(ctx context.Context, userID string) (*UserResponse, error) {
	var out UserResponse
	if err := s.do(ctx, http.MethodPost, "/v1/admin/users/"+url.PathEscape(userID)+"/enable", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

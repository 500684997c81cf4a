package quizsdk

import (
	"time"

	"github.com/himanshu0633/mytestbuddiesbackend/pkg/jwtx"
)

// ============================================================================
// Errors
// ============================================================================

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error            string `json:"error" example:"invalid_request"`
	ErrorDescription string `json:"error_description" example:"Valid email is required"`

	// RetryAfter is set on cooldown responses, in seconds.
	RetryAfter int `json:"retry_after,omitempty" example:"18"`
}

// MessageResponse acknowledges an action without a payload.
type MessageResponse struct {
	Message string `json:"message" example:"OTP sent"`
}

// ============================================================================
// OTP and accounts
// ============================================================================

type SendOTPRequest struct {
	Email string `json:"email" example:"asha@example.com"`
}

type VerifyOTPRequest struct {
	Email string `json:"email" example:"asha@example.com"`
	OTP   string `json:"otp" example:"482913"`
}

type RegisterRequest struct {
	Name     string `json:"name" example:"Asha Rao"`
	Email    string `json:"email" example:"asha@example.com"`
	Mobile   string `json:"mobile" example:"9876543210"`
	Password string `json:"password" example:"secret123"`
	UserType string `json:"userType" example:"student" enums:"student,general"`
}

// LoginRequest identifies the account by email or, when email is empty, by
// mobile.
type LoginRequest struct {
	Email    string `json:"email,omitempty" example:"asha@example.com"`
	Mobile   string `json:"mobile,omitempty" example:"9876543210"`
	Password string `json:"password" example:"secret123"`
}

// UserResponse is an account as shown to clients. It never carries the
// password hash.
type UserResponse struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Email         string     `json:"email,omitempty"`
	Mobile        string     `json:"mobile,omitempty"`
	UserType      string     `json:"userType" enums:"student,general"`
	Role          string     `json:"role" enums:"user,admin"`
	EmailVerified bool       `json:"emailVerified"`
	Disabled      bool       `json:"disabled"`
	LastLoginAt   *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// DeliveryResponse reports a best effort email.
type DeliveryResponse struct {
	Sent      bool   `json:"sent"`
	MessageID string `json:"messageId,omitempty"`
	Driver    string `json:"driver,omitempty"`
	Error     string `json:"error,omitempty"`
	Temporary bool   `json:"temporary,omitempty"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Message   string       `json:"message"`
	Token     string       `json:"token"`
	TokenType string       `json:"tokenType" example:"Bearer"`
	ExpiresIn int          `json:"expiresIn" example:"86400"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      UserResponse `json:"user"`

	// WelcomeEmail is only set by register.
	WelcomeEmail *DeliveryResponse `json:"welcomeEmail,omitempty"`
}

// ============================================================================
// Fields and questions
// ============================================================================

type FieldRequest struct {
	Name                   string `json:"name" example:"Quantitative Aptitude"`
	Description            string `json:"description,omitempty"`
	For                    string `json:"for,omitempty" enums:"student,general"`
	DefaultTimePerQuestion int    `json:"defaultTimePerQuestion,omitempty" example:"60"`
	PricePaise             int64  `json:"pricePaise,omitempty" example:"49900"`
}

type FieldResponse struct {
	ID                     string    `json:"id"`
	Name                   string    `json:"name"`
	Description            string    `json:"description,omitempty"`
	For                    string    `json:"for,omitempty"`
	DefaultTimePerQuestion int       `json:"defaultTimePerQuestion"`
	PricePaise             int64     `json:"pricePaise"`
	Free                   bool      `json:"free"`
	CreatedBy              string    `json:"createdBy,omitempty"`
	CreatedAt              time.Time `json:"createdAt"`
	UpdatedAt              time.Time `json:"updatedAt"`
}

type FieldWithQuestionsResponse struct {
	Field     FieldResponse      `json:"field"`
	Questions []QuestionResponse `json:"questions"`
}

type QuestionRequest struct {
	Type          string   `json:"type,omitempty" enums:"mcq,descriptive" example:"mcq"`
	Text          string   `json:"text" example:"What is 12 x 12?"`
	Options       []string `json:"options,omitempty"`
	CorrectAnswer string   `json:"correctAnswer,omitempty" example:"144"`
	Solution      string   `json:"solution,omitempty"`
}

// QuestionResponse omits correctAnswer and solution for non-admin callers.
type QuestionResponse struct {
	ID            string    `json:"id"`
	FieldID       string    `json:"fieldId"`
	Type          string    `json:"type"`
	Text          string    `json:"text"`
	Options       []string  `json:"options"`
	CorrectAnswer *string   `json:"correctAnswer,omitempty"`
	Solution      *string   `json:"solution,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// ============================================================================
// Progress
// ============================================================================

type AnswerRequest struct {
	QuestionID string `json:"questionId"`
	Answer     string `json:"answer"`
}

type SubmitAnswersRequest struct {
	Answers []AnswerRequest `json:"answers"`
}

type AnsweredResponse struct {
	QuestionID string    `json:"questionId"`
	Answer     string    `json:"answer"`
	IsCorrect  bool      `json:"isCorrect"`
	Batch      int       `json:"batch"`
	AnsweredAt time.Time `json:"answeredAt"`
}

// ProgressResponse carries the totals of the latest batch and the full
// answer history.
type ProgressResponse struct {
	ID                string             `json:"id"`
	UserID            string             `json:"userId"`
	FieldID           string             `json:"fieldId"`
	QuestionsAnswered []AnsweredResponse `json:"questionsAnswered"`
	TotalCorrect      int                `json:"totalCorrect"`
	TotalAnswered     int                `json:"totalAnswered"`
	Submissions       int                `json:"submissions"`
	UpdatedAt         time.Time          `json:"updatedAt"`
}

// ============================================================================
// Payments
// ============================================================================

type CreateOrderRequest struct {
	FieldID string `json:"fieldId"`
}

type PaymentResponse struct {
	ID            string     `json:"id"`
	OrderID       string     `json:"orderId" example:"7Q2M9XKD4HPA"`
	UserID        string     `json:"userId"`
	FieldID       string     `json:"fieldId"`
	Method        string     `json:"method" example:"UPI_UTR"`
	AmountPaise   int64      `json:"amountPaise" example:"49900"`
	Amount        string     `json:"amount" example:"499.00"`
	UTR           string     `json:"utr,omitempty"`
	ScreenshotKey string     `json:"screenshotKey,omitempty"`
	ScreenshotURL string     `json:"screenshotUrl,omitempty"`
	Status        string     `json:"status" enums:"pending,success,failed"`
	ReviewedBy    string     `json:"reviewedBy,omitempty"`
	ReviewedAt    *time.Time `json:"reviewedAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

type OrderResponse struct {
	Payment PaymentResponse `json:"payment"`
	UPIURI  string          `json:"upiUri"`
	QRCode  string          `json:"qrCode"`
}

type ScreenshotUploadRequest struct {
	ContentType string `json:"contentType" enums:"image/png,image/jpeg,image/webp"`
}

// UploadResponse is a presigned PUT the client performs against the bucket.
type UploadResponse struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	Method    string    `json:"method"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type SubmitProofRequest struct {
	UTR           string `json:"utr" example:"412345678901"`
	ScreenshotKey string `json:"screenshotKey,omitempty"`
}

type ReviewPaymentRequest struct {
	Status string `json:"status" enums:"success,failed"`
}

type AccessResponse struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason" enums:"free,paid,payment_pending,payment_required"`
}

// ============================================================================
// System
// ============================================================================

// HealthResponse is returned by /livez and /readyz; only readyz sets Checks.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime,omitempty"`
	Version string        `json:"version,omitempty"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

type HealthChecks struct {
	Database string `json:"database"`
	Signer   string `json:"signer"`
}

// JWKSResponse contains the public keys that verify issued tokens. It is
// empty when tokens are signed with a shared secret.
type JWKSResponse jwtx.JWKS

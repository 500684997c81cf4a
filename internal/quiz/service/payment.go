package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/himanshu0633/mytestbuddiesbackend/internal/quiz/domain"
	"github.com/himanshu0633/mytestbuddiesbackend/internal/quiz/store"
	"github.com/himanshu0633/mytestbuddiesbackend/pkg/cryptox"
	"github.com/himanshu0633/mytestbuddiesbackend/pkg/idx"
	"github.com/himanshu0633/mytestbuddiesbackend/pkg/objectx"
	"github.com/himanshu0633/mytestbuddiesbackend/pkg/slogx"
	"github.com/himanshu0633/mytestbuddiesbackend/pkg/upix"
)

// Access reasons reported by PaymentService.Access.
const (
	AccessFree     = "free"
	AccessPaid     = "paid"
	AccessPending  = "payment_pending"
	AccessRequired = "payment_required"
)

// Order is a pending payment with the UPI intent the payer scans.
type Order struct {
	Payment domain.Payment
	UPIURI  string
	QRCode  string
}

// ReviewItem is a payment as shown to reviewers, with a short lived link to
// the screenshot when one was uploaded.
type ReviewItem struct {
	Payment       domain.Payment
	ScreenshotURL string
}

type Access struct {
	Allowed bool
	Reason  string
}

// PaymentService runs the manual UPI flow: order, proof, admin review.
type PaymentService struct {
	Store store.Store
	Payee upix.Payee
	// Objects is nil when screenshot uploads are not configured.
	Objects *objectx.Presigner

	Now func() time.Time
}

func (s *PaymentService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// CreateOrder opens a pending payment for a paid field at its current price.
func (s *PaymentService) CreateOrder(ctx context.Context, userID, fieldID string) (Order, error) {
	log := slogx.FromContext(ctx)
	now := s.now()

	// 1. Resolve the field and its price
	fieldID = strings.TrimSpace(fieldID)
	if fieldID == "" {
		return Order{}, invalid("Missing fields: fieldId")
	}
	f, err := s.Store.Fields().Get(ctx, fieldID)
	if errors.Is(err, store.ErrNotFound) {
		return Order{}, ErrFieldNotFound
	}
	if err != nil {
		return Order{}, internal(err)
	}
	if f.Free() {
		return Order{}, ErrFieldFree
	}

	// 2. Refuse a second purchase
	paid, err := s.Store.Payments().HasSuccessful(ctx, userID, fieldID)
	if err != nil {
		return Order{}, internal(err)
	}
	if paid {
		return Order{}, ErrAlreadyUnlocked
	}

	// 3. Record the order
	orderID, err := cryptox.GenerateReference("", 12)
	if err != nil {
		return Order{}, internal(err)
	}
	p := domain.Payment{
		ID:          idx.New().String(),
		OrderID:     orderID,
		UserID:      userID,
		FieldID:     fieldID,
		Method:      domain.PaymentMethodUPIUTR,
		AmountPaise: f.PricePaise,
		Status:      domain.PaymentPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Store.Payments().Create(ctx, p); err != nil {
		log.Error("failed to create order", slog.Any("error", err))
		return Order{}, internal(err)
	}

	// 4. Build the payer's intent
	uri, err := s.Payee.URI(upix.Intent{AmountPaise: p.AmountPaise, Note: upix.OrderNote(orderID)})
	if err != nil {
		log.Error("failed to build upi uri", slog.Any("error", err))
		return Order{}, internal(err)
	}
	qr, err := upix.QRDataURL(uri)
	if err != nil {
		log.Error("failed to render upi qr", slog.Any("error", err))
		return Order{}, internal(err)
	}

	log.Info("order created",
		slog.String("order_id", orderID),
		slog.String("field_id", fieldID),
		slog.Int64("amount_paise", p.AmountPaise),
	)
	return Order{Payment: p, UPIURI: uri, QRCode: qr}, nil
}

// PresignScreenshot hands out an upload URL under the caller's key prefix.
func (s *PaymentService) PresignScreenshot(ctx context.Context, userID, contentType string) (objectx.Upload, error) {
	if s.Objects == nil {
		return objectx.Upload{}, ErrUploadsDisabled
	}
	switch contentType {
	case "image/png", "image/jpeg", "image/jpg", "image/webp":
	default:
		return objectx.Upload{}, invalid("contentType must be image/png, image/jpeg or image/webp")
	}

	now := s.now()
	up, err := s.Objects.PresignPut(ctx, objectx.ScreenshotKey(userID, contentType, now), contentType, now)
	if err != nil {
		slogx.FromContext(ctx).Error("failed to presign upload", slog.Any("error", err))
		return objectx.Upload{}, internal(err)
	}
	return up, nil
}

// SubmitProof attaches a UTR, and optionally an uploaded screenshot, to the
// caller's pending order. A UTR can back only one payment.
func (s *PaymentService) SubmitProof(ctx context.Context, userID, orderID, utr, screenshotKey string) (domain.Payment, error) {
	log := slogx.FromContext(ctx)

	utr = NormalizeUTR(utr)
	screenshotKey = strings.TrimSpace(screenshotKey)
	if m := missing([2]string{"orderId", orderID}, [2]string{"utr", utr}); len(m) > 0 {
		return domain.Payment{}, invalid("Missing fields: %s", strings.Join(m, ", "))
	}
	if !validUTR(utr) {
		return domain.Payment{}, invalid("UTR must be 8 to 22 letters or digits")
	}
	if screenshotKey != "" && !objectx.OwnedBy(screenshotKey, userID) {
		return domain.Payment{}, ErrScreenshotForeign
	}

	p, err := s.Store.Payments().AttachProof(ctx, orderID, userID, utr, screenshotKey, s.now())
	switch {
	case errors.Is(err, store.ErrNotFound):
		return domain.Payment{}, ErrPaymentNotFound
	case errors.Is(err, store.ErrConditionFailed):
		return domain.Payment{}, ErrAlreadyProcessed
	case errors.Is(err, store.ErrAlreadyExists):
		return domain.Payment{}, ErrUTRUsed
	case err != nil:
		log.Error("failed to attach proof", slog.String("order_id", orderID), slog.Any("error", err))
		return domain.Payment{}, internal(err)
	}

	log.Info("payment proof submitted", slog.String("order_id", orderID), slog.Bool("screenshot", screenshotKey != ""))
	return p, nil
}

func (s *PaymentService) ListMine(ctx context.Context, userID string) ([]domain.Payment, error) {
	ps, err := s.Store.Payments().List(ctx, store.PaymentFilter{UserID: userID})
	if err != nil {
		return nil, internal(err)
	}
	return ps, nil
}

// ListForReview returns payments for admins. Screenshot links are signed on
// the fly; a signing failure leaves the link empty.
func (s *PaymentService) ListForReview(ctx context.Context, f store.PaymentFilter) ([]ReviewItem, error) {
	log := slogx.FromContext(ctx)

	if f.Status != "" && !f.Status.Valid() {
		return nil, invalid("Invalid status filter")
	}
	if f.Limit <= 0 || f.Limit > 500 {
		f.Limit = 100
	}

	ps, err := s.Store.Payments().List(ctx, f)
	if err != nil {
		log.Error("failed to list payments", slog.Any("error", err))
		return nil, internal(err)
	}

	out := make([]ReviewItem, 0, len(ps))
	for _, p := range ps {
		item := ReviewItem{Payment: p}
		if p.ScreenshotKey != "" && s.Objects != nil {
			url, err := s.Objects.PresignGet(ctx, p.ScreenshotKey)
			if err != nil {
				log.Warn("failed to presign screenshot", slog.String("payment_id", p.ID), slog.Any("error", err))
			} else {
				item.ScreenshotURL = url
			}
		}
		out = append(out, item)
	}
	return out, nil
}

// Review settles a pending payment as success or failed. Any other current
// status is reported as already processed.
func (s *PaymentService) Review(ctx context.Context, adminID, paymentID, status string) (domain.Payment, error) {
	log := slogx.FromContext(ctx)

	st := domain.PaymentStatus(strings.ToLower(strings.TrimSpace(status)))
	if st != domain.PaymentSuccess && st != domain.PaymentFailed {
		return domain.Payment{}, invalid("Invalid payment status. It should be 'success' or 'failed'.")
	}

	p, err := s.Store.Payments().Review(ctx, paymentID, st, adminID, s.now())
	switch {
	case errors.Is(err, store.ErrNotFound):
		return domain.Payment{}, ErrPaymentNotFound
	case errors.Is(err, store.ErrConditionFailed):
		return domain.Payment{}, ErrAlreadyProcessed
	case err != nil:
		log.Error("failed to review payment", slog.String("payment_id", paymentID), slog.Any("error", err))
		return domain.Payment{}, internal(err)
	}

	log.Info("payment reviewed",
		slog.String("payment_id", paymentID),
		slog.String("admin_id", adminID),
		slog.String("status", string(st)),
	)
	return p, nil
}

// Access tells whether userID may take the field's quiz.
func (s *PaymentService) Access(ctx context.Context, userID, fieldID string) (Access, error) {
	f, err := s.Store.Fields().Get(ctx, fieldID)
	if errors.Is(err, store.ErrNotFound) {
		return Access{}, ErrFieldNotFound
	}
	if err != nil {
		return Access{}, internal(err)
	}
	if f.Free() {
		return Access{Allowed: true, Reason: AccessFree}, nil
	}

	paid, err := s.Store.Payments().HasSuccessful(ctx, userID, fieldID)
	if err != nil {
		return Access{}, internal(err)
	}
	if paid {
		return Access{Allowed: true, Reason: AccessPaid}, nil
	}

	pending, err := s.Store.Payments().List(ctx, store.PaymentFilter{
		UserID: userID, FieldID: fieldID, Status: domain.PaymentPending, Limit: 1,
	})
	if err != nil {
		return Access{}, internal(err)
	}
	if len(pending) > 0 && pending[0].HasProof() {
		return Access{Allowed: false, Reason: AccessPending}, nil
	}
	return Access{Allowed: false, Reason: AccessRequired}, nil
}

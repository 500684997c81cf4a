package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/himanshu0633/mytestbuddiesbackend/internal/quiz/domain"
	"github.com/himanshu0633/mytestbuddiesbackend/internal/quiz/store"
	"github.com/himanshu0633/mytestbuddiesbackend/pkg/objectx"
	"github.com/himanshu0633/mytestbuddiesbackend/pkg/upix"
)

func newPaymentService(t *testing.T, f *fixture, uploads bool) *PaymentService {
	t.Helper()

	s := &PaymentService{
		Store: f.store,
		Payee: upix.Payee{VPA: "mytestbuddies@okaxis", Name: "My Test Buddies"},
		Now:   f.clock.Now,
	}
	if uploads {
		p, err := objectx.NewPresigner(context.Background(), objectx.Config{
			Region:    "ap-south-1",
			Bucket:    "payment-proofs",
			Endpoint:  "http://127.0.0.1:9000",
			AccessKey: "minio",
			SecretKey: "minio-secret",
			PathStyle: true,
		})
		require.NoError(t, err)
		s.Objects = p
	}
	return s
}

func TestPaymentFlow(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	f := newFixture(t)
	pay := newPaymentService(t, f, true)
	u := seedLearner(t, f, "asha@example.com")
	admin := seedLearner(t, f, "root@example.com")
	free := f.field(t, "Basics", 0)
	paid := f.field(t, "Advanced", 49900)

	t.Run("free fields need no order", func(t *testing.T) {
		_, err := pay.CreateOrder(ctx, u.ID, free.ID)
		require.ErrorIs(t, err, ErrFieldFree)

		acc, err := pay.Access(ctx, u.ID, free.ID)
		require.NoError(t, err)
		require.Equal(t, Access{Allowed: true, Reason: AccessFree}, acc)
	})

	t.Run("unknown field", func(t *testing.T) {
		_, err := pay.CreateOrder(ctx, u.ID, "missing")
		require.ErrorIs(t, err, ErrFieldNotFound)
	})

	order, err := pay.CreateOrder(ctx, u.ID, paid.ID)
	require.NoError(t, err)

	t.Run("order carries the upi intent", func(t *testing.T) {
		require.Equal(t, domain.PaymentPending, order.Payment.Status)
		require.Equal(t, int64(49900), order.Payment.AmountPaise)
		require.Equal(t, domain.PaymentMethodUPIUTR, order.Payment.Method)
		require.Len(t, order.Payment.OrderID, 12)
		require.True(t, strings.HasPrefix(order.UPIURI, "upi://pay?"))
		require.Contains(t, order.UPIURI, "am=499.00")
		require.Contains(t, order.UPIURI, "tn="+upix.OrderNote(order.Payment.OrderID))
		require.True(t, strings.HasPrefix(order.QRCode, "data:image/png;base64,"))

		acc, err := pay.Access(ctx, u.ID, paid.ID)
		require.NoError(t, err)
		require.Equal(t, AccessRequired, acc.Reason)
	})

	upload, err := pay.PresignScreenshot(ctx, u.ID, "image/png")
	require.NoError(t, err)

	t.Run("screenshot upload is scoped to the caller", func(t *testing.T) {
		require.True(t, objectx.OwnedBy(upload.Key, u.ID))
		require.True(t, strings.HasSuffix(upload.Key, ".png"))
		require.Contains(t, upload.URL, "payment-proofs")
		require.Equal(t, f.clock.Now().Add(objectx.DefaultExpiry), upload.ExpiresAt)

		_, err := pay.PresignScreenshot(ctx, u.ID, "application/pdf")
		require.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("proof validation", func(t *testing.T) {
		_, err := pay.SubmitProof(ctx, u.ID, order.Payment.OrderID, "", "")
		require.ErrorIs(t, err, ErrInvalidInput)
		require.Equal(t, "Missing fields: utr", Message(err))

		_, err = pay.SubmitProof(ctx, u.ID, order.Payment.OrderID, "12-34", "")
		require.ErrorIs(t, err, ErrInvalidInput)

		_, err = pay.SubmitProof(ctx, u.ID, order.Payment.OrderID, "UTR12345678", "payments/someone-else/2025/01/x.png")
		require.ErrorIs(t, err, ErrScreenshotForeign)

		_, err = pay.SubmitProof(ctx, admin.ID, order.Payment.OrderID, "UTR12345678", "")
		require.ErrorIs(t, err, ErrPaymentNotFound)
	})

	t.Run("proof is attached once", func(t *testing.T) {
		p, err := pay.SubmitProof(ctx, u.ID, order.Payment.OrderID, " utr12345678 ", upload.Key)
		require.NoError(t, err)
		require.Equal(t, "UTR12345678", p.UTR)
		require.Equal(t, upload.Key, p.ScreenshotKey)

		_, err = pay.SubmitProof(ctx, u.ID, order.Payment.OrderID, "UTR87654321", "")
		require.ErrorIs(t, err, ErrAlreadyProcessed)

		acc, err := pay.Access(ctx, u.ID, paid.ID)
		require.NoError(t, err)
		require.Equal(t, Access{Allowed: false, Reason: AccessPending}, acc)
	})

	t.Run("a utr backs one payment only", func(t *testing.T) {
		other := seedLearner(t, f, "ravi@example.com")
		o, err := pay.CreateOrder(ctx, other.ID, paid.ID)
		require.NoError(t, err)

		_, err = pay.SubmitProof(ctx, other.ID, o.Payment.OrderID, "UTR12345678", "")
		require.ErrorIs(t, err, ErrUTRUsed)
	})

	t.Run("reviewers see pending proofs with links", func(t *testing.T) {
		items, err := pay.ListForReview(ctx, store.PaymentFilter{Status: domain.PaymentPending})
		require.NoError(t, err)
		require.Len(t, items, 2)

		var withProof ReviewItem
		for _, it := range items {
			if it.Payment.ID == order.Payment.ID {
				withProof = it
			}
		}
		require.NotEmpty(t, withProof.ScreenshotURL)
		require.Contains(t, withProof.ScreenshotURL, "X-Amz-Signature")

		_, err = pay.ListForReview(ctx, store.PaymentFilter{Status: "refunded"})
		require.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("review settles once", func(t *testing.T) {
		_, err := pay.Review(ctx, admin.ID, order.Payment.ID, "pending")
		require.ErrorIs(t, err, ErrInvalidInput)
		require.Equal(t, "Invalid payment status. It should be 'success' or 'failed'.", Message(err))

		f.clock.Advance(time.Minute)
		p, err := pay.Review(ctx, admin.ID, order.Payment.ID, "SUCCESS")
		require.NoError(t, err)
		require.Equal(t, domain.PaymentSuccess, p.Status)
		require.Equal(t, admin.ID, p.ReviewedBy)
		require.NotNil(t, p.ReviewedAt)

		_, err = pay.Review(ctx, admin.ID, order.Payment.ID, "failed")
		require.ErrorIs(t, err, ErrAlreadyProcessed)

		_, err = pay.Review(ctx, admin.ID, "missing", "failed")
		require.ErrorIs(t, err, ErrPaymentNotFound)
	})

	t.Run("settled payment unlocks the field", func(t *testing.T) {
		acc, err := pay.Access(ctx, u.ID, paid.ID)
		require.NoError(t, err)
		require.Equal(t, Access{Allowed: true, Reason: AccessPaid}, acc)

		_, err = pay.CreateOrder(ctx, u.ID, paid.ID)
		require.ErrorIs(t, err, ErrAlreadyUnlocked)

		mine, err := pay.ListMine(ctx, u.ID)
		require.NoError(t, err)
		require.Len(t, mine, 1)
	})
}

func TestPresignWithoutStorage(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	pay := newPaymentService(t, f, false)

	_, err := pay.PresignScreenshot(context.Background(), "user", "image/png")
	require.ErrorIs(t, err, ErrUploadsDisabled)
}

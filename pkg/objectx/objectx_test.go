package objectx

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{
		Region:    "ap-south-1",
		Bucket:    "quiz-proofs",
		Endpoint:  "http://127.0.0.1:9000",
		AccessKey: "minioadmin",
		SecretKey: "minioadmin",
		PathStyle: true,
	}
}

func TestPresignPutAndGet(t *testing.T) {
	p, err := NewPresigner(context.Background(), testConfig())
	require.NoError(t, err)

	now := time.Date(2026, 5, 2, 10, 0, 0, 0, time.UTC)
	key := ScreenshotKey("01HZUSER", "image/png", now)
	require.True(t, strings.HasPrefix(key, "payments/01HZUSER/2026/05/"))
	require.True(t, strings.HasSuffix(key, ".png"))

	up, err := p.PresignPut(context.Background(), key, "image/png", now)
	require.NoError(t, err)
	require.Equal(t, "PUT", up.Method)
	require.Equal(t, now.Add(DefaultExpiry), up.ExpiresAt)
	require.Contains(t, up.URL, "http://127.0.0.1:9000/quiz-proofs/payments/01HZUSER/")
	require.Contains(t, up.URL, "X-Amz-Signature=")
	require.Contains(t, up.URL, "X-Amz-Expires=900")

	getURL, err := p.PresignGet(context.Background(), key)
	require.NoError(t, err)
	require.Contains(t, getURL, "/quiz-proofs/"+key)
}

func TestNewPresignerDisabled(t *testing.T) {
	_, err := NewPresigner(context.Background(), Config{})
	require.ErrorIs(t, err, ErrDisabled)
}

func TestPresignPutError(t *testing.T) {
	orig := presignPutObject
	t.Cleanup(func() { presignPutObject = orig })

	presignPutObject = func(*s3.PresignClient, context.Context, *s3.PutObjectInput, ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return nil, errors.New("boom")
	}

	p, err := NewPresigner(context.Background(), testConfig())
	require.NoError(t, err)

	_, err = p.PresignPut(context.Background(), "payments/u/x.png", "image/png", time.Now())
	require.ErrorContains(t, err, "presign put: boom")
}

func TestOwnedBy(t *testing.T) {
	key := ScreenshotKey("u1", "image/jpeg", time.Now())

	require.True(t, OwnedBy(key, "u1"))
	require.False(t, OwnedBy(key, "u2"))
	require.False(t, OwnedBy("payments/u1/../u2/x.png", "u1"))
	require.False(t, OwnedBy(key, ""))
}

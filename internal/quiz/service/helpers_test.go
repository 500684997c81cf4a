package service

import (
	"context"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/himanshu0633/mytestbuddiesbackend/internal/quiz/domain"
	"github.com/himanshu0633/mytestbuddiesbackend/internal/quiz/store/drivers/sqlite"
	"github.com/himanshu0633/mytestbuddiesbackend/pkg/idx"
	"github.com/himanshu0633/mytestbuddiesbackend/pkg/jwtx"
	"github.com/himanshu0633/mytestbuddiesbackend/pkg/mailx"
)

// clock is a settable time source shared by the services under test.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

// newClock starts at the current wall time, truncated to the second, so
// tokens issued under it still verify.
func newClock() *clock {
	return &clock{now: time.Now().UTC().Truncate(time.Second)}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// fixture wires every service onto one in-memory store.
type fixture struct {
	store  *sqlite.Store
	mail   *mailx.CaptureSender
	keys   *jwtx.KeyManager
	clock  *clock
	otp    *OTPService
	reg    *RegistrationService
	auth   *AuthService
	users  *UserService
	fields *FieldService
	qs     *QuestionService
	prog   *ProgressService
}

var testOTPPolicy = OTPPolicy{HashCost: bcrypt.MinCost}

var testAuthPolicy = AuthPolicy{PasswordCost: bcrypt.MinCost}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	keys, err := jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{
		Issuer:   "https://quiz.test",
		Audience: []string{"quiz-api"},
	})
	require.NoError(t, err)

	f := &fixture{store: st, mail: &mailx.CaptureSender{}, keys: keys, clock: newClock()}
	brand := mailx.Brand{Product: "MyTestBuddies", PolicyURL: "https://quiz.test/policy"}
	tokens := &TokenIssuer{Keys: keys, Issuer: "https://quiz.test", Audience: []string{"quiz-api"}}

	f.otp = &OTPService{Store: st, Mailer: f.mail, Brand: brand, Policy: testOTPPolicy, Now: f.clock.Now}
	f.reg = &RegistrationService{Store: st, Mailer: f.mail, Brand: brand, Tokens: tokens, Policy: testAuthPolicy, Now: f.clock.Now}
	f.auth = &AuthService{Store: st, Tokens: tokens, Now: f.clock.Now}
	f.users = &UserService{Store: st, Policy: testAuthPolicy, Now: f.clock.Now}
	f.fields = &FieldService{Store: st, Now: f.clock.Now}
	f.qs = &QuestionService{Store: st, Now: f.clock.Now}
	f.prog = &ProgressService{Store: st, Now: f.clock.Now}
	return f
}

var codePattern = regexp.MustCompile(`code is (\d+)`)

// lastCode extracts the most recent code mailed to email.
func (f *fixture) lastCode(t *testing.T, email string) string {
	t.Helper()
	msg, ok := f.mail.Last(email)
	require.True(t, ok, "no mail sent to %s", email)
	m := codePattern.FindStringSubmatch(msg.Text)
	require.Len(t, m, 2, "no code in %q", msg.Text)
	return m[1]
}

// verified requests and verifies a code for email.
func (f *fixture) verified(t *testing.T, email string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.otp.Request(ctx, email))
	require.NoError(t, f.otp.Verify(ctx, email, f.lastCode(t, email)))
}

// registered runs the full OTP and registration flow.
func (f *fixture) registered(t *testing.T, email, mobile string) RegisterResult {
	t.Helper()
	f.verified(t, email)
	res, err := f.reg.Register(context.Background(), RegisterInput{
		Name:     "Asha",
		Email:    email,
		Mobile:   mobile,
		Password: "secret123",
		UserType: "student",
	})
	require.NoError(t, err)
	return res
}

func (f *fixture) field(t *testing.T, name string, pricePaise int64) domain.Field {
	t.Helper()
	fl, err := f.fields.Create(context.Background(), idx.New().String(), FieldInput{
		Name:                   name,
		DefaultTimePerQuestion: 60,
		PricePaise:             pricePaise,
	})
	require.NoError(t, err)
	return fl
}

func (f *fixture) question(t *testing.T, fieldID, answer string) domain.Question {
	t.Helper()
	q, err := f.qs.Create(context.Background(), idx.New().String(), fieldID, QuestionInput{
		Text:          "Capital of France?",
		Options:       []string{"Paris", "Lyon", "Nice"},
		CorrectAnswer: answer,
		Solution:      "It is " + answer,
	})
	require.NoError(t, err)
	return q
}

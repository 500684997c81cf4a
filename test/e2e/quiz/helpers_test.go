package quiz_test

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/himanshu0633/mytestbuddiesbackend/pkg/quizsdk"
)

/*
 * Common constants and helper functions for quiz service end-to-end tests.
 * The service runs with the log mail driver, so OTP codes are read back
 * from the container logs.
 */

const (
	testImageName = "mytestbuddies-quiz-test:latest"

	adminName     = "Administrator"
	adminEmail    = "admin@mytestbuddies.test"
	adminPassword = "Admin123!"
)

// TestMain builds the Docker image once before all tests and removes it
// after they complete. Set QUIZ_INTEGRATION=1 to run the suite.
func TestMain(m *testing.M) {
	if os.Getenv("QUIZ_INTEGRATION") != "1" {
		fmt.Fprintf(os.Stdout, "skipping quiz e2e tests: set QUIZ_INTEGRATION=1\n")
		os.Exit(0)
	}

	fmt.Fprintf(os.Stdout, "Building Quiz Service Docker image...")

	if err := buildDockerImage(); err != nil {
		fmt.Fprintf(os.Stderr, "\nFailed to build Docker image: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stdout, " done\n")

	exitCode := m.Run()

	fmt.Fprintf(os.Stdout, "Cleaning up Quiz Service Docker image...")
	cleanupDockerImage()
	fmt.Fprintf(os.Stdout, " done\n")

	os.Exit(exitCode)
}

func buildDockerImage() error {
	ctx := context.Background()
	cmd := exec.CommandContext(ctx, "docker", "build",
		"-t", testImageName,
		"-f", "../../../cmd/quiz/Dockerfile",
		"../../../")
	cmd.Dir = "."
	cmd.Stdout = os.Stdout
	cmd.Stderr = nil

	return cmd.Run()
}

func cleanupDockerImage() {
	ctx := context.Background()
	cmd := exec.CommandContext(ctx, "docker", "rmi", "-f", testImageName)
	_ = cmd.Run() // image might not exist
}

// quizContainer is a running quiz service.
type quizContainer struct {
	testcontainers.Container
	BaseURL string
}

// relaxedLimits keeps rapid test traffic below every rate limit profile.
var relaxedLimits = map[string]string{
	"RATELIMIT_STRICT_REQUESTS":   "1000",
	"RATELIMIT_STRICT_BURST":      "1000",
	"RATELIMIT_AUTH_REQUESTS":     "1000",
	"RATELIMIT_AUTH_BURST":        "1000",
	"RATELIMIT_MODERATE_REQUESTS": "1000",
	"RATELIMIT_MODERATE_BURST":    "1000",
}

// setupQuizContainer starts the service with relaxed rate limits. extra
// overrides or unsets (empty value) individual variables.
func setupQuizContainer(t *testing.T, extra map[string]string) *quizContainer {
	t.Helper()
	ctx := context.Background()

	env := map[string]string{
		"QUIZ_ISSUER":         "mytestbuddies",
		"QUIZ_NUM_KEYS":       "1",
		"QUIZ_ADMIN_NAME":     adminName,
		"QUIZ_ADMIN_EMAIL":    adminEmail,
		"QUIZ_ADMIN_PASSWORD": adminPassword,
		"UPI_PAYEE_VPA":       "mytestbuddies@okaxis",
		"OTP_RESEND_COOLDOWN": "1s",
		"ENV":                 "test",
		"LOG_LEVEL":           "info",
		"LOG_FORMAT":          "json",
	}
	for k, v := range relaxedLimits {
		env[k] = v
	}
	for k, v := range extra {
		if v == "" {
			delete(env, k)
			continue
		}
		env[k] = v
	}

	req := testcontainers.ContainerRequest{
		Image:        testImageName,
		ExposedPorts: []string{"8080/tcp"},
		Env:          env,
		WaitingFor: wait.ForHTTP("/livez").
			WithPort("8080/tcp").
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	mappedPort, err := container.MappedPort(ctx, "8080")
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	return &quizContainer{
		Container: container,
		BaseURL:   fmt.Sprintf("http://%s:%s", host, mappedPort.Port()),
	}
}

var codePattern = regexp.MustCompile(`code is (\d+)`)

// lastCode scans the container log for the newest OTP mail sent to email.
func (c *quizContainer) lastCode(t *testing.T, email string) string {
	t.Helper()

	var code string
	require.Eventually(t, func() bool {
		logs, err := c.Logs(context.Background())
		if err != nil {
			return false
		}
		defer logs.Close()

		scanner := bufio.NewScanner(logs)
		for scanner.Scan() {
			line := scanner.Bytes()
			start := 0
			for start < len(line) && line[start] != '{' {
				start++
			}
			var entry struct {
				Msg  string `json:"msg"`
				To   string `json:"to"`
				Text string `json:"text"`
			}
			if json.Unmarshal(line[start:], &entry) != nil || !strings.EqualFold(entry.To, strings.TrimSpace(email)) {
				continue
			}
			if m := codePattern.FindStringSubmatch(entry.Text); len(m) == 2 {
				code = m[1]
			}
		}
		return code != ""
	}, 10*time.Second, 200*time.Millisecond, "no OTP mail logged for %s", email)

	return code
}

// signUp runs send-otp, verify-otp and register for a learner.
func (c *quizContainer) signUp(t *testing.T, client *quizsdk.Client, email, mobile string) *quizsdk.Session {
	t.Helper()
	ctx := t.Context()

	_, err := client.SendOTP(ctx, email)
	require.NoError(t, err, "send-otp should succeed")

	_, err = client.VerifyOTP(ctx, email, c.lastCode(t, email))
	require.NoError(t, err, "verify-otp should succeed")

	session, auth, err := client.Register(ctx, quizsdk.RegisterRequest{
		Name:     "Asha Rao",
		Email:    email,
		Mobile:   mobile,
		Password: "secret123",
		UserType: "student",
	})
	require.NoError(t, err, "register should succeed")
	assertAuthResponse(t, auth)

	return session
}

// loginAdmin signs in as the seeded admin account.
func loginAdmin(t *testing.T, client *quizsdk.Client) *quizsdk.Session {
	t.Helper()

	session, auth, err := client.Login(t.Context(), quizsdk.LoginRequest{Email: adminEmail, Password: adminPassword})
	require.NoError(t, err, "admin login should succeed")
	assertAuthResponse(t, auth)
	require.Equal(t, "admin", auth.User.Role)

	return session
}

// assertAuthResponse verifies a login or register response carries a token.
func assertAuthResponse(t *testing.T, resp *quizsdk.AuthResponse) {
	t.Helper()
	require.NotNil(t, resp)
	require.NotEmpty(t, resp.Token, "Token should not be empty")
	require.Equal(t, "Bearer", resp.TokenType, "Token type should be Bearer")
	require.Positive(t, resp.ExpiresIn)
}

// assertHealthy verifies a health check response is OK.
func assertHealthy(t *testing.T, health *quizsdk.HealthResponse, err error) {
	t.Helper()
	require.NoError(t, err)
	require.NotNil(t, health)
	require.Equal(t, "ok", health.Status)
}

// assertStatus checks the HTTP status and error code carried by an SDK error.
func assertStatus(t *testing.T, err error, status int, code string) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, status, quizsdk.StatusCode(err), err.Error())
	require.True(t, quizsdk.IsCode(err, code), "expected %s, got %v", code, err)
}

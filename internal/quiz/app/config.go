package app

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/himanshu0633/mytestbuddiesbackend/internal/quiz/service"
)

type Config struct {
	Issuer   string   // Optional: iss claim of issued tokens (default: mytestbuddies)
	Audience []string // Optional: aud claim of issued tokens (default: quiz-api)

	JWTSecret string // Optional: HS256 secret; ephemeral EdDSA keys when empty
	NumKeys   int    // Optional: number of ephemeral keys (default: 2)

	StoreDriver  string // sqlite or mongo (default: sqlite)
	DatabaseFile string // sqlite file (default: ./quiz.db)
	MongoURI     string // required for the mongo driver
	MongoDB      string // database name (default: mytestbuddies)

	SMTPHost     string // Optional: the log mail driver is used when empty
	SMTPPort     int
	SMTPSecure   bool
	SMTPUser     string
	SMTPPassword string
	MailFrom     string
	MailReplyTo  string

	BrandName string // product name used in mail (default: MyTestBuddies)
	PolicyURL string // linked from the welcome mail
	Support   string // support address shown in mail

	S3Bucket    string // Optional: screenshot uploads are disabled when empty
	S3Region    string
	S3Endpoint  string // set for MinIO or other S3 compatible stores
	S3AccessKey string
	S3SecretKey string
	S3PathStyle bool

	UPIPayeeVPA  string // e.g. mytestbuddies@okaxis
	UPIPayeeName string

	CORSOrigins []string // CORS_ORIGIN, comma separated

	AdminName     string
	AdminEmail    string // Optional: seeds an admin at startup with AdminPassword
	AdminPassword string

	OTPPolicy  service.OTPPolicy
	AuthPolicy service.AuthPolicy

	HousekeepingSchedule string // cron spec for the expired OTP purge (default: @every 1h)

	Env                 string        // dev, staging, prod (default: dev)
	LogLevel            string        // debug, info, warn, error (default: info)
	LogFormat           string        // json, text (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

// LoadConfig reads the environment after applying an optional .env file.
// Variables already set take precedence over the file.
func LoadConfig() Config {
	_ = godotenv.Load()

	otp := service.DefaultOTPPolicy()
	auth := service.DefaultAuthPolicy()

	cfg := Config{
		Issuer:    getEnvOrDefault("QUIZ_ISSUER", "mytestbuddies"),
		Audience:  getEnvListOrDefault("QUIZ_AUDIENCE", []string{"quiz-api"}),
		JWTSecret: os.Getenv("QUIZ_JWT_SECRET"),
		NumKeys:   getEnvIntOrDefault("QUIZ_NUM_KEYS", 2),

		StoreDriver:  strings.ToLower(getEnvOrDefault("QUIZ_STORE_DRIVER", "sqlite")),
		DatabaseFile: getEnvOrDefault("QUIZ_DATABASE_FILE", "quiz.db"),
		MongoURI:     os.Getenv("QUIZ_MONGO_URI"),
		MongoDB:      getEnvOrDefault("QUIZ_MONGO_DB", "mytestbuddies"),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     getEnvIntOrDefault("SMTP_PORT", 587),
		SMTPSecure:   getEnvBoolOrDefault("SMTP_SECURE", false),
		SMTPUser:     os.Getenv("SMTP_USER"),
		SMTPPassword: os.Getenv("SMTP_PASS"),
		MailFrom:     os.Getenv("MAIL_FROM"),
		MailReplyTo:  os.Getenv("MAIL_REPLY_TO"),

		BrandName: getEnvOrDefault("BRAND_NAME", "MyTestBuddies"),
		PolicyURL: os.Getenv("POLICY_URL"),
		Support:   os.Getenv("SUPPORT_EMAIL"),

		S3Bucket:    os.Getenv("S3_BUCKET"),
		S3Region:    getEnvOrDefault("S3_REGION", "ap-south-1"),
		S3Endpoint:  os.Getenv("S3_ENDPOINT"),
		S3AccessKey: os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey: os.Getenv("S3_SECRET_KEY"),
		S3PathStyle: getEnvBoolOrDefault("S3_PATH_STYLE", false),

		UPIPayeeVPA:  os.Getenv("UPI_PAYEE_VPA"),
		UPIPayeeName: getEnvOrDefault("UPI_PAYEE_NAME", "MyTestBuddies"),

		CORSOrigins: getEnvListOrDefault("CORS_ORIGIN", []string{"http://localhost:3000"}),

		AdminName:     getEnvOrDefault("QUIZ_ADMIN_NAME", "Administrator"),
		AdminEmail:    os.Getenv("QUIZ_ADMIN_EMAIL"),
		AdminPassword: os.Getenv("QUIZ_ADMIN_PASSWORD"),

		OTPPolicy: service.OTPPolicy{
			Length:      getEnvIntOrDefault("OTP_LENGTH", otp.Length),
			Expiry:      getEnvDurationOrDefault("OTP_EXPIRY", otp.Expiry),
			Cooldown:    getEnvDurationOrDefault("OTP_RESEND_COOLDOWN", otp.Cooldown),
			MaxAttempts: getEnvIntOrDefault("OTP_MAX_ATTEMPTS", otp.MaxAttempts),
			HashCost:    getEnvIntOrDefault("OTP_HASH_COST", otp.HashCost),
		},
		AuthPolicy: service.AuthPolicy{
			PasswordCost:      getEnvIntOrDefault("PASSWORD_HASH_COST", auth.PasswordCost),
			MinPasswordLength: auth.MinPasswordLength,
			TokenTTL:          getEnvDurationOrDefault("JWT_TTL", auth.TokenTTL),
		},

		HousekeepingSchedule: getEnvOrDefault("HOUSEKEEPING_SCHEDULE", service.DefaultHousekeepingSchedule),

		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}

	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "10m", "30s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Plain integers are seconds
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}

	return defaultValue
}

// getEnvListOrDefault splits a comma separated variable, dropping blanks.
func getEnvListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

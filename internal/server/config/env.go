package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophsocial/internal/flagx"
	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

// envConfig mirrors Config for envdecode. Unset variables leave the
// pre-filled value untouched.
type envConfig struct {
	EndpointAddrHTTP            string        `env:"GOPHSOCIAL_HTTP_ADDR"`
	EndpointAddrGRPC            string        `env:"GOPHSOCIAL_GRPC_ADDR"`
	DatabaseDSN                 string        `env:"GOPHSOCIAL_DATABASE_DSN"`
	SecretKey                   string        `env:"GOPHSOCIAL_SECRET_KEY"`
	AccessTokenValidityDuration time.Duration `env:"GOPHSOCIAL_TOKEN_TTL"`
	BcryptCost                  int           `env:"GOPHSOCIAL_BCRYPT_COST"`
	MediaBackend                string        `env:"GOPHSOCIAL_MEDIA_BACKEND"`
	UploadDir                   string        `env:"GOPHSOCIAL_UPLOAD_DIR"`
	MediaURLPrefix              string        `env:"GOPHSOCIAL_MEDIA_URL_PREFIX"`
	MaxUploadSize               int64         `env:"GOPHSOCIAL_MAX_UPLOAD_SIZE"`
	S3RootUser                  string        `env:"GOPHSOCIAL_S3_USER"`
	S3RootPassword              string        `env:"GOPHSOCIAL_S3_PASSWORD"`
	S3Bucket                    string        `env:"GOPHSOCIAL_S3_BUCKET"`
	S3Region                    string        `env:"GOPHSOCIAL_S3_REGION"`
	S3BaseEndpoint              string        `env:"GOPHSOCIAL_S3_ENDPOINT"`
	AllowedOrigins              string        `env:"GOPHSOCIAL_ALLOWED_ORIGINS"`
	RequestTimeout              time.Duration `env:"GOPHSOCIAL_REQUEST_TIMEOUT"`
	ShutdownTimeout             time.Duration `env:"GOPHSOCIAL_SHUTDOWN_TIMEOUT"`
	LogLevel                    string        `env:"GOPHSOCIAL_LOG_LEVEL"`
	LogBackend                  string        `env:"GOPHSOCIAL_LOG_BACKEND"`
	Environment                 string        `env:"GOPHSOCIAL_ENV"`
}

// loadDotEnv exports variables from the file named by -env-file (default
// ".env") into the process environment. Variables already set win.
// A missing file is not an error.
func loadDotEnv() {
	path := flagx.EnvFileFlag(".env")
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}
}

// parseEnv overlays GOPHSOCIAL_* environment variables onto config.
// Malformed values (e.g. a bad duration) cause a panic, matching the other
// loaders.
func parseEnv(config *Config) {
	e := &envConfig{
		EndpointAddrHTTP:            config.EndpointAddrHTTP,
		EndpointAddrGRPC:            config.EndpointAddrGRPC,
		DatabaseDSN:                 config.DatabaseDSN,
		SecretKey:                   config.SecretKey,
		AccessTokenValidityDuration: config.AccessTokenValidityDuration,
		BcryptCost:                  config.BcryptCost,
		MediaBackend:                config.MediaBackend,
		UploadDir:                   config.UploadDir,
		MediaURLPrefix:              config.MediaURLPrefix,
		MaxUploadSize:               config.MaxUploadSize,
		S3RootUser:                  config.S3RootUser,
		S3RootPassword:              config.S3RootPassword,
		S3Bucket:                    config.S3Bucket,
		S3Region:                    config.S3Region,
		S3BaseEndpoint:              config.S3BaseEndpoint,
		AllowedOrigins:              strings.Join(config.AllowedOrigins, ","),
		RequestTimeout:              config.RequestTimeout,
		ShutdownTimeout:             config.ShutdownTimeout,
		LogLevel:                    config.LogLevel,
		LogBackend:                  config.LogBackend,
		Environment:                 config.Environment,
	}

	if err := envdecode.Decode(e); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		panic(err)
	}

	config.EndpointAddrHTTP = e.EndpointAddrHTTP
	config.EndpointAddrGRPC = e.EndpointAddrGRPC
	config.DatabaseDSN = e.DatabaseDSN
	config.SecretKey = e.SecretKey
	config.AccessTokenValidityDuration = e.AccessTokenValidityDuration
	config.BcryptCost = e.BcryptCost
	config.MediaBackend = e.MediaBackend
	config.UploadDir = e.UploadDir
	config.MediaURLPrefix = e.MediaURLPrefix
	config.MaxUploadSize = e.MaxUploadSize
	config.S3RootUser = e.S3RootUser
	config.S3RootPassword = e.S3RootPassword
	config.S3Bucket = e.S3Bucket
	config.S3Region = e.S3Region
	config.S3BaseEndpoint = e.S3BaseEndpoint
	config.AllowedOrigins = splitList(e.AllowedOrigins)
	config.RequestTimeout = e.RequestTimeout
	config.ShutdownTimeout = e.ShutdownTimeout
	config.LogLevel = e.LogLevel
	config.LogBackend = e.LogBackend
	config.Environment = e.Environment
}

package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	// DataDir is the mounted volume holding active chunk files.
	DataDir string `envconfig:"DATA_DIR" default:"/data/chunks"`

	// FlushThreshold is the row count a chunk must strictly exceed before
	// it is flushed to remote storage.
	FlushThreshold int `envconfig:"FLUSH_THRESHOLD" default:"50"`

	SweepInterval        time.Duration `envconfig:"SWEEP_INTERVAL" default:"10m"`
	SweepConcurrency     int           `envconfig:"SWEEP_CONCURRENCY" default:"10"`
	SweepDeleteOnSuccess bool          `envconfig:"SWEEP_DELETE_ON_SUCCESS" default:"false"`

	UploadEndpoint string        `envconfig:"UPLOAD_ENDPOINT" required:"true"`
	UploadBucket   string        `envconfig:"UPLOAD_BUCKET" default:"pagelake-chunks"`
	UploadBasePath string        `envconfig:"UPLOAD_BASE_PATH" default:"data/uploads"`
	UploadToken    string        `envconfig:"UPLOAD_TOKEN"`
	UploadTimeout  time.Duration `envconfig:"UPLOAD_TIMEOUT" default:"30s"`

	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("PAGELAKE", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func (c *Config) HasS3() bool {
	return c.S3AccessKey != "" && c.S3SecretKey != ""
}

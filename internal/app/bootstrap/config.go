package bootstrap

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/viralforge/mesh/services/trust-compliance/M20-moderation-service/internal/domain"
	"gopkg.in/yaml.v3"
)

type Config struct {
	ServiceID string

	HTTPPort int
	GRPCPort int

	DatabaseURL  string
	RedisURL     string
	KafkaBrokers []string

	MaxDBConns                  int32
	KafkaConsumerGroup          string
	KafkaTopicRecordSubmitted   string
	KafkaTopicModerationPending string
	KafkaTopicRecordApproved    string
	KafkaTopicRecordRejected    string

	OutboxPollInterval   time.Duration
	OutboxBatchSize      int
	ConsumerPollInterval time.Duration

	RecordCacheTTL time.Duration
	QueuePageSize  int
	IdempotencyTTL time.Duration
	EventDedupTTL  time.Duration

	JWTSecret string

	RecordTypes []domain.TypeConfig
}

type recordTypeFile struct {
	Name                string   `yaml:"name"`
	Fields              []string `yaml:"fields"`
	ModeratedFields     []string `yaml:"moderated_fields"`
	BypassAfterApproval bool     `yaml:"bypass_after_approval"`
	VisibilityField     string   `yaml:"visibility_field"`
}

type configFile struct {
	Service struct {
		ID       string `yaml:"id"`
		HTTPPort int    `yaml:"http_port"`
		GRPCPort int    `yaml:"grpc_port"`
	} `yaml:"service"`
	Dependencies struct {
		PostgresURL                 string   `yaml:"postgres_url"`
		RedisURL                    string   `yaml:"redis_url"`
		KafkaBrokers                []string `yaml:"kafka_brokers"`
		KafkaConsumerGroup          string   `yaml:"kafka_consumer_group"`
		KafkaTopicRecordSubmitted   string   `yaml:"kafka_topic_record_submitted"`
		KafkaTopicModerationPending string   `yaml:"kafka_topic_moderation_pending"`
		KafkaTopicRecordApproved    string   `yaml:"kafka_topic_record_approved"`
		KafkaTopicRecordRejected    string   `yaml:"kafka_topic_record_rejected"`
	} `yaml:"dependencies"`
	RecordTypes []recordTypeFile `yaml:"record_types"`
}

func LoadConfig(path string) (Config, error) {
	cfg := Config{
		ServiceID:                   "M20-Moderation-Service",
		HTTPPort:                    8080,
		GRPCPort:                    9090,
		MaxDBConns:                  20,
		KafkaConsumerGroup:          "m20-moderation-service",
		KafkaTopicRecordSubmitted:   "record.submitted",
		KafkaTopicModerationPending: "record.moderation_pending",
		KafkaTopicRecordApproved:    "record.approved",
		KafkaTopicRecordRejected:    "record.rejected",
		OutboxPollInterval:          2 * time.Second,
		OutboxBatchSize:             100,
		ConsumerPollInterval:        2 * time.Second,
		RecordCacheTTL:              5 * time.Minute,
		QueuePageSize:               20,
		IdempotencyTTL:              7 * 24 * time.Hour,
		EventDedupTTL:               7 * 24 * time.Hour,
	}

	raw, err := os.ReadFile(path)
	if err == nil {
		var f configFile
		if unmarshalErr := yaml.Unmarshal(raw, &f); unmarshalErr != nil {
			return Config{}, fmt.Errorf("parse config file: %w", unmarshalErr)
		}
		if f.Service.ID != "" {
			cfg.ServiceID = f.Service.ID
		}
		if f.Service.HTTPPort > 0 {
			cfg.HTTPPort = f.Service.HTTPPort
		}
		if f.Service.GRPCPort > 0 {
			cfg.GRPCPort = f.Service.GRPCPort
		}
		if f.Dependencies.PostgresURL != "" {
			cfg.DatabaseURL = f.Dependencies.PostgresURL
		}
		if f.Dependencies.RedisURL != "" {
			cfg.RedisURL = f.Dependencies.RedisURL
		}
		if len(f.Dependencies.KafkaBrokers) > 0 {
			cfg.KafkaBrokers = trimNonEmpty(f.Dependencies.KafkaBrokers)
		}
		if f.Dependencies.KafkaConsumerGroup != "" {
			cfg.KafkaConsumerGroup = f.Dependencies.KafkaConsumerGroup
		}
		if f.Dependencies.KafkaTopicRecordSubmitted != "" {
			cfg.KafkaTopicRecordSubmitted = f.Dependencies.KafkaTopicRecordSubmitted
		}
		if f.Dependencies.KafkaTopicModerationPending != "" {
			cfg.KafkaTopicModerationPending = f.Dependencies.KafkaTopicModerationPending
		}
		if f.Dependencies.KafkaTopicRecordApproved != "" {
			cfg.KafkaTopicRecordApproved = f.Dependencies.KafkaTopicRecordApproved
		}
		if f.Dependencies.KafkaTopicRecordRejected != "" {
			cfg.KafkaTopicRecordRejected = f.Dependencies.KafkaTopicRecordRejected
		}
		for _, rt := range f.RecordTypes {
			cfg.RecordTypes = append(cfg.RecordTypes, domain.TypeConfig{
				Name:                rt.Name,
				Fields:              rt.Fields,
				ModeratedFields:     rt.ModeratedFields,
				BypassAfterApproval: rt.BypassAfterApproval,
				VisibilityField:     rt.VisibilityField,
			})
		}
	}

	cfg.DatabaseURL = envOrDefault("DB_URL", envOrDefault("POSTGRES_URL", cfg.DatabaseURL))
	cfg.RedisURL = envOrDefault("REDIS_URL", cfg.RedisURL)
	cfg.KafkaBrokers = envCSV("KAFKA_BROKERS", cfg.KafkaBrokers)
	cfg.KafkaConsumerGroup = envOrDefault("KAFKA_CONSUMER_GROUP", cfg.KafkaConsumerGroup)
	cfg.KafkaTopicRecordSubmitted = envOrDefault("KAFKA_TOPIC_RECORD_SUBMITTED", cfg.KafkaTopicRecordSubmitted)
	cfg.KafkaTopicModerationPending = envOrDefault("KAFKA_TOPIC_MODERATION_PENDING", cfg.KafkaTopicModerationPending)
	cfg.KafkaTopicRecordApproved = envOrDefault("KAFKA_TOPIC_RECORD_APPROVED", cfg.KafkaTopicRecordApproved)
	cfg.KafkaTopicRecordRejected = envOrDefault("KAFKA_TOPIC_RECORD_REJECTED", cfg.KafkaTopicRecordRejected)
	cfg.JWTSecret = envOrDefault("JWT_SECRET", cfg.JWTSecret)
	cfg.HTTPPort = envInt("HTTP_PORT", cfg.HTTPPort)
	cfg.GRPCPort = envInt("GRPC_PORT", cfg.GRPCPort)
	cfg.MaxDBConns = int32(envInt("DB_MAX_CONNS", int(cfg.MaxDBConns)))
	cfg.OutboxPollInterval = time.Duration(envInt("OUTBOX_POLL_SECONDS", int(cfg.OutboxPollInterval.Seconds()))) * time.Second
	cfg.OutboxBatchSize = envInt("OUTBOX_BATCH_SIZE", cfg.OutboxBatchSize)
	cfg.ConsumerPollInterval = time.Duration(envInt("CONSUMER_POLL_SECONDS", int(cfg.ConsumerPollInterval.Seconds()))) * time.Second
	cfg.RecordCacheTTL = time.Duration(envInt("RECORD_CACHE_SECONDS", int(cfg.RecordCacheTTL.Seconds()))) * time.Second
	cfg.QueuePageSize = envInt("QUEUE_PAGE_SIZE", cfg.QueuePageSize)
	cfg.IdempotencyTTL = time.Duration(envInt("IDEMPOTENCY_TTL_HOURS", int(cfg.IdempotencyTTL.Hours()))) * time.Hour
	cfg.EventDedupTTL = time.Duration(envInt("EVENT_DEDUP_TTL_HOURS", int(cfg.EventDedupTTL.Hours()))) * time.Hour

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("missing DB_URL/POSTGRES_URL")
	}
	if cfg.RedisURL == "" {
		return Config{}, fmt.Errorf("missing REDIS_URL")
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("missing JWT_SECRET")
	}
	if len(cfg.RecordTypes) == 0 {
		return Config{}, fmt.Errorf("no record_types configured")
	}
	return cfg, nil
}

func envOrDefault(name, fallback string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	return fallback
}

func envInt(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func envCSV(name string, fallback []string) []string {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	items := strings.Split(raw, ",")
	return trimNonEmpty(items)
}

func trimNonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

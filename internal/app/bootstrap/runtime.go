package bootstrap

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/redis/go-redis/v9"

	appconfig "github.com/wolfman30/hospitality-booking/internal/config"
	"github.com/wolfman30/hospitality-booking/internal/conversation"
	"github.com/wolfman30/hospitality-booking/internal/events"
	"github.com/wolfman30/hospitality-booking/internal/observability/metrics"
	"github.com/wolfman30/hospitality-booking/pkg/logging"
)

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis not available", "addr", cfg.RedisAddr, "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

// BuildSessionStore picks the chat session backend. A redis store that
// cannot be reached degrades to memory so the chat surface stays up.
// The returned name is reported by the health endpoint.
func BuildSessionStore(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (conversation.SessionStore, string, func()) {
	if logger == nil {
		logger = logging.Default()
	}
	noop := func() {}
	if cfg == nil || cfg.SessionStore != "redis" {
		return conversation.NewMemorySessionStore(sessionTTL(cfg)), "memory", noop
	}

	client := BuildRedisClient(ctx, cfg, logger, true)
	if client == nil {
		logger.Warn("falling back to in-memory chat sessions")
		return conversation.NewMemorySessionStore(cfg.SessionTTL), "memory", noop
	}
	logger.Info("chat sessions stored in redis", "addr", cfg.RedisAddr, "ttl", cfg.SessionTTL)
	return conversation.NewRedisSessionStore(client, cfg.SessionTTL), "redis", func() { _ = client.Close() }
}

func sessionTTL(cfg *appconfig.Config) time.Duration {
	if cfg == nil {
		return 0
	}
	return cfg.SessionTTL
}

// LoadAWSConfig centralizes AWS SDK initialization. Static credentials are
// used when both halves are present; the endpoint override points Bedrock
// at a local emulator.
func LoadAWSConfig(ctx context.Context, cfg *appconfig.Config) (aws.Config, error) {
	loaders := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.AWSRegion)}
	if strings.TrimSpace(cfg.AWSAccessKeyID) != "" && strings.TrimSpace(cfg.AWSSecretAccessKey) != "" {
		loaders = append(loaders, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loaders...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("bootstrap: load aws config: %w", err)
	}
	return awsCfg, nil
}

func newBedrockRuntime(awsCfg aws.Config, endpoint string) *bedrockruntime.Client {
	return bedrockruntime.NewFromConfig(awsCfg, func(o *bedrockruntime.Options) {
		if endpoint = strings.TrimSpace(endpoint); endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
}

// BuildSink assembles the event fan-out: structured logs, Prometheus
// counters, and Kafka when brokers are configured. The returned closer
// flushes the Kafka writer.
func BuildSink(cfg *appconfig.Config, m *metrics.BookingMetrics, logger *logging.Logger) (events.Sink, func(), error) {
	if logger == nil {
		logger = logging.Default()
	}
	sinks := []events.Sink{events.NewLogSink(logger)}
	if m != nil {
		sinks = append(sinks, m)
	}
	closer := func() {}

	if cfg != nil && len(cfg.EventsKafkaBrokers) > 0 {
		kafkaSink, err := events.NewKafkaSink(cfg.EventsKafkaBrokers, cfg.EventsKafkaTopic, logger)
		if err != nil {
			return nil, closer, fmt.Errorf("bootstrap: kafka sink: %w", err)
		}
		sinks = append(sinks, kafkaSink)
		closer = func() {
			if err := kafkaSink.Close(); err != nil {
				logger.Warn("kafka sink close failed", "error", err)
			}
		}
		logger.Info("publishing booking events to kafka", "topic", cfg.EventsKafkaTopic, "brokers", len(cfg.EventsKafkaBrokers))
	}
	return events.NewFanout(sinks...), closer, nil
}

package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"

	MessagingDriverAWS    = "aws"
	MessagingDriverKafka  = "kafka"
	MessagingDriverMemory = "memory"
)

// Config holds application level configuration loaded from file, environment and flags.
type Config struct {
	RunAddress      string `yaml:"run_address"`
	DatabaseURI     string `yaml:"database_uri"`
	StorageDriver   string `yaml:"storage_driver"`
	MessagingDriver string `yaml:"messaging_driver"`

	AWSRegion    string `yaml:"aws_region"`
	AWSEndpoint  string `yaml:"aws_endpoint"`
	QueueURL     string `yaml:"queue_url"`
	TopicARN     string `yaml:"topic_arn"`
	EventBusName string `yaml:"event_bus_name"`

	KafkaBrokers      string `yaml:"kafka_brokers"`
	NotificationTopic string `yaml:"notification_topic"`
	EventTopic        string `yaml:"event_topic"`
	RedisAddr         string `yaml:"redis_addr"`
	QueueStream       string `yaml:"queue_stream"`
	QueueGroup        string `yaml:"queue_group"`

	ReceiveMaxMessages int           `yaml:"receive_max_messages"`
	ReceiveWait        time.Duration `yaml:"receive_wait"`
	VisibilityTimeout  time.Duration `yaml:"visibility_timeout"`
	DrainInterval      time.Duration `yaml:"drain_interval"`
	ShutdownTimeout    time.Duration `yaml:"shutdown_timeout"`

	OTelEndpoint string `yaml:"otel_endpoint"`
	LogLevel     string `yaml:"log_level"`
}

const (
	defaultRunAddress         = ":8080"
	defaultAWSRegion          = "eu-west-1"
	defaultEventBusName       = "default"
	defaultNotificationTopic  = "orders.created"
	defaultEventTopic         = "orders.events"
	defaultRedisAddr          = "localhost:6379"
	defaultQueueStream        = "orders.queue"
	defaultQueueGroup         = "order-service"
	defaultReceiveMaxMessages = 10
	defaultReceiveWait        = 20 * time.Second
	defaultVisibilityTimeout  = 30 * time.Second
	defaultShutdownTimeout    = 10 * time.Second
	defaultLogLevel           = "info"
)

// Load parses configuration from an optional YAML file, environment variables and flags.
func Load() (*Config, error) {
	return load(os.Args[1:], os.LookupEnv)
}

type envLookup func(string) (string, bool)

func defaults() *Config {
	return &Config{
		RunAddress:         defaultRunAddress,
		StorageDriver:      StorageDriverPostgres,
		MessagingDriver:    MessagingDriverAWS,
		AWSRegion:          defaultAWSRegion,
		EventBusName:       defaultEventBusName,
		NotificationTopic:  defaultNotificationTopic,
		EventTopic:         defaultEventTopic,
		RedisAddr:          defaultRedisAddr,
		QueueStream:        defaultQueueStream,
		QueueGroup:         defaultQueueGroup,
		ReceiveMaxMessages: defaultReceiveMaxMessages,
		ReceiveWait:        defaultReceiveWait,
		VisibilityTimeout:  defaultVisibilityTimeout,
		ShutdownTimeout:    defaultShutdownTimeout,
		LogLevel:           defaultLogLevel,
	}
}

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := defaults()

	if path, ok := lookup("CONFIG_FILE"); ok && path != "" {
		if err := readFile(path, cfg); err != nil {
			return nil, err
		}
	}

	cfg.RunAddress = getString(lookup, "RUN_ADDRESS", cfg.RunAddress)
	cfg.DatabaseURI = getString(lookup, "DATABASE_URI", cfg.DatabaseURI)
	cfg.StorageDriver = getString(lookup, "STORAGE_DRIVER", cfg.StorageDriver)
	cfg.MessagingDriver = getString(lookup, "MESSAGING_DRIVER", cfg.MessagingDriver)
	cfg.AWSRegion = getString(lookup, "AWS_REGION", cfg.AWSRegion)
	cfg.AWSEndpoint = getString(lookup, "AWS_ENDPOINT_URL", cfg.AWSEndpoint)
	cfg.QueueURL = getString(lookup, "QUEUE_URL", cfg.QueueURL)
	cfg.TopicARN = getString(lookup, "TOPIC_ARN", cfg.TopicARN)
	cfg.EventBusName = getString(lookup, "EVENT_BUS_NAME", cfg.EventBusName)
	cfg.KafkaBrokers = getString(lookup, "KAFKA_BROKERS", cfg.KafkaBrokers)
	cfg.NotificationTopic = getString(lookup, "NOTIFICATION_TOPIC", cfg.NotificationTopic)
	cfg.EventTopic = getString(lookup, "EVENT_TOPIC", cfg.EventTopic)
	cfg.RedisAddr = getString(lookup, "REDIS_ADDR", cfg.RedisAddr)
	cfg.QueueStream = getString(lookup, "QUEUE_STREAM", cfg.QueueStream)
	cfg.QueueGroup = getString(lookup, "QUEUE_GROUP", cfg.QueueGroup)
	cfg.ReceiveMaxMessages = getInt(lookup, "RECEIVE_MAX_MESSAGES", cfg.ReceiveMaxMessages)
	cfg.ReceiveWait = getDuration(lookup, "RECEIVE_WAIT", cfg.ReceiveWait)
	cfg.VisibilityTimeout = getDuration(lookup, "VISIBILITY_TIMEOUT", cfg.VisibilityTimeout)
	cfg.DrainInterval = getDuration(lookup, "DRAIN_INTERVAL", cfg.DrainInterval)
	cfg.ShutdownTimeout = getDuration(lookup, "SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	cfg.OTelEndpoint = getString(lookup, "OTEL_EXPORTER_OTLP_ENDPOINT", cfg.OTelEndpoint)
	cfg.LogLevel = getString(lookup, "LOG_LEVEL", cfg.LogLevel)

	fs := flag.NewFlagSet("orderservice", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		waitStr       = cfg.ReceiveWait.String()
		visibilityStr = cfg.VisibilityTimeout.String()
		drainStr      = cfg.DrainInterval.String()
		shutdownStr   = cfg.ShutdownTimeout.String()
	)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fs.StringVar(&cfg.StorageDriver, "storage", cfg.StorageDriver, "Order storage driver: postgres|memory")
	fs.StringVar(&cfg.MessagingDriver, "messaging", cfg.MessagingDriver, "Messaging driver: aws|kafka|memory")
	fs.StringVar(&cfg.AWSRegion, "aws-region", cfg.AWSRegion, "AWS region")
	fs.StringVar(&cfg.AWSEndpoint, "aws-endpoint", cfg.AWSEndpoint, "AWS endpoint override")
	fs.StringVar(&cfg.QueueURL, "queue-url", cfg.QueueURL, "Inbound SQS queue URL")
	fs.StringVar(&cfg.TopicARN, "topic-arn", cfg.TopicARN, "Notification SNS topic ARN")
	fs.StringVar(&cfg.EventBusName, "event-bus", cfg.EventBusName, "EventBridge bus name")
	fs.StringVar(&cfg.KafkaBrokers, "kafka-brokers", cfg.KafkaBrokers, "Comma separated Kafka brokers")
	fs.StringVar(&cfg.NotificationTopic, "notification-topic", cfg.NotificationTopic, "Kafka notification topic")
	fs.StringVar(&cfg.EventTopic, "event-topic", cfg.EventTopic, "Kafka event topic")
	fs.StringVar(&cfg.RedisAddr, "redis-addr", cfg.RedisAddr, "Redis address for the inbound stream")
	fs.StringVar(&cfg.QueueStream, "queue-stream", cfg.QueueStream, "Redis stream used as inbound queue")
	fs.StringVar(&cfg.QueueGroup, "queue-group", cfg.QueueGroup, "Redis consumer group")
	fs.IntVar(&cfg.ReceiveMaxMessages, "max-messages", cfg.ReceiveMaxMessages, "Maximum messages per drain")
	fs.StringVar(&waitStr, "wait", waitStr, "Long-poll wait per drain")
	fs.StringVar(&visibilityStr, "visibility-timeout", visibilityStr, "Visibility timeout of received messages")
	fs.StringVar(&drainStr, "drain-interval", drainStr, "Background drain interval, 0 disables")
	fs.StringVar(&shutdownStr, "shutdown-timeout", shutdownStr, "Graceful shutdown timeout")
	fs.StringVar(&cfg.OTelEndpoint, "otel-endpoint", cfg.OTelEndpoint, "OTLP/HTTP trace endpoint")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug|info|warn|error")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.ReceiveWait, err = time.ParseDuration(waitStr); err != nil {
		return nil, fmt.Errorf("invalid receive wait: %w", err)
	}
	if cfg.VisibilityTimeout, err = time.ParseDuration(visibilityStr); err != nil {
		return nil, fmt.Errorf("invalid visibility timeout: %w", err)
	}
	if cfg.DrainInterval, err = time.ParseDuration(drainStr); err != nil {
		return nil, fmt.Errorf("invalid drain interval: %w", err)
	}
	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	normalize(cfg)

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Brokers splits KafkaBrokers into a list of addresses.
func (c *Config) Brokers() []string {
	var brokers []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func readFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config file: %w", err)
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(cfg); err != nil && err != io.EOF {
		return fmt.Errorf("decode config file: %w", err)
	}
	return nil
}

func normalize(cfg *Config) {
	cfg.StorageDriver = strings.ToLower(strings.TrimSpace(cfg.StorageDriver))
	cfg.MessagingDriver = strings.ToLower(strings.TrimSpace(cfg.MessagingDriver))

	if cfg.ReceiveMaxMessages <= 0 {
		cfg.ReceiveMaxMessages = defaultReceiveMaxMessages
	}
	if cfg.ReceiveWait < 0 {
		cfg.ReceiveWait = defaultReceiveWait
	}
	if cfg.VisibilityTimeout <= 0 {
		cfg.VisibilityTimeout = defaultVisibilityTimeout
	}
	if cfg.DrainInterval < 0 {
		cfg.DrainInterval = 0
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}
}

func validate(cfg *Config) error {
	switch cfg.StorageDriver {
	case StorageDriverPostgres:
		if cfg.DatabaseURI == "" {
			return fmt.Errorf("database URI must be provided")
		}
	case StorageDriverMemory:
	default:
		return fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}

	switch cfg.MessagingDriver {
	case MessagingDriverAWS:
		if cfg.QueueURL == "" {
			return fmt.Errorf("queue URL must be provided")
		}
		if cfg.TopicARN == "" {
			return fmt.Errorf("topic ARN must be provided")
		}
	case MessagingDriverKafka:
		if len(cfg.Brokers()) == 0 {
			return fmt.Errorf("kafka brokers must be provided")
		}
	case MessagingDriverMemory:
	default:
		return fmt.Errorf("unknown messaging driver %q", cfg.MessagingDriver)
	}
	return nil
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(lookup envLookup, key string, def int) int {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// DefaultMRMSURL is the fixed "latest" file of the MRMS lowest-altitude reflectivity product.
const DefaultMRMSURL = "https://mrms.ncep.noaa.gov/2D/ReflectivityAtLowestAltitude/MRMS_ReflectivityAtLowestAltitude.latest.grib2.gz"

// DefaultAllowedOrigins are the map client origins allowed when CORS_ALLOWED_ORIGINS is unset.
const DefaultAllowedOrigins = "http://213.136.72.33:3003,http://localhost:3000,http://localhost:3003"

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Upstream snapshot.
	MRMSURL     string
	MRMSTimeout time.Duration

	// Snapshot cache and generation.
	CacheTTL     time.Duration
	SampleStride int
	NoiseSeed    uint64

	AllowedOrigins []string

	// Snapshot summary events.
	KafkaEnabled       bool
	KafkaBrokers       []string
	KafkaSnapshotTopic string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	mrmsTimeout, err := parsePositiveDuration("MRMS_TIMEOUT", "15s")
	if err != nil {
		return nil, err
	}

	cacheTTL, err := parsePositiveDuration("CACHE_TTL", "5m")
	if err != nil {
		return nil, err
	}

	stride, err := parsePositiveInt("SAMPLE_STRIDE", 10)
	if err != nil {
		return nil, err
	}

	var seed uint64
	if s := os.Getenv("NOISE_SEED"); s != "" {
		seed, err = strconv.ParseUint(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid NOISE_SEED %q", s)
		}
	}

	mrmsURL := sharedcfg.EnvOrDefault("MRMS_URL", DefaultMRMSURL)
	if u, err := url.Parse(mrmsURL); err != nil || u.Host == "" {
		return nil, fmt.Errorf("invalid MRMS_URL %q", mrmsURL)
	}

	httpAddr := os.Getenv("HTTP_ADDR")
	if httpAddr == "" {
		httpAddr = ":" + sharedcfg.EnvOrDefault("PORT", "5003")
	}

	cfg := &Config{
		HTTPAddr:        httpAddr,
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		MRMSURL:     mrmsURL,
		MRMSTimeout: mrmsTimeout,

		CacheTTL:     cacheTTL,
		SampleStride: stride,
		NoiseSeed:    seed,

		AllowedOrigins: splitList(sharedcfg.EnvOrDefault("CORS_ALLOWED_ORIGINS", DefaultAllowedOrigins)),

		KafkaEnabled:       os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSnapshotTopic: sharedcfg.EnvOrDefault("KAFKA_SNAPSHOT_TOPIC", "radar-snapshots"),
	}

	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, fmt.Errorf("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
	}
	if cfg.KafkaEnabled && cfg.KafkaSnapshotTopic == "" {
		return nil, fmt.Errorf("KAFKA_SNAPSHOT_TOPIC is required when KAFKA_ENABLED is true")
	}

	return cfg, nil
}

// UpstreamHost returns the host part of MRMSURL. Responses whose source URL
// contains it are labelled MRMS.
func (c *Config) UpstreamHost() string {
	u, err := url.Parse(c.MRMSURL)
	if err != nil {
		return ""
	}
	return u.Host
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	s := sharedcfg.EnvOrDefault(key, def)
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s %q", key, s)
	}
	return d, nil
}

func parsePositiveInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s %q", key, s)
	}
	return n, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

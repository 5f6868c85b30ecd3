package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fantasyops/espn-extractor/internal/platform/logging"
	"github.com/fantasyops/espn-extractor/internal/platform/resilience"
)

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

// Config stores runtime configuration for the extractor.
type Config struct {
	AppEnv         string
	ServiceName    string
	ServiceVersion string
	LogLevel       logging.Level

	SeasonYear     int
	Threads        int
	BatchSize      int
	SampleSize     int
	IncludeStats   bool
	ForceFull      bool
	StatBlockCodes []string
	OnUnavailable  string
	OutputDir      string

	ESPNFantasyBaseURL string
	ESPNCoreBaseURL    string
	ESPNTimeout        time.Duration
	ESPNMaxRetries     int
	ESPNBackoffBase    time.Duration
	ESPNBackoffMax     time.Duration
	ESPNRatePerSecond  float64
	ESPNRateBurst      int
	ESPNCircuit        resilience.CircuitBreakerConfig

	PopulationEnabled    bool
	PopulationEndpoint   string
	PopulationHeaders    map[string]string
	PopulationTimeout    time.Duration
	PopulationMaxRetries int

	PprofEnabled bool
	PprofAddr    string

	UptraceEnabled bool
	UptraceDSN     string

	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
	PyroscopeUploadRate        time.Duration
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	seasonYear, err := getEnvAsInt("EXTRACT_SEASON_YEAR", time.Now().Year())
	if err != nil {
		return Config{}, fmt.Errorf("parse EXTRACT_SEASON_YEAR: %w", err)
	}
	if seasonYear < 2000 {
		return Config{}, fmt.Errorf("EXTRACT_SEASON_YEAR must be >= 2000")
	}

	threads, err := getEnvAsInt("EXTRACT_THREADS", 8)
	if err != nil {
		return Config{}, fmt.Errorf("parse EXTRACT_THREADS: %w", err)
	}
	if threads < 1 {
		return Config{}, fmt.Errorf("EXTRACT_THREADS must be >= 1")
	}

	batchSize, err := getEnvAsInt("EXTRACT_BATCH_SIZE", 100)
	if err != nil {
		return Config{}, fmt.Errorf("parse EXTRACT_BATCH_SIZE: %w", err)
	}
	if batchSize < 1 {
		return Config{}, fmt.Errorf("EXTRACT_BATCH_SIZE must be >= 1")
	}

	sampleSize, err := getEnvAsInt("EXTRACT_SAMPLE_SIZE", 0)
	if err != nil {
		return Config{}, fmt.Errorf("parse EXTRACT_SAMPLE_SIZE: %w", err)
	}
	if sampleSize < 0 {
		return Config{}, fmt.Errorf("EXTRACT_SAMPLE_SIZE must be >= 0")
	}

	includeStats, err := strconv.ParseBool(getEnv("EXTRACT_INCLUDE_STATS", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse EXTRACT_INCLUDE_STATS: %w", err)
	}

	forceFull, err := strconv.ParseBool(getEnv("EXTRACT_FORCE_FULL", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse EXTRACT_FORCE_FULL: %w", err)
	}

	onUnavailable := strings.ToLower(strings.TrimSpace(getEnv("EXTRACT_ON_UNAVAILABLE", "abort")))
	switch onUnavailable {
	case "abort", "proceed-full":
	default:
		return Config{}, fmt.Errorf("invalid EXTRACT_ON_UNAVAILABLE %q: valid values are abort, proceed-full", onUnavailable)
	}

	espnTimeout, err := time.ParseDuration(getEnv("ESPN_TIMEOUT", "20s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse ESPN_TIMEOUT: %w", err)
	}
	if espnTimeout <= 0 {
		return Config{}, fmt.Errorf("ESPN_TIMEOUT must be > 0")
	}

	espnMaxRetries, err := getEnvAsInt("ESPN_MAX_RETRIES", 3)
	if err != nil {
		return Config{}, fmt.Errorf("parse ESPN_MAX_RETRIES: %w", err)
	}
	if espnMaxRetries < 0 {
		return Config{}, fmt.Errorf("ESPN_MAX_RETRIES must be >= 0")
	}

	espnBackoffBase, err := time.ParseDuration(getEnv("ESPN_BACKOFF_BASE", "200ms"))
	if err != nil {
		return Config{}, fmt.Errorf("parse ESPN_BACKOFF_BASE: %w", err)
	}
	espnBackoffMax, err := time.ParseDuration(getEnv("ESPN_BACKOFF_MAX", "5s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse ESPN_BACKOFF_MAX: %w", err)
	}

	espnRate, err := getEnvAsFloat("ESPN_RATE_PER_SECOND", 0)
	if err != nil {
		return Config{}, fmt.Errorf("parse ESPN_RATE_PER_SECOND: %w", err)
	}
	if espnRate < 0 {
		return Config{}, fmt.Errorf("ESPN_RATE_PER_SECOND must be >= 0")
	}
	espnRateBurst, err := getEnvAsInt("ESPN_RATE_BURST", 1)
	if err != nil {
		return Config{}, fmt.Errorf("parse ESPN_RATE_BURST: %w", err)
	}
	if espnRateBurst < 1 {
		return Config{}, fmt.Errorf("ESPN_RATE_BURST must be >= 1")
	}

	espnCircuitEnabled, err := strconv.ParseBool(getEnv("ESPN_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse ESPN_CIRCUIT_ENABLED: %w", err)
	}
	espnCircuitFailureCount, err := getEnvAsInt("ESPN_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse ESPN_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if espnCircuitFailureCount < 1 {
		return Config{}, fmt.Errorf("ESPN_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	espnCircuitOpenTimeout, err := time.ParseDuration(getEnv("ESPN_CIRCUIT_OPEN_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse ESPN_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if espnCircuitOpenTimeout <= 0 {
		return Config{}, fmt.Errorf("ESPN_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	espnCircuitHalfOpenMaxReq, err := getEnvAsInt("ESPN_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse ESPN_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if espnCircuitHalfOpenMaxReq < 1 {
		return Config{}, fmt.Errorf("ESPN_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}

	populationEnabled, err := strconv.ParseBool(getEnv("POPULATION_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse POPULATION_ENABLED: %w", err)
	}
	populationEndpoint := strings.TrimSpace(getEnv("POPULATION_ENDPOINT", ""))
	if populationEnabled && populationEndpoint == "" {
		return Config{}, fmt.Errorf("POPULATION_ENDPOINT is required when POPULATION_ENABLED=true")
	}
	populationHeaders, err := parseHeaderMap(getEnv("POPULATION_HEADERS", ""))
	if err != nil {
		return Config{}, fmt.Errorf("parse POPULATION_HEADERS: %w", err)
	}
	populationTimeout, err := time.ParseDuration(getEnv("POPULATION_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse POPULATION_TIMEOUT: %w", err)
	}
	if populationTimeout <= 0 {
		return Config{}, fmt.Errorf("POPULATION_TIMEOUT must be > 0")
	}
	populationMaxRetries, err := getEnvAsInt("POPULATION_MAX_RETRIES", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse POPULATION_MAX_RETRIES: %w", err)
	}
	if populationMaxRetries < 0 {
		return Config{}, fmt.Errorf("POPULATION_MAX_RETRIES must be >= 0")
	}

	pprofEnabled, err := strconv.ParseBool(getEnv("PPROF_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}
	pprofAddr := strings.TrimSpace(getEnv("PPROF_ADDR", ":6060"))
	if pprofEnabled && pprofAddr == "" {
		return Config{}, fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}

	pyroscopeEnabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	pyroscopeServerAddress := strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if pyroscopeEnabled && pyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	pyroscopeUploadRate, err := time.ParseDuration(getEnv("PYROSCOPE_UPLOAD_RATE", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_UPLOAD_RATE: %w", err)
	}
	if pyroscopeUploadRate <= 0 {
		return Config{}, fmt.Errorf("PYROSCOPE_UPLOAD_RATE must be > 0")
	}

	cfg := Config{
		AppEnv:         appEnv,
		ServiceName:    getEnv("APP_SERVICE_NAME", "espn-extractor"),
		ServiceVersion: getEnv("APP_SERVICE_VERSION", "dev"),
		LogLevel:       logging.ParseLevel(getEnv("APP_LOG_LEVEL", "info")),

		SeasonYear:     seasonYear,
		Threads:        threads,
		BatchSize:      batchSize,
		SampleSize:     sampleSize,
		IncludeStats:   includeStats,
		ForceFull:      forceFull,
		StatBlockCodes: splitCSV(getEnv("EXTRACT_STAT_BLOCK_CODES", "")),
		OnUnavailable:  onUnavailable,
		OutputDir:      strings.TrimSpace(getEnv("EXTRACT_OUTPUT_DIR", "output")),

		ESPNFantasyBaseURL: strings.TrimSpace(getEnv("ESPN_FANTASY_BASE_URL", "")),
		ESPNCoreBaseURL:    strings.TrimSpace(getEnv("ESPN_CORE_BASE_URL", "")),
		ESPNTimeout:        espnTimeout,
		ESPNMaxRetries:     espnMaxRetries,
		ESPNBackoffBase:    espnBackoffBase,
		ESPNBackoffMax:     espnBackoffMax,
		ESPNRatePerSecond:  espnRate,
		ESPNRateBurst:      espnRateBurst,
		ESPNCircuit: resilience.CircuitBreakerConfig{
			Enabled:          espnCircuitEnabled,
			FailureThreshold: espnCircuitFailureCount,
			OpenTimeout:      espnCircuitOpenTimeout,
			HalfOpenMaxReq:   espnCircuitHalfOpenMaxReq,
		},

		PopulationEnabled:    populationEnabled,
		PopulationEndpoint:   populationEndpoint,
		PopulationHeaders:    populationHeaders,
		PopulationTimeout:    populationTimeout,
		PopulationMaxRetries: populationMaxRetries,

		PprofEnabled: pprofEnabled,
		PprofAddr:    pprofAddr,

		UptraceEnabled: uptraceEnabled,
		UptraceDSN:     uptraceDSN,

		PyroscopeEnabled:           pyroscopeEnabled,
		PyroscopeServerAddress:     pyroscopeServerAddress,
		PyroscopeAuthToken:         strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeBasicAuthUser:     strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
		PyroscopeBasicAuthPassword: strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")),
		PyroscopeUploadRate:        pyroscopeUploadRate,
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	if cfg.PyroscopeEnabled && cfg.PyroscopeAppName == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_APP_NAME cannot be empty when PYROSCOPE_ENABLED=true")
	}

	return cfg, nil
}

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func getEnvAsFloat(key string, fallback float64) (float64, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

// parseHeaderMap parses "Key1:value1,Key2:value2" header pairs.
func parseHeaderMap(raw string) (map[string]string, error) {
	out := make(map[string]string)
	for _, item := range splitCSV(raw) {
		segments := strings.SplitN(item, ":", 2)
		if len(segments) != 2 {
			return nil, fmt.Errorf("invalid header item %q, expected name:value", item)
		}

		key := strings.TrimSpace(segments[0])
		value := strings.TrimSpace(segments[1])
		if key == "" || value == "" {
			return nil, fmt.Errorf("empty name or value in header item %q", item)
		}
		out[key] = value
	}
	return out, nil
}

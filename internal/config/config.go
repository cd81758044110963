package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	App      AppConfig
	Backends BackendsConfig
	Breaker  BreakerConfig
	Selector SelectorConfig
	Cache    CacheConfig
	JWT      JWTConfig
	Database DatabaseConfig
}

type AppConfig struct {
	AppName     string
	Environment string
	HTTPPort    string

	EnableCaching  bool
	EnableFallback bool
}

type BackendsConfig struct {
	// NextenURL points at the ML matching service, V1URL at the heuristic one.
	NextenURL     string
	V1URL         string
	NextenTimeout time.Duration
	V1Timeout     time.Duration
	MaxRetries    int
}

type BreakerConfig struct {
	FailureThreshold int
	RecoveryTimeout  time.Duration
}

type SelectorConfig struct {
	NextenMinScore            float64
	SeniorExperienceThreshold int
	ComplexSkillsThreshold    int

	QuestionnaireWeight float64
	LocationWeight      float64
	SkillsWeight        float64
	ExperienceWeight    float64
}

type CacheConfig struct {
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	SelectionTTL time.Duration
	ResultTTL    time.Duration
	RequestTTL   time.Duration
}

type JWTConfig struct {
	AccessSecret     string
	RefreshSecret    string
	AccessExpiresIn  time.Duration
	RefreshExpiresIn time.Duration
}

// DatabaseConfig is optional: with DB_HOST unset the service runs without the
// match-history store.
type DatabaseConfig struct {
	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string

	ConnectTimeout time.Duration
	PoolMaxConns   int32
	PoolMinConns   int32
}

func (d DatabaseConfig) Enabled() bool {
	return strings.TrimSpace(d.DBHost) != ""
}

var errMissingRequiredEnv = errors.New("missing required environment variables")

func Load() (Config, error) {
	cfg := Config{}

	var missing []string
	req := func(key string) string {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			missing = append(missing, key)
		}
		return v
	}
	opt := func(key string) string {
		return strings.TrimSpace(os.Getenv(key))
	}

	cfg.App = AppConfig{
		AppName:        req("APP_NAME"),
		Environment:    req("APP_ENV"),
		HTTPPort:       req("HTTP_PORT"),
		EnableCaching:  envBool("ENABLE_CACHING", true),
		EnableFallback: envBool("ENABLE_FALLBACK", true),
	}

	cfg.Backends = BackendsConfig{
		NextenURL:     req("NEXTEN_URL"),
		V1URL:         req("V1_URL"),
		NextenTimeout: envSeconds("NEXTEN_TIMEOUT_SECONDS", 30*time.Second),
		V1Timeout:     envSeconds("V1_TIMEOUT_SECONDS", 20*time.Second),
		MaxRetries:    envInt("BACKEND_MAX_RETRIES", 3),
	}

	cfg.Breaker = BreakerConfig{
		FailureThreshold: envInt("CB_FAILURE_THRESHOLD", 5),
		RecoveryTimeout:  envSeconds("CB_RECOVERY_TIMEOUT_SECONDS", 60*time.Second),
	}

	cfg.Selector = SelectorConfig{
		NextenMinScore:            envFloat("NEXTEN_MIN_SCORE", 80),
		SeniorExperienceThreshold: envInt("SENIOR_EXPERIENCE_THRESHOLD", 7),
		ComplexSkillsThreshold:    envInt("COMPLEX_SKILLS_THRESHOLD", 5),
		QuestionnaireWeight:       envFloat("RICHNESS_QUESTIONNAIRE_WEIGHT", 0.4),
		LocationWeight:            envFloat("RICHNESS_LOCATION_WEIGHT", 0.2),
		SkillsWeight:              envFloat("RICHNESS_SKILLS_WEIGHT", 0.2),
		ExperienceWeight:          envFloat("RICHNESS_EXPERIENCE_WEIGHT", 0.2),
	}

	cfg.Cache = CacheConfig{
		RedisHost:     opt("REDIS_HOST"),
		RedisPort:     opt("REDIS_PORT"),
		RedisPassword: opt("REDIS_PASSWORD"),
		RedisDB:       envInt("REDIS_DB", 0),
		SelectionTTL:  envSeconds("SELECTION_CACHE_TTL_SECONDS", 30*time.Minute),
		ResultTTL:     envSeconds("RESULT_CACHE_TTL_SECONDS", time.Hour),
		RequestTTL:    envSeconds("REQUEST_CACHE_TTL_SECONDS", 10*time.Minute),
	}

	cfg.JWT = JWTConfig{
		AccessSecret:     opt("JWT_ACCESS_SECRET"),
		RefreshSecret:    opt("JWT_REFRESH_SECRET"),
		AccessExpiresIn:  envSeconds("JWT_ACCESS_EXPIRES_SECONDS", 15*time.Minute),
		RefreshExpiresIn: envSeconds("JWT_REFRESH_EXPIRES_SECONDS", 7*24*time.Hour),
	}

	cfg.Database = DatabaseConfig{
		DBHost:         opt("DB_HOST"),
		DBPort:         opt("DB_PORT"),
		DBName:         opt("DB_NAME"),
		DBUser:         opt("DB_USER"),
		DBPassword:     opt("DB_PASSWORD"),
		DBSSLMode:      opt("DB_SSL_MODE"),
		ConnectTimeout: envSeconds("DB_CONNECT_TIMEOUT_SECONDS", 5*time.Second),
		PoolMaxConns:   int32(envInt("DB_POOL_MAX_CONNS", 0)),
		PoolMinConns:   int32(envInt("DB_POOL_MIN_CONNS", 0)),
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("%w: %s", errMissingRequiredEnv, strings.Join(missing, ", "))
	}

	return cfg, nil
}

func envInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

func envFloat(key string, def float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return def
	}
	return v
}

func envSeconds(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return def
	}
	return time.Duration(v) * time.Second
}

func envBool(key string, def bool) bool {
	raw := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if raw == "" {
		return def
	}
	switch raw {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return def
}

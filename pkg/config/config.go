package config

import (
	"errors"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App         AppConfig
	Server      ServerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Admin       AdminConfig
	Recommender RecommenderConfig
	CacheTTL    CacheTTLConfig
}

type AppConfig struct {
	Name        string
	Version     string
	Environment string
}

type ServerConfig struct {
	Port string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type RedisConfig struct {
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
}

type AdminConfig struct {
	JWTSecret string
}

// RecommenderConfig is the tuning surface for the offline pipelines and the
// online policy. Defaults match the values the derived tables were built with.
type RecommenderConfig struct {
	LookbackDays            int
	DecayLambda7d           float64
	DecayLambda30d          float64
	BatchSize               int
	TopKSimilar             int
	NeighborLookupK         int
	MinCoOccurrence         int
	RecentEventsLimit       int
	PersonalizedMinFraction float64
}

// CacheTTLConfig holds TTLs in seconds per cache namespace.
type CacheTTLConfig struct {
	Recommendations int
	SimilarProducts int
	Trending        int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, errors.New("invalid redis database")
	}

	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "ShopSmart Recommendation API"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			Environment: getEnv("APP_ENV", "development"),
		},
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "shopsmart"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "shopsmart"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		},
		Redis: RedisConfig{
			RedisHost:     getEnv("REDIS_HOST", "localhost"),
			RedisPort:     getEnv("REDIS_PORT", "6379"),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       redisDB,
		},
		Admin: AdminConfig{
			JWTSecret: getEnv("ADMIN_JWT_SECRET", ""),
		},
		Recommender: RecommenderConfig{
			LookbackDays:            getEnvInt("RECO_LOOKBACK_DAYS", 90),
			DecayLambda7d:           getEnvFloat("RECO_DECAY_LAMBDA_7D", 0.3),
			DecayLambda30d:          getEnvFloat("RECO_DECAY_LAMBDA_30D", 0.1),
			BatchSize:               getEnvInt("RECO_BATCH_SIZE", 500),
			TopKSimilar:             getEnvInt("RECO_TOP_K_SIMILAR", 50),
			NeighborLookupK:         getEnvInt("RECO_NEIGHBOR_LOOKUP_K", 20),
			MinCoOccurrence:         getEnvInt("RECO_MIN_CO_OCCURRENCE", 2),
			RecentEventsLimit:       getEnvInt("RECO_RECENT_EVENTS_LIMIT", 50),
			PersonalizedMinFraction: getEnvFloat("RECO_PERSONALIZED_MIN_FRACTION", 0.5),
		},
		CacheTTL: CacheTTLConfig{
			Recommendations: getEnvInt("CACHE_TTL_RECOMMENDATIONS", 300),
			SimilarProducts: getEnvInt("CACHE_TTL_SIMILAR_PRODUCTS", 3600),
			Trending:        getEnvInt("CACHE_TTL_TRENDING", 900),
		},
	}

	if cfg.Database.Password == "" {
		return nil, errors.New("missing database password")
	}

	if err := cfg.Recommender.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects configurations the pipelines cannot run safely with.
func (c RecommenderConfig) Validate() error {
	if c.LookbackDays <= 0 {
		return errors.New("lookback days must be positive")
	}
	if c.DecayLambda7d <= 0 || c.DecayLambda30d <= 0 {
		return errors.New("decay lambda must be positive")
	}
	if c.BatchSize <= 0 {
		return errors.New("batch size must be positive")
	}
	if c.TopKSimilar <= 0 || c.NeighborLookupK <= 0 {
		return errors.New("top-k values must be positive")
	}
	if c.MinCoOccurrence < 1 {
		return errors.New("min co-occurrence must be at least 1")
	}
	if c.RecentEventsLimit <= 0 {
		return errors.New("recent events limit must be positive")
	}
	if c.PersonalizedMinFraction <= 0 || c.PersonalizedMinFraction > 1 {
		return errors.New("personalized min fraction must be in (0, 1]")
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}

	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}

	return defaultVal
}

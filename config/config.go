package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`
	AllowedOrigins    string `mapstructure:"ALLOWED_ORIGINS"`

	// MongoDB holds intent examples, hotel facts and tickets.
	DatabaseURL  string `mapstructure:"DATABASE_URL"`
	DatabaseName string `mapstructure:"DATABASE_NAME"`

	// Knowledge backend: "mongo" or "memory". The memory backend is
	// filled from the seed files at startup.
	KnowledgeStore  string `mapstructure:"KNOWLEDGE_STORE"`
	SeedIntentsFile string `mapstructure:"SEED_INTENTS_FILE"`
	SeedFactsFile   string `mapstructure:"SEED_FACTS_FILE"`

	// Redis configuration.
	RedisAddr      string `mapstructure:"REDIS_ADDR"`
	RedisPassword  string `mapstructure:"REDIS_PASSWORD"`
	RedisSessionDB int    `mapstructure:"REDIS_SESSION_DB"`
	RedisCacheDB   int    `mapstructure:"REDIS_CACHE_DB"`
	RedisQueueDB   int    `mapstructure:"REDIS_QUEUE_DB"`

	// Booking dialog sessions: "memory" or "redis".
	SessionStore string        `mapstructure:"SESSION_STORE"`
	SessionTTL   time.Duration `mapstructure:"SESSION_TTL"`

	// Strict dates rejects impossible calendar dates at the input step.
	BookingStrictDates bool `mapstructure:"BOOKING_STRICT_DATES"`

	// Gemini.
	GeminiAPIKey   string `mapstructure:"GEMINI_API_KEY"`
	EmbeddingModel string `mapstructure:"EMBEDDING_MODEL"`
	LLMModel       string `mapstructure:"LLM_MODEL"`
	IntentTopK     int    `mapstructure:"INTENT_TOP_K"`
	FAQTopK        int    `mapstructure:"FAQ_TOP_K"`

	// Google Cloud Speech.
	GoogleServiceAccountFile string `mapstructure:"GOOGLE_SERVICE_ACCOUNT_FILE"`
	SpeechLanguage           string `mapstructure:"SPEECH_LANGUAGE"`
}

var AppConfig Config

func LoadConfig() {
	// A local .env is optional; real environment variables take precedence.
	_ = godotenv.Load()

	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	setDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

// setDefaults registers every key; viper only unmarshals keys it knows about.
func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	v.SetDefault("ALLOWED_ORIGINS", "*")
	v.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	v.SetDefault("DATABASE_NAME", "concierge")
	v.SetDefault("KNOWLEDGE_STORE", "mongo")
	v.SetDefault("SEED_INTENTS_FILE", "")
	v.SetDefault("SEED_FACTS_FILE", "")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_SESSION_DB", 0)
	v.SetDefault("REDIS_CACHE_DB", 1)
	v.SetDefault("REDIS_QUEUE_DB", 2)
	v.SetDefault("SESSION_STORE", "memory")
	v.SetDefault("SESSION_TTL", "30m")
	v.SetDefault("BOOKING_STRICT_DATES", true)
	v.SetDefault("GEMINI_API_KEY", "")
	v.SetDefault("EMBEDDING_MODEL", "text-embedding-004")
	v.SetDefault("LLM_MODEL", "gemini-1.5-flash")
	v.SetDefault("INTENT_TOP_K", 5)
	v.SetDefault("FAQ_TOP_K", 4)
	v.SetDefault("GOOGLE_SERVICE_ACCOUNT_FILE", "")
	v.SetDefault("SPEECH_LANGUAGE", "tr-TR")
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}

// Origins splits ALLOWED_ORIGINS on commas.
func Origins() []string {
	var out []string
	for _, o := range strings.Split(AppConfig.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	// Server
	Port string
	Env  string

	// Database
	DatabaseURL string

	// Redis (optional; caching is skipped when empty)
	RedisURL string

	// YouTube Data API key pool, rotated on quota exhaustion
	YouTubeAPIKeys []string

	// Gemini
	GeminiAPIKey         string
	GeminiModel          string
	GeminiConcurrentReqs int

	// Telegram
	TelegramBotToken string
	TelegramChatIDs  []int64

	// Collection
	SourcesFile      string
	CollectorWorkers int
	CollectDaysBack  int

	// Cron specs (local wall-clock)
	CollectCron      string
	DailyReportCron  string
	WeeklyReportCron string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:        getEnvOrDefault("PORT", "8080"),
		Env:         getEnvOrDefault("ENV", "development"),
		DatabaseURL: mustGetEnv("DATABASE_URL"),
		RedisURL:    getEnvOrDefault("REDIS_URL", ""),

		YouTubeAPIKeys: splitAndTrim(mustGetEnv("YOUTUBE_API_KEYS")),

		GeminiAPIKey:         mustGetEnv("GEMINI_API_KEY"),
		GeminiModel:          getEnvOrDefault("GEMINI_MODEL", "gemini-2.5-flash"),
		GeminiConcurrentReqs: getEnvAsIntOrDefault("GEMINI_CONCURRENT_REQUESTS", 5),

		TelegramBotToken: getEnvOrDefault("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatIDs:  parseChatIDs(getEnvOrDefault("TELEGRAM_CHAT_IDS", "")),

		SourcesFile:      getEnvOrDefault("SOURCES_FILE", "sources.yml"),
		CollectorWorkers: getEnvAsIntOrDefault("COLLECTOR_WORKERS", 4),
		CollectDaysBack:  getEnvAsIntOrDefault("COLLECT_DAYS_BACK", 1),

		CollectCron:      getEnvOrDefault("COLLECT_CRON", "0 6 * * *"),
		DailyReportCron:  getEnvOrDefault("DAILY_REPORT_CRON", "0 9 * * *"),
		WeeklyReportCron: getEnvOrDefault("WEEKLY_REPORT_CRON", "0 10 * * 1"),
	}

	return cfg
}

// Sources is the default channel/keyword list loaded at process start.
type Sources struct {
	Channels []SourceChannel `yaml:"channels"`
	Keywords []SourceKeyword `yaml:"keywords"`
}

type SourceChannel struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

type SourceKeyword struct {
	Keyword  string `yaml:"keyword"`
	Category string `yaml:"category"`
}

func (s *Sources) ChannelIDs() []string {
	ids := make([]string, 0, len(s.Channels))
	for _, c := range s.Channels {
		ids = append(ids, c.ID)
	}
	return ids
}

func (s *Sources) KeywordList() []string {
	kws := make([]string, 0, len(s.Keywords))
	for _, k := range s.Keywords {
		kws = append(kws, k.Keyword)
	}
	return kws
}

func LoadSources(path string) (*Sources, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sources file %s: %w", path, err)
	}

	var src Sources
	if err := yaml.Unmarshal(data, &src); err != nil {
		return nil, fmt.Errorf("failed to parse sources file %s: %w", path, err)
	}

	for _, k := range src.Keywords {
		if k.Keyword == "" {
			return nil, fmt.Errorf("sources file %s contains an empty keyword entry", path)
		}
	}
	for _, c := range src.Channels {
		if c.ID == "" {
			return nil, fmt.Errorf("sources file %s contains a channel without an id", path)
		}
	}

	return &src, nil
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

func splitAndTrim(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseChatIDs(s string) []int64 {
	var ids []int64
	for _, part := range splitAndTrim(s) {
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

package config

import (
	"os"
	"time"
)

type Config struct {
	ListenAddr   string
	PhotosDir    string
	MetadataPath string
	DBPath       string
	CacheDir     string
	LedgerPath   string
	StatsPath    string

	MaxWidth  int
	MaxHeight int

	Retention             time.Duration
	SweepInterval         time.Duration
	LedgerPersistInterval time.Duration
	StatsPersistInterval  time.Duration
	RenderTimeout         time.Duration
	HotCacheSize          int
}

func Load() *Config {
	return &Config{
		ListenAddr:   getEnv("DT_LISTEN_ADDR", ":8080"),
		PhotosDir:    getEnv("DT_PHOTOS_DIR", "/data/photos"),
		MetadataPath: getEnv("DT_METADATA_PATH", "/data/photos/metadata.json"),
		DBPath:       getEnv("DT_DB_PATH", "/data/db/catalog.db"),
		CacheDir:     getEnv("DT_CACHE_DIR", "/data/cache"),
		LedgerPath:   getEnv("DT_LEDGER_PATH", "/data/cache-ledger.json"),
		StatsPath:    getEnv("DT_STATS_PATH", "/data/stats.json"),

		MaxWidth:  getEnvInt("DT_MAX_WIDTH", 2000),
		MaxHeight: getEnvInt("DT_MAX_HEIGHT", 2000),

		Retention:             getEnvDuration("DT_RETENTION", 14*24*time.Hour),
		SweepInterval:         getEnvDuration("DT_SWEEP_INTERVAL", 5*time.Minute),
		LedgerPersistInterval: getEnvDuration("DT_LEDGER_PERSIST_INTERVAL", time.Minute),
		StatsPersistInterval:  getEnvDuration("DT_STATS_PERSIST_INTERVAL", 5*time.Second),
		RenderTimeout:         getEnvDuration("DT_RENDER_TIMEOUT", 30*time.Second),
		HotCacheSize:          getEnvInt("DT_HOT_CACHE_SIZE", 256),
	}
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	var result int
	for _, c := range v {
		if c < '0' || c > '9' {
			return defaultValue
		}
		result = result*10 + int(c-'0')
	}
	return result
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultValue
	}
	return d
}

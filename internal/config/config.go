package config

import (
	"os"
	"strconv"
	"strings"

	"reward_platform/internal/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort     string
	DatabaseURL string
	JWTSecret   string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Anti-cheat limits
	StrikeLimit  int
	BlockMinutes int

	// Withdrawals
	FeePercent       int
	AllowedAmounts   []int64
	MinAddressLength int

	// API rate limit
	RateLimit  int
	RateWindow int
}

// Load reads configuration from env, .env file included
func Load() *Config {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		logger.Fatal("DATABASE_URL is not set")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Fatal("JWT_SECRET is not set")
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	redisDB := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			redisDB = n
		}
	}

	strikeLimit := 5
	if v := os.Getenv("STRIKE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			strikeLimit = n
		}
	}

	blockMinutes := 1440 // 24h
	if v := os.Getenv("BLOCK_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			blockMinutes = n
		}
	}

	feePercent := 10
	if v := os.Getenv("WITHDRAWAL_FEE_PERCENT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 && n < 100 {
			feePercent = n
		}
	}

	allowed := []int64{10, 30, 50, 100, 300, 500, 1000, 100000}
	if v := os.Getenv("WITHDRAWAL_AMOUNTS"); v != "" {
		var parsed []int64
		for _, s := range strings.Split(v, ",") {
			if n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err == nil && n > 0 {
				parsed = append(parsed, n)
			}
		}
		if len(parsed) > 0 {
			allowed = parsed
		}
	}

	minAddressLength := 10
	if v := os.Getenv("MIN_ADDRESS_LENGTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			minAddressLength = n
		}
	}

	rateLimit := 60
	if v := os.Getenv("RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			rateLimit = n
		}
	}

	rateWindow := 60
	if v := os.Getenv("RATE_WINDOW"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			rateWindow = n
		}
	}

	return &Config{
		AppPort:          port,
		DatabaseURL:      dbURL,
		JWTSecret:        jwtSecret,
		RedisAddr:        redisAddr,
		RedisPassword:    os.Getenv("REDIS_PASSWORD"),
		RedisDB:          redisDB,
		StrikeLimit:      strikeLimit,
		BlockMinutes:     blockMinutes,
		FeePercent:       feePercent,
		AllowedAmounts:   allowed,
		MinAddressLength: minAddressLength,
		RateLimit:        rateLimit,
		RateWindow:       rateWindow,
	}
}

package app

import (
	"strings"
	"time"

	"github.com/yungbote/storefront-backend/internal/platform/envutil"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
)

type Config struct {
	Port            string
	JWTSecretKey    string
	RedisAddr       string
	CartCacheTTL    time.Duration
	CORSOrigins     []string
	RenewalInterval time.Duration
	RenewalLimit    int
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		Port:            envutil.String("PORT", "8080"),
		JWTSecretKey:    envutil.String("JWT_SECRET_KEY", "defaultsecret"),
		RedisAddr:       envutil.String("REDIS_ADDR", ""),
		CartCacheTTL:    time.Duration(envutil.Int("CART_CACHE_TTL_SECONDS", 86400)) * time.Second,
		RenewalInterval: time.Duration(envutil.Int("RENEWAL_INTERVAL_SECONDS", 0)) * time.Second,
		RenewalLimit:    envutil.Int("RENEWAL_BATCH_LIMIT", 100),
	}
	if raw := strings.TrimSpace(envutil.String("CORS_ORIGINS", "")); raw != "" {
		for _, origin := range strings.Split(raw, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, origin)
			}
		}
	}
	if cfg.JWTSecretKey == "defaultsecret" {
		log.Warn("JWT_SECRET_KEY not set, using insecure default")
	}
	return cfg
}

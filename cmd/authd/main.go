package main

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/intent-app/auth-service/adapters/events"
	identitystore "github.com/intent-app/auth-service/adapters/identity"
	"github.com/intent-app/auth-service/adapters/ratelimit"
	"github.com/intent-app/auth-service/adapters/store"
	"github.com/intent-app/auth-service/adapters/tokenizer"
	"github.com/intent-app/auth-service/internal/config"
	"github.com/intent-app/auth-service/internal/logger"
	"github.com/intent-app/auth-service/ports"
	"github.com/intent-app/auth-service/service"
	transport "github.com/intent-app/auth-service/transport/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	logger.Init("auth-service", cfg.Debug)
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	signKey, err := loadSigningKey(cfg.Tokens.SigningKeyPEM)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load token signing key")
	}

	var (
		kvStore  ports.Store
		idStore  ports.IdentityStore
		limiter  ports.RateLimitStore
		eventPub ports.EventPublisher
	)

	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to parse Redis URL")
		}
		redisClient := redis.NewClient(opts)

		publisher, err := redisstream.NewPublisher(
			redisstream.PublisherConfig{Client: redisClient},
			watermill.NewStdLogger(cfg.Debug, false),
		)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create Redis publisher")
		}

		kvStore = store.NewRedisStore(redisClient)
		idStore = identitystore.NewRedisStore(redisClient)
		limiter = ratelimit.NewRedisStore(redisClient, cfg.RateLimit.MaxRequests, cfg.RateLimit.Window)
		eventPub = events.NewWatermillPublisher(publisher)

		log.Info().Msg("using Redis-backed stores")
	} else {
		var publisher message.Publisher = gochannel.NewGoChannel(
			gochannel.Config{},
			watermill.NewStdLogger(cfg.Debug, false),
		)

		kvStore = store.NewMemoryStore()
		idStore = identitystore.NewMemoryStore()
		limiter = ratelimit.NewMemoryStore(cfg.RateLimit.MaxRequests, cfg.RateLimit.Window)
		eventPub = events.NewWatermillPublisher(publisher)

		log.Warn().Msg("REDIS_URL not set, using in-memory stores")
	}

	tok := tokenizer.NewJWTTokenizer(signKey, cfg.Tokens.AccessTTL, cfg.Tokens.RefreshTTL)

	authService := service.NewAuthService(idStore, tok, kvStore, eventPub, service.Config{
		Domain:         cfg.Siwe.Domain,
		IdentityDomain: cfg.Siwe.IdentityDomain,
	})

	router := transport.SetupRouter(authService, limiter)

	log.Info().Str("addr", cfg.Server.Addr).Str("domain", cfg.Siwe.Domain).Msg("starting auth service")
	if err := router.Run(cfg.Server.Addr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

// loadSigningKey parses a PEM-encoded P-256 key, or generates an ephemeral
// one when the config leaves it empty.
func loadSigningKey(pemStr string) (*ecdsa.PrivateKey, error) {
	if pemStr == "" {
		log.Warn().Msg("TOKEN_SIGNING_KEY not set, generating ephemeral key; sessions will not survive restarts")
		return ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	}

	block, _ := pem.Decode([]byte(pemStr))
	if block == nil {
		return nil, fmt.Errorf("invalid PEM in TOKEN_SIGNING_KEY")
	}
	return x509.ParseECPrivateKey(block.Bytes)
}

// Command bliss-auth starts the client authentication gRPC server.
package main

import (
	"context"
	"flag"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/and161185/bliss-auth/internal/acquire"
	"github.com/and161185/bliss-auth/internal/api/authv1"
	"github.com/and161185/bliss-auth/internal/config"
	"github.com/and161185/bliss-auth/internal/identity"
	"github.com/and161185/bliss-auth/internal/limiter"
	"github.com/and161185/bliss-auth/internal/logger"
	"github.com/and161185/bliss-auth/internal/migrate"
	"github.com/and161185/bliss-auth/internal/promote"
	"github.com/and161185/bliss-auth/internal/repository/postgres"
	"github.com/and161185/bliss-auth/internal/repository/redisstore"
	grpcserver "github.com/and161185/bliss-auth/internal/server/grpc"
	"github.com/and161185/bliss-auth/internal/service"
	"github.com/and161185/bliss-auth/internal/token"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	cfgFile := flag.String("config", "", "config file (yaml, json or toml)")
	addr := flag.String("addr", "", "listen address (overrides config)")
	dev := flag.Bool("dev", false, "enable server reflection and plaintext (dev only)")
	flag.Parse()

	if *cfgFile == "" {
		*cfgFile = os.Getenv(config.EnvPrefix + "_CONFIG")
	}
	cfg, err := config.Load(*cfgFile)
	if err != nil {
		panic(err)
	}
	if *addr != "" {
		cfg.Addr = *addr
	}
	if *dev {
		cfg.Dev = true
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()
	log.Info("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
		zap.String("addr", cfg.Addr),
	)

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid config", zap.Error(err))
	}

	// Context with OS signals
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := migrate.Up(ctx, cfg.DatabaseDSN); err != nil {
		log.Fatal("migrate up", zap.Error(err))
	}

	db, err := postgres.New(ctx, cfg.DatabaseDSN)
	if err != nil {
		log.Fatal("postgres", zap.Error(err))
	}
	defer db.Close()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer func() { _ = rdb.Close() }()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatal("redis ping", zap.Error(err))
	}

	priv, pub, err := token.LoadKeyPair(cfg.SigningKey, cfg.VerifyKey)
	if err != nil {
		log.Fatal("load key pair", zap.Error(err))
	}
	codec, err := token.NewCodec(priv, pub, token.WithIssuer(cfg.Issuer), token.WithTTL(cfg.TokenTTL))
	if err != nil {
		log.Fatal("token codec", zap.Error(err))
	}
	ids, err := identity.NewDeriver(cfg.Secret)
	if err != nil {
		log.Fatal("identity deriver", zap.Error(err))
	}

	// Services
	opts := service.Options{
		TransientTTL: cfg.TransientTTL,
		StoreTimeout: cfg.StoreTimeout,
		Logger:       log,
	}
	durable := postgres.NewStore(db)
	transient := service.NewTransientManager(ids, codec, redisstore.NewTransientStore(rdb, cfg.RedisPrefix), durable, opts)
	permanent := service.NewPermanentManager(ids, codec, durable, transient, opts)

	oauth := map[string]acquire.Strategy{}
	if p := cfg.Google; p.Enabled() {
		oauth[acquire.ProviderGoogle] = acquire.NewGoogle(p.ClientID, p.ClientSecret, p.RedirectURL)
	}
	if p := cfg.Facebook; p.Enabled() {
		oauth[acquire.ProviderFacebook] = acquire.NewFacebook(p.ClientID, p.ClientSecret, p.RedirectURL)
	}
	acq := acquire.New(acquire.NewPassword(), oauth, transient, permanent, log)
	gate := promote.New(codec, permanent, log)

	var lim limiter.Limiter = limiter.Nop{}
	if cfg.AcquireLimit > 0 {
		lim = limiter.NewRedis(rdb, "", cfg.AcquireLimit, cfg.AcquireWindow)
	}

	// gRPC server with interceptors
	s := grpc.NewServer(
		grpc.Creds(serverCreds(cfg, log)),
		grpc.ChainUnaryInterceptor(
			grpcserver.RecoverUnary(log),
			grpcserver.LoggingUnary(log),
			grpcserver.ThrottleUnary(lim, log,
				authv1.ClientAuth_RegisterBasic_FullMethodName,
				authv1.ClientAuth_OAuthCallback_FullMethodName,
			),
			grpcserver.BearerUnary(),
		),
	)
	authv1.RegisterClientAuthServer(s, grpcserver.New(acq, transient, gate, log))

	// Health & reflection (dev)
	hs := health.NewServer()
	hs.SetServingStatus(authv1.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(s, hs)
	if cfg.Dev {
		reflection.Register(s)
	}

	lis, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		log.Fatal("listen", zap.Error(err))
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", cfg.Addr), zap.Int("oauthProviders", len(oauth)))
		errCh <- s.Serve(lis)
	}()

	select {
	case <-ctx.Done():
		hs.Shutdown()
		done := make(chan struct{})
		go func() {
			s.GracefulStop()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			s.Stop()
		}
	case err := <-errCh:
		log.Error("server error", zap.Error(err))
		os.Exit(1)
	}

	log.Info("shutdown complete")
}

// serverCreds loads TLS from the configured pair. Plaintext is only allowed in dev.
func serverCreds(cfg *config.Config, log *zap.Logger) credentials.TransportCredentials {
	if cfg.TLSCert == "" {
		if !cfg.Dev {
			log.Fatal("tls_cert and tls_key are required outside dev mode")
		}
		log.Warn("serving without TLS")
		return insecure.NewCredentials()
	}
	creds, err := credentials.NewServerTLSFromFile(cfg.TLSCert, cfg.TLSKey)
	if err != nil {
		log.Fatal("failed to load TLS cert/key", zap.Error(err))
	}
	return creds
}

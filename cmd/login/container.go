package main

import (
	"context"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/playforge/login/pkg/account/accountapi"
	"github.com/playforge/login/pkg/account/accountinfra"
	"github.com/playforge/login/pkg/account/accountsrv"
	"github.com/playforge/login/pkg/auth"
	"github.com/playforge/login/pkg/config"
	"github.com/playforge/login/pkg/logx"
	"github.com/playforge/login/pkg/social/socialhttp"
	"github.com/playforge/login/pkg/token"
	"github.com/redis/go-redis/v9"
)

// Container holds every wired dependency of the login service
type Container struct {
	Config   *config.Config
	DB       *sqlx.DB
	Redis    *redis.Client
	Service  *accountsrv.AccountService
	Handlers *accountapi.Handlers
	Events   *accountinfra.DeletionSubscriber
}

// lazyValidator breaks the construction cycle between the token
// authenticator and the account service that validates for it.
type lazyValidator struct {
	service *accountsrv.AccountService
}

func (v *lazyValidator) Validate(ctx context.Context, value string) (*token.Claims, error) {
	return v.service.Validate(ctx, value)
}

// NewContainer wires the full service graph. Failures here are fatal, the
// process cannot run partially wired.
func NewContainer() *Container {
	cfg := config.Load()

	if cfg.Token.Secret == "" {
		logx.Fatal("TOKEN_SECRET must be set")
	}

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		logx.Fatalf("failed to connect to postgres: %v", err)
	}
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	if err := accountinfra.Bootstrap(context.Background(), db); err != nil {
		logx.Fatalf("failed to bootstrap schema: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		logx.Fatalf("failed to connect to redis: %v", err)
	}

	signer := token.NewSigner(cfg.Token.Secret, cfg.Token.AccessTokenTTL, cfg.Token.ResolveTokenTTL)

	validator := &lazyValidator{}
	registry := auth.NewRegistry(
		auth.NewAnonymousAuthenticator(),
		auth.NewDevAuthenticator(cfg.Auth.DevKeys),
		auth.NewGoogleAuthenticator(cfg.Auth.GoogleClientID, cfg.Auth.GoogleClientSecret),
		auth.NewSteamAuthenticator(cfg.Auth.SteamAPIKey),
		auth.NewTokenAuthenticator(validator),
	)
	logx.Infof("credential types registered: %v", registry.Types())

	service := accountsrv.NewAccountService(accountsrv.Deps{
		DB:          accountinfra.NewSQLRunner(db),
		Credentials: accountinfra.NewPostgresCredentialStore(db),
		Accounts:    accountinfra.NewPostgresAccountStore(db),
		Gamespaces:  accountinfra.NewPostgresGamespaceStore(db),
		Access:      accountinfra.NewPostgresAccessStore(db),
		Tokens:      accountinfra.NewRedisTokenStore(rdb),
		Signer:      signer,
		Registry:    registry,
		Social:      socialhttp.New(cfg.Social.SocialURL, cfg.Social.ProfileURL, cfg.Social.RequestTimeout),
	})
	validator.service = service

	return &Container{
		Config:   cfg,
		DB:       db,
		Redis:    rdb,
		Service:  service,
		Handlers: accountapi.NewHandlers(service),
		Events:   accountinfra.NewDeletionSubscriber(rdb, service),
	}
}

// Cleanup releases held connections
func (c *Container) Cleanup() {
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			logx.Errorf("failed to close postgres connection: %v", err)
		}
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			logx.Errorf("failed to close redis connection: %v", err)
		}
	}
}

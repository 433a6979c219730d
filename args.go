package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"zenthra/api"
)

func ParseArgs() (Args, error) {
	// server config
	pflag.String("server-url", "0.0.0.0:8080", "")
	pflag.String("server-id", "", "instance id, random when empty")
	pflag.String("log-level", "info", "debug, info, warn or error")

	// auth config
	pflag.String("auth-public-key", "", "PEM encoded ed25519 public key")
	pflag.String("auth-public-key-file", "", "path to a PEM encoded ed25519 public key")
	pflag.String("auth-issuer", "", "")
	pflag.String("auth-audience", "", "")

	// db config
	pflag.String("db-user", "", "")
	pflag.String("db-password", "", "")
	pflag.String("db-host", "", "")
	pflag.Int("db-port", 5432, "")
	pflag.String("db-database", "", "")
	pflag.String("db-schema", "public", "")
	pflag.Bool("db-auto-migrate", false, "")

	// redis config
	pflag.String("redis-addr", "", "")
	pflag.String("redis-password", "", "")
	pflag.Int("redis-db", 15, "")
	pflag.String("redis-key-prefix", "zenthra:", "")
	pflag.String("redis-consumer-group", "projector", "")

	// redis stream keys
	pflag.String("redis-stream-key-for-events", "ledger:events", "")
	pflag.String("redis-stream-key-for-sse", "sse", "")

	// nats config
	pflag.String("nats-url", "", "")
	pflag.String("nats-subject-prefix", "zenthra.auctions", "")

	// ledger config
	pflag.Duration("ledger-lock-timeout", 5*time.Second, "")
	pflag.Uint("ledger-retry-tries", 5, "")
	pflag.Duration("ledger-retry-interval", 20*time.Millisecond, "")

	// projector config
	pflag.Bool("projector-rebuild", false, "reset the projection and replay the event log on start")
	pflag.Int("projector-defer-window", 256, "")
	pflag.Uint("projector-retry-tries", 5, "")
	pflag.Duration("projector-retry-interval", 50*time.Millisecond, "")
	pflag.Duration("projector-max-retry-interval", 5*time.Second, "upper bound between retries while the database is unavailable")

	// sse config
	pflag.Int("sse-buffer-size", 16, "")
	pflag.Duration("sse-keep-alive-interval", 30*time.Second, "")

	// bind pflag to viper
	pflag.Parse()
	if err := viper.BindPFlags(pflag.CommandLine); err != nil {
		return Args{}, fmt.Errorf("fail to bind flags, err=%w", err)
	}
	viper.AutomaticEnv()
	viper.SetEnvPrefix("ZENTHRA")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(viper.GetString("log-level"))); err != nil {
		return Args{}, fmt.Errorf("invalid log level, err=%w", err)
	}

	publicKeyPEM := []byte(viper.GetString("auth-public-key"))
	if path := viper.GetString("auth-public-key-file"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Args{}, fmt.Errorf("fail to read public key file, err=%w", err)
		}
		publicKeyPEM = data
	}
	var publicKey []byte
	if len(publicKeyPEM) > 0 {
		key, err := api.ParsePublicKey(publicKeyPEM)
		if err != nil {
			return Args{}, err
		}
		publicKey = key
	}

	serverID := viper.GetString("server-id")
	if serverID == "" {
		serverID = uuid.NewString()
	}

	// initial arguments
	return Args{
		ServerURL: viper.GetString("server-url"),
		LogLevel:  logLevel,
		ServerConfig: api.ServerConfig{
			ID: serverID,
			Auth: api.AuthConfig{
				PublicKey: publicKey,
				Issuer:    viper.GetString("auth-issuer"),
				Audience:  viper.GetString("auth-audience"),
			},
			DB: api.DBConfig{
				User:        viper.GetString("db-user"),
				Password:    viper.GetString("db-password"),
				Host:        viper.GetString("db-host"),
				Port:        viper.GetInt("db-port"),
				Database:    viper.GetString("db-database"),
				Schema:      viper.GetString("db-schema"),
				AutoMigrate: viper.GetBool("db-auto-migrate"),
			},
			Redis: api.RedisConfig{
				Addr:          viper.GetString("redis-addr"),
				Password:      viper.GetString("redis-password"),
				DB:            viper.GetInt("redis-db"),
				KeyPrefix:     viper.GetString("redis-key-prefix"),
				ConsumerGroup: viper.GetString("redis-consumer-group"),
				StreamKeys: api.RedisStreamKeys{
					Events: viper.GetString("redis-stream-key-for-events"),
					SSE:    viper.GetString("redis-stream-key-for-sse"),
				},
			},
			NATS: api.NATSConfig{
				URL:           viper.GetString("nats-url"),
				SubjectPrefix: viper.GetString("nats-subject-prefix"),
			},
			Ledger: api.LedgerConfig{
				LockTimeout:   viper.GetDuration("ledger-lock-timeout"),
				RetryTries:    viper.GetUint("ledger-retry-tries"),
				RetryInterval: viper.GetDuration("ledger-retry-interval"),
			},
			Projector: api.ProjectorConfig{
				Rebuild:          viper.GetBool("projector-rebuild"),
				DeferWindow:      viper.GetInt("projector-defer-window"),
				RetryTries:       viper.GetUint("projector-retry-tries"),
				RetryInterval:    viper.GetDuration("projector-retry-interval"),
				MaxRetryInterval: viper.GetDuration("projector-max-retry-interval"),
			},
			SSE: api.SSEConfig{
				BufferSize:        viper.GetInt("sse-buffer-size"),
				KeepAliveInterval: viper.GetDuration("sse-keep-alive-interval"),
			},
		},
	}, nil
}

type Args struct {
	ServerURL    string
	LogLevel     slog.Level
	ServerConfig api.ServerConfig
}

func (args Args) Validate() error {
	switch {
	case args.ServerURL == "":
		return errors.New("missing server-url")
	case len(args.ServerConfig.Auth.PublicKey) == 0:
		return errors.New("missing auth-public-key or auth-public-key-file")
	case args.ServerConfig.DB.Host == "" || args.ServerConfig.DB.Database == "":
		return errors.New("missing db-host or db-database")
	case args.ServerConfig.Redis.Addr == "":
		return errors.New("missing redis-addr")
	case args.ServerConfig.Redis.ConsumerGroup == "":
		return errors.New("missing redis-consumer-group")
	}
	return nil
}

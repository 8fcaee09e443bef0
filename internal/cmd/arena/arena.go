// Package arena parses arena command flags and composes the service
// entrypoint.
package arena

import (
	"context"
	"flag"
	"fmt"
	"time"

	entrypoint "github.com/louisbranch/stakepot/internal/platform/cmd"
	server "github.com/louisbranch/stakepot/internal/services/arena/app"
	"github.com/louisbranch/stakepot/internal/services/arena/auth"
	"github.com/louisbranch/stakepot/internal/services/arena/engine"
)

// Config holds arena command configuration. Policy knobs seed the
// engine at boot; fee and match limit remain admin-settable at runtime.
type Config struct {
	HTTPAddr            string        `env:"STAKEPOT_ARENA_HTTP_ADDR"       envDefault:":8080"`
	DBPath              string        `env:"STAKEPOT_ARENA_DB_PATH"         envDefault:"arena.db"`
	NATSURL             string        `env:"STAKEPOT_ARENA_NATS_URL"`
	Tokens              []string      `env:"STAKEPOT_ARENA_TOKENS"`
	FeePercent          int           `env:"STAKEPOT_ARENA_FEE_PERCENT"     envDefault:"5"`
	MinEntryFee         int64         `env:"STAKEPOT_ARENA_MIN_ENTRY_FEE"   envDefault:"1"`
	MaxMatchesPerPlayer int           `env:"STAKEPOT_ARENA_MAX_MATCHES"     envDefault:"10"`
	JoinWindow          time.Duration `env:"STAKEPOT_ARENA_JOIN_WINDOW"     envDefault:"10m"`
	QuestionWindow      time.Duration `env:"STAKEPOT_ARENA_QUESTION_WINDOW" envDefault:"30s"`
	OptionCount         int           `env:"STAKEPOT_ARENA_OPTION_COUNT"    envDefault:"4"`
	AllowedOrigins      []string      `env:"STAKEPOT_ARENA_ALLOWED_ORIGINS"`
	RequestsPerMinute   int           `env:"STAKEPOT_ARENA_RATE_LIMIT"      envDefault:"120"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "arena HTTP listen address")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "journal SQLite path")
	fs.StringVar(&cfg.NATSURL, "nats-url", cfg.NATSURL, "NATS server URL for the event sink")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run builds the arena app and serves it until the context ends.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceArena, func(context.Context) error {
		grants, err := auth.LoadConfigFromEnv(time.Now)
		if err != nil {
			return fmt.Errorf("load grant config: %w", err)
		}
		if err := server.Run(ctx, server.Config{
			HTTPAddr: cfg.HTTPAddr,
			DBPath:   cfg.DBPath,
			NATSURL:  cfg.NATSURL,
			Grants:   grants,
			Settings: engine.Settings{
				FeePercent:          cfg.FeePercent,
				MinEntryFee:         cfg.MinEntryFee,
				MaxMatchesPerPlayer: cfg.MaxMatchesPerPlayer,
				JoinWindow:          cfg.JoinWindow,
				QuestionWindow:      cfg.QuestionWindow,
				OptionCount:         cfg.OptionCount,
				Tokens:              cfg.Tokens,
			},
			AllowedOrigins:    cfg.AllowedOrigins,
			RequestsPerMinute: cfg.RequestsPerMinute,
		}); err != nil {
			return fmt.Errorf("serve arena: %w", err)
		}
		return nil
	})
}

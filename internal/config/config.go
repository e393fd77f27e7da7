package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"traitors-be/internal/game"
)

type AppConfig struct {
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	LogLevel  string `mapstructure:"log_level"`
	StaticDir string `mapstructure:"static_dir"`

	Relay   RelayConfig   `mapstructure:"relay"`
	Session SessionConfig `mapstructure:"session"`
	Game    game.Settings `mapstructure:"game"`
}

type RelayConfig struct {
	MaxPlayers      int           `mapstructure:"max_players"`
	RoomIdleTimeout time.Duration `mapstructure:"room_idle_timeout"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	OutboxSize      int           `mapstructure:"outbox_size"`
	// inbound frames per second per connection
	RateLimit float64 `mapstructure:"rate_limit"`
	RateBurst int     `mapstructure:"rate_burst"`
}

type SessionConfig struct {
	TickInterval      time.Duration `mapstructure:"tick_interval"`
	TimerSyncInterval time.Duration `mapstructure:"timer_sync_interval"`
	BotThinkTime      time.Duration `mapstructure:"bot_think_time"`
	MaxBots           int           `mapstructure:"max_bots"`
}

func InitConfig() *AppConfig {
	// .env is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(fmt.Errorf("failed to load .env: %w", err))
	}

	v := viper.New()

	v.SetConfigName("app_config")
	v.SetConfigType("json")
	v.AddConfigPath(".")

	setDefaults(v)

	v.SetEnvPrefix("TRAITORS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			panic(fmt.Errorf("failed to load config: %w", err))
		}
	}

	var config AppConfig

	if err := v.Unmarshal(&config); err != nil {
		panic(fmt.Errorf("failed to parse config: %w", err))
	}

	return &config
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("port", 8080)
	v.SetDefault("log_level", "info")
	v.SetDefault("static_dir", "")

	v.SetDefault("relay.max_players", 16)
	v.SetDefault("relay.room_idle_timeout", "10m")
	v.SetDefault("relay.cleanup_interval", "1m")
	v.SetDefault("relay.outbox_size", 64)
	v.SetDefault("relay.rate_limit", 20)
	v.SetDefault("relay.rate_burst", 40)

	v.SetDefault("session.tick_interval", "1s")
	v.SetDefault("session.timer_sync_interval", "5s")
	v.SetDefault("session.bot_think_time", "2s")
	v.SetDefault("session.max_bots", 8)

	def := game.DefaultSettings()
	v.SetDefault("game.traitor_count", def.TraitorCount)
	v.SetDefault("game.special_role_count", def.SpecialRoleCount)
	v.SetDefault("game.card_draw_count", def.CardDrawCount)
	v.SetDefault("game.survivor_shields", def.SurvivorShields)
	v.SetDefault("game.role_reveal_duration", def.RoleRevealDuration)
	v.SetDefault("game.night_duration", def.NightDuration)
	v.SetDefault("game.night_results_duration", def.NightResultsDuration)
	v.SetDefault("game.death_announcement_duration", def.DeathAnnouncementDuration)
	v.SetDefault("game.card_draw_duration", def.CardDrawDuration)
	v.SetDefault("game.day_duration", def.DayDuration)
	v.SetDefault("game.vote_duration", def.VoteDuration)
	v.SetDefault("game.resolve_duration", def.ResolveDuration)
}

package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/matt-steen/taskboard/pkg/api"
	"github.com/matt-steen/taskboard/pkg/config"
	"github.com/matt-steen/taskboard/pkg/controller"
	"github.com/matt-steen/taskboard/pkg/realtime"
	"github.com/matt-steen/taskboard/pkg/session"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	filePerms = 0o600
	dirPerms  = 0o700
)

func main() {
	v := config.New()

	rootCmd := &cobra.Command{
		Use:           "taskboard",
		Short:         "Terminal client for a collaborative kanban board",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), v, cmd)
		},
	}

	rootCmd.PersistentFlags().String("config", "", "config file (default "+config.DefaultPath()+")")
	rootCmd.PersistentFlags().String("api", "", "base URL of the board API")
	rootCmd.PersistentFlags().String("transport", "", "realtime transport (websocket, redis)")
	rootCmd.PersistentFlags().Bool("debug", false, "write debug output to the log file")

	bindFlag(v, rootCmd, "api.base", "api")
	bindFlag(v, rootCmd, "realtime.transport", "transport")

	rootCmd.AddCommand(logoutCmd(v))

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func bindFlag(v *viper.Viper, cmd *cobra.Command, key, flag string) {
	if err := v.BindPFlag(key, cmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

func logoutCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored credential",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(v, cmd)
			if err != nil {
				return err
			}

			store, err := session.Open(cmd.Context(), cfg.Session.Path)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Clear(cmd.Context()); err != nil {
				return err
			}

			fmt.Println("logged out")

			return nil
		},
	}
}

func loadConfig(v *viper.Viper, cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("error reading --config: %w", err)
	}

	cfg, err := config.Load(v, path)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Session.Path), dirPerms); err != nil {
		return nil, fmt.Errorf("error creating session dir: %w", err)
	}

	return cfg, nil
}

// setupLogging sends the global logger to the log file; the terminal belongs to the ui.
func setupLogging(cfg *config.Config, debug bool) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.Log.File), dirPerms); err != nil {
		return nil, fmt.Errorf("error creating log dir: %w", err)
	}

	logFile, err := os.OpenFile(cfg.Log.File, os.O_RDWR|os.O_CREATE|os.O_APPEND, fs.FileMode(filePerms))
	if err != nil {
		return nil, fmt.Errorf("error opening log file: %w", err)
	}

	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	if debug {
		level = zerolog.DebugLevel
	}

	zerolog.SetGlobalLevel(level)

	log.Logger = log.With().Caller().Logger().Output(zerolog.ConsoleWriter{
		Out: logFile, TimeFormat: "2006-01-02_15:04:05",
	})

	return logFile, nil
}

// subscriberFactory returns a function creating one subscriber per opened board.
func subscriberFactory(cfg *config.Config, store *session.Store) (func() realtime.Subscriber, func() error) {
	if cfg.Realtime.Transport == config.TransportRedis {
		rc := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})

		return func() realtime.Subscriber {
			return realtime.NewRedis(rc, cfg.Redis.ChannelPrefix)
		}, rc.Close
	}

	return func() realtime.Subscriber {
		return realtime.NewWebSocket(cfg.Realtime.URL, store)
	}, func() error { return nil }
}

func run(ctx context.Context, v *viper.Viper, cmd *cobra.Command) error {
	cfg, err := loadConfig(v, cmd)
	if err != nil {
		return err
	}

	debug, _ := cmd.Flags().GetBool("debug")

	logFile, err := setupLogging(cfg, debug)
	if err != nil {
		return err
	}
	defer logFile.Close()

	log.Info().
		Str("api", cfg.API.Base).
		Str("transport", cfg.Realtime.Transport).
		Msg("starting application...")

	store, err := session.Open(ctx, cfg.Session.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	client := api.New(cfg.API.Base, store, api.WithTimeout(cfg.API.Timeout))

	subscribe, closeTransport := subscriberFactory(cfg, store)
	defer func() {
		if err := closeTransport(); err != nil {
			log.Warn().Err(err).Msg("error closing realtime transport")
		}
	}()

	ctrl, err := controller.NewController(ctx, session.NewManager(store, client), client, subscribe)
	if err != nil {
		return err
	}

	if err := ctrl.Go(); err != nil {
		return err
	}

	log.Info().Msg("application stopped")

	return nil
}

package cmd

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"sigs.k8s.io/external-dns/endpoint"

	"github.com/netguru/dyndns-updater/internal/config"
	"github.com/netguru/dyndns-updater/internal/httpclient"
	"github.com/netguru/dyndns-updater/internal/metrics"
	"github.com/netguru/dyndns-updater/internal/updater"
	"github.com/netguru/dyndns-updater/pkg/api"
)

// version is set at build time with -ldflags "-X .../cmd.version=..."
var version = "dev"

var (
	configPath    string
	daemon        bool
	dryRun        bool
	verbose       bool
	logLevel      string
	logFormat     string
	listenAddress string
	workers       int
	domainFilter  []string
)

var rootCmd = &cobra.Command{
	Use:           "dyndns-updater",
	Short:         "Keep DNS A records pointed at this machine's public IP",
	Long:          "Discovers the public IP address and pushes it to every configured DNS record through the provider's HTTP update URL, once or continuously",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := getLogger()
		defer func() {
			if err := logger.Sync(); err != nil {
				fmt.Printf("Failed to sync logger: %v\n", err)
			}
		}()

		cfg, err := config.Load(configPath)
		if err != nil {
			logger.Error("Failed to load settings", zap.String("path", configPath), zap.Error(err))
			return err
		}
		cfg.Daemon = daemon
		cfg.DryRun = dryRun
		cfg.Workers = workers
		cfg.DomainFilter = endpoint.DomainFilter{Filters: domainFilter}

		logger.Debug("Settings loaded",
			zap.String("path", configPath),
			zap.Int("domains", len(cfg.Domains)),
			zap.Bool("daemon", cfg.Daemon),
			zap.Bool("dry_run", cfg.DryRun),
			zap.Duration("delay", cfg.Delay),
			zap.Duration("timeout", cfg.Timeout))

		clientConfig := httpclient.DefaultConfig()
		clientConfig.Timeout = cfg.Timeout
		clientConfig.AcceptAllCerts = cfg.AcceptAllCerts
		if cfg.AcceptAllCerts {
			logger.Warn("TLS certificate verification is disabled")
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		u := updater.NewUpdater(
			logger.With(zap.String("component", "updater")),
			cfg,
			updater.WithHTTPClient(httpclient.New(clientConfig)),
			updater.WithReporters(metrics.NewRecorder()),
		)

		if cfg.Daemon && listenAddress != "" {
			status := updater.NewStatusRecorder(u)
			u.AddReporter(status)

			app := api.New(logger.With(zap.String("component", "api")), status)
			logger.Info("Starting status server", zap.String("address", listenAddress))
			go func() {
				if err := app.Listen(listenAddress); err != nil {
					logger.Error("Status server stopped", zap.Error(err))
				}
			}()
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()
				_ = app.Shutdown(shutdownCtx)
			}()
		}

		return u.Run(ctx)
	},
}

// getLogger creates a new logger with the configured log level and format
func getLogger() *zap.Logger {
	encoding := "json"
	levelEncoder := zapcore.LowercaseLevelEncoder
	if strings.ToLower(logFormat) == "console" {
		encoding = "console"
		levelEncoder = zapcore.CapitalColorLevelEncoder
	}

	cfg := zap.Config{
		Level:             zap.NewAtomicLevelAt(getZapLogLevel()),
		Development:       false,
		DisableCaller:     false,
		DisableStacktrace: true,
		Encoding:          encoding,
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "time",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller",
			FunctionKey:    zapcore.OmitKey,
			MessageKey:     "msg",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    levelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.SecondsDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, err := cfg.Build()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	logger.Debug("Logger initialized", zap.String("level", getZapLogLevel().String()))
	return logger
}

// getZapLogLevel converts the string log level to a zap log level.
// --verbose always means debug.
func getZapLogLevel() zapcore.Level {
	if verbose {
		return zapcore.DebugLevel
	}
	switch strings.ToLower(logLevel) {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Execute executes the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Define command line flags
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath(), "Path to the JSON settings file")
	rootCmd.PersistentFlags().BoolVarP(&daemon, "daemon", "d", false, "Constantly try to update the IP")
	rootCmd.PersistentFlags().BoolVarP(&dryRun, "dryrun", "n", false, "Don't send any update, just output what would have been sent")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Be verbose (same as --log-level=debug)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "The log level to use (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "json", "The log format to use (json, console)")
	rootCmd.PersistentFlags().StringVar(&listenAddress, "listen-address", "", "Address of the status server in daemon mode, disabled when empty")
	rootCmd.PersistentFlags().IntVar(&workers, "workers", updater.DefaultWorkers, "Number of domains updated in parallel")
	rootCmd.PersistentFlags().StringSliceVar(&domainFilter, "domain-filter", []string{}, "Only update configured domains matching these filters")
}

func initConfig() {
	// Load environment variables from .env file if it exists
	if err := godotenv.Load(); err == nil {
		log.Printf("Loaded configuration from .env file")
	}

	// Set up environment variable handling
	viper.SetEnvPrefix(config.EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	// Bind viper environment variables to flags
	rootCmd.PersistentFlags().VisitAll(func(f *pflag.Flag) {
		if !f.Changed && viper.IsSet(f.Name) {
			val := viper.Get(f.Name)
			if err := rootCmd.PersistentFlags().Set(f.Name, fmt.Sprint(val)); err != nil {
				log.Printf("Warning: Failed to set flag %s from environment variable: %v", f.Name, err)
			}
		}
	})
}

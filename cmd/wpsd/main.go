package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/delta10/wpsd/internal/auth"
	"github.com/delta10/wpsd/internal/codec"
	"github.com/delta10/wpsd/internal/config"
	"github.com/delta10/wpsd/internal/fetch"
	"github.com/delta10/wpsd/internal/jobs"
	"github.com/delta10/wpsd/internal/logs"
	"github.com/delta10/wpsd/internal/processes"
	"github.com/delta10/wpsd/internal/server"
	"github.com/delta10/wpsd/internal/wps"
)

var rootCmd = &cobra.Command{
	Use:   "wpsd",
	Short: "OGC Web Processing Service 1.0.0 server",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		envfile := viper.GetString("env-file")
		if err := godotenv.Load(envfile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", envfile, err)
		}
		return nil
	},
	SilenceUsage: true,
}

func main() {
	cobra.OnInitialize(initConfig)
	addPersistentFlags()
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(processesCmd())
	rootCmd.AddCommand(validateCmd())
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("WPSD")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().StringP("config", "c", "config.yaml", "configuration file")
	rootCmd.PersistentFlags().String("env-file", ".env", "environment file loaded before the configuration")
	rootCmd.PersistentFlags().String("log-format", "text", "log format: text or json")
	rootCmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn or error")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("env-file", rootCmd.PersistentFlags().Lookup("env-file"))
	_ = viper.BindPFlag("log-format", rootCmd.PersistentFlags().Lookup("log-format"))
	_ = viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func newLogger() *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(viper.GetString("log-level"))); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if viper.GetString("log-format") == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.NewConfig(viper.GetString("config"))
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newRegistry(cfg *config.Config) (*processes.Registry, error) {
	ids := make([]string, 0, len(cfg.Processes))
	for _, p := range cfg.Processes {
		ids = append(ids, p.Identifier)
	}
	ps, err := processes.Select(ids)
	if err != nil {
		return nil, err
	}
	return processes.NewRegistry(ps...)
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the WPS server",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			slog.SetDefault(logger)

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			registry, err := newRegistry(cfg)
			if err != nil {
				return err
			}

			store, err := jobs.OpenSQLStore(cfg.StoragePath)
			if err != nil {
				return fmt.Errorf("opening storage: %w", err)
			}
			defer store.Close()

			fetcher, err := fetch.NewClient(cfg.Backends, time.Duration(cfg.Limits.ReferenceTimeout)*time.Second, cfg.Limits.MaxReferenceBytes)
			if err != nil {
				return err
			}

			var audit logs.Auditor = logs.Discard{}
			if cfg.LogBackend != "" {
				audit = logs.NewLogBackend(cfg.LogBackends[cfg.LogBackend])
			}

			var authenticator *auth.Authenticator
			if cfg.JwksURL != "" {
				authenticator, err = auth.NewAuthenticator(cfg.JwksURL)
				if err != nil {
					return err
				}
				defer authenticator.Close()
			}

			srv, err := server.New(cfg, server.Deps{
				Registry: registry,
				Store:    store,
				Fetcher:  fetcher,
				Audit:    audit,
				Auth:     authenticator,
				Logger:   logger,
			})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.Run(ctx)
		},
	}
}

func processesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "processes",
		Short: "List the processes the configuration enables",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			registry, err := newRegistry(cfg)
			if err != nil {
				return err
			}

			tw := table.NewWriter()
			tw.SetOutputMirror(cmd.OutOrStdout())
			tw.AppendHeader(table.Row{"Identifier", "Title", "Version", "Inputs", "Outputs", "Status", "Store", "Groups"})
			for _, p := range registry.Catalog().Processes() {
				var inputs, outputs []string
				for _, in := range p.Inputs() {
					inputs = append(inputs, fmt.Sprintf("%s (%s, %d..%d)", in.Identifier, in.Data().Kind(), in.MinOccurs(), in.MaxOccurs()))
				}
				for _, out := range p.Outputs() {
					outputs = append(outputs, fmt.Sprintf("%s (%s)", out.Identifier, out.Data().Kind()))
				}
				groups := ""
				if pc, ok := cfg.Process(p.Identifier); ok {
					groups = strings.Join(pc.AllowedGroups, ",")
				}
				tw.AppendRow(table.Row{
					p.Identifier, p.Title, p.ProcessVersion,
					strings.Join(inputs, "\n"), strings.Join(outputs, "\n"),
					p.StatusSupported, p.StoreSupported, groups,
				})
			}
			tw.Render()
			return nil
		},
	}
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [request.xml...]",
		Short: "Check the configuration and, optionally, WPS request documents",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			ok := color.New(color.FgGreen).SprintFunc()
			bad := color.New(color.FgRed).SprintFunc()

			cfg, err := loadConfig()
			if err != nil {
				fmt.Fprintf(out, "%s %s\n", bad("FAIL"), viper.GetString("config"))
				for _, line := range strings.Split(err.Error(), "\n") {
					fmt.Fprintf(out, "     %s\n", line)
				}
				return errors.New("invalid configuration")
			}
			fmt.Fprintf(out, "%s %s\n", ok("OK  "), viper.GetString("config"))

			registry, err := newRegistry(cfg)
			if err != nil {
				return err
			}

			failed := 0
			for _, path := range args {
				if err := validateRequest(path, registry); err != nil {
					failed++
					fmt.Fprintf(out, "%s %s: %s %v\n", bad("FAIL"), path, wps.ExceptionCode(err), err)
					continue
				}
				fmt.Fprintf(out, "%s %s\n", ok("OK  "), path)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d requests are invalid", failed, len(args))
			}
			return nil
		},
	}
}

func validateRequest(path string, registry *processes.Registry) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	req, err := codec.ParseRequest(b)
	if err != nil {
		return err
	}
	switch r := req.(type) {
	case wps.GetCapabilities:
		return r.Validate()
	case wps.DescribeProcess:
		if err := r.Validate(); err != nil {
			return err
		}
		_, err := registry.Catalog().Describe(r.Identifiers)
		return err
	case wps.Execute:
		p, err := registry.Lookup(r.Identifier)
		if err != nil {
			return err
		}
		return r.Validate(p)
	default:
		return fmt.Errorf("unexpected request %T", req)
	}
}

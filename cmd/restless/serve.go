package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/restless-go/restless/internal/web"
)

const shutdownTimeout = 10 * time.Second

func init() {
	serveCmd.Flags().String("addr", ":8080", "Listen address")
	serveCmd.Flags().String("base-url", "http://localhost:8080", "Base URL used when building resource links")
	serveCmd.Flags().Bool("dev", false, "Use development logging")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the demo dataset as a JSON:API endpoint",
	Long: `Start a read-only JSON:API server over a small in-memory dataset.
Configuration is read from flags, RESTLESS_* environment variables, and an
optional restless.yaml in the working directory, in that order of precedence.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		v := viper.New()
		v.SetDefault("addr", ":8080")
		v.SetDefault("base_url", "http://localhost:8080")
		v.SetDefault("dev", false)
		if err := v.BindPFlag("addr", cmd.Flags().Lookup("addr")); err != nil {
			return err
		}
		if err := v.BindPFlag("base_url", cmd.Flags().Lookup("base-url")); err != nil {
			return err
		}
		if err := v.BindPFlag("dev", cmd.Flags().Lookup("dev")); err != nil {
			return err
		}
		v.SetEnvPrefix("RESTLESS")
		v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
		v.AutomaticEnv()
		v.SetConfigName("restless")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
				return fmt.Errorf("failed to read config: %w", err)
			}
		}

		logger, err := buildLogger(v.GetBool("dev"))
		if err != nil {
			return fmt.Errorf("failed to build logger: %w", err)
		}
		defer logger.Sync()

		api, collections, err := buildDemoAPI(v.GetString("base_url"), logger)
		if err != nil {
			return fmt.Errorf("failed to build demo API: %w", err)
		}

		router := chi.NewRouter()
		router.Mount("/api", api.Routes())

		config := web.DefaultServerConfig()
		config.Address = v.GetString("addr")
		server, err := web.NewServer(config, router, logger)
		if err != nil {
			return err
		}

		fmt.Printf("Serving %s on %s\n",
			color.CyanString(strings.Join(collections, ", ")),
			color.GreenString("%s/api", v.GetString("base_url")))

		// Handle Ctrl+C gracefully
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		go func() {
			<-sigChan
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := server.Shutdown(ctx); err != nil {
				logger.Error("shutdown failed", zap.Error(err))
			}
		}()

		return server.Start()
	},
}

func buildLogger(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

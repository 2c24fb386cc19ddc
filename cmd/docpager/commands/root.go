// Package commands implements the docpager command line tool.
package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/Alp4ka/docpager/internal/config"
	"github.com/Alp4ka/docpager/internal/logger"
	"github.com/Alp4ka/docpager/mongostore"
)

// app holds what the subcommands share once the configuration is loaded.
type app struct {
	v      *viper.Viper
	cfg    *config.Config
	logger *zap.Logger
}

// NewRootCommand creates the docpager command tree.
func NewRootCommand() *cobra.Command {
	a := &app{v: viper.New()}
	var configFile string

	cmd := &cobra.Command{
		Use:          "docpager",
		Short:        "Browse MongoDB collections page by page",
		SilenceUsage: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return a.load(configFile)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&configFile, "config", "c", "", "config file path")
	flags.String("uri", "", "MongoDB connection string (mongo.uri)")
	flags.String("database", "", "database name (mongo.database)")
	flags.String("log-level", "", "log level: debug, info, warn or error (log.level)")
	_ = a.v.BindPFlag("mongo.uri", flags.Lookup("uri"))
	_ = a.v.BindPFlag("mongo.database", flags.Lookup("database"))
	_ = a.v.BindPFlag("log.level", flags.Lookup("log-level"))

	cmd.AddCommand(
		newListCommand(a),
		newIndexesCommand(a),
	)

	return cmd
}

func (a *app) load(configFile string) error {
	if configFile != "" {
		a.v.SetConfigFile(configFile)
		if err := a.v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	cfg, err := config.LoadFrom(a.v)
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	a.cfg = cfg
	a.logger = log

	return nil
}

func (a *app) connect(ctx context.Context) (*mongostore.Client, error) {
	return mongostore.Connect(ctx, a.cfg.Mongo, a.logger)
}

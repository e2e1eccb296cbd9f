package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ochairo/filedrecipes/internal/config"
	"github.com/ochairo/filedrecipes/internal/domain-adapters/gateways"
	orchestrators "github.com/ochairo/filedrecipes/internal/domain-orchestrators"
	"github.com/ochairo/filedrecipes/internal/domain/interfaces"
	"github.com/ochairo/filedrecipes/internal/external-adapters/terminal"
	"github.com/ochairo/filedrecipes/internal/external-adapters/textfile"
	"github.com/ochairo/filedrecipes/internal/external-adapters/yaml"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// app holds everything a subcommand needs, built once per invocation
type app struct {
	v      *viper.Viper
	cfg    *config.Config
	logger interfaces.Logger
	repo   *textfile.RecipeRepository
	book   *orchestrators.RecipeBookOrchestrator
}

func newRootCmd() *cobra.Command {
	a := &app{v: config.New()}
	var (
		configFile string
		noPause    bool
	)

	root := &cobra.Command{
		Use:           "filedrecipes",
		Short:         "Manage a recipe book stored in a plain text file",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if noPause {
				a.v.Set(config.KeyViewPause, false)
			}
			return a.setup(cmd, configFile)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "Config file (default: ./filedrecipes.yml, then ~/.config/filedrecipes/config.yml)")
	flags.String("file", "", "Recipe file (default: recipes.txt)")
	flags.String("log-level", "", "Log level: debug, info, warn, error")
	flags.BoolVar(&noPause, "no-pause", false, "Do not wait for Enter after showing recipes")

	// Bind errors only occur for nil flags
	_ = a.v.BindPFlag(config.KeyFile, flags.Lookup("file"))
	_ = a.v.BindPFlag(config.KeyLogLevel, flags.Lookup("log-level"))

	root.AddCommand(
		newListCmd(a),
		newShowCmd(a),
		newDeleteCmd(a),
		newAddCmd(a),
		newValidateCmd(a),
		newExportCmd(a),
		newImportCmd(a),
		newSignCmd(a),
		newVerifyCmd(a),
		newWatchCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, configFile string) error {
	cfg, err := config.Load(a.v, configFile)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	a.cfg = cfg

	level, err := interfaces.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	a.logger = interfaces.NewSlogLogger(cmd.ErrOrStderr(), level)
	if cfg.Source != "" {
		a.logger.Debug("Using config file", interfaces.F("path", cfg.Source))
	}

	repo, err := textfile.NewRecipeRepository(cfg.File, textfile.WithLogger(a.logger))
	if err != nil {
		return err
	}
	a.repo = repo

	signatures, err := gateways.NewSignatureGateway(gateways.SignatureConfig{
		PublicKeyPath:  cfg.Signing.PublicKey,
		PrivateKeyPath: cfg.Signing.PrivateKey,
		Passphrase:     cfg.Signing.Passphrase,
	}, a.logger)
	if err != nil {
		return err
	}

	view := terminal.NewRecipeView(cmd.OutOrStdout(), cmd.InOrStdin(), terminal.WithPause(cfg.View.Pause))

	a.book = orchestrators.NewRecipeBookOrchestrator(
		repo,
		signatures,
		view,
		yaml.NewRecipeExporter(),
		orchestrators.RecipeBookConfig{
			RequireSignature: cfg.Signing.Require,
			SignaturePath:    repo.Path() + ".asc",
		},
		a.logger,
	)
	return nil
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/vietdv277/cirrus/internal/aws"
	"github.com/vietdv277/cirrus/internal/config"
	"github.com/vietdv277/cirrus/internal/credentials"
	"github.com/vietdv277/cirrus/internal/logging"
	"github.com/vietdv277/cirrus/internal/regions"
	"github.com/vietdv277/cirrus/internal/session"
	"github.com/vietdv277/cirrus/internal/ui"
	"github.com/vietdv277/cirrus/pkg/provider"
)

var rootCmd = &cobra.Command{
	Use:   "cirrus",
	Short: "Cirrus - interactive EC2 instance control across regions",
	Long: `Cirrus lists the EC2 instances of your configured regions and lets you
start, stop, reboot or refresh them while following their state.

Interactive mode:
  cirrus                         # Pick a region, an instance, then an operation

Commands:
  cirrus ls                      # Table of instances in the configured regions
  cirrus stop i-0abc -r us-east-1
  cirrus regions configure       # Choose which regions to display
  cirrus profile                 # Choose the AWS profile
  cirrus status                  # Show credentials and caller identity`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: initLogging,
	RunE:              runSession,
}

// Execute runs the root command.
func Execute() {
	defer logging.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, ui.ErrorStyle.Render(provider.ErrorMessage(err)))
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().String("config", "", "config file (default ~/.cirrus/config.yaml)")
	rootCmd.PersistentFlags().String("config-profile", "", "config profile holding regions and credentials (default: active profile)")
	rootCmd.PersistentFlags().StringP("profile", "p", "", "AWS profile to use")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	// Bind flags to viper
	for _, name := range []string{"config", "config-profile", "profile", "debug"} {
		_ = viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name))
	}
}

func initConfig() {
	// Read from environment variables: CIRRUS_CONFIG, CIRRUS_REGIONS, ...
	viper.SetEnvPrefix("CIRRUS")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func initLogging(cmd *cobra.Command, args []string) error {
	return logging.Init(viper.GetBool("debug"))
}

// configPath returns the store file location
func configPath() string {
	if path := viper.GetString("config"); path != "" {
		return path
	}
	return config.GetConfigPath()
}

// env bundles what the commands share: the loaded store and, once
// connected, the resolved credentials applied to an AWS client.
type env struct {
	path          string
	cfg           *config.Config
	configProfile string
	prompter      provider.Prompter
	client        *aws.Client
	logger        *zap.Logger
}

// loadEnv reads the config store without touching AWS
func loadEnv() (*env, error) {
	path := configPath()

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	return &env{
		path:          path,
		cfg:           cfg,
		configProfile: cfg.ResolveProfileName(viper.GetString("config-profile")),
		logger:        logging.Logger(),
	}, nil
}

// newEnv loads the store, resolves credentials and builds the AWS client
func newEnv(ctx context.Context, prompter provider.Prompter) (*env, error) {
	e, err := loadEnv()
	if err != nil {
		return nil, err
	}
	e.prompter = prompter

	resolver := credentials.NewResolver(
		credentials.WithPrompter(prompter),
		credentials.WithLogger(e.logger),
	)
	creds := resolver.Resolve(e.credentialSettings())

	e.client, err = aws.NewClient(ctx,
		aws.WithCredentials(creds),
		aws.WithLogger(e.logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS client: %w", err)
	}

	return e, nil
}

// credentialSettings returns the credential fields of the active config
// profile. The AWS profile comes from --profile, then the stored profile,
// then AWS_PROFILE.
func (e *env) credentialSettings() credentials.Settings {
	settings := credentials.Settings{}
	if p := e.cfg.Profile(e.configProfile); p != nil {
		settings = credentials.Settings{
			AccessKeyID:     p.AccessKeyID,
			SecretAccessKey: p.SecretAccessKey,
			SessionToken:    p.SessionToken,
			Profile:         p.AWSProfile,
		}
	}
	if flagProfile := viper.GetString("profile"); flagProfile != "" {
		settings.Profile = flagProfile
	}
	if settings.Profile == "" {
		settings.Profile = os.Getenv("AWS_PROFILE")
	}
	return settings
}

// regionStore returns the region store of the active config profile
func (e *env) regionStore() *regions.Store {
	opts := []regions.StoreOption{regions.WithLogger(e.logger)}
	if override := viper.GetString("regions"); override != "" {
		opts = append(opts, regions.WithDefaults(regions.Parse(override)))
	}
	return regions.NewStore(e.path, e.configProfile, opts...)
}

func runSession(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	e, err := newEnv(ctx, ui.NewPrompter())
	if err != nil {
		return err
	}

	s := session.New(e.client, e.prompter, e.regionStore(),
		session.WithOutput(cmd.OutOrStdout()),
		session.WithLogger(e.logger),
	)

	err = s.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

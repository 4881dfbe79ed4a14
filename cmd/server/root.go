package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"volunteermatch/internal/platform/config"
	"volunteermatch/internal/platform/logger"
)

var (
	cfg *config.Config
	log *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "volunteermatch",
	Short: "Volunteer to charity matching API",
	Long: `volunteermatch serves a GraphQL API that registers volunteers and lets
charity users find volunteers by skill and location. It runs as a plain HTTP
server or inside AWS Lambda behind API Gateway.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		log = logger.New(cfg.LogLevel, cfg.LogFormat)
		slog.SetDefault(log)
		return nil
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("table", "", "DynamoDB table name (env: MATCHING_TABLE_NAME)")
	flags.String("region", "", "AWS region (env: AWS_REGION)")
	flags.String("log-level", "", "Log level: debug, info, warn, error (env: LOG_LEVEL)")
	flags.String("log-format", "", "Log format: json or text (env: LOG_FORMAT)")

	mustBind(config.KeyTableName, "table")
	mustBind(config.KeyRegion, "region")
	mustBind(config.KeyLogLevel, "log-level")
	mustBind(config.KeyLogFormat, "log-format")

	rootCmd.AddCommand(serveCmd, lambdaCmd, checkTableCmd)
}

func mustBind(key, flag string) {
	if err := viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

// lambdaArgs makes a bare invocation inside the Lambda runtime, which starts
// the bootstrap binary without arguments, run the lambda command.
func lambdaArgs(args []string, runtimeAPI string) []string {
	if len(args) == 0 && runtimeAPI != "" {
		return []string{lambdaCmd.Name()}
	}
	return args
}

// Execute runs the root command
func Execute() {
	rootCmd.SetArgs(lambdaArgs(os.Args[1:], os.Getenv("AWS_LAMBDA_RUNTIME_API")))
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

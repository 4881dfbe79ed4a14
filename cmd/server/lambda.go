package main

import (
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/spf13/cobra"

	"volunteermatch/internal/identity/cognito"
	"volunteermatch/internal/platform/metrics"
	lambdatransport "volunteermatch/internal/transport/lambda"
)

// Lambda handler names, selected with --handler or the _HANDLER variable the
// runtime sets from the function's handler setting.
const (
	handlerGraphQL     = "graphql"
	handlerPostConfirm = "post-confirm"
)

// resolveHandler picks the handler to run. An explicit flag must name a known
// handler. _HANDLER is only a hint: provided runtimes set it to values such as
// "bootstrap", so anything other than post-confirm serves GraphQL.
func resolveHandler(flag, env string) (string, error) {
	switch flag {
	case handlerGraphQL, handlerPostConfirm:
		return flag, nil
	case "":
	default:
		return "", fmt.Errorf("unknown lambda handler %q (want %s or %s)", flag, handlerGraphQL, handlerPostConfirm)
	}
	if env == handlerPostConfirm {
		return handlerPostConfirm, nil
	}
	return handlerGraphQL, nil
}

var lambdaHandler string

var lambdaCmd = &cobra.Command{
	Use:   "lambda",
	Short: "Run as an AWS Lambda function",
	Long: `Starts the Lambda runtime loop. The graphql handler serves API Gateway
REST and HTTP API events; post-confirm is the Cognito post-confirmation trigger.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		name, err := resolveHandler(lambdaHandler, os.Getenv("_HANDLER"))
		if err != nil {
			return err
		}

		switch name {
		case handlerGraphQL:
			store, err := newDynamoStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			registry := metrics.New()
			handler := lambdatransport.New(newSchema(cfg, store, registry),
				lambdatransport.WithLogger(log),
				lambdatransport.WithTimeout(cfg.RequestTimeout),
			)
			log.Info("starting lambda", "handler", handlerGraphQL, "table", cfg.TableName)
			lambda.Start(handler.Handle)

		case handlerPostConfirm:
			awsCfg, err := loadAWSConfig(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			hook := cognito.NewHook(cognitoidentityprovider.NewFromConfig(awsCfg),
				cognito.WithGroup(cfg.CharityGroup),
				cognito.WithLogger(log),
				cognito.WithMetrics(cognito.NewMetrics(metrics.New().Registerer())),
			)
			log.Info("starting lambda", "handler", handlerPostConfirm, "group", cfg.CharityGroup)
			lambda.Start(hook.Handle)
		}
		return nil
	},
}

func init() {
	lambdaCmd.Flags().StringVar(&lambdaHandler, "handler", "", "Handler to run: graphql or post-confirm (env: _HANDLER)")
}

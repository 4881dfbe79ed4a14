//go:build integration

package containers

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const dynamoDBLocalPort = "8000/tcp"

// DynamoDBContainer wraps a testcontainers DynamoDB Local instance.
type DynamoDBContainer struct {
	Container testcontainers.Container
	Endpoint  string
	Client    *dynamodb.Client
}

// NewDynamoDBContainer starts DynamoDB Local in memory and returns a client
// pointed at it. The container is terminated when the test finishes.
func NewDynamoDBContainer(t *testing.T) *DynamoDBContainer {
	t.Helper()

	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "amazon/dynamodb-local:2.5.2",
			ExposedPorts: []string{dynamoDBLocalPort},
			Cmd:          []string{"-jar", "DynamoDBLocal.jar", "-inMemory", "-sharedDb"},
			WaitingFor:   wait.ForListeningPort(dynamoDBLocalPort),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("failed to start dynamodb-local container: %v", err)
	}
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	endpoint, err := container.PortEndpoint(ctx, dynamoDBLocalPort, "http")
	if err != nil {
		t.Fatalf("failed to get dynamodb-local endpoint: %v", err)
	}

	// DynamoDB Local accepts any credentials.
	client := dynamodb.New(dynamodb.Options{
		Region:       "eu-west-2",
		BaseEndpoint: aws.String(endpoint),
		Credentials: aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
			return aws.Credentials{AccessKeyID: "local", SecretAccessKey: "local"}, nil
		}),
	})

	if _, err := client.ListTables(ctx, &dynamodb.ListTablesInput{}); err != nil {
		t.Fatalf("failed to reach dynamodb-local: %v", err)
	}

	return &DynamoDBContainer{
		Container: container,
		Endpoint:  endpoint,
		Client:    client,
	}
}

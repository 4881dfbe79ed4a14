// Package dynamo stores volunteer items in a single DynamoDB table with one
// global secondary index keyed on location and availability.
package dynamo

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	dynamodbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"volunteermatch/internal/volunteer/models"
	"volunteermatch/pkg/platform/sentinel"
)

const (
	// GSI1 is the default name of the location index.
	// Partition key: GSI1PK (LOCATION#<UPPER>), sort key: GSI1SK (AVAILABILITY#<UPPER>).
	GSI1 = "GSI1"

	PartitionKey     = "PK"
	SortKey          = "SK"
	GSI1PartitionKey = "GSI1PK"
	GSI1SortKey      = "GSI1SK"
)

// API is the subset of the DynamoDB client the store uses.
type API interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

// Client is a DynamoDB-backed volunteer store.
//
// Use [New] to create a Client, [Client.Connect] to initialize the underlying
// DynamoDB connection, and [Client.Init] to validate the table schema.
type Client struct {
	client    API
	tableName string
	awsCfg    *aws.Config
	opts      *Options
}

// New creates a new Client configured with the given AWS config, table name,
// and optional options. Call [Client.Connect] on the returned client before use.
func New(awsCfg *aws.Config, tableName string, opts ...Option) *Client {
	options := newOptions()

	for _, o := range opts {
		o(options)
	}

	return &Client{
		awsCfg:    awsCfg,
		tableName: tableName,
		opts:      options,
	}
}

// Connect initializes the DynamoDB client from the AWS config provided to [New].
// It must complete before the Client is used concurrently.
func (c *Client) Connect() error {
	if err := c.opts.validate(); err != nil {
		return fmt.Errorf("invalid DynamoDB options: %w", err)
	}

	if c.opts.dynamoDBAPI != nil {
		c.client = c.opts.dynamoDBAPI
		return nil
	}

	if c.awsCfg == nil {
		return errors.New("AWS config is required when no DynamoDB API is injected")
	}
	c.client = dynamodb.NewFromConfig(*c.awsCfg)

	return nil
}

// Init validates the table: it must exist and be active, have the PK/SK
// composite primary key, and carry an active location index keyed on
// GSI1PK/GSI1SK projecting the entity type and payload.
//
// Pass skipSchemaValidation true to skip all checks, which is useful when the
// schema is managed by infrastructure code.
func (c *Client) Init(ctx context.Context, skipSchemaValidation bool) error {
	if skipSchemaValidation {
		return nil
	}

	response, err := c.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(c.tableName),
	})
	if err != nil {
		var notFoundError *dynamodbtypes.ResourceNotFoundException
		if errors.As(err, &notFoundError) {
			return fmt.Errorf("table %s does not exist", c.tableName)
		}
		return fmt.Errorf("failed to describe table %s: %w", c.tableName, err)
	}

	table := response.Table
	if table == nil || len(table.KeySchema) < 1 {
		return fmt.Errorf("table %s has no key schema", c.tableName)
	}

	if aws.ToString(table.KeySchema[0].AttributeName) != PartitionKey {
		return fmt.Errorf("table %s has partition key %s, expected %s", c.tableName, aws.ToString(table.KeySchema[0].AttributeName), PartitionKey)
	}

	if len(table.KeySchema) < 2 {
		return fmt.Errorf("table %s has a simple primary key, expected composite", c.tableName)
	}

	if aws.ToString(table.KeySchema[1].AttributeName) != SortKey {
		return fmt.Errorf("table %s has sort key %s, expected %s", c.tableName, aws.ToString(table.KeySchema[1].AttributeName), SortKey)
	}

	if table.TableStatus != dynamodbtypes.TableStatusActive {
		return fmt.Errorf("table %s is not active (status: %s)", c.tableName, table.TableStatus)
	}

	return verifyLocationIndex(table, c.opts.indexName)
}

// Put writes item. Any failure wraps [sentinel.ErrStoreWrite]; the SDK's
// standard retryer is the only retry.
func (c *Client) Put(ctx context.Context, item *models.Item) error {
	attributes, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("%w: failed to marshal item %s: %w", sentinel.ErrStoreWrite, item.PK, err)
	}

	input := &dynamodb.PutItemInput{
		TableName: aws.String(c.tableName),
		Item:      attributes,
	}

	if _, err := c.client.PutItem(ctx, input); err != nil {
		return fmt.Errorf("%w: failed to write item %s to DynamoDB table %s: %w", sentinel.ErrStoreWrite, item.PK, c.tableName, err)
	}

	return nil
}

// QueryByLocation returns every item in the location index whose partition
// key matches location, uppercased. Pages are followed until exhausted; no
// ordering is guaranteed. Any failure wraps [sentinel.ErrStoreQuery].
func (c *Client) QueryByLocation(ctx context.Context, location string) ([]*models.Item, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(c.tableName),
		IndexName:              aws.String(c.opts.indexName),
		KeyConditionExpression: aws.String("#pk = :pk"),
		ExpressionAttributeNames: map[string]string{
			"#pk": GSI1PartitionKey,
		},
		ExpressionAttributeValues: map[string]dynamodbtypes.AttributeValue{
			":pk": &dynamodbtypes.AttributeValueMemberS{Value: models.LocationKey(location)},
		},
	}

	var items []*models.Item

	for {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %w", sentinel.ErrStoreQuery, err)
		}

		output, err := c.client.Query(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to query DynamoDB table %s: %w", sentinel.ErrStoreQuery, c.tableName, err)
		}

		var page []*models.Item
		if err := attributevalue.UnmarshalListOfMaps(output.Items, &page); err != nil {
			return nil, fmt.Errorf("%w: failed to unmarshal items from DynamoDB table %s: %w", sentinel.ErrStoreQuery, c.tableName, err)
		}
		items = append(items, page...)

		if len(output.LastEvaluatedKey) == 0 {
			break
		}

		input.ExclusiveStartKey = output.LastEvaluatedKey
	}

	return items, nil
}

func verifyLocationIndex(table *dynamodbtypes.TableDescription, indexName string) error {
	for _, index := range table.GlobalSecondaryIndexes {
		if aws.ToString(index.IndexName) != indexName {
			continue
		}

		if len(index.KeySchema) != 2 {
			return fmt.Errorf("global secondary index %s has a simple primary key, expected a composite primary key", indexName)
		}

		if aws.ToString(index.KeySchema[0].AttributeName) != GSI1PartitionKey {
			return fmt.Errorf("global secondary index %s has partition key %s, expected %s", indexName, aws.ToString(index.KeySchema[0].AttributeName), GSI1PartitionKey)
		}

		if aws.ToString(index.KeySchema[1].AttributeName) != GSI1SortKey {
			return fmt.Errorf("global secondary index %s has sort key %s, expected %s", indexName, aws.ToString(index.KeySchema[1].AttributeName), GSI1SortKey)
		}

		if index.IndexStatus != dynamodbtypes.IndexStatusActive {
			return fmt.Errorf("global secondary index %s is not active (status: %s)", indexName, index.IndexStatus)
		}

		if index.Projection == nil {
			return fmt.Errorf("global secondary index %s has no projection", indexName)
		}

		switch index.Projection.ProjectionType {
		case dynamodbtypes.ProjectionTypeAll:
		case dynamodbtypes.ProjectionTypeInclude:
			for _, attr := range []string{"EntityType", "Data"} {
				if !slices.Contains(index.Projection.NonKeyAttributes, attr) {
					return fmt.Errorf("global secondary index %s is missing non-key attribute %s", indexName, attr)
				}
			}
		default:
			return fmt.Errorf("global secondary index %s has projection type %s, expected %s or %s", indexName, index.Projection.ProjectionType, dynamodbtypes.ProjectionTypeAll, dynamodbtypes.ProjectionTypeInclude)
		}

		return nil
	}

	return fmt.Errorf("table %s has no global secondary index %s", aws.ToString(table.TableName), indexName)
}

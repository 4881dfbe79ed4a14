package dynamo

import (
	"errors"
	"strings"
)

// Option is a functional option for configuring a [Client].
type Option func(*Options)

// Options holds the configuration for a [Client].
type Options struct {
	indexName   string
	dynamoDBAPI API
}

func newOptions() *Options {
	return &Options{
		indexName: GSI1,
	}
}

func (o *Options) validate() error {
	if strings.TrimSpace(o.indexName) == "" {
		return errors.New("index name must not be empty")
	}
	return nil
}

// WithIndexName overrides the name of the location index. The default is [GSI1].
func WithIndexName(name string) Option {
	return func(o *Options) {
		o.indexName = name
	}
}

// WithAPI sets a custom [API] implementation. This is useful when a custom
// DynamoDB configuration is required, or for injecting mocks in tests.
func WithAPI(api API) Option {
	return func(o *Options) {
		o.dynamoDBAPI = api
	}
}

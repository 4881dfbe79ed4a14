// Package graph exposes the volunteer service over GraphQL.
package graph

import (
	_ "embed"

	graphql "github.com/graph-gophers/graphql-go"
)

//go:embed schema.graphql
var Schema string

// MaxDepth bounds query nesting; the schema itself is only three levels deep.
const MaxDepth = 8

// NewSchema parses Schema against r.
func NewSchema(r *Resolver) *graphql.Schema {
	return graphql.MustParseSchema(Schema, r, graphql.MaxDepth(MaxDepth))
}

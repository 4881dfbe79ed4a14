package graph

import (
	graphql "github.com/graph-gophers/graphql-go"

	"volunteermatch/internal/volunteer/models"
)

type volunteerResolver struct {
	v *models.Volunteer
}

func (r *volunteerResolver) ID() graphql.ID       { return graphql.ID(r.v.ID) }
func (r *volunteerResolver) Name() string         { return r.v.Name }
func (r *volunteerResolver) Location() string     { return r.v.Location }
func (r *volunteerResolver) Availability() string { return r.v.Availability }
func (r *volunteerResolver) CreatedAt() string    { return r.v.CreatedAt.String() }

func (r *volunteerResolver) Skills() []string {
	if r.v.Skills == nil {
		return []string{}
	}
	return r.v.Skills
}

type matchResolver struct {
	m models.Match
}

func (r *matchResolver) Volunteer() *volunteerResolver {
	return &volunteerResolver{v: r.m.Volunteer}
}

func (r *matchResolver) MatchScore() int32 {
	return int32(r.m.Score)
}

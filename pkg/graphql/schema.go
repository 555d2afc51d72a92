package graphql

import (
	"context"
	"errors"
	"fmt"

	"github.com/graphql-go/graphql"

	"github.com/dd0wney/cluso-netviz/pkg/engine"
	"github.com/dd0wney/cluso-netviz/pkg/network"
)

// ErrNoSnapshot is returned when the engine has not published yet.
var ErrNoSnapshot = errors.New("no snapshot published")

// Engine is the part of *engine.Engine the schema needs: published
// snapshots for queries and the command loop for mutations.
type Engine interface {
	Latest() *engine.Snapshot
	Do(ctx context.Context, fn func(*engine.Engine) error) error
}

// GenerateSchema builds the query and mutation schema over eng.
func GenerateSchema(eng Engine) (graphql.Schema, error) {
	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"health": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return "ok", nil
				},
			},
			"graph": &graphql.Field{
				Type:    graphType,
				Resolve: latestResolver(eng, func(s *engine.Snapshot) (any, error) { return s, nil }),
			},
			"nodes": &graphql.Field{
				Type: graphql.NewList(nodeType),
				Args: graphql.FieldConfigArgument{
					"layer": &graphql.ArgumentConfig{Type: graphql.Int},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					s, err := latest(eng)
					if err != nil {
						return nil, err
					}
					layer, filtered := p.Args["layer"].(int)
					if !filtered {
						return s.Graph.Nodes, nil
					}
					out := make([]network.NodeSnapshot, 0)
					for _, n := range s.Graph.Nodes {
						if n.ID.Layer == layer {
							out = append(out, n)
						}
					}
					return out, nil
				},
			},
			"node": &graphql.Field{
				Type: nodeType,
				Args: nodeArgs(),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					s, err := latest(eng)
					if err != nil {
						return nil, err
					}
					id := argNodeID(p.Args)
					n, ok := s.Node(id)
					if !ok {
						return nil, fmt.Errorf("node %s: %w", id, network.ErrNodeNotFound)
					}
					return n, nil
				},
			},
			"links": &graphql.Field{
				Type:    graphql.NewList(linkType),
				Resolve: latestResolver(eng, func(s *engine.Snapshot) (any, error) { return s.Graph.Links, nil }),
			},
			"tokens": &graphql.Field{
				Type:    graphql.NewList(tokenType),
				Resolve: latestResolver(eng, func(s *engine.Snapshot) (any, error) { return s.Tokens, nil }),
			},
			"popup": &graphql.Field{
				Type:    popupType,
				Resolve: latestResolver(eng, func(s *engine.Snapshot) (any, error) { return s.Popup, nil }),
			},
			"scheduler": &graphql.Field{
				Type:    schedulerType,
				Resolve: latestResolver(eng, func(s *engine.Snapshot) (any, error) { return s.Scheduler, nil }),
			},
		},
	})

	schema, err := graphql.NewSchema(graphql.SchemaConfig{
		Query:    queryType,
		Mutation: mutationType(eng),
	})
	if err != nil {
		return graphql.Schema{}, fmt.Errorf("failed to create schema: %w", err)
	}
	return schema, nil
}

func latest(eng Engine) (*engine.Snapshot, error) {
	s := eng.Latest()
	if s == nil {
		return nil, ErrNoSnapshot
	}
	return s, nil
}

func latestResolver(eng Engine, get func(*engine.Snapshot) (any, error)) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (any, error) {
		s, err := latest(eng)
		if err != nil {
			return nil, err
		}
		return get(s)
	}
}

func nodeArgs() graphql.FieldConfigArgument {
	return graphql.FieldConfigArgument{
		"layer": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
		"index": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
	}
}

func argNodeID(args map[string]any) network.NodeID {
	layer, _ := args["layer"].(int)
	index, _ := args["index"].(int)
	return network.NodeID{Layer: layer, Index: index}
}

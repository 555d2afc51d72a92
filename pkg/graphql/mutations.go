package graphql

import (
	"github.com/graphql-go/graphql"

	"github.com/dd0wney/cluso-netviz/pkg/engine"
	"github.com/dd0wney/cluso-netviz/pkg/telemetry"
)

// mutationType delivers every mutation to the engine loop and returns the
// node or snapshot state as of the command.
func mutationType(eng Engine) *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"control": &graphql.Field{
				Type:        schedulerType,
				Description: "Apply reset, stop or start",
				Args: graphql.FieldConfigArgument{
					"action": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					action, _ := p.Args["action"].(string)
					var state engine.SchedulerState
					err := eng.Do(p.Context, func(e *engine.Engine) error {
						if err := e.Control(action); err != nil {
							return err
						}
						state = e.Snapshot().Scheduler
						return nil
					})
					if err != nil {
						return nil, err
					}
					return state, nil
				},
			},
			"moveNode": &graphql.Field{
				Type: nodeType,
				Args: graphql.FieldConfigArgument{
					"layer": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
					"index": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
					"x":     &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"y":     &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					id := argNodeID(p.Args)
					x, _ := p.Args["x"].(float64)
					y, _ := p.Args["y"].(float64)
					var out any
					err := eng.Do(p.Context, func(e *engine.Engine) error {
						if err := e.MoveNode(id, x, y); err != nil {
							return err
						}
						n, _ := e.Snapshot().Node(id)
						out = n
						return nil
					})
					if err != nil {
						return nil, err
					}
					return out, nil
				},
			},
			"draw": &graphql.Field{
				Type:        graphType,
				Description: "Draw a topology given as layer sizes, input first",
				Args: graphql.FieldConfigArgument{
					"layers": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(graphql.Int)))},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					raw, _ := p.Args["layers"].([]any)
					layers := make([]int, 0, len(raw))
					for _, v := range raw {
						n, _ := v.(int)
						layers = append(layers, n)
					}
					return snapshotAfter(p, eng, func(e *engine.Engine) error {
						return e.Draw(telemetry.TopologyFromLayers(layers), nil)
					})
				},
			},
			"resize": &graphql.Field{
				Type: graphType,
				Args: graphql.FieldConfigArgument{
					"width":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"height": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					w, _ := p.Args["width"].(float64)
					h, _ := p.Args["height"].(float64)
					return snapshotAfter(p, eng, func(e *engine.Engine) error { return e.Resize(w, h) })
				},
			},
			"clear": &graphql.Field{
				Type: graphType,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return snapshotAfter(p, eng, func(e *engine.Engine) error {
						e.Clear()
						return nil
					})
				},
			},
		},
	})
}

func snapshotAfter(p graphql.ResolveParams, eng Engine, fn func(*engine.Engine) error) (any, error) {
	var snap *engine.Snapshot
	err := eng.Do(p.Context, func(e *engine.Engine) error {
		if err := fn(e); err != nil {
			return err
		}
		snap = e.Snapshot()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

package graphql

import (
	"github.com/graphql-go/graphql"

	"github.com/dd0wney/cluso-netviz/pkg/animation"
	"github.com/dd0wney/cluso-netviz/pkg/engine"
	"github.com/dd0wney/cluso-netviz/pkg/interaction"
	"github.com/dd0wney/cluso-netviz/pkg/network"
	"github.com/dd0wney/cluso-netviz/pkg/telemetry"
)

// valueType exposes a telemetry value. Unavailable values have
// available=false and null scalar and series.
var valueType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Value",
	Fields: graphql.Fields{
		"available": &graphql.Field{
			Type: graphql.NewNonNull(graphql.Boolean),
			Resolve: func(p graphql.ResolveParams) (any, error) {
				v, _ := p.Source.(telemetry.Value)
				return v.IsAvailable(), nil
			},
		},
		"scalar": &graphql.Field{
			Type:        graphql.Float,
			Description: "The value, or the mean of a series",
			Resolve: func(p graphql.ResolveParams) (any, error) {
				v, _ := p.Source.(telemetry.Value)
				if f, ok := v.Float(); ok {
					return f, nil
				}
				return nil, nil
			},
		},
		"series": &graphql.Field{
			Type: graphql.NewList(graphql.Float),
			Resolve: func(p graphql.ResolveParams) (any, error) {
				v, _ := p.Source.(telemetry.Value)
				if !v.IsSeries() {
					return nil, nil
				}
				return v.Series(), nil
			},
		},
		"text": &graphql.Field{
			Type: graphql.NewNonNull(graphql.String),
			Resolve: func(p graphql.ResolveParams) (any, error) {
				v, _ := p.Source.(telemetry.Value)
				return v.String(), nil
			},
		},
	},
})

var nodeIDType = graphql.NewObject(graphql.ObjectConfig{
	Name: "NodeID",
	Fields: graphql.Fields{
		"layer": &graphql.Field{Type: graphql.NewNonNull(graphql.Int), Resolve: nodeIDField(func(id network.NodeID) int { return id.Layer })},
		"index": &graphql.Field{Type: graphql.NewNonNull(graphql.Int), Resolve: nodeIDField(func(id network.NodeID) int { return id.Index })},
	},
})

func nodeIDField(get func(network.NodeID) int) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (any, error) {
		switch id := p.Source.(type) {
		case network.NodeID:
			return get(id), nil
		case *network.NodeID:
			if id != nil {
				return get(*id), nil
			}
		}
		return nil, nil
	}
}

var payloadFieldType = graphql.NewObject(graphql.ObjectConfig{
	Name: "PayloadField",
	Fields: graphql.Fields{
		"label":  &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"text":   &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"detail": &graphql.Field{Type: graphql.String},
	},
})

var historyEntryType = graphql.NewObject(graphql.ObjectConfig{
	Name: "HistoryEntry",
	Fields: graphql.Fields{
		"epoch": &graphql.Field{
			Type: graphql.NewNonNull(graphql.Int),
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return p.Source.(network.HistoryEntry).Epoch, nil
			},
		},
		"value": &graphql.Field{
			Type: valueType,
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return p.Source.(network.HistoryEntry).Value, nil
			},
		},
	},
})

// nodeType resolves from network.NodeSnapshot.
var nodeType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Node",
	Fields: graphql.Fields{
		"id":     &graphql.Field{Type: graphql.NewNonNull(nodeIDType), Resolve: nodeField(func(n network.NodeSnapshot) any { return n.ID })},
		"layer":  &graphql.Field{Type: graphql.NewNonNull(graphql.Int), Resolve: nodeField(func(n network.NodeSnapshot) any { return n.ID.Layer })},
		"index":  &graphql.Field{Type: graphql.NewNonNull(graphql.Int), Resolve: nodeField(func(n network.NodeSnapshot) any { return n.ID.Index })},
		"kind":   &graphql.Field{Type: graphql.NewNonNull(graphql.String), Resolve: nodeField(func(n network.NodeSnapshot) any { return n.Kind })},
		"label":  &graphql.Field{Type: graphql.NewNonNull(graphql.String), Resolve: nodeField(func(n network.NodeSnapshot) any { return n.Label })},
		"x":      &graphql.Field{Type: graphql.NewNonNull(graphql.Float), Resolve: nodeField(func(n network.NodeSnapshot) any { return n.X })},
		"y":      &graphql.Field{Type: graphql.NewNonNull(graphql.Float), Resolve: nodeField(func(n network.NodeSnapshot) any { return n.Y })},
		"firing": &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean), Resolve: nodeField(func(n network.NodeSnapshot) any { return n.Firing })},
		"inputValue": &graphql.Field{Type: valueType, Resolve: nodeField(func(n network.NodeSnapshot) any { return n.Telemetry.InputValue })},
		"weight":     &graphql.Field{Type: valueType, Resolve: nodeField(func(n network.NodeSnapshot) any { return n.Telemetry.Weight })},
		"bias":       &graphql.Field{Type: valueType, Resolve: nodeField(func(n network.NodeSnapshot) any { return n.Telemetry.Bias })},
		"preActivation": &graphql.Field{
			Type:    valueType,
			Resolve: nodeField(func(n network.NodeSnapshot) any { return n.Telemetry.PreActivation }),
		},
		"activation": &graphql.Field{Type: valueType, Resolve: nodeField(func(n network.NodeSnapshot) any { return n.Telemetry.Activation })},
		"gradient":   &graphql.Field{Type: valueType, Resolve: nodeField(func(n network.NodeSnapshot) any { return n.Telemetry.Gradient })},
		"fields": &graphql.Field{
			Type:    graphql.NewList(payloadFieldType),
			Resolve: nodeField(func(n network.NodeSnapshot) any { return n.Payload.Fields }),
		},
		"history": &graphql.Field{
			Type:    graphql.NewList(historyEntryType),
			Resolve: nodeField(func(n network.NodeSnapshot) any { return n.History }),
		},
	},
})

func nodeField(get func(network.NodeSnapshot) any) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (any, error) {
		if n, ok := p.Source.(network.NodeSnapshot); ok {
			return get(n), nil
		}
		return nil, nil
	}
}

var linkType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Link",
	Fields: graphql.Fields{
		"source": &graphql.Field{Type: graphql.NewNonNull(nodeIDType), Resolve: linkField(func(l network.LinkSnapshot) any { return l.Source })},
		"target": &graphql.Field{Type: graphql.NewNonNull(nodeIDType), Resolve: linkField(func(l network.LinkSnapshot) any { return l.Target })},
		"weight": &graphql.Field{Type: valueType, Resolve: linkField(func(l network.LinkSnapshot) any { return l.Weight })},
		"x1":     &graphql.Field{Type: graphql.Float, Resolve: linkField(func(l network.LinkSnapshot) any { return l.X1 })},
		"y1":     &graphql.Field{Type: graphql.Float, Resolve: linkField(func(l network.LinkSnapshot) any { return l.Y1 })},
		"x2":     &graphql.Field{Type: graphql.Float, Resolve: linkField(func(l network.LinkSnapshot) any { return l.X2 })},
		"y2":     &graphql.Field{Type: graphql.Float, Resolve: linkField(func(l network.LinkSnapshot) any { return l.Y2 })},
	},
})

func linkField(get func(network.LinkSnapshot) any) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (any, error) {
		if l, ok := p.Source.(network.LinkSnapshot); ok {
			return get(l), nil
		}
		return nil, nil
	}
}

var tokenType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Token",
	Fields: graphql.Fields{
		"runId": &graphql.Field{Type: graphql.NewNonNull(graphql.String), Resolve: tokenField(func(t animation.Token) any { return t.RunID })},
		"hop":   &graphql.Field{Type: graphql.NewNonNull(graphql.Int), Resolve: tokenField(func(t animation.Token) any { return t.Hop })},
		"direction": &graphql.Field{
			Type:    graphql.NewNonNull(graphql.String),
			Resolve: tokenField(func(t animation.Token) any { return t.Direction.String() }),
		},
		"from":     &graphql.Field{Type: nodeIDType, Resolve: tokenField(func(t animation.Token) any { return t.From })},
		"to":       &graphql.Field{Type: nodeIDType, Resolve: tokenField(func(t animation.Token) any { return t.To })},
		"progress": &graphql.Field{Type: graphql.Float, Resolve: tokenField(func(t animation.Token) any { return t.Progress })},
		"x":        &graphql.Field{Type: graphql.Float, Resolve: tokenField(func(t animation.Token) any { return t.Pos.X })},
		"y":        &graphql.Field{Type: graphql.Float, Resolve: tokenField(func(t animation.Token) any { return t.Pos.Y })},
	},
})

func tokenField(get func(animation.Token) any) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (any, error) {
		if t, ok := p.Source.(animation.Token); ok {
			return get(t), nil
		}
		return nil, nil
	}
}

var schedulerType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Scheduler",
	Fields: graphql.Fields{
		"state":   &graphql.Field{Type: graphql.NewNonNull(graphql.String), Resolve: schedField(func(s engine.SchedulerState) any { return s.State })},
		"runId":   &graphql.Field{Type: graphql.String, Resolve: schedField(func(s engine.SchedulerState) any { return s.RunID })},
		"epoch":   &graphql.Field{Type: graphql.Int, Resolve: schedField(func(s engine.SchedulerState) any { return s.Epoch })},
		"queued":  &graphql.Field{Type: graphql.NewNonNull(graphql.Int), Resolve: schedField(func(s engine.SchedulerState) any { return s.Queued })},
		"stopped": &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean), Resolve: schedField(func(s engine.SchedulerState) any { return s.Stopped })},
		"resizePending": &graphql.Field{
			Type:    graphql.NewNonNull(graphql.Boolean),
			Resolve: schedField(func(s engine.SchedulerState) any { return s.Resizing }),
		},
	},
})

func schedField(get func(engine.SchedulerState) any) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (any, error) {
		if s, ok := p.Source.(engine.SchedulerState); ok {
			return get(s), nil
		}
		return nil, nil
	}
}

var popupType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Popup",
	Fields: graphql.Fields{
		"visible":  &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean), Resolve: popupField(func(v interaction.View) any { return v.Visible })},
		"state":    &graphql.Field{Type: graphql.NewNonNull(graphql.String), Resolve: popupField(func(v interaction.View) any { return v.State })},
		"owner":    &graphql.Field{Type: nodeIDType, Resolve: popupField(func(v interaction.View) any { return v.Owner })},
		"x":        &graphql.Field{Type: graphql.Float, Resolve: popupField(func(v interaction.View) any { return v.X })},
		"y":        &graphql.Field{Type: graphql.Float, Resolve: popupField(func(v interaction.View) any { return v.Y })},
		"dragging": &graphql.Field{Type: graphql.Boolean, Resolve: popupField(func(v interaction.View) any { return v.Dragging })},
		"title": &graphql.Field{
			Type: graphql.String,
			Resolve: popupField(func(v interaction.View) any {
				if v.Payload == nil {
					return nil
				}
				return v.Payload.Title
			}),
		},
		"fields": &graphql.Field{
			Type: graphql.NewList(payloadFieldType),
			Resolve: popupField(func(v interaction.View) any {
				if v.Payload == nil {
					return nil
				}
				return v.Payload.Fields
			}),
		},
	},
})

func popupField(get func(interaction.View) any) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (any, error) {
		if v, ok := p.Source.(interaction.View); ok {
			return get(v), nil
		}
		return nil, nil
	}
}

// graphType resolves from *engine.Snapshot so nested selections see one
// consistent version.
var graphType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Graph",
	Fields: graphql.Fields{
		"version":  &graphql.Field{Type: graphql.NewNonNull(graphql.Int), Resolve: snapField(func(s *engine.Snapshot) any { return int(s.Version) })},
		"drawn":    &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean), Resolve: snapField(func(s *engine.Snapshot) any { return s.Drawn })},
		"buffered": &graphql.Field{Type: graphql.NewNonNull(graphql.Int), Resolve: snapField(func(s *engine.Snapshot) any { return s.Buffered })},
		"layers":   &graphql.Field{Type: graphql.NewList(graphql.Int), Resolve: snapField(func(s *engine.Snapshot) any { return s.Graph.Layers })},
		"epoch":    &graphql.Field{Type: graphql.NewNonNull(graphql.Int), Resolve: snapField(func(s *engine.Snapshot) any { return s.Graph.Epoch })},
		"loss":     &graphql.Field{Type: valueType, Resolve: snapField(func(s *engine.Snapshot) any { return s.Graph.Loss })},
		"width":    &graphql.Field{Type: graphql.Float, Resolve: snapField(func(s *engine.Snapshot) any { return s.Graph.Width })},
		"height":   &graphql.Field{Type: graphql.Float, Resolve: snapField(func(s *engine.Snapshot) any { return s.Graph.Height })},
		"nodes":    &graphql.Field{Type: graphql.NewList(nodeType), Resolve: snapField(func(s *engine.Snapshot) any { return s.Graph.Nodes })},
		"links":    &graphql.Field{Type: graphql.NewList(linkType), Resolve: snapField(func(s *engine.Snapshot) any { return s.Graph.Links })},
		"tokens":   &graphql.Field{Type: graphql.NewList(tokenType), Resolve: snapField(func(s *engine.Snapshot) any { return s.Tokens })},
		"popup":    &graphql.Field{Type: popupType, Resolve: snapField(func(s *engine.Snapshot) any { return s.Popup })},
		"scheduler": &graphql.Field{
			Type:    schedulerType,
			Resolve: snapField(func(s *engine.Snapshot) any { return s.Scheduler }),
		},
	},
})

func snapField(get func(*engine.Snapshot) any) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (any, error) {
		if s, ok := p.Source.(*engine.Snapshot); ok && s != nil {
			return get(s), nil
		}
		return nil, nil
	}
}

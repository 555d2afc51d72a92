package visualization

import "encoding/json"

// SceneNode is the exported form of one drawn node.
type SceneNode struct {
	Layer  int     `json:"layer"`
	Index  int     `json:"index"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Kind   string  `json:"kind"`
	Firing bool    `json:"firing"`
}

// SceneLink is the exported form of one link.
type SceneLink struct {
	SourceLayer int     `json:"source_layer"`
	SourceIndex int     `json:"source_index"`
	TargetLayer int     `json:"target_layer"`
	TargetIndex int     `json:"target_index"`
	X1          float64 `json:"x1"`
	Y1          float64 `json:"y1"`
	X2          float64 `json:"x2"`
	Y2          float64 `json:"y2"`
	Weight      string  `json:"weight"`
}

// Scene is a positioned graph ready to draw.
type Scene struct {
	Width  float64     `json:"width"`
	Height float64     `json:"height"`
	Nodes  []SceneNode `json:"nodes"`
	Links  []SceneLink `json:"links"`
}

// ExportJSON exports the scene to JSON
func (s *Scene) ExportJSON() ([]byte, error) {
	if s.Nodes == nil {
		s.Nodes = []SceneNode{}
	}
	if s.Links == nil {
		s.Links = []SceneLink{}
	}
	return json.Marshal(s)
}

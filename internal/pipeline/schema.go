package pipeline

import (
	"github.com/kiranshivaraju/hazardlens/pkg/bbox"
	"github.com/kiranshivaraju/hazardlens/pkg/extract"
)

var recommendationSchema = extract.MustSchema(`{
	"type": "array",
	"items": {
		"type": "object",
		"required": ["modification", "rationale"],
		"properties": {
			"modification": {"type": "string"},
			"rationale": {"type": "string"},
			"cost": {"type": "string"},
			"installation": {"type": "string"}
		}
	}
}`)

var placementSchema = extract.MustSchema(`{
	"type": "array",
	"items": {
		"type": "object",
		"required": ["box_2d"],
		"properties": {
			"box_2d": {
				"type": "array",
				"items": {"type": "number"},
				"minItems": 4,
				"maxItems": 4
			},
			"label": {"type": "string"}
		}
	}
}`)

type placement struct {
	Box   bbox.Normalized `json:"box_2d"`
	Label string          `json:"label,omitempty"`
}

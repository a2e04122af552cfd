package models

// Recommendation is one hazard-mitigation suggestion for a photographed room.
// Index is the 1-based position in the list the model returned and is the
// stable identity of the suggestion for the rest of the pipeline.
type Recommendation struct {
	Index        int    `json:"-"`
	Modification string `json:"modification"`
	Rationale    string `json:"rationale"`
	Cost         string `json:"cost,omitempty"`
	Installation string `json:"installation,omitempty"`
}

// Package models contains shared data models used across the hazardlens codebase.
package models

import (
	"context"
	"strings"
)

// AIProvider is the core interface that all model integrations must implement.
// Callers depend on this interface, never on a vendor client.
type AIProvider interface {
	// Generate sends media plus a task prompt and returns the response parts.
	Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, error)
	// Name returns the provider identifier (e.g., "gemini", "openai").
	Name() string
}

// Modality selects what a generation call may return.
type Modality string

const (
	ModalityText  Modality = "TEXT"
	ModalityImage Modality = "IMAGE"
)

// Media is an inline binary attachment (image or audio).
type Media struct {
	MimeType string
	Data     []byte
}

// GenerateRequest is the input to a single model call.
type GenerateRequest struct {
	Prompt            string
	SystemInstruction string
	Media             []Media
	Temperature       float32
	// Modalities defaults to text only when empty.
	Modalities []Modality
}

// WantsImage reports whether the caller asked for image output.
func (r GenerateRequest) WantsImage() bool {
	for _, m := range r.Modalities {
		if m == ModalityImage {
			return true
		}
	}
	return false
}

// Part is one element of a model response: text or inline data.
type Part struct {
	Text       string
	InlineData *Media
}

// GenerateResponse is the ordered list of parts returned by the model.
type GenerateResponse struct {
	Parts []Part
}

// Text concatenates all text parts.
func (r GenerateResponse) Text() string {
	var b strings.Builder
	for _, p := range r.Parts {
		b.WriteString(p.Text)
	}
	return b.String()
}

// FirstImage returns the first part carrying inline data, if any.
func (r GenerateResponse) FirstImage() (*Media, bool) {
	for _, p := range r.Parts {
		if p.InlineData != nil && len(p.InlineData.Data) > 0 {
			return p.InlineData, true
		}
	}
	return nil, false
}

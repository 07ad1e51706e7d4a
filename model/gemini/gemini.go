// Package gemini provides a model wrapper for Google Gemini through its
// OpenAI-compatible endpoint, reusing the openai adapter for the wire format.
package gemini

import (
	openaimodel "github.com/hupe1980/agentfleet/model/openai"
)

// BaseURL is Gemini's OpenAI-compatible API endpoint.
const BaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"

// DefaultModel is used when no model id is configured.
const DefaultModel = "gemini-1.5-flash"

// Options configures the Gemini model adapter.
type Options struct {
	Model       string
	Temperature float64
	APIKey      string
}

// NewModel creates a Gemini-backed model.Model.
func NewModel(optFns ...func(o *Options)) *openaimodel.Model {
	opts := Options{
		Model:       DefaultModel,
		Temperature: 0.7,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	return openaimodel.NewCompatModel("gemini", func(o *openaimodel.Options) {
		o.Model = opts.Model
		o.Temperature = opts.Temperature
		o.APIKey = opts.APIKey
		o.BaseURL = BaseURL
	})
}

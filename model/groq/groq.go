// Package groq provides a model wrapper for Groq through its
// OpenAI-compatible endpoint, reusing the openai adapter for the wire format.
package groq

import (
	openaimodel "github.com/hupe1980/agentfleet/model/openai"
)

// BaseURL is Groq's OpenAI-compatible API endpoint.
const BaseURL = "https://api.groq.com/openai/v1"

// DefaultModel is used when no model id is configured.
const DefaultModel = "llama-3.3-70b-versatile"

// Options configures the Groq model adapter.
type Options struct {
	Model       string
	Temperature float64
	APIKey      string
}

// NewModel creates a Groq-backed model.Model.
func NewModel(optFns ...func(o *Options)) *openaimodel.Model {
	opts := Options{
		Model:       DefaultModel,
		Temperature: 0.7,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	return openaimodel.NewCompatModel("groq", func(o *openaimodel.Options) {
		o.Model = opts.Model
		o.Temperature = opts.Temperature
		o.APIKey = opts.APIKey
		o.BaseURL = BaseURL
	})
}

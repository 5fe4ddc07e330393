package translation

import (
	"errors"

	"github.com/sashabaranov/go-openai"
)

// mapOpenAIError converts go-openai client errors into the shared taxonomy.
// Groq and local servers both speak the OpenAI wire format.
func mapOpenAIError(provider string, err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return newError(provider, classifyStatus(apiErr.HTTPStatusCode), apiErr.HTTPStatusCode, apiErr.Message, err)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return newError(provider, classifyStatus(reqErr.HTTPStatusCode), reqErr.HTTPStatusCode, "request failed", err)
	}

	return transportError(provider, err)
}

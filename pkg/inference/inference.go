package inference

import (
	"context"

	"github.com/openai/openai-go/v3"
)

// Inferencer is the single external collaborator of the synthesis engine:
// given a system and user message plus generation parameters, return the raw
// completion text or fail. Implementations own model configuration and
// authentication; retries and timeouts belong to the caller.
type Inferencer interface {
	Infer(ctx context.Context, params *openai.ChatCompletionNewParams, system, user string) (string, error)
}

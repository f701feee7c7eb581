package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/scaffoldlab/scaffold-backend/internal/logger"
)

// GenerationOutput is what an opaque generation round trip yields: the
// content blob that becomes a version's content, plus metadata derived
// alongside it (design rationale and similar side-channel fields).
type GenerationOutput struct {
	Content         string
	DerivedMetadata map[string]interface{}
}

// GenerationWorkflow runs the opaque content-generation pipeline. The
// caller supplies a structured input document; how the pipeline turns it
// into content is outside this package's contract.
type GenerationWorkflow interface {
	Run(ctx context.Context, structuredInput map[string]interface{}) (*GenerationOutput, error)
}

// RefinementWorkflow applies a natural-language instruction to existing
// content and returns the refined content. Callers that require JSON
// output validate it themselves.
type RefinementWorkflow interface {
	Run(ctx context.Context, currentContent string, instruction string) (string, error)
}

type openAIGenerationWorkflow struct {
	log    *logger.Logger
	client OpenAIClient
	system string
}

// NewGenerationWorkflow builds an OpenAI-backed generation workflow with
// a fixed system prompt chosen by the owning service.
func NewGenerationWorkflow(log *logger.Logger, client OpenAIClient, systemPrompt string) GenerationWorkflow {
	return &openAIGenerationWorkflow{
		log:    log.With("service", "GenerationWorkflow"),
		client: client,
		system: systemPrompt,
	}
}

func (w *openAIGenerationWorkflow) Run(ctx context.Context, structuredInput map[string]interface{}) (*GenerationOutput, error) {
	userPayload, err := json.Marshal(structuredInput)
	if err != nil {
		return nil, fmt.Errorf("encode generation input: %w", err)
	}
	raw, err := w.client.GenerateJSON(ctx, w.system, string(userPayload))
	if err != nil {
		w.log.Error("Generation workflow failed", "error", err)
		return nil, fmt.Errorf("generation workflow: %w", err)
	}

	out := &GenerationOutput{Content: raw}
	var parsed map[string]interface{}
	if uErr := json.Unmarshal([]byte(raw), &parsed); uErr == nil {
		if meta, ok := parsed["metadata"].(map[string]interface{}); ok {
			out.DerivedMetadata = meta
		}
	}
	return out, nil
}

type openAIRefinementWorkflow struct {
	log    *logger.Logger
	client OpenAIClient
	system string
}

func NewRefinementWorkflow(log *logger.Logger, client OpenAIClient, systemPrompt string) RefinementWorkflow {
	return &openAIRefinementWorkflow{
		log:    log.With("service", "RefinementWorkflow"),
		client: client,
		system: systemPrompt,
	}
}

func (w *openAIRefinementWorkflow) Run(ctx context.Context, currentContent string, instruction string) (string, error) {
	user := fmt.Sprintf("Current content:\n%s\n\nInstruction:\n%s", currentContent, instruction)
	raw, err := w.client.GenerateJSON(ctx, w.system, user)
	if err != nil {
		w.log.Error("Refinement workflow failed", "error", err)
		return "", fmt.Errorf("refinement workflow: %w", err)
	}
	return raw, nil
}

// Package gemini identifies Pokémon cards from preprocessed photos
// using Google's Gemini vision models.
package gemini

import (
	"context"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"

	"github.com/Oustad/kortly-pokemon-api-sub001/internal/errors"
	"github.com/Oustad/kortly-pokemon-api-sub001/internal/logger"
	"github.com/Oustad/kortly-pokemon-api-sub001/pkg/models"
)

// Identifier sends card photos to Gemini and parses the structured
// attributes out of its answer. Safe for concurrent use.
type Identifier struct {
	client    *genai.Client
	modelName string
}

// NewIdentifier dials the Gemini API. The caller owns the returned
// identifier and must Close it on shutdown.
func NewIdentifier(ctx context.Context, apiKey, modelName string) (*Identifier, error) {
	if apiKey == "" {
		return nil, errors.NewValidationError("gemini API key is required", nil)
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, errors.NewInternalError("failed to create gemini client", err)
	}
	logger.WithField("model", modelName).Info("Gemini identifier initialized")
	return &Identifier{client: client, modelName: modelName}, nil
}

func (i *Identifier) Close() error {
	return i.client.Close()
}

// Identify sends the JPEG image to the model with the tier's prompt
// and returns the parsed card attributes.
func (i *Identifier) Identify(ctx context.Context, image []byte, tier string) (*models.CardAttributes, error) {
	model := i.client.GenerativeModel(i.modelName)
	settings := settingsForTier(tier)
	model.SetMaxOutputTokens(settings.maxOutputTokens)
	model.SetTemperature(settings.temperature)
	model.SetTopP(settings.topP)

	start := time.Now()
	resp, err := model.GenerateContent(ctx,
		genai.ImageData("jpeg", image),
		genai.Text(promptForTier(tier)),
	)
	if err != nil {
		return nil, errors.NewProcessingError("gemini request failed", err)
	}

	text := responseText(resp)
	if text == "" {
		return nil, errors.NewProcessingError("gemini returned an empty response", nil)
	}

	attrs, err := ParseResponse(text)
	if err != nil {
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"tier":       tier,
		"model":      i.modelName,
		"name":       attrs.Name,
		"set":        attrs.SetName,
		"number":     attrs.Number,
		"elapsed_ms": time.Since(start).Milliseconds(),
	}).Info("Card identified")
	return attrs, nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				b.WriteString(string(text))
			}
		}
	}
	return b.String()
}

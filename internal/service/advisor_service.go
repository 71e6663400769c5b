package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"trustvest-backend/internal/gemini"
	"trustvest-backend/internal/models"
	"trustvest-backend/internal/util"
)

const chatMaxOutputTokens = 1000

// Provider is the LLM port. The concrete implementation is the Gemini REST
// client; tests substitute a fake.
type Provider interface {
	GenerateContent(ctx context.Context, model string, request *gemini.GenerateContentRequest) (*gemini.GenerateContentResponse, error)
}

// AdvisorService builds prompts for the chat assistant and the multi-agent
// debate generator. Both operations are stateless per call: the full history
// arrives with every request and nothing is retained between calls.
type AdvisorService struct {
	provider Provider
	model    string
	logger   *zap.Logger
}

// DebateRequest carries the context for one generated debate. None of it is
// persisted.
type DebateRequest struct {
	AssetName string                  `json:"asset_name"`
	AssetRisk string                  `json:"asset_risk"`
	Amount    float64                 `json:"amount"`
	User      models.BehaviorSnapshot `json:"user"`
}

func NewAdvisorService(provider Provider, model string, logger *zap.Logger) *AdvisorService {
	return &AdvisorService{
		provider: provider,
		model:    model,
		logger:   logger,
	}
}

// Chat answers the last history entry against the prior entries as context.
// Entries whose role is neither "user" nor "model" are dropped silently;
// the order of retained entries is unchanged.
func (s *AdvisorService) Chat(ctx context.Context, history []models.ChatMessage, userName string) (string, error) {
	if s.provider == nil {
		return "", ErrProviderNotConfigured
	}
	if len(history) == 0 {
		return "", fmt.Errorf("%w: history must not be empty", ErrInvalidInput)
	}

	systemInstruction := fmt.Sprintf(
		"You are a friendly and secure financial assistant for a beginner investor named %s. "+
			"Keep your answers short, simple, and encouraging. "+
			"Focus on educating the user about safety and basics.",
		userName,
	)

	contents := make([]gemini.Content, 0, len(history))
	for _, msg := range history[:len(history)-1] {
		if msg.Role == "user" || msg.Role == "model" {
			contents = append(contents, gemini.Text(msg.Role, msg.Text))
		}
	}
	contents = append(contents, gemini.Text("user", history[len(history)-1].Text))

	request := &gemini.GenerateContentRequest{
		SystemInstruction: &gemini.Content{Parts: []gemini.Part{{Text: systemInstruction}}},
		Contents:          contents,
		GenerationConfig: &gemini.GenerationConfig{
			MaxOutputTokens: chatMaxOutputTokens,
		},
	}

	response, err := s.provider.GenerateContent(ctx, s.model, request)
	if err != nil {
		s.logger.Error("chat generation failed", util.ErrorField(err))
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	return response.Text(), nil
}

// Debate generates a three-persona debate with a synthesis conclusion and a
// verdict, schema-constrained on the provider side. The parsed object is
// returned as-is; agent names and verdict values are not re-validated beyond
// what the schema enforcement guarantees.
func (s *AdvisorService) Debate(ctx context.Context, req *DebateRequest) (*models.DebateResult, error) {
	if s.provider == nil {
		return nil, ErrProviderNotConfigured
	}

	prompt := fmt.Sprintf(
		"You are a Multi-Agent Financial Debate Engine.\n"+
			"User Profile: %s. Emotional Score: %d/100.\n"+
			"Action: User wants to invest %g in %s (%s Risk).\n\n"+
			"Generate a debate between 3 agents:\n"+
			"1. Optimist (Focus on gains/growth)\n"+
			"2. Risk (Focus on downside/security)\n"+
			"3. Data (Focus on historical stats)\n\n"+
			"Then provide a final synthesis conclusion.",
		strings.Join(req.User.BehaviorTags, ", "),
		req.User.EmotionalScore,
		req.Amount,
		req.AssetName,
		req.AssetRisk,
	)

	request := &gemini.GenerateContentRequest{
		Contents: []gemini.Content{gemini.Text("user", prompt)},
		GenerationConfig: &gemini.GenerationConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   debateSchema(),
		},
	}

	response, err := s.provider.GenerateContent(ctx, s.model, request)
	if err != nil {
		s.logger.Error("debate generation failed", util.ErrorField(err))
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	var result models.DebateResult
	if err := json.Unmarshal([]byte(response.Text()), &result); err != nil {
		return nil, fmt.Errorf("%w: malformed structured response: %v", ErrUpstream, err)
	}

	s.logger.Debug("debate generated",
		util.Int("turns", len(result.Turns)),
		util.String("verdict", result.Verdict),
	)

	return &result, nil
}

func debateSchema() *gemini.Schema {
	return &gemini.Schema{
		Type: "OBJECT",
		Properties: map[string]*gemini.Schema{
			"turns": {
				Type: "ARRAY",
				Items: &gemini.Schema{
					Type: "OBJECT",
					Properties: map[string]*gemini.Schema{
						"agent":   {Type: "STRING", Description: "One of: Optimist, Risk, Data"},
						"message": {Type: "STRING"},
					},
					Required: []string{"agent", "message"},
				},
			},
			"conclusion": {Type: "STRING"},
			"verdict":    {Type: "STRING", Description: "One of: PROCEED, CAUTION, WAIT"},
		},
		Required: []string{"turns", "conclusion", "verdict"},
	}
}

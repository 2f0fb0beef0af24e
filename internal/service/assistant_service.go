package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/citadel-archive/citadel-api/internal/dto"
	"github.com/citadel-archive/citadel-api/internal/models"
	"github.com/citadel-archive/citadel-api/pkg/config"
	appErrors "github.com/citadel-archive/citadel-api/pkg/errors"
)

const assistantSystemPrompt = "You are the Citadel AI Agent, a helpful archivist for a personal data vault. " +
	"You help the user organize, find, and reflect on their archived life events. " +
	"Be concise and practical."

// Degraded replies. Any model failure resolves to one of these; the
// chat endpoint itself never errors once credentials exist.
const (
	fallbackNoKey   = "Error communicating with AI. Check your API key."
	fallbackGeneric = "I'm sorry, I couldn't process that."
)

type appStateReader interface {
	Get(ctx context.Context) (*models.AppState, error)
}

// AssistantService talks to the hosted language model for chat and
// classification suggestions. It degrades rather than fails: transport
// or parse errors surface as a canned fallback reply.
type AssistantService struct {
	repo      eventStore
	appStates appStateReader
	client    *http.Client
	cfg       config.AssistantConfig
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAssistantService constructs the service with defaults.
func NewAssistantService(repo eventStore, appStates appStateReader, cfg config.AssistantConfig, validate *validator.Validate, logger *zap.Logger) *AssistantService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = "https://generativelanguage.googleapis.com/v1beta/models"
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-3-flash-preview"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &AssistantService{
		repo:      repo,
		appStates: appStates,
		client:    &http.Client{Timeout: cfg.Timeout},
		cfg:       cfg,
		validator: validate,
		logger:    logger,
	}
}

// Wire types for the generateContent REST call.

type generatePart struct {
	Text string `json:"text"`
}

type generateContent struct {
	Role  string         `json:"role,omitempty"`
	Parts []generatePart `json:"parts"`
}

type generationConfig struct {
	Temperature      float64         `json:"temperature,omitempty"`
	ResponseMimeType string          `json:"responseMimeType,omitempty"`
	ResponseSchema   json.RawMessage `json:"responseSchema,omitempty"`
}

type generateRequest struct {
	Contents          []generateContent `json:"contents"`
	SystemInstruction *generateContent  `json:"systemInstruction,omitempty"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content generateContent `json:"content"`
	} `json:"candidates"`
}

var classificationSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"type": {"type": "string"},
		"title": {"type": "string"},
		"summary": {"type": "string"},
		"tags": {"type": "array", "items": {"type": "string"}}
	},
	"required": ["type", "title", "summary"]
}`)

// Chat answers one user turn. The prior transcript and a digest of the
// five most recent events travel with the request; the server keeps no
// conversation state.
func (s *AssistantService) Chat(ctx context.Context, req dto.ChatRequest) (*dto.ChatResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid chat payload")
	}
	apiKey, err := s.apiKey(ctx)
	if err != nil {
		return nil, err
	}

	digest, total, err := s.recentDigest(ctx)
	if err != nil {
		s.logger.Warn("failed to build event digest for chat", zap.Error(err))
	}

	contents := make([]generateContent, 0, len(req.History)+1)
	for _, turn := range req.History {
		role := "user"
		if turn.Role == models.ChatRoleAssistant {
			role = "model"
		}
		contents = append(contents, generateContent{Role: role, Parts: []generatePart{{Text: turn.Content}}})
	}
	contents = append(contents, generateContent{Role: "user", Parts: []generatePart{{Text: chatPrompt(req.Message, digest, total)}}})

	body := generateRequest{
		Contents:          contents,
		SystemInstruction: &generateContent{Parts: []generatePart{{Text: assistantSystemPrompt}}},
		GenerationConfig:  &generationConfig{Temperature: s.cfg.Temperature},
	}

	text, genErr := s.generate(ctx, apiKey, body)
	reply := dto.ChatResponse{Reply: models.ChatMessage{
		Role:      models.ChatRoleAssistant,
		Timestamp: time.Now().UnixMilli(),
	}}
	if genErr != nil {
		s.logger.Warn("assistant request failed", zap.Error(genErr))
		reply.Reply.Content = fallbackNoKey
		reply.Fallback = true
		return &reply, nil
	}
	if strings.TrimSpace(text) == "" {
		reply.Reply.Content = fallbackGeneric
		reply.Fallback = true
		return &reply, nil
	}
	reply.Reply.Content = text
	return &reply, nil
}

// SuggestClassification asks the model for a structured classification
// of a newly imported file. An unusable reply yields nil, nil; the
// caller keeps the event as-is.
func (s *AssistantService) SuggestClassification(ctx context.Context, req dto.ClassifyRequest) (*models.ClassificationSuggestion, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid classify payload")
	}
	apiKey, err := s.apiKey(ctx)
	if err != nil {
		return nil, err
	}

	prompt := fmt.Sprintf(
		"Suggest a classification for an archived file named %q (mime type %q). "+
			"Respond with JSON: type is one of receipt, essay, note, quote, identity, correspondence, media, other.",
		req.Filename, req.MimeType,
	)
	body := generateRequest{
		Contents: []generateContent{{Role: "user", Parts: []generatePart{{Text: prompt}}}},
		GenerationConfig: &generationConfig{
			Temperature:      s.cfg.Temperature,
			ResponseMimeType: "application/json",
			ResponseSchema:   classificationSchema,
		},
	}

	text, genErr := s.generate(ctx, apiKey, body)
	if genErr != nil {
		s.logger.Warn("classification request failed", zap.Error(genErr))
		return nil, nil
	}

	var suggestion models.ClassificationSuggestion
	if err := json.Unmarshal([]byte(text), &suggestion); err != nil {
		s.logger.Warn("classification reply was not valid JSON", zap.Error(err))
		return nil, nil
	}
	if !models.EventType(suggestion.Type).Valid() {
		suggestion.Type = string(models.EventTypeOther)
	}
	return &suggestion, nil
}

func (s *AssistantService) apiKey(ctx context.Context) (string, error) {
	state, err := s.appStates.Get(ctx)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrStorageFailure.Code, appErrors.ErrStorageFailure.Status, "failed to read settings")
	}
	if state == nil || strings.TrimSpace(state.APIKey) == "" {
		return "", appErrors.ErrAssistantUnavailable
	}
	return state.APIKey, nil
}

func (s *AssistantService) generate(ctx context.Context, apiKey string, body generateRequest) (string, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return "", err
	}
	url := fmt.Sprintf("%s/%s:generateContent?key=%s", strings.TrimRight(s.cfg.Endpoint, "/"), s.cfg.Model, apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("model endpoint returned status %d", resp.StatusCode)
	}

	var decoded generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", err
	}
	if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("model returned no candidates")
	}

	var sb strings.Builder
	for _, part := range decoded.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	return sb.String(), nil
}

// recentDigest returns up to the five newest events as compact context,
// plus the total archive size.
func (s *AssistantService) recentDigest(ctx context.Context) ([]models.EventDigest, int, error) {
	events, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, 0, err
	}
	total := len(events)
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].CreatedAt > events[j].CreatedAt
	})
	if len(events) > 5 {
		events = events[:5]
	}
	digest := make([]models.EventDigest, 0, len(events))
	for _, e := range events {
		digest = append(digest, models.EventDigest{ID: e.ID, Title: e.Title, Type: e.EventType})
	}
	return digest, total, nil
}

func chatPrompt(message string, digest []models.EventDigest, total int) string {
	if len(digest) == 0 {
		return message
	}
	encoded, err := json.Marshal(digest)
	if err != nil {
		return message
	}
	return fmt.Sprintf("The archive holds %d events. Most recent: %s\n\nUser: %s", total, encoded, message)
}

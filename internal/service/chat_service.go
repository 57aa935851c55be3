package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/smartcity/cityapi/internal/domain"
)

const (
	geminiBaseURL      = "https://generativelanguage.googleapis.com"
	geminiPath         = "/v1beta/models/gemini-pro:generateContent"
	maxSessionHistory  = 10
	defaultChatSession = "default"
)

const assistantContext = "You are a helpful Smart City assistant providing information about city services, " +
	"weather, traffic, air quality, and helping citizens. Keep responses concise and focused on city topics. " +
	"If asked about something you cannot provide, politely redirect to relevant city information."

var suggestedPrompts = []string{
	"What's the weather forecast for today?",
	"How's the air quality in the downtown area?",
	"Which roads are congested right now?",
	"Will traffic be better in two hours?",
	"How can I report a pothole on my street?",
	"What's the status of my recent report about the broken streetlight?",
	"Are there any active alerts in my area?",
	"What are the most reported issues in my neighborhood?",
}

type keywordReplies struct {
	keyword string
	replies []string
}

// checked in order, first match wins
var cannedReplies = []keywordReplies{
	{"air quality", []string{
		"The current air quality index is 42, which is in the good range.",
		"Air quality today is moderate with a PM2.5 level of 12.4 µg/m³.",
	}},
	{"weather", []string{
		"Today's weather is partly cloudy with a high of 22°C and a low of 14°C.",
		"The forecast shows a 30% chance of rain later today.",
	}},
	{"traffic", []string{
		"Traffic is moderate across the city centre, with the heaviest congestion on the ring road.",
		"Expect heavier traffic during the evening rush between 16:00 and 18:00.",
	}},
	{"report", []string{
		"You can submit an issue report through the citizen portal or the report form in this app.",
		"The city has addressed most citizen reports submitted in the last month.",
	}},
	{"alert", []string{
		"There are a few active alerts in the city. Check the alerts page for details in your area.",
	}},
	{"hello", []string{
		"Hello! I'm your Smart City assistant. How can I help you today?",
		"Hi there! I can help you with weather, traffic, air quality and city services.",
	}},
}

var generalReplies = []string{
	"I can provide information about weather, air quality, traffic and city services. What would you like to know?",
	"I'm not sure I understand. I can help with weather forecasts, air quality data, traffic conditions or city reports.",
}

// ChatService bridges the city assistant to the Gemini API and keeps per-session history
type ChatService struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	rng        RandomSource
	policy     UpstreamPolicy
	now        func() time.Time

	mu       sync.Mutex
	sessions map[string][]domain.ChatExchange
}

// NewChatService creates a new chat bridge
func NewChatService(apiKey string, rng RandomSource, policy UpstreamPolicy) *ChatService {
	return &ChatService{
		apiKey:  apiKey,
		baseURL: geminiBaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		rng:      rng,
		policy:   policy,
		now:      time.Now,
		sessions: make(map[string][]domain.ChatExchange),
	}
}

// WithBaseURL points the service at another host (used by tests)
func (s *ChatService) WithBaseURL(baseURL string) *ChatService {
	s.baseURL = strings.TrimRight(baseURL, "/")
	return s
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig struct {
		Temperature     float64 `json:"temperature"`
		TopK            int     `json:"topK"`
		TopP            float64 `json:"topP"`
		MaxOutputTokens int     `json:"maxOutputTokens"`
	} `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// Chat answers a message and records the exchange in its session
func (s *ChatService) Chat(ctx context.Context, req domain.ChatRequest) (domain.ChatResponse, error) {
	if strings.TrimSpace(req.Message) == "" {
		return domain.ChatResponse{}, invalidf("Message cannot be empty")
	}
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = defaultChatSession
	}

	s.mu.Lock()
	history := append([]domain.ChatExchange(nil), s.sessions[sessionID]...)
	s.mu.Unlock()

	reply, isMock, err := s.respond(ctx, req.Message, history)
	if err != nil {
		return domain.ChatResponse{}, err
	}

	now := s.now()
	s.mu.Lock()
	exchanges := append(s.sessions[sessionID], domain.ChatExchange{
		UserMessage:       req.Message,
		AssistantResponse: reply,
		Timestamp:         now,
	})
	if len(exchanges) > maxSessionHistory {
		exchanges = exchanges[len(exchanges)-maxSessionHistory:]
	}
	s.sessions[sessionID] = exchanges
	s.mu.Unlock()

	return domain.ChatResponse{
		Response:  reply,
		SessionID: sessionID,
		Timestamp: now,
		IsMock:    isMock,
	}, nil
}

func (s *ChatService) respond(ctx context.Context, message string, history []domain.ChatExchange) (string, bool, error) {
	if s.apiKey == "" {
		return s.syntheticReply(message), true, nil
	}

	reply, err := s.generate(ctx, message, history)
	if err == nil {
		return reply, false, nil
	}
	if s.policy.Strict {
		return "", false, err
	}
	log.Printf("chat: falling back to synthetic reply: %v", err)
	return s.syntheticReply(message), true, nil
}

func (s *ChatService) generate(ctx context.Context, message string, history []domain.ChatExchange) (string, error) {
	payload := geminiRequest{
		Contents: []geminiContent{{Role: "user", Parts: []geminiPart{{Text: assistantContext}}}},
	}
	for _, ex := range history {
		payload.Contents = append(payload.Contents,
			geminiContent{Role: "user", Parts: []geminiPart{{Text: ex.UserMessage}}},
			geminiContent{Role: "model", Parts: []geminiPart{{Text: ex.AssistantResponse}}},
		)
	}
	payload.Contents = append(payload.Contents, geminiContent{Role: "user", Parts: []geminiPart{{Text: message}}})
	payload.GenerationConfig.Temperature = 0.7
	payload.GenerationConfig.TopK = 40
	payload.GenerationConfig.TopP = 0.95
	payload.GenerationConfig.MaxOutputTokens = 200

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("chat: failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+geminiPath, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("chat: failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", s.apiKey)

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("chat: request failed: %w: %w", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("chat: provider returned status %d: %w", resp.StatusCode, ErrUpstreamUnavailable)
	}

	var out geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("chat: failed to decode response: %w: %w", ErrUpstreamUnavailable, err)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("chat: empty candidate list: %w", ErrUpstreamUnavailable)
	}
	return out.Candidates[0].Content.Parts[0].Text, nil
}

func (s *ChatService) syntheticReply(message string) string {
	lower := strings.ToLower(message)
	for _, kr := range cannedReplies {
		if strings.Contains(lower, kr.keyword) {
			return pick(s.rng, kr.replies)
		}
	}
	return pick(s.rng, generalReplies)
}

// Session returns the stored history for a session
func (s *ChatService) Session(ctx context.Context, id string) (domain.ChatSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	history, ok := s.sessions[id]
	if !ok {
		return domain.ChatSession{}, notFoundf("Session %s not found", id)
	}
	return domain.ChatSession{
		SessionID:    id,
		History:      append([]domain.ChatExchange{}, history...),
		MessageCount: len(history),
	}, nil
}

// ClearSession empties a session's history; the session itself stays known
func (s *ChatService) ClearSession(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return notFoundf("Session %s not found", id)
	}
	s.sessions[id] = []domain.ChatExchange{}
	return nil
}

// SuggestedPrompts lists example questions for the assistant
func (s *ChatService) SuggestedPrompts() []string {
	return suggestedPrompts
}

package domain

import "time"

// ChatRequest is a user message to the city assistant
type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
}

// ChatExchange is one question/answer pair kept in a session
type ChatExchange struct {
	UserMessage       string    `json:"user_message"`
	AssistantResponse string    `json:"assistant_response"`
	Timestamp         time.Time `json:"timestamp"`
}

// ChatResponse is the assistant's reply
type ChatResponse struct {
	Response  string    `json:"response"`
	SessionID string    `json:"session_id"`
	Timestamp time.Time `json:"timestamp"`
	IsMock    bool      `json:"is_mock"`
}

// ChatSession is the stored history of a conversation
type ChatSession struct {
	SessionID    string         `json:"session_id"`
	History      []ChatExchange `json:"history"`
	MessageCount int            `json:"message_count"`
}

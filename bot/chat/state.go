package chat

import "time"

// ChatState represents the platform-agnostic workflow state for a user.
// The Data map carries step-scoped values such as the link of the video
// currently being rated and the score held until the comment arrives.
type ChatState struct {
	Platform    string         `json:"platform" bson:"platform"`
	UserID      string         `json:"user_id" bson:"user_id"`
	ChatID      string         `json:"chat_id" bson:"chat_id"`
	WorkflowID  WorkflowID     `json:"workflow_id" bson:"workflow_id"`
	CurrentStep StepID         `json:"current_step" bson:"current_step"`
	Data        map[string]any `json:"data" bson:"data"`
	UpdatedAt   time.Time      `json:"updated_at" bson:"updated_at"`
}

// NewChatState creates a new ChatState with default values.
func NewChatState(platform, userID, chatID string, workflowID WorkflowID, initialStep StepID) *ChatState {
	return &ChatState{
		Platform:    platform,
		UserID:      userID,
		ChatID:      chatID,
		WorkflowID:  workflowID,
		CurrentStep: initialStep,
		Data:        make(map[string]any),
		UpdatedAt:   time.Now(),
	}
}

// GetString retrieves a string value from the state data.
func (s *ChatState) GetString(key string) string {
	if v, ok := s.Data[key]; ok {
		if str, ok := v.(string); ok {
			return str
		}
	}
	return ""
}

// GetInt64 retrieves an integer value from the state data. Values loaded
// from persistence may come back as other numeric types.
func (s *ChatState) GetInt64(key string) int64 {
	if v, ok := s.Data[key]; ok {
		switch val := v.(type) {
		case int64:
			return val
		case int:
			return int64(val)
		case int32:
			return int64(val)
		case float64:
			return int64(val)
		}
	}
	return 0
}

// Set stores a value in the state data.
func (s *ChatState) Set(key string, value any) {
	if s.Data == nil {
		s.Data = make(map[string]any)
	}
	s.Data[key] = value
}

// Unset removes a value from the state data.
func (s *ChatState) Unset(key string) {
	delete(s.Data, key)
}

// Clone returns a deep copy with its own Data map, so callers can mutate
// the copy without sharing memory with the stored state.
func (s *ChatState) Clone() *ChatState {
	copied := *s
	copied.Data = make(map[string]any, len(s.Data))
	for k, v := range s.Data {
		copied.Data[k] = v
	}
	return &copied
}

// MergeData merges additional data into the state.
func (s *ChatState) MergeData(data map[string]any) {
	if s.Data == nil {
		s.Data = make(map[string]any)
	}
	for k, v := range data {
		s.Data[k] = v
	}
}

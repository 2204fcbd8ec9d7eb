package chat

import (
	"context"
	"sync"
)

// ChatStateRepository defines the database operations for chat state.
type ChatStateRepository interface {
	SaveChatState(ctx context.Context, state *ChatState) error
	LoadChatState(ctx context.Context, platform, userID string) (*ChatState, error)
	DeleteChatState(ctx context.Context, platform, userID string) error
}

// MongoChatStateStorage adapts the database repository to the
// ChatStateStorage interface. Used when sessions should survive restarts.
type MongoChatStateStorage struct {
	repo ChatStateRepository
}

// NewMongoChatStateStorage creates a new MongoDB chat state storage.
func NewMongoChatStateStorage(repo ChatStateRepository) *MongoChatStateStorage {
	return &MongoChatStateStorage{repo: repo}
}

func (s *MongoChatStateStorage) Save(ctx context.Context, state *ChatState) error {
	return s.repo.SaveChatState(ctx, state)
}

func (s *MongoChatStateStorage) Load(ctx context.Context, platform, userID string) (*ChatState, error) {
	return s.repo.LoadChatState(ctx, platform, userID)
}

func (s *MongoChatStateStorage) Delete(ctx context.Context, platform, userID string) error {
	return s.repo.DeleteChatState(ctx, platform, userID)
}

// MemoryChatStateStorage keeps chat states in process memory. Sessions are
// ephemeral, so this is the default storage; state is simply gone after a
// restart and the user starts over from the menu.
type MemoryChatStateStorage struct {
	mu     sync.RWMutex
	states map[string]*ChatState
}

// NewMemoryChatStateStorage creates an in-memory chat state storage.
func NewMemoryChatStateStorage() *MemoryChatStateStorage {
	return &MemoryChatStateStorage{
		states: make(map[string]*ChatState),
	}
}

func stateKey(platform, userID string) string {
	return platform + "/" + userID
}

// Save and Load copy the state both ways, matching the Mongo storage's
// marshal/decode semantics: no caller ever holds a pointer into the map.
func (s *MemoryChatStateStorage) Save(_ context.Context, state *ChatState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[stateKey(state.Platform, state.UserID)] = state.Clone()
	return nil
}

func (s *MemoryChatStateStorage) Load(_ context.Context, platform, userID string) (*ChatState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.states[stateKey(platform, userID)]
	if !ok {
		return nil, nil
	}
	return state.Clone(), nil
}

func (s *MemoryChatStateStorage) Delete(_ context.Context, platform, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, stateKey(platform, userID))
	return nil
}

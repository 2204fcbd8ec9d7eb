package chat

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeMessenger records everything a step tried to deliver.
type fakeMessenger struct {
	texts []string
}

func (m *fakeMessenger) SendText(_ string, text string) error {
	m.texts = append(m.texts, text)
	return nil
}

func (m *fakeMessenger) SendMenu(_ string, text string, _ [][]MenuButton) error {
	m.texts = append(m.texts, text)
	return nil
}

func (m *fakeMessenger) SendInlineOptions(_ string, text string, _ []InlineButton) error {
	m.texts = append(m.texts, text)
	return nil
}

func (m *fakeMessenger) SendInlineGrid(_ string, text string, _ [][]InlineButton) error {
	m.texts = append(m.texts, text)
	return nil
}

func (m *fakeMessenger) SendFile(_ string, _ FileMessage) error {
	return nil
}

// stubStep drives transitions from canned results.
type stubStep struct {
	id      StepID
	enter   func(state *ChatState) StepResult
	onInput func(state *ChatState, input UserInput) StepResult
}

func (s *stubStep) ID() StepID { return s.id }

func (s *stubStep) Enter(_ context.Context, _ Messenger, state *ChatState) StepResult {
	if s.enter == nil {
		return StepResult{}
	}
	return s.enter(state)
}

func (s *stubStep) HandleInput(_ context.Context, _ Messenger, state *ChatState, input UserInput) StepResult {
	if s.onInput == nil {
		return StepResult{}
	}
	return s.onInput(state, input)
}

type stubWorkflow struct {
	id      WorkflowID
	initial StepID
	steps   map[StepID]Step
}

func (w *stubWorkflow) ID() WorkflowID      { return w.id }
func (w *stubWorkflow) InitialStep() StepID { return w.initial }
func (w *stubWorkflow) GetStep(id StepID) (Step, bool) {
	step, ok := w.steps[id]
	return step, ok
}

func newTestEngine(t *testing.T, w Workflow) (*ChatEngine, *MemoryChatStateStorage) {
	t.Helper()
	storage := NewMemoryChatStateStorage()
	engine := NewChatEngine(storage, slog.New(slog.NewTextHandler(io.Discard, nil)))
	engine.RegisterWorkflow(w)
	return engine, storage
}

func TestEngineStartsDefaultWorkflowForUnknownUser(t *testing.T) {
	w := &stubWorkflow{
		id:      "wf",
		initial: "first",
		steps: map[StepID]Step{
			"first": &stubStep{
				id: "first",
				enter: func(*ChatState) StepResult {
					return StepResult{}
				},
			},
		},
	}
	engine, storage := newTestEngine(t, w)
	m := &fakeMessenger{}

	// Any event from a user without state lands in the default workflow.
	require.NoError(t, engine.HandleMessage(context.Background(), m, "telegram", "42", "42", "hello"))

	state, err := storage.Load(context.Background(), "telegram", "42")
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, StepID("first"), state.CurrentStep)
	assert.Equal(t, WorkflowID("wf"), state.WorkflowID)
}

func TestEngineTransitionAndCompletion(t *testing.T) {
	w := &stubWorkflow{
		id:      "wf",
		initial: "first",
		steps: map[StepID]Step{
			"first": &stubStep{
				id: "first",
				onInput: func(_ *ChatState, input UserInput) StepResult {
					if input.Text != "go" {
						return StepResult{}
					}
					return StepResult{
						NextStep:    "second",
						UpdateState: map[string]any{"carried": "value"},
					}
				},
			},
			"second": &stubStep{
				id: "second",
				onInput: func(state *ChatState, _ UserInput) StepResult {
					return StepResult{Complete: true}
				},
			},
		},
	}
	engine, storage := newTestEngine(t, w)
	m := &fakeMessenger{}
	ctx := context.Background()

	require.NoError(t, engine.StartWorkflow(ctx, m, "telegram", "42", "42", "wf"))

	// Input the step ignores keeps the state where it was.
	require.NoError(t, engine.HandleMessage(ctx, m, "telegram", "42", "42", "noise"))
	state, err := storage.Load(ctx, "telegram", "42")
	require.NoError(t, err)
	assert.Equal(t, StepID("first"), state.CurrentStep)

	require.NoError(t, engine.HandleMessage(ctx, m, "telegram", "42", "42", "go"))
	state, err = storage.Load(ctx, "telegram", "42")
	require.NoError(t, err)
	assert.Equal(t, StepID("second"), state.CurrentStep)
	assert.Equal(t, "value", state.GetString("carried"), "UpdateState merges before the transition")

	// Completion removes the state entirely.
	require.NoError(t, engine.HandleMessage(ctx, m, "telegram", "42", "42", "done"))
	state, err = storage.Load(ctx, "telegram", "42")
	require.NoError(t, err)
	assert.Nil(t, state)
}

func TestEngineFollowsAutoTransitions(t *testing.T) {
	// A step whose Enter immediately forwards should not strand the user.
	w := &stubWorkflow{
		id:      "wf",
		initial: "first",
		steps: map[StepID]Step{
			"first": &stubStep{
				id: "first",
				enter: func(*ChatState) StepResult {
					return StepResult{NextStep: "second"}
				},
			},
			"second": &stubStep{id: "second"},
		},
	}
	engine, storage := newTestEngine(t, w)
	ctx := context.Background()

	require.NoError(t, engine.StartWorkflow(ctx, &fakeMessenger{}, "telegram", "42", "42", "wf"))

	state, err := storage.Load(ctx, "telegram", "42")
	require.NoError(t, err)
	assert.Equal(t, StepID("second"), state.CurrentStep)
}

func TestEngineRejectsUnknownWorkflow(t *testing.T) {
	engine, _ := newTestEngine(t, &stubWorkflow{id: "wf", initial: "first", steps: map[StepID]Step{"first": &stubStep{id: "first"}}})
	err := engine.StartWorkflow(context.Background(), &fakeMessenger{}, "telegram", "42", "42", "nope")
	assert.Error(t, err)
}

func TestEngineSerializesEventsPerUser(t *testing.T) {
	// The dispatcher hands updates to a goroutine pool with no per-user
	// keying, so two taps from one user arrive concurrently. Each event
	// reads the counter, lingers the way a step does while sending over
	// the network, and writes the incremented value back; without
	// serialization increments get lost and the shared Data map races.
	w := &stubWorkflow{
		id:      "wf",
		initial: "count",
		steps: map[StepID]Step{
			"count": &stubStep{
				id: "count",
				onInput: func(state *ChatState, _ UserInput) StepResult {
					seen := state.GetInt64("count")
					time.Sleep(time.Millisecond)
					return StepResult{UpdateState: map[string]any{"count": seen + 1}}
				},
			},
		},
	}
	engine, storage := newTestEngine(t, w)
	ctx := context.Background()

	require.NoError(t, engine.StartWorkflow(ctx, &fakeMessenger{}, "telegram", "42", "42", "wf"))

	const events = 8
	var wg sync.WaitGroup
	for i := 0; i < events; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, engine.HandleMessage(ctx, &fakeMessenger{}, "telegram", "42", "42", "tap"))
		}()
	}
	wg.Wait()

	state, err := storage.Load(ctx, "telegram", "42")
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, int64(events), state.GetInt64("count"))
}

func TestMemoryStorageReturnsIndependentCopies(t *testing.T) {
	storage := NewMemoryChatStateStorage()
	ctx := context.Background()

	saved := NewChatState("telegram", "1", "1", "wf", "a")
	saved.Set("key", "original")
	require.NoError(t, storage.Save(ctx, saved))

	// Mutations after the fact must not leak into the stored state,
	// matching what a decode-from-database storage would do.
	saved.Set("key", "mutated-after-save")

	loaded, err := storage.Load(ctx, "telegram", "1")
	require.NoError(t, err)
	assert.Equal(t, "original", loaded.GetString("key"))

	loaded.Set("key", "mutated-after-load")
	again, err := storage.Load(ctx, "telegram", "1")
	require.NoError(t, err)
	assert.Equal(t, "original", again.GetString("key"))
}

func TestMemoryStorageIsolatesPlatforms(t *testing.T) {
	storage := NewMemoryChatStateStorage()
	ctx := context.Background()

	require.NoError(t, storage.Save(ctx, NewChatState("telegram", "1", "1", "wf", "a")))
	require.NoError(t, storage.Save(ctx, NewChatState("discord", "1", "1", "wf", "b")))

	state, err := storage.Load(ctx, "telegram", "1")
	require.NoError(t, err)
	assert.Equal(t, StepID("a"), state.CurrentStep)

	require.NoError(t, storage.Delete(ctx, "telegram", "1"))
	state, err = storage.Load(ctx, "telegram", "1")
	require.NoError(t, err)
	assert.Nil(t, state)

	state, err = storage.Load(ctx, "discord", "1")
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, StepID("b"), state.CurrentStep)
}

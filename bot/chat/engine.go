package chat

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// ChatEngine is the platform-agnostic workflow orchestrator. Events for
// the same user serialize on a per-user lock, so a user's state updates
// apply in arrival order even though the dispatcher fans updates out to a
// goroutine pool. There is no cross-user lock; correctness under
// concurrent raters is delegated to the store's atomic operations.
type ChatEngine struct {
	workflows       map[WorkflowID]Workflow
	defaultWorkflow WorkflowID
	storage         ChatStateStorage
	log             *slog.Logger

	userMu sync.Mutex
	users  map[string]*sync.Mutex
}

// NewChatEngine creates a new chat engine.
func NewChatEngine(storage ChatStateStorage, log *slog.Logger) *ChatEngine {
	return &ChatEngine{
		workflows: make(map[WorkflowID]Workflow),
		storage:   storage,
		log:       log,
		users:     make(map[string]*sync.Mutex),
	}
}

// userLock returns the serialization lock for one user's events.
func (e *ChatEngine) userLock(platform, userID string) *sync.Mutex {
	e.userMu.Lock()
	defer e.userMu.Unlock()
	key := stateKey(platform, userID)
	lock, ok := e.users[key]
	if !ok {
		lock = &sync.Mutex{}
		e.users[key] = lock
	}
	return lock
}

// RegisterWorkflow adds a workflow to the engine. The first registered
// workflow becomes the default started for users without state.
func (e *ChatEngine) RegisterWorkflow(w Workflow) {
	e.workflows[w.ID()] = w
	if e.defaultWorkflow == "" {
		e.defaultWorkflow = w.ID()
	}
	e.log.Info("chat engine: registered workflow", slog.String("workflow_id", string(w.ID())))
}

// StartWorkflow begins a workflow for a user, replacing any stale state.
func (e *ChatEngine) StartWorkflow(ctx context.Context, m Messenger, platform, userID, chatID string, workflowID WorkflowID) error {
	lock := e.userLock(platform, userID)
	lock.Lock()
	defer lock.Unlock()

	return e.startWorkflow(ctx, m, platform, userID, chatID, workflowID)
}

// startWorkflow is StartWorkflow without the user lock; callers must hold it.
func (e *ChatEngine) startWorkflow(ctx context.Context, m Messenger, platform, userID, chatID string, workflowID WorkflowID) error {
	w, ok := e.workflows[workflowID]
	if !ok {
		return fmt.Errorf("workflow not found: %s", workflowID)
	}

	state := NewChatState(platform, userID, chatID, workflowID, w.InitialStep())
	if err := e.storage.Save(ctx, state); err != nil {
		return fmt.Errorf("saving initial state: %w", err)
	}

	step, ok := w.GetStep(w.InitialStep())
	if !ok {
		return fmt.Errorf("initial step not found: %s", w.InitialStep())
	}

	e.log.Info("starting workflow",
		slog.String("user_id", userID),
		slog.String("workflow_id", string(workflowID)),
	)

	result := step.Enter(ctx, m, state)
	return e.processResult(ctx, m, state, w, result)
}

// HandleMessage processes a text message from any platform.
func (e *ChatEngine) HandleMessage(ctx context.Context, m Messenger, platform, userID, chatID, text string) error {
	return e.handleInput(ctx, m, platform, userID, chatID, UserInput{Text: text})
}

// HandleCallback processes a callback/inline button press from any platform.
func (e *ChatEngine) HandleCallback(ctx context.Context, m Messenger, platform, userID, chatID, data string) error {
	return e.handleInput(ctx, m, platform, userID, chatID, UserInput{CallbackData: data})
}

func (e *ChatEngine) handleInput(ctx context.Context, m Messenger, platform, userID, chatID string, input UserInput) error {
	lock := e.userLock(platform, userID)
	lock.Lock()
	defer lock.Unlock()

	state, err := e.storage.Load(ctx, platform, userID)
	if err != nil {
		return fmt.Errorf("loading state: %w", err)
	}

	// No active workflow: drop the event into a fresh default workflow.
	if state == nil {
		return e.startWorkflow(ctx, m, platform, userID, chatID, e.defaultWorkflow)
	}

	w, ok := e.workflows[state.WorkflowID]
	if !ok {
		return fmt.Errorf("workflow not found: %s", state.WorkflowID)
	}

	step, ok := w.GetStep(state.CurrentStep)
	if !ok {
		return fmt.Errorf("step not found: %s", state.CurrentStep)
	}

	result := step.HandleInput(ctx, m, state, input)
	return e.processResult(ctx, m, state, w, result)
}

// processResult applies a step result: merge state updates, complete or
// transition, enter the next step. Auto-transitions from Enter are
// followed until a step settles.
func (e *ChatEngine) processResult(ctx context.Context, m Messenger, state *ChatState, w Workflow, result StepResult) error {
	for {
		if result.Error != nil {
			e.log.Error("step error",
				slog.String("user_id", state.UserID),
				slog.String("step_id", string(state.CurrentStep)),
				slog.String("error", result.Error.Error()),
			)
			return result.Error
		}

		if result.UpdateState != nil {
			state.MergeData(result.UpdateState)
		}
		state.UpdatedAt = time.Now()

		if result.Complete {
			e.log.Info("workflow completed",
				slog.String("user_id", state.UserID),
				slog.String("workflow_id", string(state.WorkflowID)),
			)
			return e.storage.Delete(ctx, state.Platform, state.UserID)
		}

		if result.NextStep == "" || result.NextStep == state.CurrentStep {
			return e.storage.Save(ctx, state)
		}

		state.CurrentStep = result.NextStep
		if err := e.storage.Save(ctx, state); err != nil {
			return fmt.Errorf("saving state after transition: %w", err)
		}

		step, ok := w.GetStep(result.NextStep)
		if !ok {
			return fmt.Errorf("next step not found: %s", result.NextStep)
		}

		e.log.Debug("transitioning to step",
			slog.String("user_id", state.UserID),
			slog.String("step_id", string(result.NextStep)),
		)

		result = step.Enter(ctx, m, state)
	}
}

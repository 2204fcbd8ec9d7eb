package mainmenu

import (
	"context"

	"ClipRate/bot/chat"
	"ClipRate/entity"
)

// Workflow ID
const (
	WorkflowID chat.WorkflowID = "mainmenu"
)

// Step IDs. The menu is the idle stage of both flows; a submission cycle
// runs main_menu -> submit_links -> confirm_more -> main_menu, a rating
// cycle runs main_menu -> rate_score -> rate_comment -> rate_score|main_menu.
const (
	StepMainMenu    chat.StepID = "main_menu"
	StepSubmitLinks chat.StepID = "submit_links"
	StepConfirmMore chat.StepID = "confirm_more"
	StepRateScore   chat.StepID = "rate_score"
	StepRateComment chat.StepID = "rate_comment"
)

// State data keys
const (
	KeyCurrentVideo = "current_video_link"
	KeyHeldScore    = "held_score"
	KeyLastBatch    = "last_batch_size"
)

// Menu button texts
const (
	BtnSubmitVideos = "🎥 Submit videos"
	BtnStartRating  = "⭐ Rate videos"
	BtnHelp         = "❓ Help"
)

// RatingService defines the rating operations the workflow needs.
type RatingService interface {
	SubmitLinks(ctx context.Context, text string) ([]string, error)
	NextUnrated(ctx context.Context) (*entity.Video, error)
	ParseScore(text string) (int64, error)
	CompleteRating(ctx context.Context, link string, score int64, comment string) error
	ScoreRange() (int64, int64)
	MinCommentLength() int
}

// MainMenuWorkflow implements the submit-and-rate workflow.
type MainMenuWorkflow struct {
	steps         map[chat.StepID]chat.Step
	ratingService RatingService
}

// NewMainMenuWorkflow creates a new main menu workflow.
func NewMainMenuWorkflow(ratingService RatingService) *MainMenuWorkflow {
	w := &MainMenuWorkflow{
		steps:         make(map[chat.StepID]chat.Step),
		ratingService: ratingService,
	}

	w.registerSteps()

	return w
}

// ID returns the workflow ID.
func (w *MainMenuWorkflow) ID() chat.WorkflowID {
	return WorkflowID
}

// InitialStep returns the first step.
func (w *MainMenuWorkflow) InitialStep() chat.StepID {
	return StepMainMenu
}

// GetStep returns a step by ID.
func (w *MainMenuWorkflow) GetStep(id chat.StepID) (chat.Step, bool) {
	step, ok := w.steps[id]
	return step, ok
}

// registerSteps registers all workflow steps.
func (w *MainMenuWorkflow) registerSteps() {
	w.steps[StepMainMenu] = NewMainMenuStep(w.ratingService)
	w.steps[StepSubmitLinks] = NewSubmitLinksStep(w.ratingService)
	w.steps[StepConfirmMore] = NewConfirmMoreStep()
	w.steps[StepRateScore] = NewRateScoreStep(w.ratingService)
	w.steps[StepRateComment] = NewRateCommentStep(w.ratingService)
}

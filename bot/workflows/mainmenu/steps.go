package mainmenu

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ClipRate/bot/chat"
	"ClipRate/internal/service/rating"
)

const msgStoreFailure = "Something went wrong on our side. Please try again."

// BaseStep provides common functionality for all steps.
type BaseStep struct {
	id chat.StepID
}

func (s *BaseStep) ID() chat.StepID {
	return s.id
}

func (s *BaseStep) Enter(ctx context.Context, m chat.Messenger, state *chat.ChatState) chat.StepResult {
	return chat.StepResult{}
}

func (s *BaseStep) HandleInput(ctx context.Context, m chat.Messenger, state *chat.ChatState, input chat.UserInput) chat.StepResult {
	return chat.StepResult{}
}

// menuRows is the reply keyboard shown on the main menu.
func menuRows() [][]chat.MenuButton {
	return [][]chat.MenuButton{
		{{Text: BtnSubmitVideos}, {Text: BtnStartRating}},
		{{Text: BtnHelp}},
	}
}

// MainMenuStep - the idle stage; routes to submission or rating
type MainMenuStep struct {
	BaseStep
	ratingService RatingService
}

func NewMainMenuStep(ratingService RatingService) *MainMenuStep {
	return &MainMenuStep{
		BaseStep:      BaseStep{id: StepMainMenu},
		ratingService: ratingService,
	}
}

func (s *MainMenuStep) Enter(ctx context.Context, m chat.Messenger, state *chat.ChatState) chat.StepResult {
	// A fresh menu entry means no rating is in progress.
	state.Unset(KeyCurrentVideo)
	state.Unset(KeyHeldScore)

	err := m.SendMenu(state.ChatID, "Hi! Pick an action 👇", menuRows())
	if err != nil {
		return chat.StepResult{Error: err}
	}
	return chat.StepResult{}
}

func (s *MainMenuStep) HandleInput(ctx context.Context, m chat.Messenger, state *chat.ChatState, input chat.UserInput) chat.StepResult {
	text := strings.TrimSpace(input.Text)
	if matched := chat.MatchNumberToOption(text, menuRows()); matched != "" {
		text = matched
	}

	switch text {
	case BtnSubmitVideos:
		return chat.StepResult{NextStep: StepSubmitLinks}
	case BtnStartRating:
		return s.beginRating(ctx, m, state)
	case BtnHelp:
		min, max := s.ratingService.ScoreRange()
		help := fmt.Sprintf(
			"Submit links to videos you want others to see, or rate videos submitted by other users.\n"+
				"A rating is a score from %d to %d plus a short comment (at least %d characters).",
			min, max, s.ratingService.MinCommentLength(),
		)
		if err := m.SendText(state.ChatID, help); err != nil {
			return chat.StepResult{Error: err}
		}
		return chat.StepResult{}
	}

	return chat.StepResult{}
}

// beginRating picks an unrated video or reports that none are left.
func (s *MainMenuStep) beginRating(ctx context.Context, m chat.Messenger, state *chat.ChatState) chat.StepResult {
	video, err := s.ratingService.NextUnrated(ctx)
	if err != nil {
		if sendErr := m.SendText(state.ChatID, msgStoreFailure); sendErr != nil {
			return chat.StepResult{Error: sendErr}
		}
		return chat.StepResult{}
	}
	if video == nil {
		if err := m.SendText(state.ChatID, "All videos have been rated already. Check back later ✨"); err != nil {
			return chat.StepResult{Error: err}
		}
		return chat.StepResult{}
	}

	return chat.StepResult{
		NextStep:    StepRateScore,
		UpdateState: map[string]any{KeyCurrentVideo: video.Link},
	}
}

// SubmitLinksStep - collect a batch of video links
type SubmitLinksStep struct {
	BaseStep
	ratingService RatingService
}

func NewSubmitLinksStep(ratingService RatingService) *SubmitLinksStep {
	return &SubmitLinksStep{
		BaseStep:      BaseStep{id: StepSubmitLinks},
		ratingService: ratingService,
	}
}

func (s *SubmitLinksStep) Enter(ctx context.Context, m chat.Messenger, state *chat.ChatState) chat.StepResult {
	err := m.SendText(state.ChatID, "Send me the video links, separated by spaces or new lines.")
	if err != nil {
		return chat.StepResult{Error: err}
	}
	return chat.StepResult{}
}

func (s *SubmitLinksStep) HandleInput(ctx context.Context, m chat.Messenger, state *chat.ChatState, input chat.UserInput) chat.StepResult {
	links, err := s.ratingService.SubmitLinks(ctx, input.Text)
	if err != nil {
		var invalidErr *rating.InvalidLinksError
		var msg string
		switch {
		case errors.As(err, &invalidErr):
			msg = fmt.Sprintf(
				"These don't look like valid links:\n%s\n\nNothing was saved. Please fix them and resend the whole batch.",
				strings.Join(invalidErr.Tokens, "\n"),
			)
		case errors.Is(err, rating.ErrEmptySubmission):
			msg = "Please send at least one link."
		default:
			msg = msgStoreFailure
		}
		if sendErr := m.SendText(state.ChatID, msg); sendErr != nil {
			return chat.StepResult{Error: sendErr}
		}
		return chat.StepResult{}
	}

	return chat.StepResult{
		NextStep:    StepConfirmMore,
		UpdateState: map[string]any{KeyLastBatch: len(links)},
	}
}

// ConfirmMoreStep - submitted batch accepted, offer another round
type ConfirmMoreStep struct {
	BaseStep
}

func NewConfirmMoreStep() *ConfirmMoreStep {
	return &ConfirmMoreStep{BaseStep: BaseStep{id: StepConfirmMore}}
}

func (s *ConfirmMoreStep) Enter(ctx context.Context, m chat.Messenger, state *chat.ChatState) chat.StepResult {
	count := state.GetInt64(KeyLastBatch)
	err := m.SendInlineOptions(state.ChatID,
		fmt.Sprintf("Saved %d link(s) ✅ Want to submit more?", count),
		[]chat.InlineButton{
			{Text: "Submit more", Data: chat.BuildCallback(chat.ActionYes)},
			{Text: "Back to menu", Data: chat.BuildCallback(chat.ActionNo)},
		})
	if err != nil {
		return chat.StepResult{Error: err}
	}
	return chat.StepResult{}
}

func (s *ConfirmMoreStep) HandleInput(ctx context.Context, m chat.Messenger, state *chat.ChatState, input chat.UserInput) chat.StepResult {
	cb := chat.ParseCallback(input.CallbackData)
	if cb == nil {
		// Plain text instead of a button press: show the choice again so
		// the user is never left without a reply.
		return s.Enter(ctx, m, state)
	}
	if cb.IsYes() {
		return chat.StepResult{NextStep: StepSubmitLinks}
	}
	if cb.IsNo() {
		return chat.StepResult{NextStep: StepMainMenu}
	}
	return chat.StepResult{}
}

// RateScoreStep - ask for a score for the current video
type RateScoreStep struct {
	BaseStep
	ratingService RatingService
}

func NewRateScoreStep(ratingService RatingService) *RateScoreStep {
	return &RateScoreStep{
		BaseStep:      BaseStep{id: StepRateScore},
		ratingService: ratingService,
	}
}

// scoreRows lays the score buttons out in rows of five.
func (s *RateScoreStep) scoreRows() [][]chat.InlineButton {
	min, max := s.ratingService.ScoreRange()
	var rows [][]chat.InlineButton
	var row []chat.InlineButton
	for score := min; score <= max; score++ {
		row = append(row, chat.InlineButton{
			Text: fmt.Sprintf("%d", score),
			Data: chat.BuildCallback(chat.ActionScore, fmt.Sprintf("%d", score)),
		})
		if len(row) == 5 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return rows
}

func (s *RateScoreStep) Enter(ctx context.Context, m chat.Messenger, state *chat.ChatState) chat.StepResult {
	link := state.GetString(KeyCurrentVideo)
	if link == "" {
		return chat.StepResult{NextStep: StepMainMenu}
	}

	min, max := s.ratingService.ScoreRange()
	err := m.SendInlineGrid(state.ChatID,
		fmt.Sprintf("Rate this video:\n%s\n\nPick a score from %d to %d, or type it.", link, min, max),
		s.scoreRows())
	if err != nil {
		return chat.StepResult{Error: err}
	}
	return chat.StepResult{}
}

func (s *RateScoreStep) HandleInput(ctx context.Context, m chat.Messenger, state *chat.ChatState, input chat.UserInput) chat.StepResult {
	raw := strings.TrimSpace(input.Text)
	if cb := chat.ParseCallback(input.CallbackData); cb != nil {
		raw = cb.ScoreValue()
	}

	score, err := s.ratingService.ParseScore(raw)
	if err != nil {
		if sendErr := m.SendText(state.ChatID, err.Error()); sendErr != nil {
			return chat.StepResult{Error: sendErr}
		}
		return chat.StepResult{}
	}

	return chat.StepResult{
		NextStep:    StepRateComment,
		UpdateState: map[string]any{KeyHeldScore: score},
	}
}

// RateCommentStep - collect the comment and complete the rating
type RateCommentStep struct {
	BaseStep
	ratingService RatingService
}

func NewRateCommentStep(ratingService RatingService) *RateCommentStep {
	return &RateCommentStep{
		BaseStep:      BaseStep{id: StepRateComment},
		ratingService: ratingService,
	}
}

func (s *RateCommentStep) Enter(ctx context.Context, m chat.Messenger, state *chat.ChatState) chat.StepResult {
	err := m.SendText(state.ChatID,
		fmt.Sprintf("Now write a comment for your rating (at least %d characters).", s.ratingService.MinCommentLength()))
	if err != nil {
		return chat.StepResult{Error: err}
	}
	return chat.StepResult{}
}

func (s *RateCommentStep) HandleInput(ctx context.Context, m chat.Messenger, state *chat.ChatState, input chat.UserInput) chat.StepResult {
	link := state.GetString(KeyCurrentVideo)
	if link == "" {
		// Session lost its target, e.g. after a restart with persisted
		// state from an older shape. Nothing to complete.
		return chat.StepResult{NextStep: StepMainMenu}
	}
	score := state.GetInt64(KeyHeldScore)

	err := s.ratingService.CompleteRating(ctx, link, score, input.Text)
	if err != nil {
		var tooShort *rating.CommentTooShortError
		switch {
		case errors.As(err, &tooShort):
			if sendErr := m.SendText(state.ChatID, err.Error()); sendErr != nil {
				return chat.StepResult{Error: sendErr}
			}
			return chat.StepResult{}
		case errors.Is(err, rating.ErrVideoNotFound):
			if sendErr := m.SendText(state.ChatID, "That video is gone, someone cleared the table while you were rating. Back to the menu."); sendErr != nil {
				return chat.StepResult{Error: sendErr}
			}
			return chat.StepResult{NextStep: StepMainMenu}
		default:
			// Store failure: keep the state so the user can resend the
			// same comment once the store is back.
			if sendErr := m.SendText(state.ChatID, msgStoreFailure); sendErr != nil {
				return chat.StepResult{Error: sendErr}
			}
			return chat.StepResult{}
		}
	}

	if err := m.SendText(state.ChatID, "Rating saved ✅"); err != nil {
		return chat.StepResult{Error: err}
	}

	// Rating loop: move straight to the next unrated video if there is one.
	video, err := s.ratingService.NextUnrated(ctx)
	if err != nil {
		if sendErr := m.SendText(state.ChatID, msgStoreFailure); sendErr != nil {
			return chat.StepResult{Error: sendErr}
		}
		return chat.StepResult{NextStep: StepMainMenu}
	}
	if video == nil {
		if err := m.SendText(state.ChatID, "You've rated every video there is 🎉"); err != nil {
			return chat.StepResult{Error: err}
		}
		return chat.StepResult{NextStep: StepMainMenu}
	}

	return chat.StepResult{
		NextStep:    StepRateScore,
		UpdateState: map[string]any{KeyCurrentVideo: video.Link},
	}
}

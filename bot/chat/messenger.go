package chat

import "io"

// Messenger is the platform UI adapter interface. Each platform implements
// this to handle platform-specific message delivery; the workflow steps
// only ever talk to this interface.
type Messenger interface {
	SendText(chatID, text string) error
	SendMenu(chatID, text string, rows [][]MenuButton) error
	SendInlineOptions(chatID, text string, buttons []InlineButton) error
	SendInlineGrid(chatID, text string, rows [][]InlineButton) error
	SendFile(chatID string, file FileMessage) error
}

// MenuButton represents a button in a reply/menu keyboard.
type MenuButton struct {
	Text string
}

// InlineButton represents an inline button with callback data.
type InlineButton struct {
	Text string
	Data string
}

// FileMessage represents a document to deliver to the chat.
type FileMessage struct {
	Filename string
	Caption  string
	Reader   io.Reader
}

// UserInput represents a normalized event from any platform.
type UserInput struct {
	Text         string // Regular message text
	CallbackData string // Inline button press or matched number
}

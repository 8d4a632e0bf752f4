package conversation

import "context"

// Turn is one inbound free-text message from a conversation.
type Turn struct {
	ChatID int64
	Text   string
}

// Selection is one inbound button press tied to a conversation.
type Selection struct {
	CallbackID string
	ChatID     int64
	MessageID  int
	Data       string
}

// Button is a single inline affordance rendered with a prompt.
type Button struct {
	Label string
	Data  string
}

// Transport is the messaging capability the collectors and flows consume.
// The Telegram adapter implements it; tests use fakes.
type Transport interface {
	SendText(ctx context.Context, chatID int64, text string) error
	SendButtons(ctx context.Context, chatID int64, text string, buttons [][]Button) (int, error)
	SendLinkButton(ctx context.Context, chatID int64, text string, label string, url string) error
	SendPhoto(ctx context.Context, chatID int64, path string, caption string, buttons [][]Button) error
	AcknowledgeSelection(ctx context.Context, callbackID string) error
	ClearButtons(ctx context.Context, chatID int64, messageID int) error
}

package conversation

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/joker-bingo/payment-bot/src/internal/logger"
)

// ErrTimeout is returned when a conversation produces no matching turn or
// selection within the collector's budget.
var ErrTimeout = errors.New("Response timeout")

const rejectionPrompt = "Invalid input. Please try again."

// Option is one discrete choice offered to a conversation.
type Option struct {
	ID    string
	Label string
}

// Collector gathers validated inputs and single selections from a
// conversation, one waiter at a time, with a fixed timeout per wait.
type Collector struct {
	transport Transport
	sessions  *Sessions
	timeout   time.Duration
}

func NewCollector(transport Transport, sessions *Sessions, timeout time.Duration) *Collector {
	return &Collector{
		transport: transport,
		sessions:  sessions,
		timeout:   timeout,
	}
}

// CollectText prompts the conversation and waits for a turn satisfying valid.
// Rejected turns re-prompt with a fresh timeout budget; an elapsed wait
// returns ErrTimeout. The turn listener is released on every exit path.
func (c *Collector) CollectText(ctx context.Context, chatID int64, prompt string, valid func(string) bool) (string, error) {
	if err := c.transport.SendText(ctx, chatID, prompt); err != nil {
		return "", err
	}

	for {
		turn, err := c.awaitTurn(ctx, chatID)
		if err != nil {
			return "", err
		}

		text := strings.TrimSpace(turn.Text)
		if valid(text) {
			return text, nil
		}

		if err := c.transport.SendText(ctx, chatID, rejectionPrompt); err != nil {
			return "", err
		}
	}
}

// SelectOne renders the options as inline buttons and resolves with the
// chosen option id. Exactly one selection is consumed; the affordances are
// cleared once a choice lands so stale presses have nothing to press.
func (c *Collector) SelectOne(ctx context.Context, chatID int64, prompt string, options []Option) (string, error) {
	ch, err := c.sessions.claimSelection(chatID)
	if err != nil {
		return "", err
	}
	defer c.sessions.releaseSelection(chatID, ch)

	buttons := make([][]Button, 0, len(options))
	for _, option := range options {
		buttons = append(buttons, []Button{{Label: option.Label, Data: option.ID}})
	}

	messageID, err := c.transport.SendButtons(ctx, chatID, prompt, buttons)
	if err != nil {
		return "", err
	}

	var sel Selection
	select {
	case sel = <-ch:
	case <-time.After(c.timeout):
		return "", ErrTimeout
	case <-ctx.Done():
		return "", ctx.Err()
	}

	if err := c.transport.AcknowledgeSelection(ctx, sel.CallbackID); err != nil {
		logger.Error("collector acknowledge selection failed", err, logger.Fields{
			"chatId": chatID,
		})
	}
	if err := c.transport.ClearButtons(ctx, chatID, messageID); err != nil {
		logger.Error("collector clear buttons failed", err, logger.Fields{
			"chatId":    chatID,
			"messageId": messageID,
		})
	}

	return sel.Data, nil
}

func (c *Collector) awaitTurn(ctx context.Context, chatID int64) (Turn, error) {
	ch, err := c.sessions.claimTurn(chatID)
	if err != nil {
		return Turn{}, err
	}
	defer c.sessions.releaseTurn(chatID, ch)

	select {
	case turn := <-ch:
		return turn, nil
	case <-time.After(c.timeout):
		return Turn{}, ErrTimeout
	case <-ctx.Done():
		return Turn{}, ctx.Err()
	}
}

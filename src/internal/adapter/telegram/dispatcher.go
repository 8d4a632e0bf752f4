package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joker-bingo/payment-bot/src/internal/conversation"
	"github.com/joker-bingo/payment-bot/src/internal/logger"
	"github.com/joker-bingo/payment-bot/src/internal/usecase/service_interfaces"
)

// Dispatcher is the top-level router: inbound updates are first offered to
// the conversation sessions so a waiting collector can consume them; what is
// left over starts a new flow on its own goroutine.
type Dispatcher struct {
	bot       *tgbotapi.BotAPI
	sessions  *conversation.Sessions
	transport conversation.Transport

	deposit    service_interfaces.Flow
	withdrawal service_interfaces.Flow
	transfer   service_interfaces.Flow
	accounts   service_interfaces.AccountService
}

func NewDispatcher(
	bot *tgbotapi.BotAPI,
	sessions *conversation.Sessions,
	transport conversation.Transport,
	deposit service_interfaces.Flow,
	withdrawal service_interfaces.Flow,
	transfer service_interfaces.Flow,
	accounts service_interfaces.AccountService,
) *Dispatcher {
	return &Dispatcher{
		bot:        bot,
		sessions:   sessions,
		transport:  transport,
		deposit:    deposit,
		withdrawal: withdrawal,
		transfer:   transfer,
		accounts:   accounts,
	}
}

// Run blocks on the long-polling update loop until the context is canceled.
func (d *Dispatcher) Run(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 30

	updates := d.bot.GetUpdatesChan(updateConfig)

	logger.Info("telegram dispatcher started", logger.Fields{
		"botUsername": d.bot.Self.UserName,
	})

	for {
		select {
		case <-ctx.Done():
			d.bot.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			d.handleUpdate(ctx, update)
		}
	}
}

func (d *Dispatcher) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.Message != nil {
		turn := conversation.Turn{
			ChatID: update.Message.Chat.ID,
			Text:   update.Message.Text,
		}
		if d.sessions.OfferTurn(turn) {
			return
		}
		if update.Message.IsCommand() {
			d.startAction(ctx, update.Message.Chat.ID, update.Message.Command(), senderUsername(update.Message.From))
		}
		return
	}

	if update.CallbackQuery != nil && update.CallbackQuery.Message != nil {
		sel := conversation.Selection{
			CallbackID: update.CallbackQuery.ID,
			ChatID:     update.CallbackQuery.Message.Chat.ID,
			MessageID:  update.CallbackQuery.Message.MessageID,
			Data:       update.CallbackQuery.Data,
		}
		if d.sessions.OfferSelection(sel) {
			return
		}

		if err := d.transport.AcknowledgeSelection(ctx, sel.CallbackID); err != nil {
			logger.Error("dispatcher acknowledge menu selection failed", err, logger.Fields{
				"chatId": sel.ChatID,
			})
		}
		d.startAction(ctx, sel.ChatID, sel.Data, senderUsername(update.CallbackQuery.From))
	}
}

// startAction launches the matching flow on its own goroutine so one party's
// multi-minute dialogue never blocks another's updates.
func (d *Dispatcher) startAction(ctx context.Context, chatID int64, action string, username string) {
	run, ok := d.actionFunc(action, username)
	if !ok {
		logger.Info("dispatcher unhandled action", logger.Fields{
			"chatId": chatID,
			"action": action,
		})
		return
	}

	go func() {
		if err := run(ctx, chatID); err != nil {
			logger.Error("dispatcher flow ended with error", err, logger.Fields{
				"chatId": chatID,
				"action": action,
			})
		}
	}()
}

func (d *Dispatcher) actionFunc(action string, username string) (func(context.Context, int64) error, bool) {
	switch action {
	case "start", "menu":
		return d.sendMainMenu, true
	case "register":
		return func(ctx context.Context, chatID int64) error {
			return d.accounts.Register(ctx, chatID, username)
		}, true
	case "balance":
		return d.accounts.ReportBalance, true
	case "deposit":
		return d.deposit.Run, true
	case "withdraw":
		return d.withdrawal.Run, true
	case "transfer":
		return d.transfer.Run, true
	case "history":
		return d.accounts.ShowHistory, true
	default:
		return nil, false
	}
}

func (d *Dispatcher) sendMainMenu(ctx context.Context, chatID int64) error {
	buttons := [][]conversation.Button{
		{{Label: "Register 👤", Data: "register"}, {Label: "Balance 💰", Data: "balance"}},
		{{Label: "Deposit 💸", Data: "deposit"}, {Label: "Withdraw 💁‍♂️", Data: "withdraw"}},
		{{Label: "Transfer Balance 💳", Data: "transfer"}, {Label: "History 📜", Data: "history"}},
	}

	_, err := d.transport.SendButtons(ctx, chatID, "Welcome to Joker Bingo! Choose an option below.", buttons)
	return err
}

func senderUsername(user *tgbotapi.User) string {
	if user == nil {
		return ""
	}
	return user.UserName
}

package notify

import (
	"context"
	"fmt"
	"html"
	"strings"

	tele "gopkg.in/telebot.v3"

	"storepay/internal/models"
	"storepay/internal/pkg/utils"
)

// Telegram posts completed charges to a sales chat.
type Telegram struct {
	bot  *tele.Bot
	chat *tele.Chat
}

// NewTelegram builds an offline bot that only sends messages. apiURL
// overrides the Bot API endpoint and may be empty.
func NewTelegram(token string, chatID int64, apiURL string) (*Telegram, error) {
	if token == "" || chatID == 0 {
		return nil, fmt.Errorf("telegram notifier needs a token and chat id")
	}
	tb, err := tele.NewBot(tele.Settings{
		URL:     apiURL,
		Token:   token,
		Offline: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create telebot: %w", err)
	}
	return &Telegram{bot: tb, chat: &tele.Chat{ID: chatID}}, nil
}

func (t *Telegram) Notify(ctx context.Context, outcome models.TransactionOutcome) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := t.bot.Send(t.chat, saleMessage(outcome), tele.ModeHTML); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

func saleMessage(o models.TransactionOutcome) string {
	var b strings.Builder
	b.WriteString("💳 <b>Payment received</b>\n")
	if o.ProductTitle != "" {
		fmt.Fprintf(&b, "Product: %s\n", html.EscapeString(o.ProductTitle))
	}
	fmt.Fprintf(&b, "Amount: %s %s\n", formatAmount(o.Amount), html.EscapeString(o.Currency))
	fmt.Fprintf(&b, "Reference: <code>%s</code>\n", html.EscapeString(o.TxRef))
	fmt.Fprintf(&b, "Transaction: <code>%s</code>\n", html.EscapeString(o.TransactionID))
	if !o.Verified {
		b.WriteString("<i>unverified webhook notice</i>")
	}
	return strings.TrimRight(b.String(), "\n")
}

// formatAmount renders 1234500 as "12,345.00".
func formatAmount(a models.Amount) string {
	minor := a.Minor()
	if minor < 0 {
		return a.Major()
	}
	return fmt.Sprintf("%s.%02d", utils.FormatNumber(minor/100), minor%100)
}

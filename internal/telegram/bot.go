package telegram

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"menu-optimizer/internal/app"
	"menu-optimizer/internal/catalog"
	"menu-optimizer/internal/config"
	"menu-optimizer/internal/metrics"
	"menu-optimizer/internal/planner"
	"menu-optimizer/internal/shopping"
)

const (
	maxMenuDays     = 14
	metricsDays     = 7
	generateTimeout = 5 * time.Minute
)

const helpText = "🥗 *Menu Optimizer*\n\n" +
	"/menu [days] - generate the cheapest menu that meets your targets\n" +
	"/shopping - shopping list of your last menu\n" +
	"/prices - when prices were last refreshed"

// Bot wraps the Telegram API and the menu application.
type Bot struct {
	api *tgbotapi.BotAPI
	app *app.App
	cfg *config.Config
}

// NewBot initializes the Telegram Bot and sets the Webhook.
func NewBot(cfg *config.Config, a *app.App) (*Bot, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}

	log.Printf("Authorized on account %s", bot.Self.UserName)

	webhookURL := cfg.TelegramWebhookURL
	wh, err := tgbotapi.NewWebhook(webhookURL)
	if err != nil {
		return nil, fmt.Errorf("invalid webhook url %s: %w", webhookURL, err)
	}
	resp, err := bot.Request(wh)
	if err != nil {
		return nil, fmt.Errorf("failed to set webhook to %s: %w", webhookURL, err)
	}
	log.Printf("Webhook set response: %s", resp.Description)

	return &Bot{api: bot, app: a, cfg: cfg}, nil
}

// RegisterHandlers registers the webhook handler on mux.
func (b *Bot) RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("/webhook", b.handleWebhook)
}

func (b *Bot) handleWebhook(w http.ResponseWriter, r *http.Request) {
	update, err := b.api.HandleUpdate(r)
	if err != nil {
		log.Printf("Error parsing update: %v", err)
		return
	}

	if update.Message == nil || update.Message.From == nil {
		return
	}

	if !b.cfg.IsAllowedUser(update.Message.From.ID) {
		log.Printf("⚠️ Unauthorized access attempt from UserID: %d (@%s)", update.Message.From.ID, update.Message.From.UserName)
		return
	}

	go b.processMessage(update.Message)
}

func (b *Bot) processMessage(msg *tgbotapi.Message) {
	switch msg.Command() {
	case "menu":
		b.handleMenuCommand(msg)
	case "shopping":
		b.handleShoppingCommand(msg)
	case "prices":
		b.handlePricesCommand(msg)
	case "metrics":
		b.handleMetricsRequest(msg)
	default:
		b.sendMarkdown(msg.Chat.ID, helpText)
	}
}

func (b *Bot) handleMenuCommand(msg *tgbotapi.Message) {
	targets := b.app.DefaultTargets()
	days, err := parseDays(msg.CommandArguments(), targets.NumDays)
	if err != nil {
		b.sendMarkdown(msg.Chat.ID, "❌ "+err.Error())
		return
	}
	targets.NumDays = days

	replyMsg := tgbotapi.NewMessage(msg.Chat.ID, fmt.Sprintf("🧮 *Optimizing...*\n(%d days across %d price sources)", days, len(b.cfg.PriceSources)))
	replyMsg.ParseMode = tgbotapi.ModeMarkdown
	sentMsg, err := b.api.Send(replyMsg)
	if err != nil {
		log.Printf("Failed to send initial reply: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), generateTimeout)
	defer cancel()

	userID := strconv.FormatInt(msg.From.ID, 10)
	res, err := b.app.GenerateMenu(ctx, userID, app.MenuRequest{Targets: targets})
	if err != nil || !res.Success {
		log.Printf("Error generating menu for user %s: %v", userID, err)
		b.editMarkdown(msg.Chat.ID, sentMsg.MessageID, formatFailure(res))
		return
	}

	b.editMarkdown(msg.Chat.ID, sentMsg.MessageID, formatMenuMarkdown(res))

	list, err := b.app.ShoppingList(ctx, res)
	if err != nil {
		log.Printf("Warning: failed to build shopping list for user %s: %v", userID, err)
		return
	}
	b.sendMarkdown(msg.Chat.ID, formatShoppingMarkdown(list))
}

func (b *Bot) handleShoppingCommand(msg *tgbotapi.Message) {
	ctx := context.Background()
	userID := strconv.FormatInt(msg.From.ID, 10)

	res, err := b.app.LatestMenu(ctx, userID)
	if errors.Is(err, app.ErrNoMenu) {
		b.sendMarkdown(msg.Chat.ID, "🤷 No menu yet. Send /menu first.")
		return
	}
	if err != nil {
		log.Printf("Error loading menu for user %s: %v", userID, err)
		b.sendMarkdown(msg.Chat.ID, "❌ Error loading your last menu.")
		return
	}

	list, err := b.app.ShoppingList(ctx, res)
	if err != nil {
		log.Printf("Error building shopping list for user %s: %v", userID, err)
		b.sendMarkdown(msg.Chat.ID, "❌ Error building the shopping list.")
		return
	}
	b.sendMarkdown(msg.Chat.ID, formatShoppingMarkdown(list))
}

func (b *Bot) handlePricesCommand(msg *tgbotapi.Message) {
	last, ok, err := b.app.LastPriceUpdate(context.Background())
	if err != nil {
		log.Printf("Error reading last price update: %v", err)
		b.sendMarkdown(msg.Chat.ID, "❌ Error reading price status.")
		return
	}
	b.sendMarkdown(msg.Chat.ID, formatPriceStatus(last, ok, b.cfg.PriceSources))
}

func (b *Bot) handleMetricsRequest(msg *tgbotapi.Message) {
	if msg.From.ID != b.cfg.AdminTelegramID {
		b.sendMarkdown(msg.Chat.ID, "⛔ *Access Denied*: Admin only.")
		return
	}

	runs, err := b.app.DailyRuns(context.Background(), metricsDays)
	if err != nil {
		log.Printf("Error fetching metrics: %v", err)
		b.sendMarkdown(msg.Chat.ID, "❌ Error fetching metrics.")
		return
	}
	b.sendMarkdown(msg.Chat.ID, formatMetricsReport(runs, metrics.GetSysHealth(b.cfg.DataPath)))
}

func (b *Bot) sendMarkdown(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("Failed to send message to chat %d: %v", chatID, err)
	}
}

func (b *Bot) editMarkdown(chatID int64, messageID int, text string) {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.api.Send(edit); err != nil {
		log.Printf("Failed to edit message %d in chat %d: %v", messageID, chatID, err)
	}
}

// parseDays reads the optional day count of /menu.
func parseDays(args string, fallback int) (int, error) {
	args = strings.TrimSpace(args)
	if args == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(strings.Fields(args)[0])
	if err != nil || n < 1 || n > maxMenuDays {
		return 0, fmt.Errorf("days must be a number between 1 and %d", maxMenuDays)
	}
	return n, nil
}

func escape(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdown, s)
}

var slotTitles = [catalog.NumSlots]string{
	catalog.Breakfast: "🍳 Breakfast",
	catalog.Lunch:     "🍲 Lunch",
	catalog.Dinner:    "🍽 Dinner",
	catalog.Snacks:    "🍎 Snacks",
}

func formatMenuMarkdown(res planner.MenuResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📅 *%d-Day Menu*", len(res.Days))
	if res.PriceSource != "" {
		fmt.Fprintf(&sb, " (prices: %s)", escape(res.PriceSource))
	}
	sb.WriteString("\n\n")

	for i, day := range res.Days {
		fmt.Fprintf(&sb, "*Day %d*", i+1)
		if day.Recycled {
			fmt.Fprintf(&sb, " _(repeats day %d)_", day.SourceDay)
		}
		sb.WriteString("\n")
		for _, slot := range catalog.Slots {
			portions := day.Meal(slot)
			if len(portions) == 0 {
				continue
			}
			parts := make([]string, 0, len(portions))
			for _, p := range portions {
				parts = append(parts, fmt.Sprintf("%s %.0fg", escape(p.Name), p.Grams))
			}
			fmt.Fprintf(&sb, "%s: %s\n", slotTitles[slot], strings.Join(parts, ", "))
		}
		fmt.Fprintf(&sb, "_%.0f kcal, %.1fg protein, %.1fg carbs, %.1fg fat, ₪%.2f_\n\n",
			day.Totals.Calories, day.Totals.Protein, day.Totals.Carbs, day.Totals.Fat, day.Cost)
	}

	fmt.Fprintf(&sb, "💰 *Total:* ₪%.2f (₪%.2f per day)", res.TotalCost, res.AvgDailyCost)
	return sb.String()
}

func formatFailure(res planner.MenuResult) string {
	reason := res.Message
	if reason == "" {
		reason = "unknown error"
	}
	safeErr := strings.ReplaceAll(reason, "`", "'")
	return fmt.Sprintf("❌ *Could not build a menu:*\n```\n%s\n```", safeErr)
}

func formatShoppingMarkdown(list shopping.List) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🛒 *Shopping List* (%d days)\n\n", list.Days)
	if len(list.Items) == 0 {
		sb.WriteString("_Nothing to buy_\n")
		return sb.String()
	}
	for _, it := range list.Items {
		fmt.Fprintf(&sb, "• %s: %s", escape(it.Name), formatGrams(it.Grams))
		if it.Cost > 0 {
			fmt.Fprintf(&sb, " (₪%.2f)", it.Cost)
		}
		sb.WriteString("\n")
	}
	if list.TotalCost > 0 {
		fmt.Fprintf(&sb, "\n💰 *Total:* ₪%.2f", list.TotalCost)
	}
	return sb.String()
}

func formatGrams(g float64) string {
	if g >= 1000 {
		return fmt.Sprintf("%.2fkg", g/1000)
	}
	return fmt.Sprintf("%.0fg", g)
}

func formatPriceStatus(last time.Time, ok bool, sources []string) string {
	var sb strings.Builder
	sb.WriteString("🏷 *Prices*\n\n")
	fmt.Fprintf(&sb, "Sources: %s\n", escape(strings.Join(sources, ", ")))
	if !ok {
		sb.WriteString("Last refresh: _never_")
		return sb.String()
	}
	fmt.Fprintf(&sb, "Last refresh: %s", last.Local().Format("2006-01-02 15:04"))
	return sb.String()
}

func formatMetricsReport(runs []metrics.DailyRuns, health metrics.SysHealth) string {
	var sb strings.Builder
	sb.WriteString("📊 *Usage & Health Report*\n\n")

	sb.WriteString("🗓 *Recent Generations*\n")
	if len(runs) == 0 {
		sb.WriteString("_No data yet_\n")
	}
	for _, d := range runs {
		fmt.Fprintf(&sb, "• *%s*: %d/%d ok, avg %dms", d.Date, d.Succeeded, d.Total, d.AvgLatencyMS)
		if d.Succeeded > 0 {
			fmt.Fprintf(&sb, ", avg ₪%.2f", d.AvgCost)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("\n🧠 *System Health*\n")
	fmt.Fprintf(&sb, "• RAM: %dMB (Alloc) / %dMB (Sys)\n", health.AllocMB, health.SysMB)
	fmt.Fprintf(&sb, "• Goroutines: %d\n", health.Goroutines)
	fmt.Fprintf(&sb, "• Uptime: %s\n", health.Uptime)
	fmt.Fprintf(&sb, "• Disk Data: %s\n", health.DataDiskSize)
	return sb.String()
}

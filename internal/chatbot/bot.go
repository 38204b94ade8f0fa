// Package chatbot implements the rule-based assistant of the terminal UI:
// ordered pattern rules matched against the user's text, with data-aware
// intents answered from the catalog snapshot. There is no NLP and no
// learning; the first matching rule wins and an unmatched text gets the
// fallback reply.
package chatbot

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/saul00x/gestion3-sub000/internal/catalog"
	"github.com/saul00x/gestion3-sub000/internal/observability/metrics"
)

// Reply is one chatbot answer.
type Reply struct {
	Intent string `json:"intent"`
	Text   string `json:"text"`
}

// Catalog is the slice of the cache the bot reads from.
type Catalog interface {
	Data(ctx context.Context) (catalog.Snapshot, error)
}

// Bot answers user questions with ordered rules.
type Bot struct {
	catalog Catalog
	rules   []rule
}

type rule struct {
	intent  string
	pattern *regexp.Regexp
	respond func(ctx context.Context, b *Bot, matches []string) (string, error)
}

// NewBot constructs a Bot over a catalog source.
func NewBot(source Catalog) (*Bot, error) {
	if source == nil {
		return nil, errors.New("chatbot: nil catalog")
	}
	b := &Bot{catalog: source}
	b.rules = []rule{
		{
			intent:  "greeting",
			pattern: regexp.MustCompile(`(?i)^(hello|hi|bonjour|salut)\b`),
			respond: func(context.Context, *Bot, []string) (string, error) {
				return "Hello! Ask me about stock levels, low stock or store hours.", nil
			},
		},
		{
			intent:  "low_stock",
			pattern: regexp.MustCompile(`(?i)\b(low|rupture|shortage|alert)\b`),
			respond: answerLowStock,
		},
		{
			intent:  "stock_level",
			pattern: regexp.MustCompile(`(?i)(?:stock|quantity|combien)\s+(?:of|de|du|d')?\s*(.+?)\s*\?*$`),
			respond: answerStockLevel,
		},
		{
			intent:  "store_hours",
			pattern: regexp.MustCompile(`(?i)\b(hours|horaires|open|ouvert)\b`),
			respond: answerStoreHours,
		},
		{
			intent:  "help",
			pattern: regexp.MustCompile(`(?i)\b(help|aide)\b`),
			respond: func(context.Context, *Bot, []string) (string, error) {
				return "I can answer: stock of <product>, low stock, store hours.", nil
			},
		},
	}
	return b, nil
}

// Respond matches text against the rules in order and renders the first hit.
func (b *Bot) Respond(ctx context.Context, text string) (Reply, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Reply{}, errors.New("chatbot: empty message")
	}
	for _, r := range b.rules {
		matches := r.pattern.FindStringSubmatch(trimmed)
		if matches == nil {
			continue
		}
		answer, err := r.respond(ctx, b, matches)
		if err != nil {
			return Reply{}, err
		}
		metrics.ObserveChatbotReply(r.intent)
		return Reply{Intent: r.intent, Text: answer}, nil
	}
	metrics.ObserveChatbotReply("fallback")
	return Reply{
		Intent: "fallback",
		Text:   "Sorry, I did not understand. Try 'help' for what I can answer.",
	}, nil
}

func answerStockLevel(ctx context.Context, b *Bot, matches []string) (string, error) {
	name := strings.TrimSpace(matches[1])
	if name == "" {
		return "Which product do you mean?", nil
	}
	snapshot, err := b.catalog.Data(ctx)
	if err != nil {
		return "", fmt.Errorf("chatbot: catalog unavailable: %w", err)
	}
	lowered := strings.ToLower(name)
	for _, product := range snapshot.Products {
		if strings.Contains(strings.ToLower(product.Name), lowered) {
			total := snapshot.QuantityOf(product.ID)
			return fmt.Sprintf("%s: %g in stock across all stores.", product.Name, total), nil
		}
	}
	return fmt.Sprintf("I could not find a product matching %q.", name), nil
}

func answerLowStock(ctx context.Context, b *Bot, _ []string) (string, error) {
	snapshot, err := b.catalog.Data(ctx)
	if err != nil {
		return "", fmt.Errorf("chatbot: catalog unavailable: %w", err)
	}
	var low []string
	for _, line := range snapshot.Stocks {
		threshold := line.Threshold.Float64()
		if threshold <= 0 {
			continue
		}
		if line.Quantity.Float64() <= threshold {
			name := line.ProductID
			if product, ok := snapshot.ProductByID(line.ProductID); ok {
				name = product.Name
			}
			low = append(low, fmt.Sprintf("%s (%g left)", name, line.Quantity.Float64()))
		}
	}
	if len(low) == 0 {
		return "No product is below its threshold.", nil
	}
	return "Low stock: " + strings.Join(low, ", ") + ".", nil
}

func answerStoreHours(ctx context.Context, b *Bot, _ []string) (string, error) {
	snapshot, err := b.catalog.Data(ctx)
	if err != nil {
		return "", fmt.Errorf("chatbot: catalog unavailable: %w", err)
	}
	if len(snapshot.Stores) == 0 {
		return "I have no store information right now.", nil
	}
	var lines []string
	for _, store := range snapshot.Stores {
		hours := store.Hours
		if hours == "" {
			hours = "hours not published"
		}
		lines = append(lines, fmt.Sprintf("%s: %s", store.Name, hours))
	}
	return strings.Join(lines, " | "), nil
}

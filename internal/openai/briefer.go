package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	oa "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"watchlistBot/internal/finance"
)

const briefModel = "gpt-4o-mini"

// Briefer writes a short commentary over a finished target board.
type Briefer struct {
	cli oa.Client
}

func NewBriefer(apiKey string, opts ...option.RequestOption) *Briefer {
	client := oa.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)...)
	return &Briefer{cli: client}
}

func (b *Briefer) Brief(ctx context.Context, rep finance.Report) (string, error) {
	if len(rep.Snapshots) == 0 {
		return "", errors.New("nothing to brief: no quotes on the board")
	}
	resp, err := b.cli.Chat.Completions.New(ctx, oa.ChatCompletionNewParams{
		Model: briefModel,
		Messages: []oa.ChatCompletionMessageParamUnion{
			oa.SystemMessage("You are a concise equity watchlist assistant. Given a table of Korean stocks with their latest close, target price, achievement of the target and daily change, write at most 6 short bullets: which targets are reached or close, the biggest daily movers, and anything unusual. No advice to buy or sell. Plain text."),
			oa.UserMessage(boardTable(rep)),
		},
		MaxTokens: oa.Int(400),
	})
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from OpenAI")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// boardTable lays the snapshots out as a pipe table for the prompt.
func boardTable(rep finance.Report) string {
	var b strings.Builder
	b.WriteString("name | close | target | achievement % | daily change %\n")
	for _, s := range rep.Snapshots {
		fmt.Fprintf(&b, "%s | %d | %d | %.1f | %+.2f\n", s.DisplayName, s.CurrentClose, s.TargetPrice, s.AchievementPct, s.DailyChangePct)
	}
	return b.String()
}

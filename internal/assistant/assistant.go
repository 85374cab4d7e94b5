// Package assistant answers business questions over the store's own
// figures. It assembles a numeric snapshot from the reporting engine and
// instructs the model to answer strictly from that snapshot.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/vunnam-pos/vunnam-pos/internal/reports"
)

// ReportsPort is the slice of the reporting engine the assistant reads.
type ReportsPort interface {
	Compare(ctx context.Context, from, to time.Time) (reports.PeriodComparison, error)
	DailyRevenue(ctx context.Context, from, to time.Time) ([]reports.DailyRevenue, error)
	TopProducts(ctx context.Context, from, to time.Time, limit int) ([]reports.TopProduct, error)
}

// ErrNotConfigured indicates no API key was supplied.
var ErrNotConfigured = errors.New("assistant: OPENAI_API_KEY not configured")

const systemPrompt = `You are the in-house analyst for a small retail store.
Answer the owner's question using ONLY the business snapshot provided.
If the snapshot does not contain the answer, say so plainly.
Keep answers short and concrete. Quote figures from the snapshot.`

// Service builds snapshots and queries the model.
type Service struct {
	reports  ReportsPort
	client   *openai.Client
	model    openai.ChatModel
	currency string
	now      func() time.Time
}

func NewService(reportsPort ReportsPort, apiKey, currency string) *Service {
	s := &Service{
		reports:  reportsPort,
		model:    openai.ChatModelGPT4oMini,
		currency: currency,
		now:      time.Now,
	}
	if apiKey != "" {
		client := openai.NewClient(option.WithAPIKey(apiKey))
		s.client = &client
	}
	return s
}

// WithNow overrides the clock, for tests.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Ask answers a free-form question about the last 30 days of trading.
func (s *Service) Ask(ctx context.Context, question string) (string, error) {
	if s.client == nil {
		return "", ErrNotConfigured
	}
	snapshot, err := s.BuildSnapshot(ctx)
	if err != nil {
		return "", err
	}

	resp, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: s.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.SystemMessage("Business snapshot:\n" + snapshot),
			openai.UserMessage(question),
		},
	})
	if err != nil {
		return "", fmt.Errorf("assistant: completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("assistant: empty completion")
	}
	return resp.Choices[0].Message.Content, nil
}

// BuildSnapshot fans out to the reporting engine and renders the figures
// the model is allowed to see.
func (s *Service) BuildSnapshot(ctx context.Context) (string, error) {
	to := s.now()
	from := to.AddDate(0, 0, -30)

	var (
		comparison reports.PeriodComparison
		daily      []reports.DailyRevenue
		top        []reports.TopProduct
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		comparison, err = s.reports.Compare(gctx, from, to)
		return err
	})
	g.Go(func() error {
		var err error
		daily, err = s.reports.DailyRevenue(gctx, from, to)
		return err
	})
	g.Go(func() error {
		var err error
		top, err = s.reports.TopProducts(gctx, from, to, 5)
		return err
	})
	if err := g.Wait(); err != nil {
		return "", err
	}

	p := message.NewPrinter(language.English)
	var b strings.Builder

	cur := comparison.Current
	prev := comparison.Previous
	p.Fprintf(&b, "Period: %s to %s (all amounts in %s)\n",
		from.Format(time.DateOnly), to.Format(time.DateOnly), s.currency)
	p.Fprintf(&b, "Revenue: %.2f | Expenses: %.2f | Net profit: %.2f\n",
		cur.Revenue, cur.Expenses, cur.NetProfit)
	p.Fprintf(&b, "Previous period (%s to %s): revenue %.2f, expenses %.2f, net profit %.2f\n",
		prev.From.Format(time.DateOnly), prev.To.Format(time.DateOnly),
		prev.Revenue, prev.Expenses, prev.NetProfit)

	var orders int64
	for _, d := range daily {
		orders += d.Orders
	}
	p.Fprintf(&b, "Orders: %d across %d trading days\n", orders, len(daily))

	if len(top) > 0 {
		b.WriteString("Top products by net revenue:\n")
		for i, t := range top {
			p.Fprintf(&b, "  %d. %s: %.0f units, %.2f net, %.2f gross\n", i+1, t.Name, t.Quantity, t.NetRevenue, t.Revenue)
		}
	}
	return b.String(), nil
}

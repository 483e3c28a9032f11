// File: internal/parser/parser.go
// Description: Turns raw request text into structured line items, urgency,
// budget estimate and deadline. An optional generation enhancement may do the
// parsing; any failure there falls back to the deterministic path, which
// never errors on non-empty input.

package parser

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/debdutta1777/AuraProcure/api/schemas"
	"github.com/debdutta1777/AuraProcure/internal/llm"
)

// Parser is the first pipeline stage.
type Parser struct {
	gen    llm.Generator
	logger *zap.Logger
	nowFn  func() time.Time
}

// New creates a Parser. gen may be the disabled generator.
func New(gen llm.Generator, logger *zap.Logger) *Parser {
	return &Parser{
		gen:    gen,
		logger: logger.Named("parser"),
		nowFn:  time.Now,
	}
}

// WithClock overrides the parser's clock. Tests use this to pin deadline
// arithmetic.
func (p *Parser) WithClock(now func() time.Time) *Parser {
	p.nowFn = now
	return p
}

const systemInstruction = `You are the lead orchestrator of a procurement system. Parse the natural language procurement request into structured data.

Return a JSON object with this exact structure:
{
  "items": [{"name": string, "quantity": number, "category": string, "specifications": string, "estimated_unit_price": number}],
  "urgency": "low | normal | high | critical",
  "budget_estimate": number,
  "deadline": "RFC 3339 date string or null",
  "summary": "one-line summary of the procurement need",
  "needs_clarification": boolean,
  "clarification_question": "string or null"
}

If the user has NOT provided a budget and the item is too vague to price, set needs_clarification to true and ask a specific question. If a reasonable standard estimate exists, set it to false.`

// generatedRequest is the wire shape returned by the generation service.
type generatedRequest struct {
	Items []struct {
		Name               string  `json:"name"`
		Quantity           int     `json:"quantity"`
		Category           string  `json:"category"`
		Specifications     string  `json:"specifications"`
		EstimatedUnitPrice float64 `json:"estimated_unit_price"`
	} `json:"items"`
	Urgency               string   `json:"urgency"`
	BudgetEstimate        float64  `json:"budget_estimate"`
	Deadline              *string  `json:"deadline"`
	Summary               string   `json:"summary"`
	NeedsClarification    bool     `json:"needs_clarification"`
	ClarificationQuestion string   `json:"clarification_question"`
}

// Parse produces the structured request. Only empty input is an error; every
// other request degrades to a best-effort deterministic result.
func (p *Parser) Parse(ctx context.Context, requestText string) (*schemas.ParsedRequest, error) {
	if strings.TrimSpace(requestText) == "" {
		return nil, fmt.Errorf("request text must not be empty")
	}

	if p.gen.Enabled() {
		if parsed, err := p.parseGenerated(ctx, requestText); err == nil {
			return parsed, nil
		} else {
			p.logger.Warn("Generation parse failed; falling back to deterministic parsing", zap.Error(err))
		}
	}

	return p.parseDeterministic(requestText), nil
}

// parseGenerated asks the enhancement service to parse the request.
func (p *Parser) parseGenerated(ctx context.Context, requestText string) (*schemas.ParsedRequest, error) {
	var wire generatedRequest
	if err := p.gen.GenerateJSON(ctx, systemInstruction, requestText, &wire); err != nil {
		return nil, err
	}
	if len(wire.Items) == 0 && !wire.NeedsClarification {
		return nil, fmt.Errorf("generation response carried no items")
	}

	parsed := &schemas.ParsedRequest{
		Urgency:               normalizeUrgency(wire.Urgency),
		BudgetEstimate:        roundAmount(wire.BudgetEstimate),
		Summary:               wire.Summary,
		NeedsClarification:    wire.NeedsClarification,
		ClarificationQuestion: wire.ClarificationQuestion,
		UsedAI:                true,
	}
	for _, item := range wire.Items {
		qty := item.Quantity
		if qty < 1 {
			qty = 1
		}
		parsed.Items = append(parsed.Items, schemas.ParsedItem{
			Name:               item.Name,
			Quantity:           qty,
			Category:           item.Category,
			Specifications:     item.Specifications,
			EstimatedUnitPrice: roundAmount(item.EstimatedUnitPrice),
		})
	}
	if wire.Deadline != nil && *wire.Deadline != "" {
		if ts, err := time.Parse(time.RFC3339, *wire.Deadline); err == nil {
			parsed.Deadline = &ts
		}
	}
	if parsed.Summary == "" {
		parsed.Summary = "Procurement request: " + requestText
	}
	return parsed, nil
}

func normalizeUrgency(s string) schemas.Urgency {
	switch schemas.Urgency(strings.ToLower(strings.TrimSpace(s))) {
	case schemas.UrgencyLow:
		return schemas.UrgencyLow
	case schemas.UrgencyHigh:
		return schemas.UrgencyHigh
	case schemas.UrgencyCritical:
		return schemas.UrgencyCritical
	default:
		return schemas.UrgencyNormal
	}
}

func roundAmount(f float64) int64 {
	if f <= 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int64(math.Round(f))
}

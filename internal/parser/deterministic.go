// File: internal/parser/deterministic.go
package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/debdutta1777/AuraProcure/api/schemas"
)

// The fixed vocabulary for the deterministic path. An unmatched request
// degrades to a single generic line item rather than failing.
var (
	itemPattern = regexp.MustCompile(
		`(?i)(\d+)?\s*(high-end|enterprise|ergonomic|premium|standard)?\s*` +
			`(laptop|chair|firewall|monitor|desk|phone|tablet|server|printer|coffee|keyboard|mouse|headset|webcam|license|subscription)`)
	budgetPattern   = regexp.MustCompile(`\$\s*([\d,]+(?:\.\d{1,2})?)\s*([kK])?`)
	relativePattern = regexp.MustCompile(`(\d+)\s*(week|day)`)
)

var categoryTable = map[string]string{
	"laptop":       "IT Hardware",
	"monitor":      "IT Hardware",
	"server":       "IT Hardware",
	"tablet":       "IT Hardware",
	"keyboard":     "IT Peripherals",
	"mouse":        "IT Peripherals",
	"headset":      "IT Peripherals",
	"webcam":       "IT Peripherals",
	"chair":        "Office Furniture",
	"desk":         "Office Furniture",
	"phone":        "Communications",
	"printer":      "Office Equipment",
	"firewall":     "Networking",
	"coffee":       "Office Supplies",
	"license":      "Software",
	"subscription": "Software",
}

var specTable = map[string]string{
	"laptop":   "16GB+ RAM, 512GB SSD, i7/Ryzen 7+",
	"monitor":  `27" 4K IPS, USB-C, adjustable stand`,
	"server":   "Rack-mounted, Xeon, 64GB ECC RAM",
	"chair":    "Adjustable lumbar, mesh back, armrests",
	"desk":     "Height-adjustable standing desk",
	"firewall": "Next-gen, IPS/IDS, 10Gbps throughput",
	"printer":  "Color laser, duplex, network-ready",
}

var priceTable = map[string]int64{
	"laptop":       1500,
	"monitor":      600,
	"server":       5000,
	"chair":        350,
	"desk":         800,
	"firewall":     4500,
	"printer":      1200,
	"keyboard":     80,
	"mouse":        50,
	"headset":      150,
	"webcam":       120,
	"phone":        400,
	"tablet":       900,
	"coffee":       25,
	"license":      200,
	"subscription": 100,
}

// defaultUnitPrice is used when no vocabulary keyword matches.
const defaultUnitPrice = 100

// parseDeterministic is the fallback parsing path. It never fails: the worst
// case is a single generic item with a default estimate.
func (p *Parser) parseDeterministic(requestText string) *schemas.ParsedRequest {
	lower := strings.ToLower(requestText)

	quantity := 1
	adjective := ""
	keyword := ""
	if m := itemPattern.FindStringSubmatch(requestText); m != nil {
		if m[1] != "" {
			if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
				quantity = n
			}
		}
		adjective = strings.ToLower(m[2])
		keyword = strings.ToLower(m[3])
	}

	budget := extractBudget(lower)
	deadline := p.extractDeadline(lower)

	item := buildItem(requestText, quantity, adjective, keyword)

	parsed := &schemas.ParsedRequest{
		Items:          []schemas.ParsedItem{item},
		Urgency:        extractUrgency(lower),
		BudgetEstimate: budget,
		Deadline:       deadline,
		Summary:        fmt.Sprintf("Procure %d x %s (%s)", item.Quantity, item.Name, item.Category),
	}

	// Clarification fires only when the request names no explicit budget and
	// no price-estimable item.
	if budget == 0 && keyword == "" {
		parsed.NeedsClarification = true
		parsed.ClarificationQuestion = "What is your estimated budget, per unit or in total, for this request?"
	}
	return parsed
}

func buildItem(requestText string, quantity int, adjective, keyword string) schemas.ParsedItem {
	if keyword == "" {
		name := strings.TrimSpace(requestText)
		if len(name) > 60 {
			name = name[:60]
		}
		return schemas.ParsedItem{
			Name:               name,
			Quantity:           quantity,
			Category:           "General",
			Specifications:     "Standard specifications",
			EstimatedUnitPrice: defaultUnitPrice,
		}
	}

	name := title(keyword)
	if adjective != "" {
		name = title(adjective) + " " + name
	}
	return schemas.ParsedItem{
		Name:               name,
		Quantity:           quantity,
		Category:           categoryTable[keyword],
		Specifications:     specTable[keyword],
		EstimatedUnitPrice: priceTable[keyword],
	}
}

// extractBudget pulls a dollar amount out of the request; a trailing k or K
// multiplies it by 1000.
func extractBudget(lower string) int64 {
	m := budgetPattern.FindStringSubmatch(lower)
	if m == nil {
		return 0
	}
	raw := strings.ReplaceAll(m[1], ",", "")
	amount, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	if m[2] != "" {
		amount *= 1000
	}
	return roundAmount(amount)
}

// extractDeadline resolves relative-date phrases against the parser's clock.
func (p *Parser) extractDeadline(lower string) *time.Time {
	now := p.nowFn()

	if strings.Contains(lower, "friday") {
		days := (int(time.Friday) - int(now.Weekday()) + 7) % 7
		if days == 0 {
			days = 7
		}
		d := time.Date(now.Year(), now.Month(), now.Day(), 17, 0, 0, 0, now.Location()).AddDate(0, 0, days)
		return &d
	}
	if strings.Contains(lower, "next week") {
		d := now.AddDate(0, 0, 7)
		return &d
	}
	if m := relativePattern.FindStringSubmatch(lower); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil || n <= 0 {
			return nil
		}
		if m[2] == "week" {
			n *= 7
		}
		d := now.AddDate(0, 0, n)
		return &d
	}
	return nil
}

func extractUrgency(lower string) schemas.Urgency {
	switch {
	case strings.Contains(lower, "critical") || strings.Contains(lower, "immediately"):
		return schemas.UrgencyCritical
	case strings.Contains(lower, "urgent") || strings.Contains(lower, "asap"):
		return schemas.UrgencyHigh
	default:
		return schemas.UrgencyNormal
	}
}

func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

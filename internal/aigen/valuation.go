package aigen

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/devicerevive/secondlife/internal/device"
	"github.com/devicerevive/secondlife/internal/llm"
	"github.com/devicerevive/secondlife/internal/metrics"
	"github.com/devicerevive/secondlife/internal/schema"
)

// usdToINR is the fixed conversion rate used for the INR mirror fields.
const usdToINR = 83.0

const valuationSystemPrompt = `You are the "Eco-Exchange Valuation Engine," a specialized AI designed to bridge the gap between broken consumer electronics and retail partnerships.

**YOUR GOAL:**
The user has a broken or old device. Your job is to:
1. Evaluate the device's condition and give it a CONDITION GRADE.
2. Estimate what it can SELL FOR on the used market (eBay, Swappa, Facebook Marketplace).
3. Estimate raw SCRAP PARTS value.
4. Generate compelling PARTNER COUPONS that beat the cash value.

**INPUT DATA YOU WILL RECEIVE:**
1. Device Model (e.g., iPhone 13, Dell XPS 15)
2. Specs (RAM, Storage)
3. Condition Report (list of issues like "Screen Broken", "Bad Battery", etc.)

**LOGIC & CALCULATIONS:**

1. **Condition Grade (A-F):**
   - A = Fully working, cosmetic wear only
   - B = Minor issue (bad battery or cosmetic damage)
   - C = One major issue (screen broken OR touch broken)
   - D = Multiple issues (2+ broken components)
   - F = Not functional (water damage or 3+ issues)

2. **Calculate "Estimated Resale Value":**
   - What the device could realistically sell for on eBay/Swappa in its current condition.
   - Start from the device's current used market value in working condition.
   - Apply condition penalties: Screen Broken = -40%, Bad Battery = -15%, Touch Broken = -35%, Camera Dead = -10%, Speaker Broken = -10%, No Charging Port = -25%.
   - Multiple penalties stack multiplicatively.
   - Smartphones base: $80-400. Laptops base: $150-600. Tablets base: $60-300.

3. **Calculate "Scrap Cash Value":**
   - Raw parts value (motherboard, sensors, housing).
   - Typically 30-50% of resale value.

4. **Generate "Partner Rewards" (The Core Task):**
   - Generate 3 distinct trade-in offers from major retailers.
   - Each offer MUST include a coupon_url - use the REAL trade-in program URL for that retailer.
   - **The Golden Rule:** Coupon value must appear 20-40% higher than Scrap Cash to incentivize trade-in.
   - Real retailer trade-in URLs to use:
     * Amazon: https://www.amazon.com/l/9187220011
     * Best Buy: https://www.bestbuy.com/trade-in
     * Apple: https://www.apple.com/shop/trade-in
     * Samsung: https://www.samsung.com/us/trade-in/
     * Google: https://store.google.com/us/magazine/trade_in
     * Dell: https://www.dell.com/en-us/lp/dell-trade-in
     * Gazelle: https://www.gazelle.com/
     * Back Market: https://www.backmarket.com/en-us/buyback

**OUTPUT FORMAT:**
Return ONLY a valid JSON object. No markdown, no code fences, no explanation.

{
  "valuation_summary": {
    "device_name": "String",
    "condition_grade": "A" or "B" or "C" or "D" or "F",
    "estimated_resale_usd": Number,
    "estimated_scrap_cash_usd": Number,
    "eco_message": "String (include specific environmental stat)"
  },
  "trade_in_offers": [
    {
      "partner": "String (e.g., Amazon)",
      "offer_type": "Discount Coupon" or "Store Credit" or "Cash Transfer",
      "headline": "String (e.g., '20% Off Next Smartphone')",
      "monetary_value_cap": "String (e.g., 'Up to $100 value')",
      "coupon_url": "String (real trade-in URL for that retailer)",
      "reasoning": "String (Why this is good for them)"
    }
  ]
}

Generate exactly 3 trade-in offers. One should be a direct cash option (lower value), and two should be partner coupons/credits (higher perceived value). Always make the partner offers look significantly better than the cash option.

IMPORTANT:
- Be realistic - don't over-inflate values.
- Use real retailer names and their actual trade-in program URLs.
- The eco_message should include a specific environmental stat (grams saved, metals recovered, etc.).
- Make the reasoning personal and persuasive.
- Choose retailers that make sense for the device type (e.g., Apple trade-in for iPhones).
- The condition_grade MUST accurately reflect the reported issues.

You MUST respond with valid JSON only.`

type rawValuation struct {
	ValuationSummary *struct {
		DeviceName            string  `json:"device_name"`
		ConditionGrade        string  `json:"condition_grade"`
		EstimatedResaleUSD    float64 `json:"estimated_resale_usd"`
		EstimatedScrapCashUSD float64 `json:"estimated_scrap_cash_usd"`
		EcoMessage            string  `json:"eco_message"`
	} `json:"valuation_summary"`
	TradeInOffers []struct {
		Partner          string `json:"partner"`
		OfferType        string `json:"offer_type"`
		Headline         string `json:"headline"`
		MonetaryValueCap string `json:"monetary_value_cap"`
		CouponURL        string `json:"coupon_url"`
		Reasoning        string `json:"reasoning"`
	} `json:"trade_in_offers"`
}

var dollarAmount = regexp.MustCompile(`\d+(?:\.\d+)?`)

// Valuation asks the valuation engine for a condition grade, resale and scrap
// estimates, and three trade-in offers. extraNotes carries the user's
// free-text description plus any vision analysis summary. Returns nil on
// failure.
func (g *Generator) Valuation(ctx context.Context, dev device.Context, extraNotes string) *schema.EcoValuation {
	conds := condText(dev.Conditions, "Fully working (old model)")

	var b strings.Builder
	fmt.Fprintf(&b, "Device: %s\n", dev.Name)
	fmt.Fprintf(&b, "Device Type: %s\n", dev.DeviceType)
	fmt.Fprintf(&b, "RAM: %s\n", specStr(dev.RAMGB))
	fmt.Fprintf(&b, "Storage: %s\n", specStr(dev.StorageGB))
	fmt.Fprintf(&b, "Condition: %s\n", conds)
	if notes := strings.TrimSpace(extraNotes); notes != "" {
		fmt.Fprintf(&b, "Additional Details: %s\n", notes)
	}
	b.WriteString("\nCalculate the scrap cash value, estimated resale value, and generate 3 trade-in offers. ")
	b.WriteString("Remember the Golden Rule: partner offers must appear 20-40% more valuable than cash.")

	start := time.Now()
	content, err := g.client.Chat(ctx, llm.ChatRequest{
		Model:       g.model,
		System:      valuationSystemPrompt,
		User:        b.String(),
		Temperature: 0.6,
		MaxTokens:   2048,
	})
	metrics.RecordLLMCall("valuation", err, time.Since(start))
	if err != nil {
		g.logger.Error("eco valuation generation failed", "error", err)
		return nil
	}

	var raw rawValuation
	if err := llm.UnmarshalObject(content, &raw); err != nil {
		g.logger.Error("eco valuation returned unparseable content", "error", err)
		return nil
	}
	if raw.ValuationSummary == nil || len(raw.TradeInOffers) == 0 {
		g.logger.Warn("eco valuation missing required keys")
		return nil
	}

	vs := raw.ValuationSummary
	summary := &schema.ValuationSummary{
		DeviceName:            vs.DeviceName,
		ConditionGrade:        vs.ConditionGrade,
		EstimatedResaleUSD:    vs.EstimatedResaleUSD,
		EstimatedResaleINR:    vs.EstimatedResaleUSD * usdToINR,
		EstimatedScrapCashUSD: vs.EstimatedScrapCashUSD,
		EstimatedScrapCashINR: vs.EstimatedScrapCashUSD * usdToINR,
		EcoMessage:            vs.EcoMessage,
	}
	if summary.DeviceName == "" {
		summary.DeviceName = dev.Name
	}
	if summary.ConditionGrade == "" {
		summary.ConditionGrade = "C"
	}

	offers := make([]schema.TradeInOffer, 0, len(raw.TradeInOffers))
	for _, o := range raw.TradeInOffers {
		partner := o.Partner
		if partner == "" {
			partner = "Unknown"
		}
		offerType := o.OfferType
		if offerType == "" {
			offerType = "Discount Coupon"
		}
		offers = append(offers, schema.TradeInOffer{
			Partner:          partner,
			OfferType:        offerType,
			Headline:         o.Headline,
			MonetaryValueCap: enforceGoldenRule(o.MonetaryValueCap, summary.EstimatedScrapCashUSD),
			CouponURL:        o.CouponURL,
			Reasoning:        o.Reasoning,
		})
	}

	g.logger.Info("eco valuation generated",
		"scrap_usd", summary.EstimatedScrapCashUSD, "offers", len(offers))
	return &schema.EcoValuation{ValuationSummary: summary, TradeInOffers: offers}
}

// enforceGoldenRule rewrites an offer cap that undercuts the 20% floor over
// scrap cash. Caps with no parseable amount pass through untouched.
func enforceGoldenRule(valueCap string, scrapUSD float64) string {
	if scrapUSD <= 0 {
		return valueCap
	}
	m := dollarAmount.FindString(valueCap)
	if m == "" {
		return valueCap
	}
	amount, err := strconv.ParseFloat(m, 64)
	if err != nil || amount >= scrapUSD*1.2 {
		return valueCap
	}
	return fmt.Sprintf("Up to $%.0f value", scrapUSD*1.2)
}

// Package schema defines the wire types exposed by the HTTP surface. Field
// names mirror the frontend contract, so JSON tags use camelCase throughout.
package schema

import "time"

// NewThought stamps a log line with the current time in unix milliseconds.
func NewThought(message string) ThoughtLogEntry {
	return ThoughtLogEntry{Timestamp: time.Now().UnixMilli(), Message: message}
}

// ScrapeRequest is the body of POST /api/v1/scrape.
type ScrapeRequest struct {
	DeviceName     string   `json:"deviceName" binding:"required"`
	Conditions     []string `json:"conditions"`
	Mode           string   `json:"mode"`
	DeviceType     string   `json:"deviceType"`
	RAMGB          int      `json:"ramGB"`
	StorageGB      int      `json:"storageGB"`
	ConditionNotes string   `json:"conditionNotes"`
}

// ValuationRequest is the body of the standalone POST /api/v1/eco-valuation.
// Images are base64-encoded device photos for the vision analyzer.
type ValuationRequest struct {
	DeviceName      string   `json:"deviceName" binding:"required"`
	Conditions      []string `json:"conditions"`
	AdditionalNotes string   `json:"additionalNotes"`
	DeviceType      string   `json:"deviceType"`
	RAMGB           int      `json:"ramGB"`
	StorageGB       int      `json:"storageGB"`
	Images          []string `json:"images"`
}

// ThoughtLogEntry is one line of the pipeline's activity narration.
type ThoughtLogEntry struct {
	Timestamp int64  `json:"timestamp"` // unix milliseconds
	Message   string `json:"message"`
}

// StepByStepInstruction is one numbered instruction of a recommendation.
type StepByStepInstruction struct {
	StepNumber  int    `json:"stepNumber"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl,omitempty"`
}

// ProjectRecommendation is a fully-typed, scored, ranked project idea.
type ProjectRecommendation struct {
	ID                 string                  `json:"id"`
	Title              string                  `json:"title"`
	Type               string                  `json:"type"` // Software | Hardware Harvest | Creative Build
	Description        string                  `json:"description"`
	Difficulty         string                  `json:"difficulty"` // Beginner | Intermediate | Expert
	CompatibilityScore int                     `json:"compatibilityScore"`
	Reasoning          string                  `json:"reasoning"`
	RequiredParts      []string                `json:"requiredParts"`
	SourceURL          string                  `json:"sourceUrl"`
	Steps              []StepByStepInstruction `json:"steps"`
	Platform           string                  `json:"platform"`
}

// TradeInOffer is one partner offer inside an eco valuation.
type TradeInOffer struct {
	Partner          string `json:"partner"`
	OfferType        string `json:"offerType"` // Discount Coupon | Store Credit | Cash Transfer
	Headline         string `json:"headline"`
	MonetaryValueCap string `json:"monetaryValueCap"`
	CouponURL        string `json:"couponUrl"`
	Reasoning        string `json:"reasoning"`
}

// ValuationSummary grades the device and estimates resale and scrap value.
// The INR fields mirror the USD estimates at a fixed conversion rate.
type ValuationSummary struct {
	DeviceName            string  `json:"deviceName"`
	ConditionGrade        string  `json:"conditionGrade"` // A-F
	EstimatedResaleUSD    float64 `json:"estimatedResaleUsd"`
	EstimatedResaleINR    float64 `json:"estimatedResaleInr"`
	EstimatedScrapCashUSD float64 `json:"estimatedScrapCashUsd"`
	EstimatedScrapCashINR float64 `json:"estimatedScrapCashInr"`
	EcoMessage            string  `json:"ecoMessage"`
}

// EcoValuation is the trade-in valuation block of the response envelope.
type EcoValuation struct {
	ValuationSummary *ValuationSummary `json:"valuationSummary"`
	TradeInOffers    []TradeInOffer    `json:"tradeInOffers"`
}

// ScrapeResponse is the envelope returned by POST /api/v1/scrape.
type ScrapeResponse struct {
	Thoughts        []ThoughtLogEntry       `json:"thoughts"`
	Recommendations []ProjectRecommendation `json:"recommendations"`
	SearchQueries   []string                `json:"searchQueries"`
	DeviceSummary   string                  `json:"deviceSummary"`
	DisassemblyURL  string                  `json:"disassemblyUrl"`
	EcoValuation    *EcoValuation           `json:"ecoValuation,omitempty"`
}

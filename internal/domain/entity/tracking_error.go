package entity

// TrackingError records a per-item failure during a tracking run or backfill.
// The run continues past it.
type TrackingError struct {
	WalletAddress string `json:"walletAddress"`
	TokenSymbol   string `json:"tokenSymbol,omitempty"`
	Chain         string `json:"chain,omitempty"`
	TokenAddress  string `json:"tokenAddress,omitempty"`
	Date          string `json:"date,omitempty"`
	Message       string `json:"message"`
}

// TrackingSummary is the outcome of tracking one wallet.
type TrackingSummary struct {
	WalletAddress  string          `json:"walletAddress"`
	Date           Date            `json:"date"`
	TokensUpdated  int             `json:"tokensUpdated"`
	TokensExcluded []string        `json:"tokensExcluded,omitempty"`
	Errors         []TrackingError `json:"errors,omitempty"`
}

// BackfillSummary is the outcome of a historical preload.
type BackfillSummary struct {
	WalletAddress string          `json:"walletAddress"`
	DaysRequested int             `json:"daysRequested"`
	DaysProcessed int             `json:"daysProcessed"`
	DaysSkipped   int             `json:"daysSkipped"`
	Errors        []TrackingError `json:"errors,omitempty"`
}

package request

// RecordPerformanceRequest represents the request body for recording a
// year's pool performance figures.
type RecordPerformanceRequest struct {
	StartingBalance float64 `json:"startingBalance"`
	EndingBalance   float64 `json:"endingBalance"`
	TotalEarnings   float64 `json:"totalEarnings"`
}

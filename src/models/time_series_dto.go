package models

// TimeSeriesValue is one raw candle record from the upstream provider.
// All fields arrive as strings and volume is never supplied.
type TimeSeriesValue struct {
	Datetime string `json:"datetime"`
	Open     string `json:"open"`
	High     string `json:"high"`
	Low      string `json:"low"`
	Close    string `json:"close"`
}

// TimeSeriesResponse is the upstream provider's time_series payload.
// Values are ordered newest first.
type TimeSeriesResponse struct {
	Status  string            `json:"status"`
	Values  []TimeSeriesValue `json:"values"`
	Message string            `json:"message,omitempty"`
}

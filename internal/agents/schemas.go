package agents

// LLM response shapes. Every agent asks for a bare JSON object matching one
// of these; parsing failures are the agent's to handle.

type selectionResponse struct {
	Tickers   []string `json:"tickers"`
	Reasoning string   `json:"reasoning"`
}

type analysisResponse struct {
	Recommendation string  `json:"recommendation"`
	Conviction     int     `json:"conviction"`
	Thesis         string  `json:"thesis"`
	Risks          string  `json:"risks"`
	TargetPrice    float64 `json:"target_price"`
}

type decisionResponse struct {
	Trades []struct {
		Ticker         string  `json:"ticker"`
		Action         string  `json:"action"`
		Quantity       float64 `json:"quantity"`
		EstimatedPrice float64 `json:"estimated_price"`
		Rationale      string  `json:"rationale"`
		Conviction     int     `json:"conviction"`
	} `json:"trades"`
	Reasoning string `json:"reasoning"`
}

package agents

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mintrader/internal/adapters/ai"
	"mintrader/internal/pipeline"
)

type fakeProvider struct {
	responses []string
	err       error
	requests  []ai.ChatRequest
}

func (f *fakeProvider) Complete(ctx context.Context, req ai.ChatRequest) (string, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return "", f.err
	}
	i := len(f.requests) - 1
	if i >= len(f.responses) {
		i = len(f.responses) - 1
	}
	return f.responses[i], nil
}

func TestSelectStocks_NormalizesAndDedupes(t *testing.T) {
	provider := &fakeProvider{responses: []string{
		`{"tickers": [" aapl", "MSFT", "aapl", ""], "reasoning": "x"}`,
	}}
	selector := NewSelector(provider, "test-model")

	got, err := selector.SelectStocks(context.Background(), pipeline.SelectionInput{MaxCandidates: 3})
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "MSFT"}, got)
}

func TestSelectStocks_FiltersHardExcluded(t *testing.T) {
	provider := &fakeProvider{responses: []string{
		`{"tickers": ["AAPL", "MSFT", "NVDA"], "reasoning": "x"}`,
	}}
	selector := NewSelector(provider, "test-model")

	got, err := selector.SelectStocks(context.Background(), pipeline.SelectionInput{
		HardExcluded:  map[string]bool{"MSFT": true},
		MaxCandidates: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "NVDA"}, got)
	assert.Len(t, provider.requests, 1)
}

func TestSelectStocks_RetriesOnceWhenAllExcluded(t *testing.T) {
	provider := &fakeProvider{responses: []string{
		`{"tickers": ["AAPL", "MSFT"], "reasoning": "first"}`,
		`{"tickers": ["NVDA"], "reasoning": "second"}`,
	}}
	selector := NewSelector(provider, "test-model")

	got, err := selector.SelectStocks(context.Background(), pipeline.SelectionInput{
		HardExcluded:  map[string]bool{"AAPL": true, "MSFT": true},
		MaxCandidates: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"NVDA"}, got)

	require.Len(t, provider.requests, 2)
	assert.Contains(t, provider.requests[1].User, "Do NOT propose")
	assert.Contains(t, provider.requests[1].User, "AAPL")
}

func TestSelectStocks_RetryResultStillFiltered(t *testing.T) {
	provider := &fakeProvider{responses: []string{
		`{"tickers": ["AAPL"], "reasoning": "first"}`,
		`{"tickers": ["AAPL", "NVDA"], "reasoning": "second"}`,
	}}
	selector := NewSelector(provider, "test-model")

	got, err := selector.SelectStocks(context.Background(), pipeline.SelectionInput{
		HardExcluded:  map[string]bool{"AAPL": true},
		MaxCandidates: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"NVDA"}, got)
}

func TestSelectStocks_CapsAtMaxCandidates(t *testing.T) {
	provider := &fakeProvider{responses: []string{
		`{"tickers": ["AAPL", "MSFT", "NVDA", "GOOG"], "reasoning": "x"}`,
	}}
	selector := NewSelector(provider, "test-model")

	got, err := selector.SelectStocks(context.Background(), pipeline.SelectionInput{MaxCandidates: 2})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestSelectStocks_MalformedResponse(t *testing.T) {
	provider := &fakeProvider{responses: []string{`not json`}}
	selector := NewSelector(provider, "test-model")

	_, err := selector.SelectStocks(context.Background(), pipeline.SelectionInput{MaxCandidates: 3})
	require.Error(t, err)
}

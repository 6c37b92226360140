package websearch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/flowbaker/agentflow/pkg/domain"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
)

const (
	// IntegrationID is the id nodes bind to reach this adapter.
	IntegrationID = "web-search"

	SourceLive      = "web-search"
	SourceSimulated = "web-search-simulated"

	defaultEndpoint = "https://api.duckduckgo.com/"
)

// Adapter is the built-in search stub: it queries the DuckDuckGo
// instant-answer API and degrades to a canned simulated result when the call
// fails, so a search node never hard-fails on network trouble.
type Adapter struct {
	httpClient *http.Client
	endpoint   string
}

type AdapterDeps struct {
	HTTPClient *http.Client
	Endpoint   string
}

func NewAdapter(deps AdapterDeps) *Adapter {
	httpClient := deps.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}

	endpoint := deps.Endpoint
	if endpoint == "" {
		endpoint = defaultEndpoint
	}

	return &Adapter{
		httpClient: httpClient,
		endpoint:   endpoint,
	}
}

func (a *Adapter) IsConnected() bool {
	return true
}

type instantAnswerResponse struct {
	Heading       string `json:"Heading"`
	AbstractText  string `json:"AbstractText"`
	AbstractURL   string `json:"AbstractURL"`
	RelatedTopics []struct {
		Text     string `json:"Text"`
		FirstURL string `json:"FirstURL"`
	} `json:"RelatedTopics"`
}

func (a *Adapter) Execute(ctx context.Context, input map[string]any) (domain.AdapterResult, error) {
	query := queryFromInput(input)

	answer, err := a.search(ctx, query)
	if err != nil {
		log.Warn().Err(err).Str("query", query).Msg("Web search failed, returning simulated result")

		return domain.AdapterResult{
			Data: map[string]any{
				"query":    query,
				"abstract": fmt.Sprintf("Simulated search summary for %q.", query),
				"results":  []map[string]any{},
			},
			Source: SourceSimulated,
		}, nil
	}

	results := make([]map[string]any, 0, len(answer.RelatedTopics))

	for _, topic := range answer.RelatedTopics {
		if topic.Text == "" {
			continue
		}

		results = append(results, map[string]any{
			"text": topic.Text,
			"url":  topic.FirstURL,
		})
	}

	return domain.AdapterResult{
		Data: map[string]any{
			"query":    query,
			"heading":  answer.Heading,
			"abstract": answer.AbstractText,
			"url":      answer.AbstractURL,
			"results":  results,
		},
		Source: SourceLive,
	}, nil
}

func (a *Adapter) search(ctx context.Context, query string) (instantAnswerResponse, error) {
	requestURL := fmt.Sprintf("%s?q=%s&format=json&no_html=1", a.endpoint, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return instantAnswerResponse{}, err
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return instantAnswerResponse{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return instantAnswerResponse{}, fmt.Errorf("search api returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return instantAnswerResponse{}, err
	}

	answer := instantAnswerResponse{}

	if err := json.Unmarshal(body, &answer); err != nil {
		return instantAnswerResponse{}, fmt.Errorf("failed to decode search response: %w", err)
	}

	return answer, nil
}

func queryFromInput(input map[string]any) string {
	if query, ok := input["query"].(string); ok && query != "" {
		return query
	}

	if goal, ok := input[domain.InputKeyGoal].(string); ok && goal != "" {
		return goal
	}

	return "general information"
}

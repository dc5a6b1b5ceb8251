package hardcover

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://api.hardcover.app/v1/graphql"

type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	limiter    *rate.Limiter
	maxRetries int
}

func NewClient(baseURL, token string, rps int, maxRetries int) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		baseURL:    baseURL,
		token:      token,
		limiter:    rate.NewLimiter(rate.Every(time.Second/time.Duration(rps)), 1),
		maxRetries: maxRetries,
	}
}

// Document matches one search hit's document payload.
type Document struct {
	ID           string      `json:"id"`
	Title        string      `json:"title"`
	AuthorNames  []string    `json:"author_names"`
	ReleaseYear  json.Number `json:"release_year"`
	Pages        json.Number `json:"pages"`
	Rating       float64     `json:"rating"`
	RatingsCount json.Number `json:"ratings_count"`
	Genres       []string    `json:"genres"`
	Description  string      `json:"description"`
	Image        struct {
		URL string `json:"url"`
	} `json:"image"`
}

const searchBooksQuery = `
query SearchBooks($query: String!, $queryType: String!, $perPage: Int!, $page: Int!) {
    search(query: $query, query_type: $queryType, per_page: $perPage, page: $page) {
        results
    }
}`

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

// searchResponse matches data.search.results.hits from the search endpoint.
type searchResponse struct {
	Data struct {
		Search struct {
			Results struct {
				Hits []struct {
					Document Document `json:"document"`
				} `json:"hits"`
			} `json:"results"`
		} `json:"search"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// Search runs a free-text book search and returns the hits in rank order.
func (c *Client) Search(ctx context.Context, query string, perPage int) ([]Document, error) {
	payload := graphqlRequest{
		Query: searchBooksQuery,
		Variables: map[string]any{
			"query":     query,
			"queryType": "Book",
			"perPage":   perPage,
			"page":      1,
		},
	}

	var res searchResponse
	if err := c.post(ctx, payload, &res); err != nil {
		return nil, err
	}
	if len(res.Errors) > 0 {
		return nil, fmt.Errorf("hardcover search: %s", res.Errors[0].Message)
	}

	docs := make([]Document, 0, len(res.Data.Search.Results.Hits))
	for _, hit := range res.Data.Search.Results.Hits {
		docs = append(docs, hit.Document)
	}
	return docs, nil
}

func (c *Client) post(ctx context.Context, payload any, target any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	var lastErr error
	for i := 0; i <= c.maxRetries; i++ {
		if i > 0 {
			// Backoff: 1s, 2s, 4s...
			backoff := time.Duration(1<<uint(i-1)) * time.Second
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.token)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				lastErr = fmt.Errorf("unexpected status code: %d", resp.StatusCode)
				continue
			}
			return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
		}

		err = json.NewDecoder(resp.Body).Decode(target)
		resp.Body.Close()
		return err
	}
	return fmt.Errorf("after %d retries: %w", c.maxRetries, lastErr)
}

package imagesearch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const pexelsBaseURL = "https://api.pexels.com/v1"

// PexelsClient queries the Pexels photo search API.
type PexelsClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewPexelsClient builds a client. A nil httpClient gets a 15s-timeout
// default.
func NewPexelsClient(apiKey string, httpClient *http.Client) (*PexelsClient, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &PexelsClient{apiKey: apiKey, baseURL: pexelsBaseURL, http: httpClient}, nil
}

func (c *PexelsClient) Source() string { return "pexels" }

type pexelsPhoto struct {
	URL          string `json:"url"`
	Photographer string `json:"photographer"`
	Alt          string `json:"alt"`
	Src          struct {
		Large  string `json:"large"`
		Medium string `json:"medium"`
		Small  string `json:"small"`
	} `json:"src"`
}

type pexelsSearchResponse struct {
	Photos []pexelsPhoto `json:"photos"`
}

func (c *PexelsClient) Search(ctx context.Context, q Query) ([]Result, error) {
	u := fmt.Sprintf("%s/search?query=%s&per_page=%s",
		c.baseURL, url.QueryEscape(q.Text), strconv.Itoa(perPage(q)))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Provider: c.Source(), Status: resp.StatusCode, Body: string(body)}
	}

	var parsed pexelsSearchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("imagesearch: decode pexels response: %w", err)
	}
	out := make([]Result, 0, len(parsed.Photos))
	for _, p := range parsed.Photos {
		out = append(out, Result{
			URL:          p.Src.Large,
			ThumbnailURL: p.Src.Small,
			Description:  p.Alt,
			Photographer: p.Photographer,
			SourcePage:   p.URL,
		})
	}
	return out, nil
}

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

const unsplashBaseURL = "https://api.unsplash.com"

// UnsplashClient queries the Unsplash photo search API.
type UnsplashClient struct {
	accessKey string
	baseURL   string
	http      *http.Client
}

func NewUnsplashClient(accessKey string, httpClient *http.Client) (*UnsplashClient, error) {
	if accessKey == "" {
		return nil, ErrMissingAPIKey
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &UnsplashClient{accessKey: accessKey, baseURL: unsplashBaseURL, http: httpClient}, nil
}

func (c *UnsplashClient) Source() string { return "unsplash" }

type unsplashPhoto struct {
	Description    string `json:"description"`
	AltDescription string `json:"alt_description"`
	URLs           struct {
		Regular string `json:"regular"`
		Small   string `json:"small"`
	} `json:"urls"`
	Links struct {
		HTML string `json:"html"`
	} `json:"links"`
	User struct {
		Name string `json:"name"`
	} `json:"user"`
}

type unsplashSearchResponse struct {
	Results []unsplashPhoto `json:"results"`
}

func (c *UnsplashClient) Search(ctx context.Context, q Query) ([]Result, error) {
	u := fmt.Sprintf("%s/search/photos?query=%s&per_page=%s",
		c.baseURL, url.QueryEscape(q.Text), strconv.Itoa(perPage(q)))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Client-ID "+c.accessKey)
	req.Header.Set("Accept-Version", "v1")

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

	var parsed unsplashSearchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("imagesearch: decode unsplash response: %w", err)
	}
	out := make([]Result, 0, len(parsed.Results))
	for _, p := range parsed.Results {
		desc := p.Description
		if desc == "" {
			desc = p.AltDescription
		}
		out = append(out, Result{
			URL:          p.URLs.Regular,
			ThumbnailURL: p.URLs.Small,
			Description:  desc,
			Photographer: p.User.Name,
			SourcePage:   p.Links.HTML,
		})
	}
	return out, nil
}

package render

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// maxImageBytes bounds a single fetched image; PDF hosts choke on more.
const maxImageBytes = 8 << 20

// Fetcher retrieves an external image so the renderer can inline it.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (data []byte, contentType string, err error)
}

// HTTPFetcher fetches images over HTTP with the injected client.
type HTTPFetcher struct {
	Client *http.Client
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, string, error) {
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("render: image fetch status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, "", err
	}
	ct := resp.Header.Get("Content-Type")
	if ct == "" {
		ct = http.DetectContentType(data)
	}
	return data, ct, nil
}

func newImageCache() *lru.Cache[string, string] {
	c, _ := lru.New[string, string](256)
	return c
}

// dataURI resolves an image reference to an embeddable data URI. Already
// inline values pass through; remote URLs go through the fetcher and a
// URL-keyed LRU so repeated renders of the same deck fetch once.
func (r *Renderer) dataURI(ctx context.Context, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", nil
	}
	if strings.HasPrefix(ref, "data:") {
		return ref, nil
	}
	if !strings.HasPrefix(ref, "http://") && !strings.HasPrefix(ref, "https://") {
		// Bare base64 payloads from templates.
		return "data:image/png;base64," + ref, nil
	}
	if uri, ok := r.cache.Get(ref); ok {
		return uri, nil
	}
	if r.Fetcher == nil {
		return "", fmt.Errorf("render: no image fetcher configured")
	}
	data, ct, err := r.Fetcher.Fetch(ctx, ref)
	if err != nil {
		return "", err
	}
	if ct == "" || !strings.HasPrefix(ct, "image/") {
		ct = "image/jpeg"
	}
	uri := "data:" + ct + ";base64," + base64.StdEncoding.EncodeToString(data)
	r.cache.Add(ref, uri)
	return uri, nil
}

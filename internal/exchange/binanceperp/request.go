package binanceperp

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// doUnsignedGet performs an unsigned GET against a public REST endpoint.
func doUnsignedGet(ctx context.Context, cfg *Config, endpoint string, params map[string]string) ([]byte, int, error) {
	fullURL := strings.TrimRight(cfg.BaseURL, "/") + endpoint
	if len(params) > 0 {
		q := url.Values{}
		for k, v := range params {
			q.Set(k, v)
		}
		fullURL += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, 0, err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return body, resp.StatusCode, nil
}

package helpers

import (
	"context"
	"encoding/json"
	"github.com/pkg/errors"
	"io"
	"net/http"
)

// GetJSON issues a GET request and decodes a 2xx JSON response into out.
func GetJSON(ctx context.Context, client *http.Client, url string, out interface{}) error {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.Wrap(err, "could not build request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return errors.Wrapf(err, "request to %s failed", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return errors.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "could not decode response from %s", url)
	}
	return nil
}

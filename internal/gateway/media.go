package gateway

import (
	"encoding/base64"
	"fmt"
	"io"
	"net/http"

	"github.com/wagate/backend/internal/provider"
)

// fetchMedia downloads the attachment from url and packages it for the
// provider: declared content type plus base64-encoded body. No explicit
// timeout; the transport's defaults apply.
func fetchMedia(httpClient *http.Client, url string) (provider.Media, error) {
	resp, err := httpClient.Get(url)
	if err != nil {
		return provider.Media{}, fmt.Errorf("fetching media: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return provider.Media{}, fmt.Errorf("fetching media: %s returned %s", url, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return provider.Media{}, fmt.Errorf("reading media body: %w", err)
	}

	return provider.Media{
		Mimetype: resp.Header.Get("Content-Type"),
		Data:     base64.StdEncoding.EncodeToString(body),
		Filename: "Media",
	}, nil
}

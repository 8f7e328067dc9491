package cmd

import (
	"context"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/benjaminabbitt/hostcli/internal/errs"
	"github.com/benjaminabbitt/hostcli/internal/repository"
)

// defaultFetcher retrieves url's bytes over http(s), or reads it directly
// off disk for file:// and bare local paths. It's the one place this CLI
// actually touches the network.
func defaultFetcher(ctx context.Context, url string) ([]byte, error) {
	switch {
	case strings.HasPrefix(url, "http://"), strings.HasPrefix(url, "https://"):
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, errs.Wrap(errs.KindNetwork, "invalid URL: "+url, err)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return nil, errs.Wrap(errs.KindNetwork, "request failed: "+url, err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, errs.New(errs.KindNetwork, "unexpected status fetching "+url+": "+resp.Status)
		}
		return io.ReadAll(resp.Body)
	case strings.HasPrefix(url, "file://"):
		return os.ReadFile(strings.TrimPrefix(url, "file://"))
	default:
		return os.ReadFile(url)
	}
}

var _ repository.Fetcher = defaultFetcher

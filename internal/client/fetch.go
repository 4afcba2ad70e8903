package client

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"strconv"
	"strings"
	"time"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/imagewatch/imagewatch/internal/feed"
)

// loadTimeout is the soft deadline on one image load. The underlying
// request is not cancelled when it fires; a completion arriving later is
// dropped by the result channel.
const loadTimeout = 3 * time.Second

var errLoadTimeout = errors.New("image load timed out")

// Fetcher retrieves and decodes feed images over HTTP. One fetcher is
// shared by every load attempt; the single-flight discipline lives in
// feed.Session, not here.
type Fetcher struct {
	baseURL string
	client  *http.Client
	timeout time.Duration
}

// NewFetcher creates a fetcher rooted at the daemon's HTTP base URL
// (e.g. "http://127.0.0.1:8882"). The HTTP client carries no timeout of
// its own; the load deadline is enforced per attempt in Load.
func NewFetcher(baseURL string) *Fetcher {
	return &Fetcher{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{},
		timeout: loadTimeout,
	}
}

// Result is the terminal outcome of one load attempt. Exactly one Result
// is produced per attempt regardless of how the attempt ends.
type Result struct {
	Outcome feed.LoadOutcome
	Image   image.Image
	Err     error
}

// Load fetches the image at path with a cache-busting query parameter and
// resolves within the fetcher's timeout. The first terminal event wins:
// success, failure, and the timeout all race to write the 1-buffered
// result channel, and later writers are dropped.
func (f *Fetcher) Load(path string) Result {
	results := make(chan Result, 1)
	resolve := func(r Result) {
		select {
		case results <- r:
		default:
		}
	}

	go func() {
		img, err := f.fetch(path)
		if err != nil {
			resolve(Result{Outcome: feed.LoadFailure, Err: err})
			return
		}
		resolve(Result{Outcome: feed.LoadSuccess, Image: img})
	}()

	timer := time.AfterFunc(f.timeout, func() {
		resolve(Result{Outcome: feed.LoadTimeout, Err: errLoadTimeout})
	})

	r := <-results
	timer.Stop()
	return r
}

func (f *Fetcher) fetch(path string) (image.Image, error) {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	url := f.baseURL + path + sep + "t=" + strconv.FormatInt(time.Now().UnixNano(), 10)

	resp, err := f.client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: %s", path, resp.Status)
	}

	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

// Package datasource loads the initial project collection.
package datasource

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/ganot/showcase/internal/domain/project"
)

// ErrUnavailable wraps every failure to obtain or decode the collection.
var ErrUnavailable = errors.New("project data unavailable")

// Embedded selects the bundled sample collection.
const Embedded = "embedded"

// maxBody bounds remote responses.
const maxBody = 8 << 20

// DefaultTimeout bounds a load when the Loader sets no timeout.
const DefaultTimeout = 15 * time.Second

//go:embed data/projects.json
var embedded []byte

// Loader reads the collection from a source: "embedded" (or empty), a local
// file path, or an http(s) URL.
type Loader struct {
	Client *http.Client
	// Timeout bounds the whole load. Zero means DefaultTimeout.
	Timeout time.Duration
}

// Load reads and decodes the collection from src. A source that does not
// answer within the timeout fails with ErrUnavailable.
func (l Loader) Load(ctx context.Context, src string) ([]project.Project, error) {
	timeout := l.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	data, err := l.read(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	records, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrUnavailable, src, err)
	}
	return records, nil
}

// Load reads src with the default HTTP client and timeout.
func Load(ctx context.Context, src string) ([]project.Project, error) {
	return Loader{}.Load(ctx, src)
}

// Decode parses a JSON array of records. Null tags decode as empty.
func Decode(data []byte) ([]project.Project, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	var records []project.Project
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("decoding projects: %w", err)
	}
	for i := range records {
		records[i] = records[i].Clone()
	}
	if records == nil {
		records = []project.Project{}
	}
	return records, nil
}

func (l Loader) read(ctx context.Context, src string) ([]byte, error) {
	switch {
	case src == "" || src == Embedded:
		return embedded, nil
	case strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://"):
		return l.fetch(ctx, src)
	default:
		data, err := os.ReadFile(src)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", src, err)
		}
		return data, nil
	}
}

func (l Loader) fetch(ctx context.Context, url string) ([]byte, error) {
	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: unexpected status %d", url, resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", url, err)
	}
	return data, nil
}

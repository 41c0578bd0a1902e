package catalog

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"strings"
	"time"
)

// EnvCatalog names the environment variable consulted when no catalog flag
// is given.
const EnvCatalog = "KUMIHIMO_CATALOG"

// DefaultSource is the Source of the embedded catalog.
const DefaultSource = "builtin:default.yaml"

// maxCatalogBytes bounds what is read from a file or URL.
const maxCatalogBytes = 4 << 20

//go:embed default.yaml
var defaultCatalog []byte

// Default returns the catalog embedded in the binary.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog, FormatYAML, DefaultSource)
}

// Loader reads catalogs from files and URLs.
type Loader struct {
	client *http.Client
	getenv func(string) string
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithHTTPClient sets the client used for catalog URLs.
func WithHTTPClient(c *http.Client) LoaderOption {
	return func(l *Loader) {
		l.client = c
	}
}

// WithGetenv replaces os.Getenv, for tests.
func WithGetenv(getenv func(string) string) LoaderOption {
	return func(l *Loader) {
		l.getenv = getenv
	}
}

// NewLoader creates a loader with a 10s HTTP timeout.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		client: &http.Client{Timeout: 10 * time.Second},
		getenv: os.Getenv,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// ResolveSource picks the catalog location: flag, then $KUMIHIMO_CATALOG,
// then "" for the embedded default.
func (l *Loader) ResolveSource(flag string) string {
	if flag != "" {
		return flag
	}
	return l.getenv(EnvCatalog)
}

// Load reads the catalog at source. An empty source loads the default.
func (l *Loader) Load(ctx context.Context, source string) (*Catalog, error) {
	switch {
	case source == "":
		return Default()
	case strings.HasPrefix(source, "http://"), strings.HasPrefix(source, "https://"):
		return l.LoadURL(ctx, source)
	default:
		return l.LoadFile(source)
	}
}

// LoadFile reads a catalog file; the format comes from the extension.
func (l *Loader) LoadFile(path string) (*Catalog, error) {
	format, ok := DetectFormat(path)
	if !ok {
		return nil, &LoadError{
			Code:    ErrCodeUnsupportedFormat,
			Message: "catalog file must end in .json, .yaml, .yml or .cue",
			Source:  path,
		}
	}

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: "catalog file not found", Source: path, Err: err}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeReadFailed, Message: err.Error(), Source: path, Err: err}
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxCatalogBytes))
	if err != nil {
		return nil, &LoadError{Code: ErrCodeReadFailed, Message: err.Error(), Source: path, Err: err}
	}
	return Parse(data, format, path)
}

// LoadURL fetches a catalog over HTTP. Non-2xx responses are load errors;
// there is no retry.
func (l *Loader) LoadURL(ctx context.Context, url string) (*Catalog, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeReadFailed, Message: err.Error(), Source: url, Err: err}
	}
	req.Header.Set("Accept", "application/json, application/yaml;q=0.9, */*;q=0.1")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeReadFailed, Message: err.Error(), Source: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &LoadError{
			Code:    ErrCodeHTTPStatus,
			Message: fmt.Sprintf("HTTP error! status: %d", resp.StatusCode),
			Source:  url,
		}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxCatalogBytes))
	if err != nil {
		return nil, &LoadError{Code: ErrCodeReadFailed, Message: err.Error(), Source: url, Err: err}
	}

	format, ok := DetectFormat(url)
	if !ok {
		format = formatFromContentType(resp.Header.Get("Content-Type"))
	}
	return Parse(data, format, url)
}

func formatFromContentType(ct string) Format {
	ct = strings.ToLower(ct)
	switch {
	case strings.Contains(ct, "yaml"):
		return FormatYAML
	case strings.Contains(ct, "cue"):
		return FormatCUE
	default:
		return FormatJSON
	}
}

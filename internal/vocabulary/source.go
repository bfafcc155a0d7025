package vocabulary

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/timmy/picprompt/internal/config"
	"github.com/timmy/picprompt/internal/domain"
	"github.com/timmy/picprompt/internal/storage"
)

// Source defines where a vocabulary document is read from.
type Source interface {
	// Name returns a human-readable identifier used in logs and errors.
	Name() string

	// Open returns the raw JSON document.
	// Parameters:
	//   - ctx: context for cancellation and deadlines.
	// Returns:
	//   - io.ReadCloser: document body, closed by the caller.
	//   - error: non-nil when the source is unreachable.
	Open(ctx context.Context) (io.ReadCloser, error)
}

// FileSource reads the vocabulary from a local JSON file.
type FileSource struct {
	path string
}

// NewFileSource creates a file-backed source.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (s *FileSource) Name() string { return "file:" + s.path }

func (s *FileSource) Open(ctx context.Context) (io.ReadCloser, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open vocabulary file: %w", err)
	}
	return f, nil
}

// HTTPSource fetches the vocabulary document over HTTP.
type HTTPSource struct {
	client *resty.Client
	url    string
}

// NewHTTPSource creates an HTTP source. A zero timeout leaves resty's default.
// Parameters:
//   - url: absolute URL of the JSON document.
//   - timeout: per-request timeout.
// Returns:
//   - *HTTPSource: configured source.
func NewHTTPSource(url string, timeout time.Duration) *HTTPSource {
	client := resty.New()
	client.SetHeader("Accept", "application/json")
	if timeout > 0 {
		client.SetTimeout(timeout)
	}
	return &HTTPSource{client: client, url: url}
}

func (s *HTTPSource) Name() string { return "http:" + s.url }

func (s *HTTPSource) Open(ctx context.Context) (io.ReadCloser, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		Get(s.url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch vocabulary: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("vocabulary fetch failed: status %d", resp.StatusCode())
	}
	return io.NopCloser(bytes.NewReader(resp.Body())), nil
}

// ObjectSource reads the vocabulary from object storage.
type ObjectSource struct {
	store storage.ObjectStorage
	key   string
}

// NewObjectSource creates a source reading key from store.
func NewObjectSource(store storage.ObjectStorage, key string) *ObjectSource {
	return &ObjectSource{store: store, key: key}
}

func (s *ObjectSource) Name() string { return "object:" + s.key }

func (s *ObjectSource) Open(ctx context.Context) (io.ReadCloser, error) {
	return s.store.Download(ctx, s.key)
}

// StaticSource serves an in-memory vocabulary. Used by tests and the CLI.
type StaticSource struct {
	data    []byte
	entries []domain.VocabularyEntry
}

// NewStaticSource serves entries, encoded on each Open.
func NewStaticSource(entries []domain.VocabularyEntry) *StaticSource {
	return &StaticSource{entries: entries}
}

// NewRawSource wraps an already encoded document.
func NewRawSource(data []byte) *StaticSource {
	return &StaticSource{data: data}
}

func (s *StaticSource) Name() string { return "static" }

func (s *StaticSource) Open(ctx context.Context) (io.ReadCloser, error) {
	data := s.data
	if data == nil {
		var err error
		if data, err = json.Marshal(s.entries); err != nil {
			return nil, fmt.Errorf("encode static vocabulary: %w", err)
		}
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// NewSource builds the source selected by cfg.
// Parameters:
//   - cfg: vocabulary configuration.
//   - store: object storage, required only when cfg.Source is "object".
// Returns:
//   - Source: configured source.
//   - error: non-nil for unknown or incomplete configuration.
func NewSource(cfg config.VocabularyConfig, store storage.ObjectStorage) (Source, error) {
	switch cfg.Source {
	case "", "file":
		if cfg.Path == "" {
			return nil, fmt.Errorf("vocabulary.path is required for file source")
		}
		return NewFileSource(cfg.Path), nil
	case "http":
		if cfg.URL == "" {
			return nil, fmt.Errorf("vocabulary.url is required for http source")
		}
		return NewHTTPSource(cfg.URL, cfg.Timeout), nil
	case "object":
		if store == nil {
			return nil, fmt.Errorf("object storage is not configured")
		}
		return NewObjectSource(store, cfg.ObjectKey), nil
	default:
		return nil, fmt.Errorf("unsupported vocabulary source: %s", cfg.Source)
	}
}

package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	specflat "github.com/erraggy/specflat"
	"github.com/erraggy/specflat/flaterrors"
)

// DefaultHTTPTimeout is the timeout of the client created when HTTPSource
// has none configured.
const DefaultHTTPTimeout = 30 * time.Second

// HTTPSource fetches documents over HTTP(S). Identifiers are absolute URLs.
type HTTPSource struct {
	// Client is the HTTP client used for requests.
	// If nil, a client with DefaultHTTPTimeout is used.
	Client *http.Client
	// UserAgent is sent with every request (defaults to specflat.UserAgent()).
	UserAgent string
	// MaxSize is the maximum response size in bytes (0 means MaxDocumentSize).
	MaxSize int64
}

// Resolve resolves ref against base per RFC 3986, so a relative ref lands in
// the directory of the including document.
func (s *HTTPSource) Resolve(base, ref string) (string, error) {
	refURL, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("source: invalid reference %q: %w", ref, err)
	}
	if refURL.IsAbs() || base == "" {
		return normalizeID(refURL.String()), nil
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("source: invalid base URL %q: %w", base, err)
	}
	return normalizeID(baseURL.ResolveReference(refURL).String()), nil
}

// Fetch performs a GET request for id. 404 and 410 responses are reported
// as not found.
func (s *HTTPSource) Fetch(ctx context.Context, id string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, id, nil)
	if err != nil {
		return nil, fmt.Errorf("source: failed to create request: %w", err)
	}

	userAgent := s.UserAgent
	if userAgent == "" {
		userAgent = specflat.UserAgent()
	}
	req.Header.Set("User-Agent", userAgent)

	client := s.Client
	if client == nil {
		client = &http.Client{Timeout: DefaultHTTPTimeout}
	}

	resp, err := client.Do(req) //nolint:gosec // G107 - URL comes from the document being flattened
	if err != nil {
		return nil, fmt.Errorf("source: failed to fetch URL: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound, http.StatusGone:
		return nil, &flaterrors.NotFoundError{ID: id, Cause: fmt.Errorf("HTTP %d", resp.StatusCode)}
	default:
		return nil, fmt.Errorf("source: HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	limit := s.MaxSize
	if limit <= 0 {
		limit = MaxDocumentSize
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("source: failed to read response body: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, &flaterrors.ResourceLimitError{
			ResourceType: "document_size",
			Limit:        limit,
			Message:      id,
		}
	}
	return data, nil
}

// Router dispatches identifiers to a local or a remote Source. Refs made
// from a URL document resolve as URLs; absolute URL refs from local
// documents go to Remote.
type Router struct {
	Local Source
	// Remote handles http(s) identifiers. Nil disables remote documents.
	Remote Source
}

// Resolve picks the source owning the result and delegates to it.
func (r *Router) Resolve(base, ref string) (string, error) {
	if IsURL(ref) || IsURL(base) {
		if r.Remote == nil {
			return "", &flaterrors.ReferenceError{
				Ref:     ref,
				RefType: "include",
				Message: "remote documents are disabled",
			}
		}
		return r.Remote.Resolve(base, ref)
	}
	if r.Local == nil {
		return "", &flaterrors.ConfigError{Option: "source", Message: "no local source configured"}
	}
	return r.Local.Resolve(base, ref)
}

// Fetch delegates to Remote for URLs and to Local otherwise.
func (r *Router) Fetch(ctx context.Context, id string) ([]byte, error) {
	if IsURL(id) {
		if r.Remote == nil {
			return nil, &flaterrors.ReferenceError{
				Ref:     id,
				RefType: "include",
				Message: "remote documents are disabled",
			}
		}
		return r.Remote.Fetch(ctx, id)
	}
	if r.Local == nil {
		return nil, &flaterrors.ConfigError{Option: "source", Message: "no local source configured"}
	}
	return r.Local.Fetch(ctx, id)
}

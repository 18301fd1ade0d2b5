// Package fetch retrieves remote tutorials over HTTP(S). Plain responses
// are treated as tutorial Markdown; HTML responses are scanned for a
// <meta name="guiderails:source" content="URL"> tag pointing at the raw
// document, mirroring how project pages link to their source files.
package fetch

import (
	"context"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/net/html"

	"github.com/arthur-debert/guiderails/pkg/errors"
	"github.com/arthur-debert/guiderails/pkg/logging"
)

// MetaName is the meta tag consulted on HTML responses.
const MetaName = "guiderails:source"

const defaultTimeout = 30 * time.Second

// Options configures a Client.
type Options struct {
	// Timeout bounds each request. Zero means the default of 30s.
	Timeout time.Duration

	// HTTP overrides the underlying client entirely when set.
	HTTP *http.Client

	// Logger overrides the default component logger.
	Logger *zerolog.Logger
}

// Client fetches tutorial documents.
type Client struct {
	http   *http.Client
	logger zerolog.Logger
}

// New creates a fetch client.
func New(opts Options) *Client {
	logger := logging.GetLogger("fetch")
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	httpClient := opts.HTTP
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout == 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{http: httpClient, logger: logger}
}

// IsURL reports whether the argument looks like a fetchable URL rather
// than a local path.
func IsURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// Fetch retrieves the tutorial at rawURL. HTML responses are followed
// one hop through their guiderails:source meta tag. It returns the
// tutorial body and the URL it was finally loaded from.
func (c *Client) Fetch(ctx context.Context, rawURL string) (string, string, error) {
	pageURL, err := parseURL(rawURL)
	if err != nil {
		return "", "", err
	}

	c.logger.Debug().Str("url", rawURL).Msg("Fetching tutorial")

	body, contentType, err := c.get(ctx, pageURL.String())
	if err != nil {
		return "", "", err
	}

	if !isHTML(contentType) {
		return body, pageURL.String(), nil
	}

	sourceRef := findMetaSource(strings.NewReader(body))
	if sourceRef == "" {
		return "", "", errors.Newf(errors.ErrFetch,
			"no %s meta tag found at %s", MetaName, rawURL)
	}

	refURL, err := url.Parse(sourceRef)
	if err != nil {
		return "", "", errors.Wrapf(err, errors.ErrFetch,
			"invalid %s meta tag at %s", MetaName, rawURL)
	}
	sourceURL := pageURL.ResolveReference(refURL)
	if sourceURL.Scheme != "http" && sourceURL.Scheme != "https" {
		return "", "", errors.Newf(errors.ErrFetch,
			"meta tag at %s points to unsupported scheme %q", rawURL, sourceURL.Scheme)
	}

	c.logger.Debug().
		Str("page", rawURL).
		Str("source", sourceURL.String()).
		Msg("Following meta tag to tutorial source")

	content, _, err := c.get(ctx, sourceURL.String())
	if err != nil {
		return "", "", err
	}
	return content, sourceURL.String(), nil
}

func (c *Client) get(ctx context.Context, u string) (string, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", "", errors.Wrapf(err, errors.ErrFetch, "invalid request for %s", u)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", "", errors.Wrapf(err, errors.ErrFetch, "failed to fetch %s", u)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", "", errors.Newf(errors.ErrFetch,
			"failed to fetch %s: server returned %s", u, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", errors.Wrapf(err, errors.ErrFetch, "failed to read response from %s", u)
	}

	return string(data), resp.Header.Get("Content-Type"), nil
}

func parseURL(rawURL string) (*url.URL, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrInvalidInput, "invalid URL %q", rawURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, errors.Newf(errors.ErrInvalidInput,
			"unsupported URL scheme %q, only http and https are supported", u.Scheme)
	}
	return u, nil
}

func isHTML(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "text/html" || mediaType == "application/xhtml+xml"
}

// findMetaSource tokenizes an HTML document and returns the content of
// the guiderails:source meta tag. Scanning stops at the end of the head
// section; a meta tag in the body would not be valid HTML anyway.
func findMetaSource(r io.Reader) string {
	z := html.NewTokenizer(r)
	for {
		switch z.Next() {
		case html.ErrorToken:
			return ""
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			switch string(name) {
			case "body":
				return ""
			case "meta":
				if !hasAttr {
					continue
				}
				var metaName, content string
				for {
					key, val, more := z.TagAttr()
					switch string(key) {
					case "name":
						metaName = string(val)
					case "content":
						content = string(val)
					}
					if !more {
						break
					}
				}
				if metaName == MetaName {
					return content
				}
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if string(name) == "head" {
				return ""
			}
		}
	}
}

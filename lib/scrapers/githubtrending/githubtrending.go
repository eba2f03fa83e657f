package githubtrending

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"trendwatch-backend/lib/htmlutil"
	"trendwatch-backend/lib/restyutil"
	"trendwatch-backend/lib/textutil"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var ErrFetch = errors.New("failed to fetch the trending page")
var ErrParse = errors.New("failed to parse the trending page")

const (
	DefaultBaseUrl  = "https://github.com/trending"
	DefaultSelector = "article.Box-row h2.h3 a"
	DefaultMaxRepos = 5
	DefaultTimeout  = time.Second * 10
)

// Repository is one entry scraped off the trending page.
type Repository struct {
	Name string
	Link string
}

type ClientOptions struct {
	// BaseUrl is the page to scrape. Defaults to DefaultBaseUrl.
	BaseUrl string
	// Selector is the css selector picking the repository anchors out of
	// the page. Defaults to DefaultSelector.
	Selector string
	// MaxRepos caps how many entries a scrape returns. Values below 1
	// fall back to DefaultMaxRepos.
	MaxRepos int
	// Timeout bounds the whole http exchange. Defaults to DefaultTimeout.
	Timeout time.Duration
}

type Client struct {
	BaseUrl  *url.URL
	Http     *resty.Client
	selector cascadia.Selector
	maxRepos int
}

func NewClient(opts ClientOptions) (*Client, error) {
	if opts.BaseUrl == "" {
		opts.BaseUrl = DefaultBaseUrl
	}
	if opts.Selector == "" {
		opts.Selector = DefaultSelector
	}
	if opts.MaxRepos < 1 {
		opts.MaxRepos = DefaultMaxRepos
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	baseUrl, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, err
	}
	// an invalid selector should fail here at construction, not
	// somewhere in the middle of a run
	selector, err := cascadia.Compile(opts.Selector)
	if err != nil {
		return nil, fmt.Errorf("compile selector %q: %w", opts.Selector, err)
	}

	client := resty.New()
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)

	client.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	client.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(baseUrl.Hostname()))
	client.SetTimeout(opts.Timeout)

	restyutil.InstrumentClient(client, tracer, restyInstrumentOutput)

	c := &Client{
		BaseUrl:  baseUrl,
		Http:     client,
		selector: selector,
		maxRepos: opts.MaxRepos,
	}
	return c, nil
}

// FetchHTML performs a single GET of the trending page and returns the
// raw document. There are no retries, any transport failure or non-2xx
// status wraps ErrFetch.
func (c *Client) FetchHTML(ctx context.Context) (string, error) {
	ctx, span := tracer.Start(ctx, "client:FetchHTML")
	defer span.End()

	res, err := c.Http.R().
		SetContext(ctx).
		Get(c.BaseUrl.String())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		return "", fmt.Errorf("%w: %w", ErrFetch, err)
	}
	if !res.IsSuccess() {
		err := fmt.Errorf("%w: status %s", ErrFetch, res.Status())
		span.RecordError(err)
		span.SetStatus(codes.Error, "non-2xx status")
		return "", err
	}

	slog.DebugContext(
		ctx, "fetched trending page",
		"url", c.BaseUrl.String(),
		"status", res.StatusCode(),
		"bytes", len(res.Body()),
	)
	return res.String(), nil
}

var defaultSelector = cascadia.MustCompile(DefaultSelector)

// ParseRepositories extracts up to maxRepos entries from a trending page
// document using the default selector and link prefix. Deterministic:
// the same html always yields the same entries.
func ParseRepositories(html string, maxRepos int) ([]Repository, error) {
	if maxRepos < 1 {
		maxRepos = DefaultMaxRepos
	}
	return parseRepositories(html, defaultSelector, "https://github.com", maxRepos)
}

// ParseRepositories extracts up to the configured number of entries from
// a trending page document, in document order.
func (c *Client) ParseRepositories(ctx context.Context, html string) ([]Repository, error) {
	ctx, span := tracer.Start(ctx, "client:ParseRepositories")
	defer span.End()

	repos, err := parseRepositories(html, c.selector, c.linkPrefix(), c.maxRepos)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "parse failed")
		return nil, err
	}
	if len(repos) == 0 {
		slog.WarnContext(
			ctx, "selector matched nothing",
			"url", c.BaseUrl.String(),
		)
	}

	span.SetAttributes(attribute.Int("repo_count", len(repos)))
	return repos, nil
}

func parseRepositories(html string, selector cascadia.Selector, linkPrefix string, maxRepos int) ([]Repository, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}

	nodes := doc.FindMatcher(selector).Nodes
	if len(nodes) > maxRepos {
		nodes = nodes[:maxRepos]
	}

	var repos []Repository
	for i, node := range nodes {
		href, ok := htmlutil.Href(node)
		if !ok {
			return nil, fmt.Errorf("%w: anchor %d has no href attribute", ErrParse, i)
		}
		repos = append(repos, Repository{
			Name: textutil.CompactName(htmlutil.GetText(node)),
			Link: linkPrefix + href,
		})
	}
	return repos, nil
}

func (c *Client) linkPrefix() string {
	return c.BaseUrl.Scheme + "://" + c.BaseUrl.Host
}

// Scrape is one fetch+parse round trip.
func (c *Client) Scrape(ctx context.Context) ([]Repository, error) {
	ctx, span := tracer.Start(ctx, "client:Scrape")
	defer span.End()

	html, err := c.FetchHTML(ctx)
	if err != nil {
		return nil, err
	}
	return c.ParseRepositories(ctx, html)
}

package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	gogithub "github.com/google/go-github/v66/github"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/oauth2"

	"github.com/harrisonrobin/taskboard/pkg/logging"
	"github.com/harrisonrobin/taskboard/pkg/tracker"
)

const perPage = 100

// Client is a GitHub issues client for a single repository.
type Client struct {
	gh      *gogithub.Client
	owner   string
	repo    string
	breaker *gobreaker.CircuitBreaker
}

type Option func(*Client) error

// WithBaseURL points the client at another API root, e.g. GitHub Enterprise.
func WithBaseURL(raw string) Option {
	return func(c *Client) error {
		if raw == "" {
			return nil
		}
		if !strings.HasSuffix(raw, "/") {
			raw += "/"
		}
		u, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("invalid API URL %q: %w", raw, err)
		}
		c.gh.BaseURL = u
		return nil
	}
}

// NewClient creates a client that authenticates every request with token.
func NewClient(ctx context.Context, token, repository string, opts ...Option) (*Client, error) {
	if token == "" {
		return nil, tracker.ErrUnauthenticated
	}
	httpClient := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))
	return New(httpClient, repository, opts...)
}

// New creates a client on top of an already authenticated http.Client.
// repository is "owner/name".
func New(httpClient *http.Client, repository string, opts ...Option) (*Client, error) {
	owner, repo, ok := strings.Cut(repository, "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return nil, fmt.Errorf("repository must be owner/name, got %q", repository)
	}

	c := &Client{
		gh:      gogithub.NewClient(httpClient),
		owner:   owner,
		repo:    repo,
		breaker: newBreaker(repository),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// newBreaker stops hammering the API after repeated server or network
// failures. Client errors (4xx) count as successes: they are about the
// request, not the service.
func newBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "github:" + name,
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			code := tracker.StatusCode(err)
			return code >= 400 && code < 500
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("circuit breaker state changed")
		},
	})
}

// call runs fn through the circuit breaker and converts API failures into
// tracker errors.
func call[T any](c *Client, op string, fn func() (T, *gogithub.Response, error)) (T, error) {
	var zero T
	out, err := c.breaker.Execute(func() (interface{}, error) {
		v, resp, err := fn()
		if err != nil {
			return nil, remoteError(op, resp, err)
		}
		return v, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return zero, fmt.Errorf("%s: github unavailable: %w", op, err)
		}
		return zero, err
	}
	return out.(T), nil
}

func remoteError(op string, resp *gogithub.Response, err error) error {
	if resp == nil || resp.Response == nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	re := &tracker.RemoteError{Op: op, StatusCode: resp.StatusCode, Message: err.Error()}
	var er *gogithub.ErrorResponse
	var rl *gogithub.RateLimitError
	var arl *gogithub.AbuseRateLimitError
	switch {
	case errors.As(err, &rl):
		re.Message = rl.Message
		if reset := rl.Rate.Reset.Time; !reset.IsZero() {
			re.Message = fmt.Sprintf("%s (resets at %s)", rl.Message, reset.Local().Format("15:04"))
		}
		re.RateLimited = true
	case errors.As(err, &arl):
		re.Message = arl.Message
		re.RateLimited = true
	case errors.As(err, &er):
		re.Message = er.Message
	}

	logging.Logger.WithFields(logrus.Fields{
		"op":          op,
		"status":      resp.StatusCode,
		"rateLimited": re.RateLimited,
	}).Warnf("github request failed: %s", re.Message)

	return re
}

type page[T any] struct {
	items []T
	next  int
}

func listPage[T any](c *Client, op string, fn func() ([]T, *gogithub.Response, error)) (page[T], error) {
	return call(c, op, func() (page[T], *gogithub.Response, error) {
		items, resp, err := fn()
		p := page[T]{items: items}
		if resp != nil {
			p.next = resp.NextPage
		}
		return p, resp, err
	})
}

package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"forum-tags-service/internal/domain"
)

// DiscussionsEndpoint is the listing API path.
const DiscussionsEndpoint = "/api/discussions"

// errorDocument is the JSON:API error body.
type errorDocument struct {
	Errors []struct {
		Status string `json:"status"`
		Code   string `json:"code"`
		Detail string `json:"detail"`
	} `json:"errors"`
}

// RemoteClient implements domain.APIClient against a forum's HTTP API.
type RemoteClient struct {
	client *resty.Client
	cb     *gobreaker.CircuitBreaker[*domain.APIDocument]
	logger *zap.Logger
}

// NewRemoteClient creates a client for the API at cfg.BaseURL.
func NewRemoteClient(cfg ClientConfig, logger *zap.Logger) *RemoteClient {
	return &RemoteClient{
		client: NewRestyClient(cfg),
		cb:     NewCircuitBreaker[*domain.APIDocument]("discussion_api", cfg.CB, logger),
		logger: logger,
	}
}

// ListDiscussions requests a page of discussions as actor. The actor's
// token, if any, is forwarded so the API applies the same permissions.
func (c *RemoteClient) ListDiscussions(ctx context.Context, actor *domain.Actor, params domain.ListParams) (*domain.APIDocument, error) {
	doc, err := c.cb.Execute(func() (*domain.APIDocument, error) {
		var result domain.APIDocument
		var failure errorDocument

		req := c.client.R().
			SetContext(ctx).
			SetResult(&result).
			SetError(&failure).
			SetQueryParams(queryParams(params))
		if actor != nil && actor.Token != "" {
			req.SetHeader("Authorization", "Token "+actor.Token)
		}

		resp, err := req.Get(DiscussionsEndpoint)
		if err != nil {
			return nil, err
		}
		if resp.IsError() {
			return nil, newStatusError(resp.StatusCode(), failure)
		}

		return &result, nil
	})
	if err != nil {
		c.logger.Warn("discussion api request failed",
			zap.Error(err),
			zap.String("state", c.cb.State().String()),
		)

		return nil, fmt.Errorf("requesting discussions: %w", err)
	}

	return doc, nil
}

// HealthCheck verifies the API is reachable.
func (c *RemoteClient) HealthCheck(ctx context.Context) error {
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("page[limit]", "1").
		Get(DiscussionsEndpoint)
	if err != nil {
		return err
	}
	if resp.IsError() {
		return &StatusError{StatusCode: resp.StatusCode()}
	}

	return nil
}

// queryParams encodes params with the bracketed keys the listing API reads.
func queryParams(p domain.ListParams) map[string]string {
	q := map[string]string{
		"filter[q]":    p.Filter.Q,
		"page[offset]": strconv.Itoa(p.Page.Offset),
		"page[limit]":  strconv.Itoa(p.Page.Limit),
	}
	if p.Sort != "" {
		q["sort"] = p.Sort
	}

	return q
}

func newStatusError(status int, failure errorDocument) error {
	statusErr := &StatusError{StatusCode: status}
	if len(failure.Errors) > 0 {
		statusErr.Detail = failure.Errors[0].Detail
	}

	switch status {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %w", domain.ErrUnauthorized, statusErr)
	case http.StatusBadRequest:
		if len(failure.Errors) > 0 && failure.Errors[0].Code == "invalid_sort" {
			return fmt.Errorf("%w: %w", domain.ErrInvalidSort, statusErr)
		}
	}

	return statusErr
}

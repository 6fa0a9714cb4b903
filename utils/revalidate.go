package utils

import (
	"context"
	"time"

	"campus/logger"

	"github.com/go-resty/resty/v2"
)

// WebhookRevalidator asks an external cache (CDN, edge proxy) to drop the
// rendered pages of the given paths. With no URL it only logs.
type WebhookRevalidator struct {
	url    string
	client *resty.Client
	log    *logger.Logger
}

func NewWebhookRevalidator(url, secret string, log *logger.Logger) *WebhookRevalidator {
	client := resty.New().
		SetTimeout(5 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(200 * time.Millisecond)
	if secret != "" {
		client.SetAuthToken(secret)
	}
	return &WebhookRevalidator{url: url, client: client, log: log.With("revalidate")}
}

func (r *WebhookRevalidator) Revalidate(ctx context.Context, paths ...string) {
	if len(paths) == 0 {
		return
	}
	if r.url == "" {
		r.log.Debug("Revalidated paths", logger.Fields{"paths": paths})
		return
	}

	resp, err := r.client.R().
		SetContext(ctx).
		SetBody(map[string]interface{}{"paths": paths}).
		Post(r.url)
	if err != nil {
		r.log.Warn("Revalidation webhook failed", logger.Fields{"paths": paths}, err)
		return
	}
	if resp.IsError() {
		r.log.Warn("Revalidation webhook rejected", logger.Fields{"paths": paths, "status": resp.StatusCode()})
	}
}

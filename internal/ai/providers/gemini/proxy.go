package gemini

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/yildizm/mclogsum/internal/ai"
)

// maxProxyResponse bounds how much of an upstream reply is relayed
const maxProxyResponse = 16 << 20

// ProxyResponse is an upstream reply relayed as-is
type ProxyResponse struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// Forward posts a raw generateContent request body to the configured
// target and returns the upstream status and body unchanged.
func (p *Provider) Forward(ctx context.Context, body []byte) (*ProxyResponse, error) {
	endpoint := p.endpoint(p.config.ProxyTarget)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, ai.NewProviderErrorWithCause(ai.ErrTypeConfiguration, "failed to create proxy request", ProviderName, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, classifyError(ctx, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxProxyResponse))
	if err != nil {
		return nil, ai.NewProviderErrorWithCause(ai.ErrTypeNetwork, "failed to read upstream response", ProviderName, err)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/json"
	}

	return &ProxyResponse{
		StatusCode:  resp.StatusCode,
		ContentType: contentType,
		Body:        data,
	}, nil
}

func (p *Provider) endpoint(target string) string {
	return fmt.Sprintf("%s%s/models/%s:generateContent?key=%s",
		normalizeTarget(target), DefaultAPIVersion, p.config.Model, url.QueryEscape(p.config.APIKey))
}

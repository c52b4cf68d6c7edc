package gemini

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"google.golang.org/genai"

	"github.com/yildizm/mclogsum/internal/ai"
)

// Provider summarizes logs with Gemini through a configurable proxy target
type Provider struct {
	config     *Config
	httpClient *http.Client

	mu      sync.Mutex
	clients map[string]*genai.Client
}

func New(config *Config) (*Provider, error) {
	if config == nil {
		config = DefaultConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Provider{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		clients:    make(map[string]*genai.Client),
	}, nil
}

func (p *Provider) Name() string {
	return ProviderName
}

// Summarize asks Gemini for the main error cause and suggestions. A proxy
// target on the request replaces the configured one for this call only.
func (p *Provider) Summarize(ctx context.Context, req *ai.SummaryRequest) (*ai.SummaryResponse, error) {
	if req == nil || strings.TrimSpace(req.Log) == "" {
		return nil, ai.NewProviderError(ai.ErrTypeValidation, "log content is required", ProviderName)
	}

	target := p.config.ProxyTarget
	if req.ProxyTarget != "" {
		if err := validateTarget(req.ProxyTarget); err != nil {
			return nil, ai.NewProviderErrorWithCause(ai.ErrTypeValidation, "invalid proxy override", ProviderName, err)
		}
		target = req.ProxyTarget
	}

	client, err := p.clientFor(ctx, target)
	if err != nil {
		return nil, err
	}

	prompt := ai.BuildPrompt(req, p.config.MaxLogChars)
	genCfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(prompt.SystemPrompt, genai.RoleUser),
	}

	start := time.Now()
	var resp *genai.GenerateContentResponse
	for attempt := 0; ; attempt++ {
		resp, err = client.Models.GenerateContent(ctx, p.config.Model, genai.Text(prompt.String()), genCfg)
		if err == nil {
			break
		}
		err = classifyError(ctx, err)
		if attempt >= p.config.Retry.MaxRetries || !ai.IsRetryableError(err) {
			return nil, err
		}
		select {
		case <-ctx.Done():
			return nil, classifyError(ctx, ctx.Err())
		case <-time.After(p.config.Retry.Backoff(attempt + 1)):
		}
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return nil, ai.NewProviderError(ai.ErrTypeEmptyResponse, "model returned no content", ProviderName)
	}

	return &ai.SummaryResponse{
		Text:      text,
		Model:     p.config.Model,
		Provider:  ProviderName,
		RequestID: req.RequestID,
		Duration:  time.Since(start),
		CreatedAt: time.Now(),
	}, nil
}

func (p *Provider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clients = make(map[string]*genai.Client)
	return nil
}

// clientFor returns the client bound to target, creating it on first use
func (p *Provider) clientFor(ctx context.Context, target string) (*genai.Client, error) {
	target = normalizeTarget(target)

	p.mu.Lock()
	defer p.mu.Unlock()

	if c, ok := p.clients[target]; ok {
		return c, nil
	}

	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     p.config.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: p.httpClient,
		HTTPOptions: genai.HTTPOptions{
			BaseURL:    target,
			APIVersion: DefaultAPIVersion,
		},
	})
	if err != nil {
		return nil, ai.NewProviderErrorWithCause(ai.ErrTypeConfiguration, "failed to create Gemini client", ProviderName, err)
	}
	p.clients[target] = c
	return c, nil
}

func classifyError(ctx context.Context, err error) error {
	var pe *ai.ProviderError
	if errors.As(err, &pe) {
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) || (ctx.Err() != nil && errors.Is(ctx.Err(), context.DeadlineExceeded)) {
		return ai.NewProviderErrorWithCause(ai.ErrTypeTimeout, "request timed out", ProviderName, err)
	}
	if errors.Is(err, context.Canceled) {
		return ai.NewProviderErrorWithCause(ai.ErrTypeProvider, "request canceled", ProviderName, err)
	}

	var apiErr *genai.APIError
	if errors.As(err, &apiErr) {
		return ai.NewProviderErrorWithCause(ai.ErrTypeProvider, apiErr.Message, ProviderName, err).WithStatus(apiErr.Code)
	}

	return ai.NewProviderErrorWithCause(ai.ErrTypeNetwork, "request failed", ProviderName, err)
}

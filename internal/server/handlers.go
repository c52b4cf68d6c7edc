package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/yildizm/mclogsum/internal/ai"
	"github.com/yildizm/mclogsum/internal/common"
	"github.com/yildizm/mclogsum/internal/upload"
)

// extractResponse keeps the field names the web front end expects
type extractResponse struct {
	Info common.Fields `json:"info"`
	Log  string        `json:"log"`
}

type geminiRequest struct {
	Log    string        `json:"log"`
	Proxy  string        `json:"proxy"`
	Fields common.Fields `json:"fields"`
}

type geminiResponse struct {
	Gemini string `json:"gemini"`
	Model  string `json:"model,omitempty"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"version": s.version,
		"ai":      s.summarizer != nil,
	})
}

// handleExtract returns the extracted fields and the raw log
func (s *Server) handleExtract(c echo.Context) error {
	log, err := s.readUpload(c)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, extractResponse{
		Info: s.diagnoser.Extract(log),
		Log:  log,
	})
}

// handleAnalyze returns the full report for an uploaded log
func (s *Server) handleAnalyze(c echo.Context) error {
	log, err := s.readUpload(c)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, s.diagnoser.Diagnose(log))
}

// handleGemini asks the summarizer about a log already sent to the client
func (s *Server) handleGemini(c echo.Context) error {
	var req geminiRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	if strings.TrimSpace(req.Log) == "" {
		return NewBadRequestError("log is required", nil)
	}
	if s.summarizer == nil {
		return NewServiceUnavailableError("AI analysis is not configured")
	}

	report := s.diagnoser.Diagnose(req.Log)
	fields := req.Fields
	if len(fields) == 0 {
		fields = report.Fields
	}

	ctx, cancel := s.analysisContext(c)
	defer cancel()

	resp, err := s.summarizer.Summarize(ctx, &ai.SummaryRequest{
		Log:         req.Log,
		Fields:      fields,
		Diagnosis:   &report.Diagnosis,
		ProxyTarget: req.Proxy,
		RequestID:   c.Response().Header().Get(echo.HeaderXRequestID),
	})
	if err != nil {
		return summarizeError(err)
	}

	return c.JSON(http.StatusOK, geminiResponse{Gemini: resp.Text, Model: resp.Model})
}

// handleProxy relays a raw generateContent request and its answer
func (s *Server) handleProxy(c echo.Context) error {
	if s.forwarder == nil {
		return NewServiceUnavailableError("Gemini proxy is not configured")
	}

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return NewBadRequestError("failed to read request body", err)
	}

	ctx, cancel := s.analysisContext(c)
	defer cancel()

	resp, err := s.forwarder.Forward(ctx, body)
	if err != nil {
		return NewUpstreamError("Gemini proxy request failed", err)
	}

	return c.Blob(resp.StatusCode, resp.ContentType, resp.Body)
}

// readUpload stages the multipart "file" field and returns its text
func (s *Server) readUpload(c echo.Context) (string, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return "", NewBadRequestError("no file uploaded", err)
	}

	log, err := s.uploads.ReadFileHeader(fh)
	switch {
	case errors.Is(err, upload.ErrNotText):
		return "", NewBadRequestError("uploaded file is not a text log", err)
	case errors.Is(err, upload.ErrTooLarge):
		return "", NewTooLargeError("uploaded file is too large", err)
	case err != nil:
		return "", NewInternalError("failed to read uploaded file", err)
	}
	return log, nil
}

func (s *Server) analysisContext(c echo.Context) (context.Context, context.CancelFunc) {
	ctx := c.Request().Context()
	if t := s.cfg.Analysis.Timeout; t > 0 {
		return context.WithTimeout(ctx, t)
	}
	return context.WithCancel(ctx)
}

// summarizeError maps provider errors onto HTTP statuses
func summarizeError(err error) error {
	var perr *ai.ProviderError
	if errors.As(err, &perr) {
		switch perr.Type {
		case ai.ErrTypeValidation:
			return NewBadRequestError("invalid AI request", err)
		case ai.ErrTypeConfiguration:
			return NewServiceUnavailableError("AI analysis is not configured")
		}
	}
	return NewUpstreamError("Gemini API call failed", err)
}

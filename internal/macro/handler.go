// Package macro implements the CloudFormation macro that merges alert resources
// into a template fragment.
package macro

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/AutoScout24/serverless-plugin-aws-alerts/internal/compiler"
	"github.com/AutoScout24/serverless-plugin-aws-alerts/internal/config"
)

// Response statuses understood by CloudFormation.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

const (
	paramStage     = "Stage"
	paramStackName = "StackName"
)

var (
	// ErrMissingStackName indicates neither the request nor the environment names the stack.
	ErrMissingStackName = errors.New("stack name is not set")
	// ErrMissingAlerts indicates a fragment without alerting configuration while one is required.
	ErrMissingAlerts = errors.New("fragment has no Metadata.Alerts section")
)

// Request is the event CloudFormation sends to a macro function.
type Request struct {
	Region                  string          `json:"region"`
	AccountID               string          `json:"accountId"`
	Fragment                json.RawMessage `json:"fragment"`
	TransformID             string          `json:"transformId"`
	Params                  map[string]any  `json:"params"`
	RequestID               string          `json:"requestId"`
	TemplateParameterValues map[string]any  `json:"templateParameterValues"`
}

// Response is the reply CloudFormation expects from a macro function.
type Response struct {
	RequestID    string          `json:"requestId"`
	Status       string          `json:"status"`
	Fragment     json.RawMessage `json:"fragment,omitempty"`
	ErrorMessage string          `json:"errorMessage,omitempty"`
}

// Handler serves CloudFormation macro requests.
type Handler struct {
	cfg    *config.Config
	logger *slog.Logger
}

// NewHandler creates a Handler using the macro runtime configuration.
func NewHandler(cfg *config.Config, logger *slog.Logger) *Handler {
	return &Handler{
		cfg:    cfg,
		logger: logger,
	}
}

// HandleRequest compiles the alerts of the request fragment. Failures are
// reported through the response status so CloudFormation can surface them.
func (h *Handler) HandleRequest(ctx context.Context, req Request) (Response, error) {
	stage := coalesce(req.Params[paramStage], req.TemplateParameterValues[paramStage], h.cfg.Stage)
	stackName := coalesce(req.Params[paramStackName], h.cfg.StackName)

	if stackName == "" {
		return h.fail(ctx, req, "invalid request", ErrMissingStackName), nil
	}

	fragment, err := ParseFragment(req.Fragment, stackName)
	if err != nil {
		return h.fail(ctx, req, "cannot parse fragment", err), nil
	}

	if fragment.Alerts() == nil && h.cfg.RequireConfig {
		return h.fail(ctx, req, "invalid fragment", ErrMissingAlerts), nil
	}

	c := compiler.New(fragment, h.logger)
	result, err := c.Compile(ctx, fragment.Alerts(), stage, fragment.Template())
	if err != nil {
		return h.fail(ctx, req, "cannot compile alerts", err), nil
	}

	out, err := json.Marshal(fragment.Template())
	if err != nil {
		return h.fail(ctx, req, "cannot encode fragment", err), nil
	}

	h.logger.InfoContext(
		ctx,
		"processed fragment",
		slog.String("requestId", req.RequestID),
		slog.String("outcome", string(result.Outcome)),
		slog.String("stage", stage),
		slog.String("stackName", stackName),
	)

	return Response{
		RequestID: req.RequestID,
		Status:    StatusSuccess,
		Fragment:  out,
	}, nil
}

func (h *Handler) fail(ctx context.Context, req Request, msg string, err error) Response {
	h.logger.ErrorContext(
		ctx,
		msg,
		slog.String("requestId", req.RequestID),
		slog.String("error", err.Error()),
	)

	return Response{
		RequestID:    req.RequestID,
		Status:       StatusFailure,
		ErrorMessage: msg + ": " + err.Error(),
	}
}

// coalesce returns the first non-empty string of values.
func coalesce(values ...any) string {
	for _, v := range values {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return ""
}

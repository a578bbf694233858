package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/smallbiznis/anubad/internal/observability/tracing"
	"github.com/smallbiznis/anubad/pkg/telemetry/correlation"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const maxErrorBody = 512

type jsonRequest struct {
	provider string
	model    string
	url      string
	headers  map[string]string
	body     any
}

// doJSON posts body as JSON and decodes a 2xx response into out.
func doJSON(ctx context.Context, client *http.Client, log *zap.Logger, req jsonRequest, out any) error {
	ctx, cid := correlation.EnsureCorrelationID(ctx)
	ctx, span := otel.Tracer("anubad/completion").Start(ctx, "completion."+req.provider, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(tracing.SafeAttributes(
		attribute.String("provider", req.provider),
		attribute.String("provider.model", req.model),
		attribute.String("correlation_id", cid),
	)...)

	fail := func(err error) error {
		span.RecordError(tracing.SafeError(err))
		span.SetStatus(codes.Error, "completion failed")
		return err
	}

	payload, err := json.Marshal(req.body)
	if err != nil {
		return fail(fmt.Errorf("marshal %s request: %w", req.provider, err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, req.url, bytes.NewReader(payload))
	if err != nil {
		return fail(fmt.Errorf("%w: build request: %v", ErrAPICallFailed, err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set(correlation.HeaderCorrelationID, cid)
	for k, v := range req.headers {
		httpReq.Header.Set(k, v)
	}
	tracing.InjectContext(ctx, propagation.HeaderCarrier(httpReq.Header))

	start := time.Now()
	resp, err := client.Do(httpReq)
	if err != nil {
		log.Warn("completion request failed",
			zap.String("provider", req.provider),
			zap.String("correlation_id", cid),
			zap.Error(err),
		)
		return fail(fmt.Errorf("%w: %v", ErrAPICallFailed, err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fail(fmt.Errorf("%w: read response: %v", ErrAPICallFailed, err))
	}

	log.Debug("completion response",
		zap.String("provider", req.provider),
		zap.String("model", req.model),
		zap.String("correlation_id", cid),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fail(fmt.Errorf("%w: status %d: %s", ErrAPICallFailed, resp.StatusCode, truncate(body)))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fail(fmt.Errorf("%w: decode response: %v", ErrAPICallFailed, err))
	}
	return nil
}

func truncate(body []byte) string {
	msg := strings.TrimSpace(string(body))
	if len(msg) > maxErrorBody {
		return msg[:maxErrorBody]
	}
	return msg
}

func joinURL(base, path string) string {
	return strings.TrimRight(strings.TrimSpace(base), "/") + path
}

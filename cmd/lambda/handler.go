package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambdacontext"

	"github.com/Abraxas-365/nimbus/pkg/errx"
	"github.com/Abraxas-365/nimbus/pkg/iam"
	"github.com/Abraxas-365/nimbus/pkg/kernel"
	"github.com/Abraxas-365/nimbus/pkg/logx"
)

// typedError is returned to mapping-template callers, whose integration
// responses select the status by matching the "[status]" prefix.
type typedError struct {
	status  int
	message string
}

func (e *typedError) Error() string { return fmt.Sprintf("[%d] %s", e.status, e.message) }

type handler struct {
	router   *iam.Router
	resource string
	pool     iam.PoolParams
	origins  string
}

// Invoke is registered with lambda.Start. Proxy events always get a proxy
// response unless the failure is untyped, which is returned to the runtime.
func (h *handler) Invoke(ctx context.Context, raw json.RawMessage) (any, error) {
	if lc, ok := lambdacontext.FromContext(ctx); ok {
		ctx = kernel.WithRequestID(ctx, lc.AwsRequestID)
	}

	var ev event
	if err := json.Unmarshal(raw, &ev); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}
	if iam.ParseWarming(ev.Warming) {
		return h.respond(&ev, http.StatusOK, iam.Warmed())
	}

	req, err := ev.request(h.resource, h.pool)
	var bad errBadBody
	if errors.As(err, &bad) {
		logx.WithContext(ctx).WithError(err).Info("Request rejected")
		return h.respond(&ev, http.StatusBadRequest, errx.Response{Message: "Request body must be a JSON object."})
	}
	if err != nil {
		return nil, err
	}

	resp, err := h.router.Dispatch(ctx, req)
	if err == nil {
		return h.respond(&ev, http.StatusOK, resp)
	}

	status, body, typed := errx.Classify(err)
	if !typed {
		logx.WithContext(ctx).WithError(err).Error("Request failed")
		return nil, err
	}

	logx.WithContext(ctx).WithFields(logx.Fields{"resource": req.Resource, "status": status}).WithError(err).Info("Request rejected")
	return h.respond(&ev, status, body)
}

func (h *handler) respond(ev *event, status int, body any) (any, error) {
	if !ev.proxied() {
		if status != http.StatusOK {
			if r, ok := body.(errx.Response); ok {
				return nil, &typedError{status: status, message: r.Message}
			}
		}
		return body, nil
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode response: %w", err)
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers: map[string]string{
			"Content-Type":                "application/json",
			"Access-Control-Allow-Origin": h.origins,
		},
		Body: string(payload),
	}, nil
}

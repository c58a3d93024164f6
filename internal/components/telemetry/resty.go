package telemetry

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/semconv/v1.13.0/httpconv"
	"go.opentelemetry.io/otel/trace"
)

const (
	report_resty_request  = "resty.request"
	report_resty_response = "resty.response"
)

var restyMeter = otel.Meter("congressdata/upstream")
var requestsCounter, _ = restyMeter.Int64Counter("upstream_requests", metric.WithDescription("http requests per source and status"))
var latencyHistogram, _ = restyMeter.Float64Histogram("upstream_request_seconds", metric.WithUnit("s"))

type instrumentResty struct {
	source    string
	tel       API
	tracer    trace.Tracer
	idcounter *atomic.Uint64
}

// InstrumentResty gives every request of the client a span, a debug line on the way out and
// back, and a sample in the per source request metrics. Transport failures are reported as
// broken, non-2xx responses are left to the caller to classify.
func InstrumentResty(client *resty.Client, source string, tel API) {
	i := instrumentResty{
		source:    source,
		tel:       tel,
		tracer:    otel.Tracer("congressdata/upstream"),
		idcounter: &atomic.Uint64{},
	}
	client.OnBeforeRequest(i.onBeforeRequest)
	client.OnAfterResponse(i.onAfterResponse)
	client.OnError(i.onError)
}

type reqCtxKeyType int

var reqCtxKey reqCtxKeyType

type reqCtx struct {
	id uint64
	// monotonic, only used for durations
	startTime time.Time
}

func (i instrumentResty) onBeforeRequest(_ *resty.Client, req *resty.Request) error {
	ctx, _ := i.tracer.Start(
		req.Context(),
		"http "+req.Method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("upstream.source", i.source)),
	)
	id := i.idcounter.Add(1)
	ctx = context.WithValue(ctx, reqCtxKey, reqCtx{id: id, startTime: time.Now()})
	req.SetContext(ctx)

	i.tel.ReportDebug(report_resty_request, id, req.Method, req.URL)
	return nil
}

// finish closes the span and records the request metrics. status is 0 for transport
// failures.
func (i instrumentResty) finish(ctx context.Context, raw *http.Request, status int) (uint64, time.Duration) {
	var id uint64
	var elapsed time.Duration
	if rc, ok := ctx.Value(reqCtxKey).(reqCtx); ok {
		id = rc.id
		elapsed = time.Since(rc.startTime)
	}

	span := trace.SpanFromContext(ctx)
	if raw != nil {
		span.SetAttributes(httpconv.ClientRequest(raw)...)
	}
	span.End()

	attrs := metric.WithAttributes(
		attribute.String("source", i.source),
		attribute.Int("status", status),
	)
	requestsCounter.Add(ctx, 1, attrs)
	latencyHistogram.Record(ctx, elapsed.Seconds(), attrs)
	return id, elapsed
}

func (i instrumentResty) onAfterResponse(_ *resty.Client, res *resty.Response) error {
	ctx := res.Request.Context()
	span := trace.SpanFromContext(ctx)
	// RawRequest is only populated once the request was sent
	span.SetAttributes(httpconv.ClientResponse(res.RawResponse)...)
	if res.IsError() {
		span.SetStatus(codes.Error, res.Status())
	}

	id, elapsed := i.finish(ctx, res.Request.RawRequest, res.StatusCode())
	i.tel.ReportDebug(report_resty_response, id, elapsed.Round(time.Millisecond).String(), res.Status(), len(res.Body()))
	return nil
}

func (i instrumentResty) onError(req *resty.Request, err error) {
	ctx := req.Context()
	span := trace.SpanFromContext(ctx)
	span.SetStatus(codes.Error, err.Error())
	span.RecordError(err)

	// a response error already went through onAfterResponse
	var responseErr *resty.ResponseError
	if errors.As(err, &responseErr) {
		return
	}

	_, elapsed := i.finish(ctx, req.RawRequest, 0)
	i.tel.ReportBroken(report_resty_response, err, req.Method, req.URL, elapsed.Round(time.Millisecond))
}

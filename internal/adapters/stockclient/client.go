package stockclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/SscSPs/inventory_management_app/internal/apperrors"
	"github.com/SscSPs/inventory_management_app/internal/core/domain"
	portssvc "github.com/SscSPs/inventory_management_app/internal/core/ports/services"
	"github.com/SscSPs/inventory_management_app/internal/dto"
	"github.com/SscSPs/inventory_management_app/internal/middleware"
	"github.com/SscSPs/inventory_management_app/internal/platform/metrics"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const insufficientStockPrefix = "insufficient stock"

// envelope mirrors the product service response body.
type envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

// Client is the HTTP implementation of portssvc.StockLedgerClient.
// It never retries; every call is bounded by the configured timeout.
type Client struct {
	http   *resty.Client
	tracer trace.Tracer
}

var _ portssvc.StockLedgerClient = (*Client)(nil)

// New creates a client for the product service rooted at baseURL (for example http://localhost:8081/api).
func New(baseURL string, timeout time.Duration) *Client {
	rc := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("Accept", "application/json")

	return &Client{
		http:   rc,
		tracer: otel.Tracer("stockclient"),
	}
}

// GetProduct fetches the product and its current stock.
func (c *Client) GetProduct(ctx context.Context, productID string) (*domain.Product, error) {
	var env envelope[*dto.ProductResponse]
	status, err := c.call(ctx, "get_product", func(r *resty.Request) (*resty.Response, error) {
		return r.SetPathParam("id", productID).Get("/products/{id}")
	}, &env)
	if err != nil {
		return nil, err
	}

	if isNotFound(status, env.Message) {
		return nil, apperrors.New(apperrors.KindProductNotFound, apperrors.MsgProductNotFound)
	}
	if status != http.StatusOK || !env.Success || env.Data == nil {
		return nil, unexpected(status, env.Message)
	}

	product := env.Data.ToDomainProduct()
	return &product, nil
}

// CheckAvailability asks whether requiredQty units are on hand.
func (c *Client) CheckAvailability(ctx context.Context, productID string, requiredQty int) (domain.Availability, error) {
	var env envelope[bool]
	status, err := c.call(ctx, "check_availability", func(r *resty.Request) (*resty.Response, error) {
		return r.SetPathParam("id", productID).
			SetQueryParam("requiredQuantity", strconv.Itoa(requiredQty)).
			Get("/products/{id}/stock-check")
	}, &env)
	if err != nil {
		return domain.Availability{}, err
	}

	if isNotFound(status, env.Message) {
		return domain.Availability{}, apperrors.New(apperrors.KindProductNotFound, apperrors.MsgProductNotFound)
	}
	if status >= http.StatusInternalServerError {
		return domain.Availability{}, unexpected(status, env.Message)
	}
	if env.Success && env.Data {
		return domain.Availability{Available: true}, nil
	}
	return domain.Availability{Available: false, Reason: env.Message}, nil
}

// AdjustStock moves the stock by qty in the given direction.
func (c *Client) AdjustStock(ctx context.Context, productID string, qty int, direction domain.StockDirection) error {
	var env envelope[bool]
	status, err := c.call(ctx, "adjust_stock", func(r *resty.Request) (*resty.Response, error) {
		return r.SetPathParam("id", productID).
			SetHeader("Content-Type", "application/json").
			SetBody(dto.UpdateStockRequest{Quantity: qty, IsIncrease: direction.IsIncrease()}).
			Post("/products/{id}/stock")
	}, &env)
	if err != nil {
		return err
	}

	switch {
	case status == http.StatusOK && env.Success:
		return nil
	case isNotFound(status, env.Message):
		return apperrors.New(apperrors.KindProductNotFound, apperrors.MsgProductNotFound)
	case status < http.StatusInternalServerError && strings.HasPrefix(strings.ToLower(env.Message), insufficientStockPrefix):
		return apperrors.New(apperrors.KindInsufficientStock, env.Message)
	default:
		return unexpected(status, env.Message)
	}
}

// call runs one traced request and decodes the envelope. Transport failures and
// timeouts come back as RemoteUnreachable, undecodable bodies as Unexpected.
func (c *Client) call(ctx context.Context, op string, send func(*resty.Request) (*resty.Response, error), out any) (int, error) {
	ctx, span := c.tracer.Start(ctx, "stockclient."+op, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	start := time.Now()

	// Success and error bodies share the envelope shape.
	req := c.http.R().SetContext(ctx).SetResult(out).SetError(out)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))
	if requestID, ok := middleware.GetRequestIDFromCtx(ctx); ok {
		req.SetHeader(middleware.RequestIDHeader, requestID)
	}

	resp, err := send(req)
	if resp == nil || resp.RawResponse == nil {
		if err == nil {
			err = errors.New("no response from ProductService")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		observe(op, apperrors.KindRemoteUnreachable, start)
		return 0, apperrors.Wrap(apperrors.KindRemoteUnreachable, apperrors.MsgRemoteUnreachable, err)
	}

	status := resp.StatusCode()
	span.SetAttributes(
		attribute.String("http.method", resp.Request.Method),
		attribute.String("http.url", resp.Request.URL),
		attribute.Int("http.status_code", status),
	)

	if err != nil && status != http.StatusNotFound {
		span.SetStatus(codes.Error, "undecodable response")
		observe(op, apperrors.KindUnexpected, start)
		return status, apperrors.Wrap(apperrors.KindUnexpected, fmt.Sprintf("unexpected response from ProductService (status %d)", status), err)
	}

	observe(op, apperrors.KindUnknown, start)
	return status, nil
}

func observe(op string, kind apperrors.Kind, start time.Time) {
	outcome := "ok"
	if kind != apperrors.KindUnknown {
		outcome = kind.String()
	}
	metrics.StockClientDuration.WithLabelValues(op, outcome).Observe(time.Since(start).Seconds())
}

func isNotFound(status int, message string) bool {
	return status == http.StatusNotFound || strings.EqualFold(message, apperrors.MsgProductNotFound)
}

func unexpected(status int, message string) error {
	if message == "" {
		message = http.StatusText(status)
	}
	return apperrors.New(apperrors.KindUnexpected, fmt.Sprintf("ProductService responded %d: %s", status, message))
}

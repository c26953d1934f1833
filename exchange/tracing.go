package exchange

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	currency "go-currency-exchange-mcp"
)

// tracingService decorates an exchange.Service with a span per conversion
type tracingService struct {
	tracer trace.Tracer
	next   Service
}

// NewTracingService returns a Service recording each Convert call on tracer
func NewTracingService(tracer trace.Tracer, s Service) Service {
	return &tracingService{
		tracer: tracer,
		next:   s,
	}
}

func (s *tracingService) Convert(ctx context.Context, amount currency.Amount, from currency.Currency, to []currency.Currency) (currency.Conversion, error) {
	ctx, span := s.tracer.Start(ctx, "exchange.Convert", trace.WithAttributes(
		attribute.Float64("exchange.amount", float64(amount)),
		attribute.String("exchange.from", string(from)),
		attribute.String("exchange.to", joinCodes(to)),
	))
	defer span.End()

	c, err := s.next.Convert(ctx, amount, from, to)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return c, err
	}
	return c, nil
}

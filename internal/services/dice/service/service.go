// Package service exposes dice rolling to transports with tracing, metrics,
// and transport-ready errors.
package service

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/louisbranch/dicetower/internal/core/dice"
	apperrors "github.com/louisbranch/dicetower/internal/platform/errors"
	platformgrpc "github.com/louisbranch/dicetower/internal/platform/grpc"
	"github.com/louisbranch/dicetower/internal/services/dice/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/louisbranch/dicetower/internal/services/dice/service"

// Service rolls and parses dice expressions for every transport.
type Service struct {
	roller  *dice.Roller
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

// New builds a Service. A nil roller draws from the crypto source.
func New(roller *dice.Roller, m *metrics.Metrics) *Service {
	if roller == nil {
		roller = dice.NewRoller(dice.NewCryptoSource())
	}
	return &Service{
		roller:  roller,
		metrics: m,
		tracer:  otel.Tracer(tracerName),
	}
}

// Roll evaluates expression in the named mode. Errors are *apperrors.Error
// values whose Cause is the core dice error.
func (s *Service) Roll(ctx context.Context, expression, mode string) (dice.RollRecord, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, span := s.tracer.Start(ctx, "dice.Roll", trace.WithAttributes(
		attribute.String("dice.expression", expression),
		attribute.String("dice.mode", mode),
	))
	defer span.End()
	start := time.Now()

	parsedMode, err := dice.ParseMode(mode)
	if err != nil {
		domainErr := invalidModeError(mode, err)
		s.finishRoll(ctx, span, "unknown", start, domainErr)
		return dice.RollRecord{}, domainErr
	}

	record, err := s.roller.Roll(expression, parsedMode)
	if err != nil {
		domainErr := ToDomainError(err)
		s.finishRoll(ctx, span, parsedMode.String(), start, domainErr)
		return dice.RollRecord{}, domainErr
	}

	s.countDice(record.Results)
	if record.Alternate != nil {
		s.countDice(record.Alternate.Results)
	}
	span.SetAttributes(
		attribute.String("dice.roll_id", record.ID),
		attribute.Int64("dice.total", record.Total),
	)
	s.finishRoll(ctx, span, parsedMode.String(), start, nil)
	return record, nil
}

// Parse validates expression without rolling it. An invalid expression is
// not an error; only resource limits are.
func (s *Service) Parse(ctx context.Context, expression string) (dice.ParsedExpression, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	_, span := s.tracer.Start(ctx, "dice.Parse", trace.WithAttributes(
		attribute.String("dice.expression", expression),
	))
	defer span.End()

	parsed, err := s.roller.Parse(expression)
	if err != nil {
		domainErr := ToDomainError(err)
		span.SetStatus(otelcodes.Error, string(domainErr.Code))
		s.metrics.IncrementParse(false)
		return dice.ParsedExpression{}, domainErr
	}
	span.SetAttributes(attribute.Bool("dice.valid", parsed.Valid))
	s.metrics.IncrementParse(parsed.Valid)
	return parsed, nil
}

func (s *Service) finishRoll(ctx context.Context, span trace.Span, mode string, start time.Time, err *apperrors.Error) {
	s.metrics.ObserveRollLatency(time.Since(start))
	if err == nil {
		s.metrics.IncrementRoll(mode, metrics.OutcomeOK)
		return
	}
	s.metrics.IncrementRoll(mode, outcomeFor(err.Code))
	span.SetStatus(otelcodes.Error, string(err.Code))
	if err.Code == apperrors.CodeDiceSourceFailure {
		span.RecordError(err)
		log.Printf("dice source failure (request %s): %v", platformgrpc.RequestIDFromContext(ctx), err.Cause)
	}
}

func (s *Service) countDice(results []dice.RollResult) {
	for _, result := range results {
		_, sides, ok := strings.Cut(result.Notation, "d")
		if !ok {
			continue
		}
		s.metrics.AddDiceDrawn(sides, len(result.Rolls))
	}
}

func outcomeFor(code apperrors.Code) string {
	switch code {
	case apperrors.CodeDiceResourceLimit:
		return metrics.OutcomeLimit
	case apperrors.CodeDiceSourceFailure, apperrors.CodeUnknown:
		return metrics.OutcomeSourceFailure
	default:
		return metrics.OutcomeInvalid
	}
}

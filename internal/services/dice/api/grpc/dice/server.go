package dice

import (
	"context"
	"strings"

	apperrors "github.com/louisbranch/dicetower/internal/platform/errors"
	"github.com/louisbranch/dicetower/internal/platform/errors/i18n"
	"github.com/louisbranch/dicetower/internal/services/dice/api/wire"
	"github.com/louisbranch/dicetower/internal/services/dice/service"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/structpb"
)

// LocaleHeader is the metadata key clients use to pick the language of
// error messages. It accepts Accept-Language syntax.
const LocaleHeader = "accept-language"

// Server implements DiceServiceServer on top of the dice service.
type Server struct {
	svc *service.Service
}

// NewServer creates a Server.
func NewServer(svc *service.Service) *Server {
	return &Server{svc: svc}
}

// RollDice rolls {expression, mode} and returns the roll record.
func (s *Server) RollDice(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req, err := decodeRollRequest(in)
	if err != nil {
		return nil, statusError(ctx, apperrors.WithMetadata(apperrors.CodeRequestInvalid, err.Error(), map[string]string{"reason": err.Error()}))
	}
	record, err := s.svc.Roll(ctx, req.Expression, req.Mode)
	if err != nil {
		return nil, statusError(ctx, service.ToDomainError(err))
	}
	return encodeRecord(wire.FromRecord(record)), nil
}

// ParseNotation validates {expression} without rolling.
func (s *Server) ParseNotation(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req, err := decodeParseRequest(in)
	if err != nil {
		return nil, statusError(ctx, apperrors.WithMetadata(apperrors.CodeRequestInvalid, err.Error(), map[string]string{"reason": err.Error()}))
	}
	parsed, err := s.svc.Parse(ctx, req.Expression)
	if err != nil {
		return nil, statusError(ctx, service.ToDomainError(err))
	}
	return encodeParseResult(wire.FromParsed(parsed)), nil
}

func statusError(ctx context.Context, err *apperrors.Error) error {
	catalog := i18n.GetCatalog(localeFromContext(ctx))
	return err.ToGRPCStatus(catalog.Locale(), catalog.Format(string(err.Code), err.Metadata))
}

func localeFromContext(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	return strings.Join(md.Get(LocaleHeader), ",")
}

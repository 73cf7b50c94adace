package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestCodeMappings(t *testing.T) {
	tests := []struct {
		code     Code
		wantGRPC codes.Code
		wantHTTP int
	}{
		{code: CodeDiceInvalidExpression, wantGRPC: codes.InvalidArgument, wantHTTP: http.StatusBadRequest},
		{code: CodeDiceModeUnsupported, wantGRPC: codes.InvalidArgument, wantHTTP: http.StatusBadRequest},
		{code: CodeDiceInvalidMode, wantGRPC: codes.InvalidArgument, wantHTTP: http.StatusBadRequest},
		{code: CodeRequestInvalid, wantGRPC: codes.InvalidArgument, wantHTTP: http.StatusBadRequest},
		{code: CodeDiceResourceLimit, wantGRPC: codes.ResourceExhausted, wantHTTP: http.StatusUnprocessableEntity},
		{code: CodeDiceSourceFailure, wantGRPC: codes.Internal, wantHTTP: http.StatusInternalServerError},
		{code: CodeUnknown, wantGRPC: codes.Internal, wantHTTP: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			if got := tt.code.GRPCCode(); got != tt.wantGRPC {
				t.Fatalf("GRPCCode() = %v, want %v", got, tt.wantGRPC)
			}
			if got := tt.code.HTTPStatus(); got != tt.wantHTTP {
				t.Fatalf("HTTPStatus() = %d, want %d", got, tt.wantHTTP)
			}
		})
	}
}

func TestErrorIsMatchesCode(t *testing.T) {
	err := fmt.Errorf("roll: %w", New(CodeDiceResourceLimit, "too many dice"))
	if !stderrors.Is(err, New(CodeDiceResourceLimit, "")) {
		t.Fatal("expected errors.Is to match by code")
	}
	if stderrors.Is(err, New(CodeDiceInvalidMode, "")) {
		t.Fatal("expected different code not to match")
	}
}

func TestAsAndUnwrap(t *testing.T) {
	cause := stderrors.New("entropy unavailable")
	err := fmt.Errorf("roll: %w", Wrap(CodeDiceSourceFailure, "source failed", cause))

	domainErr, ok := As(err)
	if !ok {
		t.Fatal("expected domain error")
	}
	if domainErr.Code != CodeDiceSourceFailure {
		t.Fatalf("Code = %s", domainErr.Code)
	}
	if !stderrors.Is(err, cause) {
		t.Fatal("expected cause to stay reachable")
	}
	if _, ok := As(cause); ok {
		t.Fatal("expected plain error not to match")
	}
}

func TestToGRPCStatusDetails(t *testing.T) {
	domainErr := WithMetadata(CodeDiceInvalidExpression, "count must be at least 1", map[string]string{"reason": "count"})
	domainErr.Violations = []FieldViolation{{Field: "count", Description: "Dice count must be at least 1 in \"0d6\""}}

	st := status.Convert(domainErr.ToGRPCStatus("pt-BR", "Expressão de dados inválida"))
	if st.Code() != codes.InvalidArgument {
		t.Fatalf("code = %v, want InvalidArgument", st.Code())
	}
	if st.Message() != "count must be at least 1" {
		t.Fatalf("message = %q", st.Message())
	}

	var sawInfo, sawLocalized, sawBadRequest bool
	for _, detail := range st.Details() {
		switch d := detail.(type) {
		case *errdetails.ErrorInfo:
			sawInfo = d.GetReason() == string(CodeDiceInvalidExpression) && d.GetDomain() == Domain
		case *errdetails.LocalizedMessage:
			sawLocalized = d.GetLocale() == "pt-BR"
		case *errdetails.BadRequest:
			sawBadRequest = len(d.GetFieldViolations()) == 1 && d.GetFieldViolations()[0].GetField() == "count"
		}
	}
	if !sawInfo || !sawLocalized || !sawBadRequest {
		t.Fatalf("details: info=%v localized=%v badRequest=%v", sawInfo, sawLocalized, sawBadRequest)
	}
}

func TestToGRPCStatusWithoutViolations(t *testing.T) {
	st := status.Convert(New(CodeDiceResourceLimit, "limit").ToGRPCStatus("en-US", "Dice count exceeds the limit"))
	if st.Code() != codes.ResourceExhausted {
		t.Fatalf("code = %v", st.Code())
	}
	for _, detail := range st.Details() {
		if _, ok := detail.(*errdetails.BadRequest); ok {
			t.Fatal("expected no BadRequest detail")
		}
	}
}

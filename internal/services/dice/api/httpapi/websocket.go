package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	apperrors "github.com/louisbranch/dicetower/internal/platform/errors"
	platformgrpc "github.com/louisbranch/dicetower/internal/platform/grpc"
	"github.com/louisbranch/dicetower/internal/platform/timeouts"
	"github.com/louisbranch/dicetower/internal/services/dice/api/wire"
	"github.com/louisbranch/dicetower/internal/services/dice/service"
	"golang.org/x/net/websocket"
)

// maxDecodeErrorsPerConn closes a connection after this many consecutive
// unreadable frames.
const maxDecodeErrorsPerConn = 3

// RollFrame is a client roll request on the websocket.
type RollFrame struct {
	RequestID  string `json:"request_id"`
	Expression string `json:"expression"`
	Mode       string `json:"mode,omitempty"`
}

// RollReply answers one RollFrame with a record or an error.
type RollReply struct {
	RequestID string           `json:"request_id"`
	Record    *wire.RollRecord `json:"record,omitempty"`
	Error     *ErrorBody       `json:"error,omitempty"`
}

func newRollSocket(svc *service.Service) http.Handler {
	return websocket.Handler(func(conn *websocket.Conn) {
		handleRollConn(conn, svc)
	})
}

func handleRollConn(conn *websocket.Conn, svc *service.Service) {
	defer func() {
		_ = conn.Close()
	}()
	conn.MaxPayloadBytes = MaxBodyBytes

	request := conn.Request()
	ctx := request.Context()
	locale := requestLocale(request)
	peer := &rollPeer{encoder: json.NewEncoder(conn)}

	decodeErrors := 0

	for {
		_ = conn.SetReadDeadline(time.Now().Add(timeouts.WebSocketIdle))

		var frame RollFrame
		if err := websocket.JSON.Receive(conn, &frame); err != nil {
			if errors.Is(err, io.EOF) || isTimeout(err) {
				return
			}
			decodeErrors++
			peer.writeError("", locale, apperrors.WithMetadata(apperrors.CodeRequestInvalid, err.Error(), map[string]string{"reason": "invalid frame payload"}))
			if decodeErrors >= maxDecodeErrorsPerConn {
				return
			}
			continue
		}
		decodeErrors = 0

		frameCtx := ctx
		if frame.RequestID != "" {
			frameCtx = platformgrpc.WithRequestID(ctx, frame.RequestID)
		}
		record, err := svc.Roll(frameCtx, frame.Expression, frame.Mode)
		if err != nil {
			peer.writeError(frame.RequestID, locale, service.ToDomainError(err))
			continue
		}
		out := wire.FromRecord(record)
		peer.write(RollReply{RequestID: frame.RequestID, Record: &out})
	}
}

type rollPeer struct {
	mu      sync.Mutex
	encoder *json.Encoder
}

func (p *rollPeer) write(reply RollReply) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.encoder.Encode(reply); err != nil {
		log.Printf("ws roll write: %v", err)
	}
}

func (p *rollPeer) writeError(requestID, locale string, err *apperrors.Error) {
	body := newErrorBody(locale, err)
	p.write(RollReply{RequestID: requestID, Error: &body})
}

func isTimeout(err error) bool {
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}

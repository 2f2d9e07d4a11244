package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/go-chi/chi/v5"

	"github.com/goliatone/go-loform"
	"github.com/goliatone/go-loform/pkg/store"
)

// outboundBuffer bounds the messages queued for one connection.
const outboundBuffer = 32

// conn is one WebSocket editing session.
type conn struct {
	ws      *websocket.Conn
	session *loform.Session
	logger  *slog.Logger
	out     chan ServerMessage
	seq     atomic.Int64
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	objectType := chi.URLParam(r, "type")
	fields, resolveErr := s.svc.Fields(r.Context(), objectType)
	if fields == nil {
		s.serviceError(w, resolveErr)
		return
	}

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: s.originPatterns(),
	})
	if err != nil {
		s.logger.Warn("websocket accept", slog.Any("error", err))
		return
	}
	defer ws.CloseNow()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	c := &conn{
		ws:  ws,
		out: make(chan ServerMessage, outboundBuffer),
	}
	session, err := s.svc.NewSession(ctx, objectType, nil, func(record store.Record) {
		c.enqueue(ctx, ServerMessage{
			Type: MsgSnapshot,
			Data: SnapshotData{Sequence: int(c.seq.Add(1)), Record: record},
		})
	})
	if err != nil {
		s.logger.Warn("open session", slog.String("object_type", objectType), slog.Any("error", err))
		ws.Close(websocket.StatusInternalError, "session unavailable")
		return
	}
	defer session.Close()
	c.session = session
	c.logger = s.logger.With(slog.String("session", session.ID))

	go c.writeLoop(ctx)

	c.enqueue(ctx, ServerMessage{
		Type: MsgSession,
		Data: SessionData{
			SessionID:  session.ID,
			ObjectType: objectType,
			Fields:     fields,
			Warnings:   warnings(resolveErr),
		},
	})
	c.readLoop(ctx)
}

func (c *conn) readLoop(ctx context.Context) {
	for {
		var msg ClientMessage
		if err := wsjson.Read(ctx, c.ws, &msg); err != nil {
			if status := websocket.CloseStatus(err); status != -1 {
				c.logger.Debug("session closed by client", slog.Int("status", int(status)))
			} else if ctx.Err() == nil {
				c.logger.Debug("session read", slog.Any("error", err))
			}
			return
		}
		c.dispatch(ctx, msg)
	}
}

func (c *conn) writeLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-c.out:
			if err := wsjson.Write(ctx, c.ws, msg); err != nil {
				c.logger.Debug("session write", slog.Any("error", err))
				return
			}
		}
	}
}

func (c *conn) enqueue(ctx context.Context, msg ServerMessage) {
	select {
	case c.out <- msg:
	case <-ctx.Done():
	}
}

func (c *conn) dispatch(ctx context.Context, msg ClientMessage) {
	switch msg.Type {
	case MsgPing:
		c.enqueue(ctx, ServerMessage{Type: MsgPong, RequestID: msg.ID})
		return
	case MsgFlush:
		c.session.Store.Flush()
		c.enqueue(ctx, ServerMessage{Type: MsgAck, RequestID: msg.ID, Data: AckData{Pending: false}})
		return
	case MsgSet, MsgInsert, MsgRemove, MsgGet, MsgOptions:
	default:
		c.sendError(ctx, msg.ID, "unknown_type", "unknown message type: "+msg.Type)
		return
	}

	var data EditData
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		c.sendError(ctx, msg.ID, "invalid_data", fmt.Sprintf("invalid %s data", msg.Type))
		return
	}
	if data.Path == "" {
		c.sendError(ctx, msg.ID, "invalid_path", "path is required")
		return
	}

	st := c.session.Store
	switch msg.Type {
	case MsgSet:
		c.ack(ctx, msg.ID, data.Path, st.SetFieldContext(ctx, data.Path, data.Value))
	case MsgInsert:
		var err error
		if data.Index == nil || *data.Index < 0 {
			err = st.Append(data.Path, data.Value)
		} else {
			err = st.InsertAt(data.Path, *data.Index, data.Value)
		}
		c.ack(ctx, msg.ID, data.Path, err)
	case MsgRemove:
		if data.Index == nil {
			c.sendError(ctx, msg.ID, "invalid_data", "index is required")
			return
		}
		c.ack(ctx, msg.ID, data.Path, st.RemoveAt(data.Path, *data.Index))
	case MsgGet:
		value, ok := st.GetField(data.Path)
		if !ok {
			c.sendError(ctx, msg.ID, "unknown_field", "no value at "+data.Path)
			return
		}
		c.enqueue(ctx, ServerMessage{Type: MsgValue, RequestID: msg.ID, Data: ValueData{Path: data.Path, Value: value}})
	case MsgOptions:
		if _, ok := st.OptionState(data.Path); !ok {
			c.sendError(ctx, msg.ID, "not_reference", data.Path+" has no reference options")
			return
		}
		opts := st.OpenOptions(ctx, data.Path)
		c.enqueue(ctx, ServerMessage{Type: MsgValue, RequestID: msg.ID, Data: ValueData{
			Path:        data.Path,
			Options:     opts,
			DirectInput: st.DirectInput(data.Path),
		}})
	}
}

func (c *conn) ack(ctx context.Context, requestID, path string, err error) {
	if err != nil {
		c.sendError(ctx, requestID, editErrorCode(err), err.Error())
		return
	}
	st := c.session.Store
	c.enqueue(ctx, ServerMessage{Type: MsgAck, RequestID: requestID, Data: AckData{
		Path:        path,
		DirectInput: st.DirectInput(path),
		Pending:     st.Pending(),
	}})
}

func (c *conn) sendError(ctx context.Context, requestID, code, message string) {
	c.enqueue(ctx, ServerMessage{
		Type:      MsgError,
		RequestID: requestID,
		Data:      ErrorData{Code: code, Message: message},
	})
}

func editErrorCode(err error) string {
	switch {
	case errors.Is(err, store.ErrUnknownField):
		return "unknown_field"
	case errors.Is(err, store.ErrEmptyPath), errors.Is(err, store.ErrIndexOutOfRange):
		return "invalid_path"
	case errors.Is(err, store.ErrNotSequence), errors.Is(err, store.ErrNotObject), errors.Is(err, store.ErrNotArray):
		return "invalid_value"
	case errors.Is(err, store.ErrClosed):
		return "closed"
	default:
		return "edit_failed"
	}
}

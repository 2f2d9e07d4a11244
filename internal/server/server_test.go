package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-loform"
	"github.com/goliatone/go-loform/pkg/options"
	"github.com/goliatone/go-loform/pkg/testsupport"
	"github.com/goliatone/go-loform/pkg/typed"
)

func newTestServer(t *testing.T, opts ...loform.ServiceOption) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	base := []loform.ServiceOption{
		loform.WithSchemaStore(testsupport.Store()),
		loform.WithTable(testsupport.Codelists()),
		loform.WithLogger(logger),
	}
	svc := loform.New(append(base, opts...)...)
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "# metrics\n")
	})
	srv := httptest.NewServer(New(svc, WithLogger(logger), WithMetricsHandler(metrics)).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp.StatusCode
}

func TestHealthzAndMetrics(t *testing.T) {
	srv := newTestServer(t)

	var health map[string]string
	if status := getJSON(t, srv.URL+"/healthz", &health); status != http.StatusOK || health["status"] != "ok" {
		t.Fatalf("unexpected health: %d %v", status, health)
	}

	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET metrics: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "# metrics") {
		t.Fatalf("unexpected metrics response: %d %q", resp.StatusCode, body)
	}
}

func TestFieldsEndpoint(t *testing.T) {
	srv := newTestServer(t)

	var body fieldsResponse
	if status := getJSON(t, srv.URL+"/api/objects/Piece/fields", &body); status != http.StatusOK {
		t.Fatalf("unexpected status %d", status)
	}
	if body.ObjectType != "Piece" || len(body.Fields) != len(testsupport.PieceColumns()) {
		t.Fatalf("unexpected body: %+v", body)
	}

	var errBody map[string]string
	if status := getJSON(t, srv.URL+"/api/objects/Shipment/fields", &errBody); status != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", status)
	}
	if errBody["code"] != "NOT_FOUND" {
		t.Fatalf("unexpected error body: %v", errBody)
	}
}

func TestOptionsEndpoint(t *testing.T) {
	srv := newTestServer(t)

	var body optionsResponse
	if status := getJSON(t, srv.URL+"/api/objects/Piece/options?path=dimensions.unit", &body); status != http.StatusOK {
		t.Fatalf("unexpected status %d", status)
	}
	want := []options.Option{
		{ID: "KGM", Label: "Kilogram"},
		{ID: "CMT", Label: "Centimetre"},
		{ID: "MTR", Label: "Metre"},
	}
	if diff := cmp.Diff(want, body.Options); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}

	cases := []struct {
		query string
		code  int
	}{
		{"", http.StatusBadRequest},
		{"?path=nope", http.StatusNotFound},
		{"?path=slac", http.StatusUnprocessableEntity},
	}
	for _, tc := range cases {
		if status := getJSON(t, srv.URL+"/api/objects/Piece/options"+tc.query, nil); status != tc.code {
			t.Errorf("options%s: expected %d, got %d", tc.query, tc.code, status)
		}
	}
}

type wsClient struct {
	t    *testing.T
	ctx  context.Context
	conn *websocket.Conn
}

func dial(t *testing.T, srv *httptest.Server, objectType string) *wsClient {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/objects/" + objectType + "/session"
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "") })
	return &wsClient{t: t, ctx: ctx, conn: conn}
}

func (c *wsClient) send(msgType, id string, data any) {
	c.t.Helper()
	msg := map[string]any{"type": msgType, "id": id}
	if data != nil {
		msg["data"] = data
	}
	if err := wsjson.Write(c.ctx, c.conn, msg); err != nil {
		c.t.Fatalf("write %s: %v", msgType, err)
	}
}

type received struct {
	Type      string          `json:"type"`
	RequestID string          `json:"request_id"`
	Data      json.RawMessage `json:"data"`
}

func (c *wsClient) read() received {
	c.t.Helper()
	var msg received
	if err := wsjson.Read(c.ctx, c.conn, &msg); err != nil {
		c.t.Fatalf("read: %v", err)
	}
	return msg
}

func TestSession_EditAndFlush(t *testing.T) {
	srv := newTestServer(t, loform.WithDelay(time.Hour))
	client := dial(t, srv, "Piece")

	hello := client.read()
	if hello.Type != MsgSession {
		t.Fatalf("expected session message, got %s", hello.Type)
	}
	var session SessionData
	if err := json.Unmarshal(hello.Data, &session); err != nil || session.SessionID == "" {
		t.Fatalf("bad session payload: %s (%v)", hello.Data, err)
	}

	client.send(MsgSet, "1", map[string]any{"path": "slac", "value": "12"})
	ack := client.read()
	if ack.Type != MsgAck || ack.RequestID != "1" {
		t.Fatalf("expected ack for 1, got %+v", ack)
	}
	var ackData AckData
	json.Unmarshal(ack.Data, &ackData)
	if !ackData.Pending {
		t.Fatalf("edit should leave a pending snapshot")
	}

	client.send(MsgInsert, "2", map[string]any{"path": "handlingInstructions", "value": "Keep dry"})
	if msg := client.read(); msg.Type != MsgAck {
		t.Fatalf("expected ack for insert, got %+v", msg)
	}

	client.send(MsgFlush, "3", nil)
	snapshot := client.read()
	if snapshot.Type != MsgSnapshot {
		t.Fatalf("expected snapshot before flush ack, got %s", snapshot.Type)
	}
	var data SnapshotData
	if err := json.Unmarshal(snapshot.Data, &data); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	want := map[string]any{
		"slac": map[string]any{typed.KeyType: typed.XSDInteger, typed.KeyValue: "12"},
		"handlingInstructions": []any{
			map[string]any{typed.KeyType: typed.XSDString, typed.KeyValue: "Keep dry"},
		},
	}
	if diff := cmp.Diff(want, data.Record); diff != "" {
		t.Fatalf("snapshot mismatch (-want +got):\n%s", diff)
	}
	if data.Sequence != 1 {
		t.Fatalf("expected sequence 1, got %d", data.Sequence)
	}
	if msg := client.read(); msg.Type != MsgAck || msg.RequestID != "3" {
		t.Fatalf("expected flush ack, got %+v", msg)
	}

	client.send(MsgGet, "4", map[string]any{"path": "slac"})
	value := client.read()
	var valueData ValueData
	json.Unmarshal(value.Data, &valueData)
	if value.Type != MsgValue || valueData.Value != float64(12) {
		t.Fatalf("unexpected get response: %+v", value)
	}
}

func TestSession_OptionsAndErrors(t *testing.T) {
	srv := newTestServer(t, loform.WithDelay(time.Hour))
	client := dial(t, srv, "Piece")
	client.read()

	type optionsPayload struct {
		Options     []options.Option `json:"options"`
		DirectInput bool             `json:"direct_input"`
	}

	client.send(MsgOptions, "1", map[string]any{"path": "dimensions.unit"})
	value := client.read()
	var opened optionsPayload
	json.Unmarshal(value.Data, &opened)
	if value.Type != MsgValue || len(opened.Options) != 3 || opened.DirectInput {
		t.Fatalf("unexpected options payload: %s", value.Data)
	}

	client.send(MsgSet, "2", map[string]any{"path": "dimensions.unit", "value": "INCH"})
	ack := client.read()
	var ackData AckData
	json.Unmarshal(ack.Data, &ackData)
	if ack.Type != MsgAck || !ackData.DirectInput {
		t.Fatalf("unlisted code should be flagged, got %+v %s", ack, ack.Data)
	}

	client.send(MsgSet, "3", map[string]any{"path": "handlingInstructions.5", "value": "Fragile"})
	if msg := client.read(); msg.Type != MsgError {
		t.Fatalf("expected error for out of range index, got %+v", msg)
	} else {
		var errData ErrorData
		json.Unmarshal(msg.Data, &errData)
		if errData.Code != "invalid_path" {
			t.Fatalf("expected invalid_path, got %q", errData.Code)
		}
	}

	cases := []struct {
		msgType string
		data    any
		code    string
	}{
		{MsgSet, map[string]any{"path": "nope", "value": 1}, "unknown_field"},
		{MsgSet, map[string]any{"value": 1}, "invalid_path"},
		{MsgRemove, map[string]any{"path": "handlingInstructions"}, "invalid_data"},
		{MsgOptions, map[string]any{"path": "slac"}, "not_reference"},
		{"shout", map[string]any{"path": "slac"}, "unknown_type"},
	}
	for i, tc := range cases {
		id := string(rune('a' + i))
		client.send(tc.msgType, id, tc.data)
		msg := client.read()
		var errData ErrorData
		json.Unmarshal(msg.Data, &errData)
		if msg.Type != MsgError || msg.RequestID != id || errData.Code != tc.code {
			t.Errorf("%s: expected %s error, got %+v %s", tc.msgType, tc.code, msg, msg.Data)
		}
	}

	client.send(MsgPing, "p", nil)
	if msg := client.read(); msg.Type != MsgPong || msg.RequestID != "p" {
		t.Fatalf("expected pong, got %+v", msg)
	}
}

func TestSession_UnknownObject(t *testing.T) {
	srv := newTestServer(t)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/objects/Shipment/session"
	_, resp, err := websocket.Dial(context.Background(), url, nil)
	if err == nil {
		t.Fatalf("expected handshake failure")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 response, got %+v", resp)
	}
}

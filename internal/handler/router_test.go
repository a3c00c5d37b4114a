package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"chatrelay/internal/app/chat"
	"chatrelay/internal/app/directory"
	"chatrelay/internal/app/session"
	"chatrelay/internal/configs"
	"chatrelay/internal/pkg/errs"
	"chatrelay/internal/pkg/resp"
)

type wireFrame struct {
	Type    string          `json:"type"`
	ID      string          `json:"id"`
	AckID   string          `json:"ackId"`
	Payload json.RawMessage `json:"payload"`
}

type bannedWord string

func (w bannedWord) IsProfane(text string) bool { return text == string(w) }

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	dir := directory.New()
	hub := chat.NewHub(session.NewProtocol(dir, bannedWord("darn")), dir)
	go hub.Run()

	cfg := &configs.AppConfig{
		Environment:  configs.EnvDevelopment,
		Port:         3000,
		MessageRate:  100,
		MessageBurst: 100,
	}

	srv := httptest.NewServer(Router(&AppDeps{Hub: hub, Directory: dir, Config: cfg}))
	t.Cleanup(srv.Close)
	t.Cleanup(hub.Shutdown)

	return srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial(%s) error = %v", url, err)
	}
	t.Cleanup(func() { conn.Close() })

	return conn
}

func write(t *testing.T, conn *websocket.Conn, frame string) {
	t.Helper()

	if err := conn.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
		t.Fatalf("WriteMessage() error = %v", err)
	}
}

func read(t *testing.T, conn *websocket.Conn) wireFrame {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var f wireFrame
	if err := conn.ReadJSON(&f); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	return f
}

func payload[T any](t *testing.T, f wireFrame) T {
	t.Helper()

	var v T
	if err := json.Unmarshal(f.Payload, &v); err != nil {
		t.Fatalf("payload of %s frame %s: %v", f.Type, f.Payload, err)
	}
	return v
}

func getJSON(t *testing.T, url string) (int, resp.JSONResponse, json.RawMessage) {
	t.Helper()

	res, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s error = %v", url, err)
	}
	defer res.Body.Close()

	var body struct {
		resp.JSONResponse
		Data json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatalf("GET %s: invalid body: %v", url, err)
	}
	return res.StatusCode, body.JSONResponse, body.Data
}

func joinRoom(t *testing.T, conn *websocket.Conn, username, room string) {
	t.Helper()

	write(t, conn, `{"type":"join","ackId":"j","payload":{"username":"`+username+`","room":"`+room+`"}}`)

	welcome := payload[session.Message](t, read(t, conn))
	if welcome.Text != session.WelcomeText {
		t.Fatalf("first frame text = %q, want %q", welcome.Text, session.WelcomeText)
	}
	if f := read(t, conn); f.Type != string(session.EventRoomData) {
		t.Fatalf("second frame type = %q, want roomData", f.Type)
	}
	ack := read(t, conn)
	if ack.Type != chat.FrameAck || ack.AckID != "j" {
		t.Fatalf("third frame = %s/%s, want ack/j", ack.Type, ack.AckID)
	}
	if a := payload[session.Ack](t, ack); a.Error != "" {
		t.Fatalf("join ack error = %q", a.Error)
	}
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	status, body, _ := getJSON(t, srv.URL+"/health")
	if status != http.StatusOK {
		t.Errorf("status = %d, want %d", status, http.StatusOK)
	}
	if body.Code != 0 {
		t.Errorf("code = %d, want 0", body.Code)
	}
}

func TestMetrics(t *testing.T) {
	srv := newTestServer(t)

	res, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics error = %v", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", res.StatusCode, http.StatusOK)
	}
}

func TestChatOverWebSocket(t *testing.T) {
	srv := newTestServer(t)

	alice := dial(t, srv)
	bob := dial(t, srv)

	joinRoom(t, alice, "Alice", "Lobby")
	joinRoom(t, bob, "Bob", "lobby")

	joined := payload[session.Message](t, read(t, alice))
	if joined.Username != session.AdminName || joined.Text != "Bob has joined!" {
		t.Errorf("alice got %+v, want Admin announcing Bob", joined)
	}
	roster := payload[session.RoomData](t, read(t, alice))
	if len(roster.Users) != 2 || roster.Users[0].Username != "Alice" || roster.Users[1].Username != "Bob" {
		t.Errorf("roster = %+v, want [Alice Bob]", roster.Users)
	}

	write(t, bob, `{"type":"sendMessage","ackId":"m1","payload":{"text":"hi all"}}`)

	for name, conn := range map[string]*websocket.Conn{"alice": alice, "bob": bob} {
		f := read(t, conn)
		if f.Type != string(session.EventMessage) || f.ID == "" {
			t.Fatalf("%s frame = %s (id %q), want message with id", name, f.Type, f.ID)
		}
		msg := payload[session.Message](t, f)
		if msg.Username != "Bob" || msg.Text != "hi all" {
			t.Errorf("%s got %+v, want Bob: hi all", name, msg)
		}
	}

	ack := read(t, bob)
	if ack.Type != chat.FrameAck || ack.AckID != "m1" {
		t.Fatalf("ack frame = %s/%s, want ack/m1", ack.Type, ack.AckID)
	}
	if a := payload[session.Ack](t, ack); a.Status != session.DeliveredStatus {
		t.Errorf("ack status = %q, want %q", a.Status, session.DeliveredStatus)
	}

	write(t, alice, `{"type":"sendMessage","ackId":"m2","payload":{"text":"darn"}}`)
	ack = read(t, alice)
	if a := payload[session.Ack](t, ack); a.Error != errs.NewError(errs.ErrProfanityNotAllowed).Message {
		t.Errorf("profane ack error = %q", a.Error)
	}

	bob.Close()

	left := payload[session.Message](t, read(t, alice))
	if left.Text != "Bob has left!" {
		t.Errorf("alice got %q, want Bob has left!", left.Text)
	}
	roster = payload[session.RoomData](t, read(t, alice))
	if len(roster.Users) != 1 || roster.Users[0].Username != "Alice" {
		t.Errorf("roster after leave = %+v, want [Alice]", roster.Users)
	}
}

func TestFailedJoinClosesConnection(t *testing.T) {
	srv := newTestServer(t)

	first := dial(t, srv)
	joinRoom(t, first, "Alice", "lobby")

	second := dial(t, srv)
	write(t, second, `{"type":"join","ackId":"j","payload":{"username":" alice ","room":"LOBBY"}}`)

	ack := read(t, second)
	if a := payload[session.Ack](t, ack); a.Error != errs.NewError(errs.ErrUsernameInUse).Message {
		t.Errorf("ack error = %q, want username in use", a.Error)
	}

	second.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := second.ReadMessage(); !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		t.Errorf("ReadMessage() error = %v, want normal closure", err)
	}
}

func TestMalformedFrameGetsErrorFrame(t *testing.T) {
	srv := newTestServer(t)

	conn := dial(t, srv)
	write(t, conn, `{"type":"teleport","ackId":"x","payload":{}}`)

	f := read(t, conn)
	if f.Type != chat.FrameError || f.AckID != "x" {
		t.Fatalf("frame = %s/%s, want error/x", f.Type, f.AckID)
	}
	if p := payload[chat.ErrorPayload](t, f); p.Code != errs.ErrUnsupportedEventType {
		t.Errorf("code = %d, want %d", p.Code, errs.ErrUnsupportedEventType)
	}
}

func TestRoomAPI(t *testing.T) {
	srv := newTestServer(t)

	joinRoom(t, dial(t, srv), "Alice", "Lobby")
	joinRoom(t, dial(t, srv), "Bob", "lobby")

	t.Run("roster", func(t *testing.T) {
		status, body, data := getJSON(t, srv.URL+"/api/rooms/LOBBY/users")
		if status != http.StatusOK || body.Code != 0 {
			t.Fatalf("status = %d code = %d, want 200/0", status, body.Code)
		}

		var roster RosterResponse
		if err := json.Unmarshal(data, &roster); err != nil {
			t.Fatalf("invalid roster %s: %v", data, err)
		}
		if roster.Room != "Lobby" {
			t.Errorf("room = %q, want Lobby", roster.Room)
		}
		if len(roster.Users) != 2 || roster.Users[0].Username != "Alice" || roster.Users[1].Username != "Bob" {
			t.Errorf("users = %+v, want [Alice Bob]", roster.Users)
		}
	})

	t.Run("unknown room", func(t *testing.T) {
		status, body, _ := getJSON(t, srv.URL+"/api/rooms/attic/users")
		if status != http.StatusNotFound {
			t.Errorf("status = %d, want %d", status, http.StatusNotFound)
		}
		if body.Code != errs.ErrRoomNotFound {
			t.Errorf("code = %d, want %d", body.Code, errs.ErrRoomNotFound)
		}
	})

	t.Run("rooms", func(t *testing.T) {
		_, _, data := getJSON(t, srv.URL+"/api/rooms")

		var list struct {
			Rooms []directory.RoomSummary `json:"rooms"`
		}
		if err := json.Unmarshal(data, &list); err != nil {
			t.Fatalf("invalid rooms %s: %v", data, err)
		}
		if len(list.Rooms) != 1 || list.Rooms[0].Occupants != 2 {
			t.Errorf("rooms = %+v, want one room with 2 occupants", list.Rooms)
		}
	})
}

func TestOriginCheckOutsideDevelopment(t *testing.T) {
	dir := directory.New()
	hub := chat.NewHub(session.NewProtocol(dir, bannedWord("")), dir)
	go hub.Run()
	t.Cleanup(hub.Shutdown)

	cfg := &configs.AppConfig{
		Environment:    "production",
		AllowedOrigins: []string{"https://chat.example.com"},
		MessageRate:    1,
		MessageBurst:   1,
	}
	srv := httptest.NewServer(Router(&AppDeps{Hub: hub, Directory: dir, Config: cfg}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"

	tests := []struct {
		name   string
		origin string
		ok     bool
	}{
		{name: "allowed", origin: "https://chat.example.com", ok: true},
		{name: "foreign", origin: "https://evil.example.com", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn, _, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {tt.origin}})
			if conn != nil {
				conn.Close()
			}
			if (err == nil) != tt.ok {
				t.Errorf("Dial(origin %s) error = %v, want ok %v", tt.origin, err, tt.ok)
			}
		})
	}
}

package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"telemetry-service/internal/config"
	"telemetry-service/internal/models"
)

type sentMessage struct {
	path      string
	chatID    string
	text      string
	parseMode string
}

func fakeBotAPI(t *testing.T, status int, body string) (*httptest.Server, func() []sentMessage) {
	t.Helper()
	var mu sync.Mutex
	var sent []sentMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseMultipartForm(1 << 20)
		mu.Lock()
		sent = append(sent, sentMessage{
			path:      r.URL.Path,
			chatID:    r.FormValue("chat_id"),
			text:      r.FormValue("text"),
			parseMode: r.FormValue("parse_mode"),
		})
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, func() []sentMessage {
		mu.Lock()
		defer mu.Unlock()
		return append([]sentMessage(nil), sent...)
	}
}

func telegramConfig(serverURL string) config.Config {
	var cfg config.Config
	cfg.Telegram.BotToken = "123:abc"
	cfg.Telegram.ChatID = "-1001"
	cfg.Telegram.ServerURL = serverURL
	cfg.Telegram.RatePerSecond = 5
	return cfg
}

func testAlert() models.Alert {
	return models.Alert{
		Kind:      models.HighTemperature,
		SensorID:  "S1",
		Factory:   "F1",
		Value:     39.5,
		Threshold: 35,
		Timestamp: time.Date(2026, 10, 14, 8, 0, 0, 0, time.UTC),
		Message:   "<b>⚠️ HIGH TEMPERATURE WARNING</b>\n<b>Temperature:</b> 39.5°C",
	}
}

func TestTelegramSend(t *testing.T) {
	ok := `{"ok":true,"result":{"message_id":1,"date":0,"chat":{"id":-1001,"type":"group"}}}`
	srv, sent := fakeBotAPI(t, http.StatusOK, ok)

	tg, err := NewTelegram(telegramConfig(srv.URL))
	if err != nil {
		t.Fatalf("new telegram: %v", err)
	}
	if err := tg.Send(context.Background(), testAlert()); err != nil {
		t.Fatalf("send: %v", err)
	}

	msgs := sent()
	if len(msgs) != 1 {
		t.Fatalf("expected 1 request, got %d", len(msgs))
	}
	m := msgs[0]
	if m.path != "/bot123:abc/sendMessage" {
		t.Errorf("unexpected path %s", m.path)
	}
	if m.chatID != "-1001" || m.parseMode != "HTML" {
		t.Errorf("unexpected chat_id/parse_mode: %+v", m)
	}
	if !strings.Contains(m.text, "39.5") {
		t.Errorf("text missing value: %q", m.text)
	}
}

func TestTelegramSendFailure(t *testing.T) {
	srv, sent := fakeBotAPI(t, http.StatusBadRequest, `{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`)

	tg, err := NewTelegram(telegramConfig(srv.URL))
	if err != nil {
		t.Fatalf("new telegram: %v", err)
	}
	if err := tg.Send(context.Background(), testAlert()); err == nil {
		t.Fatal("expected error for rejected message")
	}
	// no retry
	if n := len(sent()); n != 1 {
		t.Fatalf("expected exactly one attempt, got %d", n)
	}
}

func TestNewTelegramRequiresCredentials(t *testing.T) {
	cfg := telegramConfig("http://127.0.0.1:1")
	cfg.Telegram.ChatID = ""
	if _, err := NewTelegram(cfg); err == nil {
		t.Fatal("expected error without chat id")
	}
}

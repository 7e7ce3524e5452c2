package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/ovidb/centavo/centavo-backend/internal/websocket"
)

var testAllowedOrigins = []string{"http://localhost:3000", "https://centavo.app"}

func TestWebSocketHandler_CheckOrigin(t *testing.T) {
	hub := websocket.NewHub()
	h := NewWebSocketHandler(hub, testAllowedOrigins)

	cases := []struct {
		name   string
		origin string
		want   bool
	}{
		{"allowed origin", "http://localhost:3000", true},
		{"second allowed origin", "https://centavo.app", true},
		{"disallowed origin", "https://evil.example.com", false},
		{"no origin header", "", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ws", nil)
			if tc.origin != "" {
				req.Header.Set("Origin", tc.origin)
			}
			assert.Equal(t, tc.want, h.checkOrigin(req))
		})
	}
}

func TestWebSocketHandler_HandleWS_NonUpgradeRequest(t *testing.T) {
	e := echo.New()
	hub := websocket.NewHub()
	h := NewWebSocketHandler(hub, testAllowedOrigins)

	// A plain GET without the upgrade headers must fail the handshake and
	// leave the hub empty.
	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.HandleWS(c)

	assert.Error(t, err)
	assert.Equal(t, 0, hub.ClientCount())
}

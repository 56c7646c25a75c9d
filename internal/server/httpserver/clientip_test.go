package httpserver

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewClientIPResolver(t *testing.T) {
	if _, err := NewClientIPResolver([]string{"10.0.0.0/8", " 192.0.2.1 ", "::1", ""}); err != nil {
		t.Errorf("valid entries: %v", err)
	}
	for _, entry := range []string{"10.0.0.0/33", "not-an-ip"} {
		if _, err := NewClientIPResolver([]string{entry}); err == nil {
			t.Errorf("entry %q: error = nil, want error", entry)
		}
	}
}

func TestClientIPResolver_ClientIP(t *testing.T) {
	behindProxy, err := NewClientIPResolver([]string{"10.0.0.0/8"})
	if err != nil {
		t.Fatalf("NewClientIPResolver: %v", err)
	}

	tests := []struct {
		name       string
		resolver   *ClientIPResolver
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{"remote addr", nil, "192.0.2.1:5555", nil, "192.0.2.1"},
		{"ipv6 remote addr", nil, "[::1]:5555", nil, "::1"},
		{"no port", nil, "192.0.2.1", nil, "192.0.2.1"},
		{"xff ignored without trusted proxies", nil, "192.0.2.1:5555",
			map[string]string{"X-Forwarded-For": "203.0.113.7"}, "192.0.2.1"},
		{"x-real-ip ignored without trusted proxies", nil, "192.0.2.1:5555",
			map[string]string{"X-Real-IP": "203.0.113.8"}, "192.0.2.1"},
		{"xff ignored from untrusted peer", behindProxy, "192.0.2.1:5555",
			map[string]string{"X-Forwarded-For": "203.0.113.7"}, "192.0.2.1"},
		{"right-most untrusted hop", behindProxy, "10.0.0.5:5555",
			map[string]string{"X-Forwarded-For": "198.51.100.1, 203.0.113.7, 10.0.0.9"}, "203.0.113.7"},
		{"all hops trusted", behindProxy, "10.0.0.5:5555",
			map[string]string{"X-Forwarded-For": "10.1.1.1, 10.0.0.9"}, "10.1.1.1"},
		{"x-real-ip from trusted peer", behindProxy, "10.0.0.5:5555",
			map[string]string{"X-Real-IP": "203.0.113.8"}, "203.0.113.8"},
		{"trusted peer without headers", behindProxy, "10.0.0.5:5555", nil, "10.0.0.5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if got := tt.resolver.ClientIP(req); got != tt.want {
				t.Errorf("ClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

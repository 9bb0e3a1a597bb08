package http

import (
	"net/http/httptest"
	"testing"
)

func TestExtractClientIP(t *testing.T) {
	trusted := &IPConfig{TrustedProxies: []string{"10.0.0.0/8"}}

	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		xri        string
		config     *IPConfig
		expected   string
	}{
		{
			name:       "direct connection strips port",
			remoteAddr: "203.0.113.7:51234",
			expected:   "203.0.113.7",
		},
		{
			name:       "forwarded header from untrusted source is ignored",
			remoteAddr: "203.0.113.7:51234",
			xff:        "198.51.100.9",
			config:     trusted,
			expected:   "203.0.113.7",
		},
		{
			name:       "forwarded header from trusted proxy is honored",
			remoteAddr: "10.1.2.3:443",
			xff:        "198.51.100.9",
			config:     trusted,
			expected:   "198.51.100.9",
		},
		{
			name:       "first valid entry in multi-hop chain wins",
			remoteAddr: "10.1.2.3:443",
			xff:        "garbage, 198.51.100.9, 10.1.2.3",
			config:     trusted,
			expected:   "198.51.100.9",
		},
		{
			name:       "x-real-ip used when forwarded-for absent",
			remoteAddr: "10.1.2.3:443",
			xri:        "198.51.100.9",
			config:     trusted,
			expected:   "198.51.100.9",
		},
		{
			name:       "nil config never trusts headers",
			remoteAddr: "10.1.2.3:443",
			xff:        "198.51.100.9",
			expected:   "10.1.2.3",
		},
		{
			name:       "ipv6 remote addr",
			remoteAddr: "[2001:db8::1]:51234",
			expected:   "2001:db8::1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/auth/login", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				req.Header.Set("X-Real-IP", tt.xri)
			}

			if got := ExtractClientIP(req, tt.config); got != tt.expected {
				t.Errorf("ExtractClientIP() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestIsTrustedProxy(t *testing.T) {
	proxies := []string{"10.0.0.0/8", "not-a-cidr", "192.168.0.0/16"}

	if !isTrustedProxy("10.200.1.1", proxies) {
		t.Error("address inside a trusted range should be trusted")
	}
	if !isTrustedProxy("192.168.4.4", proxies) {
		t.Error("invalid CIDR entries should be skipped, not abort the scan")
	}
	if isTrustedProxy("203.0.113.7", proxies) {
		t.Error("public address should not be trusted")
	}
	if isTrustedProxy("203.0.113.7", nil) {
		t.Error("empty proxy list trusts nobody")
	}
}

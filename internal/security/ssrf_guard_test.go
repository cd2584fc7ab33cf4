package security

import (
	"testing"
	"time"
)

func TestValidateURL_AllowsPublicHTTPURLs(t *testing.T) {
	g := NewSSRFGuard()

	valid := []string{
		"http://example.com/article",
		"https://news.example.org/2024/01/story.html",
		"https://93.184.216.34/page",
	}
	for _, u := range valid {
		if err := g.ValidateURL(u); err != nil {
			t.Errorf("ValidateURL(%q) = %v, want nil", u, err)
		}
	}
}

func TestValidateURL_RejectsUnsafeURLs(t *testing.T) {
	g := NewSSRFGuard()

	tests := []struct {
		name string
		url  string
	}{
		{"empty", ""},
		{"ftp scheme", "ftp://example.com/file"},
		{"file scheme", "file:///etc/passwd"},
		{"localhost", "http://localhost:8080/admin"},
		{"loopback IP", "http://127.0.0.1/secret"},
		{"private 10.x", "http://10.0.0.5/internal"},
		{"private 192.168.x", "http://192.168.1.1/router"},
		{"link local metadata", "http://169.254.169.254/latest/meta-data/"},
		{"ipv6 loopback", "http://[::1]/"},
		{"missing host", "http:///path"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := g.ValidateURL(tt.url); err == nil {
				t.Errorf("ValidateURL(%q) = nil, want error", tt.url)
			}
		})
	}
}

func TestNewSafeClient_ReturnsClient(t *testing.T) {
	g := NewSSRFGuard()

	client := g.NewSafeClient(5 * time.Second)
	if client == nil {
		t.Fatal("expected non-nil http client")
	}
}

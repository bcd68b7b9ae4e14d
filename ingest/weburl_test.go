package ingest

import (
	"net"
	"testing"
)

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{
			name: "valid https url",
			url:  "https://example.com/docs/page",
		},
		{
			name:    "http rejected",
			url:     "http://example.com",
			wantErr: true,
		},
		{
			name:    "file scheme rejected",
			url:     "file:///etc/passwd",
			wantErr: true,
		},
		{
			name:    "localhost rejected",
			url:     "https://localhost:8080/admin",
			wantErr: true,
		},
		{
			name:    "loopback ip rejected",
			url:     "https://127.0.0.1/metrics",
			wantErr: true,
		},
		{
			name:    "ipv6 loopback rejected",
			url:     "https://[::1]/metrics",
			wantErr: true,
		},
		{
			name:    "private ip rejected",
			url:     "https://192.168.1.10/router",
			wantErr: true,
		},
		{
			name:    "ten dot rejected",
			url:     "https://10.0.0.5/internal",
			wantErr: true,
		},
		{
			name:    "cgnat rejected",
			url:     "https://100.64.0.1/",
			wantErr: true,
		},
		{
			name:    "link local rejected",
			url:     "https://169.254.169.254/latest/meta-data",
			wantErr: true,
		},
		{
			name:    "dot local domain rejected",
			url:     "https://printer.local/status",
			wantErr: true,
		},
		{
			name:    "dot internal domain rejected",
			url:     "https://vault.internal/secrets",
			wantErr: true,
		},
		{
			name: "public ip allowed",
			url:  "https://93.184.216.34/page",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
			}
		})
	}
}

func TestIsPrivateIP(t *testing.T) {
	tests := []struct {
		ip   string
		want bool
	}{
		{"127.0.0.1", true},
		{"10.1.2.3", true},
		{"172.16.0.1", true},
		{"192.168.0.1", true},
		{"100.64.0.1", true},
		{"100.127.255.255", true},
		{"169.254.1.1", true},
		{"::1", true},
		{"fc00::1", true},
		{"fe80::1", true},
		{"::ffff:192.168.1.1", true},
		{"8.8.8.8", false},
		{"93.184.216.34", false},
		{"100.128.0.1", false},
		{"2606:4700::6810:84e5", false},
	}

	for _, tt := range tests {
		t.Run(tt.ip, func(t *testing.T) {
			ip := net.ParseIP(tt.ip)
			if ip == nil {
				t.Fatalf("ParseIP(%q) failed", tt.ip)
			}
			if got := IsPrivateIP(ip); got != tt.want {
				t.Errorf("IsPrivateIP(%q) = %v, want %v", tt.ip, got, tt.want)
			}
		})
	}
}

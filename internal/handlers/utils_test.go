package handlers

import (
	"testing"
)

func TestExtractIDFromPath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		prefix  string
		want    int64
		wantErr bool
	}{
		{name: "plain id", path: "/api/orders/42", prefix: "/api/orders/", want: 42},
		{name: "id with suffix", path: "/api/orders/42/status", prefix: "/api/orders/", want: 42},
		{name: "admin suffix", path: "/api/packages/product/7/admin", prefix: "/api/packages/product/", want: 7},
		{name: "missing id", path: "/api/orders/", prefix: "/api/orders/", wantErr: true},
		{name: "not a number", path: "/api/orders/abc", prefix: "/api/orders/", wantErr: true},
		{name: "wrong prefix", path: "/api/products/1", prefix: "/api/orders/", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractIDFromPath(tt.path, tt.prefix)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got id %d", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAdminURL(t *testing.T) {
	tests := []struct {
		addr string
		want string
	}{
		{":8080", "http://localhost:8080/admin?token=abc"},
		{"0.0.0.0:9000", "http://localhost:9000/admin?token=abc"},
		{"127.0.0.1:8080", "http://127.0.0.1:8080/admin?token=abc"},
		{"chess.local", "http://chess.local/admin?token=abc"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, adminURL(tt.addr, "abc"), tt.addr)
	}
}

package mysql

import (
	"strings"
	"testing"
	"time"

	"github.com/ulchatur/app/pkg/config"
)

func TestDSNIncludesConnectionSettings(t *testing.T) {
	cfg := config.APIConfig{
		DBHost:           "db.internal",
		DBPort:           3307,
		DBUser:           "svc",
		DBPassword:       "secret",
		DBName:           "app",
		DBCharset:        "utf8mb4",
		DBConnectTimeout: 5 * time.Second,
	}

	dsn := DSN(cfg)
	for _, want := range []string{
		"tcp(db.internal:3307)",
		"/app",
		"charset=utf8mb4",
		"timeout=5s",
		"parseTime=true",
		"clientFoundRows=true",
	} {
		if !strings.Contains(dsn, want) {
			t.Fatalf("dsn %q missing %q", dsn, want)
		}
	}
}

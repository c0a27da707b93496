package config

import (
	"strings"
	"testing"
)

func TestDatabaseDriver(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"", DriverSQLite},
		{"postgres://u:p@db:5432/app", DriverPostgres},
		{"POSTGRESQL://db/app", DriverPostgres},
		{"mysql://u:p@db/app", DriverMySQL},
		{"file:local.db", DriverSQLite},
	}
	for _, tt := range tests {
		if got := (DatabaseConfig{URL: tt.url}).Driver(); got != tt.want {
			t.Errorf("Driver(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestMySQLDSN(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		prefix  string
		wantErr bool
	}{
		{"default port", "mysql://app:secret@db/guarantees", "app:secret@tcp(db:3306)/guarantees?", false},
		{"explicit port", "mysql://app@db:3307/guarantees", "app@tcp(db:3307)/guarantees?", false},
		{"no database", "mysql://app:secret@db", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dsn, err := MySQLDSN(tt.url)
			if (err != nil) != tt.wantErr {
				t.Fatalf("MySQLDSN err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if !strings.HasPrefix(dsn, tt.prefix) {
				t.Errorf("MySQLDSN = %q, want prefix %q", dsn, tt.prefix)
			}
			for _, p := range []string{"charset=utf8mb4", "parseTime=True", "loc=Local"} {
				if !strings.Contains(dsn, p) {
					t.Errorf("MySQLDSN = %q, missing %s", dsn, p)
				}
			}
		})
	}

	dsn, _ := MySQLDSN("mysql://u@db/app?charset=latin1")
	if !strings.Contains(dsn, "charset=latin1") || strings.Contains(dsn, "utf8mb4") {
		t.Errorf("explicit charset overridden: %q", dsn)
	}
}

func TestPingNil(t *testing.T) {
	if err := Ping(nil); err == nil {
		t.Error("Ping(nil) should fail")
	}
}

package main

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

func TestManagePIDFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.pid")

	cleanup, err := managePIDFile(path, true)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	data, _ := os.ReadFile(path)
	if strings.TrimSpace(string(data)) != strconv.Itoa(os.Getpid()) {
		t.Fatalf("pid file holds %q", data)
	}

	if _, err := managePIDFile(path, true); err == nil {
		t.Fatalf("second locked instance started")
	}

	cleanup()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("pid file not removed")
	}
}

func TestManagePIDFileStale(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.pid")
	if err := os.WriteFile(path, []byte("999999999\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cleanup, err := managePIDFile(path, true)
	if err != nil {
		t.Fatalf("stale pid file rejected: %v", err)
	}
	cleanup()
}

func TestLoadSecret(t *testing.T) {
	if s, err := loadSecret("", true); err != nil || string(s) != devTokenSecret {
		t.Fatalf("dev secret = %q, %v", s, err)
	}
	a, _ := loadSecret("", false)
	b, _ := loadSecret("", false)
	if len(a) != 32 || string(a) == string(b) {
		t.Fatalf("random secrets not random")
	}
	if _, err := loadSecret("zz", false); err == nil {
		t.Fatalf("bad hex accepted")
	}
	if _, err := loadSecret("abcd", false); err == nil {
		t.Fatalf("short secret accepted")
	}
	hex64 := strings.Repeat("ab", 32)
	if s, err := loadSecret(hex64, false); err != nil || len(s) != 32 {
		t.Fatalf("hex secret = %d bytes, %v", len(s), err)
	}
}

package registry

import (
	"strings"
	"testing"
	"time"

	"github.com/avelis/probed/internal/config"
	"github.com/avelis/probed/internal/domain"
)

func def(name, kind, target string) config.CheckDef {
	return config.CheckDef{
		Name:     name,
		Kind:     kind,
		Target:   target,
		Interval: config.Duration(30 * time.Second),
		Timeout:  config.Duration(5 * time.Second),
	}
}

func TestLoad_OK(t *testing.T) {
	cfg := config.Config{Checks: []config.CheckDef{
		def("web", "http", "https://example.com"),
		def("gw", "ping", "192.168.1.1"),
	}}
	r, err := Load(cfg)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if r.Len() != 2 {
		t.Fatalf("want 2 checks, got %d", r.Len())
	}

	web, ok := r.Get("web")
	if !ok {
		t.Fatal("web not found")
	}
	if web.Kind != domain.KindHTTP || web.Interval != 30*time.Second || web.Timeout != 5*time.Second {
		t.Fatalf("web wrong: %+v", web)
	}
	if web.ID == "" {
		t.Fatal("expected assigned id")
	}

	gw, _ := r.Get("gw")
	if web.ID == gw.ID {
		t.Fatal("ids must be unique")
	}
	if _, ok := r.Get("nope"); ok {
		t.Fatal("unexpected hit for unknown name")
	}
}

func TestLoad_CollectsAllErrors(t *testing.T) {
	bad := def("bad-interval", "http", "https://example.com")
	bad.Interval = 0
	cfg := config.Config{Checks: []config.CheckDef{
		def("web", "tcp", "example.com:22"), // unknown kind
		def("dup", "http", "https://a.example.com"),
		def("dup", "http", "https://b.example.com"), // duplicate
		bad,
		def("", "ping", "192.168.1.1"), // missing name
	}}
	_, err := Load(cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	msg := err.Error()
	for _, want := range []string{"unknown check kind", "duplicate name", "interval must be positive", "name is required"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("error %q missing %q", msg, want)
		}
	}
}

func TestLoad_NoChecks(t *testing.T) {
	if _, err := Load(config.Config{}); err == nil {
		t.Fatal("expected error for empty check set")
	}
}

func TestChecks_ReturnsCopy(t *testing.T) {
	cfg := config.Config{Checks: []config.CheckDef{def("web", "http", "https://example.com")}}
	r, err := Load(cfg)
	if err != nil {
		t.Fatal(err)
	}
	cs := r.Checks()
	cs[0].Name = "mutated"
	if got, _ := r.Get("web"); got.Name != "web" {
		t.Fatal("registry must not observe caller mutation")
	}
}

package deps

import (
	"errors"
	"strings"
	"testing"
)

func fakeLookup(installed ...string) func(string) (string, error) {
	set := make(map[string]struct{}, len(installed))
	for _, name := range installed {
		set[name] = struct{}{}
	}
	return func(name string) (string, error) {
		if _, ok := set[name]; ok {
			return "/usr/bin/" + name, nil
		}
		return "", errors.New("not found")
	}
}

func TestProbeAvailableTriesChromeCandidates(t *testing.T) {
	probe := NewProbeWithLookup(fakeLookup("chromium-browser"))

	path, ok := probe.Available(ToolChrome)
	if !ok {
		t.Fatal("expected chrome to resolve via chromium-browser")
	}
	if path != "/usr/bin/chromium-browser" {
		t.Fatalf("unexpected binary: %s", path)
	}
	if _, ok := probe.Available(ToolFirefox); ok {
		t.Fatal("firefox should be unavailable")
	}
}

func TestProbeCapableAndList(t *testing.T) {
	none := NewProbeWithLookup(fakeLookup())
	if none.Capable() {
		t.Fatal("expected no capability without tools")
	}

	probe := NewProbeWithLookup(fakeLookup("firefox"))
	if !probe.Capable() {
		t.Fatal("expected capability with firefox installed")
	}

	list := probe.List()
	if len(list) != 3 {
		t.Fatalf("expected 3 tools, got %d", len(list))
	}
	if list[ToolWkhtmltoimage] || list[ToolChrome] || !list[ToolFirefox] {
		t.Fatalf("unexpected availability map: %#v", list)
	}
}

func TestPreferredOrder(t *testing.T) {
	order := PreferredOrder()
	want := []Tool{ToolWkhtmltoimage, ToolChrome, ToolFirefox}
	if len(order) != len(want) {
		t.Fatalf("unexpected order: %v", order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("expected %s at position %d, got %v", want[i], i, order)
		}
	}
}

func TestCheckBinariesResolvesChromiumForChrome(t *testing.T) {
	probe := NewProbeWithLookup(fakeLookup("chromium-browser"))

	results := probe.CheckBinaries(Requirements())
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	byName := make(map[string]Status, len(results))
	for _, status := range results {
		byName[status.Name] = status
	}

	chrome := byName["Chrome"]
	if !chrome.Available {
		t.Fatalf("expected Chrome to resolve via chromium-browser, got %#v", chrome)
	}
	if chrome.Command != "chromium-browser" {
		t.Fatalf("expected resolved binary name, got %q", chrome.Command)
	}

	firefox := byName["Firefox"]
	if firefox.Available {
		t.Fatal("expected Firefox to be unavailable")
	}
	if !strings.Contains(firefox.Detail, "firefox") {
		t.Fatalf("expected detail to list candidates, got %q", firefox.Detail)
	}
	if firefox.Command != "firefox" {
		t.Fatalf("expected candidate list as command, got %q", firefox.Command)
	}
}

func TestCheckBinariesUnknownTool(t *testing.T) {
	probe := NewProbeWithLookup(fakeLookup("firefox"))

	results := probe.CheckBinaries([]Requirement{{Name: "Mystery", Tool: Tool("mystery")}})
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Available {
		t.Fatal("expected unknown tool to be unavailable")
	}
	if !strings.Contains(results[0].Detail, "mystery") {
		t.Fatalf("expected detail to name the tool, got %q", results[0].Detail)
	}
}

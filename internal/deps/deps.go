// Package deps discovers which external capture tools are installed.
package deps

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// Tool identifies one of the supported capture programs.
type Tool string

const (
	ToolWkhtmltoimage Tool = "wkhtmltoimage"
	ToolChrome        Tool = "chrome"
	ToolFirefox       Tool = "firefox"
)

// PreferredOrder returns the tools in capture preference order.
func PreferredOrder() []Tool {
	return []Tool{ToolWkhtmltoimage, ToolChrome, ToolFirefox}
}

// candidate binaries per tool; the first found on PATH wins.
var toolBinaries = map[Tool][]string{
	ToolWkhtmltoimage: {"wkhtmltoimage"},
	ToolChrome:        {"google-chrome", "chromium-browser", "chrome"},
	ToolFirefox:       {"firefox"},
}

// Probe resolves capture tools against the executable search path. The lookup
// function is injectable so tests can simulate installed tools.
type Probe struct {
	lookPath func(string) (string, error)
}

// NewProbe returns a Probe backed by exec.LookPath.
func NewProbe() *Probe {
	return &Probe{lookPath: exec.LookPath}
}

// NewProbeWithLookup returns a Probe using a custom lookup function.
func NewProbeWithLookup(lookup func(string) (string, error)) *Probe {
	if lookup == nil {
		lookup = exec.LookPath
	}
	return &Probe{lookPath: lookup}
}

// Available reports whether the tool is installed and returns the resolved binary.
func (p *Probe) Available(tool Tool) (string, bool) {
	for _, name := range toolBinaries[tool] {
		if path, err := p.lookPath(name); err == nil {
			return path, true
		}
	}
	return "", false
}

// Capable reports whether at least one capture tool is installed.
func (p *Probe) Capable() bool {
	for _, tool := range PreferredOrder() {
		if _, ok := p.Available(tool); ok {
			return true
		}
	}
	return false
}

// List reports availability for every known tool.
func (p *Probe) List() map[Tool]bool {
	result := make(map[Tool]bool, len(toolBinaries))
	for _, tool := range PreferredOrder() {
		_, ok := p.Available(tool)
		result[tool] = ok
	}
	return result
}

// Requirement defines an external dependency Shutter relies on.
type Requirement struct {
	Name        string
	Tool        Tool
	Description string
	Optional    bool
}

// Status reports the availability of a dependency. Command carries the
// resolved binary name when available, otherwise the candidate list.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Requirements returns the capture tool requirements for diagnostics output.
// Every tool is optional on its own; capture needs at least one of them.
func Requirements() []Requirement {
	return []Requirement{
		{Name: "wkhtmltoimage", Tool: ToolWkhtmltoimage, Description: "lightweight HTML to image renderer", Optional: true},
		{Name: "Chrome", Tool: ToolChrome, Description: "headless Chrome or Chromium", Optional: true},
		{Name: "Firefox", Tool: ToolFirefox, Description: "headless Firefox", Optional: true},
	}
}

// CheckBinaries evaluates the provided requirements against the probe's
// search path. Each tool is resolved through its full candidate list, so a
// host with chromium-browser but no google-chrome still reports Chrome.
func (p *Probe) CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		candidates := toolBinaries[req.Tool]
		status := Status{
			Name:        req.Name,
			Command:     strings.Join(candidates, ", "),
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if len(candidates) == 0 {
			status.Detail = fmt.Sprintf("unknown tool %q", req.Tool)
			results = append(results, status)
			continue
		}
		path, ok := p.Available(req.Tool)
		if !ok {
			status.Detail = fmt.Sprintf("none of %s found", strings.Join(candidates, ", "))
			results = append(results, status)
			continue
		}
		status.Available = true
		status.Command = filepath.Base(path)
		results = append(results, status)
	}
	return results
}

// CheckBinaries evaluates requirements against the process search path.
func CheckBinaries(requirements []Requirement) []Status {
	return NewProbe().CheckBinaries(requirements)
}

package doctor

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Report is the unified doctor result.
type Report struct {
	Platform     string  `json:"platform" yaml:"platform"`
	Arch         string  `json:"arch" yaml:"arch"`
	ConfigPath   string  `json:"config_path,omitempty" yaml:"config_path,omitempty"`
	ConfigSource string  `json:"config_source,omitempty" yaml:"config_source,omitempty"`
	Checks       []Check `json:"checks" yaml:"checks"`
	Healthy      bool    `json:"healthy" yaml:"healthy"`
}

func (r *Report) add(name, status, detail string) {
	r.Checks = append(r.Checks, Check{Name: name, Status: status, Detail: detail})
}

// JSON returns the report as JSON bytes.
func (r *Report) JSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// YAML returns the report as YAML bytes.
func (r *Report) YAML() ([]byte, error) {
	return yaml.Marshal(r)
}

// Table returns the report as a human-readable listing.
func (r *Report) Table() string {
	var b strings.Builder
	fmt.Fprintf(&b, "sdlshim doctor (%s/%s)\n\n", r.Platform, r.Arch)
	for _, c := range r.Checks {
		marker := map[string]string{
			StatusOK:   "ok  ",
			StatusWarn: "warn",
			StatusFail: "FAIL",
			StatusSkip: "skip",
		}[c.Status]
		if marker == "" {
			marker = c.Status
		}
		fmt.Fprintf(&b, "  [%s] %-16s %s\n", marker, c.Name, c.Detail)
	}
	b.WriteString("\n")
	if r.Healthy {
		b.WriteString("Ready: banned executables will have SDL_DisableScreenSaver suppressed.\n")
	} else {
		b.WriteString("Not ready: fix the failed checks above.\n")
	}
	return b.String()
}

package updater

import (
	"fmt"
	"net/url"
	"strings"
)

// Placeholders understood by the update URL template.
const (
	varUsername = "settings.username"
	varPassword = "settings.password"
	varRecordID = "domain.id"
	varDomain   = "domain.url"
	varNewIP    = "domain.newIP"
)

// renderURL replaces {{name}} placeholders in tpl with query-escaped vars values.
// The mustache raw forms {{{name}}} and {{&name}} insert the value unescaped.
// Unknown names and unclosed or empty placeholders are errors.
func renderURL(tpl string, vars map[string]string) (string, error) {
	var out strings.Builder
	rest := tpl
	for {
		start := strings.Index(rest, "{{")
		if start == -1 {
			out.WriteString(rest)
			return out.String(), nil
		}

		out.WriteString(rest[:start])
		rest = rest[start+2:]

		closing := "}}"
		raw := false
		switch {
		case strings.HasPrefix(rest, "{"):
			closing = "}}}"
			raw = true
			rest = rest[1:]
		case strings.HasPrefix(rest, "&"):
			raw = true
			rest = rest[1:]
		}

		end := strings.Index(rest, closing)
		if end == -1 {
			return "", fmt.Errorf("unclosed template expression at %q", "{{"+rest)
		}

		key := strings.TrimSpace(rest[:end])
		if key == "" {
			return "", fmt.Errorf("empty template expression")
		}

		value, ok := vars[key]
		if !ok {
			return "", fmt.Errorf("unknown template variable %q", key)
		}

		if raw {
			out.WriteString(value)
		} else {
			out.WriteString(url.QueryEscape(value))
		}
		rest = rest[end+len(closing):]
	}
}

func (u *Updater) templateVars(record DomainRecord, ip string) map[string]string {
	return map[string]string{
		varUsername: u.config.Username,
		varPassword: u.config.Password,
		varRecordID: record.RecordID,
		varDomain:   record.Name,
		varNewIP:    ip,
	}
}

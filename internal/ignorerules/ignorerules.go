package ignorerules

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Matcher checks paths against a set of name and substring rules.
// It is a pure function of its inputs: no I/O, no state beyond the loaded
// rule set.
type Matcher struct {
	nameRules      []string
	substringRules []string
}

// Disabled is a Matcher that excludes nothing, used when ignore rules are
// turned off in configuration.
var Disabled = &Matcher{}

// New builds a Matcher from raw rule lines. Blank lines and lines starting
// with '#' are skipped. A line without '/' is a name rule; a line
// containing '/' is a substring rule.
func New(rawLines []string) *Matcher {
	m := &Matcher{}
	for _, raw := range rawLines {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.Contains(line, "/") {
			m.substringRules = append(m.substringRules, line)
		} else {
			m.nameRules = append(m.nameRules, line)
		}
	}
	return m
}

// ParseFile reads an ignore-rules file and returns its raw lines. It returns
// nil, nil if the file does not exist — an absent file means no rules, not
// an error.
func ParseFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening ignore rules file: %w", err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading ignore rules file: %w", err)
	}
	return lines, nil
}

// Excluded reports whether path should be excluded from the scan.
// isDirectory must reflect whether path names a directory.
func (m *Matcher) Excluded(path string, isDirectory bool) bool {
	base := filepath.Base(path)

	if isDirectory && (strings.HasPrefix(base, ".") || strings.HasPrefix(base, "_")) {
		return true
	}

	if isDirectory {
		for _, rule := range m.nameRules {
			if base == rule {
				return true
			}
		}
	}

	for _, rule := range m.substringRules {
		if strings.Contains(path, rule) {
			return true
		}
	}

	return false
}

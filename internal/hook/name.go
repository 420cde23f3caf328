package hook

import (
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	quotedPathRe = regexp.MustCompile(`["']([^"']+\.(?:js|mjs|sh|py))["']`)
	barePathRe   = regexp.MustCompile(`(\S+\.(?:js|mjs|sh|py))`)
)

// DeriveName computes the stable display name for a hook command. The
// script filename wins; a command with no recognizable script falls back
// to the interpreter's first argument, then to a short hash so two
// different commands never collide on an empty name.
func DeriveName(command string) string {
	if match := quotedPathRe.FindStringSubmatch(command); match != nil {
		return stemOf(match[1])
	}
	if match := barePathRe.FindStringSubmatch(command); match != nil {
		return stemOf(match[1])
	}
	fields := strings.Fields(command)
	for i, f := range fields {
		if (f == "node" || f == "bash" || f == "sh" || f == "python" || f == "python3") && i+1 < len(fields) {
			return stemOf(fields[i+1])
		}
	}
	h := fnv.New32a()
	h.Write([]byte(command))
	return fmt.Sprintf("hook-%05d", h.Sum32()%100000)
}

func stemOf(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ExtractScriptPath returns the script file a command runs, with $HOME and
// a leading ~ expanded, or an empty string when the command references no
// recognizable script.
func ExtractScriptPath(command string) string {
	var raw string
	if match := quotedPathRe.FindStringSubmatch(command); match != nil {
		raw = match[1]
	} else if match := barePathRe.FindStringSubmatch(command); match != nil {
		raw = match[1]
	} else {
		return ""
	}

	home, err := os.UserHomeDir()
	if err == nil {
		raw = strings.ReplaceAll(raw, "$HOME", home)
		raw = strings.ReplaceAll(raw, "${HOME}", home)
		if strings.HasPrefix(raw, "~/") {
			raw = filepath.Join(home, raw[2:])
		}
	}
	return raw
}

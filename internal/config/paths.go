package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// ResolvePath expands p and resolves it against the project root unless
// it is absolute.
func (c *Config) ResolvePath(p string) string {
	p = expandPath(p)
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.ProjectRoot, p)
}

// expandPath expands a leading ~ and environment variables in p.
// On Windows ~\ and %VAR% are accepted as well.
func expandPath(p string) string {
	if p == "" {
		return p
	}

	expanded := expandEnv(p)
	rest, ok := trimHome(expanded)
	if !ok {
		return expanded
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return expanded
	}
	if rest == "" {
		return home
	}
	return filepath.Join(home, rest)
}

// trimHome strips a leading home marker, reporting whether one was found.
func trimHome(p string) (string, bool) {
	switch {
	case p == "~":
		return "", true
	case strings.HasPrefix(p, "~/"):
		return p[2:], true
	case runtime.GOOS == "windows" && strings.HasPrefix(p, `~\`):
		return p[2:], true
	}
	return p, false
}

func expandEnv(p string) string {
	expanded := os.ExpandEnv(p)
	if runtime.GOOS != "windows" || !strings.Contains(expanded, "%") {
		return expanded
	}
	return expandWindowsEnv(expanded)
}

// expandWindowsEnv replaces %NAME% with its value. Unknown names are kept.
func expandWindowsEnv(p string) string {
	var b strings.Builder
	for len(p) > 0 {
		start := strings.IndexByte(p, '%')
		if start < 0 {
			b.WriteString(p)
			break
		}
		b.WriteString(p[:start])
		p = p[start+1:]

		end := strings.IndexByte(p, '%')
		if end < 0 {
			b.WriteByte('%')
			b.WriteString(p)
			break
		}
		name := p[:end]
		if name == "" {
			// "%%" is a literal percent sign
			b.WriteByte('%')
			p = p[1:]
			continue
		}
		if val, ok := os.LookupEnv(name); ok {
			b.WriteString(val)
		} else {
			b.WriteString("%" + name + "%")
		}
		p = p[end+1:]
	}
	return b.String()
}

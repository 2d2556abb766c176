package cachedir

import (
	"bufio"
	"bytes"
	"slices"
	"strings"

	"go.trai.ch/taskhistory/internal/core/domain"
	"go.trai.ch/zerr"
)

var (
	keyEscaper = strings.NewReplacer(`\`, `\\`, "\n", `\n`, "\r", `\r`, "=", `\=`, "#", `\#`)
	valEscaper = strings.NewReplacer(`\`, `\\`, "\n", `\n`, "\r", `\r`)
)

// encodeProperties renders fp as one key=value line per entry, sorted by key.
func encodeProperties(fp domain.Fingerprint) []byte {
	keys := make([]string, 0, len(fp))
	for k := range fp {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var buf bytes.Buffer
	for _, k := range keys {
		buf.WriteString(keyEscaper.Replace(k))
		buf.WriteByte('=')
		buf.WriteString(valEscaper.Replace(fp[k]))
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// decodeProperties parses the output of encodeProperties.
// Blank lines and lines starting with '#' are skipped.
func decodeProperties(data []byte) (domain.Fingerprint, error) {
	fp := make(domain.Fingerprint)

	scanner := bufio.NewScanner(bytes.NewReader(data))
	// A single entry may be as long as the whole file.
	scanner.Buffer(nil, len(data)+1)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSuffix(scanner.Text(), "\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := splitEntry(line)
		if !ok {
			return nil, zerr.With(domain.ErrFingerprintParseFailed, "line", lineNo)
		}
		fp[key] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, zerr.Wrap(err, domain.ErrFingerprintParseFailed.Error())
	}

	return fp, nil
}

// splitEntry splits a line at the first unescaped '=' and unescapes both halves.
func splitEntry(line string) (key, value string, ok bool) {
	var sb strings.Builder
	escaped := false

	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case escaped:
			sb.WriteByte(unescape(c))
			escaped = false
		case c == '\\':
			escaped = true
		case c == '=':
			key = sb.String()
			value, ok = unescapeValue(line[i+1:])
			return key, value, ok
		default:
			sb.WriteByte(c)
		}
	}

	return "", "", false
}

func unescapeValue(s string) (string, bool) {
	var sb strings.Builder
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			sb.WriteByte(unescape(c))
			escaped = false
		case c == '\\':
			escaped = true
		default:
			sb.WriteByte(c)
		}
	}

	// A dangling backslash cannot have been written by encodeProperties.
	return sb.String(), !escaped
}

func unescape(c byte) byte {
	switch c {
	case 'n':
		return '\n'
	case 'r':
		return '\r'
	default:
		return c
	}
}

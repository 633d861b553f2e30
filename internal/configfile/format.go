package configfile

import "strings"

// Format normalizes the blank lines of a YAML document:
//   - runs of blank lines collapse to one and leading or trailing blank
//     lines are dropped
//   - a comment block that follows content gets a blank line before it
//   - a top-level key that follows content gets a blank line before it
//
// Lines themselves are never changed apart from trailing whitespace, and the
// result ends in a single newline. Format is idempotent.
func Format(text string) string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(lines))

	inBlockScalar := false
	blockIndent := 0

	for _, raw := range lines {
		line := strings.TrimRight(raw, " \t")
		trimmed := strings.TrimLeft(line, " ")
		indent := len(line) - len(trimmed)

		if inBlockScalar {
			if line == "" || indent > blockIndent {
				out = append(out, line)
				continue
			}
			inBlockScalar = false
		}

		if line == "" {
			if len(out) > 0 && out[len(out)-1] != "" {
				out = append(out, "")
			}
			continue
		}

		if len(out) > 0 {
			prev := out[len(out)-1]
			if prev != "" && !isComment(prev) && needsGap(trimmed, indent) {
				out = append(out, "")
			}
		}
		out = append(out, line)

		if opensBlockScalar(trimmed) {
			inBlockScalar = true
			blockIndent = indent
		}
	}

	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	if len(out) == 0 {
		return ""
	}
	return strings.Join(out, "\n") + "\n"
}

func isComment(line string) bool {
	return strings.HasPrefix(strings.TrimLeft(line, " "), "#")
}

// needsGap reports whether a line starts a block that is set off by a
// blank line: a comment, or an unindented key.
func needsGap(trimmed string, indent int) bool {
	if strings.HasPrefix(trimmed, "#") {
		return true
	}
	if indent > 0 {
		return false
	}
	return !strings.HasPrefix(trimmed, "- ") && trimmed != "-" &&
		!strings.HasPrefix(trimmed, "---") && !strings.HasPrefix(trimmed, "...")
}

// opensBlockScalar reports whether a line ends with a literal or folded
// block indicator, after which blank lines are content.
func opensBlockScalar(trimmed string) bool {
	if i := strings.Index(trimmed, " #"); i >= 0 {
		trimmed = strings.TrimRight(trimmed[:i], " ")
	}
	for _, ind := range []string{"|", "|-", "|+", ">", ">-", ">+"} {
		if strings.HasSuffix(trimmed, ": "+ind) || strings.HasSuffix(trimmed, "- "+ind) || trimmed == ind {
			return true
		}
	}
	return false
}

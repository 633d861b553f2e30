package configfile

import "strings"

// SchemaCommentPrefix starts the comment editors read to find a file's schema.
const SchemaCommentPrefix = "# yaml-language-server: $schema="

// SchemaComment returns the schema comment line for a schema reference.
func SchemaComment(ref string) string {
	return SchemaCommentPrefix + ref
}

// SetSchemaComment makes the schema comment for ref the first line of text.
// An existing schema comment on the first line is replaced; every other
// line is kept byte for byte.
func SetSchemaComment(text, ref string) string {
	line := SchemaComment(ref)
	if text == "" {
		return line + "\n"
	}

	first, rest, found := strings.Cut(text, "\n")
	if !strings.HasPrefix(strings.TrimRight(first, "\r"), SchemaCommentPrefix) {
		return line + "\n" + text
	}
	if first == line {
		return text
	}
	if !found {
		return line + "\n"
	}
	return line + "\n" + rest
}

package configfile

import (
	"bytes"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/cairn/internal/errors"
)

// Merge renders value as YAML while keeping as much of original as possible.
//
// Keys present in both keep their position, comments and style. Scalars
// whose value did not change are left untouched; changed scalars keep their
// comments. Removed keys are dropped and their head comment moves to the
// next key that survives. New keys and sequence items are appended.
func Merge(original string, value any) (string, error) {
	var updated yaml.Node
	if err := updated.Encode(value); err != nil {
		return "", errors.Wrap(err, "encoding config")
	}

	var doc yaml.Node
	if strings.TrimSpace(original) != "" {
		if err := yaml.Unmarshal([]byte(original), &doc); err != nil {
			return "", errors.Wrap(err, "parsing config")
		}
	}

	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		head := doc.HeadComment
		doc = yaml.Node{Kind: yaml.DocumentNode, HeadComment: head, Content: []*yaml.Node{&updated}}
	} else {
		doc.Content[0] = reconcile(doc.Content[0], &updated)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return "", errors.Wrap(err, "writing config")
	}
	if err := enc.Close(); err != nil {
		return "", errors.Wrap(err, "writing config")
	}
	return buf.String(), nil
}

// reconcile returns the node to emit for a value that was old and is now
// updated.
func reconcile(old, updated *yaml.Node) *yaml.Node {
	if old.Kind != updated.Kind || old.Kind == yaml.AliasNode {
		carryComments(updated, old)
		return updated
	}

	switch old.Kind {
	case yaml.ScalarNode:
		if old.Value == updated.Value && old.ShortTag() == updated.ShortTag() {
			return old
		}
		old.Value = updated.Value
		old.Tag = updated.Tag
		old.Style = updated.Style
		return old

	case yaml.MappingNode:
		return reconcileMapping(old, updated)

	case yaml.SequenceNode:
		n := min(len(old.Content), len(updated.Content))
		for i := range n {
			old.Content[i] = reconcile(old.Content[i], updated.Content[i])
		}
		if len(updated.Content) > n {
			old.Content = append(old.Content[:n], updated.Content[n:]...)
		} else {
			old.Content = old.Content[:n]
		}
		if n == 0 {
			old.Style = updated.Style
		}
		return old

	default:
		return updated
	}
}

func reconcileMapping(old, updated *yaml.Node) *yaml.Node {
	index := make(map[string]int, len(updated.Content)/2)
	for i := 0; i+1 < len(updated.Content); i += 2 {
		index[updated.Content[i].Value] = i
	}

	content := make([]*yaml.Node, 0, len(updated.Content))
	seen := make(map[string]bool, len(index))
	pending := ""

	for i := 0; i+1 < len(old.Content); i += 2 {
		key, val := old.Content[i], old.Content[i+1]
		j, ok := index[key.Value]
		if !ok || seen[key.Value] {
			pending = joinComments(pending, key.HeadComment)
			pending = joinComments(pending, key.LineComment)
			pending = joinComments(pending, val.LineComment)
			continue
		}
		if pending != "" {
			key.HeadComment = joinComments(pending, key.HeadComment)
			pending = ""
		}
		seen[key.Value] = true
		content = append(content, key, reconcile(val, updated.Content[j+1]))
	}

	for i := 0; i+1 < len(updated.Content); i += 2 {
		key := updated.Content[i]
		if seen[key.Value] {
			continue
		}
		if pending != "" {
			key.HeadComment = joinComments(pending, key.HeadComment)
			pending = ""
		}
		content = append(content, key, updated.Content[i+1])
	}

	if pending != "" {
		old.FootComment = joinComments(old.FootComment, pending)
	}
	if len(old.Content) == 0 {
		old.Style = updated.Style
	}
	old.Content = content
	return old
}

func carryComments(dst, src *yaml.Node) {
	if dst.HeadComment == "" {
		dst.HeadComment = src.HeadComment
	}
	if dst.LineComment == "" {
		dst.LineComment = src.LineComment
	}
	if dst.FootComment == "" {
		dst.FootComment = src.FootComment
	}
}

func joinComments(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + "\n" + b
	}
}

package node

import (
	"fmt"
	"strings"
)

// TextFor renders the string a given EmbeddedField contributes for this
// node. Metadata fields render via fmt's default verb on the stored value.
func (n *Node) TextFor(field EmbeddedField) (string, bool) {
	switch field.Kind {
	case Chunk:
		return n.Chunk, true
	case Combined:
		return n.combinedText(), true
	case Metadata:
		v, ok := n.GetMetadata(field.Name)
		if !ok {
			return "", false
		}
		return toText(v), true
	default:
		return "", false
	}
}

// combinedText concatenates sorted "k: v" metadata lines followed by the
// chunk, the SingleWithMetadata rendering required for deterministic
// embedding input.
func (n *Node) combinedText() string {
	var b strings.Builder
	for _, k := range n.SortedMetadataKeys() {
		v, _ := n.GetMetadata(k)
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(toText(v))
		b.WriteString("\n")
	}
	b.WriteString(n.Chunk)
	return b.String()
}

// EmbeddingTargets returns the (field, text) pairs this node must submit to
// an embedder, per its EmbedMode and the pipeline's configured fields.
func (n *Node) EmbeddingTargets(fields []EmbeddedField) []FieldText {
	switch n.EmbedMode {
	case SingleWithMetadata:
		return []FieldText{{Field: CombinedField(), Text: n.combinedText()}}
	case PerField:
		return n.perFieldTargets(fields)
	case Both:
		out := []FieldText{{Field: CombinedField(), Text: n.combinedText()}}
		return append(out, n.perFieldTargets(fields)...)
	default:
		return nil
	}
}

func (n *Node) perFieldTargets(fields []EmbeddedField) []FieldText {
	out := make([]FieldText, 0, len(fields))
	for _, f := range fields {
		if text, ok := n.TextFor(f); ok {
			out = append(out, FieldText{Field: f, Text: text})
		}
	}
	return out
}

// FieldText pairs a target field with the text that should be embedded for
// it.
type FieldText struct {
	Field EmbeddedField
	Text  string
}

func toText(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

package join

import "strings"

// computeID wraps the ";"-joined input ids in braces. It depends on the
// ordered input ids only, so joins of joins nest structurally: "{{a;b};c}".
func computeID(inputs []Input) string {
	var b strings.Builder
	b.WriteByte('{')
	for i, in := range inputs {
		if i > 0 {
			b.WriteByte(';')
		}
		b.WriteString(in.source.id())
	}
	b.WriteByte('}')
	return b.String()
}

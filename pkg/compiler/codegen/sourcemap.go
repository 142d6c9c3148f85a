package codegen

import "strings"

// SourceMap is a version 3 source map relating generated JavaScript back to
// the original component file.
type SourceMap struct {
	Version        int      `json:"version"`
	File           string   `json:"file,omitempty"`
	Sources        []string `json:"sources"`
	SourcesContent []string `json:"sourcesContent,omitempty"`
	Names          []string `json:"names"`
	Mappings       string   `json:"mappings"`
}

// mapping records one generated position and the original position it came
// from. All fields are zero-based.
type mapping struct {
	genLine int
	genCol  int
	srcLine int
	srcCol  int
}

type mapBuilder struct {
	mappings []mapping
}

func (b *mapBuilder) add(genLine, genCol, srcLine, srcCol int) {
	b.mappings = append(b.mappings, mapping{genLine, genCol, srcLine, srcCol})
}

// shift moves all generated lines down by n, used when a header is prepended
// to an already-mapped body.
func (b *mapBuilder) shift(n int) {
	for i := range b.mappings {
		b.mappings[i].genLine += n
	}
}

// encode serializes the mappings into the semicolon/comma VLQ format. The
// mappings must already be in generated order, which the generator
// guarantees by emitting lines top to bottom.
func (b *mapBuilder) encode(totalLines int) string {
	var out strings.Builder
	prevGenCol, prevSrcLine, prevSrcCol := 0, 0, 0
	idx := 0
	for line := 0; line < totalLines; line++ {
		if line > 0 {
			out.WriteByte(';')
		}
		first := true
		prevGenCol = 0
		for idx < len(b.mappings) && b.mappings[idx].genLine == line {
			m := b.mappings[idx]
			idx++
			if !first {
				out.WriteByte(',')
			}
			first = false
			out.WriteString(encodeVLQ(m.genCol - prevGenCol))
			out.WriteString(encodeVLQ(0)) // single source
			out.WriteString(encodeVLQ(m.srcLine - prevSrcLine))
			out.WriteString(encodeVLQ(m.srcCol - prevSrcCol))
			prevGenCol = m.genCol
			prevSrcLine = m.srcLine
			prevSrcCol = m.srcCol
		}
	}
	return out.String()
}

const vlqChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

// encodeVLQ writes a signed integer as base64 VLQ, least significant group
// first with the sign in the low bit of the first group.
func encodeVLQ(n int) string {
	v := n << 1
	if n < 0 {
		v = (-n << 1) | 1
	}
	var out strings.Builder
	for {
		digit := v & 0x1f
		v >>= 5
		if v > 0 {
			digit |= 0x20
		}
		out.WriteByte(vlqChars[digit])
		if v == 0 {
			break
		}
	}
	return out.String()
}

package model

import (
	"bytes"
	"sync"

	"github.com/klauspost/compress/s2"
	"github.com/valyala/fastjson"
)

// compressThreshold is the payload size above which the raw bytes are held
// s2-compressed. Small payloads are not worth the frame overhead.
const compressThreshold = 512

// Payload holds the raw body of a record.
//
// Large payloads are stored s2-compressed to keep the bounded collection's
// memory footprint down; the text rendering decompresses on demand and is
// memoized.
type Payload struct {
	raw        []byte
	compressed bool

	textOnce sync.Once
	text     string
}

// NewPayload wraps raw payload bytes, compressing them when large enough to
// pay off.
func NewPayload(b []byte) *Payload {
	if b == nil {
		return nil
	}

	p := &Payload{raw: b}
	if len(b) >= compressThreshold {
		encoded := s2.Encode(nil, b)
		if len(encoded) < len(b) {
			p.raw = encoded
			p.compressed = true
		}
	}
	return p
}

// StoredSize returns the number of bytes held in memory for this payload.
func (p *Payload) StoredSize() int {
	if p == nil {
		return 0
	}
	return len(p.raw)
}

// Compressed reports whether the payload is held s2-compressed.
func (p *Payload) Compressed() bool {
	return p != nil && p.compressed
}

// Bytes returns the decompressed payload bytes.
func (p *Payload) Bytes() ([]byte, error) {
	if p == nil {
		return nil, nil
	}
	if !p.compressed {
		return p.raw, nil
	}
	return s2.Decode(nil, p.raw)
}

// Text renders the payload to a display string, exactly once.
//
// JSON object payloads are re-rendered in compact form so equal payloads
// produce equal text regardless of incoming whitespace; anything else is
// returned verbatim. A payload that fails to decompress renders empty rather
// than failing the caller.
func (p *Payload) Text() string {
	if p == nil {
		return ""
	}
	p.textOnce.Do(func() {
		b, err := p.Bytes()
		if err != nil {
			return
		}
		p.text = renderText(b)
	})
	return p.text
}

func renderText(b []byte) string {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		if v, err := fastjson.ParseBytes(trimmed); err == nil {
			return string(v.MarshalTo(nil))
		}
	}
	return string(b)
}

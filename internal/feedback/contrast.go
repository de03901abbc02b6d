package feedback

import "strings"

// Contrast is an unordered pair of phonemes, stored in canonical order.
type Contrast struct {
	A, B string
}

// NewContrast normalizes two phonemes into a canonical contrast.
// An empty or identical pair yields the zero Contrast.
func NewContrast(first, second string) Contrast {
	a, b := normalizePhoneme(first), normalizePhoneme(second)
	if a == "" || b == "" || a == b {
		return Contrast{}
	}
	if b < a {
		a, b = b, a
	}
	return Contrast{A: a, B: b}
}

// ParseContrast reads a display string such as "/θ/ vs /f/".
// Both sides must be a single slash-delimited phoneme; any other label,
// such as "stress on -TEEN vs THIR-", yields the zero Contrast.
func ParseContrast(s string) Contrast {
	first, second, ok := strings.Cut(s, " vs ")
	if !ok || !isPhonemeToken(first) || !isPhonemeToken(second) {
		return Contrast{}
	}
	return NewContrast(first, second)
}

func isPhonemeToken(s string) bool {
	s = strings.TrimSpace(s)
	if len(s) < 3 || !strings.HasPrefix(s, "/") || !strings.HasSuffix(s, "/") {
		return false
	}
	inner := s[1 : len(s)-1]
	return !strings.ContainsAny(inner, "/ \t")
}

// IsZero reports whether c names no contrast.
func (c Contrast) IsZero() bool {
	return c.A == "" && c.B == ""
}

// Phonemes returns both sides.
func (c Contrast) Phonemes() []string {
	if c.IsZero() {
		return nil
	}
	return []string{c.A, c.B}
}

func (c Contrast) String() string {
	if c.IsZero() {
		return ""
	}
	return c.A + " vs " + c.B
}

func normalizePhoneme(s string) string {
	s = strings.Trim(strings.TrimSpace(s), "/")
	if s == "" {
		return ""
	}
	return "/" + s + "/"
}

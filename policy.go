package shroud

import (
	"strconv"
	"strings"
)

// Placeholder is the marker written in place of fully redacted text.
const Placeholder = "[REDACTED]"

// MaskChar is the default rune used by keep, mask and email policies.
const MaskChar = '*'

// PolicyKind identifies the shape of a TextPolicy.
type PolicyKind int

const (
	// PolicyFull replaces the whole value with a placeholder.
	PolicyFull PolicyKind = iota

	// PolicyKeep keeps a visible prefix and/or suffix and masks the rest.
	PolicyKeep

	// PolicyMask masks a prefix and/or suffix and keeps the rest.
	PolicyMask

	// PolicyEmail keeps a prefix of the local part and the full domain.
	PolicyEmail

	// PolicyCustom delegates to a user supplied function.
	PolicyCustom
)

func (k PolicyKind) String() string {
	switch k {
	case PolicyFull:
		return "full"
	case PolicyKeep:
		return "keep"
	case PolicyMask:
		return "mask"
	case PolicyEmail:
		return "email"
	case PolicyCustom:
		return "custom"
	default:
		return "unknown"
	}
}

// TextPolicy is an immutable transformation from raw text to safe text.
// The zero value is a full redaction with the default placeholder.
type TextPolicy struct {
	kind        PolicyKind
	placeholder string
	prefix      int
	suffix      int
	mask        rune
	name        string
	fn          func(string, Markers) string
}

// Markers carries the placeholder and mask rune a custom policy should
// write, so engine configuration reaches custom output too.
type Markers struct {
	Placeholder string
	Mask        rune
}

// Full returns a policy that replaces any input with Placeholder.
func Full() TextPolicy {
	return TextPolicy{kind: PolicyFull, placeholder: Placeholder}
}

// FullWith returns a full redaction policy with a custom placeholder.
func FullWith(placeholder string) TextPolicy {
	return TextPolicy{kind: PolicyFull, placeholder: placeholder}
}

// KeepFirst keeps the first n runes visible and masks the remainder.
func KeepFirst(n int) TextPolicy {
	return Keep(n, 0)
}

// KeepLast keeps the last n runes visible and masks the remainder.
func KeepLast(n int) TextPolicy {
	return Keep(0, n)
}

// Keep keeps prefix leading and suffix trailing runes visible.
// Inputs whose visible span would cover every rune degrade to Placeholder.
func Keep(prefix, suffix int) TextPolicy {
	return TextPolicy{
		kind:        PolicyKeep,
		placeholder: Placeholder,
		prefix:      clampCount(prefix),
		suffix:      clampCount(suffix),
		mask:        MaskChar,
	}
}

// MaskFirst masks the first n runes and keeps the remainder.
func MaskFirst(n int) TextPolicy {
	return MaskSpan(n, 0)
}

// MaskLast masks the last n runes and keeps the remainder.
func MaskLast(n int) TextPolicy {
	return MaskSpan(0, n)
}

// MaskSpan masks prefix leading and suffix trailing runes.
// When the spans cover the input every rune is masked.
func MaskSpan(prefix, suffix int) TextPolicy {
	return TextPolicy{
		kind:        PolicyMask,
		placeholder: Placeholder,
		prefix:      clampCount(prefix),
		suffix:      clampCount(suffix),
		mask:        MaskChar,
	}
}

// EmailLocal keeps the first n runes of an address's local part and
// the domain. Text without '@' is treated like KeepFirst(n).
func EmailLocal(n int) TextPolicy {
	return TextPolicy{
		kind:        PolicyEmail,
		placeholder: Placeholder,
		prefix:      clampCount(n),
		mask:        MaskChar,
	}
}

// Custom wraps fn as a named policy. A nil fn behaves like Full.
func Custom(name string, fn func(string) string) TextPolicy {
	if fn == nil {
		return CustomWith(name, nil)
	}
	return CustomWith(name, func(text string, _ Markers) string {
		return fn(text)
	})
}

// CustomWith wraps fn as a named policy that receives the placeholder and
// mask rune in effect, including those set with WithPlaceholder and
// WithMaskChar on an Engine. A nil fn behaves like Full.
func CustomWith(name string, fn func(text string, m Markers) string) TextPolicy {
	return TextPolicy{
		kind:        PolicyCustom,
		placeholder: Placeholder,
		name:        name,
		fn:          fn,
		mask:        MaskChar,
	}
}

// WithMaskChar returns a copy of p that masks with r.
// Full policies are returned unchanged.
func (p TextPolicy) WithMaskChar(r rune) TextPolicy {
	switch p.kind {
	case PolicyKeep, PolicyMask, PolicyEmail, PolicyCustom:
		p.mask = r
	}
	return p
}

// withPlaceholder replaces the degrade marker used by p.
func (p TextPolicy) withPlaceholder(s string) TextPolicy {
	p.placeholder = s
	return p
}

// Kind reports the policy shape.
func (p TextPolicy) Kind() PolicyKind {
	return p.kind
}

// IsFull reports whether p discards the whole value. Only full policies
// may be applied to scalar leaves.
func (p TextPolicy) IsFull() bool {
	return p.kind == PolicyFull
}

// Apply transforms text. It is pure and total: empty input and inputs
// shorter than a keep span never panic.
func (p TextPolicy) Apply(text string) string {
	placeholder := p.placeholder
	if placeholder == "" {
		placeholder = Placeholder
	}
	switch p.kind {
	case PolicyKeep:
		return p.applyKeep(text, placeholder)
	case PolicyMask:
		return p.applyMask(text, placeholder)
	case PolicyEmail:
		return p.applyEmail(text, placeholder)
	case PolicyCustom:
		if p.fn == nil {
			return placeholder
		}
		return p.fn(text, Markers{Placeholder: placeholder, Mask: p.mask})
	default:
		return placeholder
	}
}

func (p TextPolicy) applyKeep(text, placeholder string) string {
	runes := []rune(text)
	total := len(runes)
	if total == 0 || p.prefix+p.suffix >= total {
		return placeholder
	}
	for i := p.prefix; i < total-p.suffix; i++ {
		runes[i] = p.mask
	}
	return string(runes)
}

func (p TextPolicy) applyMask(text, placeholder string) string {
	runes := []rune(text)
	total := len(runes)
	if total == 0 {
		return placeholder
	}
	if p.prefix+p.suffix >= total {
		return strings.Repeat(string(p.mask), total)
	}
	for i := 0; i < p.prefix; i++ {
		runes[i] = p.mask
	}
	for i := total - p.suffix; i < total; i++ {
		runes[i] = p.mask
	}
	return string(runes)
}

func (p TextPolicy) applyEmail(text, placeholder string) string {
	if text == "" {
		return placeholder
	}
	at := strings.IndexByte(text, '@')
	if at < 0 {
		return Keep(p.prefix, 0).WithMaskChar(p.mask).withPlaceholder(placeholder).Apply(text)
	}
	local := []rune(text[:at])
	if len(local) == 0 || p.prefix >= len(local) {
		return placeholder
	}
	for i := p.prefix; i < len(local); i++ {
		local[i] = p.mask
	}
	return string(local) + text[at:]
}

// String describes the policy for diagnostics. It never includes input text.
func (p TextPolicy) String() string {
	switch p.kind {
	case PolicyKeep:
		return "keep(" + strconv.Itoa(p.prefix) + "," + strconv.Itoa(p.suffix) + ")"
	case PolicyMask:
		return "mask(" + strconv.Itoa(p.prefix) + "," + strconv.Itoa(p.suffix) + ")"
	case PolicyEmail:
		return "email(" + strconv.Itoa(p.prefix) + ")"
	case PolicyCustom:
		return "custom(" + p.name + ")"
	default:
		return "full"
	}
}

func clampCount(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

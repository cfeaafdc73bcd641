package shroud

import (
	"fmt"
	"log/slog"

	"github.com/cockroachdb/redact"
)

// Escaped is a caller-asserted safe rendering of a value that sits outside
// the redaction system, such as a status code or a foreign error type.
type Escaped struct {
	out RedactedOutput
}

// NotSensitiveDisplay renders v with %v and asserts the result is safe.
func NotSensitiveDisplay(v any) Escaped {
	return Escaped{out: TextOutput(fmt.Sprintf("%v", v))}
}

// NotSensitiveDebug renders v with %+v and asserts the result is safe.
func NotSensitiveDebug(v any) Escaped {
	return Escaped{out: TextOutput(fmt.Sprintf("%+v", v))}
}

// NotSensitiveJSON converts v to a JSON-like value and asserts it is safe.
func NotSensitiveJSON(v any) Escaped {
	value, err := toJSONValue(v)
	if err != nil {
		return Escaped{out: TextOutput(fmt.Sprintf("failed to serialize value: %v", err))}
	}
	return Escaped{out: StructuredOutput(value)}
}

// ToRedactedOutput implements ToRedactedOutput.
func (e Escaped) ToRedactedOutput() RedactedOutput {
	return e.out
}

// String implements fmt.Stringer.
func (e Escaped) String() string {
	return e.out.Text()
}

// LogValue implements slog.LogValuer.
func (e Escaped) LogValue() slog.Value {
	return e.out.LogValue()
}

// SafeFormat implements redact.SafeFormatter.
func (e Escaped) SafeFormat(w redact.SafePrinter, verb rune) {
	e.out.SafeFormat(w, verb)
}

func (e Escaped) slogSafe()  {}
func (e Escaped) traceSafe() {}

package logger

import (
	"regexp"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// PIIFields lists the keys whose values never reach the log output.
var PIIFields = []string{"name", "email", "phone", "ssn", "password"}

const (
	redaction      = "***"
	fieldSeparator = ";"
)

// FilterDatum obfuscates the value of every `field=value<separator>` pair
// in message whose field is listed in fields.
func FilterDatum(fields []string, redaction, message, separator string) string {
	if len(fields) == 0 || message == "" {
		return message
	}
	quoted := make([]string, 0, len(fields))
	for _, f := range fields {
		quoted = append(quoted, regexp.QuoteMeta(f))
	}
	pattern := regexp.MustCompile("(" + strings.Join(quoted, "|") + ")=.*?" + regexp.QuoteMeta(separator))
	replacement := "${1}=" + escapeTemplate(redaction) + escapeTemplate(separator)
	return pattern.ReplaceAllString(message, replacement)
}

func escapeTemplate(s string) string {
	return strings.ReplaceAll(s, "$", "$$")
}

type redactingCore struct {
	zapcore.Core
	fields map[string]struct{}
	names  []string
}

// NewRedactingCore wraps core so that structured fields named in fields are
// written as "***" and `field=value;` pairs inside messages are obfuscated.
func NewRedactingCore(core zapcore.Core, fields []string) zapcore.Core {
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return &redactingCore{Core: core, fields: set, names: fields}
}

func (c *redactingCore) With(fields []zapcore.Field) zapcore.Core {
	return &redactingCore{Core: c.Core.With(c.redact(fields)), fields: c.fields, names: c.names}
}

func (c *redactingCore) Check(entry zapcore.Entry, checked *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(entry.Level) {
		return checked.AddCore(entry, c)
	}
	return checked
}

func (c *redactingCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	entry.Message = FilterDatum(c.names, redaction, entry.Message, fieldSeparator)
	return c.Core.Write(entry, c.redact(fields))
}

func (c *redactingCore) redact(fields []zapcore.Field) []zapcore.Field {
	var out []zapcore.Field
	for i, f := range fields {
		if _, ok := c.fields[f.Key]; !ok {
			continue
		}
		if out == nil {
			out = make([]zapcore.Field, len(fields))
			copy(out, fields)
		}
		out[i] = zap.String(f.Key, redaction)
	}
	if out == nil {
		return fields
	}
	return out
}

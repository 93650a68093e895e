package logger

import (
	"strings"
)

// DefaultMaskValue replaces secrets in log fields.
const DefaultMaskValue = "***"

var defaultSensitiveFields = []string{
	"password", "passwd", "pwd",
	"secret", "secretkey", "api_key", "apikey",
	"token", "access_token", "refresh_token",
	"authorization", "credential", "credentials",
}

// Redactor masks secrets and shortens e-mail addresses in log fields.
// Keys are matched case-insensitively.
type Redactor struct {
	sensitive map[string]struct{}
}

// NewRedactor returns a redactor with the default sensitive field names.
func NewRedactor() *Redactor {
	r := &Redactor{sensitive: make(map[string]struct{}, len(defaultSensitiveFields))}
	for _, f := range defaultSensitiveFields {
		r.sensitive[f] = struct{}{}
	}
	return r
}

// FilterString returns the value to log for key.
func (r *Redactor) FilterString(key, value string) string {
	k := strings.ToLower(key)
	if _, ok := r.sensitive[k]; ok {
		return DefaultMaskValue
	}
	if isAddressField(k) {
		return MaskEmail(value)
	}
	return value
}

// FilterValue handles strings and string slices; other values pass through.
func (r *Redactor) FilterValue(key string, value any) any {
	switch v := value.(type) {
	case string:
		return r.FilterString(key, v)
	case []string:
		out := make([]string, len(v))
		for i, s := range v {
			out[i] = r.FilterString(key, s)
		}
		return out
	default:
		if _, ok := r.sensitive[strings.ToLower(key)]; ok {
			return DefaultMaskValue
		}
		return value
	}
}

// FilterFields returns a copy of fields with every value filtered.
func (r *Redactor) FilterFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = r.FilterValue(k, v)
	}
	return out
}

func isAddressField(key string) bool {
	return strings.Contains(key, "email") || strings.Contains(key, "recipient")
}

// MaskEmail keeps the first character of the local part and the domain:
// "jane@example.com" becomes "j***@example.com".
func MaskEmail(addr string) string {
	at := strings.LastIndex(addr, "@")
	if at <= 0 {
		return DefaultMaskValue
	}
	return addr[:1] + DefaultMaskValue + addr[at:]
}

package logging

import (
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"

	"github.com/fyrsmithlabs/folio/internal/config"
)

const (
	masked            = "[REDACTED]"
	maxPatternLen     = 200
	maskedPatternText = "[REDACTED:pattern]"
)

// Secret logs only the length of a configured secret.
func Secret(key string, val config.Secret) zap.Field {
	return zap.String(key, fmt.Sprintf("[REDACTED:%d]", len(val.Value())))
}

// Email logs a visitor address with the local part masked, keeping the
// domain for triage: "sam@globex.com" becomes "s***@globex.com".
func Email(key, addr string) zap.Field {
	at := strings.LastIndexByte(addr, '@')
	if at <= 0 {
		return zap.String(key, masked)
	}
	return zap.String(key, addr[:1]+"***"+addr[at:])
}

// redactor masks fields by key and string values by pattern before the
// wrapped encoder sees them. Nested objects are masked whole when their key
// matches and are not inspected otherwise.
type redactor struct {
	zapcore.Encoder
	keys     map[string]struct{}
	patterns []*regexp.Regexp
}

func newRedactor(base zapcore.Encoder, cfg config.RedactionConfig) (*redactor, error) {
	r := &redactor{Encoder: base}
	if !cfg.Enabled {
		return r, nil
	}
	r.keys = make(map[string]struct{}, len(cfg.Fields))
	for _, f := range cfg.Fields {
		r.keys[strings.ToLower(f)] = struct{}{}
	}
	for _, p := range cfg.Patterns {
		if len(p) > maxPatternLen {
			return nil, fmt.Errorf("redaction pattern longer than %d chars: %q", maxPatternLen, p)
		}
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid redaction pattern %q: %w", p, err)
		}
		r.patterns = append(r.patterns, re)
	}
	return r, nil
}

func (r *redactor) sensitive(key string) bool {
	_, ok := r.keys[strings.ToLower(key)]
	return ok
}

func (r *redactor) AddString(key, val string) {
	switch {
	case r.sensitive(key):
		r.Encoder.AddString(key, masked)
	case r.matches(val):
		r.Encoder.AddString(key, maskedPatternText)
	default:
		r.Encoder.AddString(key, val)
	}
}

func (r *redactor) AddByteString(key string, val []byte) {
	if r.sensitive(key) {
		r.Encoder.AddString(key, masked)
		return
	}
	r.Encoder.AddByteString(key, val)
}

func (r *redactor) AddBinary(key string, val []byte) {
	if r.sensitive(key) {
		r.Encoder.AddString(key, masked)
		return
	}
	r.Encoder.AddBinary(key, val)
}

func (r *redactor) AddReflected(key string, val any) error {
	if r.sensitive(key) {
		r.Encoder.AddString(key, masked)
		return nil
	}
	return r.Encoder.AddReflected(key, val)
}

func (r *redactor) AddArray(key string, arr zapcore.ArrayMarshaler) error {
	if r.sensitive(key) {
		r.Encoder.AddString(key, masked)
		return nil
	}
	return r.Encoder.AddArray(key, arr)
}

func (r *redactor) AddObject(key string, obj zapcore.ObjectMarshaler) error {
	if r.sensitive(key) {
		r.Encoder.AddString(key, masked)
		return nil
	}
	return r.Encoder.AddObject(key, obj)
}

func (r *redactor) matches(val string) bool {
	for _, re := range r.patterns {
		if re.MatchString(val) {
			return true
		}
	}
	return false
}

func (r *redactor) Clone() zapcore.Encoder {
	return &redactor{
		Encoder:  r.Encoder.Clone(),
		keys:     r.keys,
		patterns: r.patterns,
	}
}

// EncodeEntry runs per-call fields through the masking methods and scrubs
// the message itself.
func (r *redactor) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	enc := r.Clone().(*redactor)
	for i := range fields {
		fields[i].AddTo(enc)
	}
	for _, re := range r.patterns {
		ent.Message = re.ReplaceAllString(ent.Message, masked)
	}
	return enc.Encoder.EncodeEntry(ent, nil)
}

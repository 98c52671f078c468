package profilelog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Field is one caller-supplied key/value pair appended after the reserved
// record prefix. Emission order follows call order.
type Field struct {
	Key   string
	Value any
}

// F constructs a Field.
func F(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Reserved record keys. Caller fields using one of these are dropped rather
// than allowed to overwrite the reserved value.
var reservedKeys = map[string]struct{}{
	"timestamp":    {},
	"step":         {},
	"worker":       {},
	"event":        {},
	"duration_sec": {},
	"extra":        {},
}

// ISO-8601 with microseconds and offset, local clock.
const timestampLayout = "2006-01-02T15:04:05.000000-07:00"

// record is one fully resolved event awaiting serialization.
type record struct {
	timestamp time.Time
	step      int
	worker    int
	event     string
	duration  *float64
	extra     map[string]any
	fields    []Field
}

// encode renders the record as a newline-terminated JSON object with a fixed
// field order: timestamp, step, worker, event, then duration_sec and extra
// when present, then caller fields in call order. encoding/json cannot order
// object members by insertion, so the envelope is assembled by hand and only
// values pass through the encoder. First occurrence wins for duplicate caller
// keys.
func (r *record) encode() ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(128 + len(r.fields)*24)
	buf.WriteByte('{')

	appendMember := func(key string, value any) error {
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		encoded, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("encode field %q: %w", key, err)
		}
		keyJSON, err := json.Marshal(key)
		if err != nil {
			return fmt.Errorf("encode field key %q: %w", key, err)
		}
		buf.Write(keyJSON)
		buf.WriteByte(':')
		buf.Write(encoded)
		return nil
	}

	if err := appendMember("timestamp", r.timestamp.Format(timestampLayout)); err != nil {
		return nil, err
	}
	if err := appendMember("step", r.step); err != nil {
		return nil, err
	}
	if err := appendMember("worker", r.worker); err != nil {
		return nil, err
	}
	if err := appendMember("event", r.event); err != nil {
		return nil, err
	}
	if r.duration != nil {
		if err := appendMember("duration_sec", *r.duration); err != nil {
			return nil, err
		}
	}
	if r.extra != nil {
		if err := appendMember("extra", r.extra); err != nil {
			return nil, err
		}
	}

	seen := make(map[string]struct{}, len(r.fields))
	for _, field := range r.fields {
		if _, reserved := reservedKeys[field.Key]; reserved {
			continue
		}
		if _, dup := seen[field.Key]; dup {
			continue
		}
		seen[field.Key] = struct{}{}
		if err := appendMember(field.Key, field.Value); err != nil {
			return nil, err
		}
	}

	buf.WriteByte('}')
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

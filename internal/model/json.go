package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// MarshalJSON encodes the plan as a JSON object in slot order.
func (d *DayPlan) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range d.Entries() {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeMember(&buf, e.Slot, e.Task); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object of string values, keeping key order.
// A repeated key keeps its first position and takes the last value.
func (d *DayPlan) UnmarshalJSON(data []byte) error {
	var fresh DayPlan
	err := decodeObject(data, func(key string, raw json.RawMessage) error {
		var task string
		if err := json.Unmarshal(raw, &task); err != nil {
			return fmt.Errorf("slot %q: %w", key, err)
		}
		fresh.Set(key, task)
		return nil
	})
	if err != nil {
		return err
	}
	*d = fresh
	return nil
}

// MarshalJSON encodes the schedule as a JSON object in date order.
func (s *Schedule) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, date := range s.Dates() {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeString(&buf, date); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		day, err := s.days[date].MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("date %q: %w", date, err)
		}
		buf.Write(day)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a date -> plan object, keeping key order.
func (s *Schedule) UnmarshalJSON(data []byte) error {
	fresh := NewSchedule()
	err := decodeObject(data, func(key string, raw json.RawMessage) error {
		plan := &DayPlan{}
		if err := plan.UnmarshalJSON(raw); err != nil {
			return fmt.Errorf("date %q: %w", key, err)
		}
		fresh.Put(key, plan)
		return nil
	})
	if err != nil {
		return err
	}
	*s = *fresh
	return nil
}

// decodeObject walks the members of a JSON object in document order.
func decodeObject(data []byte, fn func(key string, raw json.RawMessage) error) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected JSON object, got %v", tok)
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		if err := fn(key, raw); err != nil {
			return err
		}
	}

	// Closing brace.
	_, err = dec.Token()
	return err
}

func writeMember(buf *bytes.Buffer, key, value string) error {
	if err := writeString(buf, key); err != nil {
		return err
	}
	buf.WriteByte(':')
	return writeString(buf, value)
}

// writeString encodes s as a JSON string without HTML escaping, so task text
// such as "<meeting>" stays readable in the data file.
func writeString(buf *bytes.Buffer, s string) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	buf.Write(bytes.TrimRight(tmp.Bytes(), "\n"))
	return nil
}

// Package iojson reads command input from files or stdin and writes
// command output as JSON.
package iojson

import (
	"encoding/json"
	"fmt"
	"io"
)

// Error is the JSON shape of a command failure written to stderr when a
// command runs with JSON output.
type Error struct {
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

// fallbackError builds the error JSON by hand when marshaling itself failed.
func fallbackError(msg string, marshalErr error) string {
	msgBytes, _ := json.Marshal(msg)
	errBytes, _ := json.Marshal(marshalErr.Error())
	return fmt.Sprintf(`{"message":%s,"data":{"json_error":%s}}`, msgBytes, errBytes)
}

// MarshalError renders msg and data as a single line of error JSON. Data
// values that cannot be marshaled are reported under "json_error".
func MarshalError(msg string, data map[string]any) string {
	bits, err := json.Marshal(Error{Message: msg, Data: data})
	if err != nil {
		return fallbackError(msg, err)
	}
	return string(bits)
}

// WriteError writes err to ew as error JSON. The error text is stored under
// data.error next to any extra fields.
func WriteError(ew io.Writer, msg string, err error, data map[string]any) error {
	if data == nil {
		data = make(map[string]any, 1)
	}
	if err != nil {
		data["error"] = err.Error()
	}
	_, werr := fmt.Fprintln(ew, MarshalError(msg, data))
	return werr
}

// WriteWith writes obj to w as indented JSON. Marshaling failures are
// reported to ew as error JSON.
func WriteWith(w io.Writer, ew io.Writer, obj any) error {
	bits, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		_, err = fmt.Fprintln(ew, fallbackError("marshal output", err))
		return err
	}

	_, err = fmt.Fprintln(w, string(bits))
	return err
}

// WriteLine writes obj to w as a single line of compact JSON.
func WriteLine(w io.Writer, obj any) error {
	bits, err := json.Marshal(obj)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	_, err = fmt.Fprintln(w, string(bits))
	return err
}

package logs

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Event is the fixed prefix of one decoded profiling record. Caller-supplied
// fields beyond the prefix stay available through Raw.
type Event struct {
	Timestamp   string         `json:"timestamp"`
	Step        int            `json:"step"`
	Worker      int            `json:"worker"`
	Event       string         `json:"event"`
	DurationSec *float64       `json:"duration_sec"`
	Extra       map[string]any `json:"extra"`

	// Raw is the original line, preserved for pass-through output.
	Raw string `json:"-"`
}

// decodeEvent parses one JSONL line into an Event, preserving the original
// text in Raw.
func decodeEvent(line string) (Event, error) {
	var evt Event
	if err := json.Unmarshal([]byte(line), &evt); err != nil {
		return Event{}, err
	}
	evt.Raw = line
	return evt, nil
}

// ReadFile decodes every line of a worker JSONL file. A malformed line fails
// the whole read: these files are append-only and a bad line means the
// producer or the file is broken.
func ReadFile(path string) ([]Event, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open events file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var events []Event
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		evt, err := decodeEvent(line)
		if err != nil {
			return nil, fmt.Errorf("decode %s line %d: %w", path, lineNo, err)
		}
		events = append(events, evt)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read events file %s: %w", path, err)
	}
	return events, nil
}

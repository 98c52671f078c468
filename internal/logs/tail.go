package logs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

const followPollInterval = 250 * time.Millisecond

// Follower incrementally decodes a worker JSONL file as it grows. It keeps a
// byte offset between calls so every complete record is delivered exactly
// once. A missing file is not an error: workers create their files lazily on
// the first event, so a follower may start before the first write.
type Follower struct {
	path   string
	offset int64
}

func NewFollower(path string) *Follower {
	return &Follower{path: path}
}

// Backfill decodes the events already on disk, returning at most the last
// limit of them, and positions the follower after the last complete line so
// a subsequent Next only sees new records. limit <= 0 skips the existing
// content entirely.
func (f *Follower) Backfill(limit int) ([]Event, error) {
	lines, err := f.consume()
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, nil
	}
	if len(lines) > limit {
		lines = lines[len(lines)-limit:]
	}
	return f.decode(lines)
}

// Next blocks up to wait for records appended since the previous call. It
// returns nil events when the wait elapses with nothing new, and ctx.Err()
// when the context is cancelled.
func (f *Follower) Next(ctx context.Context, wait time.Duration) ([]Event, error) {
	deadline := time.Now().Add(wait)

	ticker := time.NewTicker(followPollInterval)
	defer ticker.Stop()

	for {
		lines, err := f.consume()
		if err != nil {
			return nil, err
		}
		if len(lines) > 0 {
			return f.decode(lines)
		}
		if !time.Now().Before(deadline) {
			return nil, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// consume reads everything past the follower's offset and returns the
// complete lines. The offset only advances through the last newline: a
// record the worker is mid-write on stays unconsumed and is picked up whole
// on the next poll.
func (f *Follower) consume() ([]string, error) {
	file, err := os.Open(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open worker log: %w", err)
	}
	defer file.Close()

	if _, err := file.Seek(f.offset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek worker log: %w", err)
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read worker log: %w", err)
	}

	end := bytes.LastIndexByte(data, '\n')
	if end < 0 {
		return nil, nil
	}
	f.offset += int64(end + 1)

	var lines []string
	for _, raw := range bytes.Split(data[:end], []byte{'\n'}) {
		line := strings.TrimSpace(string(raw))
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func (f *Follower) decode(lines []string) ([]Event, error) {
	events := make([]Event, 0, len(lines))
	for _, line := range lines {
		evt, err := decodeEvent(line)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", f.path, err)
		}
		events = append(events, evt)
	}
	return events, nil
}

package store

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Codec converts between history entries and single lines of a file.
// Encoded lines never contain a newline.
type Codec interface {
	// Name returns the format name used in configuration.
	Name() string

	// Encode returns the file line for entry.
	Encode(entry string) (string, error)

	// Decode returns the entry stored in line. It reports false for lines
	// that hold no entry and should be skipped.
	Decode(line string) (string, bool)
}

// Format names accepted by CodecFor.
const (
	FormatPlain = "plain"
	FormatJSONL = "jsonl"
)

// CodecFor returns the codec for a format name. An empty name selects the
// plain format. session is recorded by formats that store it.
func CodecFor(format, session string) (Codec, error) {
	switch strings.ToLower(format) {
	case "", FormatPlain:
		return PlainCodec{}, nil
	case FormatJSONL:
		return &JSONLCodec{Session: session}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// NewlinePlaceholder stands in for embedded newlines in the plain format.
const NewlinePlaceholder = '\x7f'

// PlainCodec stores one entry per line with embedded newlines written as
// NewlinePlaceholder.
type PlainCodec struct{}

// Name implements Codec.
func (PlainCodec) Name() string { return FormatPlain }

// Encode implements Codec.
func (PlainCodec) Encode(entry string) (string, error) {
	return strings.ReplaceAll(entry, "\n", string(NewlinePlaceholder)), nil
}

// Decode implements Codec.
func (PlainCodec) Decode(line string) (string, bool) {
	line = strings.TrimSuffix(line, "\r")
	if line == "" {
		return "", false
	}
	return strings.ReplaceAll(line, string(NewlinePlaceholder), "\n"), true
}

// JSONLCodec stores one JSON object per line:
//
//	{"cmd":"ls -la","time":"2026-01-02T15:04:05Z","session":"..."}
//
// Only "cmd" is required when reading. An entry keeps the time it was
// first written with across full rewrites until Touch marks it recorded
// again.
type JSONLCodec struct {
	// Session is written to every record when non-empty.
	Session string

	// Now supplies record timestamps. Defaults to time.Now.
	Now func() time.Time

	mu    sync.Mutex
	times map[string]string
}

// Name implements Codec.
func (c *JSONLCodec) Name() string { return FormatJSONL }

// Encode implements Codec.
func (c *JSONLCodec) Encode(entry string) (string, error) {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}

	rec, err := sjson.Set("", "cmd", entry)
	if err != nil {
		return "", err
	}
	rec, err = sjson.Set(rec, "time", c.stamp(entry, now))
	if err != nil {
		return "", err
	}
	if c.Session != "" {
		rec, err = sjson.Set(rec, "session", c.Session)
		if err != nil {
			return "", err
		}
	}
	return rec, nil
}

// Decode implements Codec.
func (c *JSONLCodec) Decode(line string) (string, bool) {
	if !gjson.Valid(line) {
		return "", false
	}
	rec := gjson.GetMany(line, "cmd", "time")
	cmd, stamp := rec[0], rec[1]
	if cmd.Type != gjson.String {
		return "", false
	}
	if stamp.Type == gjson.String {
		c.remember(cmd.String(), stamp.String())
	}
	return cmd.String(), true
}

// Touch forgets the saved time of entry so its next record is stamped anew.
func (c *JSONLCodec) Touch(entry string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.times, entry)
}

func (c *JSONLCodec) stamp(entry string, now func() time.Time) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t, ok := c.times[entry]; ok {
		return t
	}
	t := now().UTC().Format(time.RFC3339)
	c.rememberLocked(entry, t)
	return t
}

func (c *JSONLCodec) remember(entry, stamp string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rememberLocked(entry, stamp)
}

func (c *JSONLCodec) rememberLocked(entry, stamp string) {
	if c.times == nil {
		c.times = make(map[string]string)
	}
	c.times[entry] = stamp
}

package backend

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/atomicstack/popup-select/internal/option"
)

const maxLineSize = 1 << 20

// ReadJSONLines parses one option per line. A line is either a JSON object,
// whose idKey field becomes the option ID (falling back to labelKey), or a
// bare string used as both ID and label. Blank lines are skipped.
func ReadJSONLines(r io.Reader, idKey, labelKey string) ([]option.Option, error) {
	if idKey == "" {
		idKey = option.IDKey
	}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	var out []option.Option
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		o, err := parseLine(line, idKey, labelKey)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		out = append(out, o)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read options: %w", err)
	}
	return out, nil
}

func parseLine(line []byte, idKey, labelKey string) (option.Option, error) {
	if line[0] != '{' {
		text := string(line)
		if line[0] == '"' {
			if err := json.Unmarshal(line, &text); err != nil {
				return option.Option{}, err
			}
		}
		return option.New(text, map[string]any{labelKey: text}), nil
	}
	dec := json.NewDecoder(bytes.NewReader(line))
	dec.UseNumber()
	fields := map[string]any{}
	if err := dec.Decode(&fields); err != nil {
		return option.Option{}, err
	}
	id := fieldText(fields, idKey)
	if id == "" {
		id = fieldText(fields, labelKey)
	}
	if id == "" {
		return option.Option{}, fmt.Errorf("missing %q field", idKey)
	}
	if idKey == option.IDKey {
		delete(fields, idKey)
	}
	return option.New(id, fields), nil
}

func fieldText(fields map[string]any, key string) string {
	v, ok := fields[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

// WriteJSONLines writes options as JSON objects, one per line, with the ID
// stored under idKey.
func WriteJSONLines(w io.Writer, options []option.Option, idKey string) error {
	if idKey == "" {
		idKey = option.IDKey
	}
	enc := json.NewEncoder(w)
	for _, o := range options {
		record := make(map[string]any, len(o.Fields)+1)
		for k, v := range o.Fields {
			record[k] = v
		}
		record[idKey] = o.ID
		if err := enc.Encode(record); err != nil {
			return fmt.Errorf("write option %s: %w", o.ID, err)
		}
	}
	return nil
}

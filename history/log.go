package history

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/randalmurphal/ragchat/provider"
)

// ErrInvalidRole indicates a stored message has a role outside
// system, user and assistant.
var ErrInvalidRole = errors.New("invalid message role")

// maxLineSize bounds a single JSONL record.
const maxLineSize = 4 * 1024 * 1024

// ReadLog parses a conversation log in JSONL form, one message per line:
//
//	{"role":"user","content":"What is included in my plan?"}
//	{"role":"assistant","content":"The plan includes..."}
//
// Blank lines are ignored.
func ReadLog(r io.Reader) ([]provider.Message, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var messages []provider.Message
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var msg provider.Message
		if err := json.Unmarshal([]byte(line), &msg); err != nil {
			return nil, fmt.Errorf("line %d: parse message: %w", lineNum, err)
		}
		if !msg.Role.Valid() {
			return nil, fmt.Errorf("line %d: %w %q", lineNum, ErrInvalidRole, msg.Role)
		}
		messages = append(messages, msg)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}
	return messages, nil
}

// ReadLogFile reads a conversation log from path. The format follows the
// extension: .jsonl (one message per line), .json (array of messages) or
// .yaml/.yml (sequence of messages).
func ReadLogFile(path string) ([]provider.Message, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".jsonl" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open conversation log: %w", err)
		}
		defer f.Close()
		messages, err := ReadLog(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return messages, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read conversation log: %w", err)
	}

	var messages []provider.Message
	switch ext {
	case ".json":
		err = json.Unmarshal(data, &messages)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &messages)
	default:
		return nil, fmt.Errorf("conversation log %s: unrecognized extension %q", path, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: parse messages: %w", path, err)
	}
	if err := validateRoles(messages); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return messages, nil
}

// WriteLog writes messages as JSONL, the format ReadLog reads.
func WriteLog(w io.Writer, messages []provider.Message) error {
	enc := json.NewEncoder(w)
	for i, msg := range messages {
		if err := enc.Encode(msg); err != nil {
			return fmt.Errorf("message %d: %w", i, err)
		}
	}
	return nil
}

func validateRoles(messages []provider.Message) error {
	for i, msg := range messages {
		if !msg.Role.Valid() {
			return fmt.Errorf("message %d: %w %q", i, ErrInvalidRole, msg.Role)
		}
	}
	return nil
}

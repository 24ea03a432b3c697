package protocol

import (
	"bytes"
	"errors"
	"math"
	"strconv"

	"github.com/goccy/go-json"
)

const (
	CommandLoadFrame = "load_frame"

	ArgFrameIdx = "frame_idx"
)

// Command is a decoded client envelope: the command name plus every other
// top-level field, left undecoded until a handler asks for it.
type Command struct {
	Name string
	Args map[string]json.RawMessage
}

// DecodeError wraps anything that prevented a client message from being
// turned into a Command.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return "decode command: " + e.Err.Error()
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

var (
	errMissingCommand = errors.New(`missing "command" field`)
	errCommandType    = errors.New(`"command" must be a string`)
)

func DecodeCommand(b []byte) (*Command, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return nil, &DecodeError{err}
	}

	raw, ok := fields["command"]
	if !ok {
		return nil, &DecodeError{errMissingCommand}
	}
	var name string
	if err := json.Unmarshal(raw, &name); err != nil || isNull(raw) {
		return nil, &DecodeError{errCommandType}
	}
	delete(fields, "command")

	return &Command{Name: name, Args: fields}, nil
}

// IntArg returns the named argument if it is a JSON number with an integral
// value that fits in an int. Strings, booleans, null and fractions report false.
func (c *Command) IntArg(name string) (int, bool) {
	raw, ok := c.Args[name]
	if !ok {
		return 0, false
	}
	s := string(bytes.TrimSpace(raw))
	if s == "" || (s[0] != '-' && (s[0] < '0' || s[0] > '9')) {
		return 0, false
	}

	if i, err := strconv.ParseInt(s, 10, 0); err == nil {
		return int(i), true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.Trunc(f) != f || f < math.MinInt || f >= math.MaxInt {
		return 0, false
	}
	return int(f), true
}

// Encode marshals a client command; used by clients and tests.
func (c *Command) Encode() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(c.Args)+1)
	for k, v := range c.Args {
		out[k] = v
	}
	name, err := json.Marshal(c.Name)
	if err != nil {
		return nil, err
	}
	out["command"] = name
	return json.Marshal(out)
}

// LoadFrame builds a load_frame command for frame idx.
func LoadFrame(idx int) *Command {
	return &Command{
		Name: CommandLoadFrame,
		Args: map[string]json.RawMessage{ArgFrameIdx: json.RawMessage(strconv.Itoa(idx))},
	}
}

func isNull(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}

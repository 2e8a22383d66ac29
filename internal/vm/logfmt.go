package vm

import (
	"context"
	"encoding/json"
	"fmt"
)

// LogHeader is the first record of an execution log.
type LogHeader struct {
	V       int    `json:"v"`
	Kind    string `json:"kind"`
	Lisle   string `json:"lisle"`
	Program string `json:"program,omitempty"`
}

// LogValue is a typed value in the log. Collections are stored in their
// rendered form and cannot be replayed.
type LogValue struct {
	Type string          `json:"type"`
	V    json.RawMessage `json:"v,omitempty"`
}

// LogHostEvent records one host call and its result.
type LogHostEvent struct {
	Kind string     `json:"kind"`
	Name string     `json:"name"`
	Line uint32     `json:"line,omitempty"`
	Args []LogValue `json:"args,omitempty"`
	Ret  LogValue   `json:"ret"`
	Err  string     `json:"err,omitempty"`
}

// LogExitEvent records a program exit.
type LogExitEvent struct {
	Kind string `json:"kind"`
	Code int    `json:"code"`
}

// LogErrorEvent records a runtime error that ended the program.
type LogErrorEvent struct {
	Kind      string   `json:"kind"`
	Code      string   `json:"code"`
	ErrorKind string   `json:"error_kind"`
	Msg       string   `json:"msg"`
	Line      uint32   `json:"line,omitempty"`
	Bt        []string `json:"bt,omitempty"`
}

// NewLogHeader creates a header for the given interpreter version.
func NewLogHeader(version, program string) LogHeader {
	return LogHeader{V: 1, Kind: "header", Lisle: version, Program: program}
}

// NewLogErrorEvent converts a runtime error.
func NewLogErrorEvent(vmErr *VMError) LogErrorEvent {
	if vmErr == nil {
		return LogErrorEvent{Kind: "error"}
	}
	bt := make([]string, 0, len(vmErr.Backtrace))
	for _, f := range vmErr.Backtrace {
		bt = append(bt, fmt.Sprintf("%s@%d", f.FuncName, f.Line))
	}
	return LogErrorEvent{
		Kind:      "error",
		Code:      vmErr.Code.String(),
		ErrorKind: vmErr.Kind().String(),
		Msg:       vmErr.Message,
		Line:      vmErr.Line,
		Bt:        bt,
	}
}

// EncodeLogValue converts v for the log. Collections are rendered through
// the session when one is given.
func EncodeLogValue(ctx context.Context, s *Session, v Value) LogValue {
	switch v.Kind {
	case VKNil:
		return LogValue{Type: "nil"}
	case VKInt:
		return LogValue{Type: "int", V: mustJSON(v.Int)}
	case VKFloat:
		return LogValue{Type: "float", V: mustJSON(v.Float)}
	case VKBool:
		return LogValue{Type: "bool", V: mustJSON(v.Bool)}
	case VKString:
		return LogValue{Type: "string", V: mustJSON(v.Str)}
	}
	text := renderScalar(v)
	if s != nil {
		if str, err := s.ToString(ctx, v); err == nil {
			text = str
		}
	}
	return LogValue{Type: v.Kind.String(), V: mustJSON(text)}
}

// DecodeLogValue turns a logged scalar back into a Value.
func DecodeLogValue(v LogValue) (Value, error) {
	switch v.Type {
	case "nil":
		return NilValue(), nil
	case "int":
		var n int32
		if err := json.Unmarshal(v.V, &n); err != nil {
			return NilValue(), err
		}
		return IntValue(n), nil
	case "float":
		var f float32
		if err := json.Unmarshal(v.V, &f); err != nil {
			return NilValue(), err
		}
		return FloatValue(f), nil
	case "bool":
		var b bool
		if err := json.Unmarshal(v.V, &b); err != nil {
			return NilValue(), err
		}
		return BoolValue(b), nil
	case "string":
		var str string
		if err := json.Unmarshal(v.V, &str); err != nil {
			return NilValue(), err
		}
		return OwnedString(str), nil
	}
	return NilValue(), fmt.Errorf("cannot replay a logged %s value", v.Type)
}

func mustJSON(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}

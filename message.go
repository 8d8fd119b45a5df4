package cansim

import (
	"encoding/json"
	"fmt"

	"github.com/fatih/color"
)

// Message is anything the demuxer can produce from the serial stream:
// a command response, an unsolicited status update or error from the
// firmware, or a plain diagnostic line.
type Message interface {
	message()
}

// Response is the firmware's reply to a single outbound command. Fields
// holds everything beside the type/command/status discriminators, since
// each command carries its own extra payload keys.
type Response struct {
	Command string
	Status  string
	Fields  map[string]interface{}
}

func (*Response) message() {}

func (r *Response) OK() bool {
	return r.Status == "ok"
}

// StringField returns the named payload field, or "" when absent or not a string.
func (r *Response) StringField(key string) string {
	if v, ok := r.Fields[key].(string); ok {
		return v
	}
	return ""
}

// IntField returns the named payload field as an int. JSON numbers
// decode as float64 so both forms are accepted.
func (r *Response) IntField(key string) int {
	switch v := r.Fields[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return 0
}

func (r *Response) BoolField(key string) bool {
	if v, ok := r.Fields[key].(bool); ok {
		return v
	}
	return false
}

// StringsField returns the named payload field as a string slice.
func (r *Response) StringsField(key string) []string {
	raw, ok := r.Fields[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, e := range raw {
		if s, ok := e.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func (r *Response) String() string {
	return fmt.Sprintf("response %s: %s", r.Command, r.Status)
}

// Status is the simulator's state as reported in a status_update
// notification or a get_status response.
type Status struct {
	Vehicle         string `json:"vehicle"`
	Gear            string `json:"gear"`
	Speed           int    `json:"speed"`
	CANActive       bool   `json:"can_active"`
	Uptime          int    `json:"uptime"`
	FirmwareVersion string `json:"firmware_version"`
}

func (*Status) message() {}

func (s *Status) String() string {
	return fmt.Sprintf("%s || %s || %d km/h || can: %v || up %ds || fw %s",
		s.Vehicle, s.Gear, s.Speed, s.CANActive, s.Uptime, s.FirmwareVersion)
}

var (
	green  = color.New(color.FgGreen).SprintfFunc()
	yellow = color.New(color.FgYellow).SprintfFunc()
	red    = color.New(color.FgRed).SprintfFunc()
)

func (s *Status) ColorString() string {
	canState := red("off")
	if s.CANActive {
		canState = green("on")
	}
	return fmt.Sprintf("%s || %s || %s || can: %s || up %ds || fw %s",
		green("%s", s.Vehicle), yellow("%s", s.Gear), yellow("%d km/h", s.Speed),
		canState, s.Uptime, s.FirmwareVersion)
}

// ErrorMessage is an unsolicited error notification from the firmware.
type ErrorMessage struct {
	Message string `json:"message"`
}

func (*ErrorMessage) message() {}

func (e *ErrorMessage) String() string {
	return "simulator error: " + e.Message
}

// LogLine is non-JSON diagnostic output passed through untouched.
type LogLine struct {
	Text string
}

func (*LogLine) message() {}

// parseObject turns one balanced JSON span into a Message. The second
// return is true for the transmitter's own command echo, which must be
// dropped: the firmware's serial console reflects every line we write,
// and an echo carries command+timestamp but never a type tag.
func parseObject(raw string) (Message, bool, error) {
	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &obj); err != nil {
		return nil, false, err
	}
	typ, hasType := obj["type"].(string)
	if !hasType {
		_, hasCommand := obj["command"]
		_, hasTimestamp := obj["timestamp"]
		if hasCommand && hasTimestamp {
			return nil, true, nil
		}
		return &LogLine{Text: raw}, false, nil
	}
	switch typ {
	case "response":
		resp := &Response{Fields: make(map[string]interface{})}
		for k, v := range obj {
			switch k {
			case "type":
			case "command":
				resp.Command, _ = v.(string)
			case "status":
				resp.Status, _ = v.(string)
			default:
				resp.Fields[k] = v
			}
		}
		return resp, false, nil
	case "status_update":
		status := &Status{}
		if err := json.Unmarshal([]byte(raw), status); err != nil {
			return nil, false, err
		}
		return status, false, nil
	case "error":
		errMsg := &ErrorMessage{}
		if err := json.Unmarshal([]byte(raw), errMsg); err != nil {
			return nil, false, err
		}
		return errMsg, false, nil
	default:
		return &LogLine{Text: raw}, false, nil
	}
}

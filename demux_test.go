package cansim

import (
	"reflect"
	"strings"
	"testing"
)

func feedAll(d *Demuxer, input string, chunkSize int) []Message {
	var out []Message
	for len(input) > 0 {
		n := chunkSize
		if n > len(input) {
			n = len(input)
		}
		out = append(out, d.Feed([]byte(input[:n]))...)
		input = input[n:]
	}
	return out
}

func TestFeedChunkBoundaryInvariance(t *testing.T) {
	input := "booting...\n" +
		`{"type":"status_update","vehicle":"VWT7","gear":"PARK","speed":0,"can_active":true,"uptime":12,"firmware_version":"1.2.0"}` + "\r\n" +
		"SerialCmd ready\n" +
		`{"type":"error","message":"CAN controller reset"}` + "\n" +
		`{"type":"response","command":"ping","status":"ok"}` + "\r\n"

	whole := NewDemuxer(nil).Feed([]byte(input))

	for _, chunkSize := range []int{1, 2, 3, 7, 16, 64} {
		got := feedAll(NewDemuxer(nil), input, chunkSize)
		if !reflect.DeepEqual(got, whole) {
			t.Errorf("chunk size %d: got %#v, want %#v", chunkSize, got, whole)
		}
	}

	want := 5 // two log lines, status, error, response
	if len(whole) != want {
		t.Fatalf("message count = %d, want %d", len(whole), want)
	}
	if _, ok := whole[0].(*LogLine); !ok {
		t.Errorf("message 0 = %T, want *LogLine", whole[0])
	}
	status, ok := whole[1].(*Status)
	if !ok {
		t.Fatalf("message 1 = %T, want *Status", whole[1])
	}
	if status.Vehicle != "VWT7" || status.Gear != "PARK" || !status.CANActive || status.Uptime != 12 {
		t.Errorf("unexpected status: %+v", status)
	}
}

func TestFeedSelfEchoSuppressed(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{
			name:  "plain echo",
			input: `{"command":"ping","timestamp":1234}`,
			want:  0,
		},
		{
			name:  "echo with args",
			input: `{"command":"set_speed","timestamp":1234,"speed":120}`,
			want:  0,
		},
		{
			name:  "typed object with command and timestamp is kept",
			input: `{"type":"response","command":"ping","timestamp":1234,"status":"ok"}`,
			want:  1,
		},
		{
			name:  "command without timestamp is a log line",
			input: `{"command":"ping"}`,
			want:  1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewDemuxer(nil).Feed([]byte(tt.input))
			if len(got) != tt.want {
				t.Errorf("Feed() emitted %d messages, want %d: %#v", len(got), tt.want, got)
			}
		})
	}
}

func TestFeedMalformedObject(t *testing.T) {
	var logged []string
	d := NewDemuxer(func(msg string) { logged = append(logged, msg) })

	got := d.Feed([]byte(`{not valid json}{"type":"error","message":"x"}`))

	if len(got) != 1 {
		t.Fatalf("Feed() emitted %d messages, want 1: %#v", len(got), got)
	}
	errMsg, ok := got[0].(*ErrorMessage)
	if !ok {
		t.Fatalf("message = %T, want *ErrorMessage", got[0])
	}
	if errMsg.Message != "x" {
		t.Errorf("Message = %q, want %q", errMsg.Message, "x")
	}
	if len(logged) != 1 {
		t.Errorf("malformed fragment not logged: %v", logged)
	}
}

func TestFeedPrettyPrintedObject(t *testing.T) {
	input := "{\n\"type\":\n\"response\",\n\"command\":\"ping\",\n\"status\":\"ok\"}\n"
	got := NewDemuxer(nil).Feed([]byte(input))
	if len(got) != 1 {
		t.Fatalf("Feed() emitted %d messages, want 1: %#v", len(got), got)
	}
	resp, ok := got[0].(*Response)
	if !ok {
		t.Fatalf("message = %T, want *Response", got[0])
	}
	if resp.Command != "ping" || resp.Status != "ok" {
		t.Errorf("got %+v, want ping/ok", resp)
	}
}

func TestFeedStripsColorCodes(t *testing.T) {
	input := "\x1b[32mready\x1b[0m\n\x1b[31m{\"type\":\"error\",\"message\":\"boom\"}\x1b[0m\n"
	got := NewDemuxer(nil).Feed([]byte(input))
	if len(got) != 2 {
		t.Fatalf("Feed() emitted %d messages, want 2: %#v", len(got), got)
	}
	line, ok := got[0].(*LogLine)
	if !ok || line.Text != "ready" {
		t.Errorf("message 0 = %#v, want LogLine %q", got[0], "ready")
	}
	errMsg, ok := got[1].(*ErrorMessage)
	if !ok || errMsg.Message != "boom" {
		t.Errorf("message 1 = %#v, want ErrorMessage %q", got[1], "boom")
	}
}

func TestFeedColorCodeSplitAcrossChunks(t *testing.T) {
	input := "\x1b[31m{\"type\":\"error\",\"message\":\"boom\"}\x1b[0m\n"
	whole := NewDemuxer(nil).Feed([]byte(input))
	for _, chunkSize := range []int{1, 2, 3} {
		got := feedAll(NewDemuxer(nil), input, chunkSize)
		if !reflect.DeepEqual(got, whole) {
			t.Errorf("chunk size %d: got %#v, want %#v", chunkSize, got, whole)
		}
	}
}

func TestFeedIncompleteObjectAcrossChunks(t *testing.T) {
	d := NewDemuxer(nil)
	if got := d.Feed([]byte(`{"type":"respon`)); len(got) != 0 {
		t.Fatalf("partial object emitted %d messages: %#v", len(got), got)
	}
	got := d.Feed([]byte(`se","command":"ping","status":"ok"}`))
	if len(got) != 1 {
		t.Fatalf("completed object emitted %d messages: %#v", len(got), got)
	}
	if resp := got[0].(*Response); resp.Command != "ping" {
		t.Errorf("Command = %q, want ping", resp.Command)
	}
}

func TestFeedNestedBraces(t *testing.T) {
	input := `{"type":"response","command":"get_status","status":"ok","limits":{"speed":{"max":250}}}`
	got := NewDemuxer(nil).Feed([]byte(input))
	if len(got) != 1 {
		t.Fatalf("Feed() emitted %d messages, want 1: %#v", len(got), got)
	}
	resp := got[0].(*Response)
	if _, ok := resp.Fields["limits"]; !ok {
		t.Errorf("nested field lost: %+v", resp.Fields)
	}
}

func TestFeedUnknownTypePassedThrough(t *testing.T) {
	input := `{"type":"telemetry","rssi":-60}`
	got := NewDemuxer(nil).Feed([]byte(input))
	if len(got) != 1 {
		t.Fatalf("Feed() emitted %d messages, want 1", len(got))
	}
	line, ok := got[0].(*LogLine)
	if !ok {
		t.Fatalf("message = %T, want *LogLine", got[0])
	}
	if !strings.Contains(line.Text, "telemetry") {
		t.Errorf("raw text not preserved: %q", line.Text)
	}
}

func TestFeedKeepsTrailingFragment(t *testing.T) {
	d := NewDemuxer(nil)
	if got := d.Feed([]byte("half a li")); len(got) != 0 {
		t.Fatalf("incomplete line emitted %d messages", len(got))
	}
	got := d.Feed([]byte("ne\n"))
	if len(got) != 1 {
		t.Fatalf("completed line emitted %d messages", len(got))
	}
	if line := got[0].(*LogLine); line.Text != "half a line" {
		t.Errorf("Text = %q, want %q", line.Text, "half a line")
	}
}

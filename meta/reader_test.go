package meta

import (
	"bufio"
	"errors"
	"io"
	"strings"
	"testing"
)

func parseResponse(t *testing.T, wire string) (*Response, error) {
	t.Helper()
	return readResponse(bufio.NewReader(strings.NewReader(wire)))
}

func TestReadResponseStatuses(t *testing.T) {
	tests := []struct {
		name     string
		wire     string
		expected StatusType
	}{
		{"stored", "HD\r\n", StatusHD},
		{"miss", "EN\r\n", StatusEN},
		{"not found", "NF\r\n", StatusNF},
		{"not stored", "NS\r\n", StatusNS},
		{"cas mismatch", "EX\r\n", StatusEX},
		{"noop", "MN\r\n", StatusMN},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := parseResponse(t, tt.wire)
			if err != nil {
				t.Fatalf("readResponse failed: %v", err)
			}
			if resp.Status != tt.expected {
				t.Errorf("Status = %q, want %q", resp.Status, tt.expected)
			}
			if resp.Error != nil {
				t.Errorf("unexpected response error: %v", resp.Error)
			}
			if len(resp.Values) != 0 {
				t.Errorf("bare status carried %d values", len(resp.Values))
			}
		})
	}
}

func TestReadResponseValue(t *testing.T) {
	resp, err := parseResponse(t, "VA 5 Omytoken t60\r\nhello\r\n")
	if err != nil {
		t.Fatalf("readResponse failed: %v", err)
	}

	if resp.Status != StatusVA {
		t.Fatalf("Status = %q, want VA", resp.Status)
	}

	v := resp.First()
	if v == nil {
		t.Fatal("expected a returned record")
	}
	if string(v.Data) != "hello" {
		t.Errorf("Data = %q, want %q", v.Data, "hello")
	}

	opaque, ok := v.Opaque()
	if !ok || opaque != "mytoken" {
		t.Errorf("Opaque() = %q, %v", opaque, ok)
	}

	ttl, ok := v.TTL()
	if !ok || ttl != 60 {
		t.Errorf("TTL() = %d, %v", ttl, ok)
	}
}

func TestReadResponseEmptyValue(t *testing.T) {
	resp, err := parseResponse(t, "VA 0\r\n\r\n")
	if err != nil {
		t.Fatalf("readResponse failed: %v", err)
	}

	v := resp.First()
	if v == nil {
		t.Fatal("expected a returned record")
	}
	if len(v.Data) != 0 {
		t.Errorf("Data = %q, want empty", v.Data)
	}
}

func TestReadResponseHeaderFlags(t *testing.T) {
	// HD with echoed flags is still a bare status: flags are exposed on the
	// response, no record is synthesized.
	resp, err := parseResponse(t, "HD O42 W\r\n")
	if err != nil {
		t.Fatalf("readResponse failed: %v", err)
	}

	if resp.First() != nil {
		t.Error("HD response should not carry a record")
	}
	if token, ok := resp.Flags.Get(FlagOpaque); !ok || token != "42" {
		t.Errorf("opaque flag = %q, %v", token, ok)
	}
	if !resp.HasWinFlag() {
		t.Error("expected W flag")
	}
}

func TestReadResponseLegacyErrors(t *testing.T) {
	tests := []struct {
		name      string
		wire      string
		wantClose bool
	}{
		{"generic error", "ERROR\r\n", true},
		{"client error", "CLIENT_ERROR bad data chunk\r\n", true},
		{"server error", "SERVER_ERROR out of memory\r\n", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := parseResponse(t, tt.wire)
			if err != nil {
				t.Fatalf("readResponse failed: %v", err)
			}
			if resp.Error == nil {
				t.Fatal("expected Response.Error to be set")
			}
			if got := ShouldCloseConnection(resp.Error); got != tt.wantClose {
				t.Errorf("ShouldCloseConnection = %v, want %v", got, tt.wantClose)
			}
		})
	}
}

func TestReadResponseClientErrorMessage(t *testing.T) {
	resp, err := parseResponse(t, "CLIENT_ERROR bad data chunk\r\n")
	if err != nil {
		t.Fatalf("readResponse failed: %v", err)
	}

	var clientErr *ClientError
	if !errors.As(resp.Error, &clientErr) {
		t.Fatalf("Error = %T, want *ClientError", resp.Error)
	}
	if clientErr.Message != "bad data chunk" {
		t.Errorf("Message = %q", clientErr.Message)
	}
}

func TestReadResponseMalformed(t *testing.T) {
	tests := []struct {
		name string
		wire string
	}{
		{"missing VA size", "VA\r\n"},
		{"non-numeric VA size", "VA abc\r\n"},
		{"negative VA size", "VA -1\r\n"},
		{"truncated data block", "VA 10\r\nhi\r\n"},
		{"data block without terminator", "VA 2\r\nhiXX"},
		{"short line", "H\r\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseResponse(t, tt.wire)
			if err == nil {
				t.Fatal("expected error for malformed response")
			}
			if !ShouldCloseConnection(err) {
				t.Errorf("malformed response should close connection: %v", err)
			}
		})
	}
}

func TestReadResponseEOF(t *testing.T) {
	_, err := parseResponse(t, "")
	if !errors.Is(err, io.EOF) {
		t.Errorf("err = %v, want io.EOF", err)
	}
}

func TestReadResponseSequence(t *testing.T) {
	// Two responses pipelined on one stream: the quiet-mode read pattern.
	r := bufio.NewReader(strings.NewReader("VA 3 q\r\nfoo\r\nMN\r\n"))

	first, err := readResponse(r)
	if err != nil {
		t.Fatalf("first readResponse failed: %v", err)
	}
	if first.Status != StatusVA {
		t.Fatalf("first Status = %q, want VA", first.Status)
	}

	second, err := readResponse(r)
	if err != nil {
		t.Fatalf("second readResponse failed: %v", err)
	}
	if second.Status != StatusMN {
		t.Errorf("second Status = %q, want MN", second.Status)
	}
}

func TestReadResponseLongLine(t *testing.T) {
	// Response line longer than the default bufio buffer exercises the
	// ReadBytes fallback.
	token := strings.Repeat("x", 5000)
	resp, err := readResponse(bufio.NewReaderSize(strings.NewReader("HD O"+token+"\r\n"), 16))
	if err != nil {
		t.Fatalf("readResponse failed: %v", err)
	}
	if got, ok := resp.Flags.Get(FlagOpaque); !ok || got != token {
		t.Errorf("opaque flag not preserved across long line")
	}
}

package fileval

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateContent(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		content []byte
		maxSize int64
		wantErr any
	}{
		{name: "valid ascii", content: []byte("x = 1\n")},
		{name: "valid unicode", content: []byte("s = 'héllo'\n")},
		{name: "empty", content: nil},
		{name: "size limit off", content: []byte(strings.Repeat("a", 100)), maxSize: 0},
		{name: "under limit", content: []byte("abc"), maxSize: 10},
		{name: "at limit", content: []byte("abc"), maxSize: 3},
		{name: "over limit", content: []byte("abcd"), maxSize: 3, wantErr: &TooLargeError{}},
		{name: "invalid utf-8", content: []byte{0xff, 0xfe, 0x00}, wantErr: &NotUTF8Error{}},
		{name: "truncated rune", content: []byte("ok\xc3"), wantErr: &NotUTF8Error{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateContent("test.py", tt.content, tt.maxSize)
			switch want := tt.wantErr.(type) {
			case nil:
				if err != nil {
					t.Fatalf("ValidateContent() = %v, want nil", err)
				}
			case *TooLargeError:
				var tle *TooLargeError
				if !errors.As(err, &tle) {
					t.Fatalf("ValidateContent() = %v, want TooLargeError", err)
				}
			case *NotUTF8Error:
				var nue *NotUTF8Error
				if !errors.As(err, &nue) {
					t.Fatalf("ValidateContent() = %v, want NotUTF8Error", err)
				}
			default:
				t.Fatalf("bad test case: %v", want)
			}
		})
	}
}

func TestTooLargeErrorMentionsOverride(t *testing.T) {
	t.Parallel()
	err := &TooLargeError{Path: "big.py", Size: 2048, MaxSize: 1024}
	if !strings.Contains(err.Error(), "max-file-size") {
		t.Errorf("error should point at the config override, got %q", err.Error())
	}
}

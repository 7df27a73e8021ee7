package ocr

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"crlf and tabs", "Facility\tA\r\nTerm  Loan\r\n", "Facility A\nTerm Loan"},
		{"blank runs", "one\n\n\n\n  \ntwo", "one\n\ntwo"},
		{"ligature", "eﬃcient", "efficient"},
		{"full width digits", "２０２６", "2026"},
		{"trailing spaces", "line   \nnext ", "line\nnext"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Fatalf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

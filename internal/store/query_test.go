package store

import "testing"

func TestClassifyQuery(t *testing.T) {
	cases := []struct {
		in       string
		wantKind QueryKind
		wantTerm string
	}{
		{"@alice", QueryHandle, "alice"},
		{"@", QueryHandle, ""},
		{"12345", QueryNumeric, "12345"},
		{"hello world", QueryBody, "hello world"},
		{"12a45", QueryBody, "12a45"},
		{"  @Bob ", QueryHandle, "Bob"},
		{"", QueryBody, ""},
	}
	for _, tc := range cases {
		kind, term := ClassifyQuery(tc.in)
		if kind != tc.wantKind || term != tc.wantTerm {
			t.Errorf("ClassifyQuery(%q) = (%v, %q), want (%v, %q)",
				tc.in, kind, term, tc.wantKind, tc.wantTerm)
		}
	}
}

package ident

import (
	"net/http/httptest"
	"testing"
	"time"

	perr "tally/internal/platform/errors"
)

func TestParseRoundTrip(t *testing.T) {
	v := NewVerifier("test-secret")
	tok, err := v.Issue("owner-1", time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("Authorization", "Bearer "+tok)
	oid, err := v.Parse(r)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if oid != "owner-1" {
		t.Fatalf("owner = %q", oid)
	}
}

func TestParseRejectsBadTokens(t *testing.T) {
	v := NewVerifier("test-secret")
	other := NewVerifier("other-secret")

	expired := NewVerifier("test-secret")
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, _ := expired.Issue("owner-1", time.Hour)

	cases := []struct {
		name  string
		authz string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc"},
		{"wrong secret", "Bearer " + mustIssue(t, other, "owner-1")},
		{"expired", "Bearer " + old},
		{"garbage", "Bearer not.a.token"},
	}
	for _, tc := range cases {
		r := httptest.NewRequest("GET", "/", nil)
		if tc.authz != "" {
			r.Header.Set("Authorization", tc.authz)
		}
		if _, err := v.Parse(r); !perr.IsCode(err, perr.ErrorCodeUnauthorized) {
			t.Fatalf("%s: err = %v, want unauthorized", tc.name, err)
		}
	}
}

func mustIssue(t *testing.T, v *Verifier, owner string) string {
	t.Helper()
	tok, err := v.Issue(owner, time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	return tok
}

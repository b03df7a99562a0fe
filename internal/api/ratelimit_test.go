package api

import "testing"

func TestOriginCheckerDefaultsToLocalhostOnly(t *testing.T) {
	c := NewOriginChecker(nil)

	if !c.IsAllowed("http://localhost:5173") {
		t.Error("expected any localhost port to be allowed with no configured origins")
	}
	if c.IsAllowed("https://example.com") {
		t.Error("expected a non-localhost origin to be rejected with no configured origins")
	}
	if c.IsAllowed("") {
		t.Error("expected an empty origin to be rejected")
	}
}

func TestOriginCheckerHonorsConfiguredAllowlist(t *testing.T) {
	c := NewOriginChecker([]string{"https://pong.example.com"})

	if !c.IsAllowed("https://pong.example.com") {
		t.Error("expected the configured origin to be allowed")
	}
	if c.IsAllowed("http://localhost:5173") {
		t.Error("expected localhost to be rejected once an explicit allowlist is configured")
	}
	if c.IsAllowed("https://evil.example.com") {
		t.Error("expected an origin outside the allowlist to be rejected")
	}
}

package chanflow

import "testing"

func TestPolicy_RoundTrip(t *testing.T) {
	for _, policy := range []Policy{Blocking, Sliding, Dropping} {
		parsed, err := ParsePolicy(policy.String())
		if err != nil {
			t.Fatalf("unexpected error parsing %q: %v", policy.String(), err)
		}
		if parsed != policy {
			t.Fatalf("round trip mismatch: %v != %v", parsed, policy)
		}
	}
}

func TestParsePolicy_Default(t *testing.T) {
	policy, err := ParsePolicy("")
	if err != nil || policy != Blocking {
		t.Fatalf("expected empty string to parse as blocking, got %v err=%v", policy, err)
	}
}

func TestParsePolicy_Unknown(t *testing.T) {
	if _, err := ParsePolicy("exploding"); err == nil {
		t.Fatal("expected an error for an unknown policy name")
	}
}

func TestPolicy_UnmarshalText(t *testing.T) {
	var policy Policy
	if err := policy.UnmarshalText([]byte("dropping")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if policy != Dropping {
		t.Fatalf("expected dropping, got %v", policy)
	}

	if err := policy.UnmarshalText([]byte("exploding")); err == nil {
		t.Fatal("expected an error for an unknown policy name")
	}
}

package chanflow

import "fmt"

// Policy determines what happens when a Put would exceed channel capacity.
// The zero value is Blocking.
type Policy int

const (
	// Blocking suspends the caller until capacity frees up or the channel
	// closes. No message is lost; producers experience backpressure.
	Blocking Policy = iota
	// Sliding drops the oldest buffered message to make room for the new
	// one. Put never suspends; the buffer keeps the most recent messages.
	Sliding
	// Dropping discards the incoming message when the buffer is full.
	// Put never suspends; the buffer keeps the earliest messages.
	Dropping
)

// String returns the lowercase name of the policy.
func (p Policy) String() string {
	switch p {
	case Blocking:
		return "blocking"
	case Sliding:
		return "sliding"
	case Dropping:
		return "dropping"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// ParsePolicy converts a policy name to a Policy.
// Recognized names are "blocking", "sliding" and "dropping".
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "blocking", "":
		return Blocking, nil
	case "sliding":
		return Sliding, nil
	case "dropping":
		return Dropping, nil
	default:
		return Blocking, fmt.Errorf("chanflow: unknown policy %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (p Policy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler, allowing Policy fields
// to be populated from environment variables and text-based configuration.
func (p *Policy) UnmarshalText(text []byte) error {
	parsed, err := ParsePolicy(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

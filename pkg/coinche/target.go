package coinche

import (
	"encoding/json"
	"fmt"
)

// Target is a bid level: one of the numeric point targets, or Capot (a bid
// to take every trick). Targets are totally ordered by value, with Capot
// above every numeric target.
type Target int

const (
	Target80 Target = iota
	Target90
	Target100
	Target110
	Target120
	Target130
	Target140
	Target150
	Target160
	TargetCapot
)

var targetValues = map[Target]int{
	Target80: 80, Target90: 90, Target100: 100, Target110: 110,
	Target120: 120, Target130: 130, Target140: 140, Target150: 150,
	Target160: 160, TargetCapot: 250,
}

var targetLabels = map[Target]string{
	Target80: "80", Target90: "90", Target100: "100", Target110: "110",
	Target120: "120", Target130: "130", Target140: "140", Target150: "150",
	Target160: "160", TargetCapot: "Capot",
}

// String returns the canonical wire form, e.g. "80" or "Capot".
func (t Target) String() string {
	if l, ok := targetLabels[t]; ok {
		return l
	}
	return "?"
}

// ParseTarget parses the canonical wire form produced by String.
func ParseTarget(s string) (Target, error) {
	for t, l := range targetLabels {
		if l == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("coinche: invalid target %q", s)
}

// Value returns the contract's face value, used when the contract is made.
func (t Target) Value() int {
	return targetValues[t]
}

// RequiredPoints returns the card-point total (out of 162) the contracting
// team must reach to make a contract at this target. Capot requires the
// full hand, since taking every trick is the only way to reach 162 without
// conceding a single point to the defense.
func (t Target) RequiredPoints() int {
	if t == TargetCapot {
		return 162
	}
	return t.Value()
}

// Less reports whether t is strictly below other in bidding order.
func (t Target) Less(other Target) bool {
	return t < other
}

func (t Target) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *Target) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseTarget(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

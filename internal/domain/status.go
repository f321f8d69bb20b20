package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ItemState is the indexing outcome of a single item
type ItemState int

const (
	StatePending ItemState = iota
	StateOkay
	StateError
)

// String returns the display label for the state
func (s ItemState) String() string {
	switch s {
	case StateOkay:
		return "Okay"
	case StateError:
		return "Error"
	default:
		return "Pending"
	}
}

// ParseItemState converts a label such as "error" back to an ItemState
func ParseItemState(label string) (ItemState, error) {
	switch label {
	case "pending", "Pending":
		return StatePending, nil
	case "okay", "Okay", "ok":
		return StateOkay, nil
	case "error", "Error":
		return StateError, nil
	default:
		return StatePending, fmt.Errorf("unknown item state %q", label)
	}
}

// ItemToIndex is one entry of the expected-items list. An empty string is
// a valid uid; only a missing or null uid is rejected by Validate.
type ItemToIndex struct {
	UID string `json:"uid"`

	hasUID bool
}

// UnmarshalJSON records whether the uid key was present. A non-string uid
// surfaces as a *json.UnmarshalTypeError.
func (it *ItemToIndex) UnmarshalJSON(data []byte) error {
	var raw struct {
		UID *string `json:"uid"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	it.UID = ""
	it.hasUID = raw.UID != nil
	if raw.UID != nil {
		it.UID = *raw.UID
	}
	return nil
}

// AllToIndex wraps the ordered list of items the indexer intends to process
type AllToIndex struct {
	ToIndex []ItemToIndex `json:"toIndex"`
}

// StatusRecord is an opaque per-item record as returned by the server
type StatusRecord json.RawMessage

// UnmarshalJSON keeps a copy of the raw record bytes
func (r *StatusRecord) UnmarshalJSON(data []byte) error {
	if r == nil {
		return fmt.Errorf("StatusRecord: UnmarshalJSON on nil pointer")
	}
	*r = append((*r)[0:0], data...)
	return nil
}

// IsSet reports whether the record counts as present. A record that is
// null, false, 0 or "" is treated like a missing one.
func (r StatusRecord) IsSet() bool {
	return Truthy(json.RawMessage(r))
}

// HasError reports whether the record carries a truthy "error" field
func (r StatusRecord) HasError() bool {
	if !r.IsSet() {
		return false
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(r, &fields); err != nil {
		// Not an object, so there is no error field to look at
		return false
	}
	errField, ok := fields["error"]
	if !ok {
		return false
	}
	return Truthy(errField)
}

// Indented returns the record formatted with two-space indentation
func (r StatusRecord) Indented() string {
	if len(r) == 0 {
		return ""
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, r, "", "  "); err != nil {
		return string(r)
	}
	return buf.String()
}

// StatusResponse is the payload served by the indexing status endpoint
type StatusResponse struct {
	ToIndex  *AllToIndex             `json:"toIndex"`
	Statuses map[string]StatusRecord `json:"statuses"`
}

// Items returns the expected items in server order
func (s *StatusResponse) Items() []ItemToIndex {
	if s == nil || s.ToIndex == nil {
		return nil
	}
	return s.ToIndex.ToIndex
}

// Record looks up the record for uid. The boolean is false when the server
// has no record for the item yet.
func (s *StatusResponse) Record(uid string) (StatusRecord, bool) {
	if s == nil || s.Statuses == nil {
		return nil, false
	}
	rec, ok := s.Statuses[uid]
	return rec, ok
}

// Classify returns the state of uid based solely on its record
func (s *StatusResponse) Classify(uid string) ItemState {
	rec, ok := s.Record(uid)
	if !ok || !rec.IsSet() {
		return StatePending
	}
	if rec.HasError() {
		return StateError
	}
	return StateOkay
}

// Counts tallies every expected item into exactly one state
func (s *StatusResponse) Counts() Counts {
	var c Counts
	for _, item := range s.Items() {
		c.Add(s.Classify(item.UID))
	}
	return c
}

// Validate checks that the payload has the shape the viewer relies on
func (s *StatusResponse) Validate() error {
	if s == nil {
		return fmt.Errorf("%w: empty payload", ErrMalformedPayload)
	}
	if s.ToIndex == nil {
		return fmt.Errorf("%w: missing toIndex", ErrMalformedPayload)
	}
	if s.ToIndex.ToIndex == nil {
		return fmt.Errorf("%w: missing toIndex.toIndex", ErrMalformedPayload)
	}
	if s.Statuses == nil {
		return fmt.Errorf("%w: missing statuses", ErrMalformedPayload)
	}
	for i, item := range s.ToIndex.ToIndex {
		if !item.hasUID && item.UID == "" {
			return fmt.Errorf("%w: toIndex.toIndex[%d] has no uid", ErrMalformedPayload, i)
		}
	}
	return nil
}

// Counts holds the derived per-state totals
type Counts struct {
	Okay    int
	Error   int
	Pending int
}

// Add increments the counter for state
func (c *Counts) Add(state ItemState) {
	switch state {
	case StateOkay:
		c.Okay++
	case StateError:
		c.Error++
	default:
		c.Pending++
	}
}

// Total returns the number of classified items
func (c Counts) Total() int {
	return c.Okay + c.Error + c.Pending
}

// Of returns the counter for state
func (c Counts) Of(state ItemState) int {
	switch state {
	case StateOkay:
		return c.Okay
	case StateError:
		return c.Error
	default:
		return c.Pending
	}
}

// Badge is one summary counter shown in the heading
type Badge struct {
	State ItemState
	Count int
}

// Label returns the badge text, e.g. "Error: 3"
func (b Badge) Label() string {
	return b.State.String() + ": " + strconv.Itoa(b.Count)
}

// Badges returns the non-zero counters in display order (error, pending, okay).
// A zero counter is omitted rather than shown as 0.
func (c Counts) Badges() []Badge {
	var badges []Badge
	for _, state := range []ItemState{StateError, StatePending, StateOkay} {
		if n := c.Of(state); n > 0 {
			badges = append(badges, Badge{State: state, Count: n})
		}
	}
	return badges
}

// Truthy evaluates a raw JSON value with JavaScript truthiness. null, false,
// 0 and "" are falsy; {} and [] are truthy.
func Truthy(raw json.RawMessage) bool {
	v := bytes.TrimSpace(raw)
	if len(v) == 0 {
		return false
	}
	switch v[0] {
	case 'n':
		return false
	case 'f':
		return false
	case 't', '{', '[':
		return true
	case '"':
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return len(v) > 2
		}
		return s != ""
	default:
		f, err := strconv.ParseFloat(string(v), 64)
		if err != nil {
			return true
		}
		return f != 0
	}
}

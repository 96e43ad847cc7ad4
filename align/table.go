package align

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"
)

// FormatVersion is the serialized table layout version. Decoding rejects
// any other version.
const FormatVersion = 1

// Key identifies a table entry. Either side may be absent, which denotes a
// marginal count. Each present side stores its tokens separator-terminated,
// so the empty fragment, an absent side and token boundaries never collide.
type Key struct {
	src    string
	tgt    string
	hasSrc bool
	hasTgt bool
}

// Joint returns the key of a source/target co-occurrence.
func Joint(source, target Fragment) Key {
	return Key{src: encodeFragment(source), tgt: encodeFragment(target), hasSrc: true, hasTgt: true}
}

// SourceOnly returns the key of a source marginal count.
func SourceOnly(source Fragment) Key {
	return Key{src: encodeFragment(source), hasSrc: true}
}

// TargetOnly returns the key of a target marginal count.
func TargetOnly(target Fragment) Key {
	return Key{tgt: encodeFragment(target), hasTgt: true}
}

// Source returns the source fragment and whether it is present.
func (k Key) Source() (Fragment, bool) {
	if !k.hasSrc {
		return nil, false
	}
	return decodeFragment(k.src), true
}

// Target returns the target fragment and whether it is present.
func (k Key) Target() (Fragment, bool) {
	if !k.hasTgt {
		return nil, false
	}
	return decodeFragment(k.tgt), true
}

// IsJoint reports whether both sides are present.
func (k Key) IsJoint() bool {
	return k.hasSrc && k.hasTgt
}

func (k Key) less(other Key) bool {
	if k.hasSrc != other.hasSrc {
		return !k.hasSrc
	}
	if k.src != other.src {
		return k.src < other.src
	}
	if k.hasTgt != other.hasTgt {
		return !k.hasTgt
	}
	return k.tgt < other.tgt
}

func encodeFragment(f Fragment) string {
	var b strings.Builder
	for _, tok := range f {
		b.WriteString(tok)
		b.WriteString(Separator)
	}
	return b.String()
}

func decodeFragment(s string) Fragment {
	if s == "" {
		return Fragment{}
	}
	parts := strings.Split(s, Separator)
	return Fragment(parts[:len(parts)-1])
}

// Entry is a key with its accumulated count.
type Entry struct {
	Key   Key
	Count int
}

// Table is a sparse correspondence table of counts keyed by fragment pairs.
type Table struct {
	counts map[Key]int
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{counts: make(map[Key]int)}
}

// Get returns the count for k, or 0 if absent.
func (t *Table) Get(k Key) int {
	return t.counts[k]
}

// Add applies delta to the count stored for k.
func (t *Table) Add(k Key, delta int) {
	t.counts[k] += delta
}

// Len returns the number of stored keys.
func (t *Table) Len() int {
	return len(t.counts)
}

// Entries returns all entries in a deterministic order.
func (t *Table) Entries() []Entry {
	entries := make([]Entry, 0, len(t.counts))
	for k, c := range t.counts {
		entries = append(entries, Entry{Key: k, Count: c})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Key.less(entries[j].Key)
	})
	return entries
}

// Merge adds every count of other into t.
func (t *Table) Merge(other *Table) {
	for k, c := range other.counts {
		t.counts[k] += c
	}
}

// Clone returns an independent copy.
func (t *Table) Clone() *Table {
	out := &Table{counts: make(map[Key]int, len(t.counts))}
	for k, c := range t.counts {
		out.counts[k] = c
	}
	return out
}

// Equal reports whether both tables hold the same keys and counts.
func (t *Table) Equal(other *Table) bool {
	if len(t.counts) != len(other.counts) {
		return false
	}
	for k, c := range t.counts {
		if oc, ok := other.counts[k]; !ok || oc != c {
			return false
		}
	}
	return true
}

type tableJSON struct {
	Version int         `json:"version"`
	Entries []entryJSON `json:"entries"`
}

// A nil side is absent; an empty list is the empty fragment.
type entryJSON struct {
	Source *[]string `json:"source"`
	Target *[]string `json:"target"`
	Count  *int      `json:"count"`
}

func sideJSON(f Fragment, ok bool) *[]string {
	if !ok {
		return nil
	}
	s := make([]string, len(f))
	copy(s, f)
	return &s
}

// MarshalJSON implements json.Marshaler.
func (t *Table) MarshalJSON() ([]byte, error) {
	out := tableJSON{Version: FormatVersion, Entries: make([]entryJSON, 0, len(t.counts))}
	for _, e := range t.Entries() {
		src, hasSrc := e.Key.Source()
		tgt, hasTgt := e.Key.Target()
		out.Entries = append(out.Entries, entryJSON{
			Source: sideJSON(src, hasSrc),
			Target: sideJSON(tgt, hasTgt),
			Count:  &e.Count,
		})
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler. Malformed input yields ErrFormat.
func (t *Table) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var in tableJSON
	if err := dec.Decode(&in); err != nil {
		return formatError("decode table: %v", err)
	}
	if dec.More() {
		return formatError("trailing data after table")
	}
	if in.Version != FormatVersion {
		return formatError("unsupported table version %d", in.Version)
	}

	counts := make(map[Key]int, len(in.Entries))
	for i, e := range in.Entries {
		var k Key
		if e.Source != nil {
			if err := ValidateTokens(*e.Source); err != nil {
				return formatError("entry %d: source: %v", i, err)
			}
			k.src, k.hasSrc = encodeFragment(*e.Source), true
		}
		if e.Target != nil {
			if err := ValidateTokens(*e.Target); err != nil {
				return formatError("entry %d: target: %v", i, err)
			}
			k.tgt, k.hasTgt = encodeFragment(*e.Target), true
		}
		if !k.hasSrc && !k.hasTgt {
			return formatError("entry %d: both sides absent", i)
		}
		if _, dup := counts[k]; dup {
			return formatError("entry %d: duplicate key", i)
		}
		if e.Count == nil {
			return formatError("entry %d: missing count", i)
		}
		if *e.Count < 0 {
			return formatError("entry %d: negative count %d", i, *e.Count)
		}
		counts[k] = *e.Count
	}
	t.counts = counts
	return nil
}

// Serialize encodes the table in its lossless JSON text form.
func (t *Table) Serialize() ([]byte, error) {
	return t.MarshalJSON()
}

// DeserializeTable decodes a table produced by Serialize.
func DeserializeTable(data []byte) (*Table, error) {
	t := NewTable()
	if err := t.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	return t, nil
}

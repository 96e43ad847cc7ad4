package align

import (
	"os"
	"sort"
)

// Model wraps a filtered correspondence table. It is immutable once built.
type Model struct {
	table *Table
}

// NewModel wraps t. The caller must not modify t afterwards.
func NewModel(t *Table) *Model {
	if t == nil {
		t = NewTable()
	}
	return &Model{table: t}
}

// Count returns the stored joint count for source and target.
func (m *Model) Count(source, target Fragment) int {
	return m.table.Get(Joint(source, target))
}

// Weight scores a fragment pair as its total token length times its count.
// Pairs unknown to the model score zero.
func (m *Model) Weight(source, target Fragment) float64 {
	return float64(len(source)+len(target)) * float64(m.Count(source, target))
}

// Len returns the number of stored correspondences.
func (m *Model) Len() int {
	return m.table.Len()
}

// Entries returns a sorted copy of the model's entries.
func (m *Model) Entries() []Entry {
	return m.table.Entries()
}

// Table returns a copy of the underlying table.
func (m *Model) Table() *Table {
	return m.table.Clone()
}

// Correspondence is a target fragment paired with its joint count.
type Correspondence struct {
	Target Fragment `json:"target"`
	Count  int      `json:"count"`
}

// Correspondences lists the targets stored for source, highest count first.
func (m *Model) Correspondences(source Fragment) []Correspondence {
	enc := encodeFragment(source)
	var out []Correspondence
	for _, e := range m.table.Entries() {
		if !e.Key.IsJoint() || e.Key.src != enc {
			continue
		}
		tgt, _ := e.Key.Target()
		out = append(out, Correspondence{Target: tgt, Count: e.Count})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	return out
}

// Equal reports whether both models hold identical tables.
func (m *Model) Equal(other *Model) bool {
	return m.table.Equal(other.table)
}

// MarshalJSON implements json.Marshaler.
func (m *Model) MarshalJSON() ([]byte, error) {
	return m.table.MarshalJSON()
}

// UnmarshalJSON implements json.Unmarshaler. Only a zero-value Model may be
// decoded into; a populated Model is immutable and yields ErrInvariant.
func (m *Model) UnmarshalJSON(data []byte) error {
	if m.table != nil {
		return invariantError("cannot decode into a populated model")
	}
	t := NewTable()
	if err := t.UnmarshalJSON(data); err != nil {
		return err
	}
	m.table = t
	return nil
}

// Serialize encodes the model in its lossless text form.
func (m *Model) Serialize() ([]byte, error) {
	return m.table.Serialize()
}

// Deserialize decodes a model produced by Serialize.
func Deserialize(data []byte) (*Model, error) {
	t, err := DeserializeTable(data)
	if err != nil {
		return nil, err
	}
	return &Model{table: t}, nil
}

// SaveModel writes the serialized model to path.
func SaveModel(model *Model, path string) error {
	data, err := model.Serialize()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadModel reads a model written by SaveModel.
func LoadModel(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Deserialize(data)
}

package metatags

import (
	"bytes"
	"encoding/json"
	"iter"
	"strings"
)

// TagID joins the query pairs as key=value with "~" in query order.
// A key without value renders as "key=".
func TagID(query []QueryKey) string {
	parts := make([]string, len(query))
	for i, q := range query {
		v := ""
		if q.Value != nil {
			v = *q.Value
		}
		parts[i] = q.Key + "=" + v
	}
	return strings.Join(parts, "~")
}

func (t InternalTag) ID() string {
	return TagID(t.Query)
}

// TagSet maps TagIDs to tags and remembers insertion order. The zero value
// is an empty set ready to use.
type TagSet struct {
	ids  []string
	byID map[string]InternalTag
}

// Put stores t under its TagID. A tag already stored under the same id is
// replaced but keeps its position.
func (s *TagSet) Put(t InternalTag) {
	id := t.ID()
	if s.byID == nil {
		s.byID = make(map[string]InternalTag)
	}
	if _, ok := s.byID[id]; !ok {
		s.ids = append(s.ids, id)
	}
	s.byID[id] = t
}

func (s TagSet) Get(id string) (InternalTag, bool) {
	t, ok := s.byID[id]
	return t, ok
}

func (s TagSet) Has(id string) bool {
	_, ok := s.byID[id]
	return ok
}

func (s TagSet) Len() int {
	return len(s.ids)
}

// IDs returns a copy of the ids in insertion order.
func (s TagSet) IDs() []string {
	return append([]string(nil), s.ids...)
}

func (s TagSet) All() iter.Seq2[string, InternalTag] {
	return func(yield func(string, InternalTag) bool) {
		for _, id := range s.ids {
			if !yield(id, s.byID[id]) {
				return
			}
		}
	}
}

func (s TagSet) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, id := range s.ids {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(id)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(s.byID[id])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

package analysis

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"

	t "refactorgen/internal/types"
	"refactorgen/internal/util/jsonutil"
)

// Codec turns a structural model into bytes and back.
type Codec interface {
	Name() string
	Marshal(m *t.StructuralModel) ([]byte, error)
	Unmarshal(data []byte, m *t.StructuralModel) error
}

// CodecFor picks the codec by file extension; anything unknown is JSON.
func CodecFor(path string) Codec {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML
	case ".msgpack", ".mp":
		return MsgPack
	default:
		return JSON
	}
}

var (
	JSON    Codec = jsonCodec{}
	YAML    Codec = yamlCodec{}
	MsgPack Codec = msgpackCodec{}
)

type jsonCodec struct{}

func (jsonCodec) Name() string { return "json" }
func (jsonCodec) Marshal(m *t.StructuralModel) ([]byte, error) {
	return jsonutil.MarshalNoEscapeIndent(m, "  ")
}
func (jsonCodec) Unmarshal(data []byte, m *t.StructuralModel) error {
	return json.Unmarshal(data, m)
}

type yamlCodec struct{}

func (yamlCodec) Name() string { return "yaml" }
func (yamlCodec) Marshal(m *t.StructuralModel) ([]byte, error) {
	return yaml.Marshal(m)
}
func (yamlCodec) Unmarshal(data []byte, m *t.StructuralModel) error {
	return yaml.Unmarshal(data, m)
}

// msgpackCodec reuses the json tags so field names match the other formats.
type msgpackCodec struct{}

func (msgpackCodec) Name() string { return "msgpack" }
func (msgpackCodec) Marshal(m *t.StructuralModel) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(m); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
func (msgpackCodec) Unmarshal(data []byte, m *t.StructuralModel) error {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.SetCustomStructTag("json")
	return dec.Decode(m)
}

// canonical replaces nil lists with empty ones so every codec loads the same
// value (YAML and msgpack do not keep the nil/empty distinction).
func canonical(m *t.StructuralModel) *t.StructuralModel {
	if m.Subroutines == nil {
		m.Subroutines = []t.Subroutine{}
	}
	for i := range m.Subroutines {
		if m.Subroutines[i].Dependencies == nil {
			m.Subroutines[i].Dependencies = []string{}
		}
	}
	if m.Dependencies == nil {
		m.Dependencies = []string{}
	}
	if m.ResponsibilityClusters == nil {
		m.ResponsibilityClusters = []t.ResponsibilityCluster{}
	}
	for i := range m.ResponsibilityClusters {
		if m.ResponsibilityClusters[i].RelatedSubroutines == nil {
			m.ResponsibilityClusters[i].RelatedSubroutines = []string{}
		}
	}
	return m
}

// clone deep-copies m so cached values cannot be mutated by callers.
func clone(m *t.StructuralModel) *t.StructuralModel {
	if m == nil {
		return nil
	}
	out := *m
	out.Dependencies = append([]string(nil), m.Dependencies...)
	out.Subroutines = make([]t.Subroutine, len(m.Subroutines))
	for i, s := range m.Subroutines {
		s.Dependencies = append([]string(nil), s.Dependencies...)
		out.Subroutines[i] = s
	}
	out.ResponsibilityClusters = make([]t.ResponsibilityCluster, len(m.ResponsibilityClusters))
	for i, c := range m.ResponsibilityClusters {
		c.RelatedSubroutines = append([]string(nil), c.RelatedSubroutines...)
		if c.SuggestedModuleName != nil {
			name := *c.SuggestedModuleName
			c.SuggestedModuleName = &name
		}
		out.ResponsibilityClusters[i] = c
	}
	return canonical(&out)
}

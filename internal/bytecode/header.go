package bytecode

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
)

// Header is the exported, body-free signature surface of a compiled module.
// It is stored as JSON in the metadata segment and read back by AddInclude
// when another module links against it.
type Header struct {
	Hidden     bool              `json:"-"`
	Type       string            `json:"type"` // always "metadata"
	Methods    []HeaderMethod    `json:"methods"`
	Classes    []HeaderClass     `json:"classes"`
	Interfaces []HeaderInterface `json:"interfaces,omitempty"`
}

// HeaderMethod describes a free function, method or constructor.
// Arguments include the receiver "this" for methods and constructors.
type HeaderMethod struct {
	Type            string            `json:"type"` // "method"
	Name            string            `json:"name"`
	Arguments       []HeaderArg       `json:"arguments"`
	NumArgs         int               `json:"numargs"`
	Returns         string            `json:"returns"`
	ContainingClass string            `json:"containingclass"`
	Entrypoint      bool              `json:"entrypoint"`
	Ctor            bool              `json:"ctor"`
	Override        bool              `json:"override"`
	Abstract        bool              `json:"abstract"`
	TypeParams      []HeaderTypeParam `json:"typeparams,omitempty"`
}

type HeaderArg struct {
	Type    string `json:"type"` // "argument"
	Name    string `json:"name"`
	ArgType string `json:"argtype"`
}

// HeaderTypeParam describes a type parameter of a generic function.
type HeaderTypeParam struct {
	Name       string   `json:"name"`
	Extends    string   `json:"extends,omitempty"`
	Implements []string `json:"implements,omitempty"`
}

type HeaderClass struct {
	Type       string              `json:"type"` // "class"
	Name       string              `json:"name"`
	Fields     []HeaderField       `json:"fields"`
	Methods    []HeaderClassMethod `json:"methods"`
	Ctors      []HeaderMethod      `json:"ctors"`
	Parent     string              `json:"parent"`
	Abstract   bool                `json:"abstract"`
	Interfaces []string            `json:"interfaces,omitempty"`
}

type HeaderField struct {
	Type      string `json:"type"` // "field"
	Name      string `json:"name"`
	FieldType string `json:"fieldtype"`
}

// HeaderClassMethod names a method declared by a class. The method's
// signature is listed among the header's top-level methods.
type HeaderClassMethod struct {
	Type string `json:"type"` // "classmethod"
	Name string `json:"name"`
}

type HeaderInterface struct {
	Type    string         `json:"type"` // "interface"
	Name    string         `json:"name"`
	Methods []HeaderMethod `json:"methods"`
}

// NewHeader returns an empty, visible header.
func NewHeader() *Header {
	return &Header{
		Type:    "metadata",
		Methods: []HeaderMethod{},
		Classes: []HeaderClass{},
	}
}

// HiddenHeader is the header of a module that suppresses its metadata.
func HiddenHeader() *Header {
	return &Header{Hidden: true}
}

// header has Header's fields but not its methods.
type header Header

func (h *Header) MarshalJSON() ([]byte, error) {
	if h.Hidden {
		return []byte(`{"hidden":true}`), nil
	}
	c := header(*h)
	if c.Methods == nil {
		c.Methods = []HeaderMethod{}
	}
	if c.Classes == nil {
		c.Classes = []HeaderClass{}
	}
	return json.Marshal(&c)
}

func (h *Header) UnmarshalJSON(data []byte) error {
	var peek struct {
		Hidden bool `json:"hidden"`
	}
	if err := json.Unmarshal(data, &peek); err != nil {
		return err
	}
	if peek.Hidden {
		*h = Header{Hidden: true}
		return nil
	}
	var c header
	if err := json.Unmarshal(data, &c); err != nil {
		return err
	}
	*h = Header(c)
	return nil
}

// String returns the JSON encoding of h.
func (h *Header) String() string {
	b, err := json.Marshal(h)
	if err != nil {
		return "<invalid header: " + err.Error() + ">"
	}
	return string(b)
}

// ParseHeader decodes a JSON header.
func ParseHeader(data []byte) (*Header, error) {
	h := new(Header)
	if err := json.Unmarshal(data, h); err != nil {
		return nil, errors.Wrap(err, "invalid header")
	}
	if !h.Hidden && h.Type != "metadata" {
		return nil, errors.Errorf("invalid header: type is %q, want \"metadata\"", h.Type)
	}
	return h, nil
}

// LoadHeader reads the header of a module for linking. Files ending in
// ".json" hold the header itself; anything else is a compiled program whose
// metadata segment is extracted. Hidden headers cannot be linked against.
func LoadHeader(filename string, data []byte) (*Header, error) {
	raw := data
	if !strings.HasSuffix(filename, ".json") {
		_, js, err := ExtractHeader(data)
		if err != nil {
			return nil, errors.Wrap(err, filename)
		}
		raw = []byte(js)
	}
	h, err := ParseHeader(raw)
	if err != nil {
		return nil, errors.Wrap(err, filename)
	}
	if h.Hidden {
		return nil, errors.Errorf("%s: header is hidden", filename)
	}
	return h, nil
}

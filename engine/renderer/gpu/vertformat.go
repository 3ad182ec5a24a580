package gpu

import (
	"encoding/binary"
	"hash/fnv"
)

// MaxSafeAttrName is the length of the names produced by SafeAttrName.
const MaxSafeAttrName = 11

/**
 * @brief A named attribute slot of a vertex format.
 */
type VertAttr struct {
	/** @brief The attribute name. */
	Name string
	/** @brief The logical type. */
	Type VertAttrType
	/** @brief Extra names bound to this attribute. */
	Aliases []string
	/** @brief Offset inside one vertex for interleaved layouts. */
	Offset int
}

/**
 * @brief An ordered list of typed attributes describing a vertex buffer layout.
 */
type VertFormat struct {
	attrs        []VertAttr
	deinterleave bool
	stride       int
}

// NewVertFormatFromAttr builds a single attribute format.
func NewVertFormatFromAttr(name string, attrType VertAttrType) VertFormat {
	f := VertFormat{}
	f.AddAttr(name, attrType)
	return f
}

// Deinterleave lays attributes out one after the other: all values of the
// first attribute, then all values of the second, and so on.
func (f *VertFormat) Deinterleave() {
	f.deinterleave = true
}

func (f *VertFormat) IsDeinterleaved() bool {
	return f.deinterleave
}

// AddAttr appends an attribute and returns its index.
func (f *VertFormat) AddAttr(name string, attrType VertAttrType) int {
	f.attrs = append(f.attrs, VertAttr{Name: name, Type: attrType, Offset: f.stride})
	f.stride += attrType.Size()
	return len(f.attrs) - 1
}

// AddAlias binds alias to the most recently added attribute.
// It is a no-op on an empty format.
func (f *VertFormat) AddAlias(alias string) {
	if len(f.attrs) == 0 {
		return
	}
	last := &f.attrs[len(f.attrs)-1]
	last.Aliases = append(last.Aliases, alias)
}

func (f *VertFormat) AttrLen() int {
	return len(f.attrs)
}

// Attr returns a copy of attribute i.
func (f *VertFormat) Attr(i int) VertAttr {
	return f.attrs[i]
}

// Stride is the size of one vertex over all attributes.
func (f *VertFormat) Stride() int {
	return f.stride
}

// AttrIndex resolves a name or alias to an attribute index, or -1.
// Attribute names take precedence over aliases.
func (f *VertFormat) AttrIndex(name string) int {
	for i := range f.attrs {
		if f.attrs[i].Name == name {
			return i
		}
	}
	for i := range f.attrs {
		for _, a := range f.attrs[i].Aliases {
			if a == name {
				return i
			}
		}
	}
	return -1
}

// AliasIndex resolves only aliases to an attribute index, or -1.
func (f *VertFormat) AliasIndex(alias string) int {
	for i := range f.attrs {
		for _, a := range f.attrs[i].Aliases {
			if a == alias {
				return i
			}
		}
	}
	return -1
}

const safeChars = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// SafeAttrName turns an arbitrary layer name into a fixed-length name made of
// [0-9a-zA-Z] only. Names longer than 8 bytes keep their first 4 bytes and a
// hash of the rest, so distinct long names can collide; callers do not check.
func SafeAttrName(name string) string {
	var data [8]byte
	if len(name) > 8 {
		copy(data[:4], name[:4])
		h := fnv.New32a()
		_, _ = h.Write([]byte(name[4:]))
		binary.LittleEndian.PutUint32(data[4:], h.Sum32())
	} else {
		copy(data[:], name)
	}

	in := binary.LittleEndian.Uint64(data[:])
	out := make([]byte, MaxSafeAttrName)
	for i := range out {
		out[i] = safeChars[in%uint64(len(safeChars))]
		in /= uint64(len(safeChars))
	}
	return string(out)
}

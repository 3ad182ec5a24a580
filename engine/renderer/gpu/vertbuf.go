package gpu

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/spaghettifunk/meshdraw/engine/core"
)

/**
 * @brief A vertex buffer whose memory layout matches its format.
 * Host buffers own their bytes; device buffers keep them behind the
 * backend handle stored in InternalData.
 */
type VertBuf struct {
	/** @brief Unique identifier, assigned at creation. */
	ID uuid.UUID
	/** @brief Debug name. */
	Name string
	/** @brief Contains internal data for the renderer-API-specific buffer. */
	InternalData interface{}

	format    VertFormat
	usage     Usage
	residency Residency
	vertexLen int
	data      []byte
	dirty     bool
	discarded bool
}

// NewVertBuf creates a buffer without storage. Call DataAlloc before writing.
func NewVertBuf(name string, format VertFormat, usage Usage, residency Residency) *VertBuf {
	return &VertBuf{
		ID:        uuid.New(),
		Name:      name,
		format:    format,
		usage:     usage,
		residency: residency,
	}
}

// DataAlloc sizes the storage for vertexLen vertices. Existing content is dropped.
func (vb *VertBuf) DataAlloc(vertexLen int) error {
	if vb.discarded {
		return core.ErrBufferDiscarded
	}
	if vertexLen < 0 {
		return fmt.Errorf("%w: negative vertex count %d", core.ErrAllocationFailed, vertexLen)
	}
	vb.vertexLen = vertexLen
	vb.data = make([]byte, vertexLen*vb.format.Stride())
	vb.dirty = true
	return nil
}

// Reserve records the vertex count of a buffer whose storage lives on the
// device, without allocating host memory.
func (vb *VertBuf) Reserve(vertexLen int) {
	vb.vertexLen = vertexLen
}

func (vb *VertBuf) Format() *VertFormat  { return &vb.format }
func (vb *VertBuf) Usage() Usage         { return vb.usage }
func (vb *VertBuf) Residency() Residency { return vb.residency }
func (vb *VertBuf) VertexLen() int       { return vb.vertexLen }

// Size is the byte size of the host storage.
func (vb *VertBuf) Size() int { return len(vb.data) }

// ByteSize is the byte size the layout requires for VertexLen vertices.
func (vb *VertBuf) ByteSize() int { return vb.vertexLen * vb.format.Stride() }

// Data exposes the raw bytes, for backends and uploads.
func (vb *VertBuf) Data() []byte { return vb.data }

func (vb *VertBuf) IsDirty() bool { return vb.dirty }

// TagDirty marks the content as changed so the next upload sends it again.
func (vb *VertBuf) TagDirty() { vb.dirty = true }

// ClearDirty is called by backends once the content has been uploaded.
func (vb *VertBuf) ClearDirty() { vb.dirty = false }

func (vb *VertBuf) IsDiscarded() bool { return vb.discarded }

// Discard releases the host storage. The buffer cannot be used afterwards.
func (vb *VertBuf) Discard() {
	vb.data = nil
	vb.discarded = true
	vb.InternalData = nil
}

// AttrByteOffset returns where the values of attribute i start and the byte
// step between two consecutive vertices.
func (vb *VertBuf) AttrByteOffset(i int) (base int, step int) {
	attr := vb.format.attrs[i]
	if !vb.format.deinterleave {
		return attr.Offset, vb.format.stride
	}
	for j := 0; j < i; j++ {
		base += vb.format.attrs[j].Type.Size() * vb.vertexLen
	}
	return base, attr.Type.Size()
}

// Attr returns a typed view over attribute i.
func (vb *VertBuf) Attr(i int) (AttrView, error) {
	if vb.discarded {
		return AttrView{}, core.ErrBufferDiscarded
	}
	if i < 0 || i >= vb.format.AttrLen() {
		return AttrView{}, fmt.Errorf("%w: attribute %d of %d", core.ErrOutOfBounds, i, vb.format.AttrLen())
	}
	base, step := vb.AttrByteOffset(i)
	return AttrView{buf: vb, attr: vb.format.attrs[i], base: base, step: step}, nil
}

// AttrNamed returns a typed view over the attribute called name (or aliased so).
func (vb *VertBuf) AttrNamed(name string) (AttrView, error) {
	i := vb.format.AttrIndex(name)
	if i < 0 {
		return AttrView{}, fmt.Errorf("%w: no attribute named '%s'", core.ErrOutOfBounds, name)
	}
	return vb.Attr(i)
}

// AttrView reads and writes one attribute of a buffer with bounds and type checks.
type AttrView struct {
	buf  *VertBuf
	attr VertAttr
	base int
	step int
}

func (v AttrView) Name() string       { return v.attr.Name }
func (v AttrView) Type() VertAttrType { return v.attr.Type }
func (v AttrView) Len() int           { return v.buf.vertexLen }

func (v AttrView) slot(i int, t VertAttrType) ([]byte, error) {
	if v.attr.Type != t {
		return nil, fmt.Errorf("%w: attribute '%s' is %s, not %s", core.ErrTypeMismatch, v.attr.Name, v.attr.Type, t)
	}
	if i < 0 || i >= v.buf.vertexLen {
		return nil, fmt.Errorf("%w: vertex %d of %d in '%s'", core.ErrOutOfBounds, i, v.buf.vertexLen, v.attr.Name)
	}
	off := v.base + i*v.step
	return v.buf.data[off : off+t.Size()], nil
}

func (v AttrView) SetPackedNormal(i int, p PackedNormal) error {
	b, err := v.slot(i, VertAttrTypeSNorm10_10_10_2)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(b, p.Pack())
	return nil
}

func (v AttrView) PackedNormal(i int) (PackedNormal, error) {
	b, err := v.slot(i, VertAttrTypeSNorm10_10_10_2)
	if err != nil {
		return PackedNormal{}, err
	}
	return UnpackNormal(binary.LittleEndian.Uint32(b)), nil
}

func (v AttrView) SetShort4(i int, s Short4) error {
	b, err := v.slot(i, VertAttrTypeSNorm16x4)
	if err != nil {
		return err
	}
	for c := 0; c < 4; c++ {
		binary.LittleEndian.PutUint16(b[c*2:], uint16(s[c]))
	}
	return nil
}

func (v AttrView) Short4(i int) (Short4, error) {
	b, err := v.slot(i, VertAttrTypeSNorm16x4)
	if err != nil {
		return Short4{}, err
	}
	var s Short4
	for c := 0; c < 4; c++ {
		s[c] = int16(binary.LittleEndian.Uint16(b[c*2:]))
	}
	return s, nil
}

func (v AttrView) SetFloat4(i int, f [4]float32) error {
	b, err := v.slot(i, VertAttrTypeSFloat32x4)
	if err != nil {
		return err
	}
	for c := 0; c < 4; c++ {
		binary.LittleEndian.PutUint32(b[c*4:], math.Float32bits(f[c]))
	}
	return nil
}

func (v AttrView) Float4(i int) ([4]float32, error) {
	b, err := v.slot(i, VertAttrTypeSFloat32x4)
	if err != nil {
		return [4]float32{}, err
	}
	var f [4]float32
	for c := 0; c < 4; c++ {
		f[c] = math.Float32frombits(binary.LittleEndian.Uint32(b[c*4:]))
	}
	return f, nil
}

func (v AttrView) SetFloat(i int, f float32) error {
	b, err := v.slot(i, VertAttrTypeSFloat32)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(b, math.Float32bits(f))
	return nil
}

func (v AttrView) Float(i int) (float32, error) {
	b, err := v.slot(i, VertAttrTypeSFloat32)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(b)), nil
}

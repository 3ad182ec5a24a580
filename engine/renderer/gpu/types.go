package gpu

/**
 * @brief The logical type of a vertex attribute, as seen by shaders.
 */
type VertAttrType int

const (
	/** @brief Unknown. Default, but invalid. */
	VertAttrTypeUnknown VertAttrType = iota
	/** @brief One 32-bit float. */
	VertAttrTypeSFloat32
	/** @brief Four 32-bit floats. */
	VertAttrTypeSFloat32x4
	/** @brief Four signed normalized 16-bit integers. */
	VertAttrTypeSNorm16x4
	/** @brief Three signed normalized 10-bit integers plus a signed 2-bit one, packed in 32 bits. */
	VertAttrTypeSNorm10_10_10_2
)

var vertAttrTypeSizes = map[VertAttrType]int{
	VertAttrTypeSFloat32:        4,
	VertAttrTypeSFloat32x4:      16,
	VertAttrTypeSNorm16x4:       8,
	VertAttrTypeSNorm10_10_10_2: 4,
}

var vertAttrTypeComps = map[VertAttrType]int{
	VertAttrTypeSFloat32:        1,
	VertAttrTypeSFloat32x4:      4,
	VertAttrTypeSNorm16x4:       4,
	VertAttrTypeSNorm10_10_10_2: 4,
}

// Size returns the size of one element in bytes, 0 for unknown types.
func (t VertAttrType) Size() int {
	return vertAttrTypeSizes[t]
}

// Comps returns the number of components of the type.
func (t VertAttrType) Comps() int {
	return vertAttrTypeComps[t]
}

func (t VertAttrType) String() string {
	switch t {
	case VertAttrTypeSFloat32:
		return "SFLOAT_32"
	case VertAttrTypeSFloat32x4:
		return "SFLOAT_32_32_32_32"
	case VertAttrTypeSNorm16x4:
		return "SNORM_16_16_16_16"
	case VertAttrTypeSNorm10_10_10_2:
		return "SNORM_10_10_10_2"
	}
	return "UNKNOWN"
}

// CompType is the scalar type of a buffer component, used by interpolation.
type CompType int

const (
	CompTypeF32 CompType = iota
	CompTypeI16
)

func (c CompType) Size() int {
	switch c {
	case CompTypeI16:
		return 2
	}
	return 4
}

// Usage hints how often the buffer content is re-uploaded.
type Usage int

const (
	UsageStatic Usage = iota
	// UsageDynamic buffers are re-uploaded frequently.
	UsageDynamic
	// UsageDeviceOnly buffers are written on the device only.
	UsageDeviceOnly
)

// Residency tells where the buffer memory lives.
type Residency int

const (
	// ResidencyHost buffers are readable and writable by the CPU.
	ResidencyHost Residency = iota
	// ResidencyDevice buffers are write targets of device operations only.
	ResidencyDevice
)

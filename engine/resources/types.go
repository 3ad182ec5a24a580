package resources

type ResourceType int

/** @brief Pre-defined resource types. */
const (
	/** @brief Files the engine does not handle. */
	ResourceTypeNone ResourceType = iota
	/** @brief Wavefront model resource type (collection of meshes). */
	ResourceTypeModel
	/** @brief TOML configuration resource type. */
	ResourceTypeConfig
)

func (t ResourceType) String() string {
	switch t {
	case ResourceTypeModel:
		return "model"
	case ResourceTypeConfig:
		return "config"
	}
	return "none"
}

/**
 * @brief A generic structure for a resource. All resource loaders
 * load data into these.
 */
type Resource struct {
	/** @brief The name of the resource. */
	Name string
	/** @brief The full file path of the resource. */
	FullPath string
	/** @brief The resource type. */
	Type ResourceType
	/** @brief The size of the resource data in bytes. */
	DataSize uint64
	/** @brief The resource data. */
	Data interface{}
}

package preference

//go:generate go run github.com/dmarkham/enumer -type ResourceType -trimprefix ResourceType -transform upper -json -yaml -text -output resource_type.gen.go

// ResourceType scopes which key namespace is valid for a preference.
type ResourceType int

const (
	ResourceTypeCompute ResourceType = iota
	ResourceTypeStorage
)

// ParseResourceType parses a resource type name, accepting any case.
func ParseResourceType(s string) (ResourceType, error) {
	return ResourceTypeString(s)
}

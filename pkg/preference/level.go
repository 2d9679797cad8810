package preference

//go:generate go run github.com/dmarkham/enumer -type Level -trimprefix Level -transform upper -json -yaml -text -output level.gen.go

// Level is the specificity tier at which a preference or access grant is anchored.
type Level int

const (
	LevelGateway Level = iota
	LevelGroup
	LevelUser
)

// MoreSpecificThan reports whether l overrides o when neither is enforced.
func (l Level) MoreSpecificThan(o Level) bool {
	return l > o
}

// ParseLevel parses a level name, accepting any case.
func ParseLevel(s string) (Level, error) {
	return LevelString(s)
}

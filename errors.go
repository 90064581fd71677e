package tsconvert

import "fmt"

// Direction identifies which way a conversion runs.
type Direction string

const (
	// DirectionEncode is tree sequence to external format.
	DirectionEncode Direction = "encode"
	// DirectionDecode is external format to tree sequence.
	DirectionDecode Direction = "decode"
)

// ConfigurationError reports an invalid registration, such as a
// duplicate format name or a descriptor with no functions. It is
// returned during registry construction, never from a conversion.
type ConfigurationError struct {
	Format string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("format %q: %s", e.Format, e.Reason)
}

// UnsupportedFormatError reports that a format is not registered, or
// is registered without the requested direction.
type UnsupportedFormatError struct {
	Format    string
	Direction Direction
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported format %q: no %s available", e.Format, e.Direction)
}

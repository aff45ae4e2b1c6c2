package encoder

// Wire format constants shared with the loader package's decoder.
// Everything is big-endian (spec.md §4.3).
var Magic = [4]byte{0x02, 0x03, 0x07, 0x41}

const (
	VersionMajor = 0
	VersionMinor = 1
)

// The wireArg* constants (mapped from ArgKind by argKindWireTag) give
// each ArgKind a stable on-wire tag, independent of
// the Go iota ordering so the format doesn't shift if opcodes.go's enum
// is reordered.
const (
	wireArgNone         = 0
	wireArgConst        = 1
	wireArgRegister     = 2
	wireArgField        = 3
	wireArgSite         = 4
	wireArgTypeRef      = 5
	wireArgLabel        = 6
	wireArgSymmetrySet  = 7
)

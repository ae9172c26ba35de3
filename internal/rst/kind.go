package rst

// Kind identifies the markup idiom a reference was found in.
type Kind int

const (
	// KindImage is an ".. image::" directive.
	KindImage Kind = iota
	// KindFigure is a ".. figure::" directive.
	KindFigure
	// KindLiteralInclude is a ".. literalinclude::" directive.
	KindLiteralInclude
	// KindToctreeEntry is an entry line inside a ".. toctree::" body.
	KindToctreeEntry
	// KindRefRole is a :ref: role.
	KindRefRole
	// KindDocRole is a :doc: role.
	KindDocRole
	// KindDownloadRole is a :download: role.
	KindDownloadRole
)

// String returns the markup name of the kind.
func (k Kind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindFigure:
		return "figure"
	case KindLiteralInclude:
		return "literalinclude"
	case KindToctreeEntry:
		return "toctree-entry"
	case KindRefRole:
		return "ref-role"
	case KindDocRole:
		return "doc-role"
	case KindDownloadRole:
		return "download-role"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler so kinds render by name in JSON output.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Kinds lists every reference kind in declaration order.
func Kinds() []Kind {
	return []Kind{
		KindImage, KindFigure, KindLiteralInclude, KindToctreeEntry,
		KindRefRole, KindDocRole, KindDownloadRole,
	}
}

// Location is a zero-based line index and character column where a referenced path
// begins. Columns count runes, not bytes.
type Location struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Reference is a single located reference to the scanned target.
type Reference struct {
	Location
	Kind Kind `json:"kind"`
	// Text is the path exactly as written at Location, without any leading "/".
	// For extension-less references it is the target stem.
	Text string `json:"text"`
}

// Locations extracts the locations of refs, preserving order.
func Locations(refs []Reference) []Location {
	locs := make([]Location, len(refs))
	for i, r := range refs {
		locs[i] = r.Location
	}
	return locs
}

package media

// Kind identifies the media family a request operates on. It is a closed set;
// every branch on media behavior dispatches through it.
type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

// Valid reports whether k is one of the supported kinds.
func (k Kind) Valid() bool {
	return k == KindImage || k == KindVideo
}

func (k Kind) String() string {
	return string(k)
}

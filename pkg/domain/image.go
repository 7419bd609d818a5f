package domain

// Image is a capture of a widget or a graphics scene, already decoded from
// its wire encoding.
type Image struct {
	Format string // capture format, e.g. "PNG"
	Data   []byte // raw image bytes
}

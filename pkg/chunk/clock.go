// ABOUTME: ClockReference and Variant: which sample clock (client or server) a chunk is measured in
// ABOUTME: References compare by variant and rate so a chunk can never silently cross clock domains
package chunk

// Variant tags which sample clock a ClockReference measures time in.
type Variant int

const (
	// Client is the local audio-hardware sample clock.
	Client Variant = iota
	// Server is the codec/server canonical sample clock.
	Server
)

func (v Variant) String() string {
	switch v {
	case Client:
		return "client"
	case Server:
		return "server"
	default:
		return "unknown"
	}
}

// ClockReference is a tagged sample rate: a Variant (Client or Server)
// paired with the rate it runs at. Two references are equal only if both
// the variant and the rate match, which is what lets CheckClockReference
// and Concat catch samples measured in different time bases before they
// get mixed.
type ClockReference struct {
	Variant Variant
	Rate    int
}

// NewClientReference builds a Client-variant reference at the given rate.
func NewClientReference(rate int) ClockReference {
	return ClockReference{Variant: Client, Rate: rate}
}

// NewServerReference builds a Server-variant reference at the given rate.
func NewServerReference(rate int) ClockReference {
	return ClockReference{Variant: Server, Rate: rate}
}

// Equal reports whether two references share both variant and rate.
func (r ClockReference) Equal(other ClockReference) bool {
	return r.Variant == other.Variant && r.Rate == other.Rate
}

// ClockInterval is a half-open sample interval ending at End, of the given
// Length, measured against Reference. Start is implied: End - Length.
type ClockInterval struct {
	Reference ClockReference
	End       int64
	Length    int64
}

// Start returns the implied interval start: End - Length.
func (iv ClockInterval) Start() int64 {
	return iv.End - iv.Length
}

// Validate checks the interval's invariants: Length >= 0 and End >= Length
// (equivalently, Start >= 0).
func (iv ClockInterval) Validate() error {
	if iv.Length < 0 {
		return errInvalidInterval("length %d is negative", iv.Length)
	}
	if iv.End < iv.Length {
		return errInvalidInterval("end %d is before start (length %d)", iv.End, iv.Length)
	}
	return nil
}

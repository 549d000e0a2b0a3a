package settings

// unsigned covers the integer widths settings fields use.
type unsigned interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Pow2Align rounds v up to a multiple of align, which must be a power of two.
// A v with no aligned value above it in T saturates to the largest aligned
// value of T.
func Pow2Align[T unsigned](v, align T) T {
	if v > ^T(0)-(align-1) {
		return Pow2AlignDown(^T(0), align)
	}
	return (v + align - 1) &^ (align - 1)
}

// Pow2AlignDown rounds v down to a multiple of align, which must be a power
// of two.
func Pow2AlignDown[T unsigned](v, align T) T {
	return v &^ (align - 1)
}

// IsPow2 reports whether v is a non-zero power of two.
func IsPow2[T unsigned](v T) bool {
	return v != 0 && v&(v-1) == 0
}

// Clamp limits v to [lo, hi].
func Clamp[T unsigned | ~int32](v, lo, hi T) T {
	return min(max(v, lo), hi)
}

// AlignDown rounds v down to a multiple of align for any non-zero align.
func AlignDown[T unsigned](v, align T) T {
	return v - v%align
}

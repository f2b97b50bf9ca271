package interactivetx

// EntropySource supplies randomness used to mint serial ids. It is the
// only external capability this package invokes, and only during
// Constructor construction. Tests may substitute deterministic or
// deliberately colliding sources to exercise DuplicateSerialId handling.
type EntropySource interface {
	GenerateRandomBytes() ([32]byte, error)
}

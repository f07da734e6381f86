package systems

// RNG is the subset of *rand.Rand the growth systems draw from. Engines pass
// their own generator so runs stay reproducible per seed.
type RNG interface {
	Float64() float64
	Intn(n int) int
}

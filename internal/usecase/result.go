package usecase

// Result is the outcome of an enrichment flow. A fallback still carries a
// usable value; Reason says why the real one could not be produced.
type Result[T any] struct {
	Value  T
	Reason string
	ok     bool
}

func Ok[T any](value T) Result[T] {
	return Result[T]{Value: value, ok: true}
}

func Fallback[T any](value T, reason string) Result[T] {
	return Result[T]{Value: value, Reason: reason}
}

func (r Result[T]) IsOK() bool {
	return r.ok
}

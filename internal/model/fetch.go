package model

// Fetched is the result of a data-source fetch. When Simulated is true, Data
// came from the synthetic generator and Err holds the upstream cause.
type Fetched[T any] struct {
	Data      T
	Simulated bool
	Err       error
}

// Live wraps data returned by the primary source.
func Live[T any](data T) Fetched[T] {
	return Fetched[T]{Data: data}
}

// Simulated wraps fallback data together with the failure that triggered it.
func Simulated[T any](data T, cause error) Fetched[T] {
	return Fetched[T]{Data: data, Simulated: true, Err: cause}
}

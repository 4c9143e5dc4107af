package chanflow

// FromSlice sends each element of slice into the returned channel.
// The returned channel is closed after all values have been sent.
func FromSlice[T any](slice []T) <-chan T {
	out := make(chan T)

	go func() {
		defer close(out)
		for _, val := range slice {
			out <- val
		}
	}()

	return out
}

// FromValues sends each value into the returned channel.
// The returned channel is closed after all values have been sent.
func FromValues[T any](values ...T) <-chan T {
	return FromSlice(values)
}

// FromRange returns a channel that emits the integers 0, 1, ..., n-1.
// The channel is closed after all values have been sent.
func FromRange(n int) <-chan int {
	out := make(chan int)

	go func() {
		defer close(out)
		for i := 0; i < n; i++ {
			out <- i
		}
	}()

	return out
}

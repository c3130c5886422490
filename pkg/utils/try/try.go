// Package try shortens handling of (value, error) pairs at places where any error is fatal,
// like main functions and tests.
package try

// Fataler is something having method `Fatal`, like *testing.T or *logrus.Logger.
type Fataler interface {
	Fatal(...any)
}

// Either is a pair of value and error.
//
// When error is nil, the value is valid.
type Either[T any] struct {
	value T
	err   error
}

func To[T any](value T, err error) Either[T] {
	if err != nil {
		return Either[T]{err: err}
	}
	return Either[T]{value: value}
}

// Get returns (value, nil), or (zero value, error).
func (e Either[T]) Get() (T, error) {
	return e.value, e.err
}

// OrFatal returns the value, or calls ftl.Fatal(err) if there is an error.
//
// If ftl has "Helper()" method (like *testing.T), it is called before Fatal.
func (e Either[T]) OrFatal(ftl Fataler) T {
	if e.err == nil {
		return e.value
	}
	if hlp, ok := ftl.(interface{ Helper() }); ok {
		hlp.Helper()
	}
	ftl.Fatal(e.err)
	return *new(T)
}

// OrDefault returns the value, or d if there is an error.
func (e Either[T]) OrDefault(d T) T {
	if e.err != nil {
		return d
	}
	return e.value
}

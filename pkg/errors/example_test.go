// Package errors provides examples of structured error handling in tagpool.
package errors_test

import (
	"fmt"
	"io"

	"github.com/ajitpratap0/tagpool/pkg/errors"
)

// Example demonstrates basic error creation with details.
func Example() {
	err := errors.New(errors.ErrorTypeUnknownPool, "pool does not exist").
		WithDetail("tag", "ghost")

	fmt.Println(err.Error())
	fmt.Println(err.Details["tag"])

	// Output:
	// unknown_pool: pool does not exist
	// ghost
}

// ExampleWrap shows how to wrap a constructor failure with context.
func ExampleWrap() {
	err := errors.Wrap(io.ErrUnexpectedEOF, errors.ErrorTypeGrowth, "prototype constructor failed").
		WithDetail("tag", "bullet")

	if errors.IsType(err, errors.ErrorTypeGrowth) {
		fmt.Println("growth failed")
	}
	fmt.Println(err.Unwrap() == io.ErrUnexpectedEOF)

	// Output:
	// growth failed
	// true
}

// ExampleIsRecoverable shows how spawn-side failures differ from contract
// violations.
func ExampleIsRecoverable() {
	spawn := errors.New(errors.ErrorTypeUnknownPool, "pool does not exist")
	release := errors.New(errors.ErrorTypeContract, "release into unknown pool")

	fmt.Println(errors.IsRecoverable(spawn))
	fmt.Println(errors.IsRecoverable(release))

	// Output:
	// true
	// false
}

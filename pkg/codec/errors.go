package codec

import "fmt"

// NotFoundError indicates the input file does not exist. Batch callers treat
// this differently from decode failures (skip vs. abort), so it is a distinct
// type rather than a wrapped DecodeError.
type NotFoundError struct {
	Path string
	Err  error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("normal map not found: %s", e.Path)
}

func (e *NotFoundError) Unwrap() error {
	return e.Err
}

// UnsupportedFormatError indicates the file decoded successfully but its pixel
// format is not one of the supported 8/16-bit grayscale or RGB layouts.
type UnsupportedFormatError struct {
	Path   string
	Format string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported pixel format %s in %s (use 8-bit or 16-bit grayscale or RGB images)", e.Format, e.Path)
}

// DecodeError wraps any other failure while reading or decoding an input file
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// EncodeError wraps any failure while writing an output file
type EncodeError struct {
	Path string
	Err  error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("failed to encode %s: %v", e.Path, e.Err)
}

func (e *EncodeError) Unwrap() error {
	return e.Err
}

// Package sys is the raw libffi binding of the rpi_ws281x C library. Its
// declarations are generated from ws2811.h; use package ws281x for a safe
// API.
//
// The library is opened at run time with Load.
package sys

//go:generate go run ../cmd/ws281x-bindgen generate -header ../rpi_ws281x/ws2811.h -source ../rpi_ws281x -o bindings.go

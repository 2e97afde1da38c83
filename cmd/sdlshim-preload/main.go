//go:build linux && cgo

// sdlshim-preload is the LD_PRELOAD payload. Build it as a shared object:
//
//	CGO_ENABLED=1 go build -buildmode=c-shared -o libsdlshim.so ./cmd/sdlshim-preload
//
// then inject it into a target:
//
//	LD_PRELOAD=/path/to/libsdlshim.so some-sdl-game
//
// The library exports exactly one symbol the dynamic linker will prefer
// over SDL's own, and does nothing at all until the host calls it.
package main

import "C"

import "github.com/sdlshim/sdlshim/internal/shim"

// SDL_DisableScreenSaver shadows the SDL2 function of the same name.
//
//export SDL_DisableScreenSaver
func SDL_DisableScreenSaver() {
	shim.Default().DisableScreenSaver()
}

func main() {}

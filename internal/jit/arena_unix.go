//go:build linux || darwin

package jit

import "golang.org/x/sys/unix"

// mmapArena is a process-memory reservation obtained via mmap, mirroring
// the page-granular, explicitly-released memory a native JIT backend
// allocates for compiled code (spec §4.6). This engine stores Go closures,
// not machine code, so the region is never executed — it exists so the
// module lifetime (finalise once, release once) models the real resource
// a hand-written native backend would hold.
type mmapArena struct {
	mem []byte
}

func newArena(size int) (arena, error) {
	mem, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, err
	}
	return &mmapArena{mem: mem}, nil
}

func (a *mmapArena) release() {
	if a.mem != nil {
		unix.Munmap(a.mem)
		a.mem = nil
	}
}

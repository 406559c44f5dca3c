// Package memutil centralizes the module's unsafe-pointer arithmetic, the
// way Voskan-arena-cache/internal/unsafehelpers centralizes arena-cache's:
// alignment, pointer offsetting and raw byte copies live here, documented
// with their pre/post-conditions. The rest of the module still imports
// unsafe for unsafe.Pointer values, unsafe.Sizeof and unsafe.Slice.
package memutil

import "unsafe"

// AlignUp rounds x up to the nearest multiple of align, which must be a
// power of two.
func AlignUp(x, align uintptr) uintptr {
	return (x + align - 1) &^ (align - 1)
}

// AlignPointer returns the first address >= p that is a multiple of align.
func AlignPointer(p unsafe.Pointer, align uintptr) unsafe.Pointer {
	return unsafe.Pointer(AlignUp(uintptr(p), align))
}

// Slice reinterprets length bytes starting at ptr as a []byte view, without
// copying. Caller guarantees the backing allocation is at least length
// bytes and outlives the returned slice.
func Slice(ptr unsafe.Pointer, length int) []byte {
	if length == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(ptr), length)
}

// CopyBytes copies n bytes from src to dst. The two regions must not
// overlap (moveSlot/compaction never copies a column onto itself).
func CopyBytes(dst, src unsafe.Pointer, n uintptr) {
	if n == 0 {
		return
	}
	copy(Slice(dst, int(n)), Slice(src, int(n)))
}

// Add is unsafe.Add, re-exported so chunk.go doesn't import "unsafe" just
// for pointer offsetting in the common case.
func Add(p unsafe.Pointer, offset uintptr) unsafe.Pointer {
	return unsafe.Add(p, offset)
}

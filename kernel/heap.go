package kernel

import (
	"encoding/binary"
	"math"
)

// HeapID selects one of the kernel's heaps.
type HeapID uint8

const (
	HeapOS HeapID = iota
	HeapApp
	NumHeaps
)

func (id HeapID) String() string {
	switch id {
	case HeapOS:
		return "os"
	case HeapApp:
		return "app"
	default:
		return "unknown"
	}
}

// AllocMode selects whether Malloc waits for memory to be freed.
type AllocMode uint8

const (
	AllocNoWait AllocMode = iota
	AllocWait
)

// Ptr is a byte offset into a heap region. The zero Ptr is nil.
type Ptr uint32

// unitSize is the allocation granule and the size of a block header
// (a little-endian size and next pair, both in units).
const unitSize = 8

// Heap is a first-fit allocator over a caller-provided region.
//
// Unit 0 is a zero-sized sentinel heading an address-ordered circular free
// list. rover is the free block the next search starts after.
type Heap struct {
	mem     []byte
	rover   uint32
	waitMem Semaphore
}

func (h *Heap) units() uint32 { return uint32(len(h.mem) / unitSize) }

func (h *Heap) size(u uint32) uint32 {
	return binary.LittleEndian.Uint32(h.mem[u*unitSize:])
}

func (h *Heap) next(u uint32) uint32 {
	return binary.LittleEndian.Uint32(h.mem[u*unitSize+4:])
}

func (h *Heap) setSize(u, n uint32) {
	binary.LittleEndian.PutUint32(h.mem[u*unitSize:], n)
}

func (h *Heap) setNext(u, n uint32) {
	binary.LittleEndian.PutUint32(h.mem[u*unitSize+4:], n)
}

func (h *Heap) bytes(p Ptr) []byte {
	u := uint32(p)/unitSize - 1
	return h.mem[p : (u+h.size(u))*unitSize]
}

// block returns the header unit for p if p looks like a live allocation.
func (h *Heap) block(p Ptr) (uint32, bool) {
	if p == 0 || p%unitSize != 0 {
		return 0, false
	}
	u := uint32(p)/unitSize - 1
	if u == 0 || u >= h.units() {
		return 0, false
	}
	n := h.size(u)
	if n < 2 || uint64(u)+uint64(n) > uint64(h.units()) {
		return 0, false
	}
	return u, true
}

func (k *Kernel) heap(id HeapID) (*Heap, error) {
	if id >= NumHeaps {
		return nil, ErrRange
	}
	h := &k.heaps[id]
	if h.mem == nil {
		return nil, ErrInvalid
	}
	return h, nil
}

// HeapInit hands buf to heap id as a single free block. The region is
// owned by the heap afterwards.
func (k *Kernel) HeapInit(buf []byte, id HeapID) error {
	if id >= NumHeaps {
		return ErrRange
	}
	if len(buf) < 3*unitSize {
		return ErrInvalid
	}
	if uint64(len(buf)) > math.MaxUint32 {
		return ErrRange
	}
	h := &k.heaps[id]
	if h.waitMem.Waiting() > 0 {
		return ErrBusy
	}

	buf = buf[:len(buf)/unitSize*unitSize]
	clear(buf)
	h.mem = buf
	h.setSize(0, 0)
	h.setNext(0, 1)
	h.setSize(1, h.units()-1)
	h.setNext(1, 0)
	h.rover = 0

	_ = h.waitMem.Reset()
	return h.waitMem.Init(k, 0)
}

// Malloc returns n bytes from heap id. With AllocWait the calling thread
// blocks until enough memory is freed.
func (k *Kernel) Malloc(n int, mode AllocMode, id HeapID) (Ptr, error) {
	h, err := k.heap(id)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, ErrInvalid
	}
	if n >= len(h.mem) {
		return 0, ErrNoMem
	}
	need := uint32((n+unitSize-1)/unitSize) + 1

	for {
		mask := k.disable()
		if p, ok := h.alloc(need); ok {
			k.restore(mask)
			return p, nil
		}
		k.restore(mask)

		if mode != AllocWait || k.current == nil {
			return 0, ErrNoMem
		}
		if err := h.waitMem.Wait(); err != nil {
			return 0, err
		}
	}
}

func (h *Heap) alloc(need uint32) (Ptr, bool) {
	prev := h.rover
	for p := h.next(prev); ; prev, p = p, h.next(p) {
		if n := h.size(p); n >= need {
			if n == need {
				h.setNext(prev, h.next(p))
			} else {
				h.setSize(p, n-need)
				p += n - need
				h.setSize(p, need)
				h.setNext(p, 0)
			}
			h.rover = prev
			return Ptr((p + 1) * unitSize), true
		}
		if p == h.rover {
			return 0, false
		}
	}
}

// Free returns a block to heap id, merging it with free neighbours, and
// wakes one thread waiting for memory.
func (k *Kernel) Free(p Ptr, id HeapID) error {
	h, err := k.heap(id)
	if err != nil {
		return err
	}
	blk, ok := h.block(p)
	if !ok {
		return ErrInvalid
	}

	mask := k.disable()
	defer k.restore(mask)

	prev := uint32(0)
	next := h.next(0)
	for next != 0 && next < blk {
		prev, next = next, h.next(next)
	}
	if next == blk || (prev != 0 && prev+h.size(prev) > blk) || (next != 0 && blk+h.size(blk) > next) {
		return ErrInvalid
	}

	h.setNext(blk, next)
	h.setNext(prev, blk)
	if next != 0 && blk+h.size(blk) == next {
		h.setSize(blk, h.size(blk)+h.size(next))
		h.setNext(blk, h.next(next))
	}
	if prev != 0 && prev+h.size(prev) == blk {
		h.setSize(prev, h.size(prev)+h.size(blk))
		h.setNext(prev, h.next(blk))
	}
	h.rover = prev

	if h.waitMem.Value() < 0 {
		_ = h.waitMem.Post()
	}
	return nil
}

// Bytes returns the usable bytes of a live allocation. A pointer that has
// been freed is rejected with ErrInvalid.
func (k *Kernel) Bytes(p Ptr, id HeapID) ([]byte, error) {
	h, err := k.heap(id)
	if err != nil {
		return nil, err
	}
	u, ok := h.block(p)
	if !ok || h.isFree(u) {
		return nil, ErrInvalid
	}
	return h.bytes(p), nil
}

// isFree reports whether unit u lies inside a free block.
func (h *Heap) isFree(u uint32) bool {
	for f := h.next(0); f != 0 && f <= u; f = h.next(f) {
		if u < f+h.size(f) {
			return true
		}
	}
	return false
}

// BytesFree returns the bytes held by free blocks, headers included.
func (k *Kernel) BytesFree(id HeapID) (int, error) {
	h, err := k.heap(id)
	if err != nil {
		return 0, err
	}
	total := 0
	for u := h.next(0); u != 0; u = h.next(u) {
		total += int(h.size(u)) * unitSize
	}
	return total, nil
}

// HeapSize returns the size of the region managed by heap id.
func (k *Kernel) HeapSize(id HeapID) (int, error) {
	h, err := k.heap(id)
	if err != nil {
		return 0, err
	}
	return len(h.mem), nil
}

// Block describes one free block.
type Block struct {
	Offset uint32
	Size   int
}

// Blocks lists the free blocks of heap id in address order.
func (k *Kernel) Blocks(id HeapID) ([]Block, error) {
	h, err := k.heap(id)
	if err != nil {
		return nil, err
	}
	var out []Block
	for u := h.next(0); u != 0; u = h.next(u) {
		out = append(out, Block{Offset: u * unitSize, Size: int(h.size(u)) * unitSize})
	}
	return out, nil
}

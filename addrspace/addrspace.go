package addrspace

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

var ErrUnmapped = errors.New("address range not mapped")

// Segment is one contiguous mapped range of a task's address space.
type Segment struct {
	Base uint64
	Data []byte
}

func (s *Segment) contains(addr uint64, n int) bool {
	if n < 0 || addr < s.Base {
		return false
	}

	off := addr - s.Base

	return off <= uint64(len(s.Data)) && uint64(n) <= uint64(len(s.Data))-off
}

// Space is the simulated user address space of one task slot. The kernel
// core treats user pointers as already mapped and valid; Slice is where that
// assumption is enforced for the simulation.
type Space struct {
	logger   *zap.SugaredLogger
	segments []*Segment
}

func NewSpace(logger *zap.SugaredLogger) *Space {
	return &Space{logger: logger}
}

// Map adds a segment of n zeroed bytes at base and returns it. Segments are
// expected not to overlap; resolution walks them in mapping order.
func (s *Space) Map(base uint64, n int) *Segment {
	s.logger.Infow("mapping segment", "base", base, "len", n)

	seg := &Segment{Base: base, Data: make([]byte, n)}
	s.segments = append(s.segments, seg)

	return seg
}

// Slice resolves [addr, addr+n) to the backing bytes. The returned slice
// aliases the segment, so writes through it are visible to the task.
func (s *Space) Slice(addr uint64, n int) ([]byte, error) {
	for _, seg := range s.segments {
		if seg.contains(addr, n) {
			off := addr - seg.Base
			return seg.Data[off : off+uint64(n)], nil
		}
	}

	return nil, fmt.Errorf("%w: [%#x, %#x)", ErrUnmapped, addr, addr+uint64(n))
}

// WriteBytes copies p into the space at addr.
func (s *Space) WriteBytes(addr uint64, p []byte) error {
	dst, err := s.Slice(addr, len(p))
	if err != nil {
		return fmt.Errorf("failed to resolve destination: %w", err)
	}

	copy(dst, p)

	return nil
}

// Set owns one Space per task slot, mirroring the slot-indexed layout of the
// task manager's table.
type Set struct {
	spaces []*Space
}

func NewSet(logger *zap.SugaredLogger, slots int) *Set {
	set := &Set{spaces: make([]*Space, slots)}

	for i := range set.spaces {
		set.spaces[i] = NewSpace(logger)
	}

	return set
}

// Slot returns the address space occupying slot.
func (s *Set) Slot(slot int) *Space {
	return s.spaces[slot]
}

package addrspace_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kestrelkern/kestrel/addrspace"
)

func TestSliceResolvesMappedRange(t *testing.T) {
	space := addrspace.NewSpace(zap.NewNop().Sugar())

	seg := space.Map(0x1000, 64)
	copy(seg.Data, "hello")

	buf, err := space.Slice(0x1000, 5)
	require.NoError(t, err)
	require.Equal(t, []byte("hello"), buf)

	// interior range of the same segment
	buf, err = space.Slice(0x1001, 3)
	require.NoError(t, err)
	require.Equal(t, []byte("ell"), buf)
}

func TestSliceUnmapped(t *testing.T) {
	space := addrspace.NewSpace(zap.NewNop().Sugar())
	space.Map(0x1000, 64)

	cases := []struct {
		name string
		addr uint64
		n    int
	}{
		{name: "below the segment", addr: 0xfff, n: 4},
		{name: "straddling the end", addr: 0x1000 + 60, n: 8},
		{name: "nothing mapped there", addr: 0x9000, n: 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := space.Slice(tc.addr, tc.n)
			require.ErrorIs(t, err, addrspace.ErrUnmapped)
		})
	}
}

func TestWriteBytesAliasesSegment(t *testing.T) {
	space := addrspace.NewSpace(zap.NewNop().Sugar())
	seg := space.Map(0x2000, 16)

	require.NoError(t, space.WriteBytes(0x2004, []byte{1, 2, 3}))
	require.Equal(t, []byte{1, 2, 3}, seg.Data[4:7])

	require.ErrorIs(t, space.WriteBytes(0x3000, []byte{1}), addrspace.ErrUnmapped)
}

func TestSetIsSlotIndexed(t *testing.T) {
	set := addrspace.NewSet(zap.NewNop().Sugar(), 2)

	set.Slot(0).Map(0x1000, 8)

	_, err := set.Slot(0).Slice(0x1000, 8)
	require.NoError(t, err)

	// slot 1's space is independent
	_, err = set.Slot(1).Slice(0x1000, 8)
	require.ErrorIs(t, err, addrspace.ErrUnmapped)
}

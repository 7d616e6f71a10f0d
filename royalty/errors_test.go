package royalty

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		err      error
		wantKind Kind
		wantCode uint32
	}{
		{ErrNotAuthorized, KindNotAuthorized, 100},
		{fmt.Errorf("%w: agreement 3", ErrNotFound), KindNotFound, 105},
		{fmt.Errorf("%w: 5 not in [100, 2000]", ErrInvalidRate), KindInvalidRate, 102},
		{ErrExpired, KindExpired, 110},
		{ErrAuthorityNotVerified, KindAuthorityNotVerified, 112},
		{fmt.Errorf("%w: min 2000 must be below max 2000", ErrInvalidRateBound), KindInvalidRateBound, 113},
		{fmt.Errorf("%w: max 50 must be above min 100", ErrInvalidMaxRate), KindInvalidMaxRate, 114},
		{ErrCapacityExceeded, KindCapacityExceeded, 118},
		{ErrInvalidThreshold, KindInvalidThreshold, 120},
		{errors.New("disk full"), KindUnknown, 0},
		{nil, KindUnknown, 0},
	}

	for _, tt := range tests {
		name := "nil"
		if tt.err != nil {
			name = tt.err.Error()
		}
		t.Run(name, func(t *testing.T) {
			k := KindOf(tt.err)
			assert.Equal(t, tt.wantKind, k)
			assert.Equal(t, tt.wantCode, k.Code())
		})
	}
}

func TestKindCodesUnique(t *testing.T) {
	seen := make(map[uint32]Kind)
	for k, info := range kinds {
		prev, dup := seen[info.code]
		assert.False(t, dup, "code %d shared by %s and %s", info.code, prev, k)
		seen[info.code] = k
	}
}

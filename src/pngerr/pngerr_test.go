package pngerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/KuratZero/c-png-to-pnm/src/oops"
	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNone, KindOf(nil))
	assert.Equal(t, KindUnknown, KindOf(errors.New("something else")))

	for _, k := range kinds {
		t.Run(k.kind.String(), func(t *testing.T) {
			assert.Equal(t, k.kind, KindOf(k.sentinel))
			assert.Equal(t, k.kind, KindOf(oops.New(k.sentinel, "wrapped once")))
			assert.Equal(t, k.kind, KindOf(fmt.Errorf("outer: %w", oops.New(k.sentinel, "inner"))))
		})
	}
}

func TestKindStrings(t *testing.T) {
	seen := map[string]bool{}
	for k := KindNone; k <= KindUnknown; k++ {
		s := k.String()
		assert.False(t, seen[s], "duplicate kind name %q", s)
		seen[s] = true
	}
}

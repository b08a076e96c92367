package reference

import (
	"math/rand"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandom_Format(t *testing.T) {
	gen := NewRandom(6).WithSource(rand.NewSource(1))
	pattern := regexp.MustCompile(`^NTO-\d{6}$`)

	for i := 0; i < 200; i++ {
		ref := gen.Next("NTO", nil)
		assert.Regexp(t, pattern, ref)
	}
	assert.False(t, gen.NeedsHistory())
}

func TestSequential_Next(t *testing.T) {
	gen := NewSequential(4)
	assert.True(t, gen.NeedsHistory())

	t.Run("empty history starts at one", func(t *testing.T) {
		assert.Equal(t, "CL-0001", gen.Next("CL", nil))
	})

	t.Run("uses the highest numeric suffix", func(t *testing.T) {
		existing := []string{"CL-0003", "CL-0010", "CL-0002", "NTO-99999", "CL-abc", "CL-"}
		assert.Equal(t, "CL-0011", gen.Next("CL", existing))
	})

	t.Run("monotonic and unique over a known set", func(t *testing.T) {
		existing := []string{"CL-0005"}
		seen := map[string]struct{}{"CL-0005": {}}
		prev := "CL-0005"
		for i := 0; i < 50; i++ {
			next := gen.Next("CL", existing)
			_, dup := seen[next]
			require.False(t, dup, next)
			assert.Greater(t, next, prev)
			seen[next] = struct{}{}
			existing = append(existing, next)
			prev = next
		}
	})

	t.Run("grows past the padding width", func(t *testing.T) {
		assert.Equal(t, "CL-10000", gen.Next("CL", []string{"CL-9999"}))
	})
	t.Run("continues after refs issued by the random strategy", func(t *testing.T) {
		transfers := NewSequential(5)
		existing := []string{"NTO-00007", "NTO-123456", "NTO-004211"}
		assert.Equal(t, "NTO-123457", transfers.Next("NTO", existing))
	})
}

func TestNew(t *testing.T) {
	g, err := New("sequential", 5)
	require.NoError(t, err)
	assert.Equal(t, "NTO-00001", g.Next("NTO", nil))

	g, err = New("", 6)
	require.NoError(t, err)
	assert.IsType(t, &Random{}, g)

	_, err = New("uuid", 6)
	assert.Error(t, err)
}

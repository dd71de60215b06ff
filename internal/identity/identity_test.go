package identity

import (
	"encoding/base64"
	"fmt"
	"testing"

	"github.com/and161185/bliss-auth/internal/errs"
	"github.com/stretchr/testify/require"
)

func TestDerive_Deterministic(t *testing.T) {
	t.Parallel()

	d, err := NewDeriver("magic")
	require.NoError(t, err)

	a, err := d.Derive("a@x.com")
	require.NoError(t, err)
	b, err := d.Derive("a@x.com")
	require.NoError(t, err)
	require.Equal(t, a, b)

	raw, err := base64.StdEncoding.DecodeString(string(a))
	require.NoError(t, err)
	require.Len(t, raw, 32)

	// surrounding whitespace does not change the identity
	c, err := d.Derive("  a@x.com ")
	require.NoError(t, err)
	require.Equal(t, a, c)
}

func TestDerive_DistinctEmailsAndSecrets(t *testing.T) {
	t.Parallel()

	d, _ := NewDeriver("magic")
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		id, err := d.Derive(fmt.Sprintf("user%d@example.com", i))
		require.NoError(t, err)
		require.False(t, seen[string(id)], "collision at %d", i)
		seen[string(id)] = true
	}

	other, _ := NewDeriver("other-secret")
	x, _ := d.Derive("a@x.com")
	y, _ := other.Derive("a@x.com")
	require.NotEqual(t, x, y, "secret must salt the identity")
}

func TestDerive_InvalidInput(t *testing.T) {
	t.Parallel()

	d, _ := NewDeriver("magic")
	for _, in := range []string{"", "   ", "not-an-email", "a@"} {
		_, err := d.Derive(in)
		require.ErrorIs(t, err, errs.ErrInvalidInput, "input %q", in)
	}
}

func TestNewDeriver_EmptySecret(t *testing.T) {
	t.Parallel()

	if _, err := NewDeriver(""); err == nil {
		t.Fatalf("want error on empty secret")
	}
}

package prefs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func providers(t *testing.T) map[string]Provider {
	t.Helper()

	db, err := OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return map[string]Provider{
		"memory": NewMemory(),
		"badger": db,
	}
}

func TestStore_TypedRoundTrip(t *testing.T) {
	for name, p := range providers(t) {
		t.Run(name, func(t *testing.T) {
			s := p.Store("profile_a")
			err := s.Edit().
				PutString("name", "Night").
				PutInt("level", -7).
				PutLong("stamp", 1700000000123).
				PutBool("enabled", true).
				PutFloat("ratio", 0.5).
				Apply()
			require.NoError(t, err)

			assert.Equal(t, "Night", s.GetString("name", ""))
			assert.Equal(t, int32(-7), s.GetInt("level", 0))
			assert.Equal(t, int64(1700000000123), s.GetLong("stamp", 0))
			assert.True(t, s.GetBool("enabled", false))
			assert.Equal(t, float32(0.5), s.GetFloat("ratio", 0))
			assert.Len(t, s.All(), 5)
		})
	}
}

func TestStore_DefaultsOnMissingOrMismatchedType(t *testing.T) {
	for name, p := range providers(t) {
		t.Run(name, func(t *testing.T) {
			s := p.Store("x")
			require.NoError(t, s.Edit().PutInt("n", 3).Apply())

			assert.Equal(t, "fallback", s.GetString("n", "fallback"))
			assert.Equal(t, int32(9), s.GetInt("missing", 9))
			assert.Equal(t, int64(4), s.GetLong("n", 4))
			assert.True(t, s.GetBool("n", true))
			assert.False(t, s.Contains("missing"))
			assert.True(t, s.Contains("n"))
		})
	}
}

func TestEditor_ClearAppliesFirst(t *testing.T) {
	for name, p := range providers(t) {
		t.Run(name, func(t *testing.T) {
			s := p.Store("x")
			require.NoError(t, s.Edit().PutString("a", "1").PutString("b", "2").Apply())

			// Clear is staged after the put but must not discard it.
			require.NoError(t, s.Edit().PutString("c", "3").Clear().Apply())

			assert.Equal(t, []string{"c"}, s.Keys())
		})
	}
}

func TestEditor_LastCallWins(t *testing.T) {
	for name, p := range providers(t) {
		t.Run(name, func(t *testing.T) {
			s := p.Store("x")
			require.NoError(t, s.Edit().PutString("k", "v").Apply())

			require.NoError(t, s.Edit().Remove("k").PutString("k", "w").Apply())
			assert.Equal(t, "w", s.GetString("k", ""))

			require.NoError(t, s.Edit().PutString("k", "z").Remove("k").Apply())
			assert.False(t, s.Contains("k"))
		})
	}
}

func TestStores_AreIsolated(t *testing.T) {
	for name, p := range providers(t) {
		t.Run(name, func(t *testing.T) {
			a := p.Store("a")
			require.NoError(t, a.Edit().PutString("k", "a").Apply())
			require.NoError(t, Default(p).Edit().PutString("k", "default").Apply())

			require.NoError(t, a.Edit().Clear().Apply())

			assert.Empty(t, a.All())
			assert.Equal(t, "default", Default(p).GetString("k", ""))
		})
	}
}

func TestDB_ClosedReturnsError(t *testing.T) {
	db, err := OpenInMemory()
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = db.Store("x").Load()
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, db.Store("x").Edit().PutBool("k", true).Apply(), ErrClosed)
	assert.Empty(t, db.Store("x").All())
}

func TestMarshalValue_Unsupported(t *testing.T) {
	_, err := marshalValue(3.14)
	assert.Error(t, err)

	_, err = unmarshalValue([]byte{'z', 1})
	assert.ErrorIs(t, err, errBadValue)
}

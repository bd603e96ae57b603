package screen

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(c *Collection) []string {
	var out []string
	for _, s := range c.List() {
		out = append(out, s.Name)
	}
	return out
}

func assertDense(t *testing.T, c *Collection) {
	t.Helper()
	for i, s := range c.List() {
		require.Equal(t, i, s.Position(), "screen %q", s.Name)
	}
}

func TestCollection_AddDuplicate(t *testing.T) {
	c := NewCollection()
	_, err := c.Add("A", "First")
	require.NoError(t, err)

	_, err = c.Add("A", "Second")
	require.ErrorIs(t, err, ErrDuplicateScreenName)

	assert.Equal(t, 1, c.Len())
	s, ok := c.Get("A")
	require.True(t, ok)
	assert.Equal(t, "First", s.Title)
}

func TestCollection_AddInvalidName(t *testing.T) {
	c := NewCollection()
	_, err := c.Add("  ", "blank")
	require.ErrorIs(t, err, ErrInvalidScreenName)
	assert.Equal(t, 0, c.Len())
}

func TestCollection_RejectsTextTheFileCannotHold(t *testing.T) {
	c := NewCollection()
	_, err := c.Add("a\x01", "A")
	require.ErrorIs(t, err, ErrInvalidScreenName)
	_, err = c.Add("b", "bad \xff byte")
	require.ErrorIs(t, err, ErrInvalidScreenName)
	assert.Equal(t, 0, c.Len())

	_, err = c.Add("tab\tname", "Line\nBreak é ✓")
	require.NoError(t, err)
	require.ErrorIs(t, c.Rename("tab\tname", "x\x02"), ErrInvalidScreenName)
	s, _ := c.Get("tab\tname")
	assert.Equal(t, "Line\nBreak é ✓", s.Title)
}

func TestValidText(t *testing.T) {
	tests := map[string]bool{
		"":            true,
		"Main Screen": true,
		"\t\r\n":      true,
		"\U0001F527":  true,
		"a\x00":       false,
		"a\x1b":       false,
		"\uFFFE":      false,
		"\xc3\x28":    false,
	}
	for in, want := range tests {
		if got := ValidText(in); got != want {
			t.Errorf("ValidText(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestCollection_Reorder(t *testing.T) {
	tests := []struct {
		name  string
		move  string
		index int
		want  []string
	}{
		{"to front", "c", 0, []string{"c", "a", "b", "d"}},
		{"to back", "a", 3, []string{"b", "c", "d", "a"}},
		{"forward", "a", 2, []string{"b", "c", "a", "d"}},
		{"backward", "d", 1, []string{"a", "d", "b", "c"}},
		{"same index", "b", 1, []string{"a", "b", "c", "d"}},
		{"clamped high", "b", 99, []string{"a", "c", "d", "b"}},
		{"clamped low", "c", -4, []string{"c", "a", "b", "d"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCollection()
			for _, n := range []string{"a", "b", "c", "d"} {
				_, err := c.Add(n, n)
				require.NoError(t, err)
			}
			require.NoError(t, c.Reorder(tt.move, tt.index))
			assert.Equal(t, tt.want, names(c))
			assertDense(t, c)
		})
	}
}

func TestCollection_RemoveCascades(t *testing.T) {
	c := NewCollection()
	main, _ := c.Add("main", "Main")
	_, _ = c.Add("tool", "Tool")
	a := main.AddInstance("dro")
	b := main.AddInstance("jog")

	removed, err := c.Remove("main")
	require.NoError(t, err)
	assert.Equal(t, []Instance{a, b}, removed)
	assert.Equal(t, []string{"tool"}, names(c))
	assertDense(t, c)

	_, ok := c.Get("main")
	assert.False(t, ok)

	_, err = c.Remove("main")
	require.ErrorIs(t, err, ErrScreenNotFound)

	_, err = c.Add("main", "Main again")
	require.NoError(t, err, "removed names become available")
}

func TestCollection_OrdinalDensityUnderRandomOps(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	c := NewCollection()
	next := 0

	for step := 0; step < 500; step++ {
		switch op := rng.Intn(3); {
		case op == 0 || c.Len() == 0:
			_, err := c.Add(fmt.Sprintf("s%d", next), "")
			require.NoError(t, err)
			next++
		case op == 1:
			victim := c.List()[rng.Intn(c.Len())]
			_, err := c.Remove(victim.Name)
			require.NoError(t, err)
		default:
			target := c.List()[rng.Intn(c.Len())]
			require.NoError(t, c.Reorder(target.Name, rng.Intn(c.Len()+2)-1))
		}
		assertDense(t, c)
	}
}

func TestScreen_Instances(t *testing.T) {
	c := NewCollection()
	s, _ := c.Add("main", "Main")
	a := s.AddInstance("dro")
	assert.NotEqual(t, uuid.Nil, a.ID)

	got, ok := s.Instance(a.ID)
	require.True(t, ok)
	assert.Equal(t, "dro", got.Package)

	owner, inst, ok := c.FindInstance(a.ID)
	require.True(t, ok)
	assert.Equal(t, "main", owner.Name)
	assert.Equal(t, a, inst)

	_, err := s.RemoveInstance(uuid.New())
	require.ErrorIs(t, err, ErrInstanceNotFound)

	removed, err := s.RemoveInstance(a.ID)
	require.NoError(t, err)
	assert.Equal(t, a, removed)
	assert.Empty(t, s.Instances())
}

func TestCollection_Rename(t *testing.T) {
	c := NewCollection()
	_, _ = c.Add("main", "Main")
	require.NoError(t, c.Rename("main", "Main Screen"))
	s, _ := c.Get("main")
	assert.Equal(t, "Main Screen", s.Title)
	require.ErrorIs(t, c.Rename("x", "y"), ErrScreenNotFound)
}

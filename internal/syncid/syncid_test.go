package syncid

import (
	"bytes"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	t.Parallel()

	id := New()
	assert.Len(t, id, Length)
	assert.NoError(t, Validate(id))
}

func TestGenerateUnique(t *testing.T) {
	t.Parallel()

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := New()
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestGenerateSortsByTime(t *testing.T) {
	t.Parallel()

	clock := quartz.NewMock(t)
	clock.Set(time.Date(2030, 3, 1, 20, 0, 0, 0, time.UTC))
	g := NewGenerator(clock, nil)

	var ids []string
	for i := 0; i < 10; i++ {
		id, err := g.Generate()
		require.NoError(t, err)
		ids = append(ids, id)
		clock.Advance(time.Millisecond)
	}
	for i := 1; i < len(ids); i++ {
		assert.Less(t, ids[i-1], ids[i])
	}
}

func TestGenerateDeterministic(t *testing.T) {
	t.Parallel()

	clock := quartz.NewMock(t)
	clock.Set(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC))

	a, err := NewGenerator(clock, bytes.NewReader(make([]byte, 10))).Generate()
	require.NoError(t, err)
	b, err := NewGenerator(clock, bytes.NewReader(make([]byte, 10))).Generate()
	require.NoError(t, err)
	assert.Equal(t, a, b)
	// Zero randomness leaves the timestamp plus the version and variant bits.
	assert.Equal(t, "06wdnhdm01r010000000000000", a)
}

func TestGenerateShortRandom(t *testing.T) {
	t.Parallel()

	_, err := NewGenerator(nil, bytes.NewReader([]byte{1, 2})).Generate()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{"valid", "01h2xcejqtf2nbrexx3vqjhp41", false},
		{"too short", "01h2xcejqt", true},
		{"first char too large", "81h2xcejqtf2nbrexx3vqjhp41", true},
		{"excluded letter", "01h2xcejqtf2nbrexx3vqjhpi1", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.id)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

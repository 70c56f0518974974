package docid

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("generates valid ids of each kind", func(t *testing.T) {
		for _, kind := range []Kind{KindThread, KindSection, KindMessage, KindAnnotation, KindUser} {
			id := New(kind)
			assert.Len(t, id, 12)
			got, err := Parse(id)
			require.NoError(t, err, id)
			assert.Equal(t, kind, got)
		}
	})

	t.Run("generates unique ids", func(t *testing.T) {
		seen := make(map[string]bool)
		for i := 0; i < 1000; i++ {
			id := New(KindSection)
			assert.False(t, seen[id], "duplicate id %s", id)
			seen[id] = true
		}
	})
}

func TestSequence(t *testing.T) {
	seq := NewSequence()

	assert.Equal(t, "T00000000001", seq.Next(KindThread))
	assert.Equal(t, "T00000000002", seq.Next(KindThread))
	assert.Equal(t, "S00000000001", seq.Next(KindSection))

	_, err := Parse(seq.Next(KindAnnotation))
	assert.NoError(t, err)
}

func TestSequenceConcurrent(t *testing.T) {
	seq := NewSequence()
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		ids = make(map[string]bool)
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				id := seq.Next(KindMessage)
				mu.Lock()
				ids[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Len(t, ids, 1000)
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Kind
		wantErr bool
	}{
		{name: "thread", input: "T3KD9X2M4QZA", want: KindThread},
		{name: "annotation", input: "A00000000042", want: KindAnnotation},
		{name: "empty", input: "", wantErr: true},
		{name: "too short", input: "T3KD", wantErr: true},
		{name: "unknown prefix", input: "X3KD9X2M4QZA", wantErr: true},
		{name: "excluded letter", input: "T3KD9X2M4QZU", wantErr: true},
		{name: "lowercase", input: "t3kd9x2m4qza", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.Panics(t, func() { MustParse("bogus") })
	assert.Equal(t, "section", KindSection.String())
}

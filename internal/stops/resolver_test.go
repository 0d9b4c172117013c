package stops

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	sequence    []string
	sequenceErr error
	names       map[string]string
}

func (f *fakeSource) RouteStopSequence(_ context.Context, _ string) ([]string, error) {
	return f.sequence, f.sequenceErr
}

func (f *fakeSource) StopName(_ context.Context, stopID string) (string, error) {
	name, ok := f.names[stopID]
	if !ok {
		return "", errors.New("unknown stop")
	}
	return name, nil
}

func newTestResolver(source SequenceSource) *Resolver {
	return NewResolver(source, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestStopOrderFixedLines(t *testing.T) {
	r := newTestResolver(&fakeSource{sequenceErr: errors.New("should not be called")})

	orange := r.StopOrder(context.Background(), "Orange")
	require.NotEmpty(t, orange)
	assert.Equal(t, "Oak Grove", orange[0])
	assert.Equal(t, "Forest Hills", orange[len(orange)-1])
	assert.Len(t, orange, 20)

	red := r.StopOrder(context.Background(), "Red")
	assert.Equal(t, "Alewife", red[0])
	assert.Equal(t, "Braintree", red[len(red)-1])

	blue := r.StopOrder(context.Background(), "Blue")
	assert.Equal(t, "Wonderland", blue[0])
	assert.Equal(t, "Aquarium", blue[len(blue)-1])
}

func TestStopOrderReturnsCopy(t *testing.T) {
	r := newTestResolver(&fakeSource{})

	first := r.StopOrder(context.Background(), "Blue")
	first[0] = "mutated"

	second := r.StopOrder(context.Background(), "Blue")
	assert.Equal(t, "Wonderland", second[0])
}

func TestStopOrderDynamicRoute(t *testing.T) {
	source := &fakeSource{
		sequence: []string{"1", "2", "3"},
		names:    map[string]string{"1": "Harvard", "3": "Nubian"},
	}
	r := newTestResolver(source)

	// Stop "2" has no resolvable name and is skipped.
	order := r.StopOrder(context.Background(), "66")
	assert.Equal(t, []string{"Harvard", "Nubian"}, order)
}

func TestStopOrderFetchFailure(t *testing.T) {
	r := newTestResolver(&fakeSource{sequenceErr: errors.New("api down")})

	assert.Empty(t, r.StopOrder(context.Background(), "66"))
}

package faults

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrap_NilCause(t *testing.T) {
	assert.NoError(t, Wrap(KindIO, "write", "writing file", nil))
}

func TestKindOf(t *testing.T) {
	cause := errors.New("permission denied")
	err := Wrap(KindIO, "filewriter.Write", "writing /x/y.php", cause)

	assert.Equal(t, KindIO, KindOf(err))
	assert.True(t, Is(err, KindIO))
	assert.False(t, Is(err, KindRequest))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "writing /x/y.php: permission denied", err.Error())

	wrapped := fmt.Errorf("generating middleware: %w", err)
	assert.Equal(t, KindIO, KindOf(wrapped))

	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
	assert.False(t, Is(nil, KindIO))
}

func TestE_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *E
		want string
	}{
		{name: "message only", err: &E{Kind: KindValidation, Msg: "name is required"}, want: "name is required"},
		{name: "cause only", err: &E{Kind: KindRequest, Err: errors.New("timeout")}, want: "timeout"},
		{name: "empty", err: &E{Kind: KindConfiguration}, want: "configuration error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestNewf(t *testing.T) {
	err := Newf(KindValidation, "artifact.Validate", "unknown kind %q", "widget")
	assert.Equal(t, `unknown kind "widget"`, err.Error())
	assert.Equal(t, KindValidation, KindOf(err))
}

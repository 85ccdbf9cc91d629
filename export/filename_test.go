package export

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilename(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"mixed symbols", "Ali_99 * Test", "تعهد_Ali99_Test.pdf"},
		{"arabic", "كريم جاسم محمد", "تعهد_كريم_جاسم_محمد.pdf"},
		{"empty", "", "تعهد_مراقب.pdf"},
		{"only symbols", "*** ///", "تعهد__.pdf"},
		{"symbols without spaces", "!!!", "تعهد_مراقب.pdf"},
		{"whitespace runs", "a \t\n b", "تعهد_a_b.pdf"},
		{"non arabic script", "Çelik Ωmega", "تعهد_elik_mega.pdf"},
		{"arabic indic digits", "مراقب ٣", "تعهد_مراقب_٣.pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Filename(tt.in))
		})
	}
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "", UserMessage(nil))
	assert.Equal(t, MsgValidation, UserMessage(fmt.Errorf("%w: observerName", ErrValidation)))
	assert.Equal(t, MsgBusy, UserMessage(ErrBusy))
	assert.Equal(t, MsgStaging, UserMessage(fmt.Errorf("%w: x", ErrStaging)))
	assert.Equal(t, MsgRaster, UserMessage(ErrRaster))
	assert.Equal(t, MsgAssembly, UserMessage(ErrAssembly))
	assert.Equal(t, MsgUnknown, UserMessage(errors.New("boom")))
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"validation keeps the fixed text", fmt.Errorf("%w: observerName", ErrValidation), MsgValidation},
		{"busy", ErrBusy, MsgBusy},
		{"raster cause", fmt.Errorf("%w: capture pledge: %v", ErrRaster, errors.New("GPU process crashed")), MsgRaster + ": capture pledge: GPU process crashed"},
		{"staging cause", fmt.Errorf("%w: %w: attachments", ErrStaging, errors.New("page template missing")), MsgStaging + ": page template missing: attachments"},
		{"assembly without cause", ErrAssembly, MsgAssembly},
		{"unknown with text", errors.New("export panicked: boom"), "export panicked: boom"},
		{"unknown without text", errors.New(""), MsgUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Describe(tt.err))
		})
	}
}

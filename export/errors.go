package export

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zeptools/pledgedesk/record"
)

var (
	ErrValidation = errors.New("required fields missing")
	ErrBusy       = errors.New("export already in progress")
	ErrStaging    = errors.New("staging failed")
	ErrRaster     = errors.New("rasterisation failed")
	ErrAssembly   = errors.New("pdf assembly failed")
	ErrSave       = errors.New("save failed")
)

// Operator-facing texts
const (
	MsgValidation = "يرجى ملء الحقول الأساسية (المرشح والمراقب) على الأقل."
	MsgBusy       = "جاري تحضير الملف، يرجى الانتظار."
	MsgStaging    = "تعذر العثور على عنصر التعهد"
	MsgRaster     = "تعذر تحويل الصفحة إلى صورة"
	MsgAssembly   = "تعذر تجميع ملف PDF"
	MsgSave       = "تعذر حفظ الملف"
	MsgUnknown    = "خطأ غير معروف"
)

// Validate is the export guard: both names must be non-blank
func Validate(rec *record.ObserverRecord) error {
	if missing := rec.MissingRequired(); len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrValidation, strings.Join(missing, ", "))
	}
	return nil
}

// UserMessage maps a pipeline error onto the text shown to the operator
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return MsgValidation
	case errors.Is(err, ErrBusy):
		return MsgBusy
	case errors.Is(err, ErrStaging):
		return MsgStaging
	case errors.Is(err, ErrRaster):
		return MsgRaster
	case errors.Is(err, ErrAssembly):
		return MsgAssembly
	case errors.Is(err, ErrSave):
		return MsgSave
	default:
		return MsgUnknown
	}
}

// Describe is what the operator sees for a failed run: the UserMessage text
// followed by the underlying cause. A failure with no usable cause text
// falls back to MsgUnknown.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	msg := UserMessage(err)
	if errors.Is(err, ErrValidation) || errors.Is(err, ErrBusy) {
		return msg
	}
	cause := err.Error()
	for _, sentinel := range []error{ErrStaging, ErrRaster, ErrAssembly, ErrSave} {
		if errors.Is(err, sentinel) {
			cause = strings.TrimPrefix(cause, sentinel.Error())
			cause = strings.TrimPrefix(cause, ":")
			break
		}
	}
	cause = strings.TrimSpace(cause)
	switch {
	case cause == "":
		return msg
	case msg == MsgUnknown:
		return cause
	default:
		return msg + ": " + cause
	}
}

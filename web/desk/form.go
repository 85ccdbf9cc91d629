package desk

import (
	"github.com/zeptools/pledgedesk/record"
	"github.com/zeptools/pledgedesk/render"
	"github.com/zeptools/pledgedesk/web/views"
)

type fieldDef struct {
	key         string
	label       string
	placeholder string
	typ         string
	required    bool
	wide        bool
}

var candidateFields = []fieldDef{
	{key: record.FieldCandidateName, label: "اسم المرشح", placeholder: "الاسم الكامل للمرشح", typ: "text", required: true, wide: true},
	{key: record.FieldCandidateDistrict, label: "الدائرة الانتخابية / المحافظة", placeholder: "مثال: بغداد - الدائرة الأولى", typ: "text", wide: true},
}

var observerFields = []fieldDef{
	{key: record.FieldObserverName, label: "الاسم الكامل", placeholder: "اسم المراقب الثلاثي", typ: "text", required: true, wide: true},
	{key: record.FieldNationalID, label: "رقم الهوية", typ: "text"},
	{key: record.FieldPhone, label: "رقم الهاتف", typ: "tel"},
	{key: record.FieldVoterCardNumber, label: "رقم بطاقة الناخب", typ: "text"},
	{key: record.FieldAddress, label: "السكن / الحي", typ: "text"},
	{key: record.FieldSchoolName, label: "اسم المدرسة (مركز الاقتراع)", placeholder: "اسم المركز الانتخابي", typ: "text", wide: true},
}

var slotLabels = map[record.Slot]string{
	record.SlotNationalCardFront: "الوطنية (وجه)",
	record.SlotNationalCardBack:  "الوطنية (ظهر)",
	record.SlotVoterCardFront:    "الناخب (وجه)",
	record.SlotVoterCardBack:     "الناخب (ظهر)",
}

func formSection(title string, defs []fieldDef, rec *record.ObserverRecord) views.FormSection {
	s := views.FormSection{Title: title}
	for _, d := range defs {
		val, _ := rec.Field(d.key)
		s.Fields = append(s.Fields, views.FormField{
			Key:         d.key,
			Label:       d.label,
			Value:       val,
			Placeholder: d.placeholder,
			Type:        d.typ,
			Required:    d.required,
			Wide:        d.wide,
		})
	}
	return s
}

func slotViews(rec *record.ObserverRecord) []views.SlotView {
	out := make([]views.SlotView, 0, len(record.Slots))
	for _, slot := range record.Slots {
		v := views.SlotView{Key: string(slot), Label: slotLabels[slot]}
		if src, ok := render.ImageSrc(rec.Image(slot)); ok {
			v.Present = true
			v.Src = src
		}
		out = append(out, v)
	}
	return out
}

package render

import (
	"html/template"
	"strings"

	"github.com/zeptools/pledgedesk/record"
)

const Placeholder = "لا توجد صورة"

type Row struct {
	Label string
	Value string
	Wide  bool
}

type PledgeView struct {
	Title              string
	CandidateName      string
	CandidateDistrict  string
	Observer           []Row
	CandidateSignature string
	Date               string
}

type Panel struct {
	Side    string
	Present bool
	Src     template.URL
}

type Section struct {
	Number string
	Title  string
	Accent string // css class
	Panels []Panel
}

type AttachmentsView struct {
	Title        string
	ObserverName string
	Sections     []Section
	Placeholder  string
	Date         string
	Time         string
}

// firstWord is what the candidate signature box shows
func firstWord(name string) string {
	if f := strings.Fields(name); len(f) > 0 {
		return f[0]
	}
	return ""
}

func observerRows(rec *record.ObserverRecord) []Row {
	return []Row{
		{Label: "الاسم الكامل", Value: rec.ObserverName, Wide: true},
		{Label: "رقم الهوية", Value: rec.NationalID},
		{Label: "رقم الهاتف", Value: rec.Phone},
		{Label: "رقم بطاقة الناخب", Value: rec.VoterCardNumber},
		{Label: "السكن/الحي", Value: rec.Address},
		{Label: "المدرسة (المركز)", Value: rec.SchoolName, Wide: true},
	}
}

// ImageSrc only trusts payloads that declare an image MIME type
func ImageSrc(img *record.Image) (template.URL, bool) {
	if img == nil || len(img.Data) == 0 || !strings.HasPrefix(img.MIME, "image/") {
		return "", false
	}
	return template.URL(img.DataURL()), true
}

func panel(side string, img *record.Image) Panel {
	src, ok := ImageSrc(img)
	return Panel{Side: side, Present: ok, Src: src}
}

func attachmentSections(rec *record.ObserverRecord) []Section {
	return []Section{
		{
			Number: "١",
			Title:  "البطاقة الوطنية الموحدة",
			Accent: "blue",
			Panels: []Panel{
				panel("الوجه", rec.NationalCardFront),
				panel("الظهر", rec.NationalCardBack),
			},
		},
		{
			Number: "٢",
			Title:  "بطاقة الناخب الإلكترونية",
			Accent: "green",
			Panels: []Panel{
				panel("الوجه", rec.VoterCardFront),
				panel("الظهر", rec.VoterCardBack),
			},
		},
	}
}

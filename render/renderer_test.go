package render

import (
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeptools/pledgedesk/record"
	"github.com/zeptools/pledgedesk/tpl"
)

var at = time.Date(2024, time.March, 5, 13, 7, 9, 0, time.UTC)

func newRenderer(t *testing.T) *Renderer {
	t.Helper()
	store, err := NewStore("")
	require.NoError(t, err)
	r, err := New(store)
	require.NoError(t, err)
	return r
}

func sampleRecord() *record.ObserverRecord {
	return &record.ObserverRecord{
		CandidateName:     "علي حسن محمد",
		CandidateDistrict: "بغداد - الدائرة الأولى",
		ObserverName:      "كريم جاسم",
		NationalID:        "199012345678",
		Phone:             "07701234567",
		VoterCardNumber:   "VC-42",
		Address:           "الكرادة",
		SchoolName:        "مدرسة الرشيد",
	}
}

func TestRender_Idempotent(t *testing.T) {
	r := newRenderer(t)
	rec := sampleRecord()
	rec.NationalCardFront = &record.Image{MIME: "image/png", Data: []byte{0x89, 'P', 'N', 'G'}}

	for _, page := range Pages {
		a, err := r.Render(page, rec, at)
		require.NoError(t, err)
		b, err := r.Render(page, rec, at)
		require.NoError(t, err)
		if diff := cmp.Diff(string(a), string(b)); diff != "" {
			t.Errorf("%s not deterministic (-first +second):\n%s", page, diff)
		}
	}
}

func TestRender_TimestampChangesOutput(t *testing.T) {
	r := newRenderer(t)
	a, err := r.RenderPledge(sampleRecord(), at)
	require.NoError(t, err)
	b, err := r.RenderPledge(sampleRecord(), at.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.NotEqual(t, string(a), string(b))
}

func TestRenderPledge_Content(t *testing.T) {
	r := newRenderer(t)
	out, err := r.RenderPledge(sampleRecord(), at)
	require.NoError(t, err)
	html := string(out)

	assert.Contains(t, html, `dir="rtl"`)
	assert.Contains(t, html, "بغداد - الدائرة الأولى")
	assert.Contains(t, html, "199012345678")
	assert.Contains(t, html, "مدرسة الرشيد")
	assert.Contains(t, html, `<div class="line">علي</div>`)
	assert.Equal(t, 2, strings.Count(html, "التاريخ: ٥/٣/٢٠٢٤"))
}

func TestRenderPledge_EscapesValues(t *testing.T) {
	r := newRenderer(t)
	rec := sampleRecord()
	rec.CandidateName = `<script>alert("x")</script>`
	rec.Address = `a & b <b>bold</b>`

	out, err := r.RenderPledge(rec, at)
	require.NoError(t, err)
	html := string(out)

	assert.NotContains(t, html, "<script>alert")
	assert.NotContains(t, html, "<b>bold</b>")
	assert.Contains(t, html, "&lt;script&gt;")
	assert.Contains(t, html, "a &amp; b &lt;b&gt;bold&lt;/b&gt;")
}

func TestRenderPledge_EmptyRecord(t *testing.T) {
	r := newRenderer(t)
	out, err := r.RenderPledge(&record.ObserverRecord{}, at)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(out), `<div class="line"></div>`))
}

func TestRenderAttachments_Placeholders(t *testing.T) {
	r := newRenderer(t)
	out, err := r.RenderAttachments(sampleRecord(), at)
	require.NoError(t, err)
	html := string(out)

	assert.Equal(t, 4, strings.Count(html, Placeholder))
	assert.Equal(t, 0, strings.Count(html, "<img"))
	assert.Contains(t, html, "كريم جاسم")
	assert.Contains(t, html, "٥/٣/٢٠٢٤ ١:٠٧:٠٩ م")
}

func TestRenderAttachments_Images(t *testing.T) {
	r := newRenderer(t)
	rec := sampleRecord()
	rec.NationalCardFront = &record.Image{MIME: "image/png", Data: []byte("png-bytes")}
	rec.VoterCardBack = &record.Image{MIME: "image/jpeg", Data: []byte("jpeg-bytes")}
	rec.VoterCardFront = &record.Image{MIME: "text/html", Data: []byte("<p>no</p>")}

	out, err := r.RenderAttachments(rec, at)
	require.NoError(t, err)
	html := string(out)

	assert.Equal(t, 2, strings.Count(html, "<img"))
	assert.Equal(t, 2, strings.Count(html, Placeholder))
	assert.Contains(t, html, rec.NationalCardFront.DataURL())
	assert.Contains(t, html, rec.VoterCardBack.DataURL())
	assert.NotContains(t, html, "data:text/html")
}

func TestRenderer_MissingPage(t *testing.T) {
	store := tpl.NewHTMLTemplateStore(nil)
	fsys := fstest.MapFS{
		"partials/document.gohtml": {Data: []byte(`{{define "document_start"}}<html>{{end}}{{define "document_end"}}</html>{{end}}`)},
		"pages/pledge.gohtml":      {Data: []byte(`{{template "document_start" .}}{{.CandidateName}}{{template "document_end" .}}`)},
	}
	require.NoError(t, store.LoadBaseTemplates(fsys, "."))
	r, err := New(store)
	require.NoError(t, err)

	assert.True(t, r.Has(PagePledge))
	assert.False(t, r.Has(PageAttachments))

	out, err := r.RenderPledge(&record.ObserverRecord{CandidateName: "x"}, at)
	require.NoError(t, err)
	assert.Equal(t, "<html>x</html>", string(out))

	_, err = r.RenderAttachments(&record.ObserverRecord{}, at)
	assert.ErrorIs(t, err, tpl.ErrTemplateNotFound)

	_, err = r.Render("cover", &record.ObserverRecord{}, at)
	assert.ErrorIs(t, err, tpl.ErrTemplateNotFound)
}

func TestNew_BrokenComposition(t *testing.T) {
	store := tpl.NewHTMLTemplateStore(nil)
	fsys := fstest.MapFS{
		"pages/pledge.gohtml": {Data: []byte(`{{template "document_start" .}}{{.CandidateName}}{{template "document_end" .}}`)},
	}
	require.NoError(t, store.LoadBaseTemplates(fsys, "."))

	_, err := New(store)
	require.Error(t, err)
	assert.ErrorIs(t, err, tpl.ErrTemplateNotFound)
	assert.Contains(t, err.Error(), documentPartial)
}

func TestFormatDateTime(t *testing.T) {
	assert.Equal(t, "٥/٣/٢٠٢٤", FormatDate(at))
	assert.Equal(t, "٢٥/١٢/٢٠٢٣", FormatDate(time.Date(2023, 12, 25, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "١:٠٧:٠٩ م", FormatTime(at))
	assert.Equal(t, "١٢:٠٠:٠٠ ص", FormatTime(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "١٢:٣٠:٠٠ م", FormatTime(time.Date(2023, 1, 1, 12, 30, 0, 0, time.UTC)))
	assert.Equal(t, "٠١٢٣٤٥٦٧٨٩", ArabicDigits("0123456789"))
}

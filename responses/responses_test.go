package responses

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWritePDFAttachment(t *testing.T) {
	rec := httptest.NewRecorder()
	require.NoError(t, WritePDFAttachment(rec, "تعهد_Ali99_Test.pdf", []byte("%PDF-1.3")))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, "8", rec.Header().Get("Content-Length"))
	assert.Equal(t,
		`attachment; filename="_____Ali99_Test.pdf"; filename*=UTF-8''%D8%AA%D8%B9%D9%87%D8%AF_Ali99_Test.pdf`,
		rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "%PDF-1.3", rec.Body.String())
}

func TestWriteSimpleErrorJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteSimpleErrorJSON(rec, http.StatusUnprocessableEntity, "خطأ")

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var m Message
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	assert.Equal(t, Message{Type: TypeError, Message: "خطأ"}, m)
}

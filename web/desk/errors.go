package desk

import (
	"errors"
	"log"
	"net/http"

	"github.com/zeptools/pledgedesk/export"
	"github.com/zeptools/pledgedesk/gate"
	"github.com/zeptools/pledgedesk/record"
	"github.com/zeptools/pledgedesk/responses"
	"github.com/zeptools/pledgedesk/tpl"
)

// writeError maps domain errors onto status codes and operator messages.
// Server-side failures carry their cause to the operator.
func writeError(w http.ResponseWriter, err error) {
	status, msg := http.StatusInternalServerError, export.UserMessage(err)
	switch {
	case errors.Is(err, export.ErrValidation):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, export.ErrBusy):
		status = http.StatusConflict
	case errors.Is(err, gate.ErrNotOpen):
		status, msg = http.StatusConflict, msgNotOpen
	case errors.Is(err, gate.ErrTicket):
		status, msg = http.StatusForbidden, msgTicket
	case errors.Is(err, record.ErrNotImage):
		status, msg = http.StatusUnprocessableEntity, msgNotImage
	case errors.Is(err, record.ErrUnknownField), errors.Is(err, record.ErrUnknownSlot):
		status, msg = http.StatusBadRequest, msgBadRequest
	case errors.Is(err, tpl.ErrTemplateNotFound):
		status, msg = http.StatusNotFound, msgNoPage
	}
	if status >= http.StatusInternalServerError {
		log.Printf("[ERROR][DESK] %v", err)
		msg = export.Describe(err)
	}
	responses.WriteSimpleErrorJSON(w, status, msg)
}

package record

import (
	"errors"
	"fmt"
	"strings"
)

// Field keys shared by the HTML form and YAML record files
const (
	FieldCandidateName     = "candidateName"
	FieldCandidateDistrict = "candidateDistrict"
	FieldObserverName      = "observerName"
	FieldNationalID        = "nationalId"
	FieldPhone             = "phone"
	FieldVoterCardNumber   = "voterCardNumber"
	FieldAddress           = "address"
	FieldSchoolName        = "schoolName"
)

// Fields lists every text field in form order
var Fields = []string{
	FieldCandidateName,
	FieldCandidateDistrict,
	FieldObserverName,
	FieldNationalID,
	FieldPhone,
	FieldVoterCardNumber,
	FieldAddress,
	FieldSchoolName,
}

// Slot names one of the four attached document scans
type Slot string

const (
	SlotNationalCardFront Slot = "nationalCardFront"
	SlotNationalCardBack  Slot = "nationalCardBack"
	SlotVoterCardFront    Slot = "voterCardFront"
	SlotVoterCardBack     Slot = "voterCardBack"
)

// Slots in attachments page order
var Slots = []Slot{
	SlotNationalCardFront,
	SlotNationalCardBack,
	SlotVoterCardFront,
	SlotVoterCardBack,
}

var (
	ErrUnknownField = errors.New("unknown field")
	ErrUnknownSlot  = errors.New("unknown image slot")
)

// ParseSlot validates a slot name coming from a request path or a record file
func ParseSlot(s string) (Slot, error) {
	for _, slot := range Slots {
		if string(slot) == s {
			return slot, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSlot, s)
}

// ObserverRecord holds every value of one pledge document.
// Party 1 is the candidate, Party 2 the observer.
// A record is not safe for concurrent use. The owner (workspace.Workspace) serializes access.
type ObserverRecord struct {
	CandidateName     string `yaml:"candidateName"`
	CandidateDistrict string `yaml:"candidateDistrict"`

	ObserverName    string `yaml:"observerName"`
	NationalID      string `yaml:"nationalId"`
	Phone           string `yaml:"phone"`
	VoterCardNumber string `yaml:"voterCardNumber"`
	Address         string `yaml:"address"`
	SchoolName      string `yaml:"schoolName"`

	NationalCardFront *Image `yaml:"-"`
	NationalCardBack  *Image `yaml:"-"`
	VoterCardFront    *Image `yaml:"-"`
	VoterCardBack     *Image `yaml:"-"`
}

func (r *ObserverRecord) fieldPtr(key string) (*string, error) {
	switch key {
	case FieldCandidateName:
		return &r.CandidateName, nil
	case FieldCandidateDistrict:
		return &r.CandidateDistrict, nil
	case FieldObserverName:
		return &r.ObserverName, nil
	case FieldNationalID:
		return &r.NationalID, nil
	case FieldPhone:
		return &r.Phone, nil
	case FieldVoterCardNumber:
		return &r.VoterCardNumber, nil
	case FieldAddress:
		return &r.Address, nil
	case FieldSchoolName:
		return &r.SchoolName, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, key)
	}
}

// SetField stores the value as typed
func (r *ObserverRecord) SetField(key string, value string) error {
	p, err := r.fieldPtr(key)
	if err != nil {
		return err
	}
	*p = value
	return nil
}

func (r *ObserverRecord) Field(key string) (string, error) {
	p, err := r.fieldPtr(key)
	if err != nil {
		return "", err
	}
	return *p, nil
}

func (r *ObserverRecord) imagePtr(slot Slot) (**Image, error) {
	switch slot {
	case SlotNationalCardFront:
		return &r.NationalCardFront, nil
	case SlotNationalCardBack:
		return &r.NationalCardBack, nil
	case SlotVoterCardFront:
		return &r.VoterCardFront, nil
	case SlotVoterCardBack:
		return &r.VoterCardBack, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSlot, slot)
	}
}

// SetImage replaces the slot payload. A nil img removes it.
func (r *ObserverRecord) SetImage(slot Slot, img *Image) error {
	p, err := r.imagePtr(slot)
	if err != nil {
		return err
	}
	*p = img
	return nil
}

// Image returns nil for an empty or unknown slot
func (r *ObserverRecord) Image(slot Slot) *Image {
	p, err := r.imagePtr(slot)
	if err != nil {
		return nil
	}
	return *p
}

// Snapshot returns a copy that can be rendered while the original keeps changing.
// Image payloads are never mutated in place, so sharing them is fine.
func (r *ObserverRecord) Snapshot() ObserverRecord {
	return *r
}

// MissingRequired returns the keys of the mandatory fields that are blank
func (r *ObserverRecord) MissingRequired() []string {
	var missing []string
	if strings.TrimSpace(r.CandidateName) == "" {
		missing = append(missing, FieldCandidateName)
	}
	if strings.TrimSpace(r.ObserverName) == "" {
		missing = append(missing, FieldObserverName)
	}
	return missing
}

package models

// IDType is the primary identity document a tourist verifies with.
type IDType string

const (
	IDTypeAadhaar        IDType = "aadhaar"
	IDTypePassport       IDType = "passport"
	IDTypeDrivingLicense IDType = "driving-license"
	IDTypeVoterID        IDType = "voter-id"
)

// RequiresOTP reports whether numbers of this type are verified by OTP.
func (t IDType) RequiresOTP() bool {
	return t == IDTypeAadhaar
}

// Placeholder is the input hint shown for the ID number field.
func (t IDType) Placeholder() string {
	switch t {
	case IDTypeAadhaar:
		return "Enter 12-digit Aadhaar Number"
	case IDTypeDrivingLicense:
		return "Enter Driving License Number"
	case IDTypeVoterID:
		return "Enter Voter ID Number"
	case IDTypePassport:
		return "Enter Passport Number"
	default:
		return "Enter ID number"
	}
}

// NationalityIndian is the only nationality for which the passport number is not asked.
const NationalityIndian = "indian"

// Options lists the accepted values of select-type fields. The empty string
// (nothing selected) is always accepted.
var Options = map[Field][]string{
	FieldNationality:  {"indian", "us", "uk", "canada", "australia", "other"},
	FieldGender:       {"male", "female", "other", "prefer-not-to-say"},
	FieldIDType:       {string(IDTypeAadhaar), string(IDTypePassport), string(IDTypeDrivingLicense), string(IDTypeVoterID)},
	FieldVisitPurpose: {"tourism", "business", "education", "medical", "family", "other"},
	FieldDuration:     {"1-3-days", "4-7-days", "1-2-weeks", "2-4-weeks", "1-3-months", "longer"},
}

// IsOption reports whether value is allowed for a select-type field. Free
// text fields always return true.
func IsOption(f Field, value string) bool {
	opts, ok := Options[f]
	if !ok || value == "" {
		return true
	}
	for _, o := range opts {
		if o == value {
			return true
		}
	}
	return false
}

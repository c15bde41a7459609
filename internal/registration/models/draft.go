package models

// Field names a Draft field by its wire name.
type Field string

// Personal information.
const (
	FieldFullName    Field = "fullName"
	FieldEmail       Field = "email"
	FieldPhone       Field = "phone"
	FieldDateOfBirth Field = "dateOfBirth"
	FieldNationality Field = "nationality"
	FieldGender      Field = "gender"
)

// Identity documents.
const (
	FieldIDType         Field = "idType"
	FieldIDNumber       Field = "idNumber"
	FieldPassportNumber Field = "passportNumber"
)

// Trip information and itinerary.
const (
	FieldVisitPurpose        Field = "visitPurpose"
	FieldDuration            Field = "duration"
	FieldAccommodation       Field = "accommodation"
	FieldEmergencyContact    Field = "emergencyContact"
	FieldEmergencyPhone      Field = "emergencyPhone"
	FieldPlannedDestinations Field = "plannedDestinations"
	FieldTravelDates         Field = "travelDates"
)

// Agreements.
const (
	FieldDataConsent      Field = "dataConsent"
	FieldTrackingConsent  Field = "trackingConsent"
	FieldEmergencyConsent Field = "emergencyConsent"
)

// AllFields lists every field in form order.
var AllFields = []Field{
	FieldFullName, FieldEmail, FieldPhone, FieldDateOfBirth, FieldNationality, FieldGender,
	FieldIDType, FieldIDNumber, FieldPassportNumber,
	FieldVisitPurpose, FieldDuration, FieldAccommodation, FieldEmergencyContact,
	FieldEmergencyPhone, FieldPlannedDestinations, FieldTravelDates,
	FieldDataConsent, FieldTrackingConsent, FieldEmergencyConsent,
}

// IsField reports whether name is a known field.
func IsField(name string) bool {
	for _, f := range AllFields {
		if string(f) == name {
			return true
		}
	}
	return false
}

// Draft is the mutable registration record owned by a wizard for the
// lifetime of its session.
type Draft struct {
	FullName    string `json:"fullName"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	DateOfBirth string `json:"dateOfBirth"`
	Nationality string `json:"nationality"`
	Gender      string `json:"gender"`

	IDType         IDType `json:"idType"`
	IDNumber       string `json:"idNumber"`
	PassportNumber string `json:"passportNumber"`

	VisitPurpose        string `json:"visitPurpose"`
	Duration            string `json:"duration"`
	Accommodation       string `json:"accommodation"`
	EmergencyContact    string `json:"emergencyContact"`
	EmergencyPhone      string `json:"emergencyPhone"`
	PlannedDestinations string `json:"plannedDestinations"`
	TravelDates         string `json:"travelDates"`

	DataConsent      bool `json:"dataConsent"`
	TrackingConsent  bool `json:"trackingConsent"`
	EmergencyConsent bool `json:"emergencyConsent"`
}

// StringField returns a pointer to the named string field, or nil when the
// field is unknown or boolean.
func (d *Draft) StringField(f Field) *string {
	switch f {
	case FieldFullName:
		return &d.FullName
	case FieldEmail:
		return &d.Email
	case FieldPhone:
		return &d.Phone
	case FieldDateOfBirth:
		return &d.DateOfBirth
	case FieldNationality:
		return &d.Nationality
	case FieldGender:
		return &d.Gender
	case FieldIDType:
		return (*string)(&d.IDType)
	case FieldIDNumber:
		return &d.IDNumber
	case FieldPassportNumber:
		return &d.PassportNumber
	case FieldVisitPurpose:
		return &d.VisitPurpose
	case FieldDuration:
		return &d.Duration
	case FieldAccommodation:
		return &d.Accommodation
	case FieldEmergencyContact:
		return &d.EmergencyContact
	case FieldEmergencyPhone:
		return &d.EmergencyPhone
	case FieldPlannedDestinations:
		return &d.PlannedDestinations
	case FieldTravelDates:
		return &d.TravelDates
	}
	return nil
}

// BoolField returns a pointer to the named consent flag, or nil.
func (d *Draft) BoolField(f Field) *bool {
	switch f {
	case FieldDataConsent:
		return &d.DataConsent
	case FieldTrackingConsent:
		return &d.TrackingConsent
	case FieldEmergencyConsent:
		return &d.EmergencyConsent
	}
	return nil
}

package models

// BookingStatus is the portal-reported state of a reservation.
type BookingStatus string

const (
	StatusApplied   BookingStatus = "APPLIED"
	StatusPending   BookingStatus = "PENDING"
	StatusConfirmed BookingStatus = "CONFIRMED"
	StatusInUse     BookingStatus = "IN_USE"
	StatusDone      BookingStatus = "DONE"
	StatusCancelled BookingStatus = "CANCELLED"
)

// portalStatusLabels maps the portal's Korean status text to the enum.
var portalStatusLabels = map[string]BookingStatus{
	"접수":   StatusApplied,
	"신청":   StatusApplied,
	"승인대기": StatusPending,
	"대기":   StatusPending,
	"승인":   StatusConfirmed,
	"예약확정": StatusConfirmed,
	"사용중":  StatusInUse,
	"사용완료": StatusDone,
	"취소":   StatusCancelled,
	"예약취소": StatusCancelled,
}

// statusLabels maps the enum to a human-readable label for notifications.
var statusLabels = map[BookingStatus]string{
	StatusApplied:   "applied",
	StatusPending:   "pending approval",
	StatusConfirmed: "approved",
	StatusInUse:     "in use",
	StatusDone:      "completed",
	StatusCancelled: "cancelled",
}

// ParseBookingStatus converts the portal's status text into a BookingStatus.
// Unknown labels are carried through verbatim so the diff engine still
// detects transitions the mapping does not know about.
func ParseBookingStatus(raw string) BookingStatus {
	if s, ok := portalStatusLabels[raw]; ok {
		return s
	}
	return BookingStatus(raw)
}

// StatusLabel returns a human-readable label for a status, falling back to
// the raw code for unknown values.
func StatusLabel(s BookingStatus) string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}

// BookingRecord is an immutable snapshot of one reservation as scraped from
// the portal. Records are identified across scrapes by ExternalID.
type BookingRecord struct {
	ExternalID    string         `json:"externalId" bson:"externalId"`
	FacilityName  string         `json:"facilityName" bson:"facilityName"`
	RentalDate    string         `json:"rentalDate" bson:"rentalDate"`
	TimeSlots     []int          `json:"timeSlots" bson:"timeSlots"`
	ApplicantName string         `json:"applicantName" bson:"applicantName"`
	Status        BookingStatus  `json:"status" bson:"status"`
	Detail        *BookingDetail `json:"detail,omitempty" bson:"detail,omitempty"`
}

// BookingDetail holds the fields only present on a reservation's detail page.
type BookingDetail struct {
	DocumentNo     string   `json:"documentNo" bson:"documentNo"`
	Purpose        string   `json:"purpose" bson:"purpose"`
	Headcount      string   `json:"headcount" bson:"headcount"`
	Equipment      []string `json:"equipment" bson:"equipment"`
	SubmittedFiles []string `json:"submittedFiles" bson:"submittedFiles"`
}

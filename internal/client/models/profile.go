package models

// SensitiveState tells whether a sensitive field could be revealed.
type SensitiveState int

const (
	SensitiveEmpty SensitiveState = iota
	SensitivePlain
	SensitiveUndecryptable
)

// SensitiveValue is a decrypted sensitive field. Value is "" unless State
// is SensitivePlain.
type SensitiveValue struct {
	Value string
	State SensitiveState
}

func PlainValue(s string) SensitiveValue {
	if s == "" {
		return SensitiveValue{}
	}
	return SensitiveValue{Value: s, State: SensitivePlain}
}

func (v SensitiveValue) String() string { return v.Value }

func (v SensitiveValue) Undecryptable() bool { return v.State == SensitiveUndecryptable }

// RawProfile is an employee record as it travels on the wire: the national
// and tax identifiers are ciphertext.
type RawProfile struct {
	ID            ID     `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	DateOfJoining Date   `json:"dateOfJoining"`
	Position      string `json:"position"`
	Role          string `json:"role"`
	Image         string `json:"image"`
	NationalID    string `json:"nationalId"`
	TaxID         string `json:"taxId"`
}

// EmployeeProfile is a directory record with its sensitive fields revealed.
type EmployeeProfile struct {
	ID            ID
	Name          string
	Email         string
	DateOfJoining Date
	Position      string
	Role          Role
	Image         string
	NationalID    SensitiveValue
	TaxID         SensitiveValue
}

// ProfileUpdate is the admin edit form: every field except the image.
// An empty Password leaves the password unchanged.
type ProfileUpdate struct {
	Name       string
	Email      string
	Password   string
	Position   string
	NationalID string
	TaxID      string
}

// SelfUpdate is what a non-admin may change on their own profile.
type SelfUpdate struct {
	Name     string
	Password string
}

// Image is an uploaded picture.
type Image struct {
	Filename string
	Data     []byte
}

// NewEmployee is the registration form.
type NewEmployee struct {
	Name          string
	Email         string
	Password      string
	Position      string
	NationalID    string
	TaxID         string
	DateOfJoining Date
	Image         *Image
}

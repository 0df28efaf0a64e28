package patient

import (
	"context"
	"errors"
)

// Patient represents one admitted patient. The JSON tags define the wire
// document exchanged with API clients.
type Patient struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Age       int    `json:"age"`
	Gender    string `json:"gender"`
	Contact   string `json:"contact"`
	Disease   string `json:"disease"`
	AdmitDate string `json:"admitDate"`
	Doctor    string `json:"doctor"`
	Room      string `json:"room"`
}

// Stats holds the demographic counts of the admitted patients.
// Total always equals Male + Female + Other.
type Stats struct {
	Total  int `json:"total"`
	Male   int `json:"male"`
	Female int `json:"female"`
	Other  int `json:"other"`
}

// Gender values counted separately by Statistics. Matching is case-sensitive.
const (
	GenderMale   = "Male"
	GenderFemale = "Female"
)

// DefaultNextID is the first identifier handed out by an empty registry.
const DefaultNextID = 1001

// Snapshot is the full registry state as written to a durable mirror.
type Snapshot struct {
	NextID   int
	Patients []Patient
}

// Repository defines the operations of the patient registry.
type Repository interface {
	Create(ctx context.Context, p Patient) (Patient, error)
	Get(ctx context.Context, id int) (Patient, error)
	List(ctx context.Context) ([]Patient, error)
	Search(ctx context.Context, query string) ([]Patient, error)
	Discharge(ctx context.Context, id int) (Patient, error)
	Statistics(ctx context.Context) (Stats, error)
	Flush(ctx context.Context) error
}

// Mirror is the durable copy of the registry. Save overwrites the whole
// previous state and must not retain s.Patients after returning. Load
// returns an empty snapshot when nothing was saved yet.
type Mirror interface {
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, s Snapshot) error
}

var (
	// ErrNotFound indicates the requested patient is not admitted.
	ErrNotFound = errors.New("patient not found")

	// ErrPersist indicates the registry changed in memory but the mirror
	// could not be written.
	ErrPersist = errors.New("persist registry")

	// ErrMalformedLine indicates a stored line could not be decoded.
	ErrMalformedLine = errors.New("malformed patient line")

	// ErrInvalidDocument indicates an inbound document could not be decoded.
	ErrInvalidDocument = errors.New("invalid patient document")
)

// CountGenders tallies patients into Stats.
func CountGenders(patients []Patient) Stats {
	s := Stats{Total: len(patients)}
	for _, p := range patients {
		switch p.Gender {
		case GenderMale:
			s.Male++
		case GenderFemale:
			s.Female++
		default:
			s.Other++
		}
	}
	return s
}

package patient

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Delimiter separates the fields of a stored line. Field values are not
// escaped, so a value containing it corrupts its line.
const Delimiter = "|"

const lineFields = 9

// EncodeLine renders p as one stored line without the trailing newline.
func EncodeLine(p Patient) string {
	return strings.Join([]string{
		strconv.Itoa(p.ID),
		p.Name,
		strconv.Itoa(p.Age),
		p.Gender,
		p.Contact,
		p.Disease,
		p.AdmitDate,
		p.Doctor,
		p.Room,
	}, Delimiter)
}

// DecodeLine parses a line produced by EncodeLine. The line must not carry
// its terminator.
func DecodeLine(line string) (Patient, error) {
	fields := strings.Split(line, Delimiter)
	if len(fields) != lineFields {
		return Patient{}, fmt.Errorf("%w: %d fields, want %d", ErrMalformedLine, len(fields), lineFields)
	}
	id, err := strconv.Atoi(fields[0])
	if err != nil {
		return Patient{}, fmt.Errorf("%w: id: %v", ErrMalformedLine, err)
	}
	if id <= 0 {
		return Patient{}, fmt.Errorf("%w: id %d is not positive", ErrMalformedLine, id)
	}
	age, err := strconv.Atoi(fields[2])
	if err != nil {
		return Patient{}, fmt.Errorf("%w: age: %v", ErrMalformedLine, err)
	}
	return Patient{
		ID:        id,
		Name:      fields[1],
		Age:       age,
		Gender:    fields[3],
		Contact:   fields[4],
		Disease:   fields[5],
		AdmitDate: fields[6],
		Doctor:    fields[7],
		Room:      fields[8],
	}, nil
}

// EncodeSnapshot writes the counter line followed by one line per patient.
func EncodeSnapshot(w io.Writer, s Snapshot) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintln(bw, s.NextID); err != nil {
		return err
	}
	for _, p := range s.Patients {
		if _, err := fmt.Fprintln(bw, EncodeLine(p)); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// DecodeSnapshot reads the layout written by EncodeSnapshot. An unreadable
// counter falls back to DefaultNextID and malformed lines are skipped; only
// read errors from r are returned. Lines have no length limit.
func DecodeSnapshot(r io.Reader) (Snapshot, error) {
	s := Snapshot{NextID: DefaultNextID}
	br := bufio.NewReader(r)
	first := true
	for {
		line, err := br.ReadString('\n')
		if err != nil && err != io.EOF {
			return s, err
		}
		if line != "" {
			line = strings.TrimSuffix(line, "\n")
			if first {
				first = false
				if n, convErr := strconv.Atoi(strings.TrimSpace(line)); convErr == nil && n > 0 {
					s.NextID = n
				}
			} else if strings.TrimSpace(line) != "" {
				if p, decErr := DecodeLine(line); decErr == nil {
					s.Patients = append(s.Patients, p)
				}
			}
		}
		if err == io.EOF {
			return s, nil
		}
	}
}

// Normalize drops patients with a non-positive or repeated id and raises
// NextID above every stored id so identifiers are never reused.
func Normalize(s Snapshot) Snapshot {
	out := Snapshot{NextID: s.NextID, Patients: make([]Patient, 0, len(s.Patients))}
	if out.NextID <= 0 {
		out.NextID = DefaultNextID
	}
	seen := make(map[int]struct{}, len(s.Patients))
	for _, p := range s.Patients {
		if p.ID <= 0 {
			continue
		}
		if _, dup := seen[p.ID]; dup {
			continue
		}
		seen[p.ID] = struct{}{}
		out.Patients = append(out.Patients, p)
		if p.ID >= out.NextID {
			out.NextID = p.ID + 1
		}
	}
	return out
}

// FromWire decodes an inbound JSON document. Missing fields keep their zero
// value and any supplied id is discarded. Text fields must not contain line
// breaks since each record occupies exactly one stored line.
func FromWire(r io.Reader) (Patient, error) {
	var raw json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return Patient{}, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	if t := bytes.TrimSpace(raw); len(t) == 0 || t[0] != '{' {
		return Patient{}, fmt.Errorf("%w: document must be a JSON object", ErrInvalidDocument)
	}
	var p Patient
	if err := json.Unmarshal(raw, &p); err != nil {
		return Patient{}, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if p.Age < 0 {
		return Patient{}, fmt.Errorf("%w: age must not be negative", ErrInvalidDocument)
	}
	for name, v := range map[string]string{
		"name":      p.Name,
		"gender":    p.Gender,
		"contact":   p.Contact,
		"disease":   p.Disease,
		"admitDate": p.AdmitDate,
		"doctor":    p.Doctor,
		"room":      p.Room,
	} {
		if strings.ContainsAny(v, "\r\n") {
			return Patient{}, fmt.Errorf("%w: %s must not contain line breaks", ErrInvalidDocument, name)
		}
	}
	p.ID = 0
	return p, nil
}

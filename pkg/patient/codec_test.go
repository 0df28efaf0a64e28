package patient

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func samplePatient() Patient {
	return Patient{
		ID:        1001,
		Name:      "Alice Smith",
		Age:       30,
		Gender:    GenderFemale,
		Contact:   "555-0100",
		Disease:   "Flu",
		AdmitDate: "2024-01-15",
		Doctor:    "Dr. House",
		Room:      "101A",
	}
}

func TestLineRoundTrip(t *testing.T) {
	cases := []Patient{
		samplePatient(),
		{ID: 7},
		{ID: 42, Name: "Bob", Age: 0, Room: ""},
		{ID: 43, Name: "Carol", Room: "101\r"},
		{ID: 44, Name: " padded ", Doctor: "\r\n", Room: "12\r\n"},
		{ID: 45, Name: strings.Repeat("n", 2<<20)},
	}
	for _, want := range cases {
		got, err := DecodeLine(EncodeLine(want))
		if err != nil {
			t.Fatalf("decode %+v: %v", want, err)
		}
		if got != want {
			t.Fatalf("round trip mismatch for id %d", want.ID)
		}
	}
}

func TestEncodeLineFieldOrder(t *testing.T) {
	line := EncodeLine(samplePatient())
	want := "1001|Alice Smith|30|Female|555-0100|Flu|2024-01-15|Dr. House|101A"
	if line != want {
		t.Fatalf("got %q want %q", line, want)
	}
}

func TestDecodeLineMalformed(t *testing.T) {
	lines := []string{
		"1|a|2|b|c",
		"x|a|2|b|c|d|e|f|g",
		"1|a|old|b|c|d|e|f|g",
		"0|a|2|b|c|d|e|f|g",
		"1|a|2|b|c|d|e|f|g|h",
		"",
	}
	for _, l := range lines {
		if _, err := DecodeLine(l); !errors.Is(err, ErrMalformedLine) {
			t.Fatalf("line %q: expected ErrMalformedLine, got %v", l, err)
		}
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	in := Snapshot{NextID: 1003, Patients: []Patient{samplePatient(), {ID: 1002, Name: "Bob", Gender: GenderMale, Room: "7\r"}}}
	var buf bytes.Buffer
	if err := EncodeSnapshot(&buf, in); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "1003\n") {
		t.Fatalf("expected counter line first, got %q", buf.String())
	}
	out, err := DecodeSnapshot(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.NextID != 1003 || len(out.Patients) != 2 {
		t.Fatalf("unexpected snapshot: %+v", out)
	}
	if out.Patients[0] != in.Patients[0] || out.Patients[1] != in.Patients[1] {
		t.Fatalf("patients mismatch: %+v", out.Patients)
	}
}

func TestDecodeSnapshotSkipsMalformed(t *testing.T) {
	data := "1005\n1|a|2|b|c\n\n1004|Carl|50|Male|x|y|z|d|r\n"
	s, err := DecodeSnapshot(strings.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if s.NextID != 1005 {
		t.Fatalf("expected counter 1005, got %d", s.NextID)
	}
	if len(s.Patients) != 1 || s.Patients[0].Name != "Carl" {
		t.Fatalf("unexpected patients: %+v", s.Patients)
	}
}

func TestDecodeSnapshotBadCounter(t *testing.T) {
	s, err := DecodeSnapshot(strings.NewReader("garbage\n"))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if s.NextID != DefaultNextID || len(s.Patients) != 0 {
		t.Fatalf("unexpected snapshot: %+v", s)
	}

	s, _ = DecodeSnapshot(strings.NewReader(""))
	if s.NextID != DefaultNextID {
		t.Fatalf("empty input: expected %d, got %d", DefaultNextID, s.NextID)
	}
}

func TestDecodeSnapshotOverlongLine(t *testing.T) {
	long := EncodeLine(Patient{ID: 1002, Name: strings.Repeat("x", 3<<20)})
	doc := "1004\n1001|Alice|30|Female|||||\n" + long + "\n1003|Carol|50|Female|||||"
	s, err := DecodeSnapshot(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if s.NextID != 1004 || len(s.Patients) != 3 {
		t.Fatalf("unexpected snapshot: next=%d patients=%d", s.NextID, len(s.Patients))
	}
	if len(s.Patients[1].Name) != 3<<20 || s.Patients[2].Name != "Carol" {
		t.Fatalf("unexpected patients after overlong line")
	}
}

func TestNormalize(t *testing.T) {
	s := Normalize(Snapshot{NextID: 1001, Patients: []Patient{
		{ID: 1005, Name: "first"},
		{ID: 1005, Name: "dup"},
		{ID: 0, Name: "zero"},
		{ID: 1002, Name: "second"},
	}})
	if s.NextID != 1006 {
		t.Fatalf("expected next id 1006, got %d", s.NextID)
	}
	if len(s.Patients) != 2 || s.Patients[0].Name != "first" || s.Patients[1].Name != "second" {
		t.Fatalf("unexpected patients: %+v", s.Patients)
	}
}

func TestFromWire(t *testing.T) {
	p, err := FromWire(strings.NewReader(`{"id":77,"name":"Alice","age":30,"gender":"Female"}`))
	if err != nil {
		t.Fatalf("from wire: %v", err)
	}
	if p.ID != 0 {
		t.Fatalf("expected supplied id to be discarded, got %d", p.ID)
	}
	if p.Name != "Alice" || p.Age != 30 || p.Gender != GenderFemale || p.Room != "" {
		t.Fatalf("unexpected patient: %+v", p)
	}

	p, err = FromWire(strings.NewReader(`{}`))
	if err != nil || p != (Patient{}) {
		t.Fatalf("empty document: %+v %v", p, err)
	}
}

func TestFromWireInvalid(t *testing.T) {
	bodies := []string{
		``,
		`{"name":`,
		`[1,2]`,
		`null`,
		`{"age":"thirty"}`,
		`{"age":-1}`,
		`{"name":"x\n1002|Forged|99|Male|c|d|e|f|g\n"}`,
		`{"room":"101\r"}`,
		`{"doctor":"a\r\nb"}`,
	}
	for _, b := range bodies {
		if _, err := FromWire(strings.NewReader(b)); !errors.Is(err, ErrInvalidDocument) {
			t.Fatalf("body %q: expected ErrInvalidDocument, got %v", b, err)
		}
	}
}

func TestCountGenders(t *testing.T) {
	s := CountGenders([]Patient{
		{Gender: GenderMale},
		{Gender: "male"},
		{Gender: GenderFemale},
		{Gender: ""},
	})
	if s.Total != 4 || s.Male != 1 || s.Female != 1 || s.Other != 2 {
		t.Fatalf("unexpected stats: %+v", s)
	}
	if s.Total != s.Male+s.Female+s.Other {
		t.Fatalf("total does not add up: %+v", s)
	}
}

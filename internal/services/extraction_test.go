package services

import (
	"context"
	"testing"

	"github.com/openlend/docpipe-backend/internal/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return log
}

func TestMimeTypeFor(t *testing.T) {
	cases := []struct {
		file string
		want string
	}{
		{file: "statement.pdf", want: "application/pdf"},
		{file: "ID_FRONT.PNG", want: "image/png"},
		{file: "letter.jpeg", want: "image/jpeg"},
		{file: "scan.tiff", want: "image/tiff"},
		{file: "fixture.json", want: "application/json"},
		{file: "no_extension", want: "application/pdf"},
	}
	for _, tc := range cases {
		if got := mimeTypeFor(tc.file); got != tc.want {
			t.Fatalf("mimeTypeFor(%q)=%q, want %q", tc.file, got, tc.want)
		}
	}
}

func TestStubOCRClientDecodesFieldList(t *testing.T) {
	ocr := NewStubOCRClient(testLogger(t))
	raw := []byte(`[
		{"field_name": "gross_income", "raw_value": "$76,500.00", "confidence": 0.92},
		{"field_name": "employer", "raw_value": "Acme Corp", "confidence": 0.88}
	]`)

	fields, err := ocr.ExtractFields(context.Background(), "employment_letter", "application/json", raw)
	if err != nil {
		t.Fatalf("ExtractFields: %v", err)
	}
	if len(fields) != 2 {
		t.Fatalf("fields=%d, want 2", len(fields))
	}
	if fields[0].FieldName != "gross_income" || fields[0].Confidence != 0.92 {
		t.Fatalf("first field decoded wrong: %+v", fields[0])
	}
}

func TestStubOCRClientRejectsGarbage(t *testing.T) {
	ocr := NewStubOCRClient(testLogger(t))
	if _, err := ocr.ExtractFields(context.Background(), "bank_statement", "application/pdf", []byte("%PDF-1.4")); err == nil {
		t.Fatalf("expected error for non-JSON document")
	}
}

// Package roster reads the student list used to generate exams.
// The input is a CSV file with a header row; the "name" and "email" columns
// are required, any other column is ignored.
package roster

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gaurav-prasanna/examsplit/core"
)

// Load reads the roster at path.
func Load(path string) ([]core.Student, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening roster: %w", err)
	}
	defer f.Close()

	students, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("roster %s: %w", path, err)
	}
	return students, nil
}

// Parse reads roster rows from r.
func Parse(r io.Reader) ([]core.Student, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("missing header row")
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	nameCol, emailCol := -1, -1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))) {
		case "name":
			nameCol = i
		case "email":
			emailCol = i
		}
	}
	if nameCol < 0 || emailCol < 0 {
		return nil, fmt.Errorf("header must have name and email columns, got %v", header)
	}

	var students []core.Student
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row: %w", err)
		}
		if blank(rec) {
			continue
		}
		line, _ := cr.FieldPos(0)
		if nameCol >= len(rec) || emailCol >= len(rec) {
			return nil, fmt.Errorf("line %d: expected name and email columns", line)
		}
		email := strings.TrimSpace(rec[emailCol])
		id := StudentID(email)
		if id == "" {
			return nil, fmt.Errorf("line %d: empty email", line)
		}
		students = append(students, core.Student{
			ID:    id,
			Name:  strings.TrimSpace(rec[nameCol]),
			Email: email,
		})
	}
	return students, nil
}

// StudentID returns the local part of an email address.
func StudentID(email string) string {
	id, _, _ := strings.Cut(email, "@")
	return id
}

func blank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

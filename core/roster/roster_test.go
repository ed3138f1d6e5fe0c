package roster

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/gaurav-prasanna/examsplit/core"
)

func TestParse(t *testing.T) {
	in := "\ufeffGroup,Name,Email\n" +
		"G1,Ana Pérez,ana.perez@uni.es\n" +
		",,\n" +
		"G1,\"Ben, Jr. \",ben@uni.es\n"
	got, err := Parse(strings.NewReader(in))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := []core.Student{
		{ID: "ana.perez", Name: "Ana Pérez", Email: "ana.perez@uni.es"},
		{ID: "ben", Name: "Ben, Jr.", Email: "ben@uni.es"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected students %+v", got)
	}
}

func TestParseErrors(t *testing.T) {
	cases := map[string]string{
		"empty":          "",
		"missing column": "name,mail\nA,a@x\n",
		"short row":      "name,email\nA\n",
		"empty email":    "name,email\nA,@x\n",
	}
	for name, in := range cases {
		if _, err := Parse(strings.NewReader(in)); err == nil {
			t.Fatalf("%s: expect error", name)
		}
	}
}

func TestStudentID(t *testing.T) {
	for in, want := range map[string]string{"a.b@c.d": "a.b", "plain": "plain", "x@y@z": "x"} {
		if got := StudentID(in); got != want {
			t.Fatalf("%q: expect %q, got %q", in, want, got)
		}
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "group.csv")
	if err := os.WriteFile(path, []byte("name,email\nAna,ana@x\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil || len(got) != 1 || got[0].ID != "ana" {
		t.Fatalf("unexpected %+v (%v)", got, err)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Fatalf("expect error for missing file")
	}
}

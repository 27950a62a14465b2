package cmd

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func runShoppingList(t *testing.T, files fakeFileReader, args ...string) (*bytes.Buffer, *bytes.Buffer, error) {
	t.Helper()
	c := NewShoppingListCmd(files)
	out := new(bytes.Buffer)
	errOut := new(bytes.Buffer)
	c.SetOut(out)
	c.SetErr(errOut)
	c.SetArgs(args)
	err := c.Execute()
	return out, errOut, err
}

func TestNewShoppingListCmd_AggregatesAcrossFiles(t *testing.T) {
	files := fakeFileReader{
		"a.cook": "Mix @flour{200%g} and @sugar{50%g}.\n",
		"b.cook": "Add @flour{100%g} and a pinch of @saffron{}.\n",
	}
	out, _, err := runShoppingList(t, files, "a.cook", "b.cook")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "flour: 300 g\nsugar: 50 g\nsaffron\n"
	if out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
}

func TestNewShoppingListCmd_JSONOutput(t *testing.T) {
	files := fakeFileReader{"a.cook": "Mix @flour{200%g}.\n"}
	out, _, err := runShoppingList(t, files, "--json", "a.cook")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var entries []map[string]any
	if err := json.Unmarshal(out.Bytes(), &entries); err != nil {
		t.Fatalf("output is not valid JSON: %v\noutput: %s", err, out.String())
	}
	if len(entries) != 1 || entries[0]["name"] != "flour" {
		t.Errorf("entries = %v, want a single flour entry", entries)
	}
}

func TestNewShoppingListCmd_AisleCategorization(t *testing.T) {
	files := fakeFileReader{
		"a.cook":     "Mix @flour{200%g} and @saffron{}.\n",
		"aisle.conf": "[baking]\nflour\nsugar\n",
	}
	out, _, err := runShoppingList(t, files, "--aisle", "aisle.conf", "a.cook")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "[baking]\nflour: 200 g\n\n[other]\nsaffron\n"
	if out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
}

func TestNewShoppingListCmd_AisleSynonymsMerge(t *testing.T) {
	files := fakeFileReader{
		"a.cook":     "Drain @tuna{100%g} and @chicken of the sea{200%g}.\n",
		"aisle.conf": "[canned goods]\ntuna|chicken of the sea\n",
	}
	out, _, err := runShoppingList(t, files, "--aisle", "aisle.conf", "a.cook")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(out.String(), "tuna: 300 g") {
		t.Errorf("expected synonyms merged into \"tuna: 300 g\", got: %s", out.String())
	}
	if strings.Contains(out.String(), "chicken of the sea") {
		t.Errorf("expected the synonym folded away, got: %s", out.String())
	}
}

func TestNewShoppingListCmd_MissingFile(t *testing.T) {
	if _, _, err := runShoppingList(t, fakeFileReader{}, "nope.cook"); err == nil {
		t.Error("expected error when a recipe file cannot be read")
	}
}

func TestNewShoppingListCmd_MissingAisleFile(t *testing.T) {
	files := fakeFileReader{"a.cook": "Mix @flour{200%g}.\n"}
	if _, _, err := runShoppingList(t, files, "--aisle", "nope.conf", "a.cook"); err == nil {
		t.Error("expected error when the aisle configuration cannot be read")
	}
}

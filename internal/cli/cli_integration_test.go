package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runCLI(t *testing.T, dir string, args ...string) string {
	t.Helper()
	root := NewRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--dir", dir, "--format", "json"}, args...))
	if err := root.Execute(); err != nil {
		t.Fatalf("satchel %s: %v\nstderr: %s", strings.Join(args, " "), err, errOut.String())
	}
	return out.String()
}

// runCLIHere is runCLI without --dir, for commands that discover the
// workspace from the working directory.
func runCLIHere(t *testing.T, args ...string) string {
	t.Helper()
	root := NewRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--format", "json"}, args...))
	if err := root.Execute(); err != nil {
		t.Fatalf("satchel %s: %v\nstderr: %s", strings.Join(args, " "), err, errOut.String())
	}
	return out.String()
}

func decode(t *testing.T, out string) map[string]any {
	t.Helper()
	var v map[string]any
	if err := json.Unmarshal([]byte(out), &v); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	return v
}

func dataList(t *testing.T, out string) []any {
	t.Helper()
	list, ok := decode(t, out)["data"].([]any)
	if !ok {
		t.Fatalf("no data list in %q", out)
	}
	return list
}

// chdir is t.Chdir for pre-1.24 toolchains: change into dir and restore
// the working directory when the test ends.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir %s: %v", dir, err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatalf("chdir back to %s: %v", prev, err)
		}
	})
}

func TestInitReportsParentWorkspace(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "nested")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	chdir(t, root)
	first := decode(t, runCLIHere(t, "init"))["data"].(map[string]any)
	if first["existing"].(bool) {
		t.Fatalf("fresh init flagged as existing: %v", first)
	}

	// Init from a subdirectory finds the parent workspace and says so.
	chdir(t, sub)
	again := decode(t, runCLIHere(t, "init"))["data"].(map[string]any)
	if !again["existing"].(bool) || again["dir"] != first["dir"] {
		t.Fatalf("init in subdir should report the parent workspace: %v vs %v", again, first)
	}

	forced := decode(t, runCLIHere(t, "init", "--here"))["data"].(map[string]any)
	if forced["existing"].(bool) || forced["dir"] == first["dir"] {
		t.Fatalf("--here should create a new workspace here: %v", forced)
	}
}

func TestAddAndFilteredList(t *testing.T) {
	dir := t.TempDir()
	runCLI(t, dir, "init")
	runCLI(t, dir, "items", "add", "--title", "Go notes", "--type", "note", "--tag", "go")
	runCLI(t, dir, "items", "add", "--title", "Paper", "--type", "pdf", "--tag", "research")

	out := runCLI(t, dir, "items", "list", "--type", "pdf")
	items := dataList(t, out)
	if len(items) != 1 {
		t.Fatalf("filtered list: got %d items, want 1", len(items))
	}
	it := items[0].(map[string]any)
	if it["title"] != "Paper" {
		t.Fatalf("filtered list: got %v", it["title"])
	}
}

func TestScopeFilterPersistsAcrossInvocations(t *testing.T) {
	dir := t.TempDir()
	runCLI(t, dir, "items", "add", "--title", "keep", "--tag", "go")
	runCLI(t, dir, "items", "add", "--title", "drop", "--tag", "misc")

	out := runCLI(t, dir, "items", "list", "--tag", "go")
	if len(dataList(t, out)) != 1 {
		t.Fatalf("tag filter: %s", out)
	}

	// A bare list picks the remembered filter back up.
	out = runCLI(t, dir, "items", "list")
	if len(dataList(t, out)) != 1 {
		t.Fatalf("remembered filter not applied: %s", out)
	}

	out = runCLI(t, dir, "items", "list", "--clear")
	if len(dataList(t, out)) != 2 {
		t.Fatalf("clear did not reset the filter: %s", out)
	}
}

func TestSavedFilterRoundTrip(t *testing.T) {
	dir := t.TempDir()
	runCLI(t, dir, "items", "add", "--title", "Go notes", "--tag", "go")
	runCLI(t, dir, "items", "add", "--title", "Other")

	runCLI(t, dir, "items", "list", "--tag", "go", "--save", "go stuff")

	out := runCLI(t, dir, "filters", "list")
	saved := dataList(t, out)
	if len(saved) != 1 {
		t.Fatalf("saved filters: %s", out)
	}
	id := saved[0].(map[string]any)["id"].(string)

	out = runCLI(t, dir, "items", "list", "--clear", "--filter", id)
	if len(dataList(t, out)) != 1 {
		t.Fatalf("saved filter did not apply: %s", out)
	}
}

func TestSpacesReorderPersists(t *testing.T) {
	dir := t.TempDir()
	runCLI(t, dir, "spaces", "add", "--name", "Alpha", "--category", "work")
	runCLI(t, dir, "spaces", "add", "--name", "Beta", "--category", "work")

	out := runCLI(t, dir, "spaces", "list")
	grouped := decode(t, out)["data"].(map[string]any)["spaces"].(map[string]any)
	work := grouped["work"].([]any)
	if len(work) != 2 {
		t.Fatalf("work spaces: %s", out)
	}
	alpha := work[0].(map[string]any)["id"].(string)
	beta := work[1].(map[string]any)["id"].(string)

	runCLI(t, dir, "spaces", "reorder", beta, "--above", alpha)

	out = runCLI(t, dir, "spaces", "list")
	work = decode(t, out)["data"].(map[string]any)["spaces"].(map[string]any)["work"].([]any)
	if work[0].(map[string]any)["id"] != beta || work[1].(map[string]any)["id"] != alpha {
		t.Fatalf("reorder not persisted: %s", out)
	}
}

func TestMoveSpaceAcrossCategories(t *testing.T) {
	dir := t.TempDir()
	runCLI(t, dir, "spaces", "add", "--name", "Floaty", "--category", "personal")

	out := runCLI(t, dir, "spaces", "list")
	personal := decode(t, out)["data"].(map[string]any)["spaces"].(map[string]any)["personal"].([]any)
	id := personal[0].(map[string]any)["id"].(string)

	runCLI(t, dir, "spaces", "move", id, "--to", "team")

	out = runCLI(t, dir, "spaces", "list")
	grouped := decode(t, out)["data"].(map[string]any)["spaces"].(map[string]any)
	team := grouped["team"].([]any)
	if len(team) != 1 || team[0].(map[string]any)["id"] != id {
		t.Fatalf("space not moved: %s", out)
	}
	if _, stillThere := grouped["personal"]; stillThere {
		t.Fatalf("space still grouped under personal: %s", out)
	}
}

func TestDeleteAndRestore(t *testing.T) {
	dir := t.TempDir()
	runCLI(t, dir, "items", "add", "--title", "ephemeral")

	out := runCLI(t, dir, "items", "list")
	id := dataList(t, out)[0].(map[string]any)["id"].(string)

	runCLI(t, dir, "items", "delete", id)
	out = runCLI(t, dir, "items", "list")
	if len(dataList(t, out)) != 0 {
		t.Fatalf("delete did not hide item: %s", out)
	}

	runCLI(t, dir, "items", "restore", id)
	out = runCLI(t, dir, "items", "list")
	if len(dataList(t, out)) != 1 {
		t.Fatalf("restore did not bring item back: %s", out)
	}
}

func TestUndoRestoresLastDeleteBatch(t *testing.T) {
	dir := t.TempDir()
	runCLI(t, dir, "items", "add", "--title", "one")
	runCLI(t, dir, "items", "add", "--title", "two")

	out := runCLI(t, dir, "items", "list")
	items := dataList(t, out)
	a := items[0].(map[string]any)["id"].(string)
	b := items[1].(map[string]any)["id"].(string)

	runCLI(t, dir, "items", "delete", a, b)
	if len(dataList(t, runCLI(t, dir, "items", "list"))) != 0 {
		t.Fatalf("delete left items behind")
	}

	// Undo consumes the batch; a second undo finds nothing.
	runCLI(t, dir, "items", "undo")
	if len(dataList(t, runCLI(t, dir, "items", "list"))) != 2 {
		t.Fatalf("undo did not restore the batch")
	}
	out = runCLI(t, dir, "--format", "table", "items", "undo")
	if !strings.Contains(out, "nothing to undo") {
		t.Fatalf("second undo should be a no-op, got: %s", out)
	}
}

func TestExportItemWritesMarkdown(t *testing.T) {
	dir := t.TempDir()
	runCLI(t, dir, "items", "add", "--title", "Exported", "--tag", "go", "--content", "body text")

	id := dataList(t, runCLI(t, dir, "items", "list"))[0].(map[string]any)["id"].(string)

	outDir := t.TempDir()
	out := runCLI(t, dir, "items", "export", id, "--to", outDir)
	written := decode(t, out)["data"].(map[string]any)["written"].([]any)
	if len(written) != 1 {
		t.Fatalf("export wrote %v", written)
	}
	if !strings.HasSuffix(written[0].(string), id+".md") {
		t.Fatalf("unexpected export path %v", written[0])
	}
}

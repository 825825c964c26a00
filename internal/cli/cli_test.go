package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"associate-os/internal/store"
)

func runCLI(t *testing.T, args []string) (stdout []byte, stderr []byte, err error) {
	t.Helper()

	cmd := NewRootCmd()

	var outBuf bytes.Buffer
	var errBuf bytes.Buffer
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	cmd.SetArgs(args)

	e := cmd.Execute()
	return outBuf.Bytes(), errBuf.Bytes(), e
}

// env is one isolated data directory plus a config path that does not exist,
// so runs never read the user's ~/.associate-os.
type env struct {
	t   *testing.T
	dir string
	cfg string
}

func newEnv(t *testing.T) env {
	t.Helper()
	root := t.TempDir()
	return env{t: t, dir: filepath.Join(root, "data"), cfg: filepath.Join(root, "config.toml")}
}

func (e env) args(args ...string) []string {
	return append([]string{"--dir", e.dir, "--config", e.cfg}, args...)
}

func (e env) run(args ...string) map[string]any {
	e.t.Helper()
	out, errOut, err := runCLI(e.t, e.args(args...))
	if err != nil {
		e.t.Fatalf("%s: %v\nstderr: %s", strings.Join(args, " "), err, string(errOut))
	}
	var env map[string]any
	if err := json.Unmarshal(out, &env); err != nil {
		e.t.Fatalf("%s: invalid json: %v\nraw: %s", strings.Join(args, " "), err, string(out))
	}
	return env
}

func (e env) fail(args ...string) (string, error) {
	e.t.Helper()
	_, errOut, err := runCLI(e.t, e.args(args...))
	if err == nil {
		e.t.Fatalf("%s: expected error", strings.Join(args, " "))
	}
	return string(errOut), err
}

func dataMap(t *testing.T, env map[string]any) map[string]any {
	t.Helper()
	m, ok := env["data"].(map[string]any)
	if !ok {
		t.Fatalf("expected object data, got %#v", env["data"])
	}
	return m
}

func dataList(t *testing.T, env map[string]any) []any {
	t.Helper()
	xs, ok := env["data"].([]any)
	if !ok {
		t.Fatalf("expected array data, got %#v", env["data"])
	}
	return xs
}

func TestTasksAddListShow(t *testing.T) {
	t.Parallel()
	e := newEnv(t)

	first := dataMap(t, e.run("tasks", "add", "First", "--due", "2024-05-01", "--matter", "M-100", "--priority", "high"))
	if first["status"] != "TODO" || first["priority"] != "HIGH" || first["matterRef"] != "M-100" {
		t.Fatalf("unexpected task: %#v", first)
	}
	if first["dueDate"] != "2024-05-01" {
		t.Fatalf("dueDate = %v", first["dueDate"])
	}
	second := dataMap(t, e.run("tasks", "add", "Second"))
	if second["matterRef"] != "General" || second["priority"] != "MEDIUM" {
		t.Fatalf("defaults not applied: %#v", second)
	}

	list := e.run("tasks", "list")
	items := dataList(t, list)
	if len(items) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(items))
	}
	if items[0].(map[string]any)["id"] != second["id"] {
		t.Fatalf("newest task must be first, got %#v", items[0])
	}

	filtered := dataList(t, e.run("tasks", "list", "--matter", "M-100"))
	if len(filtered) != 1 || filtered[0].(map[string]any)["id"] != first["id"] {
		t.Fatalf("matter filter: %#v", filtered)
	}

	shown := dataMap(t, e.run("tasks", "show", first["id"].(string)))
	if shown["title"] != "First" {
		t.Fatalf("show: %#v", shown)
	}
}

func TestTasksMutations(t *testing.T) {
	t.Parallel()
	e := newEnv(t)

	id := dataMap(t, e.run("tasks", "add", "Draft", "--due", "2024-05-01"))["id"].(string)

	if got := dataMap(t, e.run("tasks", "title", id, "Draft brief"))["title"]; got != "Draft brief" {
		t.Fatalf("title = %v", got)
	}
	if got := dataMap(t, e.run("tasks", "move", id, "review"))["status"]; got != "REVIEW" {
		t.Fatalf("status = %v", got)
	}
	if got := dataMap(t, e.run("tasks", "priority", id, "low"))["priority"]; got != "LOW" {
		t.Fatalf("priority = %v", got)
	}
	if got := dataMap(t, e.run("tasks", "date", id, "2024-06-30"))["dueDate"]; got != "2024-06-30" {
		t.Fatalf("dueDate = %v", got)
	}
	if got := dataMap(t, e.run("tasks", "flag", id, "2024-06-01"))["flaggedDate"]; got != "2024-06-01" {
		t.Fatalf("flaggedDate = %v", got)
	}
	if got := dataMap(t, e.run("tasks", "flag", id, "--clear"))["flaggedDate"]; got != nil {
		t.Fatalf("flaggedDate after clear = %v", got)
	}
	if got := dataMap(t, e.run("tasks", "matter", id, "M-7"))["matterRef"]; got != "M-7" {
		t.Fatalf("matterRef = %v", got)
	}

	if got := dataMap(t, e.run("tasks", "time", id, "--add", "25m"))["timeTracked"]; got != float64(1500) {
		t.Fatalf("timeTracked = %v", got)
	}
	if got := dataMap(t, e.run("tasks", "time", id, "--add=-1h"))["timeTracked"]; got != float64(0) {
		t.Fatalf("timeTracked must clamp at 0, got %v", got)
	}

	if _, err := e.fail("tasks", "move", id, "ARCHIVED"); err == nil {
		t.Fatalf("expected invalid status error")
	}
	if _, err := e.fail("tasks", "title", id, "   "); err == nil {
		t.Fatalf("expected empty title error")
	}
}

func TestTasksDependenciesAndDelete(t *testing.T) {
	t.Parallel()
	e := newEnv(t)

	a := dataMap(t, e.run("tasks", "add", "A"))["id"].(string)
	b := dataMap(t, e.run("tasks", "add", "B"))["id"].(string)

	deps := dataMap(t, e.run("tasks", "depend", a, b))["dependencies"].([]any)
	if len(deps) != 1 || deps[0] != b {
		t.Fatalf("dependencies = %#v", deps)
	}
	// Adding twice keeps a single entry.
	deps = dataMap(t, e.run("tasks", "depend", a, b))["dependencies"].([]any)
	if len(deps) != 1 {
		t.Fatalf("dependencies after re-add = %#v", deps)
	}

	e.run("tasks", "delete", b)

	// The dependency on the deleted task is left in place until doctor --fix.
	deps = dataMap(t, e.run("tasks", "show", a))["dependencies"].([]any)
	if len(deps) != 1 {
		t.Fatalf("dependency should survive delete, got %#v", deps)
	}

	doctor := e.run("doctor", "--fix")
	if got := doctor["meta"].(map[string]any)["pruned"]; got != float64(1) {
		t.Fatalf("pruned = %v", got)
	}
	deps = dataMap(t, e.run("tasks", "show", a))["dependencies"].([]any)
	if len(deps) != 0 {
		t.Fatalf("dependency should be pruned, got %#v", deps)
	}
}

func TestNotFoundErrors(t *testing.T) {
	t.Parallel()
	e := newEnv(t)

	stderr, err := e.fail("tasks", "show", "missing")
	var nf notFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected notFoundError, got %T %v", err, err)
	}
	if !strings.Contains(stderr, "task not found: missing") {
		t.Fatalf("stderr = %q", stderr)
	}

	id := dataMap(t, e.run("tasks", "add", "A"))["id"].(string)
	if _, err := e.fail("subtasks", "toggle", id, "nope"); !errors.As(err, &nf) {
		t.Fatalf("expected subtask not found, got %v", err)
	}
	if _, err := e.fail("team", "leader", "nobody"); !errors.As(err, &nf) {
		t.Fatalf("expected member not found, got %v", err)
	}
	if _, err := e.fail("resources", "delete", "nothing"); !errors.As(err, &nf) {
		t.Fatalf("expected resource not found, got %v", err)
	}
}

func TestSubtasksTreeAndEdges(t *testing.T) {
	t.Parallel()
	e := newEnv(t)

	taskID := dataMap(t, e.run("tasks", "add", "Brief"))["id"].(string)
	a := dataMap(t, e.run("subtasks", "add", taskID, "Research"))["id"].(string)
	b := dataMap(t, e.run("subtasks", "add", taskID, "Sources", "--parent", a))["id"].(string)
	c := dataMap(t, e.run("subtasks", "add", taskID, "Write"))["id"].(string)

	task := dataMap(t, e.run("tasks", "show", taskID))
	top := task["subtasks"].([]any)
	if len(top) != 2 {
		t.Fatalf("expected 2 top-level subtasks, got %d", len(top))
	}
	nested := top[0].(map[string]any)["subtasks"].([]any)
	if len(nested) != 1 || nested[0].(map[string]any)["id"] != b {
		t.Fatalf("nested = %#v", nested)
	}

	if got := dataMap(t, e.run("subtasks", "toggle", taskID, b))["done"]; got != true {
		t.Fatalf("done = %v", got)
	}
	if got := dataMap(t, e.run("subtasks", "type", taskID, c, "email"))["type"]; got != "EMAIL" {
		t.Fatalf("type = %v", got)
	}
	if got := dataMap(t, e.run("subtasks", "payload", taskID, c, "to: court"))["payload"]; got != "to: court" {
		t.Fatalf("payload = %v", got)
	}
	pos := dataMap(t, e.run("subtasks", "position", taskID, c, "--x", "120.5", "--y", "-4"))
	if pos["x"] != 120.5 || pos["y"] != float64(-4) {
		t.Fatalf("position = %v,%v", pos["x"], pos["y"])
	}

	edges := dataList(t, e.run("subtasks", "connect", taskID, a, c))
	if len(edges) != 1 {
		t.Fatalf("edges = %#v", edges)
	}
	edges = dataList(t, e.run("subtasks", "connect", taskID, b, c))
	if len(edges) != 2 {
		t.Fatalf("edges = %#v", edges)
	}
	if _, err := e.fail("subtasks", "connect", taskID, a, "ghost"); err == nil {
		t.Fatalf("connect to a missing subtask must fail")
	}

	out, _, err := runCLI(t, e.args("subtasks", "tree", taskID))
	if err != nil {
		t.Fatalf("tree: %v", err)
	}
	for _, want := range []string{"Brief", "Research", "Sources", "Write", "(EMAIL)"} {
		if !strings.Contains(string(out), want) {
			t.Fatalf("tree output missing %q:\n%s", want, out)
		}
	}

	deleted := dataMap(t, e.run("subtasks", "delete", taskID, a))["deleted"].([]any)
	if len(deleted) != 2 {
		t.Fatalf("delete should remove the subtree, got %#v", deleted)
	}
	edges = dataList(t, e.run("subtasks", "edges", taskID))
	if len(edges) != 0 {
		t.Fatalf("edges after delete = %#v", edges)
	}

	edges = dataList(t, e.run("subtasks", "disconnect", taskID, c, a))
	if len(edges) != 0 {
		t.Fatalf("disconnect of a missing edge = %#v", edges)
	}
}

func TestSettingsAndTeam(t *testing.T) {
	t.Parallel()
	e := newEnv(t)

	settings := dataMap(t, e.run("settings", "show"))
	if settings["myShortsign"] != "ME" || settings["darkMode"] != true {
		t.Fatalf("default settings = %#v", settings)
	}
	if got := dataMap(t, e.run("settings", "shortsign", "JD"))["myShortsign"]; got != "JD" {
		t.Fatalf("shortsign = %v", got)
	}
	if got := dataMap(t, e.run("settings", "dark-mode", "toggle"))["darkMode"]; got != false {
		t.Fatalf("darkMode = %v", got)
	}
	if got := dataMap(t, e.run("settings", "dark-mode", "on"))["darkMode"]; got != true {
		t.Fatalf("darkMode = %v", got)
	}
	if got := dataMap(t, e.run("settings", "auth", "on"))["isAuthenticated"]; got != true {
		t.Fatalf("isAuthenticated = %v", got)
	}
	if _, err := e.fail("settings", "auth", "maybe"); err == nil {
		t.Fatalf("expected invalid on/off")
	}

	ann := dataMap(t, e.run("team", "add", "--name", "Ann Law", "--shortsign", "AL", "--leader"))
	if ann["isLeader"] != true || ann["color"] == "" {
		t.Fatalf("ann = %#v", ann)
	}
	bob := dataMap(t, e.run("team", "add", "--name", "Bob", "--shortsign", "BB", "--email", "bob@example.com"))

	team := dataList(t, e.run("team", "leader", bob["id"].(string)))
	leaders := 0
	for _, m := range team {
		if m.(map[string]any)["isLeader"] == true {
			leaders++
			if m.(map[string]any)["id"] != bob["id"] {
				t.Fatalf("wrong leader: %#v", m)
			}
		}
	}
	if leaders != 1 {
		t.Fatalf("expected exactly one leader, got %d", leaders)
	}

	updated := dataMap(t, e.run("team", "update", ann["id"].(string), "--email", "ann@example.com"))
	if updated["email"] != "ann@example.com" || updated["name"] != "Ann Law" {
		t.Fatalf("update = %#v", updated)
	}

	e.run("team", "remove", ann["id"].(string))
	list := e.run("team", "list")
	if n := len(dataList(t, list)); n != 1 {
		t.Fatalf("team size = %d", n)
	}
	if got := list["meta"].(map[string]any)["leader"]; got != bob["id"] {
		t.Fatalf("leader meta = %v", got)
	}
}

func TestResources(t *testing.T) {
	t.Parallel()
	e := newEnv(t)

	acme := dataMap(t, e.run("resources", "add", "Acme AB", "--identifier", "556000-0000"))
	if acme["type"] != "COMPANY" {
		t.Fatalf("type = %v", acme["type"])
	}
	e.run("resources", "add", "Jane Doe", "--type", "person")

	if n := len(dataList(t, e.run("resources", "list", "--type", "PERSON"))); n != 1 {
		t.Fatalf("person count = %d", n)
	}
	upd := dataMap(t, e.run("resources", "update", acme["id"].(string), "--address", "Main St 1"))
	if upd["address"] != "Main St 1" || upd["identifier"] != "556000-0000" {
		t.Fatalf("update = %#v", upd)
	}
	if _, err := e.fail("resources", "add", "Bad", "--type", "ROBOT"); err == nil {
		t.Fatalf("expected invalid type")
	}
	e.run("resources", "delete", acme["id"].(string))
	if n := len(dataList(t, e.run("resources", "list"))); n != 1 {
		t.Fatalf("resource count = %d", n)
	}
}

func TestSnapshotsCreateRestoreByName(t *testing.T) {
	t.Parallel()
	e := newEnv(t)

	e.run("tasks", "add", "Keep")
	created := dataMap(t, e.run("snapshots", "create", "before-cleanup"))
	key := created["key"].(string)
	if !strings.HasSuffix(key, " - before-cleanup") {
		t.Fatalf("key = %q", key)
	}

	e.run("tasks", "add", "Scratch")
	if n := len(dataList(t, e.run("tasks", "list"))); n != 2 {
		t.Fatalf("task count = %d", n)
	}

	infos := dataList(t, e.run("snapshots", "list"))
	if len(infos) != 1 || infos[0].(map[string]any)["key"] != key {
		t.Fatalf("snapshots = %#v", infos)
	}

	e.run("snapshots", "restore", "before-cleanup")
	items := dataList(t, e.run("tasks", "list"))
	if len(items) != 1 || items[0].(map[string]any)["title"] != "Keep" {
		t.Fatalf("after restore = %#v", items)
	}

	if _, err := e.fail("snapshots", "restore", "no-such"); !errors.Is(err, store.ErrSnapshotNotFound) {
		t.Fatalf("expected ErrSnapshotNotFound, got %v", err)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	t.Parallel()
	src := newEnv(t)
	src.run("tasks", "add", "Exported", "--due", "2024-05-01")

	raw, _, err := runCLI(t, src.args("export"))
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	outDir := t.TempDir()
	res := dataMap(t, src.run("export", "--to", outDir))
	path := res["path"].(string)
	if !strings.HasPrefix(filepath.Base(path), "lawcp_backup_") || filepath.Ext(path) != ".json" {
		t.Fatalf("export path = %q", path)
	}
	onDisk, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if !bytes.Equal(onDisk, raw) {
		t.Fatalf("file export differs from stdout export")
	}

	dst := newEnv(t)
	dst.run("tasks", "add", "Overwritten")
	imported := dataMap(t, dst.run("import", path))
	if imported["tasks"] != float64(1) {
		t.Fatalf("imported = %#v", imported)
	}
	items := dataList(t, dst.run("tasks", "list"))
	if len(items) != 1 || items[0].(map[string]any)["title"] != "Exported" {
		t.Fatalf("after import = %#v", items)
	}
}

func TestImportRejectsInvalidDocuments(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	id := dataMap(t, e.run("tasks", "add", "Survivor"))["id"].(string)

	bad := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(bad, []byte(`[{"id":"x"}]`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := e.fail("import", bad); !errors.Is(err, store.ErrImportInvalid) {
		t.Fatalf("expected ErrImportInvalid, got %v", err)
	}
	if got := dataMap(t, e.run("tasks", "show", id))["title"]; got != "Survivor" {
		t.Fatalf("live document changed: %v", got)
	}
}

func TestDoctorCleanStore(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	e.run("tasks", "add", "Fine")

	out := e.run("doctor", "--fail")
	meta := out["meta"].(map[string]any)
	if meta["issues"] != float64(0) || meta["hasErrors"] != false {
		t.Fatalf("meta = %#v", meta)
	}
	if _, ok := out["_hints"].([]any); !ok {
		t.Fatalf("expected _hints")
	}
}

func TestYAMLOutput(t *testing.T) {
	t.Parallel()
	e := newEnv(t)

	out, _, err := runCLI(t, e.args("--format", "yaml", "settings", "show"))
	if err != nil {
		t.Fatalf("yaml: %v", err)
	}
	if !strings.Contains(string(out), "myShortsign: ME") {
		t.Fatalf("yaml output:\n%s", out)
	}
}

func TestConfigInitAndShow(t *testing.T) {
	t.Parallel()
	e := newEnv(t)

	res := dataMap(t, e.run("config", "init"))
	if res["path"] != e.cfg {
		t.Fatalf("path = %v", res["path"])
	}
	if _, err := e.fail("config", "init"); err == nil {
		t.Fatalf("second init without --force must fail")
	}
	shown := dataMap(t, e.run("config", "show"))
	if shown["namespace"] != store.DefaultNamespace || shown["product"] != store.DefaultProduct {
		t.Fatalf("config show = %#v", shown)
	}
	if shown["dataDir"] != e.dir {
		t.Fatalf("--dir must win over config, got %v", shown["dataDir"])
	}
}

func TestParseDate(t *testing.T) {
	t.Parallel()
	now := time.Date(2024, 4, 2, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "2024-05-01", want: "2024-05-01"},
		{in: "today", want: "2024-04-02"},
		{in: "Tomorrow", want: "2024-04-03"},
		{in: "+30d", want: "2024-05-02"},
		{in: "2024-04-02T23:30:00Z", want: "2024-04-02"},
		{in: "2024-02-30", wantErr: true},
		{in: "", wantErr: true},
		{in: "next week", wantErr: true},
	}
	for _, tt := range tests {
		got, err := parseDate(tt.in, now)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("parseDate(%q): expected error, got %q", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Fatalf("parseDate(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("parseDate(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPublishMatter(t *testing.T) {
	t.Parallel()
	e := newEnv(t)

	id := dataMap(t, e.run("tasks", "add", "Draft brief", "--matter", "M-100"))["id"].(string)
	e.run("subtasks", "add", id, "Research")

	to := t.TempDir()
	written := dataMap(t, e.run("publish", "matter", "M-100", "--to", to))["written"].([]any)
	if len(written) != 2 {
		t.Fatalf("written = %#v", written)
	}
	b, err := os.ReadFile(filepath.Join(to, "matters", "M-100", "tasks", id+".md"))
	if err != nil {
		t.Fatalf("read task page: %v", err)
	}
	if !strings.Contains(string(b), "- [ ] Research") {
		t.Fatalf("task page:\n%s", b)
	}

	page := dataMap(t, e.run("publish", "task", id, "--to", to))["written"].([]any)
	if len(page) != 1 || page[0] != filepath.Join(to, "tasks", id+".md") {
		t.Fatalf("task page = %#v", page)
	}
	if _, err := e.fail("publish", "task", id, "--to", to); err == nil {
		t.Fatalf("expected refusal to overwrite without --overwrite")
	}
	e.run("publish", "task", id, "--to", to, "--overwrite")
}

func TestDocs(t *testing.T) {
	t.Parallel()
	e := newEnv(t)

	topics := dataMap(t, e.run("docs"))["topics"].([]any)
	if len(topics) == 0 {
		t.Fatalf("expected topics")
	}
	out, _, err := runCLI(t, e.args("docs", "snapshots", "--raw"))
	if err != nil {
		t.Fatalf("docs snapshots: %v", err)
	}
	if !strings.HasPrefix(string(out), "# Snapshots") {
		t.Fatalf("docs output:\n%s", out)
	}
	if _, err := e.fail("docs", "nope"); err == nil {
		t.Fatalf("expected unknown topic error")
	}
}

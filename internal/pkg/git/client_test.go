package git

import (
	"strings"
	"testing"
)

func TestParseNumstat(t *testing.T) {
	out := "12\t3\tauth/login.go\n" +
		"5\t0\tREADME.md\n" +
		"-\t-\tassets/logo.png\n"

	diff := parseNumstat(out)

	if len(diff.Files) != 3 {
		t.Fatalf("files = %d, want 3", len(diff.Files))
	}

	first := diff.Files[0]
	if first.Path != "auth/login.go" || first.Additions != 12 || first.Deletions != 3 {
		t.Errorf("first file = %+v", first)
	}
	if first.ChangeType != ChangeTypeModified {
		t.Errorf("ChangeType = %v, want modified", first.ChangeType)
	}

	binary := diff.Files[2]
	if !binary.IsBinary {
		t.Error("dash stats should mark the file binary")
	}
	if binary.Additions != 0 || binary.Deletions != 0 {
		t.Errorf("binary stats = +%d -%d, want zero", binary.Additions, binary.Deletions)
	}

	if diff.TotalAdditions != 17 || diff.TotalDeletions != 3 {
		t.Errorf("totals = +%d -%d, want +17 -3", diff.TotalAdditions, diff.TotalDeletions)
	}
}

func TestParseNumstat_SkipsMalformedLines(t *testing.T) {
	diff := parseNumstat("garbage\n\n1\t1\tok.go\n")
	if len(diff.Files) != 1 || diff.Files[0].Path != "ok.go" {
		t.Errorf("files = %+v, want only ok.go", diff.Files)
	}
}

func TestSplitRenamePath(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantOld string
		wantNew string
	}{
		{"plain", "old.go => new.go", "old.go", "new.go"},
		{"braced", "internal/{auth => login}/handler.go", "internal/auth/handler.go", "internal/login/handler.go"},
		{"braced file", "cmd/{main.go => root.go}", "cmd/main.go", "cmd/root.go"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			old, newPath := splitRenamePath(tt.in)
			if old != tt.wantOld || newPath != tt.wantNew {
				t.Errorf("splitRenamePath(%q) = (%q, %q), want (%q, %q)",
					tt.in, old, newPath, tt.wantOld, tt.wantNew)
			}
		})
	}
}

func TestParseNumstat_Rename(t *testing.T) {
	diff := parseNumstat("2\t2\tinternal/{auth => login}/handler.go\n")

	fc := diff.Files[0]
	if fc.ChangeType != ChangeTypeRenamed {
		t.Errorf("ChangeType = %v, want renamed", fc.ChangeType)
	}
	if fc.OldPath != "internal/auth/handler.go" || fc.Path != "internal/login/handler.go" {
		t.Errorf("paths = (%q, %q)", fc.OldPath, fc.Path)
	}
}

const samplePatch = `diff --git a/auth/login.go b/auth/login.go
index 1111111..2222222 100644
--- a/auth/login.go
+++ b/auth/login.go
@@ -1,3 +1,4 @@
 package auth
+// login
diff --git a/newfile.go b/newfile.go
new file mode 100644
index 0000000..3333333
--- /dev/null
+++ b/newfile.go
@@ -0,0 +1 @@
+package main
diff --git a/gone.go b/gone.go
deleted file mode 100644
index 4444444..0000000
--- a/gone.go
+++ /dev/null
@@ -1 +0,0 @@
-package main
`

func TestSplitPatch(t *testing.T) {
	sections := splitPatch(samplePatch)

	if len(sections) != 3 {
		t.Fatalf("sections = %d, want 3", len(sections))
	}

	if sections[0].path != "auth/login.go" || sections[0].newFile || sections[0].deleted {
		t.Errorf("section 0 = %+v", sections[0])
	}
	if !strings.Contains(sections[0].text, "+// login") {
		t.Error("section 0 should carry its hunk text")
	}

	if sections[1].path != "newfile.go" || !sections[1].newFile {
		t.Errorf("section 1 = %+v, want new file", sections[1])
	}
	if sections[2].path != "gone.go" || !sections[2].deleted {
		t.Errorf("section 2 = %+v, want deleted", sections[2])
	}
}

func TestAttachPatches(t *testing.T) {
	diff := parseNumstat("1\t0\tauth/login.go\n1\t0\tnewfile.go\n0\t1\tgone.go\n")
	attachPatches(diff, samplePatch)

	if !strings.Contains(diff.Files[0].Patch, "+// login") {
		t.Error("patch not attached to modified file")
	}
	if diff.Files[1].ChangeType != ChangeTypeAdded {
		t.Errorf("ChangeType = %v, want added", diff.Files[1].ChangeType)
	}
	if diff.Files[2].ChangeType != ChangeTypeDeleted {
		t.Errorf("ChangeType = %v, want deleted", diff.Files[2].ChangeType)
	}
}

func TestParseDiffGitPath(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{"diff --git a/main.go b/main.go", "main.go"},
		{"diff --git a/old name.go b/new name.go", "new name.go"},
		{"not a diff line", ""},
	}

	for _, tt := range tests {
		if got := parseDiffGitPath(tt.line); got != tt.want {
			t.Errorf("parseDiffGitPath(%q) = %q, want %q", tt.line, got, tt.want)
		}
	}
}

func TestDiffHelpers(t *testing.T) {
	diff := &Diff{Files: []FileChange{
		{Path: "a.go", Patch: "patch-a\n"},
		{Path: "b.go", Patch: "patch-b\n"},
	}}

	paths := diff.ChangedPaths()
	if len(paths) != 2 || paths[0] != "a.go" || paths[1] != "b.go" {
		t.Errorf("ChangedPaths() = %v", paths)
	}

	if got := diff.Unified(); got != "patch-a\npatch-b\n" {
		t.Errorf("Unified() = %q", got)
	}
}

func TestChangeTypeString(t *testing.T) {
	tests := []struct {
		ct   ChangeType
		want string
	}{
		{ChangeTypeAdded, "added"},
		{ChangeTypeModified, "modified"},
		{ChangeTypeDeleted, "deleted"},
		{ChangeTypeRenamed, "renamed"},
		{ChangeType(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.ct.String(); got != tt.want {
			t.Errorf("ChangeType(%d).String() = %q, want %q", tt.ct, got, tt.want)
		}
	}
}

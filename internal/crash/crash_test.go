/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package crash

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"storycanvas/internal/domain"
	"storycanvas/internal/storage"
)

func TestWriteReportWithoutProject(t *testing.T) {
	path, err := writeReport(nil, "boom", []byte("stack trace here"))
	if err != nil {
		t.Fatalf("writeReport: %v", err)
	}
	defer os.Remove(path)
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	s := string(b)
	if !strings.Contains(s, "Story Canvas Crash Report") {
		t.Fatalf("report missing header: %q", s)
	}
	if !strings.Contains(s, "Panic: boom") || !strings.Contains(s, "stack trace here") {
		t.Fatalf("report missing panic details: %q", s)
	}
}

func TestRecoverAutosavesProject(t *testing.T) {
	root := filepath.Join(t.TempDir(), "proj")
	ph, err := storage.InitProject(root, domain.Project{Name: "Crash Test"})
	if err != nil {
		t.Fatalf("InitProject: %v", err)
	}
	// Mutate in memory only; the autosave must capture this state.
	ph.Project.Metadata.Notes = "unsaved edit"

	exitCode := -1
	exitFn = func(code int) { exitCode = code }
	defer func() { exitFn = os.Exit }()

	func() {
		defer Recover(ph)
		panic("kaboom")
	}()

	if exitCode != 2 {
		t.Fatalf("exit code = %d, want 2", exitCode)
	}

	bdir := filepath.Join(root, storage.BackupsDirName)
	ents, err := os.ReadDir(bdir)
	if err != nil {
		t.Fatalf("read backups: %v", err)
	}
	var haveReport, haveAutosave bool
	for _, e := range ents {
		name := e.Name()
		if strings.HasPrefix(name, "crash-") && strings.HasSuffix(name, ".log") {
			haveReport = true
		}
		if strings.Contains(name, ".autosave-") {
			haveAutosave = true
			b, err := os.ReadFile(filepath.Join(bdir, name))
			if err != nil {
				t.Fatalf("read autosave: %v", err)
			}
			if !strings.Contains(string(b), "unsaved edit") {
				t.Fatalf("autosave missing in-memory state")
			}
		}
	}
	if !haveReport {
		t.Fatalf("no crash report written in %s", bdir)
	}
	if !haveAutosave {
		t.Fatalf("no autosave written in %s", bdir)
	}
}

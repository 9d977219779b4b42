/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"storycanvas/internal/backend"
	"storycanvas/internal/crash"
	"storycanvas/internal/domain"
	"storycanvas/internal/export"
	applog "storycanvas/internal/log"
	"storycanvas/internal/outline"
	"storycanvas/internal/storage"
	"storycanvas/internal/ui"
	"storycanvas/internal/version"
)

func usage() {
	fmt.Println("Story Canvas — visual story planning")
	fmt.Printf("Version: %s\n", version.String())
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  storycanvas version|-v|--version              Show version")
	fmt.Println("  storycanvas init <dir> <name>                 Create a new project at <dir>")
	fmt.Println("  storycanvas open <dir>                        Open project at <dir> and print a summary")
	fmt.Println("  storycanvas save <dir>                        Save project at <dir> (creates a backup)")
	fmt.Println("  storycanvas import <dir> <outline.txt>        Create a project from a plain-text outline")
	fmt.Println("  storycanvas export <dir> [web|print]          Batch-export boards with the given preset")
	fmt.Println("  storycanvas search <dir> <query>              Full-text search the project index")
	fmt.Println("  storycanvas serve                             Run the sync server (Postgres)")
	fmt.Println("  storycanvas ui [<dir>]                        Launch desktop UI (build with -tags fyne)")
}

func main() {
	applog.Init(applog.FromEnv())
	l := applog.WithComponent("cli")
	var ph *storage.ProjectHandle
	defer func() { crash.Recover(ph) }()

	args := os.Args
	l.Debug("start", slog.Int("args", len(args)))
	if len(args) > 1 {
		switch args[1] {
		case "version", "--version", "-v":
			fmt.Println("Story Canvas — visual story planning")
			fmt.Println(version.String())
			return
		case "init":
			if len(args) < 4 {
				fmt.Println("init requires <dir> and <name>")
				usage()
				os.Exit(2)
			}
			abs, _ := filepath.Abs(args[2])
			name := args[3]
			l.Info("init project", slog.String("root", abs), slog.String("name", name))
			h, err := storage.InitProject(abs, domain.Project{Name: name})
			if err != nil {
				fail(l, "init failed", err)
			}
			ph = h
			fmt.Println("Created project at", abs)
			return
		case "open":
			if len(args) < 3 {
				fmt.Println("open requires <dir>")
				usage()
				os.Exit(2)
			}
			abs, _ := filepath.Abs(args[2])
			l.Info("open project", slog.String("root", abs))
			h, err := storage.Open(abs)
			if err != nil {
				fail(l, "open failed", err)
			}
			ph = h
			fmt.Printf("Opened project: %s\n", h.Project.Name)
			fmt.Printf("Boards: %d  Characters: %d  Locations: %d  Plot points: %d\n",
				len(h.Project.Boards), len(h.Project.Characters), len(h.Project.Locations), len(h.Project.PlotPoints))
			fmt.Println("Root:", h.Root)
			return
		case "save":
			if len(args) < 3 {
				fmt.Println("save requires <dir>")
				usage()
				os.Exit(2)
			}
			abs, _ := filepath.Abs(args[2])
			h, err := storage.Open(abs)
			if err != nil {
				fail(l, "open before save failed", err)
			}
			ph = h
			if err := storage.Save(h); err != nil {
				fail(l, "save failed", err)
			}
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := storage.UpdateIndex(ctx, h.Root, h.Project); err != nil {
				l.Warn("index update failed", slog.Any("err", err))
			}
			fmt.Println("Saved project and refreshed the search index.")
			return
		case "import":
			if len(args) < 4 {
				fmt.Println("import requires <dir> and <outline.txt>")
				usage()
				os.Exit(2)
			}
			abs, _ := filepath.Abs(args[2])
			src, err := os.ReadFile(args[3])
			if err != nil {
				fail(l, "read outline failed", err)
			}
			parsed, errs := outline.Parse(string(src))
			for _, e := range errs {
				fmt.Printf("outline line %d: %s\n", e.Line, e.Message)
			}
			proj := parsed.ToProject()
			h, err := storage.InitProject(abs, proj)
			if err != nil {
				fail(l, "init from outline failed", err)
			}
			ph = h
			fmt.Printf("Imported %q: %d characters, %d plot points, board %q\n",
				proj.Name, len(proj.Characters), len(proj.PlotPoints), proj.Boards[0].Name)
			return
		case "export":
			if len(args) < 3 {
				fmt.Println("export requires <dir>")
				usage()
				os.Exit(2)
			}
			abs, _ := filepath.Abs(args[2])
			preset := export.PresetWeb
			if len(args) > 3 {
				preset = export.PresetName(args[3])
			}
			h, err := storage.Open(abs)
			if err != nil {
				fail(l, "open failed", err)
			}
			ph = h
			if err := export.BatchExport(h, export.BatchOptions{Preset: preset}); err != nil {
				fail(l, "export failed", err)
			}
			fmt.Println("Exported to", filepath.Join(h.Root, "exports", string(preset)))
			return
		case "search":
			if len(args) < 4 {
				fmt.Println("search requires <dir> and <query>")
				usage()
				os.Exit(2)
			}
			abs, _ := filepath.Abs(args[2])
			h, err := storage.Open(abs)
			if err != nil {
				fail(l, "open failed", err)
			}
			ph = h
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := storage.BuildIndexIfEmpty(ctx, h.Root, h.Project); err != nil {
				fail(l, "index build failed", err)
			}
			results, err := storage.Search(ctx, h.Root, storage.SearchQuery{Text: args[3], Limit: 25})
			if err != nil {
				fail(l, "search failed", err)
			}
			if len(results) == 0 {
				fmt.Println("No matches.")
				return
			}
			for _, r := range results {
				fmt.Printf("%-14s %-40s %s\n", r.Type, r.Path, r.Snippet)
			}
			return
		case "serve":
			if err := backend.Start(); err != nil {
				fail(l, "server failed", err)
			}
			return
		case "ui":
			var dir string
			if len(args) >= 3 {
				dir = args[2]
			}
			if err := ui.Run(dir); err != nil {
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			return
		}
	}

	usage()
}

func fail(l *slog.Logger, msg string, err error) {
	l.Error(msg, slog.Any("err", err))
	fmt.Println("Error:", err)
	os.Exit(1)
}

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package outline

import (
	"bufio"
	"regexp"
	"sort"
	"strings"
)

// Parse parses an outline text.
// Supported syntax (minimal):
// - Title: "TITLE: name" (first wins).
// - Act headings: lines starting with "#" or "Act:"; the rest is the name.
// - Beats: "- title" bullets. Continuation lines indented by 2+ spaces are
//   appended to the previous beat's summary.
// - Entity declarations: "CHARACTER: name" and "LOCATION: name".
// - Mentions: @name anywhere in a beat tags that character.
// - Comments: lines starting with ';' are skipped.
// Beats before the first act heading land in an implicit "Act 1".
// Unrecognized lines start a new beat so no text is lost.
func Parse(input string) (Outline, []Error) {
	o := Outline{}
	var errs []Error

	reAct := regexp.MustCompile(`^(#+)\s*(.*)$`)
	reActAlt := regexp.MustCompile(`^(?i)\s*Act:\s*(.+)$`)
	reDecl := regexp.MustCompile(`^(?i)\s*(TITLE|CHARACTER|LOCATION)\s*:\s*(.+)$`)
	reBullet := regexp.MustCompile(`^[-*]\s+(.*)$`)
	reMention := regexp.MustCompile(`(?i)@([a-z0-9_\-]+)`)

	mentions := func(s string) []string {
		found := reMention.FindAllStringSubmatch(s, -1)
		if len(found) == 0 {
			return nil
		}
		m := map[string]struct{}{}
		for _, f := range found {
			if t := strings.ToLower(strings.TrimSpace(f[1])); t != "" {
				m[t] = struct{}{}
			}
		}
		out := make([]string, 0, len(m))
		for k := range m {
			out = append(out, k)
		}
		sort.Strings(out)
		return out
	}

	currentAct := Act{}
	var lastBeat *Beat

	flushAct := func() {
		if strings.TrimSpace(currentAct.Name) != "" || len(currentAct.Beats) > 0 {
			o.Acts = append(o.Acts, currentAct)
		}
	}
	addBeat := func(b Beat) {
		if currentAct.Name == "" && len(o.Acts) == 0 && len(currentAct.Beats) == 0 {
			currentAct.Name = "Act 1"
		}
		currentAct.Beats = append(currentAct.Beats, b)
		lastBeat = &currentAct.Beats[len(currentAct.Beats)-1]
	}

	scanner := bufio.NewScanner(strings.NewReader(input))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r\n")

		// Continuation line -> extend the previous beat's summary.
		if strings.HasPrefix(line, "  ") && lastBeat != nil {
			cont := strings.TrimSpace(line)
			if cont != "" {
				if lastBeat.Summary != "" {
					lastBeat.Summary += "\n"
				}
				lastBeat.Summary += cont
				lastBeat.Mentions = mergeMentions(lastBeat.Mentions, mentions(cont))
			}
			continue
		}

		trim := strings.TrimSpace(line)
		if trim == "" {
			lastBeat = nil
			continue
		}
		if strings.HasPrefix(trim, ";") {
			continue
		}

		if m := reDecl.FindStringSubmatch(trim); m != nil {
			val := strings.TrimSpace(m[2])
			switch strings.ToUpper(m[1]) {
			case "TITLE":
				if o.Title == "" {
					o.Title = val
				} else {
					errs = append(errs, Error{Line: lineNo, Message: "duplicate title ignored"})
				}
			case "CHARACTER":
				o.Characters = appendUnique(o.Characters, val)
			case "LOCATION":
				o.Locations = appendUnique(o.Locations, val)
			}
			lastBeat = nil
			continue
		}

		if m := reAct.FindStringSubmatch(trim); m != nil {
			flushAct()
			currentAct = Act{Name: strings.TrimSpace(m[2])}
			lastBeat = nil
			continue
		}
		if m := reActAlt.FindStringSubmatch(trim); m != nil {
			flushAct()
			currentAct = Act{Name: strings.TrimSpace(m[1])}
			lastBeat = nil
			continue
		}

		if m := reBullet.FindStringSubmatch(trim); m != nil {
			text := strings.TrimSpace(m[1])
			addBeat(Beat{Title: text, Mentions: mentions(text), LineNo: lineNo})
			continue
		}

		// Unrecognized line: keep it as a beat rather than dropping text.
		addBeat(Beat{Title: trim, Mentions: mentions(trim), LineNo: lineNo})
	}
	flushAct()

	if err := scanner.Err(); err != nil {
		errs = append(errs, Error{Line: lineNo, Message: err.Error()})
	}
	return o, errs
}

func mergeMentions(a, b []string) []string {
	if len(b) == 0 {
		return a
	}
	m := map[string]struct{}{}
	for _, t := range a {
		m[t] = struct{}{}
	}
	for _, t := range b {
		m[t] = struct{}{}
	}
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func appendUnique(s []string, v string) []string {
	for _, x := range s {
		if strings.EqualFold(x, v) {
			return s
		}
	}
	return append(s, v)
}

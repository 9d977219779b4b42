/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package canvas

import "testing"

func TestStrokeRoundTrip(t *testing.T) {
	in := []StrokePoint{{X: 0, Y: 0}, {X: 1.5, Y: -2.25}, {X: 40, Y: 40}}
	out, err := DecodeStroke(EncodeStroke(in))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("len = %d", len(out))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Fatalf("point %d = %v, want %v", i, out[i], in[i])
		}
	}
}

func TestDecodeStrokeRejectsGarbage(t *testing.T) {
	if _, err := DecodeStroke("scribble"); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestEncodeNilStroke(t *testing.T) {
	out, err := DecodeStroke(EncodeStroke(nil))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("points = %v", out)
	}
}

func TestStrokeBounds(t *testing.T) {
	minX, minY, maxX, maxY := strokeBounds([]StrokePoint{{X: 10, Y: 50}, {X: -5, Y: 60}, {X: 30, Y: 40}})
	if minX != -5 || minY != 40 || maxX != 30 || maxY != 60 {
		t.Fatalf("bounds = %v %v %v %v", minX, minY, maxX, maxY)
	}
	// Single point collapses to a zero-size box.
	minX, minY, maxX, maxY = strokeBounds([]StrokePoint{{X: 7, Y: 7}})
	if minX != 7 || maxX != 7 || minY != 7 || maxY != 7 {
		t.Fatalf("degenerate bounds = %v %v %v %v", minX, minY, maxX, maxY)
	}
}

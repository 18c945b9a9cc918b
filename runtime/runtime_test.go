// This file is part of b - a core compiler for the historical B language.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package runtime

import "testing"

func TestIsCollaboratorRecognizesEveryCategory(t *testing.T) {
	for _, name := range []string{"putchar", "printf", "char", "open", "fork", "alloc", "sx64"} {
		if !IsCollaborator(name) {
			t.Errorf("expected %q to be recognized as a collaborator", name)
		}
	}
}

func TestIsCollaboratorRejectsUnknownNames(t *testing.T) {
	for _, name := range []string{"fact", "main", "counter", "rd.unit"} {
		if IsCollaborator(name) {
			t.Errorf("did not expect %q to be recognized as a collaborator function", name)
		}
	}
}

func TestFunctionsHasNoDuplicates(t *testing.T) {
	seen := map[string]bool{}
	for _, f := range Functions() {
		if seen[f] {
			t.Errorf("duplicate collaborator name %q", f)
		}
		seen[f] = true
	}
}

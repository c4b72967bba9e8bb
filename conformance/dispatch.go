// Copyright 2019 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package conformance

import (
	"github.com/rv64mfd/core/hart"
	"github.com/rv64mfd/core/isa/fdext"
	"github.com/rv64mfd/core/isa/mext"
)

// execute chains the extension dispatchers in turn, mirroring how a
// host core would compose them (spec §2: "callers chain these").
func execute(m hart.State, inst uint32, isC bool) (bool, hart.State) {
	if legal, next := mext.Execute(m, inst, isC); legal {
		return legal, next
	}
	return fdext.Execute(m, inst, isC)
}

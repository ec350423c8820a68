// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

package preprocess

import (
	"github.com/mongodb/genny-sub000/internal/config"
)

// Path locates a node for error reporting, e.g. "Actors[2].Phases[0].Repeat".
type Path = config.Path

// rootPath is the path of the document root.
var rootPath = &Path{}

// inFile returns p with a segment marking that the following segments are
// inside the included file name.
func inFile(p *Path, name string) *Path {
	return p.Child("<" + name + ">")
}

// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

package node

// Merge overlays override onto base and returns the combined tree. Neither
// input is modified.
//
// The merge behavior:
//   - If base and override are both mappings, every override key is merged
//     into base recursively; keys only in base keep their position, new keys
//     are appended in override order
//   - Otherwise override replaces base entirely, so sequences are replaced
//     rather than concatenated
//   - A nil override leaves base unchanged
func Merge(base, override *Node) *Node {
	if override == nil {
		return Clone(base)
	}
	if base.Kind() != MappingKind || override.Kind() != MappingKind {
		return Clone(override)
	}

	dst := CloneMapping(base.m)
	mergeInto(dst, override.m)
	return FromMapping(dst)
}

// mergeInto overlays overlay's entries onto target, modifying target in place.
// Values are cloned so target never shares containers with overlay.
func mergeInto(target, overlay *Mapping) {
	for k, v := range overlay.All() {
		existing, ok := target.Get(k)
		if ok && existing.Kind() == MappingKind && v.Kind() == MappingKind {
			mergeInto(existing.m, v.m)
			continue
		}
		target.Set(k, Clone(v))
	}
}

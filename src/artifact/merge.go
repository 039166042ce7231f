package artifact

import "github.com/TurboCoder13/py-lintro-sub001/src/resolve"

// DeepMerge returns a new map with overlay applied on base. Keys holding
// maps on both sides are merged recursively; any other collision is won by
// overlay. Neither input is modified.
func DeepMerge(base, overlay map[string]any) map[string]any {
	out := resolve.CloneMap(base)
	for k, ov := range overlay {
		om, oIsMap := ov.(map[string]any)
		bm, bIsMap := out[k].(map[string]any)
		if oIsMap && bIsMap {
			out[k] = DeepMerge(bm, om)
			continue
		}
		if oIsMap {
			out[k] = resolve.CloneMap(om)
			continue
		}
		out[k] = ov
	}
	return out
}

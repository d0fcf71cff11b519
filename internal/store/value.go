package store

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Normalize converts a caller-supplied value into the canonical tree form:
// integers become int64, empty maps become nil, nested maps are copied.
func Normalize(v any) (any, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case bool, string, int64:
		return x, nil
	case int:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case uint32:
		return int64(x), nil
	case float64:
		if x != math.Trunc(x) || math.IsInf(x, 0) {
			return nil, fmt.Errorf("%w: non-integer number %v", ErrInvalidValue, x)
		}
		return int64(x), nil
	case map[string]string:
		m := make(map[string]any, len(x))
		for k, s := range x {
			m[k] = s
		}
		return Normalize(m)
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, child := range x {
			if _, err := Split(k); err != nil || strings.Contains(k, "/") {
				return nil, fmt.Errorf("%w: bad key %q", ErrInvalidValue, k)
			}
			n, err := Normalize(child)
			if err != nil {
				return nil, err
			}
			if n != nil {
				out[k] = n
			}
		}
		if len(out) == 0 {
			return nil, nil
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: unsupported type %T", ErrInvalidValue, v)
}

// Clone deep-copies a canonical tree
func Clone(v any) any {
	m, ok := v.(map[string]any)
	if !ok {
		return v
	}
	out := make(map[string]any, len(m))
	for k, child := range m {
		out[k] = Clone(child)
	}
	return out
}

// Flatten returns the leaves of a tree keyed by their path relative to the tree root.
// A scalar flattens to a single entry keyed by "".
func Flatten(v any) map[string]any {
	out := make(map[string]any)
	flatten("", v, out)
	return out
}

func flatten(prefix string, v any, out map[string]any) {
	m, ok := v.(map[string]any)
	if !ok {
		if v != nil {
			out[prefix] = v
		}
		return
	}
	for k, child := range m {
		p := k
		if prefix != "" {
			p = prefix + "/" + k
		}
		flatten(p, child, out)
	}
}

// Unflatten rebuilds a tree from relative leaf paths. The "" key is a scalar root.
func Unflatten(leaves map[string]any) any {
	if v, ok := leaves[""]; ok {
		return v
	}
	if len(leaves) == 0 {
		return nil
	}
	keys := make([]string, 0, len(leaves))
	for k := range leaves {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	root := make(map[string]any)
	for _, k := range keys {
		segs := strings.Split(k, "/")
		node := root
		for _, s := range segs[:len(segs)-1] {
			next, ok := node[s].(map[string]any)
			if !ok {
				next = make(map[string]any)
				node[s] = next
			}
			node = next
		}
		node[segs[len(segs)-1]] = leaves[k]
	}
	return root
}

// Lookup returns the value at segs under root, or nil
func Lookup(root any, segs []string) any {
	node := root
	for _, s := range segs {
		m, ok := node.(map[string]any)
		if !ok {
			return nil
		}
		node = m[s]
	}
	return node
}

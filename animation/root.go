package animation

import "github.com/kungfusheep/hktagfile"

// RootAnimations walks root.namedVariants[0].variant.animations and decodes
// each entry, per compressedanimation.rs's new_from_root. This lets a
// caller go directly from a parsed tagfile to its animation list instead
// of locating and decoding each animation node by hand.
func RootAnimations(root tagfile.Walker) ([]Animation, error) {
	namedVariants, err := root.FieldNodeVec("namedVariants")
	if err != nil {
		return nil, err
	}
	if len(namedVariants) == 0 {
		return nil, tagfile.NewInvalid("namedVariants contains no children")
	}

	variant, err := namedVariants[0].FieldNode("variant")
	if err != nil {
		return nil, err
	}

	animationNodes, err := variant.FieldNodeVec("animations")
	if err != nil {
		return nil, err
	}

	animations := make([]Animation, len(animationNodes))
	for i, node := range animationNodes {
		a, err := ReadAnimation(node)
		if err != nil {
			return nil, err
		}
		animations[i] = a
	}
	return animations, nil
}

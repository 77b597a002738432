package ux

import "context"

// Decode reconstructs the key stored under identifier id by walking
// from its terminal node up to the root, prepending each edge label
// along the way, then appending the node's tail bytes if it carries
// one. Grounded on original_source/src/ux.cpp's UX::decode, translated
// to this package's half-open rank convention (see DESIGN.md's Open
// Question 4 resolution).
func (d *Dictionary) Decode(id int) ([]byte, error) {
	if !d.Ready() {
		return nil, ErrNotReady
	}
	if id < 0 || id >= d.keyNum {
		err := &ErrInvalidID{ID: id, KeyNum: d.keyNum}
		d.logger.LogQuery(context.Background(), "decode", nil, 0, err)
		return nil, err
	}

	ones := d.terminal.Select(id+1, true)
	pos := d.loud.Select(ones+1, true) + 1
	zeros := pos - ones

	var tailBytes []byte
	if d.tailBV.Get(ones) {
		tailIdx := d.tailBV.Rank(ones, true)
		tb, err := d.tails.Get(tailIdx)
		if err != nil {
			d.logger.LogQuery(context.Background(), "decode", nil, 0, err)
			return nil, err
		}
		tailBytes = tb
	}

	var labels []byte
	for {
		parentPos, parentZeros, label, atRoot := d.nav.GetParent(pos, zeros)
		if atRoot {
			break
		}
		labels = append(labels, label)
		pos, zeros = parentPos, parentZeros
	}

	out := make([]byte, 0, len(labels)+len(tailBytes))
	for i := len(labels) - 1; i >= 0; i-- {
		out = append(out, labels[i])
	}
	out = append(out, tailBytes...)
	d.logger.LogQuery(context.Background(), "decode", nil, 1, nil)
	return out, nil
}

// Copyright (c) 2018 Shivaram Lingamneni <slingamn@cs.stanford.edu>
// released under the MIT license

package utils

import "testing"

type testBitset [2]uint32

func TestSets(t *testing.T) {
	var t1 testBitset
	t1s := t1[:]

	if BitsetGet(t1s, 0) || BitsetGet(t1s, 31) || BitsetGet(t1s, 32) || BitsetGet(t1s, 63) {
		t.Error("no bits should be set in a zero-valued bitset")
	}

	var i uint
	for i = 0; i < 64; i++ {
		if i%2 == 0 {
			if !BitsetSet(t1s, i, true) {
				t.Error("setting an unset bit should return true")
			}
		}
	}

	if BitsetSet(t1s, 24, true) {
		t.Error("setting an already-set bit should return false")
	}

	for i = 0; i < 64; i++ {
		expected := (i%2 == 0)
		if BitsetGet(t1s, i) != expected {
			t.Errorf("bit %d should be %t", i, expected)
		}
	}

	if !BitsetSet(t1s, 24, false) {
		t.Error("clearing a set bit should return true")
	}
	if BitsetSet(t1s, 24, false) {
		t.Error("clearing an already-clear bit should return false")
	}
	if BitsetGet(t1s, 24) {
		t.Error("bit 24 should be clear")
	}
}

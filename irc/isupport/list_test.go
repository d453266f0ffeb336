// Copyright (c) 2016 Daniel Oaks <daniel@danieloaks.net>
// released under the MIT license

package isupport

import (
	"reflect"
	"testing"
)

func TestISUPPORT(t *testing.T) {
	tList := NewList()
	tList.Add("CASEMAPPING", "rfc1459")
	tList.Add("CHANMODES", "b,k,l,imnt")
	tList.Add("CHANNELLEN", "200")
	tList.Add("MAXCHANNELS", "10")
	tList.Add("NICKLEN", "9")
	tList.AddNoValue("INVEX")
	err := tList.RegenerateCachedReply()
	if err != nil {
		t.Error(err)
	}

	expected := [][]string{{
		"CASEMAPPING=rfc1459", "CHANMODES=b,k,l,imnt", "CHANNELLEN=200",
		"INVEX", "MAXCHANNELS=10", "NICKLEN=9",
	}}
	if !reflect.DeepEqual(tList.CachedReply, expected) {
		t.Errorf("bad cached reply: %v", tList.CachedReply)
	}

	if !tList.Contains("INVEX") || tList.Contains("TARGMAX") {
		t.Error("Contains gave the wrong answer")
	}
}

func TestBadToken(t *testing.T) {
	tList := NewList()
	tList.Add("NICKLEN", "9")
	tList.Add("BAD", ":realbad")
	err := tList.RegenerateCachedReply()
	if err == nil {
		t.Error("expected an error from a token starting with a colon")
	}

	// the bad token is skipped, the rest of the reply is still usable
	expected := [][]string{{"NICKLEN=9"}}
	if !reflect.DeepEqual(tList.CachedReply, expected) {
		t.Errorf("bad cached reply: %v", tList.CachedReply)
	}
}

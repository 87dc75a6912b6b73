// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tokenizer

import (
	"strings"

	"github.com/dpotapov/go-treebuilder"
)

const whitespace = " \t\r\n\f"

// parseDoctype parses the data of a DoctypeToken, which is everything
// between "<!DOCTYPE" and ">", into a name and the public and system
// identifiers. Malformed identifiers force quirks mode.
func parseDoctype(s string) (d treebuilder.Doctype) {
	s = strings.TrimLeft(s, whitespace)
	if s == "" {
		d.ForceQuirks = true
		return d
	}

	// Find the name.
	space := strings.IndexAny(s, whitespace)
	if space == -1 {
		space = len(s)
	}
	d.Name = strings.ToLower(s[:space])
	s = strings.TrimLeft(s[space:], whitespace)

	if s == "" {
		return d
	}
	if len(s) < 6 {
		// It can't start with "PUBLIC" or "SYSTEM".
		d.ForceQuirks = true
		return d
	}

	key := strings.ToLower(s[:6])
	if key != "public" && key != "system" {
		d.ForceQuirks = true
		return d
	}
	s = s[6:]
	for key == "public" || key == "system" {
		s = strings.TrimLeft(s, whitespace)
		if s == "" {
			if !d.HasPublicID && !d.HasSystemID {
				d.ForceQuirks = true
			}
			break
		}
		quote := s[0]
		if quote != '"' && quote != '\'' {
			d.ForceQuirks = true
			break
		}
		s = s[1:]
		q := strings.IndexByte(s, quote)
		var id string
		if q == -1 {
			id = s
			s = ""
			d.ForceQuirks = true
		} else {
			id = s[:q]
			s = s[q+1:]
		}
		if key == "public" {
			d.PublicID, d.HasPublicID = id, true
			key = "system"
		} else {
			d.SystemID, d.HasSystemID = id, true
			key = ""
		}
	}

	return d
}

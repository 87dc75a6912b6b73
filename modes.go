package treebuilder

import (
	"strconv"
	"strings"
)

// InsertionMode is a state of the tree construction state machine.
type InsertionMode int

const (
	Initial InsertionMode = iota
	BeforeHTML
	BeforeHead
	InHead
	InHeadNoscript
	AfterHead
	InBody
	Text
	InTable
	InTableBody
	InRow
	InCell
	InCaption
	InColumnGroup
	InSelect
	InSelectInTable
	AfterBody
	InFrameset
	AfterFrameset
	AfterAfterBody
	AfterAfterFrameset
	// FramesetOK is "in body" while a frameset may still replace the body.
	FramesetOK
)

var modeNames = [...]string{
	Initial:            "initial",
	BeforeHTML:         "before html",
	BeforeHead:         "before head",
	InHead:             "in head",
	InHeadNoscript:     "in head noscript",
	AfterHead:          "after head",
	InBody:             "in body",
	Text:               "text",
	InTable:            "in table",
	InTableBody:        "in table body",
	InRow:              "in row",
	InCell:             "in cell",
	InCaption:          "in caption",
	InColumnGroup:      "in column group",
	InSelect:           "in select",
	InSelectInTable:    "in select in table",
	AfterBody:          "after body",
	InFrameset:         "in frameset",
	AfterFrameset:      "after frameset",
	AfterAfterBody:     "after after body",
	AfterAfterFrameset: "after after frameset",
	FramesetOK:         "frameset ok",
}

func (m InsertionMode) String() string {
	if m >= 0 && int(m) < len(modeNames) {
		return modeNames[m]
	}
	return "InsertionMode(" + strconv.Itoa(int(m)) + ")"
}

// splitWhitespace splits s into its leading whitespace and the rest.
func splitWhitespace(s string) (ws, rest string) {
	rest = strings.TrimLeft(s, whitespace)
	return s[:len(s)-len(rest)], rest
}

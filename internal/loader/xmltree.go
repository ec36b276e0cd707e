package loader

import (
	"encoding/xml"
	"regexp"
	"strconv"
	"strings"
)

// node is a generic in-memory XML element. The whole document is decoded
// into one tree up front; extraction then walks it with regexp tag matching
// because Live renames elements between versions.
type node struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Children []node     `xml:",any"`
	Text     string     `xml:",chardata"`
}

func (n *node) tag() string { return n.XMLName.Local }

func (n *node) attr(name string) string {
	for _, a := range n.Attrs {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// walk visits the subtree in document order. Return false from fn to stop.
func (n *node) walk(fn func(*node) bool) bool {
	if !fn(n) {
		return false
	}
	for i := range n.Children {
		if !n.Children[i].walk(fn) {
			return false
		}
	}
	return true
}

// walkPrune visits the subtree in document order. Return false from fn to
// skip the node's children while continuing with its siblings.
func (n *node) walkPrune(fn func(*node) bool) {
	if !fn(n) {
		return
	}
	for i := range n.Children {
		n.Children[i].walkPrune(fn)
	}
}

// walkDepth visits the subtree breadth-first up to maxDepth levels below n.
func (n *node) walkDepth(maxDepth int, fn func(*node, int) bool) {
	type item struct {
		n     *node
		depth int
	}
	queue := []item{{n, 0}}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if !fn(cur.n, cur.depth) {
			return
		}
		if cur.depth >= maxDepth {
			continue
		}
		for i := range cur.n.Children {
			queue = append(queue, item{&cur.n.Children[i], cur.depth + 1})
		}
	}
}

// findFirst returns the first descendant (document order) with the exact tag.
func (n *node) findFirst(tag string) *node {
	var found *node
	n.walk(func(d *node) bool {
		if d.tag() == tag {
			found = d
			return false
		}
		return true
	})
	return found
}

// child returns the direct child with the exact tag.
func (n *node) child(tag string) *node {
	for i := range n.Children {
		if n.Children[i].tag() == tag {
			return &n.Children[i]
		}
	}
	return nil
}

// childPath follows a chain of direct children.
func (n *node) childPath(tags ...string) *node {
	cur := n
	for _, tag := range tags {
		cur = cur.child(tag)
		if cur == nil {
			return nil
		}
	}
	return cur
}

// descendantAttr returns the first non-empty value of any of the attrs on a
// descendant whose tag matches rx.
func (n *node) descendantAttr(rx *regexp.Regexp, attrs ...string) string {
	var value string
	n.walk(func(d *node) bool {
		if !rx.MatchString(d.tag()) {
			return true
		}
		for _, attr := range attrs {
			if v := d.attr(attr); v != "" {
				value = v
				return false
			}
		}
		return true
	})
	return value
}

var boolLiterals = map[string]bool{
	"true": true, "false": true, "0": true, "1": true, "yes": true, "no": true,
}

func normalizeText(s string) string { return strings.TrimSpace(s) }

func isBoolishText(s string) bool {
	return boolLiterals[strings.ToLower(strings.TrimSpace(s))]
}

// normalizeNonBoolish rejects values that are clearly boolean junk, which
// Live sometimes leaves where a name should be.
func normalizeNonBoolish(s string) string {
	s = normalizeText(s)
	if s == "" || isBoolishText(s) {
		return ""
	}
	return s
}

func parseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes":
		return true, true
	case "false", "0", "no":
		return false, true
	}
	return false, false
}

func parseFloat(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// boolFromManual extracts a boolean stored either as a Value/Manual attribute
// or nested as <Manual Value="..."/> up to two levels down, the common Live
// parameter shapes.
func boolFromManual(n *node) (bool, bool) {
	for _, attr := range []string{"Value", "Manual"} {
		if b, ok := parseBool(n.attr(attr)); ok {
			return b, true
		}
	}
	for i := range n.Children {
		ch := &n.Children[i]
		if strings.HasSuffix(ch.tag(), "Manual") {
			if b, ok := parseBool(firstNonEmpty(ch.attr("Value"), ch.attr("Manual"))); ok {
				return b, true
			}
		}
		for j := range ch.Children {
			gch := &ch.Children[j]
			if strings.HasSuffix(gch.tag(), "Manual") {
				if b, ok := parseBool(firstNonEmpty(gch.attr("Value"), gch.attr("Manual"))); ok {
					return b, true
				}
			}
		}
	}
	return false, false
}

// scalarFromParam reads a parameter value from the usual spots: a nested
// <Manual Value=".."/>, a Value attribute, or element text. Returns a bool,
// float64, or string.
func scalarFromParam(n *node) (any, bool) {
	if man := n.findFirst("Manual"); man != nil {
		v := man.attr("Value")
		if v == "" {
			v = normalizeText(man.Text)
		}
		return normalizeScalar(v)
	}
	if v := n.attr("Value"); v != "" {
		return normalizeScalar(v)
	}
	if v := normalizeText(n.Text); v != "" {
		return normalizeScalar(v)
	}
	return nil, false
}

var (
	intRx   = regexp.MustCompile(`^-?\d+$`)
	floatRx = regexp.MustCompile(`^-?\d+(?:\.\d+)?(?:[eE]-?\d+)?$`)
)

// normalizeScalar converts a string value to float64 or bool when safe.
// "0" and "1" stay numeric because many device params use 0/1 encodings.
func normalizeScalar(s string) (any, bool) {
	s = normalizeText(s)
	if s == "" {
		return nil, false
	}
	if intRx.MatchString(s) || floatRx.MatchString(s) {
		if f, ok := parseFloat(s); ok {
			return f, true
		}
	}
	switch strings.ToLower(s) {
	case "true", "yes":
		return true, true
	case "false", "no":
		return false, true
	}
	return s, true
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

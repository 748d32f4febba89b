package translate

import (
	"fmt"
	"strconv"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/swift-server/sourcekit-lsp-go/internal/sourcekitd"
	"github.com/swift-server/sourcekit-lsp-go/internal/textmodel"
)

// DocumentColors walks substructure for color-literal expression nodes
// and extracts their red/green/blue/alpha child substrings (spec.md §4.6
// "Document color / color presentation"). Nodes missing a channel or
// whose channel does not parse as a float are skipped.
func DocumentColors(ns sourcekitd.Namespaces, kinds *KindTable, lines *textmodel.LineTable, substructure sourcekitd.Array) []protocol.ColorInformation {
	var out []protocol.ColorInformation
	var walk func(sourcekitd.Array)
	walk = func(level sourcekitd.Array) {
		for _, v := range level {
			node, ok := v.(sourcekitd.Dict)
			if !ok {
				continue
			}

			if kindUID, ok := node.GetUID(ns.Keys.Kind); ok && kinds.IsColorLiteral(kindUID) {
				if info, ok := colorInformationFromNode(ns, lines, node); ok {
					out = append(out, info)
				}
			}

			if children, ok := node.GetArray(ns.Keys.SubStructure); ok {
				walk(children)
			}
		}
	}
	walk(substructure)
	return out
}

func colorInformationFromNode(ns sourcekitd.Namespaces, lines *textmodel.LineTable, node sourcekitd.Dict) (protocol.ColorInformation, bool) {
	bodyOffset, ok1 := node.GetInt64(ns.Keys.BodyOffset)
	bodyLength, ok2 := node.GetInt64(ns.Keys.BodyLength)
	if !ok1 || !ok2 {
		return protocol.ColorInformation{}, false
	}
	nodeRange, ok := byteRangeToLSP(lines, bodyOffset, bodyLength)
	if !ok {
		return protocol.ColorInformation{}, false
	}

	children, ok := node.GetArray(ns.Keys.SubStructure)
	if !ok {
		return protocol.ColorInformation{}, false
	}

	channels := map[string]float64{}
	for _, v := range children {
		child, ok := v.(sourcekitd.Dict)
		if !ok {
			continue
		}
		name, ok := child.GetString(ns.Keys.Name_)
		if !ok {
			continue
		}
		text, ok := child.GetString(ns.Keys.SourceText)
		if !ok {
			continue
		}
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			continue
		}
		channels[name] = f
	}

	red, ok1 := channels["red"]
	green, ok2 := channels["green"]
	blue, ok3 := channels["blue"]
	alpha, ok4 := channels["alpha"]
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return protocol.ColorInformation{}, false
	}

	return protocol.ColorInformation{
		Range: nodeRange,
		Color: protocol.Color{Red: float32(red), Green: float32(green), Blue: float32(blue), Alpha: float32(alpha)},
	}, true
}

// ColorPresentations renders a single color-literal replacement text, per
// spec.md §4.6 "Presentation inserts #colorLiteral(red: R, green: G,
// blue: B, alpha: A)."
func ColorPresentations(c protocol.Color) []protocol.ColorPresentation {
	label := fmt.Sprintf("#colorLiteral(red: %v, green: %v, blue: %v, alpha: %v)", c.Red, c.Green, c.Blue, c.Alpha)
	return []protocol.ColorPresentation{{Label: label}}
}

package xmlmeta

import (
	"strconv"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
)

// queryText evaluates a compiled XPath expression against root and returns
// the matched node's text content, or "" if nothing matched. Together with
// queryAttr and queryAll it wraps the XPath engine for the decode helpers;
// importV1/importV2 also call xmlquery.FindOne directly to locate each
// subtree.
func queryText(root *xmlquery.Node, exprStr string) string {
	expr, err := xpath.Compile(exprStr)
	if err != nil {
		return ""
	}
	n := xmlquery.QuerySelector(root, expr)
	if n == nil {
		return ""
	}
	return strings.TrimSpace(n.InnerText())
}

func queryAttr(root *xmlquery.Node, exprStr, attr string) string {
	expr, err := xpath.Compile(exprStr)
	if err != nil {
		return ""
	}
	n := xmlquery.QuerySelector(root, expr)
	if n == nil {
		return ""
	}
	return n.SelectAttr(attr)
}

func queryAll(root *xmlquery.Node, exprStr string) []*xmlquery.Node {
	expr, err := xpath.Compile(exprStr)
	if err != nil {
		return nil
	}
	return xmlquery.QuerySelectorAll(root, expr)
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

func parseIntOr(s string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return v
}

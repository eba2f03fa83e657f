package htmlutil

import (
	"bytes"

	"golang.org/x/net/html"
)

// GetText returns the concatenated text content of the node and all of its
// descendants, in document order.
func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

// Href returns the node's href attribute value and whether the attribute is
// present at all. An empty href is distinct from a missing one.
func Href(node *html.Node) (string, bool) {
	for _, a := range node.Attr {
		if a.Key == "href" {
			return a.Val, true
		}
	}
	return "", false
}

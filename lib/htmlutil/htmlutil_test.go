package htmlutil

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

const fixture = `<html><body>
<a id="nested" href="/golang/go"><span>golang /</span> <span>go</span></a>
<a id="empty" href="">empty</a>
<a id="missing">missing</a>
</body></html>`

func TestGetText(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fixture))
	require.NoError(t, err)

	sel := doc.Find("#nested")
	require.Len(t, sel.Nodes, 1)
	require.Equal(t, "golang / go", GetText(sel.Nodes[0]))
}

func TestHref(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fixture))
	require.NoError(t, err)

	cases := []struct {
		selector string
		href     string
		present  bool
	}{
		{selector: "#nested", href: "/golang/go", present: true},
		{selector: "#empty", href: "", present: true},
		{selector: "#missing", href: "", present: false},
	}

	for _, test := range cases {
		sel := doc.Find(test.selector)
		require.Len(t, sel.Nodes, 1, test.selector)

		href, ok := Href(sel.Nodes[0])
		require.Equal(t, test.present, ok, test.selector)
		require.Equal(t, test.href, href, test.selector)
	}
}

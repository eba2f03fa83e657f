package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const indexPage = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Trendwatch</title>
<style>
body { font-family: sans-serif; max-width: 40rem; margin: 3rem auto; padding: 0 1rem; }
button { font-size: 1rem; padding: 0.5rem 1.25rem; cursor: pointer; }
li { margin: 0.4rem 0; }
#status { color: #555; margin-top: 1rem; }
</style>
</head>
<body>
<h1>Trendwatch</h1>
<p>Scrape the top trending repositories on GitHub right now.</p>
<button id="scrape">Scrape</button>
<p id="status"></p>
<ol id="repos"></ol>
<script>
const button = document.getElementById("scrape");
const status = document.getElementById("status");
const list = document.getElementById("repos");

button.addEventListener("click", async () => {
	button.disabled = true;
	status.textContent = "scraping...";
	list.replaceChildren();
	try {
		const res = await fetch("/api/v1/scrape", { method: "POST" });
		const body = await res.json();
		if (!body.success) {
			status.textContent = "scrape failed: " + body.error.message;
			return;
		}
		status.textContent = "run " + body.run_id + " took " + body.took_ms + "ms, exported to " + body.csv_path;
		for (const repo of body.repos || []) {
			const item = document.createElement("li");
			const link = document.createElement("a");
			link.href = repo.link;
			link.textContent = repo.name;
			link.target = "_blank";
			item.appendChild(link);
			list.appendChild(item);
		}
	} catch (err) {
		status.textContent = "scrape failed: " + err;
	} finally {
		button.disabled = false;
	}
});
</script>
</body>
</html>`

// Index returns the handler for GET /, a single page with one button
// that triggers a scrape and lists the result as clickable links.
func Index() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(indexPage))
	}
}

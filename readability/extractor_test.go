package readability_test

import (
	"testing"

	"github.com/isaacchacko/den"
	"github.com/isaacchacko/den/readability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ den.Extractor = (*readability.Extractor)(nil)

func extract(t *testing.T, html string) *den.ExtractResult {
	t.Helper()
	result, err := readability.NewExtractor().Extract(html)
	require.NoError(t, err)
	return result
}

func TestExtractor_RejectsEmptyInput(t *testing.T) {
	t.Parallel()

	_, err := readability.NewExtractor().Extract("")

	require.Error(t, err)
	assert.Equal(t, den.EINVALID, den.ErrorCode(err))
}

func TestExtractor_ExtractsTitle(t *testing.T) {
	t.Parallel()

	result := extract(t, `<!DOCTYPE html>
<html>
<head><title>Page Title</title></head>
<body><article><p>Content</p></article></body>
</html>`)

	assert.Equal(t, "Page Title", result.Title)
}

func TestExtractor_RemovesBoilerplate(t *testing.T) {
	t.Parallel()

	result := extract(t, `<!DOCTYPE html>
<html>
<head><title>Test</title></head>
<body>
<nav><a href="/home">Home Nav Link</a><a href="/about">About Nav Link</a></nav>
<aside class="sidebar"><ul><li>Sidebar navigation content</li></ul></aside>
<article>
<p>A semaphore is a variable used to control access to a common resource by multiple threads in a concurrent system.</p>
<p>Semaphores are a useful tool in the prevention of race conditions, although their use is not a guarantee.</p>
</article>
<footer><p>Footer copyright text</p></footer>
</body>
</html>`)

	assert.Contains(t, result.ContentHTML, "control access to a common resource")
	assert.NotContains(t, result.ContentHTML, "Home Nav Link")
	assert.NotContains(t, result.ContentHTML, "Sidebar navigation content")
	assert.NotContains(t, result.ContentHTML, "Footer copyright text")
}

func TestExtractor_PreservesStructure(t *testing.T) {
	t.Parallel()

	result := extract(t, `<!DOCTYPE html>
<html>
<head><title>Structure</title></head>
<body>
<article>
<h1>Main Heading</h1>
<p>Actors are the universal primitive of concurrent computation in the actor model of computer science.</p>
<h2>Subheading Level Two</h2>
<p>In response to a message it receives, an actor can make local decisions and create more actors.</p>
<ul><li>Send messages</li><li>Create actors</li></ul>
<table><tr><th>Model</th><th>Year</th></tr><tr><td>Actor</td><td>1973</td></tr></table>
<p>See <a href="https://example.com/csp">communicating sequential processes</a> and <code>select</code>.</p>
<pre><code class="language-go">go func() { ch &lt;- 1 }()</code></pre>
</article>
</body>
</html>`)

	assert.Contains(t, result.ContentHTML, "Subheading Level Two")
	assert.Contains(t, result.ContentHTML, "<h2")
	assert.Contains(t, result.ContentHTML, "<p")
	assert.Contains(t, result.ContentHTML, "<li")
	assert.Contains(t, result.ContentHTML, "<table")
	assert.Contains(t, result.ContentHTML, "<a")
	assert.Contains(t, result.ContentHTML, "<code")
	assert.Contains(t, result.ContentHTML, "<pre")
}

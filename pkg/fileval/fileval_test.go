package fileval

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAcceptsTypicalFiles(t *testing.T) {
	cases := []struct {
		mime string
		name string
		size int64
	}{
		{"image/jpeg", "photo.jpg", 1024},
		{"image/jpeg", "PHOTO.JPEG", 2048},
		{"image/png", "diagram.png", MaxFileSize},
		{"image/svg+xml", "logo.svg", 900},
		{"text/plain", "notes.txt", 1},
		{"text/markdown", "README.md", 5000},
		{"application/csv", "export.csv", 100},
	}
	for _, c := range cases {
		assert.NoError(t, Validate(c.mime, c.name, c.size), "%s %s", c.mime, c.name)
	}
}

func TestValidateSizeLimit(t *testing.T) {
	// One byte over the cap rejects even a perfectly valid type/extension.
	err := Validate("image/png", "big.png", MaxFileSize+1)
	require.Error(t, err)
	reasons := Reasons(err)
	require.Len(t, reasons, 1)
	assert.Contains(t, reasons[0], "exceeds the 2MB limit")
}

func TestValidateUnionExtensions(t *testing.T) {
	// The extension check runs against the union of all allowed extensions,
	// not the declared MIME's own list. A .txt declared as image/png passes.
	assert.NoError(t, Validate("image/png", "notes.txt", 10))
	assert.NoError(t, Validate("text/csv", "chart.jpeg", 10))
}

func TestValidateAccumulatesReasons(t *testing.T) {
	err := Validate("application/pdf", "report.pdf", MaxFileSize*2)
	require.Error(t, err)
	reasons := Reasons(err)
	require.Len(t, reasons, 3)
	joined := strings.Join(reasons, "; ")
	assert.Contains(t, joined, "exceeds the 2MB limit")
	assert.Contains(t, joined, "file type 'application/pdf' is not supported")
	assert.Contains(t, joined, "file extension '.pdf' is not supported")
}

func TestValidateMissingExtension(t *testing.T) {
	err := Validate("text/plain", "noextension", 10)
	require.Error(t, err)
	assert.Contains(t, Reasons(err)[0], "file extension '' is not supported")
}

func TestSafeFilename(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"photo.jpg", "photo.jpg"},
		{"my report (final).txt", "my_report__final_.txt"},
		{"über straße.png", "_ber_stra_e.png"},
		{"..", "_."},
		{strings.Repeat("a", 80) + ".md", strings.Repeat("a", 50) + ".md"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, SafeFilename(c.in), "input %q", c.in)
	}
}

func TestFormatSize(t *testing.T) {
	cases := []struct {
		bytes int64
		want  string
	}{
		{0, "0 Bytes"},
		{1, "1 Bytes"},
		{500, "500 Bytes"},
		{1024, "1 KB"},
		{1536, "1.5 KB"},
		{1234, "1.21 KB"},
		{1572864, "1.5 MB"},
		{2097152, "2 MB"},
		{1073741824, "1 GB"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, FormatSize(c.bytes), "bytes %d", c.bytes)
	}
}

func TestCategory(t *testing.T) {
	assert.Equal(t, "image", Category("image/png"))
	assert.Equal(t, "image", Category("image/svg+xml"))
	assert.Equal(t, "text", Category("text/plain"))
	assert.Equal(t, "text", Category("application/csv"))
	assert.Equal(t, "unknown", Category("application/pdf"))
	assert.Equal(t, "unknown", Category(""))
}
